package memory

import (
	"context"
	"sort"
	"sync"

	domainavailability "gearbook/internal/domain/availability"
	domainitems "gearbook/internal/domain/items"
	domainrental "gearbook/internal/domain/rental"
)

// ItemRepository is an in-memory implementation used by tests and the
// self-contained storage mode.
type ItemRepository struct {
	mu    sync.RWMutex
	items map[string]*domainitems.Item
}

func NewItemRepository() *ItemRepository {
	return &ItemRepository{items: make(map[string]*domainitems.Item)}
}

func (r *ItemRepository) ByID(ctx context.Context, id string) (*domainitems.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, domainitems.ErrItemNotFound
	}
	return item, nil
}

func (r *ItemRepository) Save(ctx context.Context, item *domainitems.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.Version++
	r.items[item.ID] = item
	return nil
}

func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domainitems.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainitems.Item, 0)
	for _, item := range r.items {
		if item.OwnerID == ownerID {
			matches = append(matches, item)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

// RentalRepository stores rentals in memory.
type RentalRepository struct {
	mu    sync.RWMutex
	items map[string]*domainrental.Rental
}

func NewRentalRepository() *RentalRepository {
	return &RentalRepository{items: make(map[string]*domainrental.Rental)}
}

func (r *RentalRepository) ByID(ctx context.Context, id string) (*domainrental.Rental, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rental, ok := r.items[id]
	if !ok {
		return nil, domainrental.ErrNotFound
	}
	return rental, nil
}

func (r *RentalRepository) Save(ctx context.Context, rental *domainrental.Rental) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rental.Version++
	r.items[rental.ID] = rental
	return nil
}

func (r *RentalRepository) ListByRenter(ctx context.Context, renterID string) ([]*domainrental.Rental, error) {
	return r.list(func(candidate *domainrental.Rental) bool {
		return candidate.RenterID == renterID
	})
}

func (r *RentalRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domainrental.Rental, error) {
	return r.list(func(candidate *domainrental.Rental) bool {
		return candidate.OwnerID == ownerID
	})
}

func (r *RentalRepository) ListByItem(ctx context.Context, itemID string) ([]*domainrental.Rental, error) {
	return r.list(func(candidate *domainrental.Rental) bool {
		return candidate.ItemID == itemID
	})
}

func (r *RentalRepository) list(match func(*domainrental.Rental) bool) ([]*domainrental.Rental, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainrental.Rental, 0)
	for _, rental := range r.items {
		if match(rental) {
			matches = append(matches, rental)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].RequestedAt.After(matches[j].RequestedAt)
	})
	return matches, nil
}

// CalendarRepository keeps availability calendars in memory.
type CalendarRepository struct {
	mu        sync.RWMutex
	calendars map[string]*domainavailability.Calendar
}

func NewCalendarRepository() *CalendarRepository {
	return &CalendarRepository{calendars: make(map[string]*domainavailability.Calendar)}
}

func (r *CalendarRepository) ByItemID(ctx context.Context, itemID string) (*domainavailability.Calendar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cal, ok := r.calendars[itemID]
	if !ok {
		return nil, domainavailability.ErrCalendarNotFound
	}
	return cal, nil
}

func (r *CalendarRepository) Save(ctx context.Context, calendar *domainavailability.Calendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	calendar.Version++
	r.calendars[calendar.ItemID] = calendar
	return nil
}
