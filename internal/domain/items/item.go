package items

import (
	"context"
	"errors"
	"strings"

	"gearbook/internal/domain/pricing"
	"gearbook/internal/domain/shared/events"
)

var (
	ErrItemNotFound = errors.New("items: item not found")
	ErrInvalidItem  = errors.New("items: invalid item")
)

// Item is a piece of equipment listed for rent. Pricing lives on the item as
// a rate card; availability lives in its own calendar aggregate.
type Item struct {
	events.EventRecorder

	ID          string
	OwnerID     string
	Title       string
	Description string
	Category    string
	RateCard    pricing.RateCard
	InstantBook bool
	Archived    bool
	Version     int64
}

func NewItem(id, ownerID, title string, card pricing.RateCard) (*Item, error) {
	if id == "" || ownerID == "" || strings.TrimSpace(title) == "" {
		return nil, ErrInvalidItem
	}
	if card.Currency == "" || card.DailyRateCents <= 0 && card.HourlyRateCents <= 0 {
		return nil, ErrInvalidItem
	}
	return &Item{
		ID:       id,
		OwnerID:  ownerID,
		Title:    strings.TrimSpace(title),
		RateCard: card,
	}, nil
}

func (i *Item) IsOwnedBy(userID string) bool {
	return i.OwnerID == userID
}

// Rentable reports whether new rental requests may target the item.
func (i *Item) Rentable() bool {
	return !i.Archived
}

type Repository interface {
	ByID(ctx context.Context, id string) (*Item, error)
	Save(ctx context.Context, item *Item) error
	ListByOwner(ctx context.Context, ownerID string) ([]*Item, error)
}
