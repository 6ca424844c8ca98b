package memory

import (
	"context"
	"errors"

	"gearbook/internal/app/uow"
	domainavailability "gearbook/internal/domain/availability"
	domainitems "gearbook/internal/domain/items"
	domainrental "gearbook/internal/domain/rental"
	domainuser "gearbook/internal/domain/user"
)

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires the in-memory repositories into a unit-of-work boundary.
// No isolation is provided; the abstraction matches the application ports.
type Factory struct {
	ItemsRepo     domainitems.Repository
	RentalsRepo   domainrental.Repository
	CalendarsRepo domainavailability.Repository
	UsersRepo     domainuser.Repository
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ItemsRepo == nil || f.RentalsRepo == nil || f.CalendarsRepo == nil || f.UsersRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		items:     f.ItemsRepo,
		rentals:   f.RentalsRepo,
		calendars: f.CalendarsRepo,
		users:     f.UsersRepo,
	}, nil
}

type Unit struct {
	items     domainitems.Repository
	rentals   domainrental.Repository
	calendars domainavailability.Repository
	users     domainuser.Repository
}

func (u *Unit) Items() domainitems.Repository { return u.items }

func (u *Unit) Rentals() domainrental.Repository { return u.rentals }

func (u *Unit) Calendars() domainavailability.Repository { return u.calendars }

func (u *Unit) Users() domainuser.Repository { return u.users }

func (u *Unit) Commit(ctx context.Context) error { return nil }

func (u *Unit) Rollback(ctx context.Context) error { return nil }
