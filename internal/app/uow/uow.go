package uow

import (
	"context"

	"gearbook/internal/domain/availability"
	"gearbook/internal/domain/items"
	"gearbook/internal/domain/rental"
	"gearbook/internal/domain/user"
)

// UnitOfWork groups the repositories that must commit atomically for one
// command. Implementations back it with a Mongo session or an in-memory
// snapshot.
type UnitOfWork interface {
	Items() items.Repository
	Rentals() rental.Repository
	Calendars() availability.Repository
	Users() user.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory starts units of work.
type Factory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}
