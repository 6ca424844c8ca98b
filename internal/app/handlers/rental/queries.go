package rental

import (
	"context"

	"gearbook/internal/app/dto"
	"gearbook/internal/app/handlers/support"
	"gearbook/internal/app/policies"
	"gearbook/internal/app/uow"
)

const (
	getRentalName     = "rental.get"
	renterRentalsName = "rental.list.renter"
	ownerRentalsName  = "rental.list.owner"
)

type GetRentalQuery struct {
	RentalID string
	CallerID string
}

func (q GetRentalQuery) Name() string { return getRentalName }

type RenterRentalsQuery struct {
	RenterID string
}

func (q RenterRentalsQuery) Name() string { return renterRentalsName }

func (q RenterRentalsQuery) Authorize(p policies.Principal) error {
	if p.Is(q.RenterID) || p.IsAdmin() {
		return nil
	}
	return policies.ErrUnauthorized
}

type OwnerRentalsQuery struct {
	OwnerID string
}

func (q OwnerRentalsQuery) Name() string { return ownerRentalsName }

func (q OwnerRentalsQuery) Authorize(p policies.Principal) error {
	if p.Is(q.OwnerID) || p.IsAdmin() {
		return nil
	}
	return policies.ErrUnauthorized
}

type QueryHandler struct {
	UoWFactory uow.Factory
}

// HandleGet returns one rental, visible only to its parties and admins.
func (h *QueryHandler) HandleGet(ctx context.Context, q GetRentalQuery) (dto.RentalView, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.RentalView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	r, err := unit.Rentals().ByID(ctx, q.RentalID)
	if err != nil {
		return dto.RentalView{}, err
	}
	if q.CallerID != r.RenterID && q.CallerID != r.OwnerID {
		if p, ok := policies.PrincipalFromContext(ctx); !ok || !p.IsAdmin() {
			return dto.RentalView{}, policies.ErrUnauthorized
		}
	}
	return dto.NewRentalView(r), nil
}

func (h *QueryHandler) HandleRenterList(ctx context.Context, q RenterRentalsQuery) ([]dto.RentalView, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	rs, err := unit.Rentals().ListByRenter(ctx, q.RenterID)
	if err != nil {
		return nil, err
	}
	return dto.NewRentalViews(rs), nil
}

func (h *QueryHandler) HandleOwnerList(ctx context.Context, q OwnerRentalsQuery) ([]dto.RentalView, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	rs, err := unit.Rentals().ListByOwner(ctx, q.OwnerID)
	if err != nil {
		return nil, err
	}
	return dto.NewRentalViews(rs), nil
}
