package earnings

import (
	"context"

	"gearbook/internal/app/dto"
	"gearbook/internal/app/handlers/support"
	"gearbook/internal/app/policies"
	"gearbook/internal/app/uow"
	"gearbook/internal/domain/settlement"
)

const ownerEarningsName = "earnings.owner"

type OwnerEarningsQuery struct {
	OwnerID string
}

func (q OwnerEarningsQuery) Name() string { return ownerEarningsName }

func (q OwnerEarningsQuery) Authorize(p policies.Principal) error {
	if p.Is(q.OwnerID) || p.IsAdmin() {
		return nil
	}
	return policies.ErrUnauthorized
}

type OwnerEarningsHandler struct {
	UoWFactory uow.Factory
	Reconciler settlement.Reconciler
}

// Handle folds the owner's rentals into paid-out and pending totals.
func (h *OwnerEarningsHandler) Handle(ctx context.Context, q OwnerEarningsQuery) (dto.EarningsView, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.EarningsView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	rentals, err := unit.Rentals().ListByOwner(ctx, q.OwnerID)
	if err != nil {
		return dto.EarningsView{}, err
	}
	summary, err := h.Reconciler.Summarize(q.OwnerID, rentals)
	if err != nil {
		return dto.EarningsView{}, err
	}
	return dto.NewEarningsView(summary), nil
}
