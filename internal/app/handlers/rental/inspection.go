package rental

import (
	"context"
	"time"

	"gearbook/internal/app/outbox"
	"gearbook/internal/app/policies"
	"gearbook/internal/app/uow"
	domainrental "gearbook/internal/domain/rental"
)

const submitInspectionName = "rental.inspection.submit"

// SubmitInspectionCommand records a handover condition report. The pickup
// report activates the rental; the return report completes it. Either party
// may file it, but the waiver must carry the renter's signature.
type SubmitInspectionCommand struct {
	RentalID    string
	SubmittedBy string
	Stage       domainrental.Stage
	PhotoKeys   []string
	Notes       string
	WaiverBy    string
	WaiverAt    time.Time
}

func (c SubmitInspectionCommand) Name() string { return submitInspectionName }

func (c SubmitInspectionCommand) Authorize(p policies.Principal) error {
	if !p.Is(c.SubmittedBy) {
		return policies.ErrUnauthorized
	}
	return nil
}

type SubmitInspectionResult struct {
	RentalID string `json:"rental_id"`
	Status   string `json:"status"`
}

type SubmitInspectionHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *SubmitInspectionHandler) Handle(ctx context.Context, cmd SubmitInspectionCommand) (*SubmitInspectionResult, error) {
	scope, ctx, err := openScope(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer scope.Close(ctx)
	unit := scope.unit

	r, err := unit.Rentals().ByID(ctx, cmd.RentalID)
	if err != nil {
		return nil, err
	}
	if cmd.SubmittedBy != r.RenterID && cmd.SubmittedBy != r.OwnerID {
		return nil, policies.ErrUnauthorized
	}
	if cmd.WaiverBy != "" && cmd.WaiverBy != r.RenterID {
		return nil, domainrental.ErrIncompleteInspection
	}

	now := h.now()
	insp := &domainrental.Inspection{
		Stage:       cmd.Stage,
		PhotoKeys:   cmd.PhotoKeys,
		Notes:       cmd.Notes,
		Waiver:      domainrental.WaiverSignature{SignedBy: cmd.WaiverBy, SignedAt: cmd.WaiverAt},
		SubmittedBy: cmd.SubmittedBy,
		SubmittedAt: now,
	}
	if err := r.RecordInspection(insp, now); err != nil {
		return nil, err
	}
	if err := unit.Rentals().Save(ctx, r); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, orJSONEncoder(h.Encoder), &r.EventRecorder); err != nil {
		return nil, err
	}
	if err := scope.Commit(ctx); err != nil {
		return nil, err
	}
	return &SubmitInspectionResult{RentalID: r.ID, Status: string(r.Status)}, nil
}

func (h *SubmitInspectionHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}
