package availability

import (
	"context"
	"errors"
	"time"

	"gearbook/internal/app/dto"
	"gearbook/internal/app/handlers/support"
	"gearbook/internal/app/policies"
	"gearbook/internal/app/uow"
	domainavailability "gearbook/internal/domain/availability"
	domainrange "gearbook/internal/domain/shared/daterange"
)

const (
	getCalendarName  = "availability.calendar.get"
	blockDatesName   = "availability.block"
	unblockDatesName = "availability.unblock"
)

var ErrUnitOfWorkRequired = errors.New("availability: unit of work required")

type GetCalendarQuery struct {
	ItemID string
	From   time.Time
	To     time.Time
	// CallerID decides whether hold references are visible.
	CallerID string
}

func (q GetCalendarQuery) Name() string { return getCalendarName }

type GetCalendarHandler struct {
	UoWFactory uow.Factory
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.CalendarView, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CalendarView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	window, err := domainrange.New(q.From, q.To)
	if err != nil {
		return dto.CalendarView{}, err
	}
	item, err := unit.Items().ByID(ctx, q.ItemID)
	if err != nil {
		return dto.CalendarView{}, err
	}
	cal, err := unit.Calendars().ByItemID(ctx, q.ItemID)
	if err != nil {
		if errors.Is(err, domainavailability.ErrCalendarNotFound) {
			return dto.NewCalendarView(q.ItemID, nil, false), nil
		}
		return dto.CalendarView{}, err
	}
	return dto.NewCalendarView(q.ItemID, cal.HeldDays(window), item.IsOwnedBy(q.CallerID)), nil
}

// BlockDatesCommand takes a range out of circulation without a rental, for
// maintenance or personal use.
type BlockDatesCommand struct {
	ItemID  string
	OwnerID string
	Start   time.Time
	End     time.Time
	// BlockRef names the block so it can be lifted later.
	BlockRef string
}

func (c BlockDatesCommand) Name() string { return blockDatesName }

func (c BlockDatesCommand) Authorize(p policies.Principal) error {
	if !p.Is(c.OwnerID) {
		return policies.ErrUnauthorized
	}
	return nil
}

type UnblockDatesCommand struct {
	ItemID   string
	OwnerID  string
	BlockRef string
}

func (c UnblockDatesCommand) Name() string { return unblockDatesName }

func (c UnblockDatesCommand) Authorize(p policies.Principal) error {
	if !p.Is(c.OwnerID) {
		return policies.ErrUnauthorized
	}
	return nil
}

type BlockDatesResult struct {
	ItemID   string `json:"item_id"`
	BlockRef string `json:"block_ref"`
}

type BlockDatesHandler struct {
	UoWFactory uow.Factory
}

func (h *BlockDatesHandler) HandleBlock(ctx context.Context, cmd BlockDatesCommand) (*BlockDatesResult, error) {
	unit, ctx, commit, rollback, err := h.open(ctx)
	if err != nil {
		return nil, err
	}
	defer rollback()

	item, err := unit.Items().ByID(ctx, cmd.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.IsOwnedBy(cmd.OwnerID) {
		return nil, policies.ErrUnauthorized
	}
	period, err := domainrange.New(cmd.Start, cmd.End)
	if err != nil {
		return nil, err
	}
	cal, err := unit.Calendars().ByItemID(ctx, cmd.ItemID)
	if err != nil {
		if !errors.Is(err, domainavailability.ErrCalendarNotFound) {
			return nil, err
		}
		cal = domainavailability.NewCalendar(cmd.ItemID)
	}
	if err := cal.BlockDays(period, cmd.BlockRef); err != nil {
		return nil, err
	}
	if err := unit.Calendars().Save(ctx, cal); err != nil {
		return nil, err
	}
	if err := commit(); err != nil {
		return nil, err
	}
	return &BlockDatesResult{ItemID: cmd.ItemID, BlockRef: cmd.BlockRef}, nil
}

func (h *BlockDatesHandler) HandleUnblock(ctx context.Context, cmd UnblockDatesCommand) (*BlockDatesResult, error) {
	unit, ctx, commit, rollback, err := h.open(ctx)
	if err != nil {
		return nil, err
	}
	defer rollback()

	item, err := unit.Items().ByID(ctx, cmd.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.IsOwnedBy(cmd.OwnerID) {
		return nil, policies.ErrUnauthorized
	}
	cal, err := unit.Calendars().ByItemID(ctx, cmd.ItemID)
	if err != nil {
		return nil, err
	}
	if err := cal.Release(cmd.BlockRef); err != nil {
		return nil, err
	}
	if err := unit.Calendars().Save(ctx, cal); err != nil {
		return nil, err
	}
	if err := commit(); err != nil {
		return nil, err
	}
	return &BlockDatesResult{ItemID: cmd.ItemID, BlockRef: cmd.BlockRef}, nil
}

// open mirrors the rental handlers' scope handling: reuse the middleware
// unit when present, otherwise own the transaction.
func (h *BlockDatesHandler) open(ctx context.Context) (uow.UnitOfWork, context.Context, func() error, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, func() error { return nil }, func() {}, nil
	}
	if h.UoWFactory == nil {
		return nil, ctx, nil, nil, ErrUnitOfWorkRequired
	}
	unit, err := h.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, ctx, nil, nil, err
	}
	execCtx := ctx
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	execCtx = uow.WithUnit(execCtx, unit)
	committed := false
	commit := func() error {
		if err := unit.Commit(execCtx); err != nil {
			return err
		}
		committed = true
		return nil
	}
	rollback := func() {
		if !committed {
			_ = unit.Rollback(execCtx)
		}
	}
	return unit, execCtx, commit, rollback, nil
}
