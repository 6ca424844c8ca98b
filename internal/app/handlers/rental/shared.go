package rental

import (
	"context"

	"gearbook/internal/app/outbox"
	"gearbook/internal/app/uow"
	"gearbook/internal/domain/shared/events"
)

// txScope wraps the unit of work for a handler invocation. When the
// transaction middleware already opened a unit the scope is unmanaged and
// Commit/Close are no-ops; otherwise the scope owns the unit and rolls it
// back unless Commit ran.
type txScope struct {
	unit      uow.UnitOfWork
	managed   bool
	committed bool
}

func openScope(ctx context.Context, factory uow.Factory) (*txScope, context.Context, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return &txScope{unit: unit}, ctx, nil
	}
	if factory == nil {
		return nil, ctx, ErrUnitOfWorkRequired
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, ctx, err
	}
	execCtx := ctx
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	execCtx = uow.WithUnit(execCtx, unit)
	return &txScope{unit: unit, managed: true}, execCtx, nil
}

func (s *txScope) Commit(ctx context.Context) error {
	if !s.managed {
		return nil
	}
	if err := s.unit.Commit(ctx); err != nil {
		return err
	}
	s.committed = true
	return nil
}

func (s *txScope) Close(ctx context.Context) {
	if s.managed && !s.committed {
		_ = s.unit.Rollback(ctx)
	}
}

func drainEvents(ctx context.Context, box outbox.Outbox, enc outbox.EventEncoder, rec *events.EventRecorder) error {
	pending := rec.PendingEvents()
	rec.ClearEvents()
	return outbox.RecordDomainEvents(ctx, box, enc, pending)
}

func orJSONEncoder(enc outbox.EventEncoder) outbox.EventEncoder {
	if enc != nil {
		return enc
	}
	return outbox.JSONEventEncoder{}
}
