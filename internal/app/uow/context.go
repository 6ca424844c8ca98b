package uow

import (
	"context"
	"errors"
)

var ErrMissing = errors.New("uow: unit of work missing from context")

type ctxKey struct{}

// WithUnit stores the unit of work in the context for downstream handlers.
func WithUnit(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, ctxKey{}, unit)
}

// FromContext retrieves the unit of work placed by the transaction middleware.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	val := ctx.Value(ctxKey{})
	if val == nil {
		return nil, false
	}
	unit, ok := val.(UnitOfWork)
	return unit, ok
}
