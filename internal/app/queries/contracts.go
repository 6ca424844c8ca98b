package queries

import (
	"context"
	"errors"
	"fmt"
)

// Query is a read request. Name returns the routing key.
type Query interface {
	Name() string
}

type Handler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

type HandlerFunc[Q Query, R any] func(ctx context.Context, query Q) (R, error)

func (f HandlerFunc[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	return f(ctx, query)
}

// Bus routes queries to registered handlers.
type Bus interface {
	Ask(ctx context.Context, query Query) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("queries: no handler registered")
	ErrQueryType       = errors.New("queries: query type does not match handler")
	ErrResultType      = errors.New("queries: result type mismatch")
	ErrNilBus          = errors.New("queries: nil bus")
)

// Ask runs the query and asserts the result type.
func Ask[Q Query, R any](ctx context.Context, bus Bus, query Q) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Ask(ctx, query)
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}
	typed, ok := res.(R)
	if !ok {
		return zero, ErrResultType
	}
	return typed, nil
}

type rawHandler func(ctx context.Context, query Query) (any, error)

// InMemoryBus is the registry-backed query bus.
type InMemoryBus struct {
	handlers map[string]rawHandler
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{handlers: map[string]rawHandler{}}
}

func (b *InMemoryBus) Ask(ctx context.Context, query Query) (any, error) {
	h, ok := b.handlers[query.Name()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, query.Name())
	}
	return h(ctx, query)
}

// RegisterHandler binds a typed handler under the query's name.
func RegisterHandler[Q Query, R any](bus *InMemoryBus, name string, handler Handler[Q, R]) {
	if bus == nil {
		panic("queries: nil bus")
	}
	if name == "" {
		panic("queries: empty query name")
	}
	if _, dup := bus.handlers[name]; dup {
		panic("queries: duplicate registration for " + name)
	}
	bus.handlers[name] = func(ctx context.Context, raw Query) (any, error) {
		q, ok := any(raw).(Q)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrQueryType, name)
		}
		return handler.Handle(ctx, q)
	}
}
