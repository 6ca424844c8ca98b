package commands

import (
	"context"
	"fmt"
)

type rawHandler func(ctx context.Context, cmd Command) (any, error)

// InMemoryBus routes commands by name against an in-process registry.
// Registration happens once at startup; Dispatch is read-only after that.
type InMemoryBus struct {
	handlers map[string]rawHandler
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{handlers: map[string]rawHandler{}}
}

func (b *InMemoryBus) registerRaw(name string, handler rawHandler) {
	if name == "" {
		panic("commands: empty command name")
	}
	if _, dup := b.handlers[name]; dup {
		panic("commands: duplicate registration for " + name)
	}
	b.handlers[name] = handler
}

func (b *InMemoryBus) Dispatch(ctx context.Context, cmd Command) (any, error) {
	h, ok := b.handlers[cmd.Name()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, cmd.Name())
	}
	return h(ctx, cmd)
}

// RegisterHandler binds a typed handler to the bus under the command's name.
func RegisterHandler[C Command, R any](bus *InMemoryBus, name string, handler Handler[C, R]) {
	if bus == nil {
		panic("commands: nil bus")
	}
	bus.registerRaw(name, func(ctx context.Context, raw Command) (any, error) {
		cmd, ok := any(raw).(C)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrCommandType, name)
		}
		return handler.Handle(ctx, cmd)
	})
}
