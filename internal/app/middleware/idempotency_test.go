package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"gearbook/internal/app/commands"
	"gearbook/internal/app/policies"
	domainuser "gearbook/internal/domain/user"
)

type mapStore struct {
	records map[string]IdempotencyRecord
}

func newMapStore() *mapStore {
	return &mapStore{records: map[string]IdempotencyRecord{}}
}

func (s *mapStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := s.records[key]
	return rec, ok, nil
}

func (s *mapStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s.records[rec.Key] = rec
	return nil
}

type echoCommand struct {
	Value string
	Key   string
}

func (c echoCommand) Name() string { return "test.echo" }

func (c echoCommand) IdempotencyKey() string { return c.Key }

func (c echoCommand) ResultPrototype() any { return &echoResult{} }

type echoResult struct {
	Value string `json:"value"`
	Calls int    `json:"calls"`
}

type plainCommand struct{}

func (plainCommand) Name() string { return "test.plain" }

func newEchoBus(calls *int, fail error) *commands.InMemoryBus {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, echoCommand{}.Name(), commands.HandlerFunc[echoCommand, *echoResult](
		func(_ context.Context, cmd echoCommand) (*echoResult, error) {
			*calls++
			if fail != nil {
				return nil, fail
			}
			return &echoResult{Value: cmd.Value, Calls: *calls}, nil
		}))
	return bus
}

func TestIdempotencyReplaysSuccess(t *testing.T) {
	var calls int
	store := newMapStore()
	bus := ChainCommands(newEchoBus(&calls, nil), Idempotency(store, nil))
	ctx := context.Background()

	first, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "a", Key: "k1"})
	require.NoError(t, err)
	require.Equal(t, 1, first.Calls)

	second, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "a", Key: "k1"})
	require.NoError(t, err)
	require.Equal(t, 1, calls, "replay must not re-run the handler")
	require.Equal(t, first.Value, second.Value)
}

func TestIdempotencyReplaysFailure(t *testing.T) {
	var calls int
	store := newMapStore()
	boom := errors.New("processor down")
	bus := ChainCommands(newEchoBus(&calls, boom), Idempotency(store, nil))
	ctx := context.Background()

	_, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Key: "k1"})
	require.Error(t, err)

	_, err = commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Key: "k1"})
	require.Error(t, err)
	require.Equal(t, boom.Error(), err.Error())
	require.Equal(t, 1, calls)
}

func TestIdempotencySkipsEmptyKeys(t *testing.T) {
	var calls int
	bus := ChainCommands(newEchoBus(&calls, nil), Idempotency(newMapStore(), nil))
	ctx := context.Background()

	for range 2 {
		_, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "a"})
		require.NoError(t, err)
	}
	require.Equal(t, 2, calls)
}

func TestIdempotencyIgnoresPlainCommands(t *testing.T) {
	var calls int
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, plainCommand{}.Name(), commands.HandlerFunc[plainCommand, struct{}](
		func(context.Context, plainCommand) (struct{}, error) {
			calls++
			return struct{}{}, nil
		}))
	chained := ChainCommands(bus, Idempotency(newMapStore(), nil))

	for range 2 {
		_, err := chained.Dispatch(context.Background(), plainCommand{})
		require.NoError(t, err)
	}
	require.Equal(t, 2, calls)
}

type guardedCommand struct {
	OwnerID string
}

func (guardedCommand) Name() string { return "test.guarded" }

func (c guardedCommand) Authorize(p policies.Principal) error {
	if !p.Is(c.OwnerID) {
		return policies.ErrUnauthorized
	}
	return nil
}

func TestAuthorizationMiddleware(t *testing.T) {
	var calls int
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, guardedCommand{}.Name(), commands.HandlerFunc[guardedCommand, struct{}](
		func(context.Context, guardedCommand) (struct{}, error) {
			calls++
			return struct{}{}, nil
		}))
	chained := ChainCommands(bus, Authorization(policies.SelfAuthorizer{}))

	t.Run("no principal", func(t *testing.T) {
		_, err := chained.Dispatch(context.Background(), guardedCommand{OwnerID: "u1"})
		require.ErrorIs(t, err, policies.ErrUnauthorized)
		require.Zero(t, calls)
	})

	t.Run("wrong principal", func(t *testing.T) {
		ctx := policies.WithPrincipal(context.Background(), policies.Principal{UserID: "u2"})
		_, err := chained.Dispatch(ctx, guardedCommand{OwnerID: "u1"})
		require.ErrorIs(t, err, policies.ErrUnauthorized)
	})

	t.Run("matching principal", func(t *testing.T) {
		ctx := policies.WithPrincipal(context.Background(), policies.Principal{UserID: "u1"})
		_, err := chained.Dispatch(ctx, guardedCommand{OwnerID: "u1"})
		require.NoError(t, err)
		require.Equal(t, 1, calls)
	})

	t.Run("admin role satisfies owner checks elsewhere", func(t *testing.T) {
		p := policies.Principal{UserID: "staff", Roles: []domainuser.Role{domainuser.RoleAdmin}}
		require.True(t, p.IsAdmin())
	})
}

type checkedCommand struct {
	ItemID string
}

func (checkedCommand) Name() string { return "test.checked" }

func (c checkedCommand) Validate() error {
	if c.ItemID == "" {
		return errors.New("item id required")
	}
	return nil
}

func TestValidationMiddleware(t *testing.T) {
	var calls int
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, checkedCommand{}.Name(), commands.HandlerFunc[checkedCommand, struct{}](
		func(context.Context, checkedCommand) (struct{}, error) {
			calls++
			return struct{}{}, nil
		}))
	chained := ChainCommands(bus, Validation(SelfValidation()))

	_, err := chained.Dispatch(context.Background(), checkedCommand{})
	require.EqualError(t, err, "item id required")
	require.Zero(t, calls)

	_, err = chained.Dispatch(context.Background(), checkedCommand{ItemID: "item-1"})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}
