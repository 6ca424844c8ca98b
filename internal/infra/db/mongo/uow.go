package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gearbook/internal/app/uow"
	domainavailability "gearbook/internal/domain/availability"
	domainitems "gearbook/internal/domain/items"
	domainrental "gearbook/internal/domain/rental"
	domainuser "gearbook/internal/domain/user"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	ItemsRepo     domainitems.Repository
	RentalsRepo   domainrental.Repository
	CalendarsRepo domainavailability.Repository
	UsersRepo     domainuser.Repository
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:   session,
		items:     f.ItemsRepo,
		rentals:   f.RentalsRepo,
		calendars: f.CalendarsRepo,
		users:     f.UsersRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

	items     domainitems.Repository
	rentals   domainrental.Repository
	calendars domainavailability.Repository
	users     domainuser.Repository
}

func (u *Unit) Items() domainitems.Repository { return u.items }

func (u *Unit) Rentals() domainrental.Repository { return u.rentals }

func (u *Unit) Calendars() domainavailability.Repository { return u.calendars }

func (u *Unit) Users() domainuser.Repository { return u.users }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext makes the Mongo session visible to downstream repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
