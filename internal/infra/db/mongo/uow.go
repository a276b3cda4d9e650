package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentdesk/internal/app/uow"
	domainbooking "rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/ledger"
	"rentdesk/internal/domain/pricing"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	BookingRepo     domainbooking.Repository
	PaymentRepo     ledger.PaymentRepository
	ExpenseRepo     ledger.ExpenseRepository
	PriceConfigRepo pricing.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// NewFactory builds repositories over db.
func NewFactory(db *mongo.Database) *Factory {
	return &Factory{
		DB:              db,
		BookingRepo:     NewBookingRepository(db),
		PaymentRepo:     NewPaymentRepository(db),
		ExpenseRepo:     NewExpenseRepository(db),
		PriceConfigRepo: NewPriceConfigRepository(db),
	}
}

// Begin opens a session. Writable units also start a transaction; read-only
// units read outside one.
func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	u := &Unit{factory: f, session: session}
	if opts.ReadOnly {
		return u, nil
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	u.inTxn = true
	return u, nil
}

type Unit struct {
	factory *Factory
	session mongo.Session
	inTxn   bool
	done    bool
}

func (u *Unit) Bookings() domainbooking.Repository { return u.factory.BookingRepo }
func (u *Unit) Payments() ledger.PaymentRepository { return u.factory.PaymentRepo }
func (u *Unit) Expenses() ledger.ExpenseRepository { return u.factory.ExpenseRepo }
func (u *Unit) PriceConfigs() pricing.Repository   { return u.factory.PriceConfigRepo }

func (u *Unit) Commit(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	defer u.session.EndSession(ctx)
	if !u.inTxn {
		return nil
	}
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	defer u.session.EndSession(ctx)
	if !u.inTxn {
		return nil
	}
	return u.session.AbortTransaction(ctx)
}

// InjectContext makes the session visible to the repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var (
	_ uow.UoWFactory      = (*Factory)(nil)
	_ uow.ContextInjector = (*Unit)(nil)
)
