package memory

import (
	"context"
	"errors"
	"sync"

	"rentdesk/internal/app/uow"
	domainbooking "rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/ledger"
	"rentdesk/internal/domain/pricing"
)

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory hands out units over shared in-memory repositories. Writable
// units hold a process-wide lock until commit or rollback, so the conflict
// check and the save of a booking cannot interleave with another writer.
// Nothing is undone on rollback.
type Factory struct {
	BookingRepo     domainbooking.Repository
	PaymentRepo     ledger.PaymentRepository
	ExpenseRepo     ledger.ExpenseRepository
	PriceConfigRepo pricing.Repository

	writeMu sync.Mutex
}

// NewFactory wires fresh repositories.
func NewFactory() *Factory {
	return &Factory{
		BookingRepo:     NewBookingRepository(),
		PaymentRepo:     NewPaymentRepository(),
		ExpenseRepo:     NewExpenseRepository(),
		PriceConfigRepo: NewPriceConfigRepository(),
	}
}

func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.BookingRepo == nil || f.PaymentRepo == nil || f.ExpenseRepo == nil || f.PriceConfigRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	u := &Unit{factory: f}
	if !opts.ReadOnly {
		f.writeMu.Lock()
		u.locked = true
	}
	return u, nil
}

type Unit struct {
	factory *Factory
	locked  bool
	once    sync.Once
}

func (u *Unit) Bookings() domainbooking.Repository { return u.factory.BookingRepo }
func (u *Unit) Payments() ledger.PaymentRepository { return u.factory.PaymentRepo }
func (u *Unit) Expenses() ledger.ExpenseRepository { return u.factory.ExpenseRepo }
func (u *Unit) PriceConfigs() pricing.Repository   { return u.factory.PriceConfigRepo }

func (u *Unit) Commit(ctx context.Context) error {
	u.release()
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.release()
	return nil
}

func (u *Unit) release() {
	u.once.Do(func() {
		if u.locked {
			u.factory.writeMu.Unlock()
		}
	})
}

var _ uow.UoWFactory = (*Factory)(nil)
