package uow

import (
	"context"

	"rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/ledger"
	"rentdesk/internal/domain/pricing"
)

// UnitOfWork exposes the repositories bound to one transaction.
type UnitOfWork interface {
	Bookings() booking.Repository
	Payments() ledger.PaymentRepository
	Expenses() ledger.ExpenseRepository
	PriceConfigs() pricing.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}
