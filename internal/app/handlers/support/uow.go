package support

import (
	"context"

	"rentdesk/internal/app/uow"
)

// BeginReadOnlyUnit reuses the unit already bound to ctx or opens a
// read-only one. Release is a no-op for a reused unit.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, func() {}, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := uow.Bind(ctx, unit)
	release := func() {
		_ = unit.Rollback(execCtx)
	}
	return unit, execCtx, release, nil
}
