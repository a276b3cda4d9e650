package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"rentdesk/internal/app/commands"
	"rentdesk/internal/app/dto"
	"rentdesk/internal/app/handlers/support"
	"rentdesk/internal/app/policies"
	"rentdesk/internal/app/uow"
	"rentdesk/internal/domain/property"
	"rentdesk/internal/domain/shared/money"
	"rentdesk/internal/infra/storage/s3"
)

const exportReportKey = "report.export"

var ErrExportUnavailable = errors.New("reports: export storage not configured")

type ExportReportCommand struct {
	PropertyID string
	Rate       decimal.NullDecimal
}

func (c ExportReportCommand) Key() string { return exportReportKey }

func (c ExportReportCommand) Validate() error {
	if err := property.ID(c.PropertyID).Validate(); err != nil {
		return err
	}
	return money.CheckRate(c.Rate)
}

// ExportReportHandler renders the property report as CSV and uploads it.
type ExportReportHandler struct {
	UoWFactory uow.UoWFactory
	Rates      policies.RateSource
	Uploader   s3.Uploader
	Bucket     string
	Logger     *slog.Logger
	Clock      support.Clock
}

func (h *ExportReportHandler) Handle(ctx context.Context, cmd ExportReportCommand) (*dto.ReportExport, error) {
	if h.Uploader == nil {
		return nil, ErrExportUnavailable
	}
	rate, err := policies.ResolveRate(ctx, h.Rates, cmd.Rate)
	if err != nil {
		return nil, err
	}
	unit, execCtx, release, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer release()

	report, err := buildReport(execCtx, unit, property.ID(cmd.PropertyID), rate)
	if err != nil {
		return nil, err
	}
	body, err := RenderCSV(dto.MapPropertyReport(report, rate))
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("reports/%s/%s.csv", cmd.PropertyID, h.Clock.Now().Format("20060102T150405Z"))
	url, err := h.Uploader.Upload(ctx, key, bytes.NewReader(body), "text/csv")
	if err != nil {
		return nil, fmt.Errorf("export report: %w", err)
	}
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "report exported", "property_id", cmd.PropertyID, "key", key, "bytes", len(body))
	}
	return &dto.ReportExport{PropertyID: cmd.PropertyID, Bucket: h.Bucket, Key: key, URL: url, Size: int64(len(body))}, nil
}

// RenderCSV writes one row per booking followed by the property totals.
func RenderCSV(r dto.PropertyReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	rows := [][]string{{"booking_id", "currency", "amount", "total_paid_usd", "balance", "balance_usd", "balance_ars"}}
	for _, b := range r.Bookings {
		rows = append(rows, []string{
			b.BookingID, b.Currency, b.Amount.StringFixed(2), b.TotalPaid.StringFixed(2),
			b.Balance.StringFixed(2), nullString(b.BalanceUSD), nullString(b.BalanceARS),
		})
	}
	for _, id := range r.Unresolved {
		rows = append(rows, []string{id, "ARS", "", "", "", "", ""})
	}
	rows = append(rows,
		[]string{},
		[]string{"income_usd", r.IncomeUSD.StringFixed(2)},
		[]string{"income_ars", nullString(r.IncomeARS)},
		[]string{"expenses_ars", r.ExpensesARS.StringFixed(2)},
		[]string{"expenses_usd", nullString(r.ExpensesUSD)},
		[]string{"net_ars", nullString(r.NetARS)},
		[]string{"net_usd", nullString(r.NetUSD)},
	)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}

var _ commands.Handler[ExportReportCommand, *dto.ReportExport] = (*ExportReportHandler)(nil)
