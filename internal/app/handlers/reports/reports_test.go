package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/ledger"
	"rentdesk/internal/domain/property"
	"rentdesk/internal/domain/shared/daterange"
	"rentdesk/internal/domain/shared/money"
	"rentdesk/internal/infra/storage/memory"
)

var now = time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

type recordingUploader struct {
	key         string
	contentType string
	body        []byte
	err         error
}

func (u *recordingUploader) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.key, u.contentType, u.body = key, contentType, body
	return "https://files.example/" + key, nil
}

func seed(t *testing.T, factory *memory.Factory, id string, day int, amount string, currency money.Currency, cancelled bool) {
	t.Helper()
	ctx := context.Background()
	stay, err := daterange.New(time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, day+3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(id),
		PropertyID: "casa-1",
		TenantName: "Mara",
		Range:      stay,
		Amount:     dec(amount),
		Currency:   currency,
		CreatedAt:  now,
	})
	require.NoError(t, err)
	if cancelled {
		require.NoError(t, b.Cancel("owner request", now))
	}
	require.NoError(t, factory.BookingRepo.Save(ctx, b))
}

func pay(t *testing.T, factory *memory.Factory, id, bookingID, usd string) {
	t.Helper()
	require.NoError(t, factory.PaymentRepo.Save(context.Background(), &ledger.Payment{
		ID:              ledger.PaymentID(id),
		BookingID:       domainbooking.BookingID(bookingID),
		Amount:          dec(usd),
		EnteredAmount:   dec(usd),
		EnteredCurrency: money.USD,
		Date:            now,
		CreatedAt:       now,
	}))
}

func fixture(t *testing.T) *memory.Factory {
	t.Helper()
	factory := memory.NewFactory()
	seed(t, factory, "bk-usd", 2, "700", money.USD, false)
	seed(t, factory, "bk-ars", 10, "100000", money.ARS, false)
	seed(t, factory, "bk-gone", 20, "900", money.USD, true)
	pay(t, factory, "p1", "bk-usd", "200")
	pay(t, factory, "p2", "bk-ars", "50")
	pay(t, factory, "p3", "bk-gone", "999")
	require.NoError(t, factory.ExpenseRepo.Save(context.Background(), &ledger.Expense{
		ID:         "e1",
		Scope:      ledger.ScopeProperty,
		PropertyID: property.ID("casa-1"),
		Amount:     dec("30000"),
		Date:       now,
		CreatedAt:  now,
	}))
	return factory
}

func TestPropertyReportWithRate(t *testing.T) {
	h := &PropertyReportHandler{UoWFactory: fixture(t)}
	r, err := h.Handle(context.Background(), PropertyReportQuery{PropertyID: "casa-1", Rate: money.Rate(dec("1000"))})
	require.NoError(t, err)

	require.Len(t, r.Bookings, 2)
	assert.Empty(t, r.Unresolved)
	assert.Equal(t, "bk-usd", r.Bookings[0].BookingID)
	requireDecimal(t, "500", r.Bookings[0].Balance)
	requireDecimal(t, "50000", r.Bookings[1].Balance)

	requireDecimal(t, "250", r.IncomeUSD)
	requireDecimal(t, "250000", r.IncomeARS.Decimal)
	requireDecimal(t, "30000", r.ExpensesARS)
	requireDecimal(t, "30", r.ExpensesUSD.Decimal)
	requireDecimal(t, "220000", r.NetARS.Decimal)
	requireDecimal(t, "220", r.NetUSD.Decimal)
}

func TestPropertyReportWithoutRateLeavesArsUnresolved(t *testing.T) {
	h := &PropertyReportHandler{UoWFactory: fixture(t)}
	r, err := h.Handle(context.Background(), PropertyReportQuery{PropertyID: "casa-1"})
	require.NoError(t, err)

	require.Len(t, r.Bookings, 1)
	assert.Equal(t, []string{"bk-ars"}, r.Unresolved)
	requireDecimal(t, "250", r.IncomeUSD)
	assert.False(t, r.IncomeARS.Valid)
	assert.False(t, r.NetUSD.Valid)
}

func TestExportUploadsCSV(t *testing.T) {
	up := &recordingUploader{}
	h := &ExportReportHandler{
		UoWFactory: fixture(t),
		Uploader:   up,
		Bucket:     "rentdesk-reports",
		Clock:      func() time.Time { return now },
	}
	out, err := h.Handle(context.Background(), ExportReportCommand{PropertyID: "casa-1", Rate: money.Rate(dec("1000"))})
	require.NoError(t, err)

	assert.Equal(t, "reports/casa-1/20250601T090000Z.csv", out.Key)
	assert.Equal(t, up.key, out.Key)
	assert.Equal(t, "text/csv", up.contentType)
	assert.Equal(t, "rentdesk-reports", out.Bucket)
	assert.Equal(t, "https://files.example/"+out.Key, out.URL)
	assert.Equal(t, int64(len(up.body)), out.Size)

	r := csv.NewReader(bytes.NewReader(up.body))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "booking_id", rows[0][0])
	assert.Equal(t, []string{"bk-usd", "USD", "700.00", "200.00", "500.00", "500.00", "500000.00"}, rows[1])
	assert.Equal(t, []string{"net_usd", "220.00"}, rows[len(rows)-1])
}

func TestExportWithoutStorage(t *testing.T) {
	h := &ExportReportHandler{UoWFactory: memory.NewFactory()}
	_, err := h.Handle(context.Background(), ExportReportCommand{PropertyID: "casa-1"})
	require.ErrorIs(t, err, ErrExportUnavailable)
}

func TestExportWrapsUploadFailure(t *testing.T) {
	boom := errors.New("bucket offline")
	h := &ExportReportHandler{UoWFactory: fixture(t), Uploader: &recordingUploader{err: boom}}
	_, err := h.Handle(context.Background(), ExportReportCommand{PropertyID: "casa-1", Rate: money.Rate(dec("1000"))})
	require.ErrorIs(t, err, boom)
}

func TestRenderCSVListsUnresolvedBookings(t *testing.T) {
	h := &PropertyReportHandler{UoWFactory: fixture(t)}
	r, err := h.Handle(context.Background(), PropertyReportQuery{PropertyID: "casa-1"})
	require.NoError(t, err)

	body, err := RenderCSV(*r)
	require.NoError(t, err)
	assert.Contains(t, string(body), "bk-ars,ARS,,,,,\n")
	assert.Contains(t, string(body), "income_ars,\n")
}
