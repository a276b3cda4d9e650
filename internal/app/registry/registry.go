// Package registry attaches every application handler to the command and
// query buses.
package registry

import (
	"log/slog"

	"rentdesk/internal/app/commands"
	"rentdesk/internal/app/dto"
	"rentdesk/internal/app/handlers/bookings"
	"rentdesk/internal/app/handlers/ledgerapp"
	"rentdesk/internal/app/handlers/pricingapp"
	"rentdesk/internal/app/handlers/reports"
	"rentdesk/internal/app/handlers/support"
	"rentdesk/internal/app/outbox"
	"rentdesk/internal/app/policies"
	"rentdesk/internal/app/queries"
	"rentdesk/internal/app/uow"
	"rentdesk/internal/infra/storage/s3"
)

type Deps struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Rates      policies.RateSource
	Uploader   s3.Uploader
	Bucket     string
	Logger     *slog.Logger
	Clock      support.Clock
}

func Commands(d Deps) *commands.InMemoryBus {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[bookings.CreateBookingCommand, *bookings.BookingResult](bus, &bookings.CreateBookingHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: d.Encoder, Logger: d.Logger, Clock: d.Clock,
	})
	commands.RegisterHandler[bookings.UpdateBookingCommand, *bookings.BookingResult](bus, &bookings.UpdateBookingHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: d.Encoder, Clock: d.Clock,
	})
	commands.RegisterHandler[bookings.CancelBookingCommand, *dto.Booking](bus, &bookings.CancelBookingHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: d.Encoder, Clock: d.Clock,
	})
	commands.RegisterHandler[bookings.DeleteBookingCommand, *bookings.DeleteBookingResult](bus, &bookings.DeleteBookingHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: d.Encoder, Clock: d.Clock,
	})
	commands.RegisterHandler[ledgerapp.RecordPaymentCommand, *dto.Payment](bus, &ledgerapp.RecordPaymentHandler{
		UoWFactory: d.UoWFactory, Rates: d.Rates, Outbox: d.Outbox, Encoder: d.Encoder, Clock: d.Clock,
	})
	commands.RegisterHandler[ledgerapp.DeletePaymentCommand, *ledgerapp.DeletePaymentResult](bus, &ledgerapp.DeletePaymentHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: d.Encoder, Clock: d.Clock,
	})
	commands.RegisterHandler[ledgerapp.RecordExpenseCommand, *dto.Expense](bus, &ledgerapp.RecordExpenseHandler{
		UoWFactory: d.UoWFactory, Rates: d.Rates, Outbox: d.Outbox, Encoder: d.Encoder, Clock: d.Clock,
	})
	commands.RegisterHandler[pricingapp.SaveConfigCommand, *dto.PriceConfig](bus, &pricingapp.SaveConfigHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: d.Encoder, Clock: d.Clock,
	})
	commands.RegisterHandler[reports.ExportReportCommand, *dto.ReportExport](bus, &reports.ExportReportHandler{
		UoWFactory: d.UoWFactory, Rates: d.Rates, Uploader: d.Uploader, Bucket: d.Bucket, Logger: d.Logger, Clock: d.Clock,
	})
	return bus
}

func Queries(d Deps) *queries.InMemoryBus {
	bus := queries.NewInMemoryBus()
	queries.RegisterHandler[bookings.CheckAvailabilityQuery, *dto.Availability](bus, &bookings.CheckAvailabilityHandler{UoWFactory: d.UoWFactory})
	queries.RegisterHandler[bookings.ListBookingsQuery, *dto.BookingCollection](bus, &bookings.ListBookingsHandler{UoWFactory: d.UoWFactory})
	queries.RegisterHandler[ledgerapp.BookingLedgerQuery, *dto.BookingLedger](bus, &ledgerapp.BookingLedgerHandler{UoWFactory: d.UoWFactory, Rates: d.Rates})
	queries.RegisterHandler[pricingapp.QuoteQuery, *dto.Quote](bus, &pricingapp.QuoteHandler{UoWFactory: d.UoWFactory, Logger: d.Logger})
	queries.RegisterHandler[reports.PropertyReportQuery, *dto.PropertyReport](bus, &reports.PropertyReportHandler{UoWFactory: d.UoWFactory, Rates: d.Rates})
	return bus
}

// ReadOnly reports which commands only read state; the transaction
// middleware opens them without a write lock.
func ReadOnly(cmd commands.Command) uow.TxOptions {
	switch cmd.(type) {
	case reports.ExportReportCommand:
		return uow.TxOptions{ReadOnly: true}
	default:
		return uow.TxOptions{}
	}
}
