package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentdesk/internal/app/commands"
	"rentdesk/internal/app/handlers/bookings"
	"rentdesk/internal/app/handlers/ledgerapp"
	"rentdesk/internal/app/handlers/reports"
	"rentdesk/internal/app/middleware"
	"rentdesk/internal/app/queries"
	"rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/ledger"
	"rentdesk/internal/domain/pricing"
	"rentdesk/internal/domain/property"
	"rentdesk/internal/domain/shared/daterange"
	"rentdesk/internal/domain/shared/money"
	"rentdesk/internal/infra/storage/s3"
)

var errorStatuses = []struct {
	status int
	errs   []error
}{
	{http.StatusNotFound, []error{
		booking.ErrBookingNotFound, ledger.ErrPaymentNotFound, ledger.ErrExpenseNotFound, pricing.ErrConfigNotFound,
	}},
	{http.StatusConflict, []error{
		booking.ErrBookingConflict, booking.ErrStaleBooking, booking.ErrInvalidState, middleware.ErrKeyReused,
	}},
	{http.StatusUnprocessableEntity, []error{
		pricing.ErrMinimumStayNotMet, pricing.ErrNoPricingRules, ledger.ErrRateRequired,
	}},
	{http.StatusServiceUnavailable, []error{
		reports.ErrExportUnavailable, s3.ErrNotConfigured,
	}},
	{http.StatusBadRequest, []error{
		daterange.ErrInvalidRange, money.ErrInvalidCurrency, money.ErrInvalidRate, money.ErrCurrencyMismatch,
		booking.ErrInvalidStatus, booking.ErrNegativeAmount, booking.ErrInvalidContract, booking.ErrTenantRequired,
		booking.ErrBookingIDMissing, ledger.ErrInvalidAmount, ledger.ErrDateRequired, ledger.ErrInvalidScope,
		ledger.ErrBookingIDMissing, property.ErrPropertyRequired, pricing.ErrNegativeBase,
		pricing.ErrInvalidDiscountTiers, ledgerapp.ErrPropertyMismatch, commands.ErrInvalidCommand,
		queries.ErrInvalidQuery,
	}},
}

func statusFor(err error) int {
	for _, group := range errorStatuses {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.status
			}
		}
	}
	return http.StatusInternalServerError
}

// writeError renders err as {"error": ...}. Booking conflicts also carry
// the blocking booking.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	body := gin.H{"error": err.Error()}
	var conflict *bookings.ConflictError
	if errors.As(err, &conflict) {
		body["conflict"] = gin.H{
			"booking_id": string(conflict.BookingID),
			"check_in":   conflict.Range.CheckIn,
			"check_out":  conflict.Range.CheckOut,
		}
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
