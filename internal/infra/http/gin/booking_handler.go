package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"rentdesk/internal/app/commands"
	"rentdesk/internal/app/dto"
	"rentdesk/internal/app/handlers/bookings"
	"rentdesk/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createBookingRequest struct {
	ID             string          `json:"id"`
	PropertyID     string          `json:"property_id"`
	TenantName     string          `json:"tenant_name"`
	CheckIn        Date            `json:"check_in"`
	CheckOut       Date            `json:"check_out"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Guarantee      decimal.Decimal `json:"guarantee"`
	ContractStatus string          `json:"contract_status"`
	Status         string          `json:"status"`
	Notes          string          `json:"notes"`
}

func (h BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := bookings.CreateBookingCommand{
		BookingID:       req.ID,
		PropertyID:      req.PropertyID,
		TenantName:      req.TenantName,
		CheckIn:         req.CheckIn.Time,
		CheckOut:        req.CheckOut.Time,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Guarantee:       req.Guarantee,
		ContractStatus:  req.ContractStatus,
		Status:          req.Status,
		Notes:           req.Notes,
		IdempotencyKeyV: idempotencyKey(c),
	}
	result, err := commands.Dispatch[bookings.CreateBookingCommand, *bookings.BookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// updateBookingRequest uses pointers so omitted fields stay unchanged.
type updateBookingRequest struct {
	TenantName     *string          `json:"tenant_name"`
	CheckIn        *Date            `json:"check_in"`
	CheckOut       *Date            `json:"check_out"`
	Amount         *decimal.Decimal `json:"amount"`
	Currency       *string          `json:"currency"`
	Guarantee      *decimal.Decimal `json:"guarantee"`
	ContractStatus *string          `json:"contract_status"`
	Status         *string          `json:"status"`
	Notes          *string          `json:"notes"`
}

func (h BookingHandler) Update(c *gin.Context) {
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := bookings.UpdateBookingCommand{
		BookingID:      c.Param("id"),
		TenantName:     req.TenantName,
		CheckIn:        req.CheckIn.Ptr(),
		CheckOut:       req.CheckOut.Ptr(),
		Amount:         req.Amount,
		Currency:       req.Currency,
		Guarantee:      req.Guarantee,
		ContractStatus: req.ContractStatus,
		Status:         req.Status,
		Notes:          req.Notes,
	}
	result, err := commands.Dispatch[bookings.UpdateBookingCommand, *bookings.BookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	var req cancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	cmd := bookings.CancelBookingCommand{BookingID: c.Param("id"), Reason: req.Reason}
	result, err := commands.Dispatch[bookings.CancelBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Delete(c *gin.Context) {
	cmd := bookings.DeleteBookingCommand{BookingID: c.Param("id")}
	result, err := commands.Dispatch[bookings.DeleteBookingCommand, *bookings.DeleteBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) List(c *gin.Context) {
	q := bookings.ListBookingsQuery{PropertyID: c.Param("id"), Status: c.Query("status")}
	result, err := queries.Ask[bookings.ListBookingsQuery, *dto.BookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Availability(c *gin.Context) {
	checkIn, err := queryDate(c, "check_in")
	if err != nil {
		badRequest(c, err)
		return
	}
	checkOut, err := queryDate(c, "check_out")
	if err != nil {
		badRequest(c, err)
		return
	}
	q := bookings.CheckAvailabilityQuery{
		PropertyID:       c.Param("id"),
		CheckIn:          checkIn,
		CheckOut:         checkOut,
		ExcludeBookingID: c.Query("exclude"),
	}
	result, err := queries.Ask[bookings.CheckAvailabilityQuery, *dto.Availability](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
