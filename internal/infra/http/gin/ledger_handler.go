package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"rentdesk/internal/app/commands"
	"rentdesk/internal/app/dto"
	"rentdesk/internal/app/handlers/ledgerapp"
	"rentdesk/internal/app/queries"
)

type LedgerHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h LedgerHandler) BookingLedger(c *gin.Context) {
	rate, err := queryRate(c, "rate")
	if err != nil {
		badRequest(c, err)
		return
	}
	q := ledgerapp.BookingLedgerQuery{BookingID: c.Param("id"), Rate: rate}
	result, err := queries.Ask[ledgerapp.BookingLedgerQuery, *dto.BookingLedger](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type recordPaymentRequest struct {
	ID       string              `json:"id"`
	Amount   decimal.Decimal     `json:"amount"`
	Currency string              `json:"currency"`
	Rate     decimal.NullDecimal `json:"rate"`
	Date     Date                `json:"date"`
	Method   string              `json:"method"`
}

func (h LedgerHandler) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := ledgerapp.RecordPaymentCommand{
		PaymentID:       req.ID,
		BookingID:       c.Param("id"),
		Amount:          req.Amount,
		Currency:        req.Currency,
		Rate:            req.Rate,
		Date:            req.Date.Time,
		Method:          req.Method,
		IdempotencyKeyV: idempotencyKey(c),
	}
	result, err := commands.Dispatch[ledgerapp.RecordPaymentCommand, *dto.Payment](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h LedgerHandler) DeletePayment(c *gin.Context) {
	cmd := ledgerapp.DeletePaymentCommand{PaymentID: c.Param("id")}
	result, err := commands.Dispatch[ledgerapp.DeletePaymentCommand, *ledgerapp.DeletePaymentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type recordExpenseRequest struct {
	ID          string              `json:"id"`
	Scope       string              `json:"scope"`
	PropertyID  string              `json:"property_id"`
	BookingID   string              `json:"booking_id"`
	Amount      decimal.Decimal     `json:"amount"`
	Currency    string              `json:"currency"`
	Rate        decimal.NullDecimal `json:"rate"`
	Date        Date                `json:"date"`
	CategoryID  string              `json:"category_id"`
	Description string              `json:"description"`
}

func (h LedgerHandler) RecordExpense(c *gin.Context) {
	var req recordExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := ledgerapp.RecordExpenseCommand{
		ExpenseID:   req.ID,
		Scope:       req.Scope,
		PropertyID:  req.PropertyID,
		BookingID:   req.BookingID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Rate:        req.Rate,
		Date:        req.Date.Time,
		CategoryID:  req.CategoryID,
		Description: req.Description,
	}
	result, err := commands.Dispatch[ledgerapp.RecordExpenseCommand, *dto.Expense](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ LedgerHTTP = LedgerHandler{}
