package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rentdesk/internal/domain/property"
	"rentdesk/internal/domain/shared/daterange"
	"rentdesk/internal/domain/shared/events"
	"rentdesk/internal/domain/shared/money"
)

var (
	ErrInvalidState     = errors.New("booking: invalid state transition")
	ErrInvalidStatus    = errors.New("booking: unknown status")
	ErrBookingNotFound  = errors.New("booking: not found")
	ErrBookingConflict  = errors.New("booking: dates overlap an existing booking")
	ErrNegativeAmount   = errors.New("booking: amount cannot be negative")
	ErrInvalidContract  = errors.New("booking: unknown contract status")
	ErrTenantRequired   = errors.New("booking: tenant name required")
	ErrBookingIDMissing = errors.New("booking: id required")
	ErrStaleBooking     = errors.New("booking: modified concurrently, reload and retry")
)

type BookingID string

// Status drives participation in conflict checks and ledger totals.
// The zero value is treated as active.
type Status string

const (
	StatusActive    Status = "active"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
)

// ParseStatus maps a raw status to the enum; an empty value means active.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case "", StatusActive:
		return StatusActive, nil
	case StatusPending, StatusCancelled:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Normalize replaces the unset status with StatusActive.
func (s Status) Normalize() Status {
	if s == "" {
		return StatusActive
	}
	return s
}

func (s Status) IsActive() bool {
	return s.Normalize() == StatusActive
}

type ContractStatus string

const (
	ContractNone   ContractStatus = "none"
	ContractDraft  ContractStatus = "draft"
	ContractSent   ContractStatus = "sent"
	ContractSigned ContractStatus = "signed"
)

func ParseContractStatus(raw string) (ContractStatus, error) {
	switch c := ContractStatus(strings.ToLower(strings.TrimSpace(raw))); c {
	case "":
		return ContractNone, nil
	case ContractNone, ContractDraft, ContractSent, ContractSigned:
		return c, nil
	default:
		return "", ErrInvalidContract
	}
}

type Booking struct {
	ID             BookingID
	PropertyID     property.ID
	TenantName     string
	Range          daterange.DateRange
	Amount         decimal.Decimal
	Currency       money.Currency
	Guarantee      decimal.Decimal
	ContractStatus ContractStatus
	Status         Status
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	ListByProperty(ctx context.Context, propertyID property.ID) ([]*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id BookingID) error
}

type CreateParams struct {
	ID             BookingID
	PropertyID     property.ID
	TenantName     string
	Range          daterange.DateRange
	Amount         decimal.Decimal
	Currency       money.Currency
	Guarantee      decimal.Decimal
	ContractStatus ContractStatus
	Status         Status
	Notes          string
	CreatedAt      time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.ID == "" {
		return nil, ErrBookingIDMissing
	}
	if err := params.PropertyID.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.TenantName) == "" {
		return nil, ErrTenantRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if !params.Currency.Valid() {
		return nil, money.ErrInvalidCurrency
	}
	if params.Amount.IsNegative() || params.Guarantee.IsNegative() {
		return nil, ErrNegativeAmount
	}
	contract := params.ContractStatus
	if contract == "" {
		contract = ContractNone
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:             params.ID,
		PropertyID:     params.PropertyID,
		TenantName:     strings.TrimSpace(params.TenantName),
		Range:          params.Range,
		Amount:         params.Amount,
		Currency:       params.Currency,
		Guarantee:      params.Guarantee,
		ContractStatus: contract,
		Status:         params.Status.Normalize(),
		Notes:          params.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	b.Record(BookingCreated{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		Range:      b.Range,
		Amount:     b.Amount,
		Currency:   b.Currency,
		At:         now,
	})
	return b, nil
}

// Changes lists the editable fields; nil pointers are left untouched.
type Changes struct {
	TenantName     *string
	Range          *daterange.DateRange
	Amount         *decimal.Decimal
	Currency       *money.Currency
	Guarantee      *decimal.Decimal
	ContractStatus *ContractStatus
	Status         *Status
	Notes          *string
}

// Update applies an edit. Conflict detection is the caller's job since it
// needs the other bookings of the property.
func (b *Booking) Update(ch Changes, now time.Time) error {
	if b.Status.Normalize() == StatusCancelled {
		return ErrInvalidState
	}
	next := *b
	if ch.TenantName != nil {
		if strings.TrimSpace(*ch.TenantName) == "" {
			return ErrTenantRequired
		}
		next.TenantName = strings.TrimSpace(*ch.TenantName)
	}
	if ch.Range != nil {
		if err := ch.Range.Validate(); err != nil {
			return err
		}
		next.Range = *ch.Range
	}
	if ch.Amount != nil {
		if ch.Amount.IsNegative() {
			return ErrNegativeAmount
		}
		next.Amount = *ch.Amount
	}
	if ch.Currency != nil {
		if !ch.Currency.Valid() {
			return money.ErrInvalidCurrency
		}
		next.Currency = *ch.Currency
	}
	if ch.Guarantee != nil {
		if ch.Guarantee.IsNegative() {
			return ErrNegativeAmount
		}
		next.Guarantee = *ch.Guarantee
	}
	if ch.ContractStatus != nil {
		next.ContractStatus = *ch.ContractStatus
	}
	if ch.Status != nil {
		next.Status = ch.Status.Normalize()
	}
	if ch.Notes != nil {
		next.Notes = *ch.Notes
	}

	b.TenantName = next.TenantName
	b.Range = next.Range
	b.Amount = next.Amount
	b.Currency = next.Currency
	b.Guarantee = next.Guarantee
	b.ContractStatus = next.ContractStatus
	b.Status = next.Status
	b.Notes = next.Notes
	b.UpdatedAt = now.UTC()
	b.Record(BookingUpdated{BookingID: b.ID, PropertyID: b.PropertyID, Range: b.Range, Status: b.Status, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	if b.Status.Normalize() == StatusCancelled {
		return ErrInvalidState
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, PropertyID: b.PropertyID, Reason: reason, At: b.UpdatedAt})
	return nil
}

// MarkDeleted records the deletion event; the repository removes the record.
func (b *Booking) MarkDeleted(now time.Time) {
	b.Record(BookingDeleted{BookingID: b.ID, PropertyID: b.PropertyID, At: now.UTC()})
}
