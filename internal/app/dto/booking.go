package dto

import (
	"time"

	"github.com/shopspring/decimal"

	domainbooking "rentdesk/internal/domain/booking"
)

type Booking struct {
	ID             string          `json:"id"`
	PropertyID     string          `json:"property_id"`
	TenantName     string          `json:"tenant_name"`
	CheckIn        time.Time       `json:"check_in"`
	CheckOut       time.Time       `json:"check_out"`
	Nights         int             `json:"nights"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Guarantee      decimal.Decimal `json:"guarantee"`
	ContractStatus string          `json:"contract_status"`
	Status         string          `json:"status"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type BookingCollection struct {
	Items []Booking `json:"items"`
}

// Turnover flags a booking checking out on the candidate's check-in day.
type Turnover struct {
	BookingID  string    `json:"booking_id"`
	TenantName string    `json:"tenant_name"`
	CheckOut   time.Time `json:"check_out"`
}

type Availability struct {
	PropertyID      string    `json:"property_id"`
	CheckIn         time.Time `json:"check_in"`
	CheckOut        time.Time `json:"check_out"`
	Available       bool      `json:"available"`
	ConflictsWith   *Booking  `json:"conflicts_with,omitempty"`
	SameDayTurnover *Turnover `json:"same_day_turnover,omitempty"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	return Booking{
		ID:             string(b.ID),
		PropertyID:     string(b.PropertyID),
		TenantName:     b.TenantName,
		CheckIn:        b.Range.CheckIn,
		CheckOut:       b.Range.CheckOut,
		Nights:         b.Range.Nights(),
		Amount:         Round(b.Amount),
		Currency:       string(b.Currency),
		Guarantee:      Round(b.Guarantee),
		ContractStatus: string(b.ContractStatus),
		Status:         string(b.Status.Normalize()),
		Notes:          b.Notes,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func MapBookings(items []*domainbooking.Booking) BookingCollection {
	out := BookingCollection{Items: make([]Booking, 0, len(items))}
	for _, b := range items {
		if b == nil {
			continue
		}
		out.Items = append(out.Items, MapBooking(b))
	}
	return out
}

func MapTurnover(b *domainbooking.Booking) *Turnover {
	if b == nil {
		return nil
	}
	return &Turnover{BookingID: string(b.ID), TenantName: b.TenantName, CheckOut: b.Range.CheckOut}
}
