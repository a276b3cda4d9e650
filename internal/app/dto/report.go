package dto

import (
	"sort"

	"github.com/shopspring/decimal"

	"rentdesk/internal/domain/ledger"
)

type OwnerExpense struct {
	OwnerID   string          `json:"owner_id"`
	AmountARS decimal.Decimal `json:"amount_ars"`
}

type PropertyReport struct {
	PropertyID  string              `json:"property_id"`
	Rate        decimal.NullDecimal `json:"rate"`
	Bookings    []LedgerSummary     `json:"bookings"`
	Unresolved  []string            `json:"unresolved,omitempty"`
	IncomeUSD   decimal.Decimal     `json:"income_usd"`
	IncomeARS   decimal.NullDecimal `json:"income_ars"`
	ExpensesARS decimal.Decimal     `json:"expenses_ars"`
	ExpensesUSD decimal.NullDecimal `json:"expenses_usd"`
	NetARS      decimal.NullDecimal `json:"net_ars"`
	NetUSD      decimal.NullDecimal `json:"net_usd"`
	ByOwner     []OwnerExpense      `json:"expenses_by_owner"`
}

type ReportExport struct {
	PropertyID string `json:"property_id"`
	Bucket     string `json:"bucket"`
	Key        string `json:"key"`
	URL        string `json:"url,omitempty"`
	Size       int64  `json:"size"`
}

func MapPropertyReport(r ledger.PropertyReport, rate decimal.NullDecimal) PropertyReport {
	out := PropertyReport{
		PropertyID:  string(r.PropertyID),
		Rate:        rate,
		Bookings:    make([]LedgerSummary, 0, len(r.Bookings)),
		IncomeUSD:   Round(r.IncomeUSD),
		IncomeARS:   RoundNull(r.IncomeARS),
		ExpensesARS: Round(r.ExpensesARS),
		ExpensesUSD: RoundNull(r.ExpensesUSD),
		NetARS:      RoundNull(r.NetARS),
		NetUSD:      RoundNull(r.NetUSD),
		ByOwner:     make([]OwnerExpense, 0, len(r.ByOwner)),
	}
	for _, s := range r.Bookings {
		out.Bookings = append(out.Bookings, MapSummary(s))
	}
	for _, id := range r.Unresolved {
		out.Unresolved = append(out.Unresolved, string(id))
	}
	for owner, amount := range r.ByOwner {
		out.ByOwner = append(out.ByOwner, OwnerExpense{OwnerID: owner, AmountARS: Round(amount)})
	}
	sort.Slice(out.ByOwner, func(i, j int) bool { return out.ByOwner[i].OwnerID < out.ByOwner[j].OwnerID })
	return out
}
