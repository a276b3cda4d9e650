package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "rentdesk/internal/domain/booking"
	"rentdesk/internal/domain/ledger"
	"rentdesk/internal/domain/property"
	"rentdesk/internal/domain/shared/money"
)

type PaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{col: db.Collection(paymentsCollection)}
}

func (r *PaymentRepository) ByID(ctx context.Context, id ledger.PaymentID) (*ledger.Payment, error) {
	var doc paymentDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledger.ErrPaymentNotFound
		}
		return nil, err
	}
	p := doc.toPayment()
	return &p, nil
}

func (r *PaymentRepository) ListByBooking(ctx context.Context, bookingID domainbooking.BookingID) ([]ledger.Payment, error) {
	return r.find(ctx, bson.M{"booking_id": string(bookingID)})
}

func (r *PaymentRepository) ListByBookings(ctx context.Context, ids []domainbooking.BookingID) ([]ledger.Payment, error) {
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, string(id))
	}
	if len(raw) == 0 {
		return []ledger.Payment{}, nil
	}
	return r.find(ctx, bson.M{"booking_id": bson.M{"$in": raw}})
}

func (r *PaymentRepository) find(ctx context.Context, filter bson.M) ([]ledger.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := make([]ledger.Payment, 0)
	for cur.Next(ctx) {
		var doc paymentDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toPayment())
	}
	return out, cur.Err()
}

func (r *PaymentRepository) Save(ctx context.Context, p *ledger.Payment) error {
	doc := newPaymentDocument(*p)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *PaymentRepository) Delete(ctx context.Context, id ledger.PaymentID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ledger.ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepository) DeleteByBooking(ctx context.Context, bookingID domainbooking.BookingID) (int, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"booking_id": string(bookingID)})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

type paymentDocument struct {
	ID              string                `bson:"_id"`
	BookingID       string                `bson:"booking_id"`
	AmountUSD       primitive.Decimal128  `bson:"amount_usd"`
	EnteredAmount   primitive.Decimal128  `bson:"entered_amount"`
	EnteredCurrency string                `bson:"entered_currency"`
	RateAtEntry     *primitive.Decimal128 `bson:"rate_at_entry,omitempty"`
	Date            time.Time             `bson:"date"`
	Method          string                `bson:"method,omitempty"`
	CreatedAt       time.Time             `bson:"created_at"`
}

func newPaymentDocument(p ledger.Payment) paymentDocument {
	return paymentDocument{
		ID:              string(p.ID),
		BookingID:       string(p.BookingID),
		AmountUSD:       toDecimal128(p.Amount),
		EnteredAmount:   toDecimal128(p.EnteredAmount),
		EnteredCurrency: string(p.EnteredCurrency),
		RateAtEntry:     toNullDecimal128(p.RateAtEntry),
		Date:            p.Date.UTC(),
		Method:          p.Method,
		CreatedAt:       p.CreatedAt.UTC(),
	}
}

func (d paymentDocument) toPayment() ledger.Payment {
	return ledger.Payment{
		ID:              ledger.PaymentID(d.ID),
		BookingID:       domainbooking.BookingID(d.BookingID),
		Amount:          fromDecimal128(d.AmountUSD),
		EnteredAmount:   fromDecimal128(d.EnteredAmount),
		EnteredCurrency: money.Currency(d.EnteredCurrency),
		RateAtEntry:     fromNullDecimal128(d.RateAtEntry),
		Date:            d.Date.UTC(),
		Method:          d.Method,
		CreatedAt:       d.CreatedAt.UTC(),
	}
}

type ExpenseRepository struct {
	col *mongo.Collection
}

func NewExpenseRepository(db *mongo.Database) *ExpenseRepository {
	return &ExpenseRepository{col: db.Collection(expensesCollection)}
}

func (r *ExpenseRepository) ListByProperty(ctx context.Context, propertyID property.ID) ([]ledger.Expense, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"property_id": string(propertyID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := make([]ledger.Expense, 0)
	for cur.Next(ctx) {
		var doc expenseDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toExpense())
	}
	return out, cur.Err()
}

func (r *ExpenseRepository) Save(ctx context.Context, e *ledger.Expense) error {
	doc := newExpenseDocument(*e)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *ExpenseRepository) DeleteByBooking(ctx context.Context, bookingID domainbooking.BookingID) (int, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"scope": string(ledger.ScopeBooking), "booking_id": string(bookingID)})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

type expenseDocument struct {
	ID                string                `bson:"_id"`
	Scope             string                `bson:"scope"`
	PropertyID        string                `bson:"property_id"`
	BookingID         string                `bson:"booking_id,omitempty"`
	AmountARS         primitive.Decimal128  `bson:"amount_ars"`
	OriginalUSDAmount *primitive.Decimal128 `bson:"original_usd_amount,omitempty"`
	RateAtEntry       *primitive.Decimal128 `bson:"rate_at_entry,omitempty"`
	Date              time.Time             `bson:"date"`
	CategoryID        string                `bson:"category_id,omitempty"`
	Description       string                `bson:"description,omitempty"`
	CreatedAt         time.Time             `bson:"created_at"`
}

func newExpenseDocument(e ledger.Expense) expenseDocument {
	return expenseDocument{
		ID:                string(e.ID),
		Scope:             string(e.Scope),
		PropertyID:        string(e.PropertyID),
		BookingID:         string(e.BookingID),
		AmountARS:         toDecimal128(e.Amount),
		OriginalUSDAmount: toNullDecimal128(e.OriginalUSDAmount),
		RateAtEntry:       toNullDecimal128(e.RateAtEntry),
		Date:              e.Date.UTC(),
		CategoryID:        e.CategoryID,
		Description:       e.Description,
		CreatedAt:         e.CreatedAt.UTC(),
	}
}

func (d expenseDocument) toExpense() ledger.Expense {
	return ledger.Expense{
		ID:                ledger.ExpenseID(d.ID),
		Scope:             ledger.Scope(d.Scope),
		PropertyID:        property.ID(d.PropertyID),
		BookingID:         domainbooking.BookingID(d.BookingID),
		Amount:            fromDecimal128(d.AmountARS),
		OriginalUSDAmount: fromNullDecimal128(d.OriginalUSDAmount),
		RateAtEntry:       fromNullDecimal128(d.RateAtEntry),
		Date:              d.Date.UTC(),
		CategoryID:        d.CategoryID,
		Description:       d.Description,
		CreatedAt:         d.CreatedAt.UTC(),
	}
}

var (
	_ ledger.PaymentRepository = (*PaymentRepository)(nil)
	_ ledger.ExpenseRepository = (*ExpenseRepository)(nil)
)
