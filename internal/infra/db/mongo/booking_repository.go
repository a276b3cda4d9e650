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
	"rentdesk/internal/domain/property"
	"rentdesk/internal/domain/shared/daterange"
	"rentdesk/internal/domain/shared/money"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(bookingsCollection)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) ListByProperty(ctx context.Context, propertyID property.ID) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "range.check_in", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"property_id": string(propertyID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := make([]*domainbooking.Booking, 0)
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

// Save upserts with an optimistic version filter: a concurrent writer that
// saved first makes this call fail with ErrStaleBooking.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainbooking.ErrStaleBooking
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainbooking.ErrStaleBooking
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.BookingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainbooking.ErrBookingNotFound
	}
	return nil
}

type bookingDocument struct {
	ID             string               `bson:"_id"`
	PropertyID     string               `bson:"property_id"`
	TenantName     string               `bson:"tenant_name"`
	Range          rangeDocument        `bson:"range"`
	Amount         primitive.Decimal128 `bson:"amount"`
	Currency       string               `bson:"currency"`
	Guarantee      primitive.Decimal128 `bson:"guarantee"`
	ContractStatus string               `bson:"contract_status"`
	Status         string               `bson:"status"`
	Notes          string               `bson:"notes,omitempty"`
	CreatedAt      time.Time            `bson:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at"`
	Version        int64                `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:             string(b.ID),
		PropertyID:     string(b.PropertyID),
		TenantName:     b.TenantName,
		Range:          rangeDocument{CheckIn: b.Range.CheckIn.UTC(), CheckOut: b.Range.CheckOut.UTC()},
		Amount:         toDecimal128(b.Amount),
		Currency:       string(b.Currency),
		Guarantee:      toDecimal128(b.Guarantee),
		ContractStatus: string(b.ContractStatus),
		Status:         string(b.Status),
		Notes:          b.Notes,
		CreatedAt:      b.CreatedAt.UTC(),
		UpdatedAt:      b.UpdatedAt.UTC(),
		Version:        b.Version,
	}
}

// toAggregate keeps stored values as they are, including a legacy empty
// status, which the domain reads as active.
func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:             domainbooking.BookingID(d.ID),
		PropertyID:     property.ID(d.PropertyID),
		TenantName:     d.TenantName,
		Range:          daterange.DateRange{CheckIn: d.Range.CheckIn.UTC(), CheckOut: d.Range.CheckOut.UTC()},
		Amount:         fromDecimal128(d.Amount),
		Currency:       money.Currency(d.Currency),
		Guarantee:      fromDecimal128(d.Guarantee),
		ContractStatus: domainbooking.ContractStatus(d.ContractStatus),
		Status:         domainbooking.Status(d.Status),
		Notes:          d.Notes,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
		Version:        d.Version,
	}
}
