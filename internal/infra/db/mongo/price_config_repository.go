package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentdesk/internal/domain/pricing"
	"rentdesk/internal/domain/property"
	"rentdesk/internal/domain/shared/daterange"
)

type PriceConfigRepository struct {
	col *mongo.Collection
}

func NewPriceConfigRepository(db *mongo.Database) *PriceConfigRepository {
	return &PriceConfigRepository{col: db.Collection(priceConfigsCollection)}
}

func (r *PriceConfigRepository) ByProperty(ctx context.Context, id property.ID) (*pricing.Config, error) {
	var doc priceConfigDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pricing.ErrConfigNotFound
		}
		return nil, err
	}
	return doc.toConfig(), nil
}

// Save replaces the whole configuration; the last writer wins.
func (r *PriceConfigRepository) Save(ctx context.Context, cfg *pricing.Config) error {
	doc := newPriceConfigDocument(cfg)
	update := bson.M{"$set": doc, "$inc": bson.M{"version": 1}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After).
		SetProjection(bson.M{"version": 1})
	var out struct {
		Version int64 `bson:"version"`
	}
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": doc.ID}, update, opts).Decode(&out); err != nil {
		return err
	}
	cfg.Version = out.Version
	return nil
}

type seasonalRateDocument struct {
	Period periodDocument       `bson:"period"`
	Rate   primitive.Decimal128 `bson:"rate"`
}

type minStayDocument struct {
	Period    periodDocument `bson:"period"`
	MinNights int            `bson:"min_nights"`
}

type discountTierDocument struct {
	MinNights  int                  `bson:"min_nights"`
	Percentage primitive.Decimal128 `bson:"percentage"`
}

type priceConfigDocument struct {
	ID               string                 `bson:"_id"`
	Base             primitive.Decimal128   `bson:"base"`
	SeasonalRates    []seasonalRateDocument `bson:"seasonal_rates"`
	MinStayRules     []minStayDocument      `bson:"min_stay_rules"`
	DefaultMinNights int                    `bson:"default_min_nights"`
	DiscountTiers    []discountTierDocument `bson:"discount_tiers"`
	UpdatedAt        time.Time              `bson:"updated_at"`
	Version          int64                  `bson:"version,omitempty"`
}

func newPriceConfigDocument(cfg *pricing.Config) priceConfigDocument {
	doc := priceConfigDocument{
		ID:               string(cfg.PropertyID),
		Base:             toDecimal128(cfg.Base),
		DefaultMinNights: cfg.DefaultMinNights,
		UpdatedAt:        cfg.UpdatedAt.UTC(),
		SeasonalRates:    make([]seasonalRateDocument, 0, len(cfg.SeasonalRates)),
		MinStayRules:     make([]minStayDocument, 0, len(cfg.MinStayRules)),
		DiscountTiers:    make([]discountTierDocument, 0, len(cfg.DiscountTiers)),
	}
	for _, s := range cfg.SeasonalRates {
		doc.SeasonalRates = append(doc.SeasonalRates, seasonalRateDocument{Period: periodDocument{From: s.From, To: s.To}, Rate: toDecimal128(s.Rate)})
	}
	for _, m := range cfg.MinStayRules {
		doc.MinStayRules = append(doc.MinStayRules, minStayDocument{Period: periodDocument{From: m.From, To: m.To}, MinNights: m.MinNights})
	}
	for _, t := range cfg.DiscountTiers {
		doc.DiscountTiers = append(doc.DiscountTiers, discountTierDocument{MinNights: t.MinNights, Percentage: toDecimal128(t.Percentage)})
	}
	return doc
}

func (d priceConfigDocument) toConfig() *pricing.Config {
	cfg := &pricing.Config{
		PropertyID:       property.ID(d.ID),
		Base:             fromDecimal128(d.Base),
		DefaultMinNights: d.DefaultMinNights,
		UpdatedAt:        d.UpdatedAt.UTC(),
		Version:          d.Version,
	}
	for _, s := range d.SeasonalRates {
		cfg.SeasonalRates = append(cfg.SeasonalRates, pricing.SeasonalRate{Period: s.Period.toPeriod(), Rate: fromDecimal128(s.Rate)})
	}
	for _, m := range d.MinStayRules {
		cfg.MinStayRules = append(cfg.MinStayRules, pricing.MinStayRule{Period: m.Period.toPeriod(), MinNights: m.MinNights})
	}
	for _, t := range d.DiscountTiers {
		cfg.DiscountTiers = append(cfg.DiscountTiers, pricing.DiscountTier{MinNights: t.MinNights, Percentage: fromDecimal128(t.Percentage)})
	}
	return cfg
}

func (p periodDocument) toPeriod() daterange.Period {
	return daterange.Period{From: p.From.UTC(), To: p.To.UTC()}
}

var _ pricing.Repository = (*PriceConfigRepository)(nil)
