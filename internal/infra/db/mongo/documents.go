package mongo

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	bookingsCollection     = "agg_booking"
	paymentsCollection     = "ledger_payments"
	expensesCollection     = "ledger_expenses"
	priceConfigsCollection = "pricing_configs"
)

func bsonKeys(fields ...string) bson.D {
	out := make(bson.D, 0, len(fields))
	for _, f := range fields {
		out = append(out, bson.E{Key: f, Value: 1})
	}
	return out
}

// Money is stored as Decimal128 so amounts keep their exact digits.
func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		// decimal strings always parse unless they exceed 34 digits.
		v, _ = primitive.ParseDecimal128(d.Round(10).String())
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func toNullDecimal128(d decimal.NullDecimal) *primitive.Decimal128 {
	if !d.Valid {
		return nil
	}
	v := toDecimal128(d.Decimal)
	return &v
}

func fromNullDecimal128(v *primitive.Decimal128) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(fromDecimal128(*v))
}

type rangeDocument struct {
	CheckIn  time.Time `bson:"check_in"`
	CheckOut time.Time `bson:"check_out"`
}

type periodDocument struct {
	From time.Time `bson:"from"`
	To   time.Time `bson:"to"`
}
