package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/shopspring/decimal"
)

// Deduper reports whether an event id was already processed.
type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

// rateEvent accepts both a bare payload and a CloudEvents envelope.
type rateEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	ARSPerUSD decimal.Decimal `json:"ars_per_usd"`
	Source    string          `json:"source"`
	Data      *struct {
		ARSPerUSD decimal.Decimal `json:"ars_per_usd"`
		Source    string          `json:"source"`
	} `json:"data"`
}

// Listener feeds exchange-rate messages from Kafka into the cache.
type Listener struct {
	Cache  *Cache
	Inbox  Deduper
	Logger *slog.Logger
}

func (l *Listener) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var ev rateEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		l.log().WarnContext(ctx, "rate message undecodable", "offset", msg.Offset, "error", err)
		return nil
	}
	rate, source := ev.ARSPerUSD, ev.Source
	if ev.Data != nil {
		rate, source = ev.Data.ARSPerUSD, ev.Data.Source
	}
	if source == "" {
		source = "kafka"
	}
	if ev.ID != "" && l.Inbox != nil {
		seen, err := l.Inbox.Seen(ctx, ev.ID)
		if err != nil {
			return fmt.Errorf("rates: inbox: %w", err)
		}
		if seen {
			return nil
		}
	}
	q, err := l.Cache.Set(rate, source)
	if err != nil {
		l.log().WarnContext(ctx, "rate message rejected", "offset", msg.Offset, "rate", rate.String(), "error", err)
		return nil
	}
	l.log().InfoContext(ctx, "exchange rate updated", "rate", q.Rate.String(), "source", q.Source)
	return nil
}

func (l *Listener) log() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
