package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"rentdesk/internal/app/commands"
	"rentdesk/internal/app/middleware"
	appoutbox "rentdesk/internal/app/outbox"
	"rentdesk/internal/app/queries"
	"rentdesk/internal/app/registry"
	"rentdesk/internal/app/uow"
	"rentdesk/internal/infra/broker/kafka"
	"rentdesk/internal/infra/config"
	mongostore "rentdesk/internal/infra/db/mongo"
	ginserver "rentdesk/internal/infra/http/gin"
	"rentdesk/internal/infra/inbox"
	"rentdesk/internal/infra/obs"
	infraoutbox "rentdesk/internal/infra/outbox"
	"rentdesk/internal/infra/rates"
	"rentdesk/internal/infra/storage/memory"
	"rentdesk/internal/infra/storage/s3"
)

const eventSource = "app://rentdesk"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("rentdesk stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("rentdesk stopped")
}

// storage bundles the mode-specific persistence pieces.
type storage struct {
	factory  uow.UoWFactory
	idem     middleware.IdempotencyStore
	outbox   appoutbox.Outbox
	checks   map[string]obs.ReadinessCheck
	workers  []func(ctx context.Context) error
	shutdown []func(ctx context.Context) error
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	rateCache := rates.NewCache(cfg.RateTTL)
	if cfg.ARSPerUSD.Valid {
		if _, err := rateCache.Set(cfg.ARSPerUSD.Decimal, "config"); err != nil {
			return err
		}
	}

	var st *storage
	var err error
	switch cfg.StorageMode {
	case config.StorageMongo:
		st, err = mongoStorage(ctx, cfg, logger, rateCache)
	default:
		st = memoryStorage(cfg, logger)
	}
	if st != nil {
		defer st.close(logger)
	}
	if err != nil {
		return err
	}

	var uploader s3.Uploader = s3.NoopUploader{}
	if cfg.ReportExport {
		client, err := s3.NewClient(s3.Options{
			Endpoint:  cfg.S3Endpoint,
			UseSSL:    cfg.S3UseSSL,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Logger:    logger,
		})
		if err != nil {
			return fmt.Errorf("report export: %w", err)
		}
		uploader = client
	}

	deps := registry.Deps{
		UoWFactory: st.factory,
		Outbox:     st.outbox,
		Encoder:    appoutbox.JSONEventEncoder{Source: eventSource},
		Rates:      rateCache,
		Uploader:   uploader,
		Bucket:     cfg.S3Bucket,
		Logger:     logger,
	}
	commandBus := middleware.ChainCommands(
		registry.Commands(deps),
		middleware.CommandLogging(logger),
		middleware.Validation(middleware.SelfValidator{}),
		middleware.Idempotency(st.idem, nil),
		middleware.Transaction(st.factory, registry.ReadOnly),
		middleware.OutboxFlush(st.outbox),
	)
	queryBus := middleware.ChainQueries(
		registry.Queries(deps),
		middleware.QueryLogging(logger),
		middleware.QueryValidation(middleware.SelfValidator{}),
	)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Checks: st.checks}, httpHandlers(commandBus, queryBus, rateCache))

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range st.workers {
		g.Go(func() error {
			if err := w(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	return g.Wait()
}

func (s *storage) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, fn := range s.shutdown {
		if err := fn(ctx); err != nil {
			logger.Warn("shutdown step failed", "error", err)
		}
	}
}

func httpHandlers(cmds commands.Bus, qs queries.Bus, cache *rates.Cache) ginserver.Handlers {
	return ginserver.Handlers{
		Booking: ginserver.BookingHandler{Commands: cmds, Queries: qs},
		Ledger:  ginserver.LedgerHandler{Commands: cmds, Queries: qs},
		Pricing: ginserver.PricingHandler{Commands: cmds, Queries: qs},
		Report:  ginserver.ReportHandler{Commands: cmds, Queries: qs},
		Rates:   ginserver.RatesHandler{Store: cache},
	}
}

// memoryStorage keeps everything in process. Flushed events are logged
// since there is no broker.
func memoryStorage(cfg config.Config, logger *slog.Logger) *storage {
	box := memory.NewOutbox(func(ctx context.Context, records []appoutbox.EventRecord) error {
		for _, rec := range records {
			logger.InfoContext(ctx, "event published", "event", rec.Name, "aggregate", rec.Aggregate, "event_id", rec.ID)
		}
		return nil
	})
	return &storage{
		factory: memory.NewFactory(),
		idem:    memory.NewIdempotencyStore(cfg.IdempotencyTTL),
		outbox:  box,
	}
}

func mongoStorage(ctx context.Context, cfg config.Config, logger *slog.Logger, cache *rates.Cache) (*storage, error) {
	client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	st := &storage{
		factory:  mongostore.NewFactory(client.DB),
		checks:   map[string]obs.ReadinessCheck{"mongo": client.Ping},
		shutdown: []func(context.Context) error{client.Close},
	}
	if err := client.EnsureIndexes(ctx); err != nil {
		return st, fmt.Errorf("mongo indexes: %w", err)
	}
	if st.idem, err = mongostore.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL); err != nil {
		return st, fmt.Errorf("idempotency store: %w", err)
	}
	outboxStore, err := infraoutbox.NewStore(ctx, client.DB)
	if err != nil {
		return st, fmt.Errorf("outbox store: %w", err)
	}
	st.outbox = outboxStore
	inboxStore, err := inbox.NewStore(ctx, client.DB, cfg.KafkaGroupID)
	if err != nil {
		return st, fmt.Errorf("inbox store: %w", err)
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		return st, fmt.Errorf("kafka producer: %w", err)
	}
	st.shutdown = append([]func(context.Context) error{func(context.Context) error { return producer.Close() }}, st.shutdown...)
	worker := &infraoutbox.Worker{
		Store:       outboxStore,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Source:      eventSource,
		Backoff:     cfg.RetryBackoff,
		Logger:      logger,
	}

	listener := &rates.Listener{Cache: cache, Inbox: inboxStore, Logger: logger}
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, nil, listener)
	if err != nil {
		return st, fmt.Errorf("kafka consumer: %w", err)
	}
	st.shutdown = append([]func(context.Context) error{func(context.Context) error { return consumer.Close() }}, st.shutdown...)
	topic := cfg.KafkaTopicPrefix + cfg.KafkaRatesTopic
	st.workers = append(st.workers, worker.Run, func(ctx context.Context) error {
		return consumer.Run(ctx, []string{topic})
	})
	return st, nil
}
