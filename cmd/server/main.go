// Command server runs the decision-integrity monitor. main wires the stores,
// layer services, gate, and HTTP router, and keeps the server lifecycle
// small; business logic lives in the internal packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vigil/internal/alerting"
	alertmetrics "vigil/internal/alerting/metrics"
	"vigil/internal/frames"
	"vigil/internal/gate"
	gatemetrics "vigil/internal/gate/metrics"
	"vigil/internal/inquiry"
	jwttoken "vigil/internal/jwt_token"
	"vigil/internal/metric"
	"vigil/internal/monitor"
	"vigil/internal/observers"
	"vigil/internal/outcomes"
	"vigil/internal/platform/config"
	"vigil/internal/platform/httpserver"
	"vigil/internal/platform/logger"
	platformmetrics "vigil/internal/platform/metrics"
	"vigil/internal/platform/postgres"
	platformredis "vigil/internal/platform/redis"
	"vigil/internal/purpose"
	"vigil/internal/registry"
	"vigil/internal/resilience"
	httptransport "vigil/internal/transport/http"
	"vigil/pkg/platform/audit/publisher"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.DevLog)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("fatal", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	// Audit sink: Kafka when brokers are configured, otherwise none. Alerts
	// and gate decisions still log locally either way.
	var auditPublisher *publisher.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		opts := []publisher.Option{publisher.WithLogger(log)}
		if cfg.Kafka.Topic != "" {
			opts = append(opts, publisher.WithTopic(cfg.Kafka.Topic))
		}
		auditPublisher, err = publisher.New(cfg.Kafka.Brokers, opts...)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = auditPublisher.Close(closeCtx)
		}()
	}

	// Stores: Postgres when a DSN is configured, in-memory otherwise.
	var (
		frameEvents    registry.Store[frames.FrameUse]
		questionEvents registry.Store[inquiry.Question]
		outcomeEvents  registry.Store[outcomes.LaggedOutcome]
		usageEvents    registry.Store[purpose.UsageEvent]
		alertStore     alerting.Store
		observerStore  observers.Store
		purposeStore   purpose.PurposeStore
	)
	if db != nil {
		frameEvents = registry.NewPostgres[frames.FrameUse](db, "frame_events")
		questionEvents = registry.NewPostgres[inquiry.Question](db, "question_events")
		outcomeEvents = registry.NewPostgres[outcomes.LaggedOutcome](db, "outcome_events")
		usageEvents = registry.NewPostgres[purpose.UsageEvent](db, "usage_events")
		alertStore = alerting.NewPostgres(db)
		observerStore = observers.NewPostgres(db)
		purposeStore = purpose.NewPostgres(db)
	} else {
		frameEvents = registry.NewMemoryStore[frames.FrameUse]()
		questionEvents = registry.NewMemoryStore[inquiry.Question]()
		outcomeEvents = registry.NewMemoryStore[outcomes.LaggedOutcome]()
		usageEvents = registry.NewMemoryStore[purpose.UsageEvent]()
		alertStore = alerting.NewMemoryStore()
		observerStore = observers.NewMemoryStore()
		purposeStore = purpose.NewMemoryPurposeStore()
	}

	engineOpts := []alerting.Option{
		alerting.WithLogger(log),
		alerting.WithMetrics(alertmetrics.New()),
	}
	if auditPublisher != nil {
		engineOpts = append(engineOpts, alerting.WithAuditPublisher(auditPublisher))
	}
	alertEngine, err := alerting.New(alertStore, alerting.DefaultConfig(), engineOpts...)
	if err != nil {
		return err
	}

	framesSvc, err := frames.New(frameEvents, frames.DefaultConfig(),
		frames.WithLogger(log), frames.WithAlerts(alertEngine))
	if err != nil {
		return err
	}
	inquirySvc, err := inquiry.New(questionEvents, inquiry.DefaultConfig(),
		inquiry.WithLogger(log), inquiry.WithAlerts(alertEngine))
	if err != nil {
		return err
	}
	outcomesSvc, err := outcomes.New(outcomeEvents, outcomes.DefaultConfig(),
		outcomes.WithLogger(log), outcomes.WithAlerts(alertEngine))
	if err != nil {
		return err
	}
	observerOpts := []observers.Option{
		observers.WithLogger(log),
		observers.WithAlerts(alertEngine),
	}
	if auditPublisher != nil {
		observerOpts = append(observerOpts, observers.WithAuditPublisher(auditPublisher))
	}
	observersSvc, err := observers.New(observerStore, observers.DefaultConfig(), observerOpts...)
	if err != nil {
		return err
	}
	purposeOpts := []purpose.Option{
		purpose.WithLogger(log),
		purpose.WithAlerts(alertEngine),
	}
	if auditPublisher != nil {
		purposeOpts = append(purposeOpts, purpose.WithAuditPublisher(auditPublisher))
	}
	purposeSvc, err := purpose.New(purposeStore, usageEvents, purpose.DefaultConfig(), purposeOpts...)
	if err != nil {
		return err
	}

	var counterStore gate.CounterStore
	if redisClient != nil {
		counterStore = gate.NewRedisCounterStore(redisClient.Client)
	} else {
		counterStore = gate.NewMemoryCounterStore()
	}
	gateOpts := []gate.Option{
		gate.WithLogger(log),
		gate.WithMetrics(gatemetrics.New()),
		gate.WithFatigueScorer(observersSvc),
	}
	if auditPublisher != nil {
		gateOpts = append(gateOpts, gate.WithAuditPublisher(auditPublisher))
	}
	gateSvc, err := gate.New(counterStore, gate.DefaultConfig(), gateOpts...)
	if err != nil {
		return err
	}

	aggregator, err := resilience.New(map[metric.Layer]resilience.Scorer{
		metric.LayerFrameworkDominance: framesSvc,
		metric.LayerQuestionEntropy:    inquirySvc,
		metric.LayerOutcomeRisk:        outcomesSvc,
		metric.LayerObserverFatigue:    observersSvc,
		metric.LayerPurposeDrift:       purposeSvc,
	}, resilience.DefaultConfig(), resilience.WithLogger(log))
	if err != nil {
		return err
	}

	monitorSvc, err := monitor.New(gateSvc, framesSvc, inquirySvc, outcomesSvc,
		observersSvc, purposeSvc, aggregator, monitor.WithLogger(log))
	if err != nil {
		return err
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "vigil", "vigil")
	router := httptransport.NewRouter(httptransport.Deps{
		Monitor:      monitorSvc,
		Gate:         gateSvc,
		Frames:       framesSvc,
		Inquiry:      inquirySvc,
		Outcomes:     outcomesSvc,
		Observers:    observersSvc,
		Purpose:      purposeSvc,
		Alerts:       alertEngine,
		Logger:       log,
		Metrics:      platformmetrics.New(),
		JWTValidator: jwttoken.NewJWTServiceAdapter(jwtService),
	})

	srv := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting vigil", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
