package alerting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vigil/internal/alerting/metrics"
	"vigil/internal/metric"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/platform/audit"
	"vigil/pkg/requestcontext"
)

// Engine raises threshold alerts and suppresses duplicates. It never resolves
// on its own: resolution is an explicit collaborator action.
type Engine struct {
	store          Store
	config         Config
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
}

// Option configures the Engine.
type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(e *Engine) {
		e.auditPublisher = publisher
	}
}

// New creates an alert engine over the given store.
func New(store Store, config Config, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("alert store is required")
	}

	e := &Engine{
		store:  store,
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Raise emits an alert for a breached threshold unless a duplicate for the
// same (layer, dedup key) is still open or was detected inside the dedup
// window. Returns the alert and whether it was newly raised.
func (e *Engine) Raise(ctx context.Context, layer metric.Layer, dedupKey string, magnitude, threshold float64, severity metric.Severity) (*Alert, bool, error) {
	if !layer.IsValid() {
		return nil, false, dErrors.Newf(dErrors.CodeInvalidInput, "invalid layer %q", layer)
	}

	now := requestcontext.Now(ctx)

	prev, err := e.store.Latest(ctx, layer, dedupKey)
	if err != nil {
		return nil, false, err
	}
	if prev != nil && e.suppresses(prev, now) {
		if e.metrics != nil {
			e.metrics.IncrementSuppressed(string(layer))
		}
		e.logger.DebugContext(ctx, "alert suppressed",
			"layer", string(layer),
			"dedup_key", dedupKey,
		)
		return prev, false, nil
	}

	alert := &Alert{
		ID:         uuid.New(),
		Layer:      layer,
		Magnitude:  magnitude,
		Threshold:  threshold,
		DetectedAt: now,
		DedupKey:   dedupKey,
	}
	if err := e.store.Insert(ctx, alert); err != nil {
		return nil, false, err
	}

	if e.metrics != nil {
		e.metrics.IncrementRaised(string(layer))
	}
	e.logger.WarnContext(ctx, "alert raised",
		"layer", string(layer),
		"magnitude", magnitude,
		"threshold", threshold,
		"severity", string(severity),
	)
	e.emitAudit(ctx, audit.ActionAlertRaised, dedupKey, severity)

	return alert, true, nil
}

// suppresses reports whether prev blocks a new alert at time now.
func (e *Engine) suppresses(prev *Alert, now time.Time) bool {
	if !prev.Resolved() {
		return true
	}
	window := e.config.Window(prev.Layer)
	return window > 0 && now.Sub(prev.DetectedAt) < window
}

// Resolve closes a single alert by id.
func (e *Engine) Resolve(ctx context.Context, id uuid.UUID) error {
	alert, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if alert == nil {
		return dErrors.New(dErrors.CodeNotFound, "alert not found")
	}
	if alert.Resolved() {
		return dErrors.New(dErrors.CodeConflict, "alert already resolved")
	}

	if err := e.store.MarkResolved(ctx, id, requestcontext.Now(ctx)); err != nil {
		return err
	}
	if e.metrics != nil {
		e.metrics.IncrementResolved(string(alert.Layer))
	}
	e.emitAudit(ctx, audit.ActionAlertResolved, alert.DedupKey, metric.SeverityLow)
	return nil
}

// ResolveByKey closes every open alert for (layer, dedupKey). Purpose
// resumption uses this to clear a purpose's alerts in one step.
func (e *Engine) ResolveByKey(ctx context.Context, layer metric.Layer, dedupKey string) (int, error) {
	n, err := e.store.MarkResolvedByKey(ctx, layer, dedupKey, requestcontext.Now(ctx))
	if err != nil {
		return 0, err
	}
	if e.metrics != nil {
		for range n {
			e.metrics.IncrementResolved(string(layer))
		}
	}
	return n, nil
}

// List returns alerts, newest first. An empty layer matches all layers.
func (e *Engine) List(ctx context.Context, layer metric.Layer) ([]*Alert, error) {
	return e.store.List(ctx, layer)
}

func (e *Engine) emitAudit(ctx context.Context, action audit.Action, subject string, severity metric.Severity) {
	if e.auditPublisher == nil {
		return
	}
	sev := audit.SeverityWarning
	switch severity {
	case metric.SeverityHigh:
		sev = audit.SeverityCritical
	case metric.SeverityLow:
		sev = audit.SeverityInfo
	}
	_ = e.auditPublisher.Emit(ctx, audit.Event{
		Action:    action,
		Subject:   subject,
		RequestID: requestcontext.RequestID(ctx),
		Severity:  sev,
	})
}
