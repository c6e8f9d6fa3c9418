package purpose

import (
	"context"
	"fmt"
	"log/slog"

	"vigil/internal/alerting"
	"vigil/internal/metric"
	"vigil/internal/registry"
	"vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/platform/audit"
	"vigil/pkg/requestcontext"
)

// Service tracks usage against declared purposes, computes drift, and drives
// the ACTIVE → ALERTED → PAUSED → ACTIVE lifecycle.
type Service struct {
	purposes       PurposeStore
	events         registry.Store[UsageEvent]
	alerts         *alerting.Engine
	config         Config
	logger         *slog.Logger
	auditPublisher alerting.AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAlerts(engine *alerting.Engine) Option {
	return func(s *Service) {
		s.alerts = engine
	}
}

func WithAuditPublisher(publisher alerting.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func New(purposes PurposeStore, events registry.Store[UsageEvent], config Config, opts ...Option) (*Service, error) {
	if purposes == nil {
		return nil, fmt.Errorf("purpose store is required")
	}
	if events == nil {
		return nil, fmt.Errorf("usage event store is required")
	}

	svc := &Service{
		purposes: purposes,
		events:   events,
		config:   config,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Declare registers a purpose for monitoring. Declaring an existing id is a
// conflict.
func (s *Service) Declare(ctx context.Context, p SystemPurpose) (*SystemPurpose, error) {
	now := requestcontext.Now(ctx)
	if p.DeclaredAt.IsZero() {
		p.DeclaredAt = now
	}
	if p.LastRecommitment.IsZero() {
		p.LastRecommitment = p.DeclaredAt
	}
	p.State = StateActive

	if err := p.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.purposes.Get(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, dErrors.Newf(dErrors.CodeConflict, "purpose %s already declared", p.ID)
	}

	if err := s.purposes.Create(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// TrackUsage appends a usage event for an active or alerted purpose. A paused
// purpose refuses new usage until a valid recommitment.
func (s *Service) TrackUsage(ctx context.Context, event UsageEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	if event.EventAt.IsZero() {
		event.EventAt = requestcontext.Now(ctx)
	}

	p, err := s.purposes.Get(ctx, event.PurposeID)
	if err != nil {
		return err
	}
	if p == nil {
		return dErrors.Newf(dErrors.CodeNotFound, "purpose %s not declared", event.PurposeID)
	}
	if p.State == StatePaused {
		return dErrors.Newf(dErrors.CodeConflict, "purpose %s is paused pending recommitment", event.PurposeID)
	}

	return s.events.Append(ctx, string(event.PurposeID), event)
}

// Drift computes the blended drift metric for a purpose. Fewer than MinEvents
// usage events yields the neutral 0 / STABLE regardless of content.
func (s *Service) Drift(ctx context.Context, id domain.PurposeID) (Assessment, error) {
	now := requestcontext.Now(ctx)

	p, err := s.purposes.Get(ctx, id)
	if err != nil {
		return Assessment{}, err
	}
	if p == nil {
		return Assessment{}, dErrors.Newf(dErrors.CodeNotFound, "purpose %s not declared", id)
	}

	events, err := s.events.Query(ctx, string(id), registry.All())
	if err != nil {
		return Assessment{}, err
	}

	divergence, shift, drift := 0.0, 0.0, 0.0
	if len(events) >= s.config.MinEvents {
		divergence = s.semanticDivergence(p.OriginalIntent, events)
		shift = s.usagePatternShift(events)
		drift = s.config.SemanticWeight*divergence + s.config.PatternWeight*shift
	}

	trend := TrendStable
	switch {
	case drift > s.config.CriticalTrend:
		trend = TrendCritical
	case drift > s.config.DriftingTrend:
		trend = TrendDrifting
	}

	severity := metric.SeverityMedium
	if drift > s.config.PauseThreshold {
		severity = metric.SeverityHigh
	}

	return Assessment{
		Report:             metric.NewReport(metric.LayerPurposeDrift, drift, s.config.AlertThreshold, now),
		Severity:           severity,
		PurposeID:          id,
		Trend:              trend,
		State:              p.State,
		SemanticDivergence: divergence,
		UsagePatternShift:  shift,
		EventCount:         len(events),
	}, nil
}

// Evaluate recomputes drift and advances the purpose state machine: an active
// purpose past the alert threshold becomes ALERTED with an alert raised; an
// alerted purpose past the pause threshold is forced to PAUSED.
func (s *Service) Evaluate(ctx context.Context, id domain.PurposeID) (Assessment, error) {
	assessment, err := s.Drift(ctx, id)
	if err != nil {
		return Assessment{}, err
	}

	p, err := s.purposes.Get(ctx, id)
	if err != nil {
		return Assessment{}, err
	}

	drift := assessment.Report.Magnitude
	switch {
	case p.State == StateActive && drift > s.config.AlertThreshold:
		p.State = StateAlerted
		if err := s.purposes.Update(ctx, p); err != nil {
			return Assessment{}, err
		}
		if s.alerts != nil {
			if _, _, err := s.alerts.Raise(ctx, metric.LayerPurposeDrift, string(id),
				drift, s.config.AlertThreshold, assessment.Severity); err != nil {
				return Assessment{}, err
			}
		}
	case p.State == StateAlerted && drift > s.config.PauseThreshold:
		p.State = StatePaused
		if err := s.purposes.Update(ctx, p); err != nil {
			return Assessment{}, err
		}
		s.logger.WarnContext(ctx, "purpose paused",
			"purpose_id", string(id),
			"drift", drift,
		)
		s.emitAudit(ctx, audit.ActionPurposePaused, string(id), audit.SeverityCritical)
	}

	assessment.State = p.State
	return assessment, nil
}

// Recommit accepts a fresh statement of intent. Valid only when its keyword
// overlap with the original intent reaches the configured minimum; an invalid
// recommitment changes nothing and must be resubmitted. A valid one resumes a
// paused purpose and clears its open alerts.
func (s *Service) Recommit(ctx context.Context, id domain.PurposeID, statement string) (*SystemPurpose, error) {
	if statement == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "recommitment statement is required")
	}

	p, err := s.purposes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "purpose %s not declared", id)
	}

	score := overlap(keywords(p.OriginalIntent), keywords(statement))
	if score < s.config.RecommitOverlap {
		s.emitAudit(ctx, audit.ActionRecommitRejected, string(id), audit.SeverityWarning)
		return nil, dErrors.Newf(dErrors.CodeInvalidInput,
			"recommitment overlap %.2f below required %.2f", score, s.config.RecommitOverlap)
	}

	resumed := p.State != StateActive
	p.State = StateActive
	p.LastRecommitment = requestcontext.Now(ctx)
	if err := s.purposes.Update(ctx, p); err != nil {
		return nil, err
	}

	if resumed {
		if s.alerts != nil {
			if _, err := s.alerts.ResolveByKey(ctx, metric.LayerPurposeDrift, string(id)); err != nil {
				return nil, err
			}
		}
		s.emitAudit(ctx, audit.ActionPurposeResumed, string(id), audit.SeverityInfo)
	}
	return p, nil
}

// Resilience averages drift across all monitored purposes and inverts it onto
// the 0-100 scale. No purposes means a neutral 100.
func (s *Service) Resilience(ctx context.Context) (float64, error) {
	purposes, err := s.purposes.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(purposes) == 0 {
		return 100, nil
	}

	sum := 0.0
	for _, p := range purposes {
		assessment, err := s.Drift(ctx, p.ID)
		if err != nil {
			return 0, err
		}
		sum += assessment.Report.Magnitude
	}
	return 100 * (1 - sum/float64(len(purposes))), nil
}

// semanticDivergence averages per-event divergence from the intent's keyword
// set over the most recent RecentEvents events. An event whose keyword union
// with the intent is empty contributes zero divergence.
func (s *Service) semanticDivergence(intent string, events []UsageEvent) float64 {
	intentKW := keywords(intent)

	recent := events
	if len(recent) > s.config.RecentEvents {
		recent = recent[len(recent)-s.config.RecentEvents:]
	}
	if len(recent) == 0 {
		return 0
	}

	total := 0.0
	for _, e := range recent {
		eventKW := keywords(e.EventType + " " + e.Description)
		if len(intentKW) == 0 && len(eventKW) == 0 {
			continue // empty union contributes zero divergence
		}
		total += 1 - overlap(intentKW, eventKW)
	}
	return total / float64(len(recent))
}

// usagePatternShift compares the event-type set of the first PatternEvents
// events ever recorded with that of the most recent PatternEvents.
func (s *Service) usagePatternShift(events []UsageEvent) float64 {
	n := s.config.PatternEvents
	if len(events) < n {
		n = len(events)
	}
	if n == 0 {
		return 0
	}

	first := make(map[string]bool)
	for _, e := range events[:n] {
		first[e.EventType] = true
	}
	last := make(map[string]bool)
	for _, e := range events[len(events)-n:] {
		last[e.EventType] = true
	}
	return 1 - jaccard(first, last)
}

func (s *Service) emitAudit(ctx context.Context, action audit.Action, subject string, severity audit.Severity) {
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Action:    action,
		Subject:   subject,
		RequestID: requestcontext.RequestID(ctx),
		Severity:  severity,
	})
}
