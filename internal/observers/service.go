package observers

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"vigil/internal/alerting"
	"vigil/internal/metric"
	"vigil/pkg/domain"
	"vigil/pkg/platform/audit"
	"vigil/pkg/requestcontext"
)

// Service derives fatigue from observer activity and plans workload
// redistribution. Cooldown installation stays with the admission gate; this
// service only reports when a score crosses the critical threshold.
type Service struct {
	store          Store
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

func New(store Store, config Config, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("observer store is required")
	}

	svc := &Service{
		store:  store,
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// RecordActivity upserts the observer's row and re-derives fatigue. Returns
// the updated row.
func (s *Service) RecordActivity(ctx context.Context, activity Activity) (*ObserverMetric, error) {
	if err := activity.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)

	existing, err := s.store.Get(ctx, activity.ObserverID)
	if err != nil {
		return nil, err
	}

	var lastBreak *time.Time
	if existing != nil {
		lastBreak = existing.LastBreak
	}
	if activity.TookBreak {
		t := now
		lastBreak = &t
	}

	score := fatigueScore(
		activity.AuditsReviewed,
		activity.CorrectionRate,
		activity.ContradictionExposure,
		s.hoursSinceBreak(now, lastBreak),
	)

	m := &ObserverMetric{
		ObserverID:            activity.ObserverID,
		AuditsReviewed:        activity.AuditsReviewed,
		CorrectionRate:        activity.CorrectionRate,
		ContradictionExposure: activity.ContradictionExposure,
		FatigueScore:          score,
		FatigueRisk:           tierFor(score, s.config),
		PendingAudits:         activity.PendingAudits,
		LastBreak:             lastBreak,
		UpdatedAt:             now,
	}
	if err := s.store.Upsert(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Fatigue computes the assessment for one observer. An unknown observer
// yields the neutral score 0 / tier low.
func (s *Service) Fatigue(ctx context.Context, id domain.ActorID) (Assessment, error) {
	now := requestcontext.Now(ctx)

	m, err := s.store.Get(ctx, id)
	if err != nil {
		return Assessment{}, err
	}

	score := 0
	if m != nil {
		score = fatigueScore(
			m.AuditsReviewed,
			m.CorrectionRate,
			m.ContradictionExposure,
			s.hoursSinceBreak(now, m.LastBreak),
		)
	}
	tier := tierFor(score, s.config)

	severity := metric.SeverityMedium
	if tier == TierCritical {
		severity = metric.SeverityHigh
	}

	report := metric.Report{
		Layer:      metric.LayerObserverFatigue,
		Magnitude:  float64(score),
		Threshold:  float64(s.config.AlertThreshold),
		Exceeded:   score >= s.config.AlertThreshold,
		ComputedAt: now,
	}
	return Assessment{
		Report:     report,
		Severity:   severity,
		ObserverID: id,
		Score:      score,
		Tier:       tier,
	}, nil
}

// Evaluate recomputes fatigue and raises an alert when the observer tiers
// high or critical.
func (s *Service) Evaluate(ctx context.Context, id domain.ActorID) (Assessment, error) {
	assessment, err := s.Fatigue(ctx, id)
	if err != nil {
		return Assessment{}, err
	}
	if !assessment.Report.Exceeded || s.alerts == nil {
		return assessment, nil
	}

	_, _, err = s.alerts.Raise(ctx,
		metric.LayerObserverFatigue,
		string(id),
		assessment.Report.Magnitude,
		assessment.Report.Threshold,
		assessment.Severity,
	)
	if err != nil {
		return Assessment{}, err
	}
	return assessment, nil
}

// FatigueScore returns just the numeric score, for callers that admit work
// on observers' behalf.
func (s *Service) FatigueScore(ctx context.Context, id domain.ActorID) (int, error) {
	assessment, err := s.Fatigue(ctx, id)
	if err != nil {
		return 0, err
	}
	return assessment.Score, nil
}

// CooldownDuration maps a fatigue score onto the mandated cooldown length.
func (s *Service) CooldownDuration(score int) time.Duration {
	switch {
	case score >= s.config.CriticalThreshold:
		return 72 * time.Hour
	case score >= s.config.AlertThreshold:
		return 48 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Redistribute plans moving up to half of each high-risk observer's pending
// audits round-robin onto low-tier observers, and applies the plan to the
// pending counters. Zero eligible low-risk observers is a no-op, not an
// error. Integration with an external workload system is out of scope: the
// plan is the deliverable.
func (s *Service) Redistribute(ctx context.Context) ([]Reassignment, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ObserverID < rows[j].ObserverID })

	var overloaded, targets []*ObserverMetric
	for _, m := range rows {
		switch m.FatigueRisk {
		case TierHigh, TierCritical:
			overloaded = append(overloaded, m)
		case TierLow:
			targets = append(targets, m)
		}
	}
	if len(overloaded) == 0 || len(targets) == 0 {
		return nil, nil
	}

	var plan []Reassignment
	next := 0
	for _, from := range overloaded {
		movable := int(float64(from.PendingAudits) * s.config.RedistributeShare)
		for i := 0; i < movable; i++ {
			to := targets[next%len(targets)]
			next++
			from.PendingAudits--
			to.PendingAudits++
			plan = appendMove(plan, from.ObserverID, to.ObserverID)
		}
	}

	for _, m := range rows {
		if err := s.store.Upsert(ctx, m); err != nil {
			return nil, err
		}
	}

	s.logger.InfoContext(ctx, "workload redistributed",
		"moves", len(plan),
		"sources", len(overloaded),
		"targets", len(targets),
	)
	if s.auditPublisher != nil {
		_ = s.auditPublisher.Emit(ctx, audit.Event{
			Action:    audit.ActionWorkRedistributed,
			Subject:   fmt.Sprintf("%d observers", len(overloaded)),
			RequestID: requestcontext.RequestID(ctx),
			Severity:  audit.SeverityInfo,
		})
	}
	return plan, nil
}

// Resilience applies the double penalty: 100 minus twice the percentage of
// observers tiered high or critical, floored at 0.
func (s *Service) Resilience(ctx context.Context) (float64, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 100, nil
	}

	highRisk := 0
	for _, m := range rows {
		if m.FatigueRisk == TierHigh || m.FatigueRisk == TierCritical {
			highRisk++
		}
	}
	percent := 100 * float64(highRisk) / float64(len(rows))
	score := 100 - 2*percent
	if score < 0 {
		score = 0
	}
	return score, nil
}

func (s *Service) hoursSinceBreak(now time.Time, lastBreak *time.Time) float64 {
	if lastBreak == nil {
		return s.config.DefaultHoursSinceBreak
	}
	return now.Sub(*lastBreak).Hours()
}

func appendMove(plan []Reassignment, from, to domain.ActorID) []Reassignment {
	for i := range plan {
		if plan[i].From == from && plan[i].To == to {
			plan[i].Audits++
			return plan
		}
	}
	return append(plan, Reassignment{From: from, To: to, Audits: 1})
}
