package inquiry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vigil/internal/alerting"
	"vigil/internal/metric"
	"vigil/internal/registry"
	"vigil/pkg/requestcontext"
)

const daysPerWeek = 7.0

// Service computes per-domain question entropy gaps over the registry.
type Service struct {
	events registry.Store[Question]
	alerts *alerting.Engine
	config Config
	logger *slog.Logger
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

func New(events registry.Store[Question], config Config, opts ...Option) (*Service, error) {
	if events == nil {
		return nil, fmt.Errorf("question store is required")
	}

	svc := &Service{
		events: events,
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Record validates and appends one question.
func (s *Service) Record(ctx context.Context, q Question) error {
	if err := q.Validate(); err != nil {
		return err
	}
	return s.events.Append(ctx, q.Domain, q)
}

// Gap computes the entropy gap for a domain: the fractional drop of the
// current weekly question rate against the historical baseline, floored at 0.
// A domain with no baseline yields the neutral value 0.
func (s *Service) Gap(ctx context.Context, domainKey string) (Assessment, error) {
	now := requestcontext.Now(ctx)

	currentFrom := now.Add(-s.config.CurrentWindow)
	historicalFrom := currentFrom.Add(-s.config.HistoricalWindow)

	current, err := s.events.Query(ctx, domainKey, registry.Between(currentFrom, now))
	if err != nil {
		return Assessment{}, err
	}
	historical, err := s.events.Query(ctx, domainKey, registry.Between(historicalFrom, currentFrom))
	if err != nil {
		return Assessment{}, err
	}

	currentRate := weeklyRate(len(current), s.config.CurrentWindow)
	historicalRate := weeklyRate(len(historical), s.config.HistoricalWindow)

	gap := 0.0
	if historicalRate > 0 {
		gap = (historicalRate - currentRate) / historicalRate
		if gap < 0 {
			gap = 0
		}
	}

	severity := metric.SeverityMedium
	if gap > s.config.HighThreshold {
		severity = metric.SeverityHigh
	}

	assessment := Assessment{
		Report:         metric.NewReport(metric.LayerQuestionEntropy, gap, s.config.AlertThreshold, now),
		Severity:       severity,
		CurrentRate:    currentRate,
		HistoricalRate: historicalRate,
	}
	if assessment.Report.Exceeded {
		assessment.Suggested = TemplateQuestions(domainKey)
	}
	return assessment, nil
}

// Evaluate recomputes the gap and raises an alert on breach.
func (s *Service) Evaluate(ctx context.Context, domainKey string) (Assessment, error) {
	assessment, err := s.Gap(ctx, domainKey)
	if err != nil {
		return Assessment{}, err
	}
	if !assessment.Report.Exceeded || s.alerts == nil {
		return assessment, nil
	}

	_, _, err = s.alerts.Raise(ctx,
		metric.LayerQuestionEntropy,
		domainKey,
		assessment.Report.Magnitude,
		assessment.Report.Threshold,
		assessment.Severity,
	)
	if err != nil {
		return Assessment{}, err
	}
	return assessment, nil
}

// Resilience averages the entropy gap across all known domains and inverts it
// onto the 0-100 scale. No domains means a neutral 100.
func (s *Service) Resilience(ctx context.Context) (float64, error) {
	keys, err := s.events.Keys(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 100, nil
	}

	sum := 0.0
	for _, key := range keys {
		assessment, err := s.Gap(ctx, key)
		if err != nil {
			return 0, err
		}
		sum += assessment.Report.Magnitude
	}
	return 100 * (1 - sum/float64(len(keys))), nil
}

func weeklyRate(count int, window time.Duration) float64 {
	weeks := window.Hours() / 24 / daysPerWeek
	if weeks <= 0 {
		return 0
	}
	return float64(count) / weeks
}
