package outcomes

import (
	"context"
	"fmt"
	"log/slog"

	"vigil/internal/alerting"
	"vigil/internal/metric"
	"vigil/internal/registry"
	"vigil/pkg/requestcontext"
)

// Service tracks lagged outcomes per beneficiary and scores concentration of
// benefit over time.
type Service struct {
	events registry.Store[LaggedOutcome]
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

func New(events registry.Store[LaggedOutcome], config Config, opts ...Option) (*Service, error) {
	if events == nil {
		return nil, fmt.Errorf("outcome store is required")
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

// Track derives lag and risk for a new outcome and appends it under the
// beneficiary's key. The risk score incorporates the beneficiary's full
// history including the new outcome.
func (s *Service) Track(ctx context.Context, req TrackRequest) (LaggedOutcome, error) {
	if err := req.Validate(); err != nil {
		return LaggedOutcome{}, err
	}

	history, err := s.events.Query(ctx, req.Beneficiary, registry.All())
	if err != nil {
		return LaggedOutcome{}, err
	}

	lagDays := int(req.BenefitRealizedDate.Sub(req.DecisionDate).Hours() / 24)

	lags := make([]float64, 0, len(history)+1)
	for _, o := range history {
		lags = append(lags, float64(o.LagDays))
	}
	lags = append(lags, float64(lagDays))

	outcome := LaggedOutcome{
		DecisionID:          req.DecisionID,
		DecisionDate:        req.DecisionDate,
		Beneficiary:         req.Beneficiary,
		BenefitRealizedDate: req.BenefitRealizedDate,
		LagDays:             lagDays,
		RiskScore:           riskScore(lagDays, len(history)+1, lags, s.config.ConsistencyMinAvgLag),
		Provenance:          req.Provenance,
	}
	if err := s.events.Append(ctx, req.Beneficiary, outcome); err != nil {
		return LaggedOutcome{}, err
	}
	return outcome, nil
}

// BeneficiaryRisk computes the running average risk for one beneficiary. An
// unknown beneficiary yields the neutral value 0.
func (s *Service) BeneficiaryRisk(ctx context.Context, beneficiary string) (Assessment, error) {
	now := requestcontext.Now(ctx)

	history, err := s.events.Query(ctx, beneficiary, registry.All())
	if err != nil {
		return Assessment{}, err
	}

	avgRisk, avgLag := 0.0, 0.0
	for _, o := range history {
		avgRisk += o.RiskScore
		avgLag += float64(o.LagDays)
	}
	if len(history) > 0 {
		avgRisk /= float64(len(history))
		avgLag /= float64(len(history))
	}

	severity := metric.SeverityMedium
	if avgRisk >= MaxRiskScore-1 {
		severity = metric.SeverityHigh
	}

	return Assessment{
		Report:      metric.NewReport(metric.LayerOutcomeRisk, avgRisk, s.config.RiskThreshold, now),
		Severity:    severity,
		Beneficiary: beneficiary,
		Decisions:   len(history),
		AverageRisk: avgRisk,
		AverageLag:  avgLag,
	}, nil
}

// Evaluate recomputes the beneficiary's running risk and raises a pattern
// alert when it exceeds the threshold with enough history. The engine's dedup
// window suppresses repeats for the same beneficiary.
func (s *Service) Evaluate(ctx context.Context, beneficiary string) (Assessment, error) {
	assessment, err := s.BeneficiaryRisk(ctx, beneficiary)
	if err != nil {
		return Assessment{}, err
	}
	if !assessment.Report.Exceeded || assessment.Decisions < s.config.MinDecisions || s.alerts == nil {
		return assessment, nil
	}

	_, _, err = s.alerts.Raise(ctx,
		metric.LayerOutcomeRisk,
		beneficiary,
		assessment.Report.Magnitude,
		assessment.Report.Threshold,
		assessment.Severity,
	)
	if err != nil {
		return Assessment{}, err
	}
	return assessment, nil
}

// Resilience inverts the fraction of tracked outcomes scoring above the risk
// threshold onto the 0-100 scale. No outcomes means a neutral 100.
func (s *Service) Resilience(ctx context.Context) (float64, error) {
	keys, err := s.events.Keys(ctx)
	if err != nil {
		return 0, err
	}

	total, risky := 0, 0
	for _, key := range keys {
		history, err := s.events.Query(ctx, key, registry.All())
		if err != nil {
			return 0, err
		}
		for _, o := range history {
			total++
			if o.RiskScore > s.config.RiskThreshold {
				risky++
			}
		}
	}
	if total == 0 {
		return 100, nil
	}
	return 100 * (1 - float64(risky)/float64(total)), nil
}
