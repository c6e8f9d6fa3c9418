package frames

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"vigil/internal/alerting"
	"vigil/internal/metric"
	"vigil/internal/registry"
	"vigil/pkg/requestcontext"
)

// Service computes framework dominance over the registry and raises rotation
// recommendations when one framework crowds out the rest.
type Service struct {
	events   registry.Store[FrameUse]
	alerts   *alerting.Engine
	config   Config
	logger   *slog.Logger
	rotation *RotationQueue
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

func New(events registry.Store[FrameUse], config Config, opts ...Option) (*Service, error) {
	if events == nil {
		return nil, fmt.Errorf("frame event store is required")
	}

	svc := &Service{
		events:   events,
		config:   config,
		logger:   slog.Default(),
		rotation: NewRotationQueue(config.RotationQueueCap),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Record validates and appends one framework use. Admission control happens
// upstream; the registry append is the only side effect here.
func (s *Service) Record(ctx context.Context, use FrameUse) error {
	if err := use.Validate(); err != nil {
		return err
	}
	return s.events.Append(ctx, use.Domain, use)
}

// Dominance computes the rolling dominance metric for a domain. An unknown or
// empty domain yields the neutral value 0. Pure over the registry snapshot:
// recomputing on an unchanged event set gives identical results.
func (s *Service) Dominance(ctx context.Context, domainKey string) (Assessment, error) {
	now := requestcontext.Now(ctx)

	window, err := s.windowedUses(ctx, domainKey)
	if err != nil {
		return Assessment{}, err
	}

	weights := make(map[string]float64)
	total := 0.0
	for _, use := range window {
		weights[use.Framework] += use.ConfidenceWeight
		total += use.ConfidenceWeight
	}

	dominance := 0.0
	dominant := ""
	if total > 0 {
		for _, name := range sortedFrameworks(weights) {
			if share := weights[name] / total; share > dominance {
				dominance = share
				dominant = name
			}
		}
	}

	severity := metric.SeverityMedium
	if dominance > s.config.HighThreshold {
		severity = metric.SeverityHigh
	}

	return Assessment{
		Report:            metric.NewReport(metric.LayerFrameworkDominance, dominance, s.config.AlertThreshold, now),
		Severity:          severity,
		DominantFramework: dominant,
		TotalWeight:       total,
		WindowSize:        len(window),
	}, nil
}

// Evaluate recomputes dominance and, on a breach, raises an alert and feeds
// the rotation queue with up to two alternatives to the dominant framework.
func (s *Service) Evaluate(ctx context.Context, domainKey string) (Assessment, error) {
	assessment, err := s.Dominance(ctx, domainKey)
	if err != nil {
		return Assessment{}, err
	}
	if !assessment.Report.Exceeded || s.alerts == nil {
		return assessment, nil
	}

	_, raised, err := s.alerts.Raise(ctx,
		metric.LayerFrameworkDominance,
		domainKey,
		assessment.Report.Magnitude,
		assessment.Report.Threshold,
		assessment.Severity,
	)
	if err != nil {
		return Assessment{}, err
	}
	if raised {
		alternatives, err := s.alternatives(ctx, domainKey, assessment.DominantFramework)
		if err != nil {
			return Assessment{}, err
		}
		if len(alternatives) > 0 {
			s.rotation.Enqueue(alternatives...)
			s.logger.InfoContext(ctx, "rotation recommended",
				"domain", domainKey,
				"count", len(alternatives),
			)
		}
	}
	return assessment, nil
}

// Rotation exposes the recommendation queue.
func (s *Service) Rotation() *RotationQueue { return s.rotation }

// windowedUses returns the uses inside the time window, widened to the last
// WindowEvents uses when the time window holds fewer than that.
func (s *Service) windowedUses(ctx context.Context, domainKey string) ([]FrameUse, error) {
	now := requestcontext.Now(ctx)

	all, err := s.events.Query(ctx, domainKey, registry.All())
	if err != nil {
		return nil, err
	}

	cutoff := now.Add(-s.config.Window)
	recent := all[:0:0]
	for _, use := range all {
		if !use.OccurredAt().Before(cutoff) {
			recent = append(recent, use)
		}
	}

	if len(recent) >= s.config.WindowEvents {
		return recent, nil
	}
	if len(all) <= s.config.WindowEvents {
		return all, nil
	}
	return all[len(all)-s.config.WindowEvents:], nil
}

// alternatives lists the frameworks seen in the domain's history other than
// the dominant one, capped at RotationSuggestions.
func (s *Service) alternatives(ctx context.Context, domainKey, dominant string) ([]string, error) {
	all, err := s.events.Query(ctx, domainKey, registry.All())
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, use := range all {
		if use.Framework != dominant {
			seen[use.Framework] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) > s.config.RotationSuggestions {
		names = names[:s.config.RotationSuggestions]
	}
	return names, nil
}

// Resilience converts dominance into the layer's 0-100 health contribution
// across all known domains.
func (s *Service) Resilience(ctx context.Context) (float64, error) {
	keys, err := s.events.Keys(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 100, nil
	}

	worst := 0.0
	for _, key := range keys {
		assessment, err := s.Dominance(ctx, key)
		if err != nil {
			return 0, err
		}
		if assessment.Report.Magnitude > worst {
			worst = assessment.Report.Magnitude
		}
	}
	return 100 * (1 - worst), nil
}

func sortedFrameworks(weights map[string]float64) []string {
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
