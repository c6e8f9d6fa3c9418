// Package monitor is the facade in front of the gated submission flows. It
// admits each new-reasoning write through the gate, records it on the right
// layer, and evaluates the layer's metric. An admitted submission occupies
// the actor's audit slot until CompleteAudit.
package monitor

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"vigil/internal/frames"
	"vigil/internal/gate"
	"vigil/internal/inquiry"
	"vigil/internal/observers"
	"vigil/internal/outcomes"
	"vigil/internal/purpose"
	"vigil/internal/resilience"
	"vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/requestcontext"
)

const tracerName = "vigil/monitor"

// Service composes the gate, the five layer services, and the resilience
// aggregator into one entry point for gated writes.
type Service struct {
	gate       *gate.Service
	frames     *frames.Service
	inquiry    *inquiry.Service
	outcomes   *outcomes.Service
	observers  *observers.Service
	purpose    *purpose.Service
	resilience *resilience.Aggregator
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(
	gateSvc *gate.Service,
	framesSvc *frames.Service,
	inquirySvc *inquiry.Service,
	outcomesSvc *outcomes.Service,
	observersSvc *observers.Service,
	purposeSvc *purpose.Service,
	resilienceAgg *resilience.Aggregator,
	opts ...Option,
) (*Service, error) {
	if gateSvc == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "gate service is required")
	}
	if framesSvc == nil || inquirySvc == nil || outcomesSvc == nil || observersSvc == nil || purposeSvc == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "all layer services are required")
	}
	if resilienceAgg == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "resilience aggregator is required")
	}
	s := &Service{
		gate:       gateSvc,
		frames:     framesSvc,
		inquiry:    inquirySvc,
		outcomes:   outcomesSvc,
		observers:  observersSvc,
		purpose:    purposeSvc,
		resilience: resilienceAgg,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// SubmitFrame admits and records a framework use, then evaluates dominance
// for its domain. If the record cannot be appended the admitted slot is
// released, so the gate never counts a submission that left no trace.
func (s *Service) SubmitFrame(ctx context.Context, use frames.FrameUse) (frames.Assessment, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "monitor.SubmitFrame",
		trace.WithAttributes(attribute.String("domain", use.Domain)))
	defer span.End()

	actorID, role, err := s.identity(ctx)
	if err != nil {
		return frames.Assessment{}, err
	}
	use.ActorID = actorID

	if err := s.gate.Admit(ctx, gate.AdmissionRequest{
		ActorID:          actorID,
		Role:             role,
		ConfidenceWeight: use.ConfidenceWeight,
		DataScope:        use.Provenance.DataScope,
	}); err != nil {
		span.SetStatus(codes.Error, "admission rejected")
		return frames.Assessment{}, err
	}

	if err := s.frames.Record(ctx, use); err != nil {
		s.releaseAfterFailure(ctx, actorID)
		span.RecordError(err)
		return frames.Assessment{}, err
	}
	return s.frames.Evaluate(ctx, use.Domain)
}

// SubmitQuestion admits and records an evaluative question, then evaluates
// the entropy gap for its domain.
func (s *Service) SubmitQuestion(ctx context.Context, q inquiry.Question) (inquiry.Assessment, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "monitor.SubmitQuestion",
		trace.WithAttributes(attribute.String("domain", q.Domain)))
	defer span.End()

	actorID, role, err := s.identity(ctx)
	if err != nil {
		return inquiry.Assessment{}, err
	}
	q.AskedBy = actorID

	if err := s.gate.Admit(ctx, gate.AdmissionRequest{
		ActorID:   actorID,
		Role:      role,
		DataScope: q.Provenance.DataScope,
	}); err != nil {
		span.SetStatus(codes.Error, "admission rejected")
		return inquiry.Assessment{}, err
	}

	if err := s.inquiry.Record(ctx, q); err != nil {
		s.releaseAfterFailure(ctx, actorID)
		span.RecordError(err)
		return inquiry.Assessment{}, err
	}
	return s.inquiry.Evaluate(ctx, q.Domain)
}

// TrackOutcome admits and records a lagged outcome, then evaluates the
// beneficiary's risk pattern.
func (s *Service) TrackOutcome(ctx context.Context, req outcomes.TrackRequest) (outcomes.LaggedOutcome, outcomes.Assessment, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "monitor.TrackOutcome",
		trace.WithAttributes(attribute.String("beneficiary", req.Beneficiary)))
	defer span.End()

	actorID, role, err := s.identity(ctx)
	if err != nil {
		return outcomes.LaggedOutcome{}, outcomes.Assessment{}, err
	}

	if err := s.gate.Admit(ctx, gate.AdmissionRequest{
		ActorID:   actorID,
		Role:      role,
		DataScope: req.Provenance.DataScope,
	}); err != nil {
		span.SetStatus(codes.Error, "admission rejected")
		return outcomes.LaggedOutcome{}, outcomes.Assessment{}, err
	}

	outcome, err := s.outcomes.Track(ctx, req)
	if err != nil {
		s.releaseAfterFailure(ctx, actorID)
		span.RecordError(err)
		return outcomes.LaggedOutcome{}, outcomes.Assessment{}, err
	}
	assessment, err := s.outcomes.Evaluate(ctx, req.Beneficiary)
	if err != nil {
		return outcome, outcomes.Assessment{}, err
	}
	return outcome, assessment, nil
}

// TrackPurposeUsage admits and records a usage event, then evaluates drift
// and advances the purpose state machine.
func (s *Service) TrackPurposeUsage(ctx context.Context, event purpose.UsageEvent) (purpose.Assessment, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "monitor.TrackPurposeUsage",
		trace.WithAttributes(attribute.String("purpose_id", event.PurposeID.String())))
	defer span.End()

	actorID, role, err := s.identity(ctx)
	if err != nil {
		return purpose.Assessment{}, err
	}

	if err := s.gate.Admit(ctx, gate.AdmissionRequest{
		ActorID:   actorID,
		Role:      role,
		DataScope: event.Provenance.DataScope,
	}); err != nil {
		span.SetStatus(codes.Error, "admission rejected")
		return purpose.Assessment{}, err
	}

	if err := s.purpose.TrackUsage(ctx, event); err != nil {
		s.releaseAfterFailure(ctx, actorID)
		span.RecordError(err)
		return purpose.Assessment{}, err
	}
	return s.purpose.Evaluate(ctx, event.PurposeID)
}

// RecordObserverActivity upserts an observer's counters, evaluates fatigue,
// and installs the mandated cooldown when the observer tiers critical.
// Activity recording is telemetry about reviewing, not new reasoning, so it
// is not gated.
func (s *Service) RecordObserverActivity(ctx context.Context, activity observers.Activity) (observers.Assessment, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "monitor.RecordObserverActivity",
		trace.WithAttributes(attribute.String("observer_id", activity.ObserverID.String())))
	defer span.End()

	if _, err := s.observers.RecordActivity(ctx, activity); err != nil {
		span.RecordError(err)
		return observers.Assessment{}, err
	}
	assessment, err := s.observers.Evaluate(ctx, activity.ObserverID)
	if err != nil {
		return observers.Assessment{}, err
	}
	if assessment.Tier == observers.TierCritical {
		duration := s.observers.CooldownDuration(assessment.Score)
		if _, err := s.gate.InstallCooldown(ctx, activity.ObserverID, duration, gate.ReasonFatigueCritical); err != nil {
			s.logger.ErrorContext(ctx, "installing critical fatigue cooldown",
				slog.String("observer_id", activity.ObserverID.String()), slog.Any("error", err))
		}
	}
	return assessment, nil
}

// CompleteAudit returns the caller's audit slot.
func (s *Service) CompleteAudit(ctx context.Context) error {
	actorID, _, err := s.identity(ctx)
	if err != nil {
		return err
	}
	return s.gate.Release(ctx, actorID)
}

// Resilience computes the aggregate institutional score.
func (s *Service) Resilience(ctx context.Context) (resilience.Summary, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "monitor.Resilience")
	defer span.End()
	return s.resilience.Score(ctx)
}

func (s *Service) identity(ctx context.Context) (domain.ActorID, domain.Role, error) {
	actorID := requestcontext.ActorID(ctx)
	if actorID.IsEmpty() {
		return "", "", dErrors.New(dErrors.CodeForbidden, "no authenticated actor")
	}
	role := requestcontext.Role(ctx)
	if !role.IsValid() {
		return "", "", dErrors.New(dErrors.CodeForbidden, "no valid role claim")
	}
	return actorID, role, nil
}

func (s *Service) releaseAfterFailure(ctx context.Context, actorID domain.ActorID) {
	if err := s.gate.Release(ctx, actorID); err != nil {
		s.logger.ErrorContext(ctx, "releasing slot after failed submission",
			slog.String("actor_id", actorID.String()), slog.Any("error", err))
	}
}
