package gate

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"vigil/internal/gate/metrics"
	"vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/platform/audit"
	"vigil/pkg/requestcontext"
)

// Service enforces the four admission checks, in order: active cooldown,
// concurrency limit, confidence cap, scope authorization. The first failing
// check rejects; later checks are not evaluated.
type Service struct {
	store   CounterStore
	fatigue FatigueScorer
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	alerts  AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.alerts = p }
}

// WithFatigueScorer wires the fatigue score consulted at admission time.
// Without it the gate skips the automatic fatigue cooldown.
func WithFatigueScorer(f FatigueScorer) Option {
	return func(s *Service) { s.fatigue = f }
}

func New(store CounterStore, cfg Config, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "counter store is required")
	}
	if len(cfg.RoleLimits) == 0 {
		return nil, dErrors.New(dErrors.CodeInternal, "role limits are required")
	}
	s := &Service{
		store:  store,
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Admit runs the admission checks for a new submission. On success the
// actor's in-flight count is incremented; the caller owes a matching Release
// when the audit completes or the submission fails downstream. A *Rejection
// is returned for policy refusals; other errors are infrastructure failures
// and admit nothing.
func (s *Service) Admit(ctx context.Context, req AdmissionRequest) error {
	if req.ActorID.IsEmpty() {
		return dErrors.New(dErrors.CodeInvalidInput, "actor id is required")
	}
	if !req.Role.IsValid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown role %q", req.Role)
	}
	now := requestcontext.Now(ctx)

	entry, err := s.store.Cooldown(ctx, req.ActorID)
	if err != nil {
		return err
	}
	if entry != nil && entry.Active(now) {
		return s.reject(ctx, req, s.cooldownRejection(*entry, now))
	}

	if s.fatigue != nil {
		score, err := s.fatigue.FatigueScore(ctx, req.ActorID)
		if err != nil {
			return err
		}
		if score >= s.cfg.CriticalFatigueScore {
			installed, err := s.InstallCooldown(ctx, req.ActorID, s.cfg.CriticalCooldown, ReasonFatigueCritical)
			if err != nil {
				return err
			}
			return s.reject(ctx, req, s.cooldownRejection(installed, now))
		}
	}

	limit := s.cfg.RoleLimits[req.Role]
	acquired, err := s.store.Acquire(ctx, req.ActorID, limit)
	if err != nil {
		return err
	}
	if !acquired {
		return s.reject(ctx, req, &Rejection{
			Kind:    KindConcurrencyExceeded,
			Message: fmt.Sprintf("concurrent audit limit of %d reached for role %s", limit, req.Role),
		})
	}

	if req.ConfidenceWeight > s.cfg.ConfidenceCap {
		if relErr := s.store.Release(ctx, req.ActorID); relErr != nil {
			s.logger.ErrorContext(ctx, "releasing slot after confidence rejection",
				slog.String("actor_id", req.ActorID.String()), slog.Any("error", relErr))
		}
		return s.reject(ctx, req, &Rejection{
			Kind:    KindConfidenceCapExceeded,
			Message: fmt.Sprintf("confidence weight %.2f exceeds cap %.2f", req.ConfidenceWeight, s.cfg.ConfidenceCap),
		})
	}

	if req.DataScope == domain.ScopeSimulated && req.Role != domain.RoleAdmin {
		if relErr := s.store.Release(ctx, req.ActorID); relErr != nil {
			s.logger.ErrorContext(ctx, "releasing slot after scope rejection",
				slog.String("actor_id", req.ActorID.String()), slog.Any("error", relErr))
		}
		return s.reject(ctx, req, &Rejection{
			Kind:    KindUnauthorizedScope,
			Message: "simulated scope requires the admin role",
		})
	}

	s.metrics.IncrementAdmissions()
	return nil
}

// Release returns an actor's audit slot. Safe to call when the count is
// already zero.
func (s *Service) Release(ctx context.Context, id domain.ActorID) error {
	if id.IsEmpty() {
		return dErrors.New(dErrors.CodeInvalidInput, "actor id is required")
	}
	return s.store.Release(ctx, id)
}

// InstallCooldown places the actor on cooldown, replacing any existing entry.
func (s *Service) InstallCooldown(ctx context.Context, id domain.ActorID, duration time.Duration, reason CooldownReason) (CooldownEntry, error) {
	if id.IsEmpty() {
		return CooldownEntry{}, dErrors.New(dErrors.CodeInvalidInput, "actor id is required")
	}
	if duration <= 0 {
		return CooldownEntry{}, dErrors.New(dErrors.CodeInvalidInput, "cooldown duration must be positive")
	}
	entry := CooldownEntry{
		ActorID:       id,
		StartTime:     requestcontext.Now(ctx),
		DurationHours: int(math.Ceil(duration.Hours())),
		Reason:        reason,
	}
	if err := s.store.SetCooldown(ctx, entry); err != nil {
		return CooldownEntry{}, err
	}
	s.metrics.IncrementCooldowns(string(reason))
	s.emitAudit(ctx, audit.Event{
		Action:   audit.ActionCooldownInstalled,
		Subject:  id.String(),
		Severity: audit.SeverityWarning,
		Metadata: map[string]string{
			"reason":         string(reason),
			"duration_hours": fmt.Sprintf("%d", entry.DurationHours),
		},
	})
	s.logger.InfoContext(ctx, "cooldown installed",
		slog.String("actor_id", id.String()),
		slog.String("reason", string(reason)),
		slog.Int("duration_hours", entry.DurationHours),
	)
	return entry, nil
}

// ClearCooldown removes an actor's cooldown ahead of expiry.
func (s *Service) ClearCooldown(ctx context.Context, id domain.ActorID) error {
	if id.IsEmpty() {
		return dErrors.New(dErrors.CodeInvalidInput, "actor id is required")
	}
	return s.store.ClearCooldown(ctx, id)
}

// Status reports the actor's current in-flight count and cooldown, if any.
func (s *Service) Status(ctx context.Context, id domain.ActorID) (int, *CooldownEntry, error) {
	if id.IsEmpty() {
		return 0, nil, dErrors.New(dErrors.CodeInvalidInput, "actor id is required")
	}
	inFlight, err := s.store.InFlight(ctx, id)
	if err != nil {
		return 0, nil, err
	}
	entry, err := s.store.Cooldown(ctx, id)
	if err != nil {
		return 0, nil, err
	}
	if entry != nil && !entry.Active(requestcontext.Now(ctx)) {
		entry = nil
	}
	return inFlight, entry, nil
}

func (s *Service) cooldownRejection(entry CooldownEntry, now time.Time) *Rejection {
	remaining := int(math.Ceil(entry.ExpiresAt().Sub(now).Minutes()))
	if remaining < 1 {
		remaining = 1
	}
	return &Rejection{
		Kind:              KindCooldownActive,
		Message:           fmt.Sprintf("cooldown active for another %d minutes", remaining),
		RetryAfterMinutes: remaining,
	}
}

func (s *Service) reject(ctx context.Context, req AdmissionRequest, rej *Rejection) error {
	s.metrics.IncrementRejections(string(rej.Kind))
	s.emitAudit(ctx, audit.Event{
		Action:   audit.ActionAdmissionRejected,
		Subject:  req.ActorID.String(),
		Severity: audit.SeverityInfo,
		Metadata: map[string]string{"kind": string(rej.Kind)},
	})
	s.logger.InfoContext(ctx, "admission rejected",
		slog.String("actor_id", req.ActorID.String()),
		slog.String("kind", string(rej.Kind)),
	)
	return rej
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.alerts == nil {
		return
	}
	event.Timestamp = requestcontext.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.alerts.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "emitting audit event",
			slog.String("action", string(event.Action)), slog.Any("error", err))
	}
}
