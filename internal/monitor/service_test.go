package monitor

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vigil/internal/alerting"
	"vigil/internal/frames"
	"vigil/internal/gate"
	"vigil/internal/inquiry"
	"vigil/internal/metric"
	"vigil/internal/observers"
	"vigil/internal/outcomes"
	"vigil/internal/purpose"
	"vigil/internal/registry"
	"vigil/internal/resilience"
	"vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/requestcontext"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

const testActor = domain.ActorID("actor-1")

func testProvenance() domain.Provenance {
	return domain.Provenance{
		DataScope:    domain.ScopeObserved,
		EvidenceType: domain.EvidenceDirect,
		Origin:       "meeting-minutes",
	}
}

func makeFrameUse(domainKey string) frames.FrameUse {
	return frames.FrameUse{
		Domain:           domainKey,
		Framework:        "cost-benefit",
		ConfidenceWeight: 0.8,
		FirstUsed:        testNow.Add(-time.Hour),
		LastUsed:         testNow.Add(-time.Hour),
		DecisionPoint:    "quarterly-review",
		Provenance:       testProvenance(),
	}
}

// failingFrameStore accepts reads but refuses every append.
type failingFrameStore struct {
	registry.Store[frames.FrameUse]
}

func (failingFrameStore) Append(context.Context, string, frames.FrameUse) error {
	return dErrors.New(dErrors.CodeUnavailable, "append refused")
}

type MonitorServiceSuite struct {
	suite.Suite
	counters *gate.MemoryCounterStore
	gate     *gate.Service
	svc      *Service
	ctx      context.Context
}

func TestMonitorServiceSuite(t *testing.T) {
	suite.Run(t, new(MonitorServiceSuite))
}

func (s *MonitorServiceSuite) SetupTest() {
	s.counters = gate.NewMemoryCounterStore()
	s.svc = s.buildService(registry.NewMemoryStore[frames.FrameUse]())
	base := requestcontext.WithTime(context.Background(), testNow)
	base = requestcontext.WithActorID(base, testActor)
	s.ctx = requestcontext.WithRole(base, domain.RoleAnalyst)
}

// buildService wires the full stack on in-memory stores, with the frame
// event store swappable so appends can be made to fail.
func (s *MonitorServiceSuite) buildService(frameStore registry.Store[frames.FrameUse]) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	alerts, err := alerting.New(alerting.NewMemoryStore(), alerting.DefaultConfig(), alerting.WithLogger(logger))
	s.Require().NoError(err)

	framesSvc, err := frames.New(frameStore, frames.DefaultConfig(),
		frames.WithLogger(logger), frames.WithAlerts(alerts))
	s.Require().NoError(err)
	inquirySvc, err := inquiry.New(registry.NewMemoryStore[inquiry.Question](), inquiry.DefaultConfig(),
		inquiry.WithLogger(logger), inquiry.WithAlerts(alerts))
	s.Require().NoError(err)
	outcomesSvc, err := outcomes.New(registry.NewMemoryStore[outcomes.LaggedOutcome](), outcomes.DefaultConfig(),
		outcomes.WithLogger(logger), outcomes.WithAlerts(alerts))
	s.Require().NoError(err)
	observersSvc, err := observers.New(observers.NewMemoryStore(), observers.DefaultConfig(),
		observers.WithLogger(logger), observers.WithAlerts(alerts))
	s.Require().NoError(err)
	purposeSvc, err := purpose.New(purpose.NewMemoryPurposeStore(), registry.NewMemoryStore[purpose.UsageEvent](),
		purpose.DefaultConfig(), purpose.WithLogger(logger), purpose.WithAlerts(alerts))
	s.Require().NoError(err)

	gateSvc, err := gate.New(s.counters, gate.DefaultConfig(),
		gate.WithLogger(logger), gate.WithFatigueScorer(observersSvc))
	s.Require().NoError(err)
	s.gate = gateSvc

	agg, err := resilience.New(map[metric.Layer]resilience.Scorer{
		metric.LayerFrameworkDominance: framesSvc,
		metric.LayerQuestionEntropy:    inquirySvc,
		metric.LayerOutcomeRisk:        outcomesSvc,
		metric.LayerObserverFatigue:    observersSvc,
		metric.LayerPurposeDrift:       purposeSvc,
	}, resilience.DefaultConfig(), resilience.WithLogger(logger))
	s.Require().NoError(err)

	svc, err := New(gateSvc, framesSvc, inquirySvc, outcomesSvc, observersSvc, purposeSvc, agg,
		WithLogger(logger))
	s.Require().NoError(err)
	return svc
}

func (s *MonitorServiceSuite) inFlight() int {
	n, _, err := s.gate.Status(s.ctx, testActor)
	s.Require().NoError(err)
	return n
}

func (s *MonitorServiceSuite) TestSubmitFrame() {
	s.Run("admitted submission holds a slot until completion", func() {
		assessment, err := s.svc.SubmitFrame(s.ctx, makeFrameUse("budget"))
		s.Require().NoError(err)
		s.Equal(metric.LayerFrameworkDominance, assessment.Report.Layer)
		s.Equal(1, s.inFlight())

		s.Require().NoError(s.svc.CompleteAudit(s.ctx))
		s.Zero(s.inFlight())
	})

	s.Run("actor identity comes from the request context", func() {
		use := makeFrameUse("budget")
		use.ActorID = domain.ActorID("spoofed")
		_, err := s.svc.SubmitFrame(s.ctx, use)
		s.Require().NoError(err)

		recent, err := s.svc.frames.Dominance(s.ctx, "budget")
		s.Require().NoError(err)
		s.Positive(recent.WindowSize)
		s.Require().NoError(s.svc.CompleteAudit(s.ctx))
	})

	s.Run("missing identity is forbidden", func() {
		bare := requestcontext.WithTime(context.Background(), testNow)
		_, err := s.svc.SubmitFrame(bare, makeFrameUse("budget"))
		s.True(dErrors.Is(err, dErrors.CodeForbidden))
	})

	s.Run("gate rejection leaves no slot held", func() {
		use := makeFrameUse("budget")
		use.ConfidenceWeight = 0.96
		_, err := s.svc.SubmitFrame(s.ctx, use)

		var rej *gate.Rejection
		s.Require().ErrorAs(err, &rej)
		s.Equal(gate.KindConfidenceCapExceeded, rej.Kind)
		s.Zero(s.inFlight())
	})

	s.Run("concurrency limit binds across submissions", func() {
		for range 3 {
			_, err := s.svc.SubmitFrame(s.ctx, makeFrameUse("budget"))
			s.Require().NoError(err)
		}
		_, err := s.svc.SubmitFrame(s.ctx, makeFrameUse("budget"))
		var rej *gate.Rejection
		s.Require().ErrorAs(err, &rej)
		s.Equal(gate.KindConcurrencyExceeded, rej.Kind)

		for range 3 {
			s.Require().NoError(s.svc.CompleteAudit(s.ctx))
		}
	})
}

func (s *MonitorServiceSuite) TestSubmitFrameAppendFailure() {
	svc := s.buildService(failingFrameStore{})

	_, err := svc.SubmitFrame(s.ctx, makeFrameUse("budget"))
	s.True(dErrors.Is(err, dErrors.CodeUnavailable))
	// The admitted slot must come back when nothing was recorded.
	s.Zero(s.inFlight())
}

func (s *MonitorServiceSuite) TestSubmitQuestion() {
	q := inquiry.Question{
		Domain:      "budget",
		Text:        "Which assumptions went unexamined?",
		AskedAt:     testNow.Add(-time.Hour),
		Complexity:  3,
		Sensitivity: 2,
		Provenance:  testProvenance(),
	}
	assessment, err := s.svc.SubmitQuestion(s.ctx, q)
	s.Require().NoError(err)
	s.Equal(metric.LayerQuestionEntropy, assessment.Report.Layer)
	s.Equal(1, s.inFlight())
	s.Require().NoError(s.svc.CompleteAudit(s.ctx))
}

func (s *MonitorServiceSuite) TestTrackOutcome() {
	decided := testNow.Add(-60 * 24 * time.Hour)
	req := outcomes.TrackRequest{
		DecisionID:          domain.DecisionID("dec-1"),
		DecisionDate:        decided,
		Beneficiary:         "vendor-a",
		BenefitRealizedDate: decided.Add(45 * 24 * time.Hour),
		Provenance:          testProvenance(),
	}
	outcome, assessment, err := s.svc.TrackOutcome(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(45, outcome.LagDays)
	s.Equal(1, assessment.Decisions)
	s.Require().NoError(s.svc.CompleteAudit(s.ctx))
}

func (s *MonitorServiceSuite) TestTrackPurposeUsage() {
	p := purpose.SystemPurpose{
		ID:             domain.PurposeID("p-1"),
		Domain:         "grants",
		OriginalIntent: "allocate community development funding fairly",
		Provenance:     testProvenance(),
	}
	_, err := s.svc.purpose.Declare(s.ctx, p)
	s.Require().NoError(err)

	s.Run("usage recorded and drift evaluated", func() {
		event := purpose.UsageEvent{
			PurposeID:  domain.PurposeID("p-1"),
			EventType:  "allocation",
			EventAt:    testNow.Add(-time.Hour),
			Provenance: testProvenance(),
		}
		assessment, err := s.svc.TrackPurposeUsage(s.ctx, event)
		s.Require().NoError(err)
		s.Equal(purpose.StateActive, assessment.State)
		s.Equal(1, s.inFlight())
		s.Require().NoError(s.svc.CompleteAudit(s.ctx))
	})

	s.Run("undeclared purpose releases the slot", func() {
		event := purpose.UsageEvent{
			PurposeID:  domain.PurposeID("p-2"),
			EventType:  "allocation",
			EventAt:    testNow,
			Provenance: testProvenance(),
		}
		_, err := s.svc.TrackPurposeUsage(s.ctx, event)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
		s.Zero(s.inFlight())
	})
}

func (s *MonitorServiceSuite) TestRecordObserverActivity() {
	s.Run("activity is not gated", func() {
		activity := observers.Activity{
			ObserverID:     testActor,
			AuditsReviewed: 4,
			PendingAudits:  1,
			Provenance:     testProvenance(),
		}
		assessment, err := s.svc.RecordObserverActivity(s.ctx, activity)
		s.Require().NoError(err)
		s.Equal(observers.TierLow, assessment.Tier)
		s.Zero(s.inFlight())
	})

	s.Run("critical fatigue installs a cooldown and blocks new work", func() {
		activity := observers.Activity{
			ObserverID:            testActor,
			AuditsReviewed:        25,
			CorrectionRate:        0.55,
			ContradictionExposure: 0.75,
			PendingAudits:         12,
			Provenance:            testProvenance(),
		}
		assessment, err := s.svc.RecordObserverActivity(s.ctx, activity)
		s.Require().NoError(err)
		s.Equal(observers.TierCritical, assessment.Tier)

		_, cooldown, err := s.gate.Status(s.ctx, testActor)
		s.Require().NoError(err)
		s.Require().NotNil(cooldown)
		s.Equal(gate.ReasonFatigueCritical, cooldown.Reason)
		s.Equal(72, cooldown.DurationHours)

		_, err = s.svc.SubmitFrame(s.ctx, makeFrameUse("budget"))
		var rej *gate.Rejection
		s.Require().ErrorAs(err, &rej)
		s.Equal(gate.KindCooldownActive, rej.Kind)
	})
}

func (s *MonitorServiceSuite) TestResilience() {
	summary, err := s.svc.Resilience(s.ctx)
	s.Require().NoError(err)
	s.InDelta(100.0, summary.Score, 1e-9)
	s.Len(summary.Layers, 5)
}

func (s *MonitorServiceSuite) TestNew() {
	_, err := New(nil, s.svc.frames, s.svc.inquiry, s.svc.outcomes, s.svc.observers, s.svc.purpose, s.svc.resilience)
	s.True(dErrors.Is(err, dErrors.CodeInternal))
}
