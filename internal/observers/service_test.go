package observers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vigil/internal/alerting"
	"vigil/internal/metric"
	"vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/requestcontext"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func makeActivity(id string) Activity {
	return Activity{
		ObserverID:            domain.ActorID(id),
		AuditsReviewed:        8,
		CorrectionRate:        0.05,
		ContradictionExposure: 0.1,
		PendingAudits:         4,
		Provenance: domain.Provenance{
			DataScope:    domain.ScopeObserved,
			EvidenceType: domain.EvidenceDirect,
			Origin:       "review-system",
		},
	}
}

type ObserversServiceSuite struct {
	suite.Suite
	store  *MemoryStore
	alerts *alerting.Engine
	svc    *Service
	ctx    context.Context
}

func TestObserversServiceSuite(t *testing.T) {
	suite.Run(t, new(ObserversServiceSuite))
}

func (s *ObserversServiceSuite) SetupTest() {
	s.store = NewMemoryStore()
	var err error
	s.alerts, err = alerting.New(alerting.NewMemoryStore(), alerting.DefaultConfig())
	s.Require().NoError(err)
	s.svc, err = New(s.store, DefaultConfig(), WithAlerts(s.alerts))
	s.Require().NoError(err)
	s.ctx = requestcontext.WithTime(context.Background(), testNow)
}

func (s *ObserversServiceSuite) TestRecordActivity() {
	s.Run("upsert derives score and tier", func() {
		m, err := s.svc.RecordActivity(s.ctx, makeActivity("obs-1"))
		s.Require().NoError(err)
		// 8 audits: 1; low correction and contradiction: 0; no break on
		// record defaults to the 72h penalty: 2.
		s.Equal(3, m.FatigueScore)
		s.Equal(TierLow, m.FatigueRisk)
		s.Equal(testNow, m.UpdatedAt)
	})

	s.Run("exhausted observer tiers critical", func() {
		activity := Activity{
			ObserverID:            domain.ActorID("obs-2"),
			AuditsReviewed:        25,
			CorrectionRate:        0.55,
			ContradictionExposure: 0.75,
			PendingAudits:         12,
			Provenance:            makeActivity("obs-2").Provenance,
		}
		breakAt := testNow.Add(-50 * time.Hour)
		ctxWithBreak := requestcontext.WithTime(context.Background(), breakAt)
		tookBreak := activity
		tookBreak.TookBreak = true
		_, err := s.svc.RecordActivity(ctxWithBreak, tookBreak)
		s.Require().NoError(err)

		m, err := s.svc.RecordActivity(s.ctx, activity)
		s.Require().NoError(err)
		s.Equal(10, m.FatigueScore)
		s.Equal(TierCritical, m.FatigueRisk)
	})

	s.Run("break resets the since-break penalty", func() {
		activity := makeActivity("obs-3")
		activity.TookBreak = true
		m, err := s.svc.RecordActivity(s.ctx, activity)
		s.Require().NoError(err)
		s.Equal(1, m.FatigueScore)
		s.Require().NotNil(m.LastBreak)
		s.Equal(testNow, *m.LastBreak)
	})

	s.Run("correction rate out of range rejected", func() {
		activity := makeActivity("obs-4")
		activity.CorrectionRate = 1.2
		_, err := s.svc.RecordActivity(s.ctx, activity)
		s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
	})
}

func (s *ObserversServiceSuite) TestFatigue() {
	s.Run("unknown observer is neutral", func() {
		assessment, err := s.svc.Fatigue(s.ctx, domain.ActorID("ghost"))
		s.Require().NoError(err)
		s.Zero(assessment.Score)
		s.Equal(TierLow, assessment.Tier)
		s.False(assessment.Report.Exceeded)
	})

	s.Run("score recomputes against current time", func() {
		activity := makeActivity("obs-1")
		activity.TookBreak = true
		_, err := s.svc.RecordActivity(s.ctx, activity)
		s.Require().NoError(err)

		// Same data read two days later: the since-break bucket has aged
		// from 0 to 2 points.
		later := requestcontext.WithTime(context.Background(), testNow.Add(49*time.Hour))
		assessment, err := s.svc.Fatigue(later, domain.ActorID("obs-1"))
		s.Require().NoError(err)
		s.Equal(3, assessment.Score)
	})

	s.Run("threshold is inclusive", func() {
		activity := Activity{
			ObserverID:            domain.ActorID("obs-7"),
			AuditsReviewed:        25,
			CorrectionRate:        0.3,
			PendingAudits:         1,
			Provenance:            makeActivity("obs-7").Provenance,
		}
		_, err := s.svc.RecordActivity(s.ctx, activity)
		s.Require().NoError(err)

		assessment, err := s.svc.Fatigue(s.ctx, domain.ActorID("obs-7"))
		s.Require().NoError(err)
		s.Equal(7, assessment.Score)
		s.True(assessment.Report.Exceeded)
		s.Equal(TierHigh, assessment.Tier)
	})
}

func (s *ObserversServiceSuite) TestEvaluate() {
	activity := Activity{
		ObserverID:            domain.ActorID("obs-1"),
		AuditsReviewed:        25,
		CorrectionRate:        0.55,
		ContradictionExposure: 0.75,
		PendingAudits:         3,
		Provenance:            makeActivity("obs-1").Provenance,
	}
	_, err := s.svc.RecordActivity(s.ctx, activity)
	s.Require().NoError(err)

	assessment, err := s.svc.Evaluate(s.ctx, domain.ActorID("obs-1"))
	s.Require().NoError(err)
	s.Equal(TierCritical, assessment.Tier)

	alerts, err := s.alerts.List(s.ctx, metric.LayerObserverFatigue)
	s.Require().NoError(err)
	s.Len(alerts, 1)
}

func (s *ObserversServiceSuite) TestCooldownDuration() {
	s.Equal(72*time.Hour, s.svc.CooldownDuration(9))
	s.Equal(72*time.Hour, s.svc.CooldownDuration(10))
	s.Equal(48*time.Hour, s.svc.CooldownDuration(7))
	s.Equal(24*time.Hour, s.svc.CooldownDuration(3))
}

func (s *ObserversServiceSuite) TestRedistribute() {
	s.Run("no low-risk targets is a no-op", func() {
		s.seedObserver("hot-1", TierHigh, 10)
		plan, err := s.svc.Redistribute(s.ctx)
		s.Require().NoError(err)
		s.Nil(plan)
	})

	s.Run("half of pending moves round robin", func() {
		s.seedObserver("calm-1", TierLow, 0)
		s.seedObserver("calm-2", TierLow, 0)

		plan, err := s.svc.Redistribute(s.ctx)
		s.Require().NoError(err)

		moved := 0
		for _, move := range plan {
			s.Equal(domain.ActorID("hot-1"), move.From)
			moved += move.Audits
		}
		s.Equal(5, moved)

		hot, err := s.store.Get(s.ctx, domain.ActorID("hot-1"))
		s.Require().NoError(err)
		s.Equal(5, hot.PendingAudits)

		calm1, err := s.store.Get(s.ctx, domain.ActorID("calm-1"))
		s.Require().NoError(err)
		calm2, err := s.store.Get(s.ctx, domain.ActorID("calm-2"))
		s.Require().NoError(err)
		s.Equal(3, calm1.PendingAudits)
		s.Equal(2, calm2.PendingAudits)
	})
}

func (s *ObserversServiceSuite) TestResilience() {
	s.Run("no observers yields full score", func() {
		score, err := s.svc.Resilience(s.ctx)
		s.Require().NoError(err)
		s.InDelta(100.0, score, 1e-9)
	})

	s.Run("high-risk share penalized twice over", func() {
		s.seedObserver("a", TierHigh, 0)
		s.seedObserver("b", TierLow, 0)
		s.seedObserver("c", TierLow, 0)
		s.seedObserver("d", TierLow, 0)

		score, err := s.svc.Resilience(s.ctx)
		s.Require().NoError(err)
		s.InDelta(50.0, score, 1e-9)
	})

	s.Run("floored at zero", func() {
		s.seedObserver("e", TierCritical, 0)
		s.seedObserver("f", TierCritical, 0)
		s.seedObserver("g", TierHigh, 0)

		score, err := s.svc.Resilience(s.ctx)
		s.Require().NoError(err)
		s.InDelta(0.0, score, 1e-9)
	})
}

func (s *ObserversServiceSuite) seedObserver(id string, tier Tier, pending int) {
	s.Require().NoError(s.store.Upsert(s.ctx, &ObserverMetric{
		ObserverID:    domain.ActorID(id),
		FatigueRisk:   tier,
		PendingAudits: pending,
		UpdatedAt:     testNow,
	}))
}
