//go:build integration

package observers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vigil/pkg/domain"
	"vigil/pkg/testutil/containers"
)

type PostgresObserverStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	ctx   context.Context
}

func TestPostgresObserverStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresObserverStoreSuite))
}

func (s *PostgresObserverStoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = NewPostgres(s.pg.DB)
	s.ctx = context.Background()
}

func (s *PostgresObserverStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(s.ctx))
}

func (s *PostgresObserverStoreSuite) row(id string) *ObserverMetric {
	return &ObserverMetric{
		ObserverID:            domain.ActorID(id),
		AuditsReviewed:        8,
		CorrectionRate:        0.05,
		ContradictionExposure: 0.1,
		FatigueScore:          3,
		FatigueRisk:           TierLow,
		PendingAudits:         4,
		UpdatedAt:             time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func (s *PostgresObserverStoreSuite) TestGetAbsent() {
	got, err := s.store.Get(s.ctx, domain.ActorID("ghost"))
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *PostgresObserverStoreSuite) TestUpsert() {
	row := s.row("observer-1")
	s.Require().NoError(s.store.Upsert(s.ctx, row))

	s.Run("round trip", func() {
		got, err := s.store.Get(s.ctx, row.ObserverID)
		s.Require().NoError(err)
		s.Require().NotNil(got)
		s.Equal(row.AuditsReviewed, got.AuditsReviewed)
		s.Equal(TierLow, got.FatigueRisk)
		s.Nil(got.LastBreak)
	})

	s.Run("second upsert replaces", func() {
		lastBreak := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
		row.AuditsReviewed = 25
		row.FatigueScore = 10
		row.FatigueRisk = TierCritical
		row.LastBreak = &lastBreak
		s.Require().NoError(s.store.Upsert(s.ctx, row))

		got, err := s.store.Get(s.ctx, row.ObserverID)
		s.Require().NoError(err)
		s.Equal(25, got.AuditsReviewed)
		s.Equal(TierCritical, got.FatigueRisk)
		s.Require().NotNil(got.LastBreak)
		s.True(got.LastBreak.Equal(lastBreak))
	})
}

func (s *PostgresObserverStoreSuite) TestListOrdersByID() {
	s.Require().NoError(s.store.Upsert(s.ctx, s.row("observer-2")))
	s.Require().NoError(s.store.Upsert(s.ctx, s.row("observer-1")))

	rows, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal(domain.ActorID("observer-1"), rows[0].ObserverID)
	s.Equal(domain.ActorID("observer-2"), rows[1].ObserverID)
}
