//go:build integration

package alerting

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"vigil/internal/metric"
	"vigil/pkg/requestcontext"
	"vigil/pkg/testutil/containers"
)

type PostgresAlertStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	ctx   context.Context
}

func TestPostgresAlertStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresAlertStoreSuite))
}

func (s *PostgresAlertStoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = NewPostgres(s.pg.DB)
	s.ctx = context.Background()
}

func (s *PostgresAlertStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(s.ctx))
}

func (s *PostgresAlertStoreSuite) alert(layer metric.Layer, key string, at time.Time) *Alert {
	return &Alert{
		ID:         uuid.New(),
		Layer:      layer,
		DedupKey:   key,
		Magnitude:  0.9,
		Threshold:  0.7,
		DetectedAt: at,
	}
}

func (s *PostgresAlertStoreSuite) TestInsertAndGet() {
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	alert := s.alert(metric.LayerFrameworkDominance, "budget", at)
	s.Require().NoError(s.store.Insert(s.ctx, alert))

	got, err := s.store.Get(s.ctx, alert.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(alert.DedupKey, got.DedupKey)
	s.True(got.DetectedAt.Equal(at))
	s.Nil(got.ResolvedAt)

	missing, err := s.store.Get(s.ctx, uuid.New())
	s.Require().NoError(err)
	s.Nil(missing)
}

func (s *PostgresAlertStoreSuite) TestLatestPicksNewest() {
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	older := s.alert(metric.LayerOutcomeRisk, "vendor-a", at)
	newer := s.alert(metric.LayerOutcomeRisk, "vendor-a", at.Add(time.Hour))
	s.Require().NoError(s.store.Insert(s.ctx, older))
	s.Require().NoError(s.store.Insert(s.ctx, newer))

	got, err := s.store.Latest(s.ctx, metric.LayerOutcomeRisk, "vendor-a")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(newer.ID, got.ID)
}

func (s *PostgresAlertStoreSuite) TestListFiltersByLayer() {
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Insert(s.ctx, s.alert(metric.LayerFrameworkDominance, "budget", at)))
	s.Require().NoError(s.store.Insert(s.ctx, s.alert(metric.LayerPurposeDrift, "p-1", at)))

	filtered, err := s.store.List(s.ctx, metric.LayerPurposeDrift)
	s.Require().NoError(err)
	s.Len(filtered, 1)

	all, err := s.store.List(s.ctx, "")
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *PostgresAlertStoreSuite) TestResolution() {
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	alert := s.alert(metric.LayerObserverFatigue, "observer-1", at)
	s.Require().NoError(s.store.Insert(s.ctx, alert))

	s.Require().NoError(s.store.MarkResolved(s.ctx, alert.ID, at.Add(time.Hour)))

	got, err := s.store.Get(s.ctx, alert.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.ResolvedAt)
	s.True(got.ResolvedAt.Equal(at.Add(time.Hour)))
}

func (s *PostgresAlertStoreSuite) TestResolveByKeyTouchesOnlyOpen() {
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	open := s.alert(metric.LayerPurposeDrift, "p-1", at)
	resolved := s.alert(metric.LayerPurposeDrift, "p-1", at.Add(-time.Hour))
	done := at.Add(-30 * time.Minute)
	resolved.ResolvedAt = &done

	s.Require().NoError(s.store.Insert(s.ctx, open))
	s.Require().NoError(s.store.Insert(s.ctx, resolved))

	n, err := s.store.MarkResolvedByKey(s.ctx, metric.LayerPurposeDrift, "p-1", at.Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(1, n)
}

// TestEngineDedupSurvivesRestart runs two engine instances over the same
// database; the second must honor dedup state written by the first.
func (s *PostgresAlertStoreSuite) TestEngineDedupSurvivesRestart() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := requestcontext.WithTime(s.ctx, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	first, err := New(s.store, DefaultConfig(), WithLogger(logger))
	s.Require().NoError(err)
	_, raised, err := first.Raise(ctx, metric.LayerFrameworkDominance, "budget", 0.9, 0.7, metric.SeverityHigh)
	s.Require().NoError(err)
	s.Require().True(raised)

	second, err := New(s.store, DefaultConfig(), WithLogger(logger))
	s.Require().NoError(err)
	_, raised, err = second.Raise(ctx, metric.LayerFrameworkDominance, "budget", 0.92, 0.7, metric.SeverityHigh)
	s.Require().NoError(err)
	s.False(raised)
}
