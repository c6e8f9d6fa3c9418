//go:build integration

package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vigil/pkg/testutil/containers"
)

type observation struct {
	At    time.Time `json:"at"`
	Value string    `json:"value"`
}

func (o observation) OccurredAt() time.Time { return o.At }

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore[observation]
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = NewPostgres[observation](s.pg.DB, "frame_events")
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(s.ctx))
}

func (s *PostgresStoreSuite) TestAppendAndQuery() {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	s.Run("unknown key yields empty snapshot", func() {
		got, err := s.store.Query(s.ctx, "ghost", All())
		s.Require().NoError(err)
		s.Empty(got)
	})

	s.Run("append order survives a round trip", func() {
		for i, v := range []string{"first", "second", "third"} {
			rec := observation{At: base.Add(time.Duration(i) * time.Minute), Value: v}
			s.Require().NoError(s.store.Append(s.ctx, "budget", rec))
		}

		got, err := s.store.Query(s.ctx, "budget", All())
		s.Require().NoError(err)
		s.Require().Len(got, 3)
		s.Equal("first", got[0].Value)
		s.Equal("third", got[2].Value)
		s.True(got[1].At.Equal(base.Add(time.Minute)))
	})

	s.Run("backfilled timestamps keep insertion order", func() {
		s.Require().NoError(s.store.Append(s.ctx, "hiring", observation{At: base, Value: "recent"}))
		s.Require().NoError(s.store.Append(s.ctx, "hiring", observation{At: base.Add(-time.Hour), Value: "backfill"}))

		got, err := s.store.Query(s.ctx, "hiring", All())
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.Equal("recent", got[0].Value)
		s.Equal("backfill", got[1].Value)
	})
}

func (s *PostgresStoreSuite) TestTimeRanges() {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	for i := range 5 {
		rec := observation{At: base.Add(time.Duration(i) * time.Hour), Value: "v"}
		s.Require().NoError(s.store.Append(s.ctx, "budget", rec))
	}

	s.Run("since is inclusive", func() {
		got, err := s.store.Query(s.ctx, "budget", Since(base.Add(2*time.Hour)))
		s.Require().NoError(err)
		s.Len(got, 3)
	})

	s.Run("between is half open", func() {
		got, err := s.store.Query(s.ctx, "budget", Between(base.Add(time.Hour), base.Add(3*time.Hour)))
		s.Require().NoError(err)
		s.Len(got, 2)
	})
}

func (s *PostgresStoreSuite) TestKeysAndCount() {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Append(s.ctx, "beta", observation{At: base, Value: "v"}))
	s.Require().NoError(s.store.Append(s.ctx, "alpha", observation{At: base, Value: "v"}))
	s.Require().NoError(s.store.Append(s.ctx, "alpha", observation{At: base, Value: "v"}))

	keys, err := s.store.Keys(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"alpha", "beta"}, keys)

	count, err := s.store.Count(s.ctx, "alpha")
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *PostgresStoreSuite) TestTablesAreIndependent() {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	questions := NewPostgres[observation](s.pg.DB, "question_events")

	s.Require().NoError(s.store.Append(s.ctx, "budget", observation{At: base, Value: "frame"}))
	s.Require().NoError(questions.Append(s.ctx, "budget", observation{At: base, Value: "question"}))

	got, err := s.store.Query(s.ctx, "budget", All())
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("frame", got[0].Value)
}
