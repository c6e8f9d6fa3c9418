package observers

import (
	"context"
	"database/sql"

	"vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
)

// PostgresStore persists observer rows in PostgreSQL. Pure I/O—fatigue
// derivation belongs to the service.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed observer store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const observerColumns = `observer_id, audits_reviewed, correction_rate, contradiction_exposure,
		fatigue_score, fatigue_risk, pending_audits, last_break, updated_at`

func (s *PostgresStore) Get(ctx context.Context, id domain.ActorID) (*ObserverMetric, error) {
	query := `SELECT ` + observerColumns + ` FROM observer_metrics WHERE observer_id = $1`
	m, err := scanObserver(s.db.QueryRowContext(ctx, query, string(id)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "get observer metric")
	}
	return m, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, m *ObserverMetric) error {
	query := `
		INSERT INTO observer_metrics (` + observerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (observer_id) DO UPDATE SET
			audits_reviewed = EXCLUDED.audits_reviewed,
			correction_rate = EXCLUDED.correction_rate,
			contradiction_exposure = EXCLUDED.contradiction_exposure,
			fatigue_score = EXCLUDED.fatigue_score,
			fatigue_risk = EXCLUDED.fatigue_risk,
			pending_audits = EXCLUDED.pending_audits,
			last_break = EXCLUDED.last_break,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		string(m.ObserverID),
		m.AuditsReviewed,
		m.CorrectionRate,
		m.ContradictionExposure,
		m.FatigueScore,
		string(m.FatigueRisk),
		m.PendingAudits,
		m.LastBreak,
		m.UpdatedAt,
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "upsert observer metric")
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*ObserverMetric, error) {
	query := `SELECT ` + observerColumns + ` FROM observer_metrics ORDER BY observer_id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list observer metrics")
	}
	defer rows.Close()

	var out []*ObserverMetric
	for rows.Next() {
		m, err := scanObserver(rows)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "scan observer metric")
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "iterate observer metrics")
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObserver(row rowScanner) (*ObserverMetric, error) {
	var (
		m         ObserverMetric
		id        string
		risk      string
		lastBreak sql.NullTime
	)
	if err := row.Scan(&id, &m.AuditsReviewed, &m.CorrectionRate, &m.ContradictionExposure,
		&m.FatigueScore, &risk, &m.PendingAudits, &lastBreak, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.ObserverID = domain.ActorID(id)
	m.FatigueRisk = Tier(risk)
	if lastBreak.Valid {
		m.LastBreak = &lastBreak.Time
	}
	return &m, nil
}
