package alerting

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"vigil/internal/metric"
	dErrors "vigil/pkg/domain-errors"
)

// PostgresStore persists alerts in PostgreSQL. Pure I/O—dedup and resolution
// policy belong to the engine.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed alert store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, alert *Alert) error {
	query := `
		INSERT INTO alerts (id, layer, dedup_key, magnitude, threshold, detected_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		alert.ID,
		string(alert.Layer),
		alert.DedupKey,
		alert.Magnitude,
		alert.Threshold,
		alert.DetectedAt,
		alert.ResolvedAt,
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "insert alert")
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Alert, error) {
	query := `
		SELECT id, layer, dedup_key, magnitude, threshold, detected_at, resolved_at
		FROM alerts
		WHERE id = $1
	`
	alert, err := scanAlert(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "get alert")
	}
	return alert, nil
}

func (s *PostgresStore) Latest(ctx context.Context, layer metric.Layer, dedupKey string) (*Alert, error) {
	query := `
		SELECT id, layer, dedup_key, magnitude, threshold, detected_at, resolved_at
		FROM alerts
		WHERE layer = $1 AND dedup_key = $2
		ORDER BY detected_at DESC
		LIMIT 1
	`
	alert, err := scanAlert(s.db.QueryRowContext(ctx, query, string(layer), dedupKey))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "latest alert")
	}
	return alert, nil
}

func (s *PostgresStore) List(ctx context.Context, layer metric.Layer) ([]*Alert, error) {
	query := `
		SELECT id, layer, dedup_key, magnitude, threshold, detected_at, resolved_at
		FROM alerts
		WHERE $1 = '' OR layer = $1
		ORDER BY detected_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, string(layer))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list alerts")
	}
	defer rows.Close()

	var out []*Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "scan alert")
		}
		out = append(out, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "iterate alerts")
	}
	return out, nil
}

func (s *PostgresStore) MarkResolved(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE alerts SET resolved_at = $2 WHERE id = $1 AND resolved_at IS NULL`
	if _, err := s.db.ExecContext(ctx, query, id, at); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "resolve alert")
	}
	return nil
}

func (s *PostgresStore) MarkResolvedByKey(ctx context.Context, layer metric.Layer, dedupKey string, at time.Time) (int, error) {
	query := `
		UPDATE alerts SET resolved_at = $3
		WHERE layer = $1 AND dedup_key = $2 AND resolved_at IS NULL
	`
	res, err := s.db.ExecContext(ctx, query, string(layer), dedupKey, at)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "resolve alerts by key")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "resolve alerts by key")
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (*Alert, error) {
	var (
		alert    Alert
		layer    string
		resolved sql.NullTime
	)
	if err := row.Scan(&alert.ID, &layer, &alert.DedupKey, &alert.Magnitude,
		&alert.Threshold, &alert.DetectedAt, &resolved); err != nil {
		return nil, err
	}
	alert.Layer = metric.Layer(layer)
	if resolved.Valid {
		alert.ResolvedAt = &resolved.Time
	}
	return &alert, nil
}
