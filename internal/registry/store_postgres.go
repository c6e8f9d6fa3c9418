package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	dErrors "vigil/pkg/domain-errors"
)

// PostgresStore persists observations in PostgreSQL as JSON payloads. One
// table per observation kind; the serial id column preserves append order
// within a key. This store is pure I/O—window arithmetic belongs to the
// calculators.
type PostgresStore[R Record] struct {
	db    *sql.DB
	table string
}

// NewPostgres constructs a PostgreSQL-backed registry over the given table.
// The table must have (id BIGSERIAL, domain_key TEXT, occurred_at TIMESTAMPTZ,
// payload JSONB) columns.
func NewPostgres[R Record](db *sql.DB, table string) *PostgresStore[R] {
	return &PostgresStore[R]{db: db, table: table}
}

func (s *PostgresStore[R]) Append(ctx context.Context, key string, rec R) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode observation")
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (domain_key, occurred_at, payload)
		VALUES ($1, $2, $3)
	`, s.table)
	if _, err := s.db.ExecContext(ctx, query, key, rec.OccurredAt(), payload); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "append observation")
	}
	return nil
}

func (s *PostgresStore[R]) Query(ctx context.Context, key string, rng TimeRange) ([]R, error) {
	query := fmt.Sprintf(`
		SELECT payload FROM %s
		WHERE domain_key = $1
		  AND ($2::timestamptz IS NULL OR occurred_at >= $2)
		  AND ($3::timestamptz IS NULL OR occurred_at < $3)
		ORDER BY id
	`, s.table)

	rows, err := s.db.QueryContext(ctx, query, key, nullableTime(rng.From), nullableTime(rng.To))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "query observations")
	}
	defer rows.Close()

	var out []R
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "scan observation")
		}
		var rec R
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode observation")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "iterate observations")
	}
	return out, nil
}

func (s *PostgresStore[R]) Keys(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT DISTINCT domain_key FROM %s ORDER BY domain_key`, s.table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list keys")
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "scan key")
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "iterate keys")
	}
	return keys, nil
}

func (s *PostgresStore[R]) Count(ctx context.Context, key string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE domain_key = $1`, s.table)
	var count int
	if err := s.db.QueryRowContext(ctx, query, key).Scan(&count); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "count observations")
	}
	return count, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
