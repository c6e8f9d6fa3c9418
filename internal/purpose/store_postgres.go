package purpose

import (
	"context"
	"database/sql"

	"vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
)

// PostgresPurposeStore persists purposes in PostgreSQL.
type PostgresPurposeStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed purpose store.
func NewPostgres(db *sql.DB) *PostgresPurposeStore {
	return &PostgresPurposeStore{db: db}
}

const purposeColumns = `id, domain, original_intent, declared_at, last_recommitment, state,
		data_scope, evidence_type, origin`

func (s *PostgresPurposeStore) Get(ctx context.Context, id domain.PurposeID) (*SystemPurpose, error) {
	query := `SELECT ` + purposeColumns + ` FROM system_purposes WHERE id = $1`
	p, err := scanPurpose(s.db.QueryRowContext(ctx, query, string(id)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "get purpose")
	}
	return p, nil
}

func (s *PostgresPurposeStore) Create(ctx context.Context, p *SystemPurpose) error {
	query := `
		INSERT INTO system_purposes (` + purposeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query, purposeArgs(p)...)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "create purpose")
	}
	return nil
}

func (s *PostgresPurposeStore) Update(ctx context.Context, p *SystemPurpose) error {
	query := `
		UPDATE system_purposes SET
			domain = $2,
			original_intent = $3,
			declared_at = $4,
			last_recommitment = $5,
			state = $6,
			data_scope = $7,
			evidence_type = $8,
			origin = $9
		WHERE id = $1
	`
	_, err := s.db.ExecContext(ctx, query, purposeArgs(p)...)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "update purpose")
	}
	return nil
}

func (s *PostgresPurposeStore) List(ctx context.Context) ([]*SystemPurpose, error) {
	query := `SELECT ` + purposeColumns + ` FROM system_purposes ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list purposes")
	}
	defer rows.Close()

	var out []*SystemPurpose
	for rows.Next() {
		p, err := scanPurpose(rows)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "scan purpose")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "iterate purposes")
	}
	return out, nil
}

func purposeArgs(p *SystemPurpose) []any {
	return []any{
		string(p.ID),
		p.Domain,
		p.OriginalIntent,
		p.DeclaredAt,
		p.LastRecommitment,
		string(p.State),
		string(p.Provenance.DataScope),
		string(p.Provenance.EvidenceType),
		p.Provenance.Origin,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPurpose(row rowScanner) (*SystemPurpose, error) {
	var (
		p        SystemPurpose
		id       string
		state    string
		scope    string
		evidence string
	)
	if err := row.Scan(&id, &p.Domain, &p.OriginalIntent, &p.DeclaredAt,
		&p.LastRecommitment, &state, &scope, &evidence, &p.Provenance.Origin); err != nil {
		return nil, err
	}
	p.ID = domain.PurposeID(id)
	p.State = State(state)
	p.Provenance.DataScope = domain.DataScope(scope)
	p.Provenance.EvidenceType = domain.EvidenceType(evidence)
	return &p, nil
}
