//go:build integration

package containers

// Schema creates every table the Postgres stores expect. Mirrors the
// production migrations.
const Schema = `
CREATE TABLE IF NOT EXISTS frame_events (
	id          BIGSERIAL PRIMARY KEY,
	domain_key  TEXT        NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	payload     JSONB       NOT NULL
);
CREATE INDEX IF NOT EXISTS frame_events_key_idx ON frame_events (domain_key, occurred_at);

CREATE TABLE IF NOT EXISTS question_events (
	id          BIGSERIAL PRIMARY KEY,
	domain_key  TEXT        NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	payload     JSONB       NOT NULL
);
CREATE INDEX IF NOT EXISTS question_events_key_idx ON question_events (domain_key, occurred_at);

CREATE TABLE IF NOT EXISTS outcome_events (
	id          BIGSERIAL PRIMARY KEY,
	domain_key  TEXT        NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	payload     JSONB       NOT NULL
);
CREATE INDEX IF NOT EXISTS outcome_events_key_idx ON outcome_events (domain_key, occurred_at);

CREATE TABLE IF NOT EXISTS usage_events (
	id          BIGSERIAL PRIMARY KEY,
	domain_key  TEXT        NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	payload     JSONB       NOT NULL
);
CREATE INDEX IF NOT EXISTS usage_events_key_idx ON usage_events (domain_key, occurred_at);

CREATE TABLE IF NOT EXISTS alerts (
	id          UUID PRIMARY KEY,
	layer       TEXT             NOT NULL,
	dedup_key   TEXT             NOT NULL,
	magnitude   DOUBLE PRECISION NOT NULL,
	threshold   DOUBLE PRECISION NOT NULL,
	detected_at TIMESTAMPTZ      NOT NULL,
	resolved_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS alerts_layer_key_idx ON alerts (layer, dedup_key, detected_at DESC);

CREATE TABLE IF NOT EXISTS observer_metrics (
	observer_id            TEXT PRIMARY KEY,
	audits_reviewed        INTEGER          NOT NULL,
	correction_rate        DOUBLE PRECISION NOT NULL,
	contradiction_exposure DOUBLE PRECISION NOT NULL,
	fatigue_score          INTEGER          NOT NULL,
	fatigue_risk           TEXT             NOT NULL,
	pending_audits         INTEGER          NOT NULL,
	last_break             TIMESTAMPTZ,
	updated_at             TIMESTAMPTZ      NOT NULL
);

CREATE TABLE IF NOT EXISTS system_purposes (
	id                TEXT PRIMARY KEY,
	domain            TEXT        NOT NULL,
	original_intent   TEXT        NOT NULL,
	declared_at       TIMESTAMPTZ NOT NULL,
	last_recommitment TIMESTAMPTZ NOT NULL,
	state             TEXT        NOT NULL,
	data_scope        TEXT        NOT NULL,
	evidence_type     TEXT        NOT NULL,
	origin            TEXT        NOT NULL
);
`
