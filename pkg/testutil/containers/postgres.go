//go:build integration

// Package containers starts throwaway infrastructure for integration tests.
package containers

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance with the
// engine schema and a minimal Open Civic Data schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	URL       string
	DB        *sql.DB
}

// NewPostgresContainer starts a PostgreSQL container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("civiq_test"),
		tcpostgres.WithUsername("civiq"),
		tcpostgres.WithPassword("civiq"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{Container: container, URL: url, DB: db}
}

// Truncate empties every table between tests.
func (p *PostgresContainer) Truncate(ctx context.Context) error {
	_, err := p.DB.ExecContext(ctx, `
		TRUNCATE dq_issue, dq_patch,
			opencivicdata_personvote, opencivicdata_votecount, opencivicdata_voteevent,
			opencivicdata_billsponsorship, opencivicdata_billversion, opencivicdata_billaction,
			opencivicdata_bill, opencivicdata_legislativesession,
			opencivicdata_membership, opencivicdata_post,
			opencivicdata_personcontactdetail, opencivicdata_person,
			opencivicdata_organization, opencivicdata_jurisdiction
		CASCADE
	`)
	return err
}

const schema = `
CREATE TABLE opencivicdata_jurisdiction (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE opencivicdata_organization (
	id              TEXT PRIMARY KEY,
	jurisdiction_id TEXT NOT NULL REFERENCES opencivicdata_jurisdiction (id),
	name            TEXT NOT NULL,
	classification  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE opencivicdata_person (
	id    TEXT PRIMARY KEY,
	name  TEXT NOT NULL,
	image TEXT NOT NULL DEFAULT ''
);

CREATE TABLE opencivicdata_personcontactdetail (
	id        SERIAL PRIMARY KEY,
	person_id TEXT NOT NULL REFERENCES opencivicdata_person (id),
	type      TEXT NOT NULL,
	value     TEXT NOT NULL,
	note      TEXT NOT NULL DEFAULT '',
	label     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE opencivicdata_post (
	id                  TEXT PRIMARY KEY,
	organization_id     TEXT NOT NULL REFERENCES opencivicdata_organization (id),
	label               TEXT NOT NULL DEFAULT '',
	maximum_memberships INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE opencivicdata_membership (
	id              TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL REFERENCES opencivicdata_organization (id),
	post_id         TEXT REFERENCES opencivicdata_post (id),
	person_id       TEXT REFERENCES opencivicdata_person (id),
	person_name     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE opencivicdata_legislativesession (
	id              TEXT PRIMARY KEY,
	jurisdiction_id TEXT NOT NULL REFERENCES opencivicdata_jurisdiction (id)
);

CREATE TABLE opencivicdata_bill (
	id                     TEXT PRIMARY KEY,
	legislative_session_id TEXT NOT NULL REFERENCES opencivicdata_legislativesession (id),
	identifier             TEXT NOT NULL
);

CREATE TABLE opencivicdata_billaction (
	id      SERIAL PRIMARY KEY,
	bill_id TEXT NOT NULL REFERENCES opencivicdata_bill (id)
);

CREATE TABLE opencivicdata_billversion (
	id      SERIAL PRIMARY KEY,
	bill_id TEXT NOT NULL REFERENCES opencivicdata_bill (id)
);

CREATE TABLE opencivicdata_billsponsorship (
	id              SERIAL PRIMARY KEY,
	bill_id         TEXT NOT NULL REFERENCES opencivicdata_bill (id),
	entity_type     TEXT NOT NULL,
	name            TEXT NOT NULL,
	person_id       TEXT REFERENCES opencivicdata_person (id),
	organization_id TEXT REFERENCES opencivicdata_organization (id)
);

CREATE TABLE opencivicdata_voteevent (
	id                     TEXT PRIMARY KEY,
	legislative_session_id TEXT NOT NULL REFERENCES opencivicdata_legislativesession (id),
	bill_id                TEXT REFERENCES opencivicdata_bill (id)
);

CREATE TABLE opencivicdata_votecount (
	id            SERIAL PRIMARY KEY,
	vote_event_id TEXT NOT NULL REFERENCES opencivicdata_voteevent (id),
	option        TEXT NOT NULL,
	value         INTEGER NOT NULL
);

CREATE TABLE opencivicdata_personvote (
	id            SERIAL PRIMARY KEY,
	vote_event_id TEXT NOT NULL REFERENCES opencivicdata_voteevent (id),
	option        TEXT NOT NULL,
	voter_id      TEXT REFERENCES opencivicdata_person (id),
	voter_name    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE dq_issue (
	id              UUID PRIMARY KEY,
	kind            TEXT NOT NULL,
	subject_id      TEXT NOT NULL DEFAULT '',
	jurisdiction_id TEXT NOT NULL,
	slug            TEXT NOT NULL,
	severity        TEXT NOT NULL,
	status          TEXT NOT NULL,
	unmatched_name  TEXT NOT NULL DEFAULT '',
	occurrences     INTEGER NOT NULL DEFAULT 0,
	message         TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX dq_issue_jur_kind_status ON dq_issue (jurisdiction_id, kind, status);

CREATE TABLE dq_patch (
	id              UUID PRIMARY KEY,
	kind            TEXT NOT NULL,
	subject_id      TEXT NOT NULL,
	jurisdiction_id TEXT NOT NULL,
	status          TEXT NOT NULL,
	category        TEXT NOT NULL,
	old_value       TEXT NOT NULL DEFAULT '',
	new_value       TEXT NOT NULL,
	note            TEXT NOT NULL DEFAULT '',
	source          TEXT NOT NULL DEFAULT '',
	reporter_name   TEXT NOT NULL DEFAULT '',
	reporter_email  TEXT NOT NULL DEFAULT '',
	applied_by      TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX dq_patch_jur_status ON dq_patch (jurisdiction_id, status);
`
