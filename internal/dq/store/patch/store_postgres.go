package patch

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"civiq/internal/dq/models"
	"civiq/internal/dq/ports"
	"civiq/pkg/domain"
	"civiq/pkg/platform/sentinel"
	txcontext "civiq/pkg/platform/tx"

	"github.com/google/uuid"
)

// PostgresStore persists patches in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const patchColumns = `id, kind, subject_id, jurisdiction_id, status, category, old_value, new_value, note, source, reporter_name, reporter_email, applied_by`

func (s *PostgresStore) Create(ctx context.Context, p *models.Patch) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO dq_patch (id, kind, subject_id, jurisdiction_id, status, category, old_value, new_value, note, source, reporter_name, reporter_email, applied_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, p.ID, string(p.Subject.Kind), p.Subject.ID, string(p.Jurisdiction), string(p.Status),
		string(p.Category), p.OldValue, p.NewValue, p.Note, p.Source,
		p.ReporterName, p.ReporterEmail, p.AppliedBy, time.Now())
	if err != nil {
		return fmt.Errorf("insert patch: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Patch, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		"SELECT "+patchColumns+" FROM dq_patch WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("query patch: %w", err)
	}
	defer rows.Close()
	patches, err := scanPatches(rows)
	if err != nil {
		return nil, err
	}
	if len(patches) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return patches[0], nil
}

func (s *PostgresStore) List(ctx context.Context, q ports.PatchQuery) ([]*models.Patch, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if q.Jurisdiction != "" {
		add("jurisdiction_id = $%d", string(q.Jurisdiction))
	}
	if !q.Subject.IsZero() {
		add("kind = $%d", string(q.Subject.Kind))
		add("subject_id = $%d", q.Subject.ID)
	}
	if q.Status != "" {
		add("status = $%d", string(q.Status))
	}
	if q.Category != "" {
		add("category = $%d", string(q.Category))
	}

	query := "SELECT " + patchColumns + " FROM dq_patch"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query patches: %w", err)
	}
	defer rows.Close()
	return scanPatches(rows)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PatchStatus, appliedBy string) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE dq_patch
		SET status = $2, applied_by = CASE WHEN $3 = '' THEN applied_by ELSE $3 END
		WHERE id = $1
	`, id, string(status), appliedBy)
	if err != nil {
		return fmt.Errorf("update patch status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) HasUnreviewedFromReporter(ctx context.Context, subject domain.SubjectRef, category models.PatchCategory, reporterEmail string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM dq_patch
			WHERE kind = $1 AND subject_id = $2 AND category = $3
			  AND status = $4 AND reporter_email = $5
		)
	`, string(subject.Kind), subject.ID, string(category),
		string(models.PatchUnreviewed), reporterEmail).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check duplicate submission: %w", err)
	}
	return exists, nil
}

func scanPatches(rows *sql.Rows) ([]*models.Patch, error) {
	var out []*models.Patch
	for rows.Next() {
		p := &models.Patch{}
		var kind, subjectID string
		err := rows.Scan(&p.ID, &kind, &subjectID, &p.Jurisdiction, &p.Status, &p.Category,
			&p.OldValue, &p.NewValue, &p.Note, &p.Source,
			&p.ReporterName, &p.ReporterEmail, &p.AppliedBy)
		if err != nil {
			return nil, fmt.Errorf("scan patch: %w", err)
		}
		p.Subject = domain.SubjectRef{Kind: domain.SubjectKind(kind), ID: subjectID}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patches: %w", err)
	}
	return out, nil
}
