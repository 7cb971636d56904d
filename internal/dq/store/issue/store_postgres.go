package issue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"civiq/internal/dq/models"
	"civiq/internal/dq/ports"
	"civiq/pkg/domain"
	"civiq/pkg/platform/sentinel"
	txcontext "civiq/pkg/platform/tx"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore persists issues in PostgreSQL.
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

const issueColumns = `id, kind, subject_id, jurisdiction_id, slug, severity, status, unmatched_name, occurrences, message`

func (s *PostgresStore) List(ctx context.Context, q ports.IssueQuery) ([]*models.Issue, error) {
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
	if q.Kind != "" {
		add("kind = $%d", string(q.Kind))
	}
	if q.Slug != "" {
		add("slug = $%d", q.Slug)
	}
	if q.Status != "" {
		add("status = $%d", string(q.Status))
	}

	query := "SELECT " + issueColumns + " FROM dq_issue"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY slug, subject_id, unmatched_name"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query issues: %w", err)
	}
	defer rows.Close()
	return scanIssues(rows)
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		"SELECT "+issueColumns+" FROM dq_issue WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("query issue: %w", err)
	}
	defer rows.Close()
	issues, err := scanIssues(rows)
	if err != nil {
		return nil, err
	}
	if len(issues) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return issues[0], nil
}

// BulkCreate inserts all issues in a single COPY, the bulk path pq provides.
func (s *PostgresStore) BulkCreate(ctx context.Context, issues []*models.Issue) error {
	if len(issues) == 0 {
		return nil
	}
	if tx, ok := txcontext.From(ctx); ok {
		return copyIssuesIn(ctx, tx, issues)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := copyIssuesIn(ctx, tx, issues); err != nil {
		return err
	}
	return tx.Commit()
}

func copyIssuesIn(ctx context.Context, tx *sql.Tx, issues []*models.Issue) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("dq_issue",
		"id", "kind", "subject_id", "jurisdiction_id", "slug",
		"severity", "status", "unmatched_name", "occurrences", "message", "created_at"))
	if err != nil {
		return fmt.Errorf("prepare bulk insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, issue := range issues {
		if issue.ID == uuid.Nil {
			issue.ID = uuid.New()
		}
		_, err = stmt.ExecContext(ctx,
			issue.ID, string(issue.Kind), issue.Subject.ID, string(issue.Jurisdiction),
			issue.Slug, string(issue.Severity), string(issue.Status),
			issue.UnmatchedName, issue.Occurrences, issue.Message, now)
		if err != nil {
			return fmt.Errorf("buffer issue row: %w", err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("flush bulk insert: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, issue *models.Issue) error {
	if issue.ID == uuid.Nil {
		issue.ID = uuid.New()
	}
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO dq_issue (id, kind, subject_id, jurisdiction_id, slug, severity, status, unmatched_name, occurrences, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, issue.ID, string(issue.Kind), issue.Subject.ID, string(issue.Jurisdiction),
		issue.Slug, string(issue.Severity), string(issue.Status),
		issue.UnmatchedName, issue.Occurrences, issue.Message, time.Now())
	if err != nil {
		return fmt.Errorf("insert issue: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteActiveByKind(ctx context.Context, jur domain.JurisdictionID, kind domain.SubjectKind) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		DELETE FROM dq_issue
		WHERE jurisdiction_id = $1 AND kind = $2 AND status = $3
	`, string(jur), string(kind), string(models.StatusActive))
	if err != nil {
		return fmt.Errorf("delete active issues: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM dq_issue WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete issue: %w", err)
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

func (s *PostgresStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.IssueStatus, message string) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE dq_issue SET status = $2, message = $3 WHERE id = $1
	`, id, string(status), message)
	if err != nil {
		return fmt.Errorf("update issue status: %w", err)
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

func (s *PostgresStore) BySubjectSlug(ctx context.Context, subject domain.SubjectRef, slug string) ([]*models.Issue, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		"SELECT "+issueColumns+" FROM dq_issue WHERE kind = $1 AND subject_id = $2 AND slug = $3",
		string(subject.Kind), subject.ID, slug)
	if err != nil {
		return nil, fmt.Errorf("query issues by subject: %w", err)
	}
	defer rows.Close()
	return scanIssues(rows)
}

func (s *PostgresStore) CountBySlug(ctx context.Context, jur domain.JurisdictionID) (map[string]int, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT slug, COUNT(*) FROM dq_issue
		WHERE jurisdiction_id = $1 AND status = $2
		GROUP BY slug
	`, string(jur), string(models.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("count issues: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var slug string
		var n int
		if err := rows.Scan(&slug, &n); err != nil {
			return nil, fmt.Errorf("scan issue count: %w", err)
		}
		counts[slug] = n
	}
	return counts, rows.Err()
}

func scanIssues(rows *sql.Rows) ([]*models.Issue, error) {
	var out []*models.Issue
	for rows.Next() {
		issue := &models.Issue{}
		var kind, subjectID string
		err := rows.Scan(&issue.ID, &kind, &subjectID, &issue.Jurisdiction, &issue.Slug,
			&issue.Severity, &issue.Status, &issue.UnmatchedName, &issue.Occurrences, &issue.Message)
		if err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issue.Kind = domain.SubjectKind(kind)
		if subjectID != "" {
			issue.Subject = domain.SubjectRef{Kind: issue.Kind, ID: subjectID}
		}
		out = append(out, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issues: %w", err)
	}
	return out, nil
}

// PostgresTx runs a function inside a database transaction, placing the
// transaction in context so the stores route their statements through it.
// Used to keep one jurisdiction's materialization atomic.
type PostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

const defaultTxTimeout = 60 * time.Second

func NewPostgresTx(db *sql.DB) *PostgresTx {
	return &PostgresTx{db: db}
}

func (t *PostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return nil
		}
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
