// Package ports defines shared interfaces for the data-quality engine.
// Interfaces live here when consumed by multiple services to avoid
// duplication.
package ports

import (
	"context"

	"civiq/internal/dq/models"
	"civiq/pkg/domain"

	"github.com/google/uuid"
)

// IssueQuery filters issue listings. Zero-valued fields are ignored.
type IssueQuery struct {
	Jurisdiction domain.JurisdictionID
	Kind         domain.SubjectKind
	Slug         string
	Status       models.IssueStatus
	Limit        int
	Offset       int
}

// IssueStore persists materialized issues.
type IssueStore interface {
	// List returns issues matching the query, ordered by slug then subject id.
	List(ctx context.Context, q IssueQuery) ([]*models.Issue, error)

	// GetByID fetches one issue; sentinel.ErrNotFound when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Issue, error)

	// BulkCreate inserts all issues in one operation.
	BulkCreate(ctx context.Context, issues []*models.Issue) error

	// Create inserts a single issue (resolver conflict path).
	Create(ctx context.Context, issue *models.Issue) error

	// DeleteActiveByKind removes every active-status issue for the
	// jurisdiction and subject kind. Ignored issues are untouched.
	DeleteActiveByKind(ctx context.Context, jur domain.JurisdictionID, kind domain.SubjectKind) error

	// DeleteByID removes one issue row.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// UpdateStatus flips an issue between active and ignored, recording message.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.IssueStatus, message string) error

	// BySubjectSlug returns the issues recorded for one subject and slug,
	// any status.
	BySubjectSlug(ctx context.Context, subject domain.SubjectRef, slug string) ([]*models.Issue, error)

	// CountBySlug returns active-issue counts per slug for a jurisdiction.
	CountBySlug(ctx context.Context, jur domain.JurisdictionID) (map[string]int, error)
}

// PatchQuery filters patch listings. Zero-valued fields are ignored.
type PatchQuery struct {
	Jurisdiction domain.JurisdictionID
	Subject      domain.SubjectRef
	Status       models.PatchStatus
	Category     models.PatchCategory
}

// PatchStore persists crowd-submitted correction patches. Patches are never
// deleted, only moved between statuses.
type PatchStore interface {
	Create(ctx context.Context, patch *models.Patch) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Patch, error)
	List(ctx context.Context, q PatchQuery) ([]*models.Patch, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.PatchStatus, appliedBy string) error

	// HasUnreviewedFromReporter reports whether the reporter already has an
	// unreviewed submission for this subject and category.
	HasUnreviewedFromReporter(ctx context.Context, subject domain.SubjectRef, category models.PatchCategory, reporterEmail string) (bool, error)
}

// TxRunner wraps a function in a store transaction so a jurisdiction's
// materialization either fully commits or leaves no partial rows. The
// memory implementation runs the function directly.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
