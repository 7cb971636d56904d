// Package resolver applies approved patches to live person records. The
// entity store is shared with scrapers that may rewrite any field at any
// time, so every apply is a compare-and-set against the value the patch
// was approved for. A mismatch means a scraper overrode the record after
// review: the resolver raises a wrong-* issue and deprecates the patch
// instead of clobbering the newer value.
package resolver

import (
	"context"
	"errors"
	"log/slog"

	"civiq/internal/dq/catalog"
	"civiq/internal/dq/metrics"
	"civiq/internal/dq/models"
	"civiq/internal/dq/ports"
	"civiq/internal/entity"
	"civiq/pkg/domain"
	dErrors "civiq/pkg/domain-errors"
	"civiq/pkg/platform/sentinel"
)

// overriddenMessage is attached to every conflict issue the resolver raises.
const overriddenMessage = "Resolver over-ridden"

type Service struct {
	catalog  *catalog.Catalog
	entities entity.Store
	issues   ports.IssueStore
	patches  ports.PatchStore
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(cat *catalog.Catalog, entities entity.Store, issues ports.IssueStore, patches ports.PatchStore, opts ...Option) (*Service, error) {
	if cat == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "issue catalog is required")
	}
	if entities == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "entity store is required")
	}
	if issues == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "issue store is required")
	}
	if patches == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "patch store is required")
	}

	svc := &Service{
		catalog:  cat,
		entities: entities,
		issues:   issues,
		patches:  patches,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Result summarizes one resolution run.
type Result struct {
	Applied    int
	Deprecated int
	Skipped    int
}

type groupKey struct {
	subjectID string
	category  models.PatchCategory
}

// ApplyApproved walks every approved patch in the jurisdiction and applies
// each one whose live value still matches what the patch was approved
// against. Single-value categories (name, image) with more than one
// approved patch for the same person are ambiguous and skipped whole:
// applying either would silently discard the other reviewer's decision.
func (s *Service) ApplyApproved(ctx context.Context, jur domain.JurisdictionID) (Result, error) {
	approved, err := s.patches.List(ctx, ports.PatchQuery{
		Jurisdiction: jur,
		Status:       models.PatchApproved,
	})
	if err != nil {
		return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "list approved patches")
	}

	counts := make(map[groupKey]int)
	for _, p := range approved {
		if p.Category.IsSingleValue() {
			counts[groupKey{p.Subject.ID, p.Category}]++
		}
	}

	var res Result
	warned := make(map[groupKey]bool)
	for _, p := range approved {
		key := groupKey{p.Subject.ID, p.Category}
		if p.Category.IsSingleValue() && counts[key] > 1 {
			res.Skipped++
			s.metrics.IncAmbiguousSkipped()
			if !warned[key] {
				warned[key] = true
				s.logger.WarnContext(ctx, "multiple approved patches for single-value field, skipping all",
					"subject_id", p.Subject.ID,
					"category", p.Category,
					"count", counts[key],
				)
			}
			continue
		}
		if err := s.apply(ctx, p, &res); err != nil {
			return res, err
		}
	}

	s.logger.InfoContext(ctx, "resolution run finished",
		"jurisdiction", jur,
		"applied", res.Applied,
		"deprecated", res.Deprecated,
		"skipped", res.Skipped,
	)
	return res, nil
}

func (s *Service) apply(ctx context.Context, p *models.Patch, res *Result) error {
	person, err := s.entities.PersonByID(ctx, domain.PersonID(p.Subject.ID))
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeNotFound, "patch %s targets unknown person %s", p.ID, p.Subject.ID)
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "load person")
	}

	switch p.Category {
	case models.CategoryName:
		return s.applyField(ctx, p, person.Name, "", s.entities.UpdatePersonName, res)
	case models.CategoryImage:
		return s.applyField(ctx, p, person.Image, "missing-photo", s.entities.UpdatePersonImage, res)
	case models.CategoryVoice:
		return s.applyContact(ctx, p, person, entity.ContactVoice, "missing-phone", res)
	case models.CategoryAddress:
		return s.applyContact(ctx, p, person, entity.ContactAddress, "missing-address", res)
	case models.CategoryEmail:
		return s.applyContact(ctx, p, person, entity.ContactEmail, "missing-email", res)
	default:
		return dErrors.Newf(dErrors.CodeConfiguration, "resolver needs update for new patch category %q", p.Category)
	}
}

// applyField handles single-value person fields. Applying is idempotent: a
// live value already equal to the patch's new value means an earlier run
// got here first, not that a scraper overrode the record.
func (s *Service) applyField(ctx context.Context, p *models.Patch, live, resolvedSlug string, update func(context.Context, domain.PersonID, string) error, res *Result) error {
	if live == p.NewValue {
		return nil
	}
	if live != p.OldValue {
		return s.deprecate(ctx, p, res)
	}
	if err := update(ctx, domain.PersonID(p.Subject.ID), p.NewValue); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update person field")
	}
	res.Applied++
	s.metrics.IncPatchesApplied()
	if resolvedSlug == "" {
		return nil
	}
	return s.deleteResolvedIssue(ctx, p.Subject, resolvedSlug)
}

func (s *Service) applyContact(ctx context.Context, p *models.Patch, person *entity.Person, ctype entity.ContactType, resolvedSlug string, res *Result) error {
	if person.HasContact(ctype, p.NewValue) {
		return nil
	}
	switch {
	case p.OldValue != "" && person.HasContact(ctype, p.OldValue):
		err := s.entities.UpdateContactValue(ctx, person.ID, ctype, p.OldValue, p.NewValue, p.Note)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "update contact detail")
		}
	case p.OldValue == "":
		err := s.entities.CreateContact(ctx, person.ID, ctype, p.NewValue, p.Note)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "create contact detail")
		}
	default:
		// The sub-record holding the old value is gone: a scraper replaced
		// or removed it after approval.
		return s.deprecate(ctx, p, res)
	}
	res.Applied++
	s.metrics.IncPatchesApplied()
	return s.deleteResolvedIssue(ctx, p.Subject, resolvedSlug)
}

// deprecate records an override conflict: a wrong-* issue for humans to
// re-review, and the patch parked as deprecated so later runs skip it.
func (s *Service) deprecate(ctx context.Context, p *models.Patch, res *Result) error {
	slug := p.Category.ConflictSlug()
	severity, err := s.catalog.SeverityOf(slug)
	if err != nil {
		return err
	}
	issue := &models.Issue{
		Kind:         p.Subject.Kind,
		Subject:      p.Subject,
		Jurisdiction: p.Jurisdiction,
		Slug:         slug,
		Severity:     severity,
		Status:       models.StatusActive,
		Message:      overriddenMessage,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "create conflict issue")
	}
	if err := s.patches.UpdateStatus(ctx, p.ID, models.PatchDeprecated, "resolver"); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "deprecate patch")
	}
	res.Deprecated++
	s.metrics.IncOverridesDetected()
	s.logger.WarnContext(ctx, "approved patch overridden by newer scrape",
		"patch_id", p.ID,
		"subject_id", p.Subject.ID,
		"category", p.Category,
	)
	return nil
}

// deleteResolvedIssue removes the missing-* issue an applied patch fixed.
// Materialization guarantees at most one issue per (subject, slug); finding
// more means the store is corrupt and the run must stop.
func (s *Service) deleteResolvedIssue(ctx context.Context, subject domain.SubjectRef, slug string) error {
	found, err := s.issues.BySubjectSlug(ctx, subject, slug)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "find resolved issue")
	}
	if len(found) > 1 {
		return dErrors.Newf(dErrors.CodeInternal, "%d %q issues recorded for subject %s, want at most one", len(found), slug, subject.ID)
	}
	if len(found) == 0 {
		return nil
	}
	if err := s.issues.DeleteByID(ctx, found[0].ID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete resolved issue")
	}
	return nil
}
