// Package submission takes in crowd-sourced corrections and runs their
// review workflow. Submissions are validated against the live record at
// intake time so reviewers never see a patch whose old value was stale on
// arrival.
package submission

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"civiq/internal/dq/models"
	"civiq/internal/dq/ports"
	"civiq/internal/entity"
	"civiq/pkg/domain"
	dErrors "civiq/pkg/domain-errors"
	"civiq/pkg/platform/sentinel"

	"github.com/google/uuid"
)

type Service struct {
	entities entity.Store
	patches  ports.PatchStore
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(entities entity.Store, patches ports.PatchStore, opts ...Option) (*Service, error) {
	if entities == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "entity store is required")
	}
	if patches == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "patch store is required")
	}
	svc := &Service{entities: entities, patches: patches, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// SubmitRequest is one correction as reported by a member of the public.
type SubmitRequest struct {
	PersonID      domain.PersonID
	Jurisdiction  domain.JurisdictionID
	Category      string
	OldValue      string
	NewValue      string
	Note          string
	Source        string
	ReporterName  string
	ReporterEmail string
}

// Submit validates and stores a correction as an unreviewed patch.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.Patch, error) {
	category, err := models.ParsePatchCategory(req.Category)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.NewValue) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "new value must not be empty")
	}
	if strings.TrimSpace(req.ReporterEmail) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "reporter email is required")
	}

	person, err := s.entities.PersonByID(ctx, req.PersonID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "person %s not found", req.PersonID)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load person")
	}
	if err := s.checkOldValue(person, category, req.OldValue); err != nil {
		return nil, err
	}

	subject := domain.PersonRef(req.PersonID)
	dup, err := s.patches.HasUnreviewedFromReporter(ctx, subject, category, req.ReporterEmail)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "check duplicate submission")
	}
	if dup {
		return nil, dErrors.New(dErrors.CodeConflict, "a submission from this reporter is already awaiting review")
	}

	patch := &models.Patch{
		Subject:       subject,
		Jurisdiction:  req.Jurisdiction,
		Status:        models.PatchUnreviewed,
		Category:      category,
		OldValue:      req.OldValue,
		NewValue:      req.NewValue,
		Note:          req.Note,
		Source:        req.Source,
		ReporterName:  req.ReporterName,
		ReporterEmail: req.ReporterEmail,
	}
	if err := s.patches.Create(ctx, patch); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "store patch")
	}

	s.logger.InfoContext(ctx, "patch submitted",
		"patch_id", patch.ID,
		"person_id", req.PersonID,
		"category", category,
	)
	return patch, nil
}

// checkOldValue rejects submissions whose claimed old value does not match
// the live record. Single-value fields must match exactly; contact
// categories accept an empty old value as "the person has none yet".
func (s *Service) checkOldValue(person *entity.Person, category models.PatchCategory, oldValue string) error {
	switch category {
	case models.CategoryName:
		if person.Name != oldValue {
			return dErrors.New(dErrors.CodeBadRequest, "old value doesn't match the current record")
		}
	case models.CategoryImage:
		if person.Image != oldValue {
			return dErrors.New(dErrors.CodeBadRequest, "old value doesn't match the current record")
		}
	case models.CategoryVoice, models.CategoryAddress, models.CategoryEmail:
		if oldValue == "" {
			return nil
		}
		if !person.HasContact(contactType(category), oldValue) {
			return dErrors.New(dErrors.CodeBadRequest, "old value doesn't match the current record")
		}
	}
	return nil
}

func contactType(category models.PatchCategory) entity.ContactType {
	switch category {
	case models.CategoryVoice:
		return entity.ContactVoice
	case models.CategoryAddress:
		return entity.ContactAddress
	case models.CategoryEmail:
		return entity.ContactEmail
	}
	return ""
}

// Review moves an unreviewed patch to approved or rejected. Reviewing a
// patch in any other state is a conflict; the review decision is final and
// only the resolver may move a patch afterwards.
func (s *Service) Review(ctx context.Context, patchID uuid.UUID, approve bool, reviewer string) error {
	patch, err := s.patches.GetByID(ctx, patchID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeNotFound, "patch %s not found", patchID)
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "get patch")
	}
	if patch.Status != models.PatchUnreviewed {
		return dErrors.Newf(dErrors.CodeConflict, "patch is %s, only unreviewed patches can be reviewed", patch.Status)
	}

	status := models.PatchRejected
	if approve {
		status = models.PatchApproved
	}
	if err := s.patches.UpdateStatus(ctx, patchID, status, ""); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update patch status")
	}
	s.logger.InfoContext(ctx, "patch reviewed",
		"patch_id", patchID,
		"status", status,
		"reviewer", reviewer,
	)
	return nil
}

// List exposes patch listings for review tooling.
func (s *Service) List(ctx context.Context, q ports.PatchQuery) ([]*models.Patch, error) {
	patches, err := s.patches.List(ctx, q)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list patches")
	}
	return patches, nil
}
