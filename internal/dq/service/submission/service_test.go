package submission

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"civiq/internal/dq/models"
	patchstore "civiq/internal/dq/store/patch"
	"civiq/internal/entity"
	"civiq/pkg/domain"
	dErrors "civiq/pkg/domain-errors"
)

const testJur = domain.JurisdictionID("ocd-jurisdiction/country:us/state:nc/government")

type SubmissionSuite struct {
	suite.Suite
	entities *entity.InMemoryStore
	patches  *patchstore.InMemoryStore
	service  *Service
}

func TestSubmissionSuite(t *testing.T) {
	suite.Run(t, new(SubmissionSuite))
}

func (s *SubmissionSuite) SetupTest() {
	s.entities = entity.NewMemory()
	s.entities.SeedPerson(testJur, &entity.Person{
		ID: "ocd-person/p1", Name: "Jon Smith",
		ContactDetails: []entity.ContactDetail{{Type: entity.ContactVoice, Value: "555-0100"}},
	})
	s.patches = patchstore.NewMemory()

	var err error
	s.service, err = New(s.entities, s.patches)
	s.Require().NoError(err)
}

func (s *SubmissionSuite) validRequest() SubmitRequest {
	return SubmitRequest{
		PersonID:      "ocd-person/p1",
		Jurisdiction:  testJur,
		Category:      "name",
		OldValue:      "Jon Smith",
		NewValue:      "John Smith",
		Source:        "https://example.com/profile",
		ReporterName:  "Jane Reporter",
		ReporterEmail: "jane@example.com",
	}
}

func (s *SubmissionSuite) TestSubmit() {
	ctx := context.Background()

	s.Run("valid submission stores an unreviewed patch", func() {
		patch, err := s.service.Submit(ctx, s.validRequest())
		s.Require().NoError(err)
		s.NotEqual(uuid.Nil, patch.ID)
		s.Equal(models.PatchUnreviewed, patch.Status)
		s.Equal(models.CategoryName, patch.Category)
		s.Equal(domain.PersonRef("ocd-person/p1"), patch.Subject)
	})

	s.Run("unknown category is rejected", func() {
		req := s.validRequest()
		req.Category = "shoe-size"
		_, err := s.service.Submit(ctx, req)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("empty new value is rejected", func() {
		req := s.validRequest()
		req.NewValue = "  "
		_, err := s.service.Submit(ctx, req)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown person is not found", func() {
		req := s.validRequest()
		req.PersonID = "ocd-person/ghost"
		_, err := s.service.Submit(ctx, req)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("stale old value is rejected", func() {
		req := s.validRequest()
		req.OldValue = "Johnny Smith"
		_, err := s.service.Submit(ctx, req)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Contains(err.Error(), "old value doesn't match")
	})

	s.Run("contact submission with empty old value means none exists yet", func() {
		req := s.validRequest()
		req.Category = "email"
		req.OldValue = ""
		req.NewValue = "jon@example.com"
		patch, err := s.service.Submit(ctx, req)
		s.NoError(err)
		s.Equal(models.CategoryEmail, patch.Category)
	})

	s.Run("contact submission must name an existing sub-record", func() {
		req := s.validRequest()
		req.Category = "voice"
		req.OldValue = "555-9999"
		req.NewValue = "555-0199"
		_, err := s.service.Submit(ctx, req)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("duplicate unreviewed submission from the same reporter conflicts", func() {
		req := s.validRequest()
		req.NewValue = "Jonathan Smith"
		_, err := s.service.Submit(ctx, req)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("a different reporter may submit for the same field", func() {
		req := s.validRequest()
		req.ReporterEmail = "other@example.com"
		_, err := s.service.Submit(ctx, req)
		s.NoError(err)
	})
}

func (s *SubmissionSuite) TestReview() {
	ctx := context.Background()

	submit := func() *models.Patch {
		patch, err := s.service.Submit(ctx, s.validRequest())
		s.Require().NoError(err)
		return patch
	}

	s.Run("approve moves the patch to approved", func() {
		patch := submit()
		s.NoError(s.service.Review(ctx, patch.ID, true, "reviewer@example.com"))

		stored, err := s.patches.GetByID(ctx, patch.ID)
		s.Require().NoError(err)
		s.Equal(models.PatchApproved, stored.Status)
	})

	s.Run("reject moves the patch to rejected", func() {
		s.SetupTest()
		patch := submit()
		s.NoError(s.service.Review(ctx, patch.ID, false, "reviewer@example.com"))

		stored, err := s.patches.GetByID(ctx, patch.ID)
		s.Require().NoError(err)
		s.Equal(models.PatchRejected, stored.Status)
	})

	s.Run("reviewing a decided patch is a conflict", func() {
		s.SetupTest()
		patch := submit()
		s.Require().NoError(s.service.Review(ctx, patch.ID, true, "reviewer@example.com"))

		err := s.service.Review(ctx, patch.ID, false, "reviewer@example.com")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unknown patch is not found", func() {
		err := s.service.Review(ctx, uuid.New(), true, "reviewer@example.com")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
