package exceptions

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"civiq/internal/dq/models"
	issuestore "civiq/internal/dq/store/issue"
	"civiq/pkg/domain"
	dErrors "civiq/pkg/domain-errors"
)

const testJur = domain.JurisdictionID("ocd-jurisdiction/country:us/state:nc/government")

type ExceptionsSuite struct {
	suite.Suite
	issues  *issuestore.InMemoryStore
	service *Service
}

func TestExceptionsSuite(t *testing.T) {
	suite.Run(t, new(ExceptionsSuite))
}

func (s *ExceptionsSuite) SetupTest() {
	s.issues = issuestore.NewMemory()
	var err error
	s.service, err = New(s.issues)
	s.Require().NoError(err)
}

func (s *ExceptionsSuite) seedIssue(status models.IssueStatus) *models.Issue {
	issue := &models.Issue{
		Kind:         domain.KindPerson,
		Subject:      domain.PersonRef("ocd-person/p1"),
		Jurisdiction: testJur,
		Slug:         "missing-photo",
		Severity:     models.SeverityWarning,
		Status:       status,
	}
	s.Require().NoError(s.issues.Create(context.Background(), issue))
	return issue
}

func (s *ExceptionsSuite) TestIgnore() {
	ctx := context.Background()

	s.Run("active issue becomes ignored with the reviewer's message", func() {
		issue := s.seedIssue(models.StatusActive)

		s.NoError(s.service.Ignore(ctx, issue.ID, "member has no official photo"))

		stored, err := s.issues.GetByID(ctx, issue.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusIgnored, stored.Status)
		s.Equal("member has no official photo", stored.Message)
	})

	s.Run("already ignored issue is a conflict", func() {
		issue := s.seedIssue(models.StatusIgnored)

		err := s.service.Ignore(ctx, issue.ID, "again")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unknown issue is not found", func() {
		err := s.service.Ignore(ctx, uuid.New(), "ghost")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ExceptionsSuite) TestReactivate() {
	ctx := context.Background()

	s.Run("ignored issue becomes active again", func() {
		issue := s.seedIssue(models.StatusIgnored)

		s.NoError(s.service.Reactivate(ctx, issue.ID))

		stored, err := s.issues.GetByID(ctx, issue.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusActive, stored.Status)
	})

	s.Run("already active issue is a conflict", func() {
		issue := s.seedIssue(models.StatusActive)

		err := s.service.Reactivate(ctx, issue.ID)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}
