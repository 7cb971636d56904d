package materializer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"civiq/internal/dq/catalog"
	"civiq/internal/dq/models"
	"civiq/internal/dq/ports"
	"civiq/internal/dq/scan"
	issuestore "civiq/internal/dq/store/issue"
	"civiq/internal/entity"
	"civiq/pkg/domain"
	dErrors "civiq/pkg/domain-errors"
)

const testJur = domain.JurisdictionID("ocd-jurisdiction/country:us/state:nc/government")

type MaterializerSuite struct {
	suite.Suite
	entities *entity.InMemoryStore
	issues   *issuestore.InMemoryStore
	service  *Service
}

func TestMaterializerSuite(t *testing.T) {
	suite.Run(t, new(MaterializerSuite))
}

func (s *MaterializerSuite) SetupTest() {
	s.entities = entity.NewMemory()
	s.issues = issuestore.NewMemory()

	var err error
	s.service, err = New(catalog.Default(), scan.NewRegistry(s.entities), s.issues, issuestore.NoopTx{})
	s.Require().NoError(err)
}

func (s *MaterializerSuite) seedBarePerson(id domain.PersonID) {
	s.entities.SeedPerson(testJur, &entity.Person{ID: id, Name: "Bare " + string(id)})
}

func (s *MaterializerSuite) activeIssues(kind domain.SubjectKind) []*models.Issue {
	issues, err := s.issues.List(context.Background(), ports.IssueQuery{
		Jurisdiction: testJur, Kind: kind, Status: models.StatusActive,
	})
	s.Require().NoError(err)
	return issues
}

func (s *MaterializerSuite) TestNew() {
	s.Run("nil catalog returns error", func() {
		_, err := New(nil, scan.NewRegistry(s.entities), s.issues, issuestore.NoopTx{})
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConfiguration))
	})

	s.Run("nil issue store returns error", func() {
		_, err := New(catalog.Default(), scan.NewRegistry(s.entities), nil, issuestore.NoopTx{})
		s.Error(err)
	})

	s.Run("nil tx runner returns error", func() {
		_, err := New(catalog.Default(), scan.NewRegistry(s.entities), s.issues, nil)
		s.Error(err)
	})
}

func (s *MaterializerSuite) TestMaterialize() {
	ctx := context.Background()

	s.Run("bare person yields one issue per missing field", func() {
		s.seedBarePerson("ocd-person/bare")

		created, err := s.service.Materialize(ctx, testJur, domain.KindPerson)
		s.NoError(err)
		s.Equal(4, created)

		issues := s.activeIssues(domain.KindPerson)
		slugs := make([]string, 0, len(issues))
		for _, issue := range issues {
			slugs = append(slugs, issue.Slug)
			s.Equal(domain.KindPerson, issue.Kind)
			s.Equal("ocd-person/bare", issue.Subject.ID)
			s.Equal(models.SeverityWarning, issue.Severity)
		}
		s.ElementsMatch([]string{"missing-phone", "missing-email", "missing-address", "missing-photo"}, slugs)
	})

	s.Run("rescanning without entity changes creates nothing new", func() {
		created, err := s.service.Materialize(ctx, testJur, domain.KindPerson)
		s.NoError(err)
		s.Equal(4, created)
		s.Len(s.activeIssues(domain.KindPerson), 4)
	})

	s.Run("fixing the entity clears its issues on the next scan", func() {
		s.entities.SeedPerson(testJur, &entity.Person{
			ID: "ocd-person/bare", Name: "Fixed",
			Image: "https://example.com/fixed.jpg",
			ContactDetails: []entity.ContactDetail{
				{Type: entity.ContactVoice, Value: "555-0100"},
				{Type: entity.ContactEmail, Value: "fixed@example.com"},
				{Type: entity.ContactAddress, Value: "2 Main St"},
			},
		})

		created, err := s.service.Materialize(ctx, testJur, domain.KindPerson)
		s.NoError(err)
		s.Equal(0, created)
		s.Empty(s.activeIssues(domain.KindPerson))
	})
}

func (s *MaterializerSuite) TestIgnoredIssuesSurviveRescans() {
	ctx := context.Background()
	s.seedBarePerson("ocd-person/bare")

	_, err := s.service.Materialize(ctx, testJur, domain.KindPerson)
	s.Require().NoError(err)

	// A human dismisses the missing-photo finding.
	issues, err := s.issues.List(ctx, ports.IssueQuery{Jurisdiction: testJur, Slug: "missing-photo"})
	s.Require().NoError(err)
	s.Require().Len(issues, 1)
	s.Require().NoError(s.issues.UpdateStatus(ctx, issues[0].ID, models.StatusIgnored, "no photo exists"))

	created, err := s.service.Materialize(ctx, testJur, domain.KindPerson)
	s.NoError(err)
	s.Equal(3, created, "the ignored issue must not be recreated")

	ignored, err := s.issues.List(ctx, ports.IssueQuery{Jurisdiction: testJur, Status: models.StatusIgnored})
	s.NoError(err)
	s.Require().Len(ignored, 1)
	s.Equal(issues[0].ID, ignored[0].ID, "the original ignored row survives untouched")
	s.Equal("no photo exists", ignored[0].Message)
}

func (s *MaterializerSuite) TestNameGroupedIssues() {
	ctx := context.Background()
	s.entities.SeedOrganization(&entity.Organization{ID: "ocd-organization/house", JurisdictionID: testJur})
	s.entities.SeedMembership(&entity.Membership{
		ID: "m1", OrganizationID: "ocd-organization/house", PersonName: "J. Doe",
	})
	s.entities.SeedMembership(&entity.Membership{
		ID: "m2", OrganizationID: "ocd-organization/house", PersonName: "J. Doe",
	})

	created, err := s.service.Materialize(ctx, testJur, domain.KindMembership)
	s.NoError(err)
	s.Equal(1, created, "duplicate raw names fold into one issue")

	issues := s.activeIssues(domain.KindMembership)
	s.Require().Len(issues, 1)
	s.Equal("unmatched-person", issues[0].Slug)
	s.Equal("J. Doe", issues[0].UnmatchedName)
	s.Equal(2, issues[0].Occurrences)
	s.True(issues[0].Subject.IsZero())
	s.Equal(domain.KindMembership, issues[0].Kind, "name-based issues still carry their kind")
}

func (s *MaterializerSuite) TestMaterializeKinds() {
	ctx := context.Background()
	s.seedBarePerson("ocd-person/bare")
	s.entities.SeedOrganization(&entity.Organization{
		ID: "ocd-organization/empty", JurisdictionID: testJur, Name: "Empty Committee",
	})

	total, err := s.service.MaterializeKinds(ctx, testJur, domain.Kinds())
	s.NoError(err)
	s.Equal(5, total)
}

func (s *MaterializerSuite) TestConfigurationErrors() {
	ctx := context.Background()

	s.Run("unregistered kind in registry", func() {
		svc, err := New(catalog.Default(), scan.Registry{}, s.issues, issuestore.NoopTx{})
		s.Require().NoError(err)

		_, err = svc.Materialize(ctx, testJur, domain.KindPerson)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConfiguration))
	})

	s.Run("catalog slug without a scanner predicate aborts the pass", func() {
		cat := catalog.Default()
		s.Require().NoError(cat.Register("missing-fax", "Missing Fax Number", domain.KindPerson, models.SeverityWarning))
		svc, err := New(cat, scan.NewRegistry(s.entities), s.issues, issuestore.NoopTx{})
		s.Require().NoError(err)

		s.seedBarePerson("ocd-person/bare")
		_, err = svc.Materialize(ctx, testJur, domain.KindPerson)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConfiguration))
		s.Contains(err.Error(), "missing-fax")
	})
}
