//go:build integration

package patch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"civiq/internal/dq/models"
	"civiq/internal/dq/ports"
	"civiq/pkg/domain"
	"civiq/pkg/platform/sentinel"
	"civiq/pkg/testutil/containers"
)

const testJur = domain.JurisdictionID("ocd-jurisdiction/country:us/state:nc/government")

type PostgresPatchSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestPostgresPatchSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresPatchSuite))
}

func (s *PostgresPatchSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresPatchSuite) TearDownSuite() {
	_ = s.pg.DB.Close()
	_ = s.pg.Container.Terminate(context.Background())
}

func (s *PostgresPatchSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background()))
}

func (s *PostgresPatchSuite) newPatch(reporterEmail string) *models.Patch {
	return &models.Patch{
		Subject:       domain.PersonRef("ocd-person/p1"),
		Jurisdiction:  testJur,
		Status:        models.PatchUnreviewed,
		Category:      models.CategoryName,
		OldValue:      "Jon Smith",
		NewValue:      "John Smith",
		ReporterName:  "Jane Reporter",
		ReporterEmail: reporterEmail,
	}
}

func (s *PostgresPatchSuite) TestCreateAndGet() {
	ctx := context.Background()
	patch := s.newPatch("jane@example.com")
	s.Require().NoError(s.store.Create(ctx, patch))

	got, err := s.store.GetByID(ctx, patch.ID)
	s.Require().NoError(err)
	s.Equal(patch.Subject, got.Subject)
	s.Equal(models.CategoryName, got.Category)
	s.Equal("jane@example.com", got.ReporterEmail)
}

func (s *PostgresPatchSuite) TestListFilters() {
	ctx := context.Background()
	first := s.newPatch("jane@example.com")
	s.Require().NoError(s.store.Create(ctx, first))
	second := s.newPatch("other@example.com")
	second.Status = models.PatchApproved
	s.Require().NoError(s.store.Create(ctx, second))

	approved, err := s.store.List(ctx, ports.PatchQuery{Jurisdiction: testJur, Status: models.PatchApproved})
	s.Require().NoError(err)
	s.Require().Len(approved, 1)
	s.Equal(second.ID, approved[0].ID)

	all, err := s.store.List(ctx, ports.PatchQuery{Subject: domain.PersonRef("ocd-person/p1")})
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *PostgresPatchSuite) TestUpdateStatus() {
	ctx := context.Background()
	patch := s.newPatch("jane@example.com")
	s.Require().NoError(s.store.Create(ctx, patch))

	s.Require().NoError(s.store.UpdateStatus(ctx, patch.ID, models.PatchDeprecated, "resolver"))

	got, err := s.store.GetByID(ctx, patch.ID)
	s.Require().NoError(err)
	s.Equal(models.PatchDeprecated, got.Status)
	s.Equal("resolver", got.AppliedBy)

	// Empty appliedBy keeps the recorded applier.
	s.Require().NoError(s.store.UpdateStatus(ctx, patch.ID, models.PatchApproved, ""))
	got, err = s.store.GetByID(ctx, patch.ID)
	s.Require().NoError(err)
	s.Equal("resolver", got.AppliedBy)
}

func (s *PostgresPatchSuite) TestUpdateStatusNotFound() {
	err := s.store.UpdateStatus(context.Background(), s.newPatch("x@example.com").ID, models.PatchApproved, "")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresPatchSuite) TestHasUnreviewedFromReporter() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newPatch("jane@example.com")))

	dup, err := s.store.HasUnreviewedFromReporter(ctx,
		domain.PersonRef("ocd-person/p1"), models.CategoryName, "jane@example.com")
	s.Require().NoError(err)
	s.True(dup)

	other, err := s.store.HasUnreviewedFromReporter(ctx,
		domain.PersonRef("ocd-person/p1"), models.CategoryName, "other@example.com")
	s.Require().NoError(err)
	s.False(other)
}
