//go:build integration

package entity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"civiq/pkg/domain"
	"civiq/pkg/platform/sentinel"
	"civiq/pkg/testutil/containers"
)

const testJur = domain.JurisdictionID("ocd-jurisdiction/country:us/state:nc/government")

type PostgresEntitySuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestPostgresEntitySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresEntitySuite))
}

func (s *PostgresEntitySuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresEntitySuite) TearDownSuite() {
	_ = s.pg.DB.Close()
	_ = s.pg.Container.Terminate(context.Background())
}

func (s *PostgresEntitySuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.pg.Truncate(ctx))

	mustExec := func(query string, args ...any) {
		_, err := s.pg.DB.ExecContext(ctx, query, args...)
		s.Require().NoError(err)
	}

	mustExec(`INSERT INTO opencivicdata_jurisdiction (id, name) VALUES ($1, 'North Carolina')`, string(testJur))
	mustExec(`INSERT INTO opencivicdata_organization (id, jurisdiction_id, name, classification)
		VALUES ('ocd-organization/house', $1, 'House', 'lower')`, string(testJur))
	mustExec(`INSERT INTO opencivicdata_person (id, name, image) VALUES ('ocd-person/p1', 'Jon Smith', '')`)
	mustExec(`INSERT INTO opencivicdata_personcontactdetail (person_id, type, value, note)
		VALUES ('ocd-person/p1', 'voice', '555-0100', 'office')`)
	mustExec(`INSERT INTO opencivicdata_membership (id, organization_id, person_id, person_name)
		VALUES ('m1', 'ocd-organization/house', 'ocd-person/p1', 'Jon Smith')`)
}

func (s *PostgresEntitySuite) TestFindJurisdiction() {
	ctx := context.Background()

	s.Run("by full id", func() {
		jur, err := s.store.FindJurisdiction(ctx, string(testJur))
		s.Require().NoError(err)
		s.Equal(testJur, jur.ID)
	})

	s.Run("by short token", func() {
		jur, err := s.store.FindJurisdiction(ctx, "nc")
		s.Require().NoError(err)
		s.Equal(testJur, jur.ID)
	})

	s.Run("unknown token", func() {
		_, err := s.store.FindJurisdiction(ctx, "atlantis")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresEntitySuite) TestPeopleByJurisdiction() {
	people, err := s.store.PeopleByJurisdiction(context.Background(), testJur)
	s.Require().NoError(err)
	s.Require().Len(people, 1)
	s.Equal("Jon Smith", people[0].Name)
	s.True(people[0].HasContact(ContactVoice, "555-0100"))
	s.False(people[0].HasContactOfType(ContactEmail))
}

func (s *PostgresEntitySuite) TestResolverWrites() {
	ctx := context.Background()

	s.Run("update person name", func() {
		s.Require().NoError(s.store.UpdatePersonName(ctx, "ocd-person/p1", "John Smith"))
		p, err := s.store.PersonByID(ctx, "ocd-person/p1")
		s.Require().NoError(err)
		s.Equal("John Smith", p.Name)
	})

	s.Run("update contact value in place", func() {
		s.Require().NoError(s.store.UpdateContactValue(ctx, "ocd-person/p1", ContactVoice, "555-0100", "555-0199", "updated"))
		p, err := s.store.PersonByID(ctx, "ocd-person/p1")
		s.Require().NoError(err)
		s.True(p.HasContact(ContactVoice, "555-0199"))
		s.False(p.HasContact(ContactVoice, "555-0100"))
	})

	s.Run("updating a vanished contact is not found", func() {
		err := s.store.UpdateContactValue(ctx, "ocd-person/p1", ContactVoice, "555-0100", "555-0299", "")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("create contact", func() {
		s.Require().NoError(s.store.CreateContact(ctx, "ocd-person/p1", ContactEmail, "jon@example.com", "from patch"))
		p, err := s.store.PersonByID(ctx, "ocd-person/p1")
		s.Require().NoError(err)
		s.True(p.HasContact(ContactEmail, "jon@example.com"))
	})
}
