package scan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civiq/internal/entity"
	"civiq/pkg/domain"
	dErrors "civiq/pkg/domain-errors"
)

const testJur = domain.JurisdictionID("ocd-jurisdiction/country:us/state:nc/government")

func subjectIDs(f *Finding) []string {
	out := make([]string, 0, len(f.Subjects))
	for _, s := range f.Subjects {
		out = append(out, s.ID)
	}
	return out
}

func TestPersonScanner(t *testing.T) {
	ctx := context.Background()
	store := entity.NewMemory()
	store.SeedJurisdiction(&entity.Jurisdiction{ID: testJur, Name: "North Carolina"})
	store.SeedPerson(testJur, &entity.Person{
		ID:   "ocd-person/complete",
		Name: "Ada Complete",
		Image: "https://example.com/ada.jpg",
		ContactDetails: []entity.ContactDetail{
			{Type: entity.ContactVoice, Value: "555-0100"},
			{Type: entity.ContactEmail, Value: "ada@example.com"},
			{Type: entity.ContactAddress, Value: "1 Main St"},
		},
	})
	store.SeedPerson(testJur, &entity.Person{ID: "ocd-person/bare", Name: "Bo Bare"})

	scanner := NewPersonScanner(store)

	t.Run("missing-photo", func(t *testing.T) {
		f, err := scanner.Scan(ctx, testJur, "missing-photo")
		require.NoError(t, err)
		assert.Equal(t, []string{"ocd-person/bare"}, subjectIDs(f))
	})

	t.Run("missing contact details", func(t *testing.T) {
		for _, slug := range []string{"missing-phone", "missing-email", "missing-address"} {
			f, err := scanner.Scan(ctx, testJur, slug)
			require.NoError(t, err, slug)
			assert.Equal(t, []string{"ocd-person/bare"}, subjectIDs(f), slug)
		}
	})

	t.Run("unregistered slug is a configuration error", func(t *testing.T) {
		_, err := scanner.Scan(ctx, testJur, "missing-hat")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
		assert.Contains(t, err.Error(), "needs update")
	})
}

func TestOrganizationScanner(t *testing.T) {
	ctx := context.Background()
	store := entity.NewMemory()
	store.SeedOrganization(&entity.Organization{
		ID: "ocd-organization/empty", JurisdictionID: testJur, Name: "Empty Committee",
	})
	store.SeedOrganization(&entity.Organization{
		ID: "ocd-organization/staffed", JurisdictionID: testJur, Name: "Staffed Committee",
		MembershipCount: 3,
	})
	// The legislature itself holds people only through its chambers.
	store.SeedOrganization(&entity.Organization{
		ID: "ocd-organization/legislature", JurisdictionID: testJur, Name: "General Assembly",
		Classification: "legislature",
	})

	f, err := NewOrganizationScanner(store).Scan(ctx, testJur, "no-memberships")
	require.NoError(t, err)
	assert.Equal(t, []string{"ocd-organization/empty"}, subjectIDs(f))
}

func TestMembershipScanner(t *testing.T) {
	ctx := context.Background()
	store := entity.NewMemory()
	store.SeedOrganization(&entity.Organization{ID: "ocd-organization/house", JurisdictionID: testJur})
	store.SeedMembership(&entity.Membership{
		ID: "m1", OrganizationID: "ocd-organization/house",
		PersonID: "ocd-person/known", PersonName: "Known Member",
	})
	store.SeedMembership(&entity.Membership{
		ID: "m2", OrganizationID: "ocd-organization/house", PersonName: "J. Doe",
	})
	store.SeedMembership(&entity.Membership{
		ID: "m3", OrganizationID: "ocd-organization/house", PersonName: "J. Doe",
	})
	store.SeedMembership(&entity.Membership{
		ID: "m4", OrganizationID: "ocd-organization/house", PersonName: "K. Roe",
	})

	f, err := NewMembershipScanner(store).Scan(ctx, testJur, "unmatched-person")
	require.NoError(t, err)
	assert.Empty(t, f.Subjects)
	assert.Equal(t, []NameCount{{Name: "J. Doe", Count: 2}, {Name: "K. Roe", Count: 1}}, f.Names)
}

func TestPostScanner(t *testing.T) {
	ctx := context.Background()
	store := entity.NewMemory()
	store.SeedOrganization(&entity.Organization{ID: "ocd-organization/house", JurisdictionID: testJur})
	store.SeedPost(&entity.Post{
		ID: "ocd-post/over", OrganizationID: "ocd-organization/house",
		MaximumMemberships: 1, MembershipCount: 2,
	})
	store.SeedPost(&entity.Post{
		ID: "ocd-post/under", OrganizationID: "ocd-organization/house",
		MaximumMemberships: 2, MembershipCount: 1,
	})
	store.SeedPost(&entity.Post{
		ID: "ocd-post/full", OrganizationID: "ocd-organization/house",
		MaximumMemberships: 1, MembershipCount: 1,
	})

	scanner := NewPostScanner(store)

	t.Run("many-memberships", func(t *testing.T) {
		f, err := scanner.Scan(ctx, testJur, "many-memberships")
		require.NoError(t, err)
		assert.Equal(t, []string{"ocd-post/over"}, subjectIDs(f))
	})

	t.Run("few-memberships", func(t *testing.T) {
		f, err := scanner.Scan(ctx, testJur, "few-memberships")
		require.NoError(t, err)
		assert.Equal(t, []string{"ocd-post/under"}, subjectIDs(f))
	})
}

func TestBillScanner(t *testing.T) {
	ctx := context.Background()
	store := entity.NewMemory()
	store.SeedBill(&entity.Bill{
		ID: "ocd-bill/hb1", JurisdictionID: testJur, Identifier: "HB 1",
		ActionCount: 2, VersionCount: 1,
		Sponsorships: []entity.Sponsorship{
			{EntityType: entity.SponsorPerson, Name: "Rep. Smith", PersonID: "ocd-person/smith"},
			{EntityType: entity.SponsorPerson, Name: "Ghost Sponsor"},
			{EntityType: entity.SponsorOrganization, Name: "Ways and Means"},
		},
	})
	store.SeedBill(&entity.Bill{
		ID: "ocd-bill/hb2", JurisdictionID: testJur, Identifier: "HB 2",
		Sponsorships: []entity.Sponsorship{
			{EntityType: entity.SponsorPerson, Name: "Ghost Sponsor"},
		},
	})
	store.SeedBill(&entity.Bill{ID: "ocd-bill/hb3", JurisdictionID: testJur, Identifier: "HB 3"})

	scanner := NewBillScanner(store)

	t.Run("no-actions", func(t *testing.T) {
		f, err := scanner.Scan(ctx, testJur, "no-actions")
		require.NoError(t, err)
		assert.Equal(t, []string{"ocd-bill/hb2", "ocd-bill/hb3"}, subjectIDs(f))
	})

	t.Run("no-sponsors", func(t *testing.T) {
		f, err := scanner.Scan(ctx, testJur, "no-sponsors")
		require.NoError(t, err)
		assert.Equal(t, []string{"ocd-bill/hb3"}, subjectIDs(f))
	})

	t.Run("no-versions", func(t *testing.T) {
		f, err := scanner.Scan(ctx, testJur, "no-versions")
		require.NoError(t, err)
		assert.Equal(t, []string{"ocd-bill/hb2", "ocd-bill/hb3"}, subjectIDs(f))
	})

	t.Run("unmatched person sponsors group by name across bills", func(t *testing.T) {
		f, err := scanner.Scan(ctx, testJur, "unmatched-person-sponsor")
		require.NoError(t, err)
		assert.Equal(t, []NameCount{{Name: "Ghost Sponsor", Count: 2}}, f.Names)
	})

	t.Run("unmatched org sponsors", func(t *testing.T) {
		f, err := scanner.Scan(ctx, testJur, "unmatched-org-sponsor")
		require.NoError(t, err)
		assert.Equal(t, []NameCount{{Name: "Ways and Means", Count: 1}}, f.Names)
	})
}

func TestVoteEventScanner(t *testing.T) {
	ctx := context.Background()
	store := entity.NewMemory()
	store.SeedVoteEvent(&entity.VoteEvent{
		ID: "ocd-vote/clean", JurisdictionID: testJur, BillID: "ocd-bill/hb1",
		Counts: []entity.VoteCount{
			{Option: entity.OptionYes, Value: 1},
			{Option: entity.OptionNo, Value: 1},
		},
		Votes: []entity.PersonVote{
			{Option: entity.OptionYes, VoterID: "ocd-person/a", VoterName: "A"},
			{Option: entity.OptionNo, VoterID: "ocd-person/b", VoterName: "B"},
		},
	})
	store.SeedVoteEvent(&entity.VoteEvent{
		ID: "ocd-vote/no-bill", JurisdictionID: testJur,
		Counts: []entity.VoteCount{{Option: entity.OptionYes, Value: 1}},
		Votes:  []entity.PersonVote{{Option: entity.OptionYes, VoterID: "ocd-person/a", VoterName: "A"}},
	})
	store.SeedVoteEvent(&entity.VoteEvent{
		ID: "ocd-vote/silent", JurisdictionID: testJur, BillID: "ocd-bill/hb1",
		Counts: []entity.VoteCount{
			{Option: entity.OptionYes, Value: 0},
			{Option: entity.OptionNo, Value: 0},
		},
	})
	store.SeedVoteEvent(&entity.VoteEvent{
		ID: "ocd-vote/disagrees", JurisdictionID: testJur, BillID: "ocd-bill/hb1",
		Counts: []entity.VoteCount{
			{Option: entity.OptionYes, Value: 3},
			{Option: entity.OptionNo, Value: 0},
		},
		Votes: []entity.PersonVote{
			{Option: entity.OptionYes, VoterID: "ocd-person/a", VoterName: "A"},
			{Option: entity.OptionYes, VoterName: "Mystery Voter"},
		},
	})

	scanner := NewVoteEventScanner(store)

	t.Run("missing-bill", func(t *testing.T) {
		f, err := scanner.Scan(ctx, testJur, "missing-bill")
		require.NoError(t, err)
		assert.Equal(t, []string{"ocd-vote/no-bill"}, subjectIDs(f))
	})

	t.Run("missing-voters", func(t *testing.T) {
		f, err := scanner.Scan(ctx, testJur, "missing-voters")
		require.NoError(t, err)
		assert.Equal(t, []string{"ocd-vote/silent"}, subjectIDs(f))
	})

	t.Run("missing-counts flags zeroed yes and no tallies", func(t *testing.T) {
		f, err := scanner.Scan(ctx, testJur, "missing-counts")
		require.NoError(t, err)
		assert.Equal(t, []string{"ocd-vote/silent"}, subjectIDs(f))
	})

	t.Run("bad-counts flags tallies disagreeing with ballots", func(t *testing.T) {
		f, err := scanner.Scan(ctx, testJur, "bad-counts")
		require.NoError(t, err)
		assert.Equal(t, []string{"ocd-vote/disagrees"}, subjectIDs(f))
	})

	t.Run("unmatched-voter groups ballots by raw name", func(t *testing.T) {
		f, err := scanner.Scan(ctx, testJur, "unmatched-voter")
		require.NoError(t, err)
		assert.Equal(t, []NameCount{{Name: "Mystery Voter", Count: 1}}, f.Names)
	})
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry(entity.NewMemory())
	for _, kind := range domain.Kinds() {
		scanner, ok := registry[kind]
		require.True(t, ok, "no scanner for kind %s", kind)
		assert.Equal(t, kind, scanner.Kind())
	}
}
