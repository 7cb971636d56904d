// Package entity holds read models for the Open Civic Data store the
// engine scans. The store is an external collaborator: the engine reads
// it freely but only mutates the narrow person fields the patch resolver
// is allowed to correct.
package entity

import "civiq/pkg/domain"

// Jurisdiction is the ownership scope for every issue and patch.
type Jurisdiction struct {
	ID   domain.JurisdictionID
	Name string
}

// ContactType classifies a person contact detail.
type ContactType string

const (
	ContactVoice   ContactType = "voice"
	ContactEmail   ContactType = "email"
	ContactAddress ContactType = "address"
)

// ContactDetail is one repeatable contact sub-record on a person.
type ContactDetail struct {
	Type  ContactType
	Value string
	Note  string
}

// Person as scraped. An empty Image means no photo is known.
type Person struct {
	ID             domain.PersonID
	Name           string
	Image          string
	ContactDetails []ContactDetail
}

// HasContactOfType reports whether any contact detail of the given type exists.
func (p *Person) HasContactOfType(t ContactType) bool {
	for _, cd := range p.ContactDetails {
		if cd.Type == t {
			return true
		}
	}
	return false
}

// HasContact reports whether a contact detail with this exact type and value exists.
func (p *Person) HasContact(t ContactType, value string) bool {
	for _, cd := range p.ContactDetails {
		if cd.Type == t && cd.Value == value {
			return true
		}
	}
	return false
}

type Organization struct {
	ID              domain.OrganizationID
	JurisdictionID  domain.JurisdictionID
	Name            string
	Classification  string
	MembershipCount int
}

// Membership links a person to an organization. PersonID is empty when the
// scraper could not resolve the raw PersonName to a known person.
type Membership struct {
	ID             domain.MembershipID
	OrganizationID domain.OrganizationID
	PostID         domain.PostID
	PersonID       domain.PersonID
	PersonName     string
}

type Post struct {
	ID                 domain.PostID
	OrganizationID     domain.OrganizationID
	Label              string
	MaximumMemberships int
	MembershipCount    int
}

// SponsorEntityType declares what kind of entity a sponsorship names.
type SponsorEntityType string

const (
	SponsorPerson       SponsorEntityType = "person"
	SponsorOrganization SponsorEntityType = "organization"
)

// Sponsorship is a raw scraped sponsor line on a bill. The matching
// PersonID/OrganizationID stays empty until an importer resolves Name.
type Sponsorship struct {
	EntityType     SponsorEntityType
	Name           string
	PersonID       domain.PersonID
	OrganizationID domain.OrganizationID
}

type Bill struct {
	ID             domain.BillID
	JurisdictionID domain.JurisdictionID
	Identifier     string
	ActionCount    int
	VersionCount   int
	Sponsorships   []Sponsorship
}

// VoteOption is a ballot option string ("yes", "no", "other", ...).
type VoteOption string

const (
	OptionYes   VoteOption = "yes"
	OptionNo    VoteOption = "no"
	OptionOther VoteOption = "other"
)

// VoteCount is a declared tally for one option.
type VoteCount struct {
	Option VoteOption
	Value  int
}

// PersonVote is one individual ballot. VoterID is empty when the raw
// VoterName could not be matched to a person.
type PersonVote struct {
	Option    VoteOption
	VoterID   domain.PersonID
	VoterName string
}

type VoteEvent struct {
	ID             domain.VoteEventID
	JurisdictionID domain.JurisdictionID
	BillID         domain.BillID
	Counts         []VoteCount
	Votes          []PersonVote
}

// DeclaredCount returns the declared tally for an option and whether one exists.
func (v *VoteEvent) DeclaredCount(option VoteOption) (int, bool) {
	for _, c := range v.Counts {
		if c.Option == option {
			return c.Value, true
		}
	}
	return 0, false
}

// BallotCount counts individual ballots recorded with the given option.
func (v *VoteEvent) BallotCount(option VoteOption) int {
	n := 0
	for _, vote := range v.Votes {
		if vote.Option == option {
			n++
		}
	}
	return n
}
