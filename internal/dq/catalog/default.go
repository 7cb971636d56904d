package catalog

import (
	"civiq/internal/dq/models"
	"civiq/pkg/domain"
)

// Default builds the production issue set.
func Default() *Catalog {
	c := New()

	// Person
	c.MustRegister("missing-phone", "Missing Phone Number", domain.KindPerson, models.SeverityWarning)
	c.MustRegister("missing-email", "Missing Email", domain.KindPerson, models.SeverityWarning)
	c.MustRegister("missing-address", "Missing Postal Address", domain.KindPerson, models.SeverityWarning)
	c.MustRegister("missing-photo", "Missing Photo", domain.KindPerson, models.SeverityWarning)

	// Organization
	c.MustRegister("no-memberships", "No Memberships", domain.KindOrganization, models.SeverityError)

	// Membership
	c.MustRegister("unmatched-person", "Unmatched Person", domain.KindMembership, models.SeverityWarning)

	// Post
	c.MustRegister("many-memberships", "Too Many People", domain.KindPost, models.SeverityError)
	c.MustRegister("few-memberships", "Too Few People", domain.KindPost, models.SeverityWarning)

	// Bill
	c.MustRegister("no-actions", "Missing Actions", domain.KindBill, models.SeverityError)
	c.MustRegister("no-sponsors", "Missing Sponsors", domain.KindBill, models.SeverityWarning)
	c.MustRegister("no-versions", "Missing Versions", domain.KindBill, models.SeverityWarning)
	c.MustRegister("unmatched-person-sponsor", "Sponsor With Unmatched Person", domain.KindBill, models.SeverityWarning)
	c.MustRegister("unmatched-org-sponsor", "Sponsor With Unmatched Organization", domain.KindBill, models.SeverityWarning)

	// VoteEvent
	c.MustRegister("missing-bill", "Missing Bill", domain.KindVoteEvent, models.SeverityError)
	c.MustRegister("missing-voters", "Missing Voters", domain.KindVoteEvent, models.SeverityWarning)
	c.MustRegister("missing-counts", "Missing Counts", domain.KindVoteEvent, models.SeverityError)
	c.MustRegister("bad-counts", "Bad Counts", domain.KindVoteEvent, models.SeverityWarning)
	c.MustRegister("unmatched-voter", "Unmatched Voter", domain.KindVoteEvent, models.SeverityWarning)

	// Raised by the patch resolver when a scraper overrides an approved patch.
	c.MustRegisterResolver("wrong-name", "Wrong Name", domain.KindPerson, models.SeverityError)
	c.MustRegisterResolver("wrong-photo", "Wrong Photo", domain.KindPerson, models.SeverityError)
	c.MustRegisterResolver("wrong-phone", "Wrong Phone Number", domain.KindPerson, models.SeverityError)
	c.MustRegisterResolver("wrong-address", "Wrong Postal Address", domain.KindPerson, models.SeverityError)
	c.MustRegisterResolver("wrong-email", "Wrong Email", domain.KindPerson, models.SeverityError)

	return c
}
