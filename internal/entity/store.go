package entity

import (
	"context"

	"civiq/pkg/domain"
)

// Store is the engine's view of the civic data store. Reads are scoped to a
// jurisdiction; writes are limited to the person fields the patch resolver
// corrects. Scrapers own every other mutation.
type Store interface {
	Jurisdictions(ctx context.Context) ([]*Jurisdiction, error)
	// FindJurisdiction resolves a jurisdiction by full OCD id or by the short
	// name token embedded in it (e.g. "nc" in "ocd-jurisdiction/country:us/state:nc/government").
	FindJurisdiction(ctx context.Context, token string) (*Jurisdiction, error)

	PeopleByJurisdiction(ctx context.Context, jur domain.JurisdictionID) ([]*Person, error)
	PersonByID(ctx context.Context, id domain.PersonID) (*Person, error)
	OrganizationsByJurisdiction(ctx context.Context, jur domain.JurisdictionID) ([]*Organization, error)
	MembershipsByJurisdiction(ctx context.Context, jur domain.JurisdictionID) ([]*Membership, error)
	PostsByJurisdiction(ctx context.Context, jur domain.JurisdictionID) ([]*Post, error)
	BillsByJurisdiction(ctx context.Context, jur domain.JurisdictionID) ([]*Bill, error)
	VoteEventsByJurisdiction(ctx context.Context, jur domain.JurisdictionID) ([]*VoteEvent, error)

	UpdatePersonName(ctx context.Context, id domain.PersonID, name string) error
	UpdatePersonImage(ctx context.Context, id domain.PersonID, image string) error
	// UpdateContactValue rewrites the value (and note) of the contact detail
	// currently holding oldValue. Returns sentinel.ErrNotFound when no such
	// sub-record exists.
	UpdateContactValue(ctx context.Context, id domain.PersonID, ctype ContactType, oldValue, newValue, note string) error
	CreateContact(ctx context.Context, id domain.PersonID, ctype ContactType, value, note string) error
}
