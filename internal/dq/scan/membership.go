package scan

import (
	"context"

	"civiq/internal/entity"
	"civiq/pkg/domain"
)

// MembershipScanner detects memberships whose raw person name never matched
// a known person. Results are grouped by the scraped name, one issue per
// distinct name, with an occurrence count for triage.
type MembershipScanner struct {
	entities entity.Store
}

func NewMembershipScanner(entities entity.Store) *MembershipScanner {
	return &MembershipScanner{entities: entities}
}

func (s *MembershipScanner) Kind() domain.SubjectKind { return domain.KindMembership }

func (s *MembershipScanner) Scan(ctx context.Context, jur domain.JurisdictionID, slug string) (*Finding, error) {
	if slug != "unmatched-person" {
		return nil, unknownSlug(domain.KindMembership, slug)
	}

	memberships, err := s.entities.MembershipsByJurisdiction(ctx, jur)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, m := range memberships {
		if m.PersonID.IsEmpty() {
			names = append(names, m.PersonName)
		}
	}
	return &Finding{Slug: slug, Names: groupNames(names)}, nil
}
