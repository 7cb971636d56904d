package scan

import (
	"context"

	"civiq/internal/entity"
	"civiq/pkg/domain"
)

// legislatureClassification marks the top-level organization every person
// belongs to; it legitimately has no direct memberships of its own.
const legislatureClassification = "legislature"

// OrganizationScanner detects organizations nobody belongs to.
type OrganizationScanner struct {
	entities entity.Store
}

func NewOrganizationScanner(entities entity.Store) *OrganizationScanner {
	return &OrganizationScanner{entities: entities}
}

func (s *OrganizationScanner) Kind() domain.SubjectKind { return domain.KindOrganization }

func (s *OrganizationScanner) Scan(ctx context.Context, jur domain.JurisdictionID, slug string) (*Finding, error) {
	if slug != "no-memberships" {
		return nil, unknownSlug(domain.KindOrganization, slug)
	}

	orgs, err := s.entities.OrganizationsByJurisdiction(ctx, jur)
	if err != nil {
		return nil, err
	}

	finding := &Finding{Slug: slug}
	for _, org := range orgs {
		if org.MembershipCount == 0 && org.Classification != legislatureClassification {
			finding.Subjects = append(finding.Subjects, domain.OrganizationRef(org.ID))
		}
	}
	return finding, nil
}
