package scan

import (
	"context"

	"civiq/internal/entity"
	"civiq/pkg/domain"
)

// BillScanner detects bills missing actions, sponsors, or versions, and
// sponsorships whose declared entity never resolved to a person or
// organization. Unmatched sponsors are grouped by the raw scraped name
// across the whole jurisdiction, one issue per distinct name.
type BillScanner struct {
	entities entity.Store
}

func NewBillScanner(entities entity.Store) *BillScanner {
	return &BillScanner{entities: entities}
}

func (s *BillScanner) Kind() domain.SubjectKind { return domain.KindBill }

func (s *BillScanner) Scan(ctx context.Context, jur domain.JurisdictionID, slug string) (*Finding, error) {
	bills, err := s.entities.BillsByJurisdiction(ctx, jur)
	if err != nil {
		return nil, err
	}

	finding := &Finding{Slug: slug}
	switch slug {
	case "no-actions":
		for _, b := range bills {
			if b.ActionCount == 0 {
				finding.Subjects = append(finding.Subjects, domain.BillRef(b.ID))
			}
		}
	case "no-sponsors":
		for _, b := range bills {
			if len(b.Sponsorships) == 0 {
				finding.Subjects = append(finding.Subjects, domain.BillRef(b.ID))
			}
		}
	case "no-versions":
		for _, b := range bills {
			if b.VersionCount == 0 {
				finding.Subjects = append(finding.Subjects, domain.BillRef(b.ID))
			}
		}
	case "unmatched-person-sponsor":
		var names []string
		for _, b := range bills {
			for _, sp := range b.Sponsorships {
				if sp.EntityType == entity.SponsorPerson && sp.PersonID == "" {
					names = append(names, sp.Name)
				}
			}
		}
		finding.Names = groupNames(names)
	case "unmatched-org-sponsor":
		var names []string
		for _, b := range bills {
			for _, sp := range b.Sponsorships {
				if sp.EntityType == entity.SponsorOrganization && sp.OrganizationID == "" {
					names = append(names, sp.Name)
				}
			}
		}
		finding.Names = groupNames(names)
	default:
		return nil, unknownSlug(domain.KindBill, slug)
	}
	return finding, nil
}
