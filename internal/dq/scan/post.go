package scan

import (
	"context"

	"civiq/internal/entity"
	"civiq/pkg/domain"
)

// PostScanner compares how many people hold a post against how many the
// post allows.
type PostScanner struct {
	entities entity.Store
}

func NewPostScanner(entities entity.Store) *PostScanner {
	return &PostScanner{entities: entities}
}

func (s *PostScanner) Kind() domain.SubjectKind { return domain.KindPost }

func (s *PostScanner) Scan(ctx context.Context, jur domain.JurisdictionID, slug string) (*Finding, error) {
	var match func(p *entity.Post) bool
	switch slug {
	case "many-memberships":
		match = func(p *entity.Post) bool { return p.MembershipCount > p.MaximumMemberships }
	case "few-memberships":
		match = func(p *entity.Post) bool { return p.MembershipCount < p.MaximumMemberships }
	default:
		return nil, unknownSlug(domain.KindPost, slug)
	}

	posts, err := s.entities.PostsByJurisdiction(ctx, jur)
	if err != nil {
		return nil, err
	}

	finding := &Finding{Slug: slug}
	for _, p := range posts {
		if match(p) {
			finding.Subjects = append(finding.Subjects, domain.PostRef(p.ID))
		}
	}
	return finding, nil
}
