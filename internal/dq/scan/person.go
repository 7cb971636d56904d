package scan

import (
	"context"

	"civiq/internal/entity"
	"civiq/pkg/domain"
)

// PersonScanner detects missing contact details and photos.
type PersonScanner struct {
	entities entity.Store
}

func NewPersonScanner(entities entity.Store) *PersonScanner {
	return &PersonScanner{entities: entities}
}

func (s *PersonScanner) Kind() domain.SubjectKind { return domain.KindPerson }

func (s *PersonScanner) Scan(ctx context.Context, jur domain.JurisdictionID, slug string) (*Finding, error) {
	people, err := s.entities.PeopleByJurisdiction(ctx, jur)
	if err != nil {
		return nil, err
	}

	var match func(p *entity.Person) bool
	switch slug {
	case "missing-photo":
		match = func(p *entity.Person) bool { return p.Image == "" }
	case "missing-phone":
		match = func(p *entity.Person) bool { return !p.HasContactOfType(entity.ContactVoice) }
	case "missing-email":
		match = func(p *entity.Person) bool { return !p.HasContactOfType(entity.ContactEmail) }
	case "missing-address":
		match = func(p *entity.Person) bool { return !p.HasContactOfType(entity.ContactAddress) }
	default:
		return nil, unknownSlug(domain.KindPerson, slug)
	}

	finding := &Finding{Slug: slug}
	for _, p := range people {
		if match(p) {
			finding.Subjects = append(finding.Subjects, domain.PersonRef(p.ID))
		}
	}
	return finding, nil
}
