package entity

import (
	"context"
	"sort"
	"strings"
	"sync"

	"civiq/pkg/domain"
	"civiq/pkg/platform/sentinel"
)

// InMemoryStore is the test seam for the civic data store. Seed methods
// stand in for scraper imports.
type InMemoryStore struct {
	mu            sync.RWMutex
	jurisdictions map[domain.JurisdictionID]*Jurisdiction
	people        map[domain.PersonID]*Person
	// personJurs tracks which jurisdictions a person belongs to via memberships.
	personJurs    map[domain.PersonID]map[domain.JurisdictionID]bool
	organizations map[domain.OrganizationID]*Organization
	memberships   map[domain.MembershipID]*Membership
	posts         map[domain.PostID]*Post
	bills         map[domain.BillID]*Bill
	voteEvents    map[domain.VoteEventID]*VoteEvent
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		jurisdictions: make(map[domain.JurisdictionID]*Jurisdiction),
		people:        make(map[domain.PersonID]*Person),
		personJurs:    make(map[domain.PersonID]map[domain.JurisdictionID]bool),
		organizations: make(map[domain.OrganizationID]*Organization),
		memberships:   make(map[domain.MembershipID]*Membership),
		posts:         make(map[domain.PostID]*Post),
		bills:         make(map[domain.BillID]*Bill),
		voteEvents:    make(map[domain.VoteEventID]*VoteEvent),
	}
}

// ---- seeding ----

func (s *InMemoryStore) SeedJurisdiction(j *Jurisdiction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jurisdictions[j.ID] = j
}

func (s *InMemoryStore) SeedPerson(jur domain.JurisdictionID, p *Person) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.people[p.ID] = p
	if s.personJurs[p.ID] == nil {
		s.personJurs[p.ID] = make(map[domain.JurisdictionID]bool)
	}
	s.personJurs[p.ID][jur] = true
}

func (s *InMemoryStore) SeedOrganization(o *Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.organizations[o.ID] = o
}

func (s *InMemoryStore) SeedMembership(m *Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships[m.ID] = m
}

func (s *InMemoryStore) SeedPost(p *Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[p.ID] = p
}

func (s *InMemoryStore) SeedBill(b *Bill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bills[b.ID] = b
}

func (s *InMemoryStore) SeedVoteEvent(v *VoteEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voteEvents[v.ID] = v
}

// ---- reads ----

func (s *InMemoryStore) Jurisdictions(_ context.Context) ([]*Jurisdiction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Jurisdiction, 0, len(s.jurisdictions))
	for _, j := range s.jurisdictions {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out, nil
}

func (s *InMemoryStore) FindJurisdiction(_ context.Context, token string) (*Jurisdiction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, j := range s.jurisdictions {
		if string(j.ID) == token || strings.Contains(string(j.ID), ":"+token+"/") {
			return j, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) PeopleByJurisdiction(_ context.Context, jur domain.JurisdictionID) ([]*Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Person
	for id, jurs := range s.personJurs {
		if jurs[jur] {
			out = append(out, s.people[id])
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (s *InMemoryStore) PersonByID(_ context.Context, id domain.PersonID) (*Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.people[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p, nil
}

func (s *InMemoryStore) OrganizationsByJurisdiction(_ context.Context, jur domain.JurisdictionID) ([]*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Organization
	for _, o := range s.organizations {
		if o.JurisdictionID == jur {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (s *InMemoryStore) MembershipsByJurisdiction(_ context.Context, jur domain.JurisdictionID) ([]*Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Membership
	for _, m := range s.memberships {
		org, ok := s.organizations[m.OrganizationID]
		if ok && org.JurisdictionID == jur {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (s *InMemoryStore) PostsByJurisdiction(_ context.Context, jur domain.JurisdictionID) ([]*Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Post
	for _, p := range s.posts {
		org, ok := s.organizations[p.OrganizationID]
		if ok && org.JurisdictionID == jur {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (s *InMemoryStore) BillsByJurisdiction(_ context.Context, jur domain.JurisdictionID) ([]*Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Bill
	for _, b := range s.bills {
		if b.JurisdictionID == jur {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (s *InMemoryStore) VoteEventsByJurisdiction(_ context.Context, jur domain.JurisdictionID) ([]*VoteEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*VoteEvent
	for _, v := range s.voteEvents {
		if v.JurisdictionID == jur {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

// ---- resolver writes ----

func (s *InMemoryStore) UpdatePersonName(_ context.Context, id domain.PersonID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.people[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.Name = name
	return nil
}

func (s *InMemoryStore) UpdatePersonImage(_ context.Context, id domain.PersonID, image string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.people[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.Image = image
	return nil
}

func (s *InMemoryStore) UpdateContactValue(_ context.Context, id domain.PersonID, ctype ContactType, oldValue, newValue, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.people[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	for i := range p.ContactDetails {
		cd := &p.ContactDetails[i]
		if cd.Type == ctype && cd.Value == oldValue {
			cd.Value = newValue
			if note != "" {
				cd.Note = note
			}
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemoryStore) CreateContact(_ context.Context, id domain.PersonID, ctype ContactType, value, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.people[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.ContactDetails = append(p.ContactDetails, ContactDetail{Type: ctype, Value: value, Note: note})
	return nil
}
