package patch

import (
	"context"
	"sync"

	"civiq/internal/dq/models"
	"civiq/internal/dq/ports"
	"civiq/pkg/domain"
	"civiq/pkg/platform/sentinel"

	"github.com/google/uuid"
)

// InMemoryStore keeps patches in a map; the test seam for ports.PatchStore.
type InMemoryStore struct {
	mu      sync.RWMutex
	patches map[uuid.UUID]*models.Patch
	// order preserves insertion sequence so duplicate-approval warnings and
	// skip counts are stable in tests.
	order []uuid.UUID
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{patches: make(map[uuid.UUID]*models.Patch)}
}

func (s *InMemoryStore) Create(_ context.Context, p *models.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := copyPatch(p)
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
		p.ID = stored.ID
	}
	s.patches[stored.ID] = stored
	s.order = append(s.order, stored.ID)
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id uuid.UUID) (*models.Patch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patches[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyPatch(p), nil
}

func (s *InMemoryStore) List(_ context.Context, q ports.PatchQuery) ([]*models.Patch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Patch
	for _, id := range s.order {
		p := s.patches[id]
		if matches(p, q) {
			out = append(out, copyPatch(p))
		}
	}
	return out, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.PatchStatus, appliedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patches[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.Status = status
	if appliedBy != "" {
		p.AppliedBy = appliedBy
	}
	return nil
}

func (s *InMemoryStore) HasUnreviewedFromReporter(_ context.Context, subject domain.SubjectRef, category models.PatchCategory, reporterEmail string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.patches {
		if p.Subject == subject && p.Category == category &&
			p.Status == models.PatchUnreviewed && p.ReporterEmail == reporterEmail {
			return true, nil
		}
	}
	return false, nil
}

// All returns every patch sorted by insertion order; test helper.
func (s *InMemoryStore) All() []*models.Patch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Patch, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, copyPatch(s.patches[id]))
	}
	return out
}

func matches(p *models.Patch, q ports.PatchQuery) bool {
	if q.Jurisdiction != "" && p.Jurisdiction != q.Jurisdiction {
		return false
	}
	if !q.Subject.IsZero() && p.Subject != q.Subject {
		return false
	}
	if q.Status != "" && p.Status != q.Status {
		return false
	}
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	return true
}

func copyPatch(p *models.Patch) *models.Patch {
	c := *p
	return &c
}
