package issue

import (
	"context"
	"sort"
	"sync"

	"civiq/internal/dq/models"
	"civiq/internal/dq/ports"
	"civiq/pkg/domain"
	"civiq/pkg/platform/sentinel"

	"github.com/google/uuid"
)

// InMemoryStore keeps issues in a map. It is the test seam for every
// service that consumes ports.IssueStore.
type InMemoryStore struct {
	mu     sync.RWMutex
	issues map[uuid.UUID]*models.Issue
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{issues: make(map[uuid.UUID]*models.Issue)}
}

func (s *InMemoryStore) List(_ context.Context, q ports.IssueQuery) ([]*models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Issue
	for _, issue := range s.issues {
		if matches(issue, q) {
			out = append(out, copyIssue(issue))
		}
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].Slug != out[k].Slug {
			return out[i].Slug < out[k].Slug
		}
		if out[i].Subject.ID != out[k].Subject.ID {
			return out[i].Subject.ID < out[k].Subject.ID
		}
		return out[i].UnmatchedName < out[k].UnmatchedName
	})
	out = page(out, q.Offset, q.Limit)
	return out, nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id uuid.UUID) (*models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	issue, ok := s.issues[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyIssue(issue), nil
}

func (s *InMemoryStore) BulkCreate(_ context.Context, issues []*models.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, issue := range issues {
		stored := copyIssue(issue)
		if stored.ID == uuid.Nil {
			stored.ID = uuid.New()
			issue.ID = stored.ID
		}
		s.issues[stored.ID] = stored
	}
	return nil
}

func (s *InMemoryStore) Create(ctx context.Context, issue *models.Issue) error {
	return s.BulkCreate(ctx, []*models.Issue{issue})
}

func (s *InMemoryStore) DeleteActiveByKind(_ context.Context, jur domain.JurisdictionID, kind domain.SubjectKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, issue := range s.issues {
		if issue.Jurisdiction == jur && issue.Kind == kind && issue.Status == models.StatusActive {
			delete(s.issues, id)
		}
	}
	return nil
}

func (s *InMemoryStore) DeleteByID(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.issues[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.issues, id)
	return nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.IssueStatus, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	issue.Status = status
	issue.Message = message
	return nil
}

func (s *InMemoryStore) BySubjectSlug(_ context.Context, subject domain.SubjectRef, slug string) ([]*models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Issue
	for _, issue := range s.issues {
		if issue.Subject == subject && issue.Slug == slug {
			out = append(out, copyIssue(issue))
		}
	}
	return out, nil
}

func (s *InMemoryStore) CountBySlug(_ context.Context, jur domain.JurisdictionID) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, issue := range s.issues {
		if issue.Jurisdiction == jur && issue.Status == models.StatusActive {
			counts[issue.Slug]++
		}
	}
	return counts, nil
}

func matches(issue *models.Issue, q ports.IssueQuery) bool {
	if q.Jurisdiction != "" && issue.Jurisdiction != q.Jurisdiction {
		return false
	}
	if q.Kind != "" && issue.Kind != q.Kind {
		return false
	}
	if q.Slug != "" && issue.Slug != q.Slug {
		return false
	}
	if q.Status != "" && issue.Status != q.Status {
		return false
	}
	return true
}

func page(issues []*models.Issue, offset, limit int) []*models.Issue {
	if offset > 0 {
		if offset >= len(issues) {
			return nil
		}
		issues = issues[offset:]
	}
	if limit > 0 && limit < len(issues) {
		issues = issues[:limit]
	}
	return issues
}

func copyIssue(issue *models.Issue) *models.Issue {
	c := *issue
	return &c
}

// NoopTx satisfies ports.TxRunner for the memory store: it simply runs fn.
type NoopTx struct{}

func (NoopTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
