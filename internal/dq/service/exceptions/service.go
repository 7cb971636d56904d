// Package exceptions records human overrides on issues. Ignored issues
// survive rescans, so a defect dismissed once stays dismissed until a
// human reactivates it.
package exceptions

import (
	"context"
	"errors"
	"log/slog"

	"civiq/internal/dq/metrics"
	"civiq/internal/dq/models"
	"civiq/internal/dq/ports"
	dErrors "civiq/pkg/domain-errors"
	"civiq/pkg/platform/sentinel"

	"github.com/google/uuid"
)

type Service struct {
	issues  ports.IssueStore
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(issues ports.IssueStore, opts ...Option) (*Service, error) {
	if issues == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "issue store is required")
	}
	svc := &Service{issues: issues, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Ignore flips an active issue to ignored, recording the reviewer's message.
func (s *Service) Ignore(ctx context.Context, issueID uuid.UUID, message string) error {
	issue, err := s.get(ctx, issueID)
	if err != nil {
		return err
	}
	if issue.Status == models.StatusIgnored {
		return dErrors.New(dErrors.CodeConflict, "issue is already ignored")
	}
	if err := s.issues.UpdateStatus(ctx, issueID, models.StatusIgnored, message); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "mark issue ignored")
	}
	s.metrics.IncIssuesIgnored()
	s.logger.InfoContext(ctx, "issue ignored", "issue_id", issueID, "slug", issue.Slug)
	return nil
}

// Reactivate re-surfaces a previously ignored issue.
func (s *Service) Reactivate(ctx context.Context, issueID uuid.UUID) error {
	issue, err := s.get(ctx, issueID)
	if err != nil {
		return err
	}
	if issue.Status == models.StatusActive {
		return dErrors.New(dErrors.CodeConflict, "issue is already active")
	}
	if err := s.issues.UpdateStatus(ctx, issueID, models.StatusActive, ""); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "mark issue active")
	}
	s.logger.InfoContext(ctx, "issue reactivated", "issue_id", issueID, "slug", issue.Slug)
	return nil
}

func (s *Service) get(ctx context.Context, issueID uuid.UUID) (*models.Issue, error) {
	issue, err := s.issues.GetByID(ctx, issueID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "issue %s not found", issueID)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get issue")
	}
	return issue, nil
}
