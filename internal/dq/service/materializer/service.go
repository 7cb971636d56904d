// Package materializer reconciles scanner findings into persisted issue
// rows. A materialization run deletes the active issues for one
// jurisdiction and subject kind, re-runs every registered predicate, and
// bulk-inserts what the scan reproduced, deduplicating against issues
// that survived the delete (the ignored set) and against rows accumulated
// earlier in the same pass. Running it twice without an entity change
// creates nothing the second time.
package materializer

import (
	"context"
	"log/slog"
	"time"

	"civiq/internal/dq/catalog"
	"civiq/internal/dq/metrics"
	"civiq/internal/dq/models"
	"civiq/internal/dq/ports"
	"civiq/internal/dq/scan"
	"civiq/pkg/domain"
	dErrors "civiq/pkg/domain-errors"
)

type Service struct {
	catalog  *catalog.Catalog
	scanners scan.Registry
	issues   ports.IssueStore
	tx       ports.TxRunner
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(cat *catalog.Catalog, scanners scan.Registry, issues ports.IssueStore, tx ports.TxRunner, opts ...Option) (*Service, error) {
	if cat == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "issue catalog is required")
	}
	if issues == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "issue store is required")
	}
	if tx == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "tx runner is required")
	}

	svc := &Service{
		catalog:  cat,
		scanners: scanners,
		issues:   issues,
		tx:       tx,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

type subjectKey struct {
	subjectID string
	slug      string
}

type nameKey struct {
	name string
	slug string
}

// Materialize runs every registered predicate for the kind over one
// jurisdiction and returns the number of newly created issues. The whole
// pass runs inside one transaction: a scanner failure (including a
// configuration error for an unhandled slug) leaves no partial rows.
func (s *Service) Materialize(ctx context.Context, jur domain.JurisdictionID, kind domain.SubjectKind) (int, error) {
	scanner, ok := s.scanners[kind]
	if !ok {
		return 0, dErrors.Newf(dErrors.CodeConfiguration, "no scanner registered for kind %q", kind)
	}
	slugs := s.catalog.IssuesFor(kind)

	start := time.Now()
	created := 0
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.issues.DeleteActiveByKind(ctx, jur, kind); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "delete active issues")
		}

		// The survivors are the ignored set (plus any resolver-raised issues
		// of another status); they seed the dedup index so dismissed defects
		// are not resurrected.
		survivors, err := s.issues.List(ctx, ports.IssueQuery{Jurisdiction: jur, Kind: kind})
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "list surviving issues")
		}
		seenSubjects := make(map[subjectKey]bool)
		seenNames := make(map[nameKey]bool)
		for _, issue := range survivors {
			if issue.IsNameBased() {
				seenNames[nameKey{issue.UnmatchedName, issue.Slug}] = true
			} else {
				seenSubjects[subjectKey{issue.Subject.ID, issue.Slug}] = true
			}
		}

		var batch []*models.Issue
		for _, slug := range slugs {
			severity, err := s.catalog.SeverityOf(slug)
			if err != nil {
				return err
			}
			finding, err := scanner.Scan(ctx, jur, slug)
			if err != nil {
				return err
			}
			for _, subject := range finding.Subjects {
				key := subjectKey{subject.ID, slug}
				if seenSubjects[key] {
					continue
				}
				seenSubjects[key] = true
				batch = append(batch, &models.Issue{
					Kind:         kind,
					Subject:      subject,
					Jurisdiction: jur,
					Slug:         slug,
					Severity:     severity,
					Status:       models.StatusActive,
				})
			}
			for _, group := range finding.Names {
				key := nameKey{group.Name, slug}
				if seenNames[key] {
					continue
				}
				seenNames[key] = true
				batch = append(batch, &models.Issue{
					Kind:          kind,
					Jurisdiction:  jur,
					Slug:          slug,
					Severity:      severity,
					Status:        models.StatusActive,
					UnmatchedName: group.Name,
					Occurrences:   group.Count,
				})
			}
		}

		if err := s.issues.BulkCreate(ctx, batch); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "bulk insert issues")
		}
		created = len(batch)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.AddIssuesCreated(string(kind), created)
	s.metrics.ObserveScan(string(kind), time.Since(start))
	s.logger.InfoContext(ctx, "materialized issues",
		"jurisdiction", jur,
		"kind", kind,
		"created", created,
	)
	return created, nil
}

// MaterializeKinds runs Materialize for each kind in order and returns the
// total created. Each kind commits independently so one kind's scanner
// failure does not roll back the others.
func (s *Service) MaterializeKinds(ctx context.Context, jur domain.JurisdictionID, kinds []domain.SubjectKind) (int, error) {
	total := 0
	for _, kind := range kinds {
		n, err := s.Materialize(ctx, jur, kind)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
