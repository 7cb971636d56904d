// Package report aggregates per-jurisdiction issue counts for dashboards.
// Counts are computed from active issues only and optionally cached in
// Redis; cache misses and cache failures both fall through to the store,
// so a dead cache degrades latency, never correctness.
package report

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"civiq/internal/dq/catalog"
	"civiq/internal/dq/ports"
	"civiq/pkg/domain"
	dErrors "civiq/pkg/domain-errors"

	"github.com/redis/go-redis/v9"
)

// Cache is the slice of Redis the report service uses. A nil Cache
// disables caching entirely.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// SlugCount is one catalog entry with its active-issue count.
type SlugCount struct {
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Count       int    `json:"count"`
}

// KindReport groups slug counts under their subject kind.
type KindReport struct {
	Kind   string      `json:"kind"`
	Total  int         `json:"total"`
	Counts []SlugCount `json:"counts"`
}

// Report is the dashboard payload for one jurisdiction.
type Report struct {
	Jurisdiction string       `json:"jurisdiction"`
	Total        int          `json:"total"`
	Kinds        []KindReport `json:"kinds"`
}

type Service struct {
	catalog *catalog.Catalog
	issues  ports.IssueStore
	cache   Cache
	ttl     time.Duration
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithCache enables Redis-backed caching of computed reports.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.ttl = ttl
	}
}

func New(cat *catalog.Catalog, issues ports.IssueStore, opts ...Option) (*Service, error) {
	if cat == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "issue catalog is required")
	}
	if issues == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "issue store is required")
	}
	svc := &Service{catalog: cat, issues: issues, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func cacheKey(jur domain.JurisdictionID) string {
	return "civiq:report:" + string(jur)
}

// CountsByJurisdiction builds the issue-count report for one jurisdiction.
// Every registered slug appears, zero-count ones included, so dashboards
// render a stable grid.
func (s *Service) CountsByJurisdiction(ctx context.Context, jur domain.JurisdictionID) (*Report, error) {
	if cached := s.fromCache(ctx, jur); cached != nil {
		return cached, nil
	}

	counts, err := s.issues.CountBySlug(ctx, jur)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "count issues")
	}

	rep := &Report{Jurisdiction: string(jur)}
	for _, kind := range s.catalog.Kinds() {
		kr := KindReport{Kind: string(kind)}
		for _, slug := range s.slugsFor(kind) {
			desc, err := s.catalog.DescriptionOf(slug)
			if err != nil {
				return nil, err
			}
			severity, err := s.catalog.SeverityOf(slug)
			if err != nil {
				return nil, err
			}
			n := counts[slug]
			kr.Counts = append(kr.Counts, SlugCount{
				Slug:        slug,
				Description: desc,
				Severity:    string(severity),
				Count:       n,
			})
			kr.Total += n
		}
		rep.Kinds = append(rep.Kinds, kr)
		rep.Total += kr.Total
	}

	s.toCache(ctx, jur, rep)
	return rep, nil
}

// slugsFor returns every slug for a kind, resolver-origin included: a
// wrong-name issue counts on the dashboard like any other.
func (s *Service) slugsFor(kind domain.SubjectKind) []string {
	var out []string
	for _, slug := range s.catalog.IssuesFor(kind) {
		out = append(out, slug)
	}
	for _, slug := range s.catalog.ResolverIssuesFor(kind) {
		out = append(out, slug)
	}
	return out
}

// Invalidate drops the cached report after a scan or resolution run.
func (s *Service) Invalidate(ctx context.Context, jur domain.JurisdictionID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey(jur)).Err(); err != nil {
		s.logger.WarnContext(ctx, "report cache invalidation failed", "jurisdiction", jur, "error", err)
	}
}

func (s *Service) fromCache(ctx context.Context, jur domain.JurisdictionID) *Report {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, cacheKey(jur)).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		s.logger.WarnContext(ctx, "report cache read failed", "jurisdiction", jur, "error", err)
		return nil
	}
	var rep Report
	if err := json.Unmarshal(raw, &rep); err != nil {
		s.logger.WarnContext(ctx, "report cache payload corrupt", "jurisdiction", jur, "error", err)
		return nil
	}
	return &rep
}

func (s *Service) toCache(ctx context.Context, jur domain.JurisdictionID, rep *Report) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(rep)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(jur), raw, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "report cache write failed", "jurisdiction", jur, "error", err)
	}
}
