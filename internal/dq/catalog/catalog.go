// Package catalog is the registry of issue-type definitions. A Catalog is
// constructed once at startup and passed by reference to scanners and
// services; nothing here is a package-level singleton, so tests can build
// throwaway catalogs without polluting each other.
package catalog

import (
	"civiq/internal/dq/models"
	"civiq/pkg/domain"
	dErrors "civiq/pkg/domain-errors"
)

// Origin says which part of the engine produces an issue type. Scanners
// enumerate only scan-origin slugs; resolver-origin slugs ("wrong-*") are
// created by the patch resolver when it detects an override conflict.
type Origin string

const (
	OriginScan     Origin = "scan"
	OriginResolver Origin = "resolver"
)

// IssueType defines one detectable defect.
type IssueType struct {
	Slug        string
	Description string
	Kind        domain.SubjectKind
	Severity    models.Severity
	Origin      Origin
}

// Catalog holds issue-type definitions keyed by (kind, slug). Registration
// order is preserved per kind so scan output stays stable.
type Catalog struct {
	ordered []IssueType
	bySlug  map[string]IssueType
}

func New() *Catalog {
	return &Catalog{bySlug: make(map[string]IssueType)}
}

// Register appends a scan-origin definition. Registering the same slug
// twice is a programmer error and fails with a configuration error.
func (c *Catalog) Register(slug, description string, kind domain.SubjectKind, severity models.Severity) error {
	return c.register(slug, description, kind, severity, OriginScan)
}

// RegisterResolver appends a resolver-origin definition. These slugs are
// never handed to scanners.
func (c *Catalog) RegisterResolver(slug, description string, kind domain.SubjectKind, severity models.Severity) error {
	return c.register(slug, description, kind, severity, OriginResolver)
}

func (c *Catalog) register(slug, description string, kind domain.SubjectKind, severity models.Severity, origin Origin) error {
	if slug == "" {
		return dErrors.New(dErrors.CodeConfiguration, "issue slug must not be empty")
	}
	if !kind.IsValid() {
		return dErrors.Newf(dErrors.CodeConfiguration, "issue %q has invalid subject kind %q", slug, kind)
	}
	if !severity.IsValid() {
		return dErrors.Newf(dErrors.CodeConfiguration, "issue %q has invalid severity %q", slug, severity)
	}
	if _, exists := c.bySlug[slug]; exists {
		return dErrors.Newf(dErrors.CodeConfiguration, "issue %q registered twice", slug)
	}
	it := IssueType{Slug: slug, Description: description, Kind: kind, Severity: severity, Origin: origin}
	c.ordered = append(c.ordered, it)
	c.bySlug[slug] = it
	return nil
}

// MustRegister is Register for static issue sets assembled at startup.
func (c *Catalog) MustRegister(slug, description string, kind domain.SubjectKind, severity models.Severity) {
	if err := c.Register(slug, description, kind, severity); err != nil {
		panic(err)
	}
}

// MustRegisterResolver is RegisterResolver for static issue sets.
func (c *Catalog) MustRegisterResolver(slug, description string, kind domain.SubjectKind, severity models.Severity) {
	if err := c.RegisterResolver(slug, description, kind, severity); err != nil {
		panic(err)
	}
}

// IssuesFor returns the scan-origin slugs registered for a subject kind,
// in registration order. Resolver-origin slugs are excluded: every slug
// returned here must have a matching scanner predicate.
func (c *Catalog) IssuesFor(kind domain.SubjectKind) []string {
	var out []string
	for _, it := range c.ordered {
		if it.Kind == kind && it.Origin == OriginScan {
			out = append(out, it.Slug)
		}
	}
	return out
}

// ResolverIssuesFor returns the resolver-origin slugs registered for a
// subject kind, in registration order.
func (c *Catalog) ResolverIssuesFor(kind domain.SubjectKind) []string {
	var out []string
	for _, it := range c.ordered {
		if it.Kind == kind && it.Origin == OriginResolver {
			out = append(out, it.Slug)
		}
	}
	return out
}

// Lookup returns the definition for a slug or a not-found error. Unknown
// slugs fail loudly; a silent zero value here would let the catalog and
// the scanner predicates drift apart unnoticed.
func (c *Catalog) Lookup(slug string) (IssueType, error) {
	it, ok := c.bySlug[slug]
	if !ok {
		return IssueType{}, dErrors.Newf(dErrors.CodeNotFound, "issue type %q is not registered", slug)
	}
	return it, nil
}

func (c *Catalog) SeverityOf(slug string) (models.Severity, error) {
	it, err := c.Lookup(slug)
	if err != nil {
		return "", err
	}
	return it.Severity, nil
}

func (c *Catalog) KindOf(slug string) (domain.SubjectKind, error) {
	it, err := c.Lookup(slug)
	if err != nil {
		return "", err
	}
	return it.Kind, nil
}

func (c *Catalog) DescriptionOf(slug string) (string, error) {
	it, err := c.Lookup(slug)
	if err != nil {
		return "", err
	}
	return it.Description, nil
}

// Kinds returns the distinct subject kinds with at least one registered issue.
func (c *Catalog) Kinds() []domain.SubjectKind {
	seen := make(map[domain.SubjectKind]bool)
	var out []domain.SubjectKind
	for _, it := range c.ordered {
		if !seen[it.Kind] {
			seen[it.Kind] = true
			out = append(out, it.Kind)
		}
	}
	return out
}
