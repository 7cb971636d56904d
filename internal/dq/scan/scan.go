// Package scan holds one scanner per subject kind. A scanner runs the
// predicate for a single issue slug over the entities of one jurisdiction
// and yields the matching subjects, or name groups for defects with no
// matchable entity.
//
// Every slug the catalog registers for a kind must have a predicate branch
// in that kind's scanner. The exhaustive default branch returns a
// configuration error so a registered-but-unhandled slug surfaces
// immediately instead of silently producing no issues.
package scan

import (
	"context"

	"civiq/pkg/domain"
	dErrors "civiq/pkg/domain-errors"
)

// NameCount is one distinct unmatched name and how often it occurred.
type NameCount struct {
	Name  string
	Count int
}

// Finding is the result of running one predicate. Exactly one of Subjects
// or Names is populated, depending on whether the defect is keyed on an
// entity or on a raw scraped name.
type Finding struct {
	Slug     string
	Subjects []domain.SubjectRef
	Names    []NameCount
}

// Scanner runs predicates for one subject kind.
type Scanner interface {
	Kind() domain.SubjectKind
	Scan(ctx context.Context, jur domain.JurisdictionID, slug string) (*Finding, error)
}

func unknownSlug(kind domain.SubjectKind, slug string) error {
	return dErrors.Newf(dErrors.CodeConfiguration,
		"%s scanner needs update for new issue %q", kind, slug)
}

// groupNames folds raw name occurrences into sorted-by-first-seen groups.
func groupNames(raw []string) []NameCount {
	index := make(map[string]int)
	var out []NameCount
	for _, name := range raw {
		if i, ok := index[name]; ok {
			out[i].Count++
			continue
		}
		index[name] = len(out)
		out = append(out, NameCount{Name: name, Count: 1})
	}
	return out
}
