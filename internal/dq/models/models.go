package models

import (
	"civiq/pkg/domain"
	dErrors "civiq/pkg/domain-errors"

	"github.com/google/uuid"
)

// Severity grades how bad a detected defect is.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

func (s Severity) IsValid() bool {
	return s == SeverityWarning || s == SeverityError
}

// IssueStatus is the lifecycle state of an issue row.
type IssueStatus string

const (
	// StatusActive issues are deleted and regenerated on every scan.
	StatusActive IssueStatus = "active"
	// StatusIgnored issues survive rescans so dismissed defects stay dismissed.
	StatusIgnored IssueStatus = "ignored"
)

func (s IssueStatus) IsValid() bool {
	return s == StatusActive || s == StatusIgnored
}

// Issue is one materialized data-quality defect. It references either a
// concrete subject entity (Subject) or, for defects with no matchable
// entity, a raw scraped name (UnmatchedName + Occurrences).
type Issue struct {
	ID uuid.UUID
	// Kind is always set, even for name-based issues where Subject is zero.
	// Issues are keyed by the composite (Kind, Slug), never by slug string
	// concatenation.
	Kind          domain.SubjectKind
	Subject       domain.SubjectRef
	Jurisdiction  domain.JurisdictionID
	Slug          string
	Severity      Severity
	Status        IssueStatus
	UnmatchedName string
	Occurrences   int
	Message       string
}

// IsNameBased reports whether the issue is keyed on an unmatched name
// rather than a subject entity.
func (i *Issue) IsNameBased() bool { return i.UnmatchedName != "" }

// PatchStatus is the review state of a crowd-submitted correction.
type PatchStatus string

const (
	PatchUnreviewed PatchStatus = "unreviewed"
	PatchApproved   PatchStatus = "approved"
	PatchRejected   PatchStatus = "rejected"
	// PatchDeprecated marks a patch the resolver refused to apply because a
	// scraper changed the live value after approval.
	PatchDeprecated PatchStatus = "deprecated"
)

func (s PatchStatus) IsValid() bool {
	switch s {
	case PatchUnreviewed, PatchApproved, PatchRejected, PatchDeprecated:
		return true
	}
	return false
}

// PatchCategory names the person field or sub-record a patch corrects.
type PatchCategory string

const (
	CategoryName    PatchCategory = "name"
	CategoryImage   PatchCategory = "image"
	CategoryVoice   PatchCategory = "voice"
	CategoryAddress PatchCategory = "address"
	CategoryEmail   PatchCategory = "email"
)

// ParsePatchCategory validates a submitted category string.
func ParsePatchCategory(s string) (PatchCategory, error) {
	c := PatchCategory(s)
	if !c.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid patch category %q", s)
	}
	return c, nil
}

func (c PatchCategory) IsValid() bool {
	switch c {
	case CategoryName, CategoryImage, CategoryVoice, CategoryAddress, CategoryEmail:
		return true
	}
	return false
}

// IsSingleValue reports whether the category maps to a single-value person
// field (at most one approved patch may be applied at a time) rather than a
// repeatable contact sub-record.
func (c PatchCategory) IsSingleValue() bool {
	return c == CategoryName || c == CategoryImage
}

// ConflictSlug is the issue slug raised when the resolver detects that a
// third party overrode the value a patch was approved against.
func (c PatchCategory) ConflictSlug() string {
	switch c {
	case CategoryName:
		return "wrong-name"
	case CategoryImage:
		return "wrong-photo"
	case CategoryVoice:
		return "wrong-phone"
	case CategoryAddress:
		return "wrong-address"
	case CategoryEmail:
		return "wrong-email"
	}
	return ""
}

// Patch is one crowd-submitted correction to a person field. Patches are
// never deleted; review and resolution only move them between statuses.
type Patch struct {
	ID            uuid.UUID
	Subject       domain.SubjectRef
	Jurisdiction  domain.JurisdictionID
	Status        PatchStatus
	Category      PatchCategory
	OldValue      string
	NewValue      string
	Note          string
	Source        string
	ReporterName  string
	ReporterEmail string
	AppliedBy     string
}
