package handler

import (
	"civiq/internal/dq/models"
	"civiq/internal/dq/ports"
)

// IssueResponse is the wire form of one issue.
type IssueResponse struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	SubjectID     string `json:"subject_id,omitempty"`
	Jurisdiction  string `json:"jurisdiction"`
	Slug          string `json:"slug"`
	Description   string `json:"description,omitempty"`
	Severity      string `json:"severity"`
	Status        string `json:"status"`
	UnmatchedName string `json:"unmatched_name,omitempty"`
	Occurrences   int    `json:"occurrences,omitempty"`
	Message       string `json:"message,omitempty"`
}

// IssueListResponse pages issues. Limit and Offset echo the applied query
// so clients can walk pages without recomputing defaults.
type IssueListResponse struct {
	Issues []IssueResponse `json:"issues"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

func FromIssue(i *models.Issue, description string) IssueResponse {
	return IssueResponse{
		ID:            i.ID.String(),
		Kind:          string(i.Kind),
		SubjectID:     i.Subject.ID,
		Jurisdiction:  string(i.Jurisdiction),
		Slug:          i.Slug,
		Description:   description,
		Severity:      string(i.Severity),
		Status:        string(i.Status),
		UnmatchedName: i.UnmatchedName,
		Occurrences:   i.Occurrences,
		Message:       i.Message,
	}
}

func FromIssues(issues []*models.Issue, q ports.IssueQuery, describer IssueDescriber) IssueListResponse {
	out := IssueListResponse{
		Issues: make([]IssueResponse, 0, len(issues)),
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	for _, i := range issues {
		// Rows for retired issue types list without a description.
		description, _ := describer.DescriptionOf(i.Slug)
		out.Issues = append(out.Issues, FromIssue(i, description))
	}
	return out
}

// PatchResponse is the wire form of one patch. Reporter contact details
// stay server-side.
type PatchResponse struct {
	ID           string `json:"id"`
	SubjectID    string `json:"subject_id"`
	Jurisdiction string `json:"jurisdiction"`
	Status       string `json:"status"`
	Category     string `json:"category"`
	OldValue     string `json:"old_value"`
	NewValue     string `json:"new_value"`
	Note         string `json:"note,omitempty"`
	Source       string `json:"source,omitempty"`
}

func FromPatch(p *models.Patch) PatchResponse {
	return PatchResponse{
		ID:           p.ID.String(),
		SubjectID:    p.Subject.ID,
		Jurisdiction: string(p.Jurisdiction),
		Status:       string(p.Status),
		Category:     string(p.Category),
		OldValue:     p.OldValue,
		NewValue:     p.NewValue,
		Note:         p.Note,
		Source:       p.Source,
	}
}

// PatchListResponse wraps a patch listing.
type PatchListResponse struct {
	Patches []PatchResponse `json:"patches"`
}

func FromPatches(patches []*models.Patch) PatchListResponse {
	out := PatchListResponse{Patches: make([]PatchResponse, 0, len(patches))}
	for _, p := range patches {
		out.Patches = append(out.Patches, FromPatch(p))
	}
	return out
}

// StatusResponse acknowledges a state change.
type StatusResponse struct {
	Status string `json:"status"`
}
