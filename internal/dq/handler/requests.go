package handler

import (
	"strings"

	"civiq/internal/dq/service/submission"
	"civiq/pkg/domain"
	dErrors "civiq/pkg/domain-errors"
)

// SubmitPatchRequest is the wire form of a crowd-sourced correction.
type SubmitPatchRequest struct {
	PersonID      string `json:"person_id"`
	Jurisdiction  string `json:"jurisdiction"`
	Category      string `json:"category"`
	OldValue      string `json:"old_value"`
	NewValue      string `json:"new_value"`
	Note          string `json:"note"`
	Source        string `json:"source"`
	ReporterName  string `json:"reporter_name"`
	ReporterEmail string `json:"reporter_email"`
}

func (r SubmitPatchRequest) ToServiceRequest() submission.SubmitRequest {
	return submission.SubmitRequest{
		PersonID:      domain.PersonID(strings.TrimSpace(r.PersonID)),
		Jurisdiction:  domain.JurisdictionID(strings.TrimSpace(r.Jurisdiction)),
		Category:      r.Category,
		OldValue:      r.OldValue,
		NewValue:      strings.TrimSpace(r.NewValue),
		Note:          r.Note,
		Source:        r.Source,
		ReporterName:  strings.TrimSpace(r.ReporterName),
		ReporterEmail: strings.TrimSpace(r.ReporterEmail),
	}
}

// ReviewPatchRequest records an approve or reject decision.
type ReviewPatchRequest struct {
	Approve  bool   `json:"approve"`
	Reviewer string `json:"reviewer"`
}

func (r ReviewPatchRequest) Validate() error {
	if strings.TrimSpace(r.Reviewer) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "reviewer is required")
	}
	return nil
}

// IgnoreIssueRequest carries the reviewer's dismissal note.
type IgnoreIssueRequest struct {
	Message string `json:"message"`
}
