// Package handler exposes the data-quality engine over HTTP. Jurisdiction
// ids contain slashes, so they travel as query parameters rather than path
// segments.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"civiq/internal/dq/models"
	"civiq/internal/dq/ports"
	"civiq/internal/dq/service/report"
	"civiq/internal/dq/service/submission"
	"civiq/pkg/domain"
	dErrors "civiq/pkg/domain-errors"
	"civiq/pkg/platform/httputil"
)

// IssueReader lists and fetches materialized issues.
type IssueReader interface {
	List(ctx context.Context, q ports.IssueQuery) ([]*models.Issue, error)
}

// IssueDescriber resolves catalog descriptions for listed issues.
type IssueDescriber interface {
	DescriptionOf(slug string) (string, error)
}

// ExceptionService flips issues between active and ignored.
type ExceptionService interface {
	Ignore(ctx context.Context, issueID uuid.UUID, message string) error
	Reactivate(ctx context.Context, issueID uuid.UUID) error
}

// SubmissionService takes in and reviews crowd-sourced patches.
type SubmissionService interface {
	Submit(ctx context.Context, req submission.SubmitRequest) (*models.Patch, error)
	Review(ctx context.Context, patchID uuid.UUID, approve bool, reviewer string) error
	List(ctx context.Context, q ports.PatchQuery) ([]*models.Patch, error)
}

// ReportService aggregates issue counts for dashboards.
type ReportService interface {
	CountsByJurisdiction(ctx context.Context, jur domain.JurisdictionID) (*report.Report, error)
}

// Handler wires engine endpoints to their services.
type Handler struct {
	issues      IssueReader
	describer   IssueDescriber
	exceptions  ExceptionService
	submissions SubmissionService
	reports     ReportService
	logger      *slog.Logger
}

func New(issues IssueReader, describer IssueDescriber, exceptions ExceptionService, submissions SubmissionService, reports ReportService, logger *slog.Logger) *Handler {
	return &Handler{
		issues:      issues,
		describer:   describer,
		exceptions:  exceptions,
		submissions: submissions,
		reports:     reports,
		logger:      logger,
	}
}

// Register mounts engine endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/issues", h.HandleListIssues)
	r.Post("/issues/{id}/ignore", h.HandleIgnoreIssue)
	r.Post("/issues/{id}/activate", h.HandleActivateIssue)
	r.Get("/report", h.HandleReport)
	r.Get("/patches", h.HandleListPatches)
	r.Post("/patches", h.HandleSubmitPatch)
	r.Post("/patches/{id}/review", h.HandleReviewPatch)
}

// HandleListIssues handles GET /issues requests.
func (h *Handler) HandleListIssues(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q, err := issueQueryFromRequest(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	issues, err := h.issues.List(ctx, q)
	if err != nil {
		h.logger.ErrorContext(ctx, "issue listing failed", "jurisdiction", q.Jurisdiction, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromIssues(issues, q, h.describer))
}

// HandleIgnoreIssue handles POST /issues/{id}/ignore requests.
func (h *Handler) HandleIgnoreIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	issueID, err := issueIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.Decode[IgnoreIssueRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.exceptions.Ignore(ctx, issueID, req.Message); err != nil {
		h.logger.ErrorContext(ctx, "issue ignore failed", "issue_id", issueID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{Status: string(models.StatusIgnored)})
}

// HandleActivateIssue handles POST /issues/{id}/activate requests.
func (h *Handler) HandleActivateIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	issueID, err := issueIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.exceptions.Reactivate(ctx, issueID); err != nil {
		h.logger.ErrorContext(ctx, "issue reactivation failed", "issue_id", issueID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{Status: string(models.StatusActive)})
}

// HandleReport handles GET /report requests.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jur := domain.JurisdictionID(r.URL.Query().Get("jurisdiction"))
	if jur.IsEmpty() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "jurisdiction query parameter is required"))
		return
	}
	rep, err := h.reports.CountsByJurisdiction(ctx, jur)
	if err != nil {
		h.logger.ErrorContext(ctx, "report failed", "jurisdiction", jur, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rep)
}

// HandleListPatches handles GET /patches requests.
func (h *Handler) HandleListPatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := ports.PatchQuery{
		Jurisdiction: domain.JurisdictionID(r.URL.Query().Get("jurisdiction")),
		Status:       models.PatchStatus(r.URL.Query().Get("status")),
	}
	if raw := r.URL.Query().Get("category"); raw != "" {
		category, err := models.ParsePatchCategory(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		q.Category = category
	}
	if q.Status != "" && !q.Status.IsValid() {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "invalid patch status %q", q.Status))
		return
	}

	patches, err := h.submissions.List(ctx, q)
	if err != nil {
		h.logger.ErrorContext(ctx, "patch listing failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPatches(patches))
}

// HandleSubmitPatch handles POST /patches requests.
func (h *Handler) HandleSubmitPatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.Decode[SubmitPatchRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	patch, err := h.submissions.Submit(ctx, req.ToServiceRequest())
	if err != nil {
		h.logger.ErrorContext(ctx, "patch submission failed", "person_id", req.PersonID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "patch submitted", "patch_id", patch.ID, "category", patch.Category)
	httputil.WriteJSON(w, http.StatusCreated, FromPatch(patch))
}

// HandleReviewPatch handles POST /patches/{id}/review requests.
func (h *Handler) HandleReviewPatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patchID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid patch id"))
		return
	}
	req, err := httputil.Decode[ReviewPatchRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.submissions.Review(ctx, patchID, req.Approve, req.Reviewer); err != nil {
		h.logger.ErrorContext(ctx, "patch review failed", "patch_id", patchID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	status := models.PatchRejected
	if req.Approve {
		status = models.PatchApproved
	}
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{Status: string(status)})
}

func issueIDFromPath(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid issue id")
	}
	return id, nil
}

func issueQueryFromRequest(r *http.Request) (ports.IssueQuery, error) {
	values := r.URL.Query()
	q := ports.IssueQuery{
		Jurisdiction: domain.JurisdictionID(values.Get("jurisdiction")),
		Slug:         values.Get("slug"),
	}
	if q.Jurisdiction.IsEmpty() {
		return q, dErrors.New(dErrors.CodeBadRequest, "jurisdiction query parameter is required")
	}
	if raw := values.Get("kind"); raw != "" {
		kind := domain.SubjectKind(raw)
		if !kind.IsValid() {
			return q, dErrors.Newf(dErrors.CodeBadRequest, "invalid subject kind %q", raw)
		}
		q.Kind = kind
	}
	if raw := values.Get("status"); raw != "" {
		status := models.IssueStatus(raw)
		if !status.IsValid() {
			return q, dErrors.Newf(dErrors.CodeBadRequest, "invalid issue status %q", raw)
		}
		q.Status = status
	}
	q.Limit = intQuery(values.Get("limit"), defaultPageSize)
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}
	q.Offset = intQuery(values.Get("offset"), 0)
	return q, nil
}

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

func intQuery(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
