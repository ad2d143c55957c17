package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dvloznov/finance-copilot/internal/api/middleware"
	"github.com/dvloznov/finance-copilot/internal/dispatch"
	"github.com/dvloznov/finance-copilot/internal/intent"
	"github.com/dvloznov/finance-copilot/internal/jobs"
	"github.com/dvloznov/finance-copilot/internal/jobs/inmemory"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// NoticeSource lists recent user notices.
type NoticeSource interface {
	Notices() []dispatch.Notice
}

// ReportsHandler starts report jobs and exposes their status and notices.
type ReportsHandler struct {
	dispatcher Dispatcher
	store      jobs.JobStore
	notices    NoticeSource
	log        zerolog.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(dispatcher Dispatcher, store jobs.JobStore, notices NoticeSource, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{dispatcher: dispatcher, store: store, notices: notices, log: log}
}

// Routes registers report, job and notice endpoints on r.
func (h *ReportsHandler) Routes(r chi.Router) {
	r.Post("/reports", h.CreateReport)
	r.Get("/jobs", h.ListJobs)
	r.Get("/jobs/{id}", h.GetJob)
	r.Get("/notices", h.ListNotices)
}

// CreateReport handles POST /api/reports
func (h *ReportsHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Type = strings.TrimSpace(req.Type)
	if req.Type == "" {
		req.Type = "Summary"
	}

	outcome, err := h.dispatcher.Dispatch(r.Context(), intent.Intent{Kind: intent.KindReport, ReportType: req.Type})
	if err != nil {
		h.log.Error().Err(err).Str("report_type", req.Type).Msg("Failed to start report")
		middleware.WriteError(w, http.StatusServiceUnavailable, "Failed to start report generation")
		return
	}
	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{"job_id": outcome.JobID})
}

// GetJob handles GET /api/jobs/{id}
func (h *ReportsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	job, err := h.store.GetJob(r.Context(), jobID)
	if errors.Is(err, inmemory.ErrJobNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *ReportsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		ReportType: query.Get("report_type"),
		Status:     jobs.JobStatus(query.Get("status")),
	}

	var ok bool
	if filter.Limit, ok = queryInt(r, "limit"); !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	if filter.Offset, ok = queryInt(r, "offset"); !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid offset")
		return
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}
	if jobsList == nil {
		jobsList = []*jobs.ReportJob{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

// ListNotices handles GET /api/notices
func (h *ReportsHandler) ListNotices(w http.ResponseWriter, r *http.Request) {
	notices := h.notices.Notices()
	if notices == nil {
		notices = []dispatch.Notice{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"notices": notices})
}
