package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"pdf-toolbox/internal/domain"
)

// JobHandler reports on background operations.
type JobHandler struct {
	jobs      JobRunner
	workspace *Workspace
	logger    domain.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobs JobRunner, workspace *Workspace, logger domain.Logger) *JobHandler {
	return &JobHandler{
		jobs:      jobs,
		workspace: workspace,
		logger:    logger,
	}
}

func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	job, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.logger.Error("Failed to get job", err, "job_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}
	writeJSON(w, http.StatusOK, h.workspace.RelJob(job))
}

func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	jobs, err := h.jobs.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list jobs", err)
		writeError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	out := make([]*domain.Job, len(jobs))
	for i, job := range jobs {
		out[i] = h.workspace.RelJob(job)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": out, "count": len(out)})
}
