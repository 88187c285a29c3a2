package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/nemanja-m/scatter/internal/coordinator/core"
	"github.com/nemanja-m/scatter/internal/shared/config"
	"github.com/nemanja-m/scatter/internal/shared/logging"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type API struct {
	runs    core.RunService
	workers core.WorkerService
	logger  logging.Logger
}

func NewAPI(runs core.RunService, workers core.WorkerService, logger logging.Logger) *API {
	return &API{
		runs:    runs,
		workers: workers,
		logger:  logger,
	}
}

func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/runs", a.listRuns)
	mux.HandleFunc("GET /api/runs/{id}", a.getRun)
	mux.HandleFunc("GET /api/workers", a.getWorkers)
}

// getRun handles GET /api/runs/{id}
func (a *API) getRun(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid run ID", err.Error())
		return
	}

	run, err := a.runs.GetRun(runID)
	if err != nil {
		if errors.Is(err, core.ErrRunNotFound) {
			a.respondError(w, http.StatusNotFound, "run not found", "")
			return
		}
		a.logger.Error("Failed to get run", "run_id", runID, "error", err)
		a.respondError(w, http.StatusInternalServerError, "failed to get run", "")
		return
	}

	a.respondJSON(w, http.StatusOK, ToGetRunResponse(run))
}

// listRuns handles GET /api/runs with filters and pagination
func (a *API) listRuns(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := core.RunFilter{
		Limit: defaultLimit,
	}

	if statusStr := query.Get("status"); statusStr != "" {
		status := core.RunStatus(strings.ToUpper(statusStr))
		if !isValidStatus(status) {
			a.respondError(w, http.StatusBadRequest, "invalid status", statusStr)
			return
		}
		filter.Status = &status
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			filter.Limit = min(l, maxLimit)
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	runs, total, err := a.runs.GetRuns(filter)
	if err != nil {
		a.logger.Error("Failed to list runs", "error", err)
		a.respondError(w, http.StatusInternalServerError, "failed to list runs", "")
		return
	}

	summaries := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, ToRunSummary(run))
	}

	var nextOffset *int
	if end := filter.Offset + len(runs); end < total {
		nextOffset = &end
	}

	a.respondJSON(w, http.StatusOK, ListRunsResponse{
		Runs:       summaries,
		Total:      total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
		NextOffset: nextOffset,
	})
}

// getWorkers handles GET /api/workers
func (a *API) getWorkers(w http.ResponseWriter, r *http.Request) {
	connected := slices.Clone(a.workers.ConnectedWorkers())
	if connected == nil {
		connected = []int{}
	}
	slices.Sort(connected)

	a.respondJSON(w, http.StatusOK, WorkersResponse{
		Expected:  a.workers.ExpectedWorkers(),
		Connected: connected,
	})
}

func isValidStatus(status core.RunStatus) bool {
	switch status {
	case core.RunStatusPending,
		core.RunStatusRunning,
		core.RunStatusCompleted,
		core.RunStatusFailed,
		core.RunStatusDefective:
		return true
	}
	return false
}

func (a *API) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.logger.Warn("Failed to encode response", "error", err)
	}
}

func (a *API) respondError(w http.ResponseWriter, statusCode int, error string, message string) {
	resp := ErrorResponse{
		Error:   error,
		Message: message,
		Code:    statusCode,
	}
	a.respondJSON(w, statusCode, resp)
}

func NewServer(cfg config.RESTConfig, runs core.RunService, workers core.WorkerService, logger logging.Logger) *http.Server {
	api := NewAPI(runs, workers, logger)
	mux := http.NewServeMux()
	api.RegisterRoutes(mux)

	handler := ChainMiddleware(
		mux,
		RecoveryMiddleware(logger),
		RequestIDMiddleware,
		LoggingMiddleware(logger),
	)

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
