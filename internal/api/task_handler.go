package api

import (
	"log/slog"
	"net/http"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/api/shared"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/logger"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/service"
	"github.com/go-chi/chi/v5"
)

// TaskIDParam is the chi route parameter naming the task.
const TaskIDParam = "taskId"

// TaskHandler handles the task endpoints.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With("component", "task_handler"),
	}
}

// CreateTask handles POST /task.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	// Already checked by the isodate rule.
	performedAt, _ := shared.ParseTimestamp(req.PerformedAt)

	view, err := h.tasks.CreateTask(r.Context(), principal, service.CreateTaskInput{
		PerformedAt: performedAt,
		Summary:     req.Summary,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, view)
}

// UpdateTask handles PATCH /task/{taskId}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	taskID, err := getPathID(r, TaskIDParam)
	if err != nil {
		log.Debug("invalid task id", "value", chi.URLParam(r, TaskIDParam))
		shared.RespondWithError(w, r, http.StatusNotFound, msgTaskNotFound)
		return
	}

	var in service.UpdateTaskInput
	if req.PerformedAt != "" {
		t, _ := shared.ParseTimestamp(req.PerformedAt)
		in.PerformedAt = &t
	}
	if req.Summary != "" {
		in.Summary = &req.Summary
	}

	outcome, err := h.tasks.UpdateTask(r.Context(), principal, taskID, in)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if outcome.NoChange {
		shared.RespondWithMessage(w, r, http.StatusOK, "No change.")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, UpdateTaskResponse{
		Message:      "Task updated.",
		UpdatedCount: &outcome.Updated,
	})
}

// DeleteTask handles DELETE /task/{taskId}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	taskID, err := getPathID(r, TaskIDParam)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, msgTaskNotFound)
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), principal, taskID); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "Task deleted.")
}

// ListTasks handles GET /task/all.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	views, err := h.tasks.ListTasks(r.Context(), principal)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, views)
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		logger.FromContext(r.Context()).Error("failed to write health check response", "error", err)
	}
}
