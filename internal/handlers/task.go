package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/schedulr/apiserver/internal/services"
	"github.com/schedulr/apiserver/internal/store"
	"github.com/schedulr/apiserver/types"
	"github.com/sirupsen/logrus"
)

const msgTaskNotFound = "Task not found or unauthorized"

var errInvalidDueDate = &services.ValidationError{Message: "Invalid due date"}

// dueDateLayouts are tried in order when parsing a client due date.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04",
	time.DateOnly,
}

// TaskHandler provides HTTP handlers for tasks. Every route is mounted
// behind RequireAuth.
type TaskHandler struct {
	taskService *services.TaskService
	logger      *logrus.Logger
}

// NewTaskHandler constructs a handler with the provided service.
func NewTaskHandler(taskService *services.TaskService, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// TaskRouter registers task routes on the given router.
func TaskRouter(
	r chi.Router,
	taskService *services.TaskService,
	authMiddleware func(http.Handler) http.Handler,
	logger *logrus.Logger,
) {
	handler := NewTaskHandler(taskService, logger)

	r.Use(authMiddleware)
	r.Get("/", handler.ListTasks)
	r.Post("/", handler.CreateTask)
	r.Route("/{taskID}", func(r chi.Router) {
		r.Put("/", handler.UpdateTask)
		r.Delete("/", handler.DeleteTask)
	})
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	tasks, err := h.taskService.List(r.Context(), userID)
	if err != nil {
		h.internalError(w, err, "fetching tasks")
		return
	}
	if tasks == nil {
		tasks = []types.Task{}
	}

	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Task text is required")
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		h.writeTaskError(w, err, "creating task")
		return
	}

	task, err := h.taskService.Create(r.Context(), userID, services.NewTask{
		Text:     req.Text,
		DueDate:  dueDate,
		Priority: req.Priority,
	})
	if err != nil {
		h.writeTaskError(w, err, "creating task")
		return
	}

	h.logger.WithFields(logrus.Fields{"task_id": task.ID, "user_id": userID}).Info("task created")
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	// An empty body omits every field.
	var req UpdateTaskRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		h.writeTaskError(w, err, "updating task")
		return
	}

	task, err := h.taskService.Update(r.Context(), chi.URLParam(r, "taskID"), userID, patch)
	if err != nil {
		h.writeTaskError(w, err, "updating task")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	taskID := chi.URLParam(r, "taskID")
	if err := h.taskService.Delete(r.Context(), taskID, userID); err != nil {
		h.writeTaskError(w, err, "deleting task")
		return
	}

	h.logger.WithFields(logrus.Fields{"task_id": taskID, "user_id": userID}).Info("task deleted")
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Text     string          `json:"text"`
	DueDate  json.RawMessage `json:"dueDate"`
	Priority string          `json:"priority"`
}

// UpdateTaskRequest is the body of PUT /api/tasks/{taskID}. Completed is
// kept raw so that only JSON booleans take effect.
type UpdateTaskRequest struct {
	Text      *string         `json:"text"`
	Completed json.RawMessage `json:"completed"`
	DueDate   json.RawMessage `json:"dueDate"`
	Priority  *string         `json:"priority"`
}

func (req UpdateTaskRequest) toPatch() (types.TaskPatch, error) {
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return types.TaskPatch{}, err
	}

	patch := types.TaskPatch{
		Text:      req.Text,
		Completed: strictBool(req.Completed),
		DueDate:   dueDate,
	}
	if req.Priority != nil {
		priority := types.Priority(*req.Priority)
		patch.Priority = &priority
	}
	return patch, nil
}

// strictBool returns the value of a JSON boolean literal and nil for any
// other JSON value, including strings such as "true".
func strictBool(raw json.RawMessage) *bool {
	var value bool
	switch string(bytes.TrimSpace(raw)) {
	case "true":
		value = true
	case "false":
		value = false
	default:
		return nil
	}
	return &value
}

// parseDueDate accepts a date string in one of dueDateLayouts or a number of
// Unix milliseconds. Missing, null and blank values mean "no due date".
func parseDueDate(raw json.RawMessage) (*time.Time, error) {
	value := bytes.TrimSpace(raw)
	if len(value) == 0 || string(value) == "null" {
		return nil, nil
	}

	switch value[0] {
	case '"':
		var text string
		if err := json.Unmarshal(value, &text); err != nil {
			return nil, errInvalidDueDate
		}
		return parseDueDateString(text)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var millis float64
		if err := json.Unmarshal(value, &millis); err != nil {
			return nil, errInvalidDueDate
		}
		parsed := time.UnixMilli(int64(millis)).UTC()
		return &parsed, nil
	default:
		return nil, errInvalidDueDate
	}
}

func parseDueDateString(raw string) (*time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			parsed = parsed.UTC()
			return &parsed, nil
		}
	}
	return nil, errInvalidDueDate
}

func (h *TaskHandler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "No token, authorization denied")
		return "", false
	}
	return userID, true
}

func (h *TaskHandler) writeTaskError(w http.ResponseWriter, err error, operation string) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, msgTaskNotFound)
	default:
		h.internalError(w, err, operation)
	}
}

func (h *TaskHandler) internalError(w http.ResponseWriter, err error, operation string) {
	h.logger.WithError(err).Errorf("error %s", operation)
	writeError(w, http.StatusInternalServerError, "Server error "+operation)
}
