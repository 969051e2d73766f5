package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apierrors "github.com/kutbudev/duedeck/internal/errors"
	"github.com/kutbudev/duedeck/internal/service"
	"github.com/kutbudev/duedeck/pkg/due"
	"github.com/kutbudev/duedeck/pkg/models"
)

// TaskInput DTO for creating or updating a task
type TaskInput struct {
	Title       string      `json:"title" binding:"required"`
	Description *string     `json:"description"`
	Completed   bool        `json:"completed"`
	DueDate     time.Time   `json:"due_date" binding:"required"`
	Priority    string      `json:"priority"`
	ListID      uuid.UUID   `json:"list_id" binding:"required"`
	TagIDs      []uuid.UUID `json:"tag_ids"`
}

func (in TaskInput) toService() (service.TaskInput, error) {
	out := service.TaskInput{
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		DueDate:     in.DueDate,
		ListID:      in.ListID,
		TagIDs:      in.TagIDs,
	}
	if in.Priority != "" {
		p, err := models.ParsePriority(in.Priority)
		if err != nil {
			return out, apierrors.NewValidationError("priority", "must be one of low medium high urgent")
		}
		out.Priority = p
	}
	return out, nil
}

// SetTaskStatusInput DTO for updating a task's completed flag
type SetTaskStatusInput struct {
	Completed *bool `json:"completed" binding:"required"`
}

// ListTasks lists tasks, optionally filtered by ?list= and ?due=.
func (h *Handler) ListTasks(c *gin.Context) {
	filter := service.TaskFilter{List: c.Query("list")}
	if d := c.Query("due"); d != "" {
		kind, err := due.ParseKind(d)
		if err != nil {
			h.respondError(c, apierrors.NewValidationError("due", "must be one of Today Upcoming Overdue"))
			return
		}
		filter.Due = kind
	}

	tasks, err := h.store.ListTasks(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GroupTasks returns every task bucketed into today, overdue and upcoming.
func (h *Handler) GroupTasks(c *gin.Context) {
	groups, err := h.store.GroupTasks(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// CreateTask creates a new task.
func (h *Handler) CreateTask(c *gin.Context) {
	var input TaskInput
	if !h.bindJSON(c, &input) {
		return
	}
	in, err := input.toService()
	if err != nil {
		h.respondError(c, err)
		return
	}

	task, err := h.store.CreateTask(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// GetTask retrieves a single task by its ID.
func (h *Handler) GetTask(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}
	task, err := h.store.GetTask(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask replaces the editable fields of a task, tags included.
func (h *Handler) UpdateTask(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}
	var input TaskInput
	if !h.bindJSON(c, &input) {
		return
	}
	in, err := input.toService()
	if err != nil {
		h.respondError(c, err)
		return
	}

	task, err := h.store.UpdateTaskProperties(c.Request.Context(), id, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// SetTaskStatus updates only the completed flag of a task.
func (h *Handler) SetTaskStatus(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}
	var input SetTaskStatusInput
	if !h.bindJSON(c, &input) {
		return
	}

	task, err := h.store.UpdateTaskStatus(c.Request.Context(), id, *input.Completed)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask deletes a task permanently and returns it.
func (h *Handler) DeleteTask(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}
	task, err := h.store.DeleteTask(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
