package service

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	apierrors "github.com/kutbudev/duedeck/internal/errors"
	"github.com/kutbudev/duedeck/pkg/due"
	"github.com/kutbudev/duedeck/pkg/models"
)

// TaskFilter narrows ListTasks. Zero values mean "no filter".
type TaskFilter struct {
	// List is a list id, or a list name when it does not parse as a UUID.
	List string
	Due  due.Kind
}

// Key identifies the filter in the query cache. Every task key lives under
// TasksKey.
func (f TaskFilter) Key() string {
	return TasksKey + "/list=" + f.List + "&due=" + string(f.Due)
}

// Query encodes the filter as URL query parameters.
func (f TaskFilter) Query() url.Values {
	q := url.Values{}
	if f.List != "" {
		q.Set("list", f.List)
	}
	if f.Due != "" {
		q.Set("due", string(f.Due))
	}
	return q
}

// Cache key roots.
const (
	TasksKey = "tasks"
	ListsKey = "lists"
	TagsKey  = "tags"
)

// TaskInput carries the user-editable task fields for create and update.
type TaskInput struct {
	Title       string
	Description *string
	Completed   bool
	DueDate     time.Time
	Priority    models.Priority
	ListID      uuid.UUID
	TagIDs      []uuid.UUID
}

// Validate rejects input that must never reach the store.
func (in TaskInput) Validate() error {
	v := &apierrors.ValidationError{}
	if strings.TrimSpace(in.Title) == "" {
		v.Add("title", "is required")
	}
	if in.DueDate.IsZero() {
		v.Add("due_date", "is required")
	}
	if in.ListID == uuid.Nil {
		v.Add("list_id", "is required")
	}
	if in.Priority != "" && !in.Priority.Valid() {
		v.Add("priority", "must be one of low medium high urgent")
	}
	return v.OrNil()
}

// Normalized fills defaults: trimmed title, low priority.
func (in TaskInput) Normalized() TaskInput {
	in.Title = strings.TrimSpace(in.Title)
	if in.Priority == "" {
		in.Priority = models.PriorityLow
	}
	return in
}

// ListInput creates a list.
type ListInput struct {
	Name  string
	Color string
}

func (in ListInput) Validate() error {
	v := &apierrors.ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		v.Add("name", "is required")
	}
	if !models.ValidColor(in.Color) {
		v.Add("color", "must be a hex color like #1e90ff")
	}
	return v.OrNil()
}

// ValidateListName checks a rename.
func ValidateListName(name string) error {
	if len([]rune(strings.TrimSpace(name))) < models.MinListNameLength {
		return apierrors.NewValidationError("name", "must be at least 3 characters")
	}
	return nil
}

// TagInput creates a tag.
type TagInput struct {
	Name  string
	Color string
}

func (in TagInput) Validate() error {
	v := &apierrors.ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		v.Add("name", "is required")
	}
	if !models.ValidColor(in.Color) {
		v.Add("color", "must be a hex color like #1e90ff")
	}
	return v.OrNil()
}
