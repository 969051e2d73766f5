// Package service defines the backend-agnostic interface for task, list and
// tag operations. The repository implements it against the database and the
// API client implements it over HTTP, so the board and the handlers never
// care which one they hold.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/kutbudev/duedeck/pkg/due"
	"github.com/kutbudev/duedeck/pkg/models"
)

// Store defines the data operations over tasks, lists and tags.
type Store interface {
	// ListTasks returns tasks matching filter, incomplete first, then by due
	// date. Tags are always populated.
	ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	// GroupTasks classifies every task into today, overdue and upcoming.
	GroupTasks(ctx context.Context) (due.Groups[models.Task], error)

	// GetTask returns apierrors.ErrNotFound when the task does not exist.
	GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error)

	CreateTask(ctx context.Context, in TaskInput) (*models.Task, error)

	// UpdateTaskStatus sets only the completed flag.
	UpdateTaskStatus(ctx context.Context, id uuid.UUID, completed bool) (*models.Task, error)

	// UpdateTaskProperties replaces title, description, list, priority, due
	// date and the full tag set.
	UpdateTaskProperties(ctx context.Context, id uuid.UUID, in TaskInput) (*models.Task, error)

	// DeleteTask removes the task permanently and returns what was removed.
	DeleteTask(ctx context.Context, id uuid.UUID) (*models.Task, error)

	ListLists(ctx context.Context) ([]models.List, error)
	CreateList(ctx context.Context, in ListInput) (*models.List, error)

	// UpdateList renames a list. The new name must be at least
	// models.MinListNameLength characters.
	UpdateList(ctx context.Context, id uuid.UUID, name string) (*models.List, error)

	// DeleteList fails with apierrors.ErrConflict while tasks still
	// reference the list.
	DeleteList(ctx context.Context, id uuid.UUID) (*models.List, error)

	ListTags(ctx context.Context) ([]models.Tag, error)
	CreateTag(ctx context.Context, in TagInput) (*models.Tag, error)

	// DeleteTag detaches the tag from every task before removing it.
	DeleteTag(ctx context.Context, id uuid.UUID) (*models.Tag, error)
}
