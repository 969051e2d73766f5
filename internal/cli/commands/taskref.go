package commands

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/kutbudev/duedeck/internal/board"
	"github.com/kutbudev/duedeck/internal/lookup"
	"github.com/kutbudev/duedeck/internal/service"
	"github.com/kutbudev/duedeck/pkg/models"
)

// ErrTaskRefRequired is returned when a command needs a task and got none.
var ErrTaskRefRequired = lookup.ErrRefRequired

// resolveTask finds the task a user typed: a full id, an id prefix (as
// printed by `task list`) or a fuzzy title.
func resolveTask(ctx context.Context, b *board.Board, ref string) (*models.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrTaskRefRequired
	}
	if id, err := uuid.Parse(ref); err == nil {
		return b.Task(ctx, id)
	}
	tasks, err := b.Tasks(ctx, service.TaskFilter{})
	if err != nil {
		return nil, err
	}
	task, err := lookup.Task(tasks, ref)
	if err != nil {
		return nil, err
	}
	return &task, nil
}
