package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apierrors "github.com/kutbudev/duedeck/internal/errors"
	"github.com/kutbudev/duedeck/internal/service"
	"github.com/kutbudev/duedeck/pkg/due"
	"github.com/kutbudev/duedeck/pkg/models"
)

var _ service.Store = (*Database)(nil)

func preloadTags(db *gorm.DB) *gorm.DB {
	return db.Order("tags.name ASC")
}

// ListTasks returns tasks filtered by list and due bucket, incomplete first.
func (d *Database) ListTasks(ctx context.Context, filter service.TaskFilter) ([]models.Task, error) {
	q := d.DB.WithContext(ctx).Model(&models.Task{}).Preload("Tags", preloadTags)

	if filter.List != "" {
		if id, err := uuid.Parse(filter.List); err == nil {
			q = q.Where("list_id = ?", id)
		} else {
			sub := d.DB.WithContext(ctx).Model(&models.List{}).Select("id").Where("name = ?", filter.List)
			q = q.Where("list_id IN (?)", sub)
		}
	}

	if filter.Due != "" {
		from, to := due.Window(filter.Due, d.clock())
		if !from.IsZero() {
			q = q.Where("due_date >= ?", from.UTC())
		}
		if !to.IsZero() {
			q = q.Where("due_date < ?", to.UTC())
		}
	}

	var tasks []models.Task
	if err := q.Order("completed ASC, due_date ASC, created_at ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %w", err)
	}
	return tasks, nil
}

// GroupTasks classifies every task relative to the current time.
func (d *Database) GroupTasks(ctx context.Context) (due.Groups[models.Task], error) {
	tasks, err := d.ListTasks(ctx, service.TaskFilter{})
	if err != nil {
		return due.Groups[models.Task]{}, err
	}
	return due.Classify(tasks, d.clock()), nil
}

// GetTask retrieves a task by ID with its tags and list
func (d *Database) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return getTask(d.DB.WithContext(ctx), id)
}

func getTask(tx *gorm.DB, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := tx.Preload("Tags", preloadTags).Preload("List").First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("task %s: %w", id, apierrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}
	return &task, nil
}

// CreateTask creates a new task in an existing list.
func (d *Database) CreateTask(ctx context.Context, in service.TaskInput) (*models.Task, error) {
	in = in.Normalized()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var created *models.Task
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireList(tx, in.ListID); err != nil {
			return err
		}
		tags, err := findTags(tx, in.TagIDs)
		if err != nil {
			return err
		}

		task := models.Task{
			Title:       in.Title,
			Description: in.Description,
			Completed:   in.Completed,
			DueDate:     in.DueDate.UTC(),
			Priority:    in.Priority,
			ListID:      in.ListID,
			Tags:        tags,
		}
		// Tags already exist; only the join rows are written.
		if err := tx.Omit("Tags.*").Create(&task).Error; err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		created, err = getTask(tx, task.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateTaskStatus sets the completed flag of a task.
func (d *Database) UpdateTaskStatus(ctx context.Context, id uuid.UUID, completed bool) (*models.Task, error) {
	res := d.DB.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Update("completed", completed)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update task status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("task %s: %w", id, apierrors.ErrNotFound)
	}
	return d.GetTask(ctx, id)
}

// UpdateTaskProperties rewrites the editable fields and replaces the tag set.
func (d *Database) UpdateTaskProperties(ctx context.Context, id uuid.UUID, in service.TaskInput) (*models.Task, error) {
	in = in.Normalized()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var updated *models.Task
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := getTask(tx, id)
		if err != nil {
			return err
		}
		if err := requireList(tx, in.ListID); err != nil {
			return err
		}
		tags, err := findTags(tx, in.TagIDs)
		if err != nil {
			return err
		}

		changes := models.Task{
			Title:       in.Title,
			Description: in.Description,
			DueDate:     in.DueDate.UTC(),
			Priority:    in.Priority,
			ListID:      in.ListID,
		}
		err = tx.Model(&models.Task{ID: task.ID}).
			Select("title", "description", "due_date", "priority", "list_id", "updated_at").
			Updates(&changes).Error
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		assoc := tx.Model(&models.Task{ID: task.ID}).Association("Tags")
		if len(tags) == 0 {
			err = assoc.Clear()
		} else {
			err = assoc.Replace(tags)
		}
		if err != nil {
			return fmt.Errorf("failed to update task tags: %w", err)
		}

		updated, err = getTask(tx, task.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTask deletes a task and its tag links.
func (d *Database) DeleteTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var deleted *models.Task
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := getTask(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Task{ID: task.ID}).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("failed to detach tags: %w", err)
		}
		if err := tx.Delete(&models.Task{}, "id = ?", task.ID).Error; err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		deleted = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func requireList(tx *gorm.DB, id uuid.UUID) error {
	var count int64
	if err := tx.Model(&models.List{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up list: %w", err)
	}
	if count == 0 {
		return apierrors.NewValidationError("list_id", "does not reference an existing list")
	}
	return nil
}

func findTags(tx *gorm.DB, ids []uuid.UUID) ([]models.Tag, error) {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return nil, nil
	}

	var tags []models.Tag
	if err := tx.Where("id IN ?", unique).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to look up tags: %w", err)
	}
	if len(tags) != len(unique) {
		return nil, apierrors.NewValidationError("tag_ids", "contains a tag that does not exist")
	}
	return tags, nil
}
