// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	apierrors "github.com/kutbudev/duedeck/internal/errors"
	"github.com/kutbudev/duedeck/internal/service"
	"github.com/kutbudev/duedeck/pkg/due"
	"github.com/kutbudev/duedeck/pkg/models"
)

// FakeStore is an in-memory implementation of service.Store for testing.
type FakeStore struct {
	mu      sync.RWMutex
	tasks   map[uuid.UUID]models.Task
	lists   []models.List
	tags    []models.Tag
	created int

	// Now is the clock used for due-date filters.
	Now func() time.Time

	// Error injection for testing
	ListTasksErr        error
	GetTaskErr          error
	CreateTaskErr       error
	UpdateTaskStatusErr error
	UpdateTaskErr       error
	DeleteTaskErr       error
	ListListsErr        error
	CreateListErr       error
	UpdateListErr       error
	DeleteListErr       error
	ListTagsErr         error
	CreateTagErr        error
	DeleteTagErr        error

	// StatusHook runs before UpdateTaskStatus applies. A non-nil error fails
	// the call. Tests block in it to observe state before confirmation.
	StatusHook func(ctx context.Context, id uuid.UUID, completed bool) error

	// ListTasksCalls counts ListTasks invocations.
	ListTasksCalls atomic.Int32
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		tasks: make(map[uuid.UUID]models.Task),
		Now:   time.Now,
	}
}

// AddList adds a list to the fake store.
func (f *FakeStore) AddList(name string) models.List {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := models.List{ID: uuid.New(), Name: name, Color: "#1e90ff", CreatedAt: f.tick()}
	f.lists = append(f.lists, list)
	return list
}

// AddTag adds a tag to the fake store.
func (f *FakeStore) AddTag(name string) models.Tag {
	f.mu.Lock()
	defer f.mu.Unlock()
	tag := models.Tag{ID: uuid.New(), Name: name, Color: "#ff0000", CreatedAt: f.tick()}
	f.tags = append(f.tags, tag)
	return tag
}

// AddTask adds an incomplete task due at dueAt to a list.
func (f *FakeStore) AddTask(listID uuid.UUID, title string, dueAt time.Time) models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.tick()
	task := models.Task{
		ID:        uuid.New(),
		Title:     title,
		DueDate:   dueAt,
		Priority:  models.PriorityLow,
		ListID:    listID,
		Tags:      []models.Tag{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.tasks[task.ID] = task
	return task
}

// Task returns the stored copy of a task.
func (f *FakeStore) Task(id uuid.UUID) (models.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	task, ok := f.tasks[id]
	return task, ok
}

// tick returns strictly increasing creation times. f.mu must be held.
func (f *FakeStore) tick() time.Time {
	f.created++
	return time.Date(2024, 1, 1, 0, 0, f.created, 0, time.UTC)
}

func (f *FakeStore) listMatches(task models.Task, filter string) bool {
	if filter == "" {
		return true
	}
	if id, err := uuid.Parse(filter); err == nil {
		return task.ListID == id
	}
	for _, l := range f.lists {
		if l.ID == task.ListID {
			return l.Name == filter
		}
	}
	return false
}

// ListTasks implements service.Store.
func (f *FakeStore) ListTasks(ctx context.Context, filter service.TaskFilter) ([]models.Task, error) {
	f.ListTasksCalls.Add(1)
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	now := f.Now()
	result := []models.Task{}
	for _, task := range f.tasks {
		if !f.listMatches(task, filter.List) {
			continue
		}
		if filter.Due != "" && due.Bucket(task.DueDate, now) != filter.Due {
			continue
		}
		result = append(result, cloneTask(task))
	}
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return result, nil
}

// GroupTasks implements service.Store.
func (f *FakeStore) GroupTasks(ctx context.Context) (due.Groups[models.Task], error) {
	tasks, err := f.ListTasks(ctx, service.TaskFilter{})
	if err != nil {
		return due.Groups[models.Task]{}, err
	}
	return due.Classify(tasks, f.Now()), nil
}

// GetTask implements service.Store.
func (f *FakeStore) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	if f.GetTaskErr != nil {
		return nil, f.GetTaskErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	task, ok := f.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, apierrors.ErrNotFound)
	}
	task = cloneTask(task)
	return &task, nil
}

// CreateTask implements service.Store.
func (f *FakeStore) CreateTask(ctx context.Context, in service.TaskInput) (*models.Task, error) {
	if f.CreateTaskErr != nil {
		return nil, f.CreateTaskErr
	}
	in = in.Normalized()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.hasList(in.ListID) {
		return nil, apierrors.NewValidationError("list_id", "does not reference an existing list")
	}
	tags, err := f.findTags(in.TagIDs)
	if err != nil {
		return nil, err
	}
	now := f.tick()
	task := models.Task{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		ListID:      in.ListID,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.tasks[task.ID] = task
	task = cloneTask(task)
	return &task, nil
}

// UpdateTaskStatus implements service.Store.
func (f *FakeStore) UpdateTaskStatus(ctx context.Context, id uuid.UUID, completed bool) (*models.Task, error) {
	if f.StatusHook != nil {
		if err := f.StatusHook(ctx, id, completed); err != nil {
			return nil, err
		}
	}
	if f.UpdateTaskStatusErr != nil {
		return nil, f.UpdateTaskStatusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, apierrors.ErrNotFound)
	}
	task.Completed = completed
	f.tasks[id] = task
	task = cloneTask(task)
	return &task, nil
}

// UpdateTaskProperties implements service.Store.
func (f *FakeStore) UpdateTaskProperties(ctx context.Context, id uuid.UUID, in service.TaskInput) (*models.Task, error) {
	if f.UpdateTaskErr != nil {
		return nil, f.UpdateTaskErr
	}
	in = in.Normalized()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, apierrors.ErrNotFound)
	}
	if !f.hasList(in.ListID) {
		return nil, apierrors.NewValidationError("list_id", "does not reference an existing list")
	}
	tags, err := f.findTags(in.TagIDs)
	if err != nil {
		return nil, err
	}
	task.Title = in.Title
	task.Description = in.Description
	task.DueDate = in.DueDate
	task.Priority = in.Priority
	task.ListID = in.ListID
	task.Tags = tags
	f.tasks[id] = task
	task = cloneTask(task)
	return &task, nil
}

// DeleteTask implements service.Store.
func (f *FakeStore) DeleteTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	if f.DeleteTaskErr != nil {
		return nil, f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, apierrors.ErrNotFound)
	}
	delete(f.tasks, id)
	return &task, nil
}

// ListLists implements service.Store.
func (f *FakeStore) ListLists(ctx context.Context) ([]models.List, error) {
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]models.List{}, f.lists...), nil
}

// CreateList implements service.Store.
func (f *FakeStore) CreateList(ctx context.Context, in service.ListInput) (*models.List, error) {
	if f.CreateListErr != nil {
		return nil, f.CreateListErr
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	list := models.List{ID: uuid.New(), Name: strings.TrimSpace(in.Name), Color: in.Color, CreatedAt: f.tick()}
	f.lists = append(f.lists, list)
	return &list, nil
}

// UpdateList implements service.Store.
func (f *FakeStore) UpdateList(ctx context.Context, id uuid.UUID, name string) (*models.List, error) {
	if f.UpdateListErr != nil {
		return nil, f.UpdateListErr
	}
	if err := service.ValidateListName(name); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.lists {
		if f.lists[i].ID == id {
			f.lists[i].Name = strings.TrimSpace(name)
			list := f.lists[i]
			return &list, nil
		}
	}
	return nil, fmt.Errorf("list %s: %w", id, apierrors.ErrNotFound)
}

// DeleteList implements service.Store.
func (f *FakeStore) DeleteList(ctx context.Context, id uuid.UUID) (*models.List, error) {
	if f.DeleteListErr != nil {
		return nil, f.DeleteListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := slices.IndexFunc(f.lists, func(l models.List) bool { return l.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("list %s: %w", id, apierrors.ErrNotFound)
	}
	for _, task := range f.tasks {
		if task.ListID == id {
			return nil, fmt.Errorf("list %q still has tasks: %w", f.lists[i].Name, apierrors.ErrConflict)
		}
	}
	list := f.lists[i]
	f.lists = slices.Delete(f.lists, i, i+1)
	return &list, nil
}

// ListTags implements service.Store.
func (f *FakeStore) ListTags(ctx context.Context) ([]models.Tag, error) {
	if f.ListTagsErr != nil {
		return nil, f.ListTagsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	tags := append([]models.Tag{}, f.tags...)
	sort.SliceStable(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// CreateTag implements service.Store.
func (f *FakeStore) CreateTag(ctx context.Context, in service.TagInput) (*models.Tag, error) {
	if f.CreateTagErr != nil {
		return nil, f.CreateTagErr
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tag := models.Tag{ID: uuid.New(), Name: strings.TrimSpace(in.Name), Color: in.Color, CreatedAt: f.tick()}
	f.tags = append(f.tags, tag)
	return &tag, nil
}

// DeleteTag implements service.Store.
func (f *FakeStore) DeleteTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	if f.DeleteTagErr != nil {
		return nil, f.DeleteTagErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := slices.IndexFunc(f.tags, func(t models.Tag) bool { return t.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("tag %s: %w", id, apierrors.ErrNotFound)
	}
	tag := f.tags[i]
	f.tags = slices.Delete(f.tags, i, i+1)
	for tid, task := range f.tasks {
		task.Tags = slices.DeleteFunc(slices.Clone(task.Tags), func(t models.Tag) bool { return t.ID == id })
		f.tasks[tid] = task
	}
	return &tag, nil
}

func (f *FakeStore) hasList(id uuid.UUID) bool {
	return slices.ContainsFunc(f.lists, func(l models.List) bool { return l.ID == id })
}

func (f *FakeStore) findTags(ids []uuid.UUID) ([]models.Tag, error) {
	tags := []models.Tag{}
	for _, id := range ids {
		i := slices.IndexFunc(f.tags, func(t models.Tag) bool { return t.ID == id })
		if i < 0 {
			return nil, apierrors.NewValidationError("tag_ids", "contains a tag that does not exist")
		}
		if !slices.ContainsFunc(tags, func(t models.Tag) bool { return t.ID == id }) {
			tags = append(tags, f.tags[i])
		}
	}
	return tags, nil
}

func cloneTask(t models.Task) models.Task {
	t.Tags = append([]models.Tag{}, t.Tags...)
	return t
}

var _ service.Store = (*FakeStore)(nil)
