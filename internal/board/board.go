// Package board is the client-side view of tasks, lists and tags. Reads go
// through query caches; completion toggles are applied optimistically and
// rolled back when the store refuses them.
package board

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kutbudev/duedeck/internal/querycache"
	"github.com/kutbudev/duedeck/internal/service"
	"github.com/kutbudev/duedeck/pkg/due"
	"github.com/kutbudev/duedeck/pkg/models"
)

// Board owns the caches in front of a service.Store.
type Board struct {
	store service.Store
	log   logrus.FieldLogger

	tasks *querycache.Cache[[]models.Task]
	lists *querycache.Cache[[]models.List]
	tags  *querycache.Cache[[]models.Tag]

	// Now is the clock Grouped classifies against.
	Now func() time.Time

	mu sync.Mutex
	// turns holds, per task, the channel closed when the latest toggle has
	// been dispatched and answered.
	turns   map[uuid.UUID]chan struct{}
	pending int
}

// New creates a board over store. log may be nil.
func New(store service.Store, log logrus.FieldLogger) *Board {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	log = log.WithField("component", "board")
	return &Board{
		store: store,
		log:   log,
		tasks: querycache.New[[]models.Task](log),
		lists: querycache.New[[]models.List](log),
		tags:  querycache.New[[]models.Tag](log),
		Now:   time.Now,
		turns: make(map[uuid.UUID]chan struct{}),
	}
}

// Store returns the store the board dispatches to.
func (b *Board) Store() service.Store {
	return b.store
}

// Tasks returns the tasks matching filter, from cache when fresh.
func (b *Board) Tasks(ctx context.Context, filter service.TaskFilter) ([]models.Task, error) {
	return b.tasks.Fetch(ctx, filter.Key(), func(ctx context.Context) ([]models.Task, error) {
		return b.store.ListTasks(ctx, filter)
	})
}

// Cached returns the cached tasks for filter without fetching.
func (b *Board) Cached(filter service.TaskFilter) ([]models.Task, bool) {
	return b.tasks.Read(filter.Key())
}

// Grouped reads all tasks and classifies them relative to Now.
func (b *Board) Grouped(ctx context.Context) (due.Groups[models.Task], error) {
	tasks, err := b.Tasks(ctx, service.TaskFilter{})
	if err != nil {
		return due.Groups[models.Task]{}, err
	}
	return due.Classify(tasks, b.Now()), nil
}

// Task reads a single task straight from the store.
func (b *Board) Task(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return b.store.GetTask(ctx, id)
}

// Lists returns all lists.
func (b *Board) Lists(ctx context.Context) ([]models.List, error) {
	return b.lists.Fetch(ctx, service.ListsKey, b.store.ListLists)
}

// Tags returns all tags.
func (b *Board) Tags(ctx context.Context) ([]models.Tag, error) {
	return b.tags.Fetch(ctx, service.TagsKey, b.store.ListTags)
}

type snapshot struct {
	key     string
	version uint64
	tasks   []models.Task
	// was is the task's completed flag before this toggle wrote.
	was bool
}

// ToggleCompleted marks a task completed or not. Every cached collection
// holding the task shows the new state before the store answers. If the
// store fails or ctx ends first, each collection this toggle wrote is put
// back exactly as it was. A collection rewritten since then keeps the newer
// writes and only gets this task's flag reverted, unless a later toggle of
// the same task has taken over.
//
// Every settled toggle marks the task caches stale. The background re-read
// waits until no toggle is outstanding so it cannot overwrite a pending
// optimistic value.
//
// Toggles of the same task reach the store in call order.
func (b *Board) ToggleCompleted(ctx context.Context, id uuid.UUID, completed bool) (*models.Task, error) {
	log := b.log.WithFields(logrus.Fields{"task": id, "completed": completed})

	b.mu.Lock()
	b.tasks.CancelPendingReads(service.TasksKey)

	var snaps []snapshot
	for _, key := range b.tasks.Keys(service.TasksKey) {
		prev, ok := b.tasks.Read(key)
		if !ok {
			continue
		}
		i := slices.IndexFunc(prev, func(t models.Task) bool { return t.ID == id })
		if i < 0 {
			continue
		}
		next := slices.Clone(prev)
		next[i] = next[i].WithCompleted(completed)
		snaps = append(snaps, snapshot{
			key:     key,
			version: b.tasks.Write(key, next),
			tasks:   prev,
			was:     prev[i].Completed,
		})
	}

	wait := b.turns[id]
	turn := make(chan struct{})
	b.turns[id] = turn
	b.pending++
	b.mu.Unlock()

	if wait != nil {
		select {
		case <-wait:
		case <-ctx.Done():
			// Later toggles of this task still queue behind the earlier one.
			go func() {
				<-wait
				b.release(id, turn)
			}()
			log.WithError(ctx.Err()).Debug("toggle abandoned before dispatch")
			b.settle(log, id, turn, completed, snaps, true)
			return nil, ctx.Err()
		}
	}
	task, err := b.store.UpdateTaskStatus(ctx, id, completed)
	b.release(id, turn)
	if err != nil {
		log.WithError(err).Warn("toggle failed, rolling back")
	}
	b.settle(log, id, turn, completed, snaps, err != nil)
	return task, err
}

// release lets the next toggle of id reach the store.
func (b *Board) release(id uuid.UUID, turn chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	close(turn)
	if b.turns[id] == turn {
		delete(b.turns, id)
	}
}

// settle ends one toggle, rolling back its writes when failed is set, and
// schedules the refresh.
func (b *Board) settle(log logrus.FieldLogger, id uuid.UUID, turn chan struct{}, completed bool, snaps []snapshot, failed bool) {
	b.mu.Lock()
	if failed {
		// A queued toggle of the same task owns the flag from here on.
		superseded := b.turns[id] != nil && b.turns[id] != turn
		for _, s := range snaps {
			if b.tasks.Restore(s.key, s.version, s.tasks) || superseded {
				continue
			}
			if b.tasks.Update(s.key, revert(id, completed, s.was)) {
				log.WithField("key", s.key).Debug("entry was rewritten, reverted the task only")
			}
		}
	}
	b.pending--
	settled := b.pending == 0
	b.mu.Unlock()

	if settled {
		b.tasks.Invalidate(service.TasksKey)
	} else {
		b.tasks.MarkStale(service.TasksKey)
	}
}

// revert sets task id back to was in a collection that still shows the value
// a failed toggle wrote.
func revert(id uuid.UUID, wrote, was bool) func([]models.Task) ([]models.Task, bool) {
	return func(cur []models.Task) ([]models.Task, bool) {
		i := slices.IndexFunc(cur, func(t models.Task) bool { return t.ID == id })
		if i < 0 || cur[i].Completed != wrote {
			return cur, false
		}
		next := slices.Clone(cur)
		next[i] = next[i].WithCompleted(was)
		return next, true
	}
}

// CreateTask validates in, creates the task and refreshes task reads.
func (b *Board) CreateTask(ctx context.Context, in service.TaskInput) (*models.Task, error) {
	in = in.Normalized()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	task, err := b.store.CreateTask(ctx, in)
	if err != nil {
		return nil, err
	}
	b.tasks.Invalidate(service.TasksKey)
	return task, nil
}

// UpdateTask replaces the editable fields of a task.
func (b *Board) UpdateTask(ctx context.Context, id uuid.UUID, in service.TaskInput) (*models.Task, error) {
	in = in.Normalized()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	task, err := b.store.UpdateTaskProperties(ctx, id, in)
	if err != nil {
		return nil, err
	}
	b.tasks.Invalidate(service.TasksKey)
	return task, nil
}

// DeleteTask removes a task.
func (b *Board) DeleteTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, err := b.store.DeleteTask(ctx, id)
	if err != nil {
		return nil, err
	}
	b.tasks.Invalidate(service.TasksKey)
	return task, nil
}

// CreateList creates a list.
func (b *Board) CreateList(ctx context.Context, in service.ListInput) (*models.List, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	list, err := b.store.CreateList(ctx, in)
	if err != nil {
		return nil, err
	}
	b.lists.Invalidate(service.ListsKey)
	return list, nil
}

// RenameList renames a list. Task reads filtered by list name are refreshed
// too.
func (b *Board) RenameList(ctx context.Context, id uuid.UUID, name string) (*models.List, error) {
	if err := service.ValidateListName(name); err != nil {
		return nil, err
	}
	list, err := b.store.UpdateList(ctx, id, name)
	if err != nil {
		return nil, err
	}
	b.lists.Invalidate(service.ListsKey)
	b.tasks.Invalidate(service.TasksKey)
	return list, nil
}

// DeleteList removes an empty list.
func (b *Board) DeleteList(ctx context.Context, id uuid.UUID) (*models.List, error) {
	list, err := b.store.DeleteList(ctx, id)
	if err != nil {
		return nil, err
	}
	b.lists.Invalidate(service.ListsKey)
	return list, nil
}

// CreateTag creates a tag.
func (b *Board) CreateTag(ctx context.Context, in service.TagInput) (*models.Tag, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	tag, err := b.store.CreateTag(ctx, in)
	if err != nil {
		return nil, err
	}
	b.tags.Invalidate(service.TagsKey)
	return tag, nil
}

// DeleteTag removes a tag from every task and deletes it.
func (b *Board) DeleteTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	tag, err := b.store.DeleteTag(ctx, id)
	if err != nil {
		return nil, err
	}
	b.tags.Invalidate(service.TagsKey)
	b.tasks.Invalidate(service.TasksKey)
	return tag, nil
}

// Refresh marks everything stale and re-reads it in the background.
func (b *Board) Refresh() {
	b.tasks.Invalidate("")
	b.lists.Invalidate("")
	b.tags.Invalidate("")
}

// Wait blocks until no background read is running.
func (b *Board) Wait() {
	b.tasks.Wait()
	b.lists.Wait()
	b.tags.Wait()
}

// Close stops all background reads.
func (b *Board) Close() {
	b.tasks.Close()
	b.lists.Close()
	b.tags.Close()
}
