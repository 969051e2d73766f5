package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/zalando/go-keyring"

	"github.com/kutbudev/duedeck/internal/service"
	"github.com/kutbudev/duedeck/internal/testutil"
	"github.com/kutbudev/duedeck/pkg/due"
	"github.com/kutbudev/duedeck/pkg/models"
)

// setup isolates config and keyring and routes every session to store.
func setup(t *testing.T, store *testutil.FakeStore) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("API_BASE_URL", "")
	t.Setenv("DUEDECK_TOKEN", "")
	keyring.MockInit()

	prev := storeFactory
	storeFactory = func(string, string, logrus.FieldLogger) service.Store { return store }
	t.Cleanup(func() { storeFactory = prev })
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := &cli.App{
		Name:  "duedeck",
		Flags: GlobalFlags(),
		Commands: []*cli.Command{
			NewTaskCommand(),
			NewListCommand(),
			NewTagCommand(),
			NewKanbanCommand(),
			NewOverviewCommand(),
			NewFocusCommand(),
			NewConfigCommand(),
			NewMcpCommand(),
		},
		Writer:    &out,
		ErrWriter: io.Discard,
	}
	err := app.RunContext(context.Background(), append([]string{"duedeck"}, args...))
	return out.String(), err
}

func TestTaskAdd(t *testing.T) {
	store := testutil.NewFakeStore()
	setup(t, store)
	home := store.AddList("home")
	errand := store.AddTag("errand")

	out, err := run(t, "task", "add", "--list", "home", "--due", "+2d", "-p", "h", "--tag", "errand", "water", "plants")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Task 'water plants' created successfully") {
		t.Errorf("output = %q", out)
	}

	tasks, _ := store.ListTasks(context.Background(), service.TaskFilter{})
	if len(tasks) != 1 {
		t.Fatalf("stored %d tasks, want 1", len(tasks))
	}
	task := tasks[0]
	if task.ListID != home.ID || task.Priority != models.PriorityHigh {
		t.Errorf("task = %+v", task)
	}
	if len(task.Tags) != 1 || task.Tags[0].ID != errand.ID {
		t.Errorf("tags = %v", task.Tags)
	}
	if !strings.Contains(out, task.ID.String()) {
		t.Errorf("output does not show the id: %q", out)
	}
}

func TestTaskAddErrors(t *testing.T) {
	tests := []struct {
		name  string
		lists []string
		args  []string
		want  string
	}{
		{"no title", []string{"home"}, []string{"task", "add"}, "title is required"},
		{"no list among many", []string{"home", "work"}, []string{"task", "add", "x"}, "list is required"},
		{"unknown list", []string{"home"}, []string{"task", "add", "--list", "garage", "x"}, "not found"},
		{"bad due", []string{"home"}, []string{"task", "add", "--due", "someday", "x"}, "due"},
		{"bad priority", []string{"home"}, []string{"task", "add", "-p", "whenever", "x"}, "priority"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewFakeStore()
			setup(t, store)
			for _, name := range tt.lists {
				store.AddList(name)
			}
			_, err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestTaskAddSingleListDefault(t *testing.T) {
	store := testutil.NewFakeStore()
	setup(t, store)
	home := store.AddList("home")

	if _, err := run(t, "task", "add", "call mom"); err != nil {
		t.Fatalf("add: %v", err)
	}
	tasks, _ := store.ListTasks(context.Background(), service.TaskFilter{})
	if len(tasks) != 1 || tasks[0].ListID != home.ID {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestTaskListJSON(t *testing.T) {
	store := testutil.NewFakeStore()
	setup(t, store)
	home := store.AddList("home")
	work := store.AddList("work")
	store.AddTask(home.ID, "water plants", time.Now())
	store.AddTask(work.ID, "file report", time.Now().AddDate(0, 0, 3))

	out, err := run(t, "task", "ls", "--list", "work", "-o", "json")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	var tasks []models.Task
	if err := json.Unmarshal([]byte(out), &tasks); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(tasks) != 1 || tasks[0].Title != "file report" {
		t.Errorf("tasks = %+v", tasks)
	}

	out, err = run(t, "task", "ls")
	if err != nil {
		t.Fatalf("ls table: %v", err)
	}
	for _, want := range []string{"water plants", "file report", "home", "work"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}

	if _, err := run(t, "task", "ls", "--due", "later"); err == nil {
		t.Error("bad --due accepted")
	}
}

func TestTaskGroupedJSON(t *testing.T) {
	store := testutil.NewFakeStore()
	setup(t, store)
	home := store.AddList("home")
	store.AddTask(home.ID, "yesterday", time.Now().AddDate(0, 0, -1))
	store.AddTask(home.ID, "next week", time.Now().AddDate(0, 0, 7))

	out, err := run(t, "task", "grouped", "-o", "json")
	if err != nil {
		t.Fatalf("grouped: %v", err)
	}
	var groups due.Groups[models.Task]
	if err := json.Unmarshal([]byte(out), &groups); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(groups.Overdue) != 1 || len(groups.Upcoming) != 1 || len(groups.Today) != 0 {
		t.Errorf("groups = %+v", groups)
	}
}

func TestTaskDoneAndUndo(t *testing.T) {
	store := testutil.NewFakeStore()
	setup(t, store)
	home := store.AddList("home")
	task := store.AddTask(home.ID, "water plants", time.Now())

	out, err := run(t, "task", "done", task.ID.String()[:8])
	if err != nil {
		t.Fatalf("done: %v", err)
	}
	if !strings.Contains(out, "marked done") {
		t.Errorf("output = %q", out)
	}
	if stored, _ := store.Task(task.ID); !stored.Completed {
		t.Error("task not completed")
	}

	if _, err := run(t, "task", "undo", task.ID.String()); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if stored, _ := store.Task(task.ID); stored.Completed {
		t.Error("task still completed")
	}

	if _, err := run(t, "task", "done"); !errors.Is(err, ErrTaskRefRequired) {
		t.Errorf("err = %v, want ErrTaskRefRequired", err)
	}
}

func TestTaskEdit(t *testing.T) {
	store := testutil.NewFakeStore()
	setup(t, store)
	home := store.AddList("home")
	work := store.AddList("work")
	task := store.AddTask(home.ID, "water plants", time.Now())

	_, err := run(t, "task", "edit", "--title", "water ferns", "--list", "work", "--priority", "urgent", task.ID.String())
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	stored, _ := store.Task(task.ID)
	if stored.Title != "water ferns" || stored.ListID != work.ID || stored.Priority != models.PriorityUrgent {
		t.Errorf("task = %+v", stored)
	}
	if !stored.DueDate.Equal(task.DueDate) {
		t.Error("due date changed without --due")
	}
}

func TestTaskShowRaw(t *testing.T) {
	store := testutil.NewFakeStore()
	setup(t, store)
	home := store.AddList("home")
	task := store.AddTask(home.ID, "water plants", time.Now())

	out, err := run(t, "task", "show", "--raw", task.ID.String())
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"# water plants", "| **List** | home |", "| **Status** | open |"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestTaskRemove(t *testing.T) {
	store := testutil.NewFakeStore()
	setup(t, store)
	home := store.AddList("home")
	task := store.AddTask(home.ID, "water plants", time.Now())

	out, err := run(t, "task", "rm", "--yes", task.ID.String())
	if err != nil {
		t.Fatalf("rm: %v", err)
	}
	if !strings.Contains(out, "deleted") {
		t.Errorf("output = %q", out)
	}
	if _, ok := store.Task(task.ID); ok {
		t.Error("task still stored")
	}
}

func TestListCommands(t *testing.T) {
	store := testutil.NewFakeStore()
	setup(t, store)

	if _, err := run(t, "list", "create", "--color", "#112233", "home"); err != nil {
		t.Fatalf("create: %v", err)
	}
	out, err := run(t, "list", "rename", "home", "house", "chores")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if !strings.Contains(out, "renamed to 'house chores'") {
		t.Errorf("output = %q", out)
	}

	out, err = run(t, "list", "ls", "-o", "json")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	var lists []models.List
	if err := json.Unmarshal([]byte(out), &lists); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(lists) != 1 || lists[0].Name != "house chores" || lists[0].Color != "#112233" {
		t.Errorf("lists = %+v", lists)
	}

	if _, err := run(t, "list", "rename", "house"); err == nil {
		t.Error("rename without a new name accepted")
	}
}

func TestListRemoveNonEmpty(t *testing.T) {
	store := testutil.NewFakeStore()
	setup(t, store)
	home := store.AddList("home")
	store.AddTask(home.ID, "water plants", time.Now())

	if _, err := run(t, "list", "rm", "--yes", "home"); err == nil {
		t.Error("deleted a list that still has tasks")
	}
}

func TestTagCommands(t *testing.T) {
	store := testutil.NewFakeStore()
	setup(t, store)

	if _, err := run(t, "tag", "create", "errand"); err != nil {
		t.Fatalf("create: %v", err)
	}
	out, err := run(t, "tag", "ls", "-o", "yaml")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	if !strings.Contains(out, "name: errand") || !strings.Contains(out, "#bb9af7") {
		t.Errorf("yaml = %q", out)
	}

	if _, err := run(t, "tag", "rm", "--yes", "errand"); err != nil {
		t.Fatalf("rm: %v", err)
	}
	tags, _ := store.ListTags(context.Background())
	if len(tags) != 0 {
		t.Errorf("tags = %v", tags)
	}
}

func TestConfigCommands(t *testing.T) {
	setup(t, testutil.NewFakeStore())

	if _, err := run(t, "config", "set-url", "ftp://example.com"); err == nil {
		t.Error("accepted a non-http URL")
	}
	if _, err := run(t, "config", "set-url", "https://tasks.example.com/v1/"); err != nil {
		t.Fatalf("set-url: %v", err)
	}
	if _, err := run(t, "config", "set-list", "home"); err != nil {
		t.Fatalf("set-list: %v", err)
	}
	if _, err := run(t, "config", "set-theme", "light"); err != nil {
		t.Fatalf("set-theme: %v", err)
	}
	if _, err := run(t, "config", "set-theme", "sepia"); err == nil {
		t.Error("accepted an unknown theme")
	}
	if _, err := run(t, "config", "set-token", "abcd1234efgh5678"); err != nil {
		t.Fatalf("set-token: %v", err)
	}

	out, err := run(t, "config", "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{
		"https://tasks.example.com/v1",
		"Default list: home",
		"Theme:        light",
		"abcd********5678",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("show missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "v1/\n") {
		t.Error("trailing slash kept")
	}

	if _, err := run(t, "config", "clear-token"); err != nil {
		t.Fatalf("clear-token: %v", err)
	}
	out, _ = run(t, "config", "show")
	if !strings.Contains(out, "API token:    (not set)") {
		t.Errorf("token still shown:\n%s", out)
	}
}

func TestConfigDefaultListUsedByAdd(t *testing.T) {
	store := testutil.NewFakeStore()
	setup(t, store)
	store.AddList("home")
	work := store.AddList("work")

	if _, err := run(t, "config", "set-list", "work"); err != nil {
		t.Fatalf("set-list: %v", err)
	}
	if _, err := run(t, "task", "add", "file report"); err != nil {
		t.Fatalf("add: %v", err)
	}
	tasks, _ := store.ListTasks(context.Background(), service.TaskFilter{})
	if len(tasks) != 1 || tasks[0].ListID != work.ID {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestMcpTools(t *testing.T) {
	setup(t, testutil.NewFakeStore())

	out, err := run(t, "mcp", "tools")
	if err != nil {
		t.Fatalf("tools: %v", err)
	}
	var defs []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(out), &defs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var names []string
	for _, d := range defs {
		names = append(names, d.Name)
	}
	joined := strings.Join(names, ",")
	for _, want := range []string{"list_tasks", "grouped_tasks", "create_task", "toggle_task"} {
		if !strings.Contains(joined, want) {
			t.Errorf("tools %v missing %s", names, want)
		}
	}
}
