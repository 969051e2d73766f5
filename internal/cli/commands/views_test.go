package commands

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kutbudev/duedeck/internal/output"
	"github.com/kutbudev/duedeck/internal/testutil"
	"github.com/kutbudev/duedeck/pkg/due"
	"github.com/kutbudev/duedeck/pkg/models"
)

var viewNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTask(title string, dueAt time.Time, p models.Priority, list uuid.UUID, done bool) models.Task {
	return models.Task{ID: uuid.New(), Title: title, DueDate: dueAt, Priority: p, ListID: list, Completed: done}
}

func TestSummarize(t *testing.T) {
	home := models.List{ID: uuid.New(), Name: "home"}
	work := models.List{ID: uuid.New(), Name: "work"}
	tasks := []models.Task{
		newTask("late", viewNow.Add(-48*time.Hour), models.PriorityLow, home.ID, false),
		newTask("now", viewNow, models.PriorityLow, home.ID, false),
		newTask("finished", viewNow.Add(-48*time.Hour), models.PriorityLow, home.ID, true),
		newTask("later", viewNow.Add(72*time.Hour), models.PriorityLow, work.ID, false),
		newTask("orphan", viewNow.Add(72*time.Hour), models.PriorityLow, uuid.New(), false),
	}

	got := summarize([]models.List{home, work}, tasks, viewNow)
	want := []listSummary{
		{Name: "home", Open: 2, Overdue: 1, Today: 1, Done: 1},
		{Name: "work", Open: 1, Upcoming: 1},
		{Name: "total", Open: 4, Overdue: 1, Today: 1, Upcoming: 2, Done: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("rows = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestNextTasks(t *testing.T) {
	list := uuid.New()
	upcomingUrgent := newTask("upcoming urgent", viewNow.Add(72*time.Hour), models.PriorityUrgent, list, false)
	todayLow := newTask("today low", viewNow.Add(time.Hour), models.PriorityLow, list, false)
	overdueLow := newTask("overdue low", viewNow.Add(-48*time.Hour), models.PriorityLow, list, false)
	todayHighLate := newTask("today high late", viewNow.Add(2*time.Hour), models.PriorityHigh, list, false)
	overdueDone := newTask("overdue done", viewNow.Add(-48*time.Hour), models.PriorityUrgent, list, true)
	todayHighSoon := newTask("today high soon", viewNow.Add(30*time.Minute), models.PriorityHigh, list, false)
	tasks := []models.Task{upcomingUrgent, todayLow, overdueLow, todayHighLate, overdueDone, todayHighSoon}

	tests := []struct {
		n    int
		want []string
	}{
		{10, []string{"overdue low", "today high soon", "today high late", "today low", "upcoming urgent"}},
		{2, []string{"overdue low", "today high soon"}},
	}
	for _, tt := range tests {
		var got []string
		for _, task := range nextTasks(tasks, viewNow, tt.n) {
			got = append(got, task.Title)
		}
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("nextTasks(n=%d) = %v, want %v", tt.n, got, tt.want)
		}
	}

	if got := nextTasks([]models.Task{overdueDone}, viewNow, 3); got == nil || len(got) != 0 {
		t.Errorf("nextTasks(done only) = %#v, want empty non-nil", got)
	}
}

func TestRenderKanban(t *testing.T) {
	list := uuid.New()
	tasks := []models.Task{
		newTask("pay rent", viewNow.Add(-24*time.Hour), models.PriorityHigh, list, false),
		newTask("water plants", viewNow.Add(time.Hour), models.PriorityLow, list, false),
		newTask("call mom", viewNow.Add(-time.Hour), models.PriorityLow, list, true),
		newTask("file taxes", viewNow.Add(96*time.Hour), models.PriorityMedium, list, false),
	}

	out := renderKanban(output.NewStyles(true), due.Classify(tasks, viewNow), viewNow)
	for _, want := range []string{
		"Overdue (1)", "Today (2)", "Upcoming (1)",
		"pay rent", "water plants", "call mom", "file taxes",
		"[x]", "13:00",
		"Summary: 1 overdue, 2 today, 1 upcoming",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("kanban missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Overdue (1)") > strings.Index(out, "Today (2)") {
		t.Error("overdue column should come first")
	}
}

func TestViewCommands(t *testing.T) {
	store := testutil.NewFakeStore()
	setup(t, store)
	home := store.AddList("home")
	store.AddTask(home.ID, "pay rent", time.Now().AddDate(0, 0, -2))
	store.AddTask(home.ID, "file taxes", time.Now().AddDate(0, 0, 5))

	out, err := run(t, "kanban")
	if err != nil {
		t.Fatalf("kanban: %v", err)
	}
	if !strings.Contains(out, "pay rent") || !strings.Contains(out, "Summary: 1 overdue, 0 today, 1 upcoming") {
		t.Errorf("kanban output:\n%s", out)
	}

	out, err = run(t, "focus", "-o", "json", "1")
	if err != nil {
		t.Fatalf("focus: %v", err)
	}
	var next []models.Task
	if err := json.Unmarshal([]byte(out), &next); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(next) != 1 || next[0].Title != "pay rent" {
		t.Errorf("focus = %+v", next)
	}
	if _, err := run(t, "focus", "zero"); err == nil {
		t.Error("focus accepted a bad count")
	}

	out, err = run(t, "overview", "-o", "json")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	var rows []listSummary
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(rows) != 2 || rows[0] != (listSummary{Name: "home", Open: 2, Overdue: 1, Upcoming: 1}) {
		t.Errorf("overview = %+v", rows)
	}

	out, err = run(t, "overview")
	if err != nil {
		t.Fatalf("overview table: %v", err)
	}
	if !strings.Contains(out, "OVERDUE") || !strings.Contains(out, "total") {
		t.Errorf("overview table:\n%s", out)
	}
}
