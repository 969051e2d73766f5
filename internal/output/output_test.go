package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kutbudev/duedeck/pkg/due"
	"github.com/kutbudev/duedeck/pkg/models"
)

var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncodeYAMLUsesJSONNames(t *testing.T) {
	task := models.Task{
		ID:       uuid.MustParse("6f1c0e2a-0000-4000-8000-000000000001"),
		Title:    "water plants",
		DueDate:  now,
		Priority: models.PriorityHigh,
		Tags:     []models.Tag{},
	}
	var buf bytes.Buffer
	if err := Encode(&buf, FormatYAML, []models.Task{task}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"due_date:", "title: water plants", "priority: high", "tags: []"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml output missing %q:\n%s", want, out)
		}
	}
}

func TestEncodeJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, FormatJSON, map[string]int{"n": 1}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got := buf.String(); got != "{\n  \"n\": 1\n}\n" {
		t.Errorf("json output = %q", got)
	}
	if err := Encode(&buf, FormatTable, nil); err == nil {
		t.Error("Encode(table) should fail")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a much longer title", 10, "a much ..."},
		{"çok uzun başlık", 6, "çok..."},
		{"abc", 2, "ab"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestNormalizeTitle(t *testing.T) {
	if got := normalizeTitle("line one\nline two"); got != "line one line two" {
		t.Errorf("normalizeTitle() = %q", got)
	}
	if got := normalizeTitle("  "); got != "(untitled)" {
		t.Errorf("normalizeTitle(blank) = %q", got)
	}
}

func TestBlend(t *testing.T) {
	if got := blend("#ffffff", "#000000", 0.5); got != "#808080" && got != "#7f7f7f" {
		t.Errorf("blend(white over black, 0.5) = %q", got)
	}
	if got := blend("#ff0000", "#000000", 1); got != "#ff0000" {
		t.Errorf("blend(alpha 1) = %q", got)
	}
	if got := blend("not a color", "#000000", 0.5); got != "#000000" {
		t.Errorf("blend(invalid) = %q, want background", got)
	}
}

func TestTasksTable(t *testing.T) {
	listID := uuid.New()
	tasks := []models.Task{
		{ID: uuid.New(), Title: "water plants", DueDate: now.Add(time.Hour), Priority: models.PriorityHigh, ListID: listID,
			Tags: []models.Tag{{Name: "home", Color: "#00ff00"}}},
		{ID: uuid.New(), Title: "file taxes", DueDate: now.AddDate(0, 0, -3), Completed: true, ListID: listID},
	}
	var buf bytes.Buffer
	NewStyles(true).Tasks(&buf, tasks, map[uuid.UUID]string{listID: "chores"}, now)
	out := buf.String()
	for _, want := range []string{"TITLE", "water plants", "today 13:00", "high", "chores", "home", "[x]", "2024-03-12", ShortID(tasks[0].ID)} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestGroupsSkipsEmptyBuckets(t *testing.T) {
	groups := due.Classify([]models.Task{
		{ID: uuid.New(), Title: "tomorrow", DueDate: now.AddDate(0, 0, 1)},
	}, now)
	var buf bytes.Buffer
	NewStyles(false).Groups(&buf, groups, nil, now)
	out := buf.String()
	if !strings.Contains(out, "Upcoming (1)") {
		t.Errorf("missing Upcoming heading:\n%s", out)
	}
	if strings.Contains(out, "Today") || strings.Contains(out, "Overdue") {
		t.Errorf("empty buckets rendered:\n%s", out)
	}

	buf.Reset()
	NewStyles(false).Groups(&buf, due.Groups[models.Task]{}, nil, now)
	if !strings.Contains(buf.String(), "No tasks found.") {
		t.Errorf("empty groups output = %q", buf.String())
	}
}

func TestTaskMarkdown(t *testing.T) {
	desc := "bring the **blue** can"
	md := TaskMarkdown(models.Task{
		ID:          uuid.New(),
		Title:       "water plants",
		Description: &desc,
		DueDate:     now.AddDate(0, 0, -1),
		Priority:    models.PriorityUrgent,
		Tags:        []models.Tag{{Name: "home"}},
	}, "chores", now)
	for _, want := range []string{"# water plants", "| **Status** | open |", "(Overdue)", "urgent", "chores", "`home`", "## Description", desc} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}
