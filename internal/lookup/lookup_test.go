package lookup

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	apierrors "github.com/kutbudev/duedeck/internal/errors"
	"github.com/kutbudev/duedeck/pkg/models"
)

func task(id, title string) models.Task {
	return models.Task{ID: uuid.MustParse(id), Title: title}
}

var tasks = []models.Task{
	task("aaaa1111-0000-4000-8000-000000000001", "water plants"),
	task("aaaa2222-0000-4000-8000-000000000002", "call mom"),
	task("bbbb3333-0000-4000-8000-000000000003", "file taxes"),
	task("cccc4444-0000-4000-8000-000000000004", "call dad"),
}

func TestTask(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr string
	}{
		{name: "id prefix", ref: "bbbb", want: "file taxes"},
		{name: "longer prefix", ref: "aaaa2222-0000", want: "call mom"},
		{name: "ambiguous prefix", ref: "aaaa", wantErr: "ambiguous"},
		{name: "exact title any case", ref: "CALL MOM", want: "call mom"},
		{name: "fuzzy", ref: "taxes", want: "file taxes"},
		{name: "fuzzy abbreviation", ref: "wtrpl", want: "water plants"},
		{name: "fuzzy tie", ref: "cal", wantErr: "ambiguous"},
		{name: "nothing", ref: "zzz", wantErr: "no task matches"},
		{name: "empty", ref: "  ", wantErr: "required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Task(tasks, tt.ref)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Task(%q) error = %v, want %q", tt.ref, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Task(%q) error = %v", tt.ref, err)
			}
			if got.Title != tt.want {
				t.Errorf("Task(%q) = %q, want %q", tt.ref, got.Title, tt.want)
			}
		})
	}
}

func TestTaskNotFoundMatchesSentinel(t *testing.T) {
	_, err := Task(tasks, "qqqq")
	if !errors.Is(err, apierrors.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if _, err := Task(nil, ""); !errors.Is(err, ErrRefRequired) {
		t.Errorf("empty ref error = %v", err)
	}
}

func TestList(t *testing.T) {
	home := models.List{ID: uuid.MustParse("dddd0000-0000-4000-8000-000000000001"), Name: "Home"}
	work := models.List{ID: uuid.MustParse("eeee0000-0000-4000-8000-000000000002"), Name: "work"}
	lists := []models.List{home, work}

	tests := []struct {
		ref     string
		want    uuid.UUID
		wantErr bool
	}{
		{ref: "home", want: home.ID},
		{ref: "WORK", want: work.ID},
		{ref: work.ID.String(), want: work.ID},
		{ref: "dddd", want: home.ID},
		{ref: "garden", wantErr: true},
		{ref: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := List(lists, tt.ref)
		if (err != nil) != tt.wantErr {
			t.Fatalf("List(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
		}
		if !tt.wantErr && got.ID != tt.want {
			t.Errorf("List(%q) = %s, want %s", tt.ref, got.ID, tt.want)
		}
	}
}

func TestTagIDs(t *testing.T) {
	errand := models.Tag{ID: uuid.New(), Name: "errand"}
	urgent := models.Tag{ID: uuid.New(), Name: "Urgent"}
	tags := []models.Tag{errand, urgent}

	ids, err := TagIDs(tags, []string{"errand,urgent", " ", urgent.ID.String()})
	if err != nil {
		t.Fatalf("TagIDs() error = %v", err)
	}
	want := []uuid.UUID{errand.ID, urgent.ID, urgent.ID}
	if len(ids) != len(want) {
		t.Fatalf("TagIDs() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %s, want %s", i, ids[i], want[i])
		}
	}

	if _, err := TagIDs(tags, []string{"missing"}); !errors.Is(err, apierrors.ErrNotFound) {
		t.Errorf("missing tag error = %v", err)
	}
}
