package interactive

import (
	"testing"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/google/uuid"

	"github.com/kutbudev/duedeck/pkg/models"
)

var now = time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)

func TestTaskQuestions(t *testing.T) {
	lists := []models.List{{ID: uuid.New(), Name: "home"}, {ID: uuid.New(), Name: "work"}}

	qs := TaskQuestions(lists, nil, TaskDefaults{ListName: "WORK"}, now)
	if len(qs) != 5 {
		t.Fatalf("questions = %d, want 5 without tags", len(qs))
	}
	sel, ok := qs[4].Prompt.(*survey.Select)
	if !ok || sel.Default != "work" {
		t.Errorf("list prompt default = %v, want work", qs[4].Prompt)
	}
	if err := qs[2].Validate("someday"); err == nil {
		t.Error("due validator accepted garbage")
	}

	qs = TaskQuestions(lists, []models.Tag{{Name: "errand"}}, TaskDefaults{}, now)
	if len(qs) != 6 {
		t.Errorf("questions = %d, want 6 with tags", len(qs))
	}
}

func TestAnswersToInput(t *testing.T) {
	home := models.List{ID: uuid.New(), Name: "home"}
	errand := models.Tag{ID: uuid.New(), Name: "errand"}

	in, err := taskAnswers{
		Title:       "buy milk",
		Description: "  ",
		Due:         "tomorrow",
		Priority:    "high",
		List:        "home",
		Tags:        []string{"errand"},
	}.toInput([]models.List{home}, []models.Tag{errand}, now)
	if err != nil {
		t.Fatalf("toInput() error = %v", err)
	}
	if in.ListID != home.ID || in.Priority != models.PriorityHigh || in.Description != nil {
		t.Errorf("toInput() = %+v", in)
	}
	if len(in.TagIDs) != 1 || in.TagIDs[0] != errand.ID {
		t.Errorf("TagIDs = %v", in.TagIDs)
	}

	if _, err := (taskAnswers{Title: "x", Due: "today", Priority: "low", List: "gone"}).toInput([]models.List{home}, nil, now); err == nil {
		t.Error("unknown list accepted")
	}
}
