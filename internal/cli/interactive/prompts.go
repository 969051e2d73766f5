// Package interactive holds the survey prompts used by `task add -i` and
// the confirmations of destructive commands.
package interactive

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/google/uuid"

	"github.com/kutbudev/duedeck/internal/service"
	"github.com/kutbudev/duedeck/pkg/due"
	"github.com/kutbudev/duedeck/pkg/models"
)

// TaskDefaults pre-fills the task form.
type TaskDefaults struct {
	Title    string
	ListName string
	Due      string
}

type taskAnswers struct {
	Title       string
	Description string
	Due         string
	Priority    string
	List        string
	Tags        []string
}

// TaskQuestions builds the questions of the task form.
func TaskQuestions(lists []models.List, tags []models.Tag, defaults TaskDefaults, now time.Time) []*survey.Question {
	priorities := make([]string, 0, len(models.Priorities))
	for _, p := range models.Priorities {
		priorities = append(priorities, string(p))
	}
	dueDefault := defaults.Due
	if dueDefault == "" {
		dueDefault = "today"
	}

	qs := []*survey.Question{
		{
			Name:     "title",
			Prompt:   &survey.Input{Message: "Title:", Default: defaults.Title},
			Validate: survey.Required,
		},
		{
			Name:   "description",
			Prompt: &survey.Multiline{Message: "Description (markdown, optional):"},
		},
		{
			Name: "due",
			Prompt: &survey.Input{
				Message: "Due:",
				Default: dueDefault,
				Help:    "today, tomorrow 9:00, +3d, 2006-01-02 or 2006-01-02 15:04",
			},
			Validate: func(ans interface{}) error {
				s, _ := ans.(string)
				_, err := due.Parse(s, now)
				return err
			},
		},
		{
			Name:   "priority",
			Prompt: &survey.Select{Message: "Priority:", Options: priorities, Default: string(models.PriorityLow)},
		},
		{
			Name:   "list",
			Prompt: &survey.Select{Message: "List:", Options: listNames(lists), Default: defaultList(lists, defaults.ListName)},
		},
	}
	if len(tags) > 0 {
		qs = append(qs, &survey.Question{
			Name:   "tags",
			Prompt: &survey.MultiSelect{Message: "Tags:", Options: tagNames(tags)},
		})
	}
	return qs
}

// PromptTask asks for a new task on the terminal.
func PromptTask(lists []models.List, tags []models.Tag, defaults TaskDefaults, now time.Time) (service.TaskInput, error) {
	if len(lists) == 0 {
		return service.TaskInput{}, errors.New("no lists yet; create one with 'duedeck list create'")
	}
	var answers taskAnswers
	if err := survey.Ask(TaskQuestions(lists, tags, defaults, now), &answers); err != nil {
		return service.TaskInput{}, err
	}
	return answers.toInput(lists, tags, now)
}

func (a taskAnswers) toInput(lists []models.List, tags []models.Tag, now time.Time) (service.TaskInput, error) {
	dueAt, err := due.Parse(a.Due, now)
	if err != nil {
		return service.TaskInput{}, err
	}
	priority, err := models.ParsePriority(a.Priority)
	if err != nil {
		return service.TaskInput{}, err
	}

	in := service.TaskInput{
		Title:    a.Title,
		DueDate:  dueAt,
		Priority: priority,
	}
	if d := strings.TrimSpace(a.Description); d != "" {
		in.Description = &d
	}
	for _, l := range lists {
		if l.Name == a.List {
			in.ListID = l.ID
			break
		}
	}
	if in.ListID == uuid.Nil {
		return service.TaskInput{}, fmt.Errorf("unknown list %q", a.List)
	}
	byName := make(map[string]uuid.UUID, len(tags))
	for _, t := range tags {
		byName[t.Name] = t.ID
	}
	for _, name := range a.Tags {
		if id, ok := byName[name]; ok {
			in.TagIDs = append(in.TagIDs, id)
		}
	}
	return in, nil
}

// Confirm asks a yes/no question. The default answer is no.
func Confirm(message string) (bool, error) {
	ok := false
	err := survey.AskOne(&survey.Confirm{Message: message, Default: false}, &ok)
	return ok, err
}

func listNames(lists []models.List) []string {
	names := make([]string, 0, len(lists))
	for _, l := range lists {
		names = append(names, l.Name)
	}
	return names
}

func tagNames(tags []models.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

func defaultList(lists []models.List, name string) string {
	for _, l := range lists {
		if strings.EqualFold(l.Name, name) {
			return l.Name
		}
	}
	if len(lists) > 0 {
		return lists[0].Name
	}
	return ""
}
