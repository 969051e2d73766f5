package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/kutbudev/duedeck/pkg/due"
	"github.com/kutbudev/duedeck/pkg/models"
)

// Theme backgrounds that tag colors are blended against.
const (
	darkBackground  = "#1a1b26"
	lightBackground = "#ffffff"
)

// Styles holds the pre-computed styles for terminal output.
type Styles struct {
	theme      string
	background string

	Header  lipgloss.Style
	Muted   lipgloss.Style
	Done    lipgloss.Style
	Overdue lipgloss.Style
	Today   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Border  lipgloss.Style
}

// NewStyles returns styles for the dark or light theme.
func NewStyles(dark bool) Styles {
	s := Styles{theme: "light", background: lightBackground}
	fg, dim, border := lipgloss.Color("#1a1b26"), lipgloss.Color("#6b7089"), lipgloss.Color("#c0c4d6")
	if dark {
		s.theme, s.background = "dark", darkBackground
		fg, dim, border = lipgloss.Color("#c0caf5"), lipgloss.Color("#565f89"), lipgloss.Color("#3b4261")
	}
	s.Header = lipgloss.NewStyle().Bold(true).Foreground(fg)
	s.Muted = lipgloss.NewStyle().Foreground(dim)
	s.Done = lipgloss.NewStyle().Foreground(dim).Strikethrough(true)
	s.Overdue = lipgloss.NewStyle().Foreground(lipgloss.Color(models.PriorityUrgent.Color()))
	s.Today = lipgloss.NewStyle().Bold(true).Foreground(fg)
	s.Success = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a"))
	s.Error = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e"))
	s.Border = lipgloss.NewStyle().Foreground(border)
	return s
}

// Theme is "dark" or "light".
func (s Styles) Theme() string {
	return s.theme
}

// Priority renders p in its display color.
func (s Styles) Priority(p models.Priority) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color())).Render(string(p))
}

// TagChip renders a tag name on its color, blended with the theme
// background at the theme's alpha.
func (s Styles) TagChip(tag models.Tag) string {
	bg := blend(tag.Color, s.background, models.ThemeAlpha(s.theme))
	return lipgloss.NewStyle().
		Background(lipgloss.Color(bg)).
		Foreground(lipgloss.Color(tag.Color)).
		Padding(0, 1).
		Render(tag.Name)
}

// blend mixes hex over bg with the given opacity. Invalid colors fall back
// to bg.
func blend(hex, bg string, alpha float64) string {
	fgc, err := colorful.Hex(hex)
	if err != nil {
		return bg
	}
	bgc, err := colorful.Hex(bg)
	if err != nil {
		return hex
	}
	return bgc.BlendRgb(fgc, alpha).Clamped().Hex()
}

// DueLabel formats a due date relative to now: time of day for today, the
// date otherwise.
func (s Styles) DueLabel(task models.Task, now time.Time) string {
	dueAt := task.DueDate.In(now.Location())
	switch due.Bucket(dueAt, now) {
	case due.Today:
		return s.Today.Render("today " + dueAt.Format("15:04"))
	case due.Overdue:
		if task.Completed {
			return dueAt.Format("2006-01-02")
		}
		return s.Overdue.Render(dueAt.Format("2006-01-02"))
	default:
		return dueAt.Format("2006-01-02")
	}
}

// ShortID is the 8-character prefix commands accept as a task reference.
func ShortID(id uuid.UUID) string {
	return id.String()[:8]
}

func (s Styles) newTable() *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// Tasks renders tasks as a table. lists maps list ids to names for the LIST
// column.
func (s Styles) Tasks(w io.Writer, tasks []models.Task, lists map[uuid.UUID]string, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, s.Muted.Render("No tasks found."))
		return
	}

	t := s.newTable().Headers("", "ID", "TITLE", "DUE", "PRIORITY", "LIST", "TAGS")
	for _, task := range tasks {
		check, title := "[ ]", Truncate(normalizeTitle(task.Title), 40)
		if task.Completed {
			check, title = "[x]", s.Done.Render(title)
		}
		chips := make([]string, 0, len(task.Tags))
		for _, tag := range task.Tags {
			chips = append(chips, s.TagChip(tag))
		}
		t.Row(
			check,
			ShortID(task.ID),
			title,
			s.DueLabel(task, now),
			s.Priority(task.Priority),
			lists[task.ListID],
			strings.Join(chips, " "),
		)
	}
	fmt.Fprintln(w, t.Render())
}

// Groups renders each due bucket under a heading, skipping empty ones.
func (s Styles) Groups(w io.Writer, groups due.Groups[models.Task], lists map[uuid.UUID]string, now time.Time) {
	if groups.Len() == 0 {
		fmt.Fprintln(w, s.Muted.Render("No tasks found."))
		return
	}
	for _, kind := range due.Kinds {
		tasks := groups.Get(kind)
		if len(tasks) == 0 {
			continue
		}
		fmt.Fprintln(w, s.Header.Render(fmt.Sprintf("%s (%d)", kind, len(tasks))))
		s.Tasks(w, tasks, lists, now)
	}
}

// Lists renders lists with their colors.
func (s Styles) Lists(w io.Writer, lists []models.List) {
	if len(lists) == 0 {
		fmt.Fprintln(w, s.Muted.Render("No lists found. Use 'duedeck list create' to add one."))
		return
	}
	t := s.newTable().Headers("ID", "NAME", "COLOR")
	for _, l := range lists {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(l.Color)).Render("● " + l.Color)
		t.Row(ShortID(l.ID), l.Name, swatch)
	}
	fmt.Fprintln(w, t.Render())
}

// Tags renders tags as chips.
func (s Styles) Tags(w io.Writer, tags []models.Tag) {
	if len(tags) == 0 {
		fmt.Fprintln(w, s.Muted.Render("No tags found. Use 'duedeck tag create' to add one."))
		return
	}
	t := s.newTable().Headers("ID", "TAG", "COLOR")
	for _, tag := range tags {
		t.Row(ShortID(tag.ID), s.TagChip(tag), tag.Color)
	}
	fmt.Fprintln(w, t.Render())
}

// TaskMarkdown is the markdown document `task show` renders.
func TaskMarkdown(task models.Task, listName string, now time.Time) string {
	var b strings.Builder
	status := "open"
	if task.Completed {
		status = "done"
	}
	fmt.Fprintf(&b, "# %s\n\n", normalizeTitle(task.Title))
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| **ID** | `%s` |\n", task.ID)
	fmt.Fprintf(&b, "| **Status** | %s |\n", status)
	fmt.Fprintf(&b, "| **Due** | %s (%s) |\n", task.DueDate.In(now.Location()).Format("Mon 2006-01-02 15:04"), due.Bucket(task.DueDate, now))
	fmt.Fprintf(&b, "| **Priority** | %s |\n", task.Priority)
	if listName != "" {
		fmt.Fprintf(&b, "| **List** | %s |\n", listName)
	}
	if len(task.Tags) > 0 {
		names := make([]string, 0, len(task.Tags))
		for _, tag := range task.Tags {
			names = append(names, "`"+tag.Name+"`")
		}
		fmt.Fprintf(&b, "| **Tags** | %s |\n", strings.Join(names, " "))
	}
	if task.Description != nil && strings.TrimSpace(*task.Description) != "" {
		fmt.Fprintf(&b, "\n## Description\n\n%s\n", *task.Description)
	}
	return b.String()
}
