// Package tui is the interactive board: tasks with checkboxes that toggle
// in place, filtered by due bucket.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kutbudev/duedeck/internal/board"
	"github.com/kutbudev/duedeck/internal/output"
	"github.com/kutbudev/duedeck/internal/service"
	"github.com/kutbudev/duedeck/pkg/due"
	"github.com/kutbudev/duedeck/pkg/models"
)

// Model is the bubbletea model of the board.
type Model struct {
	ctx    context.Context
	board  *board.Board
	styles *Styles
	rows   output.Styles
	keys   KeyMap
	help   help.Model

	filter due.Kind // empty shows every task
	tasks  []models.Task
	lists  map[uuid.UUID]string
	cursor int

	width   int
	height  int
	loading bool
	status  string
	err     error
}

// New creates the board model. dark selects the theme.
func New(ctx context.Context, b *board.Board, dark bool) *Model {
	theme := TokyoNightDay
	if dark {
		theme = TokyoNight
	}
	return &Model{
		ctx:     ctx,
		board:   b,
		styles:  NewStyles(theme),
		rows:    output.NewStyles(dark),
		keys:    DefaultKeyMap(),
		help:    help.New(),
		lists:   map[uuid.UUID]string{},
		loading: true,
	}
}

// Run shows the board until the user quits or ctx ends.
func Run(ctx context.Context, b *board.Board, dark bool) error {
	p := tea.NewProgram(New(ctx, b, dark), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

type loadedMsg struct {
	tasks []models.Task
	lists []models.List
}

type tasksMsg struct {
	filter due.Kind
	tasks  []models.Task
}

type toggledMsg struct {
	id        uuid.UUID
	title     string
	completed bool
	err       error
}

type errMsg struct{ err error }

func (m *Model) Init() tea.Cmd {
	return m.loadAll
}

// loadAll fetches tasks and lists concurrently.
func (m *Model) loadAll() tea.Msg {
	filter := m.taskFilter()
	var msg loadedMsg

	g, ctx := errgroup.WithContext(m.ctx)
	g.Go(func() error {
		var err error
		msg.tasks, err = m.board.Tasks(ctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		msg.lists, err = m.board.Lists(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return errMsg{err}
	}
	return msg
}

func (m *Model) taskFilter() service.TaskFilter {
	return service.TaskFilter{Due: m.filter}
}

func (m *Model) loadTasks() tea.Cmd {
	filter := m.taskFilter()
	return func() tea.Msg {
		tasks, err := m.board.Tasks(m.ctx, filter)
		if err != nil {
			return errMsg{err}
		}
		return tasksMsg{filter: filter.Due, tasks: tasks}
	}
}

func (m *Model) toggle(task models.Task) tea.Cmd {
	completed := !task.Completed
	return func() tea.Msg {
		_, err := m.board.ToggleCompleted(m.ctx, task.ID, completed)
		return toggledMsg{id: task.ID, title: task.Title, completed: completed, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = ContentWidth(msg.Width)
		return m, nil

	case loadedMsg:
		m.loading = false
		m.err = nil
		m.lists = map[uuid.UUID]string{}
		for _, l := range msg.lists {
			m.lists[l.ID] = l.Name
		}
		m.setTasks(msg.tasks)
		return m, nil

	case tasksMsg:
		if msg.filter != m.filter {
			return m, nil
		}
		m.loading = false
		m.err = nil
		m.setTasks(msg.tasks)
		return m, nil

	case toggledMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("could not update '%s': %v", msg.title, msg.err)
			m.err = msg.err
			m.setCompleted(msg.id, !msg.completed)
		} else {
			m.err = nil
			verb := "reopened"
			if msg.completed {
				verb = "done"
			}
			m.status = fmt.Sprintf("'%s' %s", msg.title, verb)
		}
		return m, m.loadTasks()

	case errMsg:
		m.loading = false
		m.err = msg.err
		m.status = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if len(m.tasks) == 0 {
			return m, nil
		}
		task := m.tasks[m.cursor]
		// The board shows the new state in its caches right away; mirror it
		// here so the row flips before the store answers.
		m.setCompleted(task.ID, !task.Completed)
		return m, m.toggle(task)
	case key.Matches(msg, m.keys.Today):
		return m, m.setFilter(due.Today)
	case key.Matches(msg, m.keys.Overdue):
		return m, m.setFilter(due.Overdue)
	case key.Matches(msg, m.keys.Upcoming):
		return m, m.setFilter(due.Upcoming)
	case key.Matches(msg, m.keys.All):
		return m, m.setFilter("")
	case key.Matches(msg, m.keys.Refresh):
		m.board.Refresh()
		m.status = "refreshing..."
		return m, m.loadTasks()
	}
	return m, nil
}

// setFilter switches buckets, showing cached tasks at once when there are any.
func (m *Model) setFilter(kind due.Kind) tea.Cmd {
	m.filter = kind
	m.status = ""
	if tasks, ok := m.board.Cached(m.taskFilter()); ok {
		m.setTasks(tasks)
	} else {
		m.loading = true
	}
	return m.loadTasks()
}

func (m *Model) setTasks(tasks []models.Task) {
	m.tasks = tasks
	if m.cursor >= len(m.tasks) {
		m.cursor = max(0, len(m.tasks)-1)
	}
}

func (m *Model) setCompleted(id uuid.UUID, completed bool) {
	next := make([]models.Task, len(m.tasks))
	for i, t := range m.tasks {
		if t.ID == id {
			t = t.WithCompleted(completed)
		}
		next[i] = t
	}
	m.tasks = next
}

func (m *Model) View() string {
	var b strings.Builder
	width := ContentWidth(m.width)

	b.WriteString(m.styles.Title.Render("duedeck"))
	for _, tab := range []struct {
		label string
		kind  due.Kind
	}{{"All", ""}, {"Today", due.Today}, {"Overdue", due.Overdue}, {"Upcoming", due.Upcoming}} {
		style := m.styles.Tab
		if tab.kind == m.filter {
			style = m.styles.TabActive
		}
		b.WriteString(style.Render(tab.label))
	}
	b.WriteString("\n\n")

	switch {
	case m.loading && len(m.tasks) == 0:
		b.WriteString(m.styles.Muted.Render("Loading..."))
		b.WriteString("\n")
	case len(m.tasks) == 0:
		b.WriteString(m.styles.Muted.Render("Nothing here."))
		b.WriteString("\n")
	}

	now := m.board.Now()
	for i, t := range m.tasks {
		check := "[ ]"
		title := output.Truncate(t.Title, max(width-40, 12))
		if t.Completed {
			check = "[x]"
			title = m.styles.Done.Render(title)
		}
		line := fmt.Sprintf("%s %s  %s  %s", check, title, m.rows.DueLabel(t, now), m.rows.Priority(t.Priority))
		if name := m.lists[t.ListID]; name != "" {
			line += "  " + name
		}
		for _, tag := range t.Tags {
			line += " " + m.rows.TagChip(tag)
		}
		style := m.styles.Item
		if i == m.cursor {
			style = m.styles.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(m.styles.StatusError.Render(m.status))
		} else {
			b.WriteString(m.styles.StatusOK.Render(m.status))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render(m.help.View(m.keys)))
	return CenterView(b.String(), m.width, m.height)
}
