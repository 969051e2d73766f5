package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v2"

	"github.com/kutbudev/duedeck/internal/output"
	"github.com/kutbudev/duedeck/internal/service"
	"github.com/kutbudev/duedeck/pkg/due"
	"github.com/kutbudev/duedeck/pkg/models"
)

const kanbanColumnWidth = 26

// NewKanbanCommand prints the due buckets side by side.
func NewKanbanCommand() *cli.Command {
	return &cli.Command{
		Name:    "kanban",
		Aliases: []string{"k"},
		Usage:   "Display tasks in Overdue, Today and Upcoming columns",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "list", Aliases: []string{"l"}, Usage: "only tasks in this list (name or id)"},
			&cli.BoolFlag{Name: "hide-done", Usage: "leave completed tasks out"},
		},
		Action: func(c *cli.Context) error {
			s, err := newSession(c)
			if err != nil {
				return err
			}
			defer s.Close()

			tasks, err := s.board.Tasks(c.Context, service.TaskFilter{List: c.String("list")})
			if err != nil {
				return err
			}
			if c.Bool("hide-done") {
				var open []models.Task
				for _, t := range tasks {
					if !t.Completed {
						open = append(open, t)
					}
				}
				tasks = open
			}

			now := s.board.Now()
			fmt.Fprintln(s.out, renderKanban(s.styles, due.Classify(tasks, now), now))
			return nil
		},
	}
}

// renderKanban lays out the buckets as columns, most pressing first.
func renderKanban(st output.Styles, groups due.Groups[models.Task], now time.Time) string {
	order := []due.Kind{due.Overdue, due.Today, due.Upcoming}
	columns := make([]string, 0, len(order))
	for _, kind := range order {
		tasks := groups.Get(kind)
		var b strings.Builder
		b.WriteString(st.Header.Render(fmt.Sprintf("%s (%d)", kind, len(tasks))))
		b.WriteString("\n")
		b.WriteString(st.Border.Render(strings.Repeat("─", kanbanColumnWidth-2)))
		for _, t := range tasks {
			b.WriteString("\n")
			b.WriteString(kanbanCard(st, t, now))
		}
		columns = append(columns, lipgloss.NewStyle().Width(kanbanColumnWidth).MarginRight(1).Render(b.String()))
	}

	board := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	summary := fmt.Sprintf("Summary: %d overdue, %d today, %d upcoming",
		len(groups.Overdue), len(groups.Today), len(groups.Upcoming))
	return board + "\n\n" + st.Muted.Render(summary)
}

func kanbanCard(st output.Styles, t models.Task, now time.Time) string {
	check, title := "[ ]", output.Truncate(t.Title, kanbanColumnWidth-6)
	if t.Completed {
		check, title = "[x]", st.Done.Render(title)
	}
	meta := output.ShortID(t.ID) + " " + st.Priority(t.Priority)
	if due.Bucket(t.DueDate, now) == due.Today {
		meta += " " + t.DueDate.In(now.Location()).Format("15:04")
	} else {
		meta += " " + t.DueDate.In(now.Location()).Format("01-02")
	}
	return check + " " + title + "\n    " + st.Muted.Render(meta)
}
