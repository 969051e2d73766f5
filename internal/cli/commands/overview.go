package commands

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/kutbudev/duedeck/internal/output"
	"github.com/kutbudev/duedeck/internal/service"
	"github.com/kutbudev/duedeck/pkg/due"
	"github.com/kutbudev/duedeck/pkg/models"
)

// listSummary counts the tasks of one list. Overdue, Today and Upcoming
// count open tasks only.
type listSummary struct {
	Name     string `json:"name"`
	Open     int    `json:"open"`
	Overdue  int    `json:"overdue"`
	Today    int    `json:"today"`
	Upcoming int    `json:"upcoming"`
	Done     int    `json:"done"`
}

func (s *listSummary) add(t models.Task, now time.Time) {
	if t.Completed {
		s.Done++
		return
	}
	s.Open++
	switch due.Bucket(t.DueDate, now) {
	case due.Overdue:
		s.Overdue++
	case due.Today:
		s.Today++
	default:
		s.Upcoming++
	}
}

// summarize returns one row per list in list order, then a total row.
func summarize(lists []models.List, tasks []models.Task, now time.Time) []listSummary {
	index := make(map[uuid.UUID]int, len(lists))
	rows := make([]listSummary, 0, len(lists)+1)
	for i, l := range lists {
		index[l.ID] = i
		rows = append(rows, listSummary{Name: l.Name})
	}
	total := listSummary{Name: "total"}
	for _, t := range tasks {
		if i, ok := index[t.ListID]; ok {
			rows[i].add(t, now)
		}
		total.add(t, now)
	}
	return append(rows, total)
}

// NewOverviewCommand creates the overview command.
func NewOverviewCommand() *cli.Command {
	return &cli.Command{
		Name:    "overview",
		Aliases: []string{"stats"},
		Usage:   "Count open, overdue and done tasks per list",
		Flags:   []cli.Flag{outputFlag()},
		Action: func(c *cli.Context) error {
			format, err := output.ParseFormat(c.String("output"))
			if err != nil {
				return err
			}
			s, err := newSession(c)
			if err != nil {
				return err
			}
			defer s.Close()

			lists, err := s.board.Lists(c.Context)
			if err != nil {
				return err
			}
			tasks, err := s.board.Tasks(c.Context, service.TaskFilter{})
			if err != nil {
				return err
			}

			rows := summarize(lists, tasks, s.board.Now())
			if format != output.FormatTable {
				return output.Encode(s.out, format, rows)
			}
			renderOverview(s.out, s.styles, rows)
			return nil
		},
	}
}

func renderOverview(w io.Writer, st output.Styles, rows []listSummary) {
	t := table.New().
		BorderStyle(st.Border).
		Headers("LIST", "OPEN", "OVERDUE", "TODAY", "UPCOMING", "DONE")
	for _, r := range rows {
		overdue := strconv.Itoa(r.Overdue)
		if r.Overdue > 0 {
			overdue = st.Overdue.Render(overdue)
		}
		t.Row(r.Name, strconv.Itoa(r.Open), overdue, strconv.Itoa(r.Today), strconv.Itoa(r.Upcoming), strconv.Itoa(r.Done))
	}
	fmt.Fprintln(w, t.Render())
}
