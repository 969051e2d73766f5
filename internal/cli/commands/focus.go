package commands

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kutbudev/duedeck/internal/service"
	"github.com/kutbudev/duedeck/pkg/due"
	"github.com/kutbudev/duedeck/pkg/models"
)

const defaultFocusCount = 5

// focusOrder ranks buckets for `focus`: overdue work comes first.
var focusOrder = map[due.Kind]int{due.Overdue: 0, due.Today: 1, due.Upcoming: 2}

// nextTasks picks up to n open tasks, most pressing first: by bucket, then
// higher priority, then earlier due date.
func nextTasks(tasks []models.Task, now time.Time, n int) []models.Task {
	open := []models.Task{}
	for _, t := range tasks {
		if !t.Completed {
			open = append(open, t)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		a, b := open[i], open[j]
		if ka, kb := focusOrder[due.Bucket(a.DueDate, now)], focusOrder[due.Bucket(b.DueDate, now)]; ka != kb {
			return ka < kb
		}
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		return a.DueDate.Before(b.DueDate)
	})
	if len(open) > n {
		open = open[:n]
	}
	return open
}

// NewFocusCommand shows what to work on next.
func NewFocusCommand() *cli.Command {
	return &cli.Command{
		Name:      "focus",
		Aliases:   []string{"next"},
		Usage:     "Show the open tasks to work on next",
		ArgsUsage: "[count]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "list", Aliases: []string{"l"}, Usage: "only tasks in this list (name or id)"},
			outputFlag(),
		},
		Action: func(c *cli.Context) error {
			n := defaultFocusCount
			if c.NArg() > 0 {
				var err error
				if n, err = strconv.Atoi(c.Args().First()); err != nil || n < 1 {
					return fmt.Errorf("count must be a positive number, got %q", c.Args().First())
				}
			}

			s, err := newSession(c)
			if err != nil {
				return err
			}
			defer s.Close()

			tasks, err := s.board.Tasks(c.Context, service.TaskFilter{List: c.String("list")})
			if err != nil {
				return err
			}
			next := nextTasks(tasks, s.board.Now(), n)
			if len(next) == 0 && c.String("output") == "table" {
				fmt.Fprintln(s.out, "🎉 Nothing open. Enjoy the break.")
				return nil
			}
			return s.printTasks(c, next)
		},
	}
}
