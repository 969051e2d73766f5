package commands

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v2"

	"github.com/kutbudev/duedeck/internal/cli/interactive"
	"github.com/kutbudev/duedeck/internal/lookup"
	"github.com/kutbudev/duedeck/internal/output"
	"github.com/kutbudev/duedeck/internal/service"
	"github.com/kutbudev/duedeck/pkg/due"
	"github.com/kutbudev/duedeck/pkg/models"
)

// NewTaskCommand creates all subcommands for the 'task' command group.
func NewTaskCommand() *cli.Command {
	return &cli.Command{
		Name:    "task",
		Aliases: []string{"t"},
		Usage:   "Manage tasks",
		Subcommands: []*cli.Command{
			taskListCmd(),
			taskGroupedCmd(),
			taskAddCmd(),
			taskShowCmd(),
			taskEditCmd(),
			taskDoneCmd(),
			taskUndoCmd(),
			taskRemoveCmd(),
		},
	}
}

// taskListCmd lists tasks, optionally filtered by list and due bucket.
func taskListCmd() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List tasks",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "list", Aliases: []string{"l"}, Usage: "only tasks in this list (name or id)"},
			&cli.StringFlag{Name: "due", Aliases: []string{"d"}, Usage: "only tasks due: today, overdue or upcoming"},
			outputFlag(),
		},
		Action: func(c *cli.Context) error {
			filter := service.TaskFilter{List: c.String("list")}
			if s := c.String("due"); s != "" {
				kind, err := due.ParseKind(s)
				if err != nil {
					return err
				}
				filter.Due = kind
			}

			s, err := newSession(c)
			if err != nil {
				return err
			}
			defer s.Close()

			tasks, err := s.board.Tasks(c.Context, filter)
			if err != nil {
				return err
			}
			return s.printTasks(c, tasks)
		},
	}
}

// taskGroupedCmd prints tasks under Today, Overdue and Upcoming.
func taskGroupedCmd() *cli.Command {
	return &cli.Command{
		Name:    "grouped",
		Aliases: []string{"g"},
		Usage:   "Show tasks grouped into Today, Overdue and Upcoming",
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

			groups, err := s.board.Grouped(c.Context)
			if err != nil {
				return err
			}
			if format != output.FormatTable {
				return output.Encode(s.out, format, groups)
			}
			s.styles.Groups(s.out, groups, s.listNames(c.Context), s.board.Now())
			return nil
		},
	}
}

// taskAddCmd creates a task from flags, or from prompts with -i.
func taskAddCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Aliases:   []string{"create"},
		Usage:     "Create a new task",
		ArgsUsage: "[title]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "due", Aliases: []string{"d"}, Usage: "due date: today, tomorrow 9:00, +3d, 2006-01-02 15:04", Value: "today"},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "low, medium, high or urgent (l/m/h/u)", Value: string(models.PriorityLow)},
			&cli.StringFlag{Name: "list", Aliases: []string{"l"}, Usage: "list name or id (defaults to the configured list)"},
			&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "tag name or id, repeatable"},
			&cli.StringFlag{Name: "description", Usage: "markdown description"},
			&cli.BoolFlag{Name: "interactive", Aliases: []string{"i"}, Usage: "prompt for every field"},
			&cli.BoolFlag{Name: "copy", Usage: "copy the new task id to the clipboard"},
		},
		Action: func(c *cli.Context) error {
			s, err := newSession(c)
			if err != nil {
				return err
			}
			defer s.Close()

			lists, err := s.board.Lists(c.Context)
			if err != nil {
				return err
			}
			tags, err := s.board.Tags(c.Context)
			if err != nil {
				return err
			}

			listRef := c.String("list")
			if listRef == "" {
				listRef = s.cfg.DefaultList
			}

			var in service.TaskInput
			if c.Bool("interactive") {
				in, err = interactive.PromptTask(lists, tags, interactive.TaskDefaults{
					Title:    joinArgs(c),
					ListName: listRef,
					Due:      c.String("due"),
				}, s.board.Now())
				if err != nil {
					return err
				}
			} else {
				if c.NArg() == 0 {
					return fmt.Errorf("task title is required")
				}
				in, err = taskInputFromFlags(c, s, lists, tags, listRef)
				if err != nil {
					return err
				}
				in.Title = joinArgs(c)
			}

			task, err := s.board.CreateTask(c.Context, in)
			if err != nil {
				return err
			}

			fmt.Fprintf(s.out, "✅ Task '%s' created successfully!\n", task.Title)
			fmt.Fprintf(s.out, "ID: %s\n", task.ID.String())
			if c.Bool("copy") {
				if err := clipboard.WriteAll(task.ID.String()); err != nil {
					fmt.Fprintf(c.App.ErrWriter, "could not copy to clipboard: %v\n", err)
				} else {
					fmt.Fprintln(s.out, "📋 ID copied to clipboard")
				}
			}
			return nil
		},
	}
}

func taskInputFromFlags(c *cli.Context, s *session, lists []models.List, tags []models.Tag, listRef string) (service.TaskInput, error) {
	var in service.TaskInput
	if listRef == "" && len(lists) == 1 {
		listRef = lists[0].ID.String()
	}
	if listRef == "" {
		return in, errors.New("list is required (use --list or 'duedeck config set-list')")
	}
	list, err := lookup.List(lists, listRef)
	if err != nil {
		return in, err
	}
	dueAt, err := due.Parse(c.String("due"), s.board.Now())
	if err != nil {
		return in, err
	}
	priority, err := models.ParsePriority(c.String("priority"))
	if err != nil {
		return in, err
	}
	tagIDs, err := lookup.TagIDs(tags, c.StringSlice("tag"))
	if err != nil {
		return in, err
	}

	in = service.TaskInput{
		DueDate:  dueAt,
		Priority: priority,
		ListID:   list.ID,
		TagIDs:   tagIDs,
	}
	if d := c.String("description"); d != "" {
		in.Description = &d
	}
	return in, nil
}

// taskShowCmd shows one task, rendering its description as markdown.
func taskShowCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Aliases:   []string{"info"},
		Usage:     "Show details for a task",
		ArgsUsage: "[task]",
		Flags: []cli.Flag{
			outputFlag(),
			&cli.BoolFlag{Name: "raw", Usage: "print markdown without rendering"},
		},
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

			task, err := resolveTask(c.Context, s.board, joinArgs(c))
			if err != nil {
				return err
			}
			if format != output.FormatTable {
				return output.Encode(s.out, format, task)
			}

			listName := s.listNames(c.Context)[task.ListID]
			md := output.TaskMarkdown(*task, listName, s.board.Now())
			if c.Bool("raw") {
				fmt.Fprint(s.out, md)
				return nil
			}
			r, err := glamour.NewTermRenderer(
				glamour.WithStandardStyle(s.styles.Theme()),
				glamour.WithWordWrap(80),
			)
			if err != nil {
				return err
			}
			rendered, err := r.Render(md)
			if err != nil {
				return err
			}
			fmt.Fprint(s.out, rendered)
			return nil
		},
	}
}

// taskEditCmd changes the fields given as flags and keeps the rest.
func taskEditCmd() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Aliases:   []string{"update"},
		Usage:     "Update a task",
		ArgsUsage: "[task]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Usage: "new title"},
			&cli.StringFlag{Name: "description", Usage: "new description (empty clears it)"},
			&cli.StringFlag{Name: "due", Aliases: []string{"d"}, Usage: "new due date"},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "new priority"},
			&cli.StringFlag{Name: "list", Aliases: []string{"l"}, Usage: "move to this list"},
			&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "replace tags, repeatable"},
			&cli.BoolFlag{Name: "clear-tags", Usage: "remove all tags"},
		},
		Action: func(c *cli.Context) error {
			s, err := newSession(c)
			if err != nil {
				return err
			}
			defer s.Close()

			task, err := resolveTask(c.Context, s.board, joinArgs(c))
			if err != nil {
				return err
			}

			in := service.TaskInput{
				Title:       task.Title,
				Description: task.Description,
				Completed:   task.Completed,
				DueDate:     task.DueDate,
				Priority:    task.Priority,
				ListID:      task.ListID,
				TagIDs:      task.TagIDs(),
			}
			if c.IsSet("title") {
				in.Title = c.String("title")
			}
			if c.IsSet("description") {
				in.Description = nil
				if d := c.String("description"); d != "" {
					in.Description = &d
				}
			}
			if c.IsSet("due") {
				if in.DueDate, err = due.Parse(c.String("due"), s.board.Now()); err != nil {
					return err
				}
			}
			if c.IsSet("priority") {
				if in.Priority, err = models.ParsePriority(c.String("priority")); err != nil {
					return err
				}
			}
			if c.IsSet("list") {
				lists, err := s.board.Lists(c.Context)
				if err != nil {
					return err
				}
				list, err := lookup.List(lists, c.String("list"))
				if err != nil {
					return err
				}
				in.ListID = list.ID
			}
			if c.Bool("clear-tags") {
				in.TagIDs = nil
			}
			if c.IsSet("tag") {
				tags, err := s.board.Tags(c.Context)
				if err != nil {
					return err
				}
				if in.TagIDs, err = lookup.TagIDs(tags, c.StringSlice("tag")); err != nil {
					return err
				}
			}

			updated, err := s.board.UpdateTask(c.Context, task.ID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out, "✅ Task '%s' updated successfully!\n", updated.Title)
			return nil
		},
	}
}

func taskDoneCmd() *cli.Command {
	return toggleCmd("done", "Mark tasks as completed", true)
}

func taskUndoCmd() *cli.Command {
	return toggleCmd("undo", "Mark tasks as not completed", false)
}

// toggleCmd sets the completed flag of every referenced task.
func toggleCmd(name, usage string, completed bool) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "[task...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return ErrTaskRefRequired
			}
			s, err := newSession(c)
			if err != nil {
				return err
			}
			defer s.Close()

			for _, ref := range c.Args().Slice() {
				task, err := resolveTask(c.Context, s.board, ref)
				if err != nil {
					return err
				}
				if _, err := s.board.ToggleCompleted(c.Context, task.ID, completed); err != nil {
					return fmt.Errorf("could not update '%s': %w", task.Title, err)
				}
				if completed {
					fmt.Fprintf(s.out, "✅ Task '%s' marked done\n", task.Title)
				} else {
					fmt.Fprintf(s.out, "↩️  Task '%s' reopened\n", task.Title)
				}
			}
			return nil
		},
	}
}

// taskRemoveCmd deletes a task after confirmation.
func taskRemoveCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Aliases:   []string{"delete"},
		Usage:     "Delete a task",
		ArgsUsage: "[task]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"},
		},
		Action: func(c *cli.Context) error {
			s, err := newSession(c)
			if err != nil {
				return err
			}
			defer s.Close()

			task, err := resolveTask(c.Context, s.board, joinArgs(c))
			if err != nil {
				return err
			}
			if !c.Bool("yes") {
				ok, err := interactive.Confirm(fmt.Sprintf("Delete task '%s'?", task.Title))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(s.out, "Aborted.")
					return nil
				}
			}
			if _, err := s.board.DeleteTask(c.Context, task.ID); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "🗑️  Task '%s' deleted\n", task.Title)
			return nil
		},
	}
}
