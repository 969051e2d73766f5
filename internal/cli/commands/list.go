package commands

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/kutbudev/duedeck/internal/cli/interactive"
	"github.com/kutbudev/duedeck/internal/lookup"
	"github.com/kutbudev/duedeck/internal/output"
	"github.com/kutbudev/duedeck/internal/service"
)

const defaultListColor = "#7aa2f7"

// NewListCommand creates all subcommands for the 'list' command group.
func NewListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"l"},
		Usage:   "Manage task lists",
		Subcommands: []*cli.Command{
			listListCmd(),
			listCreateCmd(),
			listRenameCmd(),
			listRemoveCmd(),
		},
	}
}

func listListCmd() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List all lists",
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
			if format != output.FormatTable {
				return output.Encode(s.out, format, lists)
			}
			s.styles.Lists(s.out, lists)
			return nil
		},
	}
}

func listCreateCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Aliases:   []string{"add"},
		Usage:     "Create a new list",
		ArgsUsage: "[name]",
		Flags:     []cli.Flag{colorFlag(defaultListColor)},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("list name is required")
			}
			s, err := newSession(c)
			if err != nil {
				return err
			}
			defer s.Close()

			list, err := s.board.CreateList(c.Context, service.ListInput{Name: joinArgs(c), Color: c.String("color")})
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out, "✅ List '%s' created successfully!\n", list.Name)
			fmt.Fprintf(s.out, "ID: %s\n", list.ID.String())
			return nil
		},
	}
}

func listRenameCmd() *cli.Command {
	return &cli.Command{
		Name:      "rename",
		Usage:     "Rename a list",
		ArgsUsage: "[list] [new-name]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fmt.Errorf("list and new name are required")
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
			list, err := lookup.List(lists, c.Args().First())
			if err != nil {
				return err
			}
			newName := joinTail(c)
			renamed, err := s.board.RenameList(c.Context, list.ID, newName)
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out, "✅ List '%s' renamed to '%s'\n", list.Name, renamed.Name)
			return nil
		},
	}
}

func listRemoveCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Aliases:   []string{"delete"},
		Usage:     "Delete an empty list",
		ArgsUsage: "[list]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("list is required")
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
			list, err := lookup.List(lists, joinArgs(c))
			if err != nil {
				return err
			}
			if !c.Bool("yes") {
				ok, err := interactive.Confirm(fmt.Sprintf("Delete list '%s'?", list.Name))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(s.out, "Aborted.")
					return nil
				}
			}
			if _, err := s.board.DeleteList(c.Context, list.ID); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "🗑️  List '%s' deleted\n", list.Name)
			return nil
		},
	}
}

// joinTail joins every argument after the first.
func joinTail(c *cli.Context) string {
	return strings.TrimSpace(strings.Join(c.Args().Tail(), " "))
}
