package commands

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/kutbudev/duedeck/internal/cli/interactive"
	"github.com/kutbudev/duedeck/internal/lookup"
	"github.com/kutbudev/duedeck/internal/output"
	"github.com/kutbudev/duedeck/internal/service"
)

const defaultTagColor = "#bb9af7"

// NewTagCommand creates all subcommands for the 'tag' command group.
func NewTagCommand() *cli.Command {
	return &cli.Command{
		Name:  "tag",
		Usage: "Manage tags",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List all tags",
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

					tags, err := s.board.Tags(c.Context)
					if err != nil {
						return err
					}
					if format != output.FormatTable {
						return output.Encode(s.out, format, tags)
					}
					s.styles.Tags(s.out, tags)
					return nil
				},
			},
			{
				Name:      "create",
				Aliases:   []string{"add"},
				Usage:     "Create a new tag",
				ArgsUsage: "[name]",
				Flags:     []cli.Flag{colorFlag(defaultTagColor)},
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return fmt.Errorf("tag name is required")
					}
					s, err := newSession(c)
					if err != nil {
						return err
					}
					defer s.Close()

					tag, err := s.board.CreateTag(c.Context, service.TagInput{Name: joinArgs(c), Color: c.String("color")})
					if err != nil {
						return err
					}
					fmt.Fprintf(s.out, "✅ Tag '%s' created successfully!\n", tag.Name)
					fmt.Fprintf(s.out, "ID: %s\n", tag.ID.String())
					return nil
				},
			},
			{
				Name:      "rm",
				Aliases:   []string{"delete"},
				Usage:     "Delete a tag and detach it from its tasks",
				ArgsUsage: "[tag]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return fmt.Errorf("tag is required")
					}
					s, err := newSession(c)
					if err != nil {
						return err
					}
					defer s.Close()

					tags, err := s.board.Tags(c.Context)
					if err != nil {
						return err
					}
					tag, err := lookup.Tag(tags, joinArgs(c))
					if err != nil {
						return err
					}
					if !c.Bool("yes") {
						ok, err := interactive.Confirm(fmt.Sprintf("Delete tag '%s'?", tag.Name))
						if err != nil {
							return err
						}
						if !ok {
							fmt.Fprintln(s.out, "Aborted.")
							return nil
						}
					}
					if _, err := s.board.DeleteTag(c.Context, tag.ID); err != nil {
						return err
					}
					fmt.Fprintf(s.out, "🗑️  Tag '%s' deleted\n", tag.Name)
					return nil
				},
			},
		},
	}
}
