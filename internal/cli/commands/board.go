package commands

import (
	"errors"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/kutbudev/duedeck/internal/tui"
)

// NewBoardCommand opens the interactive board.
func NewBoardCommand() *cli.Command {
	return &cli.Command{
		Name:    "board",
		Aliases: []string{"b"},
		Usage:   "Open the interactive board (space toggles, t/o/u/a filter)",
		Action: func(c *cli.Context) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("board needs a terminal; use 'duedeck task grouped' instead")
			}

			s, err := newSession(c)
			if err != nil {
				return err
			}
			defer s.Close()

			return tui.Run(c.Context, s.board, s.cfg.IsDark())
		},
	}
}
