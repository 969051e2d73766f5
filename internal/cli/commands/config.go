package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/kutbudev/duedeck/internal/config"
	"github.com/kutbudev/duedeck/internal/credentials"
)

// NewConfigCommand manages ~/.duedeck/config.json and the stored API token.
func NewConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show and change CLI settings",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the current configuration",
				Action: func(c *cli.Context) error {
					cfg, err := config.LoadConfig()
					if err != nil {
						return err
					}
					path, _ := config.GetConfigPath()
					store, err := credentials.New()
					if err != nil {
						return err
					}
					token := "(not set)"
					if t, err := store.Load(); err == nil {
						token = maskToken(t) + " (" + store.Mode() + ")"
					} else if !errors.Is(err, credentials.ErrNoToken) {
						token = "error: " + err.Error()
					}

					w := c.App.Writer
					fmt.Fprintf(w, "Config file:  %s\n", path)
					fmt.Fprintf(w, "Server URL:   %s\n", cfg.BaseURL())
					fmt.Fprintf(w, "Default list: %s\n", valueOr(cfg.DefaultList, "(not set)"))
					fmt.Fprintf(w, "Theme:        %s\n", valueOr(cfg.Theme, "dark"))
					fmt.Fprintf(w, "API token:    %s\n", token)
					return nil
				},
			},
			{
				Name:      "set-url",
				Usage:     "Set the API base URL",
				ArgsUsage: "[url]",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return fmt.Errorf("server URL is required")
					}
					return updateConfig(c, func(cfg *config.Config) error {
						url := strings.TrimRight(c.Args().First(), "/")
						if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
							return fmt.Errorf("server URL must start with http:// or https://")
						}
						cfg.ServerURL = url
						return nil
					}, "✅ Server URL saved")
				},
			},
			{
				Name:      "set-list",
				Usage:     "Set the list `task add` uses when --list is omitted",
				ArgsUsage: "[name]",
				Action: func(c *cli.Context) error {
					return updateConfig(c, func(cfg *config.Config) error {
						cfg.DefaultList = joinArgs(c)
						return nil
					}, "✅ Default list saved")
				},
			},
			{
				Name:      "set-theme",
				Usage:     "Choose the dark or light theme",
				ArgsUsage: "[dark|light]",
				Action: func(c *cli.Context) error {
					return updateConfig(c, func(cfg *config.Config) error {
						theme := strings.ToLower(c.Args().First())
						if theme != "dark" && theme != "light" {
							return fmt.Errorf("theme must be dark or light")
						}
						cfg.Theme = theme
						return nil
					}, "✅ Theme saved")
				},
			},
			{
				Name:      "set-token",
				Usage:     "Store the API token in the system keyring",
				ArgsUsage: "[token]",
				Action: func(c *cli.Context) error {
					token := c.Args().First()
					if token == "" {
						var err error
						if token, err = readSecret(c, "API token: "); err != nil {
							return err
						}
					}
					store, err := credentials.New()
					if err != nil {
						return err
					}
					if err := store.Save(token); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "✅ API token saved (%s)\n", store.Mode())
					return nil
				},
			},
			{
				Name:  "clear-token",
				Usage: "Remove the stored API token",
				Action: func(c *cli.Context) error {
					store, err := credentials.New()
					if err != nil {
						return err
					}
					if err := store.Delete(); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "✅ API token removed")
					return nil
				},
			},
		},
	}
}

func updateConfig(c *cli.Context, change func(*config.Config) error, done string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := change(cfg); err != nil {
		return err
	}
	if err := config.SaveConfig(cfg); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, done)
	return nil
}

// readSecret reads a line from stdin without echo when stdin is a terminal.
func readSecret(c *cli.Context, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("token is required when stdin is not a terminal")
	}
	fmt.Fprint(c.App.ErrWriter, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(c.App.ErrWriter)
	if err != nil {
		return "", fmt.Errorf("could not read token: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func maskToken(t string) string {
	if len(t) <= 8 {
		return strings.Repeat("*", len(t))
	}
	return t[:4] + strings.Repeat("*", len(t)-8) + t[len(t)-4:]
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
