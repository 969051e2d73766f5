package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/kutbudev/duedeck/internal/mcp"
)

func NewMcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "MCP (Model Context Protocol) server management",
		Subcommands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start MCP server (stdio)",
				Action: func(c *cli.Context) error {
					s, err := newSession(c)
					if err != nil {
						return err
					}
					defer s.Close()

					// stdout carries the protocol; logs go to stderr only.
					log := logrus.New()
					log.SetOutput(c.App.ErrWriter)
					log.SetLevel(logrus.WarnLevel)
					if c.Bool("verbose") {
						log.SetLevel(logrus.DebugLevel)
					}
					return mcp.ServeStdio(c.Context, s.board, c.App.Version, log)
				},
			},
			{
				Name:  "config",
				Usage: "Print MCP config examples for clients",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "client",
						Aliases: []string{"c"},
						Usage:   "target client (generic|codex)",
						Value:   "generic",
					},
				},
				Action: func(c *cli.Context) error {
					switch strings.ToLower(c.String("client")) {
					case "codex":
						printCodexConfig(c)
					default:
						printGenericConfig(c)
					}
					return nil
				},
			},
			{
				Name:  "tools",
				Usage: "List available MCP tools",
				Action: func(c *cli.Context) error {
					b, err := json.MarshalIndent(mcp.ToolDefinitions(), "", "  ")
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, string(b))
					return nil
				},
			},
		},
	}
}

func printGenericConfig(c *cli.Context) {
	cfg := map[string]any{
		"mcpServers": map[string]any{
			"duedeck": map[string]any{
				"command": "duedeck",
				"args":    []string{"mcp", "serve"},
			},
		},
	}
	b, _ := json.MarshalIndent(cfg, "", "  ")
	fmt.Fprintln(c.App.Writer, string(b))
}

func printCodexConfig(c *cli.Context) {
	w := c.App.Writer
	fmt.Fprintln(w, "# Add the following to ~/.codex/config.toml (merge with existing settings)")
	fmt.Fprintln(w, "[mcp_servers.duedeck]")
	fmt.Fprintln(w, "command = \"duedeck\"")
	fmt.Fprintln(w, "args = [\"mcp\", \"serve\"]")
	fmt.Fprintln(w, "enabled = true")
}
