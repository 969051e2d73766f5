package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/kutbudev/duedeck/internal/api"
	"github.com/kutbudev/duedeck/internal/board"
	"github.com/kutbudev/duedeck/internal/config"
	"github.com/kutbudev/duedeck/internal/credentials"
	"github.com/kutbudev/duedeck/internal/logging"
	"github.com/kutbudev/duedeck/internal/output"
	"github.com/kutbudev/duedeck/internal/service"
	"github.com/kutbudev/duedeck/pkg/models"
)

// storeFactory builds the store commands talk to. Tests swap it for a fake.
var storeFactory = func(baseURL, token string, log logrus.FieldLogger) service.Store {
	return api.NewClient(baseURL, token, log)
}

// GlobalFlags are accepted before any command.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "server",
			Usage: "API base URL (overrides the config file and API_BASE_URL)",
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "API token (overrides the stored token)",
			EnvVars: []string{"DUEDECK_TOKEN"},
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "log requests and cache activity to stderr",
		},
	}
}

// session bundles what an action needs.
type session struct {
	cfg    *config.Config
	board  *board.Board
	styles output.Styles
	out    io.Writer
}

func newSession(c *cli.Context) (*session, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}

	log := logging.Discard()
	if c.Bool("verbose") {
		log = logrus.New()
		log.SetOutput(c.App.ErrWriter)
		log.SetLevel(logrus.DebugLevel)
	}

	baseURL := cfg.BaseURL()
	if s := c.String("server"); s != "" {
		baseURL = strings.TrimRight(s, "/")
	}

	token := c.String("token")
	if token == "" {
		token, err = loadToken()
		if err != nil {
			return nil, err
		}
	}

	return &session{
		cfg:    cfg,
		board:  board.New(storeFactory(baseURL, token, log), log),
		styles: output.NewStyles(cfg.IsDark()),
		out:    c.App.Writer,
	}, nil
}

func loadToken() (string, error) {
	store, err := credentials.New()
	if err != nil {
		return "", err
	}
	token, err := store.Load()
	if errors.Is(err, credentials.ErrNoToken) {
		return "", nil
	}
	return token, err
}

func (s *session) Close() {
	s.board.Close()
}

// listNames maps list ids to names for table output. Failures leave the
// column empty.
func (s *session) listNames(ctx context.Context) map[uuid.UUID]string {
	names := map[uuid.UUID]string{}
	lists, err := s.board.Lists(ctx)
	if err != nil {
		return names
	}
	for _, l := range lists {
		names[l.ID] = l.Name
	}
	return names
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output format: table, json or yaml",
		Value:   string(output.FormatTable),
	}
}

func colorFlag(defaultColor string) cli.Flag {
	return &cli.StringFlag{
		Name:    "color",
		Aliases: []string{"c"},
		Usage:   "hex color like #7aa2f7",
		Value:   defaultColor,
	}
}

// printTasks writes tasks in the format chosen by --output.
func (s *session) printTasks(c *cli.Context, tasks []models.Task) error {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return output.Encode(s.out, format, tasks)
	}
	s.styles.Tasks(s.out, tasks, s.listNames(c.Context), s.board.Now())
	return nil
}

func joinArgs(c *cli.Context) string {
	return strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
}
