// Package mcp exposes the task board to MCP clients over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/kutbudev/duedeck/internal/board"
)

const instructions = `duedeck - personal task manager

Tasks have a title, an optional markdown description, a due date, a priority
(low, medium, high, urgent), one list and any number of tags.

- Call grouped_tasks to see what is due Today, what is Overdue and what is Upcoming.
- Call list_lists before create_task; every task needs a list.
- Due dates accept: now, today, tomorrow, "tomorrow 9:00", +3d, 2006-01-02 15:04 or RFC 3339.
- Task references accept a full id, an 8 character id prefix or a title.
- toggle_task sets the completed flag; pass completed=false to reopen a task.`

// Server wraps an MCP server whose tools read and write through a board.
type Server struct {
	board *board.Board
	log   logrus.FieldLogger
	srv   *mcp.Server
}

// NewServer registers the tools, resources and prompts. log may be nil.
func NewServer(b *board.Board, version string, log logrus.FieldLogger) *Server {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	s := &Server{board: b, log: log.WithField("component", "mcp")}
	s.srv = mcp.NewServer(
		&mcp.Implementation{Name: "duedeck", Version: version},
		&mcp.ServerOptions{
			Instructions:      instructions,
			CompletionHandler: s.complete,
		},
	)
	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// ServeStdio runs the server on stdin/stdout until ctx ends or the client
// disconnects.
func ServeStdio(ctx context.Context, b *board.Board, version string, log logrus.FieldLogger) error {
	if b == nil {
		return errors.New("board is required")
	}
	return NewServer(b, version, log).srv.Run(ctx, &mcp.StdioTransport{})
}

// wrapResultAsObject ensures the result is always an object (not array or
// null); clients reject bare arrays as structured output.
func wrapResultAsObject(result any) map[string]any {
	if result == nil {
		return map[string]any{"items": []any{}, "count": 0}
	}
	b, err := json.Marshal(result)
	if err != nil {
		return map[string]any{"data": result}
	}
	if len(b) > 0 && b[0] == '[' {
		var arr []any
		if err := json.Unmarshal(b, &arr); err == nil {
			if arr == nil {
				arr = []any{}
			}
			return map[string]any{"items": arr, "count": len(arr)}
		}
	}
	if len(b) > 0 && b[0] == '{' {
		var obj map[string]any
		if err := json.Unmarshal(b, &obj); err == nil {
			return obj
		}
	}
	return map[string]any{"data": result}
}

func boolPtr(b bool) *bool {
	return &b
}
