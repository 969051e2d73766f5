package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kutbudev/duedeck/pkg/due"
)

func (s *Server) registerPrompts() {
	s.srv.AddPrompt(&mcp.Prompt{
		Name:        "plan_day",
		Title:       "Plan My Day",
		Description: "Review overdue and today's tasks and suggest an order to work through them",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "hours",
				Description: "Hours available today",
				Required:    false,
			},
		},
	}, s.handlePlanDayPrompt)

	s.srv.AddPrompt(&mcp.Prompt{
		Name:        "capture",
		Title:       "Capture Tasks",
		Description: "Turn free-form notes into tasks",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "notes",
				Description: "Notes, one task per line",
				Required:    true,
			},
			{
				Name:        "list",
				Description: "List to put the tasks in",
				Required:    false,
			},
		},
	}, s.handleCapturePrompt)
}

func (s *Server) handlePlanDayPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	hours := req.Params.Arguments["hours"]

	var b strings.Builder
	b.WriteString("Help me plan my day.\n\n")
	groups, err := s.board.Grouped(ctx)
	if err != nil {
		b.WriteString("First call grouped_tasks to load my tasks.\n")
	} else {
		for _, kind := range []due.Kind{due.Overdue, due.Today} {
			open := 0
			for _, t := range groups.Get(kind) {
				if !t.Completed {
					open++
				}
			}
			fmt.Fprintf(&b, "- %s: %d open\n", kind, open)
		}
		b.WriteString("\nCall grouped_tasks for the details.\n")
	}
	b.WriteString(`
## Steps
1. Start with overdue tasks, highest priority first
2. Then today's tasks, urgent and high before medium and low
3. Suggest which upcoming tasks could move to today if time is left
4. Use toggle_task as I report tasks done`)
	if hours != "" {
		fmt.Fprintf(&b, "\n\nI have %s hours available; do not plan more than that.", hours)
	}

	return &mcp.GetPromptResult{
		Description: "Plan the day from overdue and today's tasks",
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: b.String()}},
		},
	}, nil
}

func (s *Server) handleCapturePrompt(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	notes := req.Params.Arguments["notes"]
	if strings.TrimSpace(notes) == "" {
		return nil, fmt.Errorf("notes is required")
	}
	list := req.Params.Arguments["list"]
	target := "Call list_lists and pick the list that fits each task best."
	if list != "" {
		target = fmt.Sprintf("Put every task in the list %q.", list)
	}

	text := fmt.Sprintf(`Turn these notes into tasks:

%s

## Rules
- One create_task call per actionable line; skip lines that are not tasks
- Keep titles short; move details into the description
- Infer a due date from the text (today when none is given)
- %s`, notes, target)

	return &mcp.GetPromptResult{
		Description: "Capture notes as tasks",
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: text}},
		},
	}, nil
}
