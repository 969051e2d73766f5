package mcp

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kutbudev/duedeck/internal/lookup"
	"github.com/kutbudev/duedeck/internal/service"
	"github.com/kutbudev/duedeck/pkg/due"
	"github.com/kutbudev/duedeck/pkg/models"
)

var (
	listTasksTool = &mcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks, open first, then by due date. Optional filters: list (name or id) and due (Today, Overdue or Upcoming).",
		Annotations: &mcp.ToolAnnotations{Title: "List Tasks", ReadOnlyHint: true, OpenWorldHint: boolPtr(false)},
	}
	groupedTasksTool = &mcp.Tool{
		Name:        "grouped_tasks",
		Description: "Tasks grouped into today, overdue and upcoming, relative to the current time.",
		Annotations: &mcp.ToolAnnotations{Title: "Grouped Tasks", ReadOnlyHint: true, OpenWorldHint: boolPtr(false)},
	}
	createTaskTool = &mcp.Tool{
		Name:        "create_task",
		Description: "Create a task. REQUIRED: title, due, list. OPTIONAL: description (markdown), priority (low|medium|high|urgent), tags (names).",
		Annotations: &mcp.ToolAnnotations{Title: "Create Task", DestructiveHint: boolPtr(false), OpenWorldHint: boolPtr(false)},
	}
	toggleTaskTool = &mcp.Tool{
		Name:        "toggle_task",
		Description: "Mark a task completed (completed=true) or reopen it (completed=false).",
		Annotations: &mcp.ToolAnnotations{Title: "Toggle Task", IdempotentHint: true, DestructiveHint: boolPtr(false), OpenWorldHint: boolPtr(false)},
	}
	deleteTaskTool = &mcp.Tool{
		Name:        "delete_task",
		Description: "Delete a task permanently.",
		Annotations: &mcp.ToolAnnotations{Title: "Delete Task", DestructiveHint: boolPtr(true), OpenWorldHint: boolPtr(false)},
	}
	listListsTool = &mcp.Tool{
		Name:        "list_lists",
		Description: "List all task lists with their colors.",
		Annotations: &mcp.ToolAnnotations{Title: "List Lists", ReadOnlyHint: true, OpenWorldHint: boolPtr(false)},
	}
	listTagsTool = &mcp.Tool{
		Name:        "list_tags",
		Description: "List all tags with their colors and chip backgrounds.",
		Annotations: &mcp.ToolAnnotations{Title: "List Tags", ReadOnlyHint: true, OpenWorldHint: boolPtr(false)},
	}
)

func (s *Server) registerTools() {
	mcp.AddTool(s.srv, listTasksTool, s.handleListTasks)
	mcp.AddTool(s.srv, groupedTasksTool, s.handleGroupedTasks)
	mcp.AddTool(s.srv, createTaskTool, s.handleCreateTask)
	mcp.AddTool(s.srv, toggleTaskTool, s.handleToggleTask)
	mcp.AddTool(s.srv, deleteTaskTool, s.handleDeleteTask)
	mcp.AddTool(s.srv, listListsTool, s.handleListLists)
	mcp.AddTool(s.srv, listTagsTool, s.handleListTags)
}

type toolDef struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolDefinitions describes the registered tools for `duedeck mcp tools`.
func ToolDefinitions() []toolDef {
	tools := []*mcp.Tool{listTasksTool, groupedTasksTool, createTaskTool, toggleTaskTool, deleteTaskTool, listListsTool, listTagsTool}
	defs := make([]toolDef, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, toolDef{Name: t.Name, Description: t.Description})
	}
	return defs
}

type EmptyInput struct{}

type ListTasksInput struct {
	List string `json:"list,omitempty" jsonschema:"list name or id"`
	Due  string `json:"due,omitempty" jsonschema:"Today, Overdue or Upcoming"`
}

func (s *Server) handleListTasks(ctx context.Context, req *mcp.CallToolRequest, input ListTasksInput) (*mcp.CallToolResult, map[string]any, error) {
	filter := service.TaskFilter{List: strings.TrimSpace(input.List)}
	if input.Due != "" {
		kind, err := due.ParseKind(input.Due)
		if err != nil {
			return nil, nil, err
		}
		filter.Due = kind
	}
	tasks, err := s.board.Tasks(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return nil, wrapResultAsObject(tasks), nil
}

func (s *Server) handleGroupedTasks(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, map[string]any, error) {
	groups, err := s.board.Grouped(ctx)
	if err != nil {
		return nil, nil, err
	}
	out := wrapResultAsObject(groups)
	for _, k := range []string{"today", "overdue", "upcoming"} {
		if out[k] == nil {
			out[k] = []any{}
		}
	}
	out["count"] = groups.Len()
	return nil, out, nil
}

type CreateTaskInput struct {
	Title       string   `json:"title" jsonschema:"short title"`
	Due         string   `json:"due" jsonschema:"now, today, tomorrow 9:00, +3d, 2006-01-02 15:04 or RFC 3339"`
	List        string   `json:"list" jsonschema:"list name or id"`
	Description string   `json:"description,omitempty" jsonschema:"markdown description"`
	Priority    string   `json:"priority,omitempty" jsonschema:"low, medium, high or urgent"`
	Tags        []string `json:"tags,omitempty" jsonschema:"tag names or ids"`
}

func (s *Server) handleCreateTask(ctx context.Context, req *mcp.CallToolRequest, input CreateTaskInput) (*mcp.CallToolResult, map[string]any, error) {
	lists, err := s.board.Lists(ctx)
	if err != nil {
		return nil, nil, err
	}
	list, err := lookup.List(lists, input.List)
	if err != nil {
		return nil, nil, err
	}
	dueAt, err := due.Parse(input.Due, s.board.Now())
	if err != nil {
		return nil, nil, err
	}
	in := service.TaskInput{
		Title:   input.Title,
		DueDate: dueAt,
		ListID:  list.ID,
	}
	if input.Priority != "" {
		if in.Priority, err = models.ParsePriority(input.Priority); err != nil {
			return nil, nil, err
		}
	}
	if d := strings.TrimSpace(input.Description); d != "" {
		in.Description = &d
	}
	if len(input.Tags) > 0 {
		tags, err := s.board.Tags(ctx)
		if err != nil {
			return nil, nil, err
		}
		if in.TagIDs, err = lookup.TagIDs(tags, input.Tags); err != nil {
			return nil, nil, err
		}
	}

	var similar []SimilarTask
	if open, err := s.board.Tasks(ctx, service.TaskFilter{List: list.ID.String()}); err != nil {
		s.log.WithError(err).Warn("could not check for similar tasks")
	} else {
		similar = similarOpenTasks(open, input.Title, SimilarityThreshold)
	}

	task, err := s.board.CreateTask(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	s.log.WithField("task", task.ID).Info("task created")
	out := wrapResultAsObject(task)
	if len(similar) > 0 {
		out["similar_open_tasks"] = similar
	}
	return nil, out, nil
}

type ToggleTaskInput struct {
	Task      string `json:"task" jsonschema:"task id, id prefix or title"`
	Completed bool   `json:"completed" jsonschema:"true marks the task done, false reopens it"`
}

func (s *Server) handleToggleTask(ctx context.Context, req *mcp.CallToolRequest, input ToggleTaskInput) (*mcp.CallToolResult, map[string]any, error) {
	id, err := s.resolveTask(ctx, input.Task)
	if err != nil {
		return nil, nil, err
	}
	task, err := s.board.ToggleCompleted(ctx, id, input.Completed)
	if err != nil {
		return nil, nil, err
	}
	return nil, wrapResultAsObject(task), nil
}

type TaskRefInput struct {
	Task string `json:"task" jsonschema:"task id, id prefix or title"`
}

func (s *Server) handleDeleteTask(ctx context.Context, req *mcp.CallToolRequest, input TaskRefInput) (*mcp.CallToolResult, map[string]any, error) {
	id, err := s.resolveTask(ctx, input.Task)
	if err != nil {
		return nil, nil, err
	}
	task, err := s.board.DeleteTask(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return nil, map[string]any{"deleted": true, "id": task.ID, "title": task.Title}, nil
}

func (s *Server) handleListLists(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, map[string]any, error) {
	lists, err := s.board.Lists(ctx)
	if err != nil {
		return nil, nil, err
	}
	return nil, wrapResultAsObject(lists), nil
}

type ListTagsInput struct {
	Theme string `json:"theme,omitempty" jsonschema:"dark or light; picks the chip background alpha"`
}

// tagView adds the CSS chip background a UI renders the tag with.
type tagView struct {
	models.Tag
	Background string `json:"background"`
}

func (s *Server) handleListTags(ctx context.Context, req *mcp.CallToolRequest, input ListTagsInput) (*mcp.CallToolResult, map[string]any, error) {
	tags, err := s.board.Tags(ctx)
	if err != nil {
		return nil, nil, err
	}
	theme := input.Theme
	if theme == "" {
		theme = "dark"
	}
	views := make([]tagView, 0, len(tags))
	for _, t := range tags {
		views = append(views, tagView{Tag: t, Background: models.HexToRGBA(t.Color, models.ThemeAlpha(theme))})
	}
	return nil, wrapResultAsObject(views), nil
}

// resolveTask accepts an id, an id prefix or a title.
func (s *Server) resolveTask(ctx context.Context, ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(strings.TrimSpace(ref)); err == nil {
		return id, nil
	}
	tasks, err := s.board.Tasks(ctx, service.TaskFilter{})
	if err != nil {
		return uuid.Nil, err
	}
	task, err := lookup.Task(tasks, ref)
	if err != nil {
		return uuid.Nil, err
	}
	return task.ID, nil
}
