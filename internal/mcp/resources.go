package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	groupedURI    = "duedeck://tasks/grouped"
	taskURIPrefix = "duedeck://tasks/"
	listsURI      = "duedeck://lists"
	jsonMIMEType  = "application/json"
)

func (s *Server) registerResources() {
	s.srv.AddResource(&mcp.Resource{
		URI:         groupedURI,
		Name:        "grouped-tasks",
		Description: "Tasks grouped into today, overdue and upcoming",
		MIMEType:    jsonMIMEType,
	}, s.handleGroupedResource)

	s.srv.AddResource(&mcp.Resource{
		URI:         listsURI,
		Name:        "lists",
		Description: "All task lists",
		MIMEType:    jsonMIMEType,
	}, s.handleListsResource)

	s.srv.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: taskURIPrefix + "{id}",
		Name:        "task",
		Description: "A single task with its list and tags",
		MIMEType:    jsonMIMEType,
	}, s.handleTaskResource)
}

func jsonContents(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: jsonMIMEType, Text: string(data)}},
	}, nil
}

func (s *Server) handleGroupedResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	groups, err := s.board.Grouped(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to group tasks: %w", err)
	}
	return jsonContents(req.Params.URI, groups)
}

func (s *Server) handleListsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	lists, err := s.board.Lists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	return jsonContents(req.Params.URI, lists)
}

func (s *Server) handleTaskResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	id, err := uuid.Parse(strings.TrimPrefix(req.Params.URI, taskURIPrefix))
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	task, err := s.board.Task(ctx, id)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonContents(req.Params.URI, task)
}
