package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kutbudev/duedeck/pkg/due"
	"github.com/kutbudev/duedeck/pkg/models"
)

// complete provides autocomplete suggestions for prompt and resource arguments.
func (s *Server) complete(ctx context.Context, req *mcp.CompleteRequest) (*mcp.CompleteResult, error) {
	argValue := strings.ToLower(req.Params.Argument.Value)

	var values []string
	switch req.Params.Argument.Name {
	case "list":
		values = s.completeListNames(ctx, argValue)
	case "priority":
		options := make([]string, 0, len(models.Priorities))
		for _, p := range models.Priorities {
			options = append(options, string(p))
		}
		values = completeStaticValues(argValue, options)
	case "due":
		options := make([]string, 0, len(due.Kinds))
		for _, k := range due.Kinds {
			options = append(options, string(k))
		}
		values = completeStaticValues(argValue, options)
	default:
		values = []string{}
	}

	return &mcp.CompleteResult{
		Completion: mcp.CompletionResultDetails{
			Values:  values,
			Total:   len(values),
			HasMore: false,
		},
	}, nil
}

// completeListNames returns up to 20 list names starting with prefix.
func (s *Server) completeListNames(ctx context.Context, prefix string) []string {
	lists, err := s.board.Lists(ctx)
	if err != nil {
		return []string{}
	}
	matches := []string{}
	for _, l := range lists {
		if prefix == "" || strings.HasPrefix(strings.ToLower(l.Name), prefix) {
			matches = append(matches, l.Name)
		}
		if len(matches) >= 20 {
			break
		}
	}
	return matches
}

// completeStaticValues filters a static list of values by prefix.
func completeStaticValues(prefix string, options []string) []string {
	if prefix == "" {
		return options
	}
	matches := []string{}
	for _, opt := range options {
		if strings.HasPrefix(strings.ToLower(opt), prefix) {
			matches = append(matches, opt)
		}
	}
	return matches
}
