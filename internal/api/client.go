package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	apierrors "github.com/kutbudev/duedeck/internal/errors"
	"github.com/kutbudev/duedeck/internal/service"
	"github.com/kutbudev/duedeck/pkg/due"
	"github.com/kutbudev/duedeck/pkg/models"
)

// Client talks to duedeck-server and implements service.Store.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	APIKey     string

	breaker *gobreaker.CircuitBreaker
	log     logrus.FieldLogger
}

var _ service.Store = (*Client)(nil)

// NewClient creates a new API client. baseURL includes the /v1 prefix.
func NewClient(baseURL, apiKey string, log logrus.FieldLogger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "duedeck-api",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		// Only transport failures and 5xx count against the server.
		IsSuccessful: func(err error) bool {
			var apiErr *apierrors.APIError
			if errors.As(err, &apiErr) {
				return apiErr.Status < http.StatusInternalServerError
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("circuit breaker state changed")
		},
	})
	return c
}

// makeRequest sends body as JSON and decodes a 2xx response into out.
func (c *Client) makeRequest(ctx context.Context, method, endpoint string, body, out any) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, method, endpoint, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("server unavailable, retry shortly: %w", err)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	url := c.BaseURL + endpoint

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	// Add Authorization header if API key is available
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &apierrors.APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(respBody))
			if apiErr.Message == "" {
				apiErr.Message = http.StatusText(resp.StatusCode)
			}
		}
		c.log.WithFields(logrus.Fields{"method": method, "endpoint": endpoint, "status": resp.StatusCode}).
			Debug("API request failed")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

type taskRequest struct {
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Completed   bool            `json:"completed"`
	DueDate     time.Time       `json:"due_date"`
	Priority    models.Priority `json:"priority,omitempty"`
	ListID      uuid.UUID       `json:"list_id"`
	TagIDs      []uuid.UUID     `json:"tag_ids"`
}

func newTaskRequest(in service.TaskInput) taskRequest {
	tags := in.TagIDs
	if tags == nil {
		tags = []uuid.UUID{}
	}
	return taskRequest{
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		ListID:      in.ListID,
		TagIDs:      tags,
	}
}

// Task API methods

func (c *Client) ListTasks(ctx context.Context, filter service.TaskFilter) ([]models.Task, error) {
	endpoint := "/tasks"
	if q := filter.Query().Encode(); q != "" {
		endpoint += "?" + q
	}
	var tasks []models.Task
	if err := c.makeRequest(ctx, http.MethodGet, endpoint, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GroupTasks(ctx context.Context) (due.Groups[models.Task], error) {
	var groups due.Groups[models.Task]
	err := c.makeRequest(ctx, http.MethodGet, "/tasks/grouped", nil, &groups)
	return groups, err
}

func (c *Client) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := c.makeRequest(ctx, http.MethodGet, "/tasks/"+id.String(), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) CreateTask(ctx context.Context, in service.TaskInput) (*models.Task, error) {
	in = in.Normalized()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var task models.Task
	if err := c.makeRequest(ctx, http.MethodPost, "/tasks", newTaskRequest(in), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTaskStatus(ctx context.Context, id uuid.UUID, completed bool) (*models.Task, error) {
	body := map[string]bool{"completed": completed}
	var task models.Task
	if err := c.makeRequest(ctx, http.MethodPut, "/tasks/"+id.String()+"/status", body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTaskProperties(ctx context.Context, id uuid.UUID, in service.TaskInput) (*models.Task, error) {
	in = in.Normalized()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var task models.Task
	if err := c.makeRequest(ctx, http.MethodPut, "/tasks/"+id.String(), newTaskRequest(in), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := c.makeRequest(ctx, http.MethodDelete, "/tasks/"+id.String(), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// List API methods

func (c *Client) ListLists(ctx context.Context) ([]models.List, error) {
	var lists []models.List
	if err := c.makeRequest(ctx, http.MethodGet, "/lists", nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

func (c *Client) CreateList(ctx context.Context, in service.ListInput) (*models.List, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	reqBody := map[string]string{
		"name":  in.Name,
		"color": in.Color,
	}
	var list models.List
	if err := c.makeRequest(ctx, http.MethodPost, "/lists", reqBody, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) UpdateList(ctx context.Context, id uuid.UUID, name string) (*models.List, error) {
	if err := service.ValidateListName(name); err != nil {
		return nil, err
	}
	var list models.List
	if err := c.makeRequest(ctx, http.MethodPut, "/lists/"+id.String(), map[string]string{"name": name}, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) DeleteList(ctx context.Context, id uuid.UUID) (*models.List, error) {
	var list models.List
	if err := c.makeRequest(ctx, http.MethodDelete, "/lists/"+id.String(), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Tag API methods

func (c *Client) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := c.makeRequest(ctx, http.MethodGet, "/tags", nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (c *Client) CreateTag(ctx context.Context, in service.TagInput) (*models.Tag, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	reqBody := map[string]string{
		"name":  in.Name,
		"color": in.Color,
	}
	var tag models.Tag
	if err := c.makeRequest(ctx, http.MethodPost, "/tags", reqBody, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (c *Client) DeleteTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := c.makeRequest(ctx, http.MethodDelete, "/tags/"+id.String(), nil, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

// Ping checks that the server answers. It bypasses the circuit breaker.
func (c *Client) Ping(ctx context.Context) error {
	root := strings.TrimSuffix(c.BaseURL, "/v1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, root+"/ping", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &apierrors.APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return nil
}
