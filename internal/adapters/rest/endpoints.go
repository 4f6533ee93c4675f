package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/taskboard/client/internal/domain/entities"
	"github.com/taskboard/client/internal/ports"
)

// Taskboards

func (c *Client) ListTaskboards(ctx context.Context) (*ports.TaskboardsResponse, error) {
	var resp ports.TaskboardsResponse
	if err := c.do(ctx, http.MethodGet, "/taskboards", "/taskboards", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateTaskboard(ctx context.Context, req ports.CreateTaskboardRequest) (*entities.Taskboard, error) {
	var board entities.Taskboard
	if err := c.do(ctx, http.MethodPost, "/taskboards", "/taskboards", req, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (c *Client) RenameTaskboard(ctx context.Context, id int, req ports.RenameTaskboardRequest) (*entities.Taskboard, error) {
	var board entities.Taskboard
	if err := c.do(ctx, http.MethodPatch, "/taskboards/:id", fmt.Sprintf("/taskboards/%d", id), req, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (c *Client) DeleteTaskboard(ctx context.Context, id int) (*entities.Taskboard, error) {
	var board entities.Taskboard
	if err := c.do(ctx, http.MethodDelete, "/taskboards/:id", fmt.Sprintf("/taskboards/%d", id), nil, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (c *Client) ShareTaskboard(ctx context.Context, id int, req ports.ShareTaskboardRequest) (*ports.ShareTaskboardResponse, error) {
	var resp ports.ShareTaskboardResponse
	if err := c.do(ctx, http.MethodPatch, "/taskboards/:id", fmt.Sprintf("/taskboards/%d", id), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Taskcards

func (c *Client) ListTaskcards(ctx context.Context, taskboardID int) ([]entities.Taskcard, error) {
	cards := []entities.Taskcard{}
	if err := c.do(ctx, http.MethodGet, "/taskcards/:boardId", fmt.Sprintf("/taskcards/%d", taskboardID), nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (c *Client) CreateTaskcard(ctx context.Context, taskboardID int, req ports.TaskcardRequest) (*entities.Taskcard, error) {
	var card entities.Taskcard
	if err := c.do(ctx, http.MethodPost, "/taskCards/:boardId", fmt.Sprintf("/taskCards/%d", taskboardID), req, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *Client) RenameTaskcard(ctx context.Context, id int, req ports.TaskcardRequest) (*entities.Taskcard, error) {
	var card entities.Taskcard
	if err := c.do(ctx, http.MethodPatch, "/taskcards/:id", fmt.Sprintf("/taskcards/%d", id), req, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *Client) DeleteTaskcard(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/taskcards/:id", fmt.Sprintf("/taskcards/%d", id), nil, nil)
}

func (c *Client) ClearTaskcards(ctx context.Context, taskboardID int) error {
	path := fmt.Sprintf("/taskcards/clearTaskcards/%d", taskboardID)
	return c.do(ctx, http.MethodDelete, "/taskcards/clearTaskcards/:boardId", path, nil, nil)
}

// Tasks

func (c *Client) ListTasks(ctx context.Context, taskcardID int) ([]entities.Task, error) {
	tasks := []entities.Task{}
	if err := c.do(ctx, http.MethodGet, "/tasks/:cardId", fmt.Sprintf("/tasks/%d", taskcardID), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, taskcardID int, req ports.CreateTaskRequest) (*entities.Task, error) {
	var task entities.Task
	if err := c.do(ctx, http.MethodPost, "/tasks/:cardId", fmt.Sprintf("/tasks/%d", taskcardID), req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id int, req ports.UpdateTaskRequest) (*entities.Task, error) {
	var task entities.Task
	if err := c.do(ctx, http.MethodPatch, "/tasks/:id", fmt.Sprintf("/tasks/%d", id), req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/tasks/:id", fmt.Sprintf("/tasks/%d", id), nil, nil)
}

// Account

func (c *Client) Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	var resp ports.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/user/login", "/user/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, req ports.RegisterRequest) (*ports.AuthResponse, error) {
	var resp ports.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/user/register", "/user/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/user/logout", "/user/logout", nil, nil)
}

func (c *Client) ExchangeOAuthCode(ctx context.Context, provider entities.OAuthProvider, req ports.OAuthCodeRequest) (*ports.AuthResponse, error) {
	if !provider.IsValid() {
		return nil, fmt.Errorf("%w: %q", entities.ErrUnknownProvider, provider)
	}
	var resp ports.AuthResponse
	path := "/" + url.PathEscape(string(provider)) + "/auth"
	if err := c.do(ctx, http.MethodPost, "/:provider/auth", path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
