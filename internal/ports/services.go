package ports

import (
	"context"
	"time"

	"github.com/taskboard/client/internal/domain/entities"
)

// TaskboardAPI interface for remote board operations
type TaskboardAPI interface {
	ListTaskboards(ctx context.Context) (*TaskboardsResponse, error)
	CreateTaskboard(ctx context.Context, req CreateTaskboardRequest) (*entities.Taskboard, error)
	RenameTaskboard(ctx context.Context, id int, req RenameTaskboardRequest) (*entities.Taskboard, error)
	DeleteTaskboard(ctx context.Context, id int) (*entities.Taskboard, error)
	ShareTaskboard(ctx context.Context, id int, req ShareTaskboardRequest) (*ShareTaskboardResponse, error)
}

// TaskcardAPI interface for remote card operations
type TaskcardAPI interface {
	ListTaskcards(ctx context.Context, taskboardID int) ([]entities.Taskcard, error)
	CreateTaskcard(ctx context.Context, taskboardID int, req TaskcardRequest) (*entities.Taskcard, error)
	RenameTaskcard(ctx context.Context, id int, req TaskcardRequest) (*entities.Taskcard, error)
	DeleteTaskcard(ctx context.Context, id int) error
	ClearTaskcards(ctx context.Context, taskboardID int) error
}

// TaskAPI interface for remote task operations
type TaskAPI interface {
	ListTasks(ctx context.Context, taskcardID int) ([]entities.Task, error)
	CreateTask(ctx context.Context, taskcardID int, req CreateTaskRequest) (*entities.Task, error)
	UpdateTask(ctx context.Context, id int, req UpdateTaskRequest) (*entities.Task, error)
	DeleteTask(ctx context.Context, id int) error
}

// AuthAPI interface for remote account operations
type AuthAPI interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Logout(ctx context.Context) error
	ExchangeOAuthCode(ctx context.Context, provider entities.OAuthProvider, req OAuthCodeRequest) (*AuthResponse, error)
}

// RemoteAPI is the whole REST surface the client consumes.
type RemoteAPI interface {
	TaskboardAPI
	TaskcardAPI
	TaskAPI
	AuthAPI
}

// Request/Response Types

// Board related types
type TaskboardsResponse struct {
	UserTaskboards   []entities.Taskboard `json:"userTaskboards"`
	SharedTaskboards []entities.Taskboard `json:"sharedTaskboards,omitempty"`
}

type CreateTaskboardRequest struct {
	TaskboardTitle string `json:"taskboardTitle" validate:"required"`
}

type RenameTaskboardRequest struct {
	TaskboardTitle string `json:"taskboardTitle" validate:"required"`
}

// ShareTaskboardRequest replaces the board's share list. An empty list
// revokes every grant.
type ShareTaskboardRequest struct {
	Emails []string `json:"emails"`
}

type ShareTaskboardResponse struct {
	SharedUsers []int `json:"sharedUsers"`
}

// Card related types
type TaskcardRequest struct {
	CardTitle string `json:"cardTitle" validate:"required"`
}

// Task related types
type CreateTaskRequest struct {
	TaskTitle string `json:"taskTitle" validate:"required"`
}

// UpdateTaskRequest is one of three shapes: plain (title and description),
// deadline (plus deadlineDate) or event (plus eventStartDate/eventEndDate).
type UpdateTaskRequest struct {
	TaskTitle      string     `json:"taskTitle" validate:"required"`
	Description    string     `json:"description"`
	DeadlineDate   *time.Time `json:"deadlineDate,omitempty"`
	EventStartDate *time.Time `json:"eventStartDate,omitempty"`
	EventEndDate   *time.Time `json:"eventEndDate,omitempty"`
	Completed      *bool      `json:"completed,omitempty"`
}

// DeadlineWindow is validated before a deadline-mode edit is sent.
type DeadlineWindow struct {
	DeadlineDate time.Time `validate:"required"`
}

// EventWindow is validated before an event-mode edit is sent.
type EventWindow struct {
	EventStartDate time.Time `validate:"required"`
	EventEndDate   time.Time `validate:"required,gtfield=EventStartDate"`
}

// Auth related types
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Username string `json:"username" validate:"required"`
}

type OAuthCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

type AuthResponse struct {
	User        entities.User `json:"user"`
	AccessToken string        `json:"accessToken"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// NewUpdateTaskRequest builds the request shape for the edit's reminder mode.
func NewUpdateTaskRequest(edit entities.TaskEdit) UpdateTaskRequest {
	req := UpdateTaskRequest{
		TaskTitle:   edit.Title,
		Description: edit.Description,
	}
	switch edit.Mode {
	case entities.ReminderDeadline:
		deadline := edit.Deadline
		req.DeadlineDate = &deadline
	case entities.ReminderEvent:
		start, end := edit.EventStart, edit.EventEnd
		req.EventStartDate = &start
		req.EventEndDate = &end
	}
	return req
}
