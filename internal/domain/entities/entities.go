package entities

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrNoActiveTaskboard  = errors.New("no taskboard selected")
	ErrTaskboardNotFound  = errors.New("taskboard not found")
	ErrEmptyTitle         = errors.New("title cannot be empty")
	ErrMissingCredentials = errors.New("missing required credentials")
	ErrInvalidEventWindow = errors.New("event end must be after event start")
	ErrMissingDeadline    = errors.New("deadline date is required")
	ErrUnknownComponent   = errors.New("unknown component kind")
	ErrUnknownProvider    = errors.New("unknown oauth provider")
	ErrSharedTaskboard    = errors.New("shared taskboards are read-only")
)

// Enums and types
type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

type OAuthProvider string

const (
	OAuthGoogle OAuthProvider = "google"
	OAuthGithub OAuthProvider = "github"
)

// ReminderMode tells which optional date fields of a task are meaningful.
type ReminderMode string

const (
	ReminderPlain    ReminderMode = "plain"
	ReminderDeadline ReminderMode = "deadline"
	ReminderEvent    ReminderMode = "event"
)

// User is the cached account identity kept in persisted storage.
type User struct {
	ID                 int    `json:"id"`
	Email              string `json:"email"`
	Username           string `json:"username"`
	HasUsedGoogleOauth bool   `json:"hasUsedGoogleOauth,omitempty"`
}

// BoardOwner is the owner summary the server embeds in shared boards.
type BoardOwner struct {
	Username string `json:"username"`
}

// Taskboard is the top-level container owned by one account.
type Taskboard struct {
	ID          int         `json:"id"`
	BoardTitle  string      `json:"boardTitle"`
	SharedUsers []int       `json:"sharedUsers,omitempty"`
	Owner       *BoardOwner `json:"User,omitempty"`
}

// Taskcard is a list within exactly one board.
type Taskcard struct {
	ID          int    `json:"id"`
	CardTitle   string `json:"cardTitle"`
	TaskboardID int    `json:"taskboardId"`
}

// Task is a unit of work within exactly one card.
type Task struct {
	ID             int        `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	Completed      bool       `json:"completed"`
	TaskcardID     int        `json:"taskcardId"`
	DeadlineDate   *time.Time `json:"deadlineDate,omitempty"`
	EventStartDate *time.Time `json:"eventStartDate,omitempty"`
	EventEndDate   *time.Time `json:"eventEndDate,omitempty"`
}

// Business logic methods for Taskboard
func (b Taskboard) OwnerUsername() string {
	if b.Owner == nil {
		return ""
	}
	return b.Owner.Username
}

// DisplayTitle is the heading shown for a board; shared boards carry their owner.
func (b Taskboard) DisplayTitle(shared bool) string {
	if shared && b.OwnerUsername() != "" {
		return b.BoardTitle + " by " + b.OwnerUsername()
	}
	return b.BoardTitle
}

// Clone returns a copy that shares no slices with b.
func (b Taskboard) Clone() Taskboard {
	if b.SharedUsers != nil {
		b.SharedUsers = append([]int(nil), b.SharedUsers...)
	}
	if b.Owner != nil {
		owner := *b.Owner
		b.Owner = &owner
	}
	return b
}

// Business logic methods for Task
func (t Task) Mode() ReminderMode {
	switch {
	case t.EventStartDate != nil && t.EventEndDate != nil:
		return ReminderEvent
	case t.DeadlineDate != nil:
		return ReminderDeadline
	default:
		return ReminderPlain
	}
}

func (t Task) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

// TaskEdit is the user's edit of a task in one of the three reminder modes.
type TaskEdit struct {
	Title       string
	Description string
	Mode        ReminderMode
	Deadline    time.Time
	EventStart  time.Time
	EventEnd    time.Time
}

// Utility methods
func (m ThemeMode) IsValid() bool {
	switch m {
	case ThemeLight, ThemeDark:
		return true
	default:
		return false
	}
}

func (s Severity) IsValid() bool {
	switch s {
	case SeverityInfo, SeveritySuccess, SeverityError:
		return true
	default:
		return false
	}
}

func (p OAuthProvider) IsValid() bool {
	switch p {
	case OAuthGoogle, OAuthGithub:
		return true
	default:
		return false
	}
}

func (m ReminderMode) IsValid() bool {
	switch m {
	case ReminderPlain, ReminderDeadline, ReminderEvent:
		return true
	default:
		return false
	}
}
