package state

import (
	"github.com/taskboard/client/internal/domain/entities"
)

// Action is the closed set of transitions. The unexported marker keeps
// implementations inside this package.
type Action interface {
	Kind() string
	isAction()
}

type (
	SetTaskboards struct {
		Taskboards      Taskboards
		ActiveTaskboard Selection
	}
	ChangeLoadingState struct {
		IsLoading bool
	}
	SetTaskcards struct {
		Taskcards []entities.Taskcard
	}
	// ChangeActiveTaskboard is ignored when the id is on neither board list.
	ChangeActiveTaskboard struct {
		TaskboardID int
	}
	AddNewTaskboard struct {
		Taskboard entities.Taskboard
	}
	AddNewTaskcard struct {
		Taskcard entities.Taskcard
	}
	// UpdateTaskboard renames the active board.
	UpdateTaskboard struct {
		NewTitle string
	}
	UpdateTaskcard struct {
		TaskcardID   int
		NewListTitle string
	}
	DeleteTaskboard struct {
		Taskboard entities.Taskboard
	}
	DeleteTaskcard struct {
		TaskcardID int
	}
	ClearAllTaskcards struct{}
	UpdateSharedUsers struct {
		TaskboardID int
		SharedUsers []int
	}
	ChangeTheme struct {
		Mode entities.ThemeMode
	}
	ChangeSharedBoardState struct {
		IsShared bool
	}
	SetTasks struct {
		TaskcardID int
		Tasks      []entities.Task
	}
	AddTask struct {
		Task entities.Task
	}
	UpdateTask struct {
		Task entities.Task
	}
	DeleteTask struct {
		TaskcardID int
		TaskID     int
	}
	LoginUser struct {
		User               entities.User
		HasUsedGoogleOauth bool
	}
	SetSessionToken struct {
		Token string
	}
	LogoutUser     struct{}
	UpdateSnackbar struct {
		Message  string
		Severity entities.Severity
	}
	CloseSnackbar struct{}
)

func (SetTaskboards) Kind() string          { return "set taskboards" }
func (ChangeLoadingState) Kind() string     { return "change loading state" }
func (SetTaskcards) Kind() string           { return "set taskcards" }
func (ChangeActiveTaskboard) Kind() string  { return "change active taskboard" }
func (AddNewTaskboard) Kind() string        { return "add new taskboard" }
func (AddNewTaskcard) Kind() string         { return "add new taskcard" }
func (UpdateTaskboard) Kind() string        { return "update taskboard" }
func (UpdateTaskcard) Kind() string         { return "update taskcard" }
func (DeleteTaskboard) Kind() string        { return "delete taskboard" }
func (DeleteTaskcard) Kind() string         { return "delete taskcard" }
func (ClearAllTaskcards) Kind() string      { return "clear all taskcards" }
func (UpdateSharedUsers) Kind() string      { return "update shared users" }
func (ChangeTheme) Kind() string            { return "change theme" }
func (ChangeSharedBoardState) Kind() string { return "change shared board state" }
func (SetTasks) Kind() string               { return "set tasks" }
func (AddTask) Kind() string                { return "add task" }
func (UpdateTask) Kind() string             { return "update task" }
func (DeleteTask) Kind() string             { return "delete task" }
func (LoginUser) Kind() string              { return "login user" }
func (SetSessionToken) Kind() string        { return "set session token" }
func (LogoutUser) Kind() string             { return "logout user" }
func (UpdateSnackbar) Kind() string         { return "update snackbar" }
func (CloseSnackbar) Kind() string          { return "close snackbar" }

func (SetTaskboards) isAction()          {}
func (ChangeLoadingState) isAction()     {}
func (SetTaskcards) isAction()           {}
func (ChangeActiveTaskboard) isAction()  {}
func (AddNewTaskboard) isAction()        {}
func (AddNewTaskcard) isAction()         {}
func (UpdateTaskboard) isAction()        {}
func (UpdateTaskcard) isAction()         {}
func (DeleteTaskboard) isAction()        {}
func (DeleteTaskcard) isAction()         {}
func (ClearAllTaskcards) isAction()      {}
func (UpdateSharedUsers) isAction()      {}
func (ChangeTheme) isAction()            {}
func (ChangeSharedBoardState) isAction() {}
func (SetTasks) isAction()               {}
func (AddTask) isAction()                {}
func (UpdateTask) isAction()             {}
func (DeleteTask) isAction()             {}
func (LoginUser) isAction()              {}
func (SetSessionToken) isAction()        {}
func (LogoutUser) isAction()             {}
func (UpdateSnackbar) isAction()         {}
func (CloseSnackbar) isAction()          {}

// Notice builds the snackbar action for a user-facing message.
func Notice(severity entities.Severity, message string) UpdateSnackbar {
	return UpdateSnackbar{Message: message, Severity: severity}
}
