package state

import (
	"fmt"

	"github.com/taskboard/client/internal/domain/entities"
)

// Reduce maps (state, action) to the next state plus the storage effects the
// caller must run. It performs no I/O and never mutates s: every slice or map
// it changes is copied first.
func Reduce(s State, action Action) (State, []Effect) {
	switch a := action.(type) {
	// Cards held for a board that is no longer selected are dropped.
	case SetTaskboards:
		if a.ActiveTaskboard != s.ActiveTaskboard || a.ActiveTaskboard.IsNone() {
			s.CurrentTaskcards = []entities.Taskcard{}
			s.Tasks = map[int][]entities.Task{}
		}
		s.Taskboards = cloneTaskboards(a.Taskboards)
		s.ActiveTaskboard = a.ActiveTaskboard
		s.IsShared = activeIsShared(s)
		s.IsLoading = false
		return s, nil

	case ChangeLoadingState:
		s.IsLoading = a.IsLoading
		return s, nil

	// Task lists of cards that are no longer held are dropped.
	case SetTaskcards:
		s.CurrentTaskcards = append([]entities.Taskcard{}, a.Taskcards...)
		tasks := make(map[int][]entities.Task, len(a.Taskcards))
		for _, c := range a.Taskcards {
			if list, ok := s.Tasks[c.ID]; ok {
				tasks[c.ID] = list
			}
		}
		s.Tasks = tasks
		return s, nil

	// The watcher in the services layer refreshes cards and isShared. An id on
	// neither board list leaves the state unchanged.
	case ChangeActiveTaskboard:
		if _, ok := s.FindTaskboard(a.TaskboardID); !ok {
			return s, nil
		}
		s.ActiveTaskboard = Active(a.TaskboardID)
		return s, nil

	case AddNewTaskboard:
		boards := make([]entities.Taskboard, 0, len(s.Taskboards.UserTaskboards)+1)
		boards = append(boards, s.Taskboards.UserTaskboards...)
		s.Taskboards.UserTaskboards = append(boards, a.Taskboard.Clone())
		// The first board leaves NoBoards; otherwise the selection is kept.
		if s.ActiveTaskboard.IsNone() {
			s.ActiveTaskboard = Active(a.Taskboard.ID)
			s.IsShared = false
		}
		return s, nil

	case AddNewTaskcard:
		cards := make([]entities.Taskcard, 0, len(s.CurrentTaskcards)+1)
		cards = append(cards, s.CurrentTaskcards...)
		s.CurrentTaskcards = append(cards, a.Taskcard)
		return s, nil

	case ClearAllTaskcards:
		s.CurrentTaskcards = []entities.Taskcard{}
		s.Tasks = map[int][]entities.Task{}
		return s, nil

	case UpdateTaskboard:
		id, ok := s.ActiveTaskboard.ID()
		if !ok {
			return s, nil
		}
		s.Taskboards.UserTaskboards = mapBoards(s.Taskboards.UserTaskboards, id, func(b entities.Taskboard) entities.Taskboard {
			b.BoardTitle = a.NewTitle
			return b
		})
		return s, nil

	case UpdateTaskcard:
		cards := make([]entities.Taskcard, len(s.CurrentTaskcards))
		for i, c := range s.CurrentTaskcards {
			if c.ID == a.TaskcardID {
				c.CardTitle = a.NewListTitle
			}
			cards[i] = c
		}
		s.CurrentTaskcards = cards
		return s, nil

	case DeleteTaskcard:
		cards := make([]entities.Taskcard, 0, len(s.CurrentTaskcards))
		for _, c := range s.CurrentTaskcards {
			if c.ID != a.TaskcardID {
				cards = append(cards, c)
			}
		}
		s.CurrentTaskcards = cards
		s.Tasks = withoutCard(s.Tasks, a.TaskcardID)
		return s, nil

	case DeleteTaskboard:
		return deleteTaskboard(s, a.Taskboard.ID), nil

	case UpdateSharedUsers:
		s.Taskboards.UserTaskboards = mapBoards(s.Taskboards.UserTaskboards, a.TaskboardID, func(b entities.Taskboard) entities.Taskboard {
			b.SharedUsers = append([]int{}, a.SharedUsers...)
			return b
		})
		return s, nil

	case ChangeTheme:
		s.ThemeMode = a.Mode
		return s, nil

	case ChangeSharedBoardState:
		s.IsShared = a.IsShared
		return s, nil

	case SetTasks:
		s.Tasks = withCard(s.Tasks, a.TaskcardID, append([]entities.Task{}, a.Tasks...))
		return s, nil

	case AddTask:
		current := s.Tasks[a.Task.TaskcardID]
		tasks := make([]entities.Task, 0, len(current)+1)
		tasks = append(tasks, current...)
		s.Tasks = withCard(s.Tasks, a.Task.TaskcardID, append(tasks, a.Task))
		return s, nil

	case UpdateTask:
		current, ok := s.Tasks[a.Task.TaskcardID]
		if !ok {
			return s, nil
		}
		tasks := make([]entities.Task, len(current))
		for i, t := range current {
			if t.ID == a.Task.ID {
				t = a.Task
			}
			tasks[i] = t
		}
		s.Tasks = withCard(s.Tasks, a.Task.TaskcardID, tasks)
		return s, nil

	case DeleteTask:
		current, ok := s.Tasks[a.TaskcardID]
		if !ok {
			return s, nil
		}
		tasks := make([]entities.Task, 0, len(current))
		for _, t := range current {
			if t.ID != a.TaskID {
				tasks = append(tasks, t)
			}
		}
		s.Tasks = withCard(s.Tasks, a.TaskcardID, tasks)
		return s, nil

	case LoginUser:
		user := a.User
		user.HasUsedGoogleOauth = a.HasUsedGoogleOauth
		s.IsLoggedIn = true
		s.HasUsedGoogleOauth = a.HasUsedGoogleOauth
		return s, []Effect{PersistUser{User: user}}

	case SetSessionToken:
		return s, []Effect{PersistToken{Token: a.Token}}

	case LogoutUser:
		return Default(), []Effect{ClearSession{}}

	case UpdateSnackbar:
		s.SnackbarState = Snackbar{IsOpen: true, Message: a.Message, Severity: a.Severity}
		return s, nil

	case CloseSnackbar:
		s.SnackbarState.IsOpen = false
		return s, nil

	default:
		panic(fmt.Sprintf("state: unhandled action %T", action))
	}
}

// deleteTaskboard removes the board and, when it was the active one, moves the
// selection to the last remaining own board, then the last shared board, then
// NoBoards. Cards held for a deleted active board are dropped.
func deleteTaskboard(s State, id int) State {
	remaining := make([]entities.Taskboard, 0, len(s.Taskboards.UserTaskboards))
	for _, b := range s.Taskboards.UserTaskboards {
		if b.ID != id {
			remaining = append(remaining, b)
		}
	}
	s.Taskboards.UserTaskboards = remaining

	if !s.ActiveTaskboard.Is(id) && s.SelectionValid() {
		return s
	}

	switch shared := s.Taskboards.SharedTaskboards; {
	case len(remaining) > 0:
		s.ActiveTaskboard = Active(remaining[len(remaining)-1].ID)
	case len(shared) > 0:
		s.ActiveTaskboard = Active(shared[len(shared)-1].ID)
	default:
		s.ActiveTaskboard = NoBoards()
	}
	s.CurrentTaskcards = []entities.Taskcard{}
	s.Tasks = map[int][]entities.Task{}
	s.IsShared = activeIsShared(s)
	return s
}

func activeIsShared(s State) bool {
	id, ok := s.ActiveTaskboard.ID()
	return ok && s.IsSharedTaskboard(id)
}

func mapBoards(boards []entities.Taskboard, id int, fn func(entities.Taskboard) entities.Taskboard) []entities.Taskboard {
	out := make([]entities.Taskboard, len(boards))
	for i, b := range boards {
		if b.ID == id {
			b = fn(b.Clone())
		}
		out[i] = b
	}
	return out
}

func cloneTaskboards(t Taskboards) Taskboards {
	out := Taskboards{UserTaskboards: make([]entities.Taskboard, 0, len(t.UserTaskboards))}
	for _, b := range t.UserTaskboards {
		out.UserTaskboards = append(out.UserTaskboards, b.Clone())
	}
	if t.SharedTaskboards != nil {
		out.SharedTaskboards = make([]entities.Taskboard, 0, len(t.SharedTaskboards))
		for _, b := range t.SharedTaskboards {
			out.SharedTaskboards = append(out.SharedTaskboards, b.Clone())
		}
	}
	return out
}

func withCard(tasks map[int][]entities.Task, taskcardID int, list []entities.Task) map[int][]entities.Task {
	out := make(map[int][]entities.Task, len(tasks)+1)
	for k, v := range tasks {
		out[k] = v
	}
	out[taskcardID] = list
	return out
}

func withoutCard(tasks map[int][]entities.Task, taskcardID int) map[int][]entities.Task {
	out := make(map[int][]entities.Task, len(tasks))
	for k, v := range tasks {
		if k != taskcardID {
			out[k] = v
		}
	}
	return out
}
