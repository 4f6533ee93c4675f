// Package state holds the client's global state aggregate and the pure
// transition function that is the only way to derive a new one.
package state

import (
	"github.com/taskboard/client/internal/domain/entities"
)

// Selection is the active board reference. The zero value is NoBoards.
type Selection struct {
	id int
	ok bool
}

// NoBoards is the selection when neither board collection has entries.
func NoBoards() Selection { return Selection{} }

// Active selects the board with the given id.
func Active(id int) Selection { return Selection{id: id, ok: true} }

// ID returns the selected board id and whether one is selected.
func (s Selection) ID() (int, bool) { return s.id, s.ok }

func (s Selection) IsNone() bool { return !s.ok }

func (s Selection) Is(id int) bool { return s.ok && s.id == id }

// Snackbar is the single transient notice slot.
type Snackbar struct {
	IsOpen   bool              `json:"isOpen" yaml:"isOpen"`
	Message  string            `json:"message" yaml:"message"`
	Severity entities.Severity `json:"severity" yaml:"severity"`
}

// Taskboards holds the boards the account owns and the ones shared with it.
type Taskboards struct {
	UserTaskboards   []entities.Taskboard `json:"userTaskboards" yaml:"userTaskboards"`
	SharedTaskboards []entities.Taskboard `json:"sharedTaskboards,omitempty" yaml:"sharedTaskboards,omitempty"`
}

// State is the aggregate root. Values are never mutated after Reduce returns
// them; every transition copies what it changes.
type State struct {
	IsLoggedIn         bool
	IsLoading          bool
	ThemeMode          entities.ThemeMode
	Taskboards         Taskboards
	ActiveTaskboard    Selection
	CurrentTaskcards   []entities.Taskcard
	Tasks              map[int][]entities.Task
	IsShared           bool
	HasUsedGoogleOauth bool
	SnackbarState      Snackbar
}

// Default is the fresh, logged-out aggregate.
func Default() State {
	return State{
		IsLoading:        true,
		ThemeMode:        entities.ThemeLight,
		Taskboards:       Taskboards{UserTaskboards: []entities.Taskboard{}},
		ActiveTaskboard:  NoBoards(),
		CurrentTaskcards: []entities.Taskcard{},
		Tasks:            map[int][]entities.Task{},
		SnackbarState:    Snackbar{Severity: entities.SeverityInfo},
	}
}

// FindTaskboard looks the board up among user boards first, then shared ones.
func (s State) FindTaskboard(id int) (entities.Taskboard, bool) {
	for _, b := range s.Taskboards.UserTaskboards {
		if b.ID == id {
			return b, true
		}
	}
	for _, b := range s.Taskboards.SharedTaskboards {
		if b.ID == id {
			return b, true
		}
	}
	return entities.Taskboard{}, false
}

// ActiveTaskboardValue returns the active board when the selection resolves.
func (s State) ActiveTaskboardValue() (entities.Taskboard, bool) {
	id, ok := s.ActiveTaskboard.ID()
	if !ok {
		return entities.Taskboard{}, false
	}
	return s.FindTaskboard(id)
}

// OwnsTaskboard reports whether id is one of the account's own boards.
func (s State) OwnsTaskboard(id int) bool {
	return indexOfBoard(s.Taskboards.UserTaskboards, id) >= 0
}

// IsSharedTaskboard reports whether id is shared with, but not owned by, the account.
func (s State) IsSharedTaskboard(id int) bool {
	return !s.OwnsTaskboard(id) && indexOfBoard(s.Taskboards.SharedTaskboards, id) >= 0
}

// HasTaskboards reports whether either collection has entries.
func (s State) HasTaskboards() bool {
	return len(s.Taskboards.UserTaskboards) > 0 || len(s.Taskboards.SharedTaskboards) > 0
}

// SelectionValid reports whether the active selection satisfies the
// aggregate's invariant: it resolves to a board when any exist and is
// NoBoards otherwise.
func (s State) SelectionValid() bool {
	if !s.HasTaskboards() {
		return s.ActiveTaskboard.IsNone()
	}
	_, ok := s.ActiveTaskboardValue()
	return ok
}

// TasksFor returns the task list held for a card.
func (s State) TasksFor(taskcardID int) []entities.Task {
	return s.Tasks[taskcardID]
}

// DefaultSelection picks the selection for a freshly fetched collection:
// keep preferred when it still resolves, else the first own board, else the
// first shared board.
func DefaultSelection(boards Taskboards, preferred Selection) Selection {
	if id, ok := preferred.ID(); ok {
		if indexOfBoard(boards.UserTaskboards, id) >= 0 || indexOfBoard(boards.SharedTaskboards, id) >= 0 {
			return preferred
		}
	}
	if len(boards.UserTaskboards) > 0 {
		return Active(boards.UserTaskboards[0].ID)
	}
	if len(boards.SharedTaskboards) > 0 {
		return Active(boards.SharedTaskboards[0].ID)
	}
	return NoBoards()
}

func indexOfBoard(boards []entities.Taskboard, id int) int {
	for i, b := range boards {
		if b.ID == id {
			return i
		}
	}
	return -1
}
