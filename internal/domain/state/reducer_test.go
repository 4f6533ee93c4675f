package state

import (
	"reflect"
	"testing"
	"time"

	"github.com/taskboard/client/internal/domain/entities"
)

func boardsState(active int, boards ...entities.Taskboard) State {
	s := Default()
	s, _ = Reduce(s, SetTaskboards{
		Taskboards:      Taskboards{UserTaskboards: boards},
		ActiveTaskboard: Active(active),
	})
	return s
}

func TestReduce_DeleteActiveTaskboardReassignsToLastRemaining(t *testing.T) {
	s := boardsState(1,
		entities.Taskboard{ID: 1, BoardTitle: "Work"},
		entities.Taskboard{ID: 2, BoardTitle: "Home"},
	)

	next, effects := Reduce(s, DeleteTaskboard{Taskboard: entities.Taskboard{ID: 1, BoardTitle: "Work"}})

	if len(effects) != 0 {
		t.Fatalf("expected no effects, got %v", effects)
	}
	want := []entities.Taskboard{{ID: 2, BoardTitle: "Home"}}
	if !reflect.DeepEqual(next.Taskboards.UserTaskboards, want) {
		t.Errorf("expected boards %v, got %v", want, next.Taskboards.UserTaskboards)
	}
	if !next.ActiveTaskboard.Is(2) {
		t.Errorf("expected active board 2, got %+v", next.ActiveTaskboard)
	}
}

func TestReduce_DeleteLastTaskboardYieldsNoBoards(t *testing.T) {
	s := boardsState(7, entities.Taskboard{ID: 7, BoardTitle: "Only"})
	s, _ = Reduce(s, SetTaskcards{Taskcards: []entities.Taskcard{{ID: 1, CardTitle: "Todo", TaskboardID: 7}}})

	next, _ := Reduce(s, DeleteTaskboard{Taskboard: entities.Taskboard{ID: 7}})

	if !next.ActiveTaskboard.IsNone() {
		t.Fatalf("expected NoBoards selection, got %+v", next.ActiveTaskboard)
	}
	if len(next.CurrentTaskcards) != 0 {
		t.Errorf("expected cards of deleted board to be dropped, got %v", next.CurrentTaskcards)
	}
	if !next.SelectionValid() {
		t.Error("expected selection to satisfy the invariant")
	}
}

func TestReduce_FirstBoardLeavesNoBoards(t *testing.T) {
	s := Default()
	if !s.ActiveTaskboard.IsNone() {
		t.Fatalf("expected NoBoards by default, got %+v", s.ActiveTaskboard)
	}

	s, _ = Reduce(s, AddNewTaskboard{Taskboard: entities.Taskboard{ID: 9, BoardTitle: "First"}})
	if !s.ActiveTaskboard.Is(9) || !s.SelectionValid() {
		t.Errorf("expected the first board to become active, got %+v", s.ActiveTaskboard)
	}

	s, _ = Reduce(s, AddNewTaskboard{Taskboard: entities.Taskboard{ID: 10, BoardTitle: "Second"}})
	if !s.ActiveTaskboard.Is(9) {
		t.Errorf("expected the selection to stay on the first board, got %+v", s.ActiveTaskboard)
	}
}

func TestReduce_DeleteLastOwnBoardFallsBackToShared(t *testing.T) {
	s := Default()
	s, _ = Reduce(s, SetTaskboards{
		Taskboards: Taskboards{
			UserTaskboards:   []entities.Taskboard{{ID: 1, BoardTitle: "Mine"}},
			SharedTaskboards: []entities.Taskboard{{ID: 9, BoardTitle: "Theirs"}},
		},
		ActiveTaskboard: Active(1),
	})

	next, _ := Reduce(s, DeleteTaskboard{Taskboard: entities.Taskboard{ID: 1}})

	if !next.ActiveTaskboard.Is(9) {
		t.Fatalf("expected shared board 9 to become active, got %+v", next.ActiveTaskboard)
	}
	if !next.IsShared {
		t.Error("expected isShared to be true for a shared-not-owned board")
	}
}

func TestReduce_DeleteInactiveBoardKeepsSelection(t *testing.T) {
	s := boardsState(1,
		entities.Taskboard{ID: 1, BoardTitle: "Work"},
		entities.Taskboard{ID: 2, BoardTitle: "Home"},
		entities.Taskboard{ID: 3, BoardTitle: "Gym"},
	)

	next, _ := Reduce(s, DeleteTaskboard{Taskboard: entities.Taskboard{ID: 3}})

	if !next.ActiveTaskboard.Is(1) {
		t.Errorf("expected active board to stay 1, got %+v", next.ActiveTaskboard)
	}
}

func TestReduce_AddThenDeleteRestoresBoards(t *testing.T) {
	s := boardsState(1,
		entities.Taskboard{ID: 1, BoardTitle: "Work"},
		entities.Taskboard{ID: 2, BoardTitle: "Home"},
	)
	before := append([]entities.Taskboard{}, s.Taskboards.UserTaskboards...)

	added, _ := Reduce(s, AddNewTaskboard{Taskboard: entities.Taskboard{ID: 3, BoardTitle: "New"}})
	if len(added.Taskboards.UserTaskboards) != 3 {
		t.Fatalf("expected 3 boards after add, got %d", len(added.Taskboards.UserTaskboards))
	}
	if !added.ActiveTaskboard.Is(1) {
		t.Errorf("adding a board must not change the selection, got %+v", added.ActiveTaskboard)
	}

	removed, _ := Reduce(added, DeleteTaskboard{Taskboard: entities.Taskboard{ID: 3}})
	if !reflect.DeepEqual(removed.Taskboards.UserTaskboards, before) {
		t.Errorf("expected %v, got %v", before, removed.Taskboards.UserTaskboards)
	}
}

func TestReduce_UpdateTaskcardOnlyTouchesTarget(t *testing.T) {
	s := Default()
	original := []entities.Taskcard{
		{ID: 1, CardTitle: "Todo", TaskboardID: 4},
		{ID: 2, CardTitle: "Doing", TaskboardID: 4},
		{ID: 3, CardTitle: "Done", TaskboardID: 4},
	}
	s, _ = Reduce(s, SetTaskcards{Taskcards: original})

	next, _ := Reduce(s, UpdateTaskcard{TaskcardID: 2, NewListTitle: "Groceries"})

	want := []entities.Taskcard{
		{ID: 1, CardTitle: "Todo", TaskboardID: 4},
		{ID: 2, CardTitle: "Groceries", TaskboardID: 4},
		{ID: 3, CardTitle: "Done", TaskboardID: 4},
	}
	if !reflect.DeepEqual(next.CurrentTaskcards, want) {
		t.Errorf("expected %v, got %v", want, next.CurrentTaskcards)
	}
	if s.CurrentTaskcards[1].CardTitle != "Doing" {
		t.Errorf("input state was mutated: %v", s.CurrentTaskcards)
	}
	if original[1].CardTitle != "Doing" {
		t.Errorf("payload slice was mutated: %v", original)
	}
}

func TestReduce_UpdateTaskboardRenamesActiveOnly(t *testing.T) {
	s := boardsState(2,
		entities.Taskboard{ID: 1, BoardTitle: "Work"},
		entities.Taskboard{ID: 2, BoardTitle: "Home"},
	)

	next, _ := Reduce(s, UpdateTaskboard{NewTitle: "House"})

	if next.Taskboards.UserTaskboards[1].BoardTitle != "House" {
		t.Errorf("expected active board renamed, got %v", next.Taskboards.UserTaskboards)
	}
	if next.Taskboards.UserTaskboards[0].BoardTitle != "Work" {
		t.Errorf("expected other board untouched, got %v", next.Taskboards.UserTaskboards)
	}
	if s.Taskboards.UserTaskboards[1].BoardTitle != "Home" {
		t.Error("input state was mutated")
	}
}

func TestReduce_UpdateSharedUsers(t *testing.T) {
	s := boardsState(1, entities.Taskboard{ID: 1, BoardTitle: "Work"})

	next, _ := Reduce(s, UpdateSharedUsers{TaskboardID: 1, SharedUsers: []int{10, 11}})
	if got := next.Taskboards.UserTaskboards[0].SharedUsers; !reflect.DeepEqual(got, []int{10, 11}) {
		t.Errorf("expected shared users [10 11], got %v", got)
	}

	missing, _ := Reduce(next, UpdateSharedUsers{TaskboardID: 99, SharedUsers: []int{1}})
	if !reflect.DeepEqual(missing.Taskboards, next.Taskboards) {
		t.Error("expected no-op for an unknown board")
	}
}

func TestReduce_SnackbarCloseKeepsMessage(t *testing.T) {
	s := Default()

	s, _ = Reduce(s, UpdateSnackbar{Message: "Saved", Severity: entities.SeveritySuccess})
	if !s.SnackbarState.IsOpen {
		t.Fatal("expected snackbar to open")
	}

	s, _ = Reduce(s, CloseSnackbar{})
	want := Snackbar{IsOpen: false, Message: "Saved", Severity: entities.SeveritySuccess}
	if s.SnackbarState != want {
		t.Errorf("expected %+v, got %+v", want, s.SnackbarState)
	}
}

func TestReduce_LogoutResetsToDefault(t *testing.T) {
	s := boardsState(1, entities.Taskboard{ID: 1, BoardTitle: "Work"})
	s, _ = Reduce(s, LoginUser{User: entities.User{ID: 3, Email: "a@b.c"}, HasUsedGoogleOauth: true})
	s, _ = Reduce(s, ChangeTheme{Mode: entities.ThemeDark})
	s, _ = Reduce(s, ChangeSharedBoardState{IsShared: true})
	s, _ = Reduce(s, SetTaskcards{Taskcards: []entities.Taskcard{{ID: 5, TaskboardID: 1}}})

	next, effects := Reduce(s, LogoutUser{})

	if !reflect.DeepEqual(next, Default()) {
		t.Errorf("expected default state, got %+v", next)
	}
	if !reflect.DeepEqual(effects, []Effect{ClearSession{}}) {
		t.Errorf("expected ClearSession effect, got %v", effects)
	}

	again, _ := Reduce(next, LogoutUser{})
	if !reflect.DeepEqual(again, Default()) {
		t.Error("expected logout to be idempotent")
	}
}

func TestReduce_LoginEmitsPersistUser(t *testing.T) {
	user := entities.User{ID: 3, Email: "a@b.c", Username: "ab"}

	next, effects := Reduce(Default(), LoginUser{User: user, HasUsedGoogleOauth: true})

	if !next.IsLoggedIn || !next.HasUsedGoogleOauth {
		t.Errorf("expected logged-in google session, got %+v", next)
	}
	user.HasUsedGoogleOauth = true
	if !reflect.DeepEqual(effects, []Effect{PersistUser{User: user}}) {
		t.Errorf("unexpected effects %v", effects)
	}

	_, effects = Reduce(next, SetSessionToken{Token: "abc"})
	if !reflect.DeepEqual(effects, []Effect{PersistToken{Token: "abc"}}) {
		t.Errorf("unexpected effects %v", effects)
	}
}

func TestReduce_SetTaskboardsComputesShared(t *testing.T) {
	s, _ := Reduce(Default(), SetTaskboards{
		Taskboards: Taskboards{
			UserTaskboards:   []entities.Taskboard{},
			SharedTaskboards: []entities.Taskboard{{ID: 4, BoardTitle: "Team"}},
		},
		ActiveTaskboard: Active(4),
	})

	if s.IsLoading {
		t.Error("expected loading to clear")
	}
	if !s.IsShared {
		t.Error("expected shared flag for a shared-only active board")
	}
}

func TestReduce_ChangeActiveDoesNotRefreshCards(t *testing.T) {
	s := boardsState(1,
		entities.Taskboard{ID: 1, BoardTitle: "Work"},
		entities.Taskboard{ID: 2, BoardTitle: "Home"},
	)
	s, _ = Reduce(s, SetTaskcards{Taskcards: []entities.Taskcard{{ID: 8, TaskboardID: 1}}})

	next, _ := Reduce(s, ChangeActiveTaskboard{TaskboardID: 2})

	if !next.ActiveTaskboard.Is(2) {
		t.Errorf("expected active 2, got %+v", next.ActiveTaskboard)
	}
	if len(next.CurrentTaskcards) != 1 {
		t.Error("expected cards to be left for the watcher to refresh")
	}
}

func TestReduce_TaskLifecycle(t *testing.T) {
	s := Default()
	s, _ = Reduce(s, SetTaskcards{Taskcards: []entities.Taskcard{{ID: 1, TaskboardID: 1}, {ID: 2, TaskboardID: 1}}})
	s, _ = Reduce(s, SetTasks{TaskcardID: 1, Tasks: []entities.Task{{ID: 10, Title: "a", TaskcardID: 1}}})
	s, _ = Reduce(s, AddTask{Task: entities.Task{ID: 11, Title: "b", TaskcardID: 1}})
	s, _ = Reduce(s, AddTask{Task: entities.Task{ID: 20, Title: "c", TaskcardID: 2}})

	deadline := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	s, _ = Reduce(s, UpdateTask{Task: entities.Task{ID: 11, Title: "b2", TaskcardID: 1, DeadlineDate: &deadline}})

	tasks := s.TasksFor(1)
	if len(tasks) != 2 || tasks[1].Title != "b2" || tasks[1].Mode() != entities.ReminderDeadline {
		t.Fatalf("unexpected tasks for card 1: %+v", tasks)
	}

	before := s
	s, _ = Reduce(s, DeleteTask{TaskcardID: 1, TaskID: 10})
	if len(s.TasksFor(1)) != 1 || len(before.TasksFor(1)) != 2 {
		t.Errorf("delete task must not mutate the previous state")
	}

	s, _ = Reduce(s, DeleteTaskcard{TaskcardID: 2})
	if _, ok := s.Tasks[2]; ok {
		t.Error("expected tasks of a deleted card to be dropped")
	}

	s, _ = Reduce(s, ClearAllTaskcards{})
	if len(s.CurrentTaskcards) != 0 || len(s.Tasks) != 0 {
		t.Errorf("expected empty cards and tasks, got %v %v", s.CurrentTaskcards, s.Tasks)
	}
}

func TestReduce_SelectionInvariantAcrossSequence(t *testing.T) {
	shared := []entities.Taskboard{{ID: 100, BoardTitle: "Shared"}}
	s, _ := Reduce(Default(), SetTaskboards{
		Taskboards: Taskboards{
			UserTaskboards:   []entities.Taskboard{{ID: 1}, {ID: 2}},
			SharedTaskboards: shared,
		},
		ActiveTaskboard: Active(2),
	})

	actions := []Action{
		AddNewTaskboard{Taskboard: entities.Taskboard{ID: 3}},
		ChangeActiveTaskboard{TaskboardID: 3},
		DeleteTaskboard{Taskboard: entities.Taskboard{ID: 3}},
		DeleteTaskboard{Taskboard: entities.Taskboard{ID: 1}},
		ChangeActiveTaskboard{TaskboardID: 100},
		DeleteTaskboard{Taskboard: entities.Taskboard{ID: 2}},
		UpdateTaskboard{NewTitle: "ignored"},
	}
	for _, a := range actions {
		s, _ = Reduce(s, a)
		if !s.SelectionValid() {
			t.Fatalf("selection invalid after %q: %+v", a.Kind(), s.ActiveTaskboard)
		}
	}
	if !s.ActiveTaskboard.Is(100) {
		t.Errorf("expected the shared board to stay active, got %+v", s.ActiveTaskboard)
	}
}

func TestDefaultSelection(t *testing.T) {
	boards := Taskboards{
		UserTaskboards:   []entities.Taskboard{{ID: 1}, {ID: 2}},
		SharedTaskboards: []entities.Taskboard{{ID: 5}},
	}

	tests := []struct {
		name      string
		boards    Taskboards
		preferred Selection
		want      Selection
	}{
		{"keeps preferred own board", boards, Active(2), Active(2)},
		{"keeps preferred shared board", boards, Active(5), Active(5)},
		{"falls back to first own board", boards, Active(42), Active(1)},
		{"no preference", boards, NoBoards(), Active(1)},
		{"shared only", Taskboards{SharedTaskboards: boards.SharedTaskboards}, NoBoards(), Active(5)},
		{"empty", Taskboards{}, Active(1), NoBoards()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultSelection(tt.boards, tt.preferred); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestReduce_SetTaskcardsDropsStaleTaskLists(t *testing.T) {
	s := Default()
	s, _ = Reduce(s, SetTasks{TaskcardID: 1, Tasks: []entities.Task{{ID: 10, TaskcardID: 1}}})
	s, _ = Reduce(s, SetTasks{TaskcardID: 2, Tasks: []entities.Task{{ID: 20, TaskcardID: 2}}})

	next, _ := Reduce(s, SetTaskcards{Taskcards: []entities.Taskcard{{ID: 2, TaskboardID: 5}}})

	if _, ok := next.Tasks[1]; ok {
		t.Error("expected tasks of card 1 to be dropped")
	}
	if len(next.TasksFor(2)) != 1 {
		t.Errorf("expected tasks of card 2 to be kept, got %v", next.TasksFor(2))
	}
	if len(s.Tasks) != 2 {
		t.Error("previous state must not be mutated")
	}
}

func TestReduce_SetTaskboardsDropsCardsOfDeselectedBoard(t *testing.T) {
	s := boardsState(1, entities.Taskboard{ID: 1, BoardTitle: "Work"}, entities.Taskboard{ID: 2, BoardTitle: "Home"})
	s, _ = Reduce(s, SetTaskcards{Taskcards: []entities.Taskcard{{ID: 11, TaskboardID: 1}}})
	s, _ = Reduce(s, SetTasks{TaskcardID: 11, Tasks: []entities.Task{{ID: 111, TaskcardID: 11}}})

	tests := []struct {
		name      string
		boards    Taskboards
		selection Selection
		wantCards int
	}{
		{"same board keeps cards", Taskboards{UserTaskboards: []entities.Taskboard{{ID: 1}, {ID: 2}}}, Active(1), 1},
		{"other board drops cards", Taskboards{UserTaskboards: []entities.Taskboard{{ID: 2}}}, Active(2), 0},
		{"no boards drops cards", Taskboards{UserTaskboards: []entities.Taskboard{}}, NoBoards(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _ := Reduce(s, SetTaskboards{Taskboards: tt.boards, ActiveTaskboard: tt.selection})
			if len(next.CurrentTaskcards) != tt.wantCards || len(next.Tasks) != tt.wantCards {
				t.Errorf("expected %d cards and task lists, got %+v %+v", tt.wantCards, next.CurrentTaskcards, next.Tasks)
			}
			if len(s.CurrentTaskcards) != 1 {
				t.Error("previous state must not be mutated")
			}
		})
	}
}

func TestReduce_ChangeActiveToUnknownBoardIsIgnored(t *testing.T) {
	s := boardsState(1, entities.Taskboard{ID: 1, BoardTitle: "Work"})

	next, _ := Reduce(s, ChangeActiveTaskboard{TaskboardID: 42})

	if !next.ActiveTaskboard.Is(1) || !next.SelectionValid() {
		t.Errorf("expected board 1 to stay active, got %+v", next.ActiveTaskboard)
	}
	if next, _ = Reduce(Default(), ChangeActiveTaskboard{TaskboardID: 42}); !next.ActiveTaskboard.IsNone() {
		t.Errorf("expected NoBoards to stay, got %+v", next.ActiveTaskboard)
	}
}
