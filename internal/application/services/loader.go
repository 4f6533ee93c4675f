package services

import (
	"context"

	"github.com/taskboard/client/internal/application/store"
	"github.com/taskboard/client/internal/domain/entities"
	"github.com/taskboard/client/internal/domain/state"
	"github.com/taskboard/client/internal/infrastructure/logger"
	"github.com/taskboard/client/internal/ports"
)

// Subscriber is a store that reports committed transitions.
type Subscriber interface {
	Subscribe(fn store.Listener) func()
}

// Loader fetches the authoritative collections and keeps the active board's
// cards in step with the selection.
type Loader struct {
	adapter
	boards ports.TaskboardAPI
	cards  ports.TaskcardAPI
	tasks  *TaskService
}

// NewLoader creates a new loader
func NewLoader(store Store, boards ports.TaskboardAPI, cards ports.TaskcardAPI, tasks *TaskService, logger *logger.Logger) *Loader {
	return &Loader{
		adapter: newAdapter(store, logger, "loader"),
		boards:  boards,
		cards:   cards,
		tasks:   tasks,
	}
}

// LoadBoards replaces both board collections. The current selection is kept
// when it still resolves.
func (l *Loader) LoadBoards(ctx context.Context) (state.Taskboards, error) {
	l.store.Dispatch(ctx, state.ChangeLoadingState{IsLoading: true})

	resp, err := l.boards.ListTaskboards(ctx)
	if err != nil {
		l.store.Dispatch(ctx, state.ChangeLoadingState{IsLoading: false})
		return state.Taskboards{}, l.remoteFailure(ctx, "fetch taskboards", err, networkErrorMessage, "Could not fetch taskboards")
	}

	boards := state.Taskboards{UserTaskboards: resp.UserTaskboards, SharedTaskboards: resp.SharedTaskboards}
	if boards.UserTaskboards == nil {
		boards.UserTaskboards = []entities.Taskboard{}
	}

	prev := l.store.State().ActiveTaskboard
	selection := state.DefaultSelection(boards, prev)
	l.store.Dispatch(ctx, state.SetTaskboards{Taskboards: boards, ActiveTaskboard: selection})

	// A changed selection is picked up by the watcher.
	if selection == prev && !selection.IsNone() {
		if _, err := l.FetchTaskcards(ctx); err != nil {
			return boards, err
		}
	}

	l.logger.Debugw("Taskboards loaded", "own", len(boards.UserTaskboards), "shared", len(boards.SharedTaskboards))
	return boards, nil
}

// SelectBoard makes id the active board.
func (l *Loader) SelectBoard(ctx context.Context, id int) error {
	if _, ok := l.store.State().FindTaskboard(id); !ok {
		return l.invalid(ctx, entities.ErrTaskboardNotFound, "Taskboard not found")
	}
	l.store.Dispatch(ctx, state.ChangeActiveTaskboard{TaskboardID: id})
	return nil
}

// FetchTaskcards loads the active board's cards and then each card's tasks.
// A reply for a board that is no longer active is dropped.
func (l *Loader) FetchTaskcards(ctx context.Context) ([]entities.Taskcard, error) {
	boardID, ok := l.store.State().ActiveTaskboard.ID()
	if !ok {
		return nil, nil
	}

	cards, err := l.cards.ListTaskcards(ctx, boardID)
	if err != nil {
		return nil, l.remoteFailure(ctx, "fetch taskcards", err, networkErrorMessage, "Could not fetch taskcards")
	}

	if !l.store.State().ActiveTaskboard.Is(boardID) {
		l.logger.Debugw("Dropping taskcards of an inactive board", "taskboard_id", boardID)
		return cards, nil
	}
	l.store.Dispatch(ctx, state.SetTaskcards{Taskcards: cards})

	for _, card := range cards {
		if _, err := l.tasks.FetchTasks(ctx, card.ID); err != nil {
			return cards, err
		}
	}
	return cards, nil
}

// Watch refreshes isShared and the cards whenever the active board changes.
// It returns the function that stops watching.
func (l *Loader) Watch(sub Subscriber) func() {
	return sub.Subscribe(func(ctx context.Context, prev, next state.State) {
		if prev.ActiveTaskboard == next.ActiveTaskboard {
			return
		}
		id, ok := next.ActiveTaskboard.ID()
		if !ok {
			return
		}

		if shared := next.IsSharedTaskboard(id); shared != next.IsShared {
			l.store.Dispatch(ctx, state.ChangeSharedBoardState{IsShared: shared})
		}
		if _, err := l.FetchTaskcards(ctx); err != nil {
			l.logger.Warnw("Failed to refresh taskcards", "taskboard_id", id, "error", err)
		}
	})
}
