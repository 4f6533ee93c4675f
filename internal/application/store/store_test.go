package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/taskboard/client/internal/domain/entities"
	"github.com/taskboard/client/internal/domain/state"
	"github.com/taskboard/client/internal/infrastructure/logger"
	"github.com/taskboard/client/internal/infrastructure/metrics"
)

type recordingRunner struct {
	mu      sync.Mutex
	applied []state.Effect
	err     error
}

func (r *recordingRunner) Apply(_ context.Context, effects []state.Effect) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.applied = append(r.applied, effects...)
	return nil
}

func TestDispatch_RunsEffects(t *testing.T) {
	runner := &recordingRunner{}
	s := New(state.Default(), runner, logger.NewNop(), nil)

	next := s.Dispatch(context.Background(), state.LoginUser{User: entities.User{ID: 1}})

	if !next.IsLoggedIn || !s.State().IsLoggedIn {
		t.Error("expected logged-in state to be committed")
	}
	if len(runner.applied) != 1 {
		t.Fatalf("expected one effect, got %d", len(runner.applied))
	}
	if _, ok := runner.applied[0].(state.PersistUser); !ok {
		t.Errorf("expected PersistUser, got %T", runner.applied[0])
	}
}

func TestDispatch_EffectFailureBecomesNotice(t *testing.T) {
	m := metrics.New()
	runner := &recordingRunner{err: errors.New("read-only filesystem")}
	s := New(state.Default(), runner, logger.NewNop(), m)

	next := s.Dispatch(context.Background(), state.SetSessionToken{Token: "abc"})

	if !next.SnackbarState.IsOpen || next.SnackbarState.Severity != entities.SeverityError {
		t.Errorf("expected an open error notice, got %+v", next.SnackbarState)
	}
	if got := testutil.ToFloat64(m.EffectFailures); got != 1 {
		t.Errorf("expected 1 effect failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.NoticesTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 error notice, got %v", got)
	}
}

func TestDispatch_CountsActions(t *testing.T) {
	m := metrics.New()
	s := New(state.Default(), nil, logger.NewNop(), m)
	ctx := context.Background()

	s.Dispatch(ctx, state.ChangeTheme{Mode: entities.ThemeDark})
	s.Dispatch(ctx, state.ChangeTheme{Mode: entities.ThemeLight})
	s.Dispatch(ctx, state.Notice(entities.SeveritySuccess, "Saved"))

	if got := testutil.ToFloat64(m.ActionsTotal.WithLabelValues("change theme")); got != 2 {
		t.Errorf("expected 2 theme changes, got %v", got)
	}
	if got := testutil.ToFloat64(m.NoticesTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("expected 1 success notice, got %v", got)
	}
}

func TestSubscribe(t *testing.T) {
	s := New(state.Default(), nil, logger.NewNop(), nil)
	ctx := context.Background()

	var seen []entities.ThemeMode
	unsubscribe := s.Subscribe(func(_ context.Context, prev, next state.State) {
		seen = append(seen, next.ThemeMode)
	})

	s.Dispatch(ctx, state.ChangeTheme{Mode: entities.ThemeDark})
	unsubscribe()
	s.Dispatch(ctx, state.ChangeTheme{Mode: entities.ThemeLight})

	if len(seen) != 1 || seen[0] != entities.ThemeDark {
		t.Errorf("expected exactly one dark notification, got %v", seen)
	}
}

func TestSubscribe_ListenerMayDispatch(t *testing.T) {
	initial, _ := state.Reduce(state.Default(), state.SetTaskboards{
		Taskboards:      state.Taskboards{UserTaskboards: []entities.Taskboard{{ID: 1}, {ID: 3}}},
		ActiveTaskboard: state.Active(1),
	})
	s := New(initial, nil, logger.NewNop(), nil)
	ctx := context.Background()

	s.Subscribe(func(ctx context.Context, prev, next state.State) {
		if prev.ActiveTaskboard != next.ActiveTaskboard {
			s.Dispatch(ctx, state.ChangeSharedBoardState{IsShared: true})
		}
	})

	s.Dispatch(ctx, state.ChangeActiveTaskboard{TaskboardID: 3})

	if !s.State().IsShared {
		t.Error("expected the listener's dispatch to be committed")
	}
}

func TestDispatch_Concurrent(t *testing.T) {
	s := New(state.Default(), nil, logger.NewNop(), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			s.Dispatch(ctx, state.AddNewTaskcard{Taskcard: entities.Taskcard{ID: id, CardTitle: "card"}})
		}(i)
	}
	wg.Wait()

	if got := len(s.State().CurrentTaskcards); got != 50 {
		t.Errorf("expected 50 cards, got %d", got)
	}
}
