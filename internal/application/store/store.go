// Package store is the only mutation path into the client state: callers
// dispatch actions, the store runs them through state.Reduce one at a time,
// executes the resulting storage effects and notifies subscribers.
package store

import (
	"context"
	"sync"

	"github.com/taskboard/client/internal/domain/entities"
	"github.com/taskboard/client/internal/domain/state"
	"github.com/taskboard/client/internal/infrastructure/logger"
	"github.com/taskboard/client/internal/infrastructure/metrics"
)

const sessionSaveFailedMessage = "Could not save your session"

// EffectRunner executes the storage effects a transition emits.
type EffectRunner interface {
	Apply(ctx context.Context, effects []state.Effect) error
}

// Listener observes committed transitions. It runs after the store lock is
// released and may dispatch.
type Listener func(ctx context.Context, prev, next state.State)

type subscription struct {
	id int
	fn Listener
}

// Store holds the single state value of the process.
type Store struct {
	mu      sync.Mutex
	current state.State
	runner  EffectRunner
	logger  *logger.Logger
	metrics *metrics.Metrics

	listenersMu sync.Mutex
	listeners   []subscription
	nextID      int
}

// New creates a store holding initial. runner and m may be nil.
func New(initial state.State, runner EffectRunner, log *logger.Logger, m *metrics.Metrics) *Store {
	return &Store{
		current: initial,
		runner:  runner,
		logger:  log.WithComponent("store"),
		metrics: m,
	}
}

// State returns the current state value. Callers must treat it as read-only.
func (s *Store) State() state.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Dispatch applies action and returns the committed state. A failing storage
// effect is logged and surfaced as one error notice in the same transition.
func (s *Store) Dispatch(ctx context.Context, action state.Action) state.State {
	s.mu.Lock()
	prev := s.current
	next, effects := state.Reduce(prev, action)
	s.count(action)

	if len(effects) > 0 && s.runner != nil {
		if err := s.runner.Apply(ctx, effects); err != nil {
			s.logger.WithError(err).Errorw("Failed to apply session effects", "action", action.Kind())
			s.metrics.IncEffectFailure()
			notice := state.Notice(entities.SeverityError, sessionSaveFailedMessage)
			next, _ = state.Reduce(next, notice)
			s.count(notice)
		}
	}

	s.current = next
	s.mu.Unlock()

	s.logger.Debugw("Dispatched action", "action", action.Kind())

	for _, l := range s.snapshotListeners() {
		l(ctx, prev, next)
	}
	return next
}

// Subscribe registers fn for every committed transition and returns the
// function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) snapshotListeners() []Listener {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	out := make([]Listener, len(s.listeners))
	for i, sub := range s.listeners {
		out[i] = sub.fn
	}
	return out
}

func (s *Store) count(action state.Action) {
	s.metrics.IncAction(action.Kind())
	if n, ok := action.(state.UpdateSnackbar); ok {
		s.metrics.IncNotice(string(n.Severity))
	}
}
