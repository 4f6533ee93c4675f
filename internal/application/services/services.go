// Package services holds the sync adapters: each operation validates its
// input, issues one remote call and reconciles the store with the server's
// reply. Every recoverable failure surfaces exactly one notice.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/taskboard/client/internal/domain/entities"
	"github.com/taskboard/client/internal/domain/state"
	"github.com/taskboard/client/internal/infrastructure/logger"
	"github.com/taskboard/client/internal/ports"
)

const networkErrorMessage = "There's some issue with your network"

// Store is the slice of the state container the adapters need.
type Store interface {
	State() state.State
	Dispatch(ctx context.Context, action state.Action) state.State
}

// adapter carries what every sync adapter shares.
type adapter struct {
	store    Store
	validate *validator.Validate
	logger   *logger.Logger
}

func newAdapter(store Store, log *logger.Logger, component string) adapter {
	return adapter{
		store:    store,
		validate: validator.New(),
		logger:   log.WithComponent(component),
	}
}

func (a adapter) notify(ctx context.Context, severity entities.Severity, message string) {
	a.store.Dispatch(ctx, state.Notice(severity, message))
}

// invalid reports a failed local precondition. No request is sent.
func (a adapter) invalid(ctx context.Context, cause error, message string) error {
	a.notify(ctx, entities.SeverityError, message)
	return cause
}

// remoteFailure translates a failed remote call into one notice. Transport
// failures get networkMessage, rejections by the server get statusMessage.
func (a adapter) remoteFailure(ctx context.Context, op string, err error, networkMessage, statusMessage string) error {
	switch se, isStatus := ports.AsStatusError(err); {
	case ports.IsNetworkError(err):
		a.logger.Warnw("Remote call failed", "operation", op, "error", err)
		a.notify(ctx, entities.SeverityError, networkMessage)
	case isStatus:
		a.logger.Warnw("Remote call rejected", "operation", op, "status", se.StatusCode, "error", err)
		a.notify(ctx, entities.SeverityError, statusMessage)
	default:
		a.logger.Errorw("Remote call failed", "operation", op, "error", err)
		a.notify(ctx, entities.SeverityError, statusMessage)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// activeOwnedTaskboard returns the active board when it belongs to the account.
func (a adapter) activeOwnedTaskboard(ctx context.Context) (entities.Taskboard, error) {
	s := a.store.State()
	board, ok := s.ActiveTaskboardValue()
	if !ok {
		return entities.Taskboard{}, a.invalid(ctx, entities.ErrNoActiveTaskboard, "Select a taskboard first")
	}
	if !s.OwnsTaskboard(board.ID) {
		return entities.Taskboard{}, a.invalid(ctx, entities.ErrSharedTaskboard, "Only the owner can change this taskboard")
	}
	return board, nil
}

func validationCause(err error, sentinel error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("%w: %s failed on %s", sentinel, verrs[0].Field(), verrs[0].Tag())
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
