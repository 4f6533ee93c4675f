package services

import (
	"context"

	"github.com/taskboard/client/internal/domain/entities"
	"github.com/taskboard/client/internal/domain/state"
	"github.com/taskboard/client/internal/infrastructure/logger"
	"github.com/taskboard/client/internal/ports"
)

// BoardService handles taskboard operations
type BoardService struct {
	adapter
	api ports.TaskboardAPI
}

// NewBoardService creates a new board service
func NewBoardService(store Store, api ports.TaskboardAPI, logger *logger.Logger) *BoardService {
	return &BoardService{
		adapter: newAdapter(store, logger, "boards"),
		api:     api,
	}
}

// CreateBoard creates a taskboard. The selection is left unchanged.
func (s *BoardService) CreateBoard(ctx context.Context, title string) (*entities.Taskboard, error) {
	req := ports.CreateTaskboardRequest{TaskboardTitle: title}
	if err := s.validate.Struct(req); err != nil {
		return nil, s.invalid(ctx, validationCause(err, entities.ErrEmptyTitle), "Board title cannot be empty")
	}

	board, err := s.api.CreateTaskboard(ctx, req)
	if err != nil {
		return nil, s.remoteFailure(ctx, "create taskboard", err, networkErrorMessage, "Could not create taskboard")
	}

	s.store.Dispatch(ctx, state.AddNewTaskboard{Taskboard: *board})
	s.logger.Infow("Taskboard created", "taskboard_id", board.ID)

	return board, nil
}

// RenameBoard renames the active taskboard.
func (s *BoardService) RenameBoard(ctx context.Context, newTitle string) (*entities.Taskboard, error) {
	req := ports.RenameTaskboardRequest{TaskboardTitle: newTitle}
	if err := s.validate.Struct(req); err != nil {
		return nil, s.invalid(ctx, validationCause(err, entities.ErrEmptyTitle), "Board title cannot be empty")
	}

	active, err := s.activeOwnedTaskboard(ctx)
	if err != nil {
		return nil, err
	}

	board, err := s.api.RenameTaskboard(ctx, active.ID, req)
	if err != nil {
		return nil, s.remoteFailure(ctx, "rename taskboard", err, networkErrorMessage, "Could not rename taskboard")
	}

	title := newTitle
	if board != nil && board.BoardTitle != "" {
		title = board.BoardTitle
	}
	// UpdateTaskboard renames whatever is active, so skip it if the
	// selection moved while the call was in flight.
	if s.store.State().ActiveTaskboard.Is(active.ID) {
		s.store.Dispatch(ctx, state.UpdateTaskboard{NewTitle: title})
	} else {
		s.logger.Infow("Selection changed during rename", "taskboard_id", active.ID)
	}
	s.notify(ctx, entities.SeverityInfo, "Taskboard renamed")

	return board, nil
}

// DeleteBoard deletes an owned taskboard. Reassigning the selection is the
// reducer's job.
func (s *BoardService) DeleteBoard(ctx context.Context, id int) (*entities.Taskboard, error) {
	current := s.store.State()
	if _, ok := current.FindTaskboard(id); !ok {
		return nil, s.invalid(ctx, entities.ErrTaskboardNotFound, "Taskboard not found")
	}
	if !current.OwnsTaskboard(id) {
		return nil, s.invalid(ctx, entities.ErrSharedTaskboard, "Only the owner can delete this taskboard")
	}

	deleted, err := s.api.DeleteTaskboard(ctx, id)
	if err != nil {
		return nil, s.remoteFailure(ctx, "delete taskboard", err, networkErrorMessage, "Cannot delete taskboard")
	}
	if deleted == nil || deleted.ID == 0 {
		deleted = &entities.Taskboard{ID: id}
	}

	s.store.Dispatch(ctx, state.DeleteTaskboard{Taskboard: *deleted})
	s.notify(ctx, entities.SeverityInfo, "Taskboard deleted")
	s.logger.Infow("Taskboard deleted", "taskboard_id", id)

	return deleted, nil
}

// ShareBoard replaces the active board's share list. An empty list revokes
// every grant.
func (s *BoardService) ShareBoard(ctx context.Context, emails []string) ([]int, error) {
	active, err := s.activeOwnedTaskboard(ctx)
	if err != nil {
		return nil, err
	}
	if emails == nil {
		emails = []string{}
	}

	resp, err := s.api.ShareTaskboard(ctx, active.ID, ports.ShareTaskboardRequest{Emails: emails})
	if err != nil {
		return nil, s.remoteFailure(ctx, "share taskboard", err, networkErrorMessage, "Could not share taskboard")
	}

	s.store.Dispatch(ctx, state.UpdateSharedUsers{TaskboardID: active.ID, SharedUsers: resp.SharedUsers})
	if len(emails) == 0 {
		s.notify(ctx, entities.SeveritySuccess, "Revoked access")
	} else {
		s.notify(ctx, entities.SeveritySuccess, "Shared taskboard")
	}

	return resp.SharedUsers, nil
}
