package services

import (
	"context"

	"github.com/taskboard/client/internal/domain/entities"
	"github.com/taskboard/client/internal/domain/state"
	"github.com/taskboard/client/internal/infrastructure/logger"
	"github.com/taskboard/client/internal/ports"
)

// CardService handles taskcard operations on the active board
type CardService struct {
	adapter
	api ports.TaskcardAPI
}

// NewCardService creates a new card service
func NewCardService(store Store, api ports.TaskcardAPI, logger *logger.Logger) *CardService {
	return &CardService{
		adapter: newAdapter(store, logger, "cards"),
		api:     api,
	}
}

// CreateCard adds a card to the active board.
func (s *CardService) CreateCard(ctx context.Context, title string) (*entities.Taskcard, error) {
	req := ports.TaskcardRequest{CardTitle: title}
	if err := s.validate.Struct(req); err != nil {
		return nil, s.invalid(ctx, validationCause(err, entities.ErrEmptyTitle), "List title cannot be empty")
	}

	boardID, ok := s.store.State().ActiveTaskboard.ID()
	if !ok {
		return nil, s.invalid(ctx, entities.ErrNoActiveTaskboard, "Select a taskboard first")
	}

	card, err := s.api.CreateTaskcard(ctx, boardID, req)
	if err != nil {
		return nil, s.remoteFailure(ctx, "create taskcard", err, networkErrorMessage, "Could not create taskcard")
	}
	if card.TaskboardID == 0 {
		card.TaskboardID = boardID
	}

	// Cards are only held for the active board.
	if s.store.State().ActiveTaskboard.Is(card.TaskboardID) {
		s.store.Dispatch(ctx, state.AddNewTaskcard{Taskcard: *card})
	}
	s.logger.Infow("Taskcard created", "taskcard_id", card.ID, "taskboard_id", card.TaskboardID)

	return card, nil
}

// RenameCard renames one of the active board's cards.
func (s *CardService) RenameCard(ctx context.Context, id int, newTitle string) (*entities.Taskcard, error) {
	req := ports.TaskcardRequest{CardTitle: newTitle}
	if err := s.validate.Struct(req); err != nil {
		return nil, s.invalid(ctx, validationCause(err, entities.ErrEmptyTitle), "List title cannot be empty")
	}

	card, err := s.api.RenameTaskcard(ctx, id, req)
	if err != nil {
		return nil, s.remoteFailure(ctx, "rename taskcard", err, "Could not rename taskcard", "Could not rename taskcard")
	}

	title := newTitle
	if card != nil && card.CardTitle != "" {
		title = card.CardTitle
	}
	s.store.Dispatch(ctx, state.UpdateTaskcard{TaskcardID: id, NewListTitle: title})
	s.notify(ctx, entities.SeveritySuccess, "Taskcard renamed")

	return card, nil
}

// DeleteCard deletes a card and the tasks it holds.
func (s *CardService) DeleteCard(ctx context.Context, id int) error {
	if err := s.api.DeleteTaskcard(ctx, id); err != nil {
		return s.remoteFailure(ctx, "delete taskcard", err, "Could not delete taskcard", "Could not delete taskcard")
	}

	s.store.Dispatch(ctx, state.DeleteTaskcard{TaskcardID: id})
	s.logger.Infow("Taskcard deleted", "taskcard_id", id)

	return nil
}

// ClearCards deletes every card of the active board, keeping the board.
func (s *CardService) ClearCards(ctx context.Context) error {
	active, err := s.activeOwnedTaskboard(ctx)
	if err != nil {
		return err
	}

	if err := s.api.ClearTaskcards(ctx, active.ID); err != nil {
		return s.remoteFailure(ctx, "clear taskcards", err, networkErrorMessage, "Could not clear taskcards")
	}

	if s.store.State().ActiveTaskboard.Is(active.ID) {
		s.store.Dispatch(ctx, state.ClearAllTaskcards{})
	}
	s.notify(ctx, entities.SeverityInfo, "Cleared all taskcards")

	return nil
}
