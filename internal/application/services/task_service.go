package services

import (
	"context"
	"net/http"

	"github.com/taskboard/client/internal/domain/entities"
	"github.com/taskboard/client/internal/domain/state"
	"github.com/taskboard/client/internal/infrastructure/logger"
	"github.com/taskboard/client/internal/ports"
)

const fetchTasksFailedMessage = "Something went wrong with the network. Could not fetch all tasks"

// TaskService handles task operations
type TaskService struct {
	adapter
	api ports.TaskAPI
}

// NewTaskService creates a new task service
func NewTaskService(store Store, api ports.TaskAPI, logger *logger.Logger) *TaskService {
	return &TaskService{
		adapter: newAdapter(store, logger, "tasks"),
		api:     api,
	}
}

// FetchTasks replaces the task list held for a card.
func (s *TaskService) FetchTasks(ctx context.Context, taskcardID int) ([]entities.Task, error) {
	tasks, err := s.api.ListTasks(ctx, taskcardID)
	if err != nil {
		return nil, s.remoteFailure(ctx, "fetch tasks", err, fetchTasksFailedMessage, "Could not fetch all tasks")
	}

	s.store.Dispatch(ctx, state.SetTasks{TaskcardID: taskcardID, Tasks: tasks})
	return tasks, nil
}

// AddTask creates a plain task in a card.
func (s *TaskService) AddTask(ctx context.Context, taskcardID int, title string) (*entities.Task, error) {
	req := ports.CreateTaskRequest{TaskTitle: title}
	if err := s.validate.Struct(req); err != nil {
		return nil, s.invalid(ctx, validationCause(err, entities.ErrEmptyTitle), "task title cannot be empty")
	}

	task, err := s.api.CreateTask(ctx, taskcardID, req)
	if err != nil {
		return nil, s.remoteFailure(ctx, "create task", err, "Could not create new task", "Could not create new task")
	}
	if task.TaskcardID == 0 {
		task.TaskcardID = taskcardID
	}

	s.store.Dispatch(ctx, state.AddTask{Task: *task})
	s.logger.Infow("Task created", "task_id", task.ID, "taskcard_id", task.TaskcardID)

	return task, nil
}

// EditTask sends the request shape matching edit.Mode. A deadline without a
// date, or an event whose end is not strictly after its start, is rejected
// before any request is sent.
func (s *TaskService) EditTask(ctx context.Context, task entities.Task, edit entities.TaskEdit) (*entities.Task, error) {
	if !edit.Mode.IsValid() {
		edit.Mode = entities.ReminderPlain
	}

	req := ports.NewUpdateTaskRequest(edit)
	if err := s.validate.Struct(req); err != nil {
		return nil, s.invalid(ctx, validationCause(err, entities.ErrEmptyTitle), "task title cannot be empty")
	}
	switch edit.Mode {
	case entities.ReminderDeadline:
		if err := s.validate.Struct(ports.DeadlineWindow{DeadlineDate: edit.Deadline}); err != nil {
			return nil, s.invalid(ctx, validationCause(err, entities.ErrMissingDeadline), "Please pick a deadline date")
		}
	case entities.ReminderEvent:
		window := ports.EventWindow{EventStartDate: edit.EventStart, EventEndDate: edit.EventEnd}
		if err := s.validate.Struct(window); err != nil {
			return nil, s.invalid(ctx, validationCause(err, entities.ErrInvalidEventWindow), "Event end time must be after its start time")
		}
	}

	updated, err := s.api.UpdateTask(ctx, task.ID, req)
	if err != nil {
		if se, ok := ports.AsStatusError(err); ok && edit.Mode == entities.ReminderEvent &&
			(se.IsConflict() || se.StatusCode == http.StatusBadRequest) {
			s.logger.Infow("Event rejected by server", "task_id", task.ID, "status", se.StatusCode)
			s.notify(ctx, entities.SeverityError, "This event clashes with another event in your calendar")
			return nil, err
		}
		return nil, s.remoteFailure(ctx, "update task", err, "Could not update task", "Could not update task")
	}

	result := mergeEdit(task, edit, updated)
	s.store.Dispatch(ctx, state.UpdateTask{Task: result})
	s.notify(ctx, entities.SeveritySuccess, "Task updated")

	return &result, nil
}

// SetCompleted toggles a task's completion flag.
func (s *TaskService) SetCompleted(ctx context.Context, task entities.Task, completed bool) (*entities.Task, error) {
	edit := entities.TaskEdit{
		Title:       task.Title,
		Description: task.DescriptionText(),
		Mode:        task.Mode(),
	}
	if task.DeadlineDate != nil {
		edit.Deadline = *task.DeadlineDate
	}
	if task.EventStartDate != nil && task.EventEndDate != nil {
		edit.EventStart, edit.EventEnd = *task.EventStartDate, *task.EventEndDate
	}

	req := ports.NewUpdateTaskRequest(edit)
	req.Completed = &completed

	updated, err := s.api.UpdateTask(ctx, task.ID, req)
	if err != nil {
		return nil, s.remoteFailure(ctx, "update task", err, "Could not update task", "Could not update task")
	}

	result := task
	if updated != nil && updated.ID != 0 {
		result = *updated
		if result.TaskcardID == 0 {
			result.TaskcardID = task.TaskcardID
		}
	} else {
		result.Completed = completed
	}
	s.store.Dispatch(ctx, state.UpdateTask{Task: result})

	return &result, nil
}

// DeleteTask deletes a task from a card.
func (s *TaskService) DeleteTask(ctx context.Context, taskcardID, taskID int) error {
	if err := s.api.DeleteTask(ctx, taskID); err != nil {
		return s.remoteFailure(ctx, "delete task", err, "Could not delete task", "Could not delete task")
	}

	s.store.Dispatch(ctx, state.DeleteTask{TaskcardID: taskcardID, TaskID: taskID})
	s.logger.Infow("Task deleted", "task_id", taskID, "taskcard_id", taskcardID)

	return nil
}

// mergeEdit prefers the server's copy of the task and falls back to applying
// the edit locally when the reply carries no entity.
func mergeEdit(task entities.Task, edit entities.TaskEdit, updated *entities.Task) entities.Task {
	if updated != nil && updated.ID != 0 {
		out := *updated
		if out.TaskcardID == 0 {
			out.TaskcardID = task.TaskcardID
		}
		return out
	}

	out := task
	out.Title = edit.Title
	description := edit.Description
	out.Description = &description
	out.DeadlineDate, out.EventStartDate, out.EventEndDate = nil, nil, nil
	switch edit.Mode {
	case entities.ReminderDeadline:
		deadline := edit.Deadline
		out.DeadlineDate = &deadline
	case entities.ReminderEvent:
		start, end := edit.EventStart, edit.EventEnd
		out.EventStartDate, out.EventEndDate = &start, &end
	}
	return out
}
