package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskboard/client/internal/domain/entities"
	"github.com/taskboard/client/internal/domain/state"
)

// Accepted date layouts for reminder flags, tried in order.
var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}

// editFlags are the task edit flags; unset ones keep the task's value.
type editFlags struct {
	title       string
	description string
	deadline    string
	eventStart  string
	eventEnd    string
	plain       bool
}

// NewTaskCommand creates the task command group.
func NewTaskCommand(opts *Options) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Task commands on the active taskboard",
	}

	taskCmd.AddCommand(&cobra.Command{
		Use:   "add <card id> <title>",
		Short: "Add a task to a taskcard",
		Args:  cobra.MinimumNArgs(2),
		RunE: withApp(opts, func(ctx context.Context, r *runtime, args []string) error {
			cardID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := r.loadBoards(ctx); err != nil {
				return err
			}
			task, err := r.app.Tasks.AddTask(ctx, cardID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return r.renderer.Created("task", task.ID, task.Title)
		}),
	})

	var flags editFlags
	var editCmd *cobra.Command
	editCmd = &cobra.Command{
		Use:   "edit <task id>",
		Short: "Edit a task's title, description or reminder",
		Long: `Edit a task. A task is plain, has a deadline, or is a calendar event.
--deadline makes it a deadline reminder, --event-start with --event-end an event and --plain drops any reminder.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, r *runtime, args []string) error {
			task, err := r.findTask(ctx, args[0])
			if err != nil {
				return err
			}
			set := changed{
				title:       editCmd.Flags().Changed("title"),
				description: editCmd.Flags().Changed("description"),
			}
			edit, err := flags.apply(task, set)
			if err != nil {
				return err
			}
			_, err = r.app.Tasks.EditTask(ctx, task, edit)
			return err
		}),
	}
	editCmd.Flags().StringVar(&flags.title, "title", "", "New title")
	editCmd.Flags().StringVar(&flags.description, "description", "", "New description")
	editCmd.Flags().StringVar(&flags.deadline, "deadline", "", "Deadline (RFC 3339 or 2006-01-02 15:04)")
	editCmd.Flags().StringVar(&flags.eventStart, "event-start", "", "Event start")
	editCmd.Flags().StringVar(&flags.eventEnd, "event-end", "", "Event end")
	editCmd.Flags().BoolVar(&flags.plain, "plain", false, "Remove the deadline or event")
	editCmd.MarkFlagsMutuallyExclusive("plain", "deadline", "event-start")
	editCmd.MarkFlagsMutuallyExclusive("plain", "deadline", "event-end")
	editCmd.MarkFlagsRequiredTogether("event-start", "event-end")
	taskCmd.AddCommand(editCmd)

	var undo bool
	doneCmd := &cobra.Command{
		Use:   "done <task id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, r *runtime, args []string) error {
			task, err := r.findTask(ctx, args[0])
			if err != nil {
				return err
			}
			_, err = r.app.Tasks.SetCompleted(ctx, task, !undo)
			return err
		}),
	}
	doneCmd.Flags().BoolVar(&undo, "undo", false, "Mark the task not completed")
	taskCmd.AddCommand(doneCmd)

	taskCmd.AddCommand(&cobra.Command{
		Use:   "delete <task id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, r *runtime, args []string) error {
			task, err := r.findTask(ctx, args[0])
			if err != nil {
				return err
			}
			return r.app.Tasks.DeleteTask(ctx, task.TaskcardID, task.ID)
		}),
	})

	return taskCmd
}

// findTask loads the active board and looks the task up among its cards.
func (r *runtime) findTask(ctx context.Context, arg string) (entities.Task, error) {
	id, err := parseID(arg)
	if err != nil {
		return entities.Task{}, err
	}
	if err := r.loadBoards(ctx); err != nil {
		return entities.Task{}, err
	}
	task, ok := lookupTask(r.app.State(), id)
	if !ok {
		return entities.Task{}, fmt.Errorf("task %d is not on the active taskboard", id)
	}
	return task, nil
}

func lookupTask(s state.State, id int) (entities.Task, bool) {
	for _, card := range s.CurrentTaskcards {
		for _, t := range s.TasksFor(card.ID) {
			if t.ID == id {
				return t, true
			}
		}
	}
	return entities.Task{}, false
}

// changed reports which edit flags were set on the command line.
type changed struct {
	title, description bool
}

// apply builds the edit from task and the flags that were given.
func (f editFlags) apply(task entities.Task, set changed) (entities.TaskEdit, error) {
	edit := entities.TaskEdit{
		Title:       task.Title,
		Description: task.DescriptionText(),
		Mode:        task.Mode(),
	}
	if task.DeadlineDate != nil {
		edit.Deadline = *task.DeadlineDate
	}
	if task.EventStartDate != nil && task.EventEndDate != nil {
		edit.EventStart = *task.EventStartDate
		edit.EventEnd = *task.EventEndDate
	}

	if set.title {
		edit.Title = f.title
	}
	if set.description {
		edit.Description = f.description
	}

	switch {
	case f.plain:
		edit.Mode = entities.ReminderPlain
	case f.deadline != "":
		deadline, err := parseDate(f.deadline)
		if err != nil {
			return entities.TaskEdit{}, err
		}
		edit.Mode = entities.ReminderDeadline
		edit.Deadline = deadline
	case f.eventStart != "":
		start, err := parseDate(f.eventStart)
		if err != nil {
			return entities.TaskEdit{}, err
		}
		end, err := parseDate(f.eventEnd)
		if err != nil {
			return entities.TaskEdit{}, err
		}
		edit.Mode = entities.ReminderEvent
		edit.EventStart = start
		edit.EventEnd = end
	}

	return edit, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}
