package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/schedulr/apiserver/types"
)

// TaskRepository defines owner-scoped persistence operations for tasks.
type TaskRepository interface {
	List(ctx context.Context, ownerID string) ([]types.Task, error)
	FindOwned(ctx context.Context, id, ownerID string) (types.Task, error)
	Create(ctx context.Context, task types.Task) (types.Task, error)
	Update(ctx context.Context, task types.Task) (types.Task, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// CompletionNotifier is told about every false to true completion edge.
type CompletionNotifier interface {
	NotifyCompleted(ctx context.Context, task types.Task)
}

// NewTask is the input of TaskService.Create.
type NewTask struct {
	Text     string
	DueDate  *time.Time
	Priority string
}

// TaskService encapsulates task use-cases.
type TaskService struct {
	repo     TaskRepository
	notifier CompletionNotifier
}

func NewTaskService(repo TaskRepository, notifier CompletionNotifier) *TaskService {
	return &TaskService{repo: repo, notifier: notifier}
}

// List returns the owner's tasks, newest first.
func (s *TaskService) List(ctx context.Context, ownerID string) ([]types.Task, error) {
	return s.repo.List(ctx, ownerID)
}

func (s *TaskService) Create(ctx context.Context, ownerID string, input NewTask) (types.Task, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return types.Task{}, newValidationError("Task text is required")
	}

	priority := types.PriorityLow
	if strings.TrimSpace(input.Priority) != "" {
		parsed, err := types.ParsePriority(input.Priority)
		if err != nil {
			return types.Task{}, newValidationError("Priority must be one of Low, Medium, High")
		}
		priority = parsed
	}

	return s.repo.Create(ctx, types.Task{
		Text:     text,
		DueDate:  input.DueDate,
		Priority: priority,
		UserID:   ownerID,
	})
}

// Update applies patch to an owned task. Text and priority keep their
// previous value when the patch leaves them empty, while the due date is
// always replaced (nil clears it). A completion edge is reported to the
// notifier after the write succeeds.
func (s *TaskService) Update(ctx context.Context, id, ownerID string, patch types.TaskPatch) (types.Task, error) {
	task, err := s.repo.FindOwned(ctx, id, ownerID)
	if err != nil {
		return types.Task{}, err
	}
	wasCompleted := task.Completed

	if patch.Text != nil {
		if text := strings.TrimSpace(*patch.Text); text != "" {
			task.Text = text
		}
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	task.DueDate = patch.DueDate
	if patch.Priority != nil && strings.TrimSpace(string(*patch.Priority)) != "" {
		priority, err := types.ParsePriority(string(*patch.Priority))
		if err != nil {
			return types.Task{}, newValidationError("Priority must be one of Low, Medium, High")
		}
		task.Priority = priority
	}

	updated, err := s.repo.Update(ctx, task)
	if err != nil {
		return types.Task{}, fmt.Errorf("update task: %w", err)
	}

	if !wasCompleted && updated.Completed && s.notifier != nil {
		s.notifier.NotifyCompleted(ctx, updated)
	}
	return updated, nil
}

// Delete removes an owned task.
func (s *TaskService) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.repo.FindOwned(ctx, id, ownerID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id, ownerID)
}
