package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/MAYANKpandey14/do-it-with-ease/internal/errors"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/model"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/repository"
)

type TaskService struct {
	repo *repository.TaskRepository
}

func NewTaskService(repo *repository.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) List(ctx context.Context, userID string, query model.TaskQuery) ([]model.Task, *apperrors.APIError) {
	if query.Priority != nil && !query.Priority.Valid() {
		return nil, apperrors.BadRequest("invalid_priority", "priority must be one of high, medium, low")
	}
	tasks, err := s.repo.List(ctx, userID, query)
	if err != nil {
		return nil, apperrors.Internal("failed to list tasks")
	}
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, userID string, input model.NewTask) (*model.Task, *apperrors.APIError) {
	now := time.Now().UTC()
	task := model.Task{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Title:              strings.TrimSpace(input.Title),
		Description:        input.Description,
		Priority:           input.Priority,
		Tags:               model.NormalizeTags(input.Tags),
		DueDate:            input.DueDate,
		EstimatedPomodoros: input.EstimatedPomodoros,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if task.EstimatedPomodoros == 0 {
		task.EstimatedPomodoros = 1
	}
	if apiErr := validateTask(&task); apiErr != nil {
		return nil, apiErr
	}

	if err := s.repo.Create(ctx, &task); err != nil {
		return nil, apperrors.Internal("failed to create task")
	}
	return &task, nil
}

func (s *TaskService) Update(ctx context.Context, userID, id string, patch model.TaskPatch) (*model.Task, *apperrors.APIError) {
	if patch.Empty() {
		return nil, apperrors.BadRequest("empty_patch", "no fields to update")
	}

	task, err := s.repo.Get(ctx, userID, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("task_not_found", "task not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get task")
	}

	if patch.Title != nil {
		task.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		task.Description = patch.Description
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Tags != nil {
		task.Tags = model.NormalizeTags(*patch.Tags)
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	if patch.EstimatedPomodoros != nil {
		task.EstimatedPomodoros = *patch.EstimatedPomodoros
	}
	if patch.CompletedPomodoros != nil {
		task.CompletedPomodoros = *patch.CompletedPomodoros
	}
	if patch.IsCompleted != nil {
		task.IsCompleted = *patch.IsCompleted
	}
	if apiErr := validateTask(task); apiErr != nil {
		return nil, apiErr
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, task); err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("task_not_found", "task not found")
		}
		return nil, apperrors.Internal("failed to update task")
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.repo.Delete(ctx, userID, id)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("task_not_found", "task not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete task")
	}
	return nil
}

func validateTask(task *model.Task) *apperrors.APIError {
	if task.Title == "" {
		return apperrors.BadRequest("invalid_title", "title is required")
	}
	if !task.Priority.Valid() {
		return apperrors.BadRequest("invalid_priority", "priority must be one of high, medium, low")
	}
	if task.EstimatedPomodoros < 1 {
		return apperrors.BadRequest("invalid_estimate", "estimated_pomodoros must be positive")
	}
	if task.CompletedPomodoros < 0 {
		return apperrors.BadRequest("invalid_completed", "completed_pomodoros cannot be negative")
	}
	return nil
}
