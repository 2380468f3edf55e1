// Package tasks is the task repository client used by the CLI and the timer
// engine. It validates input before any network call, filters lists locally,
// and keeps a per-user read-through cache that every mutation invalidates.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/MAYANKpandey14/do-it-with-ease/internal/cache"
	apperrors "github.com/MAYANKpandey14/do-it-with-ease/internal/errors"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/model"
)

type Repository interface {
	List(ctx context.Context, query model.TaskQuery) ([]model.Task, error)
	Create(ctx context.Context, task model.NewTask) (model.Task, error)
	Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error)
	Delete(ctx context.Context, id string) error
}

// Identity resolves the signed-in user. Cache entries are scoped by it.
type Identity interface {
	UserID() (string, error)
}

type Service struct {
	repo     Repository
	cache    cache.Cache
	identity Identity
	logger   *zap.Logger
}

func NewService(repo Repository, c cache.Cache, identity Identity, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, cache: c, identity: identity, logger: logger}
}

func (s *Service) List(ctx context.Context, filter Filter) ([]model.Task, error) {
	const op = "list tasks"
	if filter.Priority != nil && !filter.Priority.Valid() {
		return nil, apperrors.Validation(op, apperrors.CodeInvalidTask, "priority must be high, medium or low")
	}

	scope, err := s.scope(op)
	if err != nil {
		return nil, err
	}

	all, err := s.cachedList(ctx, scope, filter.Query())
	if err != nil {
		return nil, err
	}
	return Apply(all, filter), nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Task, error) {
	all, err := s.List(ctx, Filter{})
	if err != nil {
		return model.Task{}, err
	}
	for _, t := range all {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Task{}, apperrors.Validation("get task", apperrors.CodeInvalidTask, fmt.Sprintf("task %s not found", id))
}

func (s *Service) Create(ctx context.Context, input model.NewTask) (model.Task, error) {
	const op = "create task"

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return model.Task{}, apperrors.Validation(op, apperrors.CodeInvalidTask, "title is required")
	}
	if input.Priority == "" {
		input.Priority = model.PriorityMedium
	}
	if !input.Priority.Valid() {
		return model.Task{}, apperrors.Validation(op, apperrors.CodeInvalidTask, "priority must be high, medium or low")
	}
	if input.EstimatedPomodoros == 0 {
		input.EstimatedPomodoros = 1
	}
	if input.EstimatedPomodoros < 1 {
		return model.Task{}, apperrors.Validation(op, apperrors.CodeInvalidTask, "estimated pomodoros must be positive")
	}
	input.Tags = model.NormalizeTags(input.Tags)

	scope, err := s.scope(op)
	if err != nil {
		return model.Task{}, err
	}

	task, err := s.repo.Create(ctx, input)
	s.invalidate(ctx, scope)
	if err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// Update applies a partial update; nil fields in patch are left untouched.
func (s *Service) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	const op = "update task"

	if id == "" {
		return model.Task{}, apperrors.Validation(op, apperrors.CodeInvalidTask, "task id is required")
	}
	if err := validatePatch(op, &patch); err != nil {
		return model.Task{}, err
	}

	scope, err := s.scope(op)
	if err != nil {
		return model.Task{}, err
	}

	task, err := s.repo.Update(ctx, id, patch)
	s.invalidate(ctx, scope)
	if err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "delete task"

	if id == "" {
		return apperrors.Validation(op, apperrors.CodeInvalidTask, "task id is required")
	}
	scope, err := s.scope(op)
	if err != nil {
		return err
	}

	err = s.repo.Delete(ctx, id)
	s.invalidate(ctx, scope)
	return err
}

func validatePatch(op string, patch *model.TaskPatch) error {
	if patch.Empty() {
		return apperrors.Validation(op, apperrors.CodeEmptyPatch, "nothing to update")
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return apperrors.Validation(op, apperrors.CodeInvalidTask, "title cannot be empty")
		}
		patch.Title = &title
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return apperrors.Validation(op, apperrors.CodeInvalidTask, "priority must be high, medium or low")
	}
	if patch.EstimatedPomodoros != nil && *patch.EstimatedPomodoros < 1 {
		return apperrors.Validation(op, apperrors.CodeInvalidTask, "estimated pomodoros must be positive")
	}
	if patch.CompletedPomodoros != nil && *patch.CompletedPomodoros < 0 {
		return apperrors.Validation(op, apperrors.CodeInvalidTask, "completed pomodoros cannot be negative")
	}
	if patch.Tags != nil {
		tags := model.NormalizeTags(*patch.Tags)
		patch.Tags = &tags
	}
	return nil
}

func (s *Service) scope(op string) (string, error) {
	if s.identity == nil {
		return "", apperrors.NotAuthenticated(op)
	}
	userID, err := s.identity.UserID()
	if err != nil {
		return "", err
	}
	if userID == "" {
		return "", apperrors.NotAuthenticated(op)
	}
	return userID, nil
}

func (s *Service) cachedList(ctx context.Context, scope string, query model.TaskQuery) ([]model.Task, error) {
	key := queryKey(query)
	if s.cache != nil {
		raw, ok, err := s.cache.Get(ctx, scope, key)
		if err != nil {
			s.logger.Warn("task cache read failed", zap.String("key", key), zap.Error(err))
		}
		if ok {
			var cached []model.Task
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	all, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		raw, err := json.Marshal(all)
		if err == nil {
			err = s.cache.Set(ctx, scope, key, raw)
		}
		if err != nil {
			s.logger.Warn("task cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return all, nil
}

func (s *Service) invalidate(ctx context.Context, scope string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, scope); err != nil {
		s.logger.Warn("task cache invalidate failed", zap.String("scope", scope), zap.Error(err))
	}
}

func queryKey(q model.TaskQuery) string {
	priority := "any"
	if q.Priority != nil {
		priority = string(*q.Priority)
	}
	completed := "any"
	if q.IsCompleted != nil {
		completed = fmt.Sprintf("%t", *q.IsCompleted)
	}
	return "tasks:priority=" + priority + ":completed=" + completed
}
