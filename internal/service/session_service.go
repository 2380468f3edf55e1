package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/MAYANKpandey14/do-it-with-ease/internal/errors"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/model"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/repository"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type SessionService struct {
	sessions *repository.SessionRepository
	tasks    *repository.TaskRepository
}

func NewSessionService(sessions *repository.SessionRepository, tasks *repository.TaskRepository) *SessionService {
	return &SessionService{sessions: sessions, tasks: tasks}
}

func (s *SessionService) Create(ctx context.Context, userID string, input model.NewSession) (*model.PomodoroSession, *apperrors.APIError) {
	if input.DurationSeconds <= 0 {
		return nil, apperrors.BadRequest("invalid_duration", "duration must be positive seconds")
	}
	if !input.SessionType.Valid() {
		return nil, apperrors.BadRequest("invalid_session_type", "session_type must be one of work, short_break, long_break")
	}
	if input.TaskID == "" {
		return nil, apperrors.BadRequest("invalid_task", "task_id is required")
	}

	if _, err := s.tasks.Get(ctx, userID, input.TaskID); err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("task_not_found", "task not found")
		}
		return nil, apperrors.Internal("failed to get task")
	}

	now := time.Now().UTC()
	startedAt := input.StartedAt.UTC()
	if input.StartedAt.IsZero() {
		startedAt = now
	}

	session := model.PomodoroSession{
		ID:              uuid.NewString(),
		UserID:          userID,
		TaskID:          input.TaskID,
		DurationSeconds: input.DurationSeconds,
		SessionType:     input.SessionType,
		Status:          model.SessionRunning,
		StartedAt:       startedAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.sessions.Insert(ctx, &session); err != nil {
		return nil, apperrors.Internal("failed to create session")
	}
	return &session, nil
}

// Finalize moves a running session to a terminal status. Repeating the
// status a session already has returns it unchanged; switching between
// terminal statuses is a conflict.
func (s *SessionService) Finalize(ctx context.Context, userID, id string, input model.SessionFinalize) (*model.PomodoroSession, *apperrors.APIError) {
	if !input.Status.Terminal() {
		return nil, apperrors.BadRequest("invalid_status", "status must be completed or cancelled")
	}

	session, err := s.sessions.Get(ctx, userID, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("session_not_found", "session not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get session")
	}

	if session.Status == input.Status {
		return session, nil
	}
	if session.Status.Terminal() {
		return nil, apperrors.Conflict("session_finalized", "session is already finalized", map[string]string{
			"status": string(session.Status),
		})
	}

	now := time.Now().UTC()
	session.Status = input.Status
	session.CompletedAt = input.CompletedAt
	if input.Status == model.SessionCompleted && session.CompletedAt == nil {
		session.CompletedAt = &now
	}
	session.UpdatedAt = now

	if err := s.sessions.Finish(ctx, session); err != nil {
		return nil, apperrors.Internal("failed to update session")
	}
	return session, nil
}

func (s *SessionService) List(ctx context.Context, userID string, limit int) ([]model.PomodoroSession, *apperrors.APIError) {
	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}
	sessions, err := s.sessions.List(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to load history")
	}
	return sessions, nil
}
