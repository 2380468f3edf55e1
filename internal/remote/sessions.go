package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	apperrors "github.com/MAYANKpandey14/do-it-with-ease/internal/errors"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/model"
)

type Sessions struct {
	c *Client
}

type sessionList struct {
	Sessions []model.PomodoroSession `json:"sessions"`
}

func (s *Sessions) Create(ctx context.Context, session model.NewSession) (string, error) {
	const op = "create session"
	if session.TaskID == "" {
		return "", apperrors.Validation(op, apperrors.CodeInvalidTask, "task id is required")
	}
	if session.DurationSeconds <= 0 {
		return "", apperrors.Validation(op, apperrors.CodeInvalidDuration, "duration must be positive")
	}
	if !session.SessionType.Valid() {
		return "", apperrors.Validation(op, apperrors.CodeInvalidDuration, "unknown session type")
	}

	var created model.PomodoroSession
	if err := s.c.do(ctx, op, http.MethodPost, "/rest/v1/pomodoro_sessions", nil, session, &created, true); err != nil {
		return "", err
	}
	return created.ID, nil
}

// Finalize moves a session to completed or cancelled. Repeating the same
// terminal status succeeds without changing the record.
func (s *Sessions) Finalize(ctx context.Context, sessionID string, finalize model.SessionFinalize) error {
	const op = "finalize session"
	if sessionID == "" {
		return apperrors.Validation(op, apperrors.CodeNoActiveSession, "session id is required")
	}
	if !finalize.Status.Terminal() {
		return apperrors.Validation(op, "invalid_status", "status must be completed or cancelled")
	}

	path := "/rest/v1/pomodoro_sessions/" + url.PathEscape(sessionID)
	return s.c.do(ctx, op, http.MethodPatch, path, nil, finalize, nil, true)
}

func (s *Sessions) List(ctx context.Context, limit int) ([]model.PomodoroSession, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var resp sessionList
	if err := s.c.do(ctx, "list sessions", http.MethodGet, "/rest/v1/pomodoro_sessions", params, nil, &resp, true); err != nil {
		return nil, err
	}
	if resp.Sessions == nil {
		resp.Sessions = []model.PomodoroSession{}
	}
	return resp.Sessions, nil
}
