package model

import "time"

type SessionType string

const (
	SessionWork       SessionType = "work"
	SessionShortBreak SessionType = "short_break"
	SessionLongBreak  SessionType = "long_break"
)

type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

func (t SessionType) Valid() bool {
	return t == SessionWork || t == SessionShortBreak || t == SessionLongBreak
}

// Terminal reports whether a session in this status can no longer change.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

type PomodoroSession struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	TaskID          string        `json:"task_id"`
	DurationSeconds int           `json:"duration"`
	SessionType     SessionType   `json:"session_type"`
	Status          SessionStatus `json:"status"`
	StartedAt       time.Time     `json:"started_at"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type NewSession struct {
	TaskID          string      `json:"task_id"`
	DurationSeconds int         `json:"duration"`
	SessionType     SessionType `json:"session_type"`
	StartedAt       time.Time   `json:"started_at"`
}

type SessionFinalize struct {
	Status      SessionStatus `json:"status"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}
