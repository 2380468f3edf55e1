package model

import (
	"sort"
	"strings"
	"time"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

type Task struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	Title              string     `json:"title"`
	Description        *string    `json:"description,omitempty"`
	Priority           Priority   `json:"priority"`
	Tags               []string   `json:"tags"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	EstimatedPomodoros int        `json:"estimated_pomodoros"`
	CompletedPomodoros int        `json:"completed_pomodoros"`
	IsCompleted        bool       `json:"is_completed"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (t Task) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range t.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

type NewTask struct {
	Title              string     `json:"title"`
	Description        *string    `json:"description,omitempty"`
	Priority           Priority   `json:"priority"`
	Tags               []string   `json:"tags"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	EstimatedPomodoros int        `json:"estimated_pomodoros"`
}

// TaskPatch is a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title              *string    `json:"title,omitempty"`
	Description        *string    `json:"description,omitempty"`
	Priority           *Priority  `json:"priority,omitempty"`
	Tags               *[]string  `json:"tags,omitempty"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	EstimatedPomodoros *int       `json:"estimated_pomodoros,omitempty"`
	CompletedPomodoros *int       `json:"completed_pomodoros,omitempty"`
	IsCompleted        *bool      `json:"is_completed,omitempty"`
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil && p.Tags == nil &&
		p.DueDate == nil && p.EstimatedPomodoros == nil && p.CompletedPomodoros == nil && p.IsCompleted == nil
}

type TaskQuery struct {
	Priority    *Priority
	IsCompleted *bool
}

// NormalizeTags trims, drops empties and de-duplicates tag names. Tags are a
// set, so the result is sorted.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		name := strings.TrimSpace(tag)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
