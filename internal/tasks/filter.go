package tasks

import (
	"strings"

	"github.com/MAYANKpandey14/do-it-with-ease/internal/model"
)

// Filter selects tasks. Priority and IsCompleted are evaluated by the store;
// Search and Tags are applied locally by Apply.
type Filter struct {
	Priority    *model.Priority
	IsCompleted *bool
	Search      string
	Tags        []string
}

func (f Filter) Query() model.TaskQuery {
	return model.TaskQuery{Priority: f.Priority, IsCompleted: f.IsCompleted}
}

// Apply returns the tasks matching the local part of f, preserving order. It
// never mutates its input.
func Apply(tasks []model.Task, f Filter) []model.Task {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	tags := model.NormalizeTags(f.Tags)

	result := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if search != "" && !matchesSearch(t, search) {
			continue
		}
		if len(tags) > 0 && !t.HasAnyTag(tags) {
			continue
		}
		result = append(result, t)
	}
	return result
}

func matchesSearch(t model.Task, query string) bool {
	if strings.Contains(strings.ToLower(t.Title), query) {
		return true
	}
	return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), query)
}
