package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/MAYANKpandey14/do-it-with-ease/internal/model"
)

// Tasks is the task table client. Row ownership is enforced by the server.
type Tasks struct {
	c *Client
}

type taskList struct {
	Tasks []model.Task `json:"tasks"`
}

func (t *Tasks) List(ctx context.Context, query model.TaskQuery) ([]model.Task, error) {
	params := url.Values{}
	if query.Priority != nil {
		params.Set("priority", string(*query.Priority))
	}
	if query.IsCompleted != nil {
		params.Set("is_completed", strconv.FormatBool(*query.IsCompleted))
	}

	var resp taskList
	if err := t.c.do(ctx, "list tasks", http.MethodGet, "/rest/v1/tasks", params, nil, &resp, true); err != nil {
		return nil, err
	}
	if resp.Tasks == nil {
		resp.Tasks = []model.Task{}
	}
	return resp.Tasks, nil
}

func (t *Tasks) Create(ctx context.Context, task model.NewTask) (model.Task, error) {
	var created model.Task
	if err := t.c.do(ctx, "create task", http.MethodPost, "/rest/v1/tasks", nil, task, &created, true); err != nil {
		return model.Task{}, err
	}
	return created, nil
}

func (t *Tasks) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	var updated model.Task
	path := "/rest/v1/tasks/" + url.PathEscape(id)
	if err := t.c.do(ctx, "update task", http.MethodPatch, path, nil, patch, &updated, true); err != nil {
		return model.Task{}, err
	}
	return updated, nil
}

func (t *Tasks) Delete(ctx context.Context, id string) error {
	path := "/rest/v1/tasks/" + url.PathEscape(id)
	return t.c.do(ctx, "delete task", http.MethodDelete, path, nil, nil, nil, true)
}
