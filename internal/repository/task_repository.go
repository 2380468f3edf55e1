package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/MAYANKpandey14/do-it-with-ease/internal/model"
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, user_id, title, description, priority, due_date,
	estimated_pomodoros, completed_pomodoros, is_completed, created_at, updated_at`

func (r *TaskRepository) List(ctx context.Context, userID string, query model.TaskQuery) ([]model.Task, error) {
	conditions := []string{"user_id = ?"}
	args := []interface{}{userID}
	if query.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, string(*query.Priority))
	}
	if query.IsCompleted != nil {
		conditions = append(conditions, "is_completed = ?")
		args = append(args, boolInt(*query.IsCompleted))
	}

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+taskColumns+`
		 FROM tasks
		 WHERE `+strings.Join(conditions, " AND ")+`
		 ORDER BY created_at DESC, id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	tags, err := r.tagsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].Tags = tagsOrEmpty(tags[tasks[i].ID])
	}
	return tasks, nil
}

func (r *TaskRepository) Get(ctx context.Context, userID, id string) (*model.Task, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	task, err := scanTask(row)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT name FROM task_tags WHERE task_id = ? ORDER BY name`, id)
	if err != nil {
		return nil, fmt.Errorf("get task tags: %w", err)
	}
	defer rows.Close()

	task.Tags = []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan task tag: %w", err)
		}
		task.Tags = append(task.Tags, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task tags: %w", err)
	}
	return task, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.UserID,
		task.Title,
		nullableString(task.Description),
		string(task.Priority),
		nullableTime(task.DueDate),
		task.EstimatedPomodoros,
		task.CompletedPomodoros,
		boolInt(task.IsCompleted),
		formatTime(task.CreatedAt),
		formatTime(task.UpdatedAt),
	); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	if err := replaceTags(ctx, tx, task.ID, task.Tags); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(
		ctx,
		`UPDATE tasks
		 SET title = ?,
		     description = ?,
		     priority = ?,
		     due_date = ?,
		     estimated_pomodoros = ?,
		     completed_pomodoros = ?,
		     is_completed = ?,
		     updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		task.Title,
		nullableString(task.Description),
		string(task.Priority),
		nullableTime(task.DueDate),
		task.EstimatedPomodoros,
		task.CompletedPomodoros,
		boolInt(task.IsCompleted),
		formatTime(task.UpdatedAt),
		task.ID,
		task.UserID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}

	if err := replaceTags(ctx, tx, task.ID, task.Tags); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepository) tagsForUser(ctx context.Context, userID string) (map[string][]string, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT tt.task_id, tt.name
		 FROM task_tags tt
		 JOIN tasks t ON t.id = tt.task_id
		 WHERE t.user_id = ?
		 ORDER BY tt.task_id, tt.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list task tags: %w", err)
	}
	defer rows.Close()

	tags := map[string][]string{}
	for rows.Next() {
		var taskID, name string
		if err := rows.Scan(&taskID, &name); err != nil {
			return nil, fmt.Errorf("scan task tag: %w", err)
		}
		tags[taskID] = append(tags[taskID], name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task tags: %w", err)
	}
	return tags, nil
}

func replaceTags(ctx context.Context, tx *sql.Tx, taskID string, tags []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("clear task tags: %w", err)
	}
	for _, name := range tags {
		if _, err := tx.ExecContext(ctx, `INSERT INTO task_tags (task_id, name) VALUES (?, ?)`, taskID, name); err != nil {
			return fmt.Errorf("insert task tag: %w", err)
		}
	}
	return nil
}

func scanTask(s scanner) (*model.Task, error) {
	task := model.Task{}
	var description sql.NullString
	var dueDate sql.NullString
	var isCompleted int
	var createdAt string
	var updatedAt string
	err := s.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&description,
		&task.Priority,
		&dueDate,
		&task.EstimatedPomodoros,
		&task.CompletedPomodoros,
		&isCompleted,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	if description.Valid {
		value := description.String
		task.Description = &value
	}
	task.DueDate, err = parseNullTime(dueDate, "task due_date")
	if err != nil {
		return nil, err
	}
	task.IsCompleted = isCompleted != 0

	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse task created_at: %w", err)
	}
	if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse task updated_at: %w", err)
	}
	return &task, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
