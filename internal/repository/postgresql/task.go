package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/task"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/database"
)

type taskRepositoryImpl struct {
	db *database.DB
}

func NewTaskRepository(db *database.DB) task.TaskRepository {
	return &taskRepositoryImpl{db: db}
}

const taskColumns = `
	t.id, t.title, t.description, t.assigned_to, t.assigned_by, t.team_id, t.status, t.priority,
	t.due_date::text, t.estimated_hours, t.actual_hours, t.work_logs, t.completed_at, t.created_at,
	t.updated_at, u.full_name, u.manager_id, u.team_lead_id`

const taskFrom = `FROM tasks t JOIN users u ON u.id = t.assigned_to`

func scanTask(row pgx.Row) (task.Task, error) {
	var t task.Task
	var status, priority string
	var logsJSON []byte
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.AssignedTo,
		&t.AssignedBy,
		&t.TeamID,
		&status,
		&priority,
		&t.DueDate,
		&t.EstimatedHours,
		&t.ActualHours,
		&logsJSON,
		&t.CompletedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.AssigneeName,
		&t.AssigneeManagerID,
		&t.AssigneeTeamLeadID,
	)
	if err != nil {
		return task.Task{}, err
	}
	t.Status = task.Status(status)
	t.Priority = task.Priority(priority)
	t.WorkLogs = []task.WorkLog{}
	if len(logsJSON) > 0 {
		if err := json.Unmarshal(logsJSON, &t.WorkLogs); err != nil {
			return task.Task{}, fmt.Errorf("failed to unmarshal work logs: %w", err)
		}
	}
	return t, nil
}

// Create implements task.TaskRepository.
func (r *taskRepositoryImpl) Create(ctx context.Context, t task.Task) (task.Task, error) {
	q := GetQuerier(ctx, r.db)

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.WorkLogs == nil {
		t.WorkLogs = []task.WorkLog{}
	}
	logsJSON, err := json.Marshal(t.WorkLogs)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to marshal work logs: %w", err)
	}

	query := `
		INSERT INTO tasks (
			id, title, description, assigned_to, assigned_by, team_id, status, priority, due_date,
			estimated_hours, actual_hours, work_logs, completed_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = q.Exec(ctx, query,
		t.ID,
		t.Title,
		t.Description,
		t.AssignedTo,
		t.AssignedBy,
		t.TeamID,
		string(t.Status),
		string(t.Priority),
		t.DueDate,
		t.EstimatedHours,
		t.ActualHours,
		logsJSON,
		t.CompletedAt,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return r.GetByID(ctx, t.ID)
}

// GetByID implements task.TaskRepository.
func (r *taskRepositoryImpl) GetByID(ctx context.Context, id string) (task.Task, error) {
	q := GetQuerier(ctx, r.db)

	t, err := scanTask(q.QueryRow(ctx, `SELECT `+taskColumns+` `+taskFrom+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrTaskNotFound
		}
		return task.Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// List implements task.TaskRepository.
func (r *taskRepositoryImpl) List(ctx context.Context, filter task.TaskFilter, vis task.TaskVisibility) ([]task.Task, int64, error) {
	q := GetQuerier(ctx, r.db)

	var args queryArgs
	var where conditions
	visible := scopeCondition(vis.Scope, "u", &args)
	if vis.AssignedBy != "" {
		visible = fmt.Sprintf("(%s OR t.assigned_by = %s)", visible, args.add(vis.AssignedBy))
	}
	where.and("%s", visible)
	if filter.Status != nil {
		where.and("t.status = %s", args.add(string(*filter.Status)))
	}
	if filter.Priority != nil {
		where.and("t.priority = %s", args.add(string(*filter.Priority)))
	}
	if filter.AssignedTo != nil {
		where.and("t.assigned_to = %s", args.add(*filter.AssignedTo))
	}
	if filter.AssignedBy != nil {
		where.and("t.assigned_by = %s", args.add(*filter.AssignedBy))
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) `+taskFrom+` `+where.where(), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s %s %s ORDER BY t.created_at DESC, t.id DESC %s`,
		taskColumns, taskFrom, where.where(), limitOffset(filter.Params, &args))
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, total, nil
}

// Update implements task.TaskRepository. Work logs and actual hours only
// change through AddWorkLog.
func (r *taskRepositoryImpl) Update(ctx context.Context, t task.Task) (task.Task, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, priority = $5, due_date = $6,
			estimated_hours = $7, completed_at = $8, updated_at = $9
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		t.ID,
		t.Title,
		t.Description,
		string(t.Status),
		string(t.Priority),
		t.DueDate,
		t.EstimatedHours,
		t.CompletedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return task.Task{}, task.ErrTaskNotFound
	}
	return r.GetByID(ctx, t.ID)
}

// AddWorkLog implements task.TaskRepository.
func (r *taskRepositoryImpl) AddWorkLog(ctx context.Context, id string, entry task.WorkLog) (task.Task, error) {
	q := GetQuerier(ctx, r.db)

	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to marshal work log: %w", err)
	}

	query := `
		UPDATE tasks
		SET work_logs = work_logs || jsonb_build_array($2::jsonb),
			actual_hours = actual_hours + $3,
			updated_at = $4
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query, id, entryJSON, entry.HoursWorked, entry.LoggedAt)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to add work log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return task.Task{}, task.ErrTaskNotFound
	}
	return r.GetByID(ctx, id)
}

// Summary implements task.TaskRepository. Dates bound created_at on the
// connection's calendar.
func (r *taskRepositoryImpl) Summary(ctx context.Context, filter task.SummaryFilter, scope user.Scope) ([]task.StatusTotals, error) {
	q := GetQuerier(ctx, r.db)

	var args queryArgs
	var where conditions
	where.and("%s", scopeCondition(scope, "u", &args))
	if filter.StartDate != nil {
		where.and("t.created_at::date >= %s", args.add(*filter.StartDate))
	}
	if filter.EndDate != nil {
		where.and("t.created_at::date <= %s", args.add(*filter.EndDate))
	}

	query := `
		SELECT t.status, COUNT(*), COALESCE(SUM(t.estimated_hours), 0), COALESCE(SUM(t.actual_hours), 0)
		` + taskFrom + `
		` + where.where() + `
		GROUP BY t.status`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize tasks: %w", err)
	}
	defer rows.Close()

	byStatus := make(map[task.Status]task.StatusTotals)
	for rows.Next() {
		var st task.StatusTotals
		var status string
		if err := rows.Scan(&status, &st.Count, &st.EstimatedHours, &st.ActualHours); err != nil {
			return nil, fmt.Errorf("failed to scan task summary: %w", err)
		}
		st.Status = task.Status(status)
		byStatus[st.Status] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task summary: %w", err)
	}

	out := make([]task.StatusTotals, 0, len(byStatus))
	for _, status := range task.Statuses {
		if st, ok := byStatus[status]; ok {
			out = append(out, st)
		}
	}
	return out, nil
}

// Delete implements task.TaskRepository.
func (r *taskRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}
