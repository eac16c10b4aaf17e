package memory

import (
	"context"
	"slices"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/task"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
)

type taskRepository struct {
	s *Store
}

func NewTaskRepository(s *Store) task.TaskRepository {
	return &taskRepository{s: s}
}

func (r *taskRepository) view(t task.Task) task.Task {
	t.WorkLogs = slices.Clone(t.WorkLogs)
	owner := r.s.ownerOf(t.AssignedTo)
	t.AssigneeManagerID = owner.ManagerID
	t.AssigneeTeamLeadID = owner.TeamLeadID
	t.AssigneeName = r.s.nameOf(t.AssignedTo)
	return t
}

func (r *taskRepository) Create(_ context.Context, t task.Task) (task.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID, _ = r.s.nextID(t.ID)
	r.s.tasks[t.ID] = r.view(t)
	return r.view(t), nil
}

func (r *taskRepository) GetByID(_ context.Context, id string) (task.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return task.Task{}, task.ErrTaskNotFound
	}
	return r.view(t), nil
}

func (r *taskRepository) List(_ context.Context, filter task.TaskFilter, vis task.TaskVisibility) ([]task.Task, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []task.Task
	for _, t := range r.s.tasks {
		if !vis.Allows(r.s.ownerOf(t.AssignedTo)) && (vis.AssignedBy == "" || t.AssignedBy != vis.AssignedBy) {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		if filter.AssignedTo != nil && t.AssignedTo != *filter.AssignedTo {
			continue
		}
		if filter.AssignedBy != nil && t.AssignedBy != *filter.AssignedBy {
			continue
		}
		out = append(out, r.view(t))
	}
	sortDesc(out, func(t task.Task) string { return t.CreatedAt.Format("20060102150405.000000000") + t.ID })
	items, total := window(out, filter.Params)
	return items, total, nil
}

func (r *taskRepository) Update(_ context.Context, t task.Task) (task.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.tasks[t.ID]
	if !ok {
		return task.Task{}, task.ErrTaskNotFound
	}
	t.WorkLogs = stored.WorkLogs
	t.ActualHours = stored.ActualHours
	r.s.tasks[t.ID] = t
	return r.view(t), nil
}

func (r *taskRepository) AddWorkLog(_ context.Context, id string, entry task.WorkLog) (task.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return task.Task{}, task.ErrTaskNotFound
	}
	t.WorkLogs = append(slices.Clone(t.WorkLogs), entry)
	t.ActualHours += entry.HoursWorked
	t.UpdatedAt = entry.LoggedAt
	r.s.tasks[id] = t
	return r.view(t), nil
}

func (r *taskRepository) Summary(_ context.Context, filter task.SummaryFilter, scope user.Scope) ([]task.StatusTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	totals := make(map[task.Status]*task.StatusTotals)
	for _, t := range r.s.tasks {
		if !scope.Allows(r.s.ownerOf(t.AssignedTo)) {
			continue
		}
		created := t.CreatedAt.Format("2006-01-02")
		if filter.StartDate != nil && created < *filter.StartDate {
			continue
		}
		if filter.EndDate != nil && created > *filter.EndDate {
			continue
		}
		row, ok := totals[t.Status]
		if !ok {
			row = &task.StatusTotals{Status: t.Status}
			totals[t.Status] = row
		}
		row.Count++
		if t.EstimatedHours != nil {
			row.EstimatedHours += *t.EstimatedHours
		}
		row.ActualHours += t.ActualHours
	}
	out := make([]task.StatusTotals, 0, len(totals))
	for _, st := range task.Statuses {
		if row, ok := totals[st]; ok {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *taskRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return task.ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	return nil
}
