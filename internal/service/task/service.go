package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/authz"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/notification"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/task"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/clock"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/events"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
)

type TaskServiceImpl struct {
	taskRepo  task.TaskRepository
	userRepo  user.UserRepository
	authz     authz.Authorizer
	notifier  notification.Notifier
	publisher events.Publisher
	clock     clock.Clock
}

func NewTaskService(
	taskRepo task.TaskRepository,
	userRepo user.UserRepository,
	authorizer authz.Authorizer,
	notifier notification.Notifier,
	publisher events.Publisher,
	clk clock.Clock,
) task.TaskService {
	return &TaskServiceImpl{
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		authz:     authorizer,
		notifier:  notifier,
		publisher: publisher,
		clock:     clk,
	}
}

func (s *TaskServiceImpl) Create(ctx context.Context, req task.CreateTaskRequest) (task.TaskResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return task.TaskResponse{}, err
	}
	if err := s.authz.Require(actor, user.PermissionTaskCreate); err != nil {
		return task.TaskResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return task.TaskResponse{}, err
	}

	assignee, err := s.userRepo.GetByID(ctx, req.AssignedTo)
	if errors.Is(err, user.ErrUserNotFound) {
		return task.TaskResponse{}, task.ErrAssigneeNotFound
	}
	if err != nil {
		return task.TaskResponse{}, fmt.Errorf("failed to load assignee: %w", err)
	}
	if assignee.Role != user.RoleAssociate || !assignee.IsActive {
		return task.TaskResponse{}, task.ErrAssigneeNotStaff
	}
	if err := s.authz.RequireAccess(actor, assignee.Owner()); err != nil {
		return task.TaskResponse{}, task.ErrAssigneeNotReport
	}

	now := s.clock.Now()
	created, err := s.taskRepo.Create(ctx, task.Task{
		Title:          req.Title,
		Description:    req.Description,
		AssignedTo:     assignee.ID,
		AssignedBy:     actor.ID,
		TeamID:         req.TeamID,
		Status:         task.StatusPending,
		Priority:       req.Priority,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		WorkLogs:       []task.WorkLog{},
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return task.TaskResponse{}, fmt.Errorf("failed to create task: %w", err)
	}

	s.notifier.Notify(ctx, notification.CreateNotificationRequest{
		RecipientID: assignee.ID,
		Type:        notification.TypeTaskAssigned,
		Title:       "New Task Assigned",
		Message:     fmt.Sprintf("You have been assigned a new task: %s", created.Title),
		RelatedID:   &created.ID,
	})
	events.Emit(ctx, s.publisher, events.Event{
		Type:       events.TaskCreated,
		Key:        created.ID,
		OccurredAt: now,
		Payload:    map[string]any{"assigned_to": created.AssignedTo, "assigned_by": created.AssignedBy, "priority": created.Priority},
	})

	return task.NewTaskResponse(created), nil
}

func (s *TaskServiceImpl) list(ctx context.Context, filter task.TaskFilter, vis task.TaskVisibility) (pagination.Page[task.TaskResponse], error) {
	if err := filter.Validate(); err != nil {
		return pagination.Page[task.TaskResponse]{}, err
	}
	tasks, total, err := s.taskRepo.List(ctx, filter, vis)
	if err != nil {
		return pagination.Page[task.TaskResponse]{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	return pagination.Map(pagination.NewPage(tasks, total, filter.Params), task.NewTaskResponse), nil
}

// List returns tasks whose assignee is visible to the actor, plus tasks the
// actor assigned.
func (s *TaskServiceImpl) List(ctx context.Context, filter task.TaskFilter) (pagination.Page[task.TaskResponse], error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return pagination.Page[task.TaskResponse]{}, err
	}
	return s.list(ctx, filter, task.TaskVisibility{Scope: s.authz.Scope(actor), AssignedBy: actor.ID})
}

func (s *TaskServiceImpl) MyTasks(ctx context.Context, filter task.TaskFilter) (pagination.Page[task.TaskResponse], error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return pagination.Page[task.TaskResponse]{}, err
	}
	filter.AssignedTo = &actor.ID
	return s.list(ctx, filter, task.TaskVisibility{Scope: user.Scope{SelfID: actor.ID}})
}

func (s *TaskServiceImpl) AssignedByMe(ctx context.Context, filter task.TaskFilter) (pagination.Page[task.TaskResponse], error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return pagination.Page[task.TaskResponse]{}, err
	}
	if err := s.authz.Require(actor, user.PermissionTaskAssign); err != nil {
		return pagination.Page[task.TaskResponse]{}, err
	}
	filter.AssignedBy = &actor.ID
	return s.list(ctx, filter, task.TaskVisibility{AssignedBy: actor.ID})
}

func assigneeOwner(t task.Task) user.Owner {
	return user.Owner{ID: t.AssignedTo, ManagerID: t.AssigneeManagerID, TeamLeadID: t.AssigneeTeamLeadID}
}

// load fetches a task the actor may see.
func (s *TaskServiceImpl) load(ctx context.Context, actor user.Actor, id string) (task.Task, error) {
	t, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	if t.AssignedBy == actor.ID {
		return t, nil
	}
	if err := s.authz.RequireAccess(actor, assigneeOwner(t)); err != nil {
		return task.Task{}, task.ErrAccessDenied
	}
	return t, nil
}

func (s *TaskServiceImpl) GetByID(ctx context.Context, id string) (task.TaskResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return task.TaskResponse{}, err
	}
	t, err := s.load(ctx, actor, id)
	if err != nil {
		return task.TaskResponse{}, err
	}
	return task.NewTaskResponse(t), nil
}

func (s *TaskServiceImpl) Update(ctx context.Context, id string, req task.UpdateTaskRequest) (task.TaskResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return task.TaskResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return task.TaskResponse{}, err
	}

	t, err := s.load(ctx, actor, id)
	if err != nil {
		return task.TaskResponse{}, err
	}
	if actor.Role == user.RoleAssociate && !req.OnlyStatus() {
		return task.TaskResponse{}, task.ErrStatusOnly
	}

	now := s.clock.Now()
	previous := t.Status
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.DueDate != nil {
		t.DueDate = req.DueDate
	}
	if req.EstimatedHours != nil {
		t.EstimatedHours = req.EstimatedHours
	}
	if req.Status != nil {
		t = t.SetStatus(*req.Status, now)
	}
	t.UpdatedAt = now

	updated, err := s.taskRepo.Update(ctx, t)
	if err != nil {
		return task.TaskResponse{}, fmt.Errorf("failed to update task: %w", err)
	}

	if updated.Status != previous {
		if actor.ID == updated.AssignedTo && updated.AssignedBy != actor.ID {
			s.notifier.Notify(ctx, notification.CreateNotificationRequest{
				RecipientID: updated.AssignedBy,
				Type:        notification.TypeTaskUpdated,
				Title:       "Task Status Updated",
				Message:     fmt.Sprintf("%s updated task '%s' to %s", actor.FullName, updated.Title, updated.Status),
				RelatedID:   &updated.ID,
			})
		}
		if updated.Status == task.StatusCompleted {
			events.Emit(ctx, s.publisher, events.Event{
				Type:       events.TaskCompleted,
				Key:        updated.ID,
				OccurredAt: now,
				Payload:    map[string]any{"assigned_to": updated.AssignedTo, "actual_hours": updated.ActualHours},
			})
		}
	}

	return task.NewTaskResponse(updated), nil
}

func (s *TaskServiceImpl) AddWorkLog(ctx context.Context, id string, req task.WorkLogRequest) (task.TaskResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return task.TaskResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return task.TaskResponse{}, err
	}

	t, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return task.TaskResponse{}, err
	}
	if t.AssignedTo != actor.ID && !actor.IsAdmin() {
		return task.TaskResponse{}, task.ErrWorkLogForbidden
	}

	now := s.clock.Now()
	workDate := req.WorkDate
	if workDate == "" {
		workDate = now.Format(clock.DateLayout)
	}

	updated, err := s.taskRepo.AddWorkLog(ctx, t.ID, task.WorkLog{
		LoggedBy:    actor.ID,
		HoursWorked: req.HoursWorked,
		WorkDate:    workDate,
		Notes:       req.Notes,
		LoggedAt:    now,
	})
	if err != nil {
		return task.TaskResponse{}, fmt.Errorf("failed to add work log: %w", err)
	}
	return task.NewTaskResponse(updated), nil
}

func (s *TaskServiceImpl) Summary(ctx context.Context, filter task.SummaryFilter) (task.Summary, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return task.Summary{}, err
	}
	if err := s.authz.Require(actor, user.PermissionTaskSummary); err != nil {
		return task.Summary{}, err
	}
	if err := filter.Validate(); err != nil {
		return task.Summary{}, err
	}

	rows, err := s.taskRepo.Summary(ctx, filter, s.authz.Scope(actor))
	if err != nil {
		return task.Summary{}, fmt.Errorf("failed to summarise tasks: %w", err)
	}
	return task.NewSummary(rows), nil
}

func (s *TaskServiceImpl) Delete(ctx context.Context, id string) error {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.authz.Require(actor, user.PermissionTaskDelete); err != nil {
		return err
	}

	t, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && t.AssignedBy != actor.ID {
		return task.ErrDeleteForbidden
	}
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	slog.InfoContext(ctx, "task deleted", "task_id", id, "by", actor.ID)
	return nil
}
