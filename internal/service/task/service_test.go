package task

import (
	"context"
	"testing"
	"time"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/authz"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/notification"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/task"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/clock"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/events"
	"github.com/pagemantra/worktrack-backend-go/internal/repository/memory"
	authzservice "github.com/pagemantra/worktrack-backend-go/internal/service/authz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      task.TaskService
	notifier *memory.Notifier
	events   *events.Memory
	clock    *clock.Fixed
	org      memory.Org
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clk := &clock.Fixed{T: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	a, err := authzservice.NewAuthorizer(user.RolePermissions)
	require.NoError(t, err)

	f := &fixture{
		notifier: &memory.Notifier{},
		events:   &events.Memory{},
		clock:    clk,
		org:      store.SeedOrg(clk.Now()),
	}
	f.svc = NewTaskService(memory.NewTaskRepository(store), memory.NewUserRepository(store), a, f.notifier, f.events, clk)
	return f
}

func as(u user.User) context.Context {
	return user.WithActor(context.Background(), u.Actor())
}

func ptr[T any](v T) *T { return &v }

func (f *fixture) assign(t *testing.T, by user.User, to string) task.TaskResponse {
	t.Helper()
	got, err := f.svc.Create(as(by), task.CreateTaskRequest{Title: "Write release notes", AssignedTo: to, EstimatedHours: ptr(4.0)})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	return got
}

func TestCreate(t *testing.T) {
	f := setup(t)

	got := f.assign(t, f.org.Lead, memory.AssociateID)
	assert.Equal(t, task.StatusPending, got.Status)
	assert.Equal(t, task.PriorityMedium, got.Priority)
	assert.Equal(t, memory.LeadID, got.AssignedBy)
	assert.Empty(t, got.WorkLogs)

	sent := f.notifier.To(memory.AssociateID)
	require.Len(t, sent, 1)
	assert.Equal(t, notification.TypeTaskAssigned, sent[0].Type)
	assert.Equal(t, "You have been assigned a new task: Write release notes", sent[0].Message)
	assert.Equal(t, []string{events.TaskCreated}, f.events.Types())
}

func TestCreateRejections(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name  string
		actor user.User
		to    string
		want  error
	}{
		{"associate cannot assign", f.org.Associate, memory.PeerID, authz.ErrForbidden},
		{"unknown assignee", f.org.Lead, "0b7e0000-0000-4000-8000-0000000000ff", task.ErrAssigneeNotFound},
		{"assignee must be associate", f.org.Manager, memory.LeadID, task.ErrAssigneeNotStaff},
		{"assignee outside hierarchy", f.org.Lead, memory.OutsiderID, task.ErrAssigneeNotReport},
		{"other manager's associate", f.org.Manager, memory.OutsiderID, task.ErrAssigneeNotReport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(as(tt.actor), task.CreateTaskRequest{Title: "Task", AssignedTo: tt.to})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestListingViews(t *testing.T) {
	f := setup(t)
	mine := f.assign(t, f.org.Lead, memory.AssociateID)
	f.assign(t, f.org.Manager, memory.PeerID)
	f.assign(t, f.org.Lead2, memory.OutsiderID)

	page, err := f.svc.List(as(f.org.Lead), task.TaskFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = f.svc.List(as(f.org.Admin), task.TaskFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)

	page, err = f.svc.MyTasks(as(f.org.Associate), task.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, mine.ID, page.Items[0].ID)

	page, err = f.svc.AssignedByMe(as(f.org.Manager), task.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, memory.PeerID, page.Items[0].AssignedTo)

	_, err = f.svc.AssignedByMe(as(f.org.Associate), task.TaskFilter{})
	assert.ErrorIs(t, err, authz.ErrForbidden)
}

func TestGetByIDAccess(t *testing.T) {
	f := setup(t)
	created := f.assign(t, f.org.Lead, memory.AssociateID)

	_, err := f.svc.GetByID(as(f.org.Associate), created.ID)
	assert.NoError(t, err)
	_, err = f.svc.GetByID(as(f.org.Peer), created.ID)
	assert.ErrorIs(t, err, task.ErrAccessDenied)
	_, err = f.svc.GetByID(as(f.org.Manager2), created.ID)
	assert.ErrorIs(t, err, task.ErrAccessDenied)
}

func TestAssigneeUpdatesStatusOnly(t *testing.T) {
	f := setup(t)
	created := f.assign(t, f.org.Lead, memory.AssociateID)
	f.notifier.Reset()

	_, err := f.svc.Update(as(f.org.Associate), created.ID, task.UpdateTaskRequest{Title: ptr("Renamed task")})
	assert.ErrorIs(t, err, task.ErrStatusOnly)

	got, err := f.svc.Update(as(f.org.Associate), created.ID, task.UpdateTaskRequest{Status: ptr(task.StatusCompleted)})
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)

	sent := f.notifier.To(memory.LeadID)
	require.Len(t, sent, 1)
	assert.Equal(t, notification.TypeTaskUpdated, sent[0].Type)
	assert.Contains(t, f.events.Types(), events.TaskCompleted)

	got, err = f.svc.Update(as(f.org.Lead), created.ID, task.UpdateTaskRequest{Status: ptr(task.StatusInProgress), Priority: ptr(task.PriorityHigh)})
	require.NoError(t, err)
	assert.Nil(t, got.CompletedAt)
	assert.Equal(t, task.PriorityHigh, got.Priority)
	assert.Len(t, f.notifier.Sent(), 1)
}

func TestAddWorkLog(t *testing.T) {
	f := setup(t)
	created := f.assign(t, f.org.Lead, memory.AssociateID)

	got, err := f.svc.AddWorkLog(as(f.org.Associate), created.ID, task.WorkLogRequest{HoursWorked: 1.5})
	require.NoError(t, err)
	got, err = f.svc.AddWorkLog(as(f.org.Admin), created.ID, task.WorkLogRequest{HoursWorked: 2, WorkDate: "2025-03-09"})
	require.NoError(t, err)

	assert.InDelta(t, 3.5, got.ActualHours, 1e-9)
	require.Len(t, got.WorkLogs, 2)
	assert.Equal(t, "2025-03-10", got.WorkLogs[0].WorkDate)
	assert.Equal(t, memory.AdminID, got.WorkLogs[1].LoggedBy)

	_, err = f.svc.AddWorkLog(as(f.org.Lead), created.ID, task.WorkLogRequest{HoursWorked: 1})
	assert.ErrorIs(t, err, task.ErrWorkLogForbidden)

	_, err = f.svc.AddWorkLog(as(f.org.Associate), created.ID, task.WorkLogRequest{HoursWorked: 0})
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	f := setup(t)
	first := f.assign(t, f.org.Lead, memory.AssociateID)
	f.assign(t, f.org.Lead, memory.PeerID)
	f.assign(t, f.org.Lead2, memory.OutsiderID)

	_, err := f.svc.Update(as(f.org.Lead), first.ID, task.UpdateTaskRequest{Status: ptr(task.StatusCompleted)})
	require.NoError(t, err)

	sum, err := f.svc.Summary(as(f.org.Manager), task.SummaryFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, sum.TotalTasks)
	assert.EqualValues(t, 1, sum.ByStatus[task.StatusCompleted])
	assert.EqualValues(t, 1, sum.ByStatus[task.StatusPending])
	assert.EqualValues(t, 0, sum.ByStatus[task.StatusOnHold])
	assert.InDelta(t, 8.0, sum.TotalEstimatedHours, 1e-9)

	_, err = f.svc.Summary(as(f.org.Manager), task.SummaryFilter{StartDate: ptr("2025-03-11"), EndDate: ptr("2025-03-01")})
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	f := setup(t)
	created := f.assign(t, f.org.Lead, memory.AssociateID)

	assert.ErrorIs(t, f.svc.Delete(as(f.org.Associate), created.ID), authz.ErrForbidden)
	assert.ErrorIs(t, f.svc.Delete(as(f.org.Manager), created.ID), task.ErrDeleteForbidden)
	require.NoError(t, f.svc.Delete(as(f.org.Lead), created.ID))

	_, err := f.svc.GetByID(as(f.org.Lead), created.ID)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}
