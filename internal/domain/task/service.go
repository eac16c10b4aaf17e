package task

import (
	"context"

	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
)

type TaskService interface {
	Create(ctx context.Context, req CreateTaskRequest) (TaskResponse, error)
	List(ctx context.Context, filter TaskFilter) (pagination.Page[TaskResponse], error)
	MyTasks(ctx context.Context, filter TaskFilter) (pagination.Page[TaskResponse], error)
	AssignedByMe(ctx context.Context, filter TaskFilter) (pagination.Page[TaskResponse], error)
	GetByID(ctx context.Context, id string) (TaskResponse, error)
	Update(ctx context.Context, id string, req UpdateTaskRequest) (TaskResponse, error)
	AddWorkLog(ctx context.Context, id string, req WorkLogRequest) (TaskResponse, error)
	Summary(ctx context.Context, filter SummaryFilter) (Summary, error)
	Delete(ctx context.Context, id string) error
}
