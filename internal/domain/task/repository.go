package task

import (
	"context"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
)

// TaskVisibility is the scope over assignees, widened by tasks the actor assigned.
type TaskVisibility struct {
	user.Scope
	AssignedBy string
}

type TaskRepository interface {
	Create(ctx context.Context, t Task) (Task, error)
	GetByID(ctx context.Context, id string) (Task, error)
	List(ctx context.Context, filter TaskFilter, vis TaskVisibility) ([]Task, int64, error)
	Update(ctx context.Context, t Task) (Task, error)
	// AddWorkLog appends entry and increments actual_hours in one statement.
	AddWorkLog(ctx context.Context, id string, entry WorkLog) (Task, error)
	Summary(ctx context.Context, filter SummaryFilter, scope user.Scope) ([]StatusTotals, error)
	Delete(ctx context.Context, id string) error
}
