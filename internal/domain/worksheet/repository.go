package worksheet

import (
	"context"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
)

type WorksheetRepository interface {
	// Create fails with ErrAlreadyExists when (employee, date) is taken.
	Create(ctx context.Context, w Worksheet) (Worksheet, error)
	GetByID(ctx context.Context, id string) (Worksheet, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID, date string) (Worksheet, error)
	// Transition persists w only if the stored status is still one of from.
	// Otherwise it returns ErrConcurrentUpdate.
	Transition(ctx context.Context, w Worksheet, from []Status) (Worksheet, error)
	List(ctx context.Context, filter WorksheetFilter, scope user.Scope) ([]Worksheet, int64, error)
	CountByStatus(ctx context.Context, filter SummaryFilter, scope user.Scope) (map[Status]int64, error)
}
