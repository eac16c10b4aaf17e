package form

import (
	"context"

	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
)

type FormService interface {
	Create(ctx context.Context, req CreateFormRequest) (FormResponse, error)
	List(ctx context.Context, filter FormFilter) (pagination.Page[FormResponse], error)
	TeamForms(ctx context.Context, teamID string) ([]FormResponse, error)
	GetByID(ctx context.Context, id string) (FormResponse, error)
	Update(ctx context.Context, id string, req UpdateFormRequest) (FormResponse, error)
	Assign(ctx context.Context, id string, req AssignTeamsRequest) (FormResponse, error)
	Unassign(ctx context.Context, id, teamID string) (FormResponse, error)
	Delete(ctx context.Context, id string) error
}
