package form

import "context"

type FormRepository interface {
	Create(ctx context.Context, f Form) (Form, error)
	GetByID(ctx context.Context, id string) (Form, error)
	List(ctx context.Context, filter FormFilter, vis FormVisibility) ([]Form, int64, error)
	// ListByTeam returns the active forms assigned to teamID.
	ListByTeam(ctx context.Context, teamID string) ([]Form, error)
	Update(ctx context.Context, f Form) (Form, error)
	SetAssignedTeams(ctx context.Context, id string, teamIDs []string) (Form, error)
	Deactivate(ctx context.Context, id string) error
}
