package user

import "context"

type UserRepository interface {
	// Create inserts u. Duplicate employee ids and present emails map to
	// ErrEmployeeIDExists and ErrEmailExists.
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context, filter UserFilter, scope Scope) ([]User, int64, error)
	Update(ctx context.Context, u User) (User, error)
	SetActive(ctx context.Context, id string, active bool) error
	// SetHierarchy overwrites team_lead_id and manager_id of the given users.
	SetHierarchy(ctx context.Context, ids []string, teamLeadID, managerID *string) error
	CountByRole(ctx context.Context, role Role) (int64, error)
}
