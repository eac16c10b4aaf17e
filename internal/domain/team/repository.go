package team

import "context"

type TeamRepository interface {
	Create(ctx context.Context, t Team) (Team, error)
	GetByID(ctx context.Context, id string) (Team, error)
	List(ctx context.Context, filter TeamFilter, vis TeamVisibility) ([]Team, int64, error)
	Update(ctx context.Context, t Team) (Team, error)
	AddMember(ctx context.Context, teamID, userID string) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	// FindByMember returns the active teams userID belongs to.
	FindByMember(ctx context.Context, userID string) ([]Team, error)
	FindByTeamLead(ctx context.Context, teamLeadID string) ([]Team, error)
	FindByManager(ctx context.Context, managerID string) ([]Team, error)
}
