package team

import (
	"context"

	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
)

type TeamService interface {
	Create(ctx context.Context, req CreateTeamRequest) (TeamResponse, error)
	List(ctx context.Context, filter TeamFilter) (pagination.Page[TeamResponse], error)
	GetByID(ctx context.Context, id string) (TeamResponse, error)
	Update(ctx context.Context, id string, req UpdateTeamRequest) (TeamResponse, error)
	AddMember(ctx context.Context, teamID string, req AddMemberRequest) (TeamResponse, error)
	RemoveMember(ctx context.Context, teamID, userID string) (TeamResponse, error)
	Delete(ctx context.Context, id string) error
}
