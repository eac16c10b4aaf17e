package user

import (
	"context"

	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
)

type UserService interface {
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	List(ctx context.Context, filter UserFilter) (pagination.Page[UserResponse], error)
	ListManagers(ctx context.Context) ([]UserResponse, error)
	ListTeamLeads(ctx context.Context) ([]UserResponse, error)
	ListEmployees(ctx context.Context) ([]UserResponse, error)
	GetByID(ctx context.Context, id string) (UserResponse, error)
	Update(ctx context.Context, id string, req UpdateUserRequest) (UserResponse, error)
	Delete(ctx context.Context, id string) error
}
