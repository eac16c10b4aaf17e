package auth

import (
	"context"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
)

type AuthService interface {
	// RegisterAdmin bootstraps the first admin account.
	RegisterAdmin(ctx context.Context, req user.RegisterAdminRequest) (user.UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	Me(ctx context.Context) (user.UserResponse, error)
}
