package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/auth"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/clock"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/jwt"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/password"
)

const tokenType = "bearer"

type AuthServiceImpl struct {
	userRepo user.UserRepository
	hasher   password.Hasher
	jwt      jwt.Service
	clock    clock.Clock
}

func NewAuthService(userRepo user.UserRepository, hasher password.Hasher, jwtService jwt.Service, clk clock.Clock) auth.AuthService {
	return &AuthServiceImpl{
		userRepo: userRepo,
		hasher:   hasher,
		jwt:      jwtService,
		clock:    clk,
	}
}

// RegisterAdmin implements auth.AuthService.
func (a *AuthServiceImpl) RegisterAdmin(ctx context.Context, req user.RegisterAdminRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	admins, err := a.userRepo.CountByRole(ctx, user.RoleAdmin)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to count admins: %w", err)
	}
	if admins > 0 {
		return user.UserResponse{}, auth.ErrAdminExists
	}

	hash, err := a.hasher.Hash(req.Password)
	if err != nil {
		return user.UserResponse{}, err
	}

	now := a.clock.Now()
	created, err := a.userRepo.Create(ctx, user.User{
		EmployeeID:   req.EmployeeID,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         user.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	slog.InfoContext(ctx, "admin registered", "user_id", created.ID)
	return user.NewUserResponse(created), nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	var (
		found user.User
		err   error
	)
	if req.EmployeeID != "" {
		found, err = a.userRepo.GetByEmployeeID(ctx, req.EmployeeID)
	} else {
		found, err = a.userRepo.GetByEmail(ctx, *req.Email)
	}
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, user.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to load user: %w", err)
	}

	if err := a.hasher.Compare(found.PasswordHash, req.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return auth.TokenResponse{}, user.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, err
	}
	if !found.IsActive {
		return auth.TokenResponse{}, user.ErrInactiveUser
	}

	token, expiresAt, err := a.jwt.GenerateAccessToken(found.ID, found.EmployeeID, found.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	return auth.TokenResponse{
		AccessToken: token,
		TokenType:   tokenType,
		ExpiresAt:   time.Unix(expiresAt, 0).In(a.clock.Location()),
		User:        user.NewUserResponse(found),
	}, nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context) (user.UserResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return user.UserResponse{}, err
	}
	u, err := a.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.NewUserResponse(u), nil
}
