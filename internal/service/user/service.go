package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/authz"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/clock"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/password"
)

// lookupLimit bounds the unpaginated role listings.
const lookupLimit = 1000

type UserServiceImpl struct {
	userRepo user.UserRepository
	authz    authz.Authorizer
	hasher   password.Hasher
	clock    clock.Clock
}

func NewUserService(userRepo user.UserRepository, authorizer authz.Authorizer, hasher password.Hasher, clk clock.Clock) user.UserService {
	return &UserServiceImpl{
		userRepo: userRepo,
		authz:    authorizer,
		hasher:   hasher,
		clock:    clk,
	}
}

func (s *UserServiceImpl) Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return user.UserResponse{}, err
	}
	if err := s.authz.Require(actor, user.PermissionUserCreate); err != nil {
		return user.UserResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}
	if err := s.authz.CanCreate(actor, req.Role); err != nil {
		return user.UserResponse{}, err
	}

	managerID, teamLeadID, err := s.resolveHierarchy(ctx, actor, req)
	if err != nil {
		return user.UserResponse{}, err
	}

	if _, err := s.userRepo.GetByEmployeeID(ctx, req.EmployeeID); err == nil {
		return user.UserResponse{}, user.ErrEmployeeIDExists
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return user.UserResponse{}, fmt.Errorf("failed to check employee id: %w", err)
	}
	if req.Email != nil {
		if _, err := s.userRepo.GetByEmail(ctx, *req.Email); err == nil {
			return user.UserResponse{}, user.ErrEmailExists
		} else if !errors.Is(err, user.ErrUserNotFound) {
			return user.UserResponse{}, fmt.Errorf("failed to check email: %w", err)
		}
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.clock.Now()
	createdBy := actor.ID
	created, err := s.userRepo.Create(ctx, user.User{
		EmployeeID:   req.EmployeeID,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         req.Role,
		Phone:        req.Phone,
		Department:   req.Department,
		ManagerID:    managerID,
		TeamLeadID:   teamLeadID,
		IsActive:     true,
		CreatedBy:    &createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	slog.InfoContext(ctx, "user created", "user_id", created.ID, "role", created.Role, "created_by", actor.ID)
	return user.NewUserResponse(created), nil
}

// resolveHierarchy fills manager_id and team_lead_id of a new user from the
// creator's position in the hierarchy.
func (s *UserServiceImpl) resolveHierarchy(ctx context.Context, actor user.Actor, req user.CreateUserRequest) (managerID, teamLeadID *string, err error) {
	switch actor.Role {
	case user.RoleTeamLead:
		self := actor.ID
		return actor.ManagerID, &self, nil

	case user.RoleManager:
		self := actor.ID
		if req.Role == user.RoleAssociate && req.TeamLeadID != nil {
			tl, err := s.activeWithRole(ctx, *req.TeamLeadID, user.RoleTeamLead, user.ErrInvalidTeamLead)
			if err != nil {
				return nil, nil, err
			}
			if tl.ManagerID == nil || *tl.ManagerID != actor.ID {
				return nil, nil, user.ErrInvalidTeamLead
			}
			teamLeadID = &tl.ID
		}
		return &self, teamLeadID, nil

	case user.RoleAdmin:
		if req.Role == user.RoleManager {
			return nil, nil, nil
		}
		if req.ManagerID == nil {
			return nil, nil, user.ErrInvalidManager
		}
		mgr, err := s.activeWithRole(ctx, *req.ManagerID, user.RoleManager, user.ErrInvalidManager)
		if err != nil {
			return nil, nil, err
		}
		if req.Role == user.RoleAssociate && req.TeamLeadID != nil {
			tl, err := s.activeWithRole(ctx, *req.TeamLeadID, user.RoleTeamLead, user.ErrInvalidTeamLead)
			if err != nil {
				return nil, nil, err
			}
			if tl.ManagerID == nil || *tl.ManagerID != mgr.ID {
				return nil, nil, user.ErrInvalidTeamLead
			}
			teamLeadID = &tl.ID
		}
		return &mgr.ID, teamLeadID, nil
	}
	return nil, nil, user.ErrCannotCreateRole
}

func (s *UserServiceImpl) activeWithRole(ctx context.Context, id string, role user.Role, invalid error) (user.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, user.ErrUserNotFound) {
		return user.User{}, invalid
	}
	if err != nil {
		return user.User{}, fmt.Errorf("failed to load user %s: %w", id, err)
	}
	if u.Role != role || !u.IsActive {
		return user.User{}, invalid
	}
	return u, nil
}

func (s *UserServiceImpl) List(ctx context.Context, filter user.UserFilter) (pagination.Page[user.UserResponse], error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return pagination.Page[user.UserResponse]{}, err
	}
	if err := s.authz.Require(actor, user.PermissionUserList); err != nil {
		return pagination.Page[user.UserResponse]{}, err
	}
	if err := filter.Validate(); err != nil {
		return pagination.Page[user.UserResponse]{}, err
	}

	users, total, err := s.userRepo.List(ctx, filter, s.authz.Scope(actor))
	if err != nil {
		return pagination.Page[user.UserResponse]{}, fmt.Errorf("failed to list users: %w", err)
	}
	return pagination.Map(pagination.NewPage(users, total, filter.Params), user.NewUserResponse), nil
}

func (s *UserServiceImpl) listRole(ctx context.Context, perm user.Permission, role user.Role) ([]user.UserResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Require(actor, perm); err != nil {
		return nil, err
	}

	active := true
	filter := user.UserFilter{Role: &role, IsActive: &active, Params: pagination.Params{Limit: lookupLimit}}
	users, _, err := s.userRepo.List(ctx, filter, s.authz.Scope(actor))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s users: %w", role, err)
	}

	out := make([]user.UserResponse, len(users))
	for i, u := range users {
		out[i] = user.NewUserResponse(u)
	}
	return out, nil
}

func (s *UserServiceImpl) ListManagers(ctx context.Context) ([]user.UserResponse, error) {
	return s.listRole(ctx, user.PermissionUserListManagers, user.RoleManager)
}

func (s *UserServiceImpl) ListTeamLeads(ctx context.Context) ([]user.UserResponse, error) {
	return s.listRole(ctx, user.PermissionUserListLeads, user.RoleTeamLead)
}

func (s *UserServiceImpl) ListEmployees(ctx context.Context) ([]user.UserResponse, error) {
	return s.listRole(ctx, user.PermissionUserListStaff, user.RoleAssociate)
}

func (s *UserServiceImpl) GetByID(ctx context.Context, id string) (user.UserResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return user.UserResponse{}, err
	}

	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	if err := s.authz.RequireAccess(actor, u.Owner()); err != nil {
		return user.UserResponse{}, user.ErrAccessDenied
	}
	return user.NewUserResponse(u), nil
}

func (s *UserServiceImpl) Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.UserResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return user.UserResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}

	self := u.ID == actor.ID
	if !self {
		if err := s.authz.Require(actor, user.PermissionUserUpdate); err != nil {
			return user.UserResponse{}, err
		}
		if err := s.authz.RequireAccess(actor, u.Owner()); err != nil {
			return user.UserResponse{}, user.ErrAccessDenied
		}
	}
	if self && req.IsActive != nil {
		return user.UserResponse{}, user.ErrAccessDenied
	}

	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.Phone != nil {
		u.Phone = req.Phone
	}
	if req.Department != nil {
		u.Department = req.Department
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	u.UpdatedAt = s.clock.Now()

	updated, err := s.userRepo.Update(ctx, u)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to update user: %w", err)
	}
	return user.NewUserResponse(updated), nil
}

func (s *UserServiceImpl) Delete(ctx context.Context, id string) error {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.authz.Require(actor, user.PermissionUserDelete); err != nil {
		return err
	}
	if id == actor.ID {
		return user.ErrCannotDeleteSelf
	}
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.SetActive(ctx, id, false); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	slog.InfoContext(ctx, "user deactivated", "user_id", id, "by", actor.ID)
	return nil
}
