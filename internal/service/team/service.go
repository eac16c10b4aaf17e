package team

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/authz"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/notification"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/team"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/clock"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/database"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
)

type TeamServiceImpl struct {
	teamRepo team.TeamRepository
	userRepo user.UserRepository
	tx       database.Transactor
	authz    authz.Authorizer
	notifier notification.Notifier
	clock    clock.Clock
}

func NewTeamService(
	teamRepo team.TeamRepository,
	userRepo user.UserRepository,
	tx database.Transactor,
	authorizer authz.Authorizer,
	notifier notification.Notifier,
	clk clock.Clock,
) team.TeamService {
	return &TeamServiceImpl{
		teamRepo: teamRepo,
		userRepo: userRepo,
		tx:       tx,
		authz:    authorizer,
		notifier: notifier,
		clock:    clk,
	}
}

func (s *TeamServiceImpl) Create(ctx context.Context, req team.CreateTeamRequest) (team.TeamResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return team.TeamResponse{}, err
	}
	if err := s.authz.Require(actor, user.PermissionTeamCreate); err != nil {
		return team.TeamResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return team.TeamResponse{}, err
	}

	lead, err := s.activeUser(ctx, req.TeamLeadID, user.RoleTeamLead, team.ErrInvalidTeamLead)
	if err != nil {
		return team.TeamResponse{}, err
	}

	managerID := req.ManagerID
	switch {
	case actor.Role == user.RoleManager:
		if lead.ManagerID == nil || *lead.ManagerID != actor.ID {
			return team.TeamResponse{}, team.ErrTeamLeadNotReport
		}
		managerID = actor.ID
	case managerID == "":
		if lead.ManagerID == nil {
			return team.TeamResponse{}, team.ErrInvalidManager
		}
		managerID = *lead.ManagerID
	}
	if _, err := s.activeUser(ctx, managerID, user.RoleManager, team.ErrInvalidManager); err != nil {
		return team.TeamResponse{}, err
	}
	if lead.ManagerID == nil || *lead.ManagerID != managerID {
		return team.TeamResponse{}, team.ErrInvalidTeamLead
	}

	now := s.clock.Now()
	created, err := s.teamRepo.Create(ctx, team.Team{
		Name:        req.Name,
		Description: req.Description,
		TeamLeadID:  lead.ID,
		ManagerID:   managerID,
		Members:     []string{},
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return team.TeamResponse{}, fmt.Errorf("failed to create team: %w", err)
	}

	slog.InfoContext(ctx, "team created", "team_id", created.ID, "team_lead_id", created.TeamLeadID, "manager_id", created.ManagerID)
	return team.NewTeamResponse(created), nil
}

func (s *TeamServiceImpl) activeUser(ctx context.Context, id string, role user.Role, invalid error) (user.User, error) {
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

func visibility(actor user.Actor) team.TeamVisibility {
	switch actor.Role {
	case user.RoleAdmin:
		return team.TeamVisibility{All: true}
	case user.RoleManager:
		return team.TeamVisibility{ManagerID: actor.ID}
	case user.RoleTeamLead:
		return team.TeamVisibility{TeamLeadID: actor.ID}
	default:
		return team.TeamVisibility{MemberID: actor.ID}
	}
}

func canSee(actor user.Actor, t team.Team) bool {
	switch actor.Role {
	case user.RoleAdmin:
		return true
	case user.RoleManager:
		return t.ManagerID == actor.ID
	case user.RoleTeamLead:
		return t.TeamLeadID == actor.ID
	default:
		return t.HasMember(actor.ID)
	}
}

// canManageMembers reports whether actor may change the roster of t.
func canManageMembers(actor user.Actor, t team.Team) bool {
	switch actor.Role {
	case user.RoleAdmin:
		return true
	case user.RoleManager:
		return t.ManagerID == actor.ID
	case user.RoleTeamLead:
		return t.TeamLeadID == actor.ID
	}
	return false
}

func (s *TeamServiceImpl) List(ctx context.Context, filter team.TeamFilter) (pagination.Page[team.TeamResponse], error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return pagination.Page[team.TeamResponse]{}, err
	}
	if err := filter.Validate(); err != nil {
		return pagination.Page[team.TeamResponse]{}, err
	}

	teams, total, err := s.teamRepo.List(ctx, filter, visibility(actor))
	if err != nil {
		return pagination.Page[team.TeamResponse]{}, fmt.Errorf("failed to list teams: %w", err)
	}
	return pagination.Map(pagination.NewPage(teams, total, filter.Params), team.NewTeamResponse), nil
}

func (s *TeamServiceImpl) GetByID(ctx context.Context, id string) (team.TeamResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return team.TeamResponse{}, err
	}
	t, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return team.TeamResponse{}, err
	}
	if !canSee(actor, t) {
		return team.TeamResponse{}, team.ErrTeamAccessDenied
	}
	return team.NewTeamResponse(t), nil
}

func (s *TeamServiceImpl) Update(ctx context.Context, id string, req team.UpdateTeamRequest) (team.TeamResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return team.TeamResponse{}, err
	}
	if err := s.authz.Require(actor, user.PermissionTeamUpdate); err != nil {
		return team.TeamResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return team.TeamResponse{}, err
	}

	t, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return team.TeamResponse{}, err
	}
	if !actor.IsAdmin() && t.ManagerID != actor.ID {
		return team.TeamResponse{}, team.ErrTeamModifyForbidden
	}

	leadChanged := false
	if req.TeamLeadID != nil && *req.TeamLeadID != t.TeamLeadID {
		lead, err := s.activeUser(ctx, *req.TeamLeadID, user.RoleTeamLead, team.ErrInvalidTeamLead)
		if err != nil {
			return team.TeamResponse{}, err
		}
		if lead.ManagerID == nil || *lead.ManagerID != t.ManagerID {
			return team.TeamResponse{}, team.ErrTeamLeadNotReport
		}
		t.TeamLeadID = lead.ID
		leadChanged = true
	}
	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	t.UpdatedAt = s.clock.Now()

	var updated team.Team
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.teamRepo.Update(ctx, t)
		if err != nil {
			return fmt.Errorf("failed to update team: %w", err)
		}
		if leadChanged && len(updated.Members) > 0 {
			if err := s.userRepo.SetHierarchy(ctx, updated.Members, &updated.TeamLeadID, &updated.ManagerID); err != nil {
				return fmt.Errorf("failed to move members to new team lead: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return team.TeamResponse{}, err
	}
	return team.NewTeamResponse(updated), nil
}

func (s *TeamServiceImpl) loadManaged(ctx context.Context, actor user.Actor, teamID string) (team.Team, error) {
	if err := s.authz.Require(actor, user.PermissionTeamMembers); err != nil {
		return team.Team{}, err
	}
	t, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return team.Team{}, err
	}
	if !canManageMembers(actor, t) {
		return team.Team{}, team.ErrTeamModifyForbidden
	}
	return t, nil
}

func (s *TeamServiceImpl) AddMember(ctx context.Context, teamID string, req team.AddMemberRequest) (team.TeamResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return team.TeamResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return team.TeamResponse{}, err
	}
	t, err := s.loadManaged(ctx, actor, teamID)
	if err != nil {
		return team.TeamResponse{}, err
	}

	member, err := s.userRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return team.TeamResponse{}, err
	}
	if member.Role != user.RoleAssociate || !member.IsActive {
		return team.TeamResponse{}, team.ErrNotAssociate
	}
	if t.HasMember(member.ID) {
		return team.TeamResponse{}, team.ErrAlreadyMember
	}
	current, err := s.teamRepo.FindByMember(ctx, member.ID)
	if err != nil {
		return team.TeamResponse{}, fmt.Errorf("failed to look up member teams: %w", err)
	}
	if len(current) > 0 {
		return team.TeamResponse{}, team.ErrMemberOfOtherTeam
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.teamRepo.AddMember(ctx, t.ID, member.ID); err != nil {
			return err
		}
		return s.userRepo.SetHierarchy(ctx, []string{member.ID}, &t.TeamLeadID, &t.ManagerID)
	})
	if err != nil {
		return team.TeamResponse{}, err
	}

	s.notifier.Notify(ctx, notification.CreateNotificationRequest{
		RecipientID: member.ID,
		Type:        notification.TypeTeamMemberAdded,
		Title:       "Added to Team",
		Message:     fmt.Sprintf("You have been added to the team %s", t.Name),
		RelatedID:   &t.ID,
	})

	return s.reload(ctx, t.ID)
}

func (s *TeamServiceImpl) RemoveMember(ctx context.Context, teamID, userID string) (team.TeamResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return team.TeamResponse{}, err
	}
	t, err := s.loadManaged(ctx, actor, teamID)
	if err != nil {
		return team.TeamResponse{}, err
	}
	if !t.HasMember(userID) {
		return team.TeamResponse{}, team.ErrNotMember
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.teamRepo.RemoveMember(ctx, t.ID, userID); err != nil {
			return err
		}
		// The member keeps the manager; only the team lead link goes with the team.
		return s.userRepo.SetHierarchy(ctx, []string{userID}, nil, &t.ManagerID)
	})
	if err != nil {
		return team.TeamResponse{}, err
	}
	return s.reload(ctx, t.ID)
}

func (s *TeamServiceImpl) reload(ctx context.Context, id string) (team.TeamResponse, error) {
	t, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return team.TeamResponse{}, err
	}
	return team.NewTeamResponse(t), nil
}

func (s *TeamServiceImpl) Delete(ctx context.Context, id string) error {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.authz.Require(actor, user.PermissionTeamDelete); err != nil {
		return err
	}
	t, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	t.IsActive = false
	t.UpdatedAt = s.clock.Now()
	if _, err := s.teamRepo.Update(ctx, t); err != nil {
		return fmt.Errorf("failed to deactivate team: %w", err)
	}

	slog.InfoContext(ctx, "team deactivated", "team_id", id, "by", actor.ID)
	return nil
}
