package form

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/authz"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/form"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/notification"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/team"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/clock"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
)

type FormServiceImpl struct {
	formRepo form.FormRepository
	teamRepo team.TeamRepository
	authz    authz.Authorizer
	notifier notification.Notifier
	clock    clock.Clock
}

func NewFormService(
	formRepo form.FormRepository,
	teamRepo team.TeamRepository,
	authorizer authz.Authorizer,
	notifier notification.Notifier,
	clk clock.Clock,
) form.FormService {
	return &FormServiceImpl{
		formRepo: formRepo,
		teamRepo: teamRepo,
		authz:    authorizer,
		notifier: notifier,
		clock:    clk,
	}
}

// buildFields converts requested fields, generating ids for new ones.
func buildFields(reqs []form.FieldRequest) []form.Field {
	fields := make([]form.Field, len(reqs))
	for i, r := range reqs {
		f := r.Field()
		if f.FieldID == "" {
			f.FieldID = uuid.NewString()
		}
		fields[i] = f
	}
	return fields
}

// teamsFor returns the active teams the actor belongs to in any capacity.
func (s *FormServiceImpl) teamsFor(ctx context.Context, actor user.Actor) ([]team.Team, error) {
	switch actor.Role {
	case user.RoleManager:
		return s.teamRepo.FindByManager(ctx, actor.ID)
	case user.RoleTeamLead:
		return s.teamRepo.FindByTeamLead(ctx, actor.ID)
	case user.RoleAssociate:
		return s.teamRepo.FindByMember(ctx, actor.ID)
	}
	return nil, nil
}

func teamIDs(teams []team.Team) []string {
	ids := make([]string, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	return ids
}

// resolveTeams loads teamIDs and checks a Manager manages each of them.
func (s *FormServiceImpl) resolveTeams(ctx context.Context, actor user.Actor, ids []string) ([]team.Team, error) {
	teams := make([]team.Team, 0, len(ids))
	for _, id := range ids {
		t, err := s.teamRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !actor.IsAdmin() && t.ManagerID != actor.ID {
			return nil, form.ErrTeamNotManaged
		}
		teams = append(teams, t)
	}
	return teams, nil
}

func (s *FormServiceImpl) notifyLeads(ctx context.Context, f form.Form, teams []team.Team) {
	for _, t := range teams {
		s.notifier.Notify(ctx, notification.CreateNotificationRequest{
			RecipientID: t.TeamLeadID,
			Type:        notification.TypeFormAssigned,
			Title:       "New Form Assigned",
			Message:     fmt.Sprintf("Form '%s' has been assigned to your team %s", f.Name, t.Name),
			RelatedID:   &f.ID,
		})
	}
}

func (s *FormServiceImpl) Create(ctx context.Context, req form.CreateFormRequest) (form.FormResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return form.FormResponse{}, err
	}
	if err := s.authz.Require(actor, user.PermissionFormManage); err != nil {
		return form.FormResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return form.FormResponse{}, err
	}

	assigned := form.MergeTeams(nil, req.AssignedTeams)
	teams, err := s.resolveTeams(ctx, actor, assigned)
	if err != nil {
		return form.FormResponse{}, err
	}

	now := s.clock.Now()
	created, err := s.formRepo.Create(ctx, form.Form{
		Name:          req.Name,
		Description:   req.Description,
		Fields:        buildFields(req.Fields),
		CreatedBy:     actor.ID,
		AssignedTeams: assigned,
		IsActive:      true,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return form.FormResponse{}, fmt.Errorf("failed to create form: %w", err)
	}

	s.notifyLeads(ctx, created, teams)
	return form.NewFormResponse(created), nil
}

func (s *FormServiceImpl) List(ctx context.Context, filter form.FormFilter) (pagination.Page[form.FormResponse], error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return pagination.Page[form.FormResponse]{}, err
	}
	if err := filter.Validate(); err != nil {
		return pagination.Page[form.FormResponse]{}, err
	}

	vis := form.FormVisibility{All: actor.IsAdmin()}
	if !vis.All {
		teams, err := s.teamsFor(ctx, actor)
		if err != nil {
			return pagination.Page[form.FormResponse]{}, fmt.Errorf("failed to resolve teams: %w", err)
		}
		vis.TeamIDs = teamIDs(teams)
		if actor.Role == user.RoleManager {
			vis.CreatedBy = actor.ID
		}
	}

	forms, total, err := s.formRepo.List(ctx, filter, vis)
	if err != nil {
		return pagination.Page[form.FormResponse]{}, fmt.Errorf("failed to list forms: %w", err)
	}
	return pagination.Map(pagination.NewPage(forms, total, filter.Params), form.NewFormResponse), nil
}

func (s *FormServiceImpl) TeamForms(ctx context.Context, teamID string) ([]form.FormResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && t.ManagerID != actor.ID && t.TeamLeadID != actor.ID && !t.HasMember(actor.ID) {
		return nil, form.ErrFormAccessDenied
	}

	forms, err := s.formRepo.ListByTeam(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team forms: %w", err)
	}
	out := make([]form.FormResponse, len(forms))
	for i, f := range forms {
		out[i] = form.NewFormResponse(f)
	}
	return out, nil
}

func (s *FormServiceImpl) GetByID(ctx context.Context, id string) (form.FormResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return form.FormResponse{}, err
	}
	f, err := s.formRepo.GetByID(ctx, id)
	if err != nil {
		return form.FormResponse{}, err
	}
	if actor.IsAdmin() || f.CreatedBy == actor.ID {
		return form.NewFormResponse(f), nil
	}

	teams, err := s.teamsFor(ctx, actor)
	if err != nil {
		return form.FormResponse{}, fmt.Errorf("failed to resolve teams: %w", err)
	}
	if !f.AssignedToAny(teamIDs(teams)) {
		return form.FormResponse{}, form.ErrFormAccessDenied
	}
	return form.NewFormResponse(f), nil
}

// loadOwned fetches a form the actor may modify.
func (s *FormServiceImpl) loadOwned(ctx context.Context, actor user.Actor, id string) (form.Form, error) {
	if err := s.authz.Require(actor, user.PermissionFormManage); err != nil {
		return form.Form{}, err
	}
	f, err := s.formRepo.GetByID(ctx, id)
	if err != nil {
		return form.Form{}, err
	}
	if !actor.IsAdmin() && f.CreatedBy != actor.ID {
		return form.Form{}, form.ErrFormModifyForbidden
	}
	return f, nil
}

func (s *FormServiceImpl) Update(ctx context.Context, id string, req form.UpdateFormRequest) (form.FormResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return form.FormResponse{}, err
	}
	f, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return form.FormResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return form.FormResponse{}, err
	}

	if req.Name != nil {
		f.Name = *req.Name
	}
	if req.Description != nil {
		f.Description = req.Description
	}
	if req.IsActive != nil {
		f.IsActive = *req.IsActive
	}
	if req.Fields != nil {
		f.Fields = buildFields(req.Fields)
		f.Version++
	}
	f.UpdatedAt = s.clock.Now()

	updated, err := s.formRepo.Update(ctx, f)
	if err != nil {
		return form.FormResponse{}, fmt.Errorf("failed to update form: %w", err)
	}
	return form.NewFormResponse(updated), nil
}

func (s *FormServiceImpl) Assign(ctx context.Context, id string, req form.AssignTeamsRequest) (form.FormResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return form.FormResponse{}, err
	}
	f, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return form.FormResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return form.FormResponse{}, err
	}

	var added []string
	for _, teamID := range form.MergeTeams(nil, req.TeamIDs) {
		if !f.IsAssignedTo(teamID) {
			added = append(added, teamID)
		}
	}
	teams, err := s.resolveTeams(ctx, actor, added)
	if err != nil {
		return form.FormResponse{}, err
	}

	updated, err := s.formRepo.SetAssignedTeams(ctx, f.ID, form.MergeTeams(f.AssignedTeams, added))
	if err != nil {
		return form.FormResponse{}, fmt.Errorf("failed to assign teams: %w", err)
	}

	s.notifyLeads(ctx, updated, teams)
	return form.NewFormResponse(updated), nil
}

func (s *FormServiceImpl) Unassign(ctx context.Context, id, teamID string) (form.FormResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return form.FormResponse{}, err
	}
	f, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return form.FormResponse{}, err
	}

	remaining := slices.DeleteFunc(slices.Clone(f.AssignedTeams), func(t string) bool { return t == teamID })
	updated, err := s.formRepo.SetAssignedTeams(ctx, f.ID, remaining)
	if err != nil {
		return form.FormResponse{}, fmt.Errorf("failed to unassign team: %w", err)
	}
	return form.NewFormResponse(updated), nil
}

func (s *FormServiceImpl) Delete(ctx context.Context, id string) error {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	f, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.formRepo.Deactivate(ctx, f.ID); err != nil {
		return fmt.Errorf("failed to deactivate form: %w", err)
	}
	return nil
}
