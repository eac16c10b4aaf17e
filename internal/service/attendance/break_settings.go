package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/attendance"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/authz"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/team"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/cache"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/clock"
)

type BreakSettingsServiceImpl struct {
	repo     attendance.BreakSettingsRepository
	teamRepo team.TeamRepository
	authz    authz.Authorizer
	cache    *cache.Cache
	clock    clock.Clock
}

func NewBreakSettingsService(
	repo attendance.BreakSettingsRepository,
	teamRepo team.TeamRepository,
	authorizer authz.Authorizer,
	c *cache.Cache,
	clk clock.Clock,
) attendance.BreakSettingsService {
	return &BreakSettingsServiceImpl{
		repo:     repo,
		teamRepo: teamRepo,
		authz:    authorizer,
		cache:    c,
		clock:    clk,
	}
}

func (b *BreakSettingsServiceImpl) key(teamID string) string {
	return b.cache.Key("break_settings", teamID)
}

// ownedTeam loads teamID and checks the actor may manage its policy.
func (b *BreakSettingsServiceImpl) ownedTeam(ctx context.Context, actor user.Actor, teamID string) (team.Team, error) {
	if err := b.authz.Require(actor, user.PermissionBreakSettingsManage); err != nil {
		return team.Team{}, err
	}
	t, err := b.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return team.Team{}, err
	}
	if !actor.IsAdmin() && t.ManagerID != actor.ID {
		return team.Team{}, team.ErrTeamModifyForbidden
	}
	return t, nil
}

func (b *BreakSettingsServiceImpl) Create(ctx context.Context, req attendance.CreateBreakSettingsRequest) (attendance.BreakSettings, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return attendance.BreakSettings{}, err
	}
	if err := req.Validate(); err != nil {
		return attendance.BreakSettings{}, err
	}
	t, err := b.ownedTeam(ctx, actor, req.TeamID)
	if err != nil {
		return attendance.BreakSettings{}, err
	}

	now := b.clock.Now()
	created, err := b.repo.Create(ctx, attendance.BreakSettings{
		TeamID:                  t.ID,
		MaxBreaksPerDay:         req.MaxBreaksPerDay,
		MaxBreakDurationMinutes: req.MaxBreakDurationMinutes,
		LunchBreakDuration:      req.LunchBreakDuration,
		ShortBreakDuration:      req.ShortBreakDuration,
		EnforceLimits:           req.EnforceLimits,
		CreatedAt:               now,
		UpdatedAt:               now,
	})
	if err != nil {
		return attendance.BreakSettings{}, err
	}
	b.cache.Invalidate(ctx, b.key(t.ID))
	return created, nil
}

func (b *BreakSettingsServiceImpl) Get(ctx context.Context, teamID string) (attendance.BreakSettings, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return attendance.BreakSettings{}, err
	}
	t, err := b.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return attendance.BreakSettings{}, err
	}
	if !actor.IsAdmin() && t.ManagerID != actor.ID && t.TeamLeadID != actor.ID && !t.HasMember(actor.ID) {
		return attendance.BreakSettings{}, team.ErrTeamAccessDenied
	}
	return b.repo.GetByTeamID(ctx, t.ID)
}

func (b *BreakSettingsServiceImpl) Update(ctx context.Context, teamID string, req attendance.UpdateBreakSettingsRequest) (attendance.BreakSettings, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return attendance.BreakSettings{}, err
	}
	if err := req.Validate(); err != nil {
		return attendance.BreakSettings{}, err
	}
	t, err := b.ownedTeam(ctx, actor, teamID)
	if err != nil {
		return attendance.BreakSettings{}, err
	}

	bs, err := b.repo.GetByTeamID(ctx, t.ID)
	if err != nil {
		return attendance.BreakSettings{}, err
	}
	if req.MaxBreaksPerDay != nil {
		bs.MaxBreaksPerDay = req.MaxBreaksPerDay
	}
	if req.MaxBreakDurationMinutes != nil {
		bs.MaxBreakDurationMinutes = req.MaxBreakDurationMinutes
	}
	if req.LunchBreakDuration != nil {
		bs.LunchBreakDuration = req.LunchBreakDuration
	}
	if req.ShortBreakDuration != nil {
		bs.ShortBreakDuration = req.ShortBreakDuration
	}
	if req.EnforceLimits != nil {
		bs.EnforceLimits = *req.EnforceLimits
	}
	bs.UpdatedAt = b.clock.Now()

	updated, err := b.repo.Update(ctx, bs)
	if err != nil {
		return attendance.BreakSettings{}, err
	}
	b.cache.Invalidate(ctx, b.key(t.ID))
	return updated, nil
}

// ForEmployee implements attendance.BreakSettingsService. Lookups go through
// the cache; a team without a policy is cached as null.
func (b *BreakSettingsServiceImpl) ForEmployee(ctx context.Context, employeeID string) (*attendance.BreakSettings, error) {
	teams, err := b.teamRepo.FindByMember(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find employee team: %w", err)
	}
	if len(teams) == 0 {
		return nil, nil
	}

	teamID := teams[0].ID
	return cache.Remember(ctx, b.cache, b.key(teamID), func(ctx context.Context) (*attendance.BreakSettings, error) {
		bs, err := b.repo.GetByTeamID(ctx, teamID)
		if errors.Is(err, attendance.ErrBreakSettingsMissing) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &bs, nil
	})
}
