package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/team"
)

type teamRepository struct {
	s *Store
}

func NewTeamRepository(s *Store) team.TeamRepository {
	return &teamRepository{s: s}
}

func cloneTeam(t team.Team) team.Team {
	t.Members = slices.Clone(t.Members)
	return t
}

func (r *teamRepository) Create(_ context.Context, t team.Team) (team.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID, _ = r.s.nextID(t.ID)
	if t.Members == nil {
		t.Members = []string{}
	}
	r.s.teams[t.ID] = cloneTeam(t)
	return cloneTeam(t), nil
}

func (r *teamRepository) GetByID(_ context.Context, id string) (team.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.teams[id]
	if !ok {
		return team.Team{}, team.ErrTeamNotFound
	}
	return cloneTeam(t), nil
}

func visible(t team.Team, vis team.TeamVisibility) bool {
	switch {
	case vis.All:
		return true
	case vis.ManagerID != "" && t.ManagerID == vis.ManagerID:
		return true
	case vis.TeamLeadID != "" && t.TeamLeadID == vis.TeamLeadID:
		return true
	case vis.MemberID != "" && t.HasMember(vis.MemberID):
		return true
	}
	return false
}

func (r *teamRepository) List(_ context.Context, filter team.TeamFilter, vis team.TeamVisibility) ([]team.Team, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []team.Team
	for _, t := range r.s.teams {
		if !visible(t, vis) {
			continue
		}
		if filter.IsActive != nil && t.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, cloneTeam(t))
	}
	sortDesc(out, func(t team.Team) string { return t.CreatedAt.Format("20060102150405.000000000") + t.ID })
	items, total := window(out, filter.Params)
	return items, total, nil
}

func (r *teamRepository) Update(_ context.Context, t team.Team) (team.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.teams[t.ID]
	if !ok {
		return team.Team{}, team.ErrTeamNotFound
	}
	t.Members = stored.Members
	r.s.teams[t.ID] = cloneTeam(t)
	return cloneTeam(t), nil
}

func (r *teamRepository) AddMember(_ context.Context, teamID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[teamID]
	if !ok {
		return team.ErrTeamNotFound
	}
	if t.HasMember(userID) {
		return team.ErrAlreadyMember
	}
	t.Members = append(slices.Clone(t.Members), userID)
	r.s.teams[teamID] = t
	return nil
}

func (r *teamRepository) RemoveMember(_ context.Context, teamID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[teamID]
	if !ok {
		return team.ErrTeamNotFound
	}
	idx := slices.Index(t.Members, userID)
	if idx < 0 {
		return team.ErrNotMember
	}
	t.Members = slices.Delete(slices.Clone(t.Members), idx, idx+1)
	r.s.teams[teamID] = t
	return nil
}

func (r *teamRepository) find(match func(team.Team) bool) []team.Team {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []team.Team
	for _, t := range r.s.teams {
		if t.IsActive && match(t) {
			out = append(out, cloneTeam(t))
		}
	}
	slices.SortFunc(out, func(a, b team.Team) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmp.Compare(a.ID, b.ID)
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

func (r *teamRepository) FindByMember(_ context.Context, userID string) ([]team.Team, error) {
	return r.find(func(t team.Team) bool { return t.HasMember(userID) }), nil
}

func (r *teamRepository) FindByTeamLead(_ context.Context, teamLeadID string) ([]team.Team, error) {
	return r.find(func(t team.Team) bool { return t.TeamLeadID == teamLeadID }), nil
}

func (r *teamRepository) FindByManager(_ context.Context, managerID string) ([]team.Team, error) {
	return r.find(func(t team.Team) bool { return t.ManagerID == managerID }), nil
}
