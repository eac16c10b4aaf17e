package memory

import (
	"context"
	"slices"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/form"
)

type formRepository struct {
	s *Store
}

func NewFormRepository(s *Store) form.FormRepository {
	return &formRepository{s: s}
}

func cloneForm(f form.Form) form.Form {
	f.Fields = slices.Clone(f.Fields)
	f.AssignedTeams = slices.Clone(f.AssignedTeams)
	return f
}

func (r *formRepository) Create(_ context.Context, f form.Form) (form.Form, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f.ID, _ = r.s.nextID(f.ID)
	r.s.forms[f.ID] = cloneForm(f)
	return cloneForm(f), nil
}

func (r *formRepository) GetByID(_ context.Context, id string) (form.Form, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.forms[id]
	if !ok {
		return form.Form{}, form.ErrFormNotFound
	}
	return cloneForm(f), nil
}

func (r *formRepository) List(_ context.Context, filter form.FormFilter, vis form.FormVisibility) ([]form.Form, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []form.Form
	for _, f := range r.s.forms {
		if !vis.All && !(vis.CreatedBy != "" && f.CreatedBy == vis.CreatedBy) && !f.AssignedToAny(vis.TeamIDs) {
			continue
		}
		if filter.IsActive != nil && f.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, cloneForm(f))
	}
	sortDesc(out, func(f form.Form) string { return f.CreatedAt.Format("20060102150405.000000000") + f.ID })
	items, total := window(out, filter.Params)
	return items, total, nil
}

func (r *formRepository) ListByTeam(_ context.Context, teamID string) ([]form.Form, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []form.Form
	for _, f := range r.s.forms {
		if f.IsActive && f.IsAssignedTo(teamID) {
			out = append(out, cloneForm(f))
		}
	}
	sortDesc(out, func(f form.Form) string { return f.CreatedAt.Format("20060102150405.000000000") + f.ID })
	return out, nil
}

func (r *formRepository) Update(_ context.Context, f form.Form) (form.Form, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.forms[f.ID]; !ok {
		return form.Form{}, form.ErrFormNotFound
	}
	r.s.forms[f.ID] = cloneForm(f)
	return cloneForm(f), nil
}

func (r *formRepository) SetAssignedTeams(_ context.Context, id string, teamIDs []string) (form.Form, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.forms[id]
	if !ok {
		return form.Form{}, form.ErrFormNotFound
	}
	f.AssignedTeams = slices.Clone(teamIDs)
	r.s.forms[id] = f
	return cloneForm(f), nil
}

func (r *formRepository) Deactivate(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.forms[id]
	if !ok {
		return form.ErrFormNotFound
	}
	f.IsActive = false
	r.s.forms[id] = f
	return nil
}
