package memory

import (
	"context"
	"slices"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/attendance"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
)

type sessionRepository struct {
	s *Store
}

func NewSessionRepository(s *Store) attendance.SessionRepository {
	return &sessionRepository{s: s}
}

func (r *sessionRepository) view(ts attendance.TimeSession) attendance.TimeSession {
	ts.Breaks = slices.Clone(ts.Breaks)
	ts.EmployeeName = r.s.nameOf(ts.EmployeeID)
	return ts
}

func (r *sessionRepository) Create(_ context.Context, ts attendance.TimeSession) (attendance.TimeSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.sessions {
		if existing.EmployeeID == ts.EmployeeID && existing.Date == ts.Date && existing.Status.IsOpen() {
			return attendance.TimeSession{}, attendance.ErrAlreadyClockedIn
		}
	}
	ts.ID, _ = r.s.nextID(ts.ID)
	ts.Breaks = slices.Clone(ts.Breaks)
	r.s.sessions[ts.ID] = ts
	return r.view(ts), nil
}

func (r *sessionRepository) GetByID(_ context.Context, id string) (attendance.TimeSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ts, ok := r.s.sessions[id]
	if !ok {
		return attendance.TimeSession{}, attendance.ErrSessionNotFound
	}
	return r.view(ts), nil
}

func (r *sessionRepository) GetOpen(_ context.Context, employeeID, date string) (attendance.TimeSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, ts := range r.s.sessions {
		if ts.EmployeeID == employeeID && ts.Date == date && ts.Status.IsOpen() {
			return r.view(ts), nil
		}
	}
	return attendance.TimeSession{}, attendance.ErrSessionNotFound
}

func (r *sessionRepository) GetLatest(_ context.Context, employeeID, date string) (attendance.TimeSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var latest *attendance.TimeSession
	for _, ts := range r.s.sessions {
		if ts.EmployeeID != employeeID || ts.Date != date {
			continue
		}
		if latest == nil || ts.LoginTime.After(latest.LoginTime) {
			latest = &ts
		}
	}
	if latest == nil {
		return attendance.TimeSession{}, attendance.ErrSessionNotFound
	}
	return r.view(*latest), nil
}

func (r *sessionRepository) Transition(_ context.Context, ts attendance.TimeSession, guard attendance.Guard) (attendance.TimeSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.sessions[ts.ID]
	if !ok {
		return attendance.TimeSession{}, attendance.ErrSessionNotFound
	}
	if !slices.Contains(guard.From, stored.Status) {
		return attendance.TimeSession{}, attendance.ErrConcurrentUpdate
	}
	if guard.RequireWorksheet && !stored.WorksheetSubmitted {
		return attendance.TimeSession{}, attendance.ErrConcurrentUpdate
	}

	stored.LogoutTime = ts.LogoutTime
	stored.Breaks = slices.Clone(ts.Breaks)
	stored.TotalWorkHours = ts.TotalWorkHours
	stored.TotalBreakMinutes = ts.TotalBreakMinutes
	stored.OvertimeHours = ts.OvertimeHours
	stored.Status = ts.Status
	stored.CurrentBreakID = ts.CurrentBreakID
	stored.UpdatedAt = ts.UpdatedAt
	r.s.sessions[ts.ID] = stored
	return r.view(stored), nil
}

func (r *sessionRepository) SetWorksheetSubmitted(_ context.Context, employeeID, date string, submitted bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, ts := range r.s.sessions {
		if ts.EmployeeID == employeeID && ts.Date == date {
			ts.WorksheetSubmitted = submitted
			r.s.sessions[id] = ts
			n++
		}
	}
	return n, nil
}

func (r *sessionRepository) List(_ context.Context, filter attendance.HistoryFilter, scope user.Scope) ([]attendance.TimeSession, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []attendance.TimeSession
	for _, ts := range r.s.sessions {
		if !scope.Allows(r.s.ownerOf(ts.EmployeeID)) {
			continue
		}
		if filter.EmployeeID != nil && ts.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.StartDate != nil && ts.Date < *filter.StartDate {
			continue
		}
		if filter.EndDate != nil && ts.Date > *filter.EndDate {
			continue
		}
		if filter.Status != nil && ts.Status != *filter.Status {
			continue
		}
		out = append(out, r.view(ts))
	}
	sortDesc(out, func(ts attendance.TimeSession) string {
		return ts.Date + ts.LoginTime.UTC().Format("150405.000000000")
	})
	items, total := window(out, filter.Params)
	return items, total, nil
}

func (r *sessionRepository) ListByDate(_ context.Context, date string, scope user.Scope) ([]attendance.TimeSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []attendance.TimeSession
	for _, ts := range r.s.sessions {
		if ts.Date == date && scope.Allows(r.s.ownerOf(ts.EmployeeID)) {
			out = append(out, r.view(ts))
		}
	}
	sortDesc(out, func(ts attendance.TimeSession) string { return ts.LoginTime.UTC().Format("150405.000000000") })
	return out, nil
}

func (r *sessionRepository) ListOpenBefore(_ context.Context, date string) ([]attendance.TimeSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []attendance.TimeSession
	for _, ts := range r.s.sessions {
		if ts.Date < date && ts.Status.IsOpen() {
			out = append(out, r.view(ts))
		}
	}
	return out, nil
}

type breakSettingsRepository struct {
	s *Store
}

func NewBreakSettingsRepository(s *Store) attendance.BreakSettingsRepository {
	return &breakSettingsRepository{s: s}
}

func (r *breakSettingsRepository) Create(_ context.Context, bs attendance.BreakSettings) (attendance.BreakSettings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.breakSettings[bs.TeamID]; ok {
		return attendance.BreakSettings{}, attendance.ErrBreakSettingsExist
	}
	bs.ID, _ = r.s.nextID(bs.ID)
	r.s.breakSettings[bs.TeamID] = bs
	return bs, nil
}

func (r *breakSettingsRepository) GetByTeamID(_ context.Context, teamID string) (attendance.BreakSettings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	bs, ok := r.s.breakSettings[teamID]
	if !ok {
		return attendance.BreakSettings{}, attendance.ErrBreakSettingsMissing
	}
	return bs, nil
}

func (r *breakSettingsRepository) Update(_ context.Context, bs attendance.BreakSettings) (attendance.BreakSettings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.breakSettings[bs.TeamID]; !ok {
		return attendance.BreakSettings{}, attendance.ErrBreakSettingsMissing
	}
	r.s.breakSettings[bs.TeamID] = bs
	return bs, nil
}
