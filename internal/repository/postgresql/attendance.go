package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/attendance"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/database"
)

type sessionRepositoryImpl struct {
	db *database.DB
}

func NewSessionRepository(db *database.DB) attendance.SessionRepository {
	return &sessionRepositoryImpl{db: db}
}

const sessionColumns = `
	s.id, s.employee_id, s.date::text, s.login_time, s.logout_time, s.breaks,
	s.total_work_hours, s.total_break_minutes, s.overtime_hours, s.status,
	s.worksheet_submitted, s.current_break_id, s.created_at, s.updated_at, u.full_name`

func scanSession(row pgx.Row) (attendance.TimeSession, error) {
	var s attendance.TimeSession
	var breaksJSON []byte
	var status string
	err := row.Scan(
		&s.ID,
		&s.EmployeeID,
		&s.Date,
		&s.LoginTime,
		&s.LogoutTime,
		&breaksJSON,
		&s.TotalWorkHours,
		&s.TotalBreakMinutes,
		&s.OvertimeHours,
		&status,
		&s.WorksheetSubmitted,
		&s.CurrentBreakID,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.EmployeeName,
	)
	if err != nil {
		return attendance.TimeSession{}, err
	}
	s.Status = attendance.SessionStatus(status)
	s.Breaks = []attendance.Break{}
	if len(breaksJSON) > 0 {
		if err := json.Unmarshal(breaksJSON, &s.Breaks); err != nil {
			return attendance.TimeSession{}, fmt.Errorf("failed to unmarshal breaks: %w", err)
		}
	}
	return s, nil
}

func collectSessions(rows pgx.Rows) ([]attendance.TimeSession, error) {
	defer rows.Close()
	var sessions []attendance.TimeSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

func marshalBreaks(breaks []attendance.Break) ([]byte, error) {
	if breaks == nil {
		breaks = []attendance.Break{}
	}
	b, err := json.Marshal(breaks)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal breaks: %w", err)
	}
	return b, nil
}

func statusStrings(statuses []attendance.SessionStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// Create implements attendance.SessionRepository. The partial unique index on
// open sessions turns a second clock-in into ErrAlreadyClockedIn.
func (r *sessionRepositoryImpl) Create(ctx context.Context, s attendance.TimeSession) (attendance.TimeSession, error) {
	q := GetQuerier(ctx, r.db)

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	breaksJSON, err := marshalBreaks(s.Breaks)
	if err != nil {
		return attendance.TimeSession{}, err
	}

	query := `
		INSERT INTO time_sessions (
			id, employee_id, date, login_time, logout_time, breaks, total_work_hours,
			total_break_minutes, overtime_hours, status, worksheet_submitted, current_break_id,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = q.Exec(ctx, query,
		s.ID,
		s.EmployeeID,
		s.Date,
		s.LoginTime,
		s.LogoutTime,
		breaksJSON,
		s.TotalWorkHours,
		s.TotalBreakMinutes,
		s.OvertimeHours,
		string(s.Status),
		s.WorksheetSubmitted,
		s.CurrentBreakID,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.TimeSession{}, attendance.ErrAlreadyClockedIn
		}
		return attendance.TimeSession{}, fmt.Errorf("failed to create session: %w", err)
	}
	return r.GetByID(ctx, s.ID)
}

func (r *sessionRepositoryImpl) getOne(ctx context.Context, condition string, args ...any) (attendance.TimeSession, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM time_sessions s
		JOIN users u ON u.id = s.employee_id
		WHERE %s
		ORDER BY s.login_time DESC
		LIMIT 1`, sessionColumns, condition)

	s, err := scanSession(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.TimeSession{}, attendance.ErrSessionNotFound
		}
		return attendance.TimeSession{}, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// GetByID implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.TimeSession, error) {
	return r.getOne(ctx, "s.id = $1", id)
}

// GetOpen implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) GetOpen(ctx context.Context, employeeID, date string) (attendance.TimeSession, error) {
	return r.getOne(ctx, "s.employee_id = $1 AND s.date = $2 AND s.status = ANY($3::text[])",
		employeeID, date, statusStrings(attendance.OpenStatuses))
}

// GetLatest implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) GetLatest(ctx context.Context, employeeID, date string) (attendance.TimeSession, error) {
	return r.getOne(ctx, "s.employee_id = $1 AND s.date = $2", employeeID, date)
}

// Transition implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) Transition(ctx context.Context, s attendance.TimeSession, guard attendance.Guard) (attendance.TimeSession, error) {
	q := GetQuerier(ctx, r.db)

	breaksJSON, err := marshalBreaks(s.Breaks)
	if err != nil {
		return attendance.TimeSession{}, err
	}

	query := `
		UPDATE time_sessions AS s
		SET logout_time = $2, breaks = $3, total_work_hours = $4, total_break_minutes = $5,
			overtime_hours = $6, status = $7, current_break_id = $8, updated_at = $9
		FROM users u
		WHERE s.id = $1
		  AND u.id = s.employee_id
		  AND s.status = ANY($10::text[])
		  AND (NOT $11 OR s.worksheet_submitted)
		RETURNING` + sessionColumns

	updated, err := scanSession(q.QueryRow(ctx, query,
		s.ID,
		s.LogoutTime,
		breaksJSON,
		s.TotalWorkHours,
		s.TotalBreakMinutes,
		s.OvertimeHours,
		string(s.Status),
		s.CurrentBreakID,
		s.UpdatedAt,
		statusStrings(guard.From),
		guard.RequireWorksheet,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, s.ID); getErr != nil {
				return attendance.TimeSession{}, getErr
			}
			return attendance.TimeSession{}, attendance.ErrConcurrentUpdate
		}
		return attendance.TimeSession{}, fmt.Errorf("failed to update session: %w", err)
	}
	return updated, nil
}

// SetWorksheetSubmitted implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) SetWorksheetSubmitted(ctx context.Context, employeeID, date string, submitted bool) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_sessions
		SET worksheet_submitted = $3, updated_at = NOW()
		WHERE employee_id = $1 AND date = $2
	`
	tag, err := q.Exec(ctx, query, employeeID, date, submitted)
	if err != nil {
		return 0, fmt.Errorf("failed to set worksheet flag: %w", err)
	}
	return tag.RowsAffected(), nil
}

// List implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) List(ctx context.Context, filter attendance.HistoryFilter, scope user.Scope) ([]attendance.TimeSession, int64, error) {
	q := GetQuerier(ctx, r.db)

	var args queryArgs
	var where conditions
	where.and("%s", scopeCondition(scope, "u", &args))
	if filter.EmployeeID != nil {
		where.and("s.employee_id = %s", args.add(*filter.EmployeeID))
	}
	if filter.StartDate != nil {
		where.and("s.date >= %s", args.add(*filter.StartDate))
	}
	if filter.EndDate != nil {
		where.and("s.date <= %s", args.add(*filter.EndDate))
	}
	if filter.Status != nil {
		where.and("s.status = %s", args.add(string(*filter.Status)))
	}

	from := `FROM time_sessions s JOIN users u ON u.id = s.employee_id ` + where.where()

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) `+from, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s %s ORDER BY s.date DESC, s.login_time DESC %s`,
		sessionColumns, from, limitOffset(filter.Params, &args))
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}
	sessions, err := collectSessions(rows)
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// ListByDate implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) ListByDate(ctx context.Context, date string, scope user.Scope) ([]attendance.TimeSession, error) {
	q := GetQuerier(ctx, r.db)

	args := queryArgs{date}
	query := fmt.Sprintf(`
		SELECT %s
		FROM time_sessions s
		JOIN users u ON u.id = s.employee_id
		WHERE s.date = $1 AND %s
		ORDER BY s.login_time DESC`, sessionColumns, scopeCondition(scope, "u", &args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions by date: %w", err)
	}
	return collectSessions(rows)
}

// ListOpenBefore implements attendance.SessionRepository.
func (r *sessionRepositoryImpl) ListOpenBefore(ctx context.Context, date string) ([]attendance.TimeSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT` + sessionColumns + `
		FROM time_sessions s
		JOIN users u ON u.id = s.employee_id
		WHERE s.date < $1 AND s.status = ANY($2::text[])
		ORDER BY s.date, s.login_time`

	rows, err := q.Query(ctx, query, date, statusStrings(attendance.OpenStatuses))
	if err != nil {
		return nil, fmt.Errorf("failed to list stale sessions: %w", err)
	}
	return collectSessions(rows)
}

type breakSettingsRepositoryImpl struct {
	db *database.DB
}

func NewBreakSettingsRepository(db *database.DB) attendance.BreakSettingsRepository {
	return &breakSettingsRepositoryImpl{db: db}
}

const breakSettingsColumns = `
	id, team_id, max_breaks_per_day, max_break_duration_minutes, lunch_break_duration,
	short_break_duration, enforce_limits, created_at, updated_at`

func scanBreakSettings(row pgx.Row) (attendance.BreakSettings, error) {
	var bs attendance.BreakSettings
	err := row.Scan(
		&bs.ID,
		&bs.TeamID,
		&bs.MaxBreaksPerDay,
		&bs.MaxBreakDurationMinutes,
		&bs.LunchBreakDuration,
		&bs.ShortBreakDuration,
		&bs.EnforceLimits,
		&bs.CreatedAt,
		&bs.UpdatedAt,
	)
	return bs, err
}

// Create implements attendance.BreakSettingsRepository.
func (r *breakSettingsRepositoryImpl) Create(ctx context.Context, bs attendance.BreakSettings) (attendance.BreakSettings, error) {
	q := GetQuerier(ctx, r.db)

	if bs.ID == "" {
		bs.ID = uuid.New().String()
	}

	query := `
		INSERT INTO break_settings (
			id, team_id, max_breaks_per_day, max_break_duration_minutes, lunch_break_duration,
			short_break_duration, enforce_limits, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING` + breakSettingsColumns

	created, err := scanBreakSettings(q.QueryRow(ctx, query,
		bs.ID,
		bs.TeamID,
		bs.MaxBreaksPerDay,
		bs.MaxBreakDurationMinutes,
		bs.LunchBreakDuration,
		bs.ShortBreakDuration,
		bs.EnforceLimits,
		bs.CreatedAt,
		bs.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.BreakSettings{}, attendance.ErrBreakSettingsExist
		}
		return attendance.BreakSettings{}, fmt.Errorf("failed to create break settings: %w", err)
	}
	return created, nil
}

// GetByTeamID implements attendance.BreakSettingsRepository.
func (r *breakSettingsRepositoryImpl) GetByTeamID(ctx context.Context, teamID string) (attendance.BreakSettings, error) {
	q := GetQuerier(ctx, r.db)

	bs, err := scanBreakSettings(q.QueryRow(ctx, `SELECT`+breakSettingsColumns+` FROM break_settings WHERE team_id = $1`, teamID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.BreakSettings{}, attendance.ErrBreakSettingsMissing
		}
		return attendance.BreakSettings{}, fmt.Errorf("failed to get break settings: %w", err)
	}
	return bs, nil
}

// Update implements attendance.BreakSettingsRepository.
func (r *breakSettingsRepositoryImpl) Update(ctx context.Context, bs attendance.BreakSettings) (attendance.BreakSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE break_settings
		SET max_breaks_per_day = $2, max_break_duration_minutes = $3, lunch_break_duration = $4,
			short_break_duration = $5, enforce_limits = $6, updated_at = $7
		WHERE team_id = $1
		RETURNING` + breakSettingsColumns

	updated, err := scanBreakSettings(q.QueryRow(ctx, query,
		bs.TeamID,
		bs.MaxBreaksPerDay,
		bs.MaxBreakDurationMinutes,
		bs.LunchBreakDuration,
		bs.ShortBreakDuration,
		bs.EnforceLimits,
		bs.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.BreakSettings{}, attendance.ErrBreakSettingsMissing
		}
		return attendance.BreakSettings{}, fmt.Errorf("failed to update break settings: %w", err)
	}
	return updated, nil
}
