package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/team"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/database"
)

type teamRepositoryImpl struct {
	db *database.DB
}

func NewTeamRepository(db *database.DB) team.TeamRepository {
	return &teamRepositoryImpl{db: db}
}

const teamColumns = `
	t.id, t.name, t.description, t.team_lead_id, t.manager_id, t.is_active, t.created_at, t.updated_at,
	COALESCE((SELECT array_agg(m.user_id::text ORDER BY m.added_at, m.user_id)
	          FROM team_members m WHERE m.team_id = t.id), '{}') AS members`

func scanTeam(row pgx.Row) (team.Team, error) {
	var t team.Team
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.TeamLeadID,
		&t.ManagerID,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.Members,
	)
	return t, err
}

func collectTeams(rows pgx.Rows) ([]team.Team, error) {
	defer rows.Close()
	var teams []team.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teams: %w", err)
	}
	return teams, nil
}

// Create implements team.TeamRepository. Initial members are inserted in the
// same statement batch; callers wrap it in a transaction.
func (r *teamRepositoryImpl) Create(ctx context.Context, t team.Team) (team.Team, error) {
	q := GetQuerier(ctx, r.db)

	if t.ID == "" {
		t.ID = uuid.New().String()
	}

	query := `
		INSERT INTO teams (id, name, description, team_lead_id, manager_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := q.Exec(ctx, query,
		t.ID,
		t.Name,
		t.Description,
		t.TeamLeadID,
		t.ManagerID,
		t.IsActive,
		t.CreatedAt,
		t.UpdatedAt,
	); err != nil {
		return team.Team{}, fmt.Errorf("failed to create team: %w", err)
	}

	for _, memberID := range t.Members {
		if err := r.AddMember(ctx, t.ID, memberID); err != nil {
			return team.Team{}, err
		}
	}
	return r.GetByID(ctx, t.ID)
}

// GetByID implements team.TeamRepository.
func (r *teamRepositoryImpl) GetByID(ctx context.Context, id string) (team.Team, error) {
	q := GetQuerier(ctx, r.db)

	t, err := scanTeam(q.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams t WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return team.Team{}, team.ErrTeamNotFound
		}
		return team.Team{}, fmt.Errorf("failed to get team: %w", err)
	}
	return t, nil
}

// List implements team.TeamRepository.
func (r *teamRepositoryImpl) List(ctx context.Context, filter team.TeamFilter, vis team.TeamVisibility) ([]team.Team, int64, error) {
	q := GetQuerier(ctx, r.db)

	var args queryArgs
	var where conditions
	if !vis.All {
		var clauses []string
		if vis.ManagerID != "" {
			clauses = append(clauses, "t.manager_id = "+args.add(vis.ManagerID))
		}
		if vis.TeamLeadID != "" {
			clauses = append(clauses, "t.team_lead_id = "+args.add(vis.TeamLeadID))
		}
		if vis.MemberID != "" {
			clauses = append(clauses, fmt.Sprintf(
				"EXISTS (SELECT 1 FROM team_members m WHERE m.team_id = t.id AND m.user_id = %s)", args.add(vis.MemberID)))
		}
		if len(clauses) == 0 {
			return nil, 0, nil
		}
		where.and("(%s)", strings.Join(clauses, " OR "))
	}
	if filter.IsActive != nil {
		where.and("t.is_active = %s", args.add(*filter.IsActive))
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM teams t `+where.where(), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count teams: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM teams t %s ORDER BY t.created_at DESC, t.id DESC %s`,
		teamColumns, where.where(), limitOffset(filter.Params, &args))
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list teams: %w", err)
	}
	teams, err := collectTeams(rows)
	if err != nil {
		return nil, 0, err
	}
	return teams, total, nil
}

// Update implements team.TeamRepository. Membership is left untouched.
func (r *teamRepositoryImpl) Update(ctx context.Context, t team.Team) (team.Team, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE teams
		SET name = $2, description = $3, team_lead_id = $4, manager_id = $5, is_active = $6, updated_at = $7
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query, t.ID, t.Name, t.Description, t.TeamLeadID, t.ManagerID, t.IsActive, t.UpdatedAt)
	if err != nil {
		return team.Team{}, fmt.Errorf("failed to update team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return team.Team{}, team.ErrTeamNotFound
	}
	return r.GetByID(ctx, t.ID)
}

// AddMember implements team.TeamRepository.
func (r *teamRepositoryImpl) AddMember(ctx context.Context, teamID, userID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `INSERT INTO team_members (team_id, user_id) VALUES ($1, $2)`, teamID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return team.ErrAlreadyMember
		}
		if isForeignKeyViolation(err) {
			return team.ErrTeamNotFound
		}
		return fmt.Errorf("failed to add team member: %w", err)
	}
	return nil
}

// RemoveMember implements team.TeamRepository.
func (r *teamRepositoryImpl) RemoveMember(ctx context.Context, teamID, userID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, teamID); err != nil {
			return err
		}
		return team.ErrNotMember
	}
	return nil
}

func (r *teamRepositoryImpl) findActive(ctx context.Context, condition string, arg string) ([]team.Team, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM teams t WHERE t.is_active AND %s ORDER BY t.created_at, t.id`, teamColumns, condition)
	rows, err := q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to find teams: %w", err)
	}
	return collectTeams(rows)
}

// FindByMember implements team.TeamRepository.
func (r *teamRepositoryImpl) FindByMember(ctx context.Context, userID string) ([]team.Team, error) {
	return r.findActive(ctx, "EXISTS (SELECT 1 FROM team_members m WHERE m.team_id = t.id AND m.user_id = $1)", userID)
}

// FindByTeamLead implements team.TeamRepository.
func (r *teamRepositoryImpl) FindByTeamLead(ctx context.Context, teamLeadID string) ([]team.Team, error) {
	return r.findActive(ctx, "t.team_lead_id = $1", teamLeadID)
}

// FindByManager implements team.TeamRepository.
func (r *teamRepositoryImpl) FindByManager(ctx context.Context, managerID string) ([]team.Team, error) {
	return r.findActive(ctx, "t.manager_id = $1", managerID)
}
