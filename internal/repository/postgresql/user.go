package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/database"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `
	u.id, u.employee_id, u.email, u.full_name, u.password_hash, u.role, u.phone, u.department,
	u.manager_id, u.team_lead_id, u.is_active, u.created_by, u.created_at, u.updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.EmployeeID,
		&u.Email,
		&u.FullName,
		&u.PasswordHash,
		&u.Role,
		&u.Phone,
		&u.Department,
		&u.ManagerID,
		&u.TeamLeadID,
		&u.IsActive,
		&u.CreatedBy,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, u user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	if u.ID == "" {
		u.ID = uuid.New().String()
	}

	query := `
		INSERT INTO users AS u (
			id, employee_id, email, full_name, password_hash, role, phone, department,
			manager_id, team_lead_id, is_active, created_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING` + userColumns

	created, err := scanUser(q.QueryRow(ctx, query,
		u.ID,
		u.EmployeeID,
		u.Email,
		u.FullName,
		u.PasswordHash,
		string(u.Role),
		u.Phone,
		u.Department,
		u.ManagerID,
		u.TeamLeadID,
		u.IsActive,
		u.CreatedBy,
		u.CreatedAt,
		u.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			if constraintName(err) == "users_email_key" {
				return user.User{}, user.ErrEmailExists
			}
			return user.User{}, user.ErrEmployeeIDExists
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

func (r *userRepositoryImpl) getBy(ctx context.Context, column, value string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.%s = $1`, userColumns, column)

	u, err := scanUser(q.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	return u, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmployeeID implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) (user.User, error) {
	return r.getBy(ctx, "employee_id", employeeID)
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getBy(ctx, "email", email)
}

// List implements user.UserRepository.
func (r *userRepositoryImpl) List(ctx context.Context, filter user.UserFilter, scope user.Scope) ([]user.User, int64, error) {
	q := GetQuerier(ctx, r.db)

	var args queryArgs
	var where conditions
	where.and("%s", scopeCondition(scope, "u", &args))
	if filter.Role != nil {
		where.and("u.role = %s", args.add(string(*filter.Role)))
	}
	if filter.IsActive != nil {
		where.and("u.is_active = %s", args.add(*filter.IsActive))
	}
	if filter.Search != "" {
		pattern := args.add("%" + filter.Search + "%")
		where.and("(u.full_name ILIKE %[1]s OR u.employee_id ILIKE %[1]s OR u.email ILIKE %[1]s)", pattern)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM users u ` + where.where()
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM users u %s ORDER BY u.created_at DESC, u.id DESC %s`,
		userColumns, where.where(), limitOffset(filter.Params, &args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, total, nil
}

// Update implements user.UserRepository. Role, employee id and password are
// not written here.
func (r *userRepositoryImpl) Update(ctx context.Context, u user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users AS u
		SET email = $2, full_name = $3, phone = $4, department = $5,
			manager_id = $6, team_lead_id = $7, is_active = $8, password_hash = $9, updated_at = $10
		WHERE u.id = $1
		RETURNING` + userColumns

	updated, err := scanUser(q.QueryRow(ctx, query,
		u.ID,
		u.Email,
		u.FullName,
		u.Phone,
		u.Department,
		u.ManagerID,
		u.TeamLeadID,
		u.IsActive,
		u.PasswordHash,
		u.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	return updated, nil
}

// SetActive implements user.UserRepository.
func (r *userRepositoryImpl) SetActive(ctx context.Context, id string, active bool) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to set user active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// SetHierarchy implements user.UserRepository.
func (r *userRepositoryImpl) SetHierarchy(ctx context.Context, ids []string, teamLeadID, managerID *string) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET team_lead_id = $2, manager_id = $3, updated_at = NOW()
		WHERE id = ANY($1::text[]::uuid[])
	`
	if _, err := q.Exec(ctx, query, ids, teamLeadID, managerID); err != nil {
		return fmt.Errorf("failed to set user hierarchy: %w", err)
	}
	return nil
}

// CountByRole implements user.UserRepository.
func (r *userRepositoryImpl) CountByRole(ctx context.Context, role user.Role) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var n int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, string(role)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users by role: %w", err)
	}
	return n, nil
}
