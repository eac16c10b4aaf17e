package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/form"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/database"
)

type formRepositoryImpl struct {
	db *database.DB
}

func NewFormRepository(db *database.DB) form.FormRepository {
	return &formRepositoryImpl{db: db}
}

const formColumns = `
	f.id, f.name, f.description, f.fields, f.created_by, f.assigned_teams::text[], f.is_active,
	f.version, f.created_at, f.updated_at`

func scanForm(row pgx.Row) (form.Form, error) {
	var f form.Form
	var fieldsJSON []byte
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Description,
		&fieldsJSON,
		&f.CreatedBy,
		&f.AssignedTeams,
		&f.IsActive,
		&f.Version,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return form.Form{}, err
	}
	if len(fieldsJSON) > 0 {
		if err := json.Unmarshal(fieldsJSON, &f.Fields); err != nil {
			return form.Form{}, fmt.Errorf("failed to unmarshal form fields: %w", err)
		}
	}
	return f, nil
}

func collectForms(rows pgx.Rows) ([]form.Form, error) {
	defer rows.Close()
	var forms []form.Form
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan form: %w", err)
		}
		forms = append(forms, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate forms: %w", err)
	}
	return forms, nil
}

func marshalFields(fields []form.Field) ([]byte, error) {
	if fields == nil {
		fields = []form.Field{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal form fields: %w", err)
	}
	return b, nil
}

// Create implements form.FormRepository.
func (r *formRepositoryImpl) Create(ctx context.Context, f form.Form) (form.Form, error) {
	q := GetQuerier(ctx, r.db)

	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	fieldsJSON, err := marshalFields(f.Fields)
	if err != nil {
		return form.Form{}, err
	}

	query := `
		INSERT INTO forms AS f (
			id, name, description, fields, created_by, assigned_teams, is_active, version, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6::text[]::uuid[], $7, $8, $9, $10)
		RETURNING` + formColumns

	created, err := scanForm(q.QueryRow(ctx, query,
		f.ID,
		f.Name,
		f.Description,
		fieldsJSON,
		f.CreatedBy,
		nonNil(f.AssignedTeams),
		f.IsActive,
		f.Version,
		f.CreatedAt,
		f.UpdatedAt,
	))
	if err != nil {
		return form.Form{}, fmt.Errorf("failed to create form: %w", err)
	}
	return created, nil
}

// GetByID implements form.FormRepository.
func (r *formRepositoryImpl) GetByID(ctx context.Context, id string) (form.Form, error) {
	q := GetQuerier(ctx, r.db)

	f, err := scanForm(q.QueryRow(ctx, `SELECT`+formColumns+` FROM forms f WHERE f.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return form.Form{}, form.ErrFormNotFound
		}
		return form.Form{}, fmt.Errorf("failed to get form: %w", err)
	}
	return f, nil
}

// List implements form.FormRepository.
func (r *formRepositoryImpl) List(ctx context.Context, filter form.FormFilter, vis form.FormVisibility) ([]form.Form, int64, error) {
	q := GetQuerier(ctx, r.db)

	var args queryArgs
	var where conditions
	if !vis.All {
		var clauses []string
		if vis.CreatedBy != "" {
			clauses = append(clauses, "f.created_by = "+args.add(vis.CreatedBy))
		}
		if len(vis.TeamIDs) > 0 {
			clauses = append(clauses, fmt.Sprintf("f.assigned_teams && %s::text[]::uuid[]", args.add(vis.TeamIDs)))
		}
		if len(clauses) == 0 {
			return nil, 0, nil
		}
		where.and("(%s)", strings.Join(clauses, " OR "))
	}
	if filter.IsActive != nil {
		where.and("f.is_active = %s", args.add(*filter.IsActive))
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM forms f `+where.where(), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count forms: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM forms f %s ORDER BY f.created_at DESC, f.id DESC %s`,
		formColumns, where.where(), limitOffset(filter.Params, &args))
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list forms: %w", err)
	}
	forms, err := collectForms(rows)
	if err != nil {
		return nil, 0, err
	}
	return forms, total, nil
}

// ListByTeam implements form.FormRepository.
func (r *formRepositoryImpl) ListByTeam(ctx context.Context, teamID string) ([]form.Form, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT` + formColumns + `
		FROM forms f
		WHERE f.is_active AND $1::text::uuid = ANY(f.assigned_teams)
		ORDER BY f.created_at DESC, f.id DESC`

	rows, err := q.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms by team: %w", err)
	}
	return collectForms(rows)
}

// Update implements form.FormRepository.
func (r *formRepositoryImpl) Update(ctx context.Context, f form.Form) (form.Form, error) {
	q := GetQuerier(ctx, r.db)

	fieldsJSON, err := marshalFields(f.Fields)
	if err != nil {
		return form.Form{}, err
	}

	query := `
		UPDATE forms AS f
		SET name = $2, description = $3, fields = $4, assigned_teams = $5::text[]::uuid[],
			is_active = $6, version = $7, updated_at = $8
		WHERE f.id = $1
		RETURNING` + formColumns

	updated, err := scanForm(q.QueryRow(ctx, query,
		f.ID,
		f.Name,
		f.Description,
		fieldsJSON,
		nonNil(f.AssignedTeams),
		f.IsActive,
		f.Version,
		f.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return form.Form{}, form.ErrFormNotFound
		}
		return form.Form{}, fmt.Errorf("failed to update form: %w", err)
	}
	return updated, nil
}

// SetAssignedTeams implements form.FormRepository.
func (r *formRepositoryImpl) SetAssignedTeams(ctx context.Context, id string, teamIDs []string) (form.Form, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE forms AS f
		SET assigned_teams = $2::text[]::uuid[], updated_at = NOW()
		WHERE f.id = $1
		RETURNING` + formColumns

	updated, err := scanForm(q.QueryRow(ctx, query, id, nonNil(teamIDs)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return form.Form{}, form.ErrFormNotFound
		}
		return form.Form{}, fmt.Errorf("failed to assign form teams: %w", err)
	}
	return updated, nil
}

// Deactivate implements form.FormRepository.
func (r *formRepositoryImpl) Deactivate(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE forms SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate form: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return form.ErrFormNotFound
	}
	return nil
}
