package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/worksheet"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/database"
)

type worksheetRepositoryImpl struct {
	db *database.DB
}

func NewWorksheetRepository(db *database.DB) worksheet.WorksheetRepository {
	return &worksheetRepositoryImpl{db: db}
}

const worksheetColumns = `
	w.id, w.employee_id, w.date::text, w.form_id, w.form_responses, w.tasks_completed, w.total_hours,
	w.notes, w.status, w.submitted_at, w.tl_verified_by, w.tl_verified_at, w.manager_approved_by,
	w.manager_approved_at, w.rejection_reason, w.rejected_by, w.rejected_at, w.created_at,
	w.updated_at, u.full_name`

func scanWorksheet(row pgx.Row) (worksheet.Worksheet, error) {
	var w worksheet.Worksheet
	var responsesJSON []byte
	var status string
	err := row.Scan(
		&w.ID,
		&w.EmployeeID,
		&w.Date,
		&w.FormID,
		&responsesJSON,
		&w.TasksCompleted,
		&w.TotalHours,
		&w.Notes,
		&status,
		&w.SubmittedAt,
		&w.TLVerifiedBy,
		&w.TLVerifiedAt,
		&w.ManagerApprovedBy,
		&w.ManagerApprovedAt,
		&w.RejectionReason,
		&w.RejectedBy,
		&w.RejectedAt,
		&w.CreatedAt,
		&w.UpdatedAt,
		&w.EmployeeName,
	)
	if err != nil {
		return worksheet.Worksheet{}, err
	}
	w.Status = worksheet.Status(status)
	if len(responsesJSON) > 0 {
		if err := json.Unmarshal(responsesJSON, &w.FormResponses); err != nil {
			return worksheet.Worksheet{}, fmt.Errorf("failed to unmarshal form responses: %w", err)
		}
	}
	return w, nil
}

func marshalResponses(responses []worksheet.FieldResponse) ([]byte, error) {
	if responses == nil {
		responses = []worksheet.FieldResponse{}
	}
	b, err := json.Marshal(responses)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal form responses: %w", err)
	}
	return b, nil
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

// Create implements worksheet.WorksheetRepository.
func (r *worksheetRepositoryImpl) Create(ctx context.Context, w worksheet.Worksheet) (worksheet.Worksheet, error) {
	q := GetQuerier(ctx, r.db)

	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	responsesJSON, err := marshalResponses(w.FormResponses)
	if err != nil {
		return worksheet.Worksheet{}, err
	}

	query := `
		INSERT INTO worksheets (
			id, employee_id, date, form_id, form_responses, tasks_completed, total_hours, notes,
			status, submitted_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = q.Exec(ctx, query,
		w.ID,
		w.EmployeeID,
		w.Date,
		w.FormID,
		responsesJSON,
		nonNil(w.TasksCompleted),
		w.TotalHours,
		w.Notes,
		string(w.Status),
		w.SubmittedAt,
		w.CreatedAt,
		w.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return worksheet.Worksheet{}, worksheet.ErrAlreadyExists
		}
		return worksheet.Worksheet{}, fmt.Errorf("failed to create worksheet: %w", err)
	}
	return r.GetByID(ctx, w.ID)
}

func (r *worksheetRepositoryImpl) getOne(ctx context.Context, condition string, args ...any) (worksheet.Worksheet, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM worksheets w JOIN users u ON u.id = w.employee_id WHERE %s`,
		worksheetColumns, condition)

	w, err := scanWorksheet(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return worksheet.Worksheet{}, worksheet.ErrWorksheetNotFound
		}
		return worksheet.Worksheet{}, fmt.Errorf("failed to get worksheet: %w", err)
	}
	return w, nil
}

// GetByID implements worksheet.WorksheetRepository.
func (r *worksheetRepositoryImpl) GetByID(ctx context.Context, id string) (worksheet.Worksheet, error) {
	return r.getOne(ctx, "w.id = $1", id)
}

// GetByEmployeeAndDate implements worksheet.WorksheetRepository.
func (r *worksheetRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID, date string) (worksheet.Worksheet, error) {
	return r.getOne(ctx, "w.employee_id = $1 AND w.date = $2", employeeID, date)
}

// Transition implements worksheet.WorksheetRepository. Employee and date are
// never rewritten.
func (r *worksheetRepositoryImpl) Transition(ctx context.Context, w worksheet.Worksheet, from []worksheet.Status) (worksheet.Worksheet, error) {
	q := GetQuerier(ctx, r.db)

	responsesJSON, err := marshalResponses(w.FormResponses)
	if err != nil {
		return worksheet.Worksheet{}, err
	}
	fromStatuses := make([]string, len(from))
	for i, s := range from {
		fromStatuses[i] = string(s)
	}

	query := `
		UPDATE worksheets AS w
		SET form_responses = $2, tasks_completed = $3, total_hours = $4, notes = $5, status = $6,
			submitted_at = $7, tl_verified_by = $8, tl_verified_at = $9, manager_approved_by = $10,
			manager_approved_at = $11, rejection_reason = $12, rejected_by = $13, rejected_at = $14,
			updated_at = $15
		FROM users u
		WHERE w.id = $1 AND u.id = w.employee_id AND w.status = ANY($16::text[])
		RETURNING` + worksheetColumns

	updated, err := scanWorksheet(q.QueryRow(ctx, query,
		w.ID,
		responsesJSON,
		nonNil(w.TasksCompleted),
		w.TotalHours,
		w.Notes,
		string(w.Status),
		w.SubmittedAt,
		w.TLVerifiedBy,
		w.TLVerifiedAt,
		w.ManagerApprovedBy,
		w.ManagerApprovedAt,
		w.RejectionReason,
		w.RejectedBy,
		w.RejectedAt,
		w.UpdatedAt,
		fromStatuses,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, w.ID); getErr != nil {
				return worksheet.Worksheet{}, getErr
			}
			return worksheet.Worksheet{}, worksheet.ErrConcurrentUpdate
		}
		return worksheet.Worksheet{}, fmt.Errorf("failed to update worksheet: %w", err)
	}
	return updated, nil
}

func worksheetConditions(scope user.Scope, employeeID *string, status *worksheet.Status, start, end *string, args *queryArgs) conditions {
	var where conditions
	where.and("%s", scopeCondition(scope, "u", args))
	if employeeID != nil {
		where.and("w.employee_id = %s", args.add(*employeeID))
	}
	if status != nil {
		where.and("w.status = %s", args.add(string(*status)))
	}
	if start != nil {
		where.and("w.date >= %s", args.add(*start))
	}
	if end != nil {
		where.and("w.date <= %s", args.add(*end))
	}
	return where
}

// List implements worksheet.WorksheetRepository.
func (r *worksheetRepositoryImpl) List(ctx context.Context, filter worksheet.WorksheetFilter, scope user.Scope) ([]worksheet.Worksheet, int64, error) {
	q := GetQuerier(ctx, r.db)

	var args queryArgs
	where := worksheetConditions(scope, filter.EmployeeID, filter.Status, filter.StartDate, filter.EndDate, &args)
	from := `FROM worksheets w JOIN users u ON u.id = w.employee_id ` + where.where()

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) `+from, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count worksheets: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s %s ORDER BY w.date DESC, w.id DESC %s`,
		worksheetColumns, from, limitOffset(filter.Params, &args))
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list worksheets: %w", err)
	}
	defer rows.Close()

	var worksheets []worksheet.Worksheet
	for rows.Next() {
		w, err := scanWorksheet(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan worksheet: %w", err)
		}
		worksheets = append(worksheets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate worksheets: %w", err)
	}
	return worksheets, total, nil
}

// CountByStatus implements worksheet.WorksheetRepository.
func (r *worksheetRepositoryImpl) CountByStatus(ctx context.Context, filter worksheet.SummaryFilter, scope user.Scope) (map[worksheet.Status]int64, error) {
	q := GetQuerier(ctx, r.db)

	var args queryArgs
	where := worksheetConditions(scope, nil, nil, filter.StartDate, filter.EndDate, &args)
	query := `
		SELECT w.status, COUNT(*)
		FROM worksheets w
		JOIN users u ON u.id = w.employee_id
		` + where.where() + `
		GROUP BY w.status`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count worksheets by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[worksheet.Status]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan worksheet count: %w", err)
		}
		counts[worksheet.Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate worksheet counts: %w", err)
	}
	return counts, nil
}
