package memory

import (
	"context"
	"slices"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/worksheet"
)

type worksheetRepository struct {
	s *Store
}

func NewWorksheetRepository(s *Store) worksheet.WorksheetRepository {
	return &worksheetRepository{s: s}
}

func (r *worksheetRepository) view(w worksheet.Worksheet) worksheet.Worksheet {
	w.FormResponses = slices.Clone(w.FormResponses)
	w.TasksCompleted = slices.Clone(w.TasksCompleted)
	w.EmployeeName = r.s.nameOf(w.EmployeeID)
	return w
}

func (r *worksheetRepository) Create(_ context.Context, w worksheet.Worksheet) (worksheet.Worksheet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.worksheets {
		if existing.EmployeeID == w.EmployeeID && existing.Date == w.Date {
			return worksheet.Worksheet{}, worksheet.ErrAlreadyExists
		}
	}
	w.ID, _ = r.s.nextID(w.ID)
	r.s.worksheets[w.ID] = r.view(w)
	return r.view(w), nil
}

func (r *worksheetRepository) GetByID(_ context.Context, id string) (worksheet.Worksheet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.worksheets[id]
	if !ok {
		return worksheet.Worksheet{}, worksheet.ErrWorksheetNotFound
	}
	return r.view(w), nil
}

func (r *worksheetRepository) GetByEmployeeAndDate(_ context.Context, employeeID, date string) (worksheet.Worksheet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, w := range r.s.worksheets {
		if w.EmployeeID == employeeID && w.Date == date {
			return r.view(w), nil
		}
	}
	return worksheet.Worksheet{}, worksheet.ErrWorksheetNotFound
}

func (r *worksheetRepository) Transition(_ context.Context, w worksheet.Worksheet, from []worksheet.Status) (worksheet.Worksheet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.worksheets[w.ID]
	if !ok {
		return worksheet.Worksheet{}, worksheet.ErrWorksheetNotFound
	}
	if !slices.Contains(from, stored.Status) {
		return worksheet.Worksheet{}, worksheet.ErrConcurrentUpdate
	}
	w.EmployeeID = stored.EmployeeID
	w.Date = stored.Date
	w.CreatedAt = stored.CreatedAt
	r.s.worksheets[w.ID] = r.view(w)
	return r.view(w), nil
}

func (r *worksheetRepository) match(w worksheet.Worksheet, scope user.Scope, employeeID *string, status *worksheet.Status, start, end *string) bool {
	if !scope.Allows(r.s.ownerOf(w.EmployeeID)) {
		return false
	}
	if employeeID != nil && w.EmployeeID != *employeeID {
		return false
	}
	if status != nil && w.Status != *status {
		return false
	}
	if start != nil && w.Date < *start {
		return false
	}
	if end != nil && w.Date > *end {
		return false
	}
	return true
}

func (r *worksheetRepository) List(_ context.Context, filter worksheet.WorksheetFilter, scope user.Scope) ([]worksheet.Worksheet, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []worksheet.Worksheet
	for _, w := range r.s.worksheets {
		if r.match(w, scope, filter.EmployeeID, filter.Status, filter.StartDate, filter.EndDate) {
			out = append(out, r.view(w))
		}
	}
	sortDesc(out, func(w worksheet.Worksheet) string { return w.Date + w.ID })
	items, total := window(out, filter.Params)
	return items, total, nil
}

func (r *worksheetRepository) CountByStatus(_ context.Context, filter worksheet.SummaryFilter, scope user.Scope) (map[worksheet.Status]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[worksheet.Status]int64)
	for _, w := range r.s.worksheets {
		if r.match(w, scope, nil, nil, filter.StartDate, filter.EndDate) {
			counts[w.Status]++
		}
	}
	return counts, nil
}
