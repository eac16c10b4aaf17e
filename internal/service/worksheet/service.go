package worksheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/attendance"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/authz"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/form"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/notification"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/worksheet"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/clock"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/database"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/events"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
)

type WorksheetServiceImpl struct {
	worksheetRepo worksheet.WorksheetRepository
	sessionRepo   attendance.SessionRepository
	formRepo      form.FormRepository
	userRepo      user.UserRepository
	tx            database.Transactor
	authz         authz.Authorizer
	notifier      notification.Notifier
	publisher     events.Publisher
	clock         clock.Clock
}

func NewWorksheetService(
	worksheetRepo worksheet.WorksheetRepository,
	sessionRepo attendance.SessionRepository,
	formRepo form.FormRepository,
	userRepo user.UserRepository,
	tx database.Transactor,
	authorizer authz.Authorizer,
	notifier notification.Notifier,
	publisher events.Publisher,
	clk clock.Clock,
) worksheet.WorksheetService {
	return &WorksheetServiceImpl{
		worksheetRepo: worksheetRepo,
		sessionRepo:   sessionRepo,
		formRepo:      formRepo,
		userRepo:      userRepo,
		tx:            tx,
		authz:         authorizer,
		notifier:      notifier,
		publisher:     publisher,
		clock:         clk,
	}
}

func answersOf(responses []worksheet.FieldResponse) map[string]any {
	answers := make(map[string]any, len(responses))
	for _, r := range responses {
		answers[r.FieldID] = r.Value
	}
	return answers
}

// checkAnswers validates responses against formID. Submission requires every
// visible required field.
func (s *WorksheetServiceImpl) checkAnswers(ctx context.Context, formID string, responses []worksheet.FieldResponse, requireAll bool) error {
	f, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return err
	}
	if !f.IsActive {
		return form.ErrInactiveForm
	}
	return f.ValidateAnswers(answersOf(responses), requireAll).OrNil()
}

// Create implements worksheet.WorksheetService.
func (s *WorksheetServiceImpl) Create(ctx context.Context, req worksheet.CreateWorksheetRequest) (worksheet.WorksheetResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return worksheet.WorksheetResponse{}, err
	}

	responses := req.Responses()
	if err := s.checkAnswers(ctx, req.FormID, responses, false); err != nil {
		return worksheet.WorksheetResponse{}, err
	}

	if _, err := s.worksheetRepo.GetByEmployeeAndDate(ctx, actor.ID, req.Date); err == nil {
		return worksheet.WorksheetResponse{}, worksheet.ErrAlreadyExists
	} else if !errors.Is(err, worksheet.ErrWorksheetNotFound) {
		return worksheet.WorksheetResponse{}, fmt.Errorf("failed to check existing worksheet: %w", err)
	}

	var totalHours float64
	if req.TotalHours != nil {
		totalHours = *req.TotalHours
	}
	if totalHours == 0 {
		ts, err := s.sessionRepo.GetLatest(ctx, actor.ID, req.Date)
		switch {
		case err == nil:
			totalHours = ts.TotalWorkHours
		case !errors.Is(err, attendance.ErrSessionNotFound):
			return worksheet.WorksheetResponse{}, fmt.Errorf("failed to load session hours: %w", err)
		}
	}

	tasks := req.TasksCompleted
	if tasks == nil {
		tasks = []string{}
	}
	now := s.clock.Now()
	created, err := s.worksheetRepo.Create(ctx, worksheet.Worksheet{
		EmployeeID:     actor.ID,
		Date:           req.Date,
		FormID:         req.FormID,
		FormResponses:  responses,
		TasksCompleted: tasks,
		TotalHours:     totalHours,
		Notes:          req.Notes,
		Status:         worksheet.StatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}

	slog.InfoContext(ctx, "worksheet created", "worksheet_id", created.ID, "employee_id", actor.ID, "date", created.Date)
	return worksheet.NewWorksheetResponse(created), nil
}

// loadOwn returns worksheet id if the actor owns it.
func (s *WorksheetServiceImpl) loadOwn(ctx context.Context, actor user.Actor, id string) (worksheet.Worksheet, error) {
	w, err := s.worksheetRepo.GetByID(ctx, id)
	if err != nil {
		return worksheet.Worksheet{}, err
	}
	if w.EmployeeID != actor.ID {
		return worksheet.Worksheet{}, worksheet.ErrNotOwner
	}
	return w, nil
}

// conflict re-reads a worksheet after a failed conditional write and reports
// illegal if action no longer applies to its status.
func (s *WorksheetServiceImpl) conflict(ctx context.Context, id string, action worksheet.Action, illegal error) error {
	current, err := s.worksheetRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if worksheet.CanApply(action, current.Status) {
		return worksheet.ErrConcurrentUpdate
	}
	return illegal
}

func (s *WorksheetServiceImpl) emit(ctx context.Context, eventType string, w worksheet.Worksheet, actorID string) {
	events.Emit(ctx, s.publisher, events.Event{
		Type:       eventType,
		Key:        w.ID,
		OccurredAt: w.UpdatedAt,
		Payload: map[string]any{
			"employee_id": w.EmployeeID,
			"date":        w.Date,
			"status":      w.Status,
			"actor_id":    actorID,
		},
	})
}

// Update implements worksheet.WorksheetService.
func (s *WorksheetServiceImpl) Update(ctx context.Context, id string, req worksheet.UpdateWorksheetRequest) (worksheet.WorksheetResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return worksheet.WorksheetResponse{}, err
	}

	w, err := s.loadOwn(ctx, actor, id)
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}
	edit := req.Edit()
	if edit.FormResponses != nil {
		if err := s.checkAnswers(ctx, w.FormID, edit.FormResponses, false); err != nil {
			return worksheet.WorksheetResponse{}, err
		}
	}

	next, err := w.Update(edit, s.clock.Now())
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}
	updated, err := s.worksheetRepo.Transition(ctx, next, worksheet.From(worksheet.ActionUpdate))
	if errors.Is(err, worksheet.ErrConcurrentUpdate) {
		return worksheet.WorksheetResponse{}, s.conflict(ctx, id, worksheet.ActionUpdate, worksheet.ErrNotEditable)
	}
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}
	return worksheet.NewWorksheetResponse(updated), nil
}

// Submit implements worksheet.WorksheetService. The status change and the
// session flag are written in one transaction.
func (s *WorksheetServiceImpl) Submit(ctx context.Context, id string) (worksheet.WorksheetResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}
	w, err := s.loadOwn(ctx, actor, id)
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}
	next, err := w.Submit(s.clock.Now())
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}
	if err := s.checkAnswers(ctx, w.FormID, w.FormResponses, true); err != nil {
		return worksheet.WorksheetResponse{}, err
	}

	var updated worksheet.Worksheet
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if updated, err = s.worksheetRepo.Transition(ctx, next, worksheet.From(worksheet.ActionSubmit)); err != nil {
			return err
		}
		if _, err := s.sessionRepo.SetWorksheetSubmitted(ctx, updated.EmployeeID, updated.Date, true); err != nil {
			return fmt.Errorf("failed to flag session: %w", err)
		}
		return nil
	})
	if errors.Is(err, worksheet.ErrConcurrentUpdate) {
		return worksheet.WorksheetResponse{}, s.conflict(ctx, id, worksheet.ActionSubmit, worksheet.ErrCannotSubmit)
	}
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}

	slog.InfoContext(ctx, "worksheet submitted", "worksheet_id", updated.ID, "employee_id", actor.ID)
	if actor.TeamLeadID != nil {
		s.notifier.Notify(ctx, notification.CreateNotificationRequest{
			RecipientID: *actor.TeamLeadID,
			Type:        notification.TypeWorksheetSubmitted,
			Title:       "New Worksheet Submitted",
			Message:     fmt.Sprintf("%s has submitted their worksheet for %s", actor.FullName, updated.Date),
			RelatedID:   &updated.ID,
		})
	}
	s.emit(ctx, events.WorksheetSubmitted, updated, actor.ID)
	return worksheet.NewWorksheetResponse(updated), nil
}

// loadReport returns worksheet id with its employee. check decides whether
// the employee reports to the actor.
func (s *WorksheetServiceImpl) loadReport(ctx context.Context, actor user.Actor, id string, check func(owner user.User) bool) (worksheet.Worksheet, user.User, error) {
	w, err := s.worksheetRepo.GetByID(ctx, id)
	if err != nil {
		return worksheet.Worksheet{}, user.User{}, err
	}
	employee, err := s.userRepo.GetByID(ctx, w.EmployeeID)
	if err != nil {
		return worksheet.Worksheet{}, user.User{}, fmt.Errorf("failed to load worksheet owner: %w", err)
	}
	if !actor.IsAdmin() && !check(employee) {
		return worksheet.Worksheet{}, user.User{}, worksheet.ErrNotYourReport
	}
	return w, employee, nil
}

// Verify implements worksheet.WorksheetService.
func (s *WorksheetServiceImpl) Verify(ctx context.Context, id string) (worksheet.WorksheetResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}
	if err := s.authz.Require(actor, user.PermissionWorksheetVerify); err != nil {
		return worksheet.WorksheetResponse{}, err
	}

	w, employee, err := s.loadReport(ctx, actor, id, func(u user.User) bool {
		return u.TeamLeadID != nil && *u.TeamLeadID == actor.ID
	})
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}
	next, err := w.Verify(actor.ID, s.clock.Now())
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}
	updated, err := s.worksheetRepo.Transition(ctx, next, worksheet.From(worksheet.ActionVerify))
	if errors.Is(err, worksheet.ErrConcurrentUpdate) {
		return worksheet.WorksheetResponse{}, s.conflict(ctx, id, worksheet.ActionVerify, worksheet.ErrCannotVerify)
	}
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}

	slog.InfoContext(ctx, "worksheet verified", "worksheet_id", updated.ID, "verified_by", actor.ID)
	s.notifier.Notify(ctx, notification.CreateNotificationRequest{
		RecipientID: updated.EmployeeID,
		Type:        notification.TypeWorksheetVerified,
		Title:       "Worksheet Verified",
		Message:     fmt.Sprintf("Your worksheet for %s has been verified by Team Lead", updated.Date),
		RelatedID:   &updated.ID,
	})
	if employee.ManagerID != nil {
		s.notifier.Notify(ctx, notification.CreateNotificationRequest{
			RecipientID: *employee.ManagerID,
			Type:        notification.TypeWorksheetVerified,
			Title:       "Worksheet Pending Approval",
			Message:     fmt.Sprintf("%s's worksheet for %s is verified and pending your approval", employee.FullName, updated.Date),
			RelatedID:   &updated.ID,
		})
	}
	s.emit(ctx, events.WorksheetVerified, updated, actor.ID)
	return worksheet.NewWorksheetResponse(updated), nil
}

// Approve implements worksheet.WorksheetService.
func (s *WorksheetServiceImpl) Approve(ctx context.Context, id string) (worksheet.WorksheetResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}
	if err := s.authz.Require(actor, user.PermissionWorksheetApprove); err != nil {
		return worksheet.WorksheetResponse{}, err
	}
	updated, err := s.approve(ctx, actor, id)
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}
	return worksheet.NewWorksheetResponse(updated), nil
}

func (s *WorksheetServiceImpl) approve(ctx context.Context, actor user.Actor, id string) (worksheet.Worksheet, error) {
	w, _, err := s.loadReport(ctx, actor, id, func(u user.User) bool {
		return u.ManagerID != nil && *u.ManagerID == actor.ID
	})
	if err != nil {
		return worksheet.Worksheet{}, err
	}
	next, err := w.Approve(actor.ID, s.clock.Now())
	if err != nil {
		return worksheet.Worksheet{}, err
	}
	updated, err := s.worksheetRepo.Transition(ctx, next, worksheet.From(worksheet.ActionApprove))
	if errors.Is(err, worksheet.ErrConcurrentUpdate) {
		return worksheet.Worksheet{}, s.conflict(ctx, id, worksheet.ActionApprove, worksheet.ErrCannotApprove)
	}
	if err != nil {
		return worksheet.Worksheet{}, err
	}

	slog.InfoContext(ctx, "worksheet approved", "worksheet_id", updated.ID, "approved_by", actor.ID)
	s.notifier.Notify(ctx, notification.CreateNotificationRequest{
		RecipientID: updated.EmployeeID,
		Type:        notification.TypeWorksheetApproved,
		Title:       "Worksheet Approved",
		Message:     fmt.Sprintf("Your worksheet for %s has been approved by Manager", updated.Date),
		RelatedID:   &updated.ID,
	})
	s.emit(ctx, events.WorksheetApproved, updated, actor.ID)
	return updated, nil
}

// BulkApprove implements worksheet.WorksheetService. Ids that cannot be
// approved are skipped.
func (s *WorksheetServiceImpl) BulkApprove(ctx context.Context, req worksheet.BulkApproveRequest) ([]worksheet.WorksheetResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Require(actor, user.PermissionWorksheetApprove); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	approved := make([]worksheet.WorksheetResponse, 0, len(req.WorksheetIDs))
	for _, id := range req.WorksheetIDs {
		w, err := s.approve(ctx, actor, id)
		if err != nil {
			slog.DebugContext(ctx, "bulk approve skipped worksheet", "worksheet_id", id, "error", err)
			continue
		}
		approved = append(approved, worksheet.NewWorksheetResponse(w))
	}
	return approved, nil
}

// Reject implements worksheet.WorksheetService. Any Admin, Manager or Team
// Lead may reject; there is no reporting-line check.
func (s *WorksheetServiceImpl) Reject(ctx context.Context, id string, req worksheet.RejectRequest) (worksheet.WorksheetResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}
	if err := s.authz.Require(actor, user.PermissionWorksheetReject); err != nil {
		return worksheet.WorksheetResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return worksheet.WorksheetResponse{}, err
	}

	w, err := s.worksheetRepo.GetByID(ctx, id)
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}
	next, err := w.Reject(actor.ID, req.Reason, s.clock.Now())
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}

	var updated worksheet.Worksheet
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if updated, err = s.worksheetRepo.Transition(ctx, next, worksheet.From(worksheet.ActionReject)); err != nil {
			return err
		}
		if _, err := s.sessionRepo.SetWorksheetSubmitted(ctx, updated.EmployeeID, updated.Date, false); err != nil {
			return fmt.Errorf("failed to clear session flag: %w", err)
		}
		return nil
	})
	if errors.Is(err, worksheet.ErrConcurrentUpdate) {
		return worksheet.WorksheetResponse{}, s.conflict(ctx, id, worksheet.ActionReject, worksheet.ErrCannotReject)
	}
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}

	slog.InfoContext(ctx, "worksheet rejected", "worksheet_id", updated.ID, "rejected_by", actor.ID)
	s.notifier.Notify(ctx, notification.CreateNotificationRequest{
		RecipientID: updated.EmployeeID,
		Type:        notification.TypeWorksheetRejected,
		Title:       "Worksheet Rejected",
		Message:     fmt.Sprintf("Your worksheet for %s was rejected by %s. Reason: %s", updated.Date, actor.FullName, req.Reason),
		RelatedID:   &updated.ID,
	})
	s.emit(ctx, events.WorksheetRejected, updated, actor.ID)
	return worksheet.NewWorksheetResponse(updated), nil
}

func (s *WorksheetServiceImpl) list(ctx context.Context, filter worksheet.WorksheetFilter, scope user.Scope) (pagination.Page[worksheet.WorksheetResponse], error) {
	if err := filter.Validate(); err != nil {
		return pagination.Page[worksheet.WorksheetResponse]{}, err
	}
	items, total, err := s.worksheetRepo.List(ctx, filter, scope)
	if err != nil {
		return pagination.Page[worksheet.WorksheetResponse]{}, fmt.Errorf("failed to list worksheets: %w", err)
	}
	return pagination.Map(pagination.NewPage(items, total, filter.Params), worksheet.NewWorksheetResponse), nil
}

func (s *WorksheetServiceImpl) List(ctx context.Context, filter worksheet.WorksheetFilter) (pagination.Page[worksheet.WorksheetResponse], error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return pagination.Page[worksheet.WorksheetResponse]{}, err
	}
	return s.list(ctx, filter, s.authz.Scope(actor))
}

func (s *WorksheetServiceImpl) My(ctx context.Context, filter worksheet.WorksheetFilter) (pagination.Page[worksheet.WorksheetResponse], error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return pagination.Page[worksheet.WorksheetResponse]{}, err
	}
	filter.EmployeeID = &actor.ID
	return s.list(ctx, filter, user.Scope{SelfID: actor.ID})
}

// PendingVerification lists submitted worksheets of the actor's direct
// reports, or of everyone for Admin.
func (s *WorksheetServiceImpl) PendingVerification(ctx context.Context, params pagination.Params) (pagination.Page[worksheet.WorksheetResponse], error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return pagination.Page[worksheet.WorksheetResponse]{}, err
	}
	if err := s.authz.Require(actor, user.PermissionWorksheetVerify); err != nil {
		return pagination.Page[worksheet.WorksheetResponse]{}, err
	}
	scope := user.Scope{All: actor.IsAdmin(), TeamLeadID: actor.ID}
	status := worksheet.StatusSubmitted
	return s.list(ctx, worksheet.WorksheetFilter{Status: &status, Params: params}, scope)
}

// PendingApproval lists verified worksheets awaiting the actor's approval.
func (s *WorksheetServiceImpl) PendingApproval(ctx context.Context, params pagination.Params) (pagination.Page[worksheet.WorksheetResponse], error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return pagination.Page[worksheet.WorksheetResponse]{}, err
	}
	if err := s.authz.Require(actor, user.PermissionWorksheetApprove); err != nil {
		return pagination.Page[worksheet.WorksheetResponse]{}, err
	}
	scope := user.Scope{All: actor.IsAdmin(), ManagerID: actor.ID}
	status := worksheet.StatusTLVerified
	return s.list(ctx, worksheet.WorksheetFilter{Status: &status, Params: params}, scope)
}

func (s *WorksheetServiceImpl) Summary(ctx context.Context, filter worksheet.SummaryFilter) (worksheet.Summary, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return worksheet.Summary{}, err
	}
	counts, err := s.worksheetRepo.CountByStatus(ctx, filter, s.authz.Scope(actor))
	if err != nil {
		return worksheet.Summary{}, fmt.Errorf("failed to count worksheets: %w", err)
	}
	return worksheet.NewSummary(counts), nil
}

func (s *WorksheetServiceImpl) GetByID(ctx context.Context, id string) (worksheet.WorksheetResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}
	w, err := s.worksheetRepo.GetByID(ctx, id)
	if err != nil {
		return worksheet.WorksheetResponse{}, err
	}
	if w.EmployeeID != actor.ID {
		employee, err := s.userRepo.GetByID(ctx, w.EmployeeID)
		if err != nil {
			return worksheet.WorksheetResponse{}, fmt.Errorf("failed to load worksheet owner: %w", err)
		}
		if err := s.authz.RequireAccess(actor, employee.Owner()); err != nil {
			return worksheet.WorksheetResponse{}, user.ErrAccessDenied
		}
	}
	return worksheet.NewWorksheetResponse(w), nil
}
