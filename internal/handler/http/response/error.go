package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/attendance"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/auth"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/authz"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/form"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/notification"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/report"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/task"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/team"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/worksheet"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/validator"
)

var notFoundErrors = []error{
	user.ErrUserNotFound,
	team.ErrTeamNotFound,
	task.ErrTaskNotFound,
	task.ErrAssigneeNotFound,
	form.ErrFormNotFound,
	worksheet.ErrWorksheetNotFound,
	attendance.ErrSessionNotFound,
	attendance.ErrBreakSettingsMissing,
	notification.ErrNotificationNotFound,
}

var forbiddenErrors = []error{
	authz.ErrForbidden,
	user.ErrAccessDenied,
	user.ErrCannotCreateRole,
	user.ErrCannotDeleteSelf,
	user.ErrInactiveUser,
	team.ErrTeamAccessDenied,
	team.ErrTeamModifyForbidden,
	team.ErrTeamLeadNotReport,
	task.ErrAccessDenied,
	task.ErrAssigneeNotReport,
	task.ErrStatusOnly,
	task.ErrWorkLogForbidden,
	task.ErrDeleteForbidden,
	form.ErrFormAccessDenied,
	form.ErrFormModifyForbidden,
	form.ErrTeamNotManaged,
	worksheet.ErrNotOwner,
	worksheet.ErrNotYourReport,
	attendance.ErrForceNotAllowed,
	report.ErrTeamNotVisible,
}

var conflictErrors = []error{
	auth.ErrAdminExists,
	user.ErrEmailExists,
	user.ErrEmployeeIDExists,
	team.ErrAlreadyMember,
	team.ErrNotMember,
	team.ErrMemberOfOtherTeam,
	worksheet.ErrAlreadyExists,
	worksheet.ErrNotEditable,
	worksheet.ErrCannotSubmit,
	worksheet.ErrCannotVerify,
	worksheet.ErrCannotApprove,
	worksheet.ErrCannotReject,
	worksheet.ErrConcurrentUpdate,
	attendance.ErrAlreadyClockedIn,
	attendance.ErrNoActiveSession,
	attendance.ErrNoActiveBreak,
	attendance.ErrWorksheetRequired,
	attendance.ErrConcurrentUpdate,
	attendance.ErrBreakSettingsExist,
}

var unauthorizedErrors = []error{
	user.ErrInvalidCredentials,
	user.ErrUnauthenticated,
}

var badRequestErrors = []error{
	auth.ErrMissingIdentifier,
	user.ErrInvalidManager,
	user.ErrInvalidTeamLead,
	team.ErrInvalidTeamLead,
	team.ErrInvalidManager,
	team.ErrNotAssociate,
	task.ErrAssigneeNotStaff,
	task.ErrInvalidSummaryDate,
	form.ErrInactiveForm,
	attendance.ErrInvalidDateRange,
	report.ErrInvalidDateRange,
	notification.ErrInvalidNotificationType,
}

func matches(err error, targets []error) (error, bool) {
	for _, target := range targets {
		if errors.Is(err, target) {
			return target, true
		}
	}
	return nil, false
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	if target, ok := matches(err, notFoundErrors); ok {
		NotFound(w, target.Error())
		return
	}
	if target, ok := matches(err, forbiddenErrors); ok {
		Forbidden(w, target.Error())
		return
	}
	if target, ok := matches(err, conflictErrors); ok {
		Conflict(w, target.Error())
		return
	}
	if target, ok := matches(err, unauthorizedErrors); ok {
		Unauthorized(w, target.Error())
		return
	}
	if target, ok := matches(err, badRequestErrors); ok {
		BadRequest(w, target.Error(), nil)
		return
	}

	slog.Error("unhandled error", "error", err)
	InternalServerError(w, "An unexpected error occurred")
}
