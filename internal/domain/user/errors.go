package user

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrEmployeeIDExists   = errors.New("employee id already exists")
	ErrInvalidManager     = errors.New("manager_id does not reference an active manager")
	ErrInvalidTeamLead    = errors.New("team_lead_id does not reference an active team lead")
	ErrCannotDeleteSelf   = errors.New("cannot delete yourself")
	ErrCannotCreateRole   = errors.New("you cannot create a user with this role")
	ErrAccessDenied       = errors.New("access denied")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInactiveUser       = errors.New("user account is inactive")
	ErrInvalidCredentials = errors.New("invalid employee id, email or password")
)
