package form

import "errors"

var (
	ErrFormNotFound        = errors.New("form not found")
	ErrFormAccessDenied    = errors.New("you do not have access to this form")
	ErrFormModifyForbidden = errors.New("you can only modify forms you created")
	ErrTeamNotManaged      = errors.New("team is not under your management")
	ErrInactiveForm        = errors.New("form is not active")
)
