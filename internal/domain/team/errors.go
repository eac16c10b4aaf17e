package team

import "errors"

var (
	ErrTeamNotFound        = errors.New("team not found")
	ErrInvalidTeamLead     = errors.New("team_lead_id must reference an active team lead")
	ErrInvalidManager      = errors.New("manager_id must reference an active manager")
	ErrTeamLeadNotReport   = errors.New("team lead must be under your management")
	ErrNotAssociate        = errors.New("only associates can be added as team members")
	ErrAlreadyMember       = errors.New("employee is already a team member")
	ErrNotMember           = errors.New("employee is not a team member")
	ErrMemberOfOtherTeam   = errors.New("employee already belongs to another active team")
	ErrTeamAccessDenied    = errors.New("you do not have access to this team")
	ErrTeamModifyForbidden = errors.New("you can only modify your own teams")
)
