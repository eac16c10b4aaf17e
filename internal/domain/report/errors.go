package report

import "errors"

var (
	ErrInvalidDateRange = errors.New("start_date must not be after end_date")
	ErrTeamNotVisible   = errors.New("you do not have access to this team's report")
)
