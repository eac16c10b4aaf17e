package attendance

import (
	"errors"
	"strconv"
)

var (
	ErrAlreadyClockedIn     = errors.New("you are already clocked in today")
	ErrNoActiveSession      = errors.New("no active session found, please clock in first")
	ErrNoActiveBreak        = errors.New("you are not on a break")
	ErrWorksheetRequired    = errors.New("please submit your worksheet before clocking out")
	ErrForceNotAllowed      = errors.New("only admins can force clock out")
	ErrSessionNotFound      = errors.New("attendance session not found")
	ErrConcurrentUpdate     = errors.New("attendance session changed concurrently")
	ErrBreakSettingsExist   = errors.New("break settings already exist for this team")
	ErrBreakSettingsMissing = errors.New("break settings not found for this team")
	ErrInvalidDateRange     = errors.New("start_date must not be after end_date")
)

func itoa(i int) string { return strconv.Itoa(i) }
