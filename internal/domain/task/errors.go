package task

import "errors"

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrAssigneeNotFound   = errors.New("assignee not found")
	ErrAssigneeNotStaff   = errors.New("tasks can only be assigned to associates")
	ErrAssigneeNotReport  = errors.New("you can only assign tasks to your own reports")
	ErrAccessDenied       = errors.New("you do not have access to this task")
	ErrStatusOnly         = errors.New("associates can only update the task status")
	ErrWorkLogForbidden   = errors.New("only the assignee can log work on this task")
	ErrDeleteForbidden    = errors.New("only the assigner or an admin can delete this task")
	ErrInvalidSummaryDate = errors.New("start_date must not be after end_date")
)
