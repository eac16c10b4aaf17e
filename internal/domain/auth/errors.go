package auth

import "errors"

var (
	ErrAdminExists       = errors.New("admin already exists, please contact the existing admin")
	ErrMissingIdentifier = errors.New("please provide email or employee id")
)
