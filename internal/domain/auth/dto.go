package auth

import (
	"time"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/validator"
)

// LoginRequest identifies the account by employee id or email. The employee
// id wins when both are present.
type LoginRequest struct {
	EmployeeID string  `json:"employee_id"`
	Email      *string `json:"email"`
	Password   string  `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	r.EmployeeID = user.NormalizeEmployeeID(r.EmployeeID)
	r.Email = user.NormalizeEmail(r.Email)
	if r.EmployeeID == "" && r.Email == nil {
		errs = errs.Add("employee_id", ErrMissingIdentifier.Error())
	}
	if r.EmployeeID == "" && r.Email != nil && !validator.IsValidEmail(*r.Email) {
		errs = errs.Add("email", "email must be a valid email address")
	}
	if validator.IsEmpty(r.Password) {
		errs = errs.Add("password", "password is required")
	}
	return errs.OrNil()
}

type TokenResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	ExpiresAt   time.Time         `json:"expires_at"`
	User        user.UserResponse `json:"user"`
}
