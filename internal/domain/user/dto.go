package user

import (
	"strings"
	"time"

	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/validator"
)

type CreateUserRequest struct {
	EmployeeID string  `json:"employee_id" validate:"required,min=3,max=20"`
	Email      *string `json:"email" validate:"omitempty,email"`
	FullName   string  `json:"full_name" validate:"required,min=2,max=100"`
	Password   string  `json:"password" validate:"required,min=6,max=72"`
	Role       Role    `json:"role" validate:"required,oneof=admin manager team_lead employee"`
	Phone      *string `json:"phone" validate:"omitempty,max=20"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	ManagerID  *string `json:"manager_id" validate:"omitempty,uuid"`
	TeamLeadID *string `json:"team_lead_id" validate:"omitempty,uuid"`
}

func (r *CreateUserRequest) Validate() error {
	r.EmployeeID = NormalizeEmployeeID(r.EmployeeID)
	r.Email = NormalizeEmail(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	if r.Role == "" {
		r.Role = RoleAssociate
	}
	return validator.Struct(r)
}

// UpdateUserRequest never carries role or hierarchy fields; those change only
// through team membership.
type UpdateUserRequest struct {
	FullName   *string `json:"full_name" validate:"omitempty,min=2,max=100"`
	Phone      *string `json:"phone" validate:"omitempty,max=20"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	IsActive   *bool   `json:"is_active"`
}

func (r *UpdateUserRequest) Validate() error {
	if r.FullName != nil {
		trimmed := strings.TrimSpace(*r.FullName)
		r.FullName = &trimmed
	}
	return validator.Struct(r)
}

type RegisterAdminRequest struct {
	EmployeeID string  `json:"employee_id" validate:"required,min=3,max=20"`
	Email      *string `json:"email" validate:"omitempty,email"`
	FullName   string  `json:"full_name" validate:"required,min=2,max=100"`
	Password   string  `json:"password" validate:"required,min=6,max=72"`
}

func (r *RegisterAdminRequest) Validate() error {
	r.EmployeeID = NormalizeEmployeeID(r.EmployeeID)
	r.Email = NormalizeEmail(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	return validator.Struct(r)
}

type UserFilter struct {
	Role     *Role
	IsActive *bool
	Search   string
	pagination.Params
}

func (f *UserFilter) Validate() error {
	errs := f.Params.Validate()
	if f.Role != nil && !f.Role.IsValid() {
		errs = errs.Add("role", "role must be one of admin, manager, team_lead, employee")
	}
	return errs.OrNil()
}

// UserResponse is the canonical projection of a user. It never carries the
// password hash.
type UserResponse struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Email      *string   `json:"email"`
	FullName   string    `json:"full_name"`
	Role       Role      `json:"role"`
	Phone      *string   `json:"phone"`
	Department *string   `json:"department"`
	ManagerID  *string   `json:"manager_id"`
	TeamLeadID *string   `json:"team_lead_id"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewUserResponse(u User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		EmployeeID: u.EmployeeID,
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       u.Role,
		Phone:      u.Phone,
		Department: u.Department,
		ManagerID:  u.ManagerID,
		TeamLeadID: u.TeamLeadID,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
