package team

import (
	"strings"
	"time"

	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/validator"
)

type CreateTeamRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	TeamLeadID  string  `json:"team_lead_id" validate:"required,uuid"`
	ManagerID   string  `json:"manager_id" validate:"omitempty,uuid"`
}

func (r *CreateTeamRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	return validator.Struct(r)
}

type UpdateTeamRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	TeamLeadID  *string `json:"team_lead_id" validate:"omitempty,uuid"`
	IsActive    *bool   `json:"is_active"`
}

func (r *UpdateTeamRequest) Validate() error {
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		r.Name = &trimmed
	}
	return validator.Struct(r)
}

type AddMemberRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
}

func (r *AddMemberRequest) Validate() error {
	return validator.Struct(r)
}

type TeamFilter struct {
	IsActive *bool
	pagination.Params
}

func (f *TeamFilter) Validate() error {
	return f.Params.Validate().OrNil()
}

// TeamVisibility selects the teams an actor may list.
type TeamVisibility struct {
	All        bool
	ManagerID  string
	TeamLeadID string
	MemberID   string
}

type TeamResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	TeamLeadID  string    `json:"team_lead_id"`
	ManagerID   string    `json:"manager_id"`
	Members     []string  `json:"members"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewTeamResponse(t Team) TeamResponse {
	members := t.Members
	if members == nil {
		members = []string{}
	}
	return TeamResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		TeamLeadID:  t.TeamLeadID,
		ManagerID:   t.ManagerID,
		Members:     members,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
