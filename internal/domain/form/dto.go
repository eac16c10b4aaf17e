package form

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/validator"
)

type FieldRequest struct {
	FieldID      string           `json:"field_id" validate:"omitempty,max=64"`
	FieldType    FieldType        `json:"field_type" validate:"required,oneof=text number textarea select checkbox multi_select date time datetime file_upload rating email phone url"`
	Label        string           `json:"label" validate:"required,min=1,max=200"`
	Placeholder  *string          `json:"placeholder" validate:"omitempty,max=200"`
	Required     bool             `json:"required"`
	Options      []string         `json:"options" validate:"omitempty,max=100,dive,min=1,max=200"`
	Validation   *FieldValidation `json:"validation"`
	DefaultValue any              `json:"default_value"`
	Order        int              `json:"order" validate:"gte=0"`
	Conditional  *Conditional     `json:"conditional"`
	HelpText     *string          `json:"help_text" validate:"omitempty,max=500"`
}

func (r FieldRequest) Field() Field {
	return Field{
		FieldID:      r.FieldID,
		FieldType:    r.FieldType,
		Label:        strings.TrimSpace(r.Label),
		Placeholder:  r.Placeholder,
		Required:     r.Required,
		Options:      r.Options,
		Validation:   r.Validation,
		DefaultValue: r.DefaultValue,
		Order:        r.Order,
		Conditional:  r.Conditional,
		HelpText:     r.HelpText,
	}
}

// validateFields checks the rules tags cannot express: option lists,
// regex patterns, and conditional references.
func validateFields(fields []FieldRequest) validator.ValidationErrors {
	var errs validator.ValidationErrors
	ids := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.FieldID != "" {
			ids[f.FieldID] = true
		}
	}

	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		key := fmt.Sprintf("fields[%d]", i)
		if f.FieldID != "" {
			if seen[f.FieldID] {
				errs = errs.Add(key+".field_id", "field_id must be unique within the form")
			}
			seen[f.FieldID] = true
		}
		if f.FieldType.HasOptions() && len(f.Options) == 0 {
			errs = errs.Add(key+".options", "options are required for select fields")
		}
		if v := f.Validation; v != nil {
			if v.Pattern != nil {
				if _, err := regexp.Compile(*v.Pattern); err != nil {
					errs = errs.Add(key+".validation.pattern", "pattern must be a valid regular expression")
				}
			}
			if v.Min != nil && v.Max != nil && *v.Min > *v.Max {
				errs = errs.Add(key+".validation.min", "min must not exceed max")
			}
			if v.MinLength != nil && v.MaxLength != nil && *v.MinLength > *v.MaxLength {
				errs = errs.Add(key+".validation.min_length", "min_length must not exceed max_length")
			}
			if v.MaxRating != nil && (*v.MaxRating < 1 || *v.MaxRating > 10) {
				errs = errs.Add(key+".validation.max_rating", "max_rating must be between 1 and 10")
			}
		}
		if c := f.Conditional; c != nil {
			if !c.Operator.IsValid() {
				errs = errs.Add(key+".conditional.operator", "operator is not supported")
			}
			if c.FieldID == "" || !ids[c.FieldID] || c.FieldID == f.FieldID {
				errs = errs.Add(key+".conditional.field_id", "conditional must reference another field of this form")
			}
		}
	}
	return errs
}

type CreateFormRequest struct {
	Name          string         `json:"name" validate:"required,min=2,max=200"`
	Description   *string        `json:"description" validate:"omitempty,max=1000"`
	Fields        []FieldRequest `json:"fields" validate:"omitempty,max=100,dive"`
	AssignedTeams []string       `json:"assigned_teams" validate:"omitempty,dive,uuid"`
}

func (r *CreateFormRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if err := validator.Struct(r); err != nil {
		return err
	}
	return validateFields(r.Fields).OrNil()
}

type UpdateFormRequest struct {
	Name        *string        `json:"name" validate:"omitempty,min=2,max=200"`
	Description *string        `json:"description" validate:"omitempty,max=1000"`
	Fields      []FieldRequest `json:"fields" validate:"omitempty,max=100,dive"`
	IsActive    *bool          `json:"is_active"`
}

func (r *UpdateFormRequest) Validate() error {
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		r.Name = &trimmed
	}
	if err := validator.Struct(r); err != nil {
		return err
	}
	return validateFields(r.Fields).OrNil()
}

type AssignTeamsRequest struct {
	TeamIDs []string `json:"team_ids" validate:"required,min=1,max=50,dive,uuid"`
}

func (r *AssignTeamsRequest) Validate() error {
	return validator.Struct(r)
}

type FormFilter struct {
	IsActive *bool
	pagination.Params
}

func (f *FormFilter) Validate() error {
	return f.Params.Validate().OrNil()
}

// FormVisibility selects the forms an actor may list: those created by
// CreatedBy or assigned to any of TeamIDs.
type FormVisibility struct {
	All       bool
	CreatedBy string
	TeamIDs   []string
}

type FormResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	Fields        []Field   `json:"fields"`
	CreatedBy     string    `json:"created_by"`
	AssignedTeams []string  `json:"assigned_teams"`
	IsActive      bool      `json:"is_active"`
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewFormResponse(f Form) FormResponse {
	teams := f.AssignedTeams
	if teams == nil {
		teams = []string{}
	}
	return FormResponse{
		ID:            f.ID,
		Name:          f.Name,
		Description:   f.Description,
		Fields:        f.OrderedFields(),
		CreatedBy:     f.CreatedBy,
		AssignedTeams: teams,
		IsActive:      f.IsActive,
		Version:       f.Version,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}
