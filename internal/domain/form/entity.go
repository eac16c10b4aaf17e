package form

import (
	"slices"
	"time"
)

type FieldType string

const (
	FieldText        FieldType = "text"
	FieldNumber      FieldType = "number"
	FieldTextarea    FieldType = "textarea"
	FieldSelect      FieldType = "select"
	FieldCheckbox    FieldType = "checkbox"
	FieldMultiSelect FieldType = "multi_select"
	FieldDate        FieldType = "date"
	FieldTime        FieldType = "time"
	FieldDateTime    FieldType = "datetime"
	FieldFileUpload  FieldType = "file_upload"
	FieldRating      FieldType = "rating"
	FieldEmail       FieldType = "email"
	FieldPhone       FieldType = "phone"
	FieldURL         FieldType = "url"
)

func (t FieldType) IsValid() bool {
	switch t {
	case FieldText, FieldNumber, FieldTextarea, FieldSelect, FieldCheckbox, FieldMultiSelect,
		FieldDate, FieldTime, FieldDateTime, FieldFileUpload, FieldRating, FieldEmail, FieldPhone, FieldURL:
		return true
	}
	return false
}

// HasOptions reports whether the field type picks from a fixed option list.
func (t FieldType) HasOptions() bool {
	return t == FieldSelect || t == FieldMultiSelect
}

type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpIsEmpty     Operator = "is_empty"
	OpIsNotEmpty  Operator = "is_not_empty"
)

func (o Operator) IsValid() bool {
	switch o {
	case OpEquals, OpNotEquals, OpContains, OpGreaterThan, OpLessThan, OpIsEmpty, OpIsNotEmpty:
		return true
	}
	return false
}

const DefaultMaxRating = 5

type FieldValidation struct {
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	MinLength   *int     `json:"min_length,omitempty"`
	MaxLength   *int     `json:"max_length,omitempty"`
	Pattern     *string  `json:"pattern,omitempty"`
	FileTypes   []string `json:"file_types,omitempty"`
	MaxFileSize *int64   `json:"max_file_size,omitempty"`
	MaxRating   *int     `json:"max_rating,omitempty"`
}

// Conditional shows a field only when another field's answer matches.
type Conditional struct {
	FieldID  string   `json:"field_id"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

type Field struct {
	FieldID      string           `json:"field_id"`
	FieldType    FieldType        `json:"field_type"`
	Label        string           `json:"label"`
	Placeholder  *string          `json:"placeholder"`
	Required     bool             `json:"required"`
	Options      []string         `json:"options"`
	Validation   *FieldValidation `json:"validation"`
	DefaultValue any              `json:"default_value"`
	Order        int              `json:"order"`
	Conditional  *Conditional     `json:"conditional"`
	HelpText     *string          `json:"help_text"`
}

// Form is a versioned worksheet template assigned to teams.
type Form struct {
	ID            string
	Name          string
	Description   *string
	Fields        []Field
	CreatedBy     string
	AssignedTeams []string
	IsActive      bool
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (f Form) IsAssignedTo(teamID string) bool {
	return slices.Contains(f.AssignedTeams, teamID)
}

// AssignedToAny reports whether f is assigned to at least one of teamIDs.
func (f Form) AssignedToAny(teamIDs []string) bool {
	for _, id := range teamIDs {
		if f.IsAssignedTo(id) {
			return true
		}
	}
	return false
}

// OrderedFields returns the fields sorted by their display order.
func (f Form) OrderedFields() []Field {
	fields := slices.Clone(f.Fields)
	slices.SortStableFunc(fields, func(a, b Field) int { return a.Order - b.Order })
	return fields
}

// MergeTeams adds ids not yet assigned, keeping the existing order.
func MergeTeams(current, add []string) []string {
	out := slices.Clone(current)
	for _, id := range add {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
