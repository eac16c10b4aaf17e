package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

func sampleForm() Form {
	return Form{
		Fields: []Field{
			{FieldID: "hours", FieldType: FieldNumber, Label: "Hours", Required: true, Order: 1,
				Validation: &FieldValidation{Min: floatPtr(0), Max: floatPtr(24)}},
			{FieldID: "blocked", FieldType: FieldSelect, Label: "Blocked", Required: true, Order: 2,
				Options: []string{"yes", "no"}},
			{FieldID: "blocker", FieldType: FieldTextarea, Label: "Blocker", Required: true, Order: 3,
				Conditional: &Conditional{FieldID: "blocked", Operator: OpEquals, Value: "yes"}},
			{FieldID: "contact", FieldType: FieldEmail, Label: "Contact", Order: 4},
			{FieldID: "mood", FieldType: FieldRating, Label: "Mood", Order: 5},
			{FieldID: "code", FieldType: FieldText, Label: "Code", Order: 6,
				Validation: &FieldValidation{Pattern: strPtr(`^[A-Z]{3}-\d+$`)}},
		},
	}
}

func TestValidateAnswers(t *testing.T) {
	tests := []struct {
		name       string
		answers    map[string]any
		requireAll bool
		wantFields []string
	}{
		{
			name:       "complete and valid",
			answers:    map[string]any{"hours": 7.5, "blocked": "no", "contact": "a@b.io", "mood": float64(4), "code": "ABC-12"},
			requireAll: true,
		},
		{
			name:       "hidden required field is skipped",
			answers:    map[string]any{"hours": 8.0, "blocked": "no"},
			requireAll: true,
		},
		{
			name:       "visible required field missing",
			answers:    map[string]any{"hours": 8.0, "blocked": "yes"},
			requireAll: true,
			wantFields: []string{"blocker"},
		},
		{
			name:       "drafts skip required checks",
			answers:    map[string]any{"blocked": "yes"},
			requireAll: false,
		},
		{
			name:       "typed checks",
			answers:    map[string]any{"hours": 30.0, "blocked": "maybe", "contact": "nope", "mood": float64(9), "code": "abc"},
			requireAll: false,
			wantFields: []string{"hours", "blocked", "contact", "mood", "code"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := sampleForm().ValidateAnswers(tt.answers, tt.requireAll)
			var got []string
			for _, e := range errs {
				got = append(got, e.Field)
			}
			assert.Equal(t, tt.wantFields, got)
		})
	}
}

func TestConditionalOperators(t *testing.T) {
	field := func(op Operator, v any) Field {
		return Field{Conditional: &Conditional{FieldID: "x", Operator: op, Value: v}}
	}

	assert.True(t, field(OpEquals, 3).Visible(map[string]any{"x": 3.0}))
	assert.True(t, field(OpNotEquals, "a").Visible(map[string]any{"x": "b"}))
	assert.True(t, field(OpContains, "go").Visible(map[string]any{"x": []any{"rust", "go"}}))
	assert.True(t, field(OpContains, "late").Visible(map[string]any{"x": "running late"}))
	assert.False(t, field(OpGreaterThan, 5).Visible(map[string]any{"x": 2.0}))
	assert.True(t, field(OpLessThan, 5).Visible(map[string]any{"x": "2"}))
	assert.True(t, field(OpIsEmpty, nil).Visible(map[string]any{}))
	assert.False(t, field(OpIsNotEmpty, nil).Visible(map[string]any{"x": " "}))
}

func TestCreateFormRequestValidate(t *testing.T) {
	req := CreateFormRequest{
		Name: "Daily log",
		Fields: []FieldRequest{
			{FieldID: "a", FieldType: FieldSelect, Label: "Pick"},
			{FieldID: "b", FieldType: FieldText, Label: "Why",
				Conditional: &Conditional{FieldID: "missing", Operator: OpEquals, Value: "x"}},
		},
	}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fields[0].options")
	assert.Contains(t, err.Error(), "fields[1].conditional.field_id")
}

func TestMergeTeams(t *testing.T) {
	assert.Equal(t, []string{"t1", "t2", "t3"}, MergeTeams([]string{"t1", "t2"}, []string{"t2", "t3"}))
}
