package form

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pagemantra/worktrack-backend-go/internal/pkg/validator"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{5,19}$`)

// ValidateAnswers checks answers, keyed by field id, against the form. Fields
// hidden by their conditional rule are skipped. When requireAll is false only
// supplied values are checked, which suits drafts.
func (f Form) ValidateAnswers(answers map[string]any, requireAll bool) validator.ValidationErrors {
	var errs validator.ValidationErrors
	for _, field := range f.OrderedFields() {
		if !field.Visible(answers) {
			continue
		}
		value, ok := answers[field.FieldID]
		if !ok || isEmpty(value) {
			if requireAll && field.Required {
				errs = errs.Add(field.FieldID, field.Label+" is required")
			}
			continue
		}
		if msg := field.check(value); msg != "" {
			errs = errs.Add(field.FieldID, field.Label+" "+msg)
		}
	}
	return errs
}

// Visible evaluates the conditional rule against the other answers.
func (fd Field) Visible(answers map[string]any) bool {
	c := fd.Conditional
	if c == nil {
		return true
	}
	actual := answers[c.FieldID]
	switch c.Operator {
	case OpEquals:
		return equal(actual, c.Value)
	case OpNotEquals:
		return !equal(actual, c.Value)
	case OpContains:
		if items, ok := actual.([]any); ok {
			for _, item := range items {
				if equal(item, c.Value) {
					return true
				}
			}
			return false
		}
		s, ok := actual.(string)
		return ok && strings.Contains(s, fmt.Sprint(c.Value))
	case OpGreaterThan, OpLessThan:
		a, okA := toFloat(actual)
		b, okB := toFloat(c.Value)
		if !okA || !okB {
			return false
		}
		if c.Operator == OpGreaterThan {
			return a > b
		}
		return a < b
	case OpIsEmpty:
		return isEmpty(actual)
	case OpIsNotEmpty:
		return !isEmpty(actual)
	}
	return true
}

func (fd Field) check(value any) string {
	rules := fd.Validation
	if rules == nil {
		rules = &FieldValidation{}
	}

	switch fd.FieldType {
	case FieldNumber:
		n, ok := toFloat(value)
		if !ok {
			return "must be a number"
		}
		if rules.Min != nil && n < *rules.Min {
			return "must be at least " + formatFloat(*rules.Min)
		}
		if rules.Max != nil && n > *rules.Max {
			return "must be at most " + formatFloat(*rules.Max)
		}
	case FieldRating:
		n, ok := toFloat(value)
		if !ok || n != float64(int(n)) {
			return "must be a whole number"
		}
		limit := DefaultMaxRating
		if rules.MaxRating != nil {
			limit = *rules.MaxRating
		}
		if n < 1 || int(n) > limit {
			return fmt.Sprintf("must be between 1 and %d", limit)
		}
	case FieldCheckbox:
		if _, ok := value.(bool); !ok {
			return "must be true or false"
		}
	case FieldSelect:
		s, ok := value.(string)
		if !ok || !validator.IsInSlice(s, fd.Options) {
			return "must be one of the listed options"
		}
	case FieldMultiSelect:
		items, ok := value.([]any)
		if !ok {
			return "must be a list of options"
		}
		for _, item := range items {
			s, ok := item.(string)
			if !ok || !validator.IsInSlice(s, fd.Options) {
				return "must only contain listed options"
			}
		}
	case FieldDate:
		if s, ok := value.(string); !ok || !parses(time.DateOnly, s) {
			return "must be a date in YYYY-MM-DD format"
		}
	case FieldTime:
		s, ok := value.(string)
		if !ok || (!parses("15:04", s) && !parses(time.TimeOnly, s)) {
			return "must be a time in HH:MM format"
		}
	case FieldDateTime:
		s, ok := value.(string)
		if !ok {
			return "must be an ISO 8601 timestamp"
		}
		if _, ok := validator.IsValidDateTime(s); !ok {
			return "must be an ISO 8601 timestamp"
		}
	case FieldEmail:
		if s, ok := value.(string); !ok || !validator.Var(s, "email") {
			return "must be a valid email address"
		}
	case FieldURL:
		if s, ok := value.(string); !ok || !validator.Var(s, "url") {
			return "must be a valid URL"
		}
	case FieldPhone:
		if s, ok := value.(string); !ok || !phonePattern.MatchString(s) {
			return "must be a valid phone number"
		}
	case FieldFileUpload:
		s, ok := value.(string)
		if !ok {
			return "must be a file reference"
		}
		if len(rules.FileTypes) > 0 {
			ext := strings.TrimPrefix(strings.ToLower(path.Ext(s)), ".")
			allowed := false
			for _, ft := range rules.FileTypes {
				if strings.TrimPrefix(strings.ToLower(ft), ".") == ext {
					allowed = true
					break
				}
			}
			if !allowed {
				return "must be one of: " + strings.Join(rules.FileTypes, ", ")
			}
		}
	default:
		s, ok := value.(string)
		if !ok {
			return "must be text"
		}
		n := len([]rune(s))
		if rules.MinLength != nil && n < *rules.MinLength {
			return fmt.Sprintf("must have at least %d characters", *rules.MinLength)
		}
		if rules.MaxLength != nil && n > *rules.MaxLength {
			return fmt.Sprintf("must have at most %d characters", *rules.MaxLength)
		}
		if rules.Pattern != nil {
			re, err := regexp.Compile(*rules.Pattern)
			if err == nil && !re.MatchString(s) {
				return "has an invalid format"
			}
		}
	}
	return ""
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	}
	return false
}

func equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parses(layout, s string) bool {
	_, err := time.Parse(layout, s)
	return err == nil
}
