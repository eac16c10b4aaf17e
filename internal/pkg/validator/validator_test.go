package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsEmpty(c.input), "IsEmpty(%q)", c.input)
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		assert.True(t, IsValidEmail(email), email)
	}
	for _, email := range invalid {
		assert.False(t, IsValidEmail(email), email)
	}
}

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID("123e4567-e89b-12d3-a456-426614174000"))
	assert.True(t, IsValidID("0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B"))
	assert.False(t, IsValidID("123e4567e89b12d3a456426614174000"))
	assert.False(t, IsValidID("g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b"))
	assert.False(t, IsValidID(""))
}

func TestIsValidDate(t *testing.T) {
	_, ok := IsValidDate("2024-01-31")
	assert.True(t, ok)
	_, ok = IsValidDate("2024-13-01")
	assert.False(t, ok)
	_, ok = IsValidDate("31-01-2024")
	assert.False(t, ok)
}

func TestLengthBetween(t *testing.T) {
	assert.False(t, LengthBetween("abcd", 5, 500))
	assert.True(t, LengthBetween("abcde", 5, 500))
	assert.False(t, LengthBetween("  ab  ", 5, 500))
}

func TestValidationErrorsToMapKeepsFirst(t *testing.T) {
	errs := ValidationErrors{}.Add("name", "first").Add("name", "second").Add("email", "bad")
	m := errs.ToMap()
	assert.Equal(t, "first", m["name"])
	assert.Equal(t, "bad", m["email"])
	assert.Nil(t, ValidationErrors{}.OrNil())
	assert.Error(t, errs.OrNil())
}

type sample struct {
	FullName string   `json:"full_name" validate:"required,min=2,max=100"`
	Email    string   `json:"email" validate:"omitempty,email"`
	Role     string   `json:"role" validate:"required,oneof=admin manager"`
	Tags     []string `json:"tags" validate:"max=2"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(sample{FullName: "Asha", Role: "admin"}))

	err := Struct(sample{FullName: "A", Email: "nope", Role: "guest", Tags: []string{"a", "b", "c"}})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)

	m := verrs.ToMap()
	assert.Equal(t, "Full Name must have at least 2 characters", m["full_name"])
	assert.Equal(t, "Email must be a valid email address", m["email"])
	assert.Equal(t, "Role must be one of: admin, manager", m["role"])
	assert.Contains(t, m, "tags")
}
