package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"Valid", "hunter22", nil},
		{"Too Short", "short", ErrPasswordTooShort},
		{"Too Long", strings.Repeat("a", 129), ErrPasswordTooLong},
		{"Unicode Counted By Rune", "ÅÅÅÅÅÅÅÅ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, ValidatePassword(tt.password))
		})
	}
}

func TestValidateNameAndUsername(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateName("Alice Doe"))
	assert.EqualError(t, ValidateName("Al"), "name must be longer")
	assert.EqualError(t, ValidateName(strings.Repeat("n", 51)), "name must be shorter")

	assert.NoError(t, ValidateUsername("al"))
	assert.EqualError(t, ValidateUsername("a"), "username must be longer")
	assert.EqualError(t, ValidateUsername(strings.Repeat("u", 16)), "username must be shorter")
	assert.Equal(t, "alicedoe", NormalizeUsername(" alice doe "))
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateEmail("a@x.com"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("user@"))
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
}

func TestValidateTweetText(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ErrTextTooShort, ValidateTweetText("hi"))
	assert.Equal(t, ErrTextTooShort, ValidateTweetText("  hi   "))
	assert.NoError(t, ValidateTweetText("hello world"))
}

func TestExtractHashtags(t *testing.T) {
	t.Parallel()
	got := ExtractHashtags("Loving #Go and #fiber, #go again #café_2 # nope")
	assert.Equal(t, []string{"go", "fiber", "café_2"}, got)
	assert.Empty(t, ExtractHashtags("no tags here"))
}
