// Package validation provides input validation for accounts and tweets.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field length bounds, in characters.
const (
	NameMin        = 5
	NameMax        = 50
	UsernameMin    = 2
	UsernameMax    = 15
	PasswordMin    = 8
	PasswordMax    = 128
	TweetTextMin   = 5
	EmailMaxLength = 254
)

var (
	ErrPasswordTooShort = errors.New("Please enter a longer password")
	ErrPasswordTooLong  = errors.New("Please enter a shorter password")
	ErrTextTooShort     = errors.New("Text must be longer")
	ErrInvalidEmail     = errors.New("Please enter a valid email")
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func checkLength(field, value string, lo, hi int) error {
	n := utf8.RuneCountInString(value)
	if n < lo {
		return fmt.Errorf("%s must be longer", field)
	}
	if n > hi {
		return fmt.Errorf("%s must be shorter", field)
	}
	return nil
}

// NormalizeUsername strips every space from a requested username.
func NormalizeUsername(username string) string {
	return strings.ReplaceAll(username, " ", "")
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateName(name string) error {
	return checkLength("name", strings.TrimSpace(name), NameMin, NameMax)
}

func ValidateUsername(username string) error {
	return checkLength("username", username, UsernameMin, UsernameMax)
}

func ValidateEmail(email string) error {
	if len(email) > EmailMaxLength || !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidatePassword(password string) error {
	switch n := utf8.RuneCountInString(password); {
	case n < PasswordMin:
		return ErrPasswordTooShort
	case n > PasswordMax:
		return ErrPasswordTooLong
	}
	return nil
}

// ValidateTweetText checks the minimum length of a tweet or reply body.
func ValidateTweetText(text string) error {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < TweetTextMin {
		return ErrTextTooShort
	}
	return nil
}

var hashtagRegex = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// ExtractHashtags returns the distinct lowercased #tags in text, in order of
// first appearance.
func ExtractHashtags(text string) []string {
	matches := hashtagRegex.FindAllStringSubmatch(text, -1)
	seen := make(map[string]struct{}, len(matches))
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
