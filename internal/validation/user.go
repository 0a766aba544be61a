// Package validation provides the field rules enforced before any account,
// library or ban write.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"patisson-users/internal/models"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z]{3}[A-Za-z0-9]{1,21}$`)
	namePattern     = regexp.MustCompile(`^[A-Za-z]{2,18}$`)
)

const (
	minPasswordLen = 6
	maxPasswordLen = 24
	// maxRepeatRun is the longest allowed run of one character.
	maxRepeatRun = 3
)

// Username checks the username format. The value is returned unchanged.
func Username(raw string) (string, error) {
	if !usernamePattern.MatchString(raw) {
		return "", models.NewValidationError("username", raw,
			"username must start with 3 latin letters followed by 1-21 latin letters or digits")
	}
	return raw, nil
}

// FirstName checks a first name and returns it capitalized.
func FirstName(raw string) (string, error) {
	return personName("first_name", raw)
}

// LastName checks a last name and returns it capitalized.
func LastName(raw string) (string, error) {
	return personName("last_name", raw)
}

func personName(field, raw string) (string, error) {
	if !namePattern.MatchString(raw) {
		return "", models.NewValidationError(field, raw,
			fmt.Sprintf("%s must consist of 2-18 latin letters", field))
	}
	return capitalize(raw), nil
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// Password checks the password policy. The plaintext is returned unchanged;
// hashing is the caller's job.
func Password(raw string) (string, error) {
	fail := func(msg string) (string, error) {
		return "", models.NewValidationError("password", raw, msg)
	}

	if n := utf8.RuneCountInString(raw); n < minPasswordLen || n > maxPasswordLen {
		return fail(fmt.Sprintf("password must be %d-%d characters long", minPasswordLen, maxPasswordLen))
	}

	var lower, upper, digits, special, letters int
	for _, r := range raw {
		switch {
		case unicode.IsLower(r):
			lower++
			letters++
		case unicode.IsUpper(r):
			upper++
			letters++
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		default:
			special++
		}
	}

	switch {
	case lower == 0:
		return fail("password must contain at least one lowercase letter")
	case upper == 0:
		return fail("password must contain at least one uppercase letter")
	case digits == 0:
		return fail("password must contain at least one digit")
	case special == 0:
		return fail("password must contain at least one special character")
	case letters <= digits:
		return fail("password must contain more letters than digits")
	case longestRun(raw) > maxRepeatRun:
		return fail(fmt.Sprintf("password must not repeat a character more than %d times in a row", maxRepeatRun))
	}
	return raw, nil
}

// longestRun returns the length of the longest run of the same character,
// ignoring letter case.
func longestRun(s string) int {
	runes := []rune(strings.ToLower(s))
	longest, run := 0, 0
	for i := range runes {
		if i > 0 && runes[i] == runes[i-1] {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
