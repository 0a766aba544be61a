package validation

import (
	"strings"
	"testing"

	"patisson-users/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertValidateError(t *testing.T, err error, field string) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidate, appErr.Code)
	assert.Equal(t, field, appErr.Field)
}

func TestUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "reader42", false},
		{"Minimum Length", "abcd", false},
		{"Maximum Length", "abc" + strings.Repeat("1", 21), false},
		{"Too Short", "abc", true},
		{"Too Long", "abc" + strings.Repeat("1", 22), true},
		{"Digit In Prefix", "ab1cdef", true},
		{"Underscore", "reader_42", true},
		{"Non Latin", "читатель", true},
		{"Empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Username(tt.username)
			if tt.wantErr {
				assertValidateError(t, err, "username")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.username, got, "username is returned unchanged")
		})
	}
}

func TestPersonNames(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"Lowercase Is Capitalized", "anna", "Anna", false},
		{"Mixed Case Is Normalized", "mcDONALD", "Mcdonald", false},
		{"Two Letters", "Li", "Li", false},
		{"Eighteen Letters", strings.Repeat("a", 18), "A" + strings.Repeat("a", 17), false},
		{"One Letter", "A", "", true},
		{"Nineteen Letters", strings.Repeat("a", 19), "", true},
		{"Hyphen", "Anna-Maria", "", true},
		{"Digit", "Anna2", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FirstName(tt.raw)
			if tt.wantErr {
				assertValidateError(t, err, "first_name")
				_, err = LastName(tt.raw)
				assertValidateError(t, err, "last_name")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			last, err := LastName(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, last)
		})
	}
}

func TestPassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "QweQwe123!", false},
		{"Valid With Symbols", "Qwer123!@", false},
		{"Exactly Min Length", "Abc1!d", false},
		{"Exactly Max Length", "Ab1!" + strings.Repeat("xy", 10), false},
		{"Too Short", "Ab1!c", true},
		{"Too Long", "Ab1!" + strings.Repeat("xy", 10) + "z", true},
		{"No Lower", "QWERTY12!", true},
		{"No Upper", "qwerty12!", true},
		{"No Digit", "Qwerty!!", true},
		{"No Special", "Qwerty123", true},
		{"Four In A Row", "Qweeee12!", true},
		{"Four In A Row Ignoring Case", "Aaaa111!", true},
		{"Three In A Row", "Qweee12!", false},
		{"Letters Equal Digits", "Qwe123!@", true},
		{"More Digits Than Letters", "Qw12345!", true},
		{"Space Counts As Special", "Abc 12!x", false},
		{"Space Is The Only Special", "Qwe rty1", false},
		{"Non ASCII Letters", "Éab12!Xy", false},
		{"Non ASCII Counted Per Character", "Éé1!" + strings.Repeat("xy", 10), false},
		{"Four Non ASCII In A Row", "Aéééé1!x", true},
		{"Caseless Letter Is Not Special", "Abアイ12c", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Password(tt.password)
			if tt.wantErr {
				assertValidateError(t, err, "password")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.password, got)
		})
	}
}

func TestLongestRun(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, longestRun(""))
	assert.Equal(t, 1, longestRun("abc"))
	assert.Equal(t, 3, longestRun("abbbc"))
	assert.Equal(t, 4, longestRun("xAaAa"))
}
