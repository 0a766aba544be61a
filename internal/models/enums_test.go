package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryStatus_JSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    LibraryStatus
		wantErr bool
	}{
		{"integer code", `1`, LibraryStatusReading, false},
		{"name", `"FINISHED"`, LibraryStatusFinished, false},
		{"lowercase name", `"planning"`, LibraryStatusPlanning, false},
		{"numeric string", `"2"`, LibraryStatusFinished, false},
		{"unknown code", `7`, 0, true},
		{"unknown name", `"ABANDONED"`, 0, true},
		{"wrong type", `true`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got LibraryStatus
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, HasCode(err, CodeValidate))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	b, err := json.Marshal(struct {
		Status LibraryStatus `json:"status"`
	}{LibraryStatusFinished})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":2}`, string(b))
}

func TestBanReason_Database(t *testing.T) {
	v, err := BanReasonInappropriateBehavior.Value()
	require.NoError(t, err)
	assert.Equal(t, "INAPPROPRIATE_BEHAVIOR", v)

	_, err = BanReason(5).Value()
	assert.Error(t, err)

	var r BanReason
	require.NoError(t, r.Scan([]byte("INAPPROPRIATE_BEHAVIOR")))
	assert.Equal(t, BanReasonInappropriateBehavior, r)
	require.NoError(t, r.Scan(int64(0)))
	assert.Error(t, r.Scan(int64(9)))
	assert.Error(t, r.Scan(3.5))
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "READING", LibraryStatusReading.String())
	assert.Equal(t, "LibraryStatus(9)", LibraryStatus(9).String())
	assert.False(t, LibraryStatus(-1).Valid())
	assert.True(t, BanReasonInappropriateBehavior.Valid())

	s, err := ParseLibraryStatus(" reading ")
	require.NoError(t, err)
	assert.Equal(t, LibraryStatusReading, s)

	_, err = ParseBanReason("SPAM")
	assert.True(t, HasCode(err, CodeValidate))
}

func TestAppError(t *testing.T) {
	cause := assertError("db down")
	err := NewInternalError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrorSchema{Error: CodeInternal, Extra: "Internal server error"}, err.Schema())

	v := NewValidationError("username", "x", "too short")
	assert.Equal(t, "username", v.Field)
	assert.Equal(t, "VALIDATE_ERROR: too short", v.Error())
}

type assertError string

func (e assertError) Error() string { return string(e) }
