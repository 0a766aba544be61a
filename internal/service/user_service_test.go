package service

import (
	"testing"
	"time"

	"patisson-users/internal/models"
	"patisson-users/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateUser(t *testing.T) {
	f := newFixture(t)

	user, err := f.users.CreateUser(t.Context(), CreateUserInput{
		Role:      "MEMBER",
		Username:  "bookworm7",
		Password:  "QweQwe123!",
		FirstName: ptr("aNNA"),
		LastName:  ptr("karenina"),
		About:     ptr("reads a lot"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Anna", *user.FirstName)
	assert.Equal(t, "Karenina", *user.LastName)
	assert.NotEqual(t, "QweQwe123!", user.Password)
	assert.True(t, f.hasher.Verify("QweQwe123!", user.Password))
	assert.False(t, f.hasher.Verify("QweQwe123?", user.Password))

	var stored models.User
	require.NoError(t, f.db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, user.Password, stored.Password)
	assert.Equal(t, "reads a lot", *stored.About)
}

func TestUserService_CreateUser_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateUserInput
		field string
	}{
		{"bad username", CreateUserInput{Username: "ab", Password: "QweQwe123!"}, "username"},
		{"weak password", CreateUserInput{Username: "reader1", Password: "Aaaa111!"}, "password"},
		{"bad first name", CreateUserInput{Username: "reader1", Password: "QweQwe123!", FirstName: ptr("A")}, "first_name"},
		{"bad last name", CreateUserInput{Username: "reader1", Password: "QweQwe123!", LastName: ptr("Smith-Jones")}, "last_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.input.Role = "MEMBER"

			_, err := f.users.CreateUser(t.Context(), tt.input)
			appErr := requireCode(t, err, models.CodeValidate)
			assert.Equal(t, tt.field, appErr.Field)

			var count int64
			require.NoError(t, f.db.Model(&models.User{}).Count(&count).Error)
			assert.Zero(t, count)
		})
	}
}

func TestUserService_CreateUser_DuplicateUsername(t *testing.T) {
	f := newFixture(t)
	first := f.createUser(t, "reader1")

	_, err := f.users.CreateUser(t.Context(), CreateUserInput{Role: "MEMBER", Username: "reader1", Password: "Other123!x"})
	requireCode(t, err, models.CodeInvalidParameters)

	var users []models.User
	require.NoError(t, f.db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, first.ID, users[0].ID)
	assert.Equal(t, first.Password, users[0].Password)
}

func TestUserService_GetActiveUser(t *testing.T) {
	f := newFixture(t)

	t.Run("missing", func(t *testing.T) {
		_, err := f.users.GetActiveUser(t.Context(), "does-not-exist")
		requireCode(t, err, models.CodeNotFound)
	})

	t.Run("active", func(t *testing.T) {
		u := f.createUser(t, "active1")
		got, err := f.users.GetActiveUser(t.Context(), u.ID)
		require.NoError(t, err)
		assert.Equal(t, "active1", got.Username)
	})

	t.Run("banned", func(t *testing.T) {
		u := f.createUser(t, "banned1")
		_, err := f.bans.CreateBan(t.Context(), u.ID, models.BanReasonInappropriateBehavior, "spam", nil)
		require.NoError(t, err)

		_, err = f.users.GetActiveUser(t.Context(), u.ID)
		requireCode(t, err, models.CodeNotFound)
	})
}

func TestUserService_ListUsers(t *testing.T) {
	f := newFixture(t)
	a := f.createUser(t, "reader1")
	f.createUser(t, "reader2")
	_, err := f.bans.CreateBan(t.Context(), a.ID, models.BanReasonInappropriateBehavior, "", ptr(fixedNow.Add(24*time.Hour)))
	require.NoError(t, err)

	got, err := f.users.ListUsers(t.Context(), repository.UserFilter{IsBanned: ptr(true)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)
}
