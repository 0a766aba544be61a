package service

import (
	"fmt"
	"testing"

	"patisson-users/internal/models"
	"patisson-users/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryService_CreateLibrary(t *testing.T) {
	f := newFixture(t)
	u := f.createUser(t, "reader1")

	lib, err := f.libraries.CreateLibrary(t.Context(), "book-42", u.ID, models.LibraryStatusReading)
	require.NoError(t, err)
	assert.NotEmpty(t, lib.ID)
	assert.Equal(t, models.LibraryStatusReading, lib.Status)

	_, err = f.libraries.CreateLibrary(t.Context(), "book-42", u.ID, models.LibraryStatusFinished)
	appErr := requireCode(t, err, models.CodeAccess)
	assert.Equal(t, fmt.Sprintf("The user (%s) already has this book (book-42) in their library", u.ID), appErr.Message)

	got, err := f.libraries.ListLibraries(t.Context(), repository.LibraryFilter{UserIDs: []string{u.ID}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.LibraryStatusReading, got[0].Status, "the rejected call must not overwrite the entry")
}

func TestLibraryService_CreateLibrary_UnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.libraries.CreateLibrary(t.Context(), "book-1", "ghost", models.LibraryStatusPlanning)
	appErr := requireCode(t, err, models.CodeInvalidParameters)
	assert.Equal(t, "The user (ghost) was not found", appErr.Message)

	var count int64
	require.NoError(t, f.db.Model(&models.Library{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLibraryService_CreateLibrary_InvalidStatus(t *testing.T) {
	f := newFixture(t)
	u := f.createUser(t, "reader1")

	_, err := f.libraries.CreateLibrary(t.Context(), "book-1", u.ID, models.LibraryStatus(9))
	requireCode(t, err, models.CodeValidate)
}

func TestLibraryService_SameBookForDifferentUsers(t *testing.T) {
	f := newFixture(t)
	a := f.createUser(t, "reader1")
	b := f.createUser(t, "reader2")

	_, err := f.libraries.CreateLibrary(t.Context(), "book-1", a.ID, models.LibraryStatusPlanning)
	require.NoError(t, err)
	_, err = f.libraries.CreateLibrary(t.Context(), "book-1", b.ID, models.LibraryStatusPlanning)
	require.NoError(t, err)
}
