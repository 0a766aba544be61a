package service

import (
	"testing"
	"time"

	"patisson-users/internal/database"
	"patisson-users/internal/models"
	"patisson-users/internal/password"
	"patisson-users/internal/repository"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixedNow = time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type fixture struct {
	db        *gorm.DB
	users     *UserService
	libraries *LibraryService
	bans      *BanService
	hasher    *password.Hasher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	hasher, err := password.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	return &fixture{
		db:        db,
		hasher:    hasher,
		users:     NewUserService(db, repository.NewUserRepository(db), hasher, fixedClock),
		libraries: NewLibraryService(db, repository.NewLibraryRepository(db)),
		bans:      NewBanService(db, repository.NewBanRepository(db), fixedClock),
	}
}

func (f *fixture) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := f.users.CreateUser(t.Context(), CreateUserInput{Role: "MEMBER", Username: username, Password: "QweQwe123!"})
	require.NoError(t, err)
	return u
}

func requireCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected *models.AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}

func ptr[T any](v T) *T {
	return &v
}
