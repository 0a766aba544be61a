package service

import (
	"context"
	"errors"
	"fmt"

	"patisson-users/internal/middleware"
	"patisson-users/internal/models"
	"patisson-users/internal/repository"

	"gorm.io/gorm"
)

// LibraryService manages users' reading lists.
type LibraryService struct {
	db        *gorm.DB
	libraries repository.LibraryRepository
}

// NewLibraryService returns a new LibraryService.
func NewLibraryService(db *gorm.DB, libraries repository.LibraryRepository) *LibraryService {
	return &LibraryService{db: db, libraries: libraries}
}

func duplicateLibraryError(userID, bookID string) *models.AppError {
	return models.NewAccessError(
		fmt.Sprintf("The user (%s) already has this book (%s) in their library", userID, bookID))
}

func userNotFoundError(userID string, err error) *models.AppError {
	return models.NewInvalidParametersError(fmt.Sprintf("The user (%s) was not found", userID), err)
}

// CreateLibrary adds bookID to the user's library with the given status.
// A (user, book) pair can only be added once.
func (s *LibraryService) CreateLibrary(ctx context.Context, bookID, userID string, status models.LibraryStatus) (_ *models.Library, err error) {
	defer func() { record(ctx, "create_library", err) }()

	if !status.Valid() {
		return nil, models.NewValidationError("status", int(status), "unknown library status")
	}

	library := &models.Library{BookID: bookID, UserID: userID, Status: status}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.libraries.WithTx(tx)

		exists, err := repo.Exists(ctx, userID, bookID)
		if err != nil {
			return err
		}
		if exists {
			return duplicateLibraryError(userID, bookID)
		}
		return repo.Create(ctx, library)
	})

	switch {
	case err == nil:
	case errors.Is(err, repository.ErrUniqueViolation):
		// Lost a race with a concurrent insert of the same pair.
		return nil, duplicateLibraryError(userID, bookID)
	case errors.Is(err, repository.ErrForeignKeyViolation):
		return nil, userNotFoundError(userID, err)
	default:
		return nil, asAppError(err)
	}

	middleware.Logger.InfoContext(ctx, "library created", "library_id", library.ID, "user_id", userID, "book_id", bookID)
	return library, nil
}

// ListLibraries returns library entries matching filter.
func (s *LibraryService) ListLibraries(ctx context.Context, filter repository.LibraryFilter) ([]models.Library, error) {
	return s.libraries.List(ctx, filter)
}
