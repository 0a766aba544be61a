// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"patisson-users/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrUniqueViolation wraps driver errors caused by a unique index.
	ErrUniqueViolation = errors.New("unique constraint violation")
	// ErrForeignKeyViolation wraps driver errors caused by a missing referenced row.
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// classifyConstraintError maps write failures onto the constraint sentinels.
// Anything it cannot classify becomes an INTERNAL_ERROR.
func classifyConstraintError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
		}
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated), strings.Contains(err.Error(), "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
	}

	return models.NewInternalError(err)
}
