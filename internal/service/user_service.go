package service

import (
	"context"
	"errors"
	"fmt"

	"patisson-users/internal/middleware"
	"patisson-users/internal/models"
	"patisson-users/internal/observability"
	"patisson-users/internal/password"
	"patisson-users/internal/repository"
	"patisson-users/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// CreateUserInput carries the raw registration fields. Optional fields are nil when absent.
type CreateUserInput struct {
	Role      string
	Username  string
	Password  string
	FirstName *string
	LastName  *string
	Avatar    *string
	About     *string
}

// UserService provides user registration and lookup.
type UserService struct {
	db     *gorm.DB
	users  repository.UserRepository
	hasher *password.Hasher
	clock  Clock
}

// NewUserService returns a new UserService. A nil clock means time.Now.
func NewUserService(db *gorm.DB, users repository.UserRepository, hasher *password.Hasher, clock Clock) *UserService {
	return &UserService{db: db, users: users, hasher: hasher, clock: clock}
}

func (s *UserService) validate(in CreateUserInput) (*models.User, string, error) {
	username, err := validation.Username(in.Username)
	if err != nil {
		return nil, "", err
	}
	plain, err := validation.Password(in.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Username: username,
		Role:     in.Role,
		Avatar:   in.Avatar,
		About:    in.About,
	}
	if in.FirstName != nil {
		first, err := validation.FirstName(*in.FirstName)
		if err != nil {
			return nil, "", err
		}
		user.FirstName = &first
	}
	if in.LastName != nil {
		last, err := validation.LastName(*in.LastName)
		if err != nil {
			return nil, "", err
		}
		user.LastName = &last
	}
	return user, plain, nil
}

// CreateUser validates the input, hashes the password and stores the user.
// A taken username is reported as INVALID_PARAMETERS and nothing is written.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (_ *models.User, err error) {
	ctx, end := observability.StartSpan(ctx, "UserService.CreateUser", attribute.String("user.username", in.Username))
	defer func() { record(ctx, "create_user", err); end(err) }()

	user, plain, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user.Password = hash

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.users.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, models.NewInvalidParametersError(
				fmt.Sprintf("The username (%s) is already taken", user.Username), err)
		}
		return nil, asAppError(err)
	}

	middleware.Logger.InfoContext(ctx, "user created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// GetActiveUser returns the user unless it does not exist or is banned right now.
func (s *UserService) GetActiveUser(ctx context.Context, id string) (_ *models.User, err error) {
	defer func() { record(ctx, "get_active_user", err) }()
	return s.users.GetActiveByID(ctx, id, s.clock.now())
}

// ListUsers returns users matching filter, each with its current ban status.
func (s *UserService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]models.User, error) {
	return s.users.List(ctx, filter, s.clock.now())
}

// asAppError keeps domain errors intact and turns anything else into INTERNAL_ERROR.
func asAppError(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}
