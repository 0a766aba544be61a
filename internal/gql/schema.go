// Package gql serves the read-only GraphQL listing of users and libraries.
// Every resolver requires a valid service token.
package gql

import (
	"context"
	"errors"
	"sync"

	"patisson-users/internal/auth"
	"patisson-users/internal/middleware"
	"patisson-users/internal/models"
	"patisson-users/internal/repository"

	"github.com/graphql-go/graphql"
)

// UserLister lists users with their current ban status.
type UserLister interface {
	ListUsers(ctx context.Context, filter repository.UserFilter) ([]models.User, error)
}

// LibraryLister lists library entries.
type LibraryLister interface {
	ListLibraries(ctx context.Context, filter repository.LibraryFilter) ([]models.Library, error)
}

// Request is a GraphQL request body.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Schema executes GraphQL requests against the listings.
type Schema struct {
	schema    graphql.Schema
	users     UserLister
	libraries LibraryLister
	verifier  auth.Verifier
}

// NewSchema builds the GraphQL schema.
func NewSchema(users UserLister, libraries LibraryLister, verifier auth.Verifier) (*Schema, error) {
	s := &Schema{users: users, libraries: libraries, verifier: verifier}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"users": &graphql.Field{
				Type:    graphql.NewList(userType),
				Args:    userArgs(),
				Resolve: s.resolveUsers,
			},
			"libraries": &graphql.Field{
				Type:    graphql.NewList(libraryType),
				Args:    libraryArgs(),
				Resolve: s.resolveLibraries,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: query})
	if err != nil {
		return nil, err
	}
	s.schema = schema
	return s, nil
}

// Execute runs req. token is the bearer service token of the caller, possibly empty.
func (s *Schema) Execute(ctx context.Context, token string, req Request) *graphql.Result {
	ctx = context.WithValue(ctx, requestAuthKey{}, &requestAuth{token: token})
	return graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}

type requestAuthKey struct{}

// requestAuth verifies the service token at most once per request.
type requestAuth struct {
	token   string
	once    sync.Once
	payload *auth.ServicePayload
	err     error
}

// servicePayload returns the verified service payload, requiring the role to
// grant every capability in caps.
func (s *Schema) servicePayload(ctx context.Context, caps ...auth.Capability) (*auth.ServicePayload, error) {
	ra, ok := ctx.Value(requestAuthKey{}).(*requestAuth)
	if !ok {
		return nil, newError(models.NewJWTInvalidError(auth.MissingTokenMessage))
	}
	ra.once.Do(func() {
		if ra.token == "" {
			ra.err = models.NewJWTInvalidError(auth.MissingTokenMessage)
			return
		}
		ra.payload, ra.err = s.verifier.VerifyServiceToken(ctx, ra.token)
	})
	if ra.err != nil {
		return nil, newError(ra.err)
	}
	if err := auth.Require(ra.payload.Role.Permissions, caps...); err != nil {
		return nil, newError(err)
	}
	return ra.payload, nil
}

// Error is a resolver error. The message is the error code and the extra
// text travels in extensions.details.
type Error struct {
	Code    string
	Details string
}

func newError(err error) *Error {
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code != models.CodeInternal {
		return &Error{Code: appErr.Code, Details: appErr.Message}
	}
	return &Error{Code: models.CodeInternal, Details: "Internal server error"}
}

func (e *Error) Error() string {
	return e.Code
}

// Extensions implements gqlerrors.ExtendedError.
func (e *Error) Extensions() map[string]any {
	return map[string]any{"details": e.Details}
}

func (s *Schema) resolveUsers(p graphql.ResolveParams) (any, error) {
	svc, err := s.servicePayload(p.Context, auth.CapUsersInfo)
	if err != nil {
		return nil, err
	}
	ctx := middleware.WithServiceID(p.Context, svc.Sub)

	filter := repository.UserFilter{
		IDs:        stringList(p.Args, "ids"),
		Usernames:  stringList(p.Args, "usernames"),
		FirstNames: stringList(p.Args, "first_names"),
		LastNames:  stringList(p.Args, "last_names"),
		Roles:      stringList(p.Args, "roles"),
		Page:       page(p.Args),
	}
	if banned, ok := p.Args["is_banned"].(bool); ok {
		filter.IsBanned = &banned
	}

	users, err := s.users.ListUsers(ctx, filter)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "graphql users query failed", "error", err)
		return nil, newError(err)
	}
	middleware.Logger.InfoContext(ctx, "graphql users query", "count", len(users), "offset", filter.Offset, "limit", filter.Limit)
	return users, nil
}

func (s *Schema) resolveLibraries(p graphql.ResolveParams) (any, error) {
	svc, err := s.servicePayload(p.Context, auth.CapLibrariesInfo)
	if err != nil {
		return nil, err
	}
	ctx := middleware.WithServiceID(p.Context, svc.Sub)

	filter := repository.LibraryFilter{
		IDs:     stringList(p.Args, "ids"),
		UserIDs: stringList(p.Args, "user_ids"),
		BookIDs: stringList(p.Args, "book_ids"),
		Page:    page(p.Args),
	}
	if raw, ok := p.Args["statuses"].([]any); ok {
		for _, v := range raw {
			if st, ok := v.(models.LibraryStatus); ok {
				filter.Statuses = append(filter.Statuses, st)
			}
		}
	}

	libraries, err := s.libraries.ListLibraries(ctx, filter)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "graphql libraries query failed", "error", err)
		return nil, newError(err)
	}
	middleware.Logger.InfoContext(ctx, "graphql libraries query", "count", len(libraries), "offset", filter.Offset, "limit", filter.Limit)
	return libraries, nil
}
