// Package service implements the CRUD operations of the users service on top
// of the repositories. Every write runs in one transaction; input is fully
// validated before the transaction opens.
package service

import (
	"context"
	"errors"
	"time"

	"patisson-users/internal/middleware"
	"patisson-users/internal/models"
	"patisson-users/internal/observability"
)

// Clock returns the current time. Services compare ban end dates against it.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// record counts the outcome of an operation and logs failures at info level,
// the way callers expect domain rejections to show up in the request log.
func record(ctx context.Context, operation string, err error) {
	if err == nil {
		observability.RecordOperation(operation, "ok")
		return
	}

	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		observability.RecordOperation(operation, models.CodeInternal)
		middleware.Logger.ErrorContext(ctx, operation+" failed", "error", err)
		return
	}

	observability.RecordOperation(operation, appErr.Code)
	if appErr.Code == models.CodeInternal {
		middleware.Logger.ErrorContext(ctx, operation+" failed", "error", err)
		return
	}
	middleware.Logger.InfoContext(ctx, operation+" rejected", "code", appErr.Code, "extra", appErr.Message)
}
