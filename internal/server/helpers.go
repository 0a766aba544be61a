package server

import (
	"errors"
	"strings"

	"patisson-users/internal/auth"
	"patisson-users/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Fiber locals set by the token middleware.
const (
	localServicePayload = "servicePayload"
	localClientPayload  = "clientPayload"
)

// Header carrying the end user's access token next to the service token.
const clientTokenHeader = "X-Client-Token"

// statusFor maps an error code to the HTTP status returned to callers.
// Domain rejections are client errors; token and permission failures are forbidden.
func statusFor(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeValidate, models.CodeInvalidParameters, models.CodeAccess:
		return fiber.StatusBadRequest
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeInternal:
		return fiber.StatusInternalServerError
	}
	// JWT_INVALID, CLIENT_JWT_INVALID and codes relayed from the auth service.
	return fiber.StatusForbidden
}

// forbidden responds 403 for anything but an internal failure.
func forbidden(c *fiber.Ctx, err error) error {
	if statusFor(err) == fiber.StatusInternalServerError {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondWithError(c, fiber.StatusForbidden, err)
}

// parseBody decodes the JSON body into out. Enum decoding failures keep their
// field message.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewValidationError("body", nil, "Invalid request body")
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return models.NewValidationError(field, value, field+" is required")
	}
	return nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func servicePayload(c *fiber.Ctx) *auth.ServicePayload {
	p, _ := c.Locals(localServicePayload).(*auth.ServicePayload)
	return p
}

func clientPayload(c *fiber.Ctx) *auth.ClientPayload {
	p, _ := c.Locals(localClientPayload).(*auth.ClientPayload)
	return p
}

// callerSub returns the subject of the calling service, or "" before verification.
func callerSub(c *fiber.Ctx) string {
	if p := servicePayload(c); p != nil {
		return p.Sub
	}
	return ""
}

// errorCode returns the AppError code of err, or INTERNAL_ERROR.
func errorCode(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return models.CodeInternal
}

// errorSchema returns the wire form of err; unclassified errors stay opaque.
func errorSchema(err error) models.ErrorSchema {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.Schema()
	}
	return models.ErrorSchema{Error: models.CodeInternal, Extra: "Internal server error"}
}
