package server

import (
	"patisson-users/internal/auth"
	"patisson-users/internal/middleware"
	"patisson-users/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ServiceTokenRequired verifies the bearer service token and stores its payload.
// Verification runs before any handler, outside any transaction.
func (s *Server) ServiceTokenRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewJWTInvalidError(auth.MissingTokenMessage))
		}

		payload, err := s.verifier.VerifyServiceToken(c.UserContext(), token)
		if err != nil {
			return forbidden(c, err)
		}

		c.Locals(localServicePayload, payload)
		c.Locals(middleware.LocalServiceID, payload.Sub)
		c.SetUserContext(middleware.WithServiceID(c.UserContext(), payload.Sub))
		return c.Next()
	}
}

// RequireServicePermissions rejects callers whose service role lacks any of caps.
// Must be placed after ServiceTokenRequired.
func (s *Server) RequireServicePermissions(caps ...auth.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := servicePayload(c)
		if p == nil {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewJWTInvalidError(auth.MissingTokenMessage))
		}
		if err := auth.Require(p.Role.Permissions, caps...); err != nil {
			middleware.Logger.InfoContext(c.UserContext(), "service permission denied", "role", p.Role.Name)
			return models.RespondWithError(c, fiber.StatusForbidden, err)
		}
		return c.Next()
	}
}

// ClientTokenRequired verifies the end user's token from X-Client-Token and
// checks the role's permissions against caps.
func (s *Server) ClientTokenRequired(caps ...auth.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(clientTokenHeader)
		if token == "" {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewClientJWTInvalidError(auth.MissingTokenMessage))
		}

		payload, err := s.verifier.VerifyClientToken(c.UserContext(), token)
		if err != nil {
			return forbidden(c, err)
		}
		if err := auth.Require(payload.Role.Permissions, caps...); err != nil {
			middleware.Logger.InfoContext(c.UserContext(), "client permission denied",
				"user_id", payload.Sub, "role", payload.Role.Name)
			return models.RespondWithError(c, fiber.StatusForbidden, err)
		}

		c.Locals(localClientPayload, payload)
		return c.Next()
	}
}
