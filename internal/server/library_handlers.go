package server

import (
	"patisson-users/internal/middleware"
	"patisson-users/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateLibraryRequest is the body of POST /api/v1/create-library.
type CreateLibraryRequest struct {
	BookID string                `json:"book_id"`
	UserID string                `json:"user_id"`
	Status *models.LibraryStatus `json:"status"`
}

// SuccessResponse acknowledges a write.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// CreateLibrary handles POST /api/v1/create-library
// @Summary Add a book to a user's library
// @Tags libraries
// @Accept json
// @Produce json
// @Security ServiceToken
// @Param X-Client-Token header string true "Client access token with create_lib"
// @Param request body CreateLibraryRequest true "Library entry"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /create-library [post]
func (s *Server) CreateLibrary(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req CreateLibraryRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := required("book_id", req.BookID); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := required("user_id", req.UserID); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if req.Status == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("status", nil, "status is required"))
	}

	library, err := s.libraryService.CreateLibrary(ctx, req.BookID, req.UserID, *req.Status)
	if err != nil {
		return models.RespondWithError(c, statusFor(err), err)
	}

	middleware.Logger.InfoContext(ctx, "library has been created",
		"library_id", library.ID, "client", clientPayload(c).Sub, "service_initiator", callerSub(c))
	return c.JSON(SuccessResponse{Success: true})
}
