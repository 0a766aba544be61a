package server

import (
	"time"

	"patisson-users/internal/middleware"
	"patisson-users/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateBanRequest is the body of POST /api/v1/create-ban. A missing end_date
// makes the ban permanent.
type CreateBanRequest struct {
	UserID  string            `json:"user_id"`
	Reason  *models.BanReason `json:"reason"`
	Comment string            `json:"comment"`
	EndDate *models.EndDate   `json:"end_date" swaggertype:"string" format:"date-time"`
}

// CreateBan handles POST /api/v1/create-ban
// @Summary Ban a user
// @Tags bans
// @Accept json
// @Produce json
// @Security ServiceToken
// @Param X-Client-Token header string true "Client access token with create_ban"
// @Param request body CreateBanRequest true "Ban"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /create-ban [post]
func (s *Server) CreateBan(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req CreateBanRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := required("user_id", req.UserID); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if req.Reason == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("reason", nil, "reason is required"))
	}

	var endDate *time.Time
	if req.EndDate != nil {
		endDate = &req.EndDate.Time
	}

	ban, err := s.banService.CreateBan(ctx, req.UserID, *req.Reason, req.Comment, endDate)
	if err != nil {
		return models.RespondWithError(c, statusFor(err), err)
	}

	middleware.Logger.InfoContext(ctx, "ban has been created",
		"ban_id", ban.ID, "user_id", ban.UserID, "moderator", clientPayload(c).Sub, "service_initiator", callerSub(c))
	return c.JSON(SuccessResponse{Success: true})
}
