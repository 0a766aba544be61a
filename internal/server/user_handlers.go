package server

import (
	"patisson-users/internal/auth"
	"patisson-users/internal/middleware"
	"patisson-users/internal/models"
	"patisson-users/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateUserRequest is the body of POST /api/v1/create-user.
type CreateUserRequest struct {
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Avatar    *string `json:"avatar"`
	About     *string `json:"about"`
	// ExpireIn is relayed to the authentication service as the token lifetime.
	ExpireIn *int `json:"expire_in"`
}

// VerifyUserRequest is the body of POST /api/v1/verify-user.
type VerifyUserRequest struct {
	AccessToken string `json:"access_token"`
}

// VerifyUserResponse reports whether the client token belongs to an active user.
type VerifyUserResponse struct {
	IsVerify bool                `json:"is_verify"`
	Payload  *models.User        `json:"payload"`
	Error    *models.ErrorSchema `json:"error"`
}

// UpdateUserRequest is the body of POST /api/v1/update-user.
type UpdateUserRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// CreateUser handles POST /api/v1/create-user
// @Summary Register a user
// @Description Creates a MEMBER user and returns a client token pair issued by the authentication service
// @Tags users
// @Accept json
// @Produce json
// @Security ServiceToken
// @Param request body CreateUserRequest true "New user"
// @Success 200 {object} auth.TokenPair
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /create-user [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	user, err := s.userService.CreateUser(ctx, service.CreateUserInput{
		Role:      auth.ClientRoleMember,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Avatar:    req.Avatar,
		About:     req.About,
	})
	if err != nil {
		return models.RespondWithError(c, statusFor(err), err)
	}

	pair, err := s.issuer.CreateClientTokens(ctx, user.ID, user.Role, req.ExpireIn)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "token issuance failed for new user", "user_id", user.ID, "error", err)
		return models.RespondWithError(c, statusFor(err), err)
	}

	middleware.Logger.InfoContext(ctx, "user has been created", "user_id", user.ID, "service_initiator", callerSub(c))
	return c.JSON(pair)
}

// VerifyUser handles POST /api/v1/verify-user
// @Summary Verify a client token
// @Description Verifies the client access token and checks that its user exists and is not banned
// @Tags users
// @Accept json
// @Produce json
// @Security ServiceToken
// @Param request body VerifyUserRequest true "Client token"
// @Success 200 {object} VerifyUserResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /verify-user [post]
func (s *Server) VerifyUser(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req VerifyUserRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := required("access_token", req.AccessToken); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	client, err := s.verifier.VerifyClientToken(ctx, req.AccessToken)
	if err != nil {
		if statusFor(err) == fiber.StatusInternalServerError {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		middleware.Logger.InfoContext(ctx, "client token not verified", "service_initiator", callerSub(c))
		return c.JSON(VerifyUserResponse{Error: &models.ErrorSchema{Error: errorCode(err)}})
	}

	user, err := s.userService.GetActiveUser(ctx, client.Sub)
	if err != nil {
		if statusFor(err) == fiber.StatusInternalServerError {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		schema := errorSchema(err)
		return c.JSON(VerifyUserResponse{Error: &schema})
	}

	middleware.Logger.InfoContext(ctx, "service verified user", "user_id", user.ID, "service_initiator", callerSub(c))
	return c.JSON(VerifyUserResponse{IsVerify: true, Payload: user})
}

// UpdateUser handles POST /api/v1/update-user
// @Summary Refresh a user's tokens
// @Description Verifies the client token, checks the user is active and exchanges the refresh token for a new pair
// @Tags users
// @Accept json
// @Produce json
// @Security ServiceToken
// @Param X-Client-Token header string true "Client access token"
// @Param request body UpdateUserRequest true "Refresh token"
// @Success 200 {object} auth.TokenPair
// @Failure 403 {object} models.ErrorResponse
// @Router /update-user [post]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	ctx := c.UserContext()

	accessToken := c.Get(clientTokenHeader)
	if accessToken == "" {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewClientJWTInvalidError(auth.MissingTokenMessage))
	}

	var req UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	client, err := s.verifier.VerifyClientToken(ctx, accessToken)
	if err != nil {
		return forbidden(c, err)
	}

	if _, err := s.userService.GetActiveUser(ctx, client.Sub); err != nil {
		return forbidden(c, err)
	}

	pair, err := s.issuer.UpdateClientTokens(ctx, accessToken, req.RefreshToken)
	if err != nil {
		middleware.Logger.InfoContext(ctx, "token refresh refused", "user_id", client.Sub, "error", err)
		return forbidden(c, err)
	}

	middleware.Logger.InfoContext(ctx, "service has updated user tokens", "user_id", client.Sub, "service_initiator", callerSub(c))
	return c.JSON(pair)
}
