package server

import (
	"patisson-users/internal/gql"
	"patisson-users/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GraphQL handles POST /graphql
// @Summary GraphQL listing of users and libraries
// @Description Resolvers require a bearer service token; errors are reported in the GraphQL errors list
// @Tags graphql
// @Accept json
// @Produce json
// @Security ServiceToken
// @Param request body gql.Request true "GraphQL request"
// @Success 200 {object} object{data=object,errors=[]object}
// @Failure 400 {object} models.ErrorResponse
// @Router /graphql [post]
func (s *Server) GraphQL(c *fiber.Ctx) error {
	var req gql.Request
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := required("query", req.Query); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	result := s.graph.Execute(c.UserContext(), bearerToken(c), req)
	return c.JSON(result)
}
