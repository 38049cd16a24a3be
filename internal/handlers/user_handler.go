package handlers

import (
	"net/http"

	"github.com/ThisaraSadesh/Threads-SL/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to user relationships
type UserHandler struct {
	threadService services.ThreadService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(threadService services.ThreadService) *UserHandler {
	return &UserHandler{threadService: threadService}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
}

// FollowUser makes the authenticated user follow the target user
func (h *UserHandler) FollowUser(c echo.Context) error {
	actorID := getUserIDFromContext(c)
	if actorID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.threadService.FollowUser(c.Request().Context(), actorID, c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
