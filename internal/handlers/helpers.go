package handlers

import (
	"errors"
	"net/http"

	"github.com/ThisaraSadesh/Threads-SL/internal/services"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext returns the authenticated actor's id set by the JWT
// middleware, or "" when unauthenticated.
func getUserIDFromContext(c echo.Context) string {
	if id, ok := c.Get("userID").(string); ok {
		return id
	}
	return ""
}

// toHTTPError maps the service error taxonomy onto HTTP status codes.
// Moderation rejection and not-found are user-facing results; everything
// unrecognized is an internal error.
func toHTTPError(err error) error {
	var rejected *services.ValidationRejectedError
	switch {
	case errors.As(err, &rejected):
		return echo.NewHTTPError(http.StatusBadRequest, "Your thread contains sexual, violent, or toxic content!")
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Thread not found")
	case errors.Is(err, services.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to modify this content")
	case errors.Is(err, services.ErrAlreadyUpvoted):
		return echo.NewHTTPError(http.StatusConflict, "You have already upvoted this thread")
	case errors.Is(err, services.ErrModerationUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Content moderation is temporarily unavailable")
	case errors.Is(err, services.ErrSelfAction):
		return echo.NewHTTPError(http.StatusBadRequest, "Operation cannot target yourself")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
