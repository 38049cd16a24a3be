package handlers

import (
	"net/http"
	"strconv"

	"github.com/ThisaraSadesh/Threads-SL/internal/models"
	"github.com/ThisaraSadesh/Threads-SL/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ThreadHandler handles HTTP requests related to the thread graph
type ThreadHandler struct {
	threadService services.ThreadService
}

// NewThreadHandler creates a new ThreadHandler
func NewThreadHandler(threadService services.ThreadService) *ThreadHandler {
	return &ThreadHandler{threadService: threadService}
}

// RegisterThreadRoutes registers thread-related routes
func (h *ThreadHandler) RegisterThreadRoutes(g *echo.Group) {
	g.POST("/threads", h.CreateThread)
	g.GET("/threads", h.GetThreads)
	g.GET("/threads/:id", h.GetThread)
	g.GET("/threads/:id/descendants", h.GetDescendants)
	g.PUT("/threads/:id", h.UpdateThread)
	g.DELETE("/threads/:id", h.DeleteThread)
	g.POST("/threads/:id/upvote", h.UpvoteThread)
	g.POST("/threads/:id/repost", h.RepostThread)
	g.POST("/threads/:id/comments", h.AddComment)
}

// CreateThread creates a new top-level thread
func (h *ThreadHandler) CreateThread(c echo.Context) error {
	actorID := getUserIDFromContext(c)
	if actorID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateThreadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	thread, err := h.threadService.CreateThread(c.Request().Context(), actorID, req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, thread)
}

// GetThread retrieves a thread by ID
func (h *ThreadHandler) GetThread(c echo.Context) error {
	thread, err := h.threadService.FetchThreadByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, thread)
}

// GetThreads retrieves one page of root posts, newest first
func (h *ThreadHandler) GetThreads(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 50 {
		pageSize = 20
	}

	threads, isNext, err := h.threadService.FetchPosts(c.Request().Context(), page, pageSize)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"threads": threads,
		"is_next": isNext,
	})
}

// GetDescendants retrieves every transitive reply under a thread
func (h *ThreadHandler) GetDescendants(c echo.Context) error {
	descendants, err := h.threadService.FetchAllDescendants(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	if descendants == nil {
		descendants = []models.Thread{}
	}
	return c.JSON(http.StatusOK, descendants)
}

// UpdateThread edits a thread's text. Author only.
func (h *ThreadHandler) UpdateThread(c echo.Context) error {
	actorID := getUserIDFromContext(c)
	if actorID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdateThreadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	text := models.ThreadText{Title: req.Title, Images: req.Images}
	if err := h.threadService.UpdateThread(c.Request().Context(), actorID, c.Param("id"), text); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// DeleteThread cascades deletion of a thread and all of its descendants
func (h *ThreadHandler) DeleteThread(c echo.Context) error {
	actorID := getUserIDFromContext(c)
	if actorID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.threadService.DeleteThread(c.Request().Context(), actorID, c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UpvoteThread records an upvote by the authenticated user
func (h *ThreadHandler) UpvoteThread(c echo.Context) error {
	actorID := getUserIDFromContext(c)
	if actorID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.threadService.UpvoteThread(c.Request().Context(), actorID, c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// RepostThread reshapes the target thread into a new shared record
func (h *ThreadHandler) RepostThread(c echo.Context) error {
	actorID := getUserIDFromContext(c)
	if actorID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.RepostThreadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	repost, err := h.threadService.RepostThread(c.Request().Context(), actorID, c.Param("id"), req.CommunityID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, repost)
}

// AddComment inserts a reply under a thread
func (h *ThreadHandler) AddComment(c echo.Context) error {
	actorID := getUserIDFromContext(c)
	if actorID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.AddCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.threadService.AddComment(c.Request().Context(), actorID, c.Param("id"), req.Title)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}
