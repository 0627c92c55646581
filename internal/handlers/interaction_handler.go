package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/wavelink-app/backend/internal/models"
	"github.com/wavelink-app/backend/internal/services"
)

const defaultTrendingWindow = 24 * time.Hour

// InteractionHandler exposes the interaction engine: like and bookmark
// toggles, share and view logging, reports, bulk operations and the
// trending feed.
type InteractionHandler struct {
	interactions *services.InteractionService
}

// NewInteractionHandler creates a new InteractionHandler
func NewInteractionHandler(interactions *services.InteractionService) *InteractionHandler {
	return &InteractionHandler{interactions: interactions}
}

// RegisterInteractionRoutes registers interaction-related routes
func (h *InteractionHandler) RegisterInteractionRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.TogglePostLike)
	g.POST("/comments/:id/like", h.ToggleCommentLike)
	g.POST("/posts/:id/bookmark", h.ToggleBookmark)
	g.POST("/posts/:id/share", h.SharePost)
	g.POST("/posts/:id/view", h.RecordView)
	g.GET("/posts/trending", h.GetTrendingPosts)
	g.POST("/reports", h.ReportContent)

	g.POST("/posts/bulk/like", h.BulkLike)
	g.POST("/posts/bulk/unlike", h.BulkUnlike)
	g.POST("/posts/bulk/bookmark", h.BulkBookmark)
	g.POST("/posts/bulk/unbookmark", h.BulkUnbookmark)
}

// TogglePostLike flips the authenticated user's like on a post
func (h *InteractionHandler) TogglePostLike(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	result, err := h.interactions.ToggleLike(c.Request().Context(), currentUserID, c.Param("id"), services.ContentKindPost)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, result)
}

// ToggleCommentLike flips the authenticated user's like on a comment
func (h *InteractionHandler) ToggleCommentLike(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	result, err := h.interactions.ToggleLike(c.Request().Context(), currentUserID, c.Param("id"), services.ContentKindComment)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, result)
}

// ToggleBookmark flips the authenticated user's bookmark on a post
func (h *InteractionHandler) ToggleBookmark(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	result, err := h.interactions.ToggleBookmark(c.Request().Context(), currentUserID, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, result)
}

// SharePost logs a share of a post to an external platform
func (h *InteractionHandler) SharePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.SharePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.interactions.SharePost(c.Request().Context(), currentUserID, c.Param("id"), models.SharePlatform(req.Platform), req.CustomMessage)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, result)
}

// RecordView logs a view of a post. Works without authentication; an
// anonymous view is recorded when no user is present.
func (h *InteractionHandler) RecordView(c echo.Context) error {
	var req models.RecordViewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	currentUserID := getUserIDFromContext(c)
	result, err := h.interactions.RecordView(c.Request().Context(), currentUserID, c.Param("id"), req.Metadata)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, result)
}

// GetTrendingPosts returns published posts ranked by trending score
func (h *InteractionHandler) GetTrendingPosts(c echo.Context) error {
	window := defaultTrendingWindow
	if hours, err := strconv.Atoi(c.QueryParam("hours")); err == nil && hours > 0 {
		window = time.Duration(hours) * time.Hour
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 50 {
		limit = 20
	}

	ranked, err := h.interactions.TrendingPosts(c.Request().Context(), window, limit)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"posts": ranked})
}

// ReportContent files a moderation report against a post, comment or user
func (h *InteractionHandler) ReportContent(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	reportID, err := h.interactions.ReportContent(
		c.Request().Context(),
		currentUserID,
		req.TargetID,
		models.ReportTargetType(req.TargetType),
		req.Reason,
		req.Description,
	)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusCreated, echo.Map{"report_id": reportID})
}

// BulkIDsRequest carries the post ids of a bulk operation
type BulkIDsRequest struct {
	PostIDs []string `json:"post_ids" validate:"required,min=1,max=100"`
}

func (h *InteractionHandler) bulkOp(c echo.Context, op func(uint, []string) ([]services.BulkOutcome, error)) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req BulkIDsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	outcomes, err := op(currentUserID, req.PostIDs)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"results": outcomes})
}

// BulkLike likes each given post, skipping already-liked ones
func (h *InteractionHandler) BulkLike(c echo.Context) error {
	return h.bulkOp(c, func(userID uint, ids []string) ([]services.BulkOutcome, error) {
		return h.interactions.BulkLike(c.Request().Context(), userID, ids)
	})
}

// BulkUnlike unlikes each given post
func (h *InteractionHandler) BulkUnlike(c echo.Context) error {
	return h.bulkOp(c, func(userID uint, ids []string) ([]services.BulkOutcome, error) {
		return h.interactions.BulkUnlike(c.Request().Context(), userID, ids)
	})
}

// BulkBookmark bookmarks each given post
func (h *InteractionHandler) BulkBookmark(c echo.Context) error {
	return h.bulkOp(c, func(userID uint, ids []string) ([]services.BulkOutcome, error) {
		return h.interactions.BulkBookmark(c.Request().Context(), userID, ids)
	})
}

// BulkUnbookmark removes each given bookmark
func (h *InteractionHandler) BulkUnbookmark(c echo.Context) error {
	return h.bulkOp(c, func(userID uint, ids []string) ([]services.BulkOutcome, error) {
		return h.interactions.BulkUnbookmark(c.Request().Context(), userID, ids)
	})
}
