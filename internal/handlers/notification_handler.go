package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/wavelink-app/backend/internal/models"
	"github.com/wavelink-app/backend/internal/services"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/stats", h.GetStats)
	g.GET("/notifications/types", h.GetTypes)
	g.PUT("/notifications/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.DELETE("/notifications", h.DeleteNotifications)
}

// GetNotifications returns a filtered, paginated page of the user's log
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	unreadOnly, _ := strconv.ParseBool(c.QueryParam("unread"))

	var types []models.NotificationType
	if raw := c.QueryParam("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			types = append(types, models.NotificationType(strings.TrimSpace(t)))
		}
	}

	list, err := h.notifications.List(c.Request().Context(), currentUserID, services.NotificationListOptions{
		Page:       page,
		Limit:      limit,
		UnreadOnly: unreadOnly,
		Types:      types,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": list.Notifications,
			"unreadCount":   list.UnreadCount,
		},
		"meta": list.Pagination,
	})
}

// GetStats returns aggregate counts over the user's notification log
func (h *NotificationHandler) GetStats(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	stats, err := h.notifications.Stats(c.Request().Context(), currentUserID)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, stats)
}

// GetTypes returns the supported notification types with display metadata
func (h *NotificationHandler) GetTypes(c echo.Context) error {
	return ok(c, http.StatusOK, echo.Map{"types": h.notifications.Types()})
}

// NotificationIDsRequest carries the target notification ids
type NotificationIDsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=100"`
}

// MarkAsRead marks the given notifications as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req NotificationIDsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.notifications.MarkRead(c.Request().Context(), currentUserID, req.IDs...)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, result)
}

// MarkAllAsRead marks the user's entire log as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	result, err := h.notifications.MarkAllRead(c.Request().Context(), currentUserID)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, result)
}

// DeleteNotifications removes the given notifications from the user's log
func (h *NotificationHandler) DeleteNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req NotificationIDsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.notifications.Delete(c.Request().Context(), currentUserID, req.IDs...)
	if err != nil {
		return httpError(err)
	}
	return ok(c, http.StatusOK, result)
}
