package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	notificationapp "github.com/storefront/backend/internal/application/notification"
)

// NotificationUseCase reads and acknowledges in-app notifications
type NotificationUseCase interface {
	List(ctx context.Context, userID uuid.UUID, f notificationapp.ListFilter) (*notificationapp.ListResult, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (*notificationapp.MarkAllResult, error)
}

// NotificationHandler handles the notification inbox
type NotificationHandler struct {
	BaseHandler
	notifications NotificationUseCase
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List godoc
// @ID           listNotifications
// @Summary      List my notifications
// @Tags         notifications
// @Produce      json
// @Param        unread   query bool false "Only unread"
// @Param        page     query int  false "Page number" default(1)
// @Param        pageSize query int  false "Page size" default(20)
// @Success      200 {object} APIResponse[notificationapp.ListResult]
// @Security     BearerAuth
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var f notificationapp.ListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.notifications.List(c.Request.Context(), userID, f)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// UnreadCount godoc
// @ID           countUnreadNotifications
// @Summary      Unread badge count
// @Tags         notifications
// @Produce      json
// @Success      200 {object} APIResponse[CountData]
// @Security     BearerAuth
// @Router       /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	n, err := h.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, CountData{Count: n})
}

// MarkRead godoc
// @ID           markNotificationRead
// @Summary      Mark one notification read
// @Tags         notifications
// @Produce      json
// @Param        id path string true "Notification ID"
// @Success      200 {object} SuccessResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), userID, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, nil)
}

// MarkAllRead godoc
// @ID           markAllNotificationsRead
// @Summary      Mark every notification read
// @Tags         notifications
// @Produce      json
// @Success      200 {object} APIResponse[notificationapp.MarkAllResult]
// @Security     BearerAuth
// @Router       /notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	result, err := h.notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}
