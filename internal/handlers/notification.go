// internal/handlers/notification.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/tailor-backend/internal/i18n"
	"github.com/javajoker/tailor-backend/internal/services"
	"github.com/javajoker/tailor-backend/internal/utils"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GET /notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	result, err := h.notificationService.List(c.Request.Context(), userID, utils.PageFromQuery(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}

// GET /notifications/status
func (h *NotificationHandler) Status(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	unread, err := h.notificationService.HasUnread(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "hasUnread": unread})
}

// PUT /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	notification, err := h.notificationService.MarkRead(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, notification)
}

// PUT /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.notificationService.MarkAllRead(c.Request.Context(), userID); err != nil {
		utils.HandleError(c, err)
		return
	}
	messageResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyNotificationsAllRead))
}

// POST /admin/notifications/send
func (h *NotificationHandler) Send(c *gin.Context) {
	var req services.SendNotificationRequest
	if !bindJSON(c, &req) {
		return
	}
	notification, err := h.notificationService.SendToUser(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.CreatedResponse(c, notification, i18n.T(utils.GetLangFromContext(c), i18n.KeyNotificationSent))
}

// POST /admin/notifications/send-all
func (h *NotificationHandler) SendAll(c *gin.Context) {
	var req services.BroadcastRequest
	if !bindJSON(c, &req) {
		return
	}
	sent, err := h.notificationService.SendToAll(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	messageResponse(c, fmt.Sprintf("Notification sent to %d users.", sent))
}
