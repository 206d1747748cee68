package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "expensely/internal/errors"
	"expensely/internal/notify"
)

// NotificationHandler exposes the caller's active notifications.
type NotificationHandler struct {
	profiles ProfileProvider
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(profiles ProfileProvider) *NotificationHandler {
	return &NotificationHandler{profiles: profiles}
}

// ShowNotificationRequest queues a notification.
type ShowNotificationRequest struct {
	Message    string `json:"message" binding:"required,max=500"`
	Severity   string `json:"severity" binding:"omitempty,severity" example:"info"`
	DurationMs *int64 `json:"durationMs" example:"3000"`
}

// ListNotifications returns active notifications, oldest first
// @Summary     List notifications
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} notify.Notification
// @Router      /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p.Notifications.Active())
}

// ShowNotification queues a notification
// @Summary     Show notification
// @Description durationMs <= 0 keeps the notification until dismissed
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ShowNotificationRequest true "Notification"
// @Success     201 {object} notify.Notification
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /notifications [post]
func (h *NotificationHandler) ShowNotification(c *gin.Context) {
	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ShowNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, badRequest(err))
		return
	}

	opts := []notify.Option{}
	if req.Severity != "" {
		opts = append(opts, notify.WithSeverity(notify.Severity(req.Severity)))
	}
	if req.DurationMs != nil {
		opts = append(opts, notify.WithDuration(time.Duration(*req.DurationMs)*time.Millisecond))
	}

	c.JSON(http.StatusCreated, p.Notifications.Show(req.Message, opts...))
}

// DismissNotification removes a notification immediately
// @Summary     Dismiss notification
// @Tags        notifications
// @Security    BearerAuth
// @Param       id path string true "Notification ID"
// @Success     204 "Dismissed"
// @Failure     404 {object} ErrorResponse "Not active"
// @Router      /notifications/{id} [delete]
func (h *NotificationHandler) DismissNotification(c *gin.Context) {
	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if !p.Notifications.Dismiss(c.Param("id")) {
		respondWithError(c, apperrors.ErrNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}
