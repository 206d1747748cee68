package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "expensely/internal/errors"
	"expensely/internal/middleware"
	"expensely/internal/notify"
	"expensely/internal/profile"
)

// ProfileProvider returns the profile of an authenticated user.
type ProfileProvider interface {
	Get(ctx context.Context, userID string) (*profile.Profile, error)
}

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// getProfile resolves the caller's profile and feeds it the OS theme hint
// sent with the request.
func getProfile(c *gin.Context, profiles ProfileProvider) (*profile.Profile, error) {
	userID, err := getUserID(c)
	if err != nil {
		return nil, err
	}
	p, err := profiles.Get(c.Request.Context(), userID)
	if err != nil {
		return nil, err
	}
	if dark, ok := middleware.SystemDark(c); ok {
		p.Signal.Set(dark)
	}
	return p, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	appErr := middleware.Resolve(c, err)
	c.JSON(appErr.StatusCode, middleware.ErrorBody(appErr))
}

// failWrite reports a failed write to the user's notifications and the client.
func failWrite(c *gin.Context, p *profile.Profile, err error) {
	appErr := middleware.Resolve(c, err)
	p.Notifications.Show(appErr.Message, notify.WithSeverity(notify.Error))
	c.JSON(appErr.StatusCode, middleware.ErrorBody(appErr))
}

func badRequest(err error) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode" example:"404"`
	Code       string `json:"code" example:"TRANSACTION_NOT_FOUND"`
	Message    string `json:"message" example:"Transaction not found"`
}

// HealthCheck reports liveness.
// @Summary     Health check
// @Tags        health
// @Produce     json
// @Success     200 {object} map[string]string
// @Router      /health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
