package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"expensely/internal/preferences"
)

// PreferencesHandler serves the profile and settings pages.
type PreferencesHandler struct {
	profiles ProfileProvider
}

// NewPreferencesHandler creates a new PreferencesHandler
func NewPreferencesHandler(profiles ProfileProvider) *PreferencesHandler {
	return &PreferencesHandler{profiles: profiles}
}

// GetPreferences returns the user's preferences
// @Summary     Get preferences
// @Tags        preferences
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} preferences.Preferences
// @Router      /preferences [get]
func (h *PreferencesHandler) GetPreferences(c *gin.Context) {
	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}

	prefs, err := p.Preferences.Load(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences replaces the user's preferences
// @Summary     Update preferences
// @Description Validates and stores preferences; the theme is applied to the theme store
// @Tags        preferences
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body preferences.Preferences true "Preferences"
// @Success     200 {object} preferences.Preferences
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /preferences [put]
func (h *PreferencesHandler) UpdatePreferences(c *gin.Context) {
	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req preferences.Preferences
	if err := c.ShouldBindJSON(&req); err != nil {
		failWrite(c, p, badRequest(err))
		return
	}

	saved, err := p.Preferences.Save(c.Request.Context(), req)
	if err != nil {
		failWrite(c, p, err)
		return
	}

	p.Notifications.Show("Settings saved")
	c.JSON(http.StatusOK, saved)
}
