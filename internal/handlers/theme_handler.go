package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"expensely/internal/middleware"
	"expensely/internal/profile"
	"expensely/internal/theme"
)

// ThemeHandler exposes the theme store of the caller's profile.
type ThemeHandler struct {
	profiles ProfileProvider
}

// NewThemeHandler creates a new ThemeHandler
func NewThemeHandler(profiles ProfileProvider) *ThemeHandler {
	return &ThemeHandler{profiles: profiles}
}

// ThemeResponse describes the stored and applied theme.
type ThemeResponse struct {
	Preference theme.Preference `json:"preference" example:"system"`
	Effective  theme.Effective  `json:"effective" example:"dark"`
	SystemDark bool             `json:"systemDark"`
	Classes    []string         `json:"classes"`
}

// SetThemeRequest selects a theme preference.
type SetThemeRequest struct {
	Preference string `json:"preference" binding:"required,theme_preference" example:"dark"`
}

// newThemeResponse resolves "system" against the hint carried by this
// request when there is one; the profile's signal only holds the latest
// hint from any of the user's devices.
func newThemeResponse(c *gin.Context, p *profile.Profile) ThemeResponse {
	pref := p.Theme.Preference()
	systemDark := p.Theme.SystemPrefersDark()
	if dark, ok := middleware.SystemDark(c); ok {
		systemDark = dark
	}
	effective := theme.Resolve(pref, systemDark)

	classes := make([]string, 0, 1)
	for _, class := range p.Document.Classes() {
		if class != theme.DarkClass {
			classes = append(classes, class)
		}
	}
	if effective == theme.EffectiveDark {
		classes = append(classes, theme.DarkClass)
	}

	return ThemeResponse{
		Preference: pref,
		Effective:  effective,
		SystemDark: systemDark,
		Classes:    classes,
	}
}

// GetTheme returns the current theme
// @Summary     Get theme
// @Description Stored preference and the effective theme after resolving "system" against the Sec-CH-Prefers-Color-Scheme hint
// @Tags        theme
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} ThemeResponse
// @Router      /theme [get]
func (h *ThemeHandler) GetTheme(c *gin.Context) {
	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newThemeResponse(c, p))
}

// SetTheme stores a theme preference
// @Summary     Set theme
// @Tags        theme
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SetThemeRequest true "Theme preference"
// @Success     200 {object} ThemeResponse
// @Failure     400 {object} ErrorResponse "Invalid theme"
// @Router      /theme [put]
func (h *ThemeHandler) SetTheme(c *gin.Context) {
	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, badRequest(err))
		return
	}
	pref, err := theme.ParsePreference(req.Preference)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := p.Theme.SetTheme(c.Request.Context(), pref); err != nil {
		failWrite(c, p, err)
		return
	}

	c.JSON(http.StatusOK, newThemeResponse(c, p))
}

// ToggleTheme advances light -> dark -> system -> light
// @Summary     Toggle theme
// @Tags        theme
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} ThemeResponse
// @Router      /theme/toggle [post]
func (h *ThemeHandler) ToggleTheme(c *gin.Context) {
	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if _, err := p.Theme.ToggleTheme(c.Request.Context()); err != nil {
		failWrite(c, p, err)
		return
	}

	c.JSON(http.StatusOK, newThemeResponse(c, p))
}
