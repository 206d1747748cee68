package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "expensely/internal/errors"
	"expensely/internal/logger"
	"expensely/internal/middleware"
	"expensely/internal/models"
	"expensely/internal/services"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userService   services.UserServicer
	auditService  services.AuditServicer
	tokens        *middleware.TokenManager
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer, auditService services.AuditServicer, tokens *middleware.TokenManager, secureCookies bool) *AuthHandler {
	return &AuthHandler{userService: userService, auditService: auditService, tokens: tokens, secureCookies: secureCookies}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	FullName string `json:"fullName" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SessionResponse is returned by login and refresh.
type SessionResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// UserResponse represents the user data in the response
type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, FullName: u.FullName}
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a new user with full name, email and password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} UserResponse "User registered"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, badRequest(err))
		return
	}

	user, err := h.userService.CreateUser(req.Email, req.Password, req.FullName)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, services.AuditRegister, "user", user.ID, c.ClientIP(), nil)

	c.JSON(http.StatusCreated, newUserResponse(user))
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate a user and set the access and refresh cookies
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} SessionResponse "User authenticated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     423 {object} ErrorResponse "Account locked"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, badRequest(err))
		return
	}

	user, err := h.userService.AttemptLogin(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.issueTokens(c, user); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, services.AuditLogin, "user", user.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, SessionResponse{ID: user.ID, Email: user.Email})
}

// Refresh rotates the refresh token and issues a new access token
// @Summary     Refresh session
// @Description Exchange the refresh cookie for new access and refresh cookies
// @Tags        auth
// @Produce     json
// @Success     200 {object} SessionResponse "Session refreshed"
// @Failure     401 {object} ErrorResponse "Invalid refresh token"
// @Router      /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie(middleware.RefreshTokenCookie)
	if err != nil || token == "" {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}

	claims, err := h.tokens.ValidateRefreshToken(token)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired refresh token"))
		return
	}

	stored, err := h.userService.GetRefreshTokenHash(claims.UserID)
	if err != nil || stored == "" || stored != middleware.HashToken(token) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired refresh token"))
		return
	}

	user, err := h.userService.GetUserByID(claims.UserID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := h.issueTokens(c, user); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, services.AuditRefresh, "user", user.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, SessionResponse{ID: user.ID, Email: user.Email})
}

// Logout clears the session cookies and revokes the refresh token
// @Summary     Logout user
// @Description Clear session cookies; succeeds even without a valid session
// @Tags        auth
// @Success     204 "Logged out"
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if userID := h.sessionUser(c); userID != "" {
		if err := h.userService.ClearRefreshTokenHash(userID); err != nil {
			logger.Get().Warnw("failed to revoke refresh token", "user_id", userID, "error", err)
		}
		h.auditService.Log(userID, services.AuditLogout, "user", userID, c.ClientIP(), nil)
	}

	h.setCookie(c, middleware.AccessTokenCookie, "", -1)
	h.setCookie(c, middleware.RefreshTokenCookie, "", -1)
	c.Status(http.StatusNoContent)
}

// Me returns the authenticated user
// @Summary     Current user
// @Description Get the authenticated user's identity
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} UserResponse "Current user"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *AuthHandler) issueTokens(c *gin.Context, user *models.User) error {
	access, err := h.tokens.GenerateAccessToken(user)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	refresh, err := h.tokens.GenerateRefreshToken(user)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := h.userService.StoreRefreshTokenHash(user.ID, middleware.HashToken(refresh)); err != nil {
		return err
	}

	h.setCookie(c, middleware.AccessTokenCookie, access, int(h.tokens.AccessTTL().Seconds()))
	h.setCookie(c, middleware.RefreshTokenCookie, refresh, int(h.tokens.RefreshTTL().Seconds()))
	return nil
}

// sessionUser identifies the caller from whichever token is still valid.
func (h *AuthHandler) sessionUser(c *gin.Context) string {
	if token, err := c.Cookie(middleware.AccessTokenCookie); err == nil {
		if claims, err := h.tokens.ValidateAccessToken(token); err == nil {
			return claims.UserID
		}
	}
	if token, err := c.Cookie(middleware.RefreshTokenCookie); err == nil {
		if claims, err := h.tokens.ValidateRefreshToken(token); err == nil {
			return claims.UserID
		}
	}
	return ""
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.secureCookies, true)
}
