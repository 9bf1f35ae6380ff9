package handlers

import (
	"errors"
	"strconv"
	"time"

	"idle-resource-hub/internal/adapters/http/middleware"
	"idle-resource-hub/internal/config"
	"idle-resource-hub/internal/core/services"
	"idle-resource-hub/internal/pkg/response"
	"idle-resource-hub/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

const refreshTokenCookie = "refresh_token"

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
	cookie      config.CookieConfig
	rememberTTL time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, userService *services.UserService, cookie config.CookieConfig, rememberTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		cookie:      cookie,
		rememberTTL: rememberTTL,
	}
}

// ValidateRequest represents validate request body
type ValidateRequest struct {
	AccessToken string `json:"accessToken"`
}

// RefreshRequest represents refresh request body
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Login handles user login
// @Summary Login user
// @Description Authenticate user and open a session
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Login credentials"
// @Success 200 {object} services.AuthResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}

	result, err := h.authService.Login(c.UserContext(), &req, services.ClientInfo{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid username or password")
		case errors.Is(err, services.ErrUserInactive):
			return response.Forbidden(c, "User account is inactive")
		default:
			return response.FromError(c, err)
		}
	}

	h.setAuthCookies(c, result.SessionTokens)
	return response.OK(c, result)
}

// Logout handles user logout
// @Summary Logout user
// @Description Revoke the caller's session
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.MessageResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sessionID, _ := c.Locals(middleware.LocalSessionID).(string)

	if err := h.authService.Logout(c.UserContext(), sessionID); err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			return response.Unauthorized(c, "Invalid or expired session")
		}
		return response.FromError(c, err)
	}

	h.clearAuthCookies(c)
	return response.Message(c, "Logged out successfully")
}

// Validate handles access token validation
// @Summary Validate access token
// @Description Check whether an access token belongs to a live session
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ValidateRequest false "Access token; the Authorization header is used when empty"
// @Success 200 {object} services.ValidateResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/validate [post]
func (h *AuthHandler) Validate(c *fiber.Ctx) error {
	var req ValidateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}
	if req.AccessToken == "" {
		req.AccessToken = middleware.BearerToken(c)
	}
	if req.AccessToken == "" {
		return response.Unauthorized(c, "Access token required")
	}

	result, err := h.authService.Validate(c.UserContext(), req.AccessToken)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			return response.Unauthorized(c, "Invalid or expired session")
		}
		return response.FromError(c, err)
	}
	return response.OK(c, result)
}

// Refresh handles access token refresh
// @Summary Refresh access token
// @Description Issue a new access token; the refresh token stays the same
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest false "Refresh token; the refresh cookie is used when empty"
// @Success 200 {object} services.SessionTokens
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}
	if req.RefreshToken == "" {
		req.RefreshToken = c.Cookies(refreshTokenCookie)
	}
	if req.RefreshToken == "" {
		return response.Unauthorized(c, "Refresh token required")
	}

	tokens, err := h.authService.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			return response.Unauthorized(c, "Invalid or expired refresh token")
		}
		return response.FromError(c, err)
	}

	h.setAuthCookies(c, tokens)
	return response.OK(c, tokens)
}

// CleanupSessions handles session cleanup (Admin only)
// @Summary Clean up sessions
// @Description Delete invalid or old sessions and invalidate expired ones
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Param daysOld query int false "Retention in days" default(30)
// @Success 200 {object} services.CleanupResult
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /auth/sessions/cleanup [post]
func (h *AuthHandler) CleanupSessions(c *fiber.Ctx) error {
	daysOld, err := strconv.Atoi(c.Query("daysOld", "30"))
	if err != nil || daysOld < 1 {
		return response.BadRequest(c, "daysOld must be a positive integer")
	}

	result, err := h.authService.CleanupSessions(c.UserContext(), daysOld)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, result)
}

// Me handles getting the current user
// @Summary Get current user
// @Description Get the authenticated user's profile
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.LocalUserID).(uint)

	user, err := h.userService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, user)
}

// ChangePassword handles password change
// @Summary Change password
// @Description Change the authenticated user's password
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Old and new password"
// @Success 200 {object} response.MessageResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req services.ChangePasswordInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return response.FromError(c, err)
	}

	userID, _ := c.Locals(middleware.LocalUserID).(uint)
	if err := h.userService.ChangePassword(c.UserContext(), userID, &req); err != nil {
		if errors.Is(err, services.ErrOldPasswordWrong) {
			return response.BadRequest(c, "Old password is incorrect")
		}
		return response.FromError(c, err)
	}

	return response.Message(c, "Password changed successfully")
}

// setAuthCookies sets auth cookies for browser clients
func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, tokens *services.SessionTokens) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    tokens.AccessToken,
		Path:     "/",
		MaxAge:   tokens.ExpiresIn,
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cookie.SameSite,
		Domain:   h.cookie.Domain,
	})

	// the refresh token is only returned at login
	if tokens.RefreshToken == "" {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     refreshTokenCookie,
		Value:    tokens.RefreshToken,
		Path:     "/api/v1/auth",
		MaxAge:   int(h.rememberTTL.Seconds()),
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cookie.SameSite,
		Domain:   h.cookie.Domain,
	})
}

// clearAuthCookies clears auth cookies
func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-1 * time.Hour)
	for name, path := range map[string]string{
		middleware.AccessTokenCookie: "/",
		refreshTokenCookie:           "/api/v1/auth",
	} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     path,
			MaxAge:   -1,
			Expires:  expired,
			Secure:   h.cookie.Secure,
			HTTPOnly: true,
			SameSite: h.cookie.SameSite,
			Domain:   h.cookie.Domain,
		})
	}
}
