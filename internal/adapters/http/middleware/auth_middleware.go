package middleware

import (
	"errors"
	"strings"

	"idle-resource-hub/internal/core/domain"
	"idle-resource-hub/internal/core/services"
	"idle-resource-hub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthMiddleware
const (
	LocalUserID    = "userID"
	LocalUsername  = "username"
	LocalRole      = "role"
	LocalSessionID = "sessionID"
)

// AccessTokenCookie is the cookie that carries the access token for browser clients
const AccessTokenCookie = "access_token"

// BearerToken reads the access token from the Authorization header,
// falling back to the access token cookie
func BearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return c.Cookies(AccessTokenCookie)
}

// AuthMiddleware resolves the bearer token to a live session
func AuthMiddleware(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Token from Authorization header or cookie
		accessToken := BearerToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 2. Validate session
		session, err := sessions.ValidateSession(c.UserContext(), accessToken)
		if err != nil {
			if errors.Is(err, services.ErrSessionNotFound) {
				return response.Unauthorized(c, "Invalid or expired session")
			}
			return response.FromError(c, err)
		}

		// 3. Set user info in context
		c.Locals(LocalUserID, session.UserID)
		c.Locals(LocalUsername, session.User.Username)
		c.Locals(LocalRole, session.User.Role)
		c.Locals(LocalSessionID, session.SessionID)

		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowed := range allowedRoles {
			if role == string(allowed) {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only ADMIN role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}

// ManagerOrAdmin middleware allows MANAGER or ADMIN roles
func ManagerOrAdmin() fiber.Handler {
	return RoleMiddleware(domain.RoleManager, domain.RoleAdmin)
}

// ActorFrom builds the acting user from request locals
func ActorFrom(c *fiber.Ctx) services.Actor {
	actor := services.Actor{IPAddress: c.IP()}
	if id, ok := c.Locals(LocalUserID).(uint); ok {
		actor.UserID = id
	}
	if name, ok := c.Locals(LocalUsername).(string); ok {
		actor.Username = name
	}
	if role, ok := c.Locals(LocalRole).(string); ok {
		actor.Role = domain.Role(role)
	}
	return actor
}
