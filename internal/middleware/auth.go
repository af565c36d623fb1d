package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/wpq-drafts/internal/handlers"
	"github.com/localnerve/wpq-drafts/internal/services"
	"github.com/localnerve/wpq-drafts/internal/types"
)

// SessionCookie is the Authorizer session cookie name.
const SessionCookie = "cookie_session"

// initializer is implemented by validators that connect on first use.
type initializer interface {
	IsInitialized() bool
	Init(requestProtocol, requestHost string) error
}

// AuthAdmin validates that the request has admin role authorization
func AuthAdmin(v services.SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, v, []string{"admin"}, "authorization.admin")
	}
}

// AuthUser validates that the request has user role authorization
func AuthUser(v services.SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, v, []string{"user"}, "authorization.user")
	}
}

// authorize performs the authorization check
func authorize(c *fiber.Ctx, v services.SessionValidator, roles []string, errorType string) error {
	// Get session cookie
	session := c.Cookies(SessionCookie)
	if session == "" {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: fmt.Sprintf("Authorizer cookie %q not found", SessionCookie),
			Type:    errorType,
		}
	}

	// The Authorizer client needs the redirect URL of the first request
	if init, ok := v.(initializer); ok && !init.IsInitialized() {
		if err := init.Init(c.Protocol(), c.Hostname()); err != nil {
			return &types.CustomError{
				Code:    fiber.StatusServiceUnavailable,
				Message: fmt.Sprintf("Authorizer unavailable: %v", err),
				Type:    errorType,
			}
		}
	}

	user, err := v.ValidateSession(session, roles)
	if err != nil {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: fmt.Sprintf("Invalid session: %v", err),
			Type:    errorType,
		}
	}

	c.Locals(handlers.UserLocal, user)
	return c.Next()
}
