package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/task-api/modules/auth"
)

// UserContextKey is the key under which the authenticated identity is stored
// in the Fiber context.
const UserContextKey = "user"

// AuthMiddleware validates the bearer token and deposits the authenticated
// identity in the request context. A missing credential is reported distinctly
// from an invalid or expired one.
func AuthMiddleware(authPort auth.Port) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Authorization header is required",
			})
		}

		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid authorization header format. Use: Bearer <token>",
			})
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := authPort.ValidateToken(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired token",
			})
		}

		c.Locals(UserContextKey, claims)
		return c.Next()
	}
}
