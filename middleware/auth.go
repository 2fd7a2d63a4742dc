// greenscore-service/middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// UserIDContextKey is where authenticated handlers read the user id from.
const UserIDContextKey = "user_id"

func parseUserID(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return sub, nil
}

// UserContextMiddleware validates a Bearer token and attaches the user id.
//
// Usage:
//
//	app.Post("/api/wallet/connect", middleware.UserContextMiddleware(secret), authService.ConnectWallet)
func UserContextMiddleware(secret string) func(*fiber.Ctx) error {
	key := []byte(secret)
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false, "error": "Missing bearer token",
			})
		}

		userID, err := parseUserID(strings.TrimPrefix(header, "Bearer "), key)
		if err != nil {
			log.Printf("[Auth] ❌ Token rejected for %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false, "error": "Unauthorized",
			})
		}

		c.Locals(UserIDContextKey, userID)
		return c.Next()
	}
}

// SSEAuthMiddleware validates `token` from the query string. EventSource
// cannot set headers, so SSE endpoints authenticate via query param.
//
// Usage:
//
//	app.Get("/api/notifications/stream", middleware.SSEAuthMiddleware(secret), hub.StreamNotifications)
func SSEAuthMiddleware(secret string) func(*fiber.Ctx) error {
	key := []byte(secret)
	return func(c *fiber.Ctx) error {
		tokenString := strings.TrimSpace(c.Query("token"))
		if tokenString == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false, "error": "Missing token in query",
			})
		}

		userID, err := parseUserID(tokenString, key)
		if err != nil {
			log.Printf("[SSEAuth] ❌ Token rejected for %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false, "error": "Unauthorized",
			})
		}

		c.Locals(UserIDContextKey, userID)
		return c.Next()
	}
}
