// handlers/auth_routes.go
package handlers

import (
	"greenscore-service/middleware"
	"greenscore-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService, jwtSecret string) {
	app.Post("/api/auth", authService.Authenticate)

	// 🔐 Wallet linking requires a valid session token
	app.Post("/api/wallet/connect", middleware.UserContextMiddleware(jwtSecret), authService.ConnectWallet)
}
