// handlers/reward_routes.go
package handlers

import (
	"greenscore-service/middleware"
	"greenscore-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRewardRoutes(app *fiber.App, ledger *services.LedgerService, scores *services.ScoreKeeper, hub *services.NotificationHub, jwtSecret string) {
	// Token ledger
	app.Post("/api/tokens/award", ledger.AwardTokens)
	app.Get("/api/tokens/award", ledger.GetBalance)

	// GreenScore + achievements
	app.Get("/api/score", scores.GetScore)

	// Notification cards
	app.Get("/api/notifications", hub.ListNotifications)

	// 🔐 SSE stream authenticates via ?token= (EventSource cannot set headers)
	app.Get("/api/notifications/stream", middleware.SSEAuthMiddleware(jwtSecret), hub.StreamNotifications)
}
