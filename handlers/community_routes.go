// handlers/community_routes.go
package handlers

import (
	"greenscore-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupCommunityRoutes(app *fiber.App, challenges *services.ChallengeService, social *services.SocialService, referrals *services.ReferralService) {
	// Challenges
	app.Get("/api/challenges", challenges.ListCatalog)
	app.Post("/api/challenges/join", challenges.JoinChallenge)
	app.Get("/api/challenges/join", challenges.ListUserChallenges)

	// Social graph
	app.Post("/api/social/follow", social.FollowUser)
	app.Get("/api/social/follow", social.ListConnections)

	// Referral pipeline
	app.Post("/api/referrals/track", referrals.TrackReferral)
	app.Put("/api/referrals/track", referrals.CompleteReferral)
	app.Get("/api/referrals/track", referrals.ListReferrals)
}
