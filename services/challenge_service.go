package services

import (
	"errors"
	"fmt"
	"log"

	"greenscore-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type ChallengeService struct {
	DB *gorm.DB
}

func NewChallengeService(db *gorm.DB) *ChallengeService {
	return &ChallengeService{DB: db}
}

// SeedCatalog inserts the default challenges if they are missing (idempotent).
func (s *ChallengeService) SeedCatalog() error {
	for _, ch := range models.DefaultChallenges {
		ch.Slug = slug.Make(ch.Title)
		if err := s.DB.Where("id = ?", ch.ID).FirstOrCreate(&ch).Error; err != nil {
			return fmt.Errorf("seed challenge %d: %w", ch.ID, err)
		}
	}
	return nil
}

// Join creates a participation for (userID, challengeID) and bumps the
// participant counter by exactly one, all in one transaction. The composite
// unique index backstops the duplicate check under concurrent joins.
func (s *ChallengeService) Join(userID string, challengeID uint) (*models.ChallengeParticipation, *models.Challenge, error) {
	var participation models.ChallengeParticipation
	var challenge models.Challenge

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&challenge, "id = ?", challengeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChallengeNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.ChallengeParticipation{}).
			Where("user_id = ? AND challenge_id = ?", userID, challengeID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyJoined
		}

		participation = models.ChallengeParticipation{
			ID:          uuid.NewString(),
			UserID:      userID,
			ChallengeID: challengeID,
			Progress:    0,
			Completed:   false,
			Status:      models.ParticipationStatusActive,
		}
		if err := tx.Create(&participation).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyJoined
			}
			return err
		}

		if err := tx.Model(&models.Challenge{}).
			Where("id = ?", challengeID).
			UpdateColumn("participants", gorm.Expr("participants + 1")).Error; err != nil {
			return err
		}
		challenge.Participants++
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	log.Printf("🏆 %s joined challenge %q (%d participants)", userID, challenge.Title, challenge.Participants)
	return &participation, &challenge, nil
}

// UserParticipations lists a user's joined challenges.
func (s *ChallengeService) UserParticipations(userID string) ([]models.ChallengeParticipation, error) {
	var parts []models.ChallengeParticipation
	err := s.DB.Where("user_id = ?", userID).
		Order("joined_at DESC").
		Find(&parts).Error
	return parts, err
}

// --- Handlers ---

// JoinChallenge handles POST /api/challenges/join
func (s *ChallengeService) JoinChallenge(c *fiber.Ctx) error {
	var req struct {
		UserID      string `json:"userId"`
		ChallengeID uint   `json:"challengeId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "Invalid request body",
		})
	}

	participation, challenge, err := s.Join(req.UserID, req.ChallengeID)
	switch {
	case errors.Is(err, ErrChallengeNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false, "error": ErrChallengeNotFound.Error(),
		})
	case errors.Is(err, ErrAlreadyJoined):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": ErrAlreadyJoined.Error(),
		})
	case err != nil:
		log.Printf("DB Error joining challenge: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Failed to join challenge",
		})
	}

	// The reward is informational — the caller credits it through the ledger.
	return c.JSON(fiber.Map{
		"success":       true,
		"participation": participation,
		"message":       fmt.Sprintf("Successfully joined %s!", challenge.Title),
		"reward":        challenge.Reward,
	})
}

// ListUserChallenges handles GET /api/challenges/join?userId=
func (s *ChallengeService) ListUserChallenges(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "User ID required",
		})
	}

	parts, err := s.UserParticipations(userID)
	if err != nil {
		log.Printf("DB Error listing participations for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Failed to fetch challenges",
		})
	}

	active := 0
	for _, p := range parts {
		if p.Status == models.ParticipationStatusActive {
			active++
		}
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"challenges":  parts,
		"activeCount": active,
	})
}

// ListCatalog handles GET /api/challenges
func (s *ChallengeService) ListCatalog(c *fiber.Ctx) error {
	var challenges []models.Challenge
	if err := s.DB.Order("id ASC").Find(&challenges).Error; err != nil {
		log.Printf("DB Error fetching challenge catalog: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Failed to fetch challenges",
		})
	}
	return c.JSON(fiber.Map{"success": true, "challenges": challenges})
}
