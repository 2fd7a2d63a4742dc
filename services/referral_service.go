package services

import (
	"errors"
	"log"
	"time"

	"greenscore-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenAwarder is what the referral machine needs from the ledger.
type TokenAwarder interface {
	Award(userID, action string, tokens float64, metadata map[string]any) (*models.TokenTransaction, error)
}

// ReferralService drives the pending → completed → rewarded lifecycle. The
// completed→rewarded hop depends on the ledger accepting the referrer bonus;
// a failed award leaves the row at completed for the sweeper to retry.
type ReferralService struct {
	DB     *gorm.DB
	Ledger TokenAwarder
}

func NewReferralService(db *gorm.DB, ledger TokenAwarder) *ReferralService {
	return &ReferralService{DB: db, Ledger: ledger}
}

// Track records a new pending referral. A referee can only ever be referred
// once, by anyone — the unique index on referee_id is the backstop.
func (s *ReferralService) Track(referrerID, refereeID, code string) (*models.Referral, error) {
	if !models.ValidReferralCode(code) {
		return nil, ErrInvalidReferralCode
	}
	if referrerID == refereeID {
		return nil, ErrSelfReferral
	}

	var count int64
	if err := s.DB.Model(&models.Referral{}).
		Where("referee_id = ?", refereeID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyReferred
	}

	referral := models.Referral{
		ID:           uuid.NewString(),
		ReferrerID:   referrerID,
		RefereeID:    refereeID,
		ReferralCode: code,
		Status:       models.ReferralStatusPending,
	}
	if err := s.DB.Create(&referral).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyReferred
		}
		return nil, err
	}

	log.Printf("🔗 Referral tracked: %s → %s (%s)", referrerID, refereeID, code)
	return &referral, nil
}

// Complete is called when the referee performs their first qualifying
// eco-action. The completed transition commits before the award is attempted,
// so a failed award can never un-complete the referral.
func (s *ReferralService) Complete(refereeID, action string) (*models.Referral, error) {
	var referral models.Referral
	err := s.DB.Where("referee_id = ? AND status = ?", refereeID, models.ReferralStatusPending).
		First(&referral).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoPendingReferral
		}
		return nil, err
	}

	now := time.Now()
	referral.Status = models.ReferralStatusCompleted
	referral.CompletedAt = &now
	referral.TriggerAction = action
	if err := s.DB.Save(&referral).Error; err != nil {
		return nil, err
	}

	s.reward(&referral)
	return &referral, nil
}

// reward credits the referrer and, only on success, advances the referral to
// rewarded. Failures are logged and left for the sweeper.
func (s *ReferralService) reward(referral *models.Referral) {
	_, err := s.Ledger.Award(referral.ReferrerID, "Successful Referral", models.ReferralBonusTokens, map[string]any{
		"referredUserId": referral.RefereeID,
		"triggerAction":  referral.TriggerAction,
	})
	if err != nil {
		log.Printf("⚠️  Referral %s stuck at completed — award failed: %v", referral.ID, err)
		return
	}

	now := time.Now()
	referral.Status = models.ReferralStatusRewarded
	referral.RewardedAt = &now
	if err := s.DB.Save(referral).Error; err != nil {
		log.Printf("⚠️  Referral %s rewarded but status save failed: %v", referral.ID, err)
	}
}

// ReferralStats aggregates a referrer's pipeline.
type ReferralStats struct {
	Total        int     `json:"total"`
	Pending      int     `json:"pending"`
	Completed    int     `json:"completed"`
	Rewarded     int     `json:"rewarded"`
	TotalRewards float64 `json:"totalRewards"`
}

// Query lists referrals where the user is the referrer, with per-state counts.
func (s *ReferralService) Query(userID string) ([]models.Referral, ReferralStats, error) {
	var referrals []models.Referral
	err := s.DB.Where("referrer_id = ?", userID).
		Order("created_at DESC").
		Find(&referrals).Error
	if err != nil {
		return nil, ReferralStats{}, err
	}

	stats := ReferralStats{Total: len(referrals)}
	for _, r := range referrals {
		switch r.Status {
		case models.ReferralStatusPending:
			stats.Pending++
		case models.ReferralStatusCompleted:
			stats.Completed++
		case models.ReferralStatusRewarded:
			stats.Rewarded++
		}
	}
	stats.TotalRewards = float64(stats.Rewarded) * models.ReferralBonusTokens
	return referrals, stats, nil
}

// --- Handlers ---

// TrackReferral handles POST /api/referrals/track
func (s *ReferralService) TrackReferral(c *fiber.Ctx) error {
	var req struct {
		ReferrerID   string `json:"referrerId"`
		NewUserID    string `json:"newUserId"`
		ReferralCode string `json:"referralCode"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "Invalid request body",
		})
	}

	referral, err := s.Track(req.ReferrerID, req.NewUserID, req.ReferralCode)
	switch {
	case errors.Is(err, ErrInvalidReferralCode),
		errors.Is(err, ErrSelfReferral),
		errors.Is(err, ErrAlreadyReferred):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": err.Error(),
		})
	case err != nil:
		log.Printf("DB Error tracking referral: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Failed to track referral",
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"referral": referral,
		"message":  "Referral tracked successfully!",
	})
}

// CompleteReferral handles PUT /api/referrals/track
func (s *ReferralService) CompleteReferral(c *fiber.Ctx) error {
	var req struct {
		NewUserID string `json:"newUserId"`
		Action    string `json:"action"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "Invalid request body",
		})
	}

	referral, err := s.Complete(req.NewUserID, req.Action)
	switch {
	case errors.Is(err, ErrNoPendingReferral):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false, "error": ErrNoPendingReferral.Error(),
		})
	case err != nil:
		log.Printf("DB Error completing referral: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Failed to complete referral",
		})
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"referral":      referral,
		"tokensAwarded": models.ReferralBonusTokens,
		"message":       "Referral completed and rewards distributed!",
	})
}

// ListReferrals handles GET /api/referrals/track?userId=
func (s *ReferralService) ListReferrals(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "User ID required",
		})
	}

	referrals, stats, err := s.Query(userID)
	if err != nil {
		log.Printf("DB Error listing referrals for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Failed to fetch referrals",
		})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"referrals": referrals,
		"stats":     stats,
	})
}
