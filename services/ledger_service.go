package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"greenscore-service/events"
	"greenscore-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerService owns the append-only GreenToken ledger. Awards always land as
// completed — eligibility is the caller's responsibility — and every award is
// followed by a reward event on the bus.
type LedgerService struct {
	DB  *gorm.DB
	Bus events.Publisher
}

func NewLedgerService(db *gorm.DB, bus events.Publisher) *LedgerService {
	return &LedgerService{DB: db, Bus: bus}
}

// Award appends one completed transaction and publishes the reward event.
// There is no reversal path — an erroneous award stays on the books.
func (s *LedgerService) Award(userID, action string, tokens float64, metadata map[string]any) (*models.TokenTransaction, error) {
	tx := &models.TokenTransaction{
		ID:       uuid.NewString(),
		UserID:   userID,
		Action:   action,
		Tokens:   tokens,
		Metadata: metadata,
		Status:   models.TransactionStatusCompleted,
	}
	if err := s.DB.Create(tx).Error; err != nil {
		return nil, err
	}

	if s.Bus != nil {
		ev := events.RewardEvent{
			UserID: userID,
			Action: action,
			Tokens: tokens,
			Type:   events.ClassifyAction(action),
			At:     time.Now(),
		}
		if err := s.Bus.Publish(context.Background(), ev); err != nil {
			// The ledger write already committed; a dropped event only costs a
			// notification card.
			log.Printf("[LEDGER] failed to publish reward event for %s: %v", userID, err)
		}
	}

	log.Printf("🪙 Awarded %v GreenTokens to %s (%s)", tokens, userID, action)
	return tx, nil
}

// Balance sums every transaction for the user.
func (s *LedgerService) Balance(userID string) (float64, error) {
	var balance float64
	err := s.DB.Model(&models.TokenTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(tokens), 0)").
		Scan(&balance).Error
	return balance, err
}

// Recent returns the newest limit transactions for the user.
func (s *LedgerService) Recent(userID string, limit int) ([]models.TokenTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var txs []models.TokenTransaction
	err := s.DB.Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}

// --- Handlers ---

// AwardTokens handles POST /api/tokens/award
func (s *LedgerService) AwardTokens(c *fiber.Ctx) error {
	var req struct {
		UserID   string         `json:"userId"`
		Action   string         `json:"action"`
		Tokens   float64        `json:"tokens"`
		Metadata map[string]any `json:"metadata"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Token award failed",
		})
	}

	tx, err := s.Award(req.UserID, req.Action, req.Tokens, req.Metadata)
	if err != nil {
		log.Printf("DB Error creating token transaction: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Token award failed",
		})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"transaction": tx,
		"message":     fmt.Sprintf("Awarded %v GreenTokens for %s", req.Tokens, req.Action),
	})
}

// GetBalance handles GET /api/tokens/award?userId=
func (s *LedgerService) GetBalance(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "User ID required",
		})
	}

	balance, err := s.Balance(userID)
	if err != nil {
		log.Printf("DB Error summing balance for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Failed to fetch balance",
		})
	}

	txs, err := s.Recent(userID, 10)
	if err != nil {
		log.Printf("DB Error fetching transactions for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Failed to fetch transactions",
		})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"balance":      balance,
		"transactions": txs,
	})
}
