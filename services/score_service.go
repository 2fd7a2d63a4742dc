package services

import (
	"log"
	"math"
	"strings"
	"sync"

	"greenscore-service/events"
	"greenscore-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseScore is every user's starting GreenScore.
const BaseScore = 1250

// ScoreDelta applies the action-type multiplier to a token amount.
func ScoreDelta(action string, tokens float64) float64 {
	mult := 2.0
	switch {
	case strings.Contains(action, "Tip Completed"):
		mult = 2
	case strings.Contains(action, "Challenge"):
		mult = 3
	case strings.Contains(action, "Bill Upload"):
		mult = 1.5
	case strings.Contains(action, "Wallet Connected"):
		mult = 2
	case strings.Contains(action, "Setup Completed"):
		mult = 2
	}
	return math.Round(tokens * mult)
}

type userTotals struct {
	Score  float64
	Tokens float64
}

// ScoreKeeper is the single authoritative accumulator for GreenScore and
// token totals. Apply is only ever invoked from the reward worker's dispatch
// goroutine, so two events can never interleave their threshold checks; the
// mutex covers concurrent reads from handlers.
type ScoreKeeper struct {
	DB *gorm.DB

	mu     sync.RWMutex
	totals map[string]*userTotals
}

func NewScoreKeeper(db *gorm.DB) *ScoreKeeper {
	return &ScoreKeeper{DB: db, totals: make(map[string]*userTotals)}
}

// Apply folds one reward event into the user's totals and returns any
// achievements unlocked by the crossing.
func (k *ScoreKeeper) Apply(ev events.RewardEvent) []models.AchievementType {
	if ev.Type == events.TypeError || ev.Type == events.TypeSuccess {
		return nil
	}

	k.mu.Lock()
	t, ok := k.totals[ev.UserID]
	if !ok {
		t = &userTotals{Score: BaseScore}
		k.totals[ev.UserID] = t
	}

	prevScore, prevTokens := t.Score, t.Tokens
	t.Score += ScoreDelta(ev.Action, ev.Tokens)
	t.Tokens += ev.Tokens
	newScore, newTokens := t.Score, t.Tokens
	k.mu.Unlock()

	var unlocked []models.AchievementType
	for _, trigger := range models.AchievementTriggers {
		prev, now := prevScore, newScore
		if trigger.Metric == models.AchievementMetricTokens {
			prev, now = prevTokens, newTokens
		}
		if prev < trigger.Threshold && now >= trigger.Threshold {
			if k.unlock(ev.UserID, trigger) {
				unlocked = append(unlocked, trigger)
			}
		}
	}
	return unlocked
}

// unlock records the achievement once per (user, code); the unique index
// makes a second crossing a no-op even across processes.
func (k *ScoreKeeper) unlock(userID string, trigger models.AchievementType) bool {
	var count int64
	if err := k.DB.Model(&models.UserAchievement{}).
		Where("user_id = ? AND code = ?", userID, trigger.Code).
		Count(&count).Error; err != nil {
		log.Printf("DB Error checking achievement %s: %v", trigger.Code, err)
		return false
	}
	if count > 0 {
		return false
	}

	ua := models.UserAchievement{
		ID:     uuid.NewString(),
		UserID: userID,
		Code:   trigger.Code,
	}
	if err := k.DB.Create(&ua).Error; err != nil {
		if !isUniqueViolation(err) {
			log.Printf("DB Error unlocking achievement %s: %v", trigger.Code, err)
		}
		return false
	}

	log.Printf("🎖️ Achievement unlocked: %s → %s", trigger.Title, userID)
	return true
}

// Snapshot returns the user's current score and token totals.
func (k *ScoreKeeper) Snapshot(userID string) (score, tokens float64) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if t, ok := k.totals[userID]; ok {
		return t.Score, t.Tokens
	}
	return BaseScore, 0
}

// Achievements returns unlocked achievements joined with their static config.
func (k *ScoreKeeper) Achievements(userID string) ([]fiber.Map, error) {
	var rows []models.UserAchievement
	if err := k.DB.Where("user_id = ?", userID).
		Order("unlocked_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	byCode := map[string]models.AchievementType{}
	for _, t := range models.AchievementTriggers {
		byCode[t.Code] = t
	}

	out := make([]fiber.Map, 0, len(rows))
	for _, r := range rows {
		t := byCode[r.Code]
		out = append(out, fiber.Map{
			"code":        r.Code,
			"title":       t.Title,
			"description": t.Description,
			"icon":        t.Icon,
			"rarity":      t.Rarity,
			"rewards":     fiber.Map{"tokens": t.RewardTokens, "score": t.RewardScore},
			"unlockedAt":  r.UnlockedAt,
		})
	}
	return out, nil
}

// GetScore handles GET /api/score?userId=
func (k *ScoreKeeper) GetScore(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "User ID required",
		})
	}

	score, tokens := k.Snapshot(userID)
	achievements, err := k.Achievements(userID)
	if err != nil {
		log.Printf("DB Error fetching achievements for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Failed to fetch achievements",
		})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"userId":       userID,
		"score":        score,
		"tokens":       tokens,
		"achievements": achievements,
	})
}
