package services

import (
	"fmt"
	"testing"

	"greenscore-service/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory sqlite database with the full schema.
// cache=shared keeps the pooled connections pointed at the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.TokenTransaction{},
		&models.Challenge{},
		&models.ChallengeParticipation{},
		&models.SocialConnection{},
		&models.Referral{},
		&models.UserAchievement{},
		&models.UploadedBill{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()

	user := models.User{
		ID:           uuid.NewString(),
		Email:        fmt.Sprintf("%s@example.com", uuid.NewString()),
		PasswordHash: "x",
		Name:         name,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// stubAwarder records awards and can be told to fail.
type stubAwarder struct {
	fail   bool
	awards []stubAward
}

type stubAward struct {
	UserID   string
	Action   string
	Tokens   float64
	Metadata map[string]any
}

func (s *stubAwarder) Award(userID, action string, tokens float64, metadata map[string]any) (*models.TokenTransaction, error) {
	if s.fail {
		return nil, fmt.Errorf("ledger unavailable")
	}
	s.awards = append(s.awards, stubAward{UserID: userID, Action: action, Tokens: tokens, Metadata: metadata})
	return &models.TokenTransaction{
		ID:     uuid.NewString(),
		UserID: userID,
		Action: action,
		Tokens: tokens,
		Status: models.TransactionStatusCompleted,
	}, nil
}
