package services

import (
	"testing"

	"greenscore-service/events"
	"greenscore-service/models"

	"github.com/stretchr/testify/require"
)

func TestScoreDeltaMultipliers(t *testing.T) {
	tests := []struct {
		action string
		tokens float64
		want   float64
	}{
		{"Tip Completed: LED Bulbs", 10, 20},
		{"Challenge Reward: Energy Reduction", 10, 30},
		{"Bill Upload Bonus", 10, 15},
		{"Wallet Connected", 10, 20},
		{"Setup Completed", 10, 20},
		{"Successful Referral", 15, 30},
		{"Bill Upload Bonus", 5, 8}, // 7.5 rounds up
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ScoreDelta(tt.action, tt.tokens), tt.action)
	}
}

func TestApplyAccumulatesFromBase(t *testing.T) {
	db := newTestDB(t)
	keeper := NewScoreKeeper(db)

	score, tokens := keeper.Snapshot("u1")
	require.Equal(t, float64(BaseScore), score)
	require.Zero(t, tokens)

	keeper.Apply(events.RewardEvent{UserID: "u1", Action: "Wallet Connected", Tokens: 10, Type: events.TypeTokens})

	score, tokens = keeper.Snapshot("u1")
	require.Equal(t, 1270.0, score)
	require.Equal(t, 10.0, tokens)
}

func TestApplyIgnoresStatusEvents(t *testing.T) {
	db := newTestDB(t)
	keeper := NewScoreKeeper(db)

	require.Nil(t, keeper.Apply(events.RewardEvent{UserID: "u1", Action: "Something failed", Type: events.TypeError}))
	require.Nil(t, keeper.Apply(events.RewardEvent{UserID: "u1", Action: "Saved", Type: events.TypeSuccess}))

	score, tokens := keeper.Snapshot("u1")
	require.Equal(t, float64(BaseScore), score)
	require.Zero(t, tokens)
}

func TestFirstStepsUnlocksExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	keeper := NewScoreKeeper(db)

	// 1250 + 20 = 1270 crosses the first threshold.
	unlocked := keeper.Apply(events.RewardEvent{UserID: "u1", Action: "Tip Completed", Tokens: 10, Type: events.TypeTip})
	require.Len(t, unlocked, 1)
	require.Equal(t, "FIRST_STEPS", unlocked[0].Code)

	// Further gains above the threshold never re-fire it.
	unlocked = keeper.Apply(events.RewardEvent{UserID: "u1", Action: "Tip Completed", Tokens: 10, Type: events.TypeTip})
	require.Empty(t, unlocked)

	var count int64
	require.NoError(t, db.Model(&models.UserAchievement{}).
		Where("user_id = ? AND code = ?", "u1", "FIRST_STEPS").
		Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestOneEventCanUnlockMultipleAchievements(t *testing.T) {
	db := newTestDB(t)
	keeper := NewScoreKeeper(db)

	// 150 challenge tokens → +450 score (1250→1700) and tokens cross 100:
	// FIRST_STEPS, RISING_ECO_WARRIOR and TOKEN_COLLECTOR in one event.
	unlocked := keeper.Apply(events.RewardEvent{UserID: "u1", Action: "Challenge Reward", Tokens: 150, Type: events.TypeChallenge})

	codes := make([]string, 0, len(unlocked))
	for _, a := range unlocked {
		codes = append(codes, a.Code)
	}
	require.ElementsMatch(t, []string{"FIRST_STEPS", "RISING_ECO_WARRIOR", "TOKEN_COLLECTOR"}, codes)
}

func TestTokenCollectorThreshold(t *testing.T) {
	db := newTestDB(t)
	keeper := NewScoreKeeper(db)

	// Stay under both score thresholds while crossing 100 tokens:
	// 99 then 2 Bill Upload tokens → scores 1250+149+3, tokens 99→101.
	keeper.Apply(events.RewardEvent{UserID: "u1", Action: "Bill Upload Bonus", Tokens: 99, Type: events.TypeTokens})
	unlocked := keeper.Apply(events.RewardEvent{UserID: "u1", Action: "Bill Upload Bonus", Tokens: 2, Type: events.TypeTokens})

	require.Len(t, unlocked, 1)
	require.Equal(t, "TOKEN_COLLECTOR", unlocked[0].Code)
}

func TestAchievementsAreScopedPerUser(t *testing.T) {
	db := newTestDB(t)
	keeper := NewScoreKeeper(db)

	keeper.Apply(events.RewardEvent{UserID: "u1", Action: "Tip Completed", Tokens: 10, Type: events.TypeTip})
	unlocked := keeper.Apply(events.RewardEvent{UserID: "u2", Action: "Tip Completed", Tokens: 10, Type: events.TypeTip})
	require.Len(t, unlocked, 1)

	achievements, err := keeper.Achievements("u1")
	require.NoError(t, err)
	require.Len(t, achievements, 1)
	require.Equal(t, "First Steps", achievements[0]["title"])
}
