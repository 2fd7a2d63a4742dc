package models

import "time"

// Achievement metrics — which accumulator a threshold is checked against.
const (
	AchievementMetricScore  = "score"
	AchievementMetricTokens = "tokens"
)

// AchievementType: static config for a threshold-gated unlock.
type AchievementType struct {
	Code         string  `json:"code"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Icon         string  `json:"icon"`
	Rarity       string  `json:"rarity"` // common, rare, epic, legendary
	Metric       string  `json:"metric"`
	Threshold    float64 `json:"threshold"`
	RewardTokens float64 `json:"rewardTokens"`
	RewardScore  int     `json:"rewardScore"`
}

// UserAchievement: unlocked instance. The composite unique index guarantees a
// threshold can only ever be claimed once per user, even if two crossings are
// detected for the same event stream.
type UserAchievement struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     string    `gorm:"not null;uniqueIndex:idx_user_achievement" json:"userId"`
	Code       string    `gorm:"not null;uniqueIndex:idx_user_achievement" json:"code"`
	UnlockedAt time.Time `gorm:"autoCreateTime" json:"unlockedAt"`
}

// AchievementTriggers mirror the dashboard milestones.
var AchievementTriggers = []AchievementType{
	{
		Code:         "FIRST_STEPS",
		Title:        "First Steps",
		Description:  "You've taken your first step towards sustainability!",
		Icon:         "🌱",
		Rarity:       "common",
		Metric:       AchievementMetricScore,
		Threshold:    1270,
		RewardTokens: 5,
		RewardScore:  10,
	},
	{
		Code:         "RISING_ECO_WARRIOR",
		Title:        "Rising Eco-Warrior",
		Description:  "You've reached 1500 GreenScore points!",
		Icon:         "⭐",
		Rarity:       "rare",
		Metric:       AchievementMetricScore,
		Threshold:    1500,
		RewardTokens: 15,
		RewardScore:  30,
	},
	{
		Code:         "SUSTAINABILITY_CHAMPION",
		Title:        "Sustainability Champion",
		Description:  "Amazing! 2000 GreenScore points achieved!",
		Icon:         "🏆",
		Rarity:       "epic",
		Metric:       AchievementMetricScore,
		Threshold:    2000,
		RewardTokens: 25,
		RewardScore:  50,
	},
	{
		Code:         "TOKEN_COLLECTOR",
		Title:        "Token Collector",
		Description:  "You've earned 100 GreenTokens!",
		Icon:         "💰",
		Rarity:       "rare",
		Metric:       AchievementMetricTokens,
		Threshold:    100,
		RewardTokens: 10,
		RewardScore:  25,
	},
}
