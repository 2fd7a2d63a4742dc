package models

import "time"

// Challenge is a read-mostly catalog row. Participants is a raw counter bumped
// on each successful join — never decremented, never derived.
type Challenge struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Slug         string         `gorm:"uniqueIndex;not null" json:"slug"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	Participants int64          `gorm:"default:0" json:"participants"`
	Reward       float64        `gorm:"not null" json:"reward"`
	TimeLeft     string         `gorm:"size:32" json:"timeLeft"`
	Requirements map[string]int `gorm:"serializer:json" json:"requirements"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"createdAt"`
}

// ChallengeParticipationStatus values
const (
	ParticipationStatusActive    = "active"
	ParticipationStatusCompleted = "completed"
)

// ChallengeParticipation — at most one per (user, challenge), enforced by the
// composite unique index.
type ChallengeParticipation struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string    `gorm:"not null;uniqueIndex:idx_user_challenge" json:"userId"`
	ChallengeID uint      `gorm:"not null;uniqueIndex:idx_user_challenge" json:"challengeId"`
	JoinedAt    time.Time `gorm:"autoCreateTime" json:"joinedAt"`
	Progress    int       `gorm:"default:0" json:"progress"`
	Completed   bool      `gorm:"default:false" json:"completed"`
	Status      string    `gorm:"type:varchar(16);default:'active'" json:"status"`
}

// DefaultChallenges is the seeded catalog (slugs are filled in at seed time).
var DefaultChallenges = []Challenge{
	{
		ID:           1,
		Title:        "Energy Reduction Challenge",
		Description:  "Reduce your energy usage by 20% this month",
		Participants: 1247,
		Reward:       50,
		TimeLeft:     "12 days",
		Requirements: map[string]int{"energyReduction": 20},
	},
	{
		ID:           2,
		Title:        "Carbon Footprint Challenge",
		Description:  "Lower your carbon emissions by 25%",
		Participants: 892,
		Reward:       75,
		TimeLeft:     "8 days",
		Requirements: map[string]int{"carbonReduction": 25},
	},
	{
		ID:           3,
		Title:        "Appliance Efficiency Challenge",
		Description:  "Optimize 5 appliances for better efficiency",
		Participants: 634,
		Reward:       30,
		TimeLeft:     "15 days",
		Requirements: map[string]int{"appliancesOptimized": 5},
	},
}
