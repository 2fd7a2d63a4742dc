package models

import (
	"strings"
	"time"
)

// Referral lifecycle: pending → completed → rewarded. A referral only moves to
// rewarded once the referrer's bonus actually lands in the ledger; if that
// award fails the row stays at completed and the sweeper retries it later.
const (
	ReferralStatusPending   = "pending"
	ReferralStatusCompleted = "completed"
	ReferralStatusRewarded  = "rewarded"
)

// ReferralCodePrefix — every valid referral code starts with this.
const ReferralCodePrefix = "ref-"

// ReferralBonusTokens is the flat bonus credited to the referrer.
const ReferralBonusTokens = 15

// Referral tracks who brought a user in. A user can be referred only once,
// ever — enforced by the unique index on RefereeID.
type Referral struct {
	ID            string     `gorm:"primaryKey;type:uuid" json:"id"`
	ReferrerID    string     `gorm:"index;not null" json:"referrerId"`
	RefereeID     string     `gorm:"uniqueIndex;not null" json:"newUserId"`
	ReferralCode  string     `gorm:"not null" json:"referralCode"`
	Status        string     `gorm:"type:varchar(16);default:'pending';index" json:"status"`
	TriggerAction string     `json:"triggerAction,omitempty"` // first eco-action that completed it
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt"`
	RewardedAt    *time.Time `json:"rewardedAt"`
}

// ValidReferralCode reports whether code carries the required prefix.
func ValidReferralCode(code string) bool {
	return strings.HasPrefix(code, ReferralCodePrefix) && len(code) > len(ReferralCodePrefix)
}
