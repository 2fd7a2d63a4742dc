package models

import "time"

// SocialConnection is an ordered follower→following edge. The composite unique
// index keeps the pair single-use; the reverse pair is an independent edge.
// There is no unfollow — connections are one-way and permanent.
type SocialConnection struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	FollowerID  string    `gorm:"not null;uniqueIndex:idx_follower_following" json:"followerId"`
	FollowingID string    `gorm:"not null;uniqueIndex:idx_follower_following" json:"followingId"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	Status      string    `gorm:"type:varchar(16);default:'active'" json:"status"`
}
