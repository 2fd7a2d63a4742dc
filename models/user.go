package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the local account record created at signup. The wallet address is a
// cosmetic string shown on the dashboard — there is no custody behind it.
type User struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	Email         string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string `gorm:"not null" json:"-"`
	Name          string `gorm:"not null" json:"name"`
	WalletAddress string `gorm:"size:64" json:"walletAddress"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updatedAt" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
