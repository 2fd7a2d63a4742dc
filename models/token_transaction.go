package models

import "time"

// TransactionStatus — every award lands as "completed"; the column exists so a
// future settlement flow can stage entries without a schema change.
const TransactionStatusCompleted = "completed"

// TokenTransaction is a single append-only ledger entry. Entries are never
// edited or deleted; a user's balance is always the sum of their entries, so
// there is no mutable balance column to drift.
type TokenTransaction struct {
	ID        string         `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string         `gorm:"index;not null" json:"userId"`
	Action    string         `gorm:"not null" json:"action"`
	Tokens    float64        `gorm:"not null" json:"tokens"`
	Metadata  map[string]any `gorm:"serializer:json" json:"metadata,omitempty"`
	Status    string         `gorm:"type:varchar(16);default:'completed'" json:"status"`
	Timestamp time.Time      `gorm:"autoCreateTime;index" json:"timestamp"`
}
