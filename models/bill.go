package models

// Bill processing lifecycle.
const (
	BillStatusProcessing = "processing"
	BillStatusCompleted  = "completed"
	BillStatusError      = "error"
)

// BillUploadBonusTokens is the flat bonus for a successfully processed bill.
const BillUploadBonusTokens = 5

// UploadedBill is one utility bill dropped on the dashboard. The file itself
// lives in R2; only the object URL is kept here.
type UploadedBill struct {
	ID           string  `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string  `gorm:"index;not null" json:"userId"`
	FileName     string  `gorm:"not null" json:"fileName"`
	FileURL      string  `gorm:"type:text" json:"fileUrl,omitempty"`
	SizeBytes    int64   `json:"sizeBytes"`
	Status       string  `gorm:"type:varchar(16);default:'processing';index" json:"status"`
	UnitsUsed    float64 `json:"unitsUsed,omitempty"`
	TokensEarned float64 `json:"tokensEarned,omitempty"`

	Timestamps
}
