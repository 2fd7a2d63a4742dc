package services

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"time"

	"greenscore-service/events"
	"greenscore-service/models"
	"greenscore-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BillService handles utility bill uploads: store the file in R2, estimate
// usage, and credit the flat bonus through the ledger.
type BillService struct {
	DB     *gorm.DB
	Ledger TokenAwarder
	Bus    events.Publisher

	// Upload is swappable in tests; defaults to R2.
	Upload func(fh *multipart.FileHeader, key string) (string, error)
}

func NewBillService(db *gorm.DB, ledger TokenAwarder, bus events.Publisher) *BillService {
	return &BillService{DB: db, Ledger: ledger, Bus: bus, Upload: utils.UploadBillFile}
}

// estimateUnits derives a rough kWh figure from the file size until real bill
// parsing exists. Deterministic so re-uploads of the same bill agree.
func estimateUnits(sizeBytes int64) float64 {
	units := 150 + float64(sizeBytes%350)
	return units
}

// UploadBill handles POST /api/bills/upload (multipart: userId, file).
func (s *BillService) UploadBill(c *fiber.Ctx) error {
	userID := c.FormValue("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "User ID required",
		})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "Bill file required",
		})
	}

	bill := models.UploadedBill{
		ID:        uuid.NewString(),
		UserID:    userID,
		FileName:  fh.Filename,
		SizeBytes: fh.Size,
		Status:    models.BillStatusProcessing,
	}
	if err := s.DB.Create(&bill).Error; err != nil {
		log.Printf("DB Error creating bill record: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Failed to process bill",
		})
	}

	key := fmt.Sprintf("bills/%s/%s%s", userID, bill.ID, filepath.Ext(fh.Filename))
	fileURL, err := s.Upload(fh, key)
	if err != nil {
		log.Printf("❌ Bill upload to R2 failed for %s: %v", userID, err)
		s.DB.Model(&bill).Update("status", models.BillStatusError)
		if s.Bus != nil {
			_ = s.Bus.Publish(context.Background(), events.RewardEvent{
				UserID: userID,
				Action: "Bill upload failed. Please try again.",
				Type:   events.TypeError,
				At:     time.Now(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Failed to store bill",
		})
	}

	bill.FileURL = fileURL
	bill.Status = models.BillStatusCompleted
	bill.UnitsUsed = estimateUnits(fh.Size)
	bill.TokensEarned = models.BillUploadBonusTokens
	if err := s.DB.Save(&bill).Error; err != nil {
		log.Printf("DB Error finalizing bill %s: %v", bill.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Failed to process bill",
		})
	}

	tx, err := s.Ledger.Award(userID, "Bill Upload Bonus", models.BillUploadBonusTokens, map[string]any{
		"billId":    bill.ID,
		"fileName":  bill.FileName,
		"unitsUsed": bill.UnitsUsed,
	})
	if err != nil {
		log.Printf("DB Error awarding bill bonus for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Failed to award bill bonus",
		})
	}

	log.Printf("📄 Bill processed: %s (%s, %.0f units)", bill.FileName, userID, bill.UnitsUsed)
	return c.JSON(fiber.Map{
		"success":     true,
		"bill":        bill,
		"transaction": tx,
		"message":     "Bill analyzed! Bonus GreenTokens awarded.",
	})
}

// ListBills handles GET /api/bills?userId=
func (s *BillService) ListBills(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "User ID required",
		})
	}

	var bills []models.UploadedBill
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bills).Error
	if err != nil {
		log.Printf("DB Error listing bills for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Failed to fetch bills",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"bills":   bills,
	})
}
