package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"greenscore-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// WalletConnectBonusTokens is the one-time bonus for linking a wallet.
const WalletConnectBonusTokens = 10

type AuthService struct {
	DB        *gorm.DB
	JWTSecret []byte
	Ledger    TokenAwarder
}

func NewAuthService(db *gorm.DB, secret string, ledger TokenAwarder) *AuthService {
	return &AuthService{DB: db, JWTSecret: []byte(secret), Ledger: ledger}
}

func (s *AuthService) issueToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.JWTSecret)
}

// randomWalletAddress generates the placeholder 0x address assigned at signup.
func randomWalletAddress() string {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return "0x" + hex.EncodeToString(buf)
}

func (s *AuthService) signup(email, password, name string) (*models.User, error) {
	var count int64
	if err := s.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:            uuid.NewString(),
		Email:         email,
		PasswordHash:  string(hash),
		Name:          name,
		WalletAddress: randomWalletAddress(),
	}
	if err := s.DB.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	log.Printf("👤 New user signed up: %s", email)
	return &user, nil
}

func (s *AuthService) login(email, password string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// --- Handlers ---

// Authenticate handles POST /api/auth with action=login|signup.
func (s *AuthService) Authenticate(c *fiber.Ctx) error {
	var req struct {
		Action   string `json:"action"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "Invalid request body",
		})
	}
	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "Email and password required",
		})
	}

	var (
		user *models.User
		err  error
	)
	switch req.Action {
	case "signup":
		user, err = s.signup(req.Email, req.Password, req.Name)
		if errors.Is(err, ErrUserExists) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false, "error": "User already exists",
			})
		}
	case "login":
		user, err = s.login(req.Email, req.Password)
		if errors.Is(err, ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false, "error": "Invalid credentials",
			})
		}
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "Unknown action",
		})
	}
	if err != nil {
		log.Printf("DB Error during auth (%s): %v", req.Action, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Authentication failed",
		})
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		log.Printf("Error signing token for %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Authentication failed",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
		"token":   token,
	})
}

// ConnectWallet handles POST /api/wallet/connect. Saving the address and
// crediting the bonus are idempotent per user at the ledger's discretion;
// reconnecting just overwrites the address.
func (s *AuthService) ConnectWallet(c *fiber.Ctx) error {
	var req struct {
		UserID        string `json:"userId"`
		WalletAddress string `json:"walletAddress"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "Invalid request body",
		})
	}
	if req.UserID == "" || req.WalletAddress == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "User ID and wallet address required",
		})
	}

	res := s.DB.Model(&models.User{}).
		Where("id = ?", req.UserID).
		Update("wallet_address", req.WalletAddress)
	if res.Error != nil {
		log.Printf("DB Error connecting wallet for %s: %v", req.UserID, res.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Failed to connect wallet",
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false, "error": "User not found",
		})
	}

	tx, err := s.Ledger.Award(req.UserID, "Wallet Connected", WalletConnectBonusTokens, map[string]any{
		"walletAddress": req.WalletAddress,
	})
	if err != nil {
		log.Printf("DB Error awarding wallet bonus for %s: %v", req.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Failed to award wallet bonus",
		})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"transaction": tx,
		"message":     "Wallet connected! Bonus GreenTokens awarded.",
	})
}
