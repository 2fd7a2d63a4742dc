package services

import (
	"errors"
	"fmt"
	"log"

	"greenscore-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SocialService struct {
	DB *gorm.DB
}

func NewSocialService(db *gorm.DB) *SocialService {
	return &SocialService{DB: db}
}

// Follow creates the ordered (follower, following) edge. The reverse edge is
// independent. Self-follow is rejected outright.
func (s *SocialService) Follow(followerID, followingID string) (*models.SocialConnection, *models.User, error) {
	if followerID == followingID {
		return nil, nil, ErrSelfFollow
	}

	var follower, following models.User
	if err := s.DB.First(&follower, "id = ?", followerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	if err := s.DB.First(&following, "id = ?", followingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	var count int64
	if err := s.DB.Model(&models.SocialConnection{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return nil, nil, err
	}
	if count > 0 {
		return nil, nil, ErrAlreadyFollowing
	}

	conn := models.SocialConnection{
		ID:          uuid.NewString(),
		FollowerID:  followerID,
		FollowingID: followingID,
		Status:      "active",
	}
	if err := s.DB.Create(&conn).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, nil, ErrAlreadyFollowing
		}
		return nil, nil, err
	}

	log.Printf("🤝 %s now follows %s", follower.Name, following.Name)
	return &conn, &following, nil
}

// ConnectionWithUser is a connection joined with the counterpart's profile.
type ConnectionWithUser struct {
	models.SocialConnection
	User *userSummary `json:"user,omitempty"`
}

type userSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	WalletAddress string `json:"walletAddress,omitempty"`
}

// Connections lists edges in one direction joined with the counterpart user.
func (s *SocialService) Connections(userID, direction string) ([]ConnectionWithUser, error) {
	var conns []models.SocialConnection
	q := s.DB.Order("created_at DESC")
	if direction == "followers" {
		q = q.Where("following_id = ?", userID)
	} else {
		q = q.Where("follower_id = ?", userID)
	}
	if err := q.Find(&conns).Error; err != nil {
		return nil, err
	}

	counterparts := make([]string, 0, len(conns))
	for _, c := range conns {
		if direction == "followers" {
			counterparts = append(counterparts, c.FollowerID)
		} else {
			counterparts = append(counterparts, c.FollowingID)
		}
	}

	usersByID := map[string]models.User{}
	if len(counterparts) > 0 {
		var users []models.User
		if err := s.DB.Where("id IN ?", counterparts).Find(&users).Error; err != nil {
			return nil, err
		}
		for _, u := range users {
			usersByID[u.ID] = u
		}
	}

	out := make([]ConnectionWithUser, 0, len(conns))
	for _, c := range conns {
		target := c.FollowingID
		if direction == "followers" {
			target = c.FollowerID
		}
		item := ConnectionWithUser{SocialConnection: c}
		if u, ok := usersByID[target]; ok {
			item.User = &userSummary{ID: u.ID, Name: u.Name, Email: u.Email, WalletAddress: u.WalletAddress}
		}
		out = append(out, item)
	}
	return out, nil
}

// --- Handlers ---

// FollowUser handles POST /api/social/follow
func (s *SocialService) FollowUser(c *fiber.Ctx) error {
	var req struct {
		FollowerID  string `json:"followerId"`
		FollowingID string `json:"followingId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "Invalid request body",
		})
	}

	conn, following, err := s.Follow(req.FollowerID, req.FollowingID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false, "error": ErrUserNotFound.Error(),
		})
	case errors.Is(err, ErrAlreadyFollowing), errors.Is(err, ErrSelfFollow):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": err.Error(),
		})
	case err != nil:
		log.Printf("DB Error creating connection: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Failed to follow user",
		})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"connection": conn,
		"message":    fmt.Sprintf("Now following %s!", following.Name),
	})
}

// ListConnections handles GET /api/social/follow?userId=&type=following|followers
func (s *SocialService) ListConnections(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "User ID required",
		})
	}
	direction := c.Query("type", "following")

	conns, err := s.Connections(userID, direction)
	if err != nil {
		log.Printf("DB Error listing connections for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Failed to fetch connections",
		})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"connections": conns,
		"count":       len(conns),
	})
}
