package services

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"greenscore-service/events"
	"greenscore-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	maxLiveNotifications = 3
	notificationTTL      = 5 * time.Second
)

// Notification is one transient dashboard card. Cards are never persisted —
// they live in the hub until they expire or get pushed out by newer ones.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Tokens    float64   `json:"tokens,omitempty"`
	Score     float64   `json:"score,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

var ecoMessages = []string{
	"You're making the planet greener! 🌍",
	"Sustainability level up! Keep going! 🚀",
	"Your eco-impact is growing! 🌱",
	"Amazing progress on your green journey! ✨",
	"You're an environmental champion! 🏆",
}

var titleCaser = cases.Title(language.English)

// NotificationHub keeps at most three live cards per user and fans new cards
// out to any open SSE streams.
type NotificationHub struct {
	mu      sync.Mutex
	cards   map[string][]Notification
	streams map[string]map[chan Notification]struct{}
}

func NewNotificationHub() *NotificationHub {
	return &NotificationHub{
		cards:   make(map[string][]Notification),
		streams: make(map[string]map[chan Notification]struct{}),
	}
}

// Push converts a reward event into a card.
func (h *NotificationHub) Push(ev events.RewardEvent) Notification {
	n := Notification{
		ID:      uuid.NewString(),
		Type:    ev.Type,
		Title:   notificationTitle(ev.Action, ev.Type),
		Message: notificationMessage(ev.Action, ev.Type),
		Tokens:  ev.Tokens,
		Score:   ScoreDelta(ev.Action, ev.Tokens),
	}
	if ev.Type == events.TypeError || ev.Type == events.TypeSuccess {
		n.Tokens = 0
		n.Score = 0
	}
	h.add(ev.UserID, n)
	return n
}

// PushAchievement emits the unlock card for a crossed threshold.
func (h *NotificationHub) PushAchievement(userID string, ach models.AchievementType) Notification {
	n := Notification{
		ID:      uuid.NewString(),
		Type:    events.TypeAchievement,
		Title:   "🎉 Achievement Unlocked!",
		Message: fmt.Sprintf("%s %s — %s", ach.Icon, ach.Title, ach.Description),
		Tokens:  ach.RewardTokens,
		Score:   float64(ach.RewardScore),
	}
	h.add(userID, n)
	return n
}

func (h *NotificationHub) add(userID string, n Notification) {
	now := time.Now()
	n.CreatedAt = now
	n.ExpiresAt = now.Add(notificationTTL)

	h.mu.Lock()
	live := h.cards[userID]
	if len(live) >= maxLiveNotifications {
		live = live[:maxLiveNotifications-1]
	}
	h.cards[userID] = append([]Notification{n}, live...)

	for ch := range h.streams[userID] {
		select {
		case ch <- n:
		default: // slow stream, drop rather than block the dispatch goroutine
		}
	}
	h.mu.Unlock()
}

// Live returns the unexpired cards for a user, newest first.
func (h *NotificationHub) Live(userID string) []Notification {
	now := time.Now()
	h.mu.Lock()
	defer h.mu.Unlock()

	live := h.cards[userID][:0:0]
	for _, n := range h.cards[userID] {
		if n.ExpiresAt.After(now) {
			live = append(live, n)
		}
	}
	h.cards[userID] = live

	out := make([]Notification, len(live))
	copy(out, live)
	return out
}

func (h *NotificationHub) subscribe(userID string) chan Notification {
	ch := make(chan Notification, 8)
	h.mu.Lock()
	if h.streams[userID] == nil {
		h.streams[userID] = make(map[chan Notification]struct{})
	}
	h.streams[userID][ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *NotificationHub) unsubscribe(userID string, ch chan Notification) {
	h.mu.Lock()
	delete(h.streams[userID], ch)
	h.mu.Unlock()
}

func notificationTitle(action, kind string) string {
	switch kind {
	case events.TypeError:
		return "❌ Oops!"
	case events.TypeSuccess:
		return "✅ Success!"
	}
	switch {
	case strings.Contains(action, "Tip Completed"):
		return "🎯 Eco Tip Mastered!"
	case strings.Contains(action, "Challenge"):
		return "🏆 Challenge Conquered!"
	case strings.Contains(action, "Wallet Connected"):
		return "💰 Wallet Connected!"
	case strings.Contains(action, "Bill Upload"):
		return "📄 Bill Analyzed!"
	case strings.Contains(action, "Setup Completed"):
		return "⚡ Setup Complete!"
	case action != "":
		return "🌱 " + titleCaser.String(action) + "!"
	default:
		return "🌱 Great Job!"
	}
}

// notificationMessage rotates through the eco messages deterministically so
// identical events render identical cards. Error/success cards carry the
// action text itself.
func notificationMessage(action, kind string) string {
	if kind == events.TypeError || kind == events.TypeSuccess {
		return action
	}
	return ecoMessages[len(action)%len(ecoMessages)]
}

// --- Handlers ---

// ListNotifications handles GET /api/notifications?userId=
func (h *NotificationHub) ListNotifications(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "User ID required",
		})
	}

	live := h.Live(userID)
	return c.JSON(fiber.Map{
		"success":       true,
		"notifications": live,
		"count":         len(live),
	})
}

// StreamNotifications streams cards over SSE for the authenticated user.
// Requires the SSE auth middleware to have set user_id from the query token.
func (h *NotificationHub) StreamNotifications(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false, "error": "Unauthorized",
		})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	ch := h.subscribe(userID)
	ctx := c.Context()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer h.unsubscribe(userID, ch)

		keepalive := time.NewTicker(15 * time.Second)
		defer keepalive.Stop()

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case n := <-ch:
				payload, err := json.Marshal(n)
				if err != nil {
					log.Printf("SSE marshal error for user %s: %v", userID, err)
					continue
				}
				fmt.Fprintf(w, "event: notification\ndata: %s\n\n", payload)
				if err := w.Flush(); err != nil {
					// Client disconnected
					return
				}
			case <-keepalive.C:
				w.WriteString(":\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	})

	return nil
}
