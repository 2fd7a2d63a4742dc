package events

import (
	"context"
	"strings"
	"time"
)

// Notification card kinds carried on reward events.
const (
	TypeScore       = "score"
	TypeTokens      = "tokens"
	TypeAchievement = "achievement"
	TypeChallenge   = "challenge"
	TypeTip         = "tip"
	TypeError       = "error"
	TypeSuccess     = "success"
)

// RewardChannel is the pub/sub channel shared by all processes.
const RewardChannel = "greenscore:rewards"

// RewardEvent is the contract every award-producing component publishes after
// a successful ledger write. The score keeper and notification hub are the
// only consumers in-process; external bridges may subscribe over redis.
type RewardEvent struct {
	UserID string    `json:"userId"`
	Action string    `json:"action"`
	Tokens float64   `json:"tokens"`
	Type   string    `json:"type"`
	At     time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev RewardEvent) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, handler func(RewardEvent)) error
}

// Bus is both ends of the reward pipeline.
type Bus interface {
	Publisher
	Subscriber
}

// ClassifyAction maps a free-text action label onto a card kind.
func ClassifyAction(action string) string {
	switch {
	case strings.Contains(action, "Tip Completed"):
		return TypeTip
	case strings.Contains(action, "Challenge"):
		return TypeChallenge
	case strings.Contains(action, "Wallet Connected"):
		return TypeTokens
	case strings.Contains(action, "Bill Upload"):
		return TypeTokens
	default:
		return TypeScore
	}
}
