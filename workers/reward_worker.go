package workers

import (
	"context"
	"log"

	"greenscore-service/events"
	"greenscore-service/services"
)

// RewardWorker is the single consumer of the reward pipeline. It folds every
// event into the score keeper first, then emits notification cards — including
// one card per achievement the event unlocked.
type RewardWorker struct {
	Bus    events.Subscriber
	Scores *services.ScoreKeeper
	Hub    *services.NotificationHub
}

func NewRewardWorker(bus events.Subscriber, scores *services.ScoreKeeper, hub *services.NotificationHub) *RewardWorker {
	return &RewardWorker{Bus: bus, Scores: scores, Hub: hub}
}

func (w *RewardWorker) Start(ctx context.Context) error {
	err := w.Bus.Subscribe(ctx, func(ev events.RewardEvent) {
		unlocked := w.Scores.Apply(ev)
		w.Hub.Push(ev)
		for _, ach := range unlocked {
			w.Hub.PushAchievement(ev.UserID, ach)
		}
	})
	if err != nil {
		return err
	}

	log.Println("🚀 Reward worker subscribed")
	return nil
}
