package services

import (
	"log"
	"time"

	"greenscore-service/models"

	"github.com/go-co-op/gocron/v2"
)

// StartRewardSweeper retries the referrer bonus for referrals stuck in
// completed (award failed at completion time). Runs until process exit.
func (s *ReferralService) StartRewardSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if n := s.SweepStuckReferrals(); n > 0 {
				log.Printf("✅ Reward sweeper recovered %d stuck referral(s)", n)
			}
		}),
	)
}

// SweepStuckReferrals re-attempts the award for every completed-but-unrewarded
// referral and returns how many advanced to rewarded.
func (s *ReferralService) SweepStuckReferrals() int {
	var stuck []models.Referral
	err := s.DB.Where("status = ?", models.ReferralStatusCompleted).Find(&stuck).Error
	if err != nil {
		log.Printf("[Sweeper] DB error: %v", err)
		return 0
	}

	recovered := 0
	for i := range stuck {
		s.reward(&stuck[i])
		if stuck[i].Status == models.ReferralStatusRewarded {
			recovered++
		}
	}
	return recovered
}
