package services

import (
	"testing"

	"greenscore-service/models"

	"github.com/stretchr/testify/require"
)

func TestTrackReferralValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewReferralService(db, &stubAwarder{})

	tests := []struct {
		name       string
		referrerID string
		refereeID  string
		code       string
		wantErr    error
	}{
		{"missing prefix", "u1", "u2", "abc-123", ErrInvalidReferralCode},
		{"prefix only", "u1", "u2", "ref-", ErrInvalidReferralCode},
		{"empty code", "u1", "u2", "", ErrInvalidReferralCode},
		{"self referral", "u1", "u1", "ref-abc123", ErrSelfReferral},
		{"valid", "u1", "u2", "ref-abc123", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Track(tt.referrerID, tt.refereeID, tt.code)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRefereeCanOnlyBeReferredOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewReferralService(db, &stubAwarder{})

	_, err := svc.Track("u1", "u2", "ref-alpha")
	require.NoError(t, err)

	// Same referrer, same referee.
	_, err = svc.Track("u1", "u2", "ref-alpha")
	require.ErrorIs(t, err, ErrAlreadyReferred)

	// A different referrer cannot claim the same referee either.
	_, err = svc.Track("u3", "u2", "ref-beta")
	require.ErrorIs(t, err, ErrAlreadyReferred)
}

func TestReferralLifecycleRewarded(t *testing.T) {
	db := newTestDB(t)
	awarder := &stubAwarder{}
	svc := NewReferralService(db, awarder)

	tracked, err := svc.Track("referrer", "referee", "ref-abc123")
	require.NoError(t, err)
	require.Equal(t, models.ReferralStatusPending, tracked.Status)
	require.Nil(t, tracked.CompletedAt)

	completed, err := svc.Complete("referee", "Setup Completed")
	require.NoError(t, err)
	require.Equal(t, models.ReferralStatusRewarded, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	require.NotNil(t, completed.RewardedAt)
	require.Equal(t, "Setup Completed", completed.TriggerAction)

	require.Len(t, awarder.awards, 1)
	award := awarder.awards[0]
	require.Equal(t, "referrer", award.UserID)
	require.Equal(t, "Successful Referral", award.Action)
	require.Equal(t, float64(models.ReferralBonusTokens), award.Tokens)
	require.Equal(t, "referee", award.Metadata["referredUserId"])

	// A second qualifying action finds nothing pending.
	_, err = svc.Complete("referee", "Tip Completed")
	require.ErrorIs(t, err, ErrNoPendingReferral)
}

func TestReferralStuckAtCompletedWhenAwardFails(t *testing.T) {
	db := newTestDB(t)
	awarder := &stubAwarder{fail: true}
	svc := NewReferralService(db, awarder)

	_, err := svc.Track("referrer", "referee", "ref-abc123")
	require.NoError(t, err)

	completed, err := svc.Complete("referee", "Setup Completed")
	require.NoError(t, err)
	require.Equal(t, models.ReferralStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	require.Nil(t, completed.RewardedAt)
	require.Empty(t, awarder.awards)
}

func TestSweepStuckReferrals(t *testing.T) {
	db := newTestDB(t)
	awarder := &stubAwarder{fail: true}
	svc := NewReferralService(db, awarder)

	_, err := svc.Track("referrer", "referee", "ref-abc123")
	require.NoError(t, err)
	_, err = svc.Complete("referee", "Setup Completed")
	require.NoError(t, err)

	// Ledger still down: nothing recovers.
	require.Equal(t, 0, svc.SweepStuckReferrals())

	// Ledger back: the sweep advances the stuck row and pays once.
	awarder.fail = false
	require.Equal(t, 1, svc.SweepStuckReferrals())
	require.Len(t, awarder.awards, 1)

	var stored models.Referral
	require.NoError(t, db.First(&stored, "referee_id = ?", "referee").Error)
	require.Equal(t, models.ReferralStatusRewarded, stored.Status)

	// Nothing left to sweep.
	require.Equal(t, 0, svc.SweepStuckReferrals())
	require.Len(t, awarder.awards, 1)
}

func TestReferralStats(t *testing.T) {
	db := newTestDB(t)
	awarder := &stubAwarder{}
	svc := NewReferralService(db, awarder)

	_, err := svc.Track("referrer", "r1", "ref-a1")
	require.NoError(t, err)
	_, err = svc.Track("referrer", "r2", "ref-a2")
	require.NoError(t, err)
	_, err = svc.Complete("r1", "Setup Completed")
	require.NoError(t, err)

	_, stats, err := svc.Query("referrer")
	require.NoError(t, err)
	require.Equal(t, 2, stats.Total)
	require.Equal(t, 1, stats.Pending)
	require.Equal(t, 1, stats.Rewarded)
	require.Equal(t, float64(models.ReferralBonusTokens), stats.TotalRewards)
}
