package services

import (
	"errors"
	"strings"
)

// Sentinel errors for the handler layer. NotFound-class errors surface as 404,
// conflict- and validation-class errors as 400, everything else as 500 with a
// generic message.
var (
	ErrChallengeNotFound   = errors.New("Challenge not found")
	ErrAlreadyJoined       = errors.New("Already joined this challenge")
	ErrUserNotFound        = errors.New("User not found")
	ErrSelfFollow          = errors.New("Cannot follow yourself")
	ErrAlreadyFollowing    = errors.New("Already following this user")
	ErrInvalidReferralCode = errors.New("Invalid referral code")
	ErrSelfReferral        = errors.New("Cannot refer yourself")
	ErrAlreadyReferred     = errors.New("User already referred")
	ErrNoPendingReferral   = errors.New("No pending referral found")
	ErrUserExists          = errors.New("User already exists")
	ErrInvalidCredentials  = errors.New("Invalid credentials")
)

// isUniqueViolation detects a unique-index insert failure without pinning the
// driver (postgres in prod, sqlite in tests). The indexes are the backstop for
// the read-then-check paths, so a violation always means a duplicate request.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
