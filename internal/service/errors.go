// Package service runs the review scheduler and the gamification engine
// against storage. Every write is one database transaction, serialized per
// user.
package service

import (
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrWordNotFound is returned for an unknown vocabulary id
	ErrWordNotFound = errors.New("word not found")
	// ErrSessionNotFound is returned for an unknown session or one owned by another user
	ErrSessionNotFound = errors.New("session not found")
)

// Clock returns the current time
type Clock func() time.Time

// UTCClock is the default clock of every service
func UTCClock() time.Time {
	return time.Now().UTC()
}
