package engine

import (
	"errors"
	"fmt"
)

// RoundLimiter counts resolution rounds and enforces a maximum.
//
// Each resolution has its own RoundLimiter. Check is called before every
// round that would invoke deferred callbacks; a chain that keeps producing
// new Deferred parameters is stopped instead of looping forever.
type RoundLimiter struct {
	maxRounds int
	current   int
}

// NewRoundLimiter creates a limiter allowing maxRounds rounds.
func NewRoundLimiter(maxRounds int) *RoundLimiter {
	return &RoundLimiter{maxRounds: maxRounds}
}

// Check counts one round and returns *RoundsExceededError when it would
// exceed the limit.
func (l *RoundLimiter) Check() error {
	if l.current >= l.maxRounds {
		return &RoundsExceededError{Rounds: l.current, Limit: l.maxRounds}
	}
	l.current++
	return nil
}

// Reset sets the round count back to 0.
func (l *RoundLimiter) Reset() {
	l.current = 0
}

// Current returns the number of rounds started so far.
func (l *RoundLimiter) Current() int {
	return l.current
}

// MaxRounds returns the limit.
func (l *RoundLimiter) MaxRounds() int {
	return l.maxRounds
}

// RoundsExceededError is returned when a resolution needs more rounds than
// allowed.
type RoundsExceededError struct {
	Rounds int // Rounds completed
	Limit  int // Maximum allowed rounds
}

// Error implements the error interface.
func (e *RoundsExceededError) Error() string {
	return fmt.Sprintf("resolution exceeded max rounds: %d rounds completed, limit %d",
		e.Rounds, e.Limit)
}

// IsRoundsExceededError returns true if the error is a RoundsExceededError.
// Uses errors.As to handle wrapped errors.
func IsRoundsExceededError(err error) bool {
	var rx *RoundsExceededError
	return errors.As(err, &rx)
}
