// Package streak computes the daily continuity counter for a chat.
//
// All date arithmetic uses UTC calendar days. The counter is a symmetric
// property of the chat: a message in either direction on a given day keeps
// the streak alive.
package streak

import (
	"fmt"
	"time"

	"shortkat/internal/models"
)

// DateLayout is the stored form of a streak date.
const DateLayout = "2006-01-02"

// State classifies the relationship between the previous streak date and
// today.
type State int

const (
	// StateNever means no message was ever exchanged in this chat.
	StateNever State = iota
	// StateSameDay means a message was already sent today.
	StateSameDay
	// StateConsecutive means the last message was sent exactly one
	// calendar day ago.
	StateConsecutive
	// StateGap means at least one day was skipped, or the stored date is
	// in the future (clock skew between writers).
	StateGap
)

func (s State) String() string {
	switch s {
	case StateNever:
		return "never"
	case StateSameDay:
		return "same_day"
	case StateConsecutive:
		return "consecutive"
	default:
		return "gap"
	}
}

// Today truncates a wall-clock instant to its UTC calendar date string.
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}

// Classify determines the transition state for a streak given today's date.
// Malformed stored dates classify as StateGap so the streak restarts instead
// of wedging the chat.
func Classify(prev models.Streak, today string) State {
	if prev.LastDate == "" {
		return StateNever
	}
	if prev.LastDate == today {
		return StateSameDay
	}

	last, err := time.Parse(DateLayout, prev.LastDate)
	if err != nil {
		return StateGap
	}
	cur, err := time.Parse(DateLayout, today)
	if err != nil {
		return StateGap
	}

	if cur.Sub(last) == 24*time.Hour {
		return StateConsecutive
	}
	return StateGap
}

// Advance computes the next streak state after a message sent today.
// Pure and deterministic: same-day sends are a no-op, a consecutive day
// increments the count, any gap (or out-of-order date) resets it to 1.
// The count never drops to 0 here, since a message was in fact sent today.
func Advance(prev models.Streak, today string) (models.Streak, error) {
	if _, err := time.Parse(DateLayout, today); err != nil {
		return models.Streak{}, fmt.Errorf("invalid date %q: %w", today, err)
	}

	next := prev
	switch Classify(prev, today) {
	case StateNever, StateGap:
		next.Count = 1
		next.LastDate = today
	case StateSameDay:
		// no-op: multiple sends on one day neither inflate nor reset
	case StateConsecutive:
		next.Count = prev.Count + 1
		next.LastDate = today
	}
	return next, nil
}
