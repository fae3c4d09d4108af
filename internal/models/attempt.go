package models

import (
	"encoding/json"
	"time"
)

const (
	ModeTraining = "training"
	ModeExam     = "exam"
)

func ValidMode(mode string) bool {
	return mode == ModeTraining || mode == ModeExam
}

// AttemptRecord counts the sessions a user started in one mode on one UTC day.
type AttemptRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_attempt_day" json:"user_id"`
	Mode         string    `gorm:"size:10;not null;uniqueIndex:idx_attempt_day" json:"mode"`
	DayKey       string    `gorm:"size:10;not null;uniqueIndex:idx_attempt_day" json:"day_key"`
	AttemptCount int       `gorm:"not null;default:0" json:"attempt_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DailyLimit is either a finite per-day cap or unbounded.
type DailyLimit struct {
	max       int
	unbounded bool
}

func UnboundedLimit() DailyLimit {
	return DailyLimit{unbounded: true}
}

func CappedLimit(n int) DailyLimit {
	if n < 0 {
		n = 0
	}
	return DailyLimit{max: n}
}

func (l DailyLimit) Unbounded() bool { return l.unbounded }

func (l DailyLimit) Max() int { return l.max }

func (l DailyLimit) Allows(used int) bool {
	return l.unbounded || used < l.max
}

// Remaining is nil for an unbounded limit.
func (l DailyLimit) Remaining(used int) *int {
	if l.unbounded {
		return nil
	}
	r := l.max - used
	if r < 0 {
		r = 0
	}
	return &r
}

func (l DailyLimit) MarshalJSON() ([]byte, error) {
	if l.unbounded {
		return []byte("null"), nil
	}
	return json.Marshal(l.max)
}
