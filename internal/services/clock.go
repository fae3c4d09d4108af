package services

import "time"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

const dayKeyLayout = "2006-01-02"

// DayKey is the calendar day a quota counter belongs to. Days roll over at UTC midnight.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayKeyLayout)
}

// NextReset is the UTC midnight following t.
func NextReset(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
