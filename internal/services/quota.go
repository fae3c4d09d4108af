package services

import (
	"context"
	"fmt"
	"time"

	"github.com/MikeGii/medunacy-sub000/internal/models"
)

type QuotaService struct {
	attempts      AttemptStore
	clock         Clock
	trainingLimit int
	examLimit     int
}

func NewQuotaService(attempts AttemptStore, clock Clock, trainingLimit, examLimit int) *QuotaService {
	return &QuotaService{
		attempts:      attempts,
		clock:         clock,
		trainingLimit: trainingLimit,
		examLimit:     examLimit,
	}
}

type Quota struct {
	Mode      string            `json:"mode"`
	Used      int               `json:"used"`
	Limit     models.DailyLimit `json:"limit" swaggertype:"integer"`
	Remaining *int              `json:"remaining"`
	CanStart  bool              `json:"can_start"`
	Day       string            `json:"day"`
	ResetsAt  time.Time         `json:"resets_at"`
}

// LimitFor returns the daily limit that applies to user in mode.
func (s *QuotaService) LimitFor(user *models.User, mode string) models.DailyLimit {
	if user.IsPremium() {
		return models.UnboundedLimit()
	}
	if mode == models.ModeExam {
		return models.CappedLimit(s.examLimit)
	}
	return models.CappedLimit(s.trainingLimit)
}

func (s *QuotaService) GetRemaining(ctx context.Context, user *models.User, mode string) (*Quota, error) {
	if !models.ValidMode(mode) {
		return nil, ErrInvalidMode
	}
	now := s.clock.Now()
	day := DayKey(now)

	used, err := s.attempts.CountAttempts(ctx, user.ID, mode, day)
	if err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}

	limit := s.LimitFor(user, mode)
	return &Quota{
		Mode:      mode,
		Used:      used,
		Limit:     limit,
		Remaining: limit.Remaining(used),
		CanStart:  limit.Allows(used),
		Day:       day,
		ResetsAt:  NextReset(now),
	}, nil
}

// RecordAttempt consumes one slot of today's quota. It returns false, without
// consuming anything, when the quota is already used up.
func (s *QuotaService) RecordAttempt(ctx context.Context, user *models.User, mode string) (bool, error) {
	if !models.ValidMode(mode) {
		return false, ErrInvalidMode
	}
	limit := s.LimitFor(user, mode)
	if !limit.Allows(0) {
		return false, nil
	}

	_, ok, err := s.attempts.IncrementAttempts(ctx, user.ID, mode, DayKey(s.clock.Now()), limit)
	if err != nil {
		return false, fmt.Errorf("increment attempts: %w", err)
	}
	return ok, nil
}
