package repository

import (
	"context"
	"time"

	"github.com/MikeGii/medunacy-sub000/internal/models"

	"gorm.io/gorm"
)

// incrementAttemptSQL creates today's record or bumps it. The optional WHERE on the
// conflict branch makes the check and the increment one statement, so two
// concurrent starts cannot both take the last slot.
const incrementAttemptSQL = `
INSERT INTO attempt_records (user_id, mode, day_key, attempt_count, created_at, updated_at)
VALUES (?, ?, ?, 1, ?, ?)
ON CONFLICT (user_id, mode, day_key) DO UPDATE
SET attempt_count = attempt_records.attempt_count + 1, updated_at = excluded.updated_at`

type AttemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

func (r *AttemptRepository) CountAttempts(ctx context.Context, userID uint, mode, dayKey string) (int, error) {
	var rec models.AttemptRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND mode = ? AND day_key = ?", userID, mode, dayKey).
		First(&rec).Error
	if err != nil {
		if translate(err) == ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return rec.AttemptCount, nil
}

func (r *AttemptRepository) IncrementAttempts(ctx context.Context, userID uint, mode, dayKey string, limit models.DailyLimit) (int, bool, error) {
	return incrementAttempts(r.db.WithContext(ctx), userID, mode, dayKey, limit)
}

// incrementAttempts runs on db, which may be a transaction.
func incrementAttempts(db *gorm.DB, userID uint, mode, dayKey string, limit models.DailyLimit) (int, bool, error) {
	if !limit.Allows(0) {
		return 0, false, nil
	}

	now := time.Now().UTC()
	query := incrementAttemptSQL
	args := []interface{}{userID, mode, dayKey, now, now}
	if !limit.Unbounded() {
		query += "\nWHERE attempt_records.attempt_count < ?"
		args = append(args, limit.Max())
	}
	query += "\nRETURNING attempt_count"

	var counts []int
	if err := db.Raw(query, args...).Scan(&counts).Error; err != nil {
		return 0, false, err
	}
	if len(counts) == 0 {
		return 0, false, nil
	}
	return counts[0], true, nil
}
