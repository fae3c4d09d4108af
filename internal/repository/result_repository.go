package repository

import (
	"context"

	"github.com/MikeGii/medunacy-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResultRepository only reads; results are written by SessionRepository.FinalizeSession.
type ResultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

func (r *ResultRepository) GetResultBySession(ctx context.Context, sessionID uuid.UUID) (*models.Result, error) {
	var result models.Result
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&result).Error; err != nil {
		return nil, translate(err)
	}
	return &result, nil
}

func (r *ResultRepository) ListResultsByUser(ctx context.Context, userID uint, limit int) ([]models.Result, error) {
	var results []models.Result
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
