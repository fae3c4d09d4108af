package repository

import (
	"context"

	"github.com/MikeGii/medunacy-sub000/internal/models"

	"gorm.io/gorm"
)

type TestRepository struct {
	db *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{db: db}
}

func byOrder(db *gorm.DB) *gorm.DB {
	return db.Order("order_num ASC, id ASC")
}

func (r *TestRepository) GetTest(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	err := r.db.WithContext(ctx).
		Preload("Questions", byOrder).
		Preload("Questions.Options", byOrder).
		First(&test, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &test, nil
}

func (r *TestRepository) ListTests(ctx context.Context, categoryID *uint) ([]models.Test, error) {
	q := r.db.WithContext(ctx).Preload("Questions", byOrder)
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}

	var tests []models.Test
	if err := q.Order("created_at DESC, id DESC").Find(&tests).Error; err != nil {
		return nil, err
	}
	return tests, nil
}

func (r *TestRepository) CreateTest(ctx context.Context, test *models.Test) error {
	return r.db.WithContext(ctx).Create(test).Error
}

func (r *TestRepository) UpdateTestFlags(ctx context.Context, id uint, published, premium *bool) (*models.Test, error) {
	var test models.Test
	if err := r.db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, translate(err)
	}

	updates := map[string]interface{}{}
	if published != nil {
		updates["is_published"] = *published
	}
	if premium != nil {
		updates["is_premium"] = *premium
	}
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(&test).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return r.GetTest(ctx, id)
}

func (r *TestRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}
