package repository

import (
	"context"
	"time"

	"github.com/MikeGii/medunacy-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) CreateSession(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(session).Error
}

// StartSession takes one of the day's attempts and inserts the session in one
// transaction, so a failed insert gives the attempt back.
func (r *SessionRepository) StartSession(ctx context.Context, session *models.Session, dayKey string, limit models.DailyLimit) (bool, error) {
	started := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, ok, err := incrementAttempts(tx, session.UserID, session.Mode, dayKey, limit)
		if err != nil || !ok {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(session).Error; err != nil {
			return err
		}
		started = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return started, nil
}

func (r *SessionRepository) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_id ASC")
		}).
		First(&session, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

// lockInProgress touches the session row only while it is in progress. The
// update holds the row lock until the surrounding transaction ends.
func lockInProgress(tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	res := tx.Model(&models.Session{}).
		Where("id = ? AND status = ?", id, models.SessionStatusInProgress).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *SessionRepository) SaveAnswer(ctx context.Context, sessionID uuid.UUID, answer *models.SessionAnswer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockInProgress(tx, sessionID, map[string]interface{}{"updated_at": time.Now()}); err != nil {
			return err
		}
		answer.SessionID = sessionID
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"option_ids", "answered_at"}),
		}).Create(answer).Error
	})
}

func (r *SessionRepository) FinalizeSession(ctx context.Context, sessionID uuid.UUID, submittedAt time.Time, build func(*models.Session) (*models.Result, error)) (*models.Result, error) {
	var result *models.Result
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockInProgress(tx, sessionID, map[string]interface{}{
			"status":       models.SessionStatusSubmitted,
			"submitted_at": submittedAt,
			"updated_at":   time.Now(),
		})
		if err != nil {
			return err
		}

		var session models.Session
		err = tx.Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_id ASC")
		}).First(&session, "id = ?", sessionID).Error
		if err != nil {
			return translate(err)
		}

		built, err := build(&session)
		if err != nil {
			return err
		}
		if err := tx.Create(built).Error; err != nil {
			return err
		}
		result = built
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SessionRepository) AbandonStaleSessions(ctx context.Context, startedBefore time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Raw(
		`UPDATE sessions SET status = ?, updated_at = ? WHERE status = ? AND started_at < ? RETURNING id`,
		models.SessionStatusAbandoned, time.Now(), models.SessionStatusInProgress, startedBefore,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
