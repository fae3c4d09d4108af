package services

import (
	"context"
	"time"

	"github.com/MikeGii/medunacy-sub000/internal/models"

	"github.com/google/uuid"
)

// Stores return repository.ErrNotFound for missing rows and
// repository.ErrStaleState when a conditional write finds the session no longer in progress.

type UserStore interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUserAccess(ctx context.Context, id uint, role, tier string) (*models.User, error)
}

type TestStore interface {
	// GetTest loads the test with questions and options in display order.
	GetTest(ctx context.Context, id uint) (*models.Test, error)
	ListTests(ctx context.Context, categoryID *uint) ([]models.Test, error)
	CreateTest(ctx context.Context, test *models.Test) error
	UpdateTestFlags(ctx context.Context, id uint, published, premium *bool) (*models.Test, error)
	CreateCategory(ctx context.Context, category *models.Category) error
}

type AttemptStore interface {
	CountAttempts(ctx context.Context, userID uint, mode, dayKey string) (int, error)
	// IncrementAttempts adds one attempt if the current count is below limit, in a single
	// atomic step. ok is false, with no change, when the limit is already reached.
	IncrementAttempts(ctx context.Context, userID uint, mode, dayKey string, limit models.DailyLimit) (count int, ok bool, err error)
}

type SessionStore interface {
	// StartSession takes one of the day's attempts for the session's user and mode, if
	// limit allows it, and inserts the session in the same transaction. started is
	// false, with nothing written, when the limit is already reached; on error
	// nothing is written either.
	StartSession(ctx context.Context, session *models.Session, dayKey string, limit models.DailyLimit) (started bool, err error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	SaveAnswer(ctx context.Context, sessionID uuid.UUID, answer *models.SessionAnswer) error
	// FinalizeSession locks the in-progress session, reloads its answers, builds the
	// result from that state and stores both the submitted session and the result
	// in one transaction.
	FinalizeSession(ctx context.Context, sessionID uuid.UUID, submittedAt time.Time, build func(*models.Session) (*models.Result, error)) (*models.Result, error)
	AbandonStaleSessions(ctx context.Context, startedBefore time.Time) ([]uuid.UUID, error)
}

type ResultStore interface {
	GetResultBySession(ctx context.Context, sessionID uuid.UUID) (*models.Result, error)
	ListResultsByUser(ctx context.Context, userID uint, limit int) ([]models.Result, error)
}
