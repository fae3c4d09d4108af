package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/MikeGii/medunacy-sub000/internal/metrics"
	"github.com/MikeGii/medunacy-sub000/internal/models"
	"github.com/MikeGii/medunacy-sub000/internal/repository"

	"github.com/google/uuid"
)

type SessionService struct {
	users    UserStore
	tests    TestStore
	sessions SessionStore
	results  ResultStore
	quota    *QuotaService
	scoring  *ScoringService
	clock    Clock
	events   EventPublisher
	warmer   ResultWarmer
}

// ResultWarmer receives every result right after it is stored.
type ResultWarmer interface {
	Warm(ctx context.Context, r *models.Result)
}

func NewSessionService(
	users UserStore,
	tests TestStore,
	sessions SessionStore,
	results ResultStore,
	quota *QuotaService,
	scoring *ScoringService,
	clock Clock,
) *SessionService {
	return &SessionService{
		users:    users,
		tests:    tests,
		sessions: sessions,
		results:  results,
		quota:    quota,
		scoring:  scoring,
		clock:    clock,
	}
}

// WithEvents attaches a publisher for lifecycle events.
func (s *SessionService) WithEvents(p EventPublisher) *SessionService {
	s.events = p
	return s
}

func (s *SessionService) WithResultWarmer(w ResultWarmer) *SessionService {
	s.warmer = w
	return s
}

// Start opens an in-progress session for userID on testID. The attempt is
// counted together with the session insert. The test is frozen into the
// session, so later edits to it do not affect grading.
func (s *SessionService) Start(ctx context.Context, userID, testID uint, mode string) (*models.Session, error) {
	if !models.ValidMode(mode) {
		return nil, ErrInvalidMode
	}

	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}

	test, err := s.tests.GetTest(ctx, testID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("load test %d: %w", testID, err)
	}

	if !CanAccess(user, test) {
		metrics.StartsDenied.WithLabelValues(mode, "access_denied").Inc()
		return nil, ErrAccessDenied
	}

	if len(test.Questions) == 0 || test.TotalPoints() <= 0 {
		metrics.StartsDenied.WithLabelValues(mode, "empty_test").Inc()
		log.Printf("session: test %d cannot be started, it has no scorable questions", test.ID)
		return nil, ErrEmptyTest
	}

	session := &models.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TestID:    test.ID,
		Mode:      mode,
		Status:    models.SessionStatusInProgress,
		StartedAt: s.clock.Now(),
		Test:      test,
		Answers:   []models.SessionAnswer{},
	}
	limit := s.quota.LimitFor(user, mode)
	started, err := s.sessions.StartSession(ctx, session, DayKey(session.StartedAt), limit)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	if !started {
		metrics.StartsDenied.WithLabelValues(mode, "quota_exhausted").Inc()
		publish(ctx, s.events, EventQuotaExhausted, map[string]interface{}{
			"user_id": user.ID,
			"test_id": test.ID,
			"mode":    mode,
		})
		return nil, ErrQuotaExhausted
	}

	metrics.SessionsStarted.WithLabelValues(mode).Inc()
	publish(ctx, s.events, EventAttemptStarted, map[string]interface{}{
		"session_id": session.ID,
		"user_id":    user.ID,
		"test_id":    test.ID,
		"mode":       mode,
		"started_at": session.StartedAt,
	})
	return session, nil
}

type AnswerFeedback struct {
	QuestionID       uint   `json:"question_id"`
	OptionIDs        []uint `json:"option_ids"`
	IsCorrect        *bool  `json:"is_correct,omitempty"`
	CorrectOptionIDs []uint `json:"correct_option_ids,omitempty"`
	Explanation      string `json:"explanation,omitempty"`
}

// RecordAnswer replaces the selection for one question. Training sessions get
// the verdict back immediately; exam sessions only get the stored selection.
func (s *SessionService) RecordAnswer(ctx context.Context, userID uint, sessionID uuid.UUID, questionID uint, optionIDs []uint) (*AnswerFeedback, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.InProgress() {
		anomaly(session, "answer_after_close", ErrSessionClosed)
		return nil, ErrSessionClosed
	}

	q := session.Test.FindQuestion(questionID)
	if q == nil {
		anomaly(session, "invalid_question", fmt.Errorf("question %d", questionID))
		return nil, ErrInvalidQuestion
	}
	for _, id := range optionIDs {
		if !q.HasOption(id) {
			anomaly(session, "invalid_option", fmt.Errorf("option %d on question %d", id, questionID))
			return nil, ErrInvalidOption
		}
	}

	selected := normalizeIDs(optionIDs)
	answer := &models.SessionAnswer{
		SessionID:  session.ID,
		QuestionID: q.ID,
		Selected:   selected,
		AnsweredAt: s.clock.Now(),
	}
	if err := s.sessions.SaveAnswer(ctx, session.ID, answer); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			anomaly(session, "answer_after_close", err)
			return nil, ErrSessionClosed
		}
		return nil, fmt.Errorf("save answer: %w", err)
	}

	fb := &AnswerFeedback{QuestionID: q.ID, OptionIDs: selected}
	if session.Mode == models.ModeTraining {
		qo := s.scoring.EvaluateQuestion(q, selected)
		fb.IsCorrect = &qo.IsCorrect
		fb.CorrectOptionIDs = qo.CorrectOptionIDs
		fb.Explanation = q.Explanation
	}
	return fb, nil
}

// Submit closes the session and returns its result. A session is submitted at
// most once; later calls fail with ErrSessionClosed. Running over the test's
// time limit does not block submission, it is recorded on the result.
func (s *SessionService) Submit(ctx context.Context, userID uint, sessionID uuid.UUID) (*models.Result, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.InProgress() {
		anomaly(session, "duplicate_submit", ErrSessionClosed)
		return nil, ErrSessionClosed
	}

	now := s.clock.Now()
	result, err := s.sessions.FinalizeSession(ctx, session.ID, now, func(locked *models.Session) (*models.Result, error) {
		if locked.Test == nil {
			return nil, fmt.Errorf("session %s has no test snapshot", locked.ID)
		}
		outcome := s.scoring.Score(locked.Test, locked.AnswerMap())
		return AssembleResult(locked, outcome, now), nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			anomaly(session, "duplicate_submit", err)
			return nil, ErrSessionClosed
		}
		return nil, fmt.Errorf("finalize session: %w", err)
	}

	if s.warmer != nil {
		s.warmer.Warm(ctx, result)
	}
	if result.OverTimeLimit {
		log.Printf("session %s: submitted after the time limit (%ds spent)", session.ID, result.TimeSpentSeconds)
	}

	metrics.SessionsSubmitted.WithLabelValues(session.Mode, strconv.FormatBool(result.Passed)).Inc()
	metrics.ScorePercentage.WithLabelValues(session.Mode).Observe(float64(result.ScorePercentage))
	publish(ctx, s.events, EventSessionSubmitted, map[string]interface{}{
		"session_id":       session.ID,
		"user_id":          session.UserID,
		"test_id":          session.TestID,
		"mode":             session.Mode,
		"score_percentage": result.ScorePercentage,
		"passed":           result.Passed,
		"over_time_limit":  result.OverTimeLimit,
	})
	return result, nil
}

func (s *SessionService) GetSession(ctx context.Context, userID uint, sessionID uuid.UUID) (*models.Session, error) {
	return s.ownedSession(ctx, userID, sessionID)
}

func (s *SessionService) GetResult(ctx context.Context, userID uint, sessionID uuid.UUID) (*models.Result, error) {
	result, err := s.results.GetResultBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("load result: %w", err)
	}
	if result.UserID != userID {
		return nil, ErrResultNotFound
	}
	return result, nil
}

func (s *SessionService) ListResults(ctx context.Context, userID uint, limit int) ([]models.Result, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	results, err := s.results.ListResultsByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

// ownedSession hides sessions of other users behind ErrSessionNotFound.
func (s *SessionService) ownedSession(ctx context.Context, userID uint, sessionID uuid.UUID) (*models.Session, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func loadUser(ctx context.Context, users UserStore, userID uint) (*models.User, error) {
	user, err := users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	return user, nil
}

// anomaly records a client call that does not fit the session state.
func anomaly(session *models.Session, kind string, err error) {
	metrics.StateAnomalies.WithLabelValues(kind).Inc()
	log.Printf("session %s: %s (user %d, status %s): %v", session.ID, kind, session.UserID, session.Status, err)
}
