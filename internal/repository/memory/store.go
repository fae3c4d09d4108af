// Package memory is an in-process store for local runs and tests. All methods
// are safe for concurrent use; every value crossing the boundary is copied.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MikeGii/medunacy-sub000/internal/models"
	"github.com/MikeGii/medunacy-sub000/internal/repository"

	"github.com/google/uuid"
)

type attemptKey struct {
	userID uint
	mode   string
	day    string
}

type Store struct {
	mu sync.Mutex

	nextID     uint
	users      map[uint]*models.User
	categories map[uint]*models.Category
	tests      map[uint]*models.Test
	attempts   map[attemptKey]*models.AttemptRecord
	sessions   map[uuid.UUID]*models.Session
	results    map[uuid.UUID]*models.Result // by session id
}

func NewStore() *Store {
	return &Store{
		users:      make(map[uint]*models.User),
		categories: make(map[uint]*models.Category),
		tests:      make(map[uint]*models.Test),
		attempts:   make(map[attemptKey]*models.AttemptRecord),
		sessions:   make(map[uuid.UUID]*models.Session),
		results:    make(map[uuid.UUID]*models.Result),
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

// assign gives *id a fresh value when zero; explicit ids move the counter past them.
func (s *Store) assign(id *uint) {
	if *id == 0 {
		*id = s.id()
		return
	}
	if *id > s.nextID {
		s.nextID = *id
	}
}

// Users

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assign(&user.ID)
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.SubscriptionTier == "" {
		user.SubscriptionTier = models.TierFree
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *Store) UpdateUserAccess(ctx context.Context, id uint, role, tier string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if role != "" {
		u.Role = role
	}
	if tier != "" {
		u.SubscriptionTier = tier
	}
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

// Tests

func (s *Store) GetTest(ctx context.Context, id uint) (*models.Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneTest(t), nil
}

func (s *Store) ListTests(ctx context.Context, categoryID *uint) ([]models.Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Test, 0, len(s.tests))
	for _, t := range s.tests {
		if categoryID != nil && (t.CategoryID == nil || *t.CategoryID != *categoryID) {
			continue
		}
		out = append(out, *cloneTest(t))
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID > out[b].ID })
	return out, nil
}

func (s *Store) CreateTest(ctx context.Context, test *models.Test) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assign(&test.ID)
	for i := range test.Questions {
		q := &test.Questions[i]
		s.assign(&q.ID)
		q.TestID = test.ID
		for j := range q.Options {
			o := &q.Options[j]
			s.assign(&o.ID)
			o.QuestionID = q.ID
		}
	}
	now := time.Now()
	test.CreatedAt, test.UpdatedAt = now, now
	s.tests[test.ID] = cloneTest(test)
	return nil
}

func (s *Store) UpdateTestFlags(ctx context.Context, id uint, published, premium *bool) (*models.Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if published != nil {
		t.IsPublished = *published
	}
	if premium != nil {
		t.IsPremium = *premium
	}
	t.UpdatedAt = time.Now()
	return cloneTest(t), nil
}

// ReplaceTest overwrites a stored test definition, as an admin edit would.
func (s *Store) ReplaceTest(test *models.Test) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tests[test.ID] = cloneTest(test)
}

func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assign(&category.ID)
	category.CreatedAt = time.Now()
	cp := *category
	s.categories[category.ID] = &cp
	return nil
}

// Attempts

func (s *Store) CountAttempts(ctx context.Context, userID uint, mode, dayKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.attempts[attemptKey{userID, mode, dayKey}]
	if !ok {
		return 0, nil
	}
	return rec.AttemptCount, nil
}

func (s *Store) IncrementAttempts(ctx context.Context, userID uint, mode, dayKey string, limit models.DailyLimit) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.incrementLocked(userID, mode, dayKey, limit)
	return n, ok, nil
}

func (s *Store) incrementLocked(userID uint, mode, dayKey string, limit models.DailyLimit) (int, bool) {
	key := attemptKey{userID, mode, dayKey}
	rec, ok := s.attempts[key]
	used := 0
	if ok {
		used = rec.AttemptCount
	}
	if !limit.Allows(used) {
		return used, false
	}

	now := time.Now()
	if !ok {
		rec = &models.AttemptRecord{
			ID:        s.id(),
			UserID:    userID,
			Mode:      mode,
			DayKey:    dayKey,
			CreatedAt: now,
		}
		s.attempts[key] = rec
	}
	rec.AttemptCount++
	rec.UpdatedAt = now
	return rec.AttemptCount, true
}

// Sessions

func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createSessionLocked(session)
}

func (s *Store) createSessionLocked(session *models.Session) error {
	if _, dup := s.sessions[session.ID]; dup {
		return fmt.Errorf("session %s: %w", session.ID, repository.ErrDuplicate)
	}
	now := time.Now()
	session.CreatedAt, session.UpdatedAt = now, now
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

// StartSession takes one of the day's attempts and stores the session as one step.
// Nothing is written when the limit is reached or the session id is taken.
func (s *Store) StartSession(ctx context.Context, session *models.Session, dayKey string, limit models.DailyLimit) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.sessions[session.ID]; dup {
		return false, fmt.Errorf("session %s: %w", session.ID, repository.ErrDuplicate)
	}
	if _, ok := s.incrementLocked(session.UserID, session.Mode, dayKey, limit); !ok {
		return false, nil
	}
	if err := s.createSessionLocked(session); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneSession(sess), nil
}

func (s *Store) SaveAnswer(ctx context.Context, sessionID uuid.UUID, answer *models.SessionAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok || !sess.InProgress() {
		return repository.ErrStaleState
	}

	answer.SessionID = sessionID
	stored := *answer
	stored.Selected = append([]uint{}, answer.Selected...)

	for i := range sess.Answers {
		if sess.Answers[i].QuestionID == answer.QuestionID {
			stored.ID = sess.Answers[i].ID
			sess.Answers[i] = stored
			answer.ID = stored.ID
			sess.UpdatedAt = time.Now()
			return nil
		}
	}
	stored.ID = s.id()
	answer.ID = stored.ID
	sess.Answers = append(sess.Answers, stored)
	sort.Slice(sess.Answers, func(a, b int) bool { return sess.Answers[a].QuestionID < sess.Answers[b].QuestionID })
	sess.UpdatedAt = time.Now()
	return nil
}

func (s *Store) FinalizeSession(ctx context.Context, sessionID uuid.UUID, submittedAt time.Time, build func(*models.Session) (*models.Result, error)) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok || !sess.InProgress() {
		return nil, repository.ErrStaleState
	}

	locked := cloneSession(sess)
	locked.Status = models.SessionStatusSubmitted
	at := submittedAt
	locked.SubmittedAt = &at

	result, err := build(locked)
	if err != nil {
		return nil, err
	}
	if _, dup := s.results[sessionID]; dup {
		return nil, repository.ErrStaleState
	}

	result.CreatedAt = time.Now()
	s.results[sessionID] = cloneResult(result)
	sess.Status = models.SessionStatusSubmitted
	sess.SubmittedAt = &at
	sess.UpdatedAt = time.Now()
	return result, nil
}

func (s *Store) AbandonStaleSessions(ctx context.Context, startedBefore time.Time) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for id, sess := range s.sessions {
		if sess.InProgress() && sess.StartedAt.Before(startedBefore) {
			sess.Status = models.SessionStatusAbandoned
			sess.UpdatedAt = time.Now()
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a].String() < ids[b].String() })
	return ids, nil
}

// Results

func (s *Store) GetResultBySession(ctx context.Context, sessionID uuid.UUID) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneResult(r), nil
}

func (s *Store) ListResultsByUser(ctx context.Context, userID uint, limit int) ([]models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Result
	for _, r := range s.results {
		if r.UserID == userID {
			out = append(out, *cloneResult(r))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].SubmittedAt.After(out[b].SubmittedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// cloneTest deep-copies through JSON; every Test field is exported and tagged.
func cloneTest(t *models.Test) *models.Test {
	raw, err := json.Marshal(t)
	if err != nil {
		panic(err)
	}
	var cp models.Test
	if err := json.Unmarshal(raw, &cp); err != nil {
		panic(err)
	}
	return &cp
}

func cloneSession(s *models.Session) *models.Session {
	cp := *s
	if s.Test != nil {
		cp.Test = cloneTest(s.Test)
	}
	if s.SubmittedAt != nil {
		at := *s.SubmittedAt
		cp.SubmittedAt = &at
	}
	cp.Answers = make([]models.SessionAnswer, len(s.Answers))
	for i, a := range s.Answers {
		a.Selected = append([]uint{}, a.Selected...)
		cp.Answers[i] = a
	}
	return &cp
}

func cloneResult(r *models.Result) *models.Result {
	cp := *r
	cp.Questions = make([]models.QuestionOutcome, len(r.Questions))
	for i, q := range r.Questions {
		q.SelectedOptionIDs = append([]uint{}, q.SelectedOptionIDs...)
		q.CorrectOptionIDs = append([]uint{}, q.CorrectOptionIDs...)
		cp.Questions[i] = q
	}
	return &cp
}
