package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MikeGii/medunacy-sub000/internal/models"
	"github.com/MikeGii/medunacy-sub000/internal/repository"

	"github.com/google/uuid"
)

func sampleTest() *models.Test {
	return &models.Test{
		Title:       "Anatomy",
		IsPublished: true,
		Questions: []models.Question{
			{Text: "Q1", Points: 1, Options: []models.Option{{Text: "A", IsCorrect: true}, {Text: "B"}}},
		},
	}
}

func newSession(t *testing.T, s *Store, test *models.Test, startedAt time.Time) *models.Session {
	t.Helper()
	sess := &models.Session{
		ID:        uuid.New(),
		UserID:    1,
		TestID:    test.ID,
		Mode:      models.ModeExam,
		Status:    models.SessionStatusInProgress,
		StartedAt: startedAt,
		Test:      test,
	}
	if err := s.CreateSession(context.Background(), sess); err != nil {
		t.Fatal(err)
	}
	return sess
}

func TestCreateTestAssignsIDs(t *testing.T) {
	s := NewStore()
	s.CreateUser(context.Background(), &models.User{ID: 40, Email: "a@example.com"})

	test := sampleTest()
	if err := s.CreateTest(context.Background(), test); err != nil {
		t.Fatal(err)
	}
	q := test.Questions[0]
	if test.ID <= 40 || q.ID <= 40 || q.Options[0].ID <= 40 {
		t.Errorf("Expected generated ids above explicit ones, got test=%d question=%d option=%d", test.ID, q.ID, q.Options[0].ID)
	}
	if q.TestID != test.ID || q.Options[1].QuestionID != q.ID {
		t.Error("Expected foreign keys to be filled in")
	}
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	test := sampleTest()
	s.CreateTest(ctx, test)

	loaded, _ := s.GetTest(ctx, test.ID)
	loaded.Questions[0].Options[0].IsCorrect = false
	loaded.Title = "changed"

	again, _ := s.GetTest(ctx, test.ID)
	if again.Title != "Anatomy" || !again.Questions[0].Options[0].IsCorrect {
		t.Error("Expected stored test to be unaffected by edits to a loaded copy")
	}

	sess := newSession(t, s, again, time.Now())
	again.Questions[0].Points = 50
	snap, _ := s.GetSession(ctx, sess.ID)
	if snap.Test.Questions[0].Points != 1 {
		t.Error("Expected the session snapshot to be independent of the caller's test")
	}
}

func TestIncrementAttempts(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	limit := models.CappedLimit(2)

	for i := 1; i <= 2; i++ {
		n, ok, err := s.IncrementAttempts(ctx, 1, models.ModeTraining, "2025-03-14", limit)
		if err != nil || !ok || n != i {
			t.Fatalf("increment %d: n=%d ok=%v err=%v", i, n, ok, err)
		}
	}
	n, ok, _ := s.IncrementAttempts(ctx, 1, models.ModeTraining, "2025-03-14", limit)
	if ok || n != 2 {
		t.Errorf("Expected refusal at 2, got n=%d ok=%v", n, ok)
	}

	if n, _ := s.CountAttempts(ctx, 1, models.ModeTraining, "2025-03-15"); n != 0 {
		t.Errorf("Expected a new day to start at 0, got %d", n)
	}
}

func TestSaveAnswerRequiresInProgress(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	test := sampleTest()
	s.CreateTest(ctx, test)
	sess := newSession(t, s, test, time.Now())
	qid := test.Questions[0].ID

	if err := s.SaveAnswer(ctx, sess.ID, &models.SessionAnswer{QuestionID: qid, Selected: []uint{1}}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveAnswer(ctx, sess.ID, &models.SessionAnswer{QuestionID: qid, Selected: []uint{2}}); err != nil {
		t.Fatal(err)
	}
	loaded, _ := s.GetSession(ctx, sess.ID)
	if len(loaded.Answers) != 1 || loaded.Answers[0].Selected[0] != 2 {
		t.Errorf("Expected a single replaced answer, got %+v", loaded.Answers)
	}

	_, err := s.FinalizeSession(ctx, sess.ID, time.Now(), func(locked *models.Session) (*models.Result, error) {
		return &models.Result{ID: uuid.New(), SessionID: locked.ID, UserID: locked.UserID}, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	err = s.SaveAnswer(ctx, sess.ID, &models.SessionAnswer{QuestionID: qid, Selected: []uint{1}})
	if !errors.Is(err, repository.ErrStaleState) {
		t.Errorf("Expected ErrStaleState, got %v", err)
	}
}

func TestFinalizeSession(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	test := sampleTest()
	s.CreateTest(ctx, test)
	sess := newSession(t, s, test, time.Now())

	failing := errors.New("build failed")
	_, err := s.FinalizeSession(ctx, sess.ID, time.Now(), func(*models.Session) (*models.Result, error) {
		return nil, failing
	})
	if !errors.Is(err, failing) {
		t.Fatalf("Expected build error, got %v", err)
	}
	if loaded, _ := s.GetSession(ctx, sess.ID); !loaded.InProgress() {
		t.Fatal("Expected a failed build to leave the session in progress")
	}

	var sawStatus string
	result, err := s.FinalizeSession(ctx, sess.ID, time.Now(), func(locked *models.Session) (*models.Result, error) {
		sawStatus = locked.Status
		return &models.Result{ID: uuid.New(), SessionID: locked.ID, UserID: locked.UserID, SubmittedAt: *locked.SubmittedAt}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if sawStatus != models.SessionStatusSubmitted {
		t.Errorf("Expected builder to see the submitted session, got %s", sawStatus)
	}

	stored, err := s.GetResultBySession(ctx, sess.ID)
	if err != nil || stored.ID != result.ID {
		t.Errorf("Expected stored result %s, got %v (%v)", result.ID, stored, err)
	}

	_, err = s.FinalizeSession(ctx, sess.ID, time.Now(), func(*models.Session) (*models.Result, error) {
		t.Error("builder must not run for a closed session")
		return nil, nil
	})
	if !errors.Is(err, repository.ErrStaleState) {
		t.Errorf("Expected ErrStaleState, got %v", err)
	}
}

func TestAbandonStaleSessions(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	test := sampleTest()
	s.CreateTest(ctx, test)

	now := time.Now()
	old := newSession(t, s, test, now.Add(-2*time.Hour))
	recent := newSession(t, s, test, now)

	ids, err := s.AbandonStaleSessions(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != old.ID {
		t.Errorf("Expected [%s], got %v", old.ID, ids)
	}
	if loaded, _ := s.GetSession(ctx, recent.ID); !loaded.InProgress() {
		t.Error("Expected the recent session to stay in progress")
	}
}

func TestListResultsByUser(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	test := sampleTest()
	s.CreateTest(ctx, test)

	base := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		sess := newSession(t, s, test, base)
		at := base.Add(time.Duration(i) * time.Hour)
		s.FinalizeSession(ctx, sess.ID, at, func(locked *models.Session) (*models.Result, error) {
			return &models.Result{ID: uuid.New(), SessionID: locked.ID, UserID: 1, SubmittedAt: at}, nil
		})
	}

	results, _ := s.ListResultsByUser(ctx, 1, 2)
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if !results[0].SubmittedAt.After(results[1].SubmittedAt) {
		t.Error("Expected newest first")
	}
}

func TestMissingRowsReturnNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if _, err := s.GetUser(ctx, 1); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("GetUser: expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetTest(ctx, 1); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("GetTest: expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetSession(ctx, uuid.New()); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("GetSession: expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetResultBySession(ctx, uuid.New()); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("GetResultBySession: expected ErrNotFound, got %v", err)
	}
}

func TestStartSessionCountsAttemptWithSession(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	test := sampleTest()
	s.CreateTest(ctx, test)
	limit := models.CappedLimit(1)

	sess := &models.Session{ID: uuid.New(), UserID: 1, TestID: test.ID, Mode: models.ModeExam, Status: models.SessionStatusInProgress, Test: test}
	started, err := s.StartSession(ctx, sess, "2025-03-14", limit)
	if err != nil || !started {
		t.Fatalf("Expected start, got started=%v err=%v", started, err)
	}
	if n, _ := s.CountAttempts(ctx, 1, models.ModeExam, "2025-03-14"); n != 1 {
		t.Errorf("Expected 1 attempt, got %d", n)
	}

	again := &models.Session{ID: uuid.New(), UserID: 1, TestID: test.ID, Mode: models.ModeExam, Status: models.SessionStatusInProgress, Test: test}
	started, err = s.StartSession(ctx, again, "2025-03-14", limit)
	if err != nil || started {
		t.Errorf("Expected refusal at the limit, got started=%v err=%v", started, err)
	}
	if _, err := s.GetSession(ctx, again.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected no session stored on refusal, got %v", err)
	}
}

func TestStartSessionWithTakenIDWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	test := sampleTest()
	s.CreateTest(ctx, test)
	existing := newSession(t, s, test, time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC))

	dup := &models.Session{ID: existing.ID, UserID: 1, TestID: test.ID, Mode: models.ModeExam, Status: models.SessionStatusInProgress, Test: test}
	_, err := s.StartSession(ctx, dup, "2025-03-14", models.CappedLimit(1))
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("Expected ErrDuplicate, got %v", err)
	}
	if n, _ := s.CountAttempts(ctx, 1, models.ModeExam, "2025-03-14"); n != 0 {
		t.Errorf("Expected the attempt to stay unused, got %d", n)
	}
}
