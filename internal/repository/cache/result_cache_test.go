package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MikeGii/medunacy-sub000/internal/models"
	"github.com/MikeGii/medunacy-sub000/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type countingStore struct {
	results map[uuid.UUID]*models.Result
	gets    int
}

func (s *countingStore) GetResultBySession(ctx context.Context, sessionID uuid.UUID) (*models.Result, error) {
	s.gets++
	r, ok := s.results[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *countingStore) ListResultsByUser(ctx context.Context, userID uint, limit int) ([]models.Result, error) {
	return nil, nil
}

func setup(t *testing.T) (*miniredis.Miniredis, *countingStore, *ResultCache, *models.Result) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	r := &models.Result{
		ID:              uuid.New(),
		SessionID:       uuid.New(),
		UserID:          3,
		ScorePercentage: 67,
		Passed:          false,
		Questions: []models.QuestionOutcome{
			{QuestionID: 1, SelectedOptionIDs: []uint{2}, CorrectOptionIDs: []uint{2}, IsCorrect: true, PointsEarned: 2, PointsPossible: 2},
		},
		SubmittedAt: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
	}
	store := &countingStore{results: map[uuid.UUID]*models.Result{r.SessionID: r}}
	return mr, store, NewResultCache(store, client, time.Hour), r
}

func TestReadThrough(t *testing.T) {
	ctx := context.Background()
	mr, store, c, want := setup(t)

	first, err := c.GetResultBySession(ctx, want.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if !mr.Exists(key(want.SessionID)) {
		t.Fatal("Expected the result to be cached after a miss")
	}

	second, err := c.GetResultBySession(ctx, want.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if store.gets != 1 {
		t.Errorf("Expected one store read, got %d", store.gets)
	}
	if second.ID != first.ID || second.ScorePercentage != 67 || len(second.Questions) != 1 || !second.Questions[0].IsCorrect {
		t.Errorf("Expected cached copy to match, got %+v", second)
	}
	if !second.SubmittedAt.Equal(want.SubmittedAt) {
		t.Errorf("Expected submitted_at %s, got %s", want.SubmittedAt, second.SubmittedAt)
	}
}

func TestEntriesExpire(t *testing.T) {
	ctx := context.Background()
	mr, store, c, want := setup(t)

	c.GetResultBySession(ctx, want.SessionID)
	mr.FastForward(2 * time.Hour)
	c.GetResultBySession(ctx, want.SessionID)

	if store.gets != 2 {
		t.Errorf("Expected a store read after expiry, got %d reads", store.gets)
	}
}

func TestWarm(t *testing.T) {
	ctx := context.Background()
	_, store, c, want := setup(t)

	c.Warm(ctx, want)
	if _, err := c.GetResultBySession(ctx, want.SessionID); err != nil {
		t.Fatal(err)
	}
	if store.gets != 0 {
		t.Errorf("Expected warmed entry to be served from redis, got %d store reads", store.gets)
	}
}

func TestMissIsNotCached(t *testing.T) {
	ctx := context.Background()
	mr, _, c, _ := setup(t)

	missing := uuid.New()
	if _, err := c.GetResultBySession(ctx, missing); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if mr.Exists(key(missing)) {
		t.Error("Expected no entry for a missing result")
	}
}

func TestCorruptEntryFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	mr, store, c, want := setup(t)

	mr.Set(key(want.SessionID), "{not json")
	got, err := c.GetResultBySession(ctx, want.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != want.ID || store.gets != 1 {
		t.Errorf("Expected store fallback, got %+v after %d reads", got, store.gets)
	}
}

func TestRedisDownFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	mr, store, c, want := setup(t)
	mr.Close()

	got, err := c.GetResultBySession(ctx, want.SessionID)
	if err != nil {
		t.Fatalf("Expected store fallback, got %v", err)
	}
	if got.ID != want.ID || store.gets != 1 {
		t.Errorf("Expected one store read, got %d", store.gets)
	}
}
