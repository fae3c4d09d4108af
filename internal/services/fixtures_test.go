package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MikeGii/medunacy-sub000/internal/models"
	"github.com/MikeGii/medunacy-sub000/internal/repository/memory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordedEvent struct {
	Type    string
	Payload interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *fakePublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: eventType, Payload: payload})
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

const (
	testTwoQuestions = 1
	q1               = 11
	q1A              = 111
	q1B              = 112
	q2               = 12
	q2A              = 121
	q2B              = 122
	q2C              = 123
)

// twoQuestionTest: Q1 (1 point, correct {A}), Q2 (2 points, correct {B, C}), passing score 70.
func twoQuestionTest() *models.Test {
	return &models.Test{
		ID:           testTwoQuestions,
		Title:        "Pharmacology basics",
		IsPublished:  true,
		PassingScore: 70,
		Questions: []models.Question{
			{ID: q1, TestID: testTwoQuestions, Text: "Q1", Points: 1, OrderNum: 0, Explanation: "A is the first-line choice.", Options: []models.Option{
				{ID: q1A, QuestionID: q1, Text: "A", IsCorrect: true},
				{ID: q1B, QuestionID: q1, Text: "B"},
			}},
			{ID: q2, TestID: testTwoQuestions, Text: "Q2", Points: 2, OrderNum: 1, Options: []models.Option{
				{ID: q2A, QuestionID: q2, Text: "A"},
				{ID: q2B, QuestionID: q2, Text: "B", IsCorrect: true},
				{ID: q2C, QuestionID: q2, Text: "C", IsCorrect: true},
			}},
		},
	}
}

var baseTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type harness struct {
	store    *memory.Store
	clock    *fakeClock
	events   *fakePublisher
	quota    *QuotaService
	sessions *SessionService
	free     *models.User
	premium  *models.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	clock := newFakeClock(baseTime)
	events := &fakePublisher{}

	free := &models.User{ID: 100, Email: "free@example.com", SubscriptionTier: models.TierFree}
	premium := &models.User{ID: 200, Email: "premium@example.com", SubscriptionTier: models.TierPremium}
	for _, u := range []*models.User{free, premium} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	if err := store.CreateTest(ctx, twoQuestionTest()); err != nil {
		t.Fatalf("create test: %v", err)
	}

	quota := NewQuotaService(store, clock, 3, 1)
	sessions := NewSessionService(store, store, store, store, quota, NewScoringService(), clock).WithEvents(events)

	return &harness{
		store:    store,
		clock:    clock,
		events:   events,
		quota:    quota,
		sessions: sessions,
		free:     free,
		premium:  premium,
	}
}

func (h *harness) addTest(t *testing.T, test *models.Test) {
	t.Helper()
	if err := h.store.CreateTest(context.Background(), test); err != nil {
		t.Fatalf("create test: %v", err)
	}
}
