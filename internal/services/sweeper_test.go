package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MikeGii/medunacy-sub000/internal/models"

	"github.com/google/uuid"
)

func TestSweepAbandonsOnlyStaleInProgressSessions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	stale, _ := h.sessions.Start(ctx, h.premium.ID, testTwoQuestions, models.ModeTraining)
	submitted, _ := h.sessions.Start(ctx, h.premium.ID, testTwoQuestions, models.ModeTraining)
	if _, err := h.sessions.Submit(ctx, h.premium.ID, submitted.ID); err != nil {
		t.Fatal(err)
	}

	h.clock.Advance(3 * time.Hour)
	fresh, _ := h.sessions.Start(ctx, h.premium.ID, testTwoQuestions, models.ModeTraining)

	var notified []uuid.UUID
	sweeper := NewSessionSweeper(h.store, h.clock, 2*time.Hour, time.Minute).
		WithEvents(h.events).
		OnAbandon(func(id uuid.UUID) { notified = append(notified, id) })

	n, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || len(notified) != 1 || notified[0] != stale.ID {
		t.Fatalf("Expected only %s to be abandoned, got %d %v", stale.ID, n, notified)
	}

	expected := map[uuid.UUID]string{
		stale.ID:     models.SessionStatusAbandoned,
		submitted.ID: models.SessionStatusSubmitted,
		fresh.ID:     models.SessionStatusInProgress,
	}
	for id, status := range expected {
		s, _ := h.sessions.GetSession(ctx, h.premium.ID, id)
		if s.Status != status {
			t.Errorf("session %s: expected %s, got %s", id, status, s.Status)
		}
	}

	if _, err := h.sessions.Submit(ctx, h.premium.ID, stale.ID); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Expected abandoned session to refuse submit, got %v", err)
	}
	if _, err := h.sessions.GetResult(ctx, h.premium.ID, stale.ID); !errors.Is(err, ErrResultNotFound) {
		t.Errorf("Expected no result for an abandoned session, got %v", err)
	}

	again, _ := sweeper.Sweep(ctx)
	if again != 0 {
		t.Errorf("Expected second sweep to find nothing, got %d", again)
	}
}

func TestSweeperStartStop(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	stale, _ := h.sessions.Start(ctx, h.premium.ID, testTwoQuestions, models.ModeTraining)
	h.clock.Advance(time.Hour)

	done := make(chan uuid.UUID, 1)
	sweeper := NewSessionSweeper(h.store, h.clock, time.Minute, time.Hour).
		OnAbandon(func(id uuid.UUID) { done <- id })
	sweeper.Start()
	defer sweeper.Stop()

	select {
	case id := <-done:
		if id != stale.ID {
			t.Errorf("Expected %s, got %s", stale.ID, id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected the first sweep to run on start")
	}

	sweeper.Stop()
	sweeper.Stop()
}
