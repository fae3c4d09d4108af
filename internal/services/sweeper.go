package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/MikeGii/medunacy-sub000/internal/metrics"

	"github.com/google/uuid"
)

// SessionSweeper periodically closes in-progress sessions that were started
// longer than the retention period ago. Abandoned sessions produce no result
// and do not give the attempt back.
type SessionSweeper struct {
	sessions  SessionStore
	clock     Clock
	retention time.Duration
	interval  time.Duration
	events    EventPublisher
	onAbandon func(sessionID uuid.UUID)

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewSessionSweeper(sessions SessionStore, clock Clock, retention, interval time.Duration) *SessionSweeper {
	return &SessionSweeper{
		sessions:  sessions,
		clock:     clock,
		retention: retention,
		interval:  interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

func (w *SessionSweeper) WithEvents(p EventPublisher) *SessionSweeper {
	w.events = p
	return w
}

// OnAbandon registers a callback run for every session the sweeper closes.
func (w *SessionSweeper) OnAbandon(fn func(sessionID uuid.UUID)) *SessionSweeper {
	w.onAbandon = fn
	return w
}

func (w *SessionSweeper) Start() {
	go w.loop()
	log.Printf("[Sweeper] started (retention %s, interval %s)", w.retention, w.interval)
}

func (w *SessionSweeper) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		log.Println("[Sweeper] stopped")
	})
}

func (w *SessionSweeper) loop() {
	defer close(w.doneCh)

	w.runOnce()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.runOnce()
		}
	}
}

func (w *SessionSweeper) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), w.interval)
	defer cancel()
	if _, err := w.Sweep(ctx); err != nil {
		log.Printf("[Sweeper] sweep failed: %v", err)
	}
}

// Sweep abandons stale sessions once and returns how many were closed.
func (w *SessionSweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := w.clock.Now().Add(-w.retention)
	ids, err := w.sessions.AbandonStaleSessions(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		metrics.SessionsAbandoned.Inc()
		publish(ctx, w.events, EventSessionAbandoned, map[string]interface{}{
			"session_id":     id,
			"started_before": cutoff,
		})
		if w.onAbandon != nil {
			w.onAbandon(id)
		}
	}
	if len(ids) > 0 {
		log.Printf("[Sweeper] abandoned %d sessions started before %s", len(ids), cutoff.Format(time.RFC3339))
	}
	return len(ids), nil
}
