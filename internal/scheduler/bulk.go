package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panelbabel/panelbabel/internal/pages"
	"github.com/panelbabel/panelbabel/internal/session"
)

const (
	// pageDelay spaces out collaborator calls between pages.
	pageDelay = 500 * time.Millisecond
	// ingestWait is how long the loop sleeps when no page is pending
	// but ingestion is still producing new ones.
	ingestWait = time.Second
)

// Bulk drives translation of every pending page, one at a time in
// positional order. At most one run is active. Cancellation is
// cooperative: the flag is checked at the top of each iteration, so an
// in-flight page always finishes.
type Bulk struct {
	session *session.Session

	mu      sync.Mutex
	running bool
	cancel  atomic.Bool
	done    chan struct{}
}

func NewBulk(s *session.Session) *Bulk {
	return &Bulk{session: s}
}

// Running reports whether a bulk run is in progress.
func (b *Bulk) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// Start launches a bulk run in its own goroutine. Returns false when a
// run is already active.
func (b *Bulk) Start(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return false
	}
	b.running = true
	b.cancel.Store(false)
	b.done = make(chan struct{})
	go b.run(ctx, b.done)
	return true
}

// Cancel requests that the active run stop after the current page.
// No-op when idle.
func (b *Bulk) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		b.cancel.Store(true)
	}
}

// Wait blocks until the active run finishes. Returns immediately when
// no run is active.
func (b *Bulk) Wait() {
	b.mu.Lock()
	done := b.done
	b.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (b *Bulk) run(ctx context.Context, done chan struct{}) {
	defer func() {
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
		close(done)
	}()

	store := b.session.Store()
	slog.Info("Bulk translation started", "pending", store.CountByStatus(pages.StatusPending))
	translated := 0

	for {
		if b.cancel.Load() || ctx.Err() != nil {
			slog.Info("Bulk translation cancelled", "translated", translated)
			return
		}

		page, ok := store.FirstPending()
		if !ok {
			// Extraction may still be appending pages; wait and rescan
			// rather than declaring the queue drained.
			if store.Ingesting() {
				if !sleep(ctx, ingestWait) {
					return
				}
				continue
			}
			slog.Info("Bulk translation finished", "translated", translated)
			return
		}

		b.session.TranslatePage(ctx, page.ID)
		translated++

		if !sleep(ctx, pageDelay) {
			return
		}
	}
}

// sleep pauses for d unless ctx is cancelled first. Reports whether the
// full duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
