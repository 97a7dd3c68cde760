package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/panelbabel/panelbabel/internal/pages"
)

const (
	// batchSize is how many records an extractor accumulates before
	// flushing to the store, so the page list grows incrementally on
	// large files instead of appearing all at once.
	batchSize = 20

	// flushPause is a short yield between batches that lets the UI
	// render the growing page list. Responsiveness only, not
	// correctness.
	flushPause = 50 * time.Millisecond
)

// ErrPageLimit signals that the store hit its page ceiling mid-file.
// Extraction stops cleanly; the pages emitted so far are kept.
var ErrPageLimit = errors.New("page limit reached")

// batcher accumulates extracted records and flushes them to the store
// in groups. The store's free capacity is re-read at every flush, never
// cached, so concurrent appends keep the ceiling intact.
type batcher struct {
	store *pages.Store
	batch []pages.PageRecord
}

func newBatcher(store *pages.Store) *batcher {
	return &batcher{store: store}
}

// add queues one record, flushing when the batch is full or the store
// is about to reach its ceiling. Returns ErrPageLimit once the store
// is full.
func (b *batcher) add(ctx context.Context, rec pages.PageRecord) error {
	b.batch = append(b.batch, rec)
	if len(b.batch) >= batchSize || len(b.batch) >= b.store.Remaining() {
		return b.flush(ctx)
	}
	return nil
}

// flush appends the accumulated batch to the store and pauses briefly.
func (b *batcher) flush(ctx context.Context) error {
	if len(b.batch) == 0 {
		if b.store.Remaining() <= 0 {
			return ErrPageLimit
		}
		return nil
	}
	accepted := b.store.Append(b.batch...)
	truncated := accepted < len(b.batch)
	b.batch = b.batch[:0]

	if truncated || b.store.Remaining() <= 0 {
		return ErrPageLimit
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(flushPause):
	}
	return nil
}
