package pages

import (
	"sync"
)

// MaxPages is the ceiling on total pages across one session. Ingestion
// stops emitting, mid-file if necessary, once the store is full.
const MaxPages = 40

// Store is the ordered, capped collection of page records and the single
// source of truth mutated by both ingestion and translation. Every read
// reflects the latest committed state at the point of the call; callers
// must re-query at each resumption point instead of holding snapshots
// across blocking operations.
type Store struct {
	mu        sync.RWMutex
	records   []PageRecord
	current   int
	ingesting int
}

func NewStore() *Store {
	return &Store{}
}

// Len returns the current page count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Remaining returns how many more pages the store accepts.
func (s *Store) Remaining() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return MaxPages - len(s.records)
}

// Append adds records in order until the ceiling is reached and returns
// how many were accepted. Records past the ceiling are dropped.
func (s *Store) Append(records ...PageRecord) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	accepted := 0
	for _, r := range records {
		if len(s.records) >= MaxPages {
			break
		}
		s.records = append(s.records, r)
		accepted++
	}
	return accepted
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id string) (PageRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return PageRecord{}, false
}

// At returns a copy of the record at the given positional index.
func (s *Store) At(index int) (PageRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.records) {
		return PageRecord{}, false
	}
	return s.records[index], true
}

// Snapshot returns a copy of all records in order.
func (s *Store) Snapshot() []PageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PageRecord, len(s.records))
	copy(out, s.records)
	return out
}

// FirstPending returns the lowest-index record still in the pending
// state. The bulk loop uses this for FIFO-by-position scheduling.
func (s *Store) FirstPending() (PageRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.Status == StatusPending {
			return r, true
		}
	}
	return PageRecord{}, false
}

// CountByStatus returns how many records are in the given state.
func (s *Store) CountByStatus(status Status) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.records {
		if r.Status == status {
			n++
		}
	}
	return n
}

// BeginAnalyzing atomically claims a record for translation. It reports
// false when the record is missing or already analyzing; otherwise the
// record is moved to the analyzing state in the same critical section,
// so concurrent claimants can never both win.
func (s *Store) BeginAnalyzing(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		if s.records[i].Status == StatusAnalyzing {
			return false
		}
		s.records[i].Status = StatusAnalyzing
		return true
	}
	return false
}

// Update applies a merge-patch to the record with the given id. The
// change is visible to any reader as soon as Update returns.
func (s *Store) Update(id string, patch PagePatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		if patch.Status != nil {
			s.records[i].Status = *patch.Status
		}
		if patch.Result != nil {
			s.records[i].Result = patch.Result
		}
		if patch.ErrorMessage != nil {
			s.records[i].ErrorMessage = *patch.ErrorMessage
		}
		return true
	}
	return false
}

// Current returns the index of the currently selected page.
func (s *Store) Current() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Select makes the page at index the current one.
func (s *Store) Select(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.records) {
		return false
	}
	s.current = index
	return true
}

// Remove deletes the record with the given id, shifting later indices
// down by one. When the removed record was current and last (but not
// first), selection moves to the new last record; removing a record
// before the current one keeps the selection on the same logical page.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := -1
	for i := range s.records {
		if s.records[i].ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return false
	}

	isCurrent := index == s.current
	isLast := index == len(s.records)-1
	s.records = append(s.records[:index], s.records[index+1:]...)

	switch {
	case isCurrent && isLast && index > 0:
		s.current = index - 1
	case !isCurrent && index < s.current:
		s.current--
	}
	if s.current >= len(s.records) {
		s.current = 0
	}
	return true
}

// BeginIngest marks one ingestion as in flight. Ingestions may overlap
// when several uploads arrive together, so the flag is a counter:
// Ingesting stays true until every one of them has finished.
func (s *Store) BeginIngest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ingesting++
}

// EndIngest marks one ingestion as finished.
func (s *Store) EndIngest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ingesting > 0 {
		s.ingesting--
	}
}

// Ingesting reports whether any ingestion is in progress. The bulk loop
// polls this to decide between waiting for more pages and finishing.
func (s *Store) Ingesting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ingesting > 0
}
