package pages

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

func testRecord(name string) PageRecord {
	return NewRecord([]byte{0xFF, 0xD8, 0x01}, "image/jpeg", name)
}

func filledStore(t *testing.T, n int) *Store {
	t.Helper()
	s := NewStore()
	for i := 0; i < n; i++ {
		if s.Append(testRecord(fmt.Sprintf("page %d", i))) != 1 {
			t.Fatalf("failed to append record %d", i)
		}
	}
	return s
}

func TestAppendCeiling(t *testing.T) {
	s := filledStore(t, MaxPages-2)

	batch := []PageRecord{testRecord("a"), testRecord("b"), testRecord("c"), testRecord("d")}
	accepted := s.Append(batch...)
	if accepted != 2 {
		t.Errorf("Expected 2 accepted, got %d", accepted)
	}
	if s.Len() != MaxPages {
		t.Errorf("Expected store length %d, got %d", MaxPages, s.Len())
	}
	if s.Remaining() != 0 {
		t.Errorf("Expected 0 remaining, got %d", s.Remaining())
	}

	if s.Append(testRecord("overflow")) != 0 {
		t.Error("Expected append on full store to accept nothing")
	}
	if s.Len() != MaxPages {
		t.Errorf("Store grew past ceiling: %d", s.Len())
	}
}

func TestUpdateMergePatch(t *testing.T) {
	s := filledStore(t, 1)
	id := s.Snapshot()[0].ID

	if !s.Update(id, PatchStatus(StatusAnalyzing)) {
		t.Fatal("Update returned false for existing record")
	}
	got, _ := s.Get(id)
	if got.Status != StatusAnalyzing {
		t.Errorf("Expected status analyzing, got %s", got.Status)
	}

	s.Update(id, PatchError("Translation failed. Click to retry."))
	got, _ = s.Get(id)
	if got.Status != StatusError || got.ErrorMessage == "" {
		t.Errorf("Expected error state with message, got %s %q", got.Status, got.ErrorMessage)
	}

	// A later success must clear the stale error message
	s.Update(id, PatchComplete(nil))
	got, _ = s.Get(id)
	if got.Status != StatusComplete {
		t.Errorf("Expected status complete, got %s", got.Status)
	}
	if got.ErrorMessage != "" {
		t.Errorf("Expected error message cleared, got %q", got.ErrorMessage)
	}

	if s.Update("no-such-id", PatchStatus(StatusPending)) {
		t.Error("Update returned true for missing record")
	}
}

func TestFirstPending(t *testing.T) {
	s := filledStore(t, 3)
	snap := s.Snapshot()

	s.Update(snap[0].ID, PatchComplete(nil))
	got, ok := s.FirstPending()
	if !ok || got.ID != snap[1].ID {
		t.Errorf("Expected first pending %s, got %s (ok=%v)", snap[1].ID, got.ID, ok)
	}

	s.Update(snap[1].ID, PatchStatus(StatusAnalyzing))
	got, ok = s.FirstPending()
	if !ok || got.ID != snap[2].ID {
		t.Errorf("Expected first pending %s, got %s (ok=%v)", snap[2].ID, got.ID, ok)
	}

	s.Update(snap[2].ID, PatchError("boom"))
	if _, ok := s.FirstPending(); ok {
		t.Error("Expected no pending records")
	}
}

func TestBeginAnalyzing(t *testing.T) {
	s := filledStore(t, 1)
	id := s.Snapshot()[0].ID

	if !s.BeginAnalyzing(id) {
		t.Fatal("First claim should succeed")
	}
	got, _ := s.Get(id)
	if got.Status != StatusAnalyzing {
		t.Errorf("Expected analyzing after claim, got %s", got.Status)
	}
	if s.BeginAnalyzing(id) {
		t.Error("Second claim on an analyzing page should fail")
	}

	// Terminal states release the claim so retries and explicit
	// re-translation can run.
	s.Update(id, PatchError("boom"))
	if !s.BeginAnalyzing(id) {
		t.Error("Claim after error should succeed")
	}
	s.Update(id, PatchComplete(nil))
	if !s.BeginAnalyzing(id) {
		t.Error("Claim after complete should succeed")
	}

	if s.BeginAnalyzing("no-such-id") {
		t.Error("Claim on missing record should fail")
	}
}

func TestBeginAnalyzingConcurrent(t *testing.T) {
	s := filledStore(t, 1)
	id := s.Snapshot()[0].ID

	const claimants = 16
	var wg sync.WaitGroup
	var wins atomic.Int32
	start := make(chan struct{})
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if s.BeginAnalyzing(id) {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("Expected exactly 1 winning claim, got %d", wins.Load())
	}
}

func TestIngestCounter(t *testing.T) {
	s := NewStore()
	if s.Ingesting() {
		t.Fatal("New store should not be ingesting")
	}

	// Two overlapping ingestions: the flag must hold until both end.
	s.BeginIngest()
	s.BeginIngest()
	s.EndIngest()
	if !s.Ingesting() {
		t.Error("Ingesting should stay true while one ingestion remains")
	}
	s.EndIngest()
	if s.Ingesting() {
		t.Error("Ingesting should be false after both ingestions end")
	}

	// Unbalanced EndIngest must not wedge the counter negative.
	s.EndIngest()
	s.BeginIngest()
	if !s.Ingesting() {
		t.Error("BeginIngest after a spurious EndIngest should still register")
	}
	s.EndIngest()
}

func TestRemoveSelection(t *testing.T) {
	tests := []struct {
		name            string
		pages           int
		current         int
		removeIdx       int
		expectedCurrent int
	}{
		{name: "remove current last selects previous", pages: 3, current: 2, removeIdx: 2, expectedCurrent: 1},
		{name: "remove before current keeps logical page", pages: 3, current: 2, removeIdx: 0, expectedCurrent: 1},
		{name: "remove after current keeps current", pages: 3, current: 0, removeIdx: 2, expectedCurrent: 0},
		{name: "remove current middle keeps index", pages: 3, current: 1, removeIdx: 1, expectedCurrent: 1},
		{name: "remove only page resets to zero", pages: 1, current: 0, removeIdx: 0, expectedCurrent: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := filledStore(t, tt.pages)
			if tt.current > 0 && !s.Select(tt.current) {
				t.Fatalf("Select(%d) failed", tt.current)
			}
			victim, _ := s.At(tt.removeIdx)
			if !s.Remove(victim.ID) {
				t.Fatal("Remove returned false")
			}
			if s.Current() != tt.expectedCurrent {
				t.Errorf("Expected current %d, got %d", tt.expectedCurrent, s.Current())
			}
			if s.Len() != tt.pages-1 {
				t.Errorf("Expected %d pages, got %d", tt.pages-1, s.Len())
			}
		})
	}
}

func TestRemoveShiftsIndicesNotIDs(t *testing.T) {
	s := filledStore(t, 3)
	snap := s.Snapshot()

	s.Remove(snap[1].ID)

	got, ok := s.At(1)
	if !ok || got.ID != snap[2].ID {
		t.Errorf("Expected record %s at index 1 after removal, got %s", snap[2].ID, got.ID)
	}
	if _, ok := s.Get(snap[1].ID); ok {
		t.Error("Removed record still retrievable by id")
	}
}

func TestSelectBounds(t *testing.T) {
	s := filledStore(t, 2)
	if s.Select(-1) {
		t.Error("Select(-1) should fail")
	}
	if s.Select(2) {
		t.Error("Select past end should fail")
	}
	if !s.Select(1) {
		t.Error("Select(1) should succeed")
	}
}

func TestNewRecordPreview(t *testing.T) {
	rec := NewRecord([]byte{0x89, 0x50, 0x4E, 0x47}, "image/png", "cover.png")
	if rec.Status != StatusPending {
		t.Errorf("Expected pending status, got %s", rec.Status)
	}
	if rec.ID == "" {
		t.Error("Expected non-empty id")
	}
	expected := "data:image/png;base64,iVBORw=="
	if rec.Preview != expected {
		t.Errorf("Expected preview %q, got %q", expected, rec.Preview)
	}
}
