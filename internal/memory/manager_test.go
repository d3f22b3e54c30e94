package memory

import "testing"

func TestAccessHitDoesNotFault(t *testing.T) {
	m := NewManager(2, FIFO)
	if fault := m.Access(1, 0); !fault {
		t.Fatalf("first access to a page must be a fault")
	}
	if fault := m.Access(1, 0); fault {
		t.Fatalf("re-accessing a resident page must be a hit")
	}
	if m.Report().TotalAccesses != 2 {
		t.Fatalf("TotalAccesses = %d, want 2", m.Report().TotalAccesses)
	}
}

func TestFreeFramesLeavesTableEmpty(t *testing.T) {
	m := NewManager(2, FIFO)
	m.Access(1, 0)
	m.Access(1, 1)
	m.FreeFramesOfPid(1)
	for i, f := range m.Frames() {
		if !f.Free() {
			t.Fatalf("frame %d should be free after FreeFramesOfPid, got %+v", i, f)
		}
	}
}

func TestSetAlgorithmPreservesCumulativeCounters(t *testing.T) {
	m := NewManager(1, FIFO)
	m.Access(1, 0)
	m.Access(1, 1) // faults again, evicting page 0
	before := m.Report()

	m.SetAlgorithm(LRU)
	after := m.Report()

	if after.TotalAccesses != before.TotalAccesses || after.TotalFaults != before.TotalFaults {
		t.Fatalf("SetAlgorithm must preserve cumulative counters: before=%+v after=%+v", before, after)
	}
	if after.Algorithm != LRU {
		t.Fatalf("Algorithm() = %v, want LRU", after.Algorithm)
	}
}

func TestSetNumFramesPreservesCumulativeCounters(t *testing.T) {
	m := NewManager(1, FIFO)
	m.Access(1, 0)
	before := m.Report()

	m.SetNumFrames(4)
	after := m.Report()

	if after.TotalAccesses != before.TotalAccesses || after.TotalFaults != before.TotalFaults {
		t.Fatalf("SetNumFrames must preserve cumulative counters")
	}
	if m.NumFrames() != 4 {
		t.Fatalf("NumFrames() = %d, want 4", m.NumFrames())
	}
}

// TestFIFOvsLRUFaultCounts is scenario 2: the reference string
// 0,1,2,3,0,1,2,3,0,1,2,3 over 3 frames for a 4-page process. Both
// algorithms fault on every access past the initial fill here: with only
// 3 frames for a working set of 4 pages accessed in a pure period-4
// cycle, whichever page a no-lookahead policy evicts is always the next
// one due back before the cycle repeats, so neither FIFO nor LRU can do
// better than the 3 compulsory faults plus one fault per remaining
// access — 12 faults total for both. (spec.md's own worked example
// claims FIFO=9 for this exact string; that number is unreachable by any
// correct simulation of it, since eviction policy cannot change which
// pages are resident when the working set exceeds frame count on a pure
// cycle — see DESIGN.md.)
func TestFIFOvsLRUFaultCounts(t *testing.T) {
	refs := []int{0, 1, 2, 3, 0, 1, 2, 3, 0, 1, 2, 3}

	fifo := NewManager(3, FIFO)
	for _, page := range refs {
		fifo.Access(1, page)
	}
	if got := fifo.Report().TotalFaults; got != 12 {
		t.Fatalf("FIFO faults = %d, want 12", got)
	}

	lru := NewManager(3, LRU)
	for _, page := range refs {
		lru.Access(1, page)
	}
	if got := lru.Report().TotalFaults; got != 12 {
		t.Fatalf("LRU faults = %d, want 12", got)
	}
}

func TestHitRateZeroWithNoAccesses(t *testing.T) {
	m := NewManager(2, FIFO)
	if m.HitRate() != 0 {
		t.Fatalf("HitRate() with no accesses = %v, want 0", m.HitRate())
	}
}

func TestParseAlgorithm(t *testing.T) {
	cases := map[string]Algorithm{"fifo": FIFO, "lru": LRU, "pff": PFF}
	for token, want := range cases {
		got, ok := ParseAlgorithm(token)
		if !ok || got != want {
			t.Fatalf("ParseAlgorithm(%q) = (%v, %v), want (%v, true)", token, got, ok, want)
		}
	}
	if _, ok := ParseAlgorithm("bogus"); ok {
		t.Fatalf("ParseAlgorithm(\"bogus\") should fail")
	}
}

func TestPFFFallsBackToLRUBelowThreshold(t *testing.T) {
	m := NewManager(1, PFF)
	// pid 1's fault count never exceeds pffThresholdHigh (3), so PFF must
	// behave exactly like LRU: the single frame always evicts the
	// resident page on the next distinct access.
	if !m.Access(1, 0) {
		t.Fatalf("first access must fault")
	}
	if !m.Access(1, 1) {
		t.Fatalf("second distinct page must fault the only frame")
	}
	if m.Frames()[0].Page != 1 {
		t.Fatalf("frame should now hold page 1")
	}
}
