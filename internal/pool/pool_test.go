package pool

import (
	"fmt"
	"sync"
	"testing"
)

func TestAssignUntilExhausted(t *testing.T) {
	p := New("executor", 2)

	id1, ok := p.Assign("t1")
	if !ok || id1 == 0 {
		t.Fatalf("Assign(t1) = %d, %v", id1, ok)
	}
	id2, ok := p.Assign("t2")
	if !ok || id2 == id1 {
		t.Fatalf("Assign(t2) = %d, %v", id2, ok)
	}
	if _, ok := p.Assign("t3"); ok {
		t.Error("Assign succeeded on a full pool")
	}

	stats := p.Stats()
	if stats.Busy != 2 || stats.Idle != 0 {
		t.Errorf("stats = %+v, want 2 busy", stats)
	}
}

func TestReleaseByTaskIdempotent(t *testing.T) {
	p := New("executor", 1)
	p.Assign("t1")

	if _, ok := p.ReleaseByTask("t1"); !ok {
		t.Fatal("first release failed")
	}
	if _, ok := p.ReleaseByTask("t1"); ok {
		t.Error("second release claimed to free a slot")
	}
	if _, ok := p.ReleaseByTask("unknown"); ok {
		t.Error("releasing an unknown task claimed to free a slot")
	}

	stats := p.Stats()
	if stats.Idle != 1 {
		t.Errorf("stats = %+v, want 1 idle", stats)
	}
}

func TestMarkFailedExcludesSlot(t *testing.T) {
	p := New("validator", 2)
	id, _ := p.Assign("t1")
	p.ReleaseByTask("t1")
	p.MarkFailed(id)

	// Only the remaining healthy slot is assignable.
	if _, ok := p.Assign("t2"); !ok {
		t.Fatal("healthy slot not assignable")
	}
	if _, ok := p.Assign("t3"); ok {
		t.Error("failed slot was assigned")
	}

	stats := p.Stats()
	if stats.Failed != 1 || stats.Busy != 1 {
		t.Errorf("stats = %+v, want 1 failed 1 busy", stats)
	}
}

func TestReleaseLeavesFailedSlotAlone(t *testing.T) {
	p := New("executor", 1)
	id, _ := p.Assign("t1")
	p.MarkFailed(id)

	if _, ok := p.ReleaseByTask("t1"); ok {
		t.Error("release freed a failed slot")
	}
	stats := p.Stats()
	if stats.Failed != 1 || stats.Idle != 0 {
		t.Errorf("stats = %+v, want the slot still failed", stats)
	}
}

func TestStatsInvariant(t *testing.T) {
	p := New("executor", 7)
	p.Assign("a")
	p.Assign("b")

	s := p.Stats()
	if s.Busy+s.Idle+s.Failed != s.Total {
		t.Errorf("stats invariant violated: %+v", s)
	}
	if s.Total != 7 {
		t.Errorf("total = %d, want 7", s.Total)
	}
}

func TestResetRestoresAllIdle(t *testing.T) {
	p := New("executor", 3)
	p.Assign("a")
	id, _ := p.Assign("b")
	p.MarkFailed(id)

	p.Reset()
	stats := p.Stats()
	if stats.Idle != 3 || stats.Busy != 0 || stats.Failed != 0 {
		t.Errorf("stats after reset = %+v, want all idle", stats)
	}
}

func TestConcurrentAssignReleaseNeverExceedsCapacity(t *testing.T) {
	const size = 5
	p := New("executor", size)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			taskID := fmt.Sprintf("t%d", n)
			if _, ok := p.Assign(taskID); ok {
				if s := p.Stats(); s.Busy > size {
					t.Errorf("busy %d exceeds capacity %d", s.Busy, size)
				}
				p.ReleaseByTask(taskID)
			}
		}(i)
	}
	wg.Wait()

	stats := p.Stats()
	if stats.Idle != size {
		t.Errorf("stats after drain = %+v, want all idle", stats)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	p := New("executor", 1)
	snap := p.Snapshot()
	snap[0].Status = SlotFailed

	if p.Stats().Failed != 0 {
		t.Error("mutating a snapshot affected the pool")
	}
}
