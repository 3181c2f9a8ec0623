package numberpool

import (
	"testing"
	"time"
)

func poolNumbers(n, limit int) []PhoneNumber {
	out := make([]PhoneNumber, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, PhoneNumber{
			ID:            string(rune('a' + i)),
			DailyLimit:    limit,
			LastResetDate: "2026-01-01",
			Status:        NumberStatusActive,
		})
	}
	return out
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestMemoryPoolRoundRobinFairness(t *testing.T) {
	p := NewMemoryPool(poolNumbers(3, 5))
	p.clock = fixedClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		n, ok := p.Acquire()
		if !ok {
			t.Fatalf("acquire %d failed", i)
		}
		if seen[n.ID] {
			t.Fatalf("number %s repeated before all were used", n.ID)
		}
		seen[n.ID] = true
		p.Record(n.ID, "call")
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct numbers, got %d", len(seen))
	}
}

func TestMemoryPoolSkipsExhaustedAndDisabled(t *testing.T) {
	nums := poolNumbers(3, 1)
	nums[1].Status = NumberStatusDisabled
	p := NewMemoryPool(nums)
	p.clock = fixedClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))

	first, ok := p.Acquire()
	if !ok || first.ID != "a" {
		t.Fatalf("expected a, got %v %v", first.ID, ok)
	}
	p.Record(first.ID, "c1")

	// b is disabled, so the cursor must land on c.
	second, ok := p.Acquire()
	if !ok || second.ID != "c" {
		t.Fatalf("expected c, got %v %v", second.ID, ok)
	}
	p.Record(second.ID, "c2")

	if _, ok := p.Acquire(); ok {
		t.Fatalf("expected exhausted pool")
	}
}

func TestMemoryPoolQuotaInvariant(t *testing.T) {
	p := NewMemoryPool(poolNumbers(1, 2))
	p.clock = fixedClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 2; i++ {
		n, ok := p.Acquire()
		if !ok {
			t.Fatalf("acquire %d failed", i)
		}
		p.Record(n.ID, "call")
	}
	if _, ok := p.Acquire(); ok {
		t.Fatalf("acquire must never select a number at its limit")
	}
	if p.RemainingCapacity() != 0 {
		t.Fatalf("expected zero remaining capacity")
	}
}

func TestMemoryPoolLazyDailyReset(t *testing.T) {
	p := NewMemoryPool(poolNumbers(1, 1))
	day1 := time.Date(2026, 1, 1, 23, 0, 0, 0, time.UTC)
	p.clock = fixedClock(day1)

	n, ok := p.Acquire()
	if !ok {
		t.Fatalf("acquire failed")
	}
	p.Record(n.ID, "c1")
	if _, ok := p.Acquire(); ok {
		t.Fatalf("expected exhausted before midnight")
	}

	// Cross the UTC day boundary: counter resets lazily on next access.
	p.clock = fixedClock(day1.Add(2 * time.Hour))
	n2, ok := p.Acquire()
	if !ok {
		t.Fatalf("expected number selectable after day boundary")
	}
	if n2.CallsToday != 0 {
		t.Fatalf("expected counter reset, got %d", n2.CallsToday)
	}
	p.Record(n2.ID, "c2")
	if _, ok := p.Acquire(); ok {
		t.Fatalf("reset must happen exactly once per day")
	}
}

func TestMemoryPoolEmpty(t *testing.T) {
	p := NewMemoryPool(nil)
	if _, ok := p.Acquire(); ok {
		t.Fatalf("empty pool must not acquire")
	}
}
