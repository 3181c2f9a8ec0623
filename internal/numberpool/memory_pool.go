package numberpool

import (
	"sync"
	"time"
)

// MemoryPool is the legacy single-tenant rotator: an in-process ordered list
// of numbers with a round-robin cursor.
//
// It is a fairness heuristic, not a correctness guarantee: restart loses the
// cursor position, which is acceptable. Quota enforcement still holds within
// the process because each acquire/record runs under one mutex.
//
// Construct one per process and inject it; no module-level singleton.
type MemoryPool struct {
	mu      sync.Mutex
	numbers []PhoneNumber
	cursor  int
	clock   func() time.Time
}

func NewMemoryPool(numbers []PhoneNumber) *MemoryPool {
	owned := make([]PhoneNumber, len(numbers))
	copy(owned, numbers)
	return &MemoryPool{numbers: owned, clock: time.Now}
}

// Acquire scans from the cursor, wrapping once, and returns the first number
// whose today-usage is under its quota. The cursor advances past the returned
// number. Returns ok=false when every number is exhausted or disabled.
func (p *MemoryPool) Acquire() (PhoneNumber, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.numbers) == 0 {
		return PhoneNumber{}, false
	}

	today := DateOf(p.clock())
	for i := 0; i < len(p.numbers); i++ {
		idx := (p.cursor + i) % len(p.numbers)
		n := &p.numbers[idx]
		resetIfStale(n, today)
		if !n.Usable() {
			continue
		}
		p.cursor = (idx + 1) % len(p.numbers)
		return *n, true
	}
	return PhoneNumber{}, false
}

// Record counts one placed call against the number. Called after Acquire and
// before the provider confirms, so concurrent bursts cannot all pass the
// quota check against an unincremented counter.
func (p *MemoryPool) Record(numberID, callID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	today := DateOf(p.clock())
	for i := range p.numbers {
		n := &p.numbers[i]
		if n.ID != numberID {
			continue
		}
		resetIfStale(n, today)
		n.CallsToday++
		n.TotalCalls++
		n.LastCallID = callID
		return
	}
}

// RemainingCapacity sums today's unused capacity across all numbers.
func (p *MemoryPool) RemainingCapacity() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	today := DateOf(p.clock())
	total := 0
	for i := range p.numbers {
		resetIfStale(&p.numbers[i], today)
		total += p.numbers[i].Remaining()
	}
	return total
}
