package book

import (
	"sync"
	"time"
)

// Budget bounds enrichment over one import run by attempt count and by
// time elapsed since the run started. Once either bound is hit the budget
// stays exhausted.
type Budget struct {
	mu          sync.Mutex
	maxItems    int
	maxDuration time.Duration
	start       time.Time
	used        int
	exhausted   bool
	now         func() time.Time
}

// NewBudget starts a budget at the current time.
func NewBudget(maxItems int, maxDuration time.Duration) *Budget {
	return newBudgetAt(maxItems, maxDuration, time.Now)
}

func newBudgetAt(maxItems int, maxDuration time.Duration, now func() time.Time) *Budget {
	return &Budget{
		maxItems:    maxItems,
		maxDuration: maxDuration,
		start:       now(),
		now:         now,
	}
}

// Take reserves one enrichment attempt and reports whether it may run.
func (b *Budget) Take() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.exhausted {
		return false
	}
	if b.used >= b.maxItems || b.now().Sub(b.start) >= b.maxDuration {
		b.exhausted = true
		return false
	}
	b.used++
	return true
}

// Used returns the number of attempts taken so far.
func (b *Budget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

// Exhausted reports whether a bound has been hit.
func (b *Budget) Exhausted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exhausted
}
