package treelog

import (
	"sync"
	"sync/atomic"

	"github.com/wayneeseguin/treelog/internal/goid"
	"github.com/wayneeseguin/treelog/pkg/threadtree"
)

// ThreadControl arbitrates which goroutine's output reaches the console.
//
// Two modes compose: "solo" grants exclusive console output to one goroutine
// at a time, and "suppressed" silences a goroutine's own output. Solos nest
// across goroutines through monotonically increasing tickets; the holder of
// the highest still-present ticket is selected, and tickets may be removed
// in any order. While any solo is active, suppression is irrelevant.
type ThreadControl struct {
	mu         sync.Mutex
	nextTicket uint64
	selected   map[uint64]uint64 // ticket -> goroutine id
	active     int64             // atomic count of live tickets, lock-free fast path

	silenced *threadtree.ThreadContexts
}

// NewThreadControl creates an arbitration registry.
func NewThreadControl() *ThreadControl {
	return &ThreadControl{
		selected: make(map[uint64]uint64),
		silenced: threadtree.New(threadtree.Config{
			Counters: []string{counterSilenced},
		}),
	}
}

// SoloEnter grants the calling goroutine exclusive console output and
// returns the ticket to hand back to SoloExit.
func (tc *ThreadControl) SoloEnter() uint64 {
	tc.mu.Lock()
	tc.nextTicket++
	ticket := tc.nextTicket
	tc.selected[ticket] = goid.ID()
	tc.mu.Unlock()
	atomic.AddInt64(&tc.active, 1)
	return ticket
}

// SoloExit releases a ticket. Exits need not be LIFO relative to other
// goroutines' tickets; arbitration falls back to the next-highest remaining
// ticket, or to no solo at all.
func (tc *ThreadControl) SoloExit(ticket uint64) {
	tc.mu.Lock()
	_, present := tc.selected[ticket]
	delete(tc.selected, ticket)
	tc.mu.Unlock()
	if present {
		atomic.AddInt64(&tc.active, -1)
	}
}

// Selected returns the goroutine owning the highest remaining ticket. The
// second return is false when no solo is active, which is distinct from
// "some other goroutine is selected".
func (tc *ThreadControl) Selected() (uint64, bool) {
	if atomic.LoadInt64(&tc.active) == 0 {
		return 0, false
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	var highest uint64
	var owner uint64
	for ticket, gid := range tc.selected {
		if ticket >= highest {
			highest = ticket
			owner = gid
		}
	}
	if highest == 0 {
		return 0, false
	}
	return owner, true
}

// SuppressEnter silences the calling goroutine's console output until the
// returned scope exits. Suppression nests.
func (tc *ThreadControl) SuppressEnter() *threadtree.Scope {
	return tc.silenced.Enter(threadtree.Scoped{
		Counters: map[string]int{counterSilenced: 1},
	})
}

// Suppressed reports whether the calling goroutine is currently silenced.
func (tc *ThreadControl) Suppressed() bool {
	return tc.silenced.Counter(counterSilenced) > 0
}

// Allow decides whether a console write from the calling goroutine may
// proceed: while a solo is active only the selected goroutine emits,
// otherwise any goroutine that is not suppressed emits.
func (tc *ThreadControl) Allow() bool {
	if owner, ok := tc.Selected(); ok {
		return owner == goid.ID()
	}
	return !tc.Suppressed()
}
