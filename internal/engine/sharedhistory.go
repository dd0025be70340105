package engine

import "sync/atomic"

// sharedHistoryMax clamps a single cell the same way MoveOrderer's local
// history tables do, so a worker that mixes local and shared scores never
// has one term drown out the other.
const sharedHistoryMax = 400000

// SharedHistory is a from/to history table shared across every worker in a
// Lazy SMP search. Workers read it to temper their own local history with
// what the rest of the pool has already learned about the position, and
// write to it whenever a quiet move causes a beta cutoff. Cells are plain
// atomics rather than a mutex-guarded table: a lost update under concurrent
// writes is an acceptable rounding error for a heuristic, not a correctness
// bug, and it keeps every access lock-free.
type SharedHistory struct {
	cells [64][64]atomic.Int32
}

// NewSharedHistory creates an empty shared history table.
func NewSharedHistory() *SharedHistory {
	return &SharedHistory{}
}

// Get returns the current shared history score for a from/to pair.
func (sh *SharedHistory) Get(from, to int) int {
	return int(sh.cells[from][to].Load())
}

// Update adds bonus to the from/to cell, clamping and halving the whole
// table if any cell would overflow the clamp.
func (sh *SharedHistory) Update(from, to int, bonus int) {
	v := sh.cells[from][to].Add(int32(bonus))
	if v > sharedHistoryMax {
		sh.Clear()
	}
}

// Clear halves every cell, aging the table between searches the same way
// MoveOrderer.Clear ages its own local history.
func (sh *SharedHistory) Clear() {
	for i := range sh.cells {
		for j := range sh.cells[i] {
			sh.cells[i][j].Store(sh.cells[i][j].Load() / 2)
		}
	}
}
