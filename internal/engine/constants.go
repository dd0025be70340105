package engine

import "github.com/chessplay/lazysmp/internal/board"

// Search-wide score bounds and ply limits, shared by the worker pool,
// move ordering, and the transposition table's mate-score encoding.
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128
)

// PVTable stores the principal variation discovered at each ply of a search.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// Search pruning toggles. All on by default; kept as named switches rather
// than inlined so a tuning session can disable one technique at a time
// without touching the search loop itself.
const (
	EnableSEEPruning     = true
	EnableLMP            = true
	EnableHistoryPruning = true
	EnableSingularExt    = true
)

// lmpThreshold caps the number of quiet moves tried at each remaining depth
// before late move pruning skips the rest. Indexed by depth, 0-7.
var lmpThreshold = [8]int{0, 5, 8, 13, 20, 28, 38, 50}

// historyPruningThreshold is the quiet-history score below which a move is
// pruned outright at shallow depth rather than merely reduced.
const historyPruningThreshold = -2000
