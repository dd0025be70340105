package engine

import (
	"sync/atomic"

	"github.com/chessplay/lazysmp/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

// NoStaticEval marks an entry's static-eval field as never having been set.
// It is outside the representable centipawn range so it can't be confused
// with a real score.
const NoStaticEval int16 = -32768

// TTEntry is the user-facing view of a probed slot: everything a caller
// needs, with the wire packing already undone.
type TTEntry struct {
	BestMove   board.Move
	Score      int16
	StaticEval int16
	Depth      int8
	Flag       TTFlag
	Age        uint8
	IsPV       bool
}

// Packed layout of the two 64-bit words that make up one slot.
//
// info: keyLow:16 | age:8 | depth:8 | bound:2 | isPV:1 | keyHigh:16 | reserved:12 | valid:1(MSB)
// data: move16:16 | score:16 | staticEval:16 | keyHigh:16 (redundant copy)
//
// keyHigh is stored in both words; a probe that finds them disagreeing has
// caught a torn read across the pair and discards the slot rather than
// trusting it.
const (
	infoKeyLowShift  = 0
	infoAgeShift     = 16
	infoDepthShift   = 24
	infoBoundShift   = 32
	infoPVShift      = 34
	infoKeyHighShift = 35
	infoValidShift   = 63

	infoKeyLowMask  = 0xFFFF
	infoAgeMask     = 0xFF
	infoDepthMask   = 0xFF
	infoBoundMask   = 0x3
	infoKeyHighMask = 0xFFFF

	dataMoveShift     = 0
	dataScoreShift    = 16
	dataEvalShift     = 32
	dataKeyHighShift  = 48
	dataMoveMask      = 0xFFFF
	dataScoreMask     = 0xFFFF
	dataEvalMask      = 0xFFFF
	dataKeyHighMask   = 0xFFFF
)

func packInfo(keyLow uint16, age, depth uint8, bound TTFlag, isPV bool, keyHigh uint16) uint64 {
	v := uint64(keyLow) << infoKeyLowShift
	v |= uint64(age) << infoAgeShift
	v |= uint64(depth) << infoDepthShift
	v |= uint64(bound&infoBoundMask) << infoBoundShift
	if isPV {
		v |= 1 << infoPVShift
	}
	v |= uint64(keyHigh) << infoKeyHighShift
	v |= 1 << infoValidShift
	return v
}

func packData(move16 uint16, score, staticEval int16, keyHigh uint16) uint64 {
	v := uint64(move16) << dataMoveShift
	v |= uint64(uint16(score)) << dataScoreShift
	v |= uint64(uint16(staticEval)) << dataEvalShift
	v |= uint64(keyHigh) << dataKeyHighShift
	return v
}

// ttSlot is a lock-free 4-way-cluster member: two atomic words, no mutex.
// A reader that sees the two words' redundant key-high copies disagree has
// observed a torn update and must discard the slot rather than act on it.
type ttSlot struct {
	info atomic.Uint64
	data atomic.Uint64
}

// ttCluster is the table's unit of replacement: 4 slots, 64 bytes, matching
// a typical cache line so one probe touches one line.
type ttCluster struct {
	slots [4]ttSlot
}

// TranspositionTable is a fixed-size array of clusters probed and updated
// by every search worker concurrently. There is no global lock: each slot
// update is a handful of atomic loads/CAS, and a store that loses a race is
// simply dropped (see Store).
type TranspositionTable struct {
	clusters []ttCluster
	mask     uint64
	age      atomic.Uint32

	hits   atomic.Uint64
	probes atomic.Uint64
}

// NewTranspositionTable creates a transposition table sized to sizeMB
// megabytes, rounded down to a power-of-two number of clusters.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	const clusterBytes = 64
	numClusters := (uint64(sizeMB) * 1024 * 1024) / clusterBytes
	numClusters = roundDownToPowerOf2(numClusters)
	if numClusters == 0 {
		numClusters = 1
	}
	return &TranspositionTable{
		clusters: make([]ttCluster, numClusters),
		mask:     numClusters - 1,
	}
}

func roundDownToPowerOf2(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// mix64 is the SplitMix64 finalizer, used to spread a Zobrist key's low-
// entropy bits across the cluster index before masking.
func mix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	x ^= x >> 31
	return x
}

func (tt *TranspositionTable) index(key uint64) uint64 {
	return mix64(key) & tt.mask
}

// Prefetch issues a best-effort read of the cluster a key maps to. Go has
// no prefetch intrinsic, so this just touches the cache line early; callers
// call it right after computing a child position's hash so the next node's
// Probe is likely to hit in cache.
func (tt *TranspositionTable) Prefetch(key uint64) {
	cluster := &tt.clusters[tt.index(key)]
	_ = cluster.slots[0].info.Load()
}

// Probe looks up a position in the transposition table. Returns the entry
// and true if a verified, non-torn match was found.
func (tt *TranspositionTable) Probe(key uint64) (TTEntry, bool) {
	tt.probes.Add(1)

	cluster := &tt.clusters[tt.index(key)]
	keyLow := uint16(key)
	keyHigh := uint16(key >> 16)

	for i := range cluster.slots {
		slot := &cluster.slots[i]
		info := slot.info.Load()
		if info>>infoValidShift&1 == 0 {
			continue
		}
		if uint16(info>>infoKeyLowShift) != keyLow {
			continue
		}
		infoKeyHigh := uint16(info >> infoKeyHighShift & infoKeyHighMask)
		if infoKeyHigh != keyHigh {
			continue
		}

		data := slot.data.Load()
		dataKeyHigh := uint16(data >> dataKeyHighShift & dataKeyHighMask)
		if dataKeyHigh != infoKeyHigh {
			// Torn read: info and data disagree on the redundant key-high
			// copy. Drop the slot rather than trust half of it.
			continue
		}

		tt.hits.Add(1)
		entry := TTEntry{
			BestMove:   board.Move(uint16(data >> dataMoveShift & dataMoveMask)),
			Score:      int16(uint16(data >> dataScoreShift & dataScoreMask)),
			StaticEval: int16(uint16(data >> dataEvalShift & dataEvalMask)),
			Depth:      int8(uint8(info >> infoDepthShift & infoDepthMask)),
			Flag:       TTFlag(info >> infoBoundShift & infoBoundMask),
			Age:        uint8(info >> infoAgeShift & infoAgeMask),
			IsPV:       info>>infoPVShift&1 != 0,
		}
		return entry, true
	}

	return TTEntry{}, false
}

// entryWeaker reports whether an incumbent entry (depth/bound/age) should
// yield to a new one with the given depth/bound/age. This is the single
// total order used by both the same-key update and victim-replacement paths
// (SPEC_FULL.md Open Question 1): an age mismatch beats everything; among
// same-generation entries prefer strictly greater depth; depth ties prefer
// evicting a non-exact bound over an exact one; otherwise keep the
// incumbent.
func entryWeaker(newDepth int, newBound TTFlag, newAge uint8, oldDepth int, oldBound TTFlag, oldAge uint8) bool {
	if newAge != oldAge {
		return true
	}
	if newDepth != oldDepth {
		return newDepth > oldDepth
	}
	if oldBound == TTExact && newBound != TTExact {
		return false
	}
	if newBound == TTExact && oldBound != TTExact {
		return true
	}
	return false
}

func clampInt16(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// Store saves a search result into the table. It tries, in order: patch an
// existing slot with the same key if the new result is strictly better (or
// best-effort-patch just the move if the incumbent has none); claim an
// empty slot; or evict the weakest slot in the cluster. A CAS that loses a
// race against a concurrent writer is not retried — the update is silently
// dropped, matching the "drop rather than loop" policy in spec.md §4.5 and
// §9.
func (tt *TranspositionTable) Store(key uint64, depth int, score int, flag TTFlag, bestMove board.Move, isPV bool, staticEval int) {
	if depth < 0 {
		depth = 0
	}
	if depth > 255 {
		depth = 255
	}
	age := uint8(tt.age.Load())
	keyLow := uint16(key)
	keyHigh := uint16(key >> 16)

	clampedEval := NoStaticEval
	if staticEval != int(NoStaticEval) {
		clampedEval = clampInt16(staticEval)
	}
	move16 := uint16(bestMove) & infoKeyLowMask

	newInfo := packInfo(keyLow, age, uint8(depth), flag, isPV, keyHigh)
	newData := packData(move16, clampInt16(score), clampedEval, keyHigh)

	cluster := &tt.clusters[tt.index(key)]

	// 1. Same-key update.
	for i := range cluster.slots {
		slot := &cluster.slots[i]
		info := slot.info.Load()
		if info>>infoValidShift&1 == 0 {
			continue
		}
		if uint16(info>>infoKeyLowShift) != keyLow || uint16(info>>infoKeyHighShift&infoKeyHighMask) != keyHigh {
			continue
		}

		oldDepth := int(uint8(info >> infoDepthShift & infoDepthMask))
		oldBound := TTFlag(info >> infoBoundShift & infoBoundMask)
		oldAge := uint8(info >> infoAgeShift & infoAgeMask)

		if entryWeaker(depth, flag, age, oldDepth, oldBound, oldAge) {
			slot.data.Store(newData)
			slot.info.CompareAndSwap(info, newInfo)
		} else if move16 != 0 {
			oldData := slot.data.Load()
			if uint16(oldData>>dataMoveShift&dataMoveMask) == 0 {
				patched := oldData&^uint64(dataMoveMask) | uint64(move16)
				slot.data.CompareAndSwap(oldData, patched)
			}
		}
		return
	}

	// 2. Empty slot.
	for i := range cluster.slots {
		slot := &cluster.slots[i]
		if slot.info.CompareAndSwap(0, newInfo) {
			slot.data.Store(newData)
			return
		}
	}

	// 3. Replacement victim: the weakest slot in the cluster by the same
	// total order, re-checked right before the CAS so a slot that a
	// concurrent writer just improved is not clobbered.
	victim := 0
	victimInfo := cluster.slots[0].info.Load()
	for i := 1; i < len(cluster.slots); i++ {
		info := cluster.slots[i].info.Load()
		vDepth := int(uint8(victimInfo >> infoDepthShift & infoDepthMask))
		vBound := TTFlag(victimInfo >> infoBoundShift & infoBoundMask)
		vAge := uint8(victimInfo >> infoAgeShift & infoAgeMask)
		iDepth := int(uint8(info >> infoDepthShift & infoDepthMask))
		iBound := TTFlag(info >> infoBoundShift & infoBoundMask)
		iAge := uint8(info >> infoAgeShift & infoAgeMask)
		if vAge != age {
			break // a stale victim is already the weakest
		}
		if iAge != age || entryWeaker(vDepth, vBound, vAge, iDepth, iBound, iAge) {
			victim = i
			victimInfo = info
		}
	}

	slot := &cluster.slots[victim]
	vDepth := int(uint8(victimInfo >> infoDepthShift & infoDepthMask))
	vBound := TTFlag(victimInfo >> infoBoundShift & infoBoundMask)
	vAge := uint8(victimInfo >> infoAgeShift & infoAgeMask)
	if !entryWeaker(depth, flag, age, vDepth, vBound, vAge) {
		return
	}
	slot.data.Store(newData)
	slot.info.CompareAndSwap(victimInfo, newInfo)
}

// NewSearch advances the generation counter. Called once per root search
// (including each Lazy-SMP helper's copy) so the replacement policy can
// tell current-search entries from stale ones.
func (tt *TranspositionTable) NewSearch() {
	tt.age.Add(1)
}

// Clear empties every cluster. Not safe to call concurrently with a running
// search (spec.md §5).
func (tt *TranspositionTable) Clear() {
	for i := range tt.clusters {
		for j := range tt.clusters[i].slots {
			tt.clusters[i].slots[j].info.Store(0)
			tt.clusters[i].slots[j].data.Store(0)
		}
	}
	tt.age.Store(0)
	tt.hits.Store(0)
	tt.probes.Store(0)
}

// HashFull returns the permille (parts per thousand) of sampled slots that
// belong to the current generation.
func (tt *TranspositionTable) HashFull() int {
	sampleClusters := 250
	if uint64(sampleClusters) > uint64(len(tt.clusters)) {
		sampleClusters = len(tt.clusters)
	}
	age := uint8(tt.age.Load())
	used := 0
	total := 0
	for i := 0; i < sampleClusters; i++ {
		for j := range tt.clusters[i].slots {
			total++
			info := tt.clusters[i].slots[j].info.Load()
			if info>>infoValidShift&1 == 0 {
				continue
			}
			if uint8(info>>infoAgeShift&infoAgeMask) == age {
				used++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return (used * 1000) / total
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	probes := tt.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(tt.hits.Load()) / float64(probes) * 100
}

// Size returns the number of slots (4 per cluster) in the table.
func (tt *TranspositionTable) Size() uint64 {
	return uint64(len(tt.clusters)) * 4
}

// AdjustScoreFromTT adjusts a score read from the transposition table.
// Mate scores are stored as a distance from the storing node, so they must
// be re-based to a distance from the current node.
func AdjustScoreFromTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT adjusts a score for storage in the transposition table.
func AdjustScoreToTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
