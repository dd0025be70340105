package board

import "fmt"

// Move encodes a chess move in 32 bits:
//
//	bits 0-5:   from square (0-63)
//	bits 6-11:  to square (0-63)
//	bits 12-15: promotion piece (0=none, else PieceType value: Knight..Queen)
//	bit 16:     capture
//	bit 17:     en passant
//	bits 18-19: castle side (0=none, 1=kingside, 2=queenside)
//	bits 20-31: reserved
//
// The low 16 bits (from|to|promo) are the move's identity for comparison
// purposes: two Move values built from the same from/to/promo but carrying
// different capture/en-passant/castle metadata (for example a move
// reconstructed from a transposition table's 16-bit packed form, versus the
// fully-flagged move produced by the generator) are considered equal moves.
// Use Equals, not ==, whenever a move may have crossed that boundary.
type Move uint32

const (
	moveFromShift  = 0
	moveToShift    = 6
	movePromoShift = 12
	moveCapBit     = 16
	moveEPBit      = 17
	moveCastShift  = 18

	moveFromMask  = 0x3F
	moveToMask    = 0x3F
	movePromoMask = 0xF
	moveCastMask  = 0x3
	moveIdentMask = 0xFFFF // from | to | promo
)

// Castle side encoding (bits 18-19).
const (
	CastleNone     uint32 = 0
	CastleKingside uint32 = 1
	CastleQueenside uint32 = 2
)

// NoMove represents an invalid or null move.
const NoMove Move = 0

// NewMove creates a normal, non-capturing quiet move.
func NewMove(from, to Square) Move {
	return Move(uint32(from)<<moveFromShift | uint32(to)<<moveToShift)
}

// NewCapture creates a normal capturing move.
func NewCapture(from, to Square) Move {
	return NewMove(from, to) | Move(1<<moveCapBit)
}

// NewPromotion creates a (possibly capturing) promotion move.
func NewPromotion(from, to Square, promo PieceType, capture bool) Move {
	m := Move(uint32(from)<<moveFromShift | uint32(to)<<moveToShift | uint32(promo)<<movePromoShift)
	if capture {
		m |= Move(1 << moveCapBit)
	}
	return m
}

// NewEnPassant creates an en passant capture move.
func NewEnPassant(from, to Square) Move {
	return NewMove(from, to) | Move(1<<moveCapBit) | Move(1<<moveEPBit)
}

// NewCastling creates a castling move (the king's movement, kingside or
// queenside determined from the from/to squares).
func NewCastling(from, to Square) Move {
	side := CastleKingside
	if to < from {
		side = CastleQueenside
	}
	return NewMove(from, to) | Move(side<<moveCastShift)
}

// From returns the origin square.
func (m Move) From() Square {
	return Square((uint32(m) >> moveFromShift) & moveFromMask)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((uint32(m) >> moveToShift) & moveToMask)
}

// Promotion returns the promotion piece type. Only valid if IsPromotion().
func (m Move) Promotion() PieceType {
	return PieceType((uint32(m) >> movePromoShift) & movePromoMask)
}

// IsPromotion returns true if this move promotes a pawn. The promotion
// field is zero (Pawn's own PieceType value) when unused, since a pawn can
// never legally be the promotion target; Knight..Queen (1-4) mark an actual
// promotion.
func (m Move) IsPromotion() bool {
	return m.Promotion() != Pawn
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	return (uint32(m)>>moveCastShift)&moveCastMask != CastleNone
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return uint32(m)&(1<<moveEPBit) != 0
}

// IsCapture returns true if the move flags itself as a capture (including
// en passant). The move generator sets this flag only on en-passant and
// capturing-promotion moves; ordinary piece and pawn captures are built
// with NewMove and carry no flag, so use IsCaptureOn(pos) to test those.
func (m Move) IsCapture() bool {
	return uint32(m)&(1<<moveCapBit) != 0
}

// IsCaptureOn returns true if this move captures a piece on pos, regardless
// of whether the capture flag bit was set when the move was constructed.
func (m Move) IsCaptureOn(pos *Position) bool {
	if m.IsEnPassant() {
		return true
	}
	return !pos.IsEmpty(m.To())
}

// IsQuiet returns true if this is not a capture or promotion on pos.
func (m Move) IsQuiet(pos *Position) bool {
	return !m.IsCaptureOn(pos) && !m.IsPromotion()
}

// Equals compares the move identity (from, to, promotion piece) only,
// ignoring capture/en-passant/castle metadata bits. Use this whenever
// comparing a move reconstructed from a 16-bit packed form (transposition
// table, killer/history slot) against a fully-flagged generated move.
func (m Move) Equals(other Move) bool {
	return uint32(m)&moveIdentMask == uint32(other)&moveIdentMask
}

// Pack16 returns the 16-bit identity of the move (from|to|promo), suitable
// for compact storage in a transposition table slot.
func (m Move) Pack16() uint16 {
	return uint16(uint32(m) & moveIdentMask)
}

// MoveFromPack16 reconstructs a bare identity-only Move from a 16-bit packed
// form. The result carries no capture/en-passant/castle flags; callers that
// need a fully-flagged move should look the identity up in a generated move
// list via Equals instead of using this value directly in search.
func MoveFromPack16(p uint16) Move {
	return Move(p)
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	s := m.From().String() + m.To().String()

	if m.IsPromotion() {
		promoChars := [7]byte{0, 'n', 'b', 'r', 'q', 0, 0}
		s += string(promoChars[m.Promotion()])
	}

	return s
}

// ParseMove parses a UCI format move string against pos to recover the full
// set of move flags (capture/en-passant/castle) that the bare string does
// not encode.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}
	pt := piece.Type()
	capture := !pos.IsEmpty(to)

	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		return NewPromotion(from, to, promo, capture), nil
	}

	if pt == King && abs(int(to)-int(from)) == 2 {
		return NewCastling(from, to), nil
	}

	if pt == Pawn && to == pos.EnPassant && to != NoSquare {
		return NewEnPassant(from, to), nil
	}

	if capture {
		return NewCapture(from, to), nil
	}
	return NewMove(from, to), nil
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains a move with the same identity.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i].Equals(m) {
			return true
		}
	}
	return false
}

// Find returns the fully-flagged move in the list matching m's identity, and
// true if found. Used to recover full flags for a bare identity-only move
// (e.g. one unpacked from the transposition table).
func (ml *MoveList) Find(m Move) (Move, bool) {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i].Equals(m) {
			return ml.moves[i], true
		}
	}
	return NoMove, false
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// UndoInfo stores information needed to undo a move.
type UndoInfo struct {
	CapturedPiece  Piece
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	Hash           uint64
	PawnKey        uint64
	Checkers       Bitboard
	KingSquare     [2]Square      // Not filled by MakeMove; UnmakeMove does not read it
	Pieces         [2][6]Bitboard // Not filled by MakeMove; UnmakeMove does not read it
	Occupied       [2]Bitboard    // Not filled by MakeMove; UnmakeMove does not read it
	AllOccupied    Bitboard       // Not filled by MakeMove; UnmakeMove does not read it
	Valid          bool           // True if move was actually applied
}
