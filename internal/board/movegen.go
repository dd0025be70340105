package board

// evasionMask is the set of squares a non-king piece may move to while its
// side is in check: capture the checker, or block the ray between king and
// checker. Not in check ⇒ no restriction (all ones). Double check ⇒ no
// non-king move resolves it, so the mask is empty.
func evasionMask(kingSq Square, checkers Bitboard) Bitboard {
	if checkers == 0 {
		return ^Bitboard(0)
	}
	if checkers&(checkers-1) != 0 {
		return 0
	}
	checkerSq := checkers.LSB()
	return checkers | Between(kingSq, checkerSq)
}

// GenerateLegalMoves generates all legal moves for the position: pin-aware
// and check-evasion-aware pseudo-legal generation, confirmed move-by-move
// by MakeMove (which itself rejects anything that would leave the mover's
// king in check).
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateAllMoves(ml)
	return p.confirmLegal(ml)
}

// GeneratePseudoLegalMoves generates pin- and evasion-aware pseudo-legal
// moves without the final make/unmake confirmation pass. Most callers want
// GenerateLegalMoves; this is for callers (perft diagnostics, the TT move
// sanity check) that only need the cheap generation step.
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateAllMoves(ml)
	return ml
}

// GenerateCaptures generates capture (and promotion) moves only.
func (p *Position) GenerateCaptures() *MoveList {
	ml := NewMoveList()
	p.generateCaptures(ml)
	return p.confirmLegal(ml)
}

// confirmLegal runs each candidate through MakeMove/UnmakeMove and keeps
// only the ones MakeMove accepts. Because generateAllMoves/generateCaptures
// are already pin- and evasion-aware, almost every candidate here is
// already legal — this pass exists to catch the handful of cases the masks
// don't model (the discovered-check-through-two-removed-pawns shape of an
// en-passant capture is handled separately in generatePawnMoves, but this
// remains the single source of truth matching spec.md's "final legality is
// always confirmed by do_move" rule).
func (p *Position) confirmLegal(ml *MoveList) *MoveList {
	result := NewMoveList()
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		undo := p.MakeMove(m)
		if !undo.Valid {
			continue
		}
		p.UnmakeMove(m, undo)
		result.Add(m)
	}
	return result
}

// PseudoLegal reports whether m could plausibly be a move in the current
// position: the mover exists, belongs to the side to move, and the
// from/to shape matches that piece's movement rules. It does not check
// pins, checks, or castling path safety. Used to sanity-check a
// transposition-table move (reconstructed from its 16-bit packed form, so
// it may be stale or hash-collided) before trusting it for move ordering;
// full legality is still confirmed by MakeMove.
func (p *Position) PseudoLegal(m Move) bool {
	if m == NoMove {
		return false
	}
	from, to := m.From(), m.To()
	if from == to {
		return false
	}
	piece := p.PieceAt(from)
	if piece == NoPiece || piece.Color() != p.SideToMove {
		return false
	}
	target := p.PieceAt(to)
	if target != NoPiece && target.Color() == p.SideToMove {
		return false
	}

	switch piece.Type() {
	case Pawn:
		return p.pawnShapeOK(m, piece.Color())
	case Knight:
		return KnightAttacks(from)&SquareBB(to) != 0
	case Bishop:
		return BishopAttacks(from, p.AllOccupied)&SquareBB(to) != 0
	case Rook:
		return RookAttacks(from, p.AllOccupied)&SquareBB(to) != 0
	case Queen:
		return QueenAttacks(from, p.AllOccupied)&SquareBB(to) != 0
	case King:
		if m.IsCastling() {
			return true
		}
		return KingAttacks(from)&SquareBB(to) != 0
	}
	return false
}

// pawnShapeOK checks a pawn move's from/to/flags against the pawn movement
// rules, ignoring pins and check.
func (p *Position) pawnShapeOK(m Move, us Color) bool {
	from, to := m.From(), m.To()
	var pushDir int
	if us == White {
		pushDir = 8
	} else {
		pushDir = -8
	}
	diff := int(to) - int(from)

	if m.IsEnPassant() {
		return to == p.EnPassant && (diff == pushDir-1 || diff == pushDir+1)
	}

	if diff == pushDir {
		return p.PieceAt(to) == NoPiece
	}
	if diff == 2*pushDir {
		startRank := 1
		if us == Black {
			startRank = 6
		}
		mid := Square(int(from) + pushDir)
		return from.Rank() == startRank && p.PieceAt(mid) == NoPiece && p.PieceAt(to) == NoPiece
	}
	if diff == pushDir-1 || diff == pushDir+1 {
		return p.PieceAt(to) != NoPiece
	}
	return false
}

// generateAllMoves generates pin- and evasion-aware pseudo-legal moves.
func (p *Position) generateAllMoves(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	occupied := p.AllOccupied
	enemies := p.Occupied[them]

	kingSq := p.KingSquare[us]
	evasion := evasionMask(kingSq, p.Checkers)
	pins := p.computePins(us)

	p.generatePawnMoves(ml, us, enemies, occupied, pins, evasion)

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		attacks := KnightAttacks(from) & ^p.Occupied[us] & pins.allowedTargets(from, evasion)
		for attacks != 0 {
			to := attacks.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}

	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		attacks := BishopAttacks(from, occupied) & ^p.Occupied[us] & pins.allowedTargets(from, evasion)
		for attacks != 0 {
			to := attacks.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}

	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		attacks := RookAttacks(from, occupied) & ^p.Occupied[us] & pins.allowedTargets(from, evasion)
		for attacks != 0 {
			to := attacks.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		attacks := QueenAttacks(from, occupied) & ^p.Occupied[us] & pins.allowedTargets(from, evasion)
		for attacks != 0 {
			to := attacks.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}

	p.generateKingMoves(ml, us)
	p.generateCastlingMoves(ml, us)
}

// generatePawnMoves generates all pawn moves, applying the pin/evasion mask
// to every shape except en-passant, which gets its own simulate-and-check
// legality test (see epLegal) because removing two pawns from the same rank
// can expose the king in a way the static pin analysis above doesn't model.
func (p *Position) generatePawnMoves(ml *MoveList, us Color, enemies, occupied Bitboard, pins pinState, evasion Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied

	var push1, push2, attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	addPawnTargets := func(targets Bitboard, fromOffset int, promo, capture bool) {
		for targets != 0 {
			to := targets.PopLSB()
			from := Square(int(to) - fromOffset)
			if pins.allowedTargets(from, evasion)&SquareBB(to) == 0 {
				continue
			}
			if promo {
				addPromotions(ml, from, to, capture)
			} else {
				ml.Add(NewMove(from, to))
			}
		}
	}

	addPawnTargets(push1&^promotionRank, pushDir, false, false)
	addPawnTargets(push2, 2*pushDir, false, false)
	addPawnTargets(attackL&^promotionRank, pushDir-1, false, true)
	addPawnTargets(attackR&^promotionRank, pushDir+1, false, true)
	addPawnTargets(push1&promotionRank, pushDir, true, false)
	addPawnTargets(attackL&promotionRank, pushDir-1, true, true)
	addPawnTargets(attackR&promotionRank, pushDir+1, true, true)

	if p.EnPassant != NoSquare {
		epBB := SquareBB(p.EnPassant)
		var epAttackers Bitboard
		if us == White {
			epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		} else {
			epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		}
		for epAttackers != 0 {
			from := epAttackers.PopLSB()
			if p.epLegal(from, p.EnPassant, us) {
				ml.Add(NewEnPassant(from, p.EnPassant))
			}
		}
	}
}

// epLegal simulates an en-passant capture — removing the capturing pawn
// from `from`, the captured pawn from the square behind the ep square, and
// placing the capturing pawn on the ep square — and checks whether the
// king would be attacked afterward. This single check subsumes the normal
// pin rule, the double-pawn-removal discovered-check case, and (since it
// tests for any attacker at all) the requirement that the capture actually
// gets the king out of check.
func (p *Position) epLegal(from, epSquare Square, us Color) bool {
	them := us.Other()
	var capturedSq Square
	if us == White {
		capturedSq = epSquare - 8
	} else {
		capturedSq = epSquare + 8
	}
	simulated := (p.AllOccupied &^ SquareBB(from) &^ SquareBB(capturedSq)) | SquareBB(epSquare)
	kingSq := p.KingSquare[us]
	if kingSq == NoSquare {
		return true
	}
	return p.AttackersByColor(kingSq, them, simulated) == 0
}

// epCaptureAvailable reports whether a pawn of color capturer actually sits
// where it could capture onto epSquare. A double push always sets EnPassant
// to the square it just jumped over, but the hash must only mix that square
// in when some capturer pawn is actually there to take it — otherwise two
// positions that differ only in an unusable en-passant square would hash
// differently despite offering the exact same set of legal moves, breaking
// repetition detection between them.
func (p *Position) epCaptureAvailable(epSquare Square, capturer Color) bool {
	rank := epSquare.Rank()
	var capturerRank int
	if rank == 2 {
		capturerRank = 3
	} else {
		capturerRank = 4
	}

	file := int(epSquare.File())
	pawns := p.Pieces[capturer][Pawn]
	if file > 0 && pawns&SquareBB(NewSquare(file-1, capturerRank)) != 0 {
		return true
	}
	if file < 7 && pawns&SquareBB(NewSquare(file+1, capturerRank)) != 0 {
		return true
	}
	return false
}

// addPromotions adds all four promotion moves.
func addPromotions(ml *MoveList, from, to Square, capture bool) {
	ml.Add(NewPromotion(from, to, Queen, capture))
	ml.Add(NewPromotion(from, to, Rook, capture))
	ml.Add(NewPromotion(from, to, Bishop, capture))
	ml.Add(NewPromotion(from, to, Knight, capture))
}

// generateKingMoves generates non-castling king moves, filtering out any
// destination attacked by the enemy once the king itself is removed from
// the occupancy (so the king can't "hide behind itself" on a ray it's
// about to step off of).
func (p *Position) generateKingMoves(ml *MoveList, us Color) {
	them := us.Other()
	from := p.KingSquare[us]
	occWithoutKing := p.AllOccupied &^ SquareBB(from)

	destinations := KingAttacks(from) & ^p.Occupied[us]
	for destinations != 0 {
		to := destinations.PopLSB()
		if p.AttackersByColor(to, them, occWithoutKing) != 0 {
			continue
		}
		ml.Add(NewMove(from, to))
	}
}

// generateCastlingMoves generates castling moves. Castling is never
// generated while in check because the king's own square is one of the
// squares checked for safety below; it is never generated through check
// for the same reason applied to the intermediate squares.
func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()

	if us == White {
		if p.CastlingRights&WhiteKingSideCastle != 0 {
			if p.AllOccupied&((1<<F1)|(1<<G1)) == 0 {
				if !p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(F1, them) && !p.IsSquareAttacked(G1, them) {
					ml.Add(NewCastling(E1, G1))
				}
			}
		}
		if p.CastlingRights&WhiteQueenSideCastle != 0 {
			if p.AllOccupied&((1<<B1)|(1<<C1)|(1<<D1)) == 0 {
				if !p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(D1, them) && !p.IsSquareAttacked(C1, them) {
					ml.Add(NewCastling(E1, C1))
				}
			}
		}
	} else {
		if p.CastlingRights&BlackKingSideCastle != 0 {
			if p.AllOccupied&((1<<F8)|(1<<G8)) == 0 {
				if !p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(F8, them) && !p.IsSquareAttacked(G8, them) {
					ml.Add(NewCastling(E8, G8))
				}
			}
		}
		if p.CastlingRights&BlackQueenSideCastle != 0 {
			if p.AllOccupied&((1<<B8)|(1<<C8)|(1<<D8)) == 0 {
				if !p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(D8, them) && !p.IsSquareAttacked(C8, them) {
					ml.Add(NewCastling(E8, C8))
				}
			}
		}
	}
}

// generateCaptures generates capture (and promotion) moves only, applying
// the same pin- and evasion-awareness as generateAllMoves.
func (p *Position) generateCaptures(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	enemies := p.Occupied[them]
	occupied := p.AllOccupied

	kingSq := p.KingSquare[us]
	evasion := evasionMask(kingSq, p.Checkers)
	pins := p.computePins(us)

	pawns := p.Pieces[us][Pawn]
	var attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	addPawnTargets := func(targets Bitboard, fromOffset int, promo bool) {
		for targets != 0 {
			to := targets.PopLSB()
			from := Square(int(to) - fromOffset)
			if pins.allowedTargets(from, evasion)&SquareBB(to) == 0 {
				continue
			}
			if promo {
				addPromotions(ml, from, to, true)
			} else {
				ml.Add(NewMove(from, to))
			}
		}
	}

	addPawnTargets(attackL&^promotionRank, pushDir-1, false)
	addPawnTargets(attackR&^promotionRank, pushDir+1, false)
	addPawnTargets(attackL&promotionRank, pushDir-1, true)
	addPawnTargets(attackR&promotionRank, pushDir+1, true)

	// Non-capture promotions: technically not captures, but quiescence
	// needs them alongside captures to avoid a promotion horizon effect.
	empty := ^occupied
	var push1 Bitboard
	if us == White {
		push1 = pawns.North() & empty & Rank8
	} else {
		push1 = pawns.South() & empty & Rank1
	}
	addPawnTargets(push1, pushDir, true)

	if p.EnPassant != NoSquare {
		epBB := SquareBB(p.EnPassant)
		var epAttackers Bitboard
		if us == White {
			epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		} else {
			epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		}
		for epAttackers != 0 {
			from := epAttackers.PopLSB()
			if p.epLegal(from, p.EnPassant, us) {
				ml.Add(NewEnPassant(from, p.EnPassant))
			}
		}
	}

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		attacks := KnightAttacks(from) & enemies & pins.allowedTargets(from, evasion)
		for attacks != 0 {
			to := attacks.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}

	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		attacks := BishopAttacks(from, occupied) & enemies & pins.allowedTargets(from, evasion)
		for attacks != 0 {
			to := attacks.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}

	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		attacks := RookAttacks(from, occupied) & enemies & pins.allowedTargets(from, evasion)
		for attacks != 0 {
			to := attacks.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		attacks := QueenAttacks(from, occupied) & enemies & pins.allowedTargets(from, evasion)
		for attacks != 0 {
			to := attacks.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}

	from := p.KingSquare[us]
	occWithoutKing := p.AllOccupied &^ SquareBB(from)
	attacks := KingAttacks(from) & enemies
	for attacks != 0 {
		to := attacks.PopLSB()
		if p.AttackersByColor(to, them, occWithoutKing) != 0 {
			continue
		}
		ml.Add(NewMove(from, to))
	}
}

// MakeMove applies a move to the position and returns undo information.
// If the move leaves the mover's own king in check, every mutation is
// rolled back and Valid is false — this is the single place legality is
// ultimately enforced, whether the move came from the pin-aware generator
// above or from untrusted UCI input.
func (p *Position) MakeMove(m Move) UndoInfo {
	undo := UndoInfo{
		CapturedPiece:  NoPiece,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		Hash:           p.Hash,
		PawnKey:        p.PawnKey,
		Checkers:       p.Checkers,
		Valid:          false,
	}

	us := p.SideToMove
	them := us.Other()
	from := m.From()
	to := m.To()
	piece := p.PieceAt(from)

	// Safety check - if no piece at from square, return without modifying position
	if piece == NoPiece || piece.Color() != us {
		return undo
	}

	// Mark as valid since we have a piece and will apply the move
	undo.Valid = true
	pt := piece.Type()

	// Update hash for side to move
	p.Hash ^= zobristSideToMove

	// Update hash for castling rights (will be updated again below if they change)
	p.Hash ^= zobristCastling[p.CastlingRights]

	// Update hash for en passant. The square being cleared was only ever
	// mixed into the hash if it was actually capturable when set (see
	// epCaptureAvailable); since no other move has touched us's pawns
	// since then, the same check run now reproduces that decision exactly.
	if p.EnPassant != NoSquare && p.epCaptureAvailable(p.EnPassant, us) {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}

	// Clear en passant
	p.EnPassant = NoSquare

	// Handle captures
	if m.IsEnPassant() {
		// En passant capture
		var capturedSq Square
		if us == White {
			capturedSq = to - 8
		} else {
			capturedSq = to + 8
		}
		undo.CapturedPiece = p.removePiece(capturedSq)
		p.Hash ^= zobristPiece[them][Pawn][capturedSq]
		p.PawnKey ^= zobristPiece[them][Pawn][capturedSq]
	} else if captured := p.PieceAt(to); captured != NoPiece {
		// Normal capture
		undo.CapturedPiece = captured
		p.removePiece(to)
		p.Hash ^= zobristPiece[them][captured.Type()][to]
		if captured.Type() == Pawn {
			p.PawnKey ^= zobristPiece[them][Pawn][to]
		}
	}

	// Move the piece
	p.movePiece(from, to)
	p.Hash ^= zobristPiece[us][pt][from]
	p.Hash ^= zobristPiece[us][pt][to]
	if pt == Pawn {
		p.PawnKey ^= zobristPiece[us][Pawn][from]
		p.PawnKey ^= zobristPiece[us][Pawn][to]
	}

	// Handle promotion
	if m.IsPromotion() {
		promoPt := m.Promotion()
		// Remove pawn, add promoted piece
		p.Pieces[us][Pawn] &^= SquareBB(to)
		p.Pieces[us][promoPt] |= SquareBB(to)
		p.Hash ^= zobristPiece[us][Pawn][to]
		p.Hash ^= zobristPiece[us][promoPt][to]
		p.PawnKey ^= zobristPiece[us][Pawn][to]
	}

	// Handle castling
	if m.IsCastling() {
		var rookFrom, rookTo Square
		if to > from {
			// Kingside
			rookFrom = NewSquare(7, from.Rank())
			rookTo = NewSquare(5, from.Rank())
		} else {
			// Queenside
			rookFrom = NewSquare(0, from.Rank())
			rookTo = NewSquare(3, from.Rank())
		}
		p.movePiece(rookFrom, rookTo)
		p.Hash ^= zobristPiece[us][Rook][rookFrom]
		p.Hash ^= zobristPiece[us][Rook][rookTo]
	}

	// Update castling rights
	if pt == King {
		if us == White {
			p.CastlingRights &^= WhiteKingSideCastle | WhiteQueenSideCastle
		} else {
			p.CastlingRights &^= BlackKingSideCastle | BlackQueenSideCastle
		}
	}

	// Rook moves or captures affect castling
	if from == A1 || to == A1 {
		p.CastlingRights &^= WhiteQueenSideCastle
	}
	if from == H1 || to == H1 {
		p.CastlingRights &^= WhiteKingSideCastle
	}
	if from == A8 || to == A8 {
		p.CastlingRights &^= BlackQueenSideCastle
	}
	if from == H8 || to == H8 {
		p.CastlingRights &^= BlackKingSideCastle
	}

	// Update hash for new castling rights
	p.Hash ^= zobristCastling[p.CastlingRights]

	// Set en passant square for double pawn push. The field is recorded
	// either way (move generation independently checks for an attacking
	// pawn), but the hash only mixes the square in when them actually has
	// a pawn in position to capture it — see epCaptureAvailable.
	if pt == Pawn && abs(int(to)-int(from)) == 16 {
		epSquare := Square((int(from) + int(to)) / 2)
		p.EnPassant = epSquare
		if p.epCaptureAvailable(epSquare, them) {
			p.Hash ^= zobristEnPassant[epSquare.File()]
		}
	}

	// Update half-move clock
	if pt == Pawn || undo.CapturedPiece != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}

	// Update full-move number
	if us == Black {
		p.FullMoveNumber++
	}

	// Switch side to move
	p.SideToMove = them

	// Reject the move if it leaves the mover's own king in check. This is
	// the final legality gate spec.md's do_move contract requires, and the
	// only one untrusted callers (UCI's `position ... moves`) get.
	if p.IsSquareAttacked(p.KingSquare[us], them) {
		p.UnmakeMove(m, undo)
		undo.Valid = false
		return undo
	}

	// Update checkers
	p.UpdateCheckers()

	return undo
}

// UnmakeMove undoes a move using the stored undo information.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	them := p.SideToMove
	us := them.Other()
	from := m.From()
	to := m.To()

	// Restore state
	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
	p.PawnKey = undo.PawnKey
	p.Checkers = undo.Checkers
	p.SideToMove = us

	if us == Black {
		p.FullMoveNumber--
	}

	// Handle promotion first (before moving piece back)
	if m.IsPromotion() {
		promoPt := m.Promotion()
		// Remove promoted piece, restore pawn
		p.Pieces[us][promoPt] &^= SquareBB(to)
		p.Pieces[us][Pawn] |= SquareBB(to)
	}

	// Move piece back
	p.movePiece(to, from)

	// Handle castling rook
	if m.IsCastling() {
		var rookFrom, rookTo Square
		if to > from {
			// Kingside
			rookFrom = NewSquare(7, from.Rank())
			rookTo = NewSquare(5, from.Rank())
		} else {
			// Queenside
			rookFrom = NewSquare(0, from.Rank())
			rookTo = NewSquare(3, from.Rank())
		}
		p.movePiece(rookTo, rookFrom)
	}

	// Restore captured piece
	if undo.CapturedPiece != NoPiece {
		if m.IsEnPassant() {
			var capturedSq Square
			if us == White {
				capturedSq = to - 8
			} else {
				capturedSq = to + 8
			}
			p.setPiece(undo.CapturedPiece, capturedSq)
		} else {
			p.setPiece(undo.CapturedPiece, to)
		}
	}
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool {
	return p.GenerateLegalMoves().Len() > 0
}

// IsCheckmate returns true if the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsDraw returns true if the position is a draw (stalemate, 50-move, insufficient material).
func (p *Position) IsDraw() bool {
	if p.IsStalemate() {
		return true
	}
	if p.HalfMoveClock >= 100 {
		return true
	}
	return p.IsInsufficientMaterial()
}

// IsInsufficientMaterial returns true if neither side can checkmate.
func (p *Position) IsInsufficientMaterial() bool {
	// If there are any pawns, rooks, or queens, sufficient material
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn] != 0 ||
		p.Pieces[White][Rook]|p.Pieces[Black][Rook] != 0 ||
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}

	// Count minor pieces
	wKnights := p.Pieces[White][Knight].PopCount()
	wBishops := p.Pieces[White][Bishop].PopCount()
	bKnights := p.Pieces[Black][Knight].PopCount()
	bBishops := p.Pieces[Black][Bishop].PopCount()

	// K vs K
	if wKnights+wBishops+bKnights+bBishops == 0 {
		return true
	}

	// K+minor vs K
	if wKnights+wBishops <= 1 && bKnights+bBishops == 0 {
		return true
	}
	if bKnights+bBishops <= 1 && wKnights+wBishops == 0 {
		return true
	}

	return false
}
