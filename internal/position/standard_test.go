package position

import (
	"testing"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func play(t *testing.T, pos Position, moves ...string) Position {
	t.Helper()
	for _, n := range moves {
		mv, err := pos.ParseMove(n)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", n, err)
		}
		next, err := pos.Apply(mv)
		if err != nil {
			t.Fatalf("Apply(%q): %v", n, err)
		}
		pos = next
	}
	return pos
}

func TestStartPosition(t *testing.T) {
	pos := NewStandard().NewStandardPosition()
	if pos.FEN() != startFEN {
		t.Fatalf("unexpected start FEN: %s", pos.FEN())
	}
	if pos.Turn() != White || pos.Ply() != 0 {
		t.Fatalf("expected white to move at ply 0, got %v at %d", pos.Turn(), pos.Ply())
	}
	if n := len(pos.LegalMoves()); n != 20 {
		t.Fatalf("expected 20 legal moves, got %d", n)
	}
	if k, ok := pos.PieceAt("e1"); !ok || k != King {
		t.Fatalf("expected king on e1, got %q %v", k, ok)
	}
	if _, ok := pos.PieceAt("e4"); ok {
		t.Fatalf("expected empty e4")
	}
}

func TestParseMove_SANAndUCI(t *testing.T) {
	pos := NewStandard().NewStandardPosition()
	san, err := pos.ParseMove("e4")
	if err != nil {
		t.Fatalf("SAN: %v", err)
	}
	uci, err := pos.ParseMove("e2e4")
	if err != nil {
		t.Fatalf("UCI: %v", err)
	}
	if san.UCI != "e2e4" || uci.SAN != "e4" {
		t.Fatalf("notations disagree: san=%+v uci=%+v", san, uci)
	}
	if san.Capture || pos.IsCapture(san) {
		t.Fatalf("e4 is not a capture")
	}
}

func TestParseMove_Rejects(t *testing.T) {
	pos := NewStandard().NewStandardPosition()
	for _, n := range []string{"", "e9", "e5", "e2e5", "Ke2", "hello"} {
		if _, err := pos.ParseMove(n); err == nil {
			t.Fatalf("expected %q to be rejected", n)
		}
	}
}

func TestApplyDoesNotMutate(t *testing.T) {
	pos := NewStandard().NewStandardPosition()
	next := play(t, pos, "e4")
	if pos.FEN() != startFEN || pos.Ply() != 0 {
		t.Fatalf("original position changed: %s", pos.FEN())
	}
	if next.Turn() != Black || next.Ply() != 1 {
		t.Fatalf("expected black to move after e4")
	}
	if k, ok := next.PieceAt("e4"); !ok || k != Pawn {
		t.Fatalf("expected pawn on e4")
	}
}

func TestCaptureSquares(t *testing.T) {
	pos := play(t, NewStandard().NewStandardPosition(), "e4", "d5")
	mv, err := pos.ParseMove("exd5")
	if err != nil {
		t.Fatalf("exd5: %v", err)
	}
	if !pos.IsCapture(mv) || mv.CaptureSquare != "d5" {
		t.Fatalf("expected capture on d5, got %+v", mv)
	}

	ep := play(t, NewStandard().NewStandardPosition(), "e4", "a6", "e5", "d5")
	mv, err = ep.ParseMove("exd6")
	if err != nil {
		t.Fatalf("exd6: %v", err)
	}
	if !mv.Capture || mv.To != "d6" || mv.CaptureSquare != "d5" {
		t.Fatalf("expected en passant capture of d5, got %+v", mv)
	}
	if k, ok := ep.PieceAt(mv.CaptureSquare); !ok || k != Pawn {
		t.Fatalf("expected pawn on capture square")
	}
}

func TestFoolsMate(t *testing.T) {
	pos := play(t, NewStandard().NewStandardPosition(), "f3", "e5", "g4", "Qh4#")
	if !pos.IsCheckmate() {
		t.Fatalf("expected checkmate, FEN %s", pos.FEN())
	}
	if pos.IsStalemate() || pos.IsInsufficientMaterial() {
		t.Fatalf("checkmate must not report other terminal conditions")
	}
	if pos.Turn() != White {
		t.Fatalf("mated side should be to move")
	}
}

func TestShortestStalemate(t *testing.T) {
	pos := play(t, NewStandard().NewStandardPosition(),
		"e3", "a5", "Qh5", "Ra6", "Qxa5", "h5", "h4", "Rah6", "Qxc7", "f6",
		"Qxd7+", "Kf7", "Qxb7", "Qd3", "Qxb8", "Qh7", "Qxc8", "Kg6", "Qe6",
	)
	if !pos.IsStalemate() {
		t.Fatalf("expected stalemate, FEN %s", pos.FEN())
	}
	if pos.IsCheckmate() {
		t.Fatalf("stalemate is not checkmate")
	}
}

func TestPieceKindValues(t *testing.T) {
	want := map[PieceKind]int{Pawn: 1, Knight: 3, Bishop: 3, Rook: 5, Queen: 9, King: 0}
	for k, v := range want {
		if k.Value() != v {
			t.Fatalf("%s: want %d got %d", k, v, k.Value())
		}
	}
}

const knightsFEN = "7k/8/8/8/8/8/8/K2n3N w - - 0 1"

func fromFEN(t *testing.T, fen string) Position {
	t.Helper()
	eng, err := NewFromFEN(fen)
	if err != nil {
		t.Fatalf("NewFromFEN: %v", err)
	}
	return eng.NewStandardPosition()
}

func TestNewFromFEN(t *testing.T) {
	pos := fromFEN(t, knightsFEN)
	if pos.FEN() != knightsFEN || pos.Ply() != 0 || pos.Turn() != White {
		t.Fatalf("unexpected start: %s ply %d", pos.FEN(), pos.Ply())
	}
	next := play(t, pos, "h1g3")
	if k, ok := next.PieceAt("g3"); !ok || k != Knight {
		t.Fatalf("expected knight on g3, FEN %s", next.FEN())
	}
	if _, err := NewFromFEN("not a fen"); err == nil {
		t.Fatalf("expected error for malformed FEN")
	}
}

func TestInsufficientMaterialAfterCapture(t *testing.T) {
	pos := fromFEN(t, knightsFEN)
	if pos.IsInsufficientMaterial() {
		t.Fatalf("two knights are not yet a dead draw")
	}
	pos = play(t, pos, "h1g3", "d1b2", "a1b2")
	if !pos.IsInsufficientMaterial() {
		t.Fatalf("expected insufficient material, FEN %s", pos.FEN())
	}
	if pos.IsCheckmate() || pos.IsStalemate() {
		t.Fatalf("dead draw must not report mate or stalemate")
	}
}

func TestInsufficientMaterialAfterRepetition(t *testing.T) {
	pos := fromFEN(t, knightsFEN)
	for i := 0; i < 4; i++ {
		pos = play(t, pos, "h1g3", "d1c3", "g3h1", "c3d1")
	}
	if pos.IsInsufficientMaterial() {
		t.Fatalf("repeated position still has two knights")
	}
	pos = play(t, pos, "h1g3", "d1b2", "a1b2")
	if !pos.IsInsufficientMaterial() {
		t.Fatalf("expected insufficient material after repetition, FEN %s", pos.FEN())
	}
}
