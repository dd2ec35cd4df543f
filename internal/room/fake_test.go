package room

import (
	"fmt"
	"strings"

	"github.com/park285/chess-rooms/internal/position"
)

// scriptedEngine yields positions where any "xx-yy" token is legal. A token
// suffix picks the terminal state of the resulting position:
// "#" checkmate, "=" stalemate, "~" insufficient material.
type scriptedEngine struct{}

func (scriptedEngine) NewStandardPosition() position.Position { return scripted{} }

type scripted struct {
	ply   int
	state byte
}

func (p scripted) LegalMoves() []position.Move { return nil }

func (p scripted) ParseMove(n string) (position.Move, error) {
	n = strings.TrimSpace(n)
	if len(n) < 5 || n[2] != '-' {
		return position.Move{}, position.ErrUnparsable
	}
	mv := position.Move{UCI: n, SAN: n, From: n[:2], To: n[3:5]}
	if strings.HasPrefix(n[5:], "x") {
		mv.Capture = true
		mv.CaptureSquare = mv.To
	}
	return mv, nil
}

func (p scripted) IsCapture(m position.Move) bool { return m.Capture }

func (p scripted) PieceAt(string) (position.PieceKind, bool) { return position.Knight, true }

func (p scripted) Apply(m position.Move) (position.Position, error) {
	next := scripted{ply: p.ply + 1}
	if strings.HasSuffix(m.UCI, "#") || strings.HasSuffix(m.UCI, "=") || strings.HasSuffix(m.UCI, "~") {
		next.state = m.UCI[len(m.UCI)-1]
	}
	return next, nil
}

func (p scripted) IsCheckmate() bool            { return p.state == '#' }
func (p scripted) IsStalemate() bool            { return p.state == '=' }
func (p scripted) IsInsufficientMaterial() bool { return p.state == '~' }

func (p scripted) Turn() position.Side {
	if p.ply%2 == 1 {
		return position.Black
	}
	return position.White
}

func (p scripted) FEN() string { return fmt.Sprintf("scripted %d", p.ply) }
func (p scripted) Ply() int    { return p.ply }
