// Package position defines the narrow rules-engine capability the room core
// consumes, plus a standard-chess implementation backed by corentings/chess.
package position

import (
	"errors"
	"strings"
)

// Side identifies the side to move.
type Side int

const (
	White Side = iota
	Black
)

func (s Side) String() string {
	if s == Black {
		return "black"
	}
	return "white"
}

// PieceKind is a colorless piece type.
type PieceKind string

const (
	Pawn   PieceKind = "pawn"
	Knight PieceKind = "knight"
	Bishop PieceKind = "bishop"
	Rook   PieceKind = "rook"
	Queen  PieceKind = "queen"
	King   PieceKind = "king"
)

var pieceValues = map[PieceKind]int{
	Pawn:   1,
	Knight: 3,
	Bishop: 3,
	Rook:   5,
	Queen:  9,
	King:   0,
}

// Value returns the material value of the piece kind.
func (k PieceKind) Value() int { return pieceValues[k] }

// ErrUnparsable is returned by ParseMove for notation that is malformed or
// not legal in the position.
var ErrUnparsable = errors.New("unparsable or illegal move")

// Move is a legal move in a specific position. CaptureSquare differs from To
// only for en passant.
type Move struct {
	UCI           string
	SAN           string
	From          string
	To            string
	Capture       bool
	CaptureSquare string
}

// Position is an immutable game position.
type Position interface {
	LegalMoves() []Move
	ParseMove(notation string) (Move, error)
	IsCapture(m Move) bool
	PieceAt(square string) (PieceKind, bool)
	Apply(m Move) (Position, error)
	IsCheckmate() bool
	IsStalemate() bool
	IsInsufficientMaterial() bool
	Turn() Side
	FEN() string
	// Ply is the number of half-moves applied since the start position.
	Ply() int
}

// Engine creates starting positions.
type Engine interface {
	NewStandardPosition() Position
}

// ValidSquare reports whether s names a board square such as "e4".
func ValidSquare(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}
