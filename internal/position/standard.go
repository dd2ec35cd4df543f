package position

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

type standardEngine struct {
	start string
}

// NewStandard returns the orthodox chess engine.
func NewStandard() Engine { return standardEngine{} }

// NewFromFEN returns an engine whose games begin at fen instead of the
// orthodox setup.
func NewFromFEN(fen string) (Engine, error) {
	if _, err := replay(fen, nil); err != nil {
		return nil, err
	}
	return standardEngine{start: fen}, nil
}

func (e standardEngine) NewStandardPosition() Position {
	game, err := replay(e.start, nil)
	if err != nil {
		game = nchess.NewGame()
	}
	return &standard{game: game, start: e.start}
}

// standard keeps the applied UCI moves and a game replayed from them. The held
// game is never mutated; every derived position is rebuilt by replay.
type standard struct {
	game  *nchess.Game
	start string
	uci   []string
}

func (p *standard) LegalMoves() []Move {
	ucis := validUCI(p.game.Position())
	out := make([]Move, 0, len(ucis))
	for _, uci := range ucis {
		mv, err := p.ParseMove(uci)
		if err != nil {
			continue
		}
		out = append(out, mv)
	}
	return out
}

// ParseMove accepts UCI first and falls back to SAN.
func (p *standard) ParseMove(notation string) (Move, error) {
	raw := strings.TrimSpace(notation)
	if raw == "" {
		return Move{}, ErrUnparsable
	}
	game, err := replay(p.start, p.uci)
	if err != nil {
		return Move{}, err
	}
	pos := game.Position()

	uci := strings.ToLower(raw)
	if mv, derr := (nchess.UCINotation{}).Decode(pos, uci); derr == nil && contains(validUCI(pos), uci) {
		if err := game.Move(mv, nil); err != nil {
			return Move{}, ErrUnparsable
		}
	} else if err := game.PushNotationMove(raw, nchess.AlgebraicNotation{}, nil); err != nil {
		return Move{}, ErrUnparsable
	}

	last := lastMove(game)
	if last == nil {
		return Move{}, ErrUnparsable
	}
	out := Move{
		UCI:  last.String(),
		SAN:  nchess.AlgebraicNotation{}.Encode(pos, last),
		From: last.S1().String(),
		To:   last.S2().String(),
	}
	out.CaptureSquare = out.To
	if last.HasTag(nchess.EnPassant) {
		file := last.S2().File()
		rank := last.S2().Rank()
		if pos.Turn() == nchess.White {
			out.CaptureSquare = nchess.NewSquare(file, rank-1).String()
		} else {
			out.CaptureSquare = nchess.NewSquare(file, rank+1).String()
		}
	}
	out.Capture = last.HasTag(nchess.Capture) || last.HasTag(nchess.EnPassant)
	return out, nil
}

func (p *standard) IsCapture(m Move) bool { return m.Capture }

func (p *standard) PieceAt(square string) (PieceKind, bool) {
	if !ValidSquare(square) {
		return "", false
	}
	sq := nchess.NewSquare(nchess.File(square[0]-'a'), nchess.Rank(square[1]-'1'))
	piece := p.game.Position().Board().Piece(sq)
	if piece == nchess.NoPiece {
		return "", false
	}
	return kindOf(piece.Type())
}

func (p *standard) Apply(m Move) (Position, error) {
	if strings.TrimSpace(m.UCI) == "" {
		return nil, ErrUnparsable
	}
	moves := append(append(make([]string, 0, len(p.uci)+1), p.uci...), m.UCI)
	game, err := replay(p.start, moves)
	if err != nil {
		return nil, ErrUnparsable
	}
	return &standard{game: game, start: p.start, uci: moves}, nil
}

func (p *standard) IsCheckmate() bool { return p.ends(nchess.Checkmate) }

func (p *standard) IsStalemate() bool { return p.ends(nchess.Stalemate) }

func (p *standard) IsInsufficientMaterial() bool { return p.ends(nchess.InsufficientMaterial) }

// ends reports whether the board itself is concluded by method. The replayed
// game keeps the first automatic draw it saw (repetition, move rule) for the
// rest of its life, so the board is also judged on a history-free copy.
func (p *standard) ends(method nchess.Method) bool {
	if p.game.Method() == method {
		return true
	}
	opt, err := nchess.FEN(p.game.FEN())
	if err != nil {
		return false
	}
	return nchess.NewGame(opt).Method() == method
}

func (p *standard) Turn() Side {
	if p.game.Position().Turn() == nchess.White {
		return White
	}
	return Black
}

func (p *standard) FEN() string { return p.game.FEN() }

func (p *standard) Ply() int { return len(p.uci) }

func (p *standard) String() string { return fmt.Sprintf("position(%s)", p.FEN()) }

// replay rebuilds a game from start (the orthodox setup when empty) by
// applying UCI moves.
func replay(start string, moves []string) (*nchess.Game, error) {
	game := nchess.NewGame()
	if start != "" {
		opt, err := nchess.FEN(start)
		if err != nil {
			return nil, fmt.Errorf("start fen %q: %w", start, err)
		}
		game = nchess.NewGame(opt)
	}
	for _, mv := range moves {
		if err := game.PushNotationMove(mv, nchess.UCINotation{}, nil); err != nil {
			return nil, fmt.Errorf("replay %q: %w", mv, err)
		}
	}
	return game, nil
}

func lastMove(game *nchess.Game) *nchess.Move {
	moves := game.Moves()
	if len(moves) == 0 {
		return nil
	}
	return moves[len(moves)-1]
}

// validUCI lists legal moves in UCI form. v2 releases differ in the element
// type ValidMoves returns, so both shapes are handled.
func validUCI(pos *nchess.Position) []string {
	var out []string
	switch moves := any(pos.ValidMoves()).(type) {
	case []*nchess.Move:
		for _, mv := range moves {
			out = append(out, mv.String())
		}
	case []nchess.Move:
		for i := range moves {
			out = append(out, moves[i].String())
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func kindOf(pt nchess.PieceType) (PieceKind, bool) {
	switch pt {
	case nchess.Pawn:
		return Pawn, true
	case nchess.Knight:
		return Knight, true
	case nchess.Bishop:
		return Bishop, true
	case nchess.Rook:
		return Rook, true
	case nchess.Queen:
		return Queen, true
	case nchess.King:
		return King, true
	default:
		return "", false
	}
}
