package room

import (
	"strings"
	"time"

	"github.com/park285/chess-rooms/internal/position"
)

// Seat is one of the two playing slots of a match.
type Seat string

const (
	SeatNone  Seat = ""
	SeatWhite Seat = "white"
	SeatBlack Seat = "black"
)

// Opponent returns the other seat.
func (s Seat) Opponent() Seat {
	switch s {
	case SeatWhite:
		return SeatBlack
	case SeatBlack:
		return SeatWhite
	default:
		return SeatNone
	}
}

func seatOfSide(side position.Side) Seat {
	if side == position.Black {
		return SeatBlack
	}
	return SeatWhite
}

// SeatChoice is the seat a joining player asks for.
type SeatChoice string

const (
	ChoiceWhite  SeatChoice = "white"
	ChoiceBlack  SeatChoice = "black"
	ChoiceRandom SeatChoice = "random"
)

// ParseSeatChoice maps free text to a choice. Unknown and empty input mean random.
func ParseSeatChoice(s string) SeatChoice {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return ChoiceWhite
	case "black", "b":
		return ChoiceBlack
	default:
		return ChoiceRandom
	}
}

// Role is how a connection takes part in a room.
type Role string

const (
	RolePlayer  Role = "player"
	RoleWatcher Role = "watcher"
)

// ParseRole maps free text to a role; anything but "player" is a watcher.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RolePlayer)) {
		return RolePlayer
	}
	return RoleWatcher
}

// Status is the lifecycle state of a match. Once it leaves StatusOngoing it never returns.
type Status string

const (
	StatusOngoing   Status = "ongoing"
	StatusCheckmate Status = "checkmate"
	StatusStalemate Status = "stalemate"
	StatusDraw      Status = "draw"
	StatusResigned  Status = "resigned"
)

// Result is the outcome of a finished match.
type Result string

const (
	ResultUndetermined Result = ""
	ResultWhiteWins    Result = "white"
	ResultBlackWins    Result = "black"
	ResultDraw         Result = "draw"
)

func winnerResult(s Seat) Result {
	if s == SeatBlack {
		return ResultBlackWins
	}
	return ResultWhiteWins
}

// View is a read-only snapshot of a match.
type View struct {
	RoomID          string
	FEN             string
	Status          Status
	Result          Result
	White           string
	Black           string
	Watchers        []string
	Turn            Seat
	MoveHistory     []string
	MovesUCI        []string
	CapturedByWhite []position.PieceKind
	CapturedByBlack []position.PieceKind
	ScoreWhite      int
	ScoreBlack      int
	DrawOfferedBy   string
	CreatedAt       time.Time
	LastActivity    time.Time
}

// SeatOf reports which seat connID occupies in the view.
func (v View) SeatOf(connID string) Seat {
	switch {
	case connID == "":
		return SeatNone
	case v.White == connID:
		return SeatWhite
	case v.Black == connID:
		return SeatBlack
	default:
		return SeatNone
	}
}

// JoinResult is the outcome of Join. ForcedWatcher is set when a player seat
// was requested but the connection ended up watching.
type JoinResult struct {
	View          View
	Role          Role
	Seat          Seat
	Created       bool
	ForcedWatcher bool
}

// MoveOutcome is the outcome of a successful move. Summary is set when the
// move ended the match.
type MoveOutcome struct {
	RoomID   string
	SAN      string
	UCI      string
	FEN      string
	Status   Status
	Result   Result
	Turn     Seat
	Captured position.PieceKind
	Summary  *Summary
}

// Summary is the immutable record of a finished match.
type Summary struct {
	RoomID    string
	White     string
	Black     string
	Result    Result
	Status    Status
	EndedAt   time.Time
	MoveCount int
}

// DrawOffer acknowledges a recorded draw offer.
type DrawOffer struct {
	RoomID    string
	OfferedBy string
	Seat      Seat
}

// Departure describes what Disconnect released.
type Departure struct {
	RoomID     string
	Seat       Seat
	WasWatcher bool
	View       View
}

// Availability answers whether a room exists and has a free seat.
type Availability struct {
	RoomID string
	Exists bool
	IsFull bool
}

// HistoryEntry is one record of the historical log: a room creation, or the
// summary of a finished match.
type HistoryEntry struct {
	RoomID    string
	CreatedAt time.Time
	Summary   *Summary
}

// Overview lists live rooms, finished matches and the historical log.
type Overview struct {
	Live  []string
	Ended []Summary
	All   []HistoryEntry
}
