package room

import (
	"sort"
	"sync"
	"time"

	"github.com/park285/chess-rooms/internal/position"
)

// Match is one game instance. All fields are guarded by mu; callers outside
// this package only ever see View copies.
type Match struct {
	mu sync.Mutex

	id       string
	pos      position.Position
	white    string
	black    string
	watchers map[string]struct{}

	status Status
	result Result

	movesSAN []string
	movesUCI []string

	// captured pieces credited to the capturing side
	capturedByWhite []position.PieceKind
	capturedByBlack []position.PieceKind

	drawOfferedBy string
	createdAt     time.Time
	lastActivity  time.Time

	summary *Summary
}

func newMatch(id string, pos position.Position, now time.Time) *Match {
	return &Match{
		id:           id,
		pos:          pos,
		watchers:     make(map[string]struct{}),
		status:       StatusOngoing,
		result:       ResultUndetermined,
		createdAt:    now,
		lastActivity: now,
	}
}

// ID returns the room identifier.
func (m *Match) ID() string { return m.id }

func (m *Match) seatOf(connID string) Seat {
	switch {
	case connID == "":
		return SeatNone
	case m.white == connID:
		return SeatWhite
	case m.black == connID:
		return SeatBlack
	default:
		return SeatNone
	}
}

func (m *Match) holder(s Seat) string {
	switch s {
	case SeatWhite:
		return m.white
	case SeatBlack:
		return m.black
	default:
		return ""
	}
}

// occupy seats connID, dropping any watcher membership.
func (m *Match) occupy(s Seat, connID string) {
	delete(m.watchers, connID)
	if s == SeatWhite {
		m.white = connID
	} else {
		m.black = connID
	}
}

func (m *Match) full() bool { return m.white != "" && m.black != "" }

func (m *Match) ongoing() bool { return m.status == StatusOngoing }

// record appends an applied move and its capture. Scores are never stored;
// they are derived from the capture lists.
func (m *Match) record(mover Seat, mv position.Move, captured position.PieceKind, at time.Time) {
	m.movesSAN = append(m.movesSAN, mv.SAN)
	m.movesUCI = append(m.movesUCI, mv.UCI)
	if captured != "" {
		if mover == SeatWhite {
			m.capturedByWhite = append(m.capturedByWhite, captured)
		} else {
			m.capturedByBlack = append(m.capturedByBlack, captured)
		}
	}
	m.drawOfferedBy = ""
	m.lastActivity = at
}

// conclude moves the match out of ongoing. It reports false if the match had
// already concluded.
func (m *Match) conclude(status Status, result Result) bool {
	if !m.ongoing() || status == StatusOngoing {
		return false
	}
	m.status = status
	m.result = result
	return true
}

func (m *Match) occupants() []string {
	out := make([]string, 0, len(m.watchers)+2)
	if m.white != "" {
		out = append(out, m.white)
	}
	if m.black != "" {
		out = append(out, m.black)
	}
	for id := range m.watchers {
		out = append(out, id)
	}
	return out
}

func (m *Match) view() View {
	watchers := make([]string, 0, len(m.watchers))
	for id := range m.watchers {
		watchers = append(watchers, id)
	}
	sort.Strings(watchers)
	return View{
		RoomID:          m.id,
		FEN:             m.pos.FEN(),
		Status:          m.status,
		Result:          m.result,
		White:           m.white,
		Black:           m.black,
		Watchers:        watchers,
		Turn:            seatOfSide(m.pos.Turn()),
		MoveHistory:     append(make([]string, 0, len(m.movesSAN)), m.movesSAN...),
		MovesUCI:        append(make([]string, 0, len(m.movesUCI)), m.movesUCI...),
		CapturedByWhite: append(make([]position.PieceKind, 0, len(m.capturedByWhite)), m.capturedByWhite...),
		CapturedByBlack: append(make([]position.PieceKind, 0, len(m.capturedByBlack)), m.capturedByBlack...),
		ScoreWhite:      materialScore(m.capturedByWhite),
		ScoreBlack:      materialScore(m.capturedByBlack),
		DrawOfferedBy:   m.drawOfferedBy,
		CreatedAt:       m.createdAt,
		LastActivity:    m.lastActivity,
	}
}

func materialScore(captured []position.PieceKind) int {
	total := 0
	for _, k := range captured {
		total += k.Value()
	}
	return total
}
