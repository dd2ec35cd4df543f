package room

import (
	"strings"

	"github.com/park285/chess-rooms/internal/obslog"
	"github.com/park285/chess-rooms/internal/position"
	"go.uber.org/zap"
)

// Service applies the room/turn protocol on top of a Directory. Every
// operation on a room runs under that room's lock; rooms never block each
// other. Nothing here performs I/O, so callers fan out results after return.
type Service struct {
	dir *Directory
}

func NewService(dir *Directory) *Service {
	return &Service{dir: dir}
}

// Directory exposes the underlying session directory.
func (s *Service) Directory() *Directory { return s.dir }

// Join seats or admits connID into roomID, creating the room if needed. It
// never fails: full rooms and taken seats degrade to watching.
func (s *Service) Join(roomID, connID string, role Role, choice SeatChoice) JoinResult {
	roomID = strings.TrimSpace(roomID)
	connID = strings.TrimSpace(connID)

	// a connection belongs to one room at a time
	if prev, ok := s.dir.Lookup(connID); ok && prev != roomID {
		s.release(connID, prev)
	}

	m, created := s.dir.EnsureRoom(roomID)

	m.mu.Lock()
	requested := role
	seat := m.seatOf(connID)
	if seat != SeatNone {
		role = RolePlayer
	} else {
		if m.full() {
			role = RoleWatcher
		}
		if role == RolePlayer {
			want := SeatNone
			switch choice {
			case ChoiceWhite:
				want = SeatWhite
			case ChoiceBlack:
				want = SeatBlack
			case ChoiceRandom:
				want = SeatWhite
				if m.white != "" {
					want = SeatBlack
				}
			}
			if want != SeatNone && m.holder(want) == "" {
				m.occupy(want, connID)
				seat = want
			} else {
				role = RoleWatcher
			}
		}
		if role == RoleWatcher {
			m.watchers[connID] = struct{}{}
		}
	}
	view := m.view()
	m.mu.Unlock()

	s.dir.Bind(connID, roomID)

	res := JoinResult{
		View:          view,
		Role:          role,
		Seat:          seat,
		Created:       created,
		ForcedWatcher: requested == RolePlayer && seat == SeatNone,
	}
	obslog.L().Info("room_join",
		zap.String("room_id", roomID),
		zap.String("conn_id", connID),
		zap.String("role", string(role)),
		zap.String("seat", string(seat)),
		zap.Bool("created", created),
		zap.Bool("forced_watcher", res.ForcedWatcher),
	)
	return res
}

// Move plays notation (SAN or UCI) for connID.
func (s *Service) Move(roomID, connID, notation string) (MoveOutcome, error) {
	m, ok := s.dir.Get(roomID)
	if !ok {
		return MoveOutcome{}, ErrRoomNotFound
	}

	m.mu.Lock()
	mover := seatOfSide(m.pos.Turn())
	if connID == "" || m.holder(mover) != connID {
		m.mu.Unlock()
		return MoveOutcome{}, ErrNotYourTurn
	}
	if !m.ongoing() {
		m.mu.Unlock()
		return MoveOutcome{}, ErrMatchOver
	}
	mv, err := m.pos.ParseMove(notation)
	if err != nil {
		m.mu.Unlock()
		return MoveOutcome{}, ErrIllegalMove
	}
	var captured position.PieceKind
	if m.pos.IsCapture(mv) {
		if kind, ok := m.pos.PieceAt(mv.CaptureSquare); ok {
			captured = kind
		}
	}
	next, err := m.pos.Apply(mv)
	if err != nil {
		m.mu.Unlock()
		return MoveOutcome{}, ErrIllegalMove
	}

	m.pos = next
	m.record(mover, mv, captured, s.dir.now())

	switch {
	case next.IsCheckmate():
		m.conclude(StatusCheckmate, winnerResult(mover))
	case next.IsStalemate():
		m.conclude(StatusStalemate, ResultDraw)
	case next.IsInsufficientMaterial():
		m.conclude(StatusDraw, ResultDraw)
	}
	out := MoveOutcome{
		RoomID:   m.id,
		SAN:      mv.SAN,
		UCI:      mv.UCI,
		FEN:      next.FEN(),
		Status:   m.status,
		Result:   m.result,
		Turn:     seatOfSide(next.Turn()),
		Captured: captured,
	}
	if !m.ongoing() {
		summary := s.dir.finish(m)
		out.Summary = &summary
	}
	m.mu.Unlock()

	obslog.L().Info("room_move",
		zap.String("room_id", out.RoomID),
		zap.String("conn_id", connID),
		zap.String("san", out.SAN),
		zap.String("uci", out.UCI),
		zap.String("captured", string(out.Captured)),
		zap.String("status", string(out.Status)),
	)
	if out.Summary != nil {
		logMatchEnd(*out.Summary)
	}
	return out, nil
}

// Resign concedes the match for connID's seat.
func (s *Service) Resign(roomID, connID string) (Summary, error) {
	m, ok := s.dir.Get(roomID)
	if !ok {
		return Summary{}, ErrRoomNotFound
	}

	m.mu.Lock()
	seat := m.seatOf(connID)
	if seat == SeatNone {
		m.mu.Unlock()
		return Summary{}, ErrNotAPlayer
	}
	if !m.conclude(StatusResigned, winnerResult(seat.Opponent())) {
		m.mu.Unlock()
		return Summary{}, ErrMatchOver
	}
	summary := s.dir.finish(m)
	m.mu.Unlock()

	obslog.L().Info("room_resign",
		zap.String("room_id", summary.RoomID),
		zap.String("conn_id", connID),
		zap.String("seat", string(seat)),
	)
	logMatchEnd(summary)
	return summary, nil
}

// OfferDraw records connID as the pending draw offerer, replacing any earlier offer.
func (s *Service) OfferDraw(roomID, connID string) (DrawOffer, error) {
	m, ok := s.dir.Get(roomID)
	if !ok {
		return DrawOffer{}, ErrRoomNotFound
	}

	m.mu.Lock()
	seat := m.seatOf(connID)
	if seat == SeatNone {
		m.mu.Unlock()
		return DrawOffer{}, ErrNotAPlayer
	}
	if !m.ongoing() {
		m.mu.Unlock()
		return DrawOffer{}, ErrMatchOver
	}
	m.drawOfferedBy = connID
	m.mu.Unlock()

	obslog.L().Info("room_draw_offer",
		zap.String("room_id", m.id),
		zap.String("conn_id", connID),
		zap.String("seat", string(seat)),
	)
	return DrawOffer{RoomID: m.id, OfferedBy: connID, Seat: seat}, nil
}

// AcceptDraw ends the match as a draw if the other player has an offer pending.
func (s *Service) AcceptDraw(roomID, connID string) (Summary, error) {
	m, ok := s.dir.Get(roomID)
	if !ok {
		return Summary{}, ErrRoomNotFound
	}

	m.mu.Lock()
	switch {
	case m.drawOfferedBy == "":
		m.mu.Unlock()
		return Summary{}, ErrNoDrawOffer
	case m.drawOfferedBy == connID:
		m.mu.Unlock()
		return Summary{}, ErrCannotAcceptOwnOffer
	case m.seatOf(connID) == SeatNone:
		m.mu.Unlock()
		return Summary{}, ErrNotAPlayer
	}
	if !m.conclude(StatusDraw, ResultDraw) {
		m.mu.Unlock()
		return Summary{}, ErrMatchOver
	}
	m.drawOfferedBy = ""
	summary := s.dir.finish(m)
	m.mu.Unlock()

	obslog.L().Info("room_draw_accept",
		zap.String("room_id", summary.RoomID),
		zap.String("conn_id", connID),
	)
	logMatchEnd(summary)
	return summary, nil
}

// Disconnect releases whatever connID held in its bound room. A vacated seat
// stays open for re-joining; the match keeps its status.
func (s *Service) Disconnect(connID string) (Departure, bool) {
	roomID, ok := s.dir.Lookup(connID)
	if !ok {
		return Departure{}, false
	}
	return s.release(connID, roomID)
}

func (s *Service) release(connID, roomID string) (Departure, bool) {
	m, ok := s.dir.Get(roomID)
	if !ok {
		s.dir.unbindIf(connID, roomID)
		return Departure{}, false
	}

	m.mu.Lock()
	_, watched := m.watchers[connID]
	delete(m.watchers, connID)
	seat := m.seatOf(connID)
	switch seat {
	case SeatWhite:
		m.white = ""
	case SeatBlack:
		m.black = ""
	}
	view := m.view()
	m.mu.Unlock()

	s.dir.unbindIf(connID, roomID)

	obslog.L().Info("room_leave",
		zap.String("room_id", roomID),
		zap.String("conn_id", connID),
		zap.String("seat", string(seat)),
		zap.Bool("watcher", watched),
	)
	return Departure{RoomID: roomID, Seat: seat, WasWatcher: watched, View: view}, true
}

// Snapshot returns the current view of a room.
func (s *Service) Snapshot(roomID string) (View, bool) {
	m, ok := s.dir.Get(roomID)
	if !ok {
		return View{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view(), true
}

// CheckRoom reports whether a room exists and whether both seats are taken.
func (s *Service) CheckRoom(roomID string) Availability {
	roomID = strings.TrimSpace(roomID)
	m, ok := s.dir.Get(roomID)
	if !ok {
		return Availability{RoomID: roomID}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Availability{RoomID: roomID, Exists: true, IsFull: m.full()}
}

// Occupants lists seated players and watchers of a room.
func (s *Service) Occupants(roomID string) []string {
	m, ok := s.dir.Get(roomID)
	if !ok {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.occupants()
}

// Games returns the live, ended and historical logs.
func (s *Service) Games() Overview {
	return Overview{
		Live:  s.dir.Live(),
		Ended: s.dir.Ended(),
		All:   s.dir.All(),
	}
}

func logMatchEnd(sm Summary) {
	obslog.L().Info("match_end",
		zap.String("room_id", sm.RoomID),
		zap.String("status", string(sm.Status)),
		zap.String("result", string(sm.Result)),
		zap.String("white", sm.White),
		zap.String("black", sm.Black),
		zap.Int("move_count", sm.MoveCount),
	)
}
