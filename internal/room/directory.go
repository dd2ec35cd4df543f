package room

import (
	"strings"
	"sync"
	"time"

	"github.com/park285/chess-rooms/internal/position"
)

// Directory maps room ids to matches and connections to rooms, and keeps the
// live/ended/all logs.
//
// Lock order: a room lock may be held while taking logMu; mu may be held
// while taking logMu. mu is never taken while a room lock is held.
type Directory struct {
	engine position.Engine
	now    func() time.Time

	mu       sync.RWMutex
	rooms    map[string]*Match
	bindings map[string]string // connID -> roomID

	logMu sync.Mutex
	live  []string
	ended []Summary
	all   []HistoryEntry
}

// Option configures a Directory.
type Option func(*Directory)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Directory) {
		if now != nil {
			d.now = now
		}
	}
}

func NewDirectory(engine position.Engine, opts ...Option) *Directory {
	d := &Directory{
		engine:   engine,
		now:      time.Now,
		rooms:    make(map[string]*Match),
		bindings: make(map[string]string),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// EnsureRoom returns the match for roomID, creating it on first reference.
// Concurrent first references create exactly one match.
func (d *Directory) EnsureRoom(roomID string) (*Match, bool) {
	roomID = strings.TrimSpace(roomID)
	d.mu.RLock()
	m := d.rooms[roomID]
	d.mu.RUnlock()
	if m != nil {
		return m, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if m := d.rooms[roomID]; m != nil {
		return m, false
	}
	now := d.now()
	m = newMatch(roomID, d.engine.NewStandardPosition(), now)
	d.rooms[roomID] = m

	d.logMu.Lock()
	d.live = append(d.live, roomID)
	d.all = append(d.all, HistoryEntry{RoomID: roomID, CreatedAt: now})
	d.logMu.Unlock()
	return m, true
}

// Get returns an existing match.
func (d *Directory) Get(roomID string) (*Match, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.rooms[strings.TrimSpace(roomID)]
	return m, ok
}

// Bind associates connID with roomID, superseding any previous binding, and
// returns the previous room if there was one.
func (d *Directory) Bind(connID, roomID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev, had := d.bindings[connID]
	d.bindings[connID] = roomID
	return prev, had
}

// Lookup returns the room connID is bound to.
func (d *Directory) Lookup(connID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	roomID, ok := d.bindings[connID]
	return roomID, ok
}

// Unbind removes connID's binding; absent bindings are ignored.
func (d *Directory) Unbind(connID string) {
	d.mu.Lock()
	delete(d.bindings, connID)
	d.mu.Unlock()
}

// unbindIf removes the binding only while it still points at roomID.
func (d *Directory) unbindIf(connID, roomID string) {
	d.mu.Lock()
	if d.bindings[connID] == roomID {
		delete(d.bindings, connID)
	}
	d.mu.Unlock()
}

// finish is the only way a match leaves the live set. The caller holds m.mu
// and has already concluded the match. Repeated calls return the first summary.
func (d *Directory) finish(m *Match) Summary {
	if m.summary != nil {
		return *m.summary
	}
	s := Summary{
		RoomID:    m.id,
		White:     m.white,
		Black:     m.black,
		Result:    m.result,
		Status:    m.status,
		EndedAt:   d.now(),
		MoveCount: len(m.movesSAN),
	}
	m.summary = &s

	d.logMu.Lock()
	for i, id := range d.live {
		if id == m.id {
			d.live = append(d.live[:i], d.live[i+1:]...)
			break
		}
	}
	d.ended = append(d.ended, s)
	rec := s
	d.all = append(d.all, HistoryEntry{RoomID: m.id, CreatedAt: m.createdAt, Summary: &rec})
	d.logMu.Unlock()
	return s
}

// Live returns the ids of rooms whose match is ongoing, in creation order.
func (d *Directory) Live() []string {
	d.logMu.Lock()
	defer d.logMu.Unlock()
	return append([]string(nil), d.live...)
}

// Ended returns the summaries of finished matches in the order they ended.
func (d *Directory) Ended() []Summary {
	d.logMu.Lock()
	defer d.logMu.Unlock()
	return append([]Summary(nil), d.ended...)
}

// All returns the historical log.
func (d *Directory) All() []HistoryEntry {
	d.logMu.Lock()
	defer d.logMu.Unlock()
	return append([]HistoryEntry(nil), d.all...)
}

// Len returns the number of rooms ever created.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}
