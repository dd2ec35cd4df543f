// Package roomdto holds the JSON shapes exchanged with room clients.
package roomdto

import (
	"encoding/json"
	"time"
)

// Inbound event types.
const (
	EventJoinRoom     = "join_room"
	EventMakeMove     = "make_move"
	EventResign       = "resign"
	EventOfferDraw    = "offer_draw"
	EventAcceptDraw   = "accept_draw"
	EventCheckRoom    = "check_room"
	EventRequestState = "request_state"
)

// Outbound event types.
const (
	EventGameState            = "game_state"
	EventRoomUpdate           = "room_update"
	EventMoveMade             = "move_made"
	EventMoveError            = "move_error"
	EventGameEnded            = "game_ended"
	EventDrawOffered          = "draw_offered"
	EventCheckRoomResponse    = "check_room_response"
	EventRequestStateResponse = "request_state_response"
	EventError                = "error"
)

// Request is the inbound envelope.
type Request struct {
	Type   string `json:"type" validate:"required,oneof=join_room make_move resign offer_draw accept_draw check_room request_state"`
	RoomID string `json:"room_id" validate:"required,max=64"`
	Role   string `json:"role,omitempty" validate:"omitempty,max=16"`
	Color  string `json:"color,omitempty" validate:"omitempty,max=16"`
	Move   string `json:"move,omitempty" validate:"required_if=Type make_move,max=16"`
}

// Envelope is the outbound frame.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type GameState struct {
	RoomID          string    `json:"room_id"`
	FEN             string    `json:"fen"`
	Status          string    `json:"status"`
	Result          string    `json:"result,omitempty"`
	White           string    `json:"white,omitempty"`
	Black           string    `json:"black,omitempty"`
	Watchers        []string  `json:"watchers"`
	Turn            string    `json:"turn"`
	MoveHistory     []string  `json:"move_history"`
	MovesUCI        []string  `json:"moves_uci"`
	CapturedByWhite []string  `json:"captured_by_white"`
	CapturedByBlack []string  `json:"captured_by_black"`
	ScoreWhite      int       `json:"score_white"`
	ScoreBlack      int       `json:"score_black"`
	DrawOfferedBy   string    `json:"draw_offered_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	LastActivity    time.Time `json:"last_activity"`
}

// Joined is sent to the joining connection only.
type Joined struct {
	GameState
	You           string `json:"you"`
	Role          string `json:"role"`
	Color         string `json:"color,omitempty"`
	ForcedWatcher bool   `json:"forced_watcher"`
	Notice        string `json:"notice,omitempty"`
}

type MoveMade struct {
	RoomID   string `json:"room_id"`
	SAN      string `json:"san"`
	UCI      string `json:"uci"`
	FEN      string `json:"fen"`
	Turn     string `json:"turn"`
	Status   string `json:"status"`
	Captured string `json:"captured,omitempty"`
}

type GameEnded struct {
	RoomID    string    `json:"room_id"`
	Status    string    `json:"status"`
	Result    string    `json:"result"`
	White     string    `json:"white,omitempty"`
	Black     string    `json:"black,omitempty"`
	MoveCount int       `json:"move_count"`
	EndedAt   time.Time `json:"ended_at"`
	Message   string    `json:"message,omitempty"`
}

type DrawOffered struct {
	RoomID    string `json:"room_id"`
	OfferedBy string `json:"offered_by"`
	Color     string `json:"color"`
	Message   string `json:"message,omitempty"`
}

type RoomAvailability struct {
	RoomID string `json:"room_id"`
	Exists bool   `json:"exists"`
	IsFull bool   `json:"is_full"`
}

// HistoryEntry is a creation record, or a finished match when Ended is set.
type HistoryEntry struct {
	RoomID    string     `json:"room_id"`
	CreatedAt time.Time  `json:"created_at"`
	Ended     *GameEnded `json:"ended,omitempty"`
}

type GamesOverview struct {
	Live  []string       `json:"live"`
	Ended []GameEnded    `json:"ended"`
	All   []HistoryEntry `json:"all"`
}
