package gateway

import (
	"encoding/json"

	"github.com/park285/chess-rooms/internal/position"
	"github.com/park285/chess-rooms/internal/room"
	"github.com/park285/chess-rooms/pkg/roomdto"
)

func frame(typ string, payload any) ([]byte, error) {
	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = raw
	}
	return json.Marshal(roomdto.Envelope{Type: typ, Data: data})
}

func kinds(in []position.PieceKind) []string {
	out := make([]string, len(in))
	for i, k := range in {
		out[i] = string(k)
	}
	return out
}

func gameState(v room.View) roomdto.GameState {
	return roomdto.GameState{
		RoomID:          v.RoomID,
		FEN:             v.FEN,
		Status:          string(v.Status),
		Result:          string(v.Result),
		White:           v.White,
		Black:           v.Black,
		Watchers:        v.Watchers,
		Turn:            string(v.Turn),
		MoveHistory:     v.MoveHistory,
		MovesUCI:        v.MovesUCI,
		CapturedByWhite: kinds(v.CapturedByWhite),
		CapturedByBlack: kinds(v.CapturedByBlack),
		ScoreWhite:      v.ScoreWhite,
		ScoreBlack:      v.ScoreBlack,
		DrawOfferedBy:   v.DrawOfferedBy,
		CreatedAt:       v.CreatedAt,
		LastActivity:    v.LastActivity,
	}
}

func moveMade(o room.MoveOutcome) roomdto.MoveMade {
	return roomdto.MoveMade{
		RoomID:   o.RoomID,
		SAN:      o.SAN,
		UCI:      o.UCI,
		FEN:      o.FEN,
		Turn:     string(o.Turn),
		Status:   string(o.Status),
		Captured: string(o.Captured),
	}
}

func gameEnded(s room.Summary) roomdto.GameEnded {
	return roomdto.GameEnded{
		RoomID:    s.RoomID,
		Status:    string(s.Status),
		Result:    string(s.Result),
		White:     s.White,
		Black:     s.Black,
		MoveCount: s.MoveCount,
		EndedAt:   s.EndedAt,
	}
}

func overview(o room.Overview) roomdto.GamesOverview {
	out := roomdto.GamesOverview{
		Live:  append([]string{}, o.Live...),
		Ended: make([]roomdto.GameEnded, 0, len(o.Ended)),
		All:   make([]roomdto.HistoryEntry, 0, len(o.All)),
	}
	for _, s := range o.Ended {
		out.Ended = append(out.Ended, gameEnded(s))
	}
	for _, h := range o.All {
		e := roomdto.HistoryEntry{RoomID: h.RoomID, CreatedAt: h.CreatedAt}
		if h.Summary != nil {
			ge := gameEnded(*h.Summary)
			e.Ended = &ge
		}
		out.All = append(out.All, e)
	}
	return out
}
