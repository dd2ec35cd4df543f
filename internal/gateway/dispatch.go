package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/park285/chess-rooms/internal/room"
	"github.com/park285/chess-rooms/pkg/roomdto"
)

const codeBadRequest = "bad_request"

func (h *Hub) handle(connID string, data []byte) {
	var req roomdto.Request
	if err := json.Unmarshal(data, &req); err != nil {
		h.sendError(connID, roomdto.EventError, codeBadRequest, map[string]any{"Detail": "invalid json"}, "invalid json")
		return
	}
	req.RoomID = strings.TrimSpace(req.RoomID)
	req.Move = strings.TrimSpace(req.Move)
	if err := h.validate.Struct(req); err != nil {
		detail := describeValidation(err)
		h.sendError(connID, roomdto.EventError, codeBadRequest, map[string]any{"Detail": detail}, detail)
		return
	}

	switch req.Type {
	case roomdto.EventJoinRoom:
		h.onJoin(connID, req)
	case roomdto.EventMakeMove:
		h.onMove(connID, req)
	case roomdto.EventResign:
		summary, err := h.svc.Resign(req.RoomID, connID)
		if err != nil {
			h.sendRoomError(connID, roomdto.EventError, req, err)
			return
		}
		h.announceEnd(summary)
	case roomdto.EventOfferDraw:
		h.onOfferDraw(connID, req)
	case roomdto.EventAcceptDraw:
		summary, err := h.svc.AcceptDraw(req.RoomID, connID)
		if err != nil {
			h.sendRoomError(connID, roomdto.EventError, req, err)
			return
		}
		h.announceEnd(summary)
	case roomdto.EventCheckRoom:
		a := h.svc.CheckRoom(req.RoomID)
		h.sendTo(connID, roomdto.EventCheckRoomResponse, roomdto.RoomAvailability{RoomID: a.RoomID, Exists: a.Exists, IsFull: a.IsFull})
	case roomdto.EventRequestState:
		v, ok := h.svc.Snapshot(req.RoomID)
		if !ok {
			h.sendRoomError(connID, roomdto.EventError, req, room.ErrRoomNotFound)
			return
		}
		h.sendTo(connID, roomdto.EventRequestStateResponse, gameState(v))
	}
}

func (h *Hub) onJoin(connID string, req roomdto.Request) {
	prev, hadPrev := h.svc.Directory().Lookup(connID)

	choice := room.ParseSeatChoice(req.Color)
	res := h.svc.Join(req.RoomID, connID, room.ParseRole(req.Role), choice)

	joined := roomdto.Joined{
		GameState:     gameState(res.View),
		You:           connID,
		Role:          string(res.Role),
		Color:         string(res.Seat),
		ForcedWatcher: res.ForcedWatcher,
	}
	if res.ForcedWatcher {
		key, data := watcherNotice(res.View, choice)
		joined.Notice = h.msgs.Text(key, data, "")
	}
	if res.Created {
		h.markLive(req.RoomID)
	}
	h.sendTo(connID, roomdto.EventGameState, joined)

	state := gameState(res.View)
	h.broadcast(req.RoomID, roomdto.EventRoomUpdate, state)
	h.publish(req.RoomID, roomdto.EventRoomUpdate, state, res.View.LastActivity)

	if hadPrev && prev != req.RoomID {
		h.refreshRoom(prev)
	}
}

// watcherNotice picks the message for a player request that ended up
// watching: either the room is full or only the requested seat was taken.
func watcherNotice(v room.View, choice room.SeatChoice) (string, map[string]any) {
	data := map[string]any{"RoomID": v.RoomID}
	if v.White != "" && v.Black != "" {
		return "join.room_full", data
	}
	data["Seat"] = string(choice)
	data["Free"] = string(room.SeatBlack)
	if v.White == "" {
		data["Free"] = string(room.SeatWhite)
	}
	return "join.seat_taken", data
}

func (h *Hub) onMove(connID string, req roomdto.Request) {
	out, err := h.svc.Move(req.RoomID, connID, req.Move)
	if err != nil {
		h.sendRoomError(connID, roomdto.EventMoveError, req, err)
		return
	}
	made := moveMade(out)
	h.broadcast(req.RoomID, roomdto.EventMoveMade, made)
	h.publish(req.RoomID, roomdto.EventMoveMade, made, time.Now())
	if out.Summary != nil {
		h.announceEnd(*out.Summary)
	}
}

func (h *Hub) onOfferDraw(connID string, req roomdto.Request) {
	offer, err := h.svc.OfferDraw(req.RoomID, connID)
	if err != nil {
		h.sendRoomError(connID, roomdto.EventError, req, err)
		return
	}
	msg := roomdto.DrawOffered{
		RoomID:    offer.RoomID,
		OfferedBy: offer.OfferedBy,
		Color:     string(offer.Seat),
		Message:   h.msgs.Text("draw.offered", map[string]any{"Seat": offer.Seat}, ""),
	}
	h.broadcast(offer.RoomID, roomdto.EventDrawOffered, msg)
	h.publish(offer.RoomID, roomdto.EventDrawOffered, msg, time.Now())
}

func (h *Hub) announceEnd(s room.Summary) {
	ended := gameEnded(s)
	ended.Message = h.endMessage(s)
	h.markEnded(s.RoomID)
	h.broadcast(s.RoomID, roomdto.EventGameEnded, ended)
	h.publish(s.RoomID, roomdto.EventGameEnded, ended, s.EndedAt)
}

func (h *Hub) endMessage(s room.Summary) string {
	winner, loser := "", ""
	switch s.Result {
	case room.ResultWhiteWins:
		winner, loser = "White", "Black"
	case room.ResultBlackWins:
		winner, loser = "Black", "White"
	}
	return h.msgs.Text("end."+string(s.Status), map[string]any{"Winner": winner, "Loser": loser}, "")
}

// onDisconnect releases the connection's room membership and tells the room.
func (h *Hub) onDisconnect(connID string) {
	dep, ok := h.svc.Disconnect(connID)
	if !ok {
		return
	}
	state := gameState(dep.View)
	h.broadcast(dep.RoomID, roomdto.EventRoomUpdate, state)
	h.publish(dep.RoomID, roomdto.EventRoomUpdate, state, time.Now())
}

func (h *Hub) refreshRoom(roomID string) {
	v, ok := h.svc.Snapshot(roomID)
	if !ok {
		return
	}
	h.broadcast(roomID, roomdto.EventRoomUpdate, gameState(v))
}

func (h *Hub) sendRoomError(connID, typ string, req roomdto.Request, err error) {
	code := room.CodeOf(err)
	if code == "" {
		h.log.Error("room_op_failed", zap.String("conn_id", connID), zap.String("type", req.Type), zap.Error(err))
		code = "internal"
	}
	data := map[string]any{"RoomID": req.RoomID, "Move": req.Move}
	h.sendError(connID, typ, string(code), data, err.Error())
}

func (h *Hub) sendError(connID, typ, code string, data map[string]any, fallback string) {
	msg := h.msgs.Text("error."+code, data, fallback)
	h.sendTo(connID, typ, roomdto.Error{Code: code, Message: msg})
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	var b strings.Builder
	for _, fe := range verrs {
		if b.Len() > 0 {
			b.WriteString("; ")
		}
		switch fe.Tag() {
		case "required", "required_if":
			fmt.Fprintf(&b, "%s is required", fe.Field())
		case "oneof":
			fmt.Fprintf(&b, "%s must be one of [%s]", fe.Field(), fe.Param())
		case "max":
			if fe.Kind() == reflect.String {
				fmt.Fprintf(&b, "%s must be at most %s characters", fe.Field(), fe.Param())
			} else {
				fmt.Fprintf(&b, "%s must be at most %s", fe.Field(), fe.Param())
			}
		default:
			fmt.Fprintf(&b, "%s failed %s validation", fe.Field(), fe.Tag())
		}
	}
	return b.String()
}
