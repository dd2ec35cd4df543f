package room

import "errors"

// Code is the stable identifier of a caller-facing failure.
type Code string

const (
	CodeRoomNotFound         Code = "room_not_found"
	CodeNotAPlayer           Code = "not_a_player"
	CodeNotYourTurn          Code = "not_your_turn"
	CodeIllegalMove          Code = "illegal_move"
	CodeNoDrawOffer          Code = "no_draw_offer"
	CodeCannotAcceptOwnOffer Code = "cannot_accept_own_offer"
	CodeMatchOver            Code = "match_over"
)

// Error is a recoverable failure of a room operation. The match is left
// unchanged whenever one is returned.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

var (
	ErrRoomNotFound         = &Error{Code: CodeRoomNotFound, Message: "room does not exist"}
	ErrNotAPlayer           = &Error{Code: CodeNotAPlayer, Message: "only seated players can do that"}
	ErrNotYourTurn          = &Error{Code: CodeNotYourTurn, Message: "not your turn"}
	ErrIllegalMove          = &Error{Code: CodeIllegalMove, Message: "illegal move"}
	ErrNoDrawOffer          = &Error{Code: CodeNoDrawOffer, Message: "no draw offer to accept"}
	ErrCannotAcceptOwnOffer = &Error{Code: CodeCannotAcceptOwnOffer, Message: "cannot accept your own draw offer"}
	ErrMatchOver            = &Error{Code: CodeMatchOver, Message: "match already finished"}
)

// CodeOf returns the code carried by err, or "" for foreign errors.
func CodeOf(err error) Code {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
