package game

import "errors"

// Rule violations are reported to the acting participant only and never
// change game state.
var (
	ErrInvalidSettings    = errors.New("invalid room settings")
	ErrRoomFull           = errors.New("room is full")
	ErrSpectatorsDisabled = errors.New("spectators are not allowed in this room")
	ErrAlreadyPresent     = errors.New("already present in this room")
	ErrNotInProgress      = errors.New("game is not in progress")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrInvalidColumn      = errors.New("invalid column")
	ErrColumnFull         = errors.New("column is full")
)
