package game

import "forum_games/internal/domain"

// Game - движок одной партии; чистая state machine без I/O.
// All mutations go through the session that owns the game, one at a time.
type Game interface {
	Type() domain.GameType
	Players() []string
	Status() domain.Status
	Settings() domain.RoomSettings

	HasPlayer(playerID string) bool
	HasSpectator(playerID string) bool

	// Join seats playerID in the second player slot and starts the game.
	Join(playerID string) error
	AddSpectator(playerID string) error
	ApplyMove(playerID string, column int) error

	// Leave removes playerID from the game. discard reports that the
	// session has no meaningful continuation (sole player left a room
	// that never started) and should be dropped by the registry.
	Leave(playerID string) (discard bool, err error)

	// State returns a deep copy of the serializable game state.
	State() any
}
