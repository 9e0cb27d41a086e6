package game

import (
	"fmt"

	"forum_games/internal/domain"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) CreateGame(gameType domain.GameType, creatorID string, settings domain.RoomSettings) (Game, error) {
	switch gameType {
	case domain.GameTypeConnectFour:
		return NewConnectFour(creatorID, settings)
	default:
		return nil, fmt.Errorf("unknown game type: %s", gameType)
	}
}
