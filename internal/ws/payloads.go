package ws

import (
	"encoding/json"

	"forum_games/internal/domain"
)

// Message - исходящий конверт
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// envelope - входящий конверт; payload разбирается по type
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// client → server
type JoinChannelPayload struct {
	SessionID string `json:"session_id"`
}

type MakeMovePayload struct {
	SessionID string `json:"session_id"`
	Column    int    `json:"column"`
}

type LeaveGamePayload struct {
	SessionID   string `json:"session_id"`
	IsSpectator bool   `json:"is_spectator"`
}

type RegisterPresencePayload struct {
	SessionID   string `json:"session_id"`
	IsSpectator bool   `json:"is_spectator"`
}

type RequestLobbyPayload struct {
	GameType domain.GameType `json:"game_type"`
}

// server → client
type GameErrorPayload struct {
	Player  string `json:"player"`
	Message string `json:"message"`
}

type PlayerDisconnectedPayload struct {
	Player  string `json:"player"`
	Message string `json:"message"`
}

type RoomsUpdatePayload struct {
	Sessions []*domain.GameSession `json:"sessions"`
}
