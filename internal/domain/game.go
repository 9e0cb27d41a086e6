package domain

import "time"

// GameType - тип игры
type GameType string

const (
	GameTypeConnectFour GameType = "connect_four"
)

// Color - цвет фишек игрока
type Color string

const (
	ColorRed    Color = "RED"
	ColorYellow Color = "YELLOW"
)

// Cell - клетка доски; пустая клетка сериализуется как ""
type Cell string

const (
	CellEmpty  Cell = ""
	CellRed    Cell = Cell(ColorRed)
	CellYellow Cell = Cell(ColorYellow)
)

// Status - статус партии; монотонный, назад не откатывается
type Status string

const (
	StatusWaitingToStart Status = "waiting_to_start"
	StatusInProgress     Status = "in_progress"
	StatusOver           Status = "over"
)

// Privacy - видимость комнаты
type Privacy string

const (
	PrivacyPublic      Privacy = "public"
	PrivacyPrivate     Privacy = "private"
	PrivacyFriendsOnly Privacy = "friends_only"
)

const (
	BoardRows = 6
	BoardCols = 7
	MaxMoves  = BoardRows * BoardCols
)

// RoomSettings fixed at creation; RoomCode is set iff privacy is not public.
type RoomSettings struct {
	RoomName        string  `json:"room_name"`
	Privacy         Privacy `json:"privacy"`
	AllowSpectators bool    `json:"allow_spectators"`
	RoomCode        string  `json:"room_code,omitempty"`
}

// Move is one entry of the append-only move log.
type Move struct {
	Column   int    `json:"column"`
	PlayerID string `json:"player_id"`
}

// Position - координата клетки; row 0 = верхний ряд
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ConnectFourState is the full serializable state of one Connect Four game.
type ConnectFourState struct {
	Board            [BoardRows][BoardCols]Cell `json:"board"`
	Status           Status                     `json:"status"`
	Player1          string                     `json:"player1"`
	Player2          string                     `json:"player2,omitempty"`
	Player1Color     Color                      `json:"player1_color"`
	Player2Color     Color                      `json:"player2_color,omitempty"`
	CurrentTurn      Color                      `json:"current_turn,omitempty"`
	Moves            []Move                     `json:"moves"`
	TotalMoves       int                        `json:"total_moves"`
	LastMoveColumn   *int                       `json:"last_move_column,omitempty"`
	Winners          []string                   `json:"winners"`
	WinningPositions []Position                 `json:"winning_positions,omitempty"`
	RoomSettings     RoomSettings               `json:"room_settings"`
	Spectators       []string                   `json:"spectators"`
}

// GameSession - снимок сессии для клиентов и persistence
type GameSession struct {
	ID       string   `json:"id"`
	GameType GameType `json:"game_type"`
	Players  []string `json:"players"`
	State    any      `json:"state"`
}

// GameResult - исход партии для одного игрока
type GameResult string

const (
	GameResultWin  GameResult = "win"
	GameResultLose GameResult = "lose"
	GameResultDraw GameResult = "draw"
)

// GameHistory - запись истории завершённой партии (по строке на игрока)
type GameHistory struct {
	ID         int64      `db:"id" json:"id"`
	SessionID  string     `db:"session_id" json:"session_id"`
	PlayerID   string     `db:"player_id" json:"player_id"`
	GameType   GameType   `db:"game_type" json:"game_type"`
	OpponentID *string    `db:"opponent_id" json:"opponent_id,omitempty"`
	Result     GameResult `db:"result" json:"result"`
	Reason     string     `db:"reason" json:"reason"`
	TotalMoves int        `db:"total_moves" json:"total_moves"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
