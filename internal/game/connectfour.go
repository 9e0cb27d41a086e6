package game

import (
	"sync"

	"forum_games/internal/domain"
)

const maxRoomNameLen = 50

// ConnectFour - партия "4 в ряд": доска 6x7, row 0 сверху, фишки падают вниз.
// player1 always plays RED and moves first; player2 plays YELLOW.
type ConnectFour struct {
	mu sync.RWMutex
	st domain.ConnectFourState
}

func NewConnectFour(creatorID string, settings domain.RoomSettings) (*ConnectFour, error) {
	if settings.RoomName == "" || len(settings.RoomName) > maxRoomNameLen {
		return nil, ErrInvalidSettings
	}

	return &ConnectFour{
		st: domain.ConnectFourState{
			Status:       domain.StatusWaitingToStart,
			Player1:      creatorID,
			Player1Color: domain.ColorRed,
			Moves:        []domain.Move{},
			Winners:      []string{},
			RoomSettings: settings,
			Spectators:   []string{},
		},
	}, nil
}

func (g *ConnectFour) Type() domain.GameType {
	return domain.GameTypeConnectFour
}

func (g *ConnectFour) Players() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	players := []string{g.st.Player1}
	if g.st.Player2 != "" {
		players = append(players, g.st.Player2)
	}
	return players
}

func (g *ConnectFour) Status() domain.Status {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.st.Status
}

func (g *ConnectFour) Settings() domain.RoomSettings {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.st.RoomSettings
}

func (g *ConnectFour) HasPlayer(playerID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.st.Player1 == playerID || (g.st.Player2 != "" && g.st.Player2 == playerID)
}

func (g *ConnectFour) HasSpectator(playerID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.hasSpectatorLocked(playerID)
}

func (g *ConnectFour) hasSpectatorLocked(playerID string) bool {
	for _, s := range g.st.Spectators {
		if s == playerID {
			return true
		}
	}
	return false
}

func (g *ConnectFour) Join(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.st.Status != domain.StatusWaitingToStart || g.st.Player2 != "" {
		return ErrRoomFull
	}
	// зритель не может занять слот игрока
	if g.hasSpectatorLocked(playerID) {
		return ErrAlreadyPresent
	}

	g.st.Player2 = playerID
	g.st.Player2Color = domain.ColorYellow
	g.st.Status = domain.StatusInProgress
	g.st.CurrentTurn = domain.ColorRed
	return nil
}

func (g *ConnectFour) AddSpectator(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.st.RoomSettings.AllowSpectators {
		return ErrSpectatorsDisabled
	}
	if playerID == g.st.Player1 || playerID == g.st.Player2 || g.hasSpectatorLocked(playerID) {
		return ErrAlreadyPresent
	}

	g.st.Spectators = append(g.st.Spectators, playerID)
	return nil
}

func (g *ConnectFour) ApplyMove(playerID string, column int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.st.Status != domain.StatusInProgress {
		return ErrNotInProgress
	}

	color, ok := g.colorOf(playerID)
	if !ok || g.st.CurrentTurn != color {
		return ErrNotYourTurn
	}

	if column < 0 || column >= domain.BoardCols {
		return ErrInvalidColumn
	}

	if g.st.Board[0][column] != domain.CellEmpty {
		return ErrColumnFull
	}

	// фишка падает на самый нижний свободный ряд
	row := 0
	for r := domain.BoardRows - 1; r >= 0; r-- {
		if g.st.Board[r][column] == domain.CellEmpty {
			row = r
			break
		}
	}

	g.st.Board[row][column] = domain.Cell(color)
	g.st.Moves = append(g.st.Moves, domain.Move{Column: column, PlayerID: playerID})
	g.st.TotalMoves++
	col := column
	g.st.LastMoveColumn = &col

	if line := g.findWin(row, column, domain.Cell(color)); line != nil {
		g.st.Status = domain.StatusOver
		g.st.Winners = []string{playerID}
		g.st.WinningPositions = line
		return nil
	}

	if g.st.TotalMoves == domain.MaxMoves {
		g.st.Status = domain.StatusOver
		g.st.Winners = []string{}
		return nil
	}

	if g.st.CurrentTurn == domain.ColorRed {
		g.st.CurrentTurn = domain.ColorYellow
	} else {
		g.st.CurrentTurn = domain.ColorRed
	}
	return nil
}

func (g *ConnectFour) colorOf(playerID string) (domain.Color, bool) {
	switch playerID {
	case g.st.Player1:
		return g.st.Player1Color, true
	case g.st.Player2:
		if g.st.Player2 != "" {
			return g.st.Player2Color, true
		}
	}
	return "", false
}

// findWin scans the four axis pairs out from the just-placed disc. Returns
// the seed cell plus the first three matches found scanning outward, or nil.
// The vertical axis only ever extends downward: the seed is always the top
// disc of its column.
func (g *ConnectFour) findWin(row, col int, cell domain.Cell) []domain.Position {
	axes := [4][2]int{
		{0, 1},  // horizontal
		{1, 0},  // vertical
		{1, 1},  // diagonal ↘ / ↖
		{1, -1}, // diagonal ↙ / ↗
	}

	for _, axis := range axes {
		dr, dc := axis[0], axis[1]
		line := []domain.Position{{Row: row, Col: col}}

		for _, sign := range [2]int{1, -1} {
			r, c := row+sign*dr, col+sign*dc
			for r >= 0 && r < domain.BoardRows && c >= 0 && c < domain.BoardCols && g.st.Board[r][c] == cell {
				line = append(line, domain.Position{Row: r, Col: c})
				r += sign * dr
				c += sign * dc
			}
		}

		if len(line) >= 4 {
			return line[:4]
		}
	}
	return nil
}

func (g *ConnectFour) Leave(playerID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.hasSpectatorLocked(playerID) {
		spectators := g.st.Spectators[:0]
		for _, s := range g.st.Spectators {
			if s != playerID {
				spectators = append(spectators, s)
			}
		}
		g.st.Spectators = spectators
		return false, nil
	}

	if playerID != g.st.Player1 && (g.st.Player2 == "" || playerID != g.st.Player2) {
		return false, nil
	}

	switch g.st.Status {
	case domain.StatusInProgress:
		// сдача: оставшийся игрок побеждает
		other := g.st.Player1
		if playerID == g.st.Player1 {
			other = g.st.Player2
		}
		g.st.Status = domain.StatusOver
		g.st.Winners = []string{other}
		g.st.WinningPositions = nil
		return false, nil
	case domain.StatusWaitingToStart:
		// sole player left a room that never started
		return true, nil
	}

	return false, nil
}

func (g *ConnectFour) State() any {
	g.mu.RLock()
	defer g.mu.RUnlock()

	st := g.st
	st.Moves = append(make([]domain.Move, 0, len(g.st.Moves)), g.st.Moves...)
	st.Winners = append(make([]string, 0, len(g.st.Winners)), g.st.Winners...)
	st.Spectators = append(make([]string, 0, len(g.st.Spectators)), g.st.Spectators...)
	if g.st.WinningPositions != nil {
		st.WinningPositions = append([]domain.Position(nil), g.st.WinningPositions...)
	}
	if g.st.LastMoveColumn != nil {
		col := *g.st.LastMoveColumn
		st.LastMoveColumn = &col
	}
	return &st
}
