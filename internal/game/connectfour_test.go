package game

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"forum_games/internal/domain"
)

func newStartedGame(t *testing.T, allowSpectators bool) *ConnectFour {
	t.Helper()
	g, err := NewConnectFour("alice", domain.RoomSettings{
		RoomName:        "Test",
		Privacy:         domain.PrivacyPublic,
		AllowSpectators: allowSpectators,
	})
	require.NoError(t, err)
	require.NoError(t, g.Join("bob"))
	return g
}

func cfState(g *ConnectFour) *domain.ConnectFourState {
	return g.State().(*domain.ConnectFourState)
}

func TestNewConnectFour_SettingsValidation(t *testing.T) {
	_, err := NewConnectFour("alice", domain.RoomSettings{RoomName: ""})
	require.ErrorIs(t, err, ErrInvalidSettings)

	_, err = NewConnectFour("alice", domain.RoomSettings{RoomName: strings.Repeat("x", 51)})
	require.ErrorIs(t, err, ErrInvalidSettings)

	g, err := NewConnectFour("alice", domain.RoomSettings{RoomName: "ok"})
	require.NoError(t, err)
	st := cfState(g)
	require.Equal(t, domain.StatusWaitingToStart, st.Status)
	require.Equal(t, "alice", st.Player1)
	require.Equal(t, domain.ColorRed, st.Player1Color)
	require.Equal(t, []string{"alice"}, g.Players())
}

func TestJoin_StartsGame(t *testing.T) {
	g := newStartedGame(t, false)

	st := cfState(g)
	require.Equal(t, domain.StatusInProgress, st.Status)
	require.Equal(t, "bob", st.Player2)
	require.Equal(t, domain.ColorYellow, st.Player2Color)
	require.Equal(t, domain.ColorRed, st.CurrentTurn)
	require.Equal(t, []string{"alice", "bob"}, g.Players())

	require.ErrorIs(t, g.Join("carol"), ErrRoomFull)
}

func TestApplyMove_Gravity(t *testing.T) {
	g := newStartedGame(t, false)

	require.NoError(t, g.ApplyMove("alice", 3))
	require.NoError(t, g.ApplyMove("bob", 3))

	st := cfState(g)
	require.Equal(t, domain.Cell(domain.ColorRed), st.Board[5][3])
	require.Equal(t, domain.Cell(domain.ColorYellow), st.Board[4][3])
	require.Equal(t, 2, st.TotalMoves)
	require.Equal(t, []domain.Move{
		{Column: 3, PlayerID: "alice"},
		{Column: 3, PlayerID: "bob"},
	}, st.Moves)
	require.NotNil(t, st.LastMoveColumn)
	require.Equal(t, 3, *st.LastMoveColumn)
	require.Equal(t, domain.ColorRed, st.CurrentTurn)
}

func TestApplyMove_Rejections(t *testing.T) {
	g, err := NewConnectFour("alice", domain.RoomSettings{RoomName: "Test"})
	require.NoError(t, err)

	// no opponent yet
	require.ErrorIs(t, g.ApplyMove("alice", 0), ErrNotInProgress)

	require.NoError(t, g.Join("bob"))

	// yellow tries to move on red's turn
	require.ErrorIs(t, g.ApplyMove("bob", 0), ErrNotYourTurn)
	// outsiders never get a turn
	require.ErrorIs(t, g.ApplyMove("mallory", 0), ErrNotYourTurn)

	require.ErrorIs(t, g.ApplyMove("alice", -1), ErrInvalidColumn)
	require.ErrorIs(t, g.ApplyMove("alice", domain.BoardCols), ErrInvalidColumn)

	// rejected moves leave the state untouched
	st := cfState(g)
	require.Equal(t, 0, st.TotalMoves)
	require.Equal(t, domain.ColorRed, st.CurrentTurn)
}

func TestApplyMove_ColumnFull(t *testing.T) {
	g := newStartedGame(t, false)

	// fill column 2 top to bottom, alternating colors
	players := []string{"alice", "bob"}
	for i := 0; i < domain.BoardRows; i++ {
		require.NoError(t, g.ApplyMove(players[i%2], 2))
	}

	before := cfState(g)
	require.ErrorIs(t, g.ApplyMove(players[domain.BoardRows%2], 2), ErrColumnFull)
	after := cfState(g)
	require.Equal(t, before.TotalMoves, after.TotalMoves)
	require.Equal(t, before.CurrentTurn, after.CurrentTurn)
}

func TestVerticalWin(t *testing.T) {
	g := newStartedGame(t, false)

	moves := []struct {
		player string
		col    int
	}{
		{"alice", 3}, {"bob", 0},
		{"alice", 3}, {"bob", 0},
		{"alice", 3}, {"bob", 0},
		{"alice", 3},
	}
	for _, m := range moves {
		require.NoError(t, g.ApplyMove(m.player, m.col))
	}

	st := cfState(g)
	require.Equal(t, domain.StatusOver, st.Status)
	require.Equal(t, []string{"alice"}, st.Winners)
	require.Equal(t, []domain.Position{
		{Row: 2, Col: 3}, {Row: 3, Col: 3}, {Row: 4, Col: 3}, {Row: 5, Col: 3},
	}, st.WinningPositions)

	// the game accepts nothing after its end
	require.ErrorIs(t, g.ApplyMove("bob", 0), ErrNotInProgress)
}

func TestHorizontalWin(t *testing.T) {
	g := newStartedGame(t, false)

	moves := []struct {
		player string
		col    int
	}{
		{"alice", 0}, {"bob", 0},
		{"alice", 1}, {"bob", 1},
		{"alice", 2}, {"bob", 2},
		{"alice", 3},
	}
	for _, m := range moves {
		require.NoError(t, g.ApplyMove(m.player, m.col))
	}

	st := cfState(g)
	require.Equal(t, domain.StatusOver, st.Status)
	require.Equal(t, []string{"alice"}, st.Winners)
	require.Len(t, st.WinningPositions, 4)
	for _, p := range st.WinningPositions {
		require.Equal(t, 5, p.Row)
	}
}

func TestDiagonalWin(t *testing.T) {
	g := newStartedGame(t, false)

	// red builds the rising diagonal (5,0)-(4,1)-(3,2)-(2,3)
	moves := []struct {
		player string
		col    int
	}{
		{"alice", 0}, {"bob", 1},
		{"alice", 1}, {"bob", 2},
		{"alice", 2}, {"bob", 3},
		{"alice", 2}, {"bob", 3},
		{"alice", 3}, {"bob", 6},
		{"alice", 3},
	}
	for _, m := range moves {
		require.NoError(t, g.ApplyMove(m.player, m.col))
	}

	st := cfState(g)
	require.Equal(t, domain.StatusOver, st.Status)
	require.Equal(t, []string{"alice"}, st.Winners)
	require.ElementsMatch(t, []domain.Position{
		{Row: 5, Col: 0}, {Row: 4, Col: 1}, {Row: 3, Col: 2}, {Row: 2, Col: 3},
	}, st.WinningPositions)
}

func TestDraw(t *testing.T) {
	g := newStartedGame(t, false)

	// fill 41 cells with a known winless pattern, leaving the top of
	// column 6 open: columns 0-2 and 6 hold RED on odd rows, columns 3-5
	// are inverted, so no line of four exists anywhere
	cellAt := func(row, col int) domain.Cell {
		inverted := col >= 3 && col <= 5
		red := row%2 == 1
		if inverted {
			red = !red
		}
		if red {
			return domain.Cell(domain.ColorRed)
		}
		return domain.Cell(domain.ColorYellow)
	}

	g.mu.Lock()
	for row := 0; row < domain.BoardRows; row++ {
		for col := 0; col < domain.BoardCols; col++ {
			g.st.Board[row][col] = cellAt(row, col)
		}
	}
	g.st.Board[0][6] = domain.CellEmpty
	g.st.TotalMoves = domain.MaxMoves - 1
	g.st.CurrentTurn = domain.ColorYellow
	g.mu.Unlock()

	require.NoError(t, g.ApplyMove("bob", 6))

	st := cfState(g)
	require.Equal(t, domain.StatusOver, st.Status)
	require.Empty(t, st.Winners)
	require.Nil(t, st.WinningPositions)
	require.Equal(t, domain.MaxMoves, st.TotalMoves)
}

func TestSpectators(t *testing.T) {
	closed := newStartedGame(t, false)
	require.ErrorIs(t, closed.AddSpectator("carol"), ErrSpectatorsDisabled)

	g := newStartedGame(t, true)
	require.NoError(t, g.AddSpectator("carol"))
	require.True(t, g.HasSpectator("carol"))
	require.ErrorIs(t, g.AddSpectator("carol"), ErrAlreadyPresent)
	require.ErrorIs(t, g.AddSpectator("alice"), ErrAlreadyPresent)

	// spectator leaving does not touch the game
	discard, err := g.Leave("carol")
	require.NoError(t, err)
	require.False(t, discard)
	require.False(t, g.HasSpectator("carol"))
	require.Equal(t, domain.StatusInProgress, g.Status())
}

func TestJoin_SpectatorCannotTakeSeat(t *testing.T) {
	g, err := NewConnectFour("alice", domain.RoomSettings{
		RoomName:        "Test",
		AllowSpectators: true,
	})
	require.NoError(t, err)
	require.NoError(t, g.AddSpectator("carol"))

	// the player and spectator sets stay disjoint in both directions
	require.ErrorIs(t, g.Join("carol"), ErrAlreadyPresent)
	require.Equal(t, domain.StatusWaitingToStart, g.Status())
	require.True(t, g.HasSpectator("carol"))
	require.False(t, g.HasPlayer("carol"))

	require.NoError(t, g.Join("bob"))
}

func TestLeave_Forfeit(t *testing.T) {
	g := newStartedGame(t, false)

	discard, err := g.Leave("alice")
	require.NoError(t, err)
	require.False(t, discard)

	st := cfState(g)
	require.Equal(t, domain.StatusOver, st.Status)
	require.Equal(t, []string{"bob"}, st.Winners)
	require.Nil(t, st.WinningPositions)
}

func TestLeave_WaitingRoomDiscard(t *testing.T) {
	g, err := NewConnectFour("alice", domain.RoomSettings{RoomName: "Test"})
	require.NoError(t, err)

	// strangers leaving is a no-op
	discard, err := g.Leave("nobody")
	require.NoError(t, err)
	require.False(t, discard)

	discard, err = g.Leave("alice")
	require.NoError(t, err)
	require.True(t, discard)
}

func TestState_IsDetachedCopy(t *testing.T) {
	g := newStartedGame(t, true)
	require.NoError(t, g.ApplyMove("alice", 0))

	st := cfState(g)
	st.Board[5][0] = domain.CellEmpty
	st.Moves[0].Column = 99
	st.Winners = append(st.Winners, "mallory")

	fresh := cfState(g)
	require.Equal(t, domain.Cell(domain.ColorRed), fresh.Board[5][0])
	require.Equal(t, 0, fresh.Moves[0].Column)
	require.Empty(t, fresh.Winners)
}

func TestState_EmptySlicesMarshalAsArrays(t *testing.T) {
	g, err := NewConnectFour("alice", domain.RoomSettings{RoomName: "Test"})
	require.NoError(t, err)

	raw, err := json.Marshal(g.State())
	require.NoError(t, err)

	var obj map[string]any
	require.NoError(t, json.Unmarshal(raw, &obj))
	require.IsType(t, []any{}, obj["moves"])
	require.IsType(t, []any{}, obj["winners"])
	require.IsType(t, []any{}, obj["spectators"])
}

func TestFactory_UnknownGameType(t *testing.T) {
	f := NewFactory()
	_, err := f.CreateGame("chess", "alice", domain.RoomSettings{RoomName: "Test"})
	require.Error(t, err)

	g, err := f.CreateGame(domain.GameTypeConnectFour, "alice", domain.RoomSettings{RoomName: "Test"})
	require.NoError(t, err)
	require.Equal(t, domain.GameTypeConnectFour, g.Type())
}
