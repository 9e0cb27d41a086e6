package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"forum_games/internal/domain"
)

// GameRepository stores best-effort snapshots of active and finished
// sessions, keyed by session id. The in-memory session stays authoritative;
// nothing here is read back during play.
type GameRepository struct {
	db *pgxpool.Pool
}

func NewGameRepository(db *pgxpool.Pool) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) Save(ctx context.Context, s *domain.GameSession) error {
	stateJSON, err := json.Marshal(s.State)
	if err != nil {
		return err
	}
	playersJSON, err := json.Marshal(s.Players)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO game_snapshots (session_id, game_type, players, state, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (session_id)
		 DO UPDATE SET players = EXCLUDED.players, state = EXCLUDED.state, updated_at = now()`,
		s.ID,
		string(s.GameType),
		playersJSON,
		stateJSON,
	)
	return err
}

func (r *GameRepository) Get(ctx context.Context, sessionID string) (*domain.GameSession, error) {
	var (
		gameType    string
		playersJSON []byte
		stateJSON   []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT game_type, players, state FROM game_snapshots WHERE session_id = $1`,
		sessionID,
	).Scan(&gameType, &playersJSON, &stateJSON)
	if err != nil {
		return nil, err
	}

	s := &domain.GameSession{
		ID:       sessionID,
		GameType: domain.GameType(gameType),
	}
	if err := json.Unmarshal(playersJSON, &s.Players); err != nil {
		return nil, err
	}

	var state domain.ConnectFourState
	if err := json.Unmarshal(stateJSON, &state); err != nil {
		return nil, err
	}
	s.State = &state
	return s, nil
}
