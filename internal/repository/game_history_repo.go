package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"forum_games/internal/domain"
)

type GameHistoryRepository struct {
	db *pgxpool.Pool
}

func NewGameHistoryRepository(db *pgxpool.Pool) *GameHistoryRepository {
	return &GameHistoryRepository{db: db}
}

// Create сохраняет запись завершённой партии для одного игрока
func (r *GameHistoryRepository) Create(ctx context.Context, gh *domain.GameHistory) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO game_history
			(session_id, player_id, game_type, opponent_id, result, reason, total_moves)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		gh.SessionID,
		gh.PlayerID,
		gh.GameType,
		gh.OpponentID,
		gh.Result,
		gh.Reason,
		gh.TotalMoves,
	).Scan(&gh.ID, &gh.CreatedAt)
}

// GetByPlayer возвращает последние партии игрока
func (r *GameHistoryRepository) GetByPlayer(ctx context.Context, playerID string, limit int) ([]*domain.GameHistory, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, player_id, game_type, opponent_id, result, reason, total_moves, created_at
		 FROM game_history
		 WHERE player_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		playerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.GameHistory
	for rows.Next() {
		var gh domain.GameHistory
		if err := rows.Scan(
			&gh.ID, &gh.SessionID, &gh.PlayerID, &gh.GameType, &gh.OpponentID,
			&gh.Result, &gh.Reason, &gh.TotalMoves, &gh.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &gh)
	}

	return result, rows.Err()
}

// PlayerStats - статистика игрока
type PlayerStats struct {
	PlayerID   string `json:"player_id"`
	TotalGames int    `json:"total_games"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	Draws      int    `json:"draws"`
}

// GetPlayerStats возвращает агрегированную статистику игрока
func (r *GameHistoryRepository) GetPlayerStats(ctx context.Context, playerID string) (*PlayerStats, error) {
	stats := &PlayerStats{PlayerID: playerID}

	err := r.db.QueryRow(ctx,
		`SELECT
			COUNT(*) as total_games,
			COUNT(*) FILTER (WHERE result = 'win') as wins,
			COUNT(*) FILTER (WHERE result = 'lose') as losses,
			COUNT(*) FILTER (WHERE result = 'draw') as draws
		 FROM game_history
		 WHERE player_id = $1`,
		playerID,
	).Scan(&stats.TotalGames, &stats.Wins, &stats.Losses, &stats.Draws)

	if err != nil {
		return nil, err
	}

	return stats, nil
}
