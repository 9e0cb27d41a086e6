package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"forum_games/internal/registry"
	"forum_games/internal/repository"
)

type Handler struct {
	DB              *pgxpool.Pool
	Registry        *registry.Registry
	GameRepo        *repository.GameRepository
	GameHistoryRepo *repository.GameHistoryRepository
}

func NewHandler(db *pgxpool.Pool, reg *registry.Registry) *Handler {
	h := &Handler{
		DB:       db,
		Registry: reg,
	}
	if db != nil {
		h.GameRepo = repository.NewGameRepository(db)
		h.GameHistoryRepo = repository.NewGameHistoryRepository(db)
	}
	return h
}

// getPlayerID извлекает player_id из контекста Gin
func getPlayerID(c *gin.Context) (string, bool) {
	v, ok := c.Get("player_id")
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
