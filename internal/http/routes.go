package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"forum_games/internal/config"
	"forum_games/internal/http/handlers"
	"forum_games/internal/http/middleware"
	"forum_games/internal/registry"
	"forum_games/internal/repository"
	"forum_games/internal/ws"
)

// RegisterRoutes wires the game registry, websocket hub and REST surface
// onto the engine. db may be nil in tests; persistence is then skipped.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config) *registry.Registry {
	reg := registry.New()

	var snapshots ws.SnapshotStore
	var history ws.HistoryStore
	if db != nil {
		snapshots = repository.NewGameRepository(db)
		history = repository.NewGameHistoryRepository(db)
	}
	hub := ws.NewHub(reg, snapshots, history)

	h := handlers.NewHandler(db, reg)
	healthHandler := handlers.NewHealthHandler(db, cfg.Version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// Realtime events
	r.GET("/ws", ws.HandleWS(hub, cfg.AllowedOrigin))

	apiRL := middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow)
	roomRL := middleware.RedisRateLimit(cfg.RoomRateLimit, cfg.RoomRateWindow)

	v1 := r.Group("/api/v1")
	v1.Use(apiRL)

	// Rooms
	v1.GET("/rooms", h.ListRooms)
	v1.GET("/rooms/:id", h.GetRoom)
	v1.POST("/rooms", middleware.JWT(), roomRL, h.CreateRoom)
	v1.POST("/rooms/:id/join", middleware.JWT(), h.JoinRoom)
	v1.POST("/rooms/join-by-code", middleware.JWT(), h.JoinByCode)

	// Finished games
	v1.GET("/games/history", middleware.JWT(), h.MyGames)
	v1.GET("/games/stats", middleware.JWT(), h.MyStats)

	reg.StartCleanup(10*time.Minute, cfg.StaleRoomTTL)

	return reg
}
