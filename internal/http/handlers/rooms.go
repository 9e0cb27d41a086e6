package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"forum_games/internal/domain"
	"forum_games/internal/game"
	"forum_games/internal/http/middleware"
	"forum_games/internal/logger"
	"forum_games/internal/registry"
)

type createRoomRequest struct {
	GameType     domain.GameType      `json:"game_type"`
	RoomSettings *domain.RoomSettings `json:"room_settings"`
}

type joinRoomRequest struct {
	RoomCode    string `json:"room_code"`
	AsSpectator bool   `json:"as_spectator"`
}

// CreateRoom создаёт новую комнату; создатель занимает первый слот
func (h *Handler) CreateRoom(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.GameType == "" {
		req.GameType = domain.GameTypeConnectFour
	}

	sess, err := h.Registry.Create(req.GameType, playerID, req.RoomSettings)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	middleware.RoomsCreated.WithLabelValues(string(req.GameType)).Inc()

	snap := sess.Snapshot()
	h.persistSnapshot(snap)

	c.JSON(http.StatusCreated, gin.H{
		"session_id": sess.ID,
		"room_code":  sess.Game.Settings().RoomCode,
		"session":    snap,
	})
}

// JoinRoom занимает второй слот (или место зрителя) в комнате по id
func (h *Handler) JoinRoom(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	snap, err := h.Registry.Join(c.Param("id"), playerID, req.RoomCode, req.AsSpectator)
	if err != nil {
		c.JSON(joinStatus(err), gin.H{"error": err.Error()})
		return
	}

	h.persistSnapshot(snap)
	c.JSON(http.StatusOK, gin.H{"session": snap})
}

// JoinByCode находит непубличную комнату по коду
func (h *Handler) JoinByCode(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RoomCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room_code is required"})
		return
	}

	snap, err := h.Registry.JoinByCode(req.RoomCode, playerID, req.AsSpectator)
	if err != nil {
		c.JSON(joinStatus(err), gin.H{"error": err.Error()})
		return
	}

	h.persistSnapshot(snap)
	c.JSON(http.StatusOK, gin.H{"session": snap})
}

// GetRoom возвращает комнату: живую из реестра, иначе сохранённый снапшот
// (finished games survive only in storage).
func (h *Handler) GetRoom(c *gin.Context) {
	id := c.Param("id")

	if sess, ok := h.Registry.Get(id); ok {
		c.JSON(http.StatusOK, gin.H{"session": sess.Snapshot()})
		return
	}

	if h.GameRepo != nil {
		snap, err := h.GameRepo.Get(c.Request.Context(), id)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"session": snap})
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
}

// ListRooms возвращает публичные комнаты для лобби
func (h *Handler) ListRooms(c *gin.Context) {
	gameType := domain.GameType(c.Query("game_type"))
	if gameType == "" {
		gameType = domain.GameTypeConnectFour
	}
	c.JSON(http.StatusOK, gin.H{"sessions": h.Registry.ListPublic(gameType)})
}

func joinStatus(err error) int {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrAccessDenied), errors.Is(err, game.ErrSpectatorsDisabled):
		return http.StatusForbidden
	case errors.Is(err, registry.ErrAlreadyJoined), errors.Is(err, game.ErrRoomFull), errors.Is(err, game.ErrAlreadyPresent):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func (h *Handler) persistSnapshot(snap *domain.GameSession) {
	if h.GameRepo == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.GameRepo.Save(ctx, snap); err != nil {
			logger.Error("snapshot save failed", "session_id", snap.ID, "error", err)
		}
	}()
}
