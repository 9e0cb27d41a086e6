package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"forum_games/internal/domain"
	"forum_games/internal/game"
	"forum_games/internal/logger"
	"forum_games/internal/registry"
)

// SnapshotStore persists session snapshots. Writes are best-effort and
// never block or roll back the in-memory state.
type SnapshotStore interface {
	Save(ctx context.Context, s *domain.GameSession) error
}

// HistoryStore records finished games, one row per player.
type HistoryStore interface {
	Create(ctx context.Context, gh *domain.GameHistory) error
}

type presenceInfo struct {
	sessionID   string
	playerID    string
	isSpectator bool
}

// Hub routes inbound события to the registry/engine pair and fans state
// updates out to the right audience: session channels for game updates,
// the originating connection for errors, lobby subscribers for listings.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*Client]struct{}
	lobby    map[*Client]domain.GameType
	presence map[*Client]presenceInfo

	registry  *registry.Registry
	snapshots SnapshotStore
	history   HistoryStore
}

func NewHub(reg *registry.Registry, snapshots SnapshotStore, history HistoryStore) *Hub {
	h := &Hub{
		channels:  make(map[string]map[*Client]struct{}),
		lobby:     make(map[*Client]domain.GameType),
		presence:  make(map[*Client]presenceInfo),
		registry:  reg,
		snapshots: snapshots,
		history:   history,
	}
	reg.OnMutate = h.onRegistryMutate
	return h
}

func (h *Hub) onRegistryMutate(gameType domain.GameType) {
	activeSessions.Set(float64(h.registry.Count()))
	h.NotifyLobby(gameType)
}

// HandleMessage dispatches one inbound event. Each event is an atomic
// command; there is no partial application.
func (h *Hub) HandleMessage(c *Client, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Debug("malformed message", "player", c.PlayerID, "error", err)
		return
	}

	switch env.Type {
	case MsgJoinChannel:
		var p JoinChannelPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.sendError(c, "malformed payload")
			return
		}
		h.Subscribe(p.SessionID, c)

	case MsgMakeMove:
		var p MakeMovePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.sendError(c, "malformed payload")
			return
		}
		h.handleMakeMove(c, p.SessionID, p.Column)

	case MsgLeaveGame:
		var p LeaveGamePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.sendError(c, "malformed payload")
			return
		}
		h.handleLeave(c, p.SessionID, c.PlayerID, false)

	case MsgRegisterPresence:
		var p RegisterPresencePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.sendError(c, "malformed payload")
			return
		}
		h.mu.Lock()
		h.presence[c] = presenceInfo{
			sessionID:   p.SessionID,
			playerID:    c.PlayerID,
			isSpectator: p.IsSpectator,
		}
		h.mu.Unlock()

	case MsgRequestLobby:
		var p RequestLobbyPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.sendError(c, "malformed payload")
			return
		}
		if p.GameType == "" {
			p.GameType = domain.GameTypeConnectFour
		}
		h.mu.Lock()
		h.lobby[c] = p.GameType
		h.mu.Unlock()
		h.send(c, Message{Type: MsgRoomsUpdate, Payload: RoomsUpdatePayload{
			Sessions: h.registry.ListPublic(p.GameType),
		}})

	case MsgPing:
		// keepalive only

	default:
		logger.Debug("unknown message type", "player", c.PlayerID, "type", env.Type)
	}
}

// Subscribe attaches the connection to the session's broadcast channel.
// Game-level joining is a separate registry operation.
func (h *Hub) Subscribe(sessionID string, c *Client) {
	h.mu.Lock()
	subs, ok := h.channels[sessionID]
	if !ok {
		subs = make(map[*Client]struct{})
		h.channels[sessionID] = subs
	}
	subs[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) handleMakeMove(c *Client, sessionID string, column int) {
	sess, ok := h.registry.Get(sessionID)
	if !ok {
		h.sendError(c, "Game requested does not exist")
		return
	}

	err := sess.Do(func(g game.Game) error {
		return g.ApplyMove(c.PlayerID, column)
	})
	if err != nil {
		// rule violation: unicast to the mover only, state unchanged
		h.sendError(c, err.Error())
		return
	}

	snap := sess.Snapshot()
	h.persist(snap)
	h.broadcast(sessionID, Message{Type: MsgGameUpdate, Payload: snap})

	state, _ := snap.State.(*domain.ConnectFourState)
	if state != nil && state.Status == domain.StatusOver {
		reason := "draw"
		if len(state.Winners) == 1 {
			reason = "connect_four"
		}
		h.recordHistory(snap, state, reason)
		h.registry.Remove(sessionID)
		h.dropChannel(sessionID)
		return
	}

	if sess.Game.Settings().Privacy == domain.PrivacyPublic {
		h.NotifyLobby(snap.GameType)
	}
}

// handleLeave covers both an explicit leave_game event and a transport
// disconnect detected through presence registration.
func (h *Hub) handleLeave(c *Client, sessionID, playerID string, disconnected bool) {
	snap, removed, err := h.registry.Leave(sessionID, playerID)
	if err != nil {
		if !disconnected && c != nil {
			h.sendError(c, err.Error())
		}
		return
	}

	if disconnected {
		h.broadcast(sessionID, Message{Type: MsgPlayerDisconnected, Payload: PlayerDisconnectedPayload{
			Player:  playerID,
			Message: "player disconnected",
		}})
	}

	if removed {
		h.dropChannel(sessionID)
		return
	}

	h.persist(snap)
	h.broadcast(sessionID, Message{Type: MsgGameUpdate, Payload: snap})

	state, _ := snap.State.(*domain.ConnectFourState)
	if state != nil && state.Status == domain.StatusOver && len(state.Winners) == 1 {
		reason := "forfeit"
		if disconnected {
			reason = "disconnect"
		}
		h.recordHistory(snap, state, reason)
		h.registry.Remove(sessionID)
		h.dropChannel(sessionID)
	}
}

// OnDisconnect converts an abrupt transport drop into the same forfeit
// semantics as an explicit leave, if the connection registered presence.
func (h *Hub) OnDisconnect(c *Client) {
	h.mu.Lock()
	p, hadPresence := h.presence[c]
	delete(h.presence, c)
	delete(h.lobby, c)
	for _, subs := range h.channels {
		delete(subs, c)
	}
	h.mu.Unlock()

	if hadPresence {
		h.handleLeave(nil, p.sessionID, p.playerID, true)
	}
}

// NotifyLobby pushes the current public listing to every lobby subscriber.
func (h *Hub) NotifyLobby(gameType domain.GameType) {
	h.mu.RLock()
	subs := make([]*Client, 0, len(h.lobby))
	for c, gt := range h.lobby {
		if gt == gameType {
			subs = append(subs, c)
		}
	}
	h.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	msg := Message{Type: MsgRoomsUpdate, Payload: RoomsUpdatePayload{
		Sessions: h.registry.ListPublic(gameType),
	}}
	for _, c := range subs {
		h.send(c, msg)
	}
}

func (h *Hub) broadcast(sessionID string, msg Message) {
	h.mu.RLock()
	subs := make([]*Client, 0, len(h.channels[sessionID]))
	for c := range h.channels[sessionID] {
		subs = append(subs, c)
	}
	h.mu.RUnlock()

	for _, c := range subs {
		h.send(c, msg)
	}
}

func (h *Hub) dropChannel(sessionID string) {
	h.mu.Lock()
	delete(h.channels, sessionID)
	h.mu.Unlock()
}

func (h *Hub) sendError(c *Client, message string) {
	h.send(c, Message{Type: MsgGameError, Payload: GameErrorPayload{
		Player:  c.PlayerID,
		Message: message,
	}})
}

func (h *Hub) send(c *Client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("marshal message", "type", msg.Type, "error", err)
		return
	}

	select {
	case c.Send <- data:
	default:
		logger.Warn("send buffer full, dropping message", "player", c.PlayerID, "type", msg.Type)
	}
}

// persist writes the snapshot off the critical path; failures are logged
// and never surfaced to clients.
func (h *Hub) persist(snap *domain.GameSession) {
	if h.snapshots == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.snapshots.Save(ctx, snap); err != nil {
			logger.Error("snapshot save failed", "session_id", snap.ID, "error", err)
		}
	}()
}

func (h *Hub) recordHistory(snap *domain.GameSession, state *domain.ConnectFourState, reason string) {
	result := "draw"
	if len(state.Winners) == 1 {
		result = "win"
	}
	gamesFinished.WithLabelValues(result).Inc()

	if h.history == nil {
		return
	}

	players := snap.Players
	rows := make([]*domain.GameHistory, 0, len(players))
	for _, playerID := range players {
		res := domain.GameResultDraw
		if len(state.Winners) == 1 {
			if state.Winners[0] == playerID {
				res = domain.GameResultWin
			} else {
				res = domain.GameResultLose
			}
		}

		var opponent *string
		for _, other := range players {
			if other != playerID {
				o := other
				opponent = &o
				break
			}
		}

		rows = append(rows, &domain.GameHistory{
			SessionID:  snap.ID,
			PlayerID:   playerID,
			GameType:   snap.GameType,
			OpponentID: opponent,
			Result:     res,
			Reason:     reason,
			TotalMoves: state.TotalMoves,
		})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, gh := range rows {
			if err := h.history.Create(ctx, gh); err != nil {
				logger.Error("game history save failed", "session_id", gh.SessionID, "player", gh.PlayerID, "error", err)
			}
		}
	}()
}
