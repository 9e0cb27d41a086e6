package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"forum_games/internal/domain"
	"forum_games/internal/game"
	"forum_games/internal/logger"
)

// Session - активная партия в реестре. All game transitions are funneled
// through Do, so two concurrent commands against the same session never
// interleave; distinct sessions proceed in parallel.
type Session struct {
	ID        string
	Game      game.Game
	CreatedAt time.Time
	mu        sync.Mutex
}

// Do runs fn while holding the session's lock.
func (s *Session) Do(fn func(g game.Game) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.Game)
}

// Snapshot returns a wire/persistence copy of the session.
func (s *Session) Snapshot() *domain.GameSession {
	return &domain.GameSession{
		ID:       s.ID,
		GameType: s.Game.Type(),
		Players:  s.Game.Players(),
		State:    s.Game.State(),
	}
}

// Registry owns the process-wide set of active sessions. The map itself is
// only touched for insert/lookup/delete; game state mutation happens under
// the per-session lock.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  *game.Factory

	// OnMutate is invoked (outside locks) after any mutation that can
	// affect public room listings. Assigned once at wiring time.
	OnMutate func(gameType domain.GameType)
}

func New() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		factory:  game.NewFactory(),
	}
}

const codeRetries = 5

func (r *Registry) Create(gameType domain.GameType, creatorID string, settings *domain.RoomSettings) (*Session, error) {
	if creatorID == "" {
		return nil, ErrMissingCreator
	}
	if settings == nil {
		return nil, ErrMissingSettings
	}

	s := *settings
	if s.Privacy == "" {
		s.Privacy = domain.PrivacyPublic
	}

	r.mu.Lock()
	if s.Privacy != domain.PrivacyPublic {
		code, err := r.uniqueCodeLocked()
		if err != nil {
			r.mu.Unlock()
			return nil, err
		}
		s.RoomCode = code
	} else {
		s.RoomCode = ""
	}

	g, err := r.factory.CreateGame(gameType, creatorID, s)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}

	sess := &Session{
		ID:        uuid.NewString(),
		Game:      g,
		CreatedAt: time.Now(),
	}
	r.sessions[sess.ID] = sess
	r.mu.Unlock()

	logger.Info("session created", "session_id", sess.ID, "game_type", gameType, "privacy", s.Privacy)
	r.notify(gameType)
	return sess, nil
}

// uniqueCodeLocked generates a room code absent among active sessions.
// Linear scan; fine at the scale of one process worth of rooms.
func (r *Registry) uniqueCodeLocked() (string, error) {
	for i := 0; i < codeRetries; i++ {
		code, err := generateRoomCode()
		if err != nil {
			return "", err
		}
		taken := false
		for _, sess := range r.sessions {
			if sess.Game.Settings().RoomCode == code {
				taken = true
				break
			}
		}
		if !taken {
			return code, nil
		}
	}
	return "", errors.New("could not allocate a unique room code")
}

func (r *Registry) Get(sessionID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[sessionID]
	return sess, ok
}

func (r *Registry) Join(sessionID, playerID, roomCode string, asSpectator bool) (*domain.GameSession, error) {
	sess, ok := r.Get(sessionID)
	if !ok {
		return nil, ErrNotFound
	}

	err := sess.Do(func(g game.Game) error {
		if asSpectator {
			return g.AddSpectator(playerID)
		}

		settings := g.Settings()
		if settings.Privacy != domain.PrivacyPublic && settings.RoomCode != roomCode {
			return ErrAccessDenied
		}
		if g.HasPlayer(playerID) {
			return ErrAlreadyJoined
		}
		return g.Join(playerID)
	})
	if err != nil {
		return nil, err
	}

	r.notify(sess.Game.Type())
	return sess.Snapshot(), nil
}

// JoinByCode resolves a non-public session by its room code. Public rooms
// carry no code, so lookups against them never match.
func (r *Registry) JoinByCode(roomCode, playerID string, asSpectator bool) (*domain.GameSession, error) {
	if roomCode == "" {
		return nil, ErrNotFound
	}

	r.mu.RLock()
	var found *Session
	for _, sess := range r.sessions {
		settings := sess.Game.Settings()
		if settings.Privacy != domain.PrivacyPublic && settings.RoomCode == roomCode {
			found = sess
			break
		}
	}
	r.mu.RUnlock()

	if found == nil {
		return nil, ErrNotFound
	}
	return r.Join(found.ID, playerID, roomCode, asSpectator)
}

// Leave delegates to the game's leave transition and drops the session when
// the engine signals it has no continuation. removed reports the drop.
func (r *Registry) Leave(sessionID, playerID string) (snap *domain.GameSession, removed bool, err error) {
	sess, ok := r.Get(sessionID)
	if !ok {
		return nil, false, ErrNotFound
	}

	var discard bool
	err = sess.Do(func(g game.Game) error {
		var leaveErr error
		discard, leaveErr = g.Leave(playerID)
		return leaveErr
	})
	if err != nil {
		return nil, false, err
	}

	snap = sess.Snapshot()
	if discard {
		r.Remove(sessionID)
		return snap, true, nil
	}

	r.notify(sess.Game.Type())
	return snap, false, nil
}

func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	sess, ok := r.sessions[sessionID]
	if ok {
		delete(r.sessions, sessionID)
	}
	r.mu.Unlock()

	if ok {
		logger.Info("session removed", "session_id", sessionID)
		r.notify(sess.Game.Type())
	}
}

// ListActive returns the active sessions, optionally filtered by game type.
// Empty gameType matches everything.
func (r *Registry) ListActive(gameType domain.GameType) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		if gameType != "" && sess.Game.Type() != gameType {
			continue
		}
		res = append(res, sess)
	}
	return res
}

// ListPublic projects the lobby view: snapshots of public sessions only.
func (r *Registry) ListPublic(gameType domain.GameType) []*domain.GameSession {
	sessions := r.ListActive(gameType)
	res := make([]*domain.GameSession, 0, len(sessions))
	for _, sess := range sessions {
		if sess.Game.Settings().Privacy == domain.PrivacyPublic {
			res = append(res, sess.Snapshot())
		}
	}
	return res
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) notify(gameType domain.GameType) {
	if r.OnMutate != nil {
		r.OnMutate(gameType)
	}
}

// StartCleanup periodically drops rooms that never started and have been
// sitting idle longer than ttl.
func (r *Registry) StartCleanup(interval, ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			r.cleanupStaleSessions(ttl)
		}
	}()
}

func (r *Registry) cleanupStaleSessions(ttl time.Duration) {
	now := time.Now()

	r.mu.Lock()
	var stale []*Session
	for id, sess := range r.sessions {
		if sess.Game.Status() == domain.StatusWaitingToStart && now.Sub(sess.CreatedAt) > ttl {
			delete(r.sessions, id)
			stale = append(stale, sess)
		}
	}
	r.mu.Unlock()

	for _, sess := range stale {
		logger.Info("cleaned up stale session", "session_id", sess.ID)
		r.notify(sess.Game.Type())
	}
}
