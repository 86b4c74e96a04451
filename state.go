/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"
)

var errDuplicateName = errors.New("player name already taken")

// Player holds the data we store server-side for each joined player.
type Player struct {
	Name       string `json:"name"`
	Introduced bool   `json:"introduced"`
}

// GameState tracks one party's progress: who has joined, whose turn it
// is, whether the game is underway, and what the host said last.
// Players are kept in insertion order; that order is the turn order.
type GameState struct {
	mu sync.RWMutex

	players            []Player
	currentPlayerIndex int
	gameStarted        bool
	lastAIMessage      string
}

// GameSnapshot is a read-only copy handed to the prompt builder and
// the spectator hub.
type GameSnapshot struct {
	Players       []Player `json:"players"`
	CurrentPlayer string   `json:"current_player"`
	GameStarted   bool     `json:"game_started"`
	LastAIMessage string   `json:"last_ai_message"`
}

func newGameState() *GameState {
	return &GameState{}
}

// AddPlayer appends a new, not-yet-introduced player. Names are unique
// under case-insensitive comparison.
func (g *GameState) AddPlayer(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, p := range g.players {
		if strings.EqualFold(p.Name, name) {
			return errDuplicateName
		}
	}
	g.players = append(g.players, Player{Name: name})

	return nil
}

// HasPlayer reports whether name matches an existing player,
// case-insensitively.
func (g *GameState) HasPlayer(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, p := range g.players {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// MarkLastIntroducedReady flags the most recently added player as
// introduced. Players are introduced one at a time, so a readiness
// message always refers to the newest joiner.
func (g *GameState) MarkLastIntroducedReady() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.players) > 0 {
		g.players[len(g.players)-1].Introduced = true
	}
}

// TryStartGame flips gameStarted once at least two players have joined
// and every one of them is introduced. The transition is one-way; once
// started, a session never goes back to the lobby.
func (g *GameState) TryStartGame() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.gameStarted {
		return true
	}
	if len(g.players) < 2 {
		return false
	}
	for _, p := range g.players {
		if !p.Introduced {
			return false
		}
	}
	g.gameStarted = true

	return true
}

// AdvanceTurn moves the turn pointer to the next player, wrapping
// around. No-op on an empty roster.
func (g *GameState) AdvanceTurn() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.players) == 0 {
		return
	}
	g.currentPlayerIndex = (g.currentPlayerIndex + 1) % len(g.players)
}

// RecordLastMessage stores the host's latest full reply, so the next
// prompt can tell the backend not to repeat itself.
func (g *GameState) RecordLastMessage(text string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.lastAIMessage = text
}

func (g *GameState) Started() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.gameStarted
}

// Snapshot returns a consistent copy of the current state.
func (g *GameState) Snapshot() GameSnapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snap := GameSnapshot{
		Players:       make([]Player, len(g.players)),
		GameStarted:   g.gameStarted,
		LastAIMessage: g.lastAIMessage,
	}
	copy(snap.Players, g.players)

	if len(g.players) > 0 && g.currentPlayerIndex < len(g.players) {
		snap.CurrentPlayer = g.players[g.currentPlayerIndex].Name
	}

	return snap
}

// Session bundles everything scoped to one party: its game state, the
// spectator hub, and the single tracked in-flight backend call.
type Session struct {
	id    string
	state *GameState
	hub   *Hub

	mu         sync.Mutex
	lastActive time.Time
	turnSeq    uint64
	cancel     context.CancelFunc
}

func newSession(id string) *Session {
	return &Session{
		id:         id,
		state:      newGameState(),
		hub:        newHub(),
		lastActive: time.Now(),
	}
}

// beginTurn cancels any in-flight backend call for this session and
// installs a fresh cancellation handle for the new one. The returned
// context is what the backend call must run under; the sequence number
// identifies this turn's handle for endTurn.
func (s *Session) beginTurn(parent context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.turnSeq++
	seq := s.turnSeq
	s.lastActive = time.Now()
	s.mu.Unlock()

	return ctx, seq
}

// endTurn releases the handle installed by beginTurn, unless a newer
// turn has already replaced it.
func (s *Session) endTurn(seq uint64) {
	s.mu.Lock()
	if s.turnSeq == seq && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// GameManager holds a set of sessions keyed by session ID, so each
// $path/$sessionid is its own isolated party.
type GameManager struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	idleTimeout time.Duration
}

func newGameManager(idleTimeout time.Duration) *GameManager {
	gm := &GameManager{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
	}
	if idleTimeout > 0 {
		go gm.reaperLoop()
	}
	return gm
}

func (gm *GameManager) getSession(sessionID string) *Session {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if s, ok := gm.sessions[sessionID]; ok {
		return s
	}

	s := newSession(sessionID)
	gm.sessions[sessionID] = s
	return s
}

// newSessionID generates a crypto-random session ID and ensures it
// doesn't collide with existing sessions.
func (gm *GameManager) newSessionID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, 8)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		gm.mu.Lock()
		_, exists := gm.sessions[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reaperLoop periodically removes sessions that have been idle longer
// than idleTimeout.
func (gm *GameManager) reaperLoop() {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	for range ticker.C {
		cutoff := time.Now().Add(-gm.idleTimeout)

		gm.mu.Lock()
		for id, s := range gm.sessions {
			s.mu.Lock()
			last := s.lastActive
			cancel := s.cancel
			s.mu.Unlock()

			if last.Before(cutoff) {
				delete(gm.sessions, id)
				if cancel != nil {
					cancel()
				}
				go s.hub.closeAll()
			}
		}
		gm.mu.Unlock()
	}
}
