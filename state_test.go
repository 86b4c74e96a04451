/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"testing"
)

func TestAddPlayerCaseInsensitive(t *testing.T) {
	tests := []struct {
		name    string
		add     []string
		wantErr []bool
		wantLen int
	}{
		{
			name:    "distinct names",
			add:     []string{"Alice", "Bob"},
			wantErr: []bool{false, false},
			wantLen: 2,
		},
		{
			name:    "exact duplicate",
			add:     []string{"Alice", "Alice"},
			wantErr: []bool{false, true},
			wantLen: 1,
		},
		{
			name:    "duplicate differing only in case",
			add:     []string{"Alice", "ALICE", "alice"},
			wantErr: []bool{false, true, true},
			wantLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGameState()
			for i, name := range tt.add {
				err := g.AddPlayer(name)
				if gotErr := err != nil; gotErr != tt.wantErr[i] {
					t.Fatalf("AddPlayer(%q) error = %v, want error %v", name, err, tt.wantErr[i])
				}
				if err != nil && !errors.Is(err, errDuplicateName) {
					t.Fatalf("AddPlayer(%q) error = %v, want %v", name, err, errDuplicateName)
				}
			}
			if got := len(g.Snapshot().Players); got != tt.wantLen {
				t.Fatalf("player count = %d, want %d", got, tt.wantLen)
			}
		})
	}
}

func TestTryStartGame(t *testing.T) {
	tests := []struct {
		name       string
		players    []string
		introduced []bool
		want       bool
	}{
		{
			name: "no players",
			want: false,
		},
		{
			name:       "one introduced player",
			players:    []string{"Alice"},
			introduced: []bool{true},
			want:       false,
		},
		{
			name:       "two players one not introduced",
			players:    []string{"Alice", "Bob"},
			introduced: []bool{true, false},
			want:       false,
		},
		{
			name:       "two introduced players",
			players:    []string{"Alice", "Bob"},
			introduced: []bool{true, true},
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGameState()
			for i, name := range tt.players {
				if err := g.AddPlayer(name); err != nil {
					t.Fatalf("AddPlayer(%q) error = %v", name, err)
				}
				if tt.introduced[i] {
					g.MarkLastIntroducedReady()
				}
			}
			if got := g.TryStartGame(); got != tt.want {
				t.Fatalf("TryStartGame() = %v, want %v", got, tt.want)
			}
			if got := g.Started(); got != tt.want {
				t.Fatalf("Started() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGameStartIsMonotonic(t *testing.T) {
	g := newGameState()
	for _, name := range []string{"Alice", "Bob"} {
		if err := g.AddPlayer(name); err != nil {
			t.Fatalf("AddPlayer(%q) error = %v", name, err)
		}
		g.MarkLastIntroducedReady()
	}

	if !g.TryStartGame() {
		t.Fatal("TryStartGame() = false, want true")
	}

	// A later joiner must not flip the game back to the lobby.
	if err := g.AddPlayer("Carol"); err != nil {
		t.Fatalf("AddPlayer(Carol) error = %v", err)
	}
	if !g.Started() {
		t.Fatal("Started() = false after new joiner, want true")
	}
	if !g.TryStartGame() {
		t.Fatal("TryStartGame() = false after start, want true")
	}
}

func TestMarkLastIntroducedReadyTargetsNewestJoiner(t *testing.T) {
	g := newGameState()
	for _, name := range []string{"Alice", "Bob"} {
		if err := g.AddPlayer(name); err != nil {
			t.Fatalf("AddPlayer(%q) error = %v", name, err)
		}
	}

	g.MarkLastIntroducedReady()

	snap := g.Snapshot()
	if snap.Players[0].Introduced {
		t.Fatal("Alice marked introduced, want only the newest joiner")
	}
	if !snap.Players[1].Introduced {
		t.Fatal("Bob not marked introduced, want newest joiner marked")
	}
}

func TestMarkLastIntroducedReadyEmptyRoster(t *testing.T) {
	g := newGameState()
	g.MarkLastIntroducedReady() // must not panic
}

func TestAdvanceTurn(t *testing.T) {
	t.Run("empty roster is a no-op", func(t *testing.T) {
		g := newGameState()
		g.AdvanceTurn()
		if got := g.Snapshot().CurrentPlayer; got != "" {
			t.Fatalf("CurrentPlayer = %q, want empty", got)
		}
	})

	t.Run("advances and wraps", func(t *testing.T) {
		g := newGameState()
		for _, name := range []string{"Alice", "Bob"} {
			if err := g.AddPlayer(name); err != nil {
				t.Fatalf("AddPlayer(%q) error = %v", name, err)
			}
			g.MarkLastIntroducedReady()
		}
		g.TryStartGame()

		if got := g.Snapshot().CurrentPlayer; got != "Alice" {
			t.Fatalf("CurrentPlayer = %q, want Alice", got)
		}

		g.AdvanceTurn()
		if got := g.Snapshot().CurrentPlayer; got != "Bob" {
			t.Fatalf("CurrentPlayer after one turn = %q, want Bob", got)
		}

		g.AdvanceTurn()
		if got := g.Snapshot().CurrentPlayer; got != "Alice" {
			t.Fatalf("CurrentPlayer after wrap = %q, want Alice", got)
		}
	})
}

func TestRecordLastMessage(t *testing.T) {
	g := newGameState()
	g.RecordLastMessage("Welcome to the party!")

	if got := g.Snapshot().LastAIMessage; got != "Welcome to the party!" {
		t.Fatalf("LastAIMessage = %q, want %q", got, "Welcome to the party!")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	g := newGameState()
	if err := g.AddPlayer("Alice"); err != nil {
		t.Fatalf("AddPlayer(Alice) error = %v", err)
	}

	snap := g.Snapshot()
	snap.Players[0].Name = "Mallory"

	if got := g.Snapshot().Players[0].Name; got != "Alice" {
		t.Fatalf("state mutated through snapshot: player name = %q, want Alice", got)
	}
}

func TestSessionBeginTurnDisplacesPrevious(t *testing.T) {
	s := newSession("test1234")

	first, firstSeq := s.beginTurn(context.Background())
	second, secondSeq := s.beginTurn(context.Background())

	select {
	case <-first.Done():
	default:
		t.Fatal("first turn context still live after displacement")
	}
	if second.Err() != nil {
		t.Fatalf("second turn context error = %v, want nil", second.Err())
	}

	// The displaced turn's cleanup must not cancel the newer turn.
	s.endTurn(firstSeq)
	if second.Err() != nil {
		t.Fatalf("second turn cancelled by stale endTurn: %v", second.Err())
	}

	s.endTurn(secondSeq)
	select {
	case <-second.Done():
	default:
		t.Fatal("second turn context still live after endTurn")
	}
}

func TestGameManagerSessionsAreIsolated(t *testing.T) {
	gm := newGameManager(0)

	a := gm.getSession("aaaaaaaa")
	b := gm.getSession("bbbbbbbb")
	if a == b {
		t.Fatal("distinct session IDs share a session")
	}

	if err := a.state.AddPlayer("Alice"); err != nil {
		t.Fatalf("AddPlayer(Alice) error = %v", err)
	}
	if b.state.HasPlayer("Alice") {
		t.Fatal("player bled across sessions")
	}

	if again := gm.getSession("aaaaaaaa"); again != a {
		t.Fatal("repeat lookup returned a different session")
	}
}

func TestNewSessionIDShape(t *testing.T) {
	gm := newGameManager(0)

	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		id := gm.newSessionID()
		if len(id) != 8 {
			t.Fatalf("session ID %q length = %d, want 8", id, len(id))
		}
		if seen[id] {
			t.Fatalf("session ID %q repeated", id)
		}
		seen[id] = true
	}
}
