/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
)

type stubBackend struct {
	chunks []string
	err    error

	gotSystem  string
	gotHistory []Message
}

func (b *stubBackend) stream(_ context.Context, system string, history []Message, onDelta func(string)) (string, error) {
	b.gotSystem = system
	b.gotHistory = history

	if b.err != nil {
		return "", b.err
	}

	var full strings.Builder
	for _, chunk := range b.chunks {
		onDelta(chunk)
		full.WriteString(chunk)
	}
	return full.String(), nil
}

func newTestRig(backend chatBackend) (*httprouter.Router, *GameManager) {
	cfg := &Config{}
	gm := newGameManager(0)

	mux := httprouter.New()
	mux.POST("/party/:sessionid/chat", servePartyChat(cfg, gm, heuristicClassifier{}, backend))

	return mux, gm
}

func postTurn(t *testing.T, mux *httprouter.Router, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/party/"+sessionID+"/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	return rec
}

func TestChatTurnStreamsAndRecordsReply(t *testing.T) {
	backend := &stubBackend{chunks: []string{"Welcome, ", "Alice!"}}
	mux, gm := newTestRig(backend)

	rec := postTurn(t, mux, "testsess", `{"messages":[{"role":"user","content":"Alice"}]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Body.String(); got != "Welcome, Alice!" {
		t.Fatalf("body = %q, want %q", got, "Welcome, Alice!")
	}

	state := gm.getSession("testsess").state
	if !state.HasPlayer("Alice") {
		t.Fatal("user message not classified into a join")
	}
	if got := state.Snapshot().LastAIMessage; got != "Welcome, Alice!" {
		t.Fatalf("LastAIMessage = %q, want full reply recorded", got)
	}
}

func TestChatTurnPromptReflectsState(t *testing.T) {
	backend := &stubBackend{chunks: []string{"ok"}}
	mux, _ := newTestRig(backend)

	body := `{"messages":[
		{"role":"system","content":"Mods updated. Enabled mods: drinking_game, trivia_master"},
		{"role":"user","content":"Alice"}
	]}`
	if rec := postTurn(t, mux, "promptsess", body); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	for _, want := range []string{
		"The following mods are enabled: drinking_game, trivia_master.",
		"Current players: Alice",
		"Current player: Alice",
		"Game started: false",
	} {
		if !strings.Contains(backend.gotSystem, want) {
			t.Fatalf("system prompt missing %q:\n%s", want, backend.gotSystem)
		}
	}
}

func TestChatTurnDefaultModsWithoutDirective(t *testing.T) {
	backend := &stubBackend{chunks: []string{"ok"}}
	mux, _ := newTestRig(backend)

	if rec := postTurn(t, mux, "defaults", `{"messages":[{"role":"user","content":"Alice"}]}`); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	if !strings.Contains(backend.gotSystem, "The following mods are enabled: drinking_game.") {
		t.Fatalf("system prompt missing default mod set:\n%s", backend.gotSystem)
	}
}

func TestChatTurnStripsSystemMessagesFromHistory(t *testing.T) {
	backend := &stubBackend{chunks: []string{"ok"}}
	mux, _ := newTestRig(backend)

	body := `{"messages":[
		{"role":"system","content":"Mods updated. Enabled mods: charades"},
		{"role":"assistant","content":"Who's there?"},
		{"role":"user","content":"Alice"}
	]}`
	if rec := postTurn(t, mux, "filtersess", body); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	if len(backend.gotHistory) != 2 {
		t.Fatalf("history = %+v, want system entries stripped", backend.gotHistory)
	}
	for _, msg := range backend.gotHistory {
		if msg.Role == roleSystem {
			t.Fatalf("system message reached the backend: %+v", msg)
		}
	}
}

func TestChatTurnAborted(t *testing.T) {
	backend := &stubBackend{err: errAborted}
	mux, _ := newTestRig(backend)

	rec := postTurn(t, mux, "abortsess", `{"messages":[{"role":"user","content":"Alice"}]}`)

	if rec.Code != statusClientClosedRequest {
		t.Fatalf("status = %d, want %d", rec.Code, statusClientClosedRequest)
	}
	if got := rec.Body.String(); got != "Request aborted" {
		t.Fatalf("body = %q, want %q", got, "Request aborted")
	}
}

func TestChatTurnBackendFailure(t *testing.T) {
	backend := &stubBackend{err: errors.New("rate limited")}
	mux, gm := newTestRig(backend)

	rec := postTurn(t, mux, "failsess", `{"messages":[{"role":"user","content":"Alice"}]}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if got := rec.Body.String(); got != "Internal Server Error" {
		t.Fatalf("body = %q, want opaque generic failure", got)
	}

	// The failed turn still classified its input; only the reply is lost.
	if got := gm.getSession("failsess").state.Snapshot().LastAIMessage; got != "" {
		t.Fatalf("LastAIMessage = %q after failure, want empty", got)
	}
}

func TestChatTurnMalformedBody(t *testing.T) {
	backend := &stubBackend{chunks: []string{"ok"}}
	mux, _ := newTestRig(backend)

	rec := postTurn(t, mux, "badsess", `{"messages":`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
