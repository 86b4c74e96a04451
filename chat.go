/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// statusClientClosedRequest is nginx's non-standard code for a request
// the client walked away from. Distinct from a server failure.
const statusClientClosedRequest = 499

type chatRequest struct {
	Messages []Message `json:"messages"`
}

// servePartyChat handles one conversational turn: classify the newest
// human message into a state change, render the standing instructions,
// and relay the backend's reply to the caller chunk by chunk. The full
// reply is recorded on the session before the handler returns, so the
// next turn's prompt always sees it.
func servePartyChat(cfg *Config, gm *GameManager, cl classifier, backend chatBackend) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		sessionID := ps.ByName("sessionid")
		if sessionID == "" {
			http.Error(w, "missing session id", http.StatusBadRequest)
			return
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed request body", http.StatusBadRequest)
			return
		}

		s := gm.getSession(sessionID)

		enabledMods := enabledModsFrom(req.Messages)

		for i := len(req.Messages) - 1; i >= 0; i-- {
			if req.Messages[i].Role == roleUser {
				cl.classify(req.Messages[i].Content, s.state)
				break
			}
		}

		prompt := buildSystemPrompt(s.state.Snapshot(), enabledMods)

		// Mod directives and any other system-role entries are ours,
		// not the backend's; they never appear as conversation turns.
		history := make([]Message, 0, len(req.Messages))
		for _, msg := range req.Messages {
			if msg.Role != roleSystem {
				history = append(history, msg)
			}
		}

		// One tracked in-flight call per session: starting this turn
		// displaces whatever the previous one was still streaming.
		ctx, seq := s.beginTurn(r.Context())
		defer s.endTurn(seq)

		s.hub.broadcast(GameStateMessage{Type: "game_state", State: s.state.Snapshot()})

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("X-Accel-Buffering", "no")
		securityHeaders(cfg, w)

		flusher, _ := w.(http.Flusher)
		wroteAny := false

		fullText, err := backend.stream(ctx, prompt, history, func(delta string) {
			if _, werr := io.WriteString(w, delta); werr == nil {
				wroteAny = true
				if flusher != nil {
					flusher.Flush()
				}
			}
			s.hub.broadcast(ReplyChunkMessage{Type: "reply_chunk", Text: delta})
		})
		if err != nil {
			if errors.Is(err, errAborted) {
				logf(cfg, "PARTY: Turn aborted for session %s (%s)", sessionID, realIP(r))
				if !wroteAny {
					w.WriteHeader(statusClientClosedRequest)
					_, _ = io.WriteString(w, "Request aborted")
				}
				return
			}

			log.Printf("%s | ERROR: backend call failed for session %s: %v", time.Now().Format(logDate), sessionID, err)
			if !wroteAny {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, "Internal Server Error")
			}
			return
		}

		s.state.RecordLastMessage(fullText)

		s.hub.broadcast(ReplyDoneMessage{Type: "reply_done", Text: fullText})
		s.hub.broadcast(GameStateMessage{Type: "game_state", State: s.state.Snapshot()})

		logf(cfg, "PARTY: Reply (%s) for session %s to %s in %s",
			humanReadableSize(int64(len(fullText))),
			sessionID,
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// serveSpectator upgrades to a websocket and mirrors the session's
// conversation and state to the connecting device.
func serveSpectator(gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		sessionID := ps.ByName("sessionid")
		if sessionID == "" {
			http.Error(w, "missing session id", http.StatusBadRequest)
			return
		}

		s := gm.getSession(sessionID)
		s.touch()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, 8),
		}

		s.hub.register(client)

		client.send <- GameStateMessage{Type: "game_state", State: s.state.Snapshot()}

		go client.writePump()
		client.readPump(s.hub)
	}
}

// QR handler: generates a PNG QR code for the current session URL
// using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sessionID := ps.ByName("sessionid")
	if sessionID == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:sessionid/qr; strip trailing "/qr" to get the
	// session URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// redirectNewSession handles GET /path by generating a new random
// session ID (with server-side collision detection) and redirecting
// to /path/:sessionid.
func redirectNewSession(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		sessionID := gm.newSessionID()
		logf(cfg, "GAMES: Created session %s/%s", path, sessionID)
		http.Redirect(w, r, path+"/"+sessionID, http.StatusTemporaryRedirect)
	}
}

// registerPartyGame sets up routes so that:
//   - $path                   → redirects to new random session (8-char ID)
//   - $path/:sessionid        → HTML client
//   - $path/:sessionid/chat   → one conversational turn (streamed reply)
//   - $path/:sessionid/ws     → spectator WebSocket for that session
//   - $path/:sessionid/qr     → PNG QR code for that session URL
//   - /mods                   → modifier catalog as JSON
func registerPartyGame(cfg *Config, path string, mux *httprouter.Router, errs chan<- error) {
	gm := newGameManager(cfg.sessionTimeout)
	backend := newOpenAIBackend(cfg)

	// Root path → redirect to new random session
	mux.GET(cfg.prefix+path, redirectNewSession(cfg, cfg.prefix+path, gm))

	// Per-session client view (HTML)
	mux.GET(cfg.prefix+path+"/:sessionid", getIndexHandler(cfg))

	// Per-session conversational turn
	mux.POST(cfg.prefix+path+"/:sessionid/chat", servePartyChat(cfg, gm, heuristicClassifier{}, backend))

	// Per-session spectator websocket
	mux.GET(cfg.prefix+path+"/:sessionid/ws", serveSpectator(gm))

	// Per-session QR code
	mux.GET(cfg.prefix+path+"/:sessionid/qr", qrHandler)

	// Shared modifier catalog (no sessionid in route)
	mux.GET(cfg.prefix+"/mods", serveModCatalog(cfg, errs))
}
