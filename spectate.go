/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Spectator fanout: any device at the party can open a websocket and
// watch the conversation as it happens. Spectators are read-only;
// the host only talks through the chat endpoint.

// GameStateMessage mirrors the session state to spectators whenever
// a turn changes it.
type GameStateMessage struct {
	Type  string       `json:"type"` // "game_state"
	State GameSnapshot `json:"state"`
}

// ReplyChunkMessage carries one streamed piece of the host's reply.
type ReplyChunkMessage struct {
	Type string `json:"type"` // "reply_chunk"
	Text string `json:"text"`
}

// ReplyDoneMessage marks the end of a reply with the full text.
type ReplyDoneMessage struct {
	Type string `json:"type"` // "reply_done"
	Text string `json:"text"`
}

type Client struct {
	conn *websocket.Conn
	send chan any
}

type Hub struct {
	mu      sync.Mutex
	clients map[*Client]bool
}

func newHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// broadcast fans msg out to every connected spectator. Slow consumers
// with a full send buffer are dropped rather than stalling the reply
// stream.
func (h *Hub) broadcast(msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// readPump discards inbound frames; it exists to notice disconnects.
func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}
