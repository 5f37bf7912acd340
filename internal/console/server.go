// Package console mirrors the assistant's conversation over a
// websocket. Clients see every heard utterance, intent and reply, and
// can type utterances in, which the loop treats exactly like speech.
package console

import (
	"encoding/json"
	"net/http"
	"sync"

	log "log/slog"

	ws "github.com/gorilla/websocket"
)

// Event is one line of the conversation mirror.
type Event struct {
	Kind string `json:"kind"` // "heard", "intent", "reply", "state"
	Text string `json:"text"`
}

// Input is what a client types.
type Input struct {
	Text string `json:"text"`
}

// Server fans events out to every connected client and funnels typed
// input into one channel.
type Server struct {
	upgrader ws.Upgrader

	mu      sync.Mutex
	clients map[*ws.Conn]struct{}

	inputs chan string
}

func NewServer() *Server {
	return &Server{
		upgrader: ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		clients:  make(map[*ws.Conn]struct{}),
		inputs:   make(chan string, 16),
	}
}

// Inputs yields typed utterances. The assistant loop drains this
// between listening windows.
func (s *Server) Inputs() <-chan string { return s.inputs }

// Start serves the websocket endpoint on addr until the process exits.
func (s *Server) Start(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("console server stopped", "addr", addr, "err", err)
		}
	}()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("console upgrade failed", "err", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()
	log.Info("console client connected", "remote", conn.RemoteAddr())

	go s.readLoop(conn)
}

func (s *Server) readLoop(conn *ws.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var in Input
		if err := json.Unmarshal(msg, &in); err != nil || in.Text == "" {
			continue
		}
		select {
		case s.inputs <- in.Text:
		default:
			log.Warn("console input dropped, loop is busy")
		}
	}
}

// Broadcast sends one event to every client. Dead connections are
// dropped on write failure.
func (s *Server) Broadcast(kind, text string) {
	data, err := json.Marshal(Event{Kind: kind, Text: text})
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteMessage(ws.TextMessage, data); err != nil {
			delete(s.clients, conn)
			conn.Close()
		}
	}
}
