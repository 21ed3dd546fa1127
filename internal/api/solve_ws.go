package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket subscription endpoint (graphql-transport-ws style framing) for
// solve progress events.

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type subscribePayload struct {
	InstanceID string `json:"instanceId"`
}

// SolveWSHandler handles /v1/solve/ws
func (s *Server) SolveWSHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	// Track subscriptions: id -> instance and channel
	type sub struct {
		instanceID string
		ch         chan SolveEvent
		done       chan struct{}
	}
	subs := map[string]sub{}

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error { _ = conn.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	// Writes come from the read loop, the keepalive ticker, and every
	// subscription's fanout goroutine; gorilla/websocket allows only one
	// concurrent writer.
	var writeMu sync.Mutex
	write := func(v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(v)
	}

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "connection_init":
			_ = write(wsMessage{Type: "connection_ack"})
			// Keepalive
			go func() {
				ticker := time.NewTicker(20 * time.Second)
				defer ticker.Stop()
				for range ticker.C {
					if err := write(wsMessage{Type: "ping"}); err != nil {
						return
					}
				}
			}()
		case "ping":
			_ = write(wsMessage{Type: "pong"})
		case "subscribe":
			var pl subscribePayload
			_ = json.Unmarshal(msg.Payload, &pl)
			if pl.InstanceID == "" {
				_ = write(wsMessage{Type: "error", ID: msg.ID, Payload: []byte(`{"message":"instanceId required"}`)})
				_ = write(wsMessage{Type: "complete", ID: msg.ID})
				continue
			}
			ch := s.Broker.Subscribe(pl.InstanceID)
			done := make(chan struct{})
			subs[msg.ID] = sub{instanceID: pl.InstanceID, ch: ch, done: done}
			go func(id string, c chan SolveEvent, done chan struct{}) {
				for {
					select {
					case <-done:
						return
					case evt, ok := <-c:
						if !ok {
							_ = write(wsMessage{Type: "complete", ID: id})
							return
						}
						payload, _ := json.Marshal(evt)
						_ = write(wsMessage{Type: "next", ID: id, Payload: payload})
					}
				}
			}(msg.ID, ch, done)
		case "complete":
			if s0, ok := subs[msg.ID]; ok {
				close(s0.done)
				s.Broker.Unsubscribe(s0.instanceID, s0.ch)
				delete(subs, msg.ID)
			}
		default:
			// ignore
		}
	}
	for id, s0 := range subs {
		close(s0.done)
		s.Broker.Unsubscribe(s0.instanceID, s0.ch)
		delete(subs, id)
	}
}
