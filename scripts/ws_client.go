// Package main runs a demo WebSocket client for solve progress events.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Create a small instance
	instBody := []byte(`{
		"problem": {"id": "demo", "vehicles": 2, "capacity": 50},
		"customers": [
			{"no": 0, "x": 0, "y": 0, "dueDate": 1000},
			{"no": 1, "x": 10, "y": 0, "demand": 10, "dueDate": 900, "serviceTime": 5},
			{"no": 2, "x": 0, "y": 10, "demand": 10, "dueDate": 900, "serviceTime": 5},
			{"no": 3, "x": -10, "y": 0, "demand": 10, "dueDate": 900, "serviceTime": 5}
		]
	}`)
	resp, err := http.Post(base+"/v1/instances", "application/json", bytes.NewReader(instBody))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		log.Fatal(err)
	}
	if created.ID == "" {
		log.Fatal("no instance id returned")
	}
	log.Printf("Instance ID: %s", created.ID)

	// Connect WS
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/solve/ws"}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	// connection_init
	if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		log.Fatal(err)
	}
	// subscribe to solve events for this instance
	pl, _ := json.Marshal(map[string]any{"instanceId": created.ID})
	if err := c.WriteJSON(wsMessage{Type: "subscribe", ID: "1", Payload: pl}); err != nil {
		log.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var m wsMessage
			if err := c.ReadJSON(&m); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %s: %s", m.Type, string(m.Payload))
		}
	}()

	// Trigger a solve so events flow
	time.Sleep(500 * time.Millisecond)
	solveBody := []byte(fmt.Sprintf(`{"instanceId": "%s", "algorithm": "insertion"}`, created.ID))
	_, _ = http.Post(base+"/v1/solve", "application/json", bytes.NewReader(solveBody))

	// Wait briefly to receive a few messages
	select {
	case <-time.After(2 * time.Second):
	case <-done:
	}
}
