package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialWS(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(s.SolveWSHandler))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSolveWSSubscribeReceivesEvents(t *testing.T) {
	s := testServer()
	c := dialWS(t, s)

	if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		t.Fatal(err)
	}
	var ack wsMessage
	if err := c.ReadJSON(&ack); err != nil || ack.Type != "connection_ack" {
		t.Fatalf("ack: %v %+v", err, ack)
	}

	pl, _ := json.Marshal(subscribePayload{InstanceID: "i1"})
	if err := c.WriteJSON(wsMessage{Type: "subscribe", ID: "1", Payload: pl}); err != nil {
		t.Fatal(err)
	}
	// Give the fanout goroutine time to subscribe.
	time.Sleep(50 * time.Millisecond)
	s.Broker.Publish("i1", SolveEvent{Type: "solve.started"})

	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	var next wsMessage
	if err := c.ReadJSON(&next); err != nil {
		t.Fatal(err)
	}
	if next.Type != "next" || next.ID != "1" {
		t.Fatalf("frame: %+v", next)
	}
	var evt SolveEvent
	if err := json.Unmarshal(next.Payload, &evt); err != nil || evt.Type != "solve.started" {
		t.Fatalf("payload: %v %+v", err, evt)
	}
}

func TestSolveWSConcurrentFanout(t *testing.T) {
	s := testServer()
	c := dialWS(t, s)

	if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		t.Fatal(err)
	}
	var ack wsMessage
	if err := c.ReadJSON(&ack); err != nil || ack.Type != "connection_ack" {
		t.Fatalf("ack: %v %+v", err, ack)
	}

	// Two subscriptions to the same instance mean two fanout goroutines
	// writing to one connection.
	for _, id := range []string{"1", "2"} {
		pl, _ := json.Marshal(subscribePayload{InstanceID: "i1"})
		if err := c.WriteJSON(wsMessage{Type: "subscribe", ID: id, Payload: pl}); err != nil {
			t.Fatal(err)
		}
	}
	time.Sleep(50 * time.Millisecond)

	go func() {
		for i := 0; i < 20; i++ {
			s.Broker.Publish("i1", SolveEvent{Type: "solve.started"})
		}
	}()
	go func() {
		for i := 0; i < 20; i++ {
			s.Broker.Publish("i1", SolveEvent{Type: "solve.completed"})
		}
	}()

	// Both subscriptions relay; read a healthy number of frames without
	// the connection erroring out.
	_ = c.SetReadDeadline(time.Now().Add(3 * time.Second))
	got := 0
	for got < 10 {
		var m wsMessage
		if err := c.ReadJSON(&m); err != nil {
			t.Fatalf("read after %d frames: %v", got, err)
		}
		if m.Type == "next" {
			got++
		}
	}
}

func TestSolveWSSubscribeRequiresInstance(t *testing.T) {
	s := testServer()
	c := dialWS(t, s)

	if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		t.Fatal(err)
	}
	var ack wsMessage
	if err := c.ReadJSON(&ack); err != nil || ack.Type != "connection_ack" {
		t.Fatalf("ack: %v %+v", err, ack)
	}

	if err := c.WriteJSON(wsMessage{Type: "subscribe", ID: "1", Payload: []byte(`{}`)}); err != nil {
		t.Fatal(err)
	}
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	var errMsg, complete wsMessage
	if err := c.ReadJSON(&errMsg); err != nil || errMsg.Type != "error" {
		t.Fatalf("error frame: %v %+v", err, errMsg)
	}
	if err := c.ReadJSON(&complete); err != nil || complete.Type != "complete" {
		t.Fatalf("complete frame: %v %+v", err, complete)
	}
}
