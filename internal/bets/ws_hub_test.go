package bets_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/betpulse/live-gate/internal/bets"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestWSHub_Broadcast(t *testing.T) {
	hub := bets.NewWSHub()
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	conn := dialHub(t, srv)
	defer conn.Close()
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	hub.Broadcast(bets.WSMessage{Type: "lock_changed", MatchID: "m1", Locked: true, Reason: "goal scored in the last 30 seconds"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg bets.WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}
	if msg.Type != "lock_changed" || msg.MatchID != "m1" || !msg.Locked {
		t.Errorf("message = %+v", msg)
	}
}

func TestWSHub_DisconnectedClientIsPruned(t *testing.T) {
	hub := bets.NewWSHub()
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	keep := dialHub(t, srv)
	defer keep.Close()
	gone := dialHub(t, srv)
	waitFor(t, func() bool { return hub.ClientCount() == 2 })

	gone.Close()
	// Broadcasting while the read pump tears the connection down must
	// neither panic nor leave the dead client registered.
	waitFor(t, func() bool {
		hub.Broadcast(bets.WSMessage{Type: "lock_changed", MatchID: "m1"})
		return hub.ClientCount() == 1
	})

	// The surviving client still receives broadcasts.
	keep.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := keep.ReadMessage(); err != nil {
		t.Fatalf("surviving client read: %v", err)
	}
}
