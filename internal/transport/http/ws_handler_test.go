package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func TestWebSocketDrawFlow(t *testing.T) {
	server := httptest.NewServer(newTestMux(newTestService()))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?competitionId=comp-1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Nothing drawn yet.
	_, payload := readNext(conn, t, "subscribed")
	if payload["competitionId"] != "comp-1" {
		t.Fatalf("expected competitionId comp-1, got %v", payload["competitionId"])
	}
	if payload["draw"] != nil {
		t.Fatalf("expected no current draw, got %v", payload["draw"])
	}

	resp, err := http.Post(server.URL+"/competitions/comp-1/draw", "application/json", strings.NewReader(`{"winners":2}`))
	if err != nil {
		t.Fatalf("post draw: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	_, payload = readNext(conn, t, "draw")
	winners, ok := payload["winners"].([]any)
	if !ok || len(winners) != 2 {
		t.Fatalf("expected two announced winners, got %v", payload["winners"])
	}

	if err := conn.WriteJSON(map[string]any{"type": "verify"}); err != nil {
		t.Fatalf("write verify: %v", err)
	}
	_, payload = readNext(conn, t, "verification")
	if payload["valid"] != true {
		t.Fatalf("expected valid verification, got %v", payload)
	}
}

func TestWebSocketSubscribedCarriesExistingDraw(t *testing.T) {
	service := newTestService()
	server := httptest.NewServer(newTestMux(service))
	defer server.Close()

	resp, err := http.Post(server.URL+"/competitions/comp-1/draw", "application/json", nil)
	if err != nil {
		t.Fatalf("post draw: %v", err)
	}
	resp.Body.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?competitionId=comp-1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_, payload := readNext(conn, t, "subscribed")
	current, ok := payload["draw"].(map[string]any)
	if !ok || current["hash"] == "" {
		t.Fatalf("expected current draw in subscribed payload, got %v", payload["draw"])
	}

	if err := conn.WriteJSON(map[string]any{"type": "shout"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readNext(conn, t, "error")
}

func TestWebSocketHandlerReturnsAfterClientLeaves(t *testing.T) {
	service := newTestService()
	ws := NewWSHandler(service, zap.NewNop())
	finished := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(finished)
		ws.ServeWS(w, r)
	}))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/?competitionId=comp-1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	// queue far more replies than the send buffer holds, never read them
	for i := 0; i < 64; i++ {
		if err := conn.WriteJSON(map[string]any{"type": "verify"}); err != nil {
			break
		}
	}
	conn.Close()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatalf("handler still running after the client went away")
	}
}

func TestWebSocketRequiresCompetitionID(t *testing.T) {
	server := httptest.NewServer(newTestMux(newTestService()))
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	var payload map[string]any
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return msg.Type, payload
}
