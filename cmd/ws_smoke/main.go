package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"forum_games/internal/service"
)

// Гоняет полный цикл против живого сервера: комната, два игрока, партия до победы.
func main() {
	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	service.InitJWT()
	tokenA, err := service.GenerateJWT("smoke-alice")
	if err != nil {
		log.Fatalf("gen token A: %v", err)
	}
	tokenB, err := service.GenerateJWT("smoke-bob")
	if err != nil {
		log.Fatalf("gen token B: %v", err)
	}

	baseURL := fmt.Sprintf("http://127.0.0.1:%s", port)

	// create a public room as alice
	body, _ := json.Marshal(map[string]any{
		"game_type": "connect_four",
		"room_settings": map[string]any{
			"room_name":        "Smoke",
			"privacy":          "public",
			"allow_spectators": true,
		},
	})
	req, _ := http.NewRequest(http.MethodPost, baseURL+"/api/v1/rooms", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+tokenA)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("create room: %v", err)
	}
	var created struct {
		SessionID string `json:"session_id"`
		RoomCode  string `json:"room_code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		log.Fatalf("decode create: %v", err)
	}
	resp.Body.Close()
	log.Printf("room created: %s (code %s)", created.SessionID, created.RoomCode)

	// bob joins over REST
	req, _ = http.NewRequest(http.MethodPost, baseURL+"/api/v1/rooms/"+created.SessionID+"/join", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Authorization", "Bearer "+tokenB)
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("join room: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("join room: status %d", resp.StatusCode)
	}

	dialer := websocket.DefaultDialer

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	connA, _, err := dialer.Dial(fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s", port, tokenA), nil)
	if err != nil {
		log.Fatalf("dial A: %v", err)
	}
	defer connA.Close()

	connB, _, err := dialer.Dial(fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s", port, tokenB), nil)
	if err != nil {
		log.Fatalf("dial B: %v", err)
	}
	defer connB.Close()

	sendJSON := func(conn *websocket.Conn, v any) {
		b, _ := json.Marshal(v)
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Fatalf("write: %v", err)
		}
	}

	for _, conn := range []*websocket.Conn{connA, connB} {
		sendJSON(conn, map[string]any{
			"type":    "join_channel",
			"payload": map[string]any{"session_id": created.SessionID},
		})
		sendJSON(conn, map[string]any{
			"type":    "register_presence",
			"payload": map[string]any{"session_id": created.SessionID},
		})
	}

	readUpdate := func(conn *websocket.Conn) (string, map[string]any) {
		deadline := time.Now().Add(3 * time.Second)
		for time.Now().Before(deadline) {
			conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				continue
			}
			var obj struct {
				Type    string         `json:"type"`
				Payload map[string]any `json:"payload"`
			}
			if json.Unmarshal(msg, &obj) == nil && (obj.Type == "game_update" || obj.Type == "game_error") {
				return obj.Type, obj.Payload
			}
		}
		log.Fatal("timed out waiting for game_update")
		return "", nil
	}

	// alice stacks column 3, bob wastes moves in column 0
	moves := []struct {
		conn *websocket.Conn
		col  int
	}{
		{connA, 3}, {connB, 0},
		{connA, 3}, {connB, 0},
		{connA, 3}, {connB, 0},
		{connA, 3},
	}

	var last map[string]any
	for i, m := range moves {
		sendJSON(m.conn, map[string]any{
			"type":    "make_move",
			"payload": map[string]any{"session_id": created.SessionID, "column": m.col},
		})
		typ, payload := readUpdate(connA)
		if typ == "game_error" {
			log.Fatalf("move %d rejected: %v", i, payload)
		}
		// drain the same update on the other side
		readUpdate(connB)
		state, _ := payload["state"].(map[string]any)
		log.Printf("move %d applied, status=%v", i, state["status"])
		last = state
	}

	log.Printf("final state: winners=%v positions=%v", last["winners"], last["winning_positions"])
	log.Println("smoke test finished")
}
