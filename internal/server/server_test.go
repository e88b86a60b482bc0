package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/akmonengine/billiard"
	"github.com/akmonengine/billiard/actor"
	"github.com/akmonengine/billiard/config"
	"github.com/akmonengine/billiard/table"
	"github.com/gin-gonic/gin"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
)

var standardTable = table.Standard()

func newTestServer() (*gin.Engine, *Session, *Hub) {
	gin.SetMode(gin.TestMode)

	hub := NewHub()
	world := billiard.NewWorld(standardTable, 2, billiard.WithRenderer(hub))
	world.Events.Subscribe(billiard.COLLISION_RESOLVED, hub.OnCollision)
	s := NewSession(world, 60)

	router := gin.New()
	SetupRoutes(router, s, hub, &config.Config{Environment: "test"})

	return router, s, hub
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// =============================================================================
// HTTP API Tests
// =============================================================================

func TestHealthCheck(t *testing.T) {
	router, _, _ := newTestServer()

	w := do(router, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}
}

func TestGetDiagram(t *testing.T) {
	router, _, _ := newTestServer()

	w := do(router, http.MethodGet, "/diagram", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /diagram = %d", w.Code)
	}

	var diagram map[string]actor.BallState
	if err := json.Unmarshal(w.Body.Bytes(), &diagram); err != nil {
		t.Fatal(err)
	}
	if len(diagram) != 2 {
		t.Fatalf("diagram has %d balls, want 2", len(diagram))
	}
	if p := diagram["ball_1"].Position.Vec3(); p != standardTable.DefaultBallPosition(1) {
		t.Errorf("ball_1 at %v, want its parking spot", p)
	}
	if strings.Contains(w.Body.String(), `"v"`) {
		t.Errorf("balls at rest should not carry a velocity: %s", w.Body.String())
	}
}

func TestPutDiagram(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid", `{"ball_0": {"p": {"x": 0.1, "y": 0.2, "z": 0.028575}, "v": {"x": 1, "y": 0, "z": 0}}}`, http.StatusOK},
		{"unknown ball", `{"ball_7": {"p": {"x": 0, "y": 0, "z": 0.028575}}}`, http.StatusNotFound},
		{"malformed", `{"ball_0": `, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, s, _ := newTestServer()

			w := do(router, http.MethodPut, "/diagram", tt.body)
			if w.Code != tt.status {
				t.Fatalf("PUT /diagram = %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			state := s.Diagram()["ball_0"]
			if state.Position.X != 0.1 || state.Velocity == nil || state.Velocity.X != 1 {
				t.Errorf("ball_0 = %+v", state)
			}
		})
	}
}

func TestPutSpeed(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		speed  float64
	}{
		{"raw speed", `{"speed": 0.25}`, http.StatusOK, 0.25},
		{"slider minimum pauses", `{"slider": -8}`, http.StatusOK, 0},
		{"slider middle", `{"slider": 0}`, http.StatusOK, 1},
		{"negative", `{"speed": -1}`, http.StatusBadRequest, 1},
		{"missing", `{}`, http.StatusBadRequest, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, s, _ := newTestServer()

			w := do(router, http.MethodPut, "/speed", tt.body)
			if w.Code != tt.status {
				t.Fatalf("PUT /speed = %d, want %d", w.Code, tt.status)
			}
			if s.Speed() != tt.speed {
				t.Errorf("Speed() = %v, want %v", s.Speed(), tt.speed)
			}
		})
	}
}

func TestPostShotAndEnergy(t *testing.T) {
	router, s, _ := newTestServer()

	if w := do(router, http.MethodPost, "/shot", `{"ball": "ball_9", "v": {"x": 1, "y": 0, "z": 0}}`); w.Code != http.StatusNotFound {
		t.Errorf("shot on an unknown ball = %d, want 404", w.Code)
	}
	if w := do(router, http.MethodPost, "/shot", `{"v": {"x": 1, "y": 0, "z": 0}}`); w.Code != http.StatusBadRequest {
		t.Errorf("shot without a ball = %d, want 400", w.Code)
	}

	w := do(router, http.MethodPost, "/shot", `{"ball": "ball_0", "v": {"x": 1, "y": 0, "z": 0}, "w": {"x": 0, "y": 0, "z": 10}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /shot = %d: %s", w.Code, w.Body.String())
	}

	w = do(router, http.MethodGet, "/energy", "")
	var body struct {
		Energy float64 `json:"energy"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Energy <= 0 || body.Energy != s.Energy() {
		t.Errorf("energy = %v, want the energy of the struck ball", body.Energy)
	}

	if w := do(router, http.MethodPost, "/reset", ""); w.Code != http.StatusOK {
		t.Fatalf("POST /reset = %d", w.Code)
	}
	if s.Energy() != 0 {
		t.Errorf("Energy() = %v after reset, want 0", s.Energy())
	}
}

// =============================================================================
// Session Tests
// =============================================================================

func TestSession_Run(t *testing.T) {
	_, s, _ := newTestServer()
	s.tickRate = 200

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	if s.Stats().Ticks == 0 {
		t.Error("Run() did not tick the world")
	}
}

func TestSession_Shot(t *testing.T) {
	_, s, _ := newTestServer()

	if err := s.Shot("ball_0", mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{}); err != nil {
		t.Fatalf("Shot() error = %v", err)
	}
	if s.Diagram()["ball_0"].Velocity == nil {
		t.Error("struck ball should carry a velocity")
	}
}

// =============================================================================
// WebSocket Tests
// =============================================================================

func TestHub_StreamsFramesAndCollisions(t *testing.T) {
	router, s, hub := newTestServer()
	srv := httptest.NewServer(router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.ClientCount() != 1 {
		t.Fatalf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	s.Tick(0.01)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var frame FrameMessage
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatal(err)
	}
	if frame.Type != "frame" || len(frame.Balls) != 2 || frame.Balls[1].Name != "ball_1" {
		t.Errorf("frame = %+v", frame)
	}
	if frame.Balls[0].Rotation != [4]float64{1, 0, 0, 0} {
		t.Errorf("parked ball rotation = %v, want identity", frame.Balls[0].Rotation)
	}

	hub.OnCollision(billiard.CollisionEvent{Participants: []string{"ball_0", "ball_1"}, Iterations: 64, Impulse: 0.2})

	_, data, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var collision CollisionMessage
	if err := json.Unmarshal(data, &collision); err != nil {
		t.Fatal(err)
	}
	if collision.Type != "collision" || collision.Iterations != 64 || len(collision.Participants) != 2 {
		t.Errorf("collision = %+v", collision)
	}
}

func TestHub_UnregisterUnknownClient(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	// Both pumps unregister on exit, so the second one finds nothing to remove
	client := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.unregister <- client
	hub.unregister <- client

	if n := hub.ClientCount(); n != 0 {
		t.Errorf("ClientCount() = %d, want 0", n)
	}
}

func TestNewFrameMessage(t *testing.T) {
	transforms := []actor.Transform{actor.NewTransform(mgl64.Vec3{1, 2, 3})}
	frame := NewFrameMessage(transforms)

	if frame.Balls[0].Name != "ball_0" || frame.Balls[0].Position != (actor.Vec3State{X: 1, Y: 2, Z: 3}) {
		t.Errorf("frame = %+v", frame)
	}
}
