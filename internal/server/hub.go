package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/akmonengine/billiard"
	"github.com/akmonengine/billiard/actor"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // renderers are served from anywhere
	},
}

// BallFrame is the pose of one ball in a frame message
type BallFrame struct {
	Name     string          `json:"name"`
	Position actor.Vec3State `json:"p"`
	Rotation [4]float64      `json:"q"` // w, x, y, z
}

type FrameMessage struct {
	Type  string      `json:"type"`
	Balls []BallFrame `json:"balls"`
}

type CollisionMessage struct {
	Type         string   `json:"type"`
	Participants []string `json:"participants"`
	Iterations   int      `json:"iterations"`
	Impulse      float64  `json:"impulse"`
	Forced       bool     `json:"forced"`
}

// Client is a connected renderer
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of connected renderers and fans messages out to them
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run registers and unregisters clients until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("[WS] renderer connected from %s", client.conn.RemoteAddr())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("[WS] renderer disconnected from %s", client.conn.RemoteAddr())
			}
			h.mu.Unlock()

		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends message to every renderer, dropping it for those lagging behind
func (h *Hub) Broadcast(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] send buffer full for %s, dropping message", client.conn.RemoteAddr())
		}
	}
}

// Sync broadcasts a frame with the pose of every ball
func (h *Hub) Sync(transforms []actor.Transform) {
	if h.ClientCount() == 0 {
		return
	}
	h.Broadcast(NewFrameMessage(transforms))
}

// OnCollision broadcasts a resolved collision
func (h *Hub) OnCollision(event billiard.Event) {
	c, ok := event.(billiard.CollisionEvent)
	if !ok {
		return
	}
	h.Broadcast(CollisionMessage{
		Type:         "collision",
		Participants: c.Participants,
		Iterations:   c.Iterations,
		Impulse:      c.Impulse,
		Forced:       c.Forced,
	})
}

func NewFrameMessage(transforms []actor.Transform) FrameMessage {
	frame := FrameMessage{Type: "frame", Balls: make([]BallFrame, len(transforms))}
	for i, transform := range transforms {
		q := transform.Rotation
		frame.Balls[i] = BallFrame{
			Name:     actor.BallName(i),
			Position: actor.NewVec3State(transform.Position),
			Rotation: [4]float64{q.W, q.V.X(), q.V.Y(), q.V.Z()},
		}
	}
	return frame
}

// ServeWS upgrades the request and streams frames to the renderer
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket write error: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("WebSocket ping error: %v", err)
				return
			}
		}
	}
}

// readPump only watches the connection; renderers do not send commands
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error (unexpected): %v", err)
			}
			break
		}
	}
}
