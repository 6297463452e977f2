// Package broadcast delivers session events to dashboard clients over
// websockets. Each connected dashboard owns exactly one analytics session.
package broadcast

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/streampulse/streampulse-bot/internal/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait).
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound buffer per client. When it fills, events are dropped rather
	// than blocking the session that emitted them.
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Message is the wire envelope for every outbound event.
type Message struct {
	Event     string    `json:"event"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Client is one connected dashboard and its session.
type Client struct {
	conn     *websocket.Conn
	registry *session.Registry
	handler  *session.Handler
	send     chan Message
}

// Ensure Client satisfies the session's outbound interface.
var _ session.Broadcaster = (*Client)(nil)

// Emit queues an event for delivery. It never blocks: when the client cannot
// keep up, the event is dropped and the dashboard catches up on the next
// snapshot.
func (c *Client) Emit(event string, payload any) {
	select {
	case c.send <- Message{Event: event, Data: payload, Timestamp: time.Now()}:
	default:
		logrus.Debugf("Dropping %s event for slow client (session %s)", event, c.handler.ID())
	}
}

// ServeWS upgrades the connection, creates a session for it, and runs the
// read/write pumps until the dashboard disconnects.
func ServeWS(registry *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logrus.Errorf("Websocket upgrade failed: %v", err)
			return
		}

		client := &Client{
			conn:     conn,
			registry: registry,
			send:     make(chan Message, sendBuffer),
		}
		client.handler = registry.Create(client)

		client.Emit("sessionCreated", map[string]string{"session_id": client.handler.ID()})

		go client.writePump()
		go client.readPump()
	}
}

// readPump consumes dashboard commands until the connection dies, then tears
// the session down.
func (c *Client) readPump() {
	defer func() {
		c.registry.Destroy(c.handler.ID())
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.Errorf("Websocket read error: %v", err)
			}
			return
		}
		c.handleCommand(raw)
	}
}

// writePump drains the send channel to the connection and keeps it alive
// with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleCommand processes one inbound dashboard command.
func (c *Client) handleCommand(raw []byte) {
	var cmd struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &cmd); err != nil {
		logrus.Errorf("Failed to parse dashboard command: %v", err)
		return
	}

	switch cmd.Type {
	case "ping":
		c.Emit("pong", map[string]string{"status": "ok"})

	case "changeUsername":
		// Watching a different broadcaster starts a fresh session on the
		// same connection.
		c.handler.Reset()
		c.Emit("sessionReset", map[string]string{"session_id": c.handler.ID()})

	case "disconnectStream":
		c.registry.Destroy(c.handler.ID())
		c.conn.Close()

	case "answerQuestion":
		var payload struct {
			QuestionID string `json:"question_id"`
		}
		if err := json.Unmarshal(cmd.Data, &payload); err != nil {
			logrus.Errorf("Failed to parse answerQuestion command: %v", err)
			return
		}
		if q := c.handler.MarkQuestionAnswered(payload.QuestionID); q != nil {
			c.Emit("questionAnswered", q)
		}

	default:
		logrus.Debugf("Unknown dashboard command: %s", cmd.Type)
	}
}
