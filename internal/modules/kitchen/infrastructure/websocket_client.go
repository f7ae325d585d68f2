package infrastructure

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	kds "puestitoKds/internal/modules/kds/domain"
)

const (
	writeWait      = 5 * time.Second
	maxMessageSize = 1 << 16
)

// Client is one station terminal connection.
type Client struct {
	hub          *Hub
	conn         *websocket.Conn
	send         chan []byte
	sessionID    string
	destino      kds.Destination
	pingInterval time.Duration
	closeOnce    sync.Once
	closed       chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, destino kds.Destination, buf int, pingInterval time.Duration) *Client {
	if buf <= 0 {
		buf = 16
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, buf),
		sessionID:    uuid.NewString(),
		destino:      destino,
		pingInterval: pingInterval,
		closed:       make(chan struct{}),
	}
}

func (c *Client) SessionID() string { return c.sessionID }

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

// enqueue reports false when the send buffer is full. Sends after close are
// dropped silently.
func (c *Client) enqueue(data []byte) bool {
	select {
	case <-c.closed:
		return true
	default:
	}
	select {
	case c.send <- data:
		return true
	case <-c.closed:
		return true
	default:
		return false
	}
}

// SendEnvelope queues a frame for this client only.
func (c *Client) SendEnvelope(env kds.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		slog.Error("websocket marshal error", slog.Any("error", err))
		return
	}
	if !c.enqueue(data) {
		slog.Warn("ws send buffer full", slog.String("sessionId", c.sessionID), slog.String("destino", c.destino.String()))
		go c.hub.detachClient(c)
	}
}

func (c *Client) WritePump() {
	ping := time.NewTicker(c.pingInterval)
	defer ping.Stop()
	defer c.hub.detachClient(c)

	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Warn("websocket write error", slog.String("sessionId", c.sessionID), slog.Any("error", err))
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				slog.Warn("websocket ping error", slog.String("sessionId", c.sessionID), slog.Any("error", err))
				return
			}
		}
	}
}

// ReadPump answers application pings and detaches the client when the peer
// goes away. Stations send nothing else.
func (c *Client) ReadPump() {
	readWait := 2 * c.pingInterval
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(readWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readWait))
	})
	defer c.hub.detachClient(c)

	for {
		var env kds.Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("websocket read error", slog.String("sessionId", c.sessionID), slog.Any("error", err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(readWait))
		if env.Event == kds.EventPing {
			pong, err := kds.NewEnvelope(kds.EventPong, nil, time.Now())
			if err == nil {
				c.SendEnvelope(pong)
			}
		}
	}
}
