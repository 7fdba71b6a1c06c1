package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Binary frames carry raw audio
	// chunks, so the limit is well above typical JSON frame sizes.
	maxMessageSize = 1 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper origin checking in production
		return true
	},
}

// Upgrade upgrades an HTTP request to a WebSocket connection and wraps it.
func Upgrade(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return NewConn(conn), nil
}

// SetCheckOrigin sets a custom origin checker for the WebSocket upgrader.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// Frame is one inbound client frame: a JSON text frame or a raw binary
// audio chunk.
type Frame struct {
	Type int // websocket.TextMessage or websocket.BinaryMessage
	Data []byte
}

type outbound struct {
	msgType int
	data    []byte
}

// Conn wraps one client WebSocket connection with a buffered outbound queue
// and read/write pumps. Outbound frames are written one per WebSocket frame
// in queue order; inbound frames are delivered on Frames, which closes when
// the connection dies.
type Conn struct {
	conn   *websocket.Conn
	send   chan outbound
	frames chan Frame

	mu     sync.Mutex
	closed bool
}

// NewConn wraps an established WebSocket connection. Call Start to begin
// the pumps.
func NewConn(conn *websocket.Conn) *Conn {
	return &Conn{
		conn:   conn,
		send:   make(chan outbound, 256),
		frames: make(chan Frame, 64),
	}
}

// Start launches the read and write pumps.
func (c *Conn) Start() {
	go c.writePump()
	go c.readPump()
}

// Frames returns the inbound frame channel. It closes when the peer
// disconnects or the connection fails.
func (c *Conn) Frames() <-chan Frame {
	return c.frames
}

// SendJSON queues one JSON text frame.
func (c *Conn) SendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.enqueue(outbound{msgType: websocket.TextMessage, data: data})
}

// SendBinary queues one raw binary frame.
func (c *Conn) SendBinary(data []byte) error {
	return c.enqueue(outbound{msgType: websocket.BinaryMessage, data: data})
}

func (c *Conn) enqueue(msg outbound) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return websocket.ErrCloseSent
	}

	select {
	case c.send <- msg:
		return nil
	default:
		// Peer is not draining; drop the connection rather than block.
		c.closeLocked()
		return websocket.ErrCloseSent
	}
}

// Close shuts the outbound queue down; the write pump then closes the
// underlying connection.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	return nil
}

func (c *Conn) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump pumps frames from the WebSocket connection to the frames channel.
func (c *Conn) readPump() {
	defer func() {
		close(c.frames)
		c.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("ws: read error: %v", err)
			}
			return
		}
		c.frames <- Frame{Type: msgType, Data: data}
	}
}

// writePump pumps queued frames to the WebSocket connection and keeps the
// connection alive with pings.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(msg.msgType, msg.data); err != nil {
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
