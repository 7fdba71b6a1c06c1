package realtime

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sculpture-guide/backend/internal/model"
)

const (
	// Time allowed to write a message to the remote session.
	writeWait = 10 * time.Second

	// Timeout for the initial WebSocket dial.
	dialTimeout = 15 * time.Second
)

// Config holds the connection settings for the remote realtime endpoint.
type Config struct {
	// URL is the WebSocket endpoint, e.g.
	// wss://api.openai.com/v1/realtime. The model is appended as a query
	// parameter.
	URL    string
	APIKey string
	Model  string
}

// Client is a Conversation backed by a WebSocket connection to an
// OpenAI-Realtime-style endpoint.
type Client struct {
	conn  *websocket.Conn
	demux *demux

	writeMu sync.Mutex

	mu      sync.Mutex
	closed  bool
	readErr error
}

// Dial opens a realtime session. The returned client's event stream starts
// flowing immediately.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("realtime endpoint URL is required")
	}

	header := http.Header{}
	if cfg.APIKey != "" {
		header.Set("Authorization", "Bearer "+cfg.APIKey)
	}
	header.Set("OpenAI-Beta", "realtime=v1")

	url := cfg.URL
	if cfg.Model != "" {
		url += "?model=" + cfg.Model
	}

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to dial realtime endpoint (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to dial realtime endpoint: %w", err)
	}

	c := &Client{
		conn:  conn,
		demux: newDemux("realtime"),
	}
	go c.readLoop()

	return c, nil
}

// readLoop pumps wire events from the socket into the demux until the
// connection dies.
func (c *Client) readLoop() {
	defer func() {
		c.demux.shutdown()
		c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if !c.closed {
				c.readErr = err
			}
			c.mu.Unlock()
			return
		}

		ev, err := decode(raw)
		if err != nil {
			log.Printf("realtime: failed to decode event: %v", err)
			continue
		}
		c.demux.handle(ev)
	}
}

// send marshals and writes one client event under the write lock.
func (c *Client) send(ctx context.Context, v any) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return model.ErrConversationClosed
	}

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteJSON(v); err != nil {
		return fmt.Errorf("failed to write to realtime session: %w", err)
	}
	return nil
}

type sessionPayload struct {
	Modalities              []string            `json:"modalities,omitempty"`
	Instructions            string              `json:"instructions,omitempty"`
	Voice                   string              `json:"voice,omitempty"`
	InputAudioFormat        string              `json:"input_audio_format,omitempty"`
	OutputAudioFormat       string              `json:"output_audio_format,omitempty"`
	InputAudioTranscription *transcriptionModel `json:"input_audio_transcription,omitempty"`
	TurnDetection           *turnDetection      `json:"turn_detection,omitempty"`
}

type transcriptionModel struct {
	Model string `json:"model"`
}

type turnDetection struct {
	Type string `json:"type"`
}

// Configure sends a session.update with the given settings.
func (c *Client) Configure(ctx context.Context, cfg SessionConfig) error {
	payload := sessionPayload{
		Modalities:        []string{"text", "audio"},
		Instructions:      cfg.Instructions,
		Voice:             cfg.Voice,
		InputAudioFormat:  cfg.InputAudioFormat,
		OutputAudioFormat: cfg.OutputAudioFormat,
	}
	if cfg.TranscriptionModel != "" {
		payload.InputAudioTranscription = &transcriptionModel{Model: cfg.TranscriptionModel}
	}
	if cfg.TurnDetection != "" {
		payload.TurnDetection = &turnDetection{Type: cfg.TurnDetection}
	}

	return c.send(ctx, struct {
		Type    string         `json:"type"`
		Session sessionPayload `json:"session"`
	}{Type: "session.update", Session: payload})
}

// SendAudio appends one chunk of raw input audio to the input buffer.
func (c *Client) SendAudio(ctx context.Context, chunk []byte) error {
	return c.send(ctx, struct {
		Type  string `json:"type"`
		Audio string `json:"audio"`
	}{Type: "input_audio_buffer.append", Audio: base64.StdEncoding.EncodeToString(chunk)})
}

type itemContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type conversationItem struct {
	Type    string        `json:"type"`
	Role    string        `json:"role"`
	Content []itemContent `json:"content"`
}

// SendItem submits one text conversation item.
func (c *Client) SendItem(ctx context.Context, role, text string) error {
	return c.send(ctx, struct {
		Type string           `json:"type"`
		Item conversationItem `json:"item"`
	}{
		Type: "conversation.item.create",
		Item: conversationItem{
			Type:    "message",
			Role:    role,
			Content: []itemContent{{Type: "input_text", Text: text}},
		},
	})
}

// GenerateResponse requests a response from the conversation so far.
func (c *Client) GenerateResponse(ctx context.Context) error {
	return c.send(ctx, struct {
		Type string `json:"type"`
	}{Type: "response.create"})
}

// Events returns the demuxed event stream.
func (c *Client) Events() <-chan Event {
	return c.demux.events
}

// Err returns the error that terminated the event stream, if any. A nil
// result after Events closes means the client was closed deliberately.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readErr
}

// Close shuts the connection down. The read loop then drains and closes the
// event stream.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.writeMu.Lock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()

	return c.conn.Close()
}
