// Package session implements the per-connection coordinator that multiplexes
// a client WebSocket connection, a remote realtime conversation, and the
// entity store.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sculpture-guide/backend/internal/model"
	"github.com/sculpture-guide/backend/internal/realtime"
	"github.com/sculpture-guide/backend/internal/repository"
	"github.com/sculpture-guide/backend/internal/store"
	"github.com/sculpture-guide/backend/internal/ws"
)

// State is the coordinator lifecycle state.
type State int32

const (
	StateInitializing State = iota
	StateActive
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Transport is the client-facing side of the session: inbound frames from
// the browser, outbound JSON and binary frames to it.
type Transport interface {
	Frames() <-chan ws.Frame
	SendJSON(v any) error
	SendBinary(data []byte) error
	Close() error
}

// Config carries the per-session remote configuration.
type Config struct {
	Model              string
	Voice              string
	Instructions       string
	Greeting           string
	TranscriptionModel string
}

// Coordinator owns one client connection and one remote conversation. It is
// created per connection and discarded at connection close; no state is
// shared across sessions.
type Coordinator struct {
	id     string
	client Transport
	convo  realtime.Conversation
	store  *store.Store
	repo   *repository.SessionRepository // nil disables session records
	cfg    Config

	state      atomic.Int32
	framesIn   atomic.Int64
	framesOut  atomic.Int64
	audioBytes atomic.Int64

	waiters  sync.WaitGroup
	finished chan struct{}
}

// New creates a coordinator for one connection. store and repo may be nil.
func New(id string, client Transport, convo realtime.Conversation, st *store.Store, repo *repository.SessionRepository, cfg Config) *Coordinator {
	c := &Coordinator{
		id:       id,
		client:   client,
		convo:    convo,
		store:    st,
		repo:     repo,
		cfg:      cfg,
		finished: make(chan struct{}),
	}
	c.state.Store(int32(StateInitializing))
	return c
}

// ID returns the session id.
func (c *Coordinator) ID() string {
	return c.id
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Done returns a channel that closes once Run has fully finished.
func (c *Coordinator) Done() <-chan struct{} {
	return c.finished
}

func (c *Coordinator) setState(s State) {
	c.state.Store(int32(s))
}

// Run drives the session until the client disconnects, the remote session
// fails, or ctx is cancelled. It always leaves the coordinator Closed.
func (c *Coordinator) Run(ctx context.Context) error {
	defer close(c.finished)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := c.initialize(ctx); err != nil {
		c.setState(StateClosed)
		c.closeRemote()
		c.client.Close()
		return err
	}
	c.setState(StateActive)

	// Two concurrent input sources: inbound client frames and the remote
	// event stream. The first one to finish ends the session.
	done := make(chan error, 2)
	go func() { done <- c.clientLoop(ctx) }()
	go func() { done <- c.eventLoop(ctx) }()

	err := <-done
	c.setState(StateClosing)
	cancel()
	c.closeRemote()
	c.client.Close()
	<-done
	c.waiters.Wait()
	c.setState(StateClosed)
	c.finishRecord(err)

	if err != nil {
		log.Printf("session %s: closed: %v", c.id, err)
	} else {
		log.Printf("session %s: closed", c.id)
	}
	return err
}

// initialize configures the remote session, kicks off the store load, and
// greets the client.
func (c *Coordinator) initialize(ctx context.Context) error {
	err := c.convo.Configure(ctx, realtime.SessionConfig{
		Instructions:       c.cfg.Instructions,
		Voice:              c.cfg.Voice,
		InputAudioFormat:   "pcm16",
		OutputAudioFormat:  "pcm16",
		TranscriptionModel: c.cfg.TranscriptionModel,
		TurnDetection:      "server_vad",
	})
	if err != nil {
		return fmt.Errorf("failed to configure remote session: %w", err)
	}

	// Dataset load must never block or fail the session; an absent store
	// just means no enrichment.
	if c.store != nil {
		go func() {
			if err := c.store.EnsureLoaded(); err != nil {
				log.Printf("session %s: dataset load failed: %v", c.id, err)
			}
		}()
	}

	c.createRecord()

	c.sendFrame(model.ServerFrame{
		Type:     model.FrameTypeControl,
		Action:   model.ActionConnected,
		Greeting: c.cfg.Greeting,
	})

	return nil
}

// clientLoop consumes inbound frames until the transport closes.
func (c *Coordinator) clientLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-c.client.Frames():
			if !ok {
				return nil
			}
			c.handleClientFrame(ctx, frame)
		}
	}
}

// handleClientFrame routes one inbound frame. Errors here are per-message:
// logged, never fatal to the connection.
func (c *Coordinator) handleClientFrame(ctx context.Context, frame ws.Frame) {
	c.framesIn.Add(1)

	switch frame.Type {
	case websocket.BinaryMessage:
		c.audioBytes.Add(int64(len(frame.Data)))
		if err := c.convo.SendAudio(ctx, frame.Data); err != nil {
			log.Printf("session %s: failed to forward audio: %v", c.id, err)
		}

	case websocket.TextMessage:
		var msg model.ClientFrame
		if err := json.Unmarshal(frame.Data, &msg); err != nil {
			log.Printf("session %s: malformed client frame: %v", c.id, err)
			return
		}
		if msg.Type != model.FrameTypeUserMessage {
			return
		}
		c.handleUserMessage(ctx, msg.Text)
	}
}

// handleUserMessage enriches and submits one user turn. Enrichment failures
// degrade to "no context"; the user's message is always submitted.
func (c *Coordinator) handleUserMessage(ctx context.Context, text string) {
	if text == "" {
		return
	}

	if block := c.enrich(text); block != "" {
		if err := c.convo.SendItem(ctx, realtime.RoleSystem, block); err != nil {
			log.Printf("session %s: failed to submit context item: %v", c.id, err)
		}
	}

	if err := c.convo.SendItem(ctx, realtime.RoleUser, text); err != nil {
		log.Printf("session %s: failed to submit user message: %v", c.id, err)
		return
	}
	if err := c.convo.GenerateResponse(ctx); err != nil {
		log.Printf("session %s: failed to request generation: %v", c.id, err)
	}
}

// eventLoop consumes the remote event stream until it closes.
func (c *Coordinator) eventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-c.convo.Events():
			if !ok {
				if err := c.convo.Err(); err != nil {
					return fmt.Errorf("remote session failed: %w", err)
				}
				return nil
			}
			switch e := ev.(type) {
			case realtime.ResponseEvent:
				c.streamResponse(ctx, e)
			case realtime.InputAudioEvent:
				c.handleInputAudio(ctx, e)
			}
		}
	}
}

// streamResponse forwards one response's content items in remote-reported
// order, finishing each item before starting the next.
func (c *Coordinator) streamResponse(ctx context.Context, ev realtime.ResponseEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-ev.Items:
			if !ok {
				return
			}
			switch item.Kind {
			case realtime.ContentText:
				c.streamText(item)
			case realtime.ContentAudio:
				c.streamAudio(item)
			}
		}
	}
}

// streamText forwards one text sub-stream as delta frames in arrival order,
// then marks the item done.
func (c *Coordinator) streamText(item *realtime.ContentItem) {
	for chunk := range item.Text {
		c.sendFrame(model.ServerFrame{
			Type:  model.FrameTypeTextDelta,
			ID:    item.ID,
			Delta: chunk,
		})
	}
	c.sendFrame(model.ServerFrame{
		Type:   model.FrameTypeControl,
		Action: model.ActionTextDone,
		ID:     item.ID,
	})
}

// streamAudio forwards an audio item's chunk stream and its transcript
// stream concurrently. Each sub-stream keeps its own order; both complete
// before the next item is started.
func (c *Coordinator) streamAudio(item *realtime.ContentItem) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for chunk := range item.Audio {
			c.framesOut.Add(1)
			if err := c.client.SendBinary(chunk); err != nil {
				log.Printf("session %s: failed to send audio chunk: %v", c.id, err)
			}
		}
	}()

	go func() {
		defer wg.Done()
		c.streamText(item)
	}()

	wg.Wait()
}

// handleInputAudio reacts to server-detected speech: an immediate control
// frame, then the final transcription once it completes. The wait runs off
// the event loop: transcription completion may arrive after later response
// events, and blocking here would stall the whole stream.
func (c *Coordinator) handleInputAudio(ctx context.Context, ev realtime.InputAudioEvent) {
	c.sendFrame(model.ServerFrame{
		Type:   model.FrameTypeControl,
		Action: model.ActionSpeechStarted,
	})

	c.waiters.Add(1)
	go func() {
		defer c.waiters.Done()
		select {
		case <-ctx.Done():
		case text, ok := <-ev.Transcript:
			if !ok || text == "" {
				return
			}
			c.sendFrame(model.ServerFrame{
				Type: model.FrameTypeTranscription,
				ID:   ev.ItemID,
				Text: text,
			})
		}
	}()
}

// sendFrame queues one JSON frame to the client; send errors are logged and
// surface as a transport close on the read side.
func (c *Coordinator) sendFrame(frame model.ServerFrame) {
	c.framesOut.Add(1)
	if err := c.client.SendJSON(frame); err != nil {
		log.Printf("session %s: failed to send %s frame: %v", c.id, frame.Type, err)
	}
}

// closeRemote tears down the remote session, best effort.
func (c *Coordinator) closeRemote() {
	if err := c.convo.Close(); err != nil {
		log.Printf("session %s: failed to close remote session: %v", c.id, err)
	}
}

// createRecord persists the session start, best effort.
func (c *Coordinator) createRecord() {
	if c.repo == nil {
		return
	}
	now := time.Now()
	rec := &model.SessionRecord{
		ID:        c.id,
		Model:     c.cfg.Model,
		Voice:     c.cfg.Voice,
		Status:    model.SessionStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.repo.Create(context.Background(), rec); err != nil {
		log.Printf("session %s: failed to record session start: %v", c.id, err)
	}
}

// finishRecord persists the session end, best effort.
func (c *Coordinator) finishRecord(runErr error) {
	if c.repo == nil {
		return
	}
	status := model.SessionStatusClosed
	if runErr != nil {
		status = model.SessionStatusFailed
	}
	err := c.repo.Finish(context.Background(), c.id, status,
		c.framesIn.Load(), c.framesOut.Load(), c.audioBytes.Load())
	if err != nil {
		log.Printf("session %s: failed to record session end: %v", c.id, err)
	}
}
