// Package realtime provides the remote conversation capability: a streaming
// conversational AI session that accepts configuration, audio and text items,
// and emits an asynchronous event stream of generated content.
//
// The Conversation interface is what the session coordinator consumes; Client
// is the concrete WebSocket implementation speaking an OpenAI-Realtime-style
// wire protocol.
package realtime

import "context"

// SessionConfig configures the remote session at open time.
type SessionConfig struct {
	Instructions      string
	Voice             string
	InputAudioFormat  string
	OutputAudioFormat string
	// TranscriptionModel enables input-audio transcription when non-empty.
	TranscriptionModel string
	// TurnDetection selects server-side turn detection (e.g. "server_vad");
	// empty disables it.
	TurnDetection string
}

// Roles for conversation items.
const (
	RoleUser   = "user"
	RoleSystem = "system"
)

// Conversation is the remote streaming session consumed by the coordinator.
type Conversation interface {
	// Configure applies session settings. Called once, before any items.
	Configure(ctx context.Context, cfg SessionConfig) error

	// SendAudio appends one chunk of raw input audio.
	SendAudio(ctx context.Context, chunk []byte) error

	// SendItem submits one text conversation item with the given role.
	SendItem(ctx context.Context, role, text string) error

	// GenerateResponse asks the remote session to produce a response from
	// the conversation so far.
	GenerateResponse(ctx context.Context) error

	// Events returns the server-pushed event stream. The channel closes when
	// the session ends; Err reports why.
	Events() <-chan Event

	// Err returns the terminal error after Events closes, if any.
	Err() error

	// Close tears the session down. Safe to call more than once.
	Close() error
}

// Event is one unit of the remote event stream: either a response or a
// server-detected input audio item.
type Event interface {
	event()
}

// ResponseEvent carries one response's content items in remote-reported
// order. The channel closes when the response is complete.
type ResponseEvent struct {
	Items <-chan *ContentItem
}

func (ResponseEvent) event() {}

// InputAudioEvent signals server-detected speech. Transcript yields the
// final transcription once and then closes; it closes without a value when
// no transcription becomes available.
type InputAudioEvent struct {
	ItemID     string
	Transcript <-chan string
}

func (InputAudioEvent) event() {}

// ContentKind distinguishes text and audio content items.
type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentAudio ContentKind = "audio"
)

// ContentItem is one streamed unit of response output. Text carries text
// chunks for text items and transcript chunks for audio items; Audio carries
// raw audio chunks and is nil for text items. Each channel is closed when
// its sub-stream completes, and each preserves arrival order.
type ContentItem struct {
	ID    string
	Kind  ContentKind
	Text  <-chan string
	Audio <-chan []byte
}
