package model

// FrameType discriminates client-bound and client-originated text frames.
type FrameType string

const (
	// Server -> client frame types
	FrameTypeTextDelta     FrameType = "text_delta"
	FrameTypeTranscription FrameType = "transcription"
	FrameTypeControl       FrameType = "control"

	// Client -> server frame types
	FrameTypeUserMessage FrameType = "user_message"
)

// Control frame actions.
const (
	ActionConnected     = "connected"
	ActionSpeechStarted = "speech_started"
	ActionTextDone      = "text_done"
)

// ServerFrame is a client-bound JSON text frame. Binary audio chunks are sent
// as raw WebSocket binary frames with no envelope.
type ServerFrame struct {
	Type     FrameType `json:"type"`
	Action   string    `json:"action,omitempty"`
	ID       string    `json:"id,omitempty"`
	Delta    string    `json:"delta,omitempty"`
	Text     string    `json:"text,omitempty"`
	Greeting string    `json:"greeting,omitempty"`
}

// ClientFrame is a client-originated JSON text frame. Only user_message
// triggers action; other types parse but are ignored.
type ClientFrame struct {
	Type FrameType `json:"type"`
	Text string    `json:"text,omitempty"`
}
