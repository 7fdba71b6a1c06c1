package model

import "time"

// SessionStatus represents the status of a voice session.
type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	SessionStatusClosed SessionStatus = "closed"
	SessionStatusFailed SessionStatus = "failed"
)

// SessionRecord holds per-session metadata persisted for the session listing
// API. Conversation content is never stored.
type SessionRecord struct {
	ID         string        `json:"id"`
	Model      string        `json:"model"`
	Voice      string        `json:"voice,omitempty"`
	Status     SessionStatus `json:"status"`
	FramesIn   int64         `json:"framesIn"`
	FramesOut  int64         `json:"framesOut"`
	AudioBytes int64         `json:"audioBytes"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// Duration returns how long the session has existed.
func (r *SessionRecord) Duration() time.Duration {
	return r.UpdatedAt.Sub(r.CreatedAt)
}
