package model

import "errors"

var (
	// ErrSessionNotFound is returned when a session record is not found.
	ErrSessionNotFound = errors.New("session not found")

	// ErrConversationClosed is returned when an operation is attempted on a
	// closed remote conversation.
	ErrConversationClosed = errors.New("conversation closed")
)
