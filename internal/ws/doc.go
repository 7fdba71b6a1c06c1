// Package ws wraps client WebSocket connections for voice sessions.
//
// Conn pairs a gorilla/websocket connection with a buffered outbound queue
// and read/write pumps: JSON text frames carry control and delta messages,
// binary frames carry raw audio chunks in both directions. Ping/pong
// keepalive and write deadlines protect the server from stalled peers.
package ws
