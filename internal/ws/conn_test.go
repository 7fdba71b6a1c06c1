package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// echoServer upgrades one connection and echoes every inbound frame back,
// JSON frames via SendJSON and binary frames via SendBinary.
func echoServer(t *testing.T) (*httptest.Server, chan *Conn) {
	t.Helper()

	conns := make(chan *Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrade(w, r)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		conn.Start()
		conns <- conn

		go func() {
			for frame := range conn.Frames() {
				switch frame.Type {
				case websocket.TextMessage:
					conn.SendJSON(json.RawMessage(frame.Data))
				case websocket.BinaryMessage:
					conn.SendBinary(frame.Data)
				}
			}
		}()
	}))
	t.Cleanup(srv.Close)
	return srv, conns
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestConnEchoesTextAndBinary(t *testing.T) {
	srv, _ := echoServer(t)
	client := dial(t, srv)

	want := `{"type":"user_message","text":"hello"}`
	if err := client.WriteMessage(websocket.TextMessage, []byte(want)); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if msgType != websocket.TextMessage || string(data) != want {
		t.Errorf("echo = %d %q, want text %q", msgType, data, want)
	}

	audio := []byte{0, 1, 2, 3, 4}
	if err := client.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		t.Fatalf("binary write failed: %v", err)
	}
	msgType, data, err = client.ReadMessage()
	if err != nil {
		t.Fatalf("binary read failed: %v", err)
	}
	if msgType != websocket.BinaryMessage || len(data) != len(audio) {
		t.Errorf("binary echo = %d %v", msgType, data)
	}
}

func TestConnFramesCloseOnClientDisconnect(t *testing.T) {
	srv, conns := echoServer(t)
	client := dial(t, srv)

	var conn *Conn
	select {
	case conn = <-conns:
	case <-time.After(2 * time.Second):
		t.Fatal("server never accepted the connection")
	}

	client.Close()

	select {
	case _, open := <-conn.Frames():
		if open {
			t.Error("expected frames channel to close, got a frame")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("frames channel did not close after disconnect")
	}
}

func TestSendAfterCloseFails(t *testing.T) {
	srv, conns := echoServer(t)
	dial(t, srv)

	conn := <-conns
	conn.Close()

	if err := conn.SendJSON(map[string]string{"type": "control"}); err != websocket.ErrCloseSent {
		t.Errorf("SendJSON after close = %v, want ErrCloseSent", err)
	}
	if err := conn.SendBinary([]byte{1}); err != websocket.ErrCloseSent {
		t.Errorf("SendBinary after close = %v, want ErrCloseSent", err)
	}
}
