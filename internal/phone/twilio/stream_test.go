package twilio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"voicebank-server/internal/observability"

	"github.com/gorilla/websocket"
)

// dialStream upgrades a test connection and hands the server side to a
// StreamHandler, returning the client side for driving frames.
func dialStream(t *testing.T) (*StreamHandler, *websocket.Conn, chan []byte) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverConns := make(chan *websocket.Conn, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		serverConns <- conn
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	var serverConn *websocket.Conn
	select {
	case serverConn = <-serverConns:
	case <-time.After(2 * time.Second):
		t.Fatal("server connection never arrived")
	}

	handler := NewStreamHandler(serverConn, observability.NewLogger())
	audioIn := make(chan []byte, 16)
	audioOut := make(chan []byte, 16)
	handler.Start(context.Background(), audioIn, audioOut)
	t.Cleanup(handler.Stop)

	return handler, client, audioIn
}

func TestDoneClosesWhenPeerDisconnects(t *testing.T) {
	handler, client, audioIn := dialStream(t)

	client.Close()

	select {
	case <-handler.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done not closed after peer disconnect")
	}

	// The caller audio channel closes with the receive pump.
	select {
	case _, ok := <-audioIn:
		if ok {
			t.Fatal("expected audioIn to be closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("audioIn not closed after peer disconnect")
	}
}

func TestDoneClosesOnStopEvent(t *testing.T) {
	handler, client, _ := dialStream(t)

	stop := `{"event":"stop","stop":{"streamSid":"MZ123"}}`
	if err := client.WriteMessage(websocket.TextMessage, []byte(stop)); err != nil {
		t.Fatalf("failed to send stop event: %v", err)
	}

	select {
	case <-handler.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done not closed after stop event")
	}
}

func TestMediaFramesReachAudioChannel(t *testing.T) {
	_, client, audioIn := dialStream(t)

	start := `{"event":"start","start":{"streamSid":"MZ123","callSid":"CA456"}}`
	if err := client.WriteMessage(websocket.TextMessage, []byte(start)); err != nil {
		t.Fatalf("failed to send start event: %v", err)
	}
	media := `{"event":"media","media":{"payload":"//8A/w=="}}`
	if err := client.WriteMessage(websocket.TextMessage, []byte(media)); err != nil {
		t.Fatalf("failed to send media event: %v", err)
	}

	select {
	case chunk := <-audioIn:
		if len(chunk) != 4 {
			t.Errorf("expected 4 decoded bytes, got %d", len(chunk))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("media payload never reached the audio channel")
	}
}
