package ws_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/runforge-io/runforge-client/internal/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocketBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		endpoint string
		expected string
	}{
		{"https becomes wss", "https://api.runforge.example", "wss://api.runforge.example"},
		{"http becomes ws", "http://localhost:8080", "ws://localhost:8080"},
		{"ws passes through", "ws://stream.runforge.example", "ws://stream.runforge.example"},
		{"wss passes through", "wss://stream.runforge.example", "wss://stream.runforge.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ws.WebSocketBaseURL(tt.endpoint))
		})
	}
}

var upgrader = websocket.Upgrader{}

// echoServer upgrades each request, sends the given frames, then performs a
// normal close handshake.
func echoServer(t *testing.T, frames []string, onRequest func(*http.Request)) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if onRequest != nil {
			onRequest(request)
		}

		conn, err := upgrader.Upgrade(writer, request, nil)
		if err != nil {
			return
		}

		defer func() {
			_ = conn.Close()
		}()

		for _, frame := range frames {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(frame))
		}

		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			deadline,
		)

		// Wait for the peer's close response so the handshake completes
		_, _, _ = conn.ReadMessage()
	}))
}

func TestDialer_Dial(t *testing.T) {
	t.Parallel()

	var requestedPath string

	server := echoServer(t, []string{"fragment"}, func(r *http.Request) {
		requestedPath = r.URL.Path
	})
	defer server.Close()

	dialer := ws.NewDialer(ws.WebSocketBaseURL(server.URL), nil)

	conn, err := dialer.Dial(context.Background(), "/v1/executions/exec-guid/result")
	require.NoError(t, err)

	defer func() {
		_ = conn.Close()
	}()

	assert.Equal(t, "/v1/executions/exec-guid/result", requestedPath)

	data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "fragment", string(data))
}

func TestDialer_DialSendsHandshakeHeaders(t *testing.T) {
	t.Parallel()

	var authorization string

	server := echoServer(t, nil, func(r *http.Request) {
		authorization = r.Header.Get("Authorization")
	})
	defer server.Close()

	headers := func(ctx context.Context) (http.Header, error) {
		return http.Header{"Authorization": []string{"Bearer test-token"}}, nil
	}
	dialer := ws.NewDialer(ws.WebSocketBaseURL(server.URL), headers)

	conn, err := dialer.Dial(context.Background(), "/v1/executions/exec-guid/logs")
	require.NoError(t, err)

	defer func() {
		_ = conn.Close()
	}()

	assert.Equal(t, "Bearer test-token", authorization)
}

func TestDialer_DialHeaderSourceFailure(t *testing.T) {
	t.Parallel()

	headers := func(ctx context.Context) (http.Header, error) {
		return nil, assert.AnError
	}
	dialer := ws.NewDialer("ws://unused.example", headers)

	_, err := dialer.Dial(context.Background(), "/v1/executions/exec-guid/result")
	require.ErrorIs(t, err, assert.AnError)
}

func TestDialer_DialRefused(t *testing.T) {
	t.Parallel()

	dialer := ws.NewDialer("ws://127.0.0.1:1", nil)

	_, err := dialer.Dial(context.Background(), "/v1/executions/exec-guid/result")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/v1/executions/exec-guid/result")
}

func TestConn_ReadUntilNormalClose(t *testing.T) {
	t.Parallel()

	server := echoServer(t, []string{"one", "two"}, nil)
	defer server.Close()

	dialer := ws.NewDialer(ws.WebSocketBaseURL(server.URL), nil)

	conn, err := dialer.Dial(context.Background(), "/v1/executions/exec-guid/result")
	require.NoError(t, err)

	defer func() {
		_ = conn.Close()
	}()

	var fragments []string

	for {
		data, err := conn.ReadMessage()
		if err != nil {
			// A clean remote close surfaces as EOF
			require.ErrorIs(t, err, io.EOF)

			break
		}

		fragments = append(fragments, string(data))
	}

	assert.Equal(t, []string{"one", "two"}, fragments)
}

func TestConn_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	server := echoServer(t, nil, nil)
	defer server.Close()

	dialer := ws.NewDialer(ws.WebSocketBaseURL(server.URL), nil)

	conn, err := dialer.Dial(context.Background(), "/v1/executions/exec-guid/result")
	require.NoError(t, err)

	first := conn.Close()
	second := conn.Close()
	assert.Equal(t, first, second)
}

func TestDialer_AddressJoining(t *testing.T) {
	t.Parallel()

	var requestedPath string

	server := echoServer(t, nil, func(r *http.Request) {
		requestedPath = r.URL.Path
	})
	defer server.Close()

	// A trailing slash on the base and a bare address still join cleanly
	dialer := ws.NewDialer(ws.WebSocketBaseURL(server.URL)+"/", nil)

	conn, err := dialer.Dial(context.Background(), "v1/executions/exec-guid/result")
	require.NoError(t, err)

	defer func() {
		_ = conn.Close()
	}()

	assert.True(t, strings.HasSuffix(requestedPath, "/v1/executions/exec-guid/result"))
}
