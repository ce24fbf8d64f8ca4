// Package ws opens duplex websocket connections to execution addresses for
// the streaming layer.
package ws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/runforge-io/runforge-client/internal/constants"
	"github.com/runforge-io/runforge-client/pkg/runforge"
)

// HeaderSource produces the headers sent with the websocket opening
// handshake. Called once per Dial; headers are not renegotiated
// mid-connection.
type HeaderSource func(ctx context.Context) (http.Header, error)

// Dialer opens one websocket connection per execution address.
type Dialer struct {
	baseURL  string
	headers  HeaderSource
	wsDialer *websocket.Dialer
}

// NewDialer creates a dialer rooted at baseURL (a ws:// or wss:// URL).
// headers may be nil for unauthenticated use.
func NewDialer(baseURL string, headers HeaderSource) *Dialer {
	return &Dialer{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		headers: headers,
		wsDialer: &websocket.Dialer{
			HandshakeTimeout: constants.HandshakeTimeout,
		},
	}
}

// WebSocketBaseURL derives the websocket base URL from an HTTP API endpoint.
func WebSocketBaseURL(apiEndpoint string) string {
	switch {
	case strings.HasPrefix(apiEndpoint, "https://"):
		return "wss://" + strings.TrimPrefix(apiEndpoint, "https://")
	case strings.HasPrefix(apiEndpoint, "http://"):
		return "ws://" + strings.TrimPrefix(apiEndpoint, "http://")
	default:
		return apiEndpoint
	}
}

// Dial implements runforge.StreamDialer. The address is the opaque token a
// resource handed out (an absolute path on the platform's stream host).
func (d *Dialer) Dial(ctx context.Context, address string) (runforge.StreamConn, error) {
	var (
		header http.Header
		err    error
	)

	if d.headers != nil {
		header, err = d.headers(ctx)
		if err != nil {
			return nil, fmt.Errorf("building handshake headers: %w", err)
		}
	}

	target := d.baseURL + "/" + strings.TrimPrefix(address, "/")

	conn, resp, err := d.wsDialer.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("opening connection to %s (status %d): %w", address, resp.StatusCode, err)
		}

		return nil, fmt.Errorf("opening connection to %s: %w", address, err)
	}

	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	return &Conn{ws: conn}, nil
}

// Conn adapts a websocket connection to runforge.StreamConn.
type Conn struct {
	ws        *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

// ReadMessage blocks until the next fragment. A normal close from the remote
// side is reported as io.EOF per the StreamConn contract.
func (c *Conn) ReadMessage() ([]byte, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, io.EOF
		}

		// A locally initiated close surfaces here as a use-of-closed error;
		// the consuming loop has already moved on by then.
		if errors.Is(err, net.ErrClosed) {
			return nil, io.EOF
		}

		return nil, fmt.Errorf("reading message: %w", err)
	}

	return data, nil
}

// Close performs the websocket close handshake. Safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(constants.ShortHTTPTimeout)
		_ = c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			deadline,
		)
		c.closeErr = c.ws.Close()
	})

	return c.closeErr
}
