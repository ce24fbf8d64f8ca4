package runforge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"sync"
	"time"

	"github.com/runforge-io/runforge-client/internal/constants"
)

// StreamConn is one duplex connection to an execution address. Connections
// are opened per Listen/Stream call and never reused.
//
// ReadMessage blocks until the next inbound fragment arrives and must return
// io.EOF once the remote side closes the connection cleanly; any other error
// is a transport fault. Close must be safe to call more than once and after
// ReadMessage has failed.
type StreamConn interface {
	ReadMessage() ([]byte, error)
	Close() error
}

// StreamDialer opens a StreamConn for an opaque execution address.
type StreamDialer interface {
	Dial(ctx context.Context, address string) (StreamConn, error)
}

// StreamOptions configures a Listen or Stream call.
type StreamOptions struct {
	// Timeout is the idle timeout for the connection. Zero means
	// constants.DefaultStreamTimeout. Listen arms it once for the whole
	// connection; Stream re-arms it on every wait for the next fragment.
	Timeout time.Duration
}

func (o *StreamOptions) timeout() time.Duration {
	if o == nil || o.Timeout <= 0 {
		return constants.DefaultStreamTimeout
	}

	return o.Timeout
}

// Streaming failure causes. All of them surface wrapped in a *StreamError.
var (
	// ErrStreamClosedNoMessage means the connection closed cleanly without
	// delivering any fragment.
	ErrStreamClosedNoMessage = errors.New("connection closed without receiving any message")

	// ErrStreamInvalidJSON means a received message failed to parse as JSON.
	ErrStreamInvalidJSON = errors.New("failed to parse message as JSON")

	// ErrStreamTimeout means the idle timeout elapsed before the connection
	// produced a terminal event.
	ErrStreamTimeout = errors.New("timed out waiting for stream data")
)

// StreamError is the single error kind produced by the streaming layer. It
// wraps one of the sentinel causes above, a transport fault, or a context
// cancellation, together with the address the connection was opened for.
type StreamError struct {
	Address string
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	return fmt.Sprintf("stream %s: %v", e.Address, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *StreamError) Unwrap() error {
	return e.Err
}

func streamErr(address string, cause error) *StreamError {
	return &StreamError{Address: address, Err: cause}
}

// connReader pumps inbound fragments from a StreamConn into a FIFO queue.
// Single producer (the read goroutine), single consumer (the Listen/Stream
// loop). The queue channel is closed once the connection terminates; err is
// written before the close and holds the transport fault, or nil for a clean
// remote close.
type connReader struct {
	msgs     chan []byte
	done     chan struct{}
	stopOnce sync.Once
	err      error
}

// stop releases the read goroutine even when the queue is full and the
// consumer is gone. Idempotent; closing the connection alone only unblocks
// ReadMessage, not a pending queue send.
func (r *connReader) stop() {
	r.stopOnce.Do(func() {
		close(r.done)
	})
}

func startReader(conn StreamConn) *connReader {
	reader := &connReader{
		msgs: make(chan []byte, constants.StreamQueueSize),
		done: make(chan struct{}),
	}

	go func() {
		defer close(reader.msgs)

		for {
			msg, err := conn.ReadMessage()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					reader.err = err
				}

				return
			}

			select {
			case reader.msgs <- msg:
			case <-reader.done:
				return
			}
		}
	}()

	return reader
}

// closeOnce wraps a StreamConn so teardown happens exactly once no matter how
// many exit paths reach it.
type closeOnce struct {
	conn StreamConn
	once sync.Once
}

func (c *closeOnce) close() {
	c.once.Do(func() {
		_ = c.conn.Close()
	})
}

// Listen opens one connection to address and collects fragments until the
// connection closes, then decodes the concatenated buffer as a single JSON
// document of type T.
//
// The whole connection lifetime is expected to produce exactly one logical
// message, possibly split across fragments. A clean close with an empty
// buffer fails with ErrStreamClosedNoMessage; a buffer that does not parse
// fails with ErrStreamInvalidJSON. The idle timer is armed once and is not
// reset by incoming data; if it fires first the connection is forced closed
// and the call fails with ErrStreamTimeout. Exactly one outcome is produced.
func Listen[T any](ctx context.Context, dialer StreamDialer, address string, opts *StreamOptions) (T, error) {
	var zero T

	conn, err := dialer.Dial(ctx, address)
	if err != nil {
		return zero, streamErr(address, err)
	}

	guard := &closeOnce{conn: conn}
	defer guard.close()

	reader := startReader(conn)
	defer reader.stop()

	timer := time.NewTimer(opts.timeout())
	defer timer.Stop()

	var buf bytes.Buffer

	for {
		select {
		case msg, ok := <-reader.msgs:
			if !ok {
				if reader.err != nil {
					return zero, streamErr(address, reader.err)
				}

				if buf.Len() == 0 {
					return zero, streamErr(address, ErrStreamClosedNoMessage)
				}

				var result T

				err := json.Unmarshal(buf.Bytes(), &result)
				if err != nil {
					return zero, streamErr(address, fmt.Errorf("%w: %w", ErrStreamInvalidJSON, err))
				}

				return result, nil
			}

			buf.Write(msg)

		case <-timer.C:
			guard.close()

			return zero, streamErr(address, ErrStreamTimeout)

		case <-ctx.Done():
			guard.close()

			return zero, streamErr(address, ctx.Err())
		}
	}
}

// Stream opens one connection to address and returns a lazy sequence of
// decoded messages, one per fragment.
//
// Each fragment must be one complete JSON document; a fragment that fails to
// parse fails the whole sequence at that point (items already yielded stand).
// The idle timeout is re-armed on every wait, and firing fails the sequence
// with ErrStreamTimeout. Connection faults are routed through the same
// failure path. The sequence terminates without error once the connection has
// closed cleanly and the queue is drained. The connection is torn down on
// every exit path, including an early break by the consumer.
func Stream[T any](ctx context.Context, dialer StreamDialer, address string, opts *StreamOptions) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		conn, err := dialer.Dial(ctx, address)
		if err != nil {
			yield(zero, streamErr(address, err))

			return
		}

		guard := &closeOnce{conn: conn}
		defer guard.close()

		reader := startReader(conn)
		defer reader.stop()

		timeout := opts.timeout()

		for {
			timer := time.NewTimer(timeout)

			select {
			case msg, ok := <-reader.msgs:
				timer.Stop()

				if !ok {
					if reader.err != nil {
						yield(zero, streamErr(address, reader.err))
					}

					return
				}

				var item T

				err := json.Unmarshal(msg, &item)
				if err != nil {
					yield(zero, streamErr(address, fmt.Errorf("%w: %w", ErrStreamInvalidJSON, err)))

					return
				}

				if !yield(item, nil) {
					return
				}

			case <-timer.C:
				guard.close()
				yield(zero, streamErr(address, ErrStreamTimeout))

				return

			case <-ctx.Done():
				timer.Stop()
				guard.close()
				yield(zero, streamErr(address, ctx.Err()))

				return
			}
		}
	}
}
