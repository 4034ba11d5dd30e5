package serverfn

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	herrors "github.com/vango-dev/hydrate/internal/errors"
	"github.com/vango-dev/hydrate/pkg/protocol"
)

// ErrSocketClosed is the cause of transport errors for calls that were in
// flight when the gateway socket closed.
var ErrSocketClosed = errors.New("serverfn: websocket closed")

// WSTransport multiplexes calls over one websocket. Each call is a
// Request frame; the reader routes Response frames back by ID.
type WSTransport struct {
	conn   *websocket.Conn
	logger *slog.Logger

	writeMu sync.Mutex
	nextID  atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]chan []byte
	closed  bool
	err     error

	done chan struct{}
}

// DialWS connects to a gateway websocket endpoint, for example
// "ws://localhost:3000/_fn/_ws".
func DialWS(ctx context.Context, url string, header http.Header) (*WSTransport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	return NewWSTransport(conn, slog.Default()), nil
}

// NewWSTransport wraps an established connection and starts its reader.
func NewWSTransport(conn *websocket.Conn, logger *slog.Logger) *WSTransport {
	if logger == nil {
		logger = slog.Default()
	}
	conn.SetReadLimit(protocol.HardMaxAllocation + protocol.FrameHeaderSize)

	t := &WSTransport{
		conn:    conn,
		logger:  logger.With("component", "serverfn.ws"),
		pending: make(map[uint64]chan []byte),
		done:    make(chan struct{}),
	}
	go t.readLoop()
	return t
}

// Call implements Transport.
func (t *WSTransport) Call(ctx context.Context, name string, args []byte) ([]byte, error) {
	id := t.nextID.Add(1)
	payload, err := protocol.EncodeRequest(&protocol.Request{ID: id, Name: name, Args: args})
	if err != nil {
		return nil, &Error{Kind: KindSerialize, Func: name, Code: protocol.ErrSerialize, Err: err, Message: err.Error()}
	}

	ch := make(chan []byte, 1)
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, t.closedError(name)
	}
	t.pending[id] = ch
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.pending, id)
		t.mu.Unlock()
	}()

	frame := &protocol.Frame{Type: protocol.FrameRequest, Payload: payload}
	t.writeMu.Lock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = t.conn.SetWriteDeadline(deadline)
	} else {
		_ = t.conn.SetWriteDeadline(time.Time{})
	}
	err = t.conn.WriteMessage(websocket.BinaryMessage, frame.Encode())
	t.writeMu.Unlock()
	if err != nil {
		return nil, err
	}

	select {
	case raw := <-ch:
		return raw, nil
	case <-t.done:
		return nil, t.closedError(name)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *WSTransport) closedError(name string) *Error {
	t.mu.Lock()
	cause := t.err
	t.mu.Unlock()
	if cause == nil {
		cause = ErrSocketClosed
	}
	return &Error{
		Kind:    KindTransport,
		Func:    name,
		Code:    protocol.ErrTransport,
		Message: ErrSocketClosed.Error(),
		Err:     herrors.New("E060").Wrap(cause),
	}
}

func (t *WSTransport) readLoop() {
	for {
		_, msg, err := t.conn.ReadMessage()
		if err != nil {
			t.shutdown(err)
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil || frame.Type != protocol.FrameResponse {
			t.logger.Warn("dropping malformed frame", "error", err)
			continue
		}

		// The ID is read without decoding the body; the caller decodes
		// and reports a malformed body as a deserialize error.
		id, ok := responseID(frame.Payload)
		if !ok {
			t.logger.Warn("dropping response without id")
			continue
		}

		t.mu.Lock()
		ch, ok := t.pending[id]
		t.mu.Unlock()
		if ok {
			select {
			case ch <- frame.Payload:
			default:
				t.logger.Warn("dropping duplicate response", "id", id)
			}
		}
	}
}

// responseID reads the ID that follows the version byte of a Response.
func responseID(payload []byte) (uint64, bool) {
	d := protocol.NewDecoder(payload)
	if _, err := d.ReadByte(); err != nil {
		return 0, false
	}
	id, err := d.ReadUvarint()
	if err != nil {
		return 0, false
	}
	return id, true
}

func (t *WSTransport) shutdown(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	t.err = err
	close(t.done)
}

// Close closes the socket. In-flight calls fail with a transport error.
func (t *WSTransport) Close() error {
	t.writeMu.Lock()
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	t.writeMu.Unlock()

	t.shutdown(ErrSocketClosed)
	return t.conn.Close()
}
