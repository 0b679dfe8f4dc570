package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/coder/websocket"
)

// readChunkSize is the buffer used to pull fragments off a message
// reader. A single read never spans two websocket frames.
const readChunkSize = 32 * 1024

// Observer receives connection events for one Client. All methods are
// invoked on the transport's dispatch goroutine.
type Observer interface {
	OnConnected(protocol string)
	OnError()
	// OnNewMessage receives one reassembled binary message and reports
	// whether the client should close.
	OnNewMessage(data []byte) (shouldClose bool)
	OnClose(wasClean bool, code ErrorCode, reason string)
}

//go:generate mockgen -source=client.go -destination=mock_conn_test.go -package=transport -mock_names=wsConn=MockWSConn

// wsConn abstracts the WebSocket connection so Client can be tested
// without a real server. *websocket.Conn satisfies this interface.
type wsConn interface {
	Reader(ctx context.Context) (websocket.MessageType, io.Reader, error)
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Close(code websocket.StatusCode, reason string) error
	CloseNow() error
	Subprotocol() string
	SetReadLimit(n int64)
}

// State is the lifecycle stage of a Client.
type State int32

const (
	StateConnecting State = iota
	StateNegotiated
	StateOpen
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateNegotiated:
		return "negotiated"
	case StateOpen:
		return "open"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

type pendingWrite struct {
	data []byte
	done func(cancelled bool)
}

// Client is a single websocket connection. It owns an unbounded write
// queue drained in FIFO order and a reassembler for incoming binary
// messages. A Client never reconnects.
type Client struct {
	t        *Transport
	observer Observer
	logger   *slog.Logger
	frames   *FrameReassembler
	writes   *writeQueue

	ctx    context.Context
	cancel context.CancelFunc

	state     atomic.Int32
	closing   atomic.Bool
	notified  atomic.Bool
	closeOnce sync.Once

	mu   sync.Mutex
	conn wsConn
}

func newClient(t *Transport, observer Observer) *Client {
	ctx, cancel := context.WithCancel(t.ctx)

	c := &Client{
		t:        t,
		observer: observer,
		logger:   t.logger,
		writes:   newWriteQueue(),
		ctx:      ctx,
		cancel:   cancel,
	}
	c.frames = NewFrameReassembler(c.deliver)

	return c
}

// State returns the current lifecycle stage.
func (c *Client) State() State {
	return State(c.state.Load())
}

// Send queues data to be written as one binary frame. done runs after
// the frame is accepted by the socket, or with cancelled=true if the
// client closes first. Send never blocks.
func (c *Client) Send(data []byte, done func(cancelled bool)) {
	if !c.writes.push(pendingWrite{data: data, done: done}) {
		done(true)
	}
}

// Close terminates the connection. Writes still queued have their
// callbacks invoked with cancelled=true before Close returns. Close does
// not notify the observer.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.closing.Store(true)
		c.state.CompareAndSwap(int32(StateConnecting), int32(StateClosed))
		c.state.CompareAndSwap(int32(StateNegotiated), int32(StateClosed))
		c.state.CompareAndSwap(int32(StateOpen), int32(StateClosed))

		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()

		if conn != nil {
			_ = conn.CloseNow()
		}

		for _, w := range c.writes.drain() {
			w.done(true)
		}

		c.cancel()
		c.t.forget(c)
	})
}

// open performs the handshake and starts the read and write loops.
func (c *Client) open(ep Endpoint) {
	hctx, cancel := context.WithTimeout(c.ctx, c.t.opts.HandshakeTimeout)
	defer cancel()

	conn, resp, err := c.t.dial(hctx, ep.URL(), &websocket.DialOptions{
		HTTPClient:   c.t.httpClient,
		Subprotocols: ep.Protocols,
	})
	if err != nil {
		if c.closing.Load() {
			return
		}

		code := CodeConnectionFailed
		if resp != nil && resp.StatusCode == http.StatusSwitchingProtocols {
			code = CodeProtocolError
		}

		c.logger.Warn("websocket handshake failed", "host", ep.Address, "error", err)
		c.fail(code, err.Error())

		return
	}

	protocol := conn.Subprotocol()
	if protocol == "" {
		c.logger.Warn("websocket handshake missing subprotocol", "host", ep.Address)
		_ = conn.Close(websocket.StatusProtocolError, "no subprotocol negotiated")
		c.fail(CodeProtocolError, "Websocket server did not negotiate a subprotocol")

		return
	}

	if c.t.opts.MaxMessageBytes > 0 {
		conn.SetReadLimit(c.t.opts.MaxMessageBytes)
	} else {
		conn.SetReadLimit(unboundedReadLimit)
	}

	c.mu.Lock()
	if c.closing.Load() {
		c.mu.Unlock()
		_ = conn.CloseNow()

		return
	}

	c.conn = conn
	c.mu.Unlock()

	c.state.Store(int32(StateNegotiated))
	c.logger.Debug("websocket connected", "host", ep.Address, "protocol", protocol)
	c.dispatch(func() { c.observer.OnConnected(protocol) })

	if c.state.CompareAndSwap(int32(StateNegotiated), int32(StateOpen)) {
		go c.writeLoop(conn)
		go c.readLoop(conn)
	}
}

// fail reports a handshake failure and tears the client down.
func (c *Client) fail(code ErrorCode, reason string) {
	c.state.Store(int32(StateFailed))

	if c.notified.CompareAndSwap(false, true) {
		c.dispatch(func() {
			c.observer.OnError()
			c.observer.OnClose(false, code, reason)
		})
	}

	c.Close()
}

// peerClosed reports a connection that ended while open.
func (c *Client) peerClosed(wasClean bool, code ErrorCode, reason string) {
	if c.closing.Load() || !c.notified.CompareAndSwap(false, true) {
		return
	}

	c.dispatch(func() { c.observer.OnClose(wasClean, code, reason) })
	c.Close()
}

// dispatch runs fn on the transport goroutine, skipping it if the
// transport has already closed.
func (c *Client) dispatch(fn func()) {
	c.t.scope.post(func(cancelled bool) {
		if !cancelled {
			fn()
		}
	})
}

// deliver hands a reassembled message to the observer and waits for its
// answer. A closed transport answers "close".
func (c *Client) deliver(msg []byte) bool {
	res := make(chan bool, 1)

	c.t.scope.post(func(cancelled bool) {
		if cancelled {
			res <- true
			return
		}

		res <- c.observer.OnNewMessage(msg)
	})

	return <-res
}

func (c *Client) writeLoop(conn wsConn) {
	for {
		w, ok := c.writes.pop(c.ctx)
		if !ok {
			return
		}

		if err := conn.Write(c.ctx, websocket.MessageBinary, w.data); err != nil {
			w.done(true)

			if !c.closing.Load() {
				c.logger.Warn("websocket write failed", "error", err)
				c.peerClosed(false, CodeWriteError, err.Error())
			}

			return
		}

		done := w.done
		c.t.scope.post(done)
	}
}

func (c *Client) readLoop(conn wsConn) {
	for {
		typ, r, err := conn.Reader(c.ctx)
		if err != nil {
			c.readFailed(err)
			return
		}

		if typ != websocket.MessageBinary {
			data, err := io.ReadAll(r)
			if err != nil {
				c.readFailed(err)
				return
			}

			c.logger.Warn("received unexpected text websocket message", "bytes", len(data))

			continue
		}

		shouldClose, err := c.readBinary(r)
		if err != nil {
			c.readFailed(err)
			return
		}

		if shouldClose {
			c.Close()
			return
		}
	}
}

// readBinary feeds one message to the reassembler fragment by fragment.
func (c *Client) readBinary(r io.Reader) (bool, error) {
	buf := make([]byte, readChunkSize)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			c.frames.Append(append([]byte(nil), buf[:n]...), false)
		}

		if errors.Is(err, io.EOF) {
			return c.frames.Append(nil, true), nil
		}

		if err != nil {
			return false, err
		}
	}
}

func (c *Client) readFailed(err error) {
	if c.closing.Load() {
		return
	}

	if status := websocket.CloseStatus(err); status != -1 {
		reason := "Received Close from Websocket server"

		var ce websocket.CloseError
		if errors.As(err, &ce) && ce.Reason != "" {
			reason = ce.Reason
		}

		c.logger.Debug("websocket closed by peer", "status", int(status), "reason", reason)
		c.peerClosed(true, closeCode(int(status)), reason)

		return
	}

	c.logger.Warn("websocket read failed", "error", err)
	c.peerClosed(false, CodeReadError, err.Error())
}
