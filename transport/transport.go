package transport

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

const (
	// defaultHandshakeTimeout bounds the HTTP upgrade request.
	defaultHandshakeTimeout = 2 * time.Minute

	// unboundedReadLimit effectively disables the per-message read limit.
	// coder/websocket defaults to 32 KiB, far below a sync download.
	unboundedReadLimit = int64(1) << 62
)

// Options configures a Transport.
type Options struct {
	Logger *slog.Logger
	// HTTPClient performs the upgrade request. Defaults to a client
	// without a timeout, since the connection is long lived.
	HTTPClient *http.Client
	// HandshakeTimeout bounds dialing and the upgrade response.
	HandshakeTimeout time.Duration
	// MaxMessageBytes caps a single reassembled message. Zero means no cap.
	MaxMessageBytes int64
}

// Endpoint identifies the sync server a Client connects to.
type Endpoint struct {
	Address string
	Port    int
	// Path includes any query string, for example the access token.
	Path  string
	IsSSL bool
	// Protocols lists the supported subprotocols, most preferred first.
	Protocols []string
}

// URL returns the websocket URL of the endpoint.
func (e Endpoint) URL() string {
	scheme := "ws"
	if e.IsSSL {
		scheme = "wss"
	}

	path := e.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return scheme + "://" + net.JoinHostPort(e.Address, strconv.Itoa(e.Port)) + path
}

// dialFunc matches websocket.Dial but returns the wsConn abstraction.
type dialFunc func(ctx context.Context, url string, opts *websocket.DialOptions) (wsConn, *http.Response, error)

func dialWebsocket(ctx context.Context, url string, opts *websocket.DialOptions) (wsConn, *http.Response, error) {
	conn, resp, err := websocket.Dial(ctx, url, opts)
	if err != nil {
		return nil, resp, err
	}

	return conn, resp, nil
}

// Transport provides the I/O primitives a sync engine drives: work
// posted to a single engine-owned goroutine, cancellable timers and
// websocket clients. It never reconnects on its own; the engine calls
// Connect again after a Client closes.
//
// Every callback the transport invokes, including Observer methods,
// runs on that one goroutine, so callbacks never run concurrently.
type Transport struct {
	logger     *slog.Logger
	httpClient *http.Client
	opts       Options
	dial       dialFunc

	scope  *scope
	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool

	mu      sync.Mutex
	clients map[*Client]struct{}
}

// New creates a Transport and starts its dispatch goroutine.
func New(opts Options) *Transport {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}

	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = defaultHandshakeTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Transport{
		logger:     logger.With("component", "websocket"),
		httpClient: opts.HTTPClient,
		opts:       opts,
		dial:       dialWebsocket,
		scope:      newScope(),
		ctx:        ctx,
		cancel:     cancel,
		clients:    make(map[*Client]struct{}),
	}
}

// Post schedules fn on the dispatch goroutine. fn receives
// cancelled=true if the transport closes before it runs.
func (t *Transport) Post(fn func(cancelled bool)) {
	t.scope.post(fn)
}

// CreateTimer schedules fn to run once after delay.
func (t *Transport) CreateTimer(delay time.Duration, fn func(cancelled bool)) *CancellableTimer {
	return newCancellableTimer(t.scope, delay, fn)
}

// Connect starts a new client connecting to ep and returns immediately.
// The outcome is reported to observer: OnConnected on success, or
// OnError followed by OnClose on a failed handshake.
func (t *Transport) Connect(observer Observer, ep Endpoint) *Client {
	c := newClient(t, observer)

	if t.closed.Load() {
		c.Close()
		return c
	}

	t.mu.Lock()
	t.clients[c] = struct{}{}
	t.mu.Unlock()

	go c.open(ep)

	return c
}

// Write sends data on c. It exists so engines that address clients
// through the transport have a single entry point.
func (t *Transport) Write(c *Client, data []byte, done func(cancelled bool)) {
	c.Send(data, done)
}

// Close tears down every client, cancels pending posts and timers, and
// releases idle HTTP connections.
func (t *Transport) Close() {
	if !t.closed.CompareAndSwap(false, true) {
		return
	}

	t.mu.Lock()
	clients := make([]*Client, 0, len(t.clients))
	for c := range t.clients {
		clients = append(clients, c)
	}
	t.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}

	t.scope.close()
	t.cancel()
	t.httpClient.CloseIdleConnections()
}

func (t *Transport) forget(c *Client) {
	t.mu.Lock()
	delete(t.clients, c)
	t.mu.Unlock()
}
