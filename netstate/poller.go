package netstate

import (
	"context"
	"log/slog"
	"net"
	"time"
)

const (
	defaultPollInterval = 10 * time.Second
	defaultDialTimeout  = 3 * time.Second
)

// DialFunc opens a connection. It matches (*net.Dialer).DialContext.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Poller derives connectivity by periodically opening a TCP connection
// to a known address and reports the result to an Observer. It is the
// connectivity source for platforms that do not push network events.
type Poller struct {
	observer *Observer
	addr     string
	interval time.Duration
	timeout  time.Duration
	dial     DialFunc
	logger   *slog.Logger
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval sets the delay between probes.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithDialTimeout bounds a single probe.
func WithDialTimeout(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithDialer replaces the function used to open probe connections.
func WithDialer(dial DialFunc) PollerOption {
	return func(p *Poller) {
		p.dial = dial
	}
}

// NewPoller creates a poller that probes addr (host:port) and feeds obs.
func NewPoller(obs *Observer, addr string, logger *slog.Logger, opts ...PollerOption) *Poller {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Poller{
		observer: obs,
		addr:     addr,
		interval: defaultPollInterval,
		timeout:  defaultDialTimeout,
		dial:     (&net.Dialer{}).DialContext,
		logger:   logger.With("component", "netstate"),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Probe opens and immediately closes one connection to the target.
func (p *Poller) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.dial(ctx, "tcp", p.addr)
	if err != nil {
		p.logger.Debug("connectivity probe failed", "addr", p.addr, "error", err)
		return false
	}

	_ = conn.Close()

	return true
}

// Run probes immediately and then every interval until ctx is cancelled.
// It always returns nil; the error result lets it run under errgroup.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		online := p.Probe(ctx)
		if ctx.Err() != nil {
			return nil
		}

		if online != p.observer.Online() {
			p.logger.Info("connectivity changed", "online", online)
		}

		p.observer.NotifyConnectionChange(online)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
