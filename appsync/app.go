// Package appsync is the client runtime for an app services backend: it
// logs users in, keeps their sessions, reconnects sync when the network
// returns and exposes the sync sessions and subscription sets of the
// realms a sync engine opens.
package appsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/alexjbarnes/appsync/internal/backend"
	"github.com/alexjbarnes/appsync/internal/state"
	"github.com/alexjbarnes/appsync/netstate"
	"github.com/alexjbarnes/appsync/transport"
)

const (
	// DefaultBaseURL is the public app services endpoint.
	DefaultBaseURL = "https://services.cloud.mongodb.com"

	// DefaultReconnectDebounce is the minimum time between two reconnects
	// triggered by the network coming back.
	DefaultReconnectDebounce = 5 * time.Second

	defaultHTTPTimeout = 60 * time.Second
)

// DefaultSyncProtocols are the sync protocol versions offered during the
// websocket handshake, most preferred first.
var DefaultSyncProtocols = []string{"com.mongodb.realm-query-sync#9", "com.mongodb.realm-query-sync#8"}

// Config describes the backend application and local storage.
type Config struct {
	AppID   string
	BaseURL string
	// StateDir holds the metadata database and realm files.
	StateDir string
	// MetadataKey, if set, encrypts tokens at rest. It must be 32 bytes.
	MetadataKey       []byte
	HTTPTimeout       time.Duration
	ReconnectDebounce time.Duration
	SyncProtocols     []string
	// MaxMessageBytes caps a single sync message. Zero means no cap.
	MaxMessageBytes int64
	Logger          *slog.Logger
}

// Option customizes an App beyond its Config.
type Option func(*options)

type options struct {
	network         *netstate.Observer
	engine          SyncEngine
	now             func() time.Time
	httpClient      *http.Client
	authEventBuffer int
}

// WithNetworkObserver replaces the process wide connectivity observer.
func WithNetworkObserver(obs *netstate.Observer) Option {
	return func(o *options) { o.network = obs }
}

// WithSyncEngine attaches the engine that opens sync sessions.
func WithSyncEngine(engine SyncEngine) Option {
	return func(o *options) { o.engine = engine }
}

// WithClock replaces the clock used for reconnect debouncing.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithHTTPClient replaces the HTTP client used for backend requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithAuthEventBuffer sets the per-subscriber buffer of AuthChanges.
func WithAuthEventBuffer(n int) Option {
	return func(o *options) { o.authEventBuffer = n }
}

// App is the entry point for one backend application. It owns the
// backend client, the metadata store, at most one websocket transport
// and a listener on the connectivity observer. Close releases all of
// them.
type App struct {
	appID      string
	cfg        Config
	logger     *slog.Logger
	client     *backend.Client
	httpClient *http.Client
	store      *state.State
	network    *netstate.Observer
	listenerID netstate.ListenerID
	engine     SyncEngine
	events     *authBroadcaster
	now        func() time.Time

	mu            sync.Mutex
	closed        bool
	lastReconnect time.Time
	users         map[string]*User
	transport     *transport.Transport
}

// New creates an App and registers its connectivity listener.
func New(cfg Config, opts ...Option) (*App, error) {
	if cfg.AppID == "" {
		return nil, fmt.Errorf("%w: app id is required", ErrIllegalArgument)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if u, err := url.Parse(cfg.BaseURL); err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid base URL %q", ErrIllegalArgument, cfg.BaseURL)
	}

	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}

	if cfg.ReconnectDebounce <= 0 {
		cfg.ReconnectDebounce = DefaultReconnectDebounce
	}

	if len(cfg.SyncProtocols) == 0 {
		cfg.SyncProtocols = DefaultSyncProtocols
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	if o.network == nil {
		o.network = netstate.Default()
	}

	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	store, err := state.Load(cfg.StateDir, cfg.MetadataKey)
	if err != nil {
		return nil, fmt.Errorf("opening metadata store: %w", err)
	}

	a := &App{
		appID:      cfg.AppID,
		cfg:        cfg,
		logger:     cfg.Logger.With("component", "app", "app_id", cfg.AppID),
		httpClient: o.httpClient,
		store:      store,
		network:    o.network,
		engine:     o.engine,
		events:     newAuthBroadcaster(o.authEventBuffer),
		now:        o.now,
		users:      make(map[string]*User),
	}

	a.client = backend.New(backend.Options{
		AppID:                  cfg.AppID,
		BaseURL:                cfg.BaseURL,
		HTTPClient:             o.httpClient,
		Logger:                 cfg.Logger,
		OnAccessTokenRefreshed: a.persistAccessToken,
	})

	a.listenerID = a.network.AddListener(netstate.ListenerFunc(a.onNetworkChange))

	return a, nil
}

// AppID returns the backend application id.
func (a *App) AppID() string {
	return a.appID
}

// BaseURL returns the current backend base URL.
func (a *App) BaseURL() string {
	return a.client.BaseURL()
}

func (a *App) isClosed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.closed
}

// onNetworkChange asks the sync engine to reconnect when connectivity
// returns, at most once per debounce window.
func (a *App) onNetworkChange(connected bool) {
	if !connected {
		return
	}

	now := a.now()

	a.mu.Lock()
	if a.closed || (!a.lastReconnect.IsZero() && now.Sub(a.lastReconnect) < a.cfg.ReconnectDebounce) {
		a.mu.Unlock()
		return
	}

	a.lastReconnect = now
	engine := a.engine
	a.mu.Unlock()

	if engine == nil {
		return
	}

	a.logger.Debug("network restored, reconnecting sync sessions")

	if err := engine.Reconnect(); err != nil {
		a.logger.Warn("reconnecting sync sessions failed", "error", err)
	}
}

// Login authenticates with creds, makes the user current and publishes
// a LoggedIn event. If publishing overflows a subscriber the user is
// still logged in and the error wraps ErrAuthEventOverflow.
func (a *App) Login(ctx context.Context, creds Credentials) (*User, error) {
	if a.isClosed() {
		return nil, ErrAppClosed
	}

	if anon, ok := creds.(anonymousCredentials); ok && anon.reuseExisting {
		if u := a.loggedInAnonymous(); u != nil {
			if err := a.SwitchUser(u); err != nil {
				return nil, err
			}

			return u, nil
		}
	}

	bc, err := toBackend(creds)
	if err != nil {
		return nil, err
	}

	if cur := a.CurrentUser(); cur != nil {
		bc.DeviceID = cur.DeviceID()
	}

	sess, err := bridge(ctx, func(ctx context.Context, cb backend.Callback[*backend.UserSession]) {
		a.client.LogIn(ctx, bc, cb)
	}, identity[*backend.UserSession])
	if err != nil {
		return nil, err
	}

	rec := state.UserRecord{
		ID:           sess.UserID,
		State:        state.UserLoggedIn,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		DeviceID:     sess.DeviceID,
		Provider:     sess.Provider,
		Identities:   toStateIdentities(sess.Profile.Identities),
		Profile:      sess.Profile.Data,
		LastUsed:     a.now().UTC(),
	}

	if claims, err := backend.ParseTokenClaims(sess.AccessToken); err == nil {
		rec.CustomData = claims.UserData
	}

	if err := a.store.SaveUser(a.appID, rec); err != nil {
		return nil, fmt.Errorf("saving user: %w", err)
	}

	if err := a.store.SetCurrentUserID(a.appID, rec.ID); err != nil {
		return nil, fmt.Errorf("saving current user: %w", err)
	}

	u := a.userFor(rec)
	a.logger.Info("user logged in", "user_id", u.ID(), "provider", rec.Provider)

	if err := a.reportAuthChange(u); err != nil {
		return u, err
	}

	return u, nil
}

func (a *App) loggedInAnonymous() *User {
	for _, u := range a.AllUsers() {
		if u.State() == UserLoggedIn && u.Provider() == ProviderAnonymous {
			return u
		}
	}

	return nil
}

// userFor returns the User for rec, reusing the cached object.
func (a *App) userFor(rec state.UserRecord) *User {
	a.mu.Lock()
	defer a.mu.Unlock()

	if u, ok := a.users[rec.ID]; ok {
		u.load(rec)
		return u
	}

	u := newUser(a, rec)
	a.users[rec.ID] = u

	return u
}

// CurrentUser returns the active user: the one last switched to or
// logged in, falling back to the most recently used logged in user.
// It returns nil when nobody is logged in.
func (a *App) CurrentUser() *User {
	if id := a.store.CurrentUserID(a.appID); id != "" {
		rec, err := a.store.GetUser(a.appID, id)
		if err == nil && rec != nil && rec.State == state.UserLoggedIn {
			return a.userFor(*rec)
		}
	}

	for _, u := range a.AllUsers() {
		if u.IsLoggedIn() {
			return u
		}
	}

	return nil
}

// AllUsers returns every known user that has not been removed, most
// recently used first.
func (a *App) AllUsers() []*User {
	recs, err := a.store.AllUsers(a.appID)
	if err != nil {
		a.logger.Warn("loading users failed", "error", err)
		return nil
	}

	users := make([]*User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, a.userFor(rec))
	}

	return users
}

// SwitchUser makes u the current user. u must be logged in.
func (a *App) SwitchUser(u *User) error {
	if u == nil || u.app != a {
		return fmt.Errorf("%w: user does not belong to this app", ErrIllegalArgument)
	}

	if u.State() != UserLoggedIn {
		return fmt.Errorf("%w: cannot switch to user %s in state %s", ErrIllegalState, u.ID(), u.State())
	}

	if err := u.touch(); err != nil {
		return err
	}

	if err := a.store.SetCurrentUserID(a.appID, u.ID()); err != nil {
		return fmt.Errorf("saving current user: %w", err)
	}

	return nil
}

// AuthChanges returns a channel receiving every authentication change
// published after the call. The channel is closed when ctx is done or
// the App closes; after Close it is returned already closed. Events are
// not replayed.
func (a *App) AuthChanges(ctx context.Context) <-chan AuthChange {
	return a.events.subscribe(ctx)
}

// reportAuthChange publishes the event matching u's current state.
func (a *App) reportAuthChange(u *User) error {
	var typ AuthChangeType

	switch u.State() {
	case UserLoggedIn:
		typ = LoggedIn
	case UserLoggedOut:
		typ = LoggedOut
	default:
		typ = Removed
	}

	if err := a.events.publish(AuthChange{Type: typ, User: u}); err != nil {
		a.logger.Error("publishing authentication change failed", "user_id", u.ID(), "type", typ.String(), "error", err)
		return fmt.Errorf("publishing %s event: %w", typ, err)
	}

	return nil
}

// persistAccessToken stores a refreshed access token.
func (a *App) persistAccessToken(userID, accessToken string) {
	rec, err := a.store.GetUser(a.appID, userID)
	if err != nil || rec == nil {
		return
	}

	rec.AccessToken = accessToken
	if claims, err := backend.ParseTokenClaims(accessToken); err == nil && claims.UserData != nil {
		rec.CustomData = claims.UserData
	}

	if err := a.store.SaveUser(a.appID, *rec); err != nil {
		a.logger.Warn("persisting refreshed access token failed", "user_id", userID, "error", err)
	}
}

// UpdateBaseURL points the App at another deployment and resolves its
// location. Logged in users keep their tokens.
func (a *App) UpdateBaseURL(ctx context.Context, baseURL string) error {
	if a.isClosed() {
		return ErrAppClosed
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if u, err := url.Parse(baseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: invalid base URL %q", ErrIllegalArgument, baseURL)
	}

	a.client.SetBaseURL(baseURL)

	_, err := bridge(ctx, a.client.ResolveLocation, identity[*backend.Location])

	return err
}

// SyncEndpoint resolves the websocket endpoint sync sessions connect to.
func (a *App) SyncEndpoint(ctx context.Context) (transport.Endpoint, error) {
	loc, err := bridge(ctx, a.client.ResolveLocation, identity[*backend.Location])
	if err != nil {
		return transport.Endpoint{}, err
	}

	return endpointFromURL(a.client.SyncURL(loc), a.cfg.SyncProtocols)
}

func endpointFromURL(raw string, protocols []string) (transport.Endpoint, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return transport.Endpoint{}, fmt.Errorf("parsing sync URL: %w", err)
	}

	secure := u.Scheme == "wss" || u.Scheme == "https"

	port := 80
	if secure {
		port = 443
	}

	if p := u.Port(); p != "" {
		if port, err = strconv.Atoi(p); err != nil {
			return transport.Endpoint{}, fmt.Errorf("parsing sync URL port: %w", err)
		}
	}

	host := u.Hostname()
	if ip := net.ParseIP(host); ip != nil {
		host = ip.String()
	}

	return transport.Endpoint{
		Address:   host,
		Port:      port,
		Path:      u.RequestURI(),
		IsSSL:     secure,
		Protocols: protocols,
	}, nil
}

// Transport returns the App's websocket transport, creating it on first
// use. There is at most one per App.
func (a *App) Transport() (*transport.Transport, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, ErrAppClosed
	}

	if a.transport == nil {
		a.transport = transport.New(transport.Options{
			Logger:          a.cfg.Logger,
			MaxMessageBytes: a.cfg.MaxMessageBytes,
		})
	}

	return a.transport, nil
}

// Close releases the App: idle HTTP connections first, then the sync
// engine, whose background work must stop before the websocket
// transport and metadata store go away, and finally the connectivity
// listener. Close is idempotent.
func (a *App) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}

	a.closed = true
	tr := a.transport
	a.mu.Unlock()

	a.httpClient.CloseIdleConnections()

	var errs []error

	if a.engine != nil {
		if err := a.engine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing sync engine: %w", err))
		}
	}

	if tr != nil {
		tr.Close()
	}

	a.events.closeAll()

	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing metadata store: %w", err))
	}

	a.network.RemoveListener(a.listenerID)
	a.logger.Debug("app closed")

	return errors.Join(errs...)
}

func toStateIdentities(ids []backend.Identity) []state.Identity {
	out := make([]state.Identity, len(ids))
	for i, id := range ids {
		out[i] = state.Identity{ID: id.ID, Provider: id.ProviderType}
	}

	return out
}
