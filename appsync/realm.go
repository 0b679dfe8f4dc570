package appsync

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alexjbarnes/appsync/transport"
	"golang.org/x/text/unicode/norm"
)

const (
	realmDirName     = "mongodb-realm"
	realmExt         = ".realm"
	defaultRealmName = "default"
)

//go:generate mockgen -source=realm.go -destination=mock_realm_test.go -package=appsync

// SyncEngine opens sync sessions for realm files. It is provided by the
// storage engine; the App only drives its lifecycle.
type SyncEngine interface {
	// OpenSession starts syncing cfg.Path. Engines without their own
	// subscription tracking report progress to cfg.Subscriptions.
	OpenSession(ctx context.Context, cfg SessionConfig) (session SessionHandle, realm Refresher, err error)
	// Reconnect retries every disconnected session immediately.
	Reconnect() error
	Close() error
}

// SubscriptionSource is implemented by session handles that carry their
// own subscription sets.
type SubscriptionSource interface {
	Subscriptions() SubscriptionHandle
}

// SessionConfig is what a SyncEngine needs to open a session.
type SessionConfig struct {
	User          *User
	Path          string
	Endpoint      transport.Endpoint
	Transport     *transport.Transport
	Subscriptions *SubscriptionStore
}

// RealmPath returns the file path of the realm name for a user. name is
// NFC normalised and gets the .realm extension if it lacks one; an empty
// name is the default realm. Names must not contain path separators.
func RealmPath(stateDir, appID, userID, name string) (string, error) {
	if name == "" {
		name = defaultRealmName
	}

	name = norm.NFC.String(name)
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: invalid realm name %q", ErrIllegalArgument, name)
	}

	if !strings.HasSuffix(name, realmExt) {
		name += realmExt
	}

	return filepath.Join(stateDir, realmDirName, norm.NFC.String(appID), norm.NFC.String(userID), name), nil
}

// Realm is a synced realm file opened for a user.
type Realm struct {
	path    string
	user    *User
	data    Refresher
	subs    *SubscriptionSet
	store   *SubscriptionStore
	session func() *SyncSession
}

// OpenRealm opens the realm name of u and starts its sync session. The
// App must have been created WithSyncEngine.
func (a *App) OpenRealm(ctx context.Context, u *User, name string) (*Realm, error) {
	if a.isClosed() {
		return nil, ErrAppClosed
	}

	if a.engine == nil {
		return nil, ErrNoSyncEngine
	}

	if u == nil || u.app != a {
		return nil, fmt.Errorf("%w: user does not belong to this app", ErrIllegalArgument)
	}

	if !u.IsLoggedIn() {
		return nil, fmt.Errorf("%w: user %s", ErrNotLoggedIn, u.ID())
	}

	store, err := a.SubscriptionStore(u, name)
	if err != nil {
		return nil, err
	}

	path := store.RealmPath()

	endpoint, err := a.SyncEndpoint(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving sync endpoint: %w", err)
	}

	tr, err := a.Transport()
	if err != nil {
		return nil, err
	}

	handle, data, err := a.engine.OpenSession(ctx, SessionConfig{
		User:          u,
		Path:          path,
		Endpoint:      endpoint,
		Transport:     tr,
		Subscriptions: store,
	})
	if err != nil {
		return nil, fmt.Errorf("opening sync session for %s: %w", path, err)
	}

	logger := a.cfg.Logger.With("component", "realm", "path", path)

	subsHandle, err := subscriptionsFor(handle, store)
	if err != nil {
		return nil, err
	}

	r := &Realm{
		path:  path,
		user:  u,
		data:  data,
		store: store,
		subs:  newSubscriptionSet(subsHandle, data, logger),
	}
	r.session = sync.OnceValue(func() *SyncSession {
		return newSyncSession(handle, data, logger)
	})

	logger.Info("realm opened", "user_id", u.ID())

	return r, nil
}

// SubscriptionStore opens the local subscription store of the realm
// name of u. It works without a sync engine.
func (a *App) SubscriptionStore(u *User, name string) (*SubscriptionStore, error) {
	if a.isClosed() {
		return nil, ErrAppClosed
	}

	if u == nil || u.app != a {
		return nil, fmt.Errorf("%w: user does not belong to this app", ErrIllegalArgument)
	}

	path, err := RealmPath(a.cfg.StateDir, a.appID, u.ID(), name)
	if err != nil {
		return nil, err
	}

	return NewSubscriptionStore(a.store, path, a.cfg.Logger)
}

func subscriptionsFor(handle SessionHandle, store *SubscriptionStore) (SubscriptionHandle, error) {
	if src, ok := handle.(SubscriptionSource); ok {
		if h := src.Subscriptions(); h != nil {
			return h, nil
		}
	}

	return store.Latest()
}

// Path returns the realm file path.
func (r *Realm) Path() string { return r.path }

// User returns the user the realm is synced for.
func (r *Realm) User() *User { return r.user }

// Session returns the realm's sync session.
func (r *Realm) Session() *SyncSession { return r.session() }

// Subscriptions returns the realm's flexible sync subscription set.
func (r *Realm) Subscriptions() *SubscriptionSet { return r.subs }

// SubscriptionStore returns the local subscription store. Engines that
// carry their own subscription sets never report progress to it.
func (r *Realm) SubscriptionStore() *SubscriptionStore { return r.store }

// Refresh makes the latest synced data visible.
func (r *Realm) Refresh() error {
	if err := r.data.Refresh(); err != nil {
		return fmt.Errorf("refreshing realm: %w", err)
	}

	return nil
}
