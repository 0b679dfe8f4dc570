package appsync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/alexjbarnes/appsync/internal/errors"
)

// SubscriptionSetState is the server side progress of a committed
// subscription set version.
type SubscriptionSetState int

const (
	SubscriptionsUncommitted SubscriptionSetState = iota
	SubscriptionsPending
	SubscriptionsBootstrapping
	SubscriptionsAwaitingMark
	SubscriptionsComplete
	SubscriptionsError
	SubscriptionsSuperseded
)

var subscriptionStateNames = map[SubscriptionSetState]string{
	SubscriptionsUncommitted:   "UNCOMMITTED",
	SubscriptionsPending:       "PENDING",
	SubscriptionsBootstrapping: "BOOTSTRAPPING",
	SubscriptionsAwaitingMark:  "AWAITING_MARK",
	SubscriptionsComplete:      "COMPLETE",
	SubscriptionsError:         "ERROR",
	SubscriptionsSuperseded:    "SUPERSEDED",
}

func (s SubscriptionSetState) String() string {
	if name, ok := subscriptionStateNames[s]; ok {
		return name
	}

	return fmt.Sprintf("SubscriptionSetState(%d)", int(s))
}

// parseSubscriptionSetState is the inverse of String.
func parseSubscriptionSetState(s string) SubscriptionSetState {
	for state, name := range subscriptionStateNames {
		if name == s {
			return state
		}
	}

	return SubscriptionsUncommitted
}

// terminal reports whether no further transitions follow s.
func (s SubscriptionSetState) terminal() bool {
	return s == SubscriptionsComplete || s == SubscriptionsError || s == SubscriptionsSuperseded
}

// Subscription is one named query.
type Subscription struct {
	Name       string
	ObjectType string
	Query      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

//go:generate mockgen -source=subscriptions.go -destination=mock_subscriptions_test.go -package=appsync

// SubscriptionHandle is one committed, immutable version of a realm's
// subscription set, as held by the sync engine.
type SubscriptionHandle interface {
	Version() int64
	State() SubscriptionSetState
	ErrorMessage() string
	Subscriptions() []Subscription
	// BeginMutation opens a mutable copy of the latest version. Only one
	// may be open per realm; a second fails with ErrMutableSetOpen.
	BeginMutation() (MutableSubscriptionHandle, error)
	// Refresh returns the latest committed version with current state.
	Refresh() (SubscriptionHandle, error)
	// OnStateChange registers cb to run once this version reaches target
	// or another terminal state. The returned function unregisters cb.
	OnStateChange(target SubscriptionSetState, cb func(SubscriptionSetState)) (cancel func())
}

// MutableSubscriptionHandle is an open subscription set transaction.
// Release must be called exactly once, committed or not.
type MutableSubscriptionHandle interface {
	// Add inserts sub, or replaces the subscription with the same name.
	// It reports whether a new subscription was inserted.
	Add(sub Subscription) bool
	Remove(name string) bool
	RemoveByType(objectType string) int
	RemoveAll() int
	Subscriptions() []Subscription
	Commit() (SubscriptionHandle, error)
	Release()
}

// SubscriptionSet is the set of queries controlling what flexible sync
// downloads for a realm. It always refers to one committed version;
// Update and Refresh move it to newer ones.
type SubscriptionSet struct {
	realm  Refresher
	logger *slog.Logger

	mu     sync.Mutex
	handle SubscriptionHandle
}

func newSubscriptionSet(handle SubscriptionHandle, realm Refresher, logger *slog.Logger) *SubscriptionSet {
	return &SubscriptionSet{handle: handle, realm: realm, logger: logger}
}

func (s *SubscriptionSet) current() SubscriptionHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.handle
}

// Version returns the committed version this set refers to.
func (s *SubscriptionSet) Version() int64 {
	return s.current().Version()
}

// State returns the state of the current version.
func (s *SubscriptionSet) State() SubscriptionSetState {
	return s.current().State()
}

// ErrorMessage returns the server's reason for rejecting the current
// version. It is empty unless State is SubscriptionsError.
func (s *SubscriptionSet) ErrorMessage() string {
	h := s.current()
	if h.State() != SubscriptionsError {
		return ""
	}

	return h.ErrorMessage()
}

// Subscriptions returns the queries of the current version.
func (s *SubscriptionSet) Subscriptions() []Subscription {
	return s.current().Subscriptions()
}

// FindByName returns the subscription with the given name.
func (s *SubscriptionSet) FindByName(name string) (Subscription, bool) {
	for _, sub := range s.Subscriptions() {
		if sub.Name == name {
			return sub, true
		}
	}

	return Subscription{}, false
}

// Refresh moves the set to the latest committed version.
func (s *SubscriptionSet) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest, err := s.handle.Refresh()
	if err != nil {
		return fmt.Errorf("refreshing subscription set: %w", err)
	}

	s.handle = latest

	return nil
}

// Update opens a transaction on the latest version, applies block and
// commits. The transaction is released whether or not block or the
// commit fails. Concurrent updates are not serialized here; the loser
// gets ErrMutableSetOpen.
func (s *SubscriptionSet) Update(block func(*MutableSubscriptionSet) error) error {
	mut, err := s.current().BeginMutation()
	if err != nil {
		return fmt.Errorf("beginning subscription update: %w", err)
	}
	defer mut.Release()

	if err := block(&MutableSubscriptionSet{handle: mut}); err != nil {
		return err
	}

	committed, err := mut.Commit()
	if err != nil {
		return fmt.Errorf("committing subscriptions: %w", err)
	}

	s.mu.Lock()
	s.handle = committed
	s.mu.Unlock()

	return nil
}

// WaitForSynchronization waits until the server has acknowledged the
// current version and the matching data is downloaded. It returns false
// if timeout elapses first, which is not an error. A version rejected by
// the server fails with ErrBadFlexibleSyncQuery carrying the server's
// message. timeout must be positive. The set and the realm are refreshed in every case.
func (s *SubscriptionSet) WaitForSynchronization(ctx context.Context, timeout time.Duration) (bool, error) {
	if err := checkTimeout(timeout); err != nil {
		return false, err
	}

	h := s.current()
	p := newPromise[SubscriptionSetState]()

	cancel := h.OnStateChange(SubscriptionsComplete, func(state SubscriptionSetState) {
		p.resolve(state, nil)
	})
	defer cancel()

	defer s.refreshAfterWait()

	completed, err := awaitWithTimeout(ctx, p, timeout)
	if err != nil {
		return false, fmt.Errorf("waiting for subscriptions: %w", err)
	}

	if !completed {
		return false, nil
	}

	switch p.val {
	case SubscriptionsComplete, SubscriptionsSuperseded:
		return true, nil
	case SubscriptionsError:
		msg := h.ErrorMessage()
		if latest, rerr := h.Refresh(); rerr == nil && latest.Version() == h.Version() {
			msg = latest.ErrorMessage()
		}

		return false, apperrors.NewError(ErrBadFlexibleSyncQuery, msg)
	default:
		return false, fmt.Errorf("%w: unexpected subscription state %s", ErrIllegalState, p.val)
	}
}

func (s *SubscriptionSet) refreshAfterWait() {
	if err := s.Refresh(); err != nil {
		s.logger.Warn("refreshing subscriptions after wait failed", "error", err)
	}

	if s.realm == nil {
		return
	}

	if err := s.realm.Refresh(); err != nil {
		s.logger.Warn("refreshing realm after subscription wait failed", "error", err)
	}
}

// MutableSubscriptionSet is the view handed to Update blocks.
type MutableSubscriptionSet struct {
	handle MutableSubscriptionHandle
}

// Add subscribes to query on objectType under name. An existing
// subscription with the same name is replaced unless updateExisting is
// false, in which case that is an ErrIllegalArgument error.
func (m *MutableSubscriptionSet) Add(name, objectType, query string, updateExisting bool) error {
	if !updateExisting && name != "" {
		for _, sub := range m.handle.Subscriptions() {
			if sub.Name == name && (sub.Query != query || sub.ObjectType != objectType) {
				return fmt.Errorf("%w: subscription %q already exists with a different query", ErrIllegalArgument, name)
			}
		}
	}

	m.handle.Add(Subscription{Name: name, ObjectType: objectType, Query: query})

	return nil
}

// Remove drops the named subscription and reports whether it existed.
func (m *MutableSubscriptionSet) Remove(name string) bool {
	return m.handle.Remove(name)
}

// RemoveByType drops every subscription on objectType.
func (m *MutableSubscriptionSet) RemoveByType(objectType string) int {
	return m.handle.RemoveByType(objectType)
}

// RemoveAll drops every subscription.
func (m *MutableSubscriptionSet) RemoveAll() int {
	return m.handle.RemoveAll()
}

// Subscriptions returns the pending contents of the transaction.
func (m *MutableSubscriptionSet) Subscriptions() []Subscription {
	return m.handle.Subscriptions()
}
