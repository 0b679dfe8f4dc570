package appsync

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/alexjbarnes/appsync/internal/state"
)

// SubscriptionStore keeps a realm's subscription set versions in the
// metadata database. It implements SubscriptionHandle for sync engines
// that do not track subscriptions themselves; the engine reports server
// progress through SetState.
type SubscriptionStore struct {
	st        *state.State
	realmPath string
	logger    *slog.Logger
	now       func() time.Time

	mu          sync.Mutex
	mutableOpen bool
	nextWaiter  int
	waiters     map[int]stateWaiter
}

type stateWaiter struct {
	version int64
	target  SubscriptionSetState
	cb      func(SubscriptionSetState)
}

// NewSubscriptionStore opens the store for realmPath. A realm without
// any committed set starts with an empty version 0 that is pending.
func NewSubscriptionStore(st *state.State, realmPath string, logger *slog.Logger) (*SubscriptionStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &SubscriptionStore{
		st:        st,
		realmPath: realmPath,
		logger:    logger.With("component", "subscriptions"),
		now:       time.Now,
		waiters:   make(map[int]stateWaiter),
	}

	latest, err := st.LatestSubscriptionSet(realmPath)
	if err != nil {
		return nil, fmt.Errorf("loading subscription sets: %w", err)
	}

	if latest == nil {
		initial := state.SubscriptionSnapshot{
			Version:       0,
			State:         SubscriptionsPending.String(),
			Subscriptions: []state.Subscription{},
		}

		if err := st.SaveSubscriptionSet(realmPath, initial); err != nil {
			return nil, fmt.Errorf("creating initial subscription set: %w", err)
		}
	}

	return s, nil
}

// RealmPath returns the realm file the store belongs to.
func (s *SubscriptionStore) RealmPath() string {
	return s.realmPath
}

// Latest returns the newest committed version.
func (s *SubscriptionStore) Latest() (SubscriptionHandle, error) {
	snap, err := s.st.LatestSubscriptionSet(s.realmPath)
	if err != nil {
		return nil, fmt.Errorf("loading latest subscription set: %w", err)
	}

	if snap == nil {
		return nil, fmt.Errorf("%w: no subscription set for %s", ErrIllegalState, s.realmPath)
	}

	return &storedSet{store: s, snap: *snap}, nil
}

// Set returns a SubscriptionSet on the latest version with no realm to
// refresh.
func (s *SubscriptionStore) Set() (*SubscriptionSet, error) {
	h, err := s.Latest()
	if err != nil {
		return nil, err
	}

	return newSubscriptionSet(h, nil, s.logger), nil
}

// SetState records the server's progress for version and notifies
// waiters. When a version completes, older versions are superseded and
// pruned.
func (s *SubscriptionStore) SetState(version int64, newState SubscriptionSetState, errMsg string) error {
	snap, err := s.st.SubscriptionSet(s.realmPath, version)
	if err != nil {
		return fmt.Errorf("loading subscription set %d: %w", version, err)
	}

	if snap == nil {
		return fmt.Errorf("%w: unknown subscription set version %d", ErrIllegalArgument, version)
	}

	snap.State = newState.String()
	snap.ErrorMessage = ""

	if newState == SubscriptionsError {
		snap.ErrorMessage = errMsg
	}

	if err := s.st.SaveSubscriptionSet(s.realmPath, *snap); err != nil {
		return fmt.Errorf("saving subscription set %d: %w", version, err)
	}

	if newState == SubscriptionsComplete {
		if err := s.st.PruneSubscriptionSets(s.realmPath, version); err != nil {
			s.logger.Warn("pruning superseded subscription sets failed", "error", err)
		}
	}

	s.logger.Debug("subscription set state changed", "version", version, "state", newState.String())
	s.notify(version, newState)

	return nil
}

// notify runs the callbacks of waiters satisfied by version reaching
// newState. Waiters on older versions are superseded by a completion.
func (s *SubscriptionStore) notify(version int64, newState SubscriptionSetState) {
	type firing struct {
		cb    func(SubscriptionSetState)
		state SubscriptionSetState
	}

	var fire []firing

	s.mu.Lock()
	for id, w := range s.waiters {
		switch {
		case w.version == version && (newState == w.target || newState.terminal()):
			fire = append(fire, firing{w.cb, newState})
		case w.version < version && newState == SubscriptionsComplete:
			fire = append(fire, firing{w.cb, SubscriptionsSuperseded})
		default:
			continue
		}

		delete(s.waiters, id)
	}
	s.mu.Unlock()

	for _, f := range fire {
		f.cb(f.state)
	}
}

func (s *SubscriptionStore) onStateChange(version int64, target SubscriptionSetState, cb func(SubscriptionSetState)) func() {
	s.mu.Lock()
	id := s.nextWaiter
	s.nextWaiter++
	s.waiters[id] = stateWaiter{version: version, target: target, cb: cb}
	s.mu.Unlock()

	unregister := func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()

		_, pending := s.waiters[id]
		delete(s.waiters, id)

		return pending
	}

	// The version may already be past target. A pruned version has been
	// superseded by a completed one.
	current := SubscriptionsSuperseded

	snap, err := s.st.SubscriptionSet(s.realmPath, version)
	if err != nil {
		s.logger.Warn("reading subscription set state failed", "version", version, "error", err)
		return func() { unregister() }
	}

	if snap != nil {
		current = parseSubscriptionSetState(snap.State)
	}

	if (current == target || current.terminal()) && unregister() {
		cb(current)
	}

	return func() { unregister() }
}

func (s *SubscriptionStore) beginMutation() (MutableSubscriptionHandle, error) {
	s.mu.Lock()
	if s.mutableOpen {
		s.mu.Unlock()
		return nil, ErrMutableSetOpen
	}

	s.mutableOpen = true
	s.mu.Unlock()

	latest, err := s.st.LatestSubscriptionSet(s.realmPath)
	if err == nil && latest == nil {
		err = fmt.Errorf("%w: no subscription set for %s", ErrIllegalState, s.realmPath)
	}

	if err != nil {
		s.release()
		return nil, fmt.Errorf("loading latest subscription set: %w", err)
	}

	return &storedMutation{
		store: s,
		base:  latest.Version,
		subs:  slices.Clone(latest.Subscriptions),
	}, nil
}

func (s *SubscriptionStore) release() {
	s.mu.Lock()
	s.mutableOpen = false
	s.mu.Unlock()
}

// storedSet is one immutable version read from the store.
type storedSet struct {
	store *SubscriptionStore
	snap  state.SubscriptionSnapshot
}

func (h *storedSet) Version() int64 { return h.snap.Version }

func (h *storedSet) State() SubscriptionSetState {
	return parseSubscriptionSetState(h.snap.State)
}

func (h *storedSet) ErrorMessage() string { return h.snap.ErrorMessage }

func (h *storedSet) Subscriptions() []Subscription {
	return fromStored(h.snap.Subscriptions)
}

func (h *storedSet) BeginMutation() (MutableSubscriptionHandle, error) {
	return h.store.beginMutation()
}

func (h *storedSet) Refresh() (SubscriptionHandle, error) {
	return h.store.Latest()
}

func (h *storedSet) OnStateChange(target SubscriptionSetState, cb func(SubscriptionSetState)) func() {
	return h.store.onStateChange(h.snap.Version, target, cb)
}

// storedMutation is the single open transaction of a store.
type storedMutation struct {
	store    *SubscriptionStore
	base     int64
	subs     []state.Subscription
	released bool
}

func (m *storedMutation) Add(sub Subscription) bool {
	now := m.store.now().UTC()

	for i, existing := range m.subs {
		sameName := sub.Name != "" && existing.Name == sub.Name
		sameQuery := sub.Name == "" && existing.Name == "" &&
			existing.ObjectClass == sub.ObjectType && existing.Query == sub.Query

		if sameName || sameQuery {
			m.subs[i].ObjectClass = sub.ObjectType
			m.subs[i].Query = sub.Query
			m.subs[i].UpdatedAt = now

			return false
		}
	}

	m.subs = append(m.subs, state.Subscription{
		Name:        sub.Name,
		ObjectClass: sub.ObjectType,
		Query:       sub.Query,
		CreatedAt:   now,
		UpdatedAt:   now,
	})

	return true
}

func (m *storedMutation) Remove(name string) bool {
	n := len(m.subs)
	m.subs = slices.DeleteFunc(m.subs, func(s state.Subscription) bool { return s.Name == name })

	return len(m.subs) != n
}

func (m *storedMutation) RemoveByType(objectType string) int {
	n := len(m.subs)
	m.subs = slices.DeleteFunc(m.subs, func(s state.Subscription) bool { return s.ObjectClass == objectType })

	return n - len(m.subs)
}

func (m *storedMutation) RemoveAll() int {
	n := len(m.subs)
	m.subs = m.subs[:0]

	return n
}

func (m *storedMutation) Subscriptions() []Subscription {
	return fromStored(m.subs)
}

func (m *storedMutation) Commit() (SubscriptionHandle, error) {
	if m.released {
		return nil, fmt.Errorf("%w: subscription transaction already released", ErrIllegalState)
	}

	latest, err := m.store.st.LatestSubscriptionSet(m.store.realmPath)
	if err != nil {
		return nil, fmt.Errorf("loading latest subscription set: %w", err)
	}

	version := m.base + 1
	if latest != nil && latest.Version >= version {
		version = latest.Version + 1
	}

	snap := state.SubscriptionSnapshot{
		Version:       version,
		State:         SubscriptionsPending.String(),
		Subscriptions: slices.Clone(m.subs),
	}

	if err := m.store.st.SaveSubscriptionSet(m.store.realmPath, snap); err != nil {
		return nil, fmt.Errorf("saving subscription set %d: %w", version, err)
	}

	return &storedSet{store: m.store, snap: snap}, nil
}

func (m *storedMutation) Release() {
	if m.released {
		return
	}

	m.released = true
	m.store.release()
}

func fromStored(subs []state.Subscription) []Subscription {
	out := make([]Subscription, len(subs))
	for i, s := range subs {
		out[i] = Subscription{
			Name:       s.Name,
			ObjectType: s.ObjectClass,
			Query:      s.Query,
			CreatedAt:  s.CreatedAt,
			UpdatedAt:  s.UpdatedAt,
		}
	}

	return out
}
