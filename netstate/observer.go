// Package netstate tracks device connectivity and tells interested parties
// when it changes.
package netstate

import (
	"sync"
	"sync/atomic"
)

// Listener is notified when connectivity changes.
type Listener interface {
	OnNetworkStateChanged(connected bool)
}

// ListenerFunc adapts a plain function to Listener.
type ListenerFunc func(connected bool)

// OnNetworkStateChanged calls f(connected).
func (f ListenerFunc) OnNetworkStateChanged(connected bool) {
	f(connected)
}

// ListenerID identifies a registration returned by AddListener.
type ListenerID uint64

type registration struct {
	id       ListenerID
	listener Listener
}

// Observer broadcasts connectivity transitions to registered listeners.
// Repeated notifications of the same state are dropped, so listeners only
// see real transitions. The initial state is offline.
//
// Listeners run synchronously while the registration lock is held. A
// listener must not call AddListener or RemoveListener on the same
// Observer from inside the callback; doing so deadlocks.
type Observer struct {
	online atomic.Bool
	nextID atomic.Uint64

	mu        sync.Mutex
	listeners []registration
}

// New returns an Observer in the offline state with no listeners.
func New() *Observer {
	return &Observer{}
}

// Default returns the process-wide Observer, creating it on first use.
// Components accept an *Observer so tests can supply their own.
var Default = sync.OnceValue(New)

// Online reports the last state passed to NotifyConnectionChange.
func (o *Observer) Online() bool {
	return o.online.Load()
}

// AddListener registers l and returns an id for RemoveListener.
func (o *Observer) AddListener(l Listener) ListenerID {
	id := ListenerID(o.nextID.Add(1))

	o.mu.Lock()
	o.listeners = append(o.listeners, registration{id: id, listener: l})
	o.mu.Unlock()

	return id
}

// RemoveListener drops the registration. Unknown ids are ignored.
func (o *Observer) RemoveListener(id ListenerID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i, r := range o.listeners {
		if r.id == id {
			o.listeners = append(o.listeners[:i], o.listeners[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered listeners.
func (o *Observer) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.listeners)
}

// NotifyConnectionChange records the new state and, if it differs from the
// previous one, invokes every listener in registration order.
func (o *Observer) NotifyConnectionChange(online bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.online.CompareAndSwap(!online, online) {
		return
	}

	for _, r := range o.listeners {
		r.listener.OnNetworkStateChanged(online)
	}
}
