package appsync

import (
	"context"
	"sync"
)

// AuthChangeType is the kind of an authentication change.
type AuthChangeType int

const (
	LoggedIn AuthChangeType = iota
	LoggedOut
	Removed
)

func (t AuthChangeType) String() string {
	switch t {
	case LoggedIn:
		return "LoggedIn"
	case LoggedOut:
		return "LoggedOut"
	case Removed:
		return "Removed"
	default:
		return "Unknown"
	}
}

// AuthChange reports a user state transition.
type AuthChange struct {
	Type AuthChangeType
	User *User
}

const defaultAuthEventBuffer = 8

// authBroadcaster fans events out to subscribers. There is no replay:
// a subscriber only sees events published after it subscribed. Publish
// never blocks; a subscriber with a full buffer makes it fail.
type authBroadcaster struct {
	buffer int

	mu     sync.Mutex
	nextID int
	subs   map[int]chan AuthChange
	closed bool
}

func newAuthBroadcaster(buffer int) *authBroadcaster {
	if buffer <= 0 {
		buffer = defaultAuthEventBuffer
	}

	return &authBroadcaster{buffer: buffer, subs: make(map[int]chan AuthChange)}
}

// subscribe returns a channel that receives events until ctx is done,
// after which it is closed. After closeAll the channel comes back
// already closed.
func (b *authBroadcaster) subscribe(ctx context.Context) <-chan AuthChange {
	ch := make(chan AuthChange, b.buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)

		return ch
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	context.AfterFunc(ctx, func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	})

	return ch
}

// publish delivers ev to every subscriber with room. It returns
// ErrAuthEventOverflow if any subscriber's buffer was full.
func (b *authBroadcaster) publish(ev AuthChange) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var overflow bool

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			overflow = true
		}
	}

	if overflow {
		return ErrAuthEventOverflow
	}

	return nil
}

// closeAll closes every subscriber channel and every later one.
func (b *authBroadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true

	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
