package errors

import "errors"

// Client errors raised locally before any request reaches the server.
var (
	ErrAppClosed         = errors.New("app has been closed")
	ErrNotLoggedIn       = errors.New("user is not logged in")
	ErrAuthEventOverflow = errors.New("authentication event buffer is full")
	ErrNoSyncEngine      = errors.New("no sync engine attached")
	ErrMutableSetOpen    = errors.New("a mutable subscription set is already open")
)

// IsTransient reports whether err is safe to retry, which is the case
// for everything mapped to ConnectionError.
func IsTransient(err error) bool {
	return errors.Is(err, ErrConnection)
}
