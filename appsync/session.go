package appsync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/alexjbarnes/appsync/internal/errors"
)

// SessionState mirrors the sync engine's session state.
type SessionState int

const (
	SessionWaitingForAccessToken SessionState = iota
	SessionActive
	SessionDying
	SessionInactive
	SessionPaused
)

func (s SessionState) String() string {
	switch s {
	case SessionWaitingForAccessToken:
		return "WAITING_FOR_ACCESS_TOKEN"
	case SessionActive:
		return "ACTIVE"
	case SessionDying:
		return "DYING"
	case SessionInactive:
		return "INACTIVE"
	case SessionPaused:
		return "PAUSED"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// ConnectionState is the state of a session's server connection.
type ConnectionState int

const (
	ConnectionDisconnected ConnectionState = iota
	ConnectionConnecting
	ConnectionConnected
)

func (s ConnectionState) String() string {
	switch s {
	case ConnectionDisconnected:
		return "DISCONNECTED"
	case ConnectionConnecting:
		return "CONNECTING"
	case ConnectionConnected:
		return "CONNECTED"
	default:
		return fmt.Sprintf("ConnectionState(%d)", int(s))
	}
}

//go:generate mockgen -source=session.go -destination=mock_session_test.go -package=appsync

// SessionHandle is the sync engine's session for one realm file.
type SessionHandle interface {
	State() SessionState
	ConnectionState() ConnectionState
	Pause()
	Resume()
	// WaitForUploadCompletion registers cb to run once every local change
	// has been uploaded, or with a failure if the session errors first.
	// The returned function unregisters cb if it has not run yet.
	WaitForUploadCompletion(cb func(failure *apperrors.SyncFailure)) (cancel func())
	// WaitForDownloadCompletion is the download counterpart.
	WaitForDownloadCompletion(cb func(failure *apperrors.SyncFailure)) (cancel func())
}

// Refresher makes the latest committed data of a realm visible to
// readers. It is implemented by the storage engine.
type Refresher interface {
	Refresh() error
}

// SyncSession is a typed view of a sync engine session. Sessions handed
// to error handlers have no realm to refresh, and waiting for transfers
// on them is an error.
type SyncSession struct {
	handle SessionHandle
	realm  Refresher
	logger *slog.Logger
}

func newSyncSession(handle SessionHandle, realm Refresher, logger *slog.Logger) *SyncSession {
	return &SyncSession{handle: handle, realm: realm, logger: logger}
}

// NewErrorHandlerSession wraps a session that is only reported to an
// error handler. UploadAllLocalChanges and DownloadAllServerChanges fail
// with ErrIllegalState on it.
func NewErrorHandlerSession(handle SessionHandle) *SyncSession {
	return &SyncSession{handle: handle, logger: slog.Default()}
}

// State returns the current session state.
func (s *SyncSession) State() SessionState {
	return s.handle.State()
}

// ConnectionState returns the current connection state.
func (s *SyncSession) ConnectionState() ConnectionState {
	return s.handle.ConnectionState()
}

// Pause stops synchronization until Resume is called.
func (s *SyncSession) Pause() {
	s.handle.Pause()
}

// Resume restarts a paused session.
func (s *SyncSession) Resume() {
	s.handle.Resume()
}

// UploadAllLocalChanges waits until every local change has been
// uploaded. It returns false if timeout elapses first, which is not an
// error, and a sync error if the session fails while waiting.
func (s *SyncSession) UploadAllLocalChanges(ctx context.Context, timeout time.Duration) (bool, error) {
	return s.waitForTransfer(ctx, timeout, "upload", s.handle.WaitForUploadCompletion)
}

// DownloadAllServerChanges waits until all server changes known at the
// time of the call have been downloaded. The realm is refreshed even on
// timeout, since part of the data may already be local.
func (s *SyncSession) DownloadAllServerChanges(ctx context.Context, timeout time.Duration) (bool, error) {
	return s.waitForTransfer(ctx, timeout, "download", s.handle.WaitForDownloadCompletion)
}

func (s *SyncSession) waitForTransfer(
	ctx context.Context,
	timeout time.Duration,
	direction string,
	register func(cb func(*apperrors.SyncFailure)) func(),
) (bool, error) {
	if s.realm == nil {
		return false, fmt.Errorf("%w: %s wait on a session without a realm", ErrIllegalState, direction)
	}

	if err := checkTimeout(timeout); err != nil {
		return false, err
	}

	p := newPromise[struct{}]()

	cancel := register(func(f *apperrors.SyncFailure) {
		if f != nil {
			p.resolve(struct{}{}, apperrors.MapSyncError(*f))
			return
		}

		p.resolve(struct{}{}, nil)
	})
	defer cancel()

	completed, err := awaitWithTimeout(ctx, p, timeout)
	if err != nil {
		return false, fmt.Errorf("waiting for %s: %w", direction, err)
	}

	if !completed && direction == "upload" {
		return false, nil
	}

	if rerr := s.realm.Refresh(); rerr != nil {
		s.logger.Warn("refreshing realm after sync wait failed", "direction", direction, "error", rerr)
	}

	return completed, nil
}

func checkTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("%w: timeout must be > 0, was %s", ErrIllegalArgument, timeout)
	}

	return nil
}

// awaitWithTimeout waits on p. Elapsing timeout is reported as
// (false, nil); a cancelled ctx as its error.
func awaitWithTimeout[T any](ctx context.Context, p *promise[T], timeout time.Duration) (bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
		return true, p.err
	case <-timer.C:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
