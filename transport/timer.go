package transport

import (
	"sync/atomic"
	"time"
)

// CancellableTimer is a one-shot delayed callback. The callback runs at
// most once: either when the delay elapses (cancelled=false) or when
// Cancel wins the race (cancelled=true). If the owning transport is
// closed first the callback runs with cancelled=true.
type CancellableTimer struct {
	fn    atomic.Pointer[func(cancelled bool)]
	timer *time.Timer
	scope *scope
}

func newCancellableTimer(sc *scope, delay time.Duration, fn func(cancelled bool)) *CancellableTimer {
	t := &CancellableTimer{scope: sc}
	t.fn.Store(&fn)
	t.timer = time.AfterFunc(delay, t.fire)

	return t
}

func (t *CancellableTimer) fire() {
	if fn := t.fn.Swap(nil); fn != nil {
		t.scope.post(*fn)
	}
}

// Cancel stops the timer. The callback is invoked with cancelled=true
// unless it has already fired.
func (t *CancellableTimer) Cancel() {
	t.timer.Stop()

	if fn := t.fn.Swap(nil); fn != nil {
		cb := *fn
		t.scope.post(func(bool) { cb(true) })
	}
}
