package transport

import "sync"

// scope runs posted callbacks one at a time, in submission order, on a
// single goroutine. After close, pending and newly posted callbacks are
// invoked with cancelled set instead of being dropped.
type scope struct {
	mu     sync.Mutex
	queue  []func(cancelled bool)
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

func newScope() *scope {
	s := &scope{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}

	go s.run()

	return s
}

func (s *scope) post(fn func(cancelled bool)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn(true)

		return
	}

	s.queue = append(s.queue, fn)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *scope) run() {
	defer close(s.done)

	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}

		if len(s.queue) == 0 {
			s.mu.Unlock()
			<-s.wake

			continue
		}

		fn := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		fn(false)
	}
}

// close stops the scope and cancels everything still queued. It does not
// wait for a callback that is already running.
func (s *scope) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.closed = true
	pending := s.queue
	s.queue = nil
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}

	for _, fn := range pending {
		fn(true)
	}
}
