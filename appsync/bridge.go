package appsync

import (
	"context"
	"sync"

	"github.com/alexjbarnes/appsync/internal/backend"
	apperrors "github.com/alexjbarnes/appsync/internal/errors"
)

// promise is a one-shot result slot. The first resolve wins; later calls
// are ignored and reported as such.
type promise[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

func newPromise[T any]() *promise[T] {
	return &promise[T]{done: make(chan struct{})}
}

// resolve stores the result. It returns false if one was already stored.
func (p *promise[T]) resolve(v T, err error) bool {
	resolved := false

	p.once.Do(func() {
		p.val, p.err = v, err
		resolved = true
		close(p.done)
	})

	return resolved
}

// wait blocks until the promise resolves or ctx is done.
func (p *promise[T]) wait(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.val, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// bridge runs a callback style backend operation and waits for it. The
// result is passed through transform; a failure is mapped to a typed
// error. Returning early cancels the context handed to start, which
// aborts the underlying request, and a callback arriving afterwards is
// dropped.
func bridge[T, R any](
	ctx context.Context,
	start func(ctx context.Context, cb backend.Callback[T]),
	transform func(T) (R, error),
) (R, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := newPromise[R]()

	start(ctx, func(v T, f *apperrors.AppFailure) {
		if f != nil {
			var zero R
			p.resolve(zero, apperrors.MapAppError(*f))

			return
		}

		r, err := transform(v)
		p.resolve(r, err)
	})

	return p.wait(ctx)
}

// discard is a transform for operations without a meaningful result.
func discard[T any](T) (struct{}, error) {
	return struct{}{}, nil
}

// identity passes the backend result through unchanged.
func identity[T any](v T) (T, error) {
	return v, nil
}
