package backend

import (
	"context"

	apperrors "github.com/alexjbarnes/appsync/internal/errors"
)

// Callback receives the outcome of an asynchronous operation. It is
// called exactly once; failure is nil on success.
type Callback[T any] func(result T, failure *apperrors.AppFailure)

// async runs op on its own goroutine and reports the outcome to cb.
func async[T any](ctx context.Context, op func(context.Context) (T, *apperrors.AppFailure), cb Callback[T]) {
	go func() {
		cb(op(ctx))
	}()
}
