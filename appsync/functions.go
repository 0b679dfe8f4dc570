package appsync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexjbarnes/appsync/internal/backend"
)

// Functions calls server functions as a user.
type Functions struct {
	user *User
}

// Functions returns the function caller for u.
func (u *User) Functions() *Functions {
	return &Functions{user: u}
}

// Call runs the named function with args encoded as a JSON array and
// returns its raw JSON result. Failures inside the function surface as
// ErrFunctionExecution.
func (f *Functions) Call(ctx context.Context, name string, args ...any) (json.RawMessage, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: function name is empty", ErrIllegalArgument)
	}

	if args == nil {
		args = []any{}
	}

	encoded, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding arguments of %s: %v", ErrIllegalArgument, name, err)
	}

	return bridge(ctx, func(ctx context.Context, cb backend.Callback[json.RawMessage]) {
		f.user.app.client.CallFunction(ctx, f.user.tokens(), name, encoded, cb)
	}, identity[json.RawMessage])
}

// CallFunction calls the named function and decodes its result into T.
func CallFunction[T any](ctx context.Context, f *Functions, name string, args ...any) (T, error) {
	var out T

	raw, err := f.Call(ctx, name, args...)
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decoding result of %s: %w", name, err)
	}

	return out, nil
}
