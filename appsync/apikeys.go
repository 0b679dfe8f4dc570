package appsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexjbarnes/appsync/internal/backend"
	apperrors "github.com/alexjbarnes/appsync/internal/errors"
)

// UserAPIKey is an API key belonging to a user. Value is only set on
// the key returned by Create.
type UserAPIKey struct {
	ID      string
	Value   string
	Name    string
	Enabled bool
}

func fromBackendKey(k backend.APIKey) UserAPIKey {
	return UserAPIKey{ID: k.ID, Value: k.Key, Name: k.Name, Enabled: !k.Disabled}
}

// APIKeyAuth manages the API keys of one user.
type APIKeyAuth struct {
	user *User
}

func isAPIKeyNotFound(err error) bool {
	var e *apperrors.Error

	return errors.As(err, &e) &&
		e.Category == apperrors.AppCategoryService.String() &&
		e.Code == apperrors.ServiceAPIKeyNotFound
}

// Create makes a new enabled key. name must not be empty.
func (k *APIKeyAuth) Create(ctx context.Context, name string) (*UserAPIKey, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: API key name must not be empty", ErrIllegalArgument)
	}

	return bridge(ctx, func(ctx context.Context, cb backend.Callback[*backend.APIKey]) {
		k.user.app.client.CreateAPIKey(ctx, k.user.tokens(), name, cb)
	}, func(key *backend.APIKey) (*UserAPIKey, error) {
		out := fromBackendKey(*key)
		return &out, nil
	})
}

// Fetch returns the key with id, or nil if there is no such key.
func (k *APIKeyAuth) Fetch(ctx context.Context, id string) (*UserAPIKey, error) {
	key, err := bridge(ctx, func(ctx context.Context, cb backend.Callback[*backend.APIKey]) {
		k.user.app.client.FetchAPIKey(ctx, k.user.tokens(), id, cb)
	}, func(key *backend.APIKey) (*UserAPIKey, error) {
		out := fromBackendKey(*key)
		return &out, nil
	})
	if isAPIKeyNotFound(err) {
		return nil, nil
	}

	return key, err
}

// FetchAll returns every key of the user.
func (k *APIKeyAuth) FetchAll(ctx context.Context) ([]UserAPIKey, error) {
	return bridge(ctx, func(ctx context.Context, cb backend.Callback[[]backend.APIKey]) {
		k.user.app.client.FetchAPIKeys(ctx, k.user.tokens(), cb)
	}, func(keys []backend.APIKey) ([]UserAPIKey, error) {
		out := make([]UserAPIKey, len(keys))
		for i, key := range keys {
			out[i] = fromBackendKey(key)
		}

		return out, nil
	})
}

// Delete removes the key. Deleting a key that does not exist succeeds.
func (k *APIKeyAuth) Delete(ctx context.Context, id string) error {
	_, err := bridge(ctx, func(ctx context.Context, cb backend.Callback[struct{}]) {
		k.user.app.client.DeleteAPIKey(ctx, k.user.tokens(), id, cb)
	}, discard[struct{}])
	if isAPIKeyNotFound(err) {
		return nil
	}

	return err
}

// Enable re-enables the key. An unknown id is ErrIllegalArgument.
func (k *APIKeyAuth) Enable(ctx context.Context, id string) error {
	_, err := bridge(ctx, func(ctx context.Context, cb backend.Callback[struct{}]) {
		k.user.app.client.EnableAPIKey(ctx, k.user.tokens(), id, cb)
	}, discard[struct{}])

	return notFoundAsIllegalArgument(err, id)
}

// Disable disables the key. An unknown id is ErrIllegalArgument.
func (k *APIKeyAuth) Disable(ctx context.Context, id string) error {
	_, err := bridge(ctx, func(ctx context.Context, cb backend.Callback[struct{}]) {
		k.user.app.client.DisableAPIKey(ctx, k.user.tokens(), id, cb)
	}, discard[struct{}])

	return notFoundAsIllegalArgument(err, id)
}

func notFoundAsIllegalArgument(err error, id string) error {
	if isAPIKeyNotFound(err) {
		return fmt.Errorf("%w: API key with id %s not found", ErrIllegalArgument, id)
	}

	return err
}
