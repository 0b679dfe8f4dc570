package backend

import (
	"context"
	"net/http"
	"net/url"

	apperrors "github.com/alexjbarnes/appsync/internal/errors"
)

// API key routes authenticate with the refresh token, not the access
// token, so they are never retried through a refresh.

func (c *Client) apiKeyRequest(ctx context.Context, auth *Auth, method, suffix string, body, result any) *apperrors.AppFailure {
	if !auth.Valid() {
		return notLoggedIn()
	}

	u, f := c.authURL(ctx, "auth/api_keys"+suffix)
	if f != nil {
		return f
	}

	_, f = c.send(ctx, request{method: method, url: u, body: body, bearer: auth.RefreshToken()}, result)

	return f
}

func keyPath(id string) string {
	return "/" + url.PathEscape(id)
}

// CreateAPIKey creates a named key. The returned key carries its secret.
func (c *Client) CreateAPIKey(ctx context.Context, auth *Auth, name string, cb Callback[*APIKey]) {
	async(ctx, func(ctx context.Context) (*APIKey, *apperrors.AppFailure) {
		var key APIKey
		if f := c.apiKeyRequest(ctx, auth, http.MethodPost, "", createAPIKeyRequest{Name: name}, &key); f != nil {
			return nil, f
		}

		return &key, nil
	}, cb)
}

// FetchAPIKey loads a single key by id.
func (c *Client) FetchAPIKey(ctx context.Context, auth *Auth, id string, cb Callback[*APIKey]) {
	async(ctx, func(ctx context.Context) (*APIKey, *apperrors.AppFailure) {
		var key APIKey
		if f := c.apiKeyRequest(ctx, auth, http.MethodGet, keyPath(id), nil, &key); f != nil {
			return nil, f
		}

		return &key, nil
	}, cb)
}

// FetchAPIKeys lists all keys of the user.
func (c *Client) FetchAPIKeys(ctx context.Context, auth *Auth, cb Callback[[]APIKey]) {
	async(ctx, func(ctx context.Context) ([]APIKey, *apperrors.AppFailure) {
		var keys []APIKey
		if f := c.apiKeyRequest(ctx, auth, http.MethodGet, "", nil, &keys); f != nil {
			return nil, f
		}

		return keys, nil
	}, cb)
}

// DeleteAPIKey removes a key.
func (c *Client) DeleteAPIKey(ctx context.Context, auth *Auth, id string, cb Callback[struct{}]) {
	async(ctx, func(ctx context.Context) (struct{}, *apperrors.AppFailure) {
		return struct{}{}, c.apiKeyRequest(ctx, auth, http.MethodDelete, keyPath(id), nil, nil)
	}, cb)
}

// EnableAPIKey re-enables a disabled key.
func (c *Client) EnableAPIKey(ctx context.Context, auth *Auth, id string, cb Callback[struct{}]) {
	async(ctx, func(ctx context.Context) (struct{}, *apperrors.AppFailure) {
		return struct{}{}, c.apiKeyRequest(ctx, auth, http.MethodPut, keyPath(id)+"/enable", nil, nil)
	}, cb)
}

// DisableAPIKey disables a key without deleting it.
func (c *Client) DisableAPIKey(ctx context.Context, auth *Auth, id string, cb Callback[struct{}]) {
	async(ctx, func(ctx context.Context) (struct{}, *apperrors.AppFailure) {
		return struct{}{}, c.apiKeyRequest(ctx, auth, http.MethodPut, keyPath(id)+"/disable", nil, nil)
	}, cb)
}
