package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	apperrors "github.com/alexjbarnes/appsync/internal/errors"
	"github.com/golang-jwt/jwt/v5"
)

// Auth holds one user's tokens. The access token is replaced in place
// when it is refreshed; Clear wipes both tokens on logout.
type Auth struct {
	UserID string

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

// NewAuth creates the token holder for a user.
func NewAuth(userID, accessToken, refreshToken string) *Auth {
	return &Auth{UserID: userID, accessToken: accessToken, refreshToken: refreshToken}
}

// AccessToken returns the current access token.
func (a *Auth) AccessToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.accessToken
}

// RefreshToken returns the refresh token.
func (a *Auth) RefreshToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.refreshToken
}

// Valid reports whether the holder still has a refresh token.
func (a *Auth) Valid() bool {
	return a.RefreshToken() != ""
}

func (a *Auth) setAccessToken(token string) {
	a.mu.Lock()
	a.accessToken = token
	a.mu.Unlock()
}

// Clear forgets both tokens.
func (a *Auth) Clear() {
	a.mu.Lock()
	a.accessToken = ""
	a.refreshToken = ""
	a.mu.Unlock()
}

func notLoggedIn() *apperrors.AppFailure {
	return &apperrors.AppFailure{
		Category: apperrors.AppCategoryClient,
		Code:     apperrors.ClientUserNotLoggedIn,
		Message:  "user is not logged in",
	}
}

// ParseTokenClaims reads the claims of an access token without
// verifying its signature. The server is the only party that verifies.
func ParseTokenClaims(token string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}

	out := &TokenClaims{}

	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}

	if data, ok := claims["user_data"]; ok && data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encoding user_data claim: %w", err)
		}

		out.UserData = raw
	}

	return out, nil
}

// accessTokenExpired reports whether the token is a JWT that has expired
// or is about to. Opaque tokens are never considered expired.
func (c *Client) accessTokenExpired(auth *Auth) bool {
	claims, err := ParseTokenClaims(auth.AccessToken())
	if err != nil || claims.ExpiresAt.IsZero() {
		return false
	}

	return !c.now().Add(refreshSkew).Before(claims.ExpiresAt)
}

// refresh renews auth's access token. Concurrent callers for the same
// user share one request.
func (c *Client) refresh(ctx context.Context, auth *Auth) *apperrors.AppFailure {
	if !auth.Valid() {
		return notLoggedIn()
	}

	v, _, _ := c.refreshes.Do(auth.UserID, func() (any, error) {
		u, f := c.authURL(ctx, "auth/session")
		if f != nil {
			return f, nil
		}

		var resp RefreshResponse
		if _, f := c.send(ctx, request{method: http.MethodPost, url: u, bearer: auth.RefreshToken()}, &resp); f != nil {
			return f, nil
		}

		auth.setAccessToken(resp.AccessToken)
		c.logger.Debug("access token refreshed", "user_id", auth.UserID)

		if c.onRefresh != nil {
			c.onRefresh(auth.UserID, resp.AccessToken)
		}

		return (*apperrors.AppFailure)(nil), nil
	})

	f, _ := v.(*apperrors.AppFailure)

	return f
}

// authed sends r with the user's access token. An expired token is
// refreshed first, and a 401 answer triggers one refresh and one retry.
func (c *Client) authed(ctx context.Context, auth *Auth, r request, result any) *apperrors.AppFailure {
	if !auth.Valid() {
		return notLoggedIn()
	}

	if c.accessTokenExpired(auth) {
		if f := c.refresh(ctx, auth); f != nil {
			return f
		}
	}

	r.bearer = auth.AccessToken()

	status, f := c.send(ctx, r, result)
	if status != http.StatusUnauthorized {
		return f
	}

	c.logger.Debug("access token rejected, refreshing", "user_id", auth.UserID)

	if f := c.refresh(ctx, auth); f != nil {
		return f
	}

	r.bearer = auth.AccessToken()
	_, f = c.send(ctx, r, result)

	return f
}

// loginBody adds the device options to a provider login body.
func (c *Client) loginBody(creds Credentials) (json.RawMessage, *apperrors.AppFailure) {
	fields := map[string]json.RawMessage{}

	if len(creds.Body) > 0 {
		if err := json.Unmarshal(creds.Body, &fields); err != nil {
			return nil, &apperrors.AppFailure{
				Category: apperrors.AppCategoryJSON,
				Code:     apperrors.JSONMalformedJSON,
				Message:  fmt.Sprintf("credentials must be a JSON object: %v", err),
			}
		}
	}

	opts, err := json.Marshal(loginOptions{Device: deviceInfo{
		AppID:      c.appID,
		Platform:   "go",
		SDK:        sdkName,
		SDKVersion: sdkVersion,
		DeviceID:   creds.DeviceID,
	}})
	if err != nil {
		return nil, &apperrors.AppFailure{Category: apperrors.AppCategoryJSON, Code: apperrors.JSONMalformedJSON, Message: err.Error()}
	}

	fields["options"] = opts

	body, err := json.Marshal(fields)
	if err != nil {
		return nil, &apperrors.AppFailure{Category: apperrors.AppCategoryJSON, Code: apperrors.JSONMalformedJSON, Message: err.Error()}
	}

	return body, nil
}

// LogIn authenticates with creds and loads the user's profile.
func (c *Client) LogIn(ctx context.Context, creds Credentials, cb Callback[*UserSession]) {
	async(ctx, func(ctx context.Context) (*UserSession, *apperrors.AppFailure) {
		return c.logIn(ctx, creds)
	}, cb)
}

func (c *Client) logIn(ctx context.Context, creds Credentials) (*UserSession, *apperrors.AppFailure) {
	u, f := c.appURL(ctx, "auth/providers/"+url.PathEscape(creds.Provider)+"/login")
	if f != nil {
		return nil, f
	}

	body, f := c.loginBody(creds)
	if f != nil {
		return nil, f
	}

	var resp LoginResponse
	if _, f := c.send(ctx, request{method: http.MethodPost, url: u, body: body}, &resp); f != nil {
		return nil, f
	}

	auth := NewAuth(resp.UserID, resp.AccessToken, resp.RefreshToken)

	profile, f := c.profile(ctx, auth)
	if f != nil {
		return nil, f
	}

	return &UserSession{
		UserID:       resp.UserID,
		AccessToken:  auth.AccessToken(),
		RefreshToken: auth.RefreshToken(),
		DeviceID:     resp.DeviceID,
		Provider:     creds.Provider,
		Profile:      *profile,
	}, nil
}

// LinkCredentials attaches another identity to an existing user and
// returns the updated profile.
func (c *Client) LinkCredentials(ctx context.Context, auth *Auth, creds Credentials, cb Callback[*Profile]) {
	async(ctx, func(ctx context.Context) (*Profile, *apperrors.AppFailure) {
		u, f := c.appURL(ctx, "auth/providers/"+url.PathEscape(creds.Provider)+"/login?link=true")
		if f != nil {
			return nil, f
		}

		body, f := c.loginBody(creds)
		if f != nil {
			return nil, f
		}

		if f := c.authed(ctx, auth, request{method: http.MethodPost, url: u, body: body}, nil); f != nil {
			return nil, f
		}

		return c.profile(ctx, auth)
	}, cb)
}

// Profile fetches the user's profile and linked identities.
func (c *Client) Profile(ctx context.Context, auth *Auth, cb Callback[*Profile]) {
	async(ctx, func(ctx context.Context) (*Profile, *apperrors.AppFailure) {
		return c.profile(ctx, auth)
	}, cb)
}

func (c *Client) profile(ctx context.Context, auth *Auth) (*Profile, *apperrors.AppFailure) {
	u, f := c.authURL(ctx, "auth/profile")
	if f != nil {
		return nil, f
	}

	var p Profile
	if f := c.authed(ctx, auth, request{method: http.MethodGet, url: u}, &p); f != nil {
		return nil, f
	}

	if p.UserID == "" {
		p.UserID = auth.UserID
	}

	return &p, nil
}

// RefreshAccessToken forces a token refresh and returns the new token's
// claims, which carry the user's custom data.
func (c *Client) RefreshAccessToken(ctx context.Context, auth *Auth, cb Callback[*TokenClaims]) {
	async(ctx, func(ctx context.Context) (*TokenClaims, *apperrors.AppFailure) {
		if f := c.refresh(ctx, auth); f != nil {
			return nil, f
		}

		claims, err := ParseTokenClaims(auth.AccessToken())
		if err != nil {
			return nil, &apperrors.AppFailure{
				Category: apperrors.AppCategoryJSON,
				Code:     apperrors.JSONBadToken,
				Message:  err.Error(),
			}
		}

		return claims, nil
	}, cb)
}

// LogOut revokes the refresh token and clears auth. The user is logged
// out locally even if the server cannot be reached; that failure is
// only logged.
func (c *Client) LogOut(ctx context.Context, auth *Auth, cb Callback[struct{}]) {
	async(ctx, func(ctx context.Context) (struct{}, *apperrors.AppFailure) {
		if !auth.Valid() {
			return struct{}{}, nil
		}

		u, f := c.authURL(ctx, "auth/session")
		if f == nil {
			_, f = c.send(ctx, request{method: http.MethodDelete, url: u, bearer: auth.RefreshToken()}, nil)
		}

		if f != nil {
			c.logger.Warn("revoking session failed", "user_id", auth.UserID, "error", f.Message)
		}

		auth.Clear()

		return struct{}{}, nil
	}, cb)
}

// Delete removes the user from the server and clears auth.
func (c *Client) Delete(ctx context.Context, auth *Auth, cb Callback[struct{}]) {
	async(ctx, func(ctx context.Context) (struct{}, *apperrors.AppFailure) {
		u, f := c.authURL(ctx, "auth/delete")
		if f != nil {
			return struct{}{}, f
		}

		if f := c.authed(ctx, auth, request{method: http.MethodDelete, url: u}, nil); f != nil {
			return struct{}{}, f
		}

		auth.Clear()

		return struct{}{}, nil
	}, cb)
}
