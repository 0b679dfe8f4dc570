package appsync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/alexjbarnes/appsync/internal/backend"
	"github.com/alexjbarnes/appsync/internal/state"
	"github.com/tidwall/gjson"
)

// UserState is the lifecycle state of a User.
type UserState int

const (
	UserLoggedOut UserState = iota
	UserLoggedIn
	UserRemoved
)

func (s UserState) String() string {
	switch s {
	case UserLoggedOut:
		return "LOGGED_OUT"
	case UserLoggedIn:
		return "LOGGED_IN"
	case UserRemoved:
		return "REMOVED"
	default:
		return "UNKNOWN"
	}
}

// Identity is a provider identity linked to a user.
type Identity struct {
	ID       string
	Provider Provider
}

// UserProfile holds the profile fields the server reports for a user.
// Fields a provider does not supply are empty.
type UserProfile struct {
	Name       string
	Email      string
	PictureURL string
	FirstName  string
	LastName   string
	Gender     string
	Birthday   string
	MinAge     int64
	MaxAge     int64
}

// User is one identity of an App. Several User values never exist for
// the same id within one App, but Equal should be used for comparison
// across Apps.
type User struct {
	app *App
	id  string

	mu    sync.Mutex
	auth  *backend.Auth
	rec   state.UserRecord
	state UserState
}

func newUser(app *App, rec state.UserRecord) *User {
	u := &User{app: app, id: rec.ID}
	u.load(rec)

	return u
}

// load replaces the user's data with rec.
func (u *User) load(rec state.UserRecord) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.rec = rec
	u.auth = backend.NewAuth(rec.ID, rec.AccessToken, rec.RefreshToken)

	u.state = UserLoggedOut
	if rec.State == state.UserLoggedIn {
		u.state = UserLoggedIn
	}
}

func (u *User) tokens() *backend.Auth {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.auth
}

// App returns the App the user belongs to.
func (u *User) App() *App { return u.app }

// ID returns the server assigned user id.
func (u *User) ID() string { return u.id }

// State returns the current lifecycle state.
func (u *User) State() UserState {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.state
}

// IsLoggedIn reports whether State is UserLoggedIn.
func (u *User) IsLoggedIn() bool {
	return u.State() == UserLoggedIn
}

// AccessToken returns the current access token, or "" when logged out.
func (u *User) AccessToken() string {
	return u.tokens().AccessToken()
}

// RefreshToken returns the refresh token, or "" when logged out.
func (u *User) RefreshToken() string {
	return u.tokens().RefreshToken()
}

// DeviceID returns the device id assigned at login.
func (u *User) DeviceID() string {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.rec.DeviceID
}

// Provider returns the provider the user last logged in with.
func (u *User) Provider() Provider {
	u.mu.Lock()
	defer u.mu.Unlock()

	return Provider(u.rec.Provider)
}

// Identities returns the identities linked to the user.
func (u *User) Identities() []Identity {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]Identity, len(u.rec.Identities))
	for i, id := range u.rec.Identities {
		out[i] = Identity{ID: id.ID, Provider: Provider(id.Provider)}
	}

	return out
}

// Profile returns the user's profile data.
func (u *User) Profile() UserProfile {
	u.mu.Lock()
	raw := u.rec.Profile
	u.mu.Unlock()

	f := gjson.GetManyBytes(raw, "name", "email", "picture_url", "first_name", "last_name", "gender", "birthday", "min_age", "max_age")

	return UserProfile{
		Name:       f[0].String(),
		Email:      f[1].String(),
		PictureURL: f[2].String(),
		FirstName:  f[3].String(),
		LastName:   f[4].String(),
		Gender:     f[5].String(),
		Birthday:   f[6].String(),
		MinAge:     f[7].Int(),
		MaxAge:     f[8].Int(),
	}
}

// CustomData returns the custom user data carried by the access token
// at the last login or refresh, or nil if there is none.
func (u *User) CustomData() json.RawMessage {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.rec.CustomData
}

// Equal reports whether u and other are the same identity of the same
// backend application.
func (u *User) Equal(other *User) bool {
	if u == nil || other == nil {
		return u == other
	}

	return u.id == other.id &&
		u.app.AppID() == other.app.AppID() &&
		u.app.BaseURL() == other.app.BaseURL()
}

func (u *User) String() string {
	return fmt.Sprintf("User(%s, %s)", u.id, u.State())
}

// APIKeys returns the API key manager for the user.
func (u *User) APIKeys() *APIKeyAuth {
	return &APIKeyAuth{user: u}
}

// touch records the user as most recently used.
func (u *User) touch() error {
	u.mu.Lock()
	u.rec.LastUsed = u.app.now().UTC()
	rec := u.rec
	u.mu.Unlock()

	if err := u.app.store.SaveUser(u.app.appID, rec); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}

	return nil
}

// transition moves the user to next and persists it. Logged out users
// keep their record without tokens; removed users are deleted.
func (u *User) transition(next UserState) error {
	u.mu.Lock()
	u.state = next
	u.auth = backend.NewAuth(u.id, "", "")
	u.rec.AccessToken = ""
	u.rec.RefreshToken = ""
	u.rec.State = state.UserLoggedOut
	rec := u.rec
	u.mu.Unlock()

	store, appID := u.app.store, u.app.appID

	if next == UserRemoved {
		u.app.mu.Lock()
		delete(u.app.users, u.id)
		u.app.mu.Unlock()

		if err := store.DeleteUser(appID, u.id); err != nil {
			return fmt.Errorf("deleting user: %w", err)
		}

		return nil
	}

	if err := store.SaveUser(appID, rec); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}

	if store.CurrentUserID(appID) == u.id {
		if err := store.SetCurrentUserID(appID, ""); err != nil {
			return fmt.Errorf("clearing current user: %w", err)
		}
	}

	return nil
}

// LogOut revokes the user's session. Anonymous users are removed
// instead, since they cannot log in again. An event is only published
// if the user was logged in.
func (u *User) LogOut(ctx context.Context) error {
	wasLoggedIn := u.IsLoggedIn()

	if _, err := bridge(ctx, func(ctx context.Context, cb backend.Callback[struct{}]) {
		u.app.client.LogOut(ctx, u.tokens(), cb)
	}, discard[struct{}]); err != nil {
		return err
	}

	if !wasLoggedIn {
		return nil
	}

	next := UserLoggedOut
	if u.Provider() == ProviderAnonymous {
		next = UserRemoved
	}

	if err := u.transition(next); err != nil {
		return err
	}

	u.app.logger.Info("user logged out", "user_id", u.id, "state", next.String())

	return u.app.reportAuthChange(u)
}

// Remove logs the user out if needed and deletes all local data about
// them. Removing a user that is not logged in publishes nothing.
func (u *User) Remove(ctx context.Context) error {
	current := u.State()
	if current == UserRemoved {
		return nil
	}

	if current == UserLoggedIn {
		if _, err := bridge(ctx, func(ctx context.Context, cb backend.Callback[struct{}]) {
			u.app.client.LogOut(ctx, u.tokens(), cb)
		}, discard[struct{}]); err != nil {
			return err
		}
	}

	if err := u.transition(UserRemoved); err != nil {
		return err
	}

	if current != UserLoggedIn {
		return nil
	}

	return u.app.reportAuthChange(u)
}

// Delete removes the user from the server and the device. The user must
// be logged in.
func (u *User) Delete(ctx context.Context) error {
	if !u.IsLoggedIn() {
		return fmt.Errorf("%w: user %s must be logged in to be deleted", ErrIllegalState, u.id)
	}

	if _, err := bridge(ctx, func(ctx context.Context, cb backend.Callback[struct{}]) {
		u.app.client.Delete(ctx, u.tokens(), cb)
	}, discard[struct{}]); err != nil {
		return err
	}

	if err := u.transition(UserRemoved); err != nil {
		return err
	}

	u.app.logger.Info("user deleted", "user_id", u.id)

	return u.app.reportAuthChange(u)
}

// LinkCredentials adds another identity to the user. It returns the
// same user with its identities updated.
func (u *User) LinkCredentials(ctx context.Context, creds Credentials) (*User, error) {
	if !u.IsLoggedIn() {
		return nil, fmt.Errorf("%w: user %s must be logged in to link credentials", ErrIllegalState, u.id)
	}

	bc, err := toBackend(creds)
	if err != nil {
		return nil, err
	}

	bc.DeviceID = u.DeviceID()

	profile, err := bridge(ctx, func(ctx context.Context, cb backend.Callback[*backend.Profile]) {
		u.app.client.LinkCredentials(ctx, u.tokens(), bc, cb)
	}, identity[*backend.Profile])
	if err != nil {
		return nil, err
	}

	u.mu.Lock()
	u.rec.Identities = toStateIdentities(profile.Identities)
	if len(profile.Data) > 0 {
		u.rec.Profile = profile.Data
	}
	u.rec.AccessToken = u.auth.AccessToken()
	rec := u.rec
	u.mu.Unlock()

	if err := u.app.store.SaveUser(u.app.appID, rec); err != nil {
		return nil, fmt.Errorf("saving user: %w", err)
	}

	return u, nil
}

// RefreshCustomData renews the access token and returns the custom
// user data it carries.
func (u *User) RefreshCustomData(ctx context.Context) (json.RawMessage, error) {
	if !u.IsLoggedIn() {
		return nil, fmt.Errorf("%w: user %s is not logged in", ErrIllegalState, u.id)
	}

	claims, err := bridge(ctx, func(ctx context.Context, cb backend.Callback[*backend.TokenClaims]) {
		u.app.client.RefreshAccessToken(ctx, u.tokens(), cb)
	}, identity[*backend.TokenClaims])
	if err != nil {
		return nil, err
	}

	u.mu.Lock()
	u.rec.CustomData = claims.UserData
	u.rec.AccessToken = u.auth.AccessToken()
	u.mu.Unlock()

	return claims.UserData, nil
}
