package backend

import (
	"encoding/json"
	"time"
)

// Provider names as used in login routes.
const (
	ProviderAnonymous      = "anon-user"
	ProviderEmailPassword  = "local-userpass"
	ProviderAPIKey         = "api-key"
	ProviderApple          = "oauth2-apple"
	ProviderFacebook       = "oauth2-facebook"
	ProviderGoogle         = "oauth2-google"
	ProviderJWT            = "custom-token"
	ProviderCustomFunction = "custom-function"
)

// Credentials is a provider name plus the JSON login body for it.
type Credentials struct {
	Provider string
	Body     json.RawMessage
	// DeviceID is the device id the server assigned to an earlier login
	// on this device. Empty on first login.
	DeviceID string
}

// Location is returned from GET /app/{id}/location.
type Location struct {
	DeploymentModel string `json:"deployment_model"`
	Location        string `json:"location"`
	Hostname        string `json:"hostname"`
	WSHostname      string `json:"ws_hostname"`
}

// LoginResponse is returned from POST /auth/providers/{provider}/login.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	DeviceID     string `json:"device_id"`
}

// RefreshResponse is returned from POST /auth/session.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// Identity is one linked provider identity.
type Identity struct {
	ID           string `json:"id"`
	ProviderType string `json:"provider_type"`
}

// Profile is returned from GET /auth/profile.
type Profile struct {
	UserID     string          `json:"user_id"`
	Type       string          `json:"type"`
	Identities []Identity      `json:"identities"`
	Data       json.RawMessage `json:"data"`
}

// UserSession is the result of a login or link: tokens plus profile.
type UserSession struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	DeviceID     string
	Provider     string
	Profile      Profile
}

// APIKey is a user API key. Key is only populated on creation.
type APIKey struct {
	ID       string `json:"_id"`
	Key      string `json:"key,omitempty"`
	Name     string `json:"name"`
	Disabled bool   `json:"disabled"`
}

// createAPIKeyRequest is the payload for POST /auth/api_keys.
type createAPIKeyRequest struct {
	Name string `json:"name"`
}

// loginOptions is merged into every login body.
type loginOptions struct {
	Device deviceInfo `json:"device"`
}

type deviceInfo struct {
	AppID      string `json:"appId"`
	Platform   string `json:"platform"`
	SDK        string `json:"sdk"`
	SDKVersion string `json:"sdkVersion"`
	DeviceID   string `json:"deviceId,omitempty"`
}

// TokenClaims holds the parts of an access token the client reads.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
	UserData  json.RawMessage
}
