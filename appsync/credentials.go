package appsync

import (
	"encoding/json"
	"fmt"

	"github.com/alexjbarnes/appsync/internal/backend"
	"github.com/tidwall/gjson"
)

// Provider identifies an authentication provider.
type Provider string

const (
	ProviderAnonymous      Provider = backend.ProviderAnonymous
	ProviderEmailPassword  Provider = backend.ProviderEmailPassword
	ProviderAPIKey         Provider = backend.ProviderAPIKey
	ProviderApple          Provider = backend.ProviderApple
	ProviderFacebook       Provider = backend.ProviderFacebook
	ProviderGoogle         Provider = backend.ProviderGoogle
	ProviderJWT            Provider = backend.ProviderJWT
	ProviderCustomFunction Provider = backend.ProviderCustomFunction
)

// GoogleAuthType selects how a Google token is interpreted.
type GoogleAuthType int

const (
	GoogleIDToken GoogleAuthType = iota
	GoogleAuthCode
)

// Credentials is one of the fixed set of login methods. Values are
// built with the constructors in this file and cannot be implemented
// outside the package.
type Credentials interface {
	Provider() Provider
	payload() (json.RawMessage, error)
}

type anonymousCredentials struct {
	reuseExisting bool
}

type emailPasswordCredentials struct {
	email, password string
}

type apiKeyCredentials struct {
	key string
}

type tokenCredentials struct {
	provider Provider
	field    string
	token    string
}

type customFunctionCredentials struct {
	body json.RawMessage
}

// Anonymous logs in as an anonymous user. With reuseExisting, a logged
// in anonymous user is returned instead of creating a new one.
func Anonymous(reuseExisting bool) Credentials {
	return anonymousCredentials{reuseExisting: reuseExisting}
}

// EmailPassword logs in with the email/password provider.
func EmailPassword(email, password string) Credentials {
	return emailPasswordCredentials{email: email, password: password}
}

// APIKey logs in with a user or server API key.
func APIKey(key string) Credentials {
	return apiKeyCredentials{key: key}
}

// Apple logs in with a Sign in with Apple id token.
func Apple(idToken string) Credentials {
	return tokenCredentials{provider: ProviderApple, field: "id_token", token: idToken}
}

// Facebook logs in with a Facebook access token.
func Facebook(accessToken string) Credentials {
	return tokenCredentials{provider: ProviderFacebook, field: "accessToken", token: accessToken}
}

// Google logs in with a Google id token or auth code.
func Google(token string, typ GoogleAuthType) Credentials {
	field := "id_token"
	if typ == GoogleAuthCode {
		field = "authCode"
	}

	return tokenCredentials{provider: ProviderGoogle, field: field, token: token}
}

// JWT logs in with a custom JWT.
func JWT(token string) Credentials {
	return tokenCredentials{provider: ProviderJWT, field: "token", token: token}
}

// CustomFunction logs in through the custom function provider. payload
// is encoded as JSON and must be a document: strings, numbers, arrays
// and null are rejected with ErrIllegalArgument. json.RawMessage and
// []byte values are used as is.
func CustomFunction(payload any) (Credentials, error) {
	var raw []byte

	switch p := payload.(type) {
	case json.RawMessage:
		raw = p
	case []byte:
		raw = p
	default:
		var err error
		if raw, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("%w: encoding custom function payload: %v", ErrIllegalArgument, err)
		}
	}

	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return nil, fmt.Errorf("%w: custom function payload must be a JSON object", ErrIllegalArgument)
	}

	return customFunctionCredentials{body: json.RawMessage(raw)}, nil
}

func (anonymousCredentials) Provider() Provider      { return ProviderAnonymous }
func (emailPasswordCredentials) Provider() Provider  { return ProviderEmailPassword }
func (apiKeyCredentials) Provider() Provider         { return ProviderAPIKey }
func (c tokenCredentials) Provider() Provider        { return c.provider }
func (customFunctionCredentials) Provider() Provider { return ProviderCustomFunction }

func (anonymousCredentials) payload() (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (c emailPasswordCredentials) payload() (json.RawMessage, error) {
	return json.Marshal(map[string]string{"username": c.email, "password": c.password})
}

func (c apiKeyCredentials) payload() (json.RawMessage, error) {
	return json.Marshal(map[string]string{"key": c.key})
}

func (c tokenCredentials) payload() (json.RawMessage, error) {
	return json.Marshal(map[string]string{c.field: c.token})
}

func (c customFunctionCredentials) payload() (json.RawMessage, error) {
	return c.body, nil
}

// toBackend converts creds for the HTTP client.
func toBackend(creds Credentials) (backend.Credentials, error) {
	body, err := creds.payload()
	if err != nil {
		return backend.Credentials{}, fmt.Errorf("encoding credentials: %w", err)
	}

	return backend.Credentials{Provider: string(creds.Provider()), Body: body}, nil
}
