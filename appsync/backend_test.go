package appsync

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alexjbarnes/appsync/internal/backend"
	"github.com/alexjbarnes/appsync/netstate"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const testAppID = "test-app"

// fakeBackend serves the client API for one app. User ids are derived
// from the credentials so tests can predict them. Access tokens are
// JWTs whose subject is the user id.
type fakeBackend struct {
	*httptest.Server
	mux *http.ServeMux

	mu        sync.Mutex
	anonCount int
	refreshes map[string]int
	linked    map[string][]string
	keys      map[string]backend.APIKey
	nextKey   int
	deviceIDs []string

	logouts atomic.Int32
	deletes atomic.Int32
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	fb := &fakeBackend{
		mux:       http.NewServeMux(),
		refreshes: make(map[string]int),
		linked:    make(map[string][]string),
		keys:      make(map[string]backend.APIKey),
	}
	fb.Server = httptest.NewServer(fb.mux)
	t.Cleanup(fb.Close)

	const api = "/api/client/v2.0/"

	fb.mux.HandleFunc("GET "+api+"app/"+testAppID+"/location", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, backend.Location{
			Hostname:   fb.URL,
			WSHostname: "ws" + strings.TrimPrefix(fb.URL, "http"),
		})
	})
	fb.mux.HandleFunc("POST "+api+"app/"+testAppID+"/auth/providers/{provider}/login", fb.login)
	fb.mux.HandleFunc("GET "+api+"auth/profile", fb.profile)
	fb.mux.HandleFunc("POST "+api+"auth/session", fb.refresh)
	fb.mux.HandleFunc("DELETE "+api+"auth/session", func(w http.ResponseWriter, _ *http.Request) {
		fb.logouts.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	fb.mux.HandleFunc("DELETE "+api+"auth/delete", func(w http.ResponseWriter, r *http.Request) {
		if fb.userFromAccess(r) == "" {
			writeServiceError(w, http.StatusUnauthorized, "InvalidSession", "invalid session")
			return
		}

		fb.deletes.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	fb.mux.HandleFunc("POST "+api+"app/"+testAppID+"/functions/call", fb.callFunction)
	fb.mux.HandleFunc("POST "+api+"auth/api_keys", fb.createKey)
	fb.mux.HandleFunc("GET "+api+"auth/api_keys", fb.listKeys)
	fb.mux.HandleFunc("GET "+api+"auth/api_keys/{id}", fb.keyAction)
	fb.mux.HandleFunc("DELETE "+api+"auth/api_keys/{id}", fb.keyAction)
	fb.mux.HandleFunc("PUT "+api+"auth/api_keys/{id}/{action}", fb.keyAction)

	return fb
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeServiceError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "error_code": code})
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func accessToken(userID string, userData map[string]any) string {
	claims := jwt.MapClaims{"sub": userID}
	if userData != nil {
		claims["user_data"] = userData
	}

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}

	return s
}

func (fb *fakeBackend) userFromAccess(r *http.Request) string {
	claims, err := backend.ParseTokenClaims(bearer(r))
	if err != nil {
		return ""
	}

	return claims.Subject
}

func (fb *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	provider := r.PathValue("provider")
	deviceID := gjson.GetBytes(body, "options.device.deviceId").String()

	fb.mu.Lock()
	fb.deviceIDs = append(fb.deviceIDs, deviceID)
	fb.mu.Unlock()

	var userID string

	switch provider {
	case backend.ProviderAnonymous:
		fb.mu.Lock()
		fb.anonCount++
		userID = fmt.Sprintf("anon-%d", fb.anonCount)
		fb.mu.Unlock()
	case backend.ProviderEmailPassword:
		if gjson.GetBytes(body, "password").String() != "hunter2" {
			writeServiceError(w, http.StatusUnauthorized, "InvalidPassword", "invalid username/password")
			return
		}

		userID = "user-" + gjson.GetBytes(body, "username").String()
	case backend.ProviderCustomFunction:
		userID = "fn-" + gjson.GetBytes(body, "id").String()
	default:
		userID = provider + "-user"
	}

	if r.URL.Query().Get("link") == "true" {
		linked := fb.userFromAccess(r)
		if strings.HasPrefix(userID, "user-taken") {
			writeServiceError(w, http.StatusBadRequest, "InvalidSession", "a user already exists with the specified provider")
			return
		}

		fb.mu.Lock()
		fb.linked[linked] = append(fb.linked[linked], provider)
		fb.mu.Unlock()

		writeJSON(w, http.StatusOK, backend.LoginResponse{AccessToken: accessToken(linked, nil), UserID: linked})

		return
	}

	writeJSON(w, http.StatusOK, backend.LoginResponse{
		AccessToken:  accessToken(userID, map[string]any{"plan": "free"}),
		RefreshToken: "refresh-" + userID,
		UserID:       userID,
		DeviceID:     cmp.Or(deviceID, "device-"+userID),
	})
}

// sentDeviceIDs returns the device id of every login request in order.
func (fb *fakeBackend) sentDeviceIDs() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	return append([]string(nil), fb.deviceIDs...)
}

// callFunction implements "sum", which adds its numeric arguments,
// "whoami", which returns the caller's id, and "fail", which throws.
func (fb *fakeBackend) callFunction(w http.ResponseWriter, r *http.Request) {
	userID := fb.userFromAccess(r)
	if userID == "" {
		writeServiceError(w, http.StatusUnauthorized, "InvalidSession", "invalid session")
		return
	}

	body, _ := io.ReadAll(r.Body)

	switch name := gjson.GetBytes(body, "name").String(); name {
	case "sum":
		var total float64
		for _, arg := range gjson.GetBytes(body, "arguments").Array() {
			total += arg.Float()
		}

		writeJSON(w, http.StatusOK, total)
	case "whoami":
		writeJSON(w, http.StatusOK, map[string]string{"user_id": userID})
	case "fail":
		writeServiceError(w, http.StatusBadRequest, "FunctionExecutionError", "boom")
	default:
		writeServiceError(w, http.StatusNotFound, "FunctionNotFound", "function not found: '"+name+"'")
	}
}

func (fb *fakeBackend) profile(w http.ResponseWriter, r *http.Request) {
	userID := fb.userFromAccess(r)
	if userID == "" {
		writeServiceError(w, http.StatusUnauthorized, "InvalidSession", "invalid session")
		return
	}

	identities := []map[string]string{{"id": "ident-" + userID, "provider_type": backend.ProviderEmailPassword}}
	if strings.HasPrefix(userID, "anon-") {
		identities[0]["provider_type"] = backend.ProviderAnonymous
	}

	fb.mu.Lock()
	for i, provider := range fb.linked[userID] {
		identities = append(identities, map[string]string{"id": fmt.Sprintf("linked-%d", i), "provider_type": provider})
	}
	fb.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":    userID,
		"identities": identities,
		"data":       map[string]any{"email": strings.TrimPrefix(userID, "user-"), "name": "Ada", "min_age": 18},
	})
}

func (fb *fakeBackend) refresh(w http.ResponseWriter, r *http.Request) {
	userID, ok := strings.CutPrefix(bearer(r), "refresh-")
	if !ok {
		writeServiceError(w, http.StatusUnauthorized, "InvalidSession", "invalid refresh token")
		return
	}

	fb.mu.Lock()
	fb.refreshes[userID]++
	n := fb.refreshes[userID]
	fb.mu.Unlock()

	writeJSON(w, http.StatusCreated, backend.RefreshResponse{
		AccessToken: accessToken(userID, map[string]any{"plan": "pro", "refreshes": n}),
	})
}

func (fb *fakeBackend) createKey(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	fb.mu.Lock()
	fb.nextKey++
	key := backend.APIKey{ID: fmt.Sprintf("key-%d", fb.nextKey), Key: "secret", Name: gjson.GetBytes(body, "name").String()}
	fb.keys[key.ID] = backend.APIKey{ID: key.ID, Name: key.Name}
	fb.mu.Unlock()

	writeJSON(w, http.StatusCreated, key)
}

func (fb *fakeBackend) listKeys(w http.ResponseWriter, _ *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	keys := make([]backend.APIKey, 0, len(fb.keys))
	for i := 1; i <= fb.nextKey; i++ {
		if k, ok := fb.keys[fmt.Sprintf("key-%d", i)]; ok {
			keys = append(keys, k)
		}
	}

	writeJSON(w, http.StatusOK, keys)
}

func (fb *fakeBackend) keyAction(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	id := r.PathValue("id")

	key, ok := fb.keys[id]
	if !ok {
		writeServiceError(w, http.StatusNotFound, "APIKeyNotFound", "API key not found")
		return
	}

	switch {
	case r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, key)
		return
	case r.Method == http.MethodDelete:
		delete(fb.keys, id)
	case r.PathValue("action") == "enable":
		key.Disabled = false
		fb.keys[id] = key
	case r.PathValue("action") == "disable":
		key.Disabled = true
		fb.keys[id] = key
	}

	w.WriteHeader(http.StatusNoContent)
}

// newTestApp creates an App against fb with a private observer and a
// state directory that outlives the App, so tests can reopen it.
func newTestApp(t *testing.T, fb *fakeBackend, stateDir string, opts ...Option) *App {
	t.Helper()

	opts = append([]Option{
		WithNetworkObserver(netstate.New()),
		WithHTTPClient(fb.Client()),
	}, opts...)

	a, err := New(Config{
		AppID:    testAppID,
		BaseURL:  fb.URL,
		StateDir: stateDir,
		Logger:   slog.New(slog.DiscardHandler),
	}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return a
}
