// Package backend is the HTTP client for the app services API. Every
// public operation is asynchronous and reports its outcome once through a
// Callback, mirroring the native app handle the SDK layers above expect.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	apperrors "github.com/alexjbarnes/appsync/internal/errors"
	"github.com/alexjbarnes/appsync/internal/logging"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
)

const (
	clientAPIPath = "/api/client/v2.0"

	sdkName    = "Go"
	sdkVersion = "0.4.0"

	// refreshSkew renews access tokens slightly before they expire.
	refreshSkew = 10 * time.Second
)

// Options configures a Client.
type Options struct {
	AppID   string
	BaseURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
	Logger     *slog.Logger
	// OnAccessTokenRefreshed runs after a user's access token is renewed,
	// so the new token can be persisted.
	OnAccessTokenRefreshed func(userID, accessToken string)
	// Now defaults to time.Now. Used for token expiry checks.
	Now func() time.Time
}

// Client talks to the app services client API.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	appID      string
	onRefresh  func(userID, accessToken string)
	now        func() time.Time

	mu       sync.Mutex
	baseURL  string
	location *Location

	// refreshes collapses concurrent token refreshes for one user.
	refreshes singleflight.Group
}

// New creates a Client for one application.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		httpClient: httpClient,
		logger:     logger.With("component", "backend"),
		appID:      opts.AppID,
		onRefresh:  opts.OnAccessTokenRefreshed,
		now:        now,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
	}
}

// AppID returns the application id the client was created for.
func (c *Client) AppID() string {
	return c.appID
}

// BaseURL returns the URL used for location discovery.
func (c *Client) BaseURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.baseURL
}

// SetBaseURL switches to another deployment. The cached location is
// dropped and resolved again on the next request.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.baseURL = strings.TrimRight(baseURL, "/")
	c.location = nil
}

// ResolveLocation returns the deployment location, fetching it once.
func (c *Client) ResolveLocation(ctx context.Context, cb Callback[*Location]) {
	async(ctx, c.resolveLocation, cb)
}

func (c *Client) resolveLocation(ctx context.Context) (*Location, *apperrors.AppFailure) {
	c.mu.Lock()
	loc, base := c.location, c.baseURL
	c.mu.Unlock()

	if loc != nil {
		return loc, nil
	}

	var resp Location
	if _, f := c.send(ctx, request{
		method: http.MethodGet,
		url:    base + clientAPIPath + "/app/" + url.PathEscape(c.appID) + "/location",
	}, &resp); f != nil {
		return nil, f
	}

	if resp.Hostname == "" {
		resp.Hostname = base
	}

	resp.Hostname = strings.TrimRight(resp.Hostname, "/")
	resp.WSHostname = strings.TrimRight(resp.WSHostname, "/")

	c.mu.Lock()
	// A concurrent SetBaseURL wins over this response.
	if c.baseURL == base {
		c.location = &resp
	}
	c.mu.Unlock()

	return &resp, nil
}

// SyncURL returns the websocket URL of the sync endpoint for loc.
func (c *Client) SyncURL(loc *Location) string {
	host := loc.WSHostname
	if host == "" {
		host = strings.Replace(loc.Hostname, "http", "ws", 1)
	}

	return host + clientAPIPath + "/app/" + url.PathEscape(c.appID) + "/realm-sync"
}

// appURL builds a URL under /app/{id}/ on the resolved host.
func (c *Client) appURL(ctx context.Context, path string) (string, *apperrors.AppFailure) {
	loc, f := c.resolveLocation(ctx)
	if f != nil {
		return "", f
	}

	return loc.Hostname + clientAPIPath + "/app/" + url.PathEscape(c.appID) + "/" + path, nil
}

// authURL builds a URL for the user scoped auth routes.
func (c *Client) authURL(ctx context.Context, path string) (string, *apperrors.AppFailure) {
	loc, f := c.resolveLocation(ctx)
	if f != nil {
		return "", f
	}

	return loc.Hostname + clientAPIPath + "/" + path, nil
}

type request struct {
	method string
	url    string
	// body is marshalled to JSON. json.RawMessage is sent as is.
	body   any
	bearer string
}

// send performs one request and decodes a 2xx body into result. It
// returns the HTTP status (0 if no response arrived) alongside any
// failure, so callers can react to 401s.
func (c *Client) send(ctx context.Context, r request, result any) (int, *apperrors.AppFailure) {
	var payload []byte

	switch b := r.body.(type) {
	case nil:
	case json.RawMessage:
		payload = b
	default:
		var err error
		if payload, err = json.Marshal(b); err != nil {
			return 0, &apperrors.AppFailure{
				Category: apperrors.AppCategoryJSON,
				Code:     apperrors.JSONMalformedJSON,
				Message:  fmt.Sprintf("marshalling request body: %v", err),
			}
		}
	}

	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return 0, &apperrors.AppFailure{
			Category: apperrors.AppCategoryCustom,
			Code:     apperrors.CustomIO,
			Message:  fmt.Sprintf("creating request: %v", err),
		}
	}

	req.Header.Set("Accept", "application/json")

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if r.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+r.bearer)
	}

	c.logger.Debug("backend request", "method", r.method, "url", r.url, "body", logging.Obfuscate(r.url, string(payload)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, transportFailure(ctx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, transportFailure(ctx, err)
	}

	c.logger.Debug("backend response", "url", r.url, "status", resp.StatusCode, "body", logging.Obfuscate(r.url, string(respBody)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, responseFailure(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return resp.StatusCode, &apperrors.AppFailure{
				Category: apperrors.AppCategoryJSON,
				Code:     apperrors.JSONMalformedJSON,
				Message:  fmt.Sprintf("decoding response from %s: %v", r.url, err),
			}
		}
	}

	return resp.StatusCode, nil
}

// transportFailure describes a request that never produced a response.
func transportFailure(ctx context.Context, err error) *apperrors.AppFailure {
	if ctx.Err() != nil {
		return &apperrors.AppFailure{
			Category: apperrors.AppCategoryCustom,
			Code:     apperrors.CustomInterrupted,
			Message:  ctx.Err().Error(),
		}
	}

	return &apperrors.AppFailure{
		Category: apperrors.AppCategoryCustom,
		Code:     apperrors.CustomIO,
		Message:  err.Error(),
	}
}

// responseFailure converts an error response. Bodies carrying an
// error_code are service errors; anything else is reported by status.
func responseFailure(status int, body []byte) *apperrors.AppFailure {
	if gjson.ValidBytes(body) {
		fields := gjson.GetManyBytes(body, "error", "error_code", "link")

		if fields[1].Exists() {
			return &apperrors.AppFailure{
				Category:        apperrors.AppCategoryService,
				Code:            apperrors.ServiceCodeByName(fields[1].String()),
				Message:         fields[0].String(),
				LinkToServerLog: fields[2].String(),
			}
		}

		if fields[0].Exists() {
			return &apperrors.AppFailure{
				Category: apperrors.AppCategoryHTTP,
				Code:     status,
				Message:  fields[0].String(),
			}
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}

	return &apperrors.AppFailure{
		Category: apperrors.AppCategoryHTTP,
		Code:     status,
		Message:  msg,
	}
}
