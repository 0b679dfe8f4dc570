package logging

import (
	"strings"

	"github.com/tidwall/gjson"
)

const redacted = `"***"`

// Routes whose request or response bodies carry secrets, keyed by the
// path suffix after /api/client/v2.0/app/<id>/.
var secretKeysByRoute = map[string][]string{
	"auth/providers/local-userpass/register": {"password"},
	"auth/providers/local-userpass/login":    {"password", "access_token", "refresh_token"},
	"auth/api_keys":                          {"key"},
	"auth/providers/api-key/login":           {"key", "access_token", "refresh_token"},
	"auth/providers/oauth2-apple/login":      {"id_token", "access_token", "refresh_token"},
	"auth/providers/oauth2-facebook/login":   {"accessToken", "access_token", "refresh_token"},
	"auth/providers/oauth2-google/login":     {"authCode", "id_token", "access_token", "refresh_token"},
	"auth/providers/custom-token/login":      {"token", "access_token", "refresh_token"},
	"auth/providers/anon-user/login":         {"access_token", "refresh_token"},
	"auth/providers/custom-function/login":   {"access_token", "refresh_token"},
	"auth/session":                           {"access_token"},
}

const functionCallRoute = "functions/call"

// Obfuscate hides credentials and tokens in an HTTP body before it is
// logged. Only top-level JSON string values of the known secret keys are
// replaced; bodies for other routes are returned unchanged.
func Obfuscate(path, body string) string {
	path = strings.TrimSuffix(strings.SplitN(path, "?", 2)[0], "/")

	if strings.HasSuffix(path, functionCallRoute) {
		return replaceValue(body, "arguments", "[***]")
	}

	for route, keys := range secretKeysByRoute {
		if !strings.HasSuffix(path, route) {
			continue
		}

		for _, key := range keys {
			body = replaceValue(body, key, redacted)
		}
	}

	return body
}

// replaceValue swaps the raw JSON value stored under key for repl.
func replaceValue(body, key, repl string) string {
	if !gjson.Valid(body) {
		return body
	}

	res := gjson.Get(body, key)
	if !res.Exists() || res.Index <= 0 {
		return body
	}

	if res.Type != gjson.String && repl == redacted {
		return body
	}

	return body[:res.Index] + repl + body[res.Index+len(res.Raw):]
}
