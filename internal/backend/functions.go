package backend

import (
	"context"
	"encoding/json"
	"net/http"

	apperrors "github.com/alexjbarnes/appsync/internal/errors"
)

type callFunctionRequest struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Service   string          `json:"service,omitempty"`
}

// CallFunction runs the named server function as the user. args must be
// a JSON array. The function's return value is passed back undecoded;
// a function without a return value yields JSON null.
func (c *Client) CallFunction(ctx context.Context, auth *Auth, name string, args json.RawMessage, cb Callback[json.RawMessage]) {
	async(ctx, func(ctx context.Context) (json.RawMessage, *apperrors.AppFailure) {
		u, f := c.appURL(ctx, "functions/call")
		if f != nil {
			return nil, f
		}

		if len(args) == 0 {
			args = json.RawMessage("[]")
		}

		var result json.RawMessage

		body := callFunctionRequest{Name: name, Arguments: args}
		if f := c.authed(ctx, auth, request{method: http.MethodPost, url: u, body: body}, &result); f != nil {
			return nil, f
		}

		if len(result) == 0 {
			result = json.RawMessage("null")
		}

		return result, nil
	}, cb)
}
