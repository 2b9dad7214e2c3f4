package handler

import (
	"encoding/json"
	"net/http"
)

// JSONResponse is the envelope of successful JSON responses.
type JSONResponse struct {
	Data any            `json:"data,omitempty"`
	Meta map[string]any `json:"meta,omitempty"`
}

// ErrorBody is the body of every error response. Details is only set for
// validation failures and maps field names to messages.
type ErrorBody struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   any
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, j.status, j.body)
	return nil
}

// JSONOption configures a JSON response.
type JSONOption func(*jsonResponse)

// WithJSONStatus overrides the default 200.
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
	}
}

// WithJSONMeta attaches metadata next to data.
func WithJSONMeta(meta map[string]any) JSONOption {
	return func(r *jsonResponse) {
		if body, ok := r.body.(JSONResponse); ok {
			body.Meta = meta
			r.body = body
		}
	}
}

// JSON wraps v in the {"data": v} envelope.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, body: JSONResponse{Data: v}}
	if body, ok := v.(JSONResponse); ok {
		r.body = body
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type failResponse struct {
	err error
}

func (f failResponse) Render(http.ResponseWriter, *http.Request) error {
	return f.err
}

// Fail hands err to the error handler configured on Wrap, which classifies,
// logs and renders it.
func Fail(err error) Response {
	if err == nil {
		err = ErrInternal
	}
	return failResponse{err: err}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError writes {"error": key} with the given status. Middleware that
// runs outside Wrap uses it so every error body has the same shape.
func WriteError(w http.ResponseWriter, e HTTPError) {
	writeJSON(w, e.Code, ErrorBody{Error: e.Key})
}
