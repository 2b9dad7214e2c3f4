package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storekit/handler"
	"github.com/dmitrymomot/storekit/pkg/binder"
	"github.com/dmitrymomot/storekit/pkg/validator"
)

type createRequest struct {
	ID   string `path:"id"`
	Name string `json:"name"`
}

var errUnavailable = errors.New("scope unavailable")

func decodeError(t *testing.T, w *httptest.ResponseRecorder) handler.ErrorBody {
	t.Helper()
	var body handler.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestWrap(t *testing.T) {
	t.Parallel()

	pathID := func(_ *http.Request, name string) string {
		if name == "id" {
			return "42"
		}
		return ""
	}

	echo := handler.HandlerFunc[handler.Context, createRequest](
		func(ctx handler.Context, req createRequest) handler.Response {
			return handler.JSON(req, handler.WithJSONStatus(http.StatusCreated))
		},
	)

	t.Run("binds and renders", func(t *testing.T) {
		t.Parallel()

		h := handler.Wrap(echo, handler.WithBinders[handler.Context, createRequest](binder.Path(pathID), binder.JSON()))

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"shop"}`))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h(w, r)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"data":{"ID":"42","name":"shop"}}`, w.Body.String())
	})

	t.Run("non applicable binder is skipped", func(t *testing.T) {
		t.Parallel()

		h := handler.Wrap(echo, handler.WithBinders[handler.Context, createRequest](binder.JSON(), binder.Path(pathID)))

		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"data":{"ID":"42","name":""}}`, w.Body.String())
	})

	t.Run("binder failure is bad request", func(t *testing.T) {
		t.Parallel()

		h := handler.Wrap(echo, handler.WithBinders[handler.Context, createRequest](binder.JSON()))

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nope":1}`))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decodeError(t, w).Error)
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()

		h := handler.Wrap(handler.HandlerFunc[handler.Context, createRequest](
			func(handler.Context, createRequest) handler.Response { return nil },
		))
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal_error", decodeError(t, w).Error)
	})

	t.Run("decorators run outermost first", func(t *testing.T) {
		t.Parallel()

		var order []string
		mark := func(name string) handler.Decorator[handler.Context, createRequest] {
			return func(next handler.HandlerFunc[handler.Context, createRequest]) handler.HandlerFunc[handler.Context, createRequest] {
				return func(ctx handler.Context, req createRequest) handler.Response {
					order = append(order, name)
					return next(ctx, req)
				}
			}
		}

		h := handler.Wrap(echo, handler.WithDecorators(mark("outer"), mark("inner")))
		h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, []string{"outer", "inner"}, order)
	})
}

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	mapper := func(err error) (handler.HTTPError, bool) {
		if errors.Is(err, errUnavailable) {
			return handler.NewHTTPError(http.StatusServiceUnavailable, "scope_unavailable"), true
		}
		return handler.HTTPError{}, false
	}

	tests := []struct {
		name   string
		err    error
		status int
		key    string
	}{
		{"mapped", errors.Join(errUnavailable, errors.New("dial tcp")), http.StatusServiceUnavailable, "scope_unavailable"},
		{"http error", handler.ErrNotFound, http.StatusNotFound, "not_found"},
		{"binder", binder.ErrFailedToParseJSON, http.StatusBadRequest, "bad_request"},
		{"unknown", errors.New("pq: relation does not exist"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := handler.Wrap(
				handler.HandlerFunc[handler.Context, createRequest](
					func(handler.Context, createRequest) handler.Response { return handler.Fail(tt.err) },
				),
				handler.WithErrorHandler[handler.Context, createRequest](handler.NewErrorHandler(nil, mapper)),
			)
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.status, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.key, body.Error)
			assert.NotContains(t, w.Body.String(), "relation")
		})
	}

	t.Run("validation details", func(t *testing.T) {
		t.Parallel()

		verr := validator.Apply(validator.Required("subdomain", ""))
		h := handler.Wrap(
			handler.HandlerFunc[handler.Context, createRequest](
				func(handler.Context, createRequest) handler.Response { return handler.Fail(verr) },
			),
			handler.WithErrorHandler[handler.Context, createRequest](handler.NewErrorHandler(nil)),
		)
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "validation_error", body.Error)
		assert.Contains(t, body.Details, "subdomain")
	})
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	handler.WriteError(w, handler.ErrForbidden)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"forbidden"}`, w.Body.String())
}
