// Package handler adapts typed request handlers to net/http.
//
// A HandlerFunc receives a Context and a request struct filled by binders
// from pkg/binder, and returns a Response. Wrap turns it into an
// http.HandlerFunc:
//
//	r.Post("/provisioning/tenants", handler.Wrap(provision,
//		handler.WithBinders[handler.Context, provisioning.Request](binder.JSON()),
//		handler.WithErrorHandler[handler.Context, provisioning.Request](errs),
//	))
//
// Successful responses use the {"data": ...} envelope (JSON). Failures are
// returned as Fail(err) and rendered by the error handler as
// {"error": "<key>"}, where the key comes from Classify: ErrorMapper
// functions supplied by the application first, then HTTPError values,
// validation errors (422 with per-field details) and binder errors (400).
// Anything unrecognised becomes 500 internal_error; the client never sees
// the underlying error text.
package handler
