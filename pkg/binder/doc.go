// Package binder fills request structs from JSON bodies, query strings and
// router path parameters.
//
// Each binder is a func(*http.Request, any) error and only touches fields
// carrying its own struct tag, so several binders can be chained on one
// request type:
//
//	type suspendRequest struct {
//		ID     string `path:"id"`
//		Reason string `json:"reason"`
//	}
//
//	r.Post("/super-admin/tenants/{id}/suspend", handler.Wrap(suspend,
//		handler.WithBinders[handler.Context, suspendRequest](
//			binder.Path(chi.URLParam),
//			binder.JSON(),
//		),
//	))
//
// Failures wrap one of the package errors (ErrFailedToParseJSON,
// ErrUnsupportedMediaType and so on); the HTTP error handler maps all of
// them to 400.
package binder
