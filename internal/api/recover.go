package api

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/dmitrymomot/storekit/handler"
	"github.com/dmitrymomot/storekit/pkg/logger"
)

// Recover turns a handler panic into a 500 internal_error. It sits outside
// the tenant middleware, whose deferred release still runs while the panic
// unwinds.
func Recover(log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
					logger.Component("http"),
				)
				handler.WriteError(w, handler.ErrInternal)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
