package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/storekit/pkg/binder"
	"github.com/dmitrymomot/storekit/pkg/logger"
	"github.com/dmitrymomot/storekit/pkg/requestid"
	"github.com/dmitrymomot/storekit/pkg/validator"
)

// ErrorMapper translates a domain error into an HTTPError. It returns false
// when it does not recognise err.
type ErrorMapper func(err error) (HTTPError, bool)

// Classify resolves err to the HTTPError rendered to the client. Mappers run
// first, in order; then HTTPError values, validation failures and binder
// errors are recognised. Everything else is internal_error.
func Classify(err error, mappers ...ErrorMapper) HTTPError {
	for _, m := range mappers {
		if e, ok := m(err); ok {
			return e
		}
	}

	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case validator.IsValidationError(err):
		return ErrValidation
	case errors.Is(err, binder.ErrMissingContentType),
		errors.Is(err, binder.ErrUnsupportedMediaType),
		errors.Is(err, binder.ErrFailedToParseJSON),
		errors.Is(err, binder.ErrFailedToParseQuery),
		errors.Is(err, binder.ErrFailedToParsePath):
		return ErrBadRequest
	default:
		return ErrInternal
	}
}

// NewErrorHandler returns the JSON error handler used by Wrap. Client errors
// are logged at warn, server errors at error with the full error chain; the
// body only ever carries the stable key.
func NewErrorHandler(log *slog.Logger, mappers ...ErrorMapper) ErrorHandler[Context] {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With(logger.Component("http"))

	return func(ctx Context, err error) {
		e := Classify(err, mappers...)

		level := slog.LevelError
		if e.Code < http.StatusInternalServerError {
			level = slog.LevelWarn
		}

		r := ctx.Request()
		log.LogAttrs(r.Context(), level, "request error",
			logger.Error(err),
			logger.RequestID(requestid.FromContext(r.Context())),
			slog.Int("status", e.Code),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		body := ErrorBody{Error: e.Key}
		if e.Key == ErrValidation.Key {
			if ve := validator.ExtractValidationErrors(err); len(ve) > 0 {
				body.Details = ve.Fields()
			}
		}
		writeJSON(ctx.ResponseWriter(), e.Code, body)
	}
}

func defaultErrorHandler[C Context](ctx C, err error) {
	e := Classify(err)
	writeJSON(ctx.ResponseWriter(), e.Code, ErrorBody{Error: e.Key})
}
