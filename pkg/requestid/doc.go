// Package requestid attaches a correlation ID to every HTTP request.
//
// Middleware reuses a well-formed inbound X-Request-ID header or generates a
// new ID, stores it in the request context and echoes it back. Register
// LoggerExtractor with the logger so request_id appears on every record:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	r.Use(requestid.Middleware)
package requestid
