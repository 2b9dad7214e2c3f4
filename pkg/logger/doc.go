// Package logger builds the service's *slog.Logger and keeps attribute names
// consistent across packages.
//
// New returns a logger whose handler runs every registered ContextExtractor
// when a record is handled. Keys the record already carries are not
// overwritten or repeated. Request
// scoped packages expose their own extractor (requestid.LoggerExtractor,
// tenant.LoggerExtractor) so a log line written deep inside a handler carries
// the request ID, tenant ID and schema without anyone passing them around:
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "storekit"),
//	    logger.WithContextExtractors(
//	        requestid.LoggerExtractor(),
//	        tenant.LoggerExtractor(),
//	    ),
//	)
//
// Attribute helpers (Error, TenantID, Schema, SQL, Reason, ...) return an
// empty slog.Attr for nil input, so they can be passed unconditionally.
package logger
