// Package sqlguard is the last line of defense between tenant-scoped code and
// the database. Before a statement runs on a connection bound to a tenant
// schema, Validate inspects its text:
//
//  1. the expected schema must match the strict tenant schema grammar;
//  2. every tenant-schema-looking token, even inside comments and literals,
//     must equal the expected schema;
//  3. unicode escapes and unterminated literals or comments are refused;
//  4. every <expected>.<table> reference must name a whitelisted table,
//     compared by exact identifier content;
//  5. shared schemas (public, pg_catalog, information_schema) and pg_*
//     catalog names are refused;
//  6. search_path, set_config and SET/RESET of schema or role are refused.
//
// Checks 4 to 6 run on a token stream with comments and literals removed,
// so whitespace or comments around a dot do not hide a reference.
//
// It is a lexer, not a parser. It complements parameterized queries and
// identifier quoting (schema.Qualify), it does not replace them. Rejections
// should be treated as security incidents by the caller: log them at error
// level and fail the request.
//
//	if err := sqlguard.Validate(sql, scope.Schema); err != nil {
//	    log.ErrorContext(ctx, "sql rejected", "reason", sqlguard.Reason(err))
//	    return err
//	}
package sqlguard
