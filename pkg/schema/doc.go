// Package schema maps tenant identifiers to PostgreSQL schema names and back.
//
// A tenant with ID 11111111-1111-1111-1111-111111111111 owns the schema
// tenant_11111111_1111_1111_1111_111111111111. The same codec is used when a
// schema is created during provisioning and when it is selected for a request,
// so the two sides can never disagree on the separator or the prefix.
//
// Names produced by FromTenantID are always valid. Names that come from
// anywhere else must pass Parse before use. Whenever a name is interpolated
// into SQL it is quoted with Name.Quoted or Qualify:
//
//	name := schema.FromTenantID(tenantID)
//	_, err := conn.Exec(ctx, "SET search_path TO "+name.Quoted())
//
// The package also owns the list of per-tenant tables (Tables), which the SQL
// surface validator uses as its whitelist.
package schema
