// Package scopeguard checks, at the handler boundary, that an authenticated
// principal only reaches data of its own tenant.
//
// Access rules live in a route table rather than on the handlers themselves:
//
//	routes:
//	  - name: storefront.products
//	    public: true
//	  - name: merchant.orders
//	    requires_auth: true
//	  - name: super_admin.tenants
//	    skip_tenant_scope: true
//
// For each request Decide applies, in order: skip-tenant-scope allows;
// anonymous callers are allowed only on public routes; super admins are
// allowed; a principal whose tenant differs from the resolved request tenant
// is denied; everything else is allowed. Denials always produce
// 403 {"error":"access_denied"}.
package scopeguard
