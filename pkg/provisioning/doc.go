// Package provisioning creates new stores.
//
// Provision runs every step in a single transaction:
//
//  1. set a lock timeout and take a transaction-scoped advisory lock keyed by
//     LockKey(subdomain)
//  2. re-check that the subdomain is free while holding the lock
//  3. insert the directory row with status provisioning
//  4. create the tenant schema and its table set, then seed default settings
//  5. register the owner through OwnerRegistrar on the same transaction
//  6. move the tenant to active
//  7. commit
//
// A failure in any step rolls back the whole transaction, so neither the row
// nor the schema survives. After commit the optional RouteRegistrar and
// Notifier run; their failures are logged and ignored.
//
// Lifecycle covers status changes of existing stores (suspend, reinstate) and
// invalidates the directory cache so the change reaches the request path.
package provisioning
