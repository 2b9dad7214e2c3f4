package api

import (
	"bytes"
	_ "embed"

	"github.com/dmitrymomot/storekit/pkg/scopeguard"
)

// Route names, as declared in routes.yaml.
const (
	RouteProvision          = "provisioning.create"
	RouteSuperAdminTenants  = "super_admin.tenants"
	RouteStorefrontProducts = "storefront.products"
	RouteStorefrontSettings = "storefront.settings"
	RouteMerchantOrders     = "merchant.orders"
)

//go:embed routes.yaml
var routesYAML []byte

// LoadRoutes parses the embedded route table.
func LoadRoutes() (*scopeguard.Table, error) {
	return scopeguard.LoadTable(bytes.NewReader(routesYAML))
}
