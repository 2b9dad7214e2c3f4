package schema

// Per-tenant tables. Every tenant schema carries exactly this set.
const (
	TableProducts     = "products"
	TableCategories   = "categories"
	TableOrders       = "orders"
	TableOrderItems   = "order_items"
	TableBanners      = "banners"
	TablePromotions   = "promotions"
	TableTestimonials = "testimonials"
	TablePages        = "pages"
	TableSettings     = "settings"
)

// Tables lists the vetted tenant tables in creation order.
var Tables = []string{
	TableCategories,
	TableProducts,
	TableOrders,
	TableOrderItems,
	TableBanners,
	TablePromotions,
	TableTestimonials,
	TablePages,
	TableSettings,
}

// IsTenantTable reports whether table belongs to the vetted set.
func IsTenantTable(table string) bool {
	for _, t := range Tables {
		if t == table {
			return true
		}
	}
	return false
}
