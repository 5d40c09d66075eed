package constants

// Route constants shared by controllers, templates and redirects.
const (
	PublicRoute = "/"

	RouteMenu          = "/menu"
	RouteCart          = "/cart"
	RoutePlans         = "/subscribe/plans"
	RouteMeals         = "/subscribe/meals"
	RouteCheckout      = "/checkout"
	RouteCheckoutStart = "/checkout/start"
	RouteOrders        = "/orders"
	RouteNotifications = "/notifications"
	RouteLogin         = "/login"
	RouteRegister      = "/register"
	RouteActivate      = "/activate"
	RouteSettings      = "/user/settings"
	RouteAdmin         = "/admin"
	RouteAdminMenu     = "/admin/menu"
)

// OrderStatusRoute is where a committed checkout lands.
func OrderStatusRoute(subscriptionID string) string {
	return RouteOrders + "/" + subscriptionID + "/status"
}

func OrderRoute(subscriptionID string) string {
	return RouteOrders + "/" + subscriptionID
}
