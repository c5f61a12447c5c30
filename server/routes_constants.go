package server

const (
	RouteCaptcha        = "/api/captcha"
	RouteRegister       = "/api/register"
	RouteLogin          = "/api/login"
	RouteLogout         = "/api/logout"
	RouteAuthStatus     = "/api/auth/status"
	RouteProfile        = "/api/profile"
	RoutePasswordChange = "/api/password/change"

	RouteProducts    = "/api/products"
	RouteProductByID = "/api/products/{id}"

	RouteAdminDashboard   = "/api/admin/dashboard"
	RouteAdminUsers       = "/api/admin/users"
	RouteAdminProducts    = "/api/admin/products"
	RouteAdminProductByID = "/api/admin/products/{id}"
)
