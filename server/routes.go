package server

import "net/http"

func (s *Server) initRoutes() {
	api := s.APIMiddleware()

	// Method-scoped patterns never match OPTIONS, so CORS preflight gets its
	// own catch-all; CorsMiddleware answers it before the no-op handler runs.
	s.RegisterRouteHandler("OPTIONS /api/",
		ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {}, api...))

	// CAPTCHA + auth flow
	s.RegisterRouteHandler("GET "+RouteCaptcha, ChainMiddleware(s.CaptchaHandler(), api...))
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.RegisterHandler(), api...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), api...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), api...))
	s.RegisterRouteHandler("GET "+RouteAuthStatus, ChainMiddleware(s.AuthStatusHandler(), api...))

	// Authenticated routes
	s.RegisterRouteHandler("GET "+RouteProfile,
		ChainMiddleware(s.ProfileHandler(), append(api, s.RequireAuth)...))
	s.RegisterRouteHandler("POST "+RoutePasswordChange,
		ChainMiddleware(s.PasswordChangeHandler(), append(api, s.RequireAuth)...))

	// Public catalogue
	s.RegisterRouteHandler("GET "+RouteProducts, ChainMiddleware(s.ProductsListHandler(), api...))
	s.RegisterRouteHandler("GET "+RouteProductByID, ChainMiddleware(s.ProductByIDHandler(), api...))

	// Admin panel. RequireAdmin is composed after RequireAuth: an
	// unauthenticated caller must see 401 before any role check fires.
	admin := append(api, s.RequireAuth, s.RequireAdmin)
	s.RegisterRouteHandler("GET "+RouteAdminDashboard, ChainMiddleware(s.AdminDashboardHandler(), admin...))
	s.RegisterRouteHandler("GET "+RouteAdminUsers, ChainMiddleware(s.AdminUsersHandler(), admin...))
	s.RegisterRouteHandler("GET "+RouteAdminProducts, ChainMiddleware(s.AdminProductsHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteAdminProducts, ChainMiddleware(s.AdminProductCreateHandler(), admin...))
	s.RegisterRouteHandler("PUT "+RouteAdminProductByID, ChainMiddleware(s.AdminProductUpdateHandler(), admin...))
	s.RegisterRouteHandler("DELETE "+RouteAdminProductByID, ChainMiddleware(s.AdminProductDeleteHandler(), admin...))
}
