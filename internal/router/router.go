package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/property-listing/internal/handler"    // HTTP handlers dispatching into the slices
	"github.com/iliyamo/property-listing/internal/middleware" // JWT, role, session and cache middleware
	"github.com/iliyamo/property-listing/internal/model"
)

// Deps bundles everything the routes need.  Cache and RateLimit may be
// nil, in which case the routes run without them.
type Deps struct {
	JWTSecret string
	Metrics   http.Handler

	Health   echo.HandlerFunc
	Browse   *handler.BrowseHandler
	Listings *handler.ListingHandler
	Auth     *handler.AuthHandler
	Accounts *handler.AccountHandler
	Theme    *handler.ThemeHandler
	Sync     *handler.SyncHandler

	Sessions  []middleware.SessionSource
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
}

// RegisterRoutes registers every route group on e.
func RegisterRoutes(e *echo.Echo, d Deps) {
	if d.RateLimit != nil {
		e.Use(d.RateLimit)
	}
	// Liveness and metrics are never cached or guarded.
	e.GET("/healthz", d.Health)
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}
	RegisterPublic(e, d)
	RegisterTheme(e, d.Theme)
	RegisterAuth(e, d.Auth, d.JWTSecret)
	RegisterAdmin(e, d)
	RegisterMaster(e, d)
}

// RegisterPublic registers unauthenticated browse endpoints.  Responses
// go through the response cache when one is configured.
func RegisterPublic(e *echo.Echo, d Deps) {
	g := e.Group("/v1")
	if d.Cache != nil {
		g.Use(d.Cache)
	}
	p := d.Browse
	g.GET("/studios", p.ListStudios)
	g.GET("/studios/:id", p.GetStudio)
	g.GET("/apartments", p.ListApartments)
	g.GET("/apartments/:id", p.GetApartment)
	g.GET("/sale-apartments", p.ListSaleApartments)
	g.GET("/sale-apartments/:id", p.GetSaleApartment)
}

// RegisterTheme registers the theme intents.  The theme is a preference
// of the process operator, so these routes need no token.
func RegisterTheme(e *echo.Echo, t *handler.ThemeHandler) {
	g := e.Group("/v1/theme")
	g.GET("", t.Get)
	g.PUT("", t.SetTheme)
	g.POST("/toggle", t.Toggle)
	g.PUT("/system-preference", t.SetSystemPreference)
	g.POST("/use-system", t.UseSystem)
	g.POST("/custom", t.AddCustom)
	g.DELETE("/custom/:name", t.RemoveCustom)
}

// RegisterAuth registers login, logout and session endpoints for both
// principals.  Logout requires a token of the matching role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	admin := e.Group("/v1/auth/admin")
	admin.POST("/login", a.AdminLogin)
	admin.GET("/session", a.AdminSession)
	admin.POST("/logout", a.AdminLogout, middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin))

	master := e.Group("/v1/auth/master")
	master.POST("/login", a.MasterLogin)
	master.GET("/session", a.MasterSession)
	master.POST("/logout", a.MasterLogout, middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleMaster))
}

// RegisterAdmin registers the listing intents and creator views.  Both
// admins and the master may use them, once the sessions are restored.
func RegisterAdmin(e *echo.Echo, d Deps) {
	g := e.Group("/v1/admin")
	g.Use(middleware.RequireSessionsReady(d.Sessions...))
	g.Use(middleware.JWTAuth(d.JWTSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin, model.RoleMaster))

	l := d.Listings
	g.GET("/listings", d.Browse.Snapshot)
	g.POST("/apartments", l.CreateApartment)
	g.PUT("/apartments/:id", l.UpdateApartment)
	g.DELETE("/apartments/:id", l.DeleteApartment)
	g.POST("/apartments/:id/studios", l.CreateStudio)
	g.PUT("/apartments/:id/studios/:studioId", l.UpdateStudio)
	g.DELETE("/apartments/:id/studios/:studioId", l.DeleteStudio)
	g.POST("/apartments/:id/studios/:studioId/toggle", l.ToggleStudio)
	g.POST("/sale-apartments", l.CreateSaleApartment)
	g.PUT("/sale-apartments/:id", l.UpdateSaleApartment)
	g.DELETE("/sale-apartments/:id", l.DeleteSaleApartment)

	g.GET("/creators", d.Browse.ListCreators)
	g.GET("/creators/:id/studios", d.Browse.CreatorStudios)
	g.GET("/creators/:id/apartments", d.Browse.CreatorApartments)

	g.POST("/sync/rent", d.Sync.SyncRent)
	g.POST("/sync/sale", d.Sync.SyncSale)
}

// RegisterMaster registers the master-only account management and the
// data reset.
func RegisterMaster(e *echo.Echo, d Deps) {
	g := e.Group("/v1/master")
	g.Use(middleware.RequireSessionsReady(d.Sessions...))
	g.Use(middleware.JWTAuth(d.JWTSecret))
	g.Use(middleware.RequireRole(model.RoleMaster))

	g.GET("/admins", d.Accounts.List)
	g.POST("/admins", d.Accounts.Create)
	g.PATCH("/admins/:id/active", d.Accounts.SetActive)
	g.DELETE("/admins/:id", d.Accounts.Delete)
	g.POST("/clear", d.Listings.ClearAll)
}
