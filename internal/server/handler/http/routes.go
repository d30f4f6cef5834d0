package http

import (
	"net/http"

	"github.com/atinyakov/GreenCart/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Auth      *AuthHandler
	Catalog   *CatalogHandler
	Recommend *RecommendHandler
	Sitemap   *SitemapHandler
}

// NewRouter constructs and returns an HTTP handler that serves the
// storefront API.
//
// Routes:
//
//	GET    /sitemap.xml                        → Sitemap
//	POST   /api/auth/signup                    → Auth.SignUp
//	POST   /api/auth/signin                    → Auth.SignIn
//	POST   /api/auth/signout                   → Auth.SignOut        (session)
//	GET    /api/auth/session                   → Auth.Session        (session)
//	GET    /api/states                         → Catalog.States
//	GET    /api/states/search?q=               → Catalog.SearchState
//	GET    /api/states/{state}/dispensaries    → Catalog.Dispensaries
//	GET    /api/dispensaries/{id}              → Catalog.Dispensary
//	GET    /api/dispensaries/{id}/products     → Catalog.Menu
//	GET    /api/products/{id}                  → Catalog.Product
//	POST   /api/recommendations                → Recommend.Recommend
//	PUT    /api/admin/products                 → Catalog.SaveProducts  (admin session)
//	DELETE /api/admin/products/{id}            → Catalog.DeleteProduct (admin session)
//
// Middleware chain (applied in order):
//  1. Recoverer: turns handler panics into 500s
//  2. AllowContentType("application/json"): rejects non-JSON request bodies
//  3. WithRequestLogging(logger): logs every request
func NewRouter(h Handlers, sessions middleware.SessionResolver, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))

	r.Get("/sitemap.xml", h.Sitemap.Sitemap)

	requireSession := middleware.RequireSession(sessions)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.Auth.SignUp)
			r.Post("/signin", h.Auth.SignIn)
			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Post("/signout", h.Auth.SignOut)
				r.Get("/session", h.Auth.Session)
			})
		})

		r.Get("/states", h.Catalog.States)
		r.Get("/states/search", h.Catalog.SearchState)
		r.Get("/states/{state}/dispensaries", h.Catalog.Dispensaries)
		r.Get("/dispensaries/{id}", h.Catalog.Dispensary)
		r.Get("/dispensaries/{id}/products", h.Catalog.Menu)
		r.Get("/products/{id}", h.Catalog.Product)

		r.Post("/recommendations", h.Recommend.Recommend)

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireSession, middleware.RequireAdmin)
			r.Put("/products", h.Catalog.SaveProducts)
			r.Delete("/products/{id}", h.Catalog.DeleteProduct)
		})
	})

	return r
}
