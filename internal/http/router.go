package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authHandler "github.com/mwilde345/givehub/internal/http/auth"
	campaignHandler "github.com/mwilde345/givehub/internal/http/campaign"
	donationHandler "github.com/mwilde345/givehub/internal/http/donation"
	mw "github.com/mwilde345/givehub/internal/http/middleware"
	userHandler "github.com/mwilde345/givehub/internal/http/user"
	"github.com/mwilde345/givehub/internal/user"
)

// New builds the API router. Access policy lives here: which routes are
// public, which need a valid token, and which are role-gated.
func New(
	authV1 *authHandler.Handler,
	usersV1 *userHandler.Handler,
	campaignsV1 *campaignHandler.Handler,
	donationsV1 *donationHandler.Handler,
	authn func(http.Handler) http.Handler,
	allowedOrigins []string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(chimiddleware.AllowContentType("application/json"))
			r.Post("/register", authV1.Register)
			r.Post("/login", authV1.Login)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authn)
			r.Get("/profile", usersV1.Profile)
			r.Put("/profile", usersV1.UpdateProfile)
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", campaignsV1.List)
			r.Get("/{id}", campaignsV1.Get)

			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.With(mw.RequireRole(user.RoleAdmin, user.RoleModerator)).Post("/", campaignsV1.Create)
				r.With(mw.RequireRole(user.RoleAdmin, user.RoleModerator)).Put("/{id}", campaignsV1.Update)
				r.With(mw.RequireRole(user.RoleAdmin)).Delete("/{id}", campaignsV1.Delete)
			})
		})

		r.Route("/donations", func(r chi.Router) {
			r.Get("/campaign/{campaignID}", donationsV1.ListByCampaign)

			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.Post("/", donationsV1.Create)
				r.Get("/", donationsV1.ListMine)
				r.Get("/{id}", donationsV1.Get)
				r.With(mw.RequireRole(user.RoleAdmin)).Delete("/{id}", donationsV1.Delete)
			})
		})
	})

	return router
}
