package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-content-retention/internal/config"
	"go-content-retention/internal/handler"
	"go-content-retention/internal/middleware"
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	deletionHandler *handler.DeletionHandler,
	logHandler *handler.LogHandler,
	settingsHandler *handler.SettingsHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.SweepRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles("editor", "admin")).
			Delete("/content/{uid}", deletionHandler.Delete)

		api.Route("/deletions", func(del chi.Router) {
			del.With(authMiddleware.RequireAuth).Get("/log", logHandler.List)
			del.With(authMiddleware.RequireAuth).Get("/pending", logHandler.Pending)
			del.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles("editor", "admin")).
				Post("/{uid}/withdraw", deletionHandler.Withdraw)
			del.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles("admin")).
				Post("/{uid}/permanent-delete", deletionHandler.PermanentDelete)
		})

		api.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles("admin")).
			Post("/sweep/run", deletionHandler.RunSweep)

		api.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles("admin")).Get("/settings", settingsHandler.Get)
		api.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles("admin")).Put("/settings", settingsHandler.Update)
	})

	return r
}
