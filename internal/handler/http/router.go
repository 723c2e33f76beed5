package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/shiftlog/timeclock-backend-go/internal/config"
	"github.com/shiftlog/timeclock-backend-go/internal/handler/http/middleware"
	"github.com/shiftlog/timeclock-backend-go/internal/pkg/jwt"
)

func NewRouter(cfg *config.Config, jwtService jwt.Service, authHandler *AuthHandler, adminHandler *AdminHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "timeclock-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			// The kiosk authenticates by PIN alone; no token is issued.
			r.Post("/kiosk/login", authHandler.KioskClock)
			r.Post("/admin/login", authHandler.AdminLogin)

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
				r.Use(middleware.AuthRequired(jwtService))
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Admin surface
		r.Route("/admin", func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService))
			r.Use(middleware.AdminOnly)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", adminHandler.ListUsers)
				r.Post("/", adminHandler.CreateUser)
				r.Get("/statuses", adminHandler.UserStatuses)
				r.Delete("/{id}", adminHandler.DeleteUser)
				r.Post("/{id}/reset-pin", adminHandler.ResetUserPIN)
			})

			r.Route("/timesheets", func(r chi.Router) {
				r.Get("/", adminHandler.WeeklyTimesheets)
				r.Get("/export", adminHandler.ExportTimesheets)
			})

			r.Route("/audit-logs", func(r chi.Router) {
				r.Get("/", adminHandler.AuditLogs)
				r.Get("/export", adminHandler.ExportAuditLogs)
			})

			r.Get("/notifications", adminHandler.Notifications)
			r.Post("/purge", adminHandler.Purge)
		})
	})
	return r
}
