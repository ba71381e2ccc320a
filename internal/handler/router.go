// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/pileoffame-go/internal/cache"
	"github.com/olegiv/pileoffame-go/internal/middleware"
	"github.com/olegiv/pileoffame-go/internal/service"
)

// RouterConfig carries the shared infrastructure the router wires
// handlers onto.
type RouterConfig struct {
	DB            *sql.DB
	Sessions      *scs.SessionManager
	Cache         cache.Cache
	SessionSecret []byte
	IsDevelopment bool
	HomeCacheTTL  time.Duration
}

// NewRouter assembles the full HTTP surface: middleware stack,
// public auth and health routes, and the session-protected API.
func NewRouter(cfg RouterConfig) http.Handler {
	users := service.NewUserService(cfg.DB)
	confessions := service.NewConfessionService(cfg.DB)
	rituals := service.NewRitualService(cfg.DB)
	reactions := service.NewReactionService(cfg.DB)
	feed := service.NewFeedService(cfg.DB)
	minis := service.NewMiniService(cfg.DB)
	home := service.NewHomeService(cfg.DB, cfg.Cache, cfg.HomeCacheTTL)

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	authHandler := NewAuthHandler(users, cfg.Sessions, loginProtection)
	confessionHandler := NewConfessionHandler(confessions, home)
	ritualHandler := NewRitualHandler(rituals, home)
	reactionHandler := NewReactionHandler(reactions)
	feedHandler := NewFeedHandler(feed)
	miniHandler := NewMiniHandler(minis, home)
	homeHandler := NewHomeHandler(home)
	healthHandler := NewHealthHandler(cfg.DB)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if cfg.IsDevelopment {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment)))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig(cfg.SessionSecret, cfg.IsDevelopment))

	r.Route("/api", func(r chi.Router) {
		r.Use(cfg.Sessions.LoadAndSave)
		r.Use(csrfMiddleware)

		r.Get("/vocabulary", Vocabulary)

		// Login gets per-IP rate limiting plus account lockout on top
		// of the shared stack.
		r.Post("/auth/register", authHandler.Register)
		r.With(loginProtection.Middleware()).Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.LoadUser(cfg.Sessions, cfg.DB))
			r.Use(middleware.RequireAuth)

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/me", authHandler.Me)

			r.Post("/confessions", confessionHandler.Create)
			r.Get("/confessions", confessionHandler.Latest)

			r.Post("/rituals", ritualHandler.Post)
			r.Get("/rituals", ritualHandler.Recent)

			r.Get("/events/feed", feedHandler.Page)

			r.Post("/reactions", reactionHandler.Create)
			r.Delete("/reactions", reactionHandler.Delete)

			r.Post("/minis", miniHandler.Create)
			r.Get("/minis", miniHandler.List)

			r.Get("/home", homeHandler.Get)
		})
	})

	return r
}
