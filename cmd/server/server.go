// cmd/server/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/WarungWareg/internal/api"
	"github.com/codr1/WarungWareg/internal/api/auth"
	"github.com/codr1/WarungWareg/internal/api/dashboard"
	"github.com/codr1/WarungWareg/internal/api/menu"
	"github.com/codr1/WarungWareg/internal/api/settings"
	"github.com/codr1/WarungWareg/internal/config"
	"github.com/codr1/WarungWareg/internal/session"
)

func newServer(cfg *config.Config, store session.TokenStore) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain; the last entry runs first.
	handler := api.ChainMiddleware(
		router,
		api.WithSession(store),
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	// Register routes
	registerRoutes(router, cfg)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, cfg *config.Config) {
	protected := func(h http.HandlerFunc) http.Handler {
		return api.RequireToken(h)
	}

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Auth routes
	mux.HandleFunc("GET /login", auth.HandleLoginPage)
	mux.HandleFunc("POST /login", auth.HandleLogin)
	mux.HandleFunc("GET /register", auth.HandleRegisterPage)
	mux.HandleFunc("POST /register", auth.HandleRegister)
	mux.HandleFunc("POST /logout", auth.HandleLogout)

	// Dashboard routes
	mux.Handle("GET /dashboard", protected(dashboard.HandleDashboardPage))
	mux.Handle("GET /dashboard/metrics", protected(dashboard.HandleDashboardMetrics))
	mux.Handle("GET /api/v1/dashboard/series", protected(dashboard.HandleSeries))
	mux.Handle("GET /api/v1/dashboard/charts/{kind}", protected(dashboard.HandleChart))

	// Menu routes
	mux.Handle("GET /menu", protected(menu.HandleMenuPage))
	mux.Handle("GET /menu/new", protected(menu.HandleNewMenuPage))
	mux.Handle("POST /menu/new", protected(menu.HandleCreateMenu))
	mux.Handle("GET /menu/{id}/edit", protected(menu.HandleEditMenuPage))
	mux.Handle("POST /menu/{id}/edit", protected(menu.HandleUpdateMenu))

	// Settings routes
	mux.Handle("GET /settings", protected(settings.HandleSettingsPage))
	mux.Handle("POST /settings", protected(settings.HandleUpdateSettings))

	// Static file handling
	staticDir := cfg.App.StaticDir
	fs := http.FileServer(http.Dir(staticDir))
	mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Ctx(r.Context()).Debug().
			Str("path", r.URL.Path).
			Str("static_dir", staticDir).
			Msg("Static file request")
		http.StripPrefix("/static/", fs).ServeHTTP(w, r)
	}))
}
