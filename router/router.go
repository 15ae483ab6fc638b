// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/Mustapha-who/kre/auth"
	"github.com/Mustapha-who/kre/cache"
	"github.com/Mustapha-who/kre/cliparse"
	"github.com/Mustapha-who/kre/handlers"
	"github.com/Mustapha-who/kre/metrics"
	"github.com/Mustapha-who/kre/middleware"
	"github.com/Mustapha-who/kre/store"
)

// Banner is served at the root path
const Banner = "kre rental listings API v1"

// NewRouter wires every route. A nil cache disables suggestion caching.
func NewRouter(st *store.Store, cfg cliparse.Config, c cache.Cache) http.Handler {
	if c == nil {
		c = cache.Noop{}
	}

	mux := http.NewServeMux()
	m := metrics.New()
	sessions := middleware.NewSessions(auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL), cfg.SecureCookies)
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRate, cfg.LoginBurst)
	loginLimiter.TrustProxy = cfg.TrustProxy
	loginLimiter.OnLimited = func() { m.Login("limited") }

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(st, cfg, sessions, m)
	favoriteHandler := handlers.NewFavoriteHandler(st)
	houseHandler := handlers.NewHouseHandler(st, cfg, m)
	imageHandler := handlers.NewImageHandler(st)
	searchHandler := handlers.NewSearchHandler(st, c, cfg, m)
	adminHandler := handlers.NewAdminHandler(st, c, m)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := st.DB().PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", m.Handler())

	// Accounts and sessions
	mux.HandleFunc("POST /api/auth/sign-up", authHandler.SignUp)
	mux.HandleFunc("POST /api/auth/sign-up-house", authHandler.SignUpHouseOwner)
	mux.HandleFunc("POST /api/auth/login", loginLimiter.Limit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/me", authHandler.Me)

	// Favorites (users and owners)
	mux.HandleFunc("GET /api/favorite", sessions.RequireMember(favoriteHandler.List))
	mux.HandleFunc("POST /api/favorite", sessions.RequireMember(favoriteHandler.Add))
	mux.HandleFunc("DELETE /api/favorite", sessions.RequireMember(favoriteHandler.Remove))

	// Listings
	mux.HandleFunc("POST /api/house/submit", sessions.RequireMember(houseHandler.Submit))
	mux.HandleFunc("GET /api/houses", sessions.Optional(houseHandler.List))
	mux.HandleFunc("GET /api/houses/{id}", sessions.Optional(houseHandler.Get))
	mux.HandleFunc("GET /api/houses/owner/{ownerId}", houseHandler.ListByOwner)
	mux.HandleFunc("GET /api/image/{imageId}", imageHandler.Get)
	mux.HandleFunc("GET /api/search-suggestions", searchHandler.Suggest)

	// Moderation
	mux.HandleFunc("GET /api/admin/houses", sessions.RequireAdmin(adminHandler.ListHouses))
	mux.HandleFunc("GET /api/admin/houses/verified", sessions.RequireAdmin(adminHandler.ListVerified))
	mux.HandleFunc("GET /api/admin/houses/{id}", sessions.RequireAdmin(adminHandler.GetHouse))
	mux.HandleFunc("PATCH /api/admin/houses/{id}/verify", sessions.RequireAdmin(adminHandler.Verify))
	mux.HandleFunc("GET /api/admin/stats", sessions.RequireAdmin(adminHandler.Stats))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(Banner))
	})

	var h http.Handler = mux
	h = middleware.WithLogging(cfg.JWTSecret)(h)
	h = m.Instrument(h)
	h = middleware.CORS(h)
	return h
}
