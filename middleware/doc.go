// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Sessions

Sessions reads the "token" (users and owners) and "admin-token" cookies:

	sessions := middleware.NewSessions(issuer, cfg.SecureCookies)
	mux.HandleFunc("GET /api/favorite", sessions.RequireMember(h.List))
	mux.HandleFunc("GET /api/houses", sessions.Optional(h.List))

Handlers read the caller with SessionFrom.

# Rate Limiting

RateLimiter keeps a token bucket per client IP:

	limiter := middleware.NewRateLimiter(1, 5)
	mux.HandleFunc("POST /api/auth/login", limiter.Limit(h.Login))

# Request Logging

WithLogging logs method, path, status, response size, duration, and a
salted hash of the client IP.

# CORS Middleware

CORS reflects the request origin and allows credentials so browsers send
session cookies.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

ParseJSONBody decodes at most MaxJSONBody bytes and returns ErrEmptyBody
for an empty request.
*/
package middleware
