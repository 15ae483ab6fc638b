// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the kre API.

	handler := router.NewRouter(st, cfg, cache)

# Endpoints

Operational:

	GET /health  - Database ping
	GET /metrics - Prometheus metrics

Accounts:

	POST /api/auth/sign-up       - Create a user
	POST /api/auth/sign-up-house - Create a house owner
	POST /api/auth/login         - Sign in (rate limited per IP)
	POST /api/auth/logout        - Clear session cookies
	GET  /api/auth/me            - Current profile

Listings:

	POST /api/house/submit             - Submit a house (owner session)
	GET  /api/houses                   - Verified houses, filtered
	GET  /api/houses/{id}              - House details
	GET  /api/houses/owner/{ownerId}   - All houses of an owner
	GET  /api/image/{imageId}          - Image bytes
	GET  /api/search-suggestions       - Location suggestions

Favorites (user or owner session):

	GET    /api/favorite
	POST   /api/favorite
	DELETE /api/favorite

Moderation (admin session):

	GET   /api/admin/houses
	GET   /api/admin/houses/verified
	GET   /api/admin/houses/{id}
	PATCH /api/admin/houses/{id}/verify
	GET   /api/admin/stats

# Middleware

Every request passes through CORS, metrics, and request logging, in that
order, before reaching the mux.
*/
package router
