// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the kre API.

# Handler Types

Each handler is a struct built from the store and whatever else it needs:

  - AuthHandler: Sign-up, login, logout, and the current profile
  - HouseHandler: Listing submission, search, and details
  - FavoriteHandler: Saved houses for users and owners
  - ImageHandler: Stored image bytes
  - SearchHandler: Location suggestions, cached when Redis is configured
  - AdminHandler: Moderation queue, verification, and counts

	houseHandler := handlers.NewHouseHandler(st, cfg, m)

Handlers expect the session middleware to have run; they read the caller
with middleware.SessionFrom.

# Submitting a House

POST /api/house/submit takes multipart/form-data. Images arrive under
"images" or "images[]"; files over the size limit or not sniffed as an
image are skipped and counted in the response. New listings start
unverified and stay out of public results until an admin verifies them.

# Validation

Request structs carry validator tags. The first failing field is reported
by its JSON name:

	{"error": "Missing or invalid required field: title"}
*/
package handlers
