// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the kre rental listings API server.

kre lets house owners publish rental listings with photos, admins verify
them, and renters search verified listings and keep a list of favorites.

# Starting the Server

The server reads CLI flags, the environment, and an optional .env file:

	DATABASE_URL=kre.db JWT_SECRET=change-me go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." --jwt-secret change-me

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - JWT_SECRET (--jwt-secret): Session token signing secret

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - REDIS_URL (--redis-url): Enables the search suggestion cache
  - ADMIN_EMAIL and ADMIN_PASSWORD: Bootstrap admin account
  - LOG_FORMAT (--log-format): text or json

# Architecture

  - handlers: HTTP request handlers (auth, houses, favorites, images, search, admin)
  - router: Route definitions and middleware chain
  - middleware: Sessions, rate limiting, CORS, logging, JSON helpers
  - store: SQL queries over sqlx
  - cache: Redis suggestion cache
  - metrics: Prometheus collectors
  - models: Request, response, and domain types
  - auth: IDs, password hashing, and session tokens
  - db: Connection setup and migrations
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
