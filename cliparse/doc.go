// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Flags and Environment

Every flag falls back to an environment variable; CLI flags win.

	-p, --port            PORT             Server port (3318)
	-d, --database-url    DATABASE_URL     Database URL (required)
	-t, --database-type   DATABASE_TYPE    sqlite or postgres
	--jwt-secret          JWT_SECRET       Token signing secret (required)
	--token-ttl           TOKEN_TTL        Session lifetime (1h)
	--secure-cookies      SECURE_COOKIES   Mark cookies Secure
	--redis-url           REDIS_URL        Suggestion cache
	--suggestion-ttl      SUGGESTION_TTL   Suggestion cache TTL (1m)
	--max-image-bytes     MAX_IMAGE_BYTES  Image size limit, e.g. 5MiB
	--login-rate          LOGIN_RATE       Login attempts per second per IP
	--login-burst         LOGIN_BURST      Login burst per IP
	--trust-proxy         TRUST_PROXY      Key login limits on X-Forwarded-For
	--admin-email         ADMIN_EMAIL      Bootstrap admin
	--admin-password      ADMIN_PASSWORD   Bootstrap admin password
	--log-format          LOG_FORMAT       text or json

# Validation

ParseFlags returns an error when DATABASE_URL or JWT_SECRET is missing,
the database type is unknown, a value fails to parse, or only one of
ADMIN_EMAIL and ADMIN_PASSWORD is set.
*/
package cliparse
