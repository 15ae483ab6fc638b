// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing, session tokens and ID generation.

# Passwords

Passwords are stored as bcrypt hashes (cost 10):

	hash, err := auth.HashPassword(password)
	err := auth.CheckPassword(hash, candidate) // ErrInvalidCredentials on mismatch

# Session Tokens

Sessions are HS256-signed JWTs carried in HTTP-only cookies:

	iss := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	token, err := iss.Issue(auth.Session{Role: auth.RoleUser, ID: userID, Email: email})

Users and house owners share the "token" cookie. A token carrying a userId
resolves to a user, one carrying only an ownerId resolves to an owner:

	session, err := iss.ParseMember(cookieValue)

Admins use the separate "admin-token" cookie, accepted only when the role
claim is "admin" and an adminId is present:

	session, err := iss.ParseAdmin(cookieValue)

# ID Generation

Random UUIDv4 IDs for database records:

	id := auth.NewID()
	ok := auth.ValidID(r.PathValue("id"))

# IP Hashing

For privacy-preserving log correlation:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
