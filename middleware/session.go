// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"net/http"

	"github.com/Mustapha-who/kre/auth"
)

type ctxKey int

const sessionKey ctxKey = iota

// SessionFrom returns the session attached by Sessions middleware
func SessionFrom(ctx context.Context) (auth.Session, bool) {
	s, ok := ctx.Value(sessionKey).(auth.Session)
	return s, ok
}

// WithSession returns a copy of ctx carrying the session
func WithSession(ctx context.Context, s auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// Sessions reads and writes the session cookies
type Sessions struct {
	issuer *auth.Issuer
	secure bool
}

func NewSessions(issuer *auth.Issuer, secureCookies bool) *Sessions {
	return &Sessions{issuer: issuer, secure: secureCookies}
}

func (s *Sessions) member(r *http.Request) (auth.Session, bool) {
	c, err := r.Cookie(auth.MemberCookie)
	if err != nil {
		return auth.Session{}, false
	}
	sess, err := s.issuer.ParseMember(c.Value)
	return sess, err == nil
}

func (s *Sessions) admin(r *http.Request) (auth.Session, bool) {
	c, err := r.Cookie(auth.AdminCookie)
	if err != nil {
		return auth.Session{}, false
	}
	sess, err := s.issuer.ParseAdmin(c.Value)
	return sess, err == nil
}

// Candidates returns every valid session on the request, the member
// session before the admin session.
func (s *Sessions) Candidates(r *http.Request) []auth.Session {
	var out []auth.Session
	if sess, ok := s.member(r); ok {
		out = append(out, sess)
	}
	if sess, ok := s.admin(r); ok {
		out = append(out, sess)
	}
	return out
}

// Optional attaches the caller's session when one is present and valid.
// The member cookie is checked before the admin cookie. Requests are never
// rejected.
func (s *Sessions) Optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sess, ok := s.member(r); ok {
			r = r.WithContext(WithSession(r.Context(), sess))
		} else if sess, ok := s.admin(r); ok {
			r = r.WithContext(WithSession(r.Context(), sess))
		}
		next(w, r)
	}
}

// RequireMember answers 401 unless a user or house owner is signed in
func (s *Sessions) RequireMember(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.member(r)
		if !ok {
			ErrorResponse(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next(w, r.WithContext(WithSession(r.Context(), sess)))
	}
}

// RequireAdmin answers 401 unless the admin cookie holds an admin token
func (s *Sessions) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.admin(r)
		if !ok {
			ErrorResponse(w, http.StatusUnauthorized, "Admin authentication required")
			return
		}
		next(w, r.WithContext(WithSession(r.Context(), sess)))
	}
}

// SetCookie issues a token for the session and sets it on the response:
// "admin-token" for admins, "token" for users and owners.
func (s *Sessions) SetCookie(w http.ResponseWriter, sess auth.Session) error {
	token, err := s.issuer.Issue(sess)
	if err != nil {
		return err
	}

	name := auth.MemberCookie
	if sess.IsAdmin() {
		name = auth.AdminCookie
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.issuer.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearCookies expires both session cookies
func (s *Sessions) ClearCookies(w http.ResponseWriter) {
	for _, name := range []string{auth.MemberCookie, auth.AdminCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
