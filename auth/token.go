// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Principal roles carried in session tokens
const (
	RoleUser  = "user"
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

// Cookie names. Users and house owners share one cookie; admins get their own
// so an admin session never doubles as a member session.
const (
	MemberCookie = "token"
	AdminCookie  = "admin-token"
)

// Claims is the payload of a session token. Exactly one of UserID, OwnerID
// or AdminID is set.
type Claims struct {
	UserID  string `json:"userId,omitempty"`
	OwnerID string `json:"ownerId,omitempty"`
	AdminID string `json:"adminId,omitempty"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Session is the principal resolved from a token
type Session struct {
	Role  string
	ID    string
	Email string
}

func (s Session) IsUser() bool  { return s.Role == RoleUser }
func (s Session) IsOwner() bool { return s.Role == RoleOwner }
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

// Issuer signs and verifies session tokens with an HMAC secret
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the lifetime given to new tokens
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token for the session
func (i *Issuer) Issue(s Session) (string, error) {
	now := i.now()
	claims := Claims{
		Email: s.Email,
		Role:  s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	switch s.Role {
	case RoleUser:
		claims.UserID = s.ID
	case RoleOwner:
		claims.OwnerID = s.ID
	case RoleAdmin:
		claims.AdminID = s.ID
	default:
		return "", fmt.Errorf("unknown role %q", s.Role)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (i *Issuer) parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseMember resolves a token from the member cookie. A user id wins over
// an owner id; a token carrying neither is rejected.
func (i *Issuer) ParseMember(tokenStr string) (Session, error) {
	claims, err := i.parse(tokenStr)
	if err != nil {
		return Session{}, err
	}
	switch {
	case claims.UserID != "":
		return Session{Role: RoleUser, ID: claims.UserID, Email: claims.Email}, nil
	case claims.OwnerID != "":
		return Session{Role: RoleOwner, ID: claims.OwnerID, Email: claims.Email}, nil
	}
	return Session{}, ErrInvalidToken
}

// ParseAdmin resolves a token from the admin cookie. Only tokens with the
// admin role and an admin id are accepted.
func (i *Issuer) ParseAdmin(tokenStr string) (Session, error) {
	claims, err := i.parse(tokenStr)
	if err != nil {
		return Session{}, err
	}
	if claims.Role != RoleAdmin || claims.AdminID == "" {
		return Session{}, ErrInvalidToken
	}
	return Session{Role: RoleAdmin, ID: claims.AdminID, Email: claims.Email}, nil
}
