// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Mustapha-who/kre/auth"
	"github.com/Mustapha-who/kre/cliparse"
	"github.com/Mustapha-who/kre/metrics"
	"github.com/Mustapha-who/kre/middleware"
	"github.com/Mustapha-who/kre/models"
	"github.com/Mustapha-who/kre/store"
)

type AuthHandler struct {
	store    *store.Store
	cfg      cliparse.Config
	sessions *middleware.Sessions
	metrics  *metrics.Metrics
}

func NewAuthHandler(st *store.Store, cfg cliparse.Config, sessions *middleware.Sessions, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{store: st, cfg: cfg, sessions: sessions, metrics: m}
}

// SignUp handles POST /api/auth/sign-up
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Email = auth.NormalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if msg := validationMessage(req); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	user := &models.User{Email: req.Email, PasswordHash: hash, FirstName: req.FirstName, LastName: req.LastName}
	err = h.store.CreateUser(r.Context(), user)
	if errors.Is(err, store.ErrEmailTaken) {
		middleware.ErrorResponse(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		slog.Error("failed to create user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	if err := h.sessions.SetCookie(w, auth.Session{Role: auth.RoleUser, ID: user.ID, Email: user.Email}); err != nil {
		slog.Error("failed to issue session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	slog.Info("user signed up", "user_id", user.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.SignUpResponse{Success: true, UserID: user.ID})
}

// SignUpHouseOwner handles POST /api/auth/sign-up-house
func (h *AuthHandler) SignUpHouseOwner(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpOwnerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Email = auth.NormalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if msg := validationMessage(req); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	owner := &models.HouseOwner{Email: req.Email, PasswordHash: hash, Name: req.Name, PhoneNumber: req.PhoneNumber}
	err = h.store.CreateOwner(r.Context(), owner)
	if errors.Is(err, store.ErrEmailTaken) {
		middleware.ErrorResponse(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		slog.Error("failed to create house owner", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	if err := h.sessions.SetCookie(w, auth.Session{Role: auth.RoleOwner, ID: owner.ID, Email: owner.Email}); err != nil {
		slog.Error("failed to issue session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	slog.Info("house owner signed up", "owner_id", owner.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.SignUpResponse{Success: true, OwnerID: owner.ID})
}

// account is a principal found by email during login
type account struct {
	session      auth.Session
	passwordHash string
	profile      models.Profile
}

// findAccount looks the email up among users, then owners, then admins.
// The first table holding the email decides the role.
func (h *AuthHandler) findAccount(ctx context.Context, email string) (*account, error) {
	u, err := h.store.UserByEmail(ctx, email)
	if err == nil {
		return &account{
			session:      auth.Session{Role: auth.RoleUser, ID: u.ID, Email: u.Email},
			passwordHash: u.PasswordHash,
			profile:      userProfile(u),
		}, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	o, err := h.store.OwnerByEmail(ctx, email)
	if err == nil {
		return &account{
			session:      auth.Session{Role: auth.RoleOwner, ID: o.ID, Email: o.Email},
			passwordHash: o.PasswordHash,
			profile:      ownerProfile(o),
		}, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	a, err := h.store.AdminByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &account{
		session:      auth.Session{Role: auth.RoleAdmin, ID: a.ID, Email: a.Email},
		passwordHash: a.PasswordHash,
		profile:      adminProfile(a),
	}, nil
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Email = auth.NormalizeEmail(req.Email)
	if msg := validationMessage(req); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	acct, err := h.findAccount(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		h.metrics.Login("failed")
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		slog.Error("failed to look up account", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Login failed")
		return
	}

	if err := auth.CheckPassword(acct.passwordHash, req.Password); err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			slog.Error("failed to check password", "error", err, "role", acct.session.Role)
		}
		h.metrics.Login("failed")
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := h.sessions.SetCookie(w, acct.session); err != nil {
		slog.Error("failed to issue session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	h.metrics.Login(acct.session.Role)
	slog.Info("login", "role", acct.session.Role, "id", acct.session.ID)

	resp := models.LoginResponse{Success: true, Role: acct.session.Role, User: acct.profile}
	switch acct.session.Role {
	case auth.RoleAdmin:
		resp.Redirect = "/admin"
	case auth.RoleOwner:
		resp.Redirect = "/my-houses/" + acct.session.ID
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookies(w)
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Logged out"})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	// A member token whose account is gone falls through to the admin token
	for _, sess := range h.sessions.Candidates(r) {
		profile, err := h.profile(r.Context(), sess)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			slog.Error("failed to load profile", "error", err, "role", sess.Role)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		middleware.JSONResponse(w, http.StatusOK, models.MeResponse{User: profile})
		return
	}

	middleware.ErrorResponse(w, http.StatusUnauthorized, "Not authenticated")
}

// profile loads the account behind a session. ErrNotFound means the
// account no longer exists.
func (h *AuthHandler) profile(ctx context.Context, sess auth.Session) (models.Profile, error) {
	switch sess.Role {
	case auth.RoleUser:
		u, err := h.store.UserByID(ctx, sess.ID)
		if err != nil {
			return models.Profile{}, err
		}
		return userProfile(u), nil
	case auth.RoleOwner:
		o, err := h.store.OwnerByID(ctx, sess.ID)
		if err != nil {
			return models.Profile{}, err
		}
		return ownerProfile(o), nil
	case auth.RoleAdmin:
		a, err := h.store.AdminByID(ctx, sess.ID)
		if err != nil {
			return models.Profile{}, err
		}
		return adminProfile(a), nil
	}
	return models.Profile{}, store.ErrNotFound
}

func userProfile(u *models.User) models.Profile {
	return models.Profile{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Name:      strings.TrimSpace(u.FirstName + " " + u.LastName),
	}
}

func ownerProfile(o *models.HouseOwner) models.Profile {
	return models.Profile{
		OwnerID:      o.ID,
		Email:        o.Email,
		Name:         o.Name,
		PhoneNumber:  o.PhoneNumber,
		IsHouseOwner: true,
	}
}

func adminProfile(a *models.Admin) models.Profile {
	return models.Profile{
		AdminID: a.ID,
		Email:   a.Email,
		Name:    a.Name,
		IsAdmin: true,
	}
}
