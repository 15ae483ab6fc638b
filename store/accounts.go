// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Mustapha-who/kre/auth"
	"github.com/Mustapha-who/kre/models"
)

// CreateUser inserts a user. ID and CreatedAt are filled in when empty.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = auth.NewID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO app_user (id, email, password_hash, first_name, last_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.CreatedAt)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT * FROM app_user WHERE email = ?`), email)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT * FROM app_user WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// CreateOwner inserts a house owner with zero listed properties.
func (s *Store) CreateOwner(ctx context.Context, o *models.HouseOwner) error {
	if o.ID == "" {
		o.ID = auth.NewID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	o.TotalProperties = 0

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO house_owner (id, email, password_hash, name, phone_number, total_properties, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
	`), o.ID, o.Email, o.PasswordHash, o.Name, o.PhoneNumber, o.CreatedAt)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create house owner: %w", err)
	}
	return nil
}

func (s *Store) OwnerByEmail(ctx context.Context, email string) (*models.HouseOwner, error) {
	var o models.HouseOwner
	err := s.db.GetContext(ctx, &o, s.q(`SELECT * FROM house_owner WHERE email = ?`), email)
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (s *Store) OwnerByID(ctx context.Context, id string) (*models.HouseOwner, error) {
	var o models.HouseOwner
	err := s.db.GetContext(ctx, &o, s.q(`SELECT * FROM house_owner WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (s *Store) CreateAdmin(ctx context.Context, a *models.Admin) error {
	if a.ID == "" {
		a.ID = auth.NewID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO admin (id, email, password_hash, name, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), a.ID, a.Email, a.PasswordHash, a.Name, a.CreatedAt)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (s *Store) AdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	err := s.db.GetContext(ctx, &a, s.q(`SELECT * FROM admin WHERE email = ?`), email)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *Store) AdminByID(ctx context.Context, id string) (*models.Admin, error) {
	var a models.Admin
	err := s.db.GetContext(ctx, &a, s.q(`SELECT * FROM admin WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// EnsureAdmin creates the bootstrap admin unless one with that email
// already exists. An existing account is left untouched.
func (s *Store) EnsureAdmin(ctx context.Context, email, passwordHash, name string) (created bool, err error) {
	if _, err := s.AdminByEmail(ctx, email); err == nil {
		return false, nil
	} else if err != ErrNotFound {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}

	err = s.CreateAdmin(ctx, &models.Admin{Email: email, PasswordHash: passwordHash, Name: name})
	if err == ErrEmailTaken {
		// Lost a race with another instance
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
