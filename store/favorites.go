// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Mustapha-who/kre/auth"
	"github.com/Mustapha-who/kre/models"
)

// principalColumn picks the saved_house column that identifies the caller.
// Admins do not keep favorites.
func principalColumn(sess auth.Session) (string, error) {
	switch sess.Role {
	case auth.RoleUser:
		return "user_id", nil
	case auth.RoleOwner:
		return "owner_id", nil
	}
	return "", fmt.Errorf("role %q cannot save houses", sess.Role)
}

// SaveFavorite records a saved house for the caller. Saving twice is not
// an error: alreadySaved reports the earlier save. A missing house yields
// ErrNotFound.
func (s *Store) SaveFavorite(ctx context.Context, sess auth.Session, houseID string) (alreadySaved bool, err error) {
	col, err := principalColumn(sess)
	if err != nil {
		return false, err
	}

	exists, err := s.HouseExists(ctx, houseID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrNotFound
	}

	var n int
	err = s.db.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM saved_house WHERE `+col+` = ? AND house_id = ?`), sess.ID, houseID)
	if err != nil {
		return false, fmt.Errorf("failed to check saved house: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO saved_house (id, `+col+`, house_id, created_at) VALUES (?, ?, ?, ?)
	`), auth.NewID(), sess.ID, houseID, time.Now().UTC())
	if isUniqueViolation(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to save house: %w", err)
	}
	return false, nil
}

// RemoveFavorite deletes a saved house. Removing something never saved
// succeeds.
func (s *Store) RemoveFavorite(ctx context.Context, sess auth.Session, houseID string) error {
	col, err := principalColumn(sess)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.q(`DELETE FROM saved_house WHERE `+col+` = ? AND house_id = ?`), sess.ID, houseID)
	if err != nil {
		return fmt.Errorf("failed to remove saved house: %w", err)
	}
	return nil
}

// Favorites returns the caller's saved houses, most recently saved first.
// Saved houses are returned even if they have since been unverified.
func (s *Store) Favorites(ctx context.Context, sess auth.Session) ([]models.House, error) {
	col, err := principalColumn(sess)
	if err != nil {
		return nil, err
	}

	houses := []models.House{}
	err = s.db.SelectContext(ctx, &houses, s.q(`SELECT `+houseColumns+`
		FROM saved_house sh
		JOIN house h ON h.id = sh.house_id
		JOIN region r ON r.id = h.region_id
		WHERE sh.`+col+` = ?
		ORDER BY sh.created_at DESC, h.id`), sess.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved houses: %w", err)
	}
	for i := range houses {
		houses[i].IsFavorite = true
	}
	if err := s.attachImages(ctx, houses); err != nil {
		return nil, err
	}
	return houses, nil
}

// MarkFavorites sets IsFavorite on the houses the caller has saved
func (s *Store) MarkFavorites(ctx context.Context, sess auth.Session, houses []models.House) error {
	col, err := principalColumn(sess)
	if err != nil || len(houses) == 0 {
		return nil
	}

	ids := make([]string, len(houses))
	for i := range houses {
		ids[i] = houses[i].ID
	}
	query, args, err := sqlx.In(`SELECT house_id FROM saved_house WHERE `+col+` = ? AND house_id IN (?)`, sess.ID, ids)
	if err != nil {
		return fmt.Errorf("failed to build favorites query: %w", err)
	}

	var saved []string
	if err := s.db.SelectContext(ctx, &saved, s.q(query), args...); err != nil {
		return fmt.Errorf("failed to load favorites: %w", err)
	}

	set := make(map[string]bool, len(saved))
	for _, id := range saved {
		set[id] = true
	}
	for i := range houses {
		houses[i].IsFavorite = set[houses[i].ID]
	}
	return nil
}
