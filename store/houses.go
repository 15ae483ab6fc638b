// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Mustapha-who/kre/auth"
	"github.com/Mustapha-who/kre/models"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// houseColumns selects a house joined with its region. Region columns are
// aliased "region.<col>" so sqlx fills the nested Region struct.
const houseColumns = `
	h.id, h.owner_id, h.region_id, h.title, h.description, h.monthly_rent,
	h.number_of_rooms, h.number_of_bathrooms, h.furnishing_status,
	h.is_available, h.verification_status, h.date_posted,
	r.id AS "region.id", r.region_name AS "region.region_name",
	r.city AS "region.city", r.country AS "region.country",
	r.postal_code AS "region.postal_code", r.street AS "region.street",
	r.latitude AS "region.latitude", r.longitude AS "region.longitude"`

const ownerColumns = `
	o.id AS "owner.id", o.name AS "owner.name", o.email AS "owner.email",
	o.phone_number AS "owner.phone_number", o.total_properties AS "owner.total_properties"`

// houseWithOwner scans a house row that also carries its owner's contact
type houseWithOwner struct {
	models.House
	OwnerRow models.OwnerSummary `db:"owner"`
}

func (r houseWithOwner) house() models.House {
	h := r.House
	owner := r.OwnerRow
	h.Owner = &owner
	return h
}

// HouseFilter narrows the public listing
type HouseFilter struct {
	Query   string
	Country string
	City    string
	Limit   int
	Offset  int
}

// SubmitHouse stores a listing, its region and its images in one
// transaction and bumps the owner's property count. The region is shared
// with earlier listings at the same address; its street and coordinates are
// refreshed from the new submission.
func (s *Store) SubmitHouse(ctx context.Context, nh models.NewHouse) (string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ownerExists int
	err = tx.GetContext(ctx, &ownerExists, tx.Rebind(`SELECT COUNT(*) FROM house_owner WHERE id = ?`), nh.OwnerID)
	if err != nil {
		return "", fmt.Errorf("failed to check owner: %w", err)
	}
	if ownerExists == 0 {
		return "", ErrNotFound
	}

	regionID, err := upsertRegion(ctx, tx, nh.Region)
	if err != nil {
		return "", err
	}

	furnishing := strings.TrimSpace(nh.FurnishingStatus)
	if furnishing == "" {
		furnishing = models.FurnishingUnspecified
	}

	houseID := auth.NewID()
	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO house (id, owner_id, region_id, title, description, monthly_rent,
			number_of_rooms, number_of_bathrooms, furnishing_status,
			is_available, verification_status, date_posted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), houseID, nh.OwnerID, regionID, nh.Title, nh.Description, nh.MonthlyRent,
		nh.NumberOfRooms, nh.NumberOfBathrooms, furnishing, true, false, now)
	if isUniqueViolation(err) {
		return "", ErrConflict
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert house: %w", err)
	}

	for i, img := range nh.Images {
		// Keep submission order stable for created_at ordering
		createdAt := now.Add(time.Duration(i) * time.Microsecond)
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO house_image (id, house_id, content_type, size_bytes, data, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`), auth.NewID(), houseID, img.ContentType, len(img.Data), img.Data, createdAt)
		if err != nil {
			return "", fmt.Errorf("failed to insert image %d: %w", i, err)
		}
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		UPDATE house_owner SET total_properties = total_properties + 1 WHERE id = ?
	`), nh.OwnerID)
	if err != nil {
		return "", fmt.Errorf("failed to update owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit submission: %w", err)
	}
	return houseID, nil
}

func upsertRegion(ctx context.Context, tx *sqlx.Tx, r models.Region) (string, error) {
	var id string
	err := tx.GetContext(ctx, &id, tx.Rebind(`
		SELECT id FROM region
		WHERE region_name = ? AND city = ? AND country = ? AND postal_code = ? AND street = ?
	`), r.RegionName, r.City, r.Country, r.PostalCode, r.Street)

	switch {
	case err == nil:
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			UPDATE region SET street = ?, latitude = ?, longitude = ? WHERE id = ?
		`), r.Street, r.Latitude, r.Longitude, id)
		if err != nil {
			return "", fmt.Errorf("failed to update region: %w", err)
		}
		return id, nil
	case errors.Is(notFound(err), ErrNotFound):
		id = auth.NewID()
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO region (id, region_name, city, country, postal_code, street, latitude, longitude, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`), id, r.RegionName, r.City, r.Country, r.PostalCode, r.Street, r.Latitude, r.Longitude, time.Now().UTC())
		if isUniqueViolation(err) {
			return "", ErrConflict
		}
		if err != nil {
			return "", fmt.Errorf("failed to insert region: %w", err)
		}
		return id, nil
	default:
		return "", fmt.Errorf("failed to look up region: %w", err)
	}
}

// ListVerified returns verified houses, newest first. Query matches title
// and address fields as a case-insensitive substring; Country and City must
// be given together and match exactly (ignoring case).
func (s *Store) ListVerified(ctx context.Context, f HouseFilter) ([]models.House, error) {
	var (
		where []string
		args  []interface{}
	)
	where = append(where, "h.verification_status = ?")
	args = append(args, true)

	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := likePattern(q)
		var ors []string
		for _, col := range []string{"h.title", "r.region_name", "r.city", "r.country", "r.postal_code", "r.street"} {
			ors = append(ors, s.fold(col)+` LIKE ? ESCAPE '\'`)
			args = append(args, pattern)
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}

	if f.Country != "" && f.City != "" {
		where = append(where, s.fold("r.country")+" = ?", s.fold("r.city")+" = ?")
		args = append(args, strings.ToLower(strings.TrimSpace(f.Country)), strings.ToLower(strings.TrimSpace(f.City)))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	query := `SELECT ` + houseColumns + `
		FROM house h
		JOIN region r ON r.id = h.region_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY h.date_posted DESC, h.id
		LIMIT ? OFFSET ?`

	houses := []models.House{}
	if err := s.db.SelectContext(ctx, &houses, s.q(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list houses: %w", err)
	}
	if err := s.attachImages(ctx, houses); err != nil {
		return nil, err
	}
	return houses, nil
}

// HouseByID returns a house with its region, owner contact and images,
// regardless of verification state.
func (s *Store) HouseByID(ctx context.Context, id string) (*models.House, error) {
	var row houseWithOwner
	err := s.db.GetContext(ctx, &row, s.q(`SELECT `+houseColumns+`, `+ownerColumns+`
		FROM house h
		JOIN region r ON r.id = h.region_id
		JOIN house_owner o ON o.id = h.owner_id
		WHERE h.id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}

	houses := []models.House{row.house()}
	if err := s.attachImages(ctx, houses); err != nil {
		return nil, err
	}
	return &houses[0], nil
}

// HousesByOwner returns every house of an owner, verified or not, newest first.
func (s *Store) HousesByOwner(ctx context.Context, ownerID string) ([]models.House, error) {
	houses := []models.House{}
	err := s.db.SelectContext(ctx, &houses, s.q(`SELECT `+houseColumns+`
		FROM house h
		JOIN region r ON r.id = h.region_id
		WHERE h.owner_id = ?
		ORDER BY h.date_posted DESC, h.id`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner houses: %w", err)
	}
	if err := s.attachImages(ctx, houses); err != nil {
		return nil, err
	}
	return houses, nil
}

// AdminHouses returns the moderation queue: unverified houses first, then
// newest. With verifiedOnly set only verified houses are returned.
func (s *Store) AdminHouses(ctx context.Context, verifiedOnly bool, limit int) ([]models.House, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = DefaultListLimit
	}

	query := `SELECT ` + houseColumns + `, ` + ownerColumns + `
		FROM house h
		JOIN region r ON r.id = h.region_id
		JOIN house_owner o ON o.id = h.owner_id`
	var args []interface{}
	if verifiedOnly {
		query += ` WHERE h.verification_status = ?`
		args = append(args, true)
	}
	query += ` ORDER BY h.verification_status ASC, h.date_posted DESC, h.id LIMIT ?`
	args = append(args, limit)

	var rows []houseWithOwner
	if err := s.db.SelectContext(ctx, &rows, s.q(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list admin houses: %w", err)
	}

	houses := make([]models.House, 0, len(rows))
	for _, row := range rows {
		houses = append(houses, row.house())
	}
	if err := s.attachImages(ctx, houses); err != nil {
		return nil, err
	}
	return houses, nil
}

// SetVerification updates a house's verification flag and returns the
// updated house.
func (s *Store) SetVerification(ctx context.Context, id string, verified bool) (*models.House, error) {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE house SET verification_status = ? WHERE id = ?`), verified, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update verification: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return s.HouseByID(ctx, id)
}

// Stats counts houses by verification state
func (s *Store) Stats(ctx context.Context) (models.AdminStats, error) {
	var stats models.AdminStats
	err := s.db.GetContext(ctx, &stats, s.q(`
		SELECT
			COALESCE(SUM(CASE WHEN verification_status = ? THEN 0 ELSE 1 END), 0) AS unverified_count,
			COALESCE(SUM(CASE WHEN verification_status = ? THEN 1 ELSE 0 END), 0) AS verified_count
		FROM house
	`), true, true)
	if err != nil {
		return stats, fmt.Errorf("failed to count houses: %w", err)
	}
	return stats, nil
}

// HouseExists reports whether a house with the id exists
func (s *Store) HouseExists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM house WHERE id = ?`), id); err != nil {
		return false, fmt.Errorf("failed to check house: %w", err)
	}
	return n > 0, nil
}

// attachImages fills Images on each house with references ordered by
// upload time. Houses without images get an empty slice.
func (s *Store) attachImages(ctx context.Context, houses []models.House) error {
	if len(houses) == 0 {
		return nil
	}

	ids := make([]string, len(houses))
	for i := range houses {
		ids[i] = houses[i].ID
		houses[i].Images = []models.ImageRef{}
	}

	query, args, err := sqlx.In(`
		SELECT id, house_id FROM house_image
		WHERE house_id IN (?)
		ORDER BY created_at, id
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to build image query: %w", err)
	}

	var refs []struct {
		ID      string `db:"id"`
		HouseID string `db:"house_id"`
	}
	if err := s.db.SelectContext(ctx, &refs, s.q(query), args...); err != nil {
		return fmt.Errorf("failed to load image references: %w", err)
	}

	byHouse := make(map[string][]models.ImageRef, len(houses))
	for _, ref := range refs {
		byHouse[ref.HouseID] = append(byHouse[ref.HouseID], models.ImageRef{ID: ref.ID, URL: ImageURL(ref.ID)})
	}
	for i := range houses {
		if imgs, ok := byHouse[houses[i].ID]; ok {
			houses[i].Images = imgs
		}
	}
	return nil
}
