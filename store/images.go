// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"

	"github.com/Mustapha-who/kre/models"
)

// ImageURL is the public path an image is served from
func ImageURL(imageID string) string {
	return "/api/image/" + imageID
}

func (s *Store) ImageByID(ctx context.Context, id string) (*models.HouseImage, error) {
	var img models.HouseImage
	err := s.db.GetContext(ctx, &img, s.q(`
		SELECT id, house_id, content_type, size_bytes, data, created_at
		FROM house_image WHERE id = ?
	`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &img, nil
}
