// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// MaxSuggestions caps how many suggestions are returned
const MaxSuggestions = 8

// candidate rows are capped before ranking
const suggestionScanLimit = 200

// Suggest returns location strings from verified listings that contain q.
// A blank q yields an empty result without touching the database.
func (s *Store) Suggest(ctx context.Context, q string) ([]string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []string{}, nil
	}

	pattern, prefix := likePattern(q), prefixPattern(q)
	city, country := s.fold("r.city"), s.fold("r.country")
	region, postal := s.fold("r.region_name"), s.fold("r.postal_code")

	// Rows with a prefix match sort first so the scan cap keeps them
	var rows []struct {
		City       string `db:"city"`
		Country    string `db:"country"`
		RegionName string `db:"region_name"`
		PostalCode string `db:"postal_code"`
		Rank       int    `db:"prefix_rank"`
	}
	err := s.db.SelectContext(ctx, &rows, s.q(`
		SELECT DISTINCT r.city, r.country, r.region_name, r.postal_code,
			CASE WHEN `+city+` LIKE ? ESCAPE '\'
			       OR `+country+` LIKE ? ESCAPE '\'
			       OR `+region+` LIKE ? ESCAPE '\'
			       OR `+postal+` LIKE ? ESCAPE '\'
			     THEN 0 ELSE 1 END AS prefix_rank
		FROM region r
		JOIN house h ON h.region_id = r.id
		WHERE h.verification_status = ?
		  AND (`+city+` LIKE ? ESCAPE '\'
		    OR `+country+` LIKE ? ESCAPE '\'
		    OR `+region+` LIKE ? ESCAPE '\'
		    OR `+postal+` LIKE ? ESCAPE '\')
		ORDER BY prefix_rank, r.city, r.country, r.region_name, r.postal_code
		LIMIT ?
	`), prefix, prefix, prefix, prefix, true, pattern, pattern, pattern, pattern, suggestionScanLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load suggestions: %w", err)
	}

	var candidates []string
	for _, row := range rows {
		candidates = append(candidates, row.City, row.Country, row.RegionName, row.PostalCode)
	}
	return RankSuggestions(q, candidates, MaxSuggestions), nil
}

// RankSuggestions keeps candidates containing q (ignoring case), drops
// duplicates and orders prefix matches first, then shorter values, then
// alphabetically.
func RankSuggestions(q string, candidates []string, limit int) []string {
	needle := strings.ToLower(strings.TrimSpace(q))
	seen := make(map[string]bool, len(candidates))
	out := []string{}

	for _, c := range candidates {
		c = strings.TrimSpace(c)
		lower := strings.ToLower(c)
		if c == "" || seen[lower] || !strings.Contains(lower, needle) {
			continue
		}
		seen[lower] = true
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i]), strings.ToLower(out[j])
		ap, bp := strings.HasPrefix(a, needle), strings.HasPrefix(b, needle)
		if ap != bp {
			return ap
		}
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
