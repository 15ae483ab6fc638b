// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and applies the schema.

# Connecting

Open accepts "sqlite" (modernc.org/sqlite, no cgo) or "postgres" (lib/pq):

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)

SQLite handles are limited to one connection with foreign keys enabled.

# Schema Creation

CreateSchema runs the embedded golang-migrate migrations for the dialect:

	if err := db.CreateSchema(conn, cfg.DatabaseType, cfg.DatabaseURL); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - applied versions are tracked in schema_migrations.

# Tables

  - app_user: end users who browse and save listings
  - house_owner: landlords; total_properties counts their submissions
  - admin: moderators
  - region: one row per distinct address (name, city, country, postal code, street)
  - house: a listing; hidden from search until verification_status is set
  - house_image: image bytes stored inline with their content type
  - saved_house: favorites, keyed by exactly one of user_id or owner_id

# Relationships

	house_owner 1──* house
	region      1──* house
	house       1──* house_image
	house       1──* saved_house
	app_user    1──* saved_house
	house_owner 1──* saved_house

Deleting a house cascades to its images and saved_house rows.
*/
package db
