// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Mustapha-who/kre/auth"
	"github.com/Mustapha-who/kre/cliparse"
	"github.com/Mustapha-who/kre/db"
	"github.com/Mustapha-who/kre/models"
	"github.com/Mustapha-who/kre/store"
)

// TestPassword is the password every fixture account is created with
const TestPassword = "password123"

// PNG is the smallest byte sequence sniffed as image/png
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

// passwordHash is computed once; bcrypt is slow on purpose
var passwordHash string

func init() {
	h, err := auth.HashPassword(TestPassword)
	if err != nil {
		panic(err)
	}
	passwordHash = h
}

// SetupTestDB opens a fresh in-memory SQLite database with the full schema.
// It is closed when the test ends.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), cliparse.DatabaseSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, cliparse.DatabaseSQLite, ":memory:"); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// SetupTestStore is SetupTestDB wrapped in a Store
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(SetupTestDB(t))
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   ":memory:",
		DatabaseType:  cliparse.DatabaseSQLite,
		JWTSecret:     "test-jwt-secret",
		TokenTTL:      time.Hour,
		SuggestionTTL: time.Minute,
		MaxImageBytes: 5 << 20,
		LoginRate:     100,
		LoginBurst:    100,
		LogFormat:     "text",
	}
}

// CreateTestUser creates a user with TestPassword
func CreateTestUser(t *testing.T, st *store.Store, email string) *models.User {
	t.Helper()

	u := &models.User{Email: email, PasswordHash: passwordHash, FirstName: "Test", LastName: "User"}
	if err := st.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return u
}

// CreateTestOwner creates a house owner with TestPassword
func CreateTestOwner(t *testing.T, st *store.Store, email string) *models.HouseOwner {
	t.Helper()

	o := &models.HouseOwner{Email: email, PasswordHash: passwordHash, Name: "Test Owner", PhoneNumber: "+216 20 000 000"}
	if err := st.CreateOwner(context.Background(), o); err != nil {
		t.Fatalf("Failed to create test owner: %v", err)
	}
	return o
}

// CreateTestAdmin creates an admin with TestPassword
func CreateTestAdmin(t *testing.T, st *store.Store, email string) *models.Admin {
	t.Helper()

	a := &models.Admin{Email: email, PasswordHash: passwordHash, Name: "Test Admin"}
	if err := st.CreateAdmin(context.Background(), a); err != nil {
		t.Fatalf("Failed to create test admin: %v", err)
	}
	return a
}

// TestHouse returns a submission for the owner in Tunis with one PNG image.
// Callers adjust fields before passing it to CreateTestHouse.
func TestHouse(ownerID string) models.NewHouse {
	lat, long := 36.8065, 10.1815
	return models.NewHouse{
		OwnerID:           ownerID,
		Title:             "Sunny apartment",
		Description:       "Two rooms near the medina",
		MonthlyRent:       850,
		NumberOfRooms:     2,
		NumberOfBathrooms: 1,
		FurnishingStatus:  "Furnished",
		Region: models.Region{
			RegionName: "Medina",
			City:       "Tunis",
			Country:    "Tunisia",
			PostalCode: "1000",
			Street:     "Rue de la Kasbah",
			Latitude:   &lat,
			Longitude:  &long,
		},
		Images: []models.NewImage{{ContentType: "image/png", Data: PNG}},
	}
}

// CreateTestHouse stores the submission and optionally verifies it
func CreateTestHouse(t *testing.T, st *store.Store, nh models.NewHouse, verified bool) string {
	t.Helper()

	ctx := context.Background()
	id, err := st.SubmitHouse(ctx, nh)
	if err != nil {
		t.Fatalf("Failed to create test house: %v", err)
	}
	if verified {
		if _, err := st.SetVerification(ctx, id, true); err != nil {
			t.Fatalf("Failed to verify test house: %v", err)
		}
	}
	return id
}

// SessionCookie issues a token for the session and returns the cookie a
// browser would send: "admin-token" for admins, "token" otherwise.
func SessionCookie(t *testing.T, cfg cliparse.Config, sess auth.Session) *http.Cookie {
	t.Helper()

	token, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL).Issue(sess)
	if err != nil {
		t.Fatalf("Failed to issue test token: %v", err)
	}
	name := auth.MemberCookie
	if sess.IsAdmin() {
		name = auth.AdminCookie
	}
	return &http.Cookie{Name: name, Value: token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, cookies ...*http.Cookie) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
