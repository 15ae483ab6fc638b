// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mustapha-who/kre/auth"
	"github.com/Mustapha-who/kre/cliparse"
	"github.com/Mustapha-who/kre/metrics"
	"github.com/Mustapha-who/kre/middleware"
	"github.com/Mustapha-who/kre/store"
	"github.com/Mustapha-who/kre/testutil"
)

type testEnv struct {
	store    *store.Store
	cfg      cliparse.Config
	sessions *middleware.Sessions
	metrics  *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testutil.GetTestConfig()
	return &testEnv{
		store:    testutil.SetupTestStore(t),
		cfg:      cfg,
		sessions: middleware.NewSessions(auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL), false),
		metrics:  metrics.New(),
	}
}

func (e *testEnv) cookie(t *testing.T, role, id string) *http.Cookie {
	t.Helper()
	return testutil.SessionCookie(t, e.cfg, auth.Session{Role: role, ID: id})
}

// serve runs the handler against req and returns the recorder
func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

type upload struct {
	field    string
	filename string
	data     []byte
}

// multipartRequest builds a multipart/form-data POST
func multipartRequest(t *testing.T, path string, fields map[string]string, files []upload) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("Failed to write field: %v", err)
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.filename)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		part.Write(f.data)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest("POST", path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// houseFields is a complete, valid submission for the owner
func houseFields(ownerID string) map[string]string {
	return map[string]string{
		"ownerId":           ownerID,
		"title":             "Flat near the beach",
		"description":       "Bright two-room flat",
		"monthlyRent":       "1200.50",
		"numberOfRooms":     "2",
		"numberOfBathrooms": "1",
		"furnishingStatus":  "Semi-furnished",
		"city":              "Sousse",
		"country":           "Tunisia",
		"regionName":        "Khezama",
		"postalCode":        "4051",
		"street":            "Avenue Hedi Chaker",
		"latitude":          "35.8388",
		"longitude":         "10.6256",
	}
}
