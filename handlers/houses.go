// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"github.com/Mustapha-who/kre/auth"
	"github.com/Mustapha-who/kre/cliparse"
	"github.com/Mustapha-who/kre/metrics"
	"github.com/Mustapha-who/kre/middleware"
	"github.com/Mustapha-who/kre/models"
	"github.com/Mustapha-who/kre/store"
)

const (
	// Form parts beyond this are spooled to disk by ParseMultipartForm
	multipartMemory = 32 << 20
	// Hard cap on the whole submission body
	maxSubmitBody = 128 << 20
)

type HouseHandler struct {
	store   *store.Store
	cfg     cliparse.Config
	metrics *metrics.Metrics
}

func NewHouseHandler(st *store.Store, cfg cliparse.Config, m *metrics.Metrics) *HouseHandler {
	return &HouseHandler{store: st, cfg: cfg, metrics: m}
}

// submitForm is the multipart submission after type conversion
type submitForm struct {
	OwnerID           string   `json:"ownerId" validate:"required,uuid"`
	Title             string   `json:"title" validate:"required,max=200"`
	Description       string   `json:"description" validate:"required"`
	MonthlyRent       float64  `json:"monthlyRent" validate:"gte=0"`
	NumberOfRooms     int      `json:"numberOfRooms" validate:"gte=0"`
	NumberOfBathrooms int      `json:"numberOfBathrooms" validate:"gte=0"`
	FurnishingStatus  string   `json:"furnishingStatus" validate:"max=50"`
	City              string   `json:"city" validate:"required"`
	Country           string   `json:"country" validate:"required"`
	RegionName        string   `json:"regionName" validate:"required"`
	PostalCode        string   `json:"postalCode" validate:"required"`
	Street            string   `json:"street" validate:"required"`
	Latitude          *float64 `json:"latitude" validate:"omitnil,gte=-90,lte=90"`
	Longitude         *float64 `json:"longitude" validate:"omitnil,gte=-180,lte=180"`
}

// readSubmitForm converts form values. The returned string names the first
// field that is missing or fails to parse.
func readSubmitForm(r *http.Request) (submitForm, string) {
	value := func(name string) string { return strings.TrimSpace(r.FormValue(name)) }

	f := submitForm{
		OwnerID:          value("ownerId"),
		Title:            value("title"),
		Description:      value("description"),
		FurnishingStatus: value("furnishingStatus"),
		City:             value("city"),
		Country:          value("country"),
		RegionName:       value("regionName"),
		PostalCode:       value("postalCode"),
		Street:           value("street"),
	}

	var err error
	if f.MonthlyRent, err = parseFinite(value("monthlyRent")); err != nil {
		return f, "monthlyRent"
	}
	if f.NumberOfRooms, err = strconv.Atoi(value("numberOfRooms")); err != nil {
		return f, "numberOfRooms"
	}
	if f.NumberOfBathrooms, err = strconv.Atoi(value("numberOfBathrooms")); err != nil {
		return f, "numberOfBathrooms"
	}
	for _, c := range []struct {
		name string
		dst  **float64
	}{{"latitude", &f.Latitude}, {"longitude", &f.Longitude}} {
		raw := value(c.name)
		if raw == "" {
			continue
		}
		v, err := parseFinite(raw)
		if err != nil {
			return f, c.name
		}
		*c.dst = &v
	}
	return f, ""
}

// parseFinite parses a float and rejects NaN and the infinities, which
// ParseFloat accepts but JSON cannot encode.
func parseFinite(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", raw)
	}
	return v, nil
}

// readImages sniffs every uploaded file. Files over the size limit or not
// detected as images are skipped and counted.
func (h *HouseHandler) readImages(files []*multipart.FileHeader) ([]models.NewImage, int) {
	var (
		images  []models.NewImage
		skipped int
	)
	limit := h.cfg.MaxImageBytes

	for _, fh := range files {
		if fh.Size > limit {
			slog.Warn("skipping oversized image", "file", fh.Filename,
				"size", humanize.IBytes(uint64(fh.Size)), "limit", humanize.IBytes(uint64(limit)))
			skipped++
			continue
		}

		data, err := readLimited(fh, limit)
		if err != nil {
			slog.Warn("skipping unreadable image", "file", fh.Filename, "error", err)
			skipped++
			continue
		}

		mt := mimetype.Detect(data)
		if !strings.HasPrefix(mt.String(), "image/") {
			slog.Warn("skipping non-image upload", "file", fh.Filename, "detected", mt.String())
			skipped++
			continue
		}

		images = append(images, models.NewImage{ContentType: mt.String(), Data: data})
	}
	return images, skipped
}

func readLimited(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds %s", humanize.IBytes(uint64(limit)))
	}
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}
	return data, nil
}

// Submit handles POST /api/house/submit
func (h *HouseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxSubmitBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	ownerID := strings.TrimSpace(r.FormValue("ownerId"))
	if !auth.ValidID(ownerID) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid ownerId")
		return
	}
	if !sess.IsOwner() || sess.ID != ownerID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Only the house owner can submit listings for this account")
		return
	}

	form, bad := readSubmitForm(r)
	if bad != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, missingField(bad))
		return
	}
	if msg := validationMessage(form); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	files := r.MultipartForm.File["images"]
	files = append(files, r.MultipartForm.File["images[]"]...)
	images, skipped := h.readImages(files)

	houseID, err := h.store.SubmitHouse(r.Context(), models.NewHouse{
		OwnerID:           form.OwnerID,
		Title:             form.Title,
		Description:       form.Description,
		MonthlyRent:       form.MonthlyRent,
		NumberOfRooms:     form.NumberOfRooms,
		NumberOfBathrooms: form.NumberOfBathrooms,
		FurnishingStatus:  form.FurnishingStatus,
		Region: models.Region{
			RegionName: form.RegionName,
			City:       form.City,
			Country:    form.Country,
			PostalCode: form.PostalCode,
			Street:     form.Street,
			Latitude:   form.Latitude,
			Longitude:  form.Longitude,
		},
		Images: images,
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "House owner not found")
		return
	case errors.Is(err, store.ErrConflict):
		middleware.ErrorResponse(w, http.StatusConflict, "Listing conflicts with an existing record")
		return
	case err != nil:
		slog.Error("failed to submit house", "error", err, "owner_id", form.OwnerID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit house")
		return
	}

	h.metrics.HouseSubmitted(len(images), skipped)
	slog.Info("house submitted", "house_id", houseID, "owner_id", form.OwnerID,
		"images_stored", len(images), "images_skipped", skipped)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitHouseResponse{
		Success:       true,
		HouseID:       houseID,
		ImagesStored:  len(images),
		ImagesSkipped: skipped,
	})
}

// List handles GET /api/houses
func (h *HouseHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.HouseFilter{
		Query:   strings.TrimSpace(q.Get("q")),
		Country: strings.TrimSpace(q.Get("country")),
		City:    strings.TrimSpace(q.Get("city")),
	}
	if (filter.Country == "") != (filter.City == "") {
		middleware.ErrorResponse(w, http.StatusBadRequest, "country and city must be provided together")
		return
	}

	var err error
	if raw := q.Get("limit"); raw != "" {
		if filter.Limit, err = strconv.Atoi(raw); err != nil || filter.Limit < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if filter.Offset, err = strconv.Atoi(raw); err != nil || filter.Offset < 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid offset")
			return
		}
	}

	houses, err := h.store.ListVerified(r.Context(), filter)
	if err != nil {
		slog.Error("failed to list houses", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if sess, ok := middleware.SessionFrom(r.Context()); ok && !sess.IsAdmin() {
		if err := h.store.MarkFavorites(r.Context(), sess, houses); err != nil {
			slog.Warn("failed to mark favorites", "error", err)
		}
	}

	middleware.JSONResponse(w, http.StatusOK, houses)
}

// Get handles GET /api/houses/{id}
func (h *HouseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !auth.ValidID(id) {
		middleware.ErrorResponse(w, http.StatusNotFound, "House not found")
		return
	}

	house, err := h.store.HouseByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "House not found")
		return
	}
	if err != nil {
		slog.Error("failed to load house", "error", err, "house_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	sess, _ := middleware.SessionFrom(r.Context())
	if !house.VerificationStatus && !sess.IsAdmin() && !(sess.IsOwner() && sess.ID == house.OwnerID) {
		middleware.ErrorResponse(w, http.StatusNotFound, "House not found")
		return
	}

	if sess.IsUser() || sess.IsOwner() {
		houses := []models.House{*house}
		if err := h.store.MarkFavorites(r.Context(), sess, houses); err != nil {
			slog.Warn("failed to mark favorite", "error", err)
		}
		house = &houses[0]
	}

	middleware.JSONResponse(w, http.StatusOK, house)
}

// ListByOwner handles GET /api/houses/owner/{ownerId}
func (h *HouseHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("ownerId")
	if !auth.ValidID(ownerID) {
		middleware.ErrorResponse(w, http.StatusNotFound, "House owner not found")
		return
	}

	if _, err := h.store.OwnerByID(r.Context(), ownerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "House owner not found")
			return
		}
		slog.Error("failed to load owner", "error", err, "owner_id", ownerID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	houses, err := h.store.HousesByOwner(r.Context(), ownerID)
	if err != nil {
		slog.Error("failed to list owner houses", "error", err, "owner_id", ownerID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, houses)
}
