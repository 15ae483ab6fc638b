// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mustapha-who/kre/auth"
	"github.com/Mustapha-who/kre/models"
	"github.com/Mustapha-who/kre/store"
	"github.com/Mustapha-who/kre/testutil"
)

func TestAccounts(t *testing.T) {
	st := testutil.SetupTestStore(t)
	ctx := context.Background()

	u := testutil.CreateTestUser(t, st, "user@example.com")
	got, err := st.UserByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "Test", got.FirstName)

	err = st.CreateUser(ctx, &models.User{Email: "user@example.com", PasswordHash: "x", FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, store.ErrEmailTaken)

	_, err = st.UserByID(ctx, auth.NewID())
	assert.ErrorIs(t, err, store.ErrNotFound)

	o := testutil.CreateTestOwner(t, st, "owner@example.com")
	gotOwner, err := st.OwnerByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", gotOwner.Email)
	assert.Zero(t, gotOwner.TotalProperties)

	err = st.CreateOwner(ctx, &models.HouseOwner{Email: "owner@example.com", PasswordHash: "x", Name: "n", PhoneNumber: "1"})
	assert.ErrorIs(t, err, store.ErrEmailTaken)

	_, err = st.OwnerByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	a := testutil.CreateTestAdmin(t, st, "admin@example.com")
	gotAdmin, err := st.AdminByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, gotAdmin.ID)
}

func TestEnsureAdmin(t *testing.T) {
	st := testutil.SetupTestStore(t)
	ctx := context.Background()

	created, err := st.EnsureAdmin(ctx, "root@example.com", "hash", "Administrator")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = st.EnsureAdmin(ctx, "root@example.com", "other-hash", "Administrator")
	require.NoError(t, err)
	assert.False(t, created)

	a, err := st.AdminByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", a.PasswordHash, "existing admin must be left untouched")
}

func TestSubmitHouse(t *testing.T) {
	st := testutil.SetupTestStore(t)
	ctx := context.Background()
	owner := testutil.CreateTestOwner(t, st, "owner@example.com")

	nh := testutil.TestHouse(owner.ID)
	nh.FurnishingStatus = ""
	nh.Images = append(nh.Images, models.NewImage{ContentType: "image/png", Data: testutil.PNG})
	id := testutil.CreateTestHouse(t, st, nh, false)

	h, err := st.HouseByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Sunny apartment", h.Title)
	assert.Equal(t, models.FurnishingUnspecified, h.FurnishingStatus)
	assert.True(t, h.IsAvailable)
	assert.False(t, h.VerificationStatus)
	assert.Equal(t, "Tunis", h.Region.City)
	require.NotNil(t, h.Owner)
	assert.Equal(t, owner.ID, h.Owner.ID)
	assert.Equal(t, 1, h.Owner.TotalProperties)
	require.Len(t, h.Images, 2)
	assert.Equal(t, store.ImageURL(h.Images[0].ID), h.Images[0].URL)

	// Same address reuses the region and refreshes its coordinates
	second := testutil.TestHouse(owner.ID)
	lat := 36.9
	second.Region.Latitude = &lat
	id2 := testutil.CreateTestHouse(t, st, second, false)

	h2, err := st.HouseByID(ctx, id2)
	require.NoError(t, err)
	assert.Equal(t, h.RegionID, h2.RegionID)
	require.NotNil(t, h2.Region.Latitude)
	assert.InDelta(t, 36.9, *h2.Region.Latitude, 1e-9)
	assert.Equal(t, 2, h2.Owner.TotalProperties)

	// A different postal code is a different region
	third := testutil.TestHouse(owner.ID)
	third.Region.PostalCode = "1001"
	id3 := testutil.CreateTestHouse(t, st, third, false)
	h3, err := st.HouseByID(ctx, id3)
	require.NoError(t, err)
	assert.NotEqual(t, h.RegionID, h3.RegionID)

	_, err = st.SubmitHouse(ctx, testutil.TestHouse(auth.NewID()))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListVerified(t *testing.T) {
	st := testutil.SetupTestStore(t)
	ctx := context.Background()
	owner := testutil.CreateTestOwner(t, st, "owner@example.com")

	hidden := testutil.CreateTestHouse(t, st, testutil.TestHouse(owner.ID), false)

	older := testutil.CreateTestHouse(t, st, testutil.TestHouse(owner.ID), true)

	sfax := testutil.TestHouse(owner.ID)
	sfax.Title = "Villa by the sea"
	sfax.Region = models.Region{RegionName: "Sakiet Ezzit", City: "Sfax", Country: "Tunisia", PostalCode: "3021", Street: "Route de Tunis"}
	sfax.Images = nil
	newer := testutil.CreateTestHouse(t, st, sfax, true)

	all, err := st.ListVerified(ctx, store.HouseFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer, all[0].ID, "newest first")
	assert.Equal(t, older, all[1].ID)
	assert.NotNil(t, all[0].Images, "houses without images get an empty list")
	assert.Empty(t, all[0].Images)
	assert.Len(t, all[1].Images, 1)
	for _, h := range all {
		assert.NotEqual(t, hidden, h.ID, "unverified houses must not be listed")
	}

	tests := []struct {
		name   string
		filter store.HouseFilter
		want   []string
	}{
		{"title substring", store.HouseFilter{Query: "VILLA"}, []string{newer}},
		{"region name", store.HouseFilter{Query: "medina"}, []string{older}},
		{"street", store.HouseFilter{Query: "route de"}, []string{newer}},
		{"country matches both", store.HouseFilter{Query: "tunisia"}, []string{newer, older}},
		{"wildcards are literal", store.HouseFilter{Query: "10%"}, nil},
		{"underscore is literal", store.HouseFilter{Query: "_"}, nil},
		{"location", store.HouseFilter{Country: "TUNISIA", City: "sfax"}, []string{newer}},
		{"location without match", store.HouseFilter{Country: "France", City: "Sfax"}, nil},
		{"limit", store.HouseFilter{Limit: 1}, []string{newer}},
		{"offset", store.HouseFilter{Limit: 1, Offset: 1}, []string{older}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			houses, err := st.ListVerified(ctx, tt.filter)
			require.NoError(t, err)

			var ids []string
			for _, h := range houses {
				ids = append(ids, h.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestHousesByOwner(t *testing.T) {
	st := testutil.SetupTestStore(t)
	ctx := context.Background()
	owner := testutil.CreateTestOwner(t, st, "owner@example.com")
	other := testutil.CreateTestOwner(t, st, "other@example.com")

	testutil.CreateTestHouse(t, st, testutil.TestHouse(owner.ID), false)
	testutil.CreateTestHouse(t, st, testutil.TestHouse(owner.ID), true)
	testutil.CreateTestHouse(t, st, testutil.TestHouse(other.ID), true)

	houses, err := st.HousesByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, houses, 2, "owner listing includes unverified houses")
	for _, h := range houses {
		assert.Equal(t, owner.ID, h.OwnerID)
	}

	houses, err = st.HousesByOwner(ctx, auth.NewID())
	require.NoError(t, err)
	assert.Empty(t, houses)
}

func TestAdminHousesAndVerification(t *testing.T) {
	st := testutil.SetupTestStore(t)
	ctx := context.Background()
	owner := testutil.CreateTestOwner(t, st, "owner@example.com")

	verified := testutil.CreateTestHouse(t, st, testutil.TestHouse(owner.ID), true)
	pending := testutil.CreateTestHouse(t, st, testutil.TestHouse(owner.ID), false)

	queue, err := st.AdminHouses(ctx, false, 0)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, pending, queue[0].ID, "unverified houses come first")
	assert.Equal(t, verified, queue[1].ID)
	require.NotNil(t, queue[0].Owner)
	assert.Equal(t, "owner@example.com", queue[0].Owner.Email)

	onlyVerified, err := st.AdminHouses(ctx, true, 0)
	require.NoError(t, err)
	require.Len(t, onlyVerified, 1)
	assert.Equal(t, verified, onlyVerified[0].ID)

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.AdminStats{UnverifiedCount: 1, VerifiedCount: 1}, stats)

	h, err := st.SetVerification(ctx, pending, true)
	require.NoError(t, err)
	assert.True(t, h.VerificationStatus)

	h, err = st.SetVerification(ctx, verified, false)
	require.NoError(t, err)
	assert.False(t, h.VerificationStatus)

	_, err = st.SetVerification(ctx, auth.NewID(), true)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStatsEmpty(t *testing.T) {
	st := testutil.SetupTestStore(t)

	stats, err := st.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.AdminStats{}, stats)
}

func TestImageByID(t *testing.T) {
	st := testutil.SetupTestStore(t)
	ctx := context.Background()
	owner := testutil.CreateTestOwner(t, st, "owner@example.com")
	id := testutil.CreateTestHouse(t, st, testutil.TestHouse(owner.ID), false)

	h, err := st.HouseByID(ctx, id)
	require.NoError(t, err)
	require.Len(t, h.Images, 1)

	img, err := st.ImageByID(ctx, h.Images[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, testutil.PNG, img.Data)
	assert.Equal(t, int64(len(testutil.PNG)), img.SizeBytes)
	assert.Equal(t, id, img.HouseID)

	_, err = st.ImageByID(ctx, auth.NewID())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFavorites(t *testing.T) {
	st := testutil.SetupTestStore(t)
	ctx := context.Background()
	owner := testutil.CreateTestOwner(t, st, "owner@example.com")
	user := testutil.CreateTestUser(t, st, "user@example.com")
	a := testutil.CreateTestHouse(t, st, testutil.TestHouse(owner.ID), true)
	b := testutil.CreateTestHouse(t, st, testutil.TestHouse(owner.ID), true)

	userSess := auth.Session{Role: auth.RoleUser, ID: user.ID}
	ownerSess := auth.Session{Role: auth.RoleOwner, ID: owner.ID}

	already, err := st.SaveFavorite(ctx, userSess, a)
	require.NoError(t, err)
	assert.False(t, already)

	already, err = st.SaveFavorite(ctx, userSess, a)
	require.NoError(t, err)
	assert.True(t, already, "second save reports the earlier one")

	_, err = st.SaveFavorite(ctx, userSess, auth.NewID())
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Owners keep their own favorites
	_, err = st.SaveFavorite(ctx, ownerSess, b)
	require.NoError(t, err)

	_, err = st.SaveFavorite(ctx, auth.Session{Role: auth.RoleAdmin, ID: auth.NewID()}, a)
	assert.Error(t, err)

	favs, err := st.Favorites(ctx, userSess)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, a, favs[0].ID)
	assert.True(t, favs[0].IsFavorite)

	houses, err := st.ListVerified(ctx, store.HouseFilter{})
	require.NoError(t, err)
	require.NoError(t, st.MarkFavorites(ctx, userSess, houses))
	for _, h := range houses {
		assert.Equal(t, h.ID == a, h.IsFavorite, "house %s", h.ID)
	}

	require.NoError(t, st.RemoveFavorite(ctx, userSess, a))
	require.NoError(t, st.RemoveFavorite(ctx, userSess, a), "removing twice succeeds")

	favs, err = st.Favorites(ctx, userSess)
	require.NoError(t, err)
	assert.Empty(t, favs)

	favs, err = st.Favorites(ctx, ownerSess)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, b, favs[0].ID)
}

func TestSuggest(t *testing.T) {
	st := testutil.SetupTestStore(t)
	ctx := context.Background()
	owner := testutil.CreateTestOwner(t, st, "owner@example.com")

	testutil.CreateTestHouse(t, st, testutil.TestHouse(owner.ID), true)

	hidden := testutil.TestHouse(owner.ID)
	hidden.Region = models.Region{RegionName: "Carthage", City: "Tunis Nord", Country: "Tunisia", PostalCode: "2016", Street: "Avenue"}
	testutil.CreateTestHouse(t, st, hidden, false)

	got, err := st.Suggest(ctx, "tun")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tunis", "Tunisia"}, got, "unverified regions are not suggested")

	got, err = st.Suggest(ctx, "   ")
	require.NoError(t, err)
	assert.Equal(t, []string{}, got)

	got, err = st.Suggest(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSuggest_NonASCII(t *testing.T) {
	st := testutil.SetupTestStore(t)
	ctx := context.Background()
	owner := testutil.CreateTestOwner(t, st, "owner@example.com")

	nh := testutil.TestHouse(owner.ID)
	nh.Region = models.Region{RegionName: "Centro", City: "Écija", Country: "España", PostalCode: "41400", Street: "Calle Mayor"}
	id := testutil.CreateTestHouse(t, st, nh, true)

	for _, q := range []string{"Éc", "éc", "ÉC", "écija"} {
		got, err := st.Suggest(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, []string{"Écija"}, got, "q=%q", q)

		houses, err := st.ListVerified(ctx, store.HouseFilter{Query: q})
		require.NoError(t, err)
		require.Len(t, houses, 1, "q=%q", q)
		assert.Equal(t, id, houses[0].ID)
	}

	got, err := st.Suggest(ctx, "AÑ")
	require.NoError(t, err)
	assert.Equal(t, []string{"España"}, got)

	houses, err := st.ListVerified(ctx, store.HouseFilter{Country: "ESPAÑA", City: "écija"})
	require.NoError(t, err)
	require.Len(t, houses, 1)
	assert.Equal(t, id, houses[0].ID)
}

func TestSuggest_PrefixMatchesSurviveScanCap(t *testing.T) {
	st := testutil.SetupTestStore(t)
	ctx := context.Background()
	owner := testutil.CreateTestOwner(t, st, "owner@example.com")

	// More substring-only regions than one scan reads, all sorting before
	// the prefix match alphabetically
	for i := 0; i < 210; i++ {
		nh := testutil.TestHouse(owner.ID)
		nh.Images = nil
		nh.Region = models.Region{RegionName: "Centre", City: fmt.Sprintf("Casa %03d", i), Country: "Morocco", PostalCode: fmt.Sprintf("%05d", i), Street: "Rue"}
		testutil.CreateTestHouse(t, st, nh, true)
	}
	nh := testutil.TestHouse(owner.ID)
	nh.Region = models.Region{RegionName: "Centre", City: "Sahline", Country: "Tunisia", PostalCode: "5012", Street: "Rue"}
	testutil.CreateTestHouse(t, st, nh, true)

	got, err := st.Suggest(ctx, "sa")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "Sahline", got[0])
	assert.Len(t, got, store.MaxSuggestions)

	again, err := st.Suggest(ctx, "sa")
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestRankSuggestions(t *testing.T) {
	tests := []struct {
		name       string
		q          string
		candidates []string
		limit      int
		want       []string
	}{
		{
			name:       "prefix before contains",
			q:          "sa",
			candidates: []string{"Hassan", "Sahline", "Sousse", "Sakiet"},
			limit:      8,
			want:       []string{"Sakiet", "Sahline", "Hassan"},
		},
		{
			name:       "shorter then alphabetical",
			q:          "a",
			candidates: []string{"Ariana", "Ain", "Abc", "Tataouine"},
			limit:      8,
			want:       []string{"Abc", "Ain", "Ariana", "Tataouine"},
		},
		{
			name:       "case-insensitive dedupe",
			q:          "TUN",
			candidates: []string{"Tunis", "tunis", "Tunisia", ""},
			limit:      8,
			want:       []string{"Tunis", "Tunisia"},
		},
		{
			name:       "limit",
			q:          "1",
			candidates: []string{"1000", "1001", "1002", "1003", "1004", "1005", "1006", "1007", "1008", "1009"},
			limit:      8,
			want:       []string{"1000", "1001", "1002", "1003", "1004", "1005", "1006", "1007"},
		},
		{
			name:       "no match",
			q:          "zz",
			candidates: []string{"Tunis"},
			limit:      8,
			want:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, store.RankSuggestions(tt.q, tt.candidates, tt.limit))
		})
	}
}

func newMockStore(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return store.New(sqlx.NewDb(conn, "sqlite")), mock
}

func TestCreateUser_PostgresUniqueViolation(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO app_user").WillReturnError(&pq.Error{Code: "23505"})

	err := st.CreateUser(context.Background(), &models.User{Email: "dup@example.com"})
	assert.ErrorIs(t, err, store.ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_QueryErrors(t *testing.T) {
	st, mock := newMockStore(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery("SELECT COUNT").WillReturnError(boom)
	_, err := st.HouseExists(context.Background(), "x")
	assert.ErrorIs(t, err, boom)

	mock.ExpectQuery("SELECT").WillReturnError(boom)
	_, err = st.Stats(context.Background())
	assert.ErrorIs(t, err, boom)

	mock.ExpectBegin().WillReturnError(boom)
	_, err = st.SubmitHouse(context.Background(), models.NewHouse{})
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}
