// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

package vendors

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/streetfood/vendorsearch/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(f float64) *float64 { return &f }

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	return &t
}

func setupVendorRepo(t *testing.T) Repository {
	t.Helper()

	db, err := sql.Open("duckdb", "") // In-memory database
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewSQLVendorRepository(db)
	require.NoError(t, repo.CreateSchema(context.Background()))

	return repo
}

func seedVendors(t *testing.T, repo Repository, vendors ...*Vendor) {
	t.Helper()
	require.NoError(t, repo.SaveVendors(context.Background(), vendors))
}

// boxFixture is three permits of one applicant spread over two degrees.
func boxFixture() []*Vendor {
	return []*Vendor{
		{ID: 1, ApplicantName: "A", Status: "APPROVED", Latitude: fp(41.0), Longitude: fp(-75.0), ExpirationDate: date(2025, 6, 1)},
		{ID: 2, ApplicantName: "A", Status: "APPROVED", Latitude: fp(40.0), Longitude: fp(-74.0), ExpirationDate: date(2025, 7, 1)},
		{ID: 3, ApplicantName: "A", Status: "PENDING", Latitude: fp(40.0), Longitude: fp(-74.6), ExpirationDate: date(2025, 8, 1)},
	}
}

// lineFixture is six permits of one applicant along a meridian, 0.0001 degrees apart.
func lineFixture() []*Vendor {
	statuses := []string{"APPROVED", "APPROVED", "PENDING", "APPROVED", "APPROVED", "APPROVED"}

	vendors := make([]*Vendor, len(statuses))
	for i, s := range statuses {
		vendors[i] = &Vendor{
			ID:            int64(i + 1),
			ApplicantName: "A",
			Status:        s,
			Latitude:      fp(41.0 + float64(i+1)*0.0001),
			Longitude:     fp(-75.0),
		}
	}

	return vendors
}

func ids(vendors []*Vendor) []int64 {
	out := make([]int64, len(vendors))
	for i, v := range vendors {
		out[i] = v.ID
	}

	return out
}

func TestSaveVendorsAssignsIDs(t *testing.T) {
	repo := setupVendorRepo(t)
	ctx := context.Background()

	a := &Vendor{ApplicantName: "First", Status: "APPROVED", Latitude: fp(37.7), Longitude: fp(-122.4)}
	b := &Vendor{ApplicantName: "Second", Status: "REQUESTED"}
	seedVendors(t, repo, a, b)

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)

	n, err := repo.CountVendors(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSaveVendorsRoundTripsNullables(t *testing.T) {
	repo := setupVendorRepo(t)
	ctx := context.Background()

	seedVendors(t, repo,
		&Vendor{ID: 7, ApplicantName: "Nowhere", Status: "APPROVED"},
		&Vendor{ID: 8, ApplicantName: "Somewhere", Status: "APPROVED", Latitude: fp(37.5), Longitude: fp(-122.25),
			Approved: date(2024, 3, 1), ExpirationDate: date(2025, 3, 1)},
	)

	got, err := repo.FindByName(ctx, "nowhere", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Latitude)
	assert.Nil(t, got[0].Longitude)
	assert.Nil(t, got[0].Approved)

	got, err = repo.FindByName(ctx, "somewhere", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Latitude)
	assert.InDelta(t, 37.5, *got[0].Latitude, 1e-12)
	assert.InDelta(t, -122.25, *got[0].Longitude, 1e-12)
	require.NotNil(t, got[0].ExpirationDate)
	assert.Equal(t, "2025-03-01", got[0].ExpirationDate.Format(time.DateOnly))
}

func TestSaveVendorsRollsBackOnDuplicateID(t *testing.T) {
	repo := setupVendorRepo(t)
	ctx := context.Background()

	err := repo.SaveVendors(ctx, []*Vendor{
		{ID: 1, ApplicantName: "A"},
		{ID: 1, ApplicantName: "B"},
	})
	require.Error(t, err)

	n, err := repo.CountVendors(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteAll(t *testing.T) {
	repo := setupVendorRepo(t)
	ctx := context.Background()

	seedVendors(t, repo, boxFixture()...)
	require.NoError(t, repo.DeleteAll(ctx))

	n, err := repo.CountVendors(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFetchInRange(t *testing.T) {
	tests := []struct {
		name    string
		fixture func() []*Vendor
		box     spatial.BoundingBox
		status  string
		want    []int64
	}{
		{
			name:    "approved only",
			fixture: boxFixture,
			box:     spatial.BoundingBox{MinLat: 39.0, MaxLat: 42.0, MinLon: -76.0, MaxLon: -73.0},
			status:  "APPROVED",
			want:    []int64{1, 2},
		},
		{
			name:    "all statuses with borders included",
			fixture: boxFixture,
			box:     spatial.BoundingBox{MinLat: 40.0, MaxLat: 41.0, MinLon: -75.0, MaxLon: -74.0},
			want:    []int64{1, 2, 3},
		},
		{
			name:    "longitude excludes one",
			fixture: boxFixture,
			box:     spatial.BoundingBox{MinLat: 0, MaxLat: 45, MinLon: -76, MaxLon: -74.5},
			want:    []int64{1, 3},
		},
		{
			name:    "more than five records are all returned",
			fixture: lineFixture,
			box:     spatial.BoundingBox{MinLat: 41.0001, MaxLat: 41.0007, MinLon: -75.01, MaxLon: -75.0},
			want:    []int64{1, 2, 3, 4, 5, 6},
		},
		{
			name:    "narrow latitude band",
			fixture: lineFixture,
			box:     spatial.BoundingBox{MinLat: 41.0001, MaxLat: 41.0003, MinLon: -75.01, MaxLon: -75.0},
			want:    []int64{1, 2, 3},
		},
		{
			name:    "nothing inside",
			fixture: boxFixture,
			box:     spatial.BoundingBox{MinLat: 10, MaxLat: 11, MinLon: 10, MaxLon: 11},
			want:    []int64{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			repo := setupVendorRepo(t)
			seedVendors(t, repo, test.fixture()...)

			got, err := repo.FetchInRange(context.Background(), test.box, test.status)
			require.NoError(t, err)
			assert.Equal(t, test.want, ids(got))
		})
	}
}

func TestFetchInRangeSkipsMissingCoordinates(t *testing.T) {
	repo := setupVendorRepo(t)
	seedVendors(t, repo,
		&Vendor{ID: 1, ApplicantName: "Located", Status: "APPROVED", Latitude: fp(41), Longitude: fp(-75)},
		&Vendor{ID: 2, ApplicantName: "No latitude", Status: "APPROVED", Longitude: fp(-75)},
		&Vendor{ID: 3, ApplicantName: "Nothing", Status: "APPROVED"},
	)

	got, err := repo.FetchInRange(context.Background(),
		spatial.BoundingBox{MinLat: -90, MaxLat: 90, MinLon: -180, MaxLon: 180}, "")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(got))
}

// nameFixture mirrors the permits used by the name search endpoint.
func nameFixture() []*Vendor {
	return []*Vendor{
		{ID: 1, ApplicantName: "Authentic India", Status: "APPROVED", FacilityType: "Truck", Latitude: fp(37.77), Longitude: fp(-122.41)},
		{ID: 2, ApplicantName: "El Tonayense #60", Status: "PENDING", FacilityType: "Truck", Latitude: fp(37.76), Longitude: fp(-122.41)},
		{ID: 3, ApplicantName: "El Tonayense #60", Status: "APPROVED", FacilityType: "Truck", Latitude: fp(37.76), Longitude: fp(-122.41)},
		{ID: 4, ApplicantName: "Truly Food & More", Status: "EXPIRED", FacilityType: "Truck", Latitude: fp(37.75), Longitude: fp(-122.39)},
	}
}

func TestFindByName(t *testing.T) {
	repo := setupVendorRepo(t)
	seedVendors(t, repo, nameFixture()...)

	tests := []struct {
		name   string
		query  string
		status string
		want   []int64
	}{
		{"approved match", "authentic india", "APPROVED", []int64{1}},
		{"approved ignores pending", "el tonayense #60", "APPROVED", []int64{3}},
		{"all statuses", "el tonayense #60", "", []int64{2, 3}},
		{"expired hidden", "truly food & more", "APPROVED", []int64{}},
		{"expired with all statuses", "truly food & more", "", []int64{4}},
		{"partial name is not a match", "authentic", "", []int64{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := repo.FindByName(context.Background(), test.query, test.status)
			require.NoError(t, err)
			assert.Equal(t, test.want, ids(got))
		})
	}
}

// addressFixture mirrors the permits used by the address search endpoint.
func addressFixture() []*Vendor {
	return []*Vendor{
		{ID: 1, ApplicantName: "A1", Address: "123 Sansome st", FacilityType: "Truck", Status: "APPROVED"},
		{ID: 2, ApplicantName: "A1", Address: "123 Sansome st", FacilityType: "Truck", Status: "PENDING"},
		{ID: 3, ApplicantName: "A2", Address: "4 Market st", FacilityType: "Push Cart", Status: "APPROVED"},
		{ID: 4, ApplicantName: "A3", Address: "4 Main st", FacilityType: "Truck", Status: "APPROVED"},
		{ID: 5, ApplicantName: "A4", Address: "100% Mission_st", FacilityType: "Truck", Status: "APPROVED"},
	}
}

func TestFindByAddress(t *testing.T) {
	repo := setupVendorRepo(t)
	seedVendors(t, repo, addressFixture()...)

	tests := []struct {
		query string
		want  []int64
	}{
		{"san", []int64{1, 2}},
		{"mai", []int64{4}},
		{"market", []int64{}},
		{"california", []int64{}},
		{"100%", []int64{5}},
		{"n_s", []int64{5}},
		{"%", []int64{5}},
	}

	for _, test := range tests {
		t.Run(test.query, func(t *testing.T) {
			got, err := repo.FindByAddress(context.Background(), test.query, "Truck")
			require.NoError(t, err)
			assert.Equal(t, test.want, ids(got))
		})
	}
}
