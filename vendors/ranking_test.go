// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

package vendors

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/streetfood/vendorsearch/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stand(id int64, name, status string, lat, lng float64) *Vendor {
	return &Vendor{ID: id, ApplicantName: name, Status: status, Latitude: fp(lat), Longitude: fp(lng)}
}

func TestDedupe(t *testing.T) {
	tests := []struct {
		name    string
		records []*Vendor
		filter  string
		want    []int64
	}{
		{
			name: "same stand keeps highest id",
			records: []*Vendor{
				stand(1, "ABC", "APPROVED", 41.0001, -75.0),
				stand(2, "ABC", "APPROVED", 41.0001, -75.0),
			},
			want: []int64{2},
		},
		{
			name: "highest id wins regardless of order",
			records: []*Vendor{
				stand(9, "ABC", "APPROVED", 41.0001, -75.0),
				stand(4, "ABC", "APPROVED", 41.0001, -75.0),
				stand(7, "ABC", "APPROVED", 41.0001, -75.0),
			},
			want: []int64{9},
		},
		{
			name: "different names are different stands",
			records: []*Vendor{
				stand(1, "ABC", "APPROVED", 41.0001, -75.0),
				stand(2, "XYZ", "APPROVED", 41.0001, -75.0),
			},
			want: []int64{1, 2},
		},
		{
			name: "names are case sensitive",
			records: []*Vendor{
				stand(1, "ABC", "APPROVED", 41.0001, -75.0),
				stand(2, "abc", "APPROVED", 41.0001, -75.0),
			},
			want: []int64{1, 2},
		},
		{
			name: "filter applies before grouping",
			records: []*Vendor{
				stand(1, "ABC", "APPROVED", 41.0001, -75.0),
				stand(2, "ABC", "PENDING", 41.0001, -75.0),
			},
			filter: "APPROVED",
			want:   []int64{1},
		},
		{
			name: "no filter lets the newer pending record win",
			records: []*Vendor{
				stand(1, "ABC", "APPROVED", 41.0001, -75.0),
				stand(2, "ABC", "PENDING", 41.0001, -75.0),
			},
			want: []int64{2},
		},
		{
			name: "records without coordinates are dropped",
			records: []*Vendor{
				{ID: 1, ApplicantName: "ABC", Status: "APPROVED"},
				{ID: 2, ApplicantName: "ABC", Status: "APPROVED", Latitude: fp(41)},
				stand(3, "ABC", "APPROVED", 41.0, -75.0),
				nil,
			},
			want: []int64{3},
		},
		{
			name: "first appearance order",
			records: []*Vendor{
				stand(5, "B", "APPROVED", 41.2, -75.0),
				stand(3, "A", "APPROVED", 41.1, -75.0),
				stand(8, "B", "APPROVED", 41.2, -75.0),
			},
			want: []int64{8, 3},
		},
		{
			name:    "empty",
			records: nil,
			want:    []int64{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Dedupe(test.records, test.filter)
			if diff := cmp.Diff(test.want, ids(got)); diff != "" {
				t.Errorf("Dedupe() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDedupeIsIdempotent(t *testing.T) {
	records := []*Vendor{
		stand(1, "ABC", "APPROVED", 41.0001, -75.0),
		stand(2, "ABC", "PENDING", 41.0001, -75.0),
		stand(3, "XYZ", "APPROVED", 41.0001, -75.0),
		stand(4, "ABC", "APPROVED", 41.0002, -75.0),
		stand(5, "XYZ", "APPROVED", 41.0001, -75.0),
	}

	for _, filter := range []string{"", "APPROVED"} {
		once := Dedupe(records, filter)
		twice := Dedupe(once, filter)
		assert.Equal(t, ids(once), ids(twice), "filter %q", filter)
	}
}

func TestRankAndTruncate(t *testing.T) {
	origin := spatial.Point{Lat: 41.0, Lng: -75.0}

	candidates := []*Vendor{
		stand(1, "far", "APPROVED", 41.03, -75.0),
		stand(2, "near", "APPROVED", 41.001, -75.0),
		stand(3, "mid", "APPROVED", 41.01, -75.0),
	}

	t.Run("sorted by distance", func(t *testing.T) {
		got := RankAndTruncate(candidates, origin, 5)
		require.Len(t, got, 3)

		var order []int64
		for i, c := range got {
			order = append(order, c.Vendor.ID)

			if i > 0 {
				assert.LessOrEqual(t, got[i-1].DistanceKm, c.DistanceKm)
			}
		}

		assert.Equal(t, []int64{2, 3, 1}, order)
		assert.InDelta(t, 0.1112, got[0].DistanceKm, 0.001)
	})

	t.Run("truncated to limit", func(t *testing.T) {
		got := RankAndTruncate(candidates, origin, 2)
		require.Len(t, got, 2)
		assert.Equal(t, int64(2), got[0].Vendor.ID)
		assert.Equal(t, int64(3), got[1].Vendor.ID)
	})

	t.Run("zero limit", func(t *testing.T) {
		assert.Empty(t, RankAndTruncate(candidates, origin, 0))
	})

	t.Run("no candidates", func(t *testing.T) {
		assert.Empty(t, RankAndTruncate(nil, origin, 5))
	})

	t.Run("ties keep input order", func(t *testing.T) {
		tied := []*Vendor{
			stand(1, "ABC", "APPROVED", 41.0001, -75.0),
			stand(2, "XYZ", "PENDING", 41.0001, -75.0),
			stand(3, "QRS", "APPROVED", 41.0001, -75.0),
		}

		got := RankAndTruncate(tied, origin, 5)
		require.Len(t, got, 3)
		assert.Equal(t, int64(1), got[0].Vendor.ID)
		assert.Equal(t, int64(2), got[1].Vendor.ID)
		assert.Equal(t, int64(3), got[2].Vendor.ID)
	})

	t.Run("skips records without coordinates", func(t *testing.T) {
		got := RankAndTruncate([]*Vendor{{ID: 9}, nil, stand(4, "x", "APPROVED", 41, -75)}, origin, 5)
		require.Len(t, got, 1)
		assert.Equal(t, int64(4), got[0].Vendor.ID)
		assert.Zero(t, got[0].DistanceKm)
	})
}
