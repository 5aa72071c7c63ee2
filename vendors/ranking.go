// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

package vendors

import (
	"sort"

	"github.com/streetfood/vendorsearch/spatial"
)

// standKey identifies one physical vendor stand across its permit records.
type standKey struct {
	Lat  float64
	Lng  float64
	Name string
}

// Dedupe collapses the permit records of each stand, identified by latitude,
// longitude and applicant name, into the one with the highest ID.
//
// When statusFilter is not empty, records with a different status are dropped
// before grouping, so the survivor is the latest record matching the filter.
// Records without coordinates are not candidates and are dropped. Groups are
// returned in order of first appearance.
func Dedupe(records []*Vendor, statusFilter string) []*Vendor {
	index := make(map[standKey]int, len(records))
	out := make([]*Vendor, 0, len(records))

	for _, r := range records {
		if r == nil {
			continue
		}

		if statusFilter != "" && r.Status != statusFilter {
			continue
		}

		p, ok := r.Point()
		if !ok {
			continue
		}

		key := standKey{Lat: p.Lat, Lng: p.Lng, Name: r.ApplicantName}
		if i, seen := index[key]; seen {
			if r.ID > out[i].ID {
				out[i] = r
			}

			continue
		}

		index[key] = len(out)
		out = append(out, r)
	}

	return out
}

// ScoredCandidate is a vendor together with its distance to the search origin.
type ScoredCandidate struct {
	DistanceKm float64 `json:"distance_km"`
	Vendor     *Vendor `json:"vendor"`
}

// RankAndTruncate orders candidates by their distance to origin and keeps the
// first limit of them. Ties keep the input order. A limit larger than the
// number of candidates returns all of them.
func RankAndTruncate(candidates []*Vendor, origin spatial.Point, limit int) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(candidates))

	for _, c := range candidates {
		if c == nil {
			continue
		}

		p, ok := c.Point()
		if !ok {
			continue
		}

		scored = append(scored, ScoredCandidate{
			DistanceKm: spatial.HaversineKm(origin, p),
			Vendor:     c,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].DistanceKm < scored[j].DistanceKm
	})

	if limit >= 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	return scored
}
