// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

package vendors

import (
	"context"
	"log"

	"github.com/streetfood/vendorsearch/spatial"
)

// Service answers vendor searches against a Repository. It holds no per-request
// state and is safe for concurrent use.
type Service struct {
	repo    Repository
	cfg     Config
	verbose bool
}

// Option customizes a Service.
type Option func(*Service)

// WithVerbose logs the bounding box and candidate counts of every nearby search.
func WithVerbose(verbose bool) Option {
	return func(s *Service) {
		s.verbose = verbose
	}
}

// NewService creates a new search service. The configuration is validated.
func NewService(repo Repository, cfg Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Service{repo: repo, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Config returns the configuration the service was built with.
func (s *Service) Config() Config {
	return s.cfg
}

// statusFilter returns the status every result must have, or "" for no filtering.
func (s *Service) statusFilter(includeAllStatuses bool) string {
	if includeAllStatuses {
		return ""
	}

	return s.cfg.ApprovedStatus
}

// SearchByName returns the records whose applicant name matches name, ignoring
// case. Unless includeAllStatuses is set only approved records are returned.
func (s *Service) SearchByName(ctx context.Context, name string, includeAllStatuses bool) ([]*Vendor, error) {
	name, err := normalizeText(name, msgInvalidName)
	if err != nil {
		return nil, err
	}

	vendors, err := s.repo.FindByName(ctx, name, s.statusFilter(includeAllStatuses))
	if err != nil {
		return nil, dataAccessError("searching vendors by name", err)
	}

	return vendors, nil
}

// SearchByAddress returns the food trucks whose address contains substring, ignoring case.
func (s *Service) SearchByAddress(ctx context.Context, substring string) ([]*Vendor, error) {
	substring, err := normalizeText(substring, msgInvalidAddress)
	if err != nil {
		return nil, err
	}

	vendors, err := s.repo.FindByAddress(ctx, substring, s.cfg.FoodTruckType)
	if err != nil {
		return nil, dataAccessError("searching vendors by address", err)
	}

	return vendors, nil
}

// FindNearbyScored returns the closest vendors to (lat, lon) with their distances.
//
// Candidates are the records inside the bounding box of the configured search
// radius, deduplicated to the latest record of each stand, then ranked by
// great-circle distance. A limit <= 0 uses the configured count.
func (s *Service) FindNearbyScored(ctx context.Context, lat, lon float64, includeAllStatuses bool, limit int) ([]ScoredCandidate, error) {
	origin := spatial.Point{Lat: lat, Lng: lon}
	if err := validatePoint(origin); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = s.cfg.NearbyVendorsCount
	}

	status := s.statusFilter(includeAllStatuses)
	box := spatial.ComputeBoundingBox(origin, s.cfg.SearchRadiusMiles)

	records, err := s.repo.FetchInRange(ctx, box, status)
	if err != nil {
		return nil, dataAccessError("fetching vendors in range", err)
	}

	candidates := Dedupe(records, status)
	ranked := RankAndTruncate(candidates, origin, limit)

	if s.verbose {
		log.Printf("nearby %s: box=%+v records=%d candidates=%d results=%d",
			origin, box, len(records), len(candidates), len(ranked))
	}

	return ranked, nil
}

// FindNearby is FindNearbyScored without the distances.
func (s *Service) FindNearby(ctx context.Context, lat, lon float64, includeAllStatuses bool, limit int) ([]*Vendor, error) {
	ranked, err := s.FindNearbyScored(ctx, lat, lon, includeAllStatuses, limit)
	if err != nil {
		return nil, err
	}

	vendors := make([]*Vendor, len(ranked))
	for i, c := range ranked {
		vendors[i] = c.Vendor
	}

	return vendors, nil
}

// Count returns the number of stored vendor records.
func (s *Service) Count(ctx context.Context) (int64, error) {
	n, err := s.repo.CountVendors(ctx)
	if err != nil {
		return 0, dataAccessError("counting vendors", err)
	}

	return n, nil
}
