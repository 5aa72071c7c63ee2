// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

// Package vendors answers name, address and proximity queries over permitted
// mobile food facilities.
package vendors

import (
	"errors"
	"time"

	"github.com/streetfood/vendorsearch/spatial"
)

// Vendor is a single permit record for a mobile food facility. The same physical
// stand accumulates several records over time; a higher ID is a more recent one.
type Vendor struct {
	ID             int64      `json:"id"`
	ApplicantName  string     `json:"applicant_name"`
	FacilityType   string     `json:"facility_type"`
	Status         string     `json:"status"`
	Address        string     `json:"address"`
	Latitude       *float64   `json:"latitude"`
	Longitude      *float64   `json:"longitude"`
	Approved       *time.Time `json:"approved"`
	ExpirationDate *time.Time `json:"expiration_date"`
}

// Point returns the vendor location, or false when either coordinate is missing.
func (v *Vendor) Point() (spatial.Point, bool) {
	if v.Latitude == nil || v.Longitude == nil {
		return spatial.Point{}, false
	}

	return spatial.Point{Lat: *v.Latitude, Lng: *v.Longitude}, true
}

// Config holds the tunables of the search service.
type Config struct {
	SearchRadiusMiles  float64 `mapstructure:"search_radius_miles"`
	NearbyVendorsCount int     `mapstructure:"nearby_vendors_count"`
	ApprovedStatus     string  `mapstructure:"approved_status"`
	FoodTruckType      string  `mapstructure:"food_truck_type"`
}

// DefaultConfig returns the configuration of the reference deployment.
func DefaultConfig() Config {
	return Config{
		SearchRadiusMiles:  2.0,
		NearbyVendorsCount: 5,
		ApprovedStatus:     "APPROVED",
		FoodTruckType:      "Truck",
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	var errs []error

	if c.SearchRadiusMiles <= 0 {
		errs = append(errs, errors.New("search radius must be positive"))
	}

	if c.NearbyVendorsCount <= 0 {
		errs = append(errs, errors.New("nearby vendors count must be positive"))
	}

	if c.ApprovedStatus == "" {
		errs = append(errs, errors.New("approved status value can't be empty"))
	}

	if c.FoodTruckType == "" {
		errs = append(errs, errors.New("food truck type value can't be empty"))
	}

	return errors.Join(errs...)
}
