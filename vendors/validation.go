// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

package vendors

import (
	"math"

	"github.com/streetfood/vendorsearch/spatial"
	"github.com/streetfood/vendorsearch/utils/textutils"
)

// MaxQueryLength is the maximum number of characters accepted in a text search.
const MaxQueryLength = 200

const (
	msgInvalidName    = "Name cannot be empty or longer than 200 characters"
	msgInvalidAddress = "address search string cannot be empty or longer than 200 characters"
)

// normalizeText trims and lowercases a text query, rejecting it when it's empty or too long.
func normalizeText(s, msg string) (string, error) {
	s = textutils.NormalizeQuery(s)

	if n := textutils.RuneLen(s); n == 0 || n > MaxQueryLength {
		return "", validationError(msg)
	}

	return s, nil
}

// validateCoordinates checks that lat/lon are inside the valid domain.
func validateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return outOfRangeError("latitude must be between -90 and 90 (got: %g)", lat)
	}

	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return outOfRangeError("longitude must be between -180 and 180 (got: %g)", lon)
	}

	return nil
}

// validatePoint is validateCoordinates for a spatial.Point.
func validatePoint(p spatial.Point) error {
	return validateCoordinates(p.Lat, p.Lng)
}
