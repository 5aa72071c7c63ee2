// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

package vendors

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteVendorsXLSX(t *testing.T) {
	var buf bytes.Buffer

	vendors := nameFixture()
	vendors[0].ExpirationDate = date(2025, 6, 1)
	vendors = append(vendors, &Vendor{ID: 9, ApplicantName: "No coordinates"})

	require.NoError(t, WriteVendorsXLSX(&buf, "Vendors", vendors))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Vendors"}, f.GetSheetList())

	rows, err := f.GetRows("Vendors")
	require.NoError(t, err)
	require.Len(t, rows, 6)

	assert.Equal(t, "Applicant", rows[0][1])
	assert.Equal(t, "Authentic India", rows[1][1])
	assert.Equal(t, "2025-06-01", rows[1][8])
	assert.Equal(t, "No coordinates", rows[5][1])
}

func TestWriteNearbyXLSX(t *testing.T) {
	var buf bytes.Buffer

	results := []ScoredCandidate{
		{DistanceKm: 0.5, Vendor: stand(1, "Near", "APPROVED", 41.0, -75.0)},
		{DistanceKm: 1.25, Vendor: stand(2, "Far", "APPROVED", 41.01, -75.0)},
	}

	require.NoError(t, WriteNearbyXLSX(&buf, "", results))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(defaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Distance (km)", rows[0][9])
	assert.Equal(t, "Near", rows[1][1])
	assert.Equal(t, "1.25", rows[2][9])
}
