// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

package vendors

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

var vendorHeaders = []any{
	"ID", "Applicant", "Facility Type", "Status", "Address",
	"Latitude", "Longitude", "Approved", "Expiration Date",
}

func vendorRow(v *Vendor) []any {
	return []any{
		v.ID, v.ApplicantName, v.FacilityType, v.Status, v.Address,
		floatCell(v.Latitude), floatCell(v.Longitude),
		dateCell(v.Approved), dateCell(v.ExpirationDate),
	}
}

func floatCell(f *float64) any {
	if f == nil {
		return ""
	}

	return *f
}

func dateCell(t *time.Time) any {
	if t == nil {
		return ""
	}

	return t.Format(time.DateOnly)
}

// WriteVendorsXLSX writes vendors as a spreadsheet with one row per record.
func WriteVendorsXLSX(w io.Writer, sheet string, vendors []*Vendor) error {
	rows := make([][]any, 0, len(vendors))
	for _, v := range vendors {
		rows = append(rows, vendorRow(v))
	}

	return writeXLSX(w, sheet, vendorHeaders, rows)
}

// WriteNearbyXLSX writes ranked results with a trailing distance column.
func WriteNearbyXLSX(w io.Writer, sheet string, results []ScoredCandidate) error {
	headers := append(append([]any{}, vendorHeaders...), "Distance (km)")

	rows := make([][]any, 0, len(results))
	for _, r := range results {
		rows = append(rows, append(vendorRow(r.Vendor), r.DistanceKm))
	}

	return writeXLSX(w, sheet, headers, rows)
}

func writeXLSX(w io.Writer, sheet string, headers []any, rows [][]any) error {
	if sheet == "" {
		sheet = defaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %q: %w", sheet, err)
	}

	if sheet != defaultSheet {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("deleting default sheet: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("creating stream writer: %w", err)
	}

	if err := sw.SetRow("A1", headers); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}

	index, err := f.GetSheetIndex(sheet)
	if err != nil {
		return err
	}

	f.SetActiveSheet(index)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}
