// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

package vendors

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

const defaultBatchSize = 500

// LoadMetrics tracks statistics of a CSV load.
type LoadMetrics struct {
	Rows          int  // data rows read from the file
	Inserted      int  // records stored
	Skipped       int  // rows rejected
	AlreadyLoaded bool // the store had data and the load was skipped
}

// Loader imports Mobile Food Facility Permit CSV exports into a Repository.
type Loader struct {
	repo      Repository
	force     bool
	batchSize int
}

// NewLoader creates a Loader. When force is set, existing records are removed
// before loading; otherwise a non-empty store is left untouched.
func NewLoader(repo Repository, force bool) *Loader {
	return &Loader{repo: repo, force: force, batchSize: defaultBatchSize}
}

type column int

const (
	colID column = iota
	colApplicant
	colFacilityType
	colStatus
	colAddress
	colLatitude
	colLongitude
	colApproved
	colExpiration
	numColumns
)

// headerAliases maps normalized header names to columns. Both the snake_case
// export and the public dataset headers are accepted.
var headerAliases = map[string]column{
	"id":             colID,
	"applicant":      colApplicant,
	"applicantname":  colApplicant,
	"facilitytype":   colFacilityType,
	"status":         colStatus,
	"address":        colAddress,
	"latitude":       colLatitude,
	"lat":            colLatitude,
	"longitude":      colLongitude,
	"lon":            colLongitude,
	"lng":            colLongitude,
	"long":           colLongitude,
	"approved":       colApproved,
	"expirationdate": colExpiration,
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006 03:04:05 PM",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"20060102",
}

func normalizeHeader(h string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}

		return -1
	}, h)
}

// LoadFile loads the CSV file at path.
func (l *Loader) LoadFile(ctx context.Context, path string) (LoadMetrics, error) {
	f, err := os.Open(path) // #nosec G304 - path is provided by the operator
	if err != nil {
		return LoadMetrics{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return l.Load(ctx, f)
}

// Load reads every row of r and stores it.
func (l *Loader) Load(ctx context.Context, r io.Reader) (LoadMetrics, error) {
	var metrics LoadMetrics

	count, err := l.repo.CountVendors(ctx)
	if err != nil {
		return metrics, err
	}

	if count > 0 {
		if !l.force {
			log.Printf("Database already has %d records. Skipping data load.", count)

			metrics.AlreadyLoaded = true

			return metrics, nil
		}

		if err := l.repo.DeleteAll(ctx); err != nil {
			return metrics, err
		}
	}

	vendors, err := parseVendors(r, &metrics)
	if err != nil {
		return metrics, err
	}

	bar := newProgressBar(len(vendors), "Loading vendors")

	for start := 0; start < len(vendors); start += l.batchSize {
		end := min(start+l.batchSize, len(vendors))

		if err := l.repo.SaveVendors(ctx, vendors[start:end]); err != nil {
			return metrics, fmt.Errorf("saving rows %d-%d: %w", start+1, end, err)
		}

		metrics.Inserted += end - start

		if bar != nil {
			if err := bar.Add(end - start); err != nil {
				log.Printf("updating progress bar: %v", err)
			}
		}
	}

	log.Printf("Loaded %d records (%d rows read, %d skipped)", metrics.Inserted, metrics.Rows, metrics.Skipped)

	return metrics, nil
}

func newProgressBar(n int, description string) *progressbar.ProgressBar {
	if n == 0 || !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}

	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func parseVendors(r io.Reader, metrics *LoadMetrics) ([]*Vendor, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	index := [numColumns]int{}
	for i := range index {
		index[i] = -1
	}

	for i, h := range header {
		if c, ok := headerAliases[normalizeHeader(h)]; ok && index[c] < 0 {
			index[c] = i
		}
	}

	if index[colApplicant] < 0 {
		return nil, errors.New("missing applicant name column")
	}

	var vendors []*Vendor

	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			log.Printf("error reading line: %v", err)

			metrics.Skipped++

			continue
		}

		if err != nil {
			return nil, fmt.Errorf("reading line: %w", err)
		}

		metrics.Rows++

		v, err := parseVendor(fields, index)
		if err != nil {
			line, _ := cr.FieldPos(0)
			log.Printf("skipping line %d: %v", line, err)

			metrics.Skipped++

			continue
		}

		vendors = append(vendors, v)
	}

	return vendors, nil
}

func parseVendor(fields []string, index [numColumns]int) (*Vendor, error) {
	get := func(c column) string {
		i := index[c]
		if i < 0 || i >= len(fields) {
			return ""
		}

		return strings.TrimSpace(fields[i])
	}

	v := &Vendor{
		ApplicantName: get(colApplicant),
		FacilityType:  get(colFacilityType),
		Status:        get(colStatus),
		Address:       get(colAddress),
	}

	// An id column, when present, is required on every row.
	if index[colID] >= 0 {
		s := get(colID)
		if s == "" {
			return nil, errors.New("missing id")
		}

		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", s)
		}

		v.ID = id
	}

	var err error

	if v.Latitude, err = parseCoordinate(get(colLatitude), 90); err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}

	if v.Longitude, err = parseCoordinate(get(colLongitude), 180); err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}

	v.Approved = parseDate(get(colApproved))
	v.ExpirationDate = parseDate(get(colExpiration))

	return v, nil
}

// parseCoordinate returns nil for a missing value; it is never defaulted to 0.
func parseCoordinate(s string, bound float64) (*float64, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return nil, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", s, err)
	}

	if math.IsNaN(f) {
		return nil, nil
	}

	if f < -bound || f > bound {
		return nil, fmt.Errorf("%g out of range", f)
	}

	return &f, nil
}

// parseDate returns nil when s is empty or not a recognized date.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	return nil
}
