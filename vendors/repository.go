// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

package vendors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/streetfood/vendorsearch/spatial"
)

// Repository is the data-access collaborator of the Service.
type Repository interface {
	// CreateSchema creates the vendors table if it doesn't exist.
	CreateSchema(ctx context.Context) error

	// SaveVendors inserts vendors in a single transaction. Vendors with a zero ID get
	// one assigned by the store.
	SaveVendors(ctx context.Context, vendors []*Vendor) error

	// CountVendors returns the number of stored records.
	CountVendors(ctx context.Context) (int64, error)

	// DeleteAll removes every record.
	DeleteAll(ctx context.Context) error

	// FetchInRange returns the records inside box, borders included. When status is
	// not empty only records with that status are returned.
	FetchInRange(ctx context.Context, box spatial.BoundingBox, status string) ([]*Vendor, error)

	// FindByName returns the records whose lowercased applicant name equals name.
	// When status is not empty only records with that status are returned.
	FindByName(ctx context.Context, name, status string) ([]*Vendor, error)

	// FindByAddress returns the records of the given facility type whose lowercased
	// address contains the substring.
	FindByAddress(ctx context.Context, substring, facilityType string) ([]*Vendor, error)
}

const vendorColumns = `id, applicant_name, facility_type, status, address, latitude, longitude, approved, expiration_date`

type sqlVendorRepository struct {
	db *sql.DB
}

// NewSQLVendorRepository creates a Repository backed by a DuckDB database.
func NewSQLVendorRepository(db *sql.DB) Repository {
	return &sqlVendorRepository{db: db}
}

func (r *sqlVendorRepository) CreateSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE SEQUENCE IF NOT EXISTS vendors_seq START 1;

		CREATE TABLE IF NOT EXISTS vendors (
			id BIGINT PRIMARY KEY DEFAULT nextval('vendors_seq'),
			applicant_name VARCHAR NOT NULL DEFAULT '',
			facility_type VARCHAR NOT NULL DEFAULT '',
			status VARCHAR NOT NULL DEFAULT '',
			address VARCHAR NOT NULL DEFAULT '',
			latitude DOUBLE,
			longitude DOUBLE,
			approved TIMESTAMP,
			expiration_date TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS vendors_applicant_name_idx ON vendors (applicant_name);
	`)

	return err
}

// nf converts an optional float into a driver value.
func nf(v *float64) any {
	if v == nil {
		return nil
	}

	return *v
}

// nt converts an optional time into a driver value.
func nt(v *time.Time) any {
	if v == nil {
		return nil
	}

	return *v
}

func (r *sqlVendorRepository) SaveVendors(ctx context.Context, vendors []*Vendor) error {
	if len(vendors) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("failed to rollback vendors transaction: %v", err)
		}
	}()

	withID, err := tx.PrepareContext(ctx, `
		INSERT INTO vendors (`+vendorColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer withID.Close()

	autoID, err := tx.PrepareContext(ctx, `
		INSERT INTO vendors (applicant_name, facility_type, status, address, latitude, longitude, approved, expiration_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer autoID.Close()

	for _, v := range vendors {
		args := []any{
			v.ApplicantName,
			v.FacilityType,
			v.Status,
			v.Address,
			nf(v.Latitude),
			nf(v.Longitude),
			nt(v.Approved),
			nt(v.ExpirationDate),
		}

		if v.ID != 0 {
			if _, err := withID.ExecContext(ctx, append([]any{v.ID}, args...)...); err != nil {
				return fmt.Errorf("inserting vendor %d: %w", v.ID, err)
			}

			continue
		}

		if err := autoID.QueryRowContext(ctx, args...).Scan(&v.ID); err != nil {
			return fmt.Errorf("inserting vendor %q: %w", v.ApplicantName, err)
		}
	}

	return tx.Commit()
}

func (r *sqlVendorRepository) CountVendors(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vendors").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting vendors: %w", err)
	}

	return n, nil
}

func (r *sqlVendorRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM vendors"); err != nil {
		return fmt.Errorf("deleting vendors: %w", err)
	}

	return nil
}

func (r *sqlVendorRepository) FetchInRange(ctx context.Context, box spatial.BoundingBox, status string) ([]*Vendor, error) {
	var sb strings.Builder

	sb.WriteString(`SELECT ` + vendorColumns + `
		FROM vendors
		WHERE latitude BETWEEN ? AND ?
			AND longitude BETWEEN ? AND ?`)

	args := []any{box.MinLat, box.MaxLat, box.MinLon, box.MaxLon}

	if status != "" {
		sb.WriteString(` AND status = ?`)

		args = append(args, status)
	}

	sb.WriteString(` ORDER BY id`)

	return r.query(ctx, sb.String(), args...)
}

func (r *sqlVendorRepository) FindByName(ctx context.Context, name, status string) ([]*Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE lower(applicant_name) = ?`
	args := []any{name}

	if status != "" {
		query += ` AND status = ?`

		args = append(args, status)
	}

	return r.query(ctx, query+` ORDER BY id`, args...)
}

func (r *sqlVendorRepository) FindByAddress(ctx context.Context, substring, facilityType string) ([]*Vendor, error) {
	return r.query(ctx, `
		SELECT `+vendorColumns+`
		FROM vendors
		WHERE facility_type = ?
			AND contains(lower(address), ?)
		ORDER BY id
	`, facilityType, substring)
}

func (r *sqlVendorRepository) query(ctx context.Context, query string, args ...any) ([]*Vendor, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying vendors: %w", err)
	}
	defer rows.Close()

	var vendors []*Vendor

	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}

		vendors = append(vendors, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vendors: %w", err)
	}

	return vendors, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVendor(row scanner) (*Vendor, error) {
	var (
		v                            Vendor
		name, facility, status, addr sql.NullString
		lat, lng                     sql.NullFloat64
		approved, expiration         sql.NullTime
	)

	if err := row.Scan(&v.ID, &name, &facility, &status, &addr, &lat, &lng, &approved, &expiration); err != nil {
		return nil, fmt.Errorf("scanning vendor: %w", err)
	}

	v.ApplicantName = name.String
	v.FacilityType = facility.String
	v.Status = status.String
	v.Address = addr.String

	if lat.Valid {
		v.Latitude = &lat.Float64
	}

	if lng.Valid {
		v.Longitude = &lng.Float64
	}

	if approved.Valid {
		v.Approved = &approved.Time
	}

	if expiration.Valid {
		v.ExpirationDate = &expiration.Time
	}

	return &v, nil
}
