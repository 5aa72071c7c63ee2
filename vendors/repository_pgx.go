// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

package vendors

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/streetfood/vendorsearch/spatial"
)

const createVendorTablePgx = `
	CREATE TABLE IF NOT EXISTS vendors (
		id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		applicant_name TEXT NOT NULL DEFAULT '',
		facility_type TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		approved TIMESTAMP,
		expiration_date TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS vendors_applicant_name_idx ON vendors (lower(applicant_name));
	CREATE INDEX IF NOT EXISTS vendors_lat_lng_idx ON vendors (latitude, longitude);
`

type pgxVendorRepository struct {
	pool *pgxpool.Pool
}

// NewPgxVendorRepository creates a Repository backed by a PostgreSQL pool.
func NewPgxVendorRepository(pool *pgxpool.Pool) Repository {
	return &pgxVendorRepository{pool: pool}
}

func (r *pgxVendorRepository) CreateSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, createVendorTablePgx)

	return err
}

func (r *pgxVendorRepository) SaveVendors(ctx context.Context, vendors []*Vendor) error {
	if len(vendors) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Printf("failed to rollback vendors transaction: %v", err)
		}
	}()

	for _, v := range vendors {
		if v.ID != 0 {
			if _, err := tx.Exec(ctx, `
				INSERT INTO vendors (`+vendorColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				v.ID, v.ApplicantName, v.FacilityType, v.Status, v.Address,
				v.Latitude, v.Longitude, v.Approved, v.ExpirationDate,
			); err != nil {
				return fmt.Errorf("inserting vendor %d: %w", v.ID, err)
			}

			continue
		}

		if err := tx.QueryRow(ctx, `
			INSERT INTO vendors (applicant_name, facility_type, status, address, latitude, longitude, approved, expiration_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			v.ApplicantName, v.FacilityType, v.Status, v.Address,
			v.Latitude, v.Longitude, v.Approved, v.ExpirationDate,
		).Scan(&v.ID); err != nil {
			return fmt.Errorf("inserting vendor %q: %w", v.ApplicantName, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *pgxVendorRepository) CountVendors(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM vendors").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting vendors: %w", err)
	}

	return n, nil
}

func (r *pgxVendorRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM vendors"); err != nil {
		return fmt.Errorf("deleting vendors: %w", err)
	}

	return nil
}

func (r *pgxVendorRepository) FetchInRange(ctx context.Context, box spatial.BoundingBox, status string) ([]*Vendor, error) {
	query := `SELECT ` + vendorColumns + `
		FROM vendors
		WHERE latitude BETWEEN $1 AND $2
			AND longitude BETWEEN $3 AND $4`
	args := []any{box.MinLat, box.MaxLat, box.MinLon, box.MaxLon}

	if status != "" {
		args = append(args, status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}

	return r.query(ctx, query+` ORDER BY id`, args...)
}

func (r *pgxVendorRepository) FindByName(ctx context.Context, name, status string) ([]*Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE lower(applicant_name) = $1`
	args := []any{name}

	if status != "" {
		query += ` AND status = $2`

		args = append(args, status)
	}

	return r.query(ctx, query+` ORDER BY id`, args...)
}

func (r *pgxVendorRepository) FindByAddress(ctx context.Context, substring, facilityType string) ([]*Vendor, error) {
	return r.query(ctx, `
		SELECT `+vendorColumns+`
		FROM vendors
		WHERE facility_type = $1
			AND strpos(lower(address), $2) > 0
		ORDER BY id`,
		facilityType, substring)
}

func (r *pgxVendorRepository) query(ctx context.Context, query string, args ...any) ([]*Vendor, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying vendors: %w", err)
	}
	defer rows.Close()

	var vendors []*Vendor

	for rows.Next() {
		var v Vendor
		if err := rows.Scan(
			&v.ID, &v.ApplicantName, &v.FacilityType, &v.Status, &v.Address,
			&v.Latitude, &v.Longitude, &v.Approved, &v.ExpirationDate,
		); err != nil {
			return nil, fmt.Errorf("scanning vendor: %w", err)
		}

		vendors = append(vendors, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vendors: %w", err)
	}

	return vendors, nil
}
