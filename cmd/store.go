// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/streetfood/vendorsearch/vendors"
)

func isPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

// openRepository opens the configured store and makes sure the schema exists.
// The returned function releases it.
func openRepository(ctx context.Context, s settings) (vendors.Repository, func(), error) {
	var (
		repo    vendors.Repository
		closeFn func()
	)

	switch {
	case isPostgresURL(s.DatabaseURL):
		pool, err := pgxpool.New(ctx, s.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()

			return nil, nil, fmt.Errorf("pinging postgres: %w", err)
		}

		repo, closeFn = vendors.NewPgxVendorRepository(pool), pool.Close
	case s.DatabaseURL != "":
		return nil, nil, fmt.Errorf("unsupported database url %q", s.DatabaseURL)
	default:
		if err := os.MkdirAll(s.DBPath, 0o750); err != nil {
			return nil, nil, fmt.Errorf("creating %s: %w", s.DBPath, err)
		}

		db, err := sql.Open("duckdb", filepath.Join(s.DBPath, "vendors.duckdb"))
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}

		repo, closeFn = vendors.NewSQLVendorRepository(db), func() {
			if err := db.Close(); err != nil {
				log.Printf("closing database: %v", err)
			}
		}
	}

	if err := repo.CreateSchema(ctx); err != nil {
		closeFn()

		return nil, nil, fmt.Errorf("creating schema: %w", err)
	}

	return repo, closeFn, nil
}

// openService resolves the settings and builds a Service over the configured store.
func openService(ctx context.Context) (*vendors.Service, vendors.Repository, func(), error) {
	s, err := loadSettings(config)
	if err != nil {
		return nil, nil, nil, err
	}

	repo, closeFn, err := openRepository(ctx, s)
	if err != nil {
		return nil, nil, nil, err
	}

	svc, err := vendors.NewService(repo, s.Search, vendors.WithVerbose(s.Verbose))
	if err != nil {
		closeFn()

		return nil, nil, nil, err
	}

	return svc, repo, closeFn, nil
}
