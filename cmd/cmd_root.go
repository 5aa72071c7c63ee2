// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/streetfood/vendorsearch/vendors"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "vendorsearch",
	Short: "search permitted mobile food vendors",
	Long: `
vendorsearch answers name, address and proximity queries over the Mobile Food
Facility Permit dataset, from the command line or over HTTP.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return readEnvFile(config, envFile)
	},
}

var (
	Version = "dev"
	envFile string
)

func Execute(version string) {
	Version = version
	rootCmd.Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	defaults := vendors.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&envFile, "env-file", ".env", "Optional dotenv file with configuration values")
	flags.String("db-path", "db", "Directory holding the DuckDB database")
	flags.String("database-url", "", "PostgreSQL connection URL; when set it is used instead of DuckDB")
	flags.Float64("search-radius-miles", defaults.SearchRadiusMiles, "Radius of the nearby search")
	flags.Int("nearby-vendors-count", defaults.NearbyVendorsCount, "Number of results of a nearby search")
	flags.String("approved-status", defaults.ApprovedStatus, "Status value of approved permits")
	flags.String("food-truck-type", defaults.FoodTruckType, "Facility type searched by address")
	flags.BoolP("verbose", "v", false, "Log search internals")

	for key, name := range flagKeys {
		if err := config.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}
