// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/streetfood/vendorsearch/vendors"
)

const envPrefix = "VENDORS"

// flagKeys maps configuration keys to the root persistent flags that set them.
var flagKeys = map[string]string{
	"db_path":              "db-path",
	"database_url":         "database-url",
	"search_radius_miles":  "search-radius-miles",
	"nearby_vendors_count": "nearby-vendors-count",
	"approved_status":      "approved-status",
	"food_truck_type":      "food-truck-type",
	"verbose":              "verbose",
}

// config resolves settings from flags, VENDORS_* environment variables, the
// dotenv file and defaults, in that order.
var config = newConfig()

type settings struct {
	DBPath      string         `mapstructure:"db_path"`
	DatabaseURL string         `mapstructure:"database_url"`
	Verbose     bool           `mapstructure:"verbose"`
	Search      vendors.Config `mapstructure:",squash"`
}

func newConfig() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	defaults := vendors.DefaultConfig()
	v.SetDefault("db_path", "db")
	v.SetDefault("database_url", "")
	v.SetDefault("verbose", false)
	v.SetDefault("search_radius_miles", defaults.SearchRadiusMiles)
	v.SetDefault("nearby_vendors_count", defaults.NearbyVendorsCount)
	v.SetDefault("approved_status", defaults.ApprovedStatus)
	v.SetDefault("food_truck_type", defaults.FoodTruckType)

	return v
}

// readEnvFile merges a dotenv file into v. Keys are not prefixed, e.g.
// SEARCH_RADIUS_MILES=3. A missing file is not an error.
func readEnvFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	return nil
}

func loadSettings(v *viper.Viper) (settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("decoding configuration: %w", err)
	}

	if err := s.Search.Validate(); err != nil {
		return s, fmt.Errorf("invalid configuration: %w", err)
	}

	return s, nil
}
