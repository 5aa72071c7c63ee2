// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/streetfood/vendorsearch/utils/textutils"
)

var loadForce bool

var loadCmd = &cobra.Command{
	Use:   "load <csv-path-or-url>",
	Short: "Load a Mobile Food Facility Permit CSV export",
	Long: `
load imports the permit CSV, from a file or an http(s) URL, into the store.
Nothing is loaded when the store already has records unless --force is given,
in which case they are replaced.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		_, repo, closeFn, err := openService(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		metrics, err := loadSource(ctx, repo, args[0], loadForce)
		if err != nil {
			return err
		}

		if metrics.AlreadyLoaded {
			fmt.Println("Store already populated; use --force to replace it")

			return nil
		}

		fmt.Printf("Rows: %s  Inserted: %s  Skipped: %s\n",
			textutils.FormatInt(int64(metrics.Rows)),
			textutils.FormatInt(int64(metrics.Inserted)),
			textutils.FormatInt(int64(metrics.Skipped)))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().BoolVar(
		&loadForce,
		"force",
		false,
		"Replace existing records",
	)
	addFetchFlags(loadCmd)
}
