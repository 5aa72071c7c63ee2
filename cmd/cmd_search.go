// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/streetfood/vendorsearch/vendors"
)

var searchOptions struct {
	AllStatus bool
	Limit     int
	XLSXPath  string
	Lat, Long float64
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Query the vendor store",
}

var searchNameCmd = &cobra.Command{
	Use:   "name <applicant>",
	Short: "Find the permits of an applicant, ignoring case",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, closeFn, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		found, err := svc.SearchByName(cmd.Context(), strings.Join(args, " "), searchOptions.AllStatus)
		if err != nil {
			return err
		}

		return printVendors(os.Stdout, found)
	},
}

var searchAddressCmd = &cobra.Command{
	Use:   "address <substring>",
	Short: "Find the food trucks whose address contains a substring",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, closeFn, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		found, err := svc.SearchByAddress(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		return printVendors(os.Stdout, found)
	},
}

var searchNearbyCmd = &cobra.Command{
	Use:   "nearby --lat <lat> --long <long>",
	Short: "Find the closest vendors to a location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, _, closeFn, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		ranked, err := svc.FindNearbyScored(cmd.Context(),
			searchOptions.Lat, searchOptions.Long, searchOptions.AllStatus, searchOptions.Limit)
		if err != nil {
			return err
		}

		if searchOptions.XLSXPath != "" {
			return writeFile(searchOptions.XLSXPath, func(w io.Writer) error {
				return vendors.WriteNearbyXLSX(w, "Nearby", ranked)
			})
		}

		return printScored(os.Stdout, ranked)
	},
}

func printVendors(w io.Writer, found []*vendors.Vendor) error {
	if searchOptions.XLSXPath != "" {
		return writeFile(searchOptions.XLSXPath, func(out io.Writer) error {
			return vendors.WriteVendorsXLSX(out, "Vendors", found)
		})
	}

	scored := make([]vendors.ScoredCandidate, len(found))
	for i, v := range found {
		scored[i] = vendors.ScoredCandidate{DistanceKm: -1, Vendor: v}
	}

	return printScored(w, scored)
}

func printScored(w io.Writer, results []vendors.ScoredCandidate) error {
	a, b, c, d := strings.Repeat("─", 8), strings.Repeat("─", 32), strings.Repeat("─", 10), strings.Repeat("─", 36)

	fmt.Fprintf(w, "╭─%8s─┬─%-32s─┬─%-10s─┬─%-36s─┬─%8s─╮\n", a, b, c, d, a)
	fmt.Fprintf(w, "│ %8s │ %-32s │ %-10s │ %-36s │ %8s │\n", "Id", "Applicant", "Status", "Address", "Km")
	fmt.Fprintf(w, "├─%8s─┼─%-32s─┼─%-10s─┼─%-36s─┼─%8s─┤\n", a, b, c, d, a)

	for _, r := range results {
		km := ""
		if r.DistanceKm >= 0 {
			km = fmt.Sprintf("%.3f", r.DistanceKm)
		}

		fmt.Fprintf(w, "│ %8d │ %-32s │ %-10s │ %-36s │ %8s │\n",
			r.Vendor.ID, clip(r.Vendor.ApplicantName, 32), clip(r.Vendor.Status, 10), clip(r.Vendor.Address, 36), km)
	}

	_, err := fmt.Fprintf(w, "╰─%8s─┴─%-32s─┴─%-10s─┴─%-36s─┴─%8s─╯\n", a, b, c, d, a)

	return err
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path) // #nosec G304 - path is provided by the operator
	if err != nil {
		return err
	}

	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err = write(f); err != nil {
		return err
	}

	fmt.Printf("Results written to %s\n", path)

	return nil
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.AddCommand(searchNameCmd)
	searchCmd.AddCommand(searchAddressCmd)
	searchCmd.AddCommand(searchNearbyCmd)

	searchCmd.PersistentFlags().BoolVar(
		&searchOptions.AllStatus,
		"all-status",
		false,
		"Include permits in any status",
	)
	searchCmd.PersistentFlags().StringVar(
		&searchOptions.XLSXPath,
		"xlsx",
		"",
		"Write the results to a spreadsheet instead of the terminal",
	)

	searchNearbyCmd.Flags().Float64Var(&searchOptions.Lat, "lat", 0, "Latitude of the search origin")
	searchNearbyCmd.Flags().Float64Var(&searchOptions.Long, "long", 0, "Longitude of the search origin")
	searchNearbyCmd.Flags().IntVar(
		&searchOptions.Limit,
		"limit",
		0,
		"Number of results; defaults to --nearby-vendors-count",
	)

	for _, name := range []string{"lat", "long"} {
		if err := searchNearbyCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}
