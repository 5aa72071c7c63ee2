// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/streetfood/vendorsearch/vendors"
)

var serveOptions struct {
	Addr        string
	CORSOrigins []string
	CSVPath     string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, repo, closeFn, err := openService(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		if serveOptions.CSVPath != "" {
			if _, err := loadSource(ctx, repo, serveOptions.CSVPath, false); err != nil {
				return fmt.Errorf("loading %s: %w", serveOptions.CSVPath, err)
			}
		}

		n, err := svc.Count(ctx)
		if err != nil {
			return err
		}

		log.Printf("vendorsearch %s serving %d records", Version, n)

		return vendors.NewServer(svc, serveOptions.CORSOrigins).Run(ctx, serveOptions.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(
		&serveOptions.Addr,
		"addr",
		":8000",
		"Address to listen on",
	)
	serveCmd.Flags().StringSliceVar(
		&serveOptions.CORSOrigins,
		"cors-origin",
		[]string{"http://localhost:3000"},
		"Origins allowed to call the API from a browser",
	)
	serveCmd.Flags().StringVar(
		&serveOptions.CSVPath,
		"csv",
		"",
		"Permit CSV path or URL loaded at startup when the store is empty",
	)
	addFetchFlags(serveCmd)
}
