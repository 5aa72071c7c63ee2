// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/streetfood/vendorsearch/utils/httputils"
	"github.com/streetfood/vendorsearch/vendors"
)

var fetchOptions struct {
	AppToken  string
	TraceHTTP bool
}

// loadSource loads a permit CSV from a local path or an http(s) URL.
func loadSource(ctx context.Context, repo vendors.Repository, src string, force bool) (vendors.LoadMetrics, error) {
	loader := vendors.NewLoader(repo, force)

	if !httputils.IsURL(src) {
		return loader.LoadFile(ctx, src)
	}

	var trace io.Writer
	if fetchOptions.TraceHTTP {
		trace = os.Stderr
	}

	client := httputils.NewClient(httputils.ClientOptions{
		UserAgent: "vendorsearch/" + Version,
		Headers:   map[string]string{"X-App-Token": fetchOptions.AppToken},
		Timeout:   5 * time.Minute,
		Trace:     trace,
	})

	body, err := httputils.Open(ctx, client, src)
	if err != nil {
		return vendors.LoadMetrics{}, err
	}
	defer body.Close()

	return loader.Load(ctx, body)
}

func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&fetchOptions.AppToken,
		"app-token",
		os.Getenv("VENDORS_APP_TOKEN"),
		"Open data portal application token sent when downloading a CSV URL",
	)
	cmd.Flags().BoolVar(
		&fetchOptions.TraceHTTP,
		"trace-http",
		false,
		"Display HTTP requests-responses",
	)
}
