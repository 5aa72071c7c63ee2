// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils provides utility functions for downloading datasets over HTTP.
package httputils

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// TracingRoundTripper writes a summary of every HTTP transaction to Writer.
type TracingRoundTripper struct {
	Transport   http.RoundTripper
	Writer      io.Writer
	DumpHeaders bool
}

func prefixLines(dump []byte, prefix rune) string {
	const maxLines = 64

	lines := strings.Split(strings.TrimRight(string(dump), "\r\n"), "\n")
	if len(lines) > maxLines {
		lines = append(lines[:maxLines], "…")
	}

	for i, line := range lines {
		lines[i] = fmt.Sprintf("%c %s", prefix, strings.TrimRight(line, "\r"))
	}

	return strings.Join(lines, "\n") + "\n"
}

// RoundTrip implements the http.RoundTripper interface.
func (t *TracingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Writer == nil {
		return t.Transport.RoundTrip(req)
	}

	if t.DumpHeaders {
		if dump, err := httputil.DumpRequestOut(req, false); err == nil {
			fmt.Fprint(t.Writer, prefixLines(dump, '>'))
		}
	}

	start := time.Now()

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		fmt.Fprintf(t.Writer, "%s %s failed after %v: %v\n", req.Method, req.URL, time.Since(start), err)

		return nil, err
	}

	fmt.Fprintf(t.Writer, "%s %s %d [%v]\n", req.Method, req.URL, resp.StatusCode, time.Since(start))

	if t.DumpHeaders {
		if dump, err := httputil.DumpResponse(resp, false); err == nil {
			fmt.Fprint(t.Writer, prefixLines(dump, '<'))
		}
	}

	return resp, nil
}

// HeaderRoundTripper sets fixed headers on every request.
type HeaderRoundTripper struct {
	Transport http.RoundTripper
	Headers   map[string]string
}

// RoundTrip implements the http.RoundTripper interface.
func (t *HeaderRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.Headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	return t.Transport.RoundTrip(req)
}

// ClientOptions configures NewClient.
type ClientOptions struct {
	UserAgent string
	Headers   map[string]string
	Timeout   time.Duration
	Trace     io.Writer // when not nil, transactions are traced here
}

// NewClient builds an http.Client with the configured headers and tracing.
func NewClient(opts ClientOptions) *http.Client {
	headers := map[string]string{"User-Agent": opts.UserAgent}
	for k, v := range opts.Headers {
		headers[k] = v
	}

	var transport http.RoundTripper = &HeaderRoundTripper{
		Transport: http.DefaultTransport,
		Headers:   headers,
	}

	if opts.Trace != nil {
		transport = &TracingRoundTripper{Transport: transport, Writer: opts.Trace}
	}

	return &http.Client{Transport: transport, Timeout: opts.Timeout}
}

// IsURL reports whether s looks like an http or https URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Open issues a GET for url and returns the body. When the Content-Type declares
// a charset the body is decoded to UTF-8; otherwise it is assumed to be UTF-8.
// The caller must close it.
func Open(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()

		return nil, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if _, params, err := mime.ParseMediaType(contentType); err != nil || params["charset"] == "" {
		return resp.Body, nil
	}

	r, err := charset.NewReader(resp.Body, contentType)
	if err != nil {
		resp.Body.Close()

		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}

	return struct {
		io.Reader
		io.Closer
	}{r, resp.Body}, nil
}
