// Copyright 2025 The VendorSearch Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/streetfood/vendorsearch/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
