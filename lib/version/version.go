// Copyright 2026 The Matrix-MTA Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the build version for --version output.
package version

// value is set at build time via:
//
//	go build -ldflags "-X github.com/TheFlipside/matrix-mta/lib/version.value=v1.2.3"
var value = "dev"

// Info returns the build version string.
func Info() string {
	return value
}
