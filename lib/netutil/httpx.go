// Copyright 2026 The Matrix-MTA Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides HTTP I/O helpers for the homeserver client.
//
// ReadResponse bounds response body reads at MaxResponseSize so a
// misbehaving homeserver cannot make a one-shot delivery process
// allocate unbounded memory. The Matrix responses this program reads
// (login, createRoom, send acknowledgement) are tiny; the limit is
// generous so it never interferes with normal operation.
package netutil

import (
	"io"
)

// MaxResponseSize is the bound on JSON API response body reads: 4 MB.
const MaxResponseSize int64 = 4 << 20

// ReadResponse reads a JSON API response body up to MaxResponseSize
// bytes. Use instead of io.ReadAll when reading HTTP response bodies.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}
