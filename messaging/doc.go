// Copyright 2026 The Matrix-MTA Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging wraps the three Matrix client-server API calls the
// delivery pipeline needs: password login, room creation, and message
// send. Paths are the r0 client API, matching the servers this shim is
// deployed against.
//
// [Client] is the unauthenticated entry point: it holds the homeserver
// URL and HTTP transport. [Client.Login] exchanges the configured
// credentials for a [Session], which holds the access token in
// mmap-backed [secret.Buffer] memory (locked against swap, excluded
// from core dumps) and performs the authenticated calls. Callers must
// call Session.Close to release the protected memory.
//
// A homeserver may report failure inside a 2xx body, so success is
// judged on body content, not status: login succeeds only when
// access_token is present, createRoom only when room_id is present,
// send only when the body carries no errcode. Structured server errors
// surface as [*MatrixError] with the standard error code (M_FORBIDDEN,
// M_UNKNOWN_TOKEN, ...) and HTTP status; [IsMatrixError] tests for a
// specific code. Request URLs are built by string concatenation rather
// than url.URL to avoid double-encoding of path segments.
package messaging
