// Copyright 2026 The Matrix-MTA Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides validated value types for Matrix identifiers.
//
// Identifiers enter the program at two boundaries: configuration (the
// account and counterpart user IDs) and homeserver responses (the room
// ID from createRoom, or the persisted room store file). Parsing them
// into [UserID] and [RoomID] at those boundaries means the rest of the
// code never handles a malformed identifier — the zero value is the
// only invalid state, testable with IsZero.
package ref
