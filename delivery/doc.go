// Copyright 2026 The Matrix-MTA Authors
// SPDX-License-Identifier: Apache-2.0

// Package delivery orchestrates one email delivery: authenticate,
// resolve the room shared with the counterpart, compose the message,
// send it. The pipeline is a straight line per invocation:
//
//	START → AUTHENTICATED → ROOM_RESOLVED → MESSAGE_SENT
//
// with failure at any stage terminating the run; there are no backward
// transitions and no in-process retries. The mail subsystem that
// invoked us is the sole retry authority.
//
// A resolver success followed by a send failure is deliberately not
// rolled back: the persisted room mapping survives, so the next
// invocation reuses the room and only repeats the send. Room
// identifiers are cheap to keep and expensive to recreate, while a
// duplicate message in a chat transcript is a non-event for the human
// reading it.
package delivery
