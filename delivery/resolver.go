// Copyright 2026 The Matrix-MTA Authors
// SPDX-License-Identifier: Apache-2.0

package delivery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/TheFlipside/matrix-mta/lib/ref"
	"github.com/TheFlipside/matrix-mta/lib/roomstore"
	"github.com/TheFlipside/matrix-mta/messaging"
)

// RoomCreator is the slice of the messaging session the resolver
// needs. *messaging.Session implements it.
type RoomCreator interface {
	CreateRoom(ctx context.Context, request messaging.CreateRoomRequest) (ref.RoomID, error)
}

// ResolveRoom maps the conversation with the counterpart to a room ID
// with create-if-absent semantics persisted across invocations.
//
// The persisted mapping is the fast, common path: when the store holds
// a room ID it is returned with no network call at all. Only the first
// delivery of an installation creates a room — private, direct, with
// the counterpart invited — and persists the result before returning.
//
// The store's advisory lock is taken around the check-create-write
// window and the store is re-read after acquisition, so two concurrent
// first deliveries normally funnel into one room. Lock failure only
// widens the window back to the tolerated race; it never fails the
// delivery.
func ResolveRoom(ctx context.Context, session RoomCreator, counterpart ref.UserID, store *roomstore.Store, logger *slog.Logger) (ref.RoomID, error) {
	roomID, err := store.Read()
	if err != nil {
		// Unreadable or corrupt store. Recreating the mapping loses
		// the old room but keeps the mail flowing.
		logger.Warn("room store unreadable, recreating mapping", "error", err)
	}
	if !roomID.IsZero() {
		return roomID, nil
	}

	if err := store.Lock(); err != nil {
		logger.Warn("room store lock unavailable, proceeding unlocked", "error", err)
	} else {
		defer store.Unlock()

		// A concurrent invocation may have created the room while we
		// waited for the lock.
		roomID, err = store.Read()
		if err != nil {
			logger.Warn("room store unreadable, recreating mapping", "error", err)
		}
		if !roomID.IsZero() {
			return roomID, nil
		}
	}

	roomID, err = session.CreateRoom(ctx, messaging.NewDirectRoomRequest(counterpart))
	if err != nil {
		return ref.RoomID{}, fmt.Errorf("creating room with %s: %w", counterpart, err)
	}

	if err := store.Write(roomID); err != nil {
		// The message can still reach the room this run; the next
		// invocation will create a fresh room. Expensive, not fatal.
		logger.Error("persisting room mapping failed", "room_id", roomID, "error", err)
	}

	return roomID, nil
}
