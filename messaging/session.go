// Copyright 2026 The Matrix-MTA Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/TheFlipside/matrix-mta/lib/ref"
	"github.com/TheFlipside/matrix-mta/lib/secret"
)

// Session is an authenticated Matrix session. It wraps a Client with
// the access token obtained by Login.
//
// The token is stored in a secret.Buffer (mmap-backed, locked against
// swap, excluded from core dumps). The token is never persisted — it
// lives only for the current process invocation. The caller must call
// Close when the Session is no longer needed.
type Session struct {
	client      *Client
	accessToken *secret.Buffer
	userID      ref.UserID
}

// UserID returns the fully-qualified Matrix user ID reported by the
// homeserver at login (e.g., "@relay:example.org").
func (s *Session) UserID() ref.UserID {
	return s.userID
}

// Close releases the access token memory (zeros, unlocks, unmaps).
// Idempotent — safe to call multiple times.
func (s *Session) Close() error {
	if s.accessToken != nil {
		return s.accessToken.Close()
	}
	return nil
}

// CreateRoom creates a new Matrix room. A response without a room_id
// is a failure even on HTTP success — the caller cannot deliver into a
// room it cannot name.
func (s *Session) CreateRoom(ctx context.Context, request CreateRoomRequest) (ref.RoomID, error) {
	body, err := s.client.doRequest(ctx, http.MethodPost, "/_matrix/client/r0/createRoom", s.accessToken, request)
	if err != nil {
		return ref.RoomID{}, fmt.Errorf("messaging: create room failed: %w", err)
	}

	var response CreateRoomResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ref.RoomID{}, fmt.Errorf("messaging: failed to parse createRoom response: %w", err)
	}
	if response.RoomID.IsZero() {
		return ref.RoomID{}, fmt.Errorf("messaging: createRoom response missing room_id: %s", body)
	}

	s.client.logger.Info("created room",
		"room_id", response.RoomID,
		"invite", request.Invite,
	)
	return response.RoomID, nil
}

// SendText sends an m.text message to a room and returns the event ID
// of the server's acknowledgement.
//
// Success is the absence of an errcode in the response body: the
// homeserver may report a send failure with a 200 status, so the body
// is inspected regardless of HTTP outcome.
func (s *Session) SendText(ctx context.Context, roomID ref.RoomID, body string) (string, error) {
	path := fmt.Sprintf("/_matrix/client/r0/rooms/%s/send/m.room.message",
		url.PathEscape(roomID.String()))

	content := MessageContent{
		MsgType: "m.text",
		Body:    body,
	}

	responseBody, err := s.client.doRequest(ctx, http.MethodPost, path, s.accessToken, content)
	if err != nil {
		return "", fmt.Errorf("messaging: send to %q failed: %w", roomID, err)
	}

	var response SendResponse
	if err := json.Unmarshal(responseBody, &response); err != nil {
		return "", fmt.Errorf("messaging: failed to parse send response: %w", err)
	}
	if response.ErrCode != "" {
		return "", fmt.Errorf("messaging: send to %q failed: %w", roomID, &MatrixError{
			Code:       response.ErrCode,
			Message:    response.Error,
			StatusCode: http.StatusOK,
		})
	}
	return response.EventID, nil
}
