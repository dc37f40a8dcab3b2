// Copyright 2026 The Matrix-MTA Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"github.com/TheFlipside/matrix-mta/lib/ref"
)

// LoginRequest is the request body for password login.
type LoginRequest struct {
	Type                     string `json:"type"`
	User                     string `json:"user"`
	Password                 string `json:"password"`
	InitialDeviceDisplayName string `json:"initial_device_display_name,omitempty"`
}

// AuthResponse is returned by Login.
type AuthResponse struct {
	UserID      ref.UserID `json:"user_id"`
	AccessToken string     `json:"access_token"`
	DeviceID    string     `json:"device_id"`
}

// CreateRoomRequest holds parameters for creating a Matrix room.
// The delivery pipeline always creates a private direct room with the
// counterpart invited; NewDirectRoomRequest builds that shape.
type CreateRoomRequest struct {
	Preset   string       `json:"preset,omitempty"` // "private_chat", "public_chat", "trusted_private_chat"
	Invite   []ref.UserID `json:"invite,omitempty"`
	IsDirect bool         `json:"is_direct,omitempty"`
	Name     string       `json:"name,omitempty"`
	Topic    string       `json:"topic,omitempty"`
}

// NewDirectRoomRequest builds the createRoom request for the bridged
// conversation: a private room with the counterpart invited, flagged
// as a direct chat so clients file it under direct messages.
func NewDirectRoomRequest(counterpart ref.UserID) CreateRoomRequest {
	return CreateRoomRequest{
		Preset:   "private_chat",
		Invite:   []ref.UserID{counterpart},
		IsDirect: true,
	}
}

// CreateRoomResponse is returned by CreateRoom.
type CreateRoomResponse struct {
	RoomID ref.RoomID `json:"room_id"`
}

// MessageContent is the content body of an m.room.message event.
type MessageContent struct {
	MsgType string `json:"msgtype"`
	Body    string `json:"body"`
}

// SendResponse is the body of a send acknowledgement. A homeserver
// reporting failure inside a success-status body populates ErrCode and
// Error instead of EventID.
type SendResponse struct {
	EventID string `json:"event_id"`
	ErrCode string `json:"errcode"`
	Error   string `json:"error"`
}
