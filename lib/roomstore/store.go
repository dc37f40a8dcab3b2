// Copyright 2026 The Matrix-MTA Authors
// SPDX-License-Identifier: Apache-2.0

// Package roomstore persists the one room identifier this installation
// delivers into. The store is a single plain-text file containing
// exactly the room ID string — created once by the first successful
// resolution, read by every invocation after that, and removed only by
// uninstallation.
//
// Concurrent invocations (the mail subsystem processes emails in
// parallel) share this file without coordination, so the write is a
// single atomic replace: write to a temporary file, fsync, rename. A
// reader observes the old value or the new value, never a truncated
// identifier. The rare race where two invocations both find the store
// absent and both create a room is tolerated — last writer wins on
// disk — but [Store.Lock] narrows the window with an advisory flock
// for callers that want it.
package roomstore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/TheFlipside/matrix-mta/lib/ref"
)

// FallbackName is the well-known relative path used when the parent
// directory of the configured store path cannot be created. Degrading
// to the working directory keeps delivery alive on a misconfigured or
// read-only installation; the mapping is then per-working-directory,
// which beats failing the email.
const FallbackName = "matrix-mta-room-id"

// Store reads and writes the persisted room mapping.
type Store struct {
	path   string
	logger *slog.Logger

	// active is the path writes target, decided once per process:
	// the configured path, or FallbackName when its parent directory
	// cannot be created.
	active string

	lockFile *os.File
}

// New creates a Store for the given path.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Read returns the persisted room ID, or a zero RoomID when no mapping
// exists yet. Both the configured path and the fallback path are
// consulted — a previous invocation may have degraded to the fallback.
// An empty file counts as absent; file contents are whitespace-trimmed
// before parsing, so a trailing newline from shell redirection is
// harmless.
func (s *Store) Read() (ref.RoomID, error) {
	for _, path := range []string{s.path, FallbackName} {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return ref.RoomID{}, fmt.Errorf("reading room store %s: %w", path, err)
		}

		raw := strings.TrimSpace(string(data))
		if raw == "" {
			continue
		}

		roomID, err := ref.ParseRoomID(raw)
		if err != nil {
			return ref.RoomID{}, fmt.Errorf("room store %s: %w", path, err)
		}
		return roomID, nil
	}
	return ref.RoomID{}, nil
}

// Write persists the room ID as the store's entire content via an
// atomic replace: temporary file, fsync, rename into place, directory
// sync. The file is created with mode 0600.
func (s *Store) Write(roomID ref.RoomID) error {
	if roomID.IsZero() {
		return fmt.Errorf("roomstore: refusing to write zero room ID")
	}

	path := s.writePath()
	temporaryPath := path + ".tmp"

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary room store file: %w", err)
	}

	// Write, sync, close — in that order. If any step fails, remove
	// the temporary file and report the first error.
	if _, err := file.WriteString(roomID.String()); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary room store file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary room store file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary room store file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming room store file into place: %w", err)
	}

	// Sync the parent directory so the rename survives a power loss
	// between the rename and the OS flushing directory metadata.
	parentDirectory, err := os.Open(filepath.Dir(path))
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}

	return nil
}

// Lock takes an advisory exclusive flock for the resolve-or-create
// window, blocking until any concurrent holder releases it. Lock
// failure is not fatal to delivery — without the lock the behavior
// degrades to the tolerated duplicate-create race.
func (s *Store) Lock() error {
	if s.lockFile != nil {
		return nil
	}

	lockPath := s.writePath() + ".lock"
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("opening room store lock %s: %w", lockPath, err)
	}
	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX); err != nil {
		file.Close()
		return fmt.Errorf("locking room store %s: %w", lockPath, err)
	}
	s.lockFile = file
	return nil
}

// Unlock releases the advisory lock. Idempotent. The lock file itself
// is left in place for the next invocation.
func (s *Store) Unlock() {
	if s.lockFile == nil {
		return
	}
	unix.Flock(int(s.lockFile.Fd()), unix.LOCK_UN)
	s.lockFile.Close()
	s.lockFile = nil
}

// writePath decides where writes land: the configured path when its
// parent directory exists or can be created, the working-directory
// fallback otherwise. Decided once per process.
func (s *Store) writePath() string {
	if s.active != "" {
		return s.active
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		s.logger.Warn("room store directory unavailable, using working-directory fallback",
			"path", s.path,
			"fallback", FallbackName,
			"error", err,
		)
		s.active = FallbackName
	} else {
		s.active = s.path
	}
	return s.active
}
