// Copyright 2026 The Matrix-MTA Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuffer(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		buffer, err := NewFromString("hunter2")
		if err != nil {
			t.Fatalf("NewFromString failed: %v", err)
		}
		defer buffer.Close()

		if buffer.String() != "hunter2" {
			t.Errorf("unexpected contents: %q", buffer.String())
		}
		if buffer.Len() != 7 {
			t.Errorf("unexpected length: %d", buffer.Len())
		}
	})

	t.Run("NewFromBytes zeros the source", func(t *testing.T) {
		source := []byte("topsecret")
		buffer, err := NewFromBytes(source)
		if err != nil {
			t.Fatalf("NewFromBytes failed: %v", err)
		}
		defer buffer.Close()

		for index, b := range source {
			if b != 0 {
				t.Fatalf("source byte %d not zeroed", index)
			}
		}
		if buffer.String() != "topsecret" {
			t.Errorf("unexpected contents: %q", buffer.String())
		}
	})

	t.Run("empty source rejected", func(t *testing.T) {
		if _, err := NewFromBytes(nil); err == nil {
			t.Error("expected error for empty source")
		}
		if _, err := NewFromString(""); err == nil {
			t.Error("expected error for empty string")
		}
	})

	t.Run("close is idempotent", func(t *testing.T) {
		buffer, err := NewFromString("x")
		if err != nil {
			t.Fatalf("NewFromString failed: %v", err)
		}
		if err := buffer.Close(); err != nil {
			t.Fatalf("first Close failed: %v", err)
		}
		if err := buffer.Close(); err != nil {
			t.Fatalf("second Close failed: %v", err)
		}
	})

	t.Run("access after close panics", func(t *testing.T) {
		buffer, err := NewFromString("x")
		if err != nil {
			t.Fatalf("NewFromString failed: %v", err)
		}
		buffer.Close()

		defer func() {
			if recover() == nil {
				t.Error("expected panic reading closed buffer")
			}
		}()
		_ = buffer.String()
	})
}

func TestReadLine(t *testing.T) {
	t.Run("trims whitespace", func(t *testing.T) {
		buffer, err := ReadLine(strings.NewReader("  s3cret\t\n"))
		if err != nil {
			t.Fatalf("ReadLine failed: %v", err)
		}
		defer buffer.Close()

		if buffer.String() != "s3cret" {
			t.Errorf("unexpected contents: %q", buffer.String())
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if _, err := ReadLine(strings.NewReader("")); err == nil {
			t.Error("expected error for empty input")
		}
		if _, err := ReadLine(strings.NewReader("   \n")); err == nil {
			t.Error("expected error for whitespace-only input")
		}
	})
}

func TestReadFromPath(t *testing.T) {
	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "password")
		if err := os.WriteFile(path, []byte("correct horse\n"), 0600); err != nil {
			t.Fatalf("writing test file: %v", err)
		}

		buffer, err := ReadFromPath(path)
		if err != nil {
			t.Fatalf("ReadFromPath failed: %v", err)
		}
		defer buffer.Close()

		if buffer.String() != "correct horse" {
			t.Errorf("unexpected contents: %q", buffer.String())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ReadFromPath(filepath.Join(t.TempDir(), "absent")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty")
		if err := os.WriteFile(path, []byte("\n"), 0600); err != nil {
			t.Fatalf("writing test file: %v", err)
		}
		if _, err := ReadFromPath(path); err == nil {
			t.Error("expected error for empty file")
		}
	})
}
