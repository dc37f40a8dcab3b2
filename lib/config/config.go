// Copyright 2026 The Matrix-MTA Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for matrix-mta.
//
// Configuration is loaded from a single YAML file specified by:
//   - the MATRIX_MTA_CONFIG environment variable, or
//   - the --config flag passed to the command
//
// There are no fallbacks or automatic discovery, and environment
// variables do not override file values. A sendmail shim is invoked by
// the mail subsystem with an unpredictable environment; deterministic,
// auditable configuration matters more than convenience here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/TheFlipside/matrix-mta/lib/ref"
	"github.com/TheFlipside/matrix-mta/lib/secret"
)

// Config holds the credentials and paths for one installation. It is
// constructed once at startup and passed down into the pipeline — no
// component reads ambient global settings.
type Config struct {
	// HomeserverURL is the base URL of the Matrix homeserver.
	HomeserverURL string `yaml:"homeserver_url"`

	// UserID is the fully-qualified account the shim logs in as
	// (e.g., "@relay:example.org").
	UserID string `yaml:"user_id"`

	// Password is the account password, inline. Prefer PasswordFile.
	Password string `yaml:"password"`

	// PasswordFile is a path to a file holding the account password.
	// Exactly one of Password and PasswordFile must be set. Stdin
	// ("-") is not accepted here — stdin carries the email document.
	PasswordFile string `yaml:"password_file"`

	// Counterpart is the fully-qualified user that receives all
	// bridged messages (e.g., "@human:example.org").
	Counterpart string `yaml:"counterpart"`

	// RoomStore is the path of the persisted room-mapping file.
	// Default: $HOME/.local/state/matrix-mta/room-id
	RoomStore string `yaml:"room_store"`

	// Timeout bounds each homeserver request (Go duration string).
	// Default: "10s".
	Timeout string `yaml:"timeout"`

	accountID      ref.UserID
	counterpartID  ref.UserID
	requestTimeout time.Duration
}

// Default returns the configuration defaults applied before the file
// is loaded. The file is still required — these only fill optional
// fields.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		RoomStore: filepath.Join(homeDir, ".local", "state", "matrix-mta", "room-id"),
		Timeout:   "10s",
	}
}

// Load loads configuration from the MATRIX_MTA_CONFIG environment
// variable. Fails when the variable is not set.
func Load() (*Config, error) {
	configPath := os.Getenv("MATRIX_MTA_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("MATRIX_MTA_CONFIG environment variable not set; " +
			"set it to the path of your matrix-mta.yaml config file, or use --config")
	}
	return LoadFile(configPath)
}

// LoadFile loads and validates configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration and parses the typed fields.
// All problems are reported together, not just the first.
func (c *Config) Validate() error {
	var errs []error

	if c.HomeserverURL == "" {
		errs = append(errs, fmt.Errorf("homeserver_url is required"))
	}

	if c.UserID == "" {
		errs = append(errs, fmt.Errorf("user_id is required"))
	} else {
		accountID, err := ref.ParseUserID(c.UserID)
		if err != nil {
			errs = append(errs, fmt.Errorf("user_id: %w", err))
		} else {
			c.accountID = accountID
		}
	}

	if c.Counterpart == "" {
		errs = append(errs, fmt.Errorf("counterpart is required"))
	} else {
		counterpartID, err := ref.ParseUserID(c.Counterpart)
		if err != nil {
			errs = append(errs, fmt.Errorf("counterpart: %w", err))
		} else {
			c.counterpartID = counterpartID
		}
	}

	if c.Password == "" && c.PasswordFile == "" {
		errs = append(errs, fmt.Errorf("one of password or password_file is required"))
	}
	if c.Password != "" && c.PasswordFile != "" {
		errs = append(errs, fmt.Errorf("password and password_file are mutually exclusive"))
	}
	if c.PasswordFile == "-" {
		errs = append(errs, fmt.Errorf("password_file cannot be stdin; stdin carries the email"))
	}

	if c.RoomStore == "" {
		errs = append(errs, fmt.Errorf("room_store is required"))
	}

	timeout, err := time.ParseDuration(c.Timeout)
	if err != nil {
		errs = append(errs, fmt.Errorf("timeout: %w", err))
	} else if timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", timeout))
	} else {
		c.requestTimeout = timeout
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// AccountID returns the parsed account user ID. Valid after Validate.
func (c *Config) AccountID() ref.UserID { return c.accountID }

// CounterpartID returns the parsed counterpart user ID. Valid after
// Validate.
func (c *Config) CounterpartID() ref.UserID { return c.counterpartID }

// RequestTimeout returns the parsed per-request timeout. Valid after
// Validate.
func (c *Config) RequestTimeout() time.Duration { return c.requestTimeout }

// ReadPassword returns the account password in a protected buffer.
// The caller must close it.
func (c *Config) ReadPassword() (*secret.Buffer, error) {
	if c.PasswordFile != "" {
		buffer, err := secret.ReadFromPath(c.PasswordFile)
		if err != nil {
			return nil, fmt.Errorf("reading password from %s: %w", c.PasswordFile, err)
		}
		return buffer, nil
	}
	return secret.NewFromString(c.Password)
}
