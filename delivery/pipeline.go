// Copyright 2026 The Matrix-MTA Authors
// SPDX-License-Identifier: Apache-2.0

package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/TheFlipside/matrix-mta/lib/config"
	"github.com/TheFlipside/matrix-mta/lib/mailparse"
	"github.com/TheFlipside/matrix-mta/lib/roomstore"
	"github.com/TheFlipside/matrix-mta/messaging"
)

// Process exit codes. The mail subsystem interprets any non-zero exit
// as a permanent delivery failure and does not retry.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// Pipeline drives one delivery top-down; no component calls back
// upward. Construct with New.
type Pipeline struct {
	config *config.Config
	logger *slog.Logger

	// httpClient overrides the default transport when non-nil.
	// Tests point it at a mock homeserver.
	httpClient *http.Client
}

// New creates a Pipeline for the given configuration.
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{config: cfg, logger: logger}
}

// Run delivers the email content and maps the outcome to a process
// exit code, logging the failure detail on any stage error.
func (p *Pipeline) Run(ctx context.Context, content mailparse.Content) int {
	if err := p.Deliver(ctx, content); err != nil {
		p.logger.Error("delivery failed", "error", err)
		return ExitFailure
	}
	return ExitSuccess
}

// Deliver runs the delivery sequence: authenticate, resolve the room,
// compose, send. Each stage's failure terminates the run; no stage is
// retried and no stage is rolled back.
func (p *Pipeline) Deliver(ctx context.Context, content mailparse.Content) error {
	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: p.config.HomeserverURL,
		HTTPClient:    p.transport(),
		Logger:        p.logger,
	})
	if err != nil {
		return err
	}

	password, err := p.config.ReadPassword()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	defer password.Close()

	session, err := client.Login(ctx, p.config.AccountID(), password)
	if err != nil {
		return fmt.Errorf("authentication: %w", err)
	}
	defer session.Close()

	store := roomstore.New(p.config.RoomStore, p.logger)
	roomID, err := ResolveRoom(ctx, session, p.config.CounterpartID(), store, p.logger)
	if err != nil {
		return fmt.Errorf("room resolution: %w", err)
	}
	p.logger.Info("room resolved", "room_id", roomID)

	eventID, err := session.SendText(ctx, roomID, Compose(content.Subject, content.Body))
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	p.logger.Info("message delivered",
		"room_id", roomID,
		"event_id", eventID,
		"subject", content.Subject,
	)
	return nil
}

func (p *Pipeline) transport() *http.Client {
	if p.httpClient != nil {
		return p.httpClient
	}
	return &http.Client{Timeout: p.config.RequestTimeout()}
}
