// Copyright 2026 The Matrix-MTA Authors
// SPDX-License-Identifier: Apache-2.0

// Matrix-mta is a sendmail-replacement shim: it reads one RFC 5322
// email from stdin and delivers it as a chat message into the Matrix
// room shared with a configured counterpart. One process per email,
// invoked synchronously by the mail subsystem; exit 0 on delivery,
// exit 1 on any failure.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/TheFlipside/matrix-mta/delivery"
	"github.com/TheFlipside/matrix-mta/lib/config"
	"github.com/TheFlipside/matrix-mta/lib/mailparse"
	"github.com/TheFlipside/matrix-mta/lib/version"
)

// runTimeout bounds the whole invocation. The three homeserver calls
// carry their own per-request timeout; this is the backstop that keeps
// a wedged run from pinning the mail queue.
const runTimeout = 2 * time.Minute

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  string
		subject     string
		showVersion bool
	)

	flags := pflag.NewFlagSet("matrix-mta", pflag.ContinueOnError)
	// Mail subsystems invoke sendmail replacements with conventional
	// flags (-i, -t, -f sender, recipient arguments). Tolerate and
	// ignore anything we don't recognize instead of failing the
	// delivery over an unknown flag.
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.StringVarP(&configPath, "config", "C", "", "path to matrix-mta.yaml (default: $MATRIX_MTA_CONFIG)")
	flags.StringVarP(&subject, "subject", "s", "", "message subject; stdin becomes the body verbatim, bypassing MIME parsing")
	flags.BoolVar(&showVersion, "version", false, "print version information and exit")
	flags.SetOutput(os.Stderr)

	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return delivery.ExitFailure
	}

	if showVersion {
		fmt.Printf("matrix-mta %s\n", version.Info())
		return delivery.ExitSuccess
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		logger.Error("configuration failed", "error", err)
		return delivery.ExitFailure
	}

	var content mailparse.Content
	if flags.Changed("subject") {
		content, err = mailparse.FromBody(subject, os.Stdin)
	} else {
		content, err = mailparse.Parse(os.Stdin)
	}
	if err != nil {
		logger.Error("reading email from stdin failed", "error", err)
		return delivery.ExitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	return delivery.New(cfg, logger).Run(ctx, content)
}
