// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ManuGH/transcriptd/internal/config"
	"github.com/ManuGH/transcriptd/internal/daemon"
	xglog "github.com/ManuGH/transcriptd/internal/log"
	"github.com/ManuGH/transcriptd/internal/transcript"
)

func runFetchCLI(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return fetchMain(ctx, args, os.Stdout, os.Stderr)
}

// fetchMain resolves one URL and prints the transcript. Logs go to stderr so
// stdout carries only the text.
func fetchMain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("transcriptd fetch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var file, languages string
	fs.StringVar(&file, "config", "", "path to config file (YAML)")
	fs.StringVar(&languages, "languages", "", "comma-separated preferred languages")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: transcriptd fetch [--config config.yaml] [--languages en,de] <video-url>")
		return 2
	}

	xglog.Configure(xglog.Config{Level: "warn", Output: stderr, Version: version})

	cfg, err := config.NewLoader(strings.TrimSpace(file), version).Load()
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}
	if languages != "" {
		cfg.Transcript.Languages = nil
		for _, l := range strings.Split(languages, ",") {
			if l = strings.TrimSpace(l); l != "" {
				cfg.Transcript.Languages = append(cfg.Transcript.Languages, l)
			}
		}
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}
	xglog.Configure(xglog.Config{Level: cfg.LogLevel, Output: stderr, Version: cfg.Version})

	if err := daemon.Fetch(ctx, cfg, fs.Arg(0), stdout); err != nil {
		var ce *transcript.ClassifiedError
		if errors.As(err, &ce) {
			fmt.Fprintf(stderr, "%s: %s\n", ce.Kind, ce.Message)
			if ce.Details != "" {
				fmt.Fprintf(stderr, "Details: %s\n", ce.Details)
			}
			return 1
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
