// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

// Validate checks cfg and joins every problem found into one error wrapping
// ErrInvalidConfig.
func Validate(cfg AppConfig) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err != nil {
		add("logLevel %q: %v", cfg.LogLevel, err)
	}
	if strings.TrimSpace(cfg.Server.ListenAddr) == "" {
		add("server.listenAddr must not be empty")
	}

	if len(cfg.Transcript.Languages) == 0 {
		add("transcript.languages must not be empty")
	}
	for _, code := range cfg.Transcript.Languages {
		if _, err := language.Parse(code); err != nil {
			add("transcript.languages: %q is not a BCP 47 tag: %v", code, err)
		}
	}
	if cfg.Transcript.GapThreshold < 0 {
		add("transcript.gapThreshold must be >= 0, got %v", cfg.Transcript.GapThreshold)
	}

	if _, err := cfg.RoutePool(); err != nil {
		errs = append(errs, err)
	}
	ws := cfg.Egress.Webshare
	if (ws.Username == "") != (ws.Password == "") {
		add("egress.webshare: username and password must be set together")
	}
	if cfg.Egress.AffinityTTL <= 0 {
		add("egress.affinityTTL must be positive")
	}
	if cfg.Egress.Redis.DB < 0 {
		add("egress.redis.db must be >= 0")
	}

	if cfg.Provider.Timeout <= 0 {
		add("provider.timeout must be positive")
	}
	if cfg.Provider.BaseURL != "" {
		if u, err := url.Parse(cfg.Provider.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			add("provider.baseURL %q must be an absolute URL", cfg.Provider.BaseURL)
		}
	}

	if cfg.Bulk.MaxItems <= 0 {
		add("bulk.maxItems must be positive")
	}
	if cfg.Bulk.StartInterval <= 0 {
		add("bulk.startInterval must be positive")
	}
	if cfg.Bulk.Concurrency <= 0 {
		add("bulk.concurrency must be positive")
	}

	if cfg.Telemetry.Enabled {
		switch cfg.Telemetry.Exporter {
		case "grpc", "http":
		default:
			add("telemetry.exporter %q (supported: grpc, http)", cfg.Telemetry.Exporter)
		}
		if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
			add("telemetry.samplingRate must be within [0, 1]")
		}
	}

	return errors.Join(errs...)
}
