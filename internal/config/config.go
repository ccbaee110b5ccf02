// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads transcriptd configuration with the precedence
// ENV > YAML file > defaults.
package config

import (
	"fmt"
	"time"

	"github.com/ManuGH/transcriptd/internal/egress"
)

// AppConfig is the complete runtime configuration. The yaml tags define the
// file schema; unknown keys are rejected.
type AppConfig struct {
	Version string `yaml:"-"`

	LogLevel       string   `yaml:"logLevel"`
	AllowedOrigins []string `yaml:"allowedOrigins"`

	Server     ServerRuntimeConfig `yaml:"server"`
	Transcript TranscriptConfig    `yaml:"transcript"`
	Egress     EgressConfig        `yaml:"egress"`
	Provider   ProviderConfig      `yaml:"provider"`
	Bulk       BulkConfig          `yaml:"bulk"`
	Telemetry  TelemetryConfig     `yaml:"telemetry"`
}

// ServerRuntimeConfig holds listener settings.
type ServerRuntimeConfig struct {
	ListenAddr      string        `yaml:"listenAddr"`
	MetricsAddr     string        `yaml:"metricsAddr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	MaxHeaderBytes  int           `yaml:"maxHeaderBytes"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// TranscriptConfig controls the resolution pipeline.
type TranscriptConfig struct {
	Languages    []string `yaml:"languages"`
	GapThreshold float64  `yaml:"gapThreshold"`
}

// EgressConfig describes the outbound route pool.
type EgressConfig struct {
	Routes      []string       `yaml:"routes"`
	Webshare    WebshareConfig `yaml:"webshare"`
	AffinityTTL time.Duration  `yaml:"affinityTTL"`
	Redis       RedisConfig    `yaml:"redis"`
}

// WebshareConfig holds the credentials of a Webshare rotating proxy account.
type WebshareConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// RedisConfig enables the shared route-affinity store when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ProviderConfig tunes outbound calls to the caption provider.
type ProviderConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	BaseURL string        `yaml:"baseURL"`
}

// BulkConfig bounds the bulk endpoint.
type BulkConfig struct {
	MaxItems      int           `yaml:"maxItems"`
	StartInterval time.Duration `yaml:"startInterval"`
	Concurrency   int           `yaml:"concurrency"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment"`
}

// RoutePool builds the egress pool: every configured route plus the Webshare
// endpoint when credentials are present. An empty pool means direct egress.
func (c AppConfig) RoutePool() ([]egress.Route, error) {
	routes, err := egress.ParseRoutes(c.Egress.Routes)
	if err != nil {
		return nil, fmt.Errorf("%w: egress.routes: %v", ErrInvalidConfig, err)
	}
	if c.Egress.Webshare.Username != "" && c.Egress.Webshare.Password != "" {
		routes = append(routes, egress.WebshareRoute(c.Egress.Webshare.Username, c.Egress.Webshare.Password))
	}
	return routes, nil
}
