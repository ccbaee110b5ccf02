// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvListen          = "TRANSCRIPTD_LISTEN"
	EnvMetricsListen   = "TRANSCRIPTD_METRICS_LISTEN"
	EnvLogLevel        = "TRANSCRIPTD_LOG_LEVEL"
	EnvAllowedOrigins  = "TRANSCRIPTD_ALLOWED_ORIGINS"
	EnvLanguages       = "TRANSCRIPTD_LANGUAGES"
	EnvGapThreshold    = "TRANSCRIPTD_GAP_THRESHOLD"
	EnvEgressRoutes    = "TRANSCRIPTD_EGRESS_ROUTES"
	EnvWebshareUser    = "WEBSHARE_USER"
	EnvWebsharePass    = "WEBSHARE_PASS"
	EnvAffinityTTL     = "TRANSCRIPTD_AFFINITY_TTL"
	EnvRedisAddr       = "TRANSCRIPTD_REDIS_ADDR"
	EnvRedisPassword   = "TRANSCRIPTD_REDIS_PASSWORD"
	EnvRedisDB         = "TRANSCRIPTD_REDIS_DB"
	EnvProviderTimeout = "TRANSCRIPTD_PROVIDER_TIMEOUT"
	EnvProviderBaseURL = "TRANSCRIPTD_PROVIDER_BASE_URL"
	EnvBulkMaxItems    = "TRANSCRIPTD_BULK_MAX_ITEMS"
	EnvBulkInterval    = "TRANSCRIPTD_BULK_INTERVAL"
	EnvBulkConcurrency = "TRANSCRIPTD_BULK_CONCURRENCY"
	EnvTracingEnabled  = "TRANSCRIPTD_TRACING_ENABLED"
	EnvTracingExporter = "TRANSCRIPTD_TRACING_EXPORTER"
	EnvTracingEndpoint = "TRANSCRIPTD_TRACING_ENDPOINT"
	EnvTracingSampling = "TRANSCRIPTD_TRACING_SAMPLING"
	EnvEnvironment     = "TRANSCRIPTD_ENVIRONMENT"
)

// Loader handles configuration loading with precedence.
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a loader. configPath may be empty.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, def string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, def)
}

func (l *Loader) envInt(key string, def int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, def)
}

func (l *Loader) envBool(key string, def bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, def)
}

func (l *Loader) envFloat(key string, def float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, def)
}

func (l *Loader) envDuration(key string, def time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, def)
}

func (l *Loader) envList(key string, def []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseList(key, def)
}

// Load applies defaults, then the YAML file (strict), then the environment,
// and validates the result.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnv(&cfg)
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes path over cfg. Keys absent from the file keep their
// current value; unknown keys are an error.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("strict config parse error: %w: %v", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.AllowedOrigins = l.envList(EnvAllowedOrigins, cfg.AllowedOrigins)

	cfg.Server.ListenAddr = l.envString(EnvListen, cfg.Server.ListenAddr)
	cfg.Server.MetricsAddr = l.envString(EnvMetricsListen, cfg.Server.MetricsAddr)

	cfg.Transcript.Languages = l.envList(EnvLanguages, cfg.Transcript.Languages)
	cfg.Transcript.GapThreshold = l.envFloat(EnvGapThreshold, cfg.Transcript.GapThreshold)

	cfg.Egress.Routes = l.envList(EnvEgressRoutes, cfg.Egress.Routes)
	cfg.Egress.Webshare.Username = l.envString(EnvWebshareUser, cfg.Egress.Webshare.Username)
	cfg.Egress.Webshare.Password = l.envString(EnvWebsharePass, cfg.Egress.Webshare.Password)
	cfg.Egress.AffinityTTL = l.envDuration(EnvAffinityTTL, cfg.Egress.AffinityTTL)
	cfg.Egress.Redis.Addr = l.envString(EnvRedisAddr, cfg.Egress.Redis.Addr)
	cfg.Egress.Redis.Password = l.envString(EnvRedisPassword, cfg.Egress.Redis.Password)
	cfg.Egress.Redis.DB = l.envInt(EnvRedisDB, cfg.Egress.Redis.DB)

	cfg.Provider.Timeout = l.envDuration(EnvProviderTimeout, cfg.Provider.Timeout)
	cfg.Provider.BaseURL = l.envString(EnvProviderBaseURL, cfg.Provider.BaseURL)

	cfg.Bulk.MaxItems = l.envInt(EnvBulkMaxItems, cfg.Bulk.MaxItems)
	cfg.Bulk.StartInterval = l.envDuration(EnvBulkInterval, cfg.Bulk.StartInterval)
	cfg.Bulk.Concurrency = l.envInt(EnvBulkConcurrency, cfg.Bulk.Concurrency)

	cfg.Telemetry.Exporter = l.envString(EnvTracingExporter, cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvTracingEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvTracingSampling, cfg.Telemetry.SamplingRate)
	cfg.Telemetry.Environment = l.envString(EnvEnvironment, cfg.Telemetry.Environment)
	// An endpoint alone turns tracing on.
	cfg.Telemetry.Enabled = l.envBool(EnvTracingEnabled, cfg.Telemetry.Enabled || cfg.Telemetry.Endpoint != "")
}
