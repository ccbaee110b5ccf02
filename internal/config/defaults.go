// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"time"

	"github.com/ManuGH/transcriptd/internal/egress"
	"github.com/ManuGH/transcriptd/internal/transcript"
)

const (
	defaultListenAddr      = ":5001"
	defaultLogLevel        = "info"
	defaultReadTimeout     = 30 * time.Second
	defaultWriteTimeout    = 5 * time.Minute // bulk responses are written after every item finished
	defaultIdleTimeout     = 120 * time.Second
	defaultMaxHeaderBytes  = 1 << 20
	defaultShutdownTimeout = 15 * time.Second
	defaultProviderTimeout = 30 * time.Second
	defaultBulkMaxItems    = 50
	defaultSamplingRate    = 1.0
	defaultTraceExporter   = "grpc"
	defaultEnvironment     = "production"
)

// Defaults returns the configuration used when neither file nor env say otherwise.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel:       defaultLogLevel,
		AllowedOrigins: []string{"*"},
		Server: ServerRuntimeConfig{
			ListenAddr:      defaultListenAddr,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			MaxHeaderBytes:  defaultMaxHeaderBytes,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Transcript: TranscriptConfig{
			Languages:    append([]string(nil), transcript.DefaultLanguages...),
			GapThreshold: transcript.DefaultGapThreshold,
		},
		Egress: EgressConfig{
			AffinityTTL: egress.DefaultAffinityTTL,
		},
		Provider: ProviderConfig{
			Timeout: defaultProviderTimeout,
		},
		Bulk: BulkConfig{
			MaxItems:      defaultBulkMaxItems,
			StartInterval: transcript.DefaultBulkInterval,
			Concurrency:   transcript.DefaultBulkConcurrency,
		},
		Telemetry: TelemetryConfig{
			Exporter:     defaultTraceExporter,
			SamplingRate: defaultSamplingRate,
			Environment:  defaultEnvironment,
		},
	}
}
