// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// ServerConfig holds the resolved HTTP server settings.
type ServerConfig struct {
	ListenAddr      string
	MetricsAddr     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxHeaderBytes  int
	ShutdownTimeout time.Duration
}

const minShutdownTimeout = 3 * time.Second

// ServerConfigFor derives listener settings from cfg, replacing unset or
// unusable values with defaults.
func ServerConfigFor(cfg AppConfig) ServerConfig {
	s := cfg.Server
	out := ServerConfig{
		ListenAddr:      s.ListenAddr,
		MetricsAddr:     s.MetricsAddr,
		ReadTimeout:     s.ReadTimeout,
		WriteTimeout:    s.WriteTimeout,
		IdleTimeout:     s.IdleTimeout,
		MaxHeaderBytes:  s.MaxHeaderBytes,
		ShutdownTimeout: s.ShutdownTimeout,
	}
	if out.ListenAddr == "" {
		out.ListenAddr = defaultListenAddr
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = defaultReadTimeout
	}
	if out.WriteTimeout < 0 {
		out.WriteTimeout = defaultWriteTimeout
	}
	if out.IdleTimeout <= 0 {
		out.IdleTimeout = defaultIdleTimeout
	}
	if out.MaxHeaderBytes <= 0 {
		out.MaxHeaderBytes = defaultMaxHeaderBytes
	}
	if out.ShutdownTimeout < minShutdownTimeout {
		out.ShutdownTimeout = minShutdownTimeout
	}
	return out
}
