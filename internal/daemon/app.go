// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"fmt"
	"io"

	"github.com/ManuGH/transcriptd/internal/config"
	"github.com/ManuGH/transcriptd/internal/log"
	"github.com/ManuGH/transcriptd/internal/transcript"
	"github.com/ManuGH/transcriptd/internal/videoid"
)

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg config.AppConfig) error {
	rt, err := Build(ctx, cfg)
	if err != nil {
		return err
	}

	serverCfg := config.ServerConfigFor(cfg)
	mgr, err := NewManager(serverCfg, Deps{
		Logger:         log.WithComponent("daemon"),
		APIHandler:     rt.API.Handler(),
		MetricsAddr:    serverCfg.MetricsAddr,
		MetricsHandler: rt.MetricsHandler,
	})
	if err != nil {
		_ = rt.Close(context.WithoutCancel(ctx))
		return err
	}
	rt.RegisterHooks(mgr)

	return mgr.Start(ctx)
}

// Fetch resolves one video URL with the configured pipeline and writes the
// transcript text to w.
func Fetch(ctx context.Context, cfg config.AppConfig, rawURL string, w io.Writer) (err error) {
	id, err := videoid.Extract(rawURL)
	if err != nil {
		return transcript.NewInvalidInput("Invalid YouTube URL")
	}

	rt, err := Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}()

	res, err := rt.Service.ResolveAndFormat(ctx, id, transcript.Options{})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, res.Text)
	return err
}
