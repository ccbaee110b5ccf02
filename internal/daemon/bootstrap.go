// SPDX-License-Identifier: MIT

// Package daemon wires the transcript pipeline into a running service and
// manages its lifecycle.
package daemon

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/transcriptd/internal/api"
	"github.com/ManuGH/transcriptd/internal/cache"
	"github.com/ManuGH/transcriptd/internal/captions/youtube"
	"github.com/ManuGH/transcriptd/internal/config"
	"github.com/ManuGH/transcriptd/internal/egress"
	"github.com/ManuGH/transcriptd/internal/health"
	"github.com/ManuGH/transcriptd/internal/log"
	"github.com/ManuGH/transcriptd/internal/telemetry"
	"github.com/ManuGH/transcriptd/internal/transcript"
)

const (
	serviceName = "transcriptd"

	memoryCacheCleanup = time.Minute
)

// Runtime is the fully wired service. Close releases what Build acquired.
type Runtime struct {
	Service *transcript.Service
	Health  *health.Manager
	API     *api.Server
	// MetricsHandler is non-nil when metrics get their own listener.
	MetricsHandler http.Handler

	hooks  []namedHook
	logger zerolog.Logger
}

// Build constructs every component from cfg. On error, anything already
// acquired is released before returning.
func Build(ctx context.Context, cfg config.AppConfig) (rt *Runtime, err error) {
	rt = &Runtime{logger: log.WithComponent("bootstrap")}
	defer func() {
		if err != nil {
			_ = rt.Close(context.WithoutCancel(ctx))
			rt = nil
		}
	}()

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return rt, fmt.Errorf("telemetry: %w", err)
	}
	rt.addHook("telemetry", tp.Shutdown)

	pool, err := cfg.RoutePool()
	if err != nil {
		return rt, err
	}

	var (
		store  cache.Cache
		pinger health.Pinger
	)
	if cfg.Egress.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Egress.Redis.Addr,
			Password: cfg.Egress.Redis.Password,
			DB:       cfg.Egress.Redis.DB,
		}, log.WithComponent("cache"))
		if err != nil {
			return rt, fmt.Errorf("affinity store: %w", err)
		}
		rt.addHook("affinity_store", func(context.Context) error { return rc.Close() })
		store, pinger = rc, rc
	} else {
		mc := cache.NewMemoryCache(memoryCacheCleanup)
		rt.addHook("affinity_store", func(context.Context) error { mc.Stop(); return nil })
		store = mc
	}

	selector := egress.NewSelector(pool, store, cfg.Egress.AffinityTTL)
	clients := egress.NewClientFactory(cfg.Provider.Timeout)
	rt.addHook("egress_clients", func(context.Context) error { clients.CloseIdleConnections(); return nil })

	var ytOpts []youtube.Option
	if cfg.Provider.BaseURL != "" {
		ytOpts = append(ytOpts, youtube.WithBaseURL(cfg.Provider.BaseURL))
	}
	provider := youtube.New(clients, ytOpts...)

	gap := cfg.Transcript.GapThreshold
	rt.Service = transcript.NewService(provider, selector, transcript.Config{
		Languages:    cfg.Transcript.Languages,
		GapThreshold: &gap,
	})

	rt.Health = health.NewManager(cfg.Version)
	rt.Health.RegisterChecker(health.NewAffinityStoreChecker(pinger))
	rt.Health.RegisterChecker(health.NewEgressPoolChecker(len(pool)))

	tracingService := ""
	if cfg.Telemetry.Enabled {
		tracingService = serviceName
	}
	rt.API = api.New(rt.Service, rt.Health, api.Config{
		AllowedOrigins:  cfg.AllowedOrigins,
		Environment:     cfg.Telemetry.Environment,
		ServeMetrics:    cfg.Server.MetricsAddr == "",
		TracingService:  tracingService,
		BulkMaxItems:    cfg.Bulk.MaxItems,
		BulkInterval:    cfg.Bulk.StartInterval,
		BulkConcurrency: cfg.Bulk.Concurrency,
	})
	if cfg.Server.MetricsAddr != "" {
		rt.MetricsHandler = promhttp.Handler()
	}

	routes := make([]string, 0, len(pool))
	for _, r := range pool {
		routes = append(routes, r.Endpoint())
	}
	rt.logger.Info().
		Str(log.FieldEvent, "bootstrap.ready").
		Strs("routes", routes).
		Bool("shared_affinity", pinger != nil).
		Strs("languages", rt.Service.Languages()).
		Bool("tracing", cfg.Telemetry.Enabled).
		Msg("transcript pipeline wired")

	return rt, nil
}

func (rt *Runtime) addHook(name string, hook ShutdownHook) {
	rt.hooks = append(rt.hooks, namedHook{name: name, hook: hook})
}

// RegisterHooks hands the runtime's cleanup to m, preserving order.
func (rt *Runtime) RegisterHooks(m Manager) {
	for _, h := range rt.hooks {
		m.RegisterShutdownHook(h.name, h.hook)
	}
	rt.hooks = nil
}

// Close runs the cleanup hooks not yet handed to a Manager, last acquired first.
func (rt *Runtime) Close(ctx context.Context) error {
	hooks := rt.hooks
	rt.hooks = nil
	return runHooks(ctx, hooks, rt.logger)
}
