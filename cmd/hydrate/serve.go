package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/vango-dev/hydrate/internal/config"
	"github.com/vango-dev/hydrate/internal/demo"
	herrors "github.com/vango-dev/hydrate/internal/errors"
	"github.com/vango-dev/hydrate/pkg/codec"
	"github.com/vango-dev/hydrate/pkg/hydrate"
	"github.com/vango-dev/hydrate/pkg/middleware"
	"github.com/vango-dev/hydrate/pkg/server"
	"github.com/vango-dev/hydrate/pkg/serverfn"
)

type serveOptions struct {
	dir    string
	addr   string
	bundle string
	dev    bool
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo page",
		Long: `Serve the demo page, the server function gateway and, in store
mode, the payload endpoint.

Settings come from hydrate.json in --dir when present, defaults otherwise.

Examples:
  hydrate serve
  hydrate serve --addr=:8080
  hydrate serve --bundle=dist/client.js --dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", ".", "Directory containing hydrate.json")
	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "Listen address (default from hydrate.json)")
	cmd.Flags().StringVar(&opts.bundle, "bundle", "", "Client bundle served at /_hydrate/client.js")
	cmd.Flags().BoolVar(&opts.dev, "dev", false, "Show render errors in responses")
	return cmd
}

func runServe(ctx context.Context, opts serveOptions) error {
	cfg, err := loadConfig(opts.dir)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}

	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	var bundle []byte
	if opts.bundle != "" {
		if bundle, err = os.ReadFile(opts.bundle); err != nil {
			return fmt.Errorf("read client bundle: %w", err)
		}
	}

	s, err := buildServer(ctx, cfg, bundle, opts.dev, logger)
	if err != nil {
		return err
	}
	if err := s.Run(ctx); err != nil {
		return herrors.FromError(err, "E140")
	}
	return nil
}

// loadConfig reads hydrate.json from dir, or returns the defaults when
// there is none.
func loadConfig(dir string) (*config.Config, error) {
	if !config.Exists(dir) {
		return config.New(), nil
	}
	return config.Load(dir)
}

// buildServer wires the demo app into a server configured by cfg.
func buildServer(ctx context.Context, cfg *config.Config, bundle []byte, dev bool, logger *slog.Logger) (*server.Server, error) {
	cd, ok := codec.Lookup(cfg.Gateway.Codec)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", cfg.Gateway.Codec)
	}
	reg := serverfn.NewRegistry(
		serverfn.WithRegistryCodec(cd),
		serverfn.WithDefaultTimeout(cfg.Gateway.Timeout.Std()),
		serverfn.WithRegistryLogger(logger),
	)
	app := demo.New(reg)

	sc := &server.Config{
		Addr:            cfg.Server.Addr,
		RenderTimeout:   cfg.Server.RenderTimeout.Std(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Std(),
		Stream:          cfg.Server.Stream,
		GatewayPrefix:   cfg.Gateway.Prefix,
		Gateway: serverfn.RouteOptions{
			RateLimit:        rate.Limit(cfg.Gateway.RateLimit),
			Burst:            cfg.Gateway.Burst,
			DisableWebSocket: !cfg.Gateway.WebSocket,
		},
		PayloadTTL:  cfg.Hydration.TTL.Std(),
		MetricsPath: cfg.Metrics.Path,
		DevMode:     dev,
	}
	opts := []server.Option{server.WithRegistry(reg), server.WithLogger(logger)}

	if cfg.Hydration.Mode == config.ModeStore {
		store, err := openStore(ctx, cfg.Hydration)
		if err != nil {
			return nil, err
		}
		sc.PayloadMode = server.PayloadStore
		opts = append(opts, server.WithStore(store))
	}
	if cfg.Metrics.Enabled {
		promReg := prometheus.NewRegistry()
		promReg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := middleware.NewMetrics(
			middleware.WithNamespace(cfg.Metrics.Namespace),
			middleware.WithRegistry(promReg),
		)
		opts = append(opts, server.WithMetrics(metrics, promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))
	}
	if cfg.Tracing.Enabled {
		opts = append(opts, server.WithTracing())
	}
	if len(bundle) > 0 {
		opts = append(opts, server.WithClientBundle(bundle))
	}

	s, err := server.New(sc, opts...)
	if err != nil {
		return nil, err
	}
	s.Page("/", app.Root, app.Page())
	return s, nil
}

// openStore opens the payload store backend named by cfg.
func openStore(ctx context.Context, cfg config.HydrationConfig) (hydrate.Store, error) {
	if cfg.Store != config.StoreRedis {
		return hydrate.NewMemoryStore(), nil
	}
	client, err := hydrate.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	return hydrate.NewRedisStore(client), nil
}
