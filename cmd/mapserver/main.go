package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mohammed-shakir/storefront-map/internal/core/config"
	"github.com/mohammed-shakir/storefront-map/internal/core/health"
	"github.com/mohammed-shakir/storefront-map/internal/core/httpclient"
	"github.com/mohammed-shakir/storefront-map/internal/core/server"
	"github.com/mohammed-shakir/storefront-map/internal/datasource"
	"github.com/mohammed-shakir/storefront-map/internal/events"
	"github.com/mohammed-shakir/storefront-map/internal/logger"
	"github.com/mohammed-shakir/storefront-map/internal/metrics"
	"github.com/mohammed-shakir/storefront-map/internal/session"
	"github.com/mohammed-shakir/storefront-map/internal/store/redisstore"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func run() int {
	viewFile := flag.String("view", os.Getenv("VIEW_CONFIG"), "YAML file with map view settings")
	envFile := flag.String("env", ".env", "dotenv file loaded before reading the environment")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := config.FromEnv()
	if err := cfg.ApplyViewFile(*viewFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		SampleN:   envInt("LOG_SAMPLE_N", 0),
		Service:   "storefront-map",
		Component: "mapserver",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	appLog.Info("starting mapserver",
		"addr", cfg.Addr,
		"version", Version,
		"data_source", cfg.Data.Driver,
		"events", cfg.Events.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, rc, err := openSource(ctx, cfg)
	if err != nil {
		appLog.Error("data source setup failed", "err", err)
		return 1
	}
	var checks []health.Check
	if rc != nil {
		defer func() { _ = rc.Close() }()
		checks = append(checks, health.Named("redis", rc.Ping))
	}
	loader := datasource.NewLoader(src, appLog, datasource.WithLoadTimeout(cfg.Data.Timeout))

	// Warm the shared dataset. A failure here is logged and retried by the
	// first session.
	go func() { _, _ = loader.Get(ctx) }()

	var pub events.Publisher = events.Nop{}
	if cfg.Events.Enabled {
		kp, err := events.NewKafkaPublisher(cfg.Events.BrokerList(), cfg.Events.Topic, cfg.Events.Queue, appLog)
		if err != nil {
			appLog.Error("kafka publisher setup failed", "err", err)
			return 1
		}
		pub = kp
	}
	defer func() { _ = pub.Close() }()

	reg, err := session.NewRegistry(session.Options{
		Max:    cfg.SessionMax,
		Data:   loader,
		View:   cfg.View,
		Logger: appLog,
		Events: pub,
	})
	if err != nil {
		appLog.Error("session registry setup failed", "err", err)
		return 1
	}

	mp := metrics.Init(metrics.Config{
		Service: "storefront-map",
		Build: metrics.BuildInfo{
			Version:   Version,
			Revision:  os.Getenv("BUILD_REVISION"),
			BuildDate: os.Getenv("BUILD_DATE"),
		},
	})

	if err := server.Run(ctx, cfg, appLog, server.Deps{
		Sessions: reg,
		Ready:    loader,
		Checks:   checks,
		Metrics:  mp.Handler(),
	}); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}

// openSource returns the redis client as well when the source uses one.
func openSource(ctx context.Context, cfg config.Config) (datasource.Source, *redisstore.Client, error) {
	switch cfg.Data.Driver {
	case "file":
		return datasource.NewFileSource(cfg.Data.Dir), nil, nil
	case "http":
		s, err := datasource.NewHTTPSource(cfg.Data.URL, httpclient.NewOutbound())
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case "redis":
		c, err := redisstore.FromConfig(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return datasource.NewRedisSource(c), c, nil
	default:
		return nil, nil, fmt.Errorf("unknown DATA_SOURCE %q (want file, http or redis)", cfg.Data.Driver)
	}
}
