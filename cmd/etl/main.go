package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mohammed-shakir/storefront-map/internal/core/config"
	"github.com/mohammed-shakir/storefront-map/internal/core/httpclient"
	"github.com/mohammed-shakir/storefront-map/internal/etl"
	"github.com/mohammed-shakir/storefront-map/internal/logger"
	"github.com/mohammed-shakir/storefront-map/internal/store/redisstore"
)

func main() {
	os.Exit(run())
}

func run() int {
	envFile := flag.String("env", ".env", "dotenv file loaded before reading the environment")
	sinksFlag := flag.String("sinks", "", "comma separated sinks (file, redis); overrides ETL_SINKS")
	outDir := flag.String("out", "", "output directory for the file sink; overrides ETL_OUT_DIR")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := config.FromEnv()
	if *sinksFlag != "" {
		cfg.ETL.Sinks = *sinksFlag
	}
	if *outDir != "" {
		cfg.ETL.OutDir = *outDir
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		Service:   "storefront-map",
		Component: "etl",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher, err := etl.NewSocrataClient(etl.SocrataQuery{
		Domain:   cfg.ETL.Domain,
		Dataset:  cfg.ETL.Dataset,
		AppToken: cfg.ETL.AppToken,
		Where:    cfg.ETL.Where,
		Limit:    cfg.ETL.Limit,
	}, httpclient.NewOutbound())
	if err != nil {
		appLog.Error("socrata client setup failed", "err", err)
		return 1
	}

	var sinks []etl.Sink
	for _, name := range cfg.ETL.SinkList() {
		switch name {
		case "file":
			sinks = append(sinks, etl.FileSink{Dir: cfg.ETL.OutDir})
		case "redis":
			store, err := redisstore.FromConfig(ctx, cfg.Redis)
			if err != nil {
				appLog.Error("redis connect failed", "addr", cfg.Redis.Addr, "err", err)
				return 1
			}
			defer func() { _ = store.Close() }()
			sinks = append(sinks, etl.RedisSink{Store: store})
		default:
			appLog.Error("unknown sink", "sink", name)
			return 1
		}
	}

	appLog.Info("etl starting",
		"domain", cfg.ETL.Domain,
		"dataset", cfg.ETL.Dataset,
		"sinks", cfg.ETL.SinkList())
	if _, err := etl.Run(ctx, fetcher, sinks, appLog); err != nil {
		appLog.Error("etl failed", "err", err)
		return 1
	}
	return 0
}
