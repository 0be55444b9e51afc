package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/searchcore/searchcore/internal/engine"
	"github.com/searchcore/searchcore/internal/ingest"
	"github.com/searchcore/searchcore/internal/search"
	"github.com/searchcore/searchcore/internal/search/cache"
	"github.com/searchcore/searchcore/pkg/config"
	"github.com/searchcore/searchcore/pkg/health"
	"github.com/searchcore/searchcore/pkg/kafka"
	"github.com/searchcore/searchcore/pkg/logger"
	"github.com/searchcore/searchcore/pkg/metrics"
	"github.com/searchcore/searchcore/pkg/postgres"
	pkgredis "github.com/searchcore/searchcore/pkg/redis"
	"github.com/searchcore/searchcore/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting searchd")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := engine.NewSearchServerFromText(cfg.Engine.StopWords)
	if err != nil {
		slog.Error("failed to create search server", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	svc := search.NewService(server, m)
	checker := health.NewChecker()

	if cfg.Engine.LoadCorpus {
		var pg *postgres.Client
		err := resilience.Retry(ctx, "postgres-connect", resilience.RetryConfig{MaxAttempts: 5}, func() error {
			var connErr error
			pg, connErr = postgres.New(cfg.Postgres)
			return connErr
		})
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		checker.Register("postgres", health.CheckErr(pg.Ping))

		loaded, err := ingest.LoadCorpus(ctx, pg.DB, svc)
		if err != nil {
			slog.Error("corpus load failed", "error", err, "loaded", loaded)
			os.Exit(1)
		}
		slog.Info("corpus ready", "documents", loaded)
	}

	var queryCache *cache.QueryCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, serving without query cache", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis, m)
		checker.Register("redis", health.CheckErr(redisClient.Ping))
	}

	var shutdownMetrics func(context.Context) error
	if cfg.Metrics.Enabled {
		shutdownMetrics = metrics.StartServer(cfg.Metrics.Port, checker)
	}

	resultProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchResults)
	defer resultProducer.Close()

	ingestConsumer := kafka.NewConsumer(
		cfg.Kafka,
		cfg.Kafka.Topics.DocumentIngest,
		ingest.HandleMessage(svc, m),
	)
	queryConsumer := kafka.NewConsumer(
		cfg.Kafka,
		cfg.Kafka.Topics.SearchRequests,
		search.HandleQueryMessage(svc, queryCache, resultProducer),
	)

	slog.Info("searchd ready",
		"ingest_topic", cfg.Kafka.Topics.DocumentIngest,
		"request_topic", cfg.Kafka.Topics.SearchRequests,
		"group", cfg.Kafka.ConsumerGroup,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ingestConsumer.Start(gctx) })
	g.Go(func() error { return queryConsumer.Start(gctx) })
	if err := g.Wait(); err != nil {
		slog.Error("consumer error", "error", err)
	}

	if shutdownMetrics != nil {
		if err := shutdownMetrics(context.Background()); err != nil {
			slog.Error("metrics server shutdown failed", "error", err)
		}
	}
	slog.Info("searchd stopped")
}
