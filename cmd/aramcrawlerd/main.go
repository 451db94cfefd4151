// Package main wires together the ARAM match crawler binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gcpubsub "cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/aram-match-crawler/internal/api"
	gcsarchive "github.com/JakeFAU/aram-match-crawler/internal/archive/gcs"
	"github.com/JakeFAU/aram-match-crawler/internal/clock/system"
	"github.com/JakeFAU/aram-match-crawler/internal/config"
	"github.com/JakeFAU/aram-match-crawler/internal/crawl"
	"github.com/JakeFAU/aram-match-crawler/internal/logging"
	"github.com/JakeFAU/aram-match-crawler/internal/metrics"
	pubsubpublisher "github.com/JakeFAU/aram-match-crawler/internal/publisher/pubsub"
	"github.com/JakeFAU/aram-match-crawler/internal/riot"
	"github.com/JakeFAU/aram-match-crawler/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := store.Migrate(ctx, cfg.DB.DSN); err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}
	st, err := store.New(ctx, store.Config{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		logger.Fatal("store init failed", zap.Error(err))
	}
	defer st.Close()

	riotClient, err := riot.NewClient(cfg.Riot.APIKey,
		riot.WithRegionBase(cfg.Riot.RegionBase),
		riot.WithRateLimit(cfg.Riot.RequestsPerSecond, cfg.Riot.Burst),
	)
	if err != nil {
		logger.Fatal("riot client init failed", zap.Error(err))
	}

	// Both ports stay nil when disabled; the crawler treats them as optional.
	var publisher crawl.Publisher
	if cfg.PubSub.Enabled {
		psClient, err := gcpubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			logger.Fatal("pubsub client init failed", zap.Error(err))
		}
		defer psClient.Close()
		psPublisher, err := pubsubpublisher.New(psClient, cfg.PubSub.TopicName)
		if err != nil {
			logger.Fatal("pubsub publisher init failed", zap.Error(err))
		}
		defer psPublisher.Stop()
		publisher = psPublisher
	}

	var archive crawl.Archive
	if cfg.Archive.Enabled {
		gcsClient, err := storage.NewClient(ctx)
		if err != nil {
			logger.Fatal("gcs client init failed", zap.Error(err))
		}
		defer gcsClient.Close()
		blobStore, err := gcsarchive.New(gcsClient, gcsarchive.Config{
			Bucket: cfg.Archive.Bucket,
			Prefix: cfg.Archive.Prefix,
		})
		if err != nil {
			logger.Fatal("gcs archive init failed", zap.Error(err))
		}
		archive = blobStore
	}

	crawler := crawl.New(st, riotClient, publisher, archive, system.New(), crawl.Config{
		Window:       cfg.Crawler.Window,
		PollInterval: cfg.Crawler.PollInterval,
		MatchCount:   cfg.Crawler.MatchCount,
	}, logger.Named("crawl"))

	gameName, tagLine := cfg.SeedName()
	if err := crawler.Seed(ctx, gameName, tagLine); err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}

	apiServer := api.NewServer(st, logger.Named("api"))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("crawler started", zap.String("seed", cfg.Riot.SeedRiotID))
		return crawler.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("crawler exited", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
