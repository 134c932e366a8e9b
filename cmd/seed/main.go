package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"rankhwa/internal/anilist"
	"rankhwa/internal/config"
	"rankhwa/internal/db"
	"rankhwa/internal/logging"
	"rankhwa/internal/repository"
	"rankhwa/internal/service"
)

func main() {
	cfg, err := config.LoadSeed(".env")
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	var (
		file      = flag.String("file", "", "seed from a JSON dump of AniList media instead of the API")
		endpoint  = flag.String("endpoint", cfg.AnilistEndpoint, "AniList GraphQL endpoint")
		threshold = flag.Int("threshold", cfg.PopulationThreshold, "minimum AniList popularity")
		perPage   = flag.Int("per-page", anilist.DefaultPerPage, "media per page")
		maxPages  = flag.Int("max-pages", 0, "stop after this many pages (0 = all)")
	)
	flag.Parse()

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var src service.MediaSource
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("read %s: %v", *file, err)
		}
		media, err := anilist.ParseDump(data)
		if err != nil {
			log.Fatalf("parse %s: %v", *file, err)
		}
		src = service.StaticSource(media)
	} else {
		src = anilist.NewClient(anilist.Options{Endpoint: *endpoint, Logger: log})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seeder := service.NewSeedService(repository.NewStore(gormDB), log)
	stats, err := seeder.Seed(ctx, src, service.SeedOptions{
		Threshold: *threshold,
		PerPage:   *perPage,
		MaxPages:  *maxPages,
	})
	fields := logrus.Fields{
		"pages":   stats.Pages,
		"created": stats.Created,
		"updated": stats.Updated,
		"skipped": stats.Skipped,
	}
	if err != nil {
		log.WithFields(fields).Fatalf("seed failed: %v", err)
	}
	log.WithFields(fields).Info("seed finished")
}
