// interests-seeder populates the interest records used by the
// clients_interests method: two random categories per client id.
package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"scoring-api/internal/common/config"
	"scoring-api/internal/common/logger"
	"scoring-api/internal/scoring"
	"scoring-api/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (default: search configs/)")
		first      = flag.Int64("first", 0, "first client id to seed (inclusive)")
		last       = flag.Int64("last", 10, "last client id to seed (exclusive)")
	)
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	backend := store.NewRedisBackend(cfg.Database.Redis)
	defer backend.Close()

	st := store.New(backend, store.RetryPolicy{
		Attempts: cfg.Store.Attempts,
		Delay:    cfg.Store.RetryDelay,
	}, log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := st.Connect(ctx); err != nil {
		zapLog.Fatal("store connection failed", zap.Error(err))
	}

	if err := scoring.SeedInterests(ctx, st, *first, *last); err != nil {
		zapLog.Fatal("seeding failed", zap.Error(err))
	}

	zapLog.Info("interests seeded",
		zap.Int64("first", *first),
		zap.Int64("last", *last),
	)
}
