package main

import (
	"context"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"scoring-api/internal/api"
	"scoring-api/internal/common/apierrors"
	"scoring-api/internal/common/config"
	"scoring-api/internal/common/logger"
	"scoring-api/internal/common/observability"
	"scoring-api/internal/methods/clientsinterests"
	"scoring-api/internal/methods/onlinescore"
	"scoring-api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootstrap := logger.New("info", "console")
		bootstrap.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting api server",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	backend := store.NewRedisBackend(cfg.Database.Redis)
	defer backend.Close()

	st := store.New(backend, store.RetryPolicy{
		Attempts: cfg.Store.Attempts,
		Delay:    cfg.Store.RetryDelay,
	}, log)

	connectCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := st.Connect(connectCtx); err != nil {
		cancel()
		zapLog.Fatal("store connection failed", zap.Error(apierrors.NewStoreUnavailableError(err)))
	}
	cancel()

	auth := api.NewAuthenticator(cfg.Auth)
	dispatcher := api.NewDispatcher(auth, log)
	dispatcher.Register(onlinescore.MethodName, onlinescore.Schema(), onlinescore.NewHandler(st, log))
	dispatcher.Register(clientsinterests.MethodName, clientsinterests.Schema(), clientsinterests.NewHandler(st, log))

	server := api.NewServer(dispatcher, obs, log)

	apiSrv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Metrics and pprof share the default mux on a separate listener.
	http.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: cfg.Server.MetricsAddress}

	go func() {
		zapLog.Info("metrics listening", zap.String("address", cfg.Server.MetricsAddress))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		zapLog.Info("api listening", zap.String("address", cfg.Server.Address))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("api server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("api shutdown failed", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("metrics shutdown failed", zap.Error(err))
	}
}
