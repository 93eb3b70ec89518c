package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/globalwire/newspulse/internal/auth"
	"github.com/globalwire/newspulse/internal/config"
	npshttp "github.com/globalwire/newspulse/internal/http"
	"github.com/globalwire/newspulse/internal/metrics"
	"github.com/globalwire/newspulse/internal/providers"
	"github.com/globalwire/newspulse/internal/providers/gnews"
	"github.com/globalwire/newspulse/internal/providers/guardian"
	"github.com/globalwire/newspulse/internal/service"
	"github.com/globalwire/newspulse/internal/storage/mongo"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting newspulse", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	store, err := mongo.New(dbCtx, cfg.DB.URL)
	dbCancel()
	if err != nil {
		log.Error("mongo_connect_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	log.Info("mongo_connected")

	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if cerr := store.Close(closeCtx); cerr != nil {
			log.Warn("mongo_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	primary := gnews.New(gnews.Options{
		BaseURL:        cfg.Providers.GNews.BaseURL,
		APIKey:         cfg.Providers.GNews.APIKey,
		PageSize:       cfg.Providers.PageSize,
		SearchPageSize: cfg.Providers.SearchPageSize,
		Timeout:        cfg.Providers.Timeout,
		RPS:            cfg.Providers.RPS,
	})
	backup := guardian.New(guardian.Options{
		BaseURL:        cfg.Providers.Guardian.BaseURL,
		APIKey:         cfg.Providers.Guardian.APIKey,
		PageSize:       cfg.Providers.PageSize,
		SearchPageSize: cfg.Providers.SearchPageSize,
		Timeout:        cfg.Providers.Timeout,
		RPS:            cfg.Providers.RPS,
	})

	var svcPrimary, svcBackup providers.Provider = primary, backup
	// providers.active меняет местами первичный и резервный.
	if cfg.Providers.Active == guardian.ProviderName {
		svcPrimary, svcBackup = backup, primary
	}

	registry := prometheus.NewRegistry()
	svc := service.New(svcPrimary, svcBackup, store, metrics.New(registry), cfg.Limits)
	log.Info("service_initialized", slog.String("primary", svcPrimary.Name()))

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret,
		auth.WithIssuer(cfg.Auth.Issuer),
		auth.WithAudience(cfg.Auth.Audience),
	)

	handler := npshttp.NewRouter(svc, verifier, npshttp.Options{
		Logger:   log,
		Timeout:  cfg.Timeouts.Service,
		Registry: registry,
	})

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	log.Info("newspulse_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	log.Info("service_stopped")
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
