package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"medassist/api/internal/assist"
	"medassist/api/internal/assist/gemini"
	"medassist/api/internal/config"
	"medassist/api/internal/handle"
	"medassist/api/internal/logging"
	"medassist/api/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := assist.New(gemini.New(cfg.Keys()), cfg.Models(), log)
	h := handle.New(pipeline, log, cfg.RequestTimeout)
	opts := handle.RouterOptions{Origins: cfg.Origins(), MaxBodyBytes: cfg.MaxBodyBytes}

	if cfg.DatabaseURL != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := store.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
		log.Info("db connected", "dsn", store.Summary(cfg.DatabaseURL))
		repos := store.NewRepos(db)
		h.WithStore(repos, repos, repos)
		opts.DB = db
	} else {
		log.Info("DATABASE_URL not set, running without persistence")
	}

	if log.Enabled(ctx, slog.LevelDebug) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handle.NewRouter(h, opts),
		ReadHeaderTimeout: 10 * time.Second,
		// a voice chat reply may take two AI calls
		WriteTimeout: cfg.RequestTimeout + 30*time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("medassist listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
