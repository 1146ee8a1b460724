package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"medassist/api/internal/assist"
	"medassist/api/internal/assist/gemini"
	"medassist/api/internal/config"
	"medassist/api/internal/logging"
	"medassist/api/internal/store"
	"medassist/api/internal/telegram"
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
	if cfg.TelegramBotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is empty")
	}
	log := logging.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	bot.Debug = false
	log.Info("telegram bot authorized", "username", bot.Self.UserName)

	pipeline := assist.New(gemini.New(cfg.Keys()), cfg.Models(), log)
	r := telegram.New(bot, pipeline, log)
	r.Timeout = cfg.RequestTimeout

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
		r.Store = store.NewRepos(db)
	}

	r.Poll(ctx)
	return nil
}
