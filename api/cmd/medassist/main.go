package main

import (
	"context"
	"os"
	"os/signal"

	"medassist/api/internal/assist"
	"medassist/api/internal/assist/gemini"
	"medassist/api/internal/cli"
	"medassist/api/internal/config"
	"medassist/api/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	factory := func() (cli.Assistant, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		log := logging.New(cfg.LogLevel)
		return assist.New(gemini.New(cfg.Keys()), cfg.Models(), log), nil
	}

	root := cli.NewRootCmd(factory, config.DefaultRequestTimeout)
	err := root.ExecuteContext(ctx)
	if err != nil {
		cli.PrintError(root, err)
	}
	stop()
	os.Exit(cli.ExitCode(err))
}
