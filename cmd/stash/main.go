package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/S0me0neR0man/skipstash/internal/config"
	"github.com/S0me0neR0man/skipstash/internal/server"
	"github.com/S0me0neR0man/skipstash/internal/stashdb"
)

func main() {
	conf := config.NewConfig()

	newLogger := zap.NewProduction
	if conf.Development {
		newLogger = zap.NewDevelopment
	}
	logger, err := newLogger()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	stash, err := stashdb.NewStash(conf, logger)
	if err != nil {
		sugar.Fatalw("stashdb.NewStash", "error", err)
	}
	s, err := server.NewStashServer(stash, conf, logger)
	if err != nil {
		sugar.Fatalw("server.NewStashServer", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	if err := s.Start(ctx); err != nil {
		sugar.Errorw("server.Start", "error", err)
		stop()
	}

	s.Wait()
	sugar.Infow("stash stopped", "rows", stash.Len())
}
