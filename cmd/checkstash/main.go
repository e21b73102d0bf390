package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/S0me0neR0man/skipstash/internal/config"
)

func main() {
	conf := config.NewConfig()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	checker, err := NewChecker(conf, logger)
	if err != nil {
		sugar.Fatalw("NewChecker", "error", err)
	}
	checker.Go(ctx)

	if err := checker.Wait(); err != nil {
		sugar.Errorw("checker.Wait", "error", err)
	}
	sugar.Infow("checker done", "scans", checker.scans.Load(), "mismatches", checker.mismatches.Load())
}
