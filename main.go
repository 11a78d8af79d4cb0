package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"mediplanner/cli"
	"mediplanner/config"
	"mediplanner/logging"
	"mediplanner/medicover"
	"mediplanner/notify"
	"mediplanner/watcher"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrMissingCredentials) {
			log.Fatal("Medicover credentials are required. Set MEDICOVER_USER and MEDICOVER_PASSWORD")
		}
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	client := medicover.NewClient(cfg.BaseURL, logger)
	if err := client.Login(ctx, cfg.User, cfg.Password); err != nil {
		if errors.Is(err, medicover.ErrAuthentication) {
			logger.Fatal("login rejected, check your card number and password")
		}
		logger.Fatal("login failed", zap.Error(err))
	}

	form, err := medicover.NewSearchForm(ctx, client, logger)
	if err != nil {
		logger.Fatal("failed to load the search form", zap.Error(err))
	}

	notifiers := notify.Multi{notify.Console{Out: os.Stdout}}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		telegram, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			logger.Warn("telegram notifications disabled", zap.Error(err))
		} else {
			notifiers = append(notifiers, telegram)
		}
	}

	// The watch loop blocks until the user interrupts it; the interrupt
	// returns control to the prompt instead of killing the process.
	watch := func(ctx context.Context, pref medicover.VisitPreference) error {
		watchCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		w := watcher.New(watcher.Config{
			Form:       form,
			Preference: pref,
			Notifier:   notifiers,
			Interval:   cfg.WatchInterval,
			Logger:     logger,
		})
		return w.Run(watchCtx)
	}

	c := cli.New(form, watch, os.Stdin, os.Stdout)
	if err := c.Run(ctx); err != nil {
		logger.Fatal("command loop failed", zap.Error(err))
	}
}
