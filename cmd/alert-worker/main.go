package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/kantong/kantong-backend/internal/amqp"
	"github.com/kantong/kantong-backend/internal/config"
	"github.com/kantong/kantong-backend/internal/repository/postgres"
	"github.com/kantong/kantong-backend/internal/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if !cfg.AMQP.Enabled() {
		log.Fatal().Msg("AMQP_URL is required for the alert worker")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required for the alert worker")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	notificationService := service.NewNotificationService(postgres.NewNotificationRepository(pool))

	client, err := amqp.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to AMQP broker")
	}
	defer client.Close()

	log.Info().Str("queue", cfg.AMQP.Queue).Msg("Alert worker started")

	go func() {
		err := client.ConsumeAlerts(ctx, func(ctx context.Context, msg *amqp.AlertMessage) error {
			return notificationService.PublishAlert(ctx, msg.Alert())
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Alert consumption stopped")
		}
		cancel()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down alert worker...")
	case <-ctx.Done():
		log.Info().Msg("Consumer finished")
	}
	cancel()

	log.Info().Msg("Alert worker exited")
}
