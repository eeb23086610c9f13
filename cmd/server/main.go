package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mikleaka/intonation-identity/internal/api"
	"github.com/mikleaka/intonation-identity/internal/infrastructure/config"
	mongodb "github.com/mikleaka/intonation-identity/internal/infrastructure/db/mongo"
	redisdb "github.com/mikleaka/intonation-identity/internal/infrastructure/db/redis"
	"github.com/mikleaka/intonation-identity/internal/infrastructure/mail"
	"github.com/mikleaka/intonation-identity/internal/infrastructure/queue"
	"github.com/mikleaka/intonation-identity/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is not up yet; a missing JWT secret lands here.
		log.Fatalf("config: %v", err)
	}

	logg := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		logg.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logg.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	repo := mongodb.NewAccountRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		logg.Fatal().Err(err).Msg("account index bootstrap failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		logg.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	sender, err := mail.NewSMTPSender(mail.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	})
	if err != nil {
		logg.Fatal().Err(err).Msg("smtp sender setup failed")
	}

	dispatcher := queue.NewDispatcher(cfg.DeliveryWorkers, sender, redisdb.NewDeliveryDedup(rdb), logg)
	dispatcher.Start(ctx)

	e := api.NewRouter(cfg, db, rdb, repo, dispatcher, logg)

	go func() {
		logg.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("identity service starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logg.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logg.Error().Err(err).Msg("server shutdown failed")
	}
}
