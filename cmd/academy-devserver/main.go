package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"academy/internal/infra/broker/kafka"
	"academy/internal/infra/config"
	ginserver "academy/internal/infra/http/gin"
	"academy/internal/infra/obs"
	"academy/internal/infra/security"
	"academy/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("dev", "info").Error("load configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)

	opts := ginserver.Options{
		Env:      cfg.Env,
		Secret:   []byte(cfg.DevServerJWTSecret),
		TokenTTL: cfg.DevServerTokenTTL,
		Hasher:   security.BcryptHasher{Cost: bcrypt.DefaultCost},
		Logger:   logger,
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, nil)
		if err != nil {
			logger.Error("kafka producer init failed", "error", err, "brokers", cfg.KafkaBrokers)
			os.Exit(1)
		}
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Warn("kafka producer close failed", "error", err)
			}
		}()
		opts.Publisher = producer
		logger.Info("publishing messages to kafka", "topic", cfg.KafkaTopic)
	}

	backend, err := ginserver.NewBackend(opts)
	if err != nil {
		logger.Error("backend init failed", "error", err)
		os.Exit(1)
	}
	for _, u := range []memory.User{backend.Seeded.Coach, backend.Seeded.Parent, backend.Seeded.Medic} {
		logger.Info("seeded user", "email", u.Email, "password", memory.SeedPassword, "user_id", u.ID.Hex())
	}

	server := backend.Server(cfg.DevServerAddr)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.DevServerAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}
