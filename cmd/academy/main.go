package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tidwall/gjson"

	"academy/internal/app/dispatch"
	"academy/internal/app/ports"
	"academy/internal/app/screens"
	"academy/internal/domain/wire"
	"academy/internal/infra/broker/kafka"
	"academy/internal/infra/config"
	"academy/internal/infra/db/mongo"
	"academy/internal/infra/directory"
	"academy/internal/infra/obs"
	"academy/internal/infra/session"
	"academy/internal/infra/storage/memory"
	"academy/internal/infra/storage/pebble"
	"academy/internal/infra/storage/s3"
	"academy/internal/infra/transport/rest"
	"academy/internal/infra/transport/ws"
	"academy/internal/ui/tui"
)

type options struct {
	email    string
	password string
	logPath  string
}

func main() {
	var opts options
	flag.StringVar(&opts.email, "email", "", "sign in with this email")
	flag.StringVar(&opts.password, "password", "", "password for -email")
	flag.StringVar(&opts.logPath, "log", "academy.log", "log file path")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "academy:", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logFile, err := os.OpenFile(opts.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel, logFile)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore.Close(); err != nil {
			logger.Warn("close local store", "error", err)
		}
	}()

	sess, err := session.New(store)
	if err != nil {
		return err
	}
	client, err := rest.NewClient(rest.Config{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.APITimeout,
		RateLimit: cfg.APIRateLimit,
		Burst:     cfg.APIBurst,
	}, sess, logger)
	if err != nil {
		return err
	}

	if _, ok := sess.CurrentUserID(); !ok || opts.email != "" {
		user, err := sess.Login(ctx, client, session.Credentials{Email: opts.email, Password: opts.password})
		if err != nil {
			return fmt.Errorf("sign in: %w", err)
		}
		logger.Info("signed in", "user_id", user.String())
	}

	loop := dispatch.NewLoop(logger)
	go func() { _ = loop.Run(ctx) }()

	deps := screens.Deps{
		Transport:   client,
		Session:     sess,
		Directory:   directory.New(client, cfg.ProfileCacheSize, cfg.ProfileCacheTTL, logger),
		Store:       store,
		Uploader:    newUploader(cfg, logger),
		Dispatcher:  loop,
		Logger:      logger,
		Concurrency: cfg.EnrichConcurrency,
	}
	inbox := screens.NewConversations(deps)
	controllers := tui.Controllers{
		Conversations: inbox,
		Injuries:      screens.NewInjuries(deps),
		Stadiums:      screens.NewStadiums(deps),
		Tournaments:   screens.NewTournaments(deps),
		Live:          screens.NewLiveRouter(deps, inbox),
		NewThread:     func(other wire.Identifier) *screens.Thread { return screens.NewThread(deps, other) },
	}
	if team := teamOf(ctx, client, logger); !team.IsZero() {
		controllers.Roster = screens.NewRoster(deps, team)
	}

	feed, err := newFeed(cfg, sess, logger)
	if err != nil {
		return err
	}
	if feed != nil {
		go func() {
			err := feed.Run(ctx, func(raw []byte) { controllers.Live.Deliver(ctx, raw) })
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("live feed stopped", "error", err)
			}
		}()
	}

	model := tui.New(ctx, controllers, loop.Dispatch)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	unbind := model.Bind(program)
	defer unbind()

	if _, err := program.Run(); err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return err
	}
	return nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func openStore(ctx context.Context, cfg config.Config) (ports.LocalStore, io.Closer, error) {
	switch cfg.StoreMode {
	case config.StorePebble:
		store, err := pebble.Open(cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.StoreMongo:
		client, db, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		disconnect := closerFunc(func() error { return client.Disconnect(context.Background()) })
		store, err := mongo.NewBlobStore(ctx, db, "", cfg.MongoBlobTTL)
		if err != nil {
			_ = disconnect()
			return nil, nil, err
		}
		return store, disconnect, nil
	}
	return memory.NewBlobStore(), closerFunc(func() error { return nil }), nil
}

func newUploader(cfg config.Config, logger *slog.Logger) ports.Uploader {
	if cfg.S3Endpoint == "" {
		return s3.Disabled{}
	}
	client, err := s3.NewClient(s3.Config{
		Endpoint:      cfg.S3Endpoint,
		PublicBaseURL: cfg.S3PublicEndpoint,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		UseSSL:        cfg.S3UseSSL,
	}, logger)
	if err != nil {
		logger.Warn("image uploads disabled", "error", err)
		return s3.Disabled{}
	}
	return client
}

func newFeed(cfg config.Config, sess *session.Session, logger *slog.Logger) (ports.Feed, error) {
	switch cfg.FeedMode {
	case config.FeedWS:
		return ws.NewFeed(ws.Config{URL: cfg.FeedURL}, sess, logger)
	case config.FeedKafka:
		return kafka.NewFeed(kafka.FeedConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			Group:   cfg.KafkaGroup,
		}, logger), nil
	}
	return nil, nil
}

// teamOf reads the signed-in user's team from the profile route.
func teamOf(ctx context.Context, client ports.Transport, logger *slog.Logger) wire.Identifier {
	raw, err := client.Send(ctx, ports.MethodGet, "/api/auth/me", nil)
	if err != nil {
		logger.Warn("load profile", "error", err)
		return ""
	}
	return wire.Identifier(gjson.GetBytes(raw, "user.teamId").String())
}
