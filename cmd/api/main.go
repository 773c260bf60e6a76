package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-desk/internal/api/http"
	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/bootstrap"
	"github.com/spec-kit/support-desk/internal/clock"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/drafting"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage, err := bootstrap.OpenStorage(ctx, cfg, logger, cfg.Storage.RunMigrations)
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer storage.Close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	clk := clock.Real()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartActivityWorker(service.NewActivityLog(dispatcher, logger))

	advisor := bootstrap.NewAdvisor(ctx, cfg.Advisory, redis, logger, metrics)
	var drafter drafting.Drafter
	if proTalk := drafting.NewProTalkClient(cfg.Drafting, logger, metrics); proTalk.Enabled() {
		drafter = proTalk
	} else {
		logger.Info("PROTALK_BOT_TOKEN not provided; draft replies disabled")
	}

	directory := service.NewDirectoryService(storage.Store, clk)
	tickets := service.NewTicketService(service.TicketDependencies{
		Store:           storage.Store,
		Advisor:         advisor,
		AnalyzeOnCreate: cfg.Advisory.OnCreate,
		Dispatcher:      dispatcher,
		Clock:           clk,
		Logger:          logger,
	})
	messages := service.NewMessageService(service.MessageDependencies{
		Store:      storage.Store,
		Toucher:    tickets,
		Dispatcher: dispatcher,
		Clock:      clk,
		Logger:     logger,
	})
	queries := service.NewTicketQueryService(storage.Store)
	assist := service.NewAssistService(service.AssistDependencies{
		Store:      storage.Store,
		Advisor:    advisor,
		Drafter:    drafter,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, storage.Store, redis, metrics),
		Users:    handlers.NewUsersHandler(directory),
		Tickets:  handlers.NewTicketsHandler(tickets, queries),
		Messages: handlers.NewMessagesHandler(messages),
		Assist:   handlers.NewAssistHandler(assist),
		Identity: auth.NewIdentityMiddleware(directory),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
