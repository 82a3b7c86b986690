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

	httptransport "github.com/miniinbox/inbox/internal/api/http"
	"github.com/miniinbox/inbox/internal/api/http/handlers"
	"github.com/miniinbox/inbox/internal/apiclient"
	"github.com/miniinbox/inbox/internal/config"
	"github.com/miniinbox/inbox/internal/events"
	"github.com/miniinbox/inbox/internal/locale"
	"github.com/miniinbox/inbox/internal/observability"
	"github.com/miniinbox/inbox/internal/persistence"
	"github.com/miniinbox/inbox/internal/service"
	"github.com/miniinbox/inbox/internal/worker"
)

const (
	clockInterval  = time.Second
	janitorEvery   = time.Minute
	saveLockTTL    = 30 * time.Second
	shutdownBudget = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	client, err := apiclient.New(cfg.TicketAPI.BaseURL, cfg.TicketAPI.Timeout(), apiclient.WithLogger(logger))
	if err != nil {
		logger.Fatal("failed to init ticket api client", zap.Error(err))
	}

	drafts, janitorDone, closeDrafts := openDraftStore(ctx, cfg, logger)
	defer closeDrafts()

	translations, err := locale.New(cfg.UI.Locale)
	if err != nil {
		logger.Fatal("failed to load translations", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	service.NewAuditService(dispatcher, logger).RegisterHandlers()

	ticketService := service.NewTicketService(service.TicketDependencies{
		Client:     client,
		Drafts:     drafts,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	dashboardService := service.NewDashboardService(client)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		Views:                 httptransport.NewViews(cfg.App.Env == "development"),
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	layout := handlers.NewLayout(translations, time.Now)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"ticket_api": client,
			"drafts":     drafts,
		}, metrics),
		Dashboard:  handlers.NewDashboardHandler(dashboardService, layout, logger),
		Tickets:    handlers.NewTicketsHandler(ticketService, layout, logger),
		Clock:      handlers.NewClockHandler(ctx, clockInterval, time.Now, logger),
		SessionTTL: cfg.Drafts.TTL(),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("ticket_api", cfg.TicketAPI.BaseURL))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	// Clock streams and the janitor watch ctx; stop them before draining.
	cancel()
	if err := app.ShutdownWithTimeout(shutdownBudget); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	<-janitorDone
}

// openDraftStore builds the configured draft backend. The returned channel
// closes when the memory janitor stops; it is already closed for Redis, which
// expires keys itself.
func openDraftStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (persistence.DraftStore, <-chan struct{}, func()) {
	if cfg.Drafts.Store == config.DraftStoreRedis {
		redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		store := persistence.NewRedisDraftStore(redis.Client, cfg.Drafts.TTL(), saveLockTTL)
		return store, worker.StartDraftJanitor(ctx, nil, 0, logger), redis.Close
	}

	store := persistence.NewMemoryDraftStore(cfg.Drafts.TTL())
	return store, worker.StartDraftJanitor(ctx, store, janitorEvery, logger), func() {}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
