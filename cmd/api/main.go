package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/grainlab/corpus-assistant/internal/adapters/http"
	"github.com/grainlab/corpus-assistant/internal/bootstrap"
	"github.com/grainlab/corpus-assistant/internal/config"
	"github.com/grainlab/corpus-assistant/internal/observability/logging"
	"github.com/grainlab/corpus-assistant/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	serverMetrics := metrics.NewHTTPServerMetrics("api")
	router := httpadapter.NewRouter(
		app.SearchUC,
		app.AnswerUC,
		app.SearchUC,
		serverMetrics,
		"api",
		httpadapter.WithReloadBus(app.Bus),
	).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	go func() {
		err := app.Bus.SubscribeReload(ctx, func(reloadCtx context.Context) error {
			count, err := app.SearchUC.Reload(reloadCtx)
			if err != nil {
				return err
			}
			logger.Info("corpus_reloaded_from_bus", "documents", count)
			return nil
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("reload_subscription_failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_error", "error", err)
	}
}
