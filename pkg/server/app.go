package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"RugPull/internal/usecase"
	pkgch "RugPull/pkg/clickhouse"
	"RugPull/pkg/config"
	xhttp "RugPull/pkg/http"
	pkgkafka "RugPull/pkg/kafka"
	applogger "RugPull/pkg/logger"
	pkgqueue "RugPull/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	collector  *usecase.EventCollector
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	chClient   *pkgch.Client
	archive    *pkgqueue.RedisQueue
	producer   *pkgkafka.Producer
	handler    xhttp.Handler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.EventCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	archive *pkgqueue.RedisQueue,
	producer *pkgkafka.Producer,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
		archive:   archive,
		producer:  producer,
		handler:   handler,
	}
}

// logPublisher adapts the Kafka producer to the log collector's
// publisher interface.
type logPublisher struct {
	producer *pkgkafka.Producer
}

func (p logPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Ship aggregated error logs to Kafka when a logs topic is configured.
	if a.cfg.Kafka.LogsTopic != "" && a.producer != nil {
		a.log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          a.cfg.Kafka.LogsTopic,
			Publisher:      logPublisher{producer: a.producer},
		})
		a.log.Info("log collector started", applogger.String("topic", a.cfg.Kafka.LogsTopic))
	}

	// Start archival workers before any round can finish.
	if a.archive != nil {
		if err := a.archive.Start(); err != nil {
			a.log.Error("archive queue start error", applogger.Error(err))
			return err
		}
		a.archive.StartRetryProcessor()
		a.log.Info("archive queue started")
	}

	// Start feed collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			a.log.Error("collector error", applogger.Error(err))
		}
	}()
	a.log.Info("collector started", applogger.String("feed", a.cfg.Feed.WebSocketURL))

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	// Flush and stop the log collector first so late errors still ship.
	if a.cfg.Kafka.LogsTopic != "" {
		a.log.RemoveCollector()
	}

	// Stop collector (pipeline + stream)
	if err := a.collector.Shutdown(ctx); err != nil {
		a.log.Warn("collector stop error", applogger.Error(err))
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Drain the archive queue before closing its store.
	if a.archive != nil {
		if err := a.archive.Stop(shutdownCtx); err != nil {
			a.log.Warn("archive queue stop error", applogger.Error(err))
		}
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
