package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "coke_oven/docs"
	"coke_oven/internal/config"
	"coke_oven/internal/handlers"
	"coke_oven/internal/ingest"
	"coke_oven/internal/logger"
	"coke_oven/internal/server"
	"coke_oven/internal/service"
	"coke_oven/internal/system"
)

const shutdownTimeout = 10 * time.Second

// @title           Coke Oven Cycle API
// @version         1.0
// @description     Temperature and LOAD/PUSH ingestion with derived coking cycles.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// load configs/config.yml
	cfg, err := config.Load(os.Getenv("COKE_CONFIG"))
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level)

	ovens, err := cfg.OvenSet()
	if err != nil {
		log.Fatalw("invalid oven configuration", "err", err)
	}

	// open DB behind the locked system
	sys, err := system.Open(cfg.DB.Path, ovens, log, service.Options{
		StrictAlternation: cfg.Matching.StrictAlternation,
		Auth: service.AuthOptions{
			SigningKey: cfg.Auth.SigningKey,
			TokenTTL:   cfg.Auth.TokenTTL,
		},
	})
	if err != nil {
		log.Fatalw("failed to init sqlite", "path", cfg.DB.Path, "err", err)
	}
	defer func() {
		if cerr := sys.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()
	log.Infow("system_ready", "db", cfg.DB.Path, "ovens", ovens.IDs(), "strict_alternation", cfg.Matching.StrictAlternation)

	// wire dependencies
	services := &service.Service{
		Ingestion:     sys,
		CycleLog:      sys,
		History:       sys,
		Monitoring:    sys,
		Authorization: sys.Authorization(),
	}
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Sim.Enabled {
		sim := service.NewSimulatorService(sys, ovens, log, time.Time{}, cfg.Sim.Step)
		go sim.Run(ctx, cfg.Sim.Tick)
		log.Infow("simulator_started", "tick", cfg.Sim.Tick, "step", cfg.Sim.Step)
	}

	if cfg.Kafka.Enabled {
		startConsumer(ctx, cfg.Kafka, sys, log)
	}

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

// startConsumer runs the telemetry consumer until ctx is cancelled.
func startConsumer(ctx context.Context, kc config.KafkaConfig, sink service.Ingestion, log *logger.Logger) {
	reader, err := ingest.NewReader(ingest.Config{
		Brokers: kc.Brokers,
		Topic:   kc.Topic,
		GroupID: kc.GroupID,
	})
	if err != nil {
		log.Fatalw("invalid kafka configuration", "err", err)
	}
	consumer := ingest.NewConsumer(reader, sink, log)
	go func() {
		if err := consumer.Run(ctx); err != nil {
			log.Errorw("kafka_consumer_stopped", "err", err)
		}
	}()
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		log.Infow("http_listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
