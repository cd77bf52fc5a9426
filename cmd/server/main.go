package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/profile-service/internal/config"
	"github.com/SARVESHVARADKAR123/profile-service/internal/database"
	"github.com/SARVESHVARADKAR123/profile-service/internal/events"
	"github.com/SARVESHVARADKAR123/profile-service/internal/handler"
	"github.com/SARVESHVARADKAR123/profile-service/internal/kafka"
	"github.com/SARVESHVARADKAR123/profile-service/internal/observability"
	"github.com/SARVESHVARADKAR123/profile-service/internal/pubsub"
	"github.com/SARVESHVARADKAR123/profile-service/internal/repository"
	"github.com/SARVESHVARADKAR123/profile-service/internal/service"
	grpctransport "github.com/SARVESHVARADKAR123/profile-service/internal/transport/grpc"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	logger, err := observability.NewLogger(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		log.Printf("failed to initialize logger: %v", err)
		return 1
	}
	defer logger.Sync()

	if cfg.TracingEnabled {
		tp, err := observability.InitTracer(cfg.ServiceName, cfg.JaegerURL)
		if err != nil {
			logger.Error("failed to initialize tracer", zap.Error(err))
			return 1
		}
		defer tp.Shutdown(context.Background())
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	// MongoDB
	mgr := database.NewManager(database.Options{
		URI:          cfg.MongoURI(),
		DatabaseName: cfg.MongoDatabase,
		AppName:      cfg.ServiceName,
		RetryDelay:   cfg.DBRetryDelay,
	}, logger)
	mgr.OnConnect(repository.EnsureIndexes)

	logger.Info("connecting to MongoDB", zap.String("uri", cfg.RedactedMongoURI()))
	mgr.Start(context.Background())

	// Events
	sinks, closers := initSinks(ctx, cfg, logger)
	dispatcher := events.NewDispatcher(logger, cfg.EventBuffer, sinks...)

	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	var dispatchWG sync.WaitGroup
	dispatchWG.Add(1)
	go func() {
		defer dispatchWG.Done()
		dispatcher.Start(dispatchCtx)
	}()

	// Service
	repo := repository.NewProfileRepo(mgr)
	svc := service.NewProfileService(repo, dispatcher, cfg.Demo, logger)

	// gRPC health
	var grpcSrv *grpctransport.Server
	if cfg.GRPCAddr != "" {
		grpcSrv = grpctransport.NewServer(cfg.ServiceName, logger)
		mgr.OnStateChange(func(s database.State) {
			grpcSrv.SetServing(s == database.StateConnected)
		})
		grpcSrv.SetServing(mgr.Ready())

		go func() {
			if err := grpcSrv.Start(cfg.GRPCAddr); err != nil {
				logger.Error("gRPC server error", zap.Error(err))
			}
		}()
	}

	// Public HTTP server
	router := handler.NewRouter(handler.RouterConfig{
		ServiceName:       cfg.ServiceName,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	}, svc, mgr, logger)

	httpSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
			serveErr <- err
			cancel()
		}
	}()

	// Observability server (metrics + health)
	obsSrv := initObsServer(cfg, mgr)
	go func() {
		logger.Info("starting observability server", zap.String("addr", cfg.ObsHTTPAddr))
		if err := obsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("observability server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownErr := performGracefulShutdown(shutdownDeps{
		httpSrv:  httpSrv,
		obsSrv:   obsSrv,
		grpcSrv:  grpcSrv,
		dispatch: func() { stopDispatch(); dispatchWG.Wait() },
		closers:  closers,
		db:       mgr,
	}, logger)

	var listenErr error
	select {
	case listenErr = <-serveErr:
	default:
	}
	return exitStatus(listenErr, shutdownErr, logger)
}

// exitStatus is 0 only when the public server stopped on request and the
// database closed cleanly.
func exitStatus(listenErr, shutdownErr error, log *zap.Logger) int {
	status := 0
	if listenErr != nil {
		log.Error("HTTP server stopped unexpectedly", zap.Error(listenErr))
		status = 1
	}
	if shutdownErr != nil {
		log.Error("shutdown failed", zap.Error(shutdownErr))
		status = 1
	}
	return status
}

func initSinks(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]events.Sink, []io.Closer) {
	var (
		sinks   []events.Sink
		closers []io.Closer
	)

	if len(cfg.KafkaBrokers) > 0 {
		p := kafka.NewProducer(cfg.KafkaBrokers)
		sinks = append(sinks, p)
		closers = append(closers, p)
		logger.Info("kafka event sink enabled", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	if cfg.RedisAddr != "" {
		n := pubsub.New(cfg.RedisAddr)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := n.Ping(pingCtx); err != nil {
			logger.Warn("redis not reachable, notifications will be retried per event", zap.Error(err))
		}
		cancel()
		sinks = append(sinks, n)
		closers = append(closers, n)
		logger.Info("redis event sink enabled", zap.String("addr", cfg.RedisAddr))
	}

	return sinks, closers
}

func initObsServer(cfg *config.Config, rd observability.Readiness) *http.Server {
	obsMux := chi.NewRouter()
	obsMux.Use(observability.MetricsMiddleware(cfg.ServiceName))
	obsMux.Handle("/metrics", promhttp.Handler())
	obsMux.Get("/health/live", observability.HealthLiveHandler)
	obsMux.Get("/health/ready", observability.HealthReadyHandler(rd))

	return &http.Server{Addr: cfg.ObsHTTPAddr, Handler: obsMux}
}

func setupSignalHandler(log *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			log.Info("received signal, initiating shutdown", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

type dbCloser interface {
	Close(ctx context.Context) error
}

type shutdownDeps struct {
	httpSrv  *http.Server
	obsSrv   *http.Server
	grpcSrv  *grpctransport.Server
	dispatch func()
	closers  []io.Closer
	db       dbCloser
}

// performGracefulShutdown stops every component. Only a failure to close the
// database is reported, since it decides the exit status.
func performGracefulShutdown(d shutdownDeps, log *zap.Logger) error {
	log.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.httpSrv.Shutdown(ctx); err != nil {
		log.Error("error during HTTP server shutdown", zap.Error(err))
	}
	if err := d.obsSrv.Shutdown(ctx); err != nil {
		log.Error("error during observability server shutdown", zap.Error(err))
	}
	if d.grpcSrv != nil {
		d.grpcSrv.Stop()
	}

	d.dispatch()
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			log.Error("error closing event sink", zap.Error(err))
		}
	}

	if err := d.db.Close(ctx); err != nil {
		return fmt.Errorf("error closing MongoDB connection: %w", err)
	}

	log.Info("MongoDB connection closed through app termination")
	return nil
}
