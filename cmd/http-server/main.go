package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop-crud/internal/config"
	"shop-crud/internal/database"
	"shop-crud/internal/events"
	grpcHandler "shop-crud/internal/handler/grpc"
	handler "shop-crud/internal/handler/http"
	"shop-crud/internal/logger"
	middleware_grpc "shop-crud/internal/middleware/grpc"
	"shop-crud/internal/repository"
	"shop-crud/internal/service"
	"shop-crud/internal/telemetry"
	"shop-crud/internal/validation"
	"shop-crud/internal/version"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Create cancellable context for graceful shutdown
	globalCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Instance()
	cfg := config.Instance()

	logger.Info(globalCtx, cfg.AppName,
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
	)

	if err := run(globalCtx, cfg); err != nil {
		logger.Error(globalCtx, "Server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info(context.Background(), "Server exited cleanly")
}

func run(globalCtx context.Context, cfg *config.Config) error {
	// Initialize telemetry (OpenTelemetry + Pyroscope)
	shutdownTelemetry, err := telemetry.Init(globalCtx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			logger.Error(ctx, "Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	db, err := database.Connect(globalCtx, cfg.MongoURI, cfg.MongoDBName, cfg.MongoTimeout())
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			logger.Error(ctx, "MongoDB disconnect failed", slog.String("error", err.Error()))
		}
	}()

	publisher := newPublisher(globalCtx, cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error(context.Background(), "Event publisher close failed", slog.String("error", err.Error()))
		}
	}()

	// Wiring
	validator := validation.New()
	productService := service.NewProductService(repository.NewProductRepository(db.Database), validator, publisher)
	userService := service.NewUserService(repository.NewUserRepository(db.Database), validator, publisher)
	healthService := service.NewHealthService(db.Client)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.Handlers{
		Product: handler.NewProductHandler(productService),
		User:    handler.NewUserHandler(userService),
		Health:  handler.NewHealthHandler(healthService),
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	// The gRPC health listener is optional and bound before anything starts serving.
	var (
		grpcServer   *grpc.Server
		grpcListener net.Listener
	)
	if cfg.GrpcPort != "" {
		grpcListener, err = net.Listen("tcp", ":"+cfg.GrpcPort)
		if err != nil {
			return err
		}
		grpcServer = grpc.NewServer(
			grpc.UnaryInterceptor(middleware_grpc.UnaryTracingInterceptor()),
		)
		healthpb.RegisterHealthServer(grpcServer, grpcHandler.NewHealthHandler(healthService))
		reflection.Register(grpcServer)
	}

	g, ctx := errgroup.WithContext(globalCtx)

	g.Go(func() error {
		logger.Info(ctx, "HTTP server running", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info(context.Background(), "Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if grpcServer != nil {
		g.Go(func() error {
			logger.Info(ctx, "gRPC server running", slog.String("port", cfg.GrpcPort))
			return grpcServer.Serve(grpcListener)
		})
		g.Go(func() error {
			<-ctx.Done()
			logger.Info(context.Background(), "Shutting down gRPC server")
			grpcServer.GracefulStop()
			return nil
		})
	}

	return g.Wait()
}

// newPublisher connects to Kafka when brokers are configured. An unreachable broker
// only disables events; the API keeps serving.
func newPublisher(ctx context.Context, cfg *config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Warn(ctx, "Missing KAFKA_BROKERS will skip publishing change events")
		return events.Nop{}
	}
	pub, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.AppName)
	if err != nil {
		logger.Error(ctx, "Kafka unavailable, change events disabled", slog.String("error", err.Error()))
		return events.Nop{}
	}
	logger.Info(ctx, "Publishing change events", slog.String("topic", cfg.KafkaTopic))
	return pub
}
