package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/teresa-solution/firm-management-service/internal/config"
	"github.com/teresa-solution/firm-management-service/internal/crypto"
	"github.com/teresa-solution/firm-management-service/internal/logger"
	"github.com/teresa-solution/firm-management-service/internal/monitoring"
	"github.com/teresa-solution/firm-management-service/internal/server"
	"github.com/teresa-solution/firm-management-service/internal/service"
	"github.com/teresa-solution/firm-management-service/internal/store"
	"github.com/teresa-solution/firm-management-service/internal/tenant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	if err := logger.Setup(logger.DefaultConfig()); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logger")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	key, err := cfg.ColumnKey()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid encryption key")
	}
	cipher, err := crypto.NewCipher(key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create column cipher")
	}

	pool, err := store.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	st := store.New(pool, cipher, cfg.StoreCallTimeout)
	defer st.Close()

	var rdb tenant.RedisClient
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unreachable, profile cache will retry per request")
		}
		rdb = client
		defer client.Close()
	}
	resolver := tenant.NewResolver(st, rdb, cfg.ProfileCacheTTL)

	monitoring.InitMetrics()

	api := server.New(server.Services{
		Profiles:  service.NewProfileService(st, resolver),
		Staff:     service.NewStaffService(st),
		Catalog:   service.NewCatalogService(st),
		Customers: service.NewCustomerService(st),
		Leads:     service.NewLeadService(st),
		Tasks:     service.NewTaskService(st),
		VAT:       service.NewVATService(st),
		Invoices:  service.NewInvoiceService(st),
		Dashboard: service.NewDashboardService(st),
	}, tenant.NewVerifier(cfg.AccessKey), resolver)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Msgf("HTTP API listening on port %d", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP API server error")
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	opsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.OpsPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Msgf("HTTP server for health checks and metrics started on port %d", cfg.OpsPort)
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Ops server error")
		}
	}()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to listen")
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	go func() {
		log.Info().Msgf("gRPC health server listening at %v", lis.Addr())
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to start gRPC server")
		}
	}()

	sweeper := service.NewOverdueSweeper(st, cfg.SweepInterval)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sweeper.Run(ctx)
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP API shutdown failed")
	}
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Ops server shutdown failed")
	}
	grpcServer.GracefulStop()
	<-sweepDone
	log.Info().Msg("Server exiting")
}
