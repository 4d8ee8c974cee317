package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crucible/internal/api"
	"crucible/internal/api/security"
	"crucible/internal/authz"
	"crucible/internal/config"
	"crucible/internal/database"
	monitor "crucible/internal/health"
	"crucible/internal/logger"
	"crucible/internal/sandbox"
	"crucible/internal/services"
	"crucible/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.NewGormConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		zl.Fatal("failed to run auto-migration", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	events := utils.NewRedisClient(redisClient)

	contestRepo := database.NewContestRepository(db)
	questionRepo := database.NewQuestionRepository(db)
	testCaseRepo := database.NewTestCaseRepository(db)
	submissionRepo := database.NewSubmissionRepository(db)
	standingRepo := database.NewStandingRepository(db)
	adminRepo := database.NewAdminRepository(db)
	userRepo := database.NewUserRepository(db)

	gate := authz.NewGate(adminRepo)
	runner := sandbox.NewClient(cfg.Sandbox, zl)

	hs := health.NewServer()
	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	go monitor.NewMonitor(hs, map[string]monitor.Pinger{
		"database": db,
		"redis":    events,
	}, 15*time.Second, zl).Run(monitorCtx)

	standings := services.NewStandingsService(standingRepo, events, cfg.Standings.Retries, zl)
	router := api.NewRouter(api.Services{
		Submissions: services.NewSubmissionService(
			questionRepo, contestRepo, testCaseRepo, submissionRepo, standingRepo,
			standings, runner, events, zl,
		),
		Contests:  services.NewContestService(contestRepo, questionRepo, standingRepo, adminRepo, gate, zl),
		Questions: services.NewQuestionService(questionRepo, contestRepo, testCaseRepo, gate),
		TestCases: services.NewTestCaseService(testCaseRepo, questionRepo, contestRepo, gate),
		Admins:    services.NewAdminService(contestRepo, userRepo, adminRepo, gate, zl),
	}, security.NewTokenAuth(cfg.Auth.JWTSecret), hs, zl)

	grpcSrv := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, hs)

	listener, err := net.Listen("tcp", ":"+cfg.Server.GRPCPort)
	if err != nil {
		zl.Fatal("failed to listen", zap.String("port", cfg.Server.GRPCPort), zap.Error(err))
	}

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Server.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: api.RequestTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		zl.Info("gRPC health server starting", zap.String("port", cfg.Server.GRPCPort))
		if err := grpcSrv.Serve(listener); err != nil {
			zl.Error("gRPC server stopped", zap.Error(err))
		}
	}()

	go func() {
		zl.Info("HTTP server starting",
			zap.String("port", cfg.Server.HTTPPort),
			zap.String("database", cfg.Database.Host+":"+cfg.Database.Port+"/"+cfg.Database.DBName),
			zap.String("redis", cfg.Redis.Addr),
			zap.String("sandbox", cfg.Sandbox.BaseURL),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("could not listen", zap.String("port", cfg.Server.HTTPPort), zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zl.Info("shutting down")
	stopMonitor()
	hs.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zl.Error("HTTP server shutdown failed", zap.Error(err))
	}
	grpcSrv.GracefulStop()

	zl.Info("server stopped gracefully")
}
