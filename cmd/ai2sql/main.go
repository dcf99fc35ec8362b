package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ai2sql/internal/adapter/dbinspect"
	"ai2sql/internal/adapter/llm"
	"ai2sql/internal/adapter/notification"
	"ai2sql/internal/api/router"
	"ai2sql/internal/pkg/config"
	"ai2sql/internal/pkg/database"
	"ai2sql/internal/pkg/jwt"
	"ai2sql/internal/pkg/logger"
	"ai2sql/internal/scheduler"
	"ai2sql/internal/service"

	_ "ai2sql/docs" // Swagger docs
)

// @title AI2SQL API
// @version 1.0
// @description Natural language to SQL assistant: projects, chats, notes, SQL examples and database metadata.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

var (
	configFile = flag.String("config", "", "config file path (e.g. -config=configs/config.yaml)")
	version    = flag.Bool("version", false, "print version and exit")
)

const (
	appVersion = "1.0.0"
	appName    = "ai2sql"
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("%s version %s\n", appName, appVersion)
		os.Exit(0)
	}

	var cfg *config.Config
	{
		configPath := getConfigPath()

		c, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("load config failed: %v\n", err)
			fmt.Println("\nUsage:")
			fmt.Println("  1. flag:")
			fmt.Println("     ./ai2sql -config=configs/config.yaml")
			fmt.Println("  2. environment:")
			fmt.Println("     export CONFIG_FILE=configs/config.yaml")
			fmt.Println("     ./ai2sql")
			fmt.Println("  3. default path:")
			fmt.Println("     ./ai2sql  (reads configs/config.yaml)")
			os.Exit(1)
		}
		cfg = c

		if err := logger.Init(&cfg.Log); err != nil {
			fmt.Printf("init logger failed: %v\n", err)
			os.Exit(1)
		}
		logger.Info(fmt.Sprintf("Load config file: %s of %s", configPath, getConfigSource()))

		defer func() {
			_ = logger.Close()
		}()
	}

	logger.Info(fmt.Sprintf("%s starting...", appName), zap.String("version", appVersion))

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("init database failed", zap.Error(err))
	}
	defer func() {
		_ = database.Close()
	}()

	logger.Info(fmt.Sprintf("database connected %s:%v", cfg.Database.Host, cfg.Database.Port),
		zap.String("driver", cfg.Database.Driver),
		zap.String("database", cfg.Database.Database),
	)

	if err := database.Migrate(database.GetDB()); err != nil {
		logger.Fatal("migrate database failed", zap.Error(err))
	}

	provider, err := llm.NewProvider(context.Background(), cfg.LLM)
	if err != nil {
		logger.Fatal("init llm provider failed", zap.Error(err))
	}
	defer func() {
		_ = provider.Close()
	}()
	logger.Info("sql generator ready",
		zap.String("generator", provider.Generator.Name()),
		zap.Bool("embeddings", provider.Embedder != nil),
	)

	jwtManager := jwt.NewManager(cfg.Auth.JWT)
	services := service.NewServices(database.GetDB(), cfg, service.Deps{
		JWT:       jwtManager,
		Generator: provider.Generator,
		Embedder:  provider.Embedder,
		Inspector: dbinspect.New(time.Duration(cfg.Scheduler.ConnectionTimeout) * time.Second),
		Notifier: notification.New(cfg.Notification.Provider, cfg.Notification.LarkWebhook,
			cfg.Notification.Enabled, logger.Log),
	})

	if bootstrap := cfg.Auth.Bootstrap; bootstrap.Email != "" {
		user, err := services.Auth.EnsureSuperuser(bootstrap.Email, bootstrap.Name, bootstrap.Password)
		if err != nil {
			logger.Fatal("bootstrap superuser failed", zap.Error(err))
		}
		logger.Info("superuser ready", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	}

	var taskScheduler *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		taskScheduler = scheduler.NewScheduler(logger.Log, services.Connection)
		if err := taskScheduler.Start(&cfg.Scheduler); err != nil {
			logger.Warn("start scheduler failed", zap.Error(err))
		}
	}

	r := router.Setup(cfg, services, jwtManager)

	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		logger.Info(fmt.Sprintf("%s listening", cfg.Server.Name),
			zap.String("address", addr),
			zap.String("mode", cfg.Server.Mode),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("start server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	if taskScheduler != nil {
		taskScheduler.Stop()
		logger.Info("scheduler stopped")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	logger.Info("server exited")
}

// getConfigPath: flag > CONFIG_FILE > default path
func getConfigPath() string {
	if *configFile != "" {
		return *configFile
	}

	if envConfig := os.Getenv("CONFIG_FILE"); envConfig != "" {
		return envConfig
	}

	return "configs/config.yaml"
}

func getConfigSource() string {
	if *configFile != "" {
		return "flag"
	}
	if os.Getenv("CONFIG_FILE") != "" {
		return "environment"
	}
	return "default"
}
