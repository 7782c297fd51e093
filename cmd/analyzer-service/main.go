package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"macrodesk/internal/analyzer/config"
	delivery "macrodesk/internal/analyzer/delivery/http"
	"macrodesk/internal/analyzer/repository"
	"macrodesk/internal/analyzer/service"
	"macrodesk/pkg/logger"
	"macrodesk/pkg/redis"
	"macrodesk/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the analyzer service",
	Run:   runServe,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Runs a single analysis cycle and prints the snapshot as JSON",
	Run:   runAnalyze,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, appLogger, analyzerSvc, cleanup := buildService(ctx)
	defer cleanup()
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Analyzer Service", logger.StringField("name", cfg.App.Name))

	analyzerSvc.Start(ctx)

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	analyzerHandler := delivery.NewAnalyzerHandler(analyzerSvc, appLogger)
	apiV1 := e.Group("/api/v1")
	analyzerHandler.RegisterRoutes(apiV1)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start API server", logger.ErrorField(err))
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down analyzer service...")
	analyzerSvc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Failed to shut down API server", logger.ErrorField(err))
	}
	appLogger.Info("Analyzer service stopped.")
}

func runAnalyze(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, appLogger, analyzerSvc, cleanup := buildService(ctx)
	defer cleanup()
	defer func() { _ = appLogger.Sync() }()

	snapshot, err := analyzerSvc.RunCycle(ctx)
	if err != nil {
		appLogger.Fatal("Analysis cycle failed", logger.ErrorField(err))
	}

	out, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		appLogger.Fatal("Failed to marshal snapshot", logger.ErrorField(err))
	}
	fmt.Println(string(out))
}

// buildService loads configuration and wires repositories into the analyzer
// service. The returned cleanup closes shared clients.
func buildService(ctx context.Context) (*config.Config, *logger.Logger, service.AnalyzerService, func()) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	redisClient, err := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}

	feedRepo := repository.NewFeedRepository(cfg, appLogger)
	hfRepo := repository.NewHuggingFaceRepository(cfg, appLogger)
	snapshotRepo := repository.NewSnapshotRepository(cfg, redisClient)
	calendarRepo := repository.NewCalendarRepository(cfg, appLogger)

	var summarizerRepo repository.SummarizerRepository
	if cfg.Gemini.APIKey != "" {
		genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini client", logger.ErrorField(err))
		}
		summarizerRepo = repository.NewGeminiSummarizerRepository(cfg, appLogger, genAiClient)
	}

	notifier := telegram.NewNoopClient()
	if cfg.Telegram.Enabled {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	analyzerSvc := service.NewAnalyzerService(cfg, appLogger, feedRepo, hfRepo, hfRepo, summarizerRepo, snapshotRepo, calendarRepo, notifier)

	cleanup := func() {
		_ = redisClient.Close()
	}

	return cfg, appLogger, analyzerSvc, cleanup
}

func main() {
	rootCmd := &cobra.Command{Use: "analyzer-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-analyzer.yaml", "Path to the configuration file")
	analyzeCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-analyzer.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing analyzer-service CLI: %s\n", err)
		os.Exit(1)
	}
}
