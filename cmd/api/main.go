package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"hotelbook/internal/api"
	"hotelbook/internal/config"
	"hotelbook/internal/database"
	"hotelbook/internal/domain"
	"hotelbook/internal/events"
	"hotelbook/internal/google"
	"hotelbook/internal/logging"
	"hotelbook/internal/metrics"
	"hotelbook/internal/models"
	"hotelbook/internal/notify"
	"hotelbook/internal/report"
	"hotelbook/internal/repository"
	"hotelbook/internal/service"
	"hotelbook/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

const snapshotTTL = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	rooms, err := loadRooms(&logger)
	if err != nil {
		return err
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := initDatabase(cfg, rooms, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	snapshotCache := initSnapshotCache(redisClient, &logger)
	sheetsService := initGoogleSheets(cfg, &logger)

	var syncWorker domain.SyncWorker
	if sheetsService != nil {
		exportWorker := worker.NewExportWorker(db, sheetsService, redisClient, worker.RetryPolicy{}, &logger)
		go exportWorker.Start(ctx)
		syncWorker = exportWorker
	}

	eventBus := events.NewEventBus()

	notifier, err := notify.NewTelegramNotifier(cfg.Telegram, &logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Telegram init failed, continuing without notifications")
	} else {
		notifier.SubscribeTo(eventBus)
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	bookingService := service.NewBookingService(db, snapshotCache, eventBus, syncWorker, &logger)
	reports := report.NewOccupancyReport(cfg.Exports.Path, &logger)
	httpServer := api.NewHTTPServer(cfg.API, bookingService, db, reports, snapshotCache, &logger)

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func loadRooms(logger *zerolog.Logger) ([]models.Room, error) {
	roomsPath := os.Getenv("ROOMS_PATH")
	if roomsPath == "" {
		roomsPath = "configs/rooms.yaml"
	}
	roomsData, err := os.ReadFile(roomsPath)
	if err != nil {
		logger.Error().Err(err).Str("rooms_path", roomsPath).Msg("Failed to read rooms catalog")
		return nil, err
	}

	var roomsConfig struct {
		Rooms []models.Room `yaml:"rooms"`
	}
	if err := yaml.Unmarshal(roomsData, &roomsConfig); err != nil {
		logger.Error().Err(err).Str("rooms_path", roomsPath).Msg("Failed to parse rooms catalog")
		return nil, err
	}

	if err := config.ValidateRooms(roomsConfig.Rooms); err != nil {
		logger.Error().Err(err).Msg("Rooms catalog validation failed")
		return nil, err
	}

	logger.Info().Int("count", len(roomsConfig.Rooms)).Msg("Rooms catalog loaded")
	return roomsConfig.Rooms, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Failed to create database directory")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Failed to create exports directory")
		return err
	}
	return nil
}

func initDatabase(cfg *config.Config, rooms []models.Room, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("Failed to open database")
		return nil, err
	}

	db.SetRooms(rooms)
	return db, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		logger.Info().Msg("Redis is not configured, using in-memory cache only")
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("Redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("Redis connected")
	return redisClient
}

func initSnapshotCache(redisClient *redis.Client, logger *zerolog.Logger) domain.SnapshotCache {
	fallback := repository.NewMemorySnapshotCache(snapshotTTL)
	if redisClient == nil {
		return fallback
	}

	primary := repository.NewRedisSnapshotCache(redisClient, snapshotTTL)
	return repository.NewFailoverSnapshotCache(primary, fallback, logger)
}

func initGoogleSheets(cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.CredentialsFile == "" || cfg.Google.BookingSpreadSheetID == "" {
		logger.Info().Msg("Google Sheets is not configured, export disabled")
		return nil
	}

	sheetsService, err := google.NewSheetsService(cfg.Google.CredentialsFile, cfg.Google.BookingSpreadSheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("Google Sheets init failed, continuing without export")
		return nil
	}

	logger.Info().Msg("Google Sheets connected")
	return sheetsService
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()

	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go serveMetrics(ctx, port, logger)
}

func serveMetrics(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Int("port", port).Msg("Metrics server started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("Metrics server stopped")
	}
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	if !cfg.API.Enabled {
		logger.Warn().Msg("API is disabled in config, starting anyway. Check your config.")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
		return err
	}

	logger.Info().Msg("Shutdown complete")
	return nil
}
