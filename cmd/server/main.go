package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/dmutombo/requestdesk/internal/config"
	"github.com/dmutombo/requestdesk/internal/domain/ledger"
	"github.com/dmutombo/requestdesk/internal/export"
	"github.com/dmutombo/requestdesk/internal/inspect"
	httpserver "github.com/dmutombo/requestdesk/internal/interfaces/http"
	"github.com/dmutombo/requestdesk/internal/repository"
	"github.com/dmutombo/requestdesk/internal/services"
	"github.com/dmutombo/requestdesk/internal/storage"
	"github.com/dmutombo/requestdesk/internal/upload"
	"github.com/dmutombo/requestdesk/pkg/database"
	"github.com/dmutombo/requestdesk/pkg/utils"
)

func main() {
	// Load .env if present, before viper reads the environment
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting RequestDesk",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	for _, dir := range []string{cfg.Upload.StorageDir, cfg.Export.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	requestRepo := repository.NewRequestRepository(db.DB, logger)
	itemRepo := repository.NewRequestItemRepository(db.DB, logger)
	attachmentRepo := repository.NewAttachmentRepository(db.DB, logger)

	fileStorage := storage.NewLocalFileStorage(cfg.Upload.StorageDir, logger)
	folderManager := storage.NewFolderManager(cfg.Upload.StorageDir, logger)

	requestService := services.NewRequestService(db, requestRepo, itemRepo, attachmentRepo, folderManager, logger)

	handlers := httpserver.NewHandlers(
		requestService,
		requestRepo,
		attachmentRepo,
		fileStorage,
		inspect.NewInspector(logger),
		export.NewExcelWriter(cfg.Export.OutputDir, logger),
		ledger.Config{
			MinQuantity:      cfg.Ledger.MinQuantity,
			MaxQuantity:      cfg.Ledger.MaxQuantity,
			DefaultAuthority: ledger.Authority(cfg.Ledger.DefaultAuthority),
		},
		upload.Config{
			MaxFileSize:       cfg.Upload.MaxFileSizeMB << 20,
			AllowedExtensions: cfg.Upload.AllowedExtensions,
			MaxFiles:          cfg.Upload.MaxFiles,
		},
		cfg.Upload.StorageDir,
		logger,
	)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handlers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
