package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/merchware/unisearch/internal/conf"
	"github.com/merchware/unisearch/internal/data"
	"github.com/merchware/unisearch/internal/pkg/logger"
	"github.com/merchware/unisearch/internal/search/biz"
	searchdata "github.com/merchware/unisearch/internal/search/data"
	searchservice "github.com/merchware/unisearch/internal/search/service"
	"github.com/merchware/unisearch/internal/server"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger with config
	logConfig := &logger.Config{
		Level:            config.Log.Level,
		Format:           config.Log.Format,
		Output:           config.Log.Output,
		EnableCaller:     config.Log.EnableCaller,
		EnableStacktrace: config.Log.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   config.Log.File.Filename,
			MaxSize:    config.Log.File.MaxSize,
			MaxAge:     config.Log.File.MaxAge,
			MaxBackups: config.Log.File.MaxBackups,
			Compress:   config.Log.File.Compress,
		},
	}

	log, err := logger.New(logConfig)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("config loaded successfully")

	// Initialize data layer
	d, cleanup, err := data.NewData(config, log.Logger)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	// Initialize repositories and the search store
	presetRepo := searchdata.NewPresetRepo(d.DB)
	searchStore := searchdata.NewSearchStore(d.DB, d.RedisClient, log.Logger)
	exportDispatcher, err := searchdata.NewExportDispatcher(d.RedisClient, searchStore, log.Logger)
	if err != nil {
		log.Fatal("failed to initialize export dispatcher", zap.Error(err))
	}
	defer exportDispatcher.Close()

	// Initialize use cases
	presetUseCase := biz.NewPresetUseCase(presetRepo, log.Logger)

	// Initialize services
	searchService := searchservice.NewSearchService(
		searchStore,
		presetUseCase,
		exportDispatcher,
		&config.Search,
		log,
	)

	// Initialize HTTP server
	httpServer := server.NewHTTPServer(config, log.Logger, searchService)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
