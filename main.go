package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"reelcache/api"
	"reelcache/config"
	"reelcache/handlers"
	"reelcache/internal/database"
	"reelcache/services/catalog"
	"reelcache/services/metadata"

	"github.com/gorilla/mux"
	"gopkg.in/natefinch/lumberjack.v2"
)

const version = "0.3.0"

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("reelcache starting...")

	// Determine config path (env or default)
	configPath := os.Getenv("REELCACHE_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			multiWriter := io.MultiWriter(os.Stdout, fileWriter)
			log.SetOutput(multiWriter)
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	if settings.Metadata.TMDBAPIKey == "" {
		log.Println("Warning: no TMDB API key configured; resolution will serve cached records only")
	}

	// Open the record database and run migrations
	db, err := database.NewDB(database.Config{DatabasePath: settings.Database.Path})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	store := database.NewRecordRepository(db.Connection())

	metadataSvc := metadata.NewService(
		store,
		settings.Metadata.TMDBAPIKey,
		settings.Metadata.Language,
		settings.Cache.RecordTTLHours,
		settings.Cache.GenreTTLHours,
		nil,
	)
	catalogSvc := catalog.NewService(settings.Catalog.FeedURL, nil)

	catalogHandler := handlers.NewCatalogHandler(metadataSvc, catalogSvc)
	metadataHandler := handlers.NewMetadataHandler(metadataSvc)
	embedHandler := handlers.NewEmbedHandler(settings.Embed.BaseURL)
	healthHandler := handlers.NewHealthHandler(version)

	r := mux.NewRouter()
	api.RegisterRoutes(r, catalogHandler, metadataHandler, embedHandler, healthHandler)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Setup graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}
