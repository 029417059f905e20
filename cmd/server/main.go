// Package main is the entry point for the planmark server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/planmark/planmark-go/internal/api"
	"github.com/planmark/planmark-go/internal/config"
	"github.com/planmark/planmark-go/internal/database"
	"github.com/planmark/planmark-go/internal/database/repositories"
	"github.com/planmark/planmark-go/internal/services/analysis"
	"github.com/planmark/planmark-go/internal/services/analysis/tesseract"
	"github.com/planmark/planmark-go/internal/services/costlink"
	"github.com/planmark/planmark-go/internal/services/network"
	"github.com/planmark/planmark-go/internal/services/persistence"
	"github.com/planmark/planmark-go/internal/services/pubsub"
	"github.com/planmark/planmark-go/internal/services/region"
	"github.com/planmark/planmark-go/internal/services/workspace"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Print startup banner
	printBanner(cfg)

	// Connect to database
	db, err := database.Connect(database.Config{
		URL:         cfg.DatabaseURL,
		MaxIdleConn: 2,
		MaxOpenConn: 4,
		Debug:       cfg.DBDebug,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	log.Println("Running database migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migrations complete")

	designRepo := repositories.NewDesignRepository(db)
	boqRepo := repositories.NewBOQRepository(db)
	settingRepo := repositories.NewSettingRepository(db)
	projectRepo := repositories.NewProjectRepository(db)

	designs := persistence.NewService(designRepo)
	costs := costlink.NewService(boqRepo)
	ps := pubsub.New()

	analyzer, closeAnalyzer := newAnalyzer(cfg)
	defer closeAnalyzer()

	ws := workspace.New(workspace.Config{
		HistoryLimit: cfg.HistoryLimit,
		Region: region.Config{
			MinSize:      float64(cfg.RegionMinSize),
			MaxDimension: cfg.RegionMaxDimension,
		},
	}, analyzer, ps)

	restoreLastDesign(context.Background(), ws, designs, settingRepo)

	handler := api.NewHandler(ws, designs, costs, settingRepo, projectRepo, ps, api.Options{
		CORSOrigin:     cfg.CORSOrigin,
		Debug:          cfg.IsDevelopment(),
		RequestTimeout: cfg.RequestTimeout,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Version:        Version,
	})

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on http://localhost:%s\n", cfg.Port)
		log.Printf("Event stream: ws://localhost:%s/ws\n", cfg.Port)
		logLANAddresses(cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// newAnalyzer returns the region analyzer the config asks for and a func
// that releases it. OCR falls back to disabled when the engine cannot start.
func newAnalyzer(cfg *config.Config) (analysis.Analyzer, func()) {
	if !cfg.OCREnabled {
		return analysis.Disabled, func() {}
	}
	ocr, err := tesseract.New(cfg.OCRLanguage)
	if err != nil {
		log.Printf("Warning: OCR initialization failed, region scanning disabled: %v", err)
		return analysis.Disabled, func() {}
	}
	log.Printf("OCR enabled (%s)", cfg.OCRLanguage)
	return ocr, func() { _ = ocr.Close() }
}

// restoreLastDesign reopens the design that was open when the server last
// stopped. A missing or unreadable design leaves the workspace empty.
func restoreLastDesign(ctx context.Context, ws *workspace.Workspace, designs *persistence.Service, settings *repositories.SettingRepository) {
	id, err := settings.GetString(ctx, repositories.SettingLastDesignID, "")
	if err != nil {
		log.Printf("Warning: failed to read last design setting: %v", err)
		return
	}
	if id == "" {
		return
	}

	snap, _, err := designs.Load(ctx, id)
	if err != nil {
		log.Printf("Warning: failed to restore design %s: %v", id, err)
		return
	}
	if err := ws.Open(*snap); err != nil {
		log.Printf("Warning: failed to open design %s: %v", id, err)
		return
	}
	log.Printf("Restored design %s (%s)", id, snap.Metadata.Name)
}

// logLANAddresses logs the URLs other devices on the network can use.
func logLANAddresses(port string) {
	addrs, err := network.LANAddresses()
	if err != nil {
		log.Printf("Warning: %v", err)
		return
	}
	for _, a := range addrs {
		log.Printf("Reachable on %s (%s): %s", a.Interface, a.InterfaceType, a.URL(port))
	}
}

// printBanner prints the startup banner.
func printBanner(cfg *config.Config) {
	fmt.Println("============================================")
	fmt.Println("  Planmark Server")
	fmt.Printf("  Version: %s\n", Version)
	fmt.Printf("  Build:   %s\n", BuildTime)
	fmt.Printf("  Commit:  %s\n", GitCommit)
	fmt.Println("============================================")
	fmt.Printf("  Environment: %s\n", cfg.Env)
	fmt.Printf("  Port:        %s\n", cfg.Port)
	fmt.Printf("  Database:    %s\n", cfg.DatabaseURL)
	fmt.Printf("  OCR:         %v\n", cfg.OCREnabled)
	fmt.Println("============================================")
}
