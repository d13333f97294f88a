package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	config "github.com/scanforge/scanforge/config"
	database "github.com/scanforge/scanforge/database"
	"github.com/scanforge/scanforge/effects"
	engine "github.com/scanforge/scanforge/engine"
	"github.com/scanforge/scanforge/pipeline"
	"github.com/scanforge/scanforge/raster"
	"github.com/scanforge/scanforge/records"
	"github.com/scanforge/scanforge/render"
	"github.com/scanforge/scanforge/template"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// injectGlobals injects all of our globals into their packages
func injectGlobals(logger *slog.Logger) {
	Logger = logger
	config.Logger = Logger
	database.Logger = Logger
	effects.Logger = Logger
	engine.Logger = Logger
	pipeline.Logger = Logger
	raster.Logger = Logger
	records.Logger = Logger
	render.Logger = Logger
	template.Logger = Logger
}

func main() {
	serverConfig, logger := config.SetupServer()
	injectGlobals(logger) //inject the logger into all of the packages

	// Show info banner if using ephemeral database
	if serverConfig.DatabaseType == "ephemeral" {
		fmt.Println("\n" + strings.Repeat("=", 50))
		fmt.Println("  EPHEMERAL DATABASE MODE")
		fmt.Println(strings.Repeat("=", 50))
		fmt.Println("• Database will be destroyed on exit")
		fmt.Println("• Perfect for testing and development")
		fmt.Println("• No persistent data storage")
		fmt.Println(strings.Repeat("=", 50) + "\n")
	}

	Logger.Info("Setting up database", "type", serverConfig.DatabaseType)
	db := database.NewRepository(serverConfig)
	defer db.Close()
	Logger.Info("Database setup complete")

	e := echo.New()
	Logger.Info("Echo created")

	serverHandler := engine.ServerHandler{DB: db, Echo: e, ServerConfig: serverConfig} //injecting the database into the handler for routes

	Logger.Info("Running startup checks")
	if err := serverHandler.StartupChecks(); err != nil {
		Logger.Error("Startup checks failed", "error", err)
		os.Exit(1)
	}
	Logger.Info("Startup checks complete")

	// Single-batch mode: run one batch to completion and exit without the
	// HTTP server. Used for CI and bulk corpus generation.
	if serverConfig.BatchMode {
		Logger.Info("Batch mode enabled, running one batch and exiting")
		run, err := db.CreateRun(serverConfig.DocumentCount, "Single batch run")
		if err != nil {
			Logger.Error("Failed to create run", "error", err)
			os.Exit(1)
		}
		succeeded, failed, err := serverHandler.RunBatch(serverConfig.DocumentCount, run.ID)
		if err != nil {
			Logger.Error("Batch failed", "error", err)
			db.UpdateRunError(run.ID, err.Error())
			os.Exit(1)
		}
		db.CompleteRun(run.ID, succeeded, failed)
		Logger.Info("Batch complete", "succeeded", succeeded, "failed", failed)
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	Logger.Info("About to initialize schedules")
	serverHandler.InitializeSchedules() //initialize the cron jobs
	Logger.Info("Schedules initialized")

	e.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))

	// Custom handler so API callers always get JSON errors
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}
		if code == http.StatusNotFound && strings.HasPrefix(c.Request().URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, map[string]string{
				"error":   "Not Found",
				"message": "The requested API endpoint does not exist",
				"path":    c.Request().URL.Path,
			})
			return
		}
		e.DefaultHTTPErrorHandler(err, c)
	}

	// Document API routes
	e.GET("/api/documents/latest", serverHandler.GetLatestDocuments)

	// Generation API routes
	e.POST("/api/generate", serverHandler.RunGenerateNow)

	// Run tracking API routes
	e.GET("/api/runs", serverHandler.GetRecentRuns)
	e.GET("/api/runs/active", serverHandler.GetActiveRuns)
	e.GET("/api/runs/:id", serverHandler.GetRun)

	// Admin API routes
	e.GET("/api/about", serverHandler.GetAboutInfo)

	// Serve generated artifacts for download
	e.Static("/output", serverConfig.OutputPath)

	if serverConfig.ListenAddrIP == "" {
		Logger.Info("No Ip Addr set, binding on ALL addresses")
	}

	Logger.Info("Starting HTTP server")

	// Try to start server with automatic port increment if port is in use
	maxRetries := 5
	startPort := serverConfig.ListenAddrPort
	var startErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		addr := fmt.Sprintf("%s:%s", serverConfig.ListenAddrIP, serverConfig.ListenAddrPort)
		Logger.Info("Attempting to start server", "address", addr, "attempt", attempt+1)

		startErr = e.Start(addr)

		// Check if error is "address already in use"
		if startErr != nil && isAddressInUse(startErr) {
			Logger.Warn("Port already in use, trying next port",
				"port", serverConfig.ListenAddrPort,
				"attempt", attempt+1,
				"max_attempts", maxRetries)

			// Increment port for next attempt
			portNum := 0
			fmt.Sscanf(serverConfig.ListenAddrPort, "%d", &portNum)
			portNum++
			serverConfig.ListenAddrPort = fmt.Sprintf("%d", portNum)

			if attempt == maxRetries-1 {
				Logger.Error("Failed to find available port after maximum retries",
					"start_port", startPort,
					"end_port", serverConfig.ListenAddrPort,
					"max_retries", maxRetries)
				os.Exit(1)
			}
		} else if startErr != nil {
			// Some other error occurred
			Logger.Error("Failed to start server", "error", startErr)
			os.Exit(1)
		} else {
			// Server started successfully
			break
		}
	}

	if startErr == nil && serverConfig.ListenAddrPort != startPort {
		Logger.Warn("Server started on alternative port due to conflicts",
			"requested_port", startPort,
			"actual_port", serverConfig.ListenAddrPort)
	}
}

// isAddressInUse checks if the error is due to address already in use
func isAddressInUse(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "address already in use")
}
