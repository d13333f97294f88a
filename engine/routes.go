package engine

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/scanforge/scanforge/config"
	"github.com/scanforge/scanforge/database"
	"github.com/scanforge/scanforge/internal/build"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// ServerHandler will inject the variables needed into routes
type ServerHandler struct {
	DB           database.Repository
	Echo         *echo.Echo
	ServerConfig config.ServerConfig
}

// GetLatestDocuments returns the most recently generated documents
func (serverHandler *ServerHandler) GetLatestDocuments(context echo.Context) error {
	limit := 20
	if limitParam := context.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	documents, err := database.FetchNewestDocuments(limit, serverHandler.DB)
	if err != nil {
		Logger.Error("Can't find latest documents", "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to fetch documents",
		})
	}

	return context.JSON(http.StatusOK, map[string]interface{}{
		"documents": documents,
		"count":     len(documents),
	})
}

// RunGenerateNow triggers a batch generation manually
func (serverHandler *ServerHandler) RunGenerateNow(c echo.Context) error {
	Logger.Info("Manual batch generation triggered via API")

	count := serverHandler.ServerConfig.DocumentCount
	if countParam := c.QueryParam("count"); countParam != "" {
		parsed, err := strconv.Atoi(countParam)
		if err != nil || parsed < 1 {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": "count must be a positive integer",
			})
		}
		count = parsed
	}

	run, err := serverHandler.DB.CreateRun(count, "Starting batch generation")
	if err != nil {
		Logger.Error("Failed to create run", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to create run",
		})
	}

	// Run generation in a goroutine so we can return immediately
	go func() {
		serverHandler.batchJobFuncWithTracking(count, run.ID)
	}()

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Batch generation started",
		"runId":   run.ID.String(),
	})
}

// GetAboutInfo returns build and configuration details
func (serverHandler *ServerHandler) GetAboutInfo(c echo.Context) error {
	aboutInfo := map[string]interface{}{
		"version":       build.Version,
		"databaseType":  serverHandler.ServerConfig.DatabaseType,
		"databaseHost":  serverHandler.ServerConfig.DatabaseHost,
		"databasePort":  serverHandler.ServerConfig.DatabasePort,
		"databaseName":  serverHandler.ServerConfig.DatabaseDbname,
		"templatePath":  serverHandler.ServerConfig.TemplatePath,
		"outputPath":    serverHandler.ServerConfig.OutputPath,
		"documentCount": serverHandler.ServerConfig.DocumentCount,
		"debugEnabled":  serverHandler.ServerConfig.DebugEnabled,
	}

	return c.JSON(http.StatusOK, aboutInfo)
}
