package engine

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"

	"github.com/scanforge/scanforge/database"
)

// GetRun retrieves a run by ID
func (serverHandler *ServerHandler) GetRun(c echo.Context) error {
	runIDStr := c.Param("id")

	runID, err := ulid.Parse(runIDStr)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid run ID format",
		})
	}

	run, err := serverHandler.DB.GetRun(runID)
	if err != nil {
		Logger.Error("Failed to get run", "runID", runIDStr, "error", err)
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Run not found",
		})
	}

	return c.JSON(http.StatusOK, run)
}

// GetRecentRuns retrieves recent runs with pagination
func (serverHandler *ServerHandler) GetRecentRuns(c echo.Context) error {
	limit := 20
	offset := 0

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	runs, err := serverHandler.DB.GetRecentRuns(limit, offset)
	if err != nil {
		Logger.Error("Failed to get recent runs", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to retrieve runs",
		})
	}

	if runs == nil {
		runs = []database.Run{}
	}

	return c.JSON(http.StatusOK, runs)
}

// GetActiveRuns retrieves all currently running or pending runs
func (serverHandler *ServerHandler) GetActiveRuns(c echo.Context) error {
	runs, err := serverHandler.DB.GetActiveRuns()
	if err != nil {
		Logger.Error("Failed to get active runs", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to retrieve active runs",
		})
	}

	if runs == nil {
		runs = []database.Run{}
	}

	return c.JSON(http.StatusOK, runs)
}
