package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/stapelberg/postgrestest"
)

// ephemeralServer wraps the throwaway PostgreSQL instance used for development runs
type ephemeralServer struct {
	server *postgrestest.Server
}

// Cleanup stops the ephemeral server and removes its data directory
func (e *ephemeralServer) Cleanup() {
	if e.server != nil {
		Logger.Info("Cleaning up ephemeral PostgreSQL server...")
		e.server.Cleanup()
		Logger.Info("Ephemeral PostgreSQL server cleaned up")
	}
}

// setupEphemeralPostgres starts a throwaway PostgreSQL instance and opens a
// connection to a fresh database on it
func setupEphemeralPostgres() (*ephemeralServer, *sql.DB, error) {
	Logger.Info("Starting ephemeral PostgreSQL server...")

	ctx := context.Background()

	// Uses a temporary directory by default for simplicity
	pgt, err := postgrestest.Start(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start ephemeral postgres: %w", err)
	}

	dsn, err := pgt.CreateDatabase(ctx)
	if err != nil {
		pgt.Cleanup()
		return nil, nil, fmt.Errorf("failed to create scanforge database: %w", err)
	}

	Logger.Info("Created ephemeral database", "dsn", dsn)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		pgt.Cleanup()
		return nil, nil, fmt.Errorf("failed to open scanforge database: %w", err)
	}

	if err := db.Ping(); err != nil {
		pgt.Cleanup()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	Logger.Info("Connected to ephemeral PostgreSQL database successfully")
	return &ephemeralServer{server: pgt}, db, nil
}
