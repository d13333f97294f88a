package engine

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/scanforge/scanforge/config"
)

func TestMain(m *testing.M) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	Logger = logger
	config.Logger = logger
	os.Exit(m.Run())
}

func TestDirectoryChecks_CreatesMissingDirectories(t *testing.T) {
	base := t.TempDir()
	serverConfig := config.ServerConfig{
		OutputPath: filepath.Join(base, "output"),
		TempPath:   filepath.Join(base, "temp"),
		DebugPath:  filepath.Join(base, "debug"),
		ExportPath: filepath.Join(base, "export"),
	}

	if err := directoryChecks(serverConfig); err != nil {
		t.Fatalf("directoryChecks failed: %v", err)
	}
	for _, dir := range []string{serverConfig.OutputPath, serverConfig.TempPath, serverConfig.DebugPath, serverConfig.ExportPath} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Errorf("Expected directory %s to exist: %v", dir, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("Expected %s to be a directory", dir)
		}
	}
}

func TestDirectoryChecks_RejectsFileInPlace(t *testing.T) {
	base := t.TempDir()
	outputPath := filepath.Join(base, "output")
	if err := os.WriteFile(outputPath, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("Failed to write collision file: %v", err)
	}

	serverConfig := config.ServerConfig{
		OutputPath: outputPath,
		TempPath:   filepath.Join(base, "temp"),
		DebugPath:  filepath.Join(base, "debug"),
		ExportPath: filepath.Join(base, "export"),
	}
	if err := directoryChecks(serverConfig); err == nil {
		t.Error("Expected error when a configured directory is a regular file")
	}
}

func TestDirectoryChecks_SkipsUnconfiguredPaths(t *testing.T) {
	base := t.TempDir()
	serverConfig := config.ServerConfig{
		OutputPath: filepath.Join(base, "output"),
		TempPath:   filepath.Join(base, "temp"),
	}
	if err := directoryChecks(serverConfig); err != nil {
		t.Errorf("Expected empty paths to be skipped, got %v", err)
	}
}
