package engine

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/flopp/go-findfont"

	"github.com/scanforge/scanforge/config"
	"github.com/scanforge/scanforge/template"
)

// StartupChecks performs all the checks to make sure everything works
func (serverHandler *ServerHandler) StartupChecks() error {
	serverConfig := serverHandler.ServerConfig

	if errs := serverConfig.Validate(); len(errs) > 0 {
		for _, err := range errs {
			Logger.Error("Configuration problem", "error", err)
		}
		return fmt.Errorf("configuration invalid: %d problem(s) found", len(errs))
	}

	if err := directoryChecks(serverConfig); err != nil {
		return err
	}
	if err := templateChecks(serverConfig); err != nil {
		return err
	}
	if err := fieldMapChecks(serverConfig); err != nil {
		return err
	}
	if err := fontChecks(serverConfig); err != nil {
		return err
	}
	return nil
}

// directoryChecks ensures every working directory exists
func directoryChecks(serverConfig config.ServerConfig) error {
	dirs := map[string]string{
		"output": serverConfig.OutputPath,
		"temp":   serverConfig.TempPath,
		"debug":  serverConfig.DebugPath,
		"export": serverConfig.ExportPath,
	}

	for name, dir := range dirs {
		if dir == "" {
			Logger.Warn("Directory not configured", "name", name)
			continue
		}

		info, err := os.Stat(dir)
		if err != nil {
			if os.IsNotExist(err) {
				Logger.Info("Creating directory", "name", name, "path", dir)
				if err := os.MkdirAll(dir, 0755); err != nil {
					Logger.Error("Failed to create directory", "name", name, "path", dir, "error", err)
					return err
				}
				continue
			}
			Logger.Error("Error checking directory", "name", name, "path", dir, "error", err)
			return err
		}

		if !info.IsDir() {
			Logger.Error("Path exists but is not a directory", "name", name, "path", dir)
			return fmt.Errorf("%s path is not a directory: %s", name, dir)
		}
	}
	return nil
}

// templateChecks verifies the template PDF is present and readable,
// generating the built-in blank form if no template exists yet.
func templateChecks(serverConfig config.ServerConfig) error {
	if _, err := os.Stat(serverConfig.TemplatePath); err != nil {
		if !os.IsNotExist(err) {
			Logger.Error("Error checking template", "path", serverConfig.TemplatePath, "error", err)
			return err
		}

		Logger.Info("Template not found, generating blank claim form", "path", serverConfig.TemplatePath)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := template.GenerateTemplate(ctx, serverConfig.TemplatePath); err != nil {
			Logger.Error("Failed to generate template", "path", serverConfig.TemplatePath, "error", err)
			return err
		}
		Logger.Info("Template generated successfully", "path", serverConfig.TemplatePath)
	}

	info, err := template.Inspect(serverConfig.TemplatePath)
	if err != nil {
		Logger.Error("Template failed inspection", "path", serverConfig.TemplatePath, "error", err)
		return err
	}
	if info.Pages < 1 {
		return fmt.Errorf("template has no pages: %s", serverConfig.TemplatePath)
	}
	Logger.Info("Template validated", "path", serverConfig.TemplatePath, "pages", info.Pages, "hasText", info.HasText)
	return nil
}

// fieldMapChecks verifies the field map parses
func fieldMapChecks(serverConfig config.ServerConfig) error {
	fieldMap, err := template.LoadFieldMap(serverConfig.FieldMapPath)
	if err != nil {
		Logger.Error("Field map failed to load", "path", serverConfig.FieldMapPath, "error", err)
		return err
	}
	Logger.Info("Field map validated", "path", serverConfig.FieldMapPath, "fields", len(fieldMap.Fields))
	return nil
}

// fontChecks verifies the stamping font can be resolved
func fontChecks(serverConfig config.ServerConfig) error {
	fontPath, err := findfont.Find(serverConfig.FontName)
	if err != nil {
		Logger.Error("Cannot resolve stamping font", "font", serverConfig.FontName, "error", err)
		return err
	}
	Logger.Info("Stamping font resolved", "font", serverConfig.FontName, "path", fontPath)
	return nil
}
