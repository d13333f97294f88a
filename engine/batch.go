package engine

import (
	"fmt"
	"image"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/scanforge/scanforge/database"
	"github.com/scanforge/scanforge/pipeline"
	"github.com/scanforge/scanforge/raster"
	"github.com/scanforge/scanforge/records"
	"github.com/scanforge/scanforge/render"
	"github.com/scanforge/scanforge/template"
)

// batchJobFunc runs a scheduled batch without run tracking
func (serverHandler *ServerHandler) batchJobFunc() {
	// Add panic recovery to prevent entire application crash
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered in batch job", "panic", r)
		}
	}()

	count := serverHandler.ServerConfig.DocumentCount
	run, err := serverHandler.DB.CreateRun(count, "Scheduled batch generation")
	if err != nil {
		Logger.Error("Failed to create run for scheduled batch", "error", err)
		return
	}
	serverHandler.batchJobFuncWithTracking(count, run.ID)
}

// batchJobFuncWithTracking wraps the batch job with progress tracking
func (serverHandler *ServerHandler) batchJobFuncWithTracking(count int, runID ulid.ULID) {
	// Add panic recovery and update run status on panic
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered in batch job", "panic", r, "runID", runID)
			serverHandler.DB.UpdateRunError(runID, fmt.Sprintf("Panic: %v", r))
		}
	}()

	if err := serverHandler.DB.UpdateRunStatus(runID, database.RunStatusRunning, "Generating records"); err != nil {
		Logger.Error("Failed to update run status", "error", err)
	}

	succeeded, failed, err := serverHandler.RunBatch(count, runID)
	if err != nil {
		Logger.Error("Batch generation failed", "runID", runID, "error", err)
		serverHandler.DB.UpdateRunError(runID, err.Error())
		return
	}

	if err := serverHandler.DB.CompleteRun(runID, succeeded, failed); err != nil {
		Logger.Error("Failed to mark run as complete", "error", err)
	}
	Logger.Info("Batch generation completed", "runID", runID, "succeeded", succeeded, "failed", failed)
}

// RunBatch generates count claim records, exports them as CSV, stamps each
// record onto the rendered template page and runs the result through the
// degradation pipeline. Per-document failures are tallied and the batch
// continues; only setup failures abort the whole run.
func (serverHandler *ServerHandler) RunBatch(count int, runID ulid.ULID) (succeeded, failed int, err error) {
	cfg := serverHandler.ServerConfig

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	Logger.Info("Starting batch generation", "count", count, "seed", seed, "runID", runID)

	generator, err := records.NewGenerator(seed)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot build record generator: %w", err)
	}
	batch, err := generator.GenerateBatch(count)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot generate records: %w", err)
	}

	serverHandler.DB.UpdateRunProgress(runID, 5, "Exporting CSV")
	exportPath := filepath.Join(cfg.ExportPath, fmt.Sprintf("claims_%s.csv", time.Now().Format("20060102T150405")))
	if err := records.ExportCSV(batch, exportPath); err != nil {
		return 0, 0, fmt.Errorf("cannot export CSV: %w", err)
	}
	Logger.Info("Exported claim records", "path", exportPath, "count", len(batch))

	renderer, err := render.NewRenderer()
	if err != nil {
		return 0, 0, fmt.Errorf("cannot create renderer: %w", err)
	}
	defer renderer.Close()

	serverHandler.DB.UpdateRunProgress(runID, 10, "Rendering template")
	pageImage, err := renderer.RenderPage(cfg.TemplatePath, 0)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot render template page: %w", err)
	}

	fieldMap, err := template.LoadFieldMap(cfg.FieldMapPath)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot load field map: %w", err)
	}
	stamper, err := template.NewStamper(fieldMap, cfg.FontName)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot build stamper: %w", err)
	}

	engine := raster.NewImagingEngine()
	rng := rand.New(rand.NewSource(seed))
	pl := pipeline.New(engine, rng, cfg.Pipeline, cfg.TempPath, cfg.OutputPath)
	stages := strings.Join(cfg.Pipeline.EnabledStages(), ",")
	excluded := pipeline.ParseExclusions(cfg.DebugExclude)

	for i, rec := range batch {
		progress := 10 + int((float64(i)/float64(len(batch)))*85)
		serverHandler.DB.UpdateRunProgress(runID, progress, fmt.Sprintf("Processing document %d/%d", i+1, len(batch)))

		outPath, docErr := serverHandler.processDocument(pl, engine, stamper, pageImage, rec, pipeline.RunContext{
			Debug:    cfg.DebugEnabled && i == 0,
			Excluded: excluded,
			DebugDir: cfg.DebugPath,
		})
		if docErr != nil {
			Logger.Error("Failed to process document", "doc", rec.DocBase(), "error", docErr)
			failed++
			continue
		}

		docULID, docErr := database.CalculateUUID(time.Now())
		if docErr != nil {
			Logger.Error("Failed to mint document ULID", "doc", rec.DocBase(), "error", docErr)
			failed++
			continue
		}
		doc := &database.GeneratedDocument{
			ULID:       docULID,
			RecordULID: rec.ULID.String(),
			Name:       filepath.Base(outPath),
			Path:       outPath,
			ExportPath: exportPath,
			Page:       0,
			Seed:       seed,
			Stages:     stages,
		}
		if docErr := serverHandler.DB.SaveDocument(doc); docErr != nil {
			Logger.Error("Failed to save document record", "doc", rec.DocBase(), "error", docErr)
			failed++
			continue
		}

		Logger.Info("Generated document", "doc", rec.DocBase(), "path", outPath)
		succeeded++
	}

	return succeeded, failed, nil
}

// processDocument stamps one record onto the page image and runs the
// degradation pipeline on it. The render intermediate is handed to the
// pipeline, which owns its lifecycle from there.
func (serverHandler *ServerHandler) processDocument(pl *pipeline.Pipeline, engine raster.Engine, stamper *template.Stamper, pageImage image.Image, rec *records.ClaimRecord, run pipeline.RunContext) (string, error) {
	stamped, err := stamper.Stamp(pageImage, 0, rec)
	if err != nil {
		return "", fmt.Errorf("stamping failed: %w", err)
	}

	docBase := rec.DocBase()
	workingImage := filepath.Join(serverHandler.ServerConfig.TempPath, docBase+"_"+pipeline.StageRender+".png")
	if err := engine.Save(stamped, workingImage); err != nil {
		return "", fmt.Errorf("cannot write working image: %w", err)
	}

	outPath, err := pl.Process(workingImage, docBase, run)
	if err != nil {
		return "", err
	}
	return outPath, nil
}
