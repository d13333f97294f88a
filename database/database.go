package database

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// GeneratedDocument is one degraded output document and its provenance: the
// claim record it was stamped from, the template page, the output artifact
// and the seed the pipeline ran under.
type GeneratedDocument struct {
	ID         int
	ULID       ulid.ULID
	RecordULID string
	Name       string
	Path       string // final compressed artifact
	ExportPath string // CSV export the record appears in
	Page       int
	Seed       int64
	Stages     string // comma-separated stage names that produced new handles
	CreatedAt  time.Time
}

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// Repository defines database operations
type Repository interface {
	Close() error
	SaveDocument(doc *GeneratedDocument) error
	GetDocumentByULID(ulid string) (*GeneratedDocument, error)
	GetNewestDocuments(limit int) ([]GeneratedDocument, error)
	GetAllDocuments() ([]GeneratedDocument, error)
	DeleteDocument(ulid string) error
	// Run tracking methods
	CreateRun(requested int, message string) (*Run, error)
	UpdateRunProgress(runID ulid.ULID, progress int, currentStep string) error
	UpdateRunStatus(runID ulid.ULID, status RunStatus, message string) error
	UpdateRunError(runID ulid.ULID, errorMsg string) error
	CompleteRun(runID ulid.ULID, succeeded, failed int) error
	GetRun(runID ulid.ULID) (*Run, error)
	GetRecentRuns(limit, offset int) ([]Run, error)
	GetActiveRuns() ([]Run, error)
	DeleteOldRuns(olderThan time.Duration) (int, error)
}

// FetchNewestDocuments fetches the documents that were generated last
func FetchNewestDocuments(numberOf int, db Repository) ([]GeneratedDocument, error) {
	newestDocuments, err := db.GetNewestDocuments(numberOf)
	if err != nil {
		Logger.Error("Unable to find the latest documents", "error", err)
		return newestDocuments, err
	}
	return newestDocuments, nil
}

// CalculateUUID mints a ULID for the given time
func CalculateUUID(t time.Time) (ulid.ULID, error) {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	newULID, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return newULID, err
	}
	return newULID, nil
}
