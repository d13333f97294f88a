package database

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/uptrace/bun"
)

// BunDocument represents the documents table for Bun ORM
type BunDocument struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID         int       `bun:"id,pk,autoincrement"`
	ULID       string    `bun:"ulid,notnull,unique"` // Stored as string in DB
	RecordULID string    `bun:"record_ulid,notnull"`
	Name       string    `bun:"name,notnull"`
	Path       string    `bun:"path,notnull,unique"`
	ExportPath string    `bun:"export_path,nullzero"`
	Page       int       `bun:"page,notnull,default:0"`
	Seed       int64     `bun:"seed,notnull,default:0"`
	Stages     string    `bun:"stages,nullzero"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// ToDocument converts BunDocument to GeneratedDocument
func (bd *BunDocument) ToDocument() (*GeneratedDocument, error) {
	parsedULID, err := ulid.Parse(bd.ULID)
	if err != nil {
		return nil, err
	}

	return &GeneratedDocument{
		ID:         bd.ID,
		ULID:       parsedULID,
		RecordULID: bd.RecordULID,
		Name:       bd.Name,
		Path:       bd.Path,
		ExportPath: bd.ExportPath,
		Page:       bd.Page,
		Seed:       bd.Seed,
		Stages:     bd.Stages,
		CreatedAt:  bd.CreatedAt,
	}, nil
}

// FromDocument converts GeneratedDocument to BunDocument
func FromDocument(doc *GeneratedDocument) *BunDocument {
	return &BunDocument{
		ID:         doc.ID,
		ULID:       doc.ULID.String(),
		RecordULID: doc.RecordULID,
		Name:       doc.Name,
		Path:       doc.Path,
		ExportPath: doc.ExportPath,
		Page:       doc.Page,
		Seed:       doc.Seed,
		Stages:     doc.Stages,
		CreatedAt:  doc.CreatedAt,
	}
}

// BunRun represents the runs table for Bun ORM
type BunRun struct {
	bun.BaseModel `bun:"table:runs,alias:r"`

	ID          string     `bun:"id,pk"`
	Status      string     `bun:"status,notnull,default:'pending'"`
	Progress    int        `bun:"progress,notnull,default:0"`
	CurrentStep string     `bun:"current_step,nullzero"`
	Requested   int        `bun:"requested,notnull,default:0"`
	Succeeded   int        `bun:"succeeded,notnull,default:0"`
	Failed      int        `bun:"failed,notnull,default:0"`
	Message     string     `bun:"message,nullzero"`
	Error       string     `bun:"error,nullzero"`
	StartedAt   time.Time  `bun:"started_at,notnull,default:current_timestamp"`
	CompletedAt *time.Time `bun:"completed_at,nullzero"`
}

// ToRun converts BunRun to Run
func (br *BunRun) ToRun() (*Run, error) {
	parsedID, err := ulid.Parse(br.ID)
	if err != nil {
		return nil, err
	}
	return &Run{
		ID:          parsedID,
		Status:      RunStatus(br.Status),
		Progress:    br.Progress,
		CurrentStep: br.CurrentStep,
		Requested:   br.Requested,
		Succeeded:   br.Succeeded,
		Failed:      br.Failed,
		Message:     br.Message,
		Error:       br.Error,
		StartedAt:   br.StartedAt,
		CompletedAt: br.CompletedAt,
	}, nil
}

// FromRun converts Run to BunRun
func FromRun(run *Run) *BunRun {
	return &BunRun{
		ID:          run.ID.String(),
		Status:      string(run.Status),
		Progress:    run.Progress,
		CurrentStep: run.CurrentStep,
		Requested:   run.Requested,
		Succeeded:   run.Succeeded,
		Failed:      run.Failed,
		Message:     run.Message,
		Error:       run.Error,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
	}
}
