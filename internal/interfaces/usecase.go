package interfaces

import (
	"context"

	"github.com/iwtcode/robotDataAgent/internal/domain/entities"
	"github.com/iwtcode/robotDataAgent/internal/domain/models"
)

type IngestUsecase interface {
	EnsureSchema(ctx context.Context) error
	// Write inserts every record independently; one failure does not stop the rest.
	Write(ctx context.Context, records []models.RawRecord) models.WriteSummary
	RunTick(ctx context.Context, tickID string) models.TickReport
}

type StatusUsecase interface {
	TickObserver

	SetSchemaReady(ready bool)
	Snapshot() models.StatusSnapshot
	LastRow(ctx context.Context) (*entities.RobotData, error)
	StoredRows(ctx context.Context) (int64, error)
	LastPublished(ctx context.Context, workstation string) (*models.PublishedMessage, error)
}
