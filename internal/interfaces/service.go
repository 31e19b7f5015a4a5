package interfaces

import (
	"context"

	"github.com/iwtcode/robotDataAgent/internal/domain/entities"
	"github.com/iwtcode/robotDataAgent/internal/domain/models"
)

type RecordFetcher interface {
	Fetch(ctx context.Context) models.FetchResult
}

type RecordPublisher interface {
	// Publish sends the stored rows downstream and returns how many were accepted.
	Publish(ctx context.Context, rows []entities.RobotData) (int, error)
	Close() error
}

type PublishedReader interface {
	// LastMessage возвращает последнее сообщение топика. Если задан workstation,
	// ищется последнее сообщение с этим ключом. nil, nil — сообщений нет.
	LastMessage(ctx context.Context, workstation string) (*models.PublishedMessage, error)
}

// TickObserver receives the outcome of every poll tick.
type TickObserver interface {
	OnTick(report models.TickReport)
	OnSkip(tickID string)
}
