package interfaces

import (
	"context"

	"github.com/iwtcode/robotDataAgent/internal/domain/entities"
)

type RobotDataRepository interface {
	// EnsureTable creates robot_data when it does not exist yet.
	EnsureTable(ctx context.Context) error
	Insert(ctx context.Context, row *entities.RobotData) error
	// Last returns the most recently inserted row, or nil when the table is empty.
	Last(ctx context.Context) (*entities.RobotData, error)
	Count(ctx context.Context) (int64, error)
}
