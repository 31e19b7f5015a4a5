package usecases

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/iwtcode/robotDataAgent/internal/domain/entities"
	"github.com/iwtcode/robotDataAgent/internal/domain/models"
	"github.com/iwtcode/robotDataAgent/internal/interfaces"
)

type statusUsecase struct {
	repo   interfaces.RobotDataRepository
	reader interfaces.PublishedReader

	mu    sync.Mutex
	state models.StatusSnapshot
}

func NewStatusUsecase(
	repo interfaces.RobotDataRepository,
	reader interfaces.PublishedReader,
) interfaces.StatusUsecase {
	return &statusUsecase{
		repo:   repo,
		reader: reader,
		state:  models.StatusSnapshot{StartedAt: time.Now()},
	}
}

func (u *statusUsecase) OnTick(report models.TickReport) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.state.Ticks++
	if report.FetchStatus == models.FetchFailed {
		u.state.FailedFetches++
	}
	u.state.Received += int64(report.Received)
	u.state.Inserted += int64(report.Inserted)
	u.state.Failed += int64(report.Failed)
	u.state.Published += int64(report.Published)
	u.state.Last = &report
}

func (u *statusUsecase) OnSkip(string) {
	u.mu.Lock()
	u.state.SkippedTicks++
	u.mu.Unlock()
}

func (u *statusUsecase) SetSchemaReady(ready bool) {
	u.mu.Lock()
	u.state.SchemaReady = ready
	u.mu.Unlock()
}

func (u *statusUsecase) Snapshot() models.StatusSnapshot {
	u.mu.Lock()
	defer u.mu.Unlock()

	snap := u.state
	if u.state.Last != nil {
		last := *u.state.Last
		snap.Last = &last
	}
	return snap
}

func (u *statusUsecase) LastRow(ctx context.Context) (*entities.RobotData, error) {
	return u.repo.Last(ctx)
}

func (u *statusUsecase) StoredRows(ctx context.Context) (int64, error) {
	return u.repo.Count(ctx)
}

// LastPublished returns the newest message on the topic, or the newest one
// keyed by workstation when it is set.
func (u *statusUsecase) LastPublished(ctx context.Context, workstation string) (*models.PublishedMessage, error) {
	return u.reader.LastMessage(ctx, strings.TrimSpace(workstation))
}
