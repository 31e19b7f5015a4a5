package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/iwtcode/robotDataAgent/internal/domain/entities"
	"github.com/iwtcode/robotDataAgent/internal/domain/models"
	"github.com/iwtcode/robotDataAgent/internal/interfaces"
	"go.uber.org/zap"
)

type ingestUsecase struct {
	repo      interfaces.RobotDataRepository
	fetcher   interfaces.RecordFetcher
	publisher interfaces.RecordPublisher
	logger    *zap.Logger
}

func NewIngestUsecase(
	repo interfaces.RobotDataRepository,
	fetcher interfaces.RecordFetcher,
	publisher interfaces.RecordPublisher,
	logger *zap.Logger,
) interfaces.IngestUsecase {
	return &ingestUsecase{
		repo:      repo,
		fetcher:   fetcher,
		publisher: publisher,
		logger:    logger.Named("ingest"),
	}
}

func (u *ingestUsecase) EnsureSchema(ctx context.Context) error {
	if err := u.repo.EnsureTable(ctx); err != nil {
		return fmt.Errorf("ensure robot_data table: %w", err)
	}
	u.logger.Info("robot_data table is ready")
	return nil
}

func (u *ingestUsecase) RunTick(ctx context.Context, tickID string) models.TickReport {
	report := models.TickReport{ID: tickID, StartedAt: time.Now()}
	log := u.logger.With(zap.String("tick_id", tickID))

	res := u.fetcher.Fetch(ctx)
	report.FetchStatus = res.Status
	report.FetchErr = res.Err

	switch res.Status {
	case models.FetchFailed:
		log.Warn("fetch failed, nothing to write", zap.Error(res.Err))
	case models.FetchEmpty:
		log.Info("No data received.")
	case models.FetchOK:
		records := res.Items()
		report.Received = len(records)
		summary := u.write(ctx, log, records)
		report.Inserted = summary.Inserted
		report.Failed = summary.Failed
		report.Published = summary.Published
	}

	report.Duration = time.Since(report.StartedAt)
	return report
}

func (u *ingestUsecase) Write(ctx context.Context, records []models.RawRecord) models.WriteSummary {
	return u.write(ctx, u.logger, records)
}

func (u *ingestUsecase) write(ctx context.Context, log *zap.Logger, records []models.RawRecord) models.WriteSummary {
	summary := models.WriteSummary{Rows: make([]entities.RobotData, 0, len(records))}

	for i, rec := range records {
		row := MapRecord(rec)
		summary.Attempted++

		if err := u.repo.Insert(ctx, &row); err != nil {
			summary.Failed++
			log.Error("error inserting record",
				zap.Int("index", i),
				zap.String("record", row.Label()),
				zap.Error(err),
			)
			continue
		}
		summary.Inserted++
		summary.Rows = append(summary.Rows, row)
	}

	log.Info("records written",
		zap.Int("attempted", summary.Attempted),
		zap.Int("inserted", summary.Inserted),
		zap.Int("failed", summary.Failed),
	)

	if len(summary.Rows) > 0 {
		n, err := u.publisher.Publish(ctx, summary.Rows)
		if err != nil {
			log.Warn("error publishing stored rows", zap.Int("rows", len(summary.Rows)), zap.Error(err))
		}
		summary.Published = n
	}
	return summary
}
