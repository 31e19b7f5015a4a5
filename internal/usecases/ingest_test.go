package usecases

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/iwtcode/robotDataAgent/internal/domain/entities"
	"github.com/iwtcode/robotDataAgent/internal/domain/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRepo struct {
	mu       sync.Mutex
	inserted []entities.RobotData
	attempts int
	failOn   map[int]error // attempt index -> error
	tableErr error
	tables   int
}

func (r *fakeRepo) EnsureTable(context.Context) error {
	if r.tableErr != nil {
		return r.tableErr
	}
	r.tables = 1
	return nil
}

func (r *fakeRepo) Insert(_ context.Context, row *entities.RobotData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.attempts
	r.attempts++
	if err := r.failOn[idx]; err != nil {
		return err
	}
	row.ID = uint(len(r.inserted) + 1)
	r.inserted = append(r.inserted, *row)
	return nil
}

func (r *fakeRepo) Last(context.Context) (*entities.RobotData, error) {
	if len(r.inserted) == 0 {
		return nil, nil
	}
	row := r.inserted[len(r.inserted)-1]
	return &row, nil
}

func (r *fakeRepo) Count(context.Context) (int64, error) { return int64(len(r.inserted)), nil }

type fakeFetcher struct {
	res   models.FetchResult
	calls int
}

func (f *fakeFetcher) Fetch(context.Context) models.FetchResult {
	f.calls++
	return f.res
}

type fakePublisher struct {
	rows []entities.RobotData
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, rows []entities.RobotData) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	p.rows = append(p.rows, rows...)
	return len(rows), nil
}

func (p *fakePublisher) Close() error { return nil }

func newTestIngest(repo *fakeRepo, fetcher *fakeFetcher, pub *fakePublisher) (*ingestUsecase, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	uc := NewIngestUsecase(repo, fetcher, pub, zap.New(core)).(*ingestUsecase)
	return uc, logs
}

func TestRunTick_EmptyFetchSkipsWriter(t *testing.T) {
	repo := &fakeRepo{}
	fetcher := &fakeFetcher{res: models.FetchResult{Status: models.FetchEmpty, Records: []models.RawRecord{}}}
	uc, logs := newTestIngest(repo, fetcher, &fakePublisher{})

	report := uc.RunTick(context.Background(), "tick-1")

	if repo.attempts != 0 {
		t.Fatalf("writer must not run on empty fetch, got %d inserts", repo.attempts)
	}
	if logs.FilterMessage("No data received.").Len() != 1 {
		t.Errorf("expected 'No data received.' log line")
	}
	if report.FetchStatus != models.FetchEmpty || report.Result() != "empty" {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestRunTick_FailedFetchContinues(t *testing.T) {
	repo := &fakeRepo{}
	cause := errors.New("decode response: unexpected EOF")
	fetcher := &fakeFetcher{res: models.FetchResult{Status: models.FetchFailed, Records: []models.RawRecord{}, Err: cause}}
	uc, _ := newTestIngest(repo, fetcher, &fakePublisher{})

	report := uc.RunTick(context.Background(), "tick-1")

	if repo.attempts != 0 {
		t.Fatalf("writer must not run on failed fetch")
	}
	if !errors.Is(report.FetchErr, cause) || report.Healthy() {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestRunTick_CoercesAndInserts(t *testing.T) {
	repo := &fakeRepo{}
	fetcher := &fakeFetcher{res: models.FetchResult{
		Status:  models.FetchOK,
		Records: []models.RawRecord{{"initialized": "true", "speedpercentage": "42", "workstation": "WS-1"}},
	}}
	pub := &fakePublisher{}
	uc, _ := newTestIngest(repo, fetcher, pub)

	report := uc.RunTick(context.Background(), "tick-1")

	if report.Received != 1 || report.Inserted != 1 || report.Failed != 0 || report.Published != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	row := repo.inserted[0]
	if !row.Initialized {
		t.Error("initialized must be true")
	}
	if row.SpeedPercentage == nil || *row.SpeedPercentage != 42 {
		t.Errorf("speedpercentage = %v", row.SpeedPercentage)
	}
	if row.Running || row.Paused {
		t.Error("missing booleans must be false")
	}
	if !math.IsNaN(row.PositionX) || !math.IsNaN(row.M4Torque) {
		t.Error("missing floats must be NaN")
	}
	if len(pub.rows) != 1 || pub.rows[0].ID != row.ID {
		t.Errorf("stored row must be published with its id, got %+v", pub.rows)
	}
}

func TestWrite_NonNumericFloatStillInserted(t *testing.T) {
	repo := &fakeRepo{}
	uc, _ := newTestIngest(repo, &fakeFetcher{}, &fakePublisher{})

	summary := uc.Write(context.Background(), []models.RawRecord{{"positionx": "abc"}})

	if summary.Attempted != 1 || summary.Inserted != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if !math.IsNaN(repo.inserted[0].PositionX) {
		t.Errorf("positionx = %v, want NaN", repo.inserted[0].PositionX)
	}
}

func TestWrite_OneAttemptPerRecordDespiteFailures(t *testing.T) {
	repo := &fakeRepo{failOn: map[int]error{
		1: errors.New(`invalid input syntax for type double precision: "NaN"`),
		3: errors.New("connection reset"),
	}}
	uc, logs := newTestIngest(repo, &fakeFetcher{}, &fakePublisher{})

	records := make([]models.RawRecord, 5)
	for i := range records {
		records[i] = models.RawRecord{"tag": "r"}
	}
	summary := uc.Write(context.Background(), records)

	if repo.attempts != 5 {
		t.Fatalf("expected 5 insert attempts, got %d", repo.attempts)
	}
	if summary.Attempted != 5 || summary.Inserted != 3 || summary.Failed != 2 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if logs.FilterMessage("error inserting record").Len() != 2 {
		t.Errorf("each failed insert must be logged")
	}
}

func TestWrite_PublishErrorDoesNotChangeInsertCounts(t *testing.T) {
	repo := &fakeRepo{}
	uc, logs := newTestIngest(repo, &fakeFetcher{}, &fakePublisher{err: errors.New("broker down")})

	summary := uc.Write(context.Background(), []models.RawRecord{{}, {}})

	if summary.Inserted != 2 || summary.Published != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if logs.FilterMessage("error publishing stored rows").Len() != 1 {
		t.Errorf("publish failure must be logged")
	}
}

func TestEnsureSchema(t *testing.T) {
	repo := &fakeRepo{}
	uc, _ := newTestIngest(repo, &fakeFetcher{}, &fakePublisher{})

	for i := 0; i < 2; i++ {
		if err := uc.EnsureSchema(context.Background()); err != nil {
			t.Fatalf("EnsureSchema call %d: %v", i+1, err)
		}
	}
	if repo.tables != 1 {
		t.Errorf("expected a single table, got %d", repo.tables)
	}

	cause := errors.New("permission denied")
	repo.tableErr = cause
	if err := uc.EnsureSchema(context.Background()); !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
}
