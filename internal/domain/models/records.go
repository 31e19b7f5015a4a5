package models

import (
	"time"

	"github.com/iwtcode/robotDataAgent/internal/domain/entities"
)

// RawRecord is one JSON object returned by the robot data API, decoded with
// json.Number for numeric values.
type RawRecord map[string]any

// Field names of a robot data record as sent by the API. Case-sensitive.
const (
	FieldTimestamp       = "timestamp"
	FieldOrganization    = "organization"
	FieldDivision        = "division"
	FieldPlant           = "plant"
	FieldLine            = "line"
	FieldWorkstation     = "workstation"
	FieldType            = "type"
	FieldTag             = "tag"
	FieldPositionX       = "positionx"
	FieldPositionY       = "positiony"
	FieldPositionZ       = "positionz"
	FieldInitialized     = "initialized"
	FieldRunning         = "running"
	FieldWSViolation     = "wsviolation"
	FieldPaused          = "paused"
	FieldSpeedPercentage = "speedpercentage"
	FieldFinishedPartNum = "finishedpartnum"
	FieldM1Torque        = "m1_torque"
	FieldM2Torque        = "m2_torque"
	FieldM3Torque        = "m3_torque"
	FieldM4Torque        = "m4_torque"
)

type FetchStatus int

const (
	FetchOK FetchStatus = iota
	FetchEmpty
	FetchFailed
)

func (s FetchStatus) String() string {
	switch s {
	case FetchOK:
		return "ok"
	case FetchEmpty:
		return "empty"
	case FetchFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FetchResult is the outcome of a single GET against the robot data API.
type FetchResult struct {
	Status     FetchStatus
	Records    []RawRecord
	Err        error
	StatusCode int
	Latency    time.Duration
}

// Items returns the fetched records, or an empty slice when the fetch was
// empty or failed.
func (r FetchResult) Items() []RawRecord {
	if r.Status != FetchOK {
		return []RawRecord{}
	}
	return r.Records
}

// WriteSummary counts the outcome of writing one batch of records.
type WriteSummary struct {
	Attempted int
	Inserted  int
	Failed    int
	Published int
	// Rows holds the successfully inserted rows with their generated ids.
	Rows []entities.RobotData
}

// TickReport summarizes one poll tick.
type TickReport struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration

	FetchStatus FetchStatus
	FetchErr    error

	Received  int
	Inserted  int
	Failed    int
	Published int
}

// Healthy reports whether the tick fetched without error and stored every
// record it received.
func (r TickReport) Healthy() bool {
	return r.FetchStatus != FetchFailed && r.Failed == 0
}

// Result is a short label used for metrics and logs.
func (r TickReport) Result() string {
	switch {
	case r.FetchStatus == FetchFailed:
		return "fetch_failed"
	case r.FetchStatus == FetchEmpty:
		return "empty"
	case r.Failed > 0 && r.Inserted == 0:
		return "write_failed"
	case r.Failed > 0:
		return "partial"
	default:
		return "ok"
	}
}

// StatusSnapshot is the running state reported by the status bot and /status.
type StatusSnapshot struct {
	StartedAt   time.Time
	SchemaReady bool

	Ticks         int64
	SkippedTicks  int64
	FailedFetches int64
	Received      int64
	Inserted      int64
	Failed        int64
	Published     int64

	Last *TickReport
}
