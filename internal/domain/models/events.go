package models

import (
	"encoding/json"
	"math"
	"time"

	"github.com/iwtcode/robotDataAgent/internal/domain/entities"
)

// RobotDataEvent is the message published to Kafka for every stored row.
// Non-finite floats are sent as null since JSON has no NaN.
type RobotDataEvent struct {
	ID        uint       `json:"id"`
	Timestamp *time.Time `json:"timestamp"`

	Organization *string `json:"organization"`
	Division     *string `json:"division"`
	Plant        *string `json:"plant"`
	Line         *string `json:"line"`
	Workstation  *string `json:"workstation"`
	Type         *string `json:"type"`
	Tag          *string `json:"tag"`

	PositionX *float64 `json:"positionx"`
	PositionY *float64 `json:"positiony"`
	PositionZ *float64 `json:"positionz"`

	Initialized bool `json:"initialized"`
	Running     bool `json:"running"`
	WSViolation bool `json:"wsviolation"`
	Paused      bool `json:"paused"`

	SpeedPercentage *int64 `json:"speedpercentage"`
	FinishedPartNum *int64 `json:"finishedpartnum"`

	M1Torque *float64 `json:"m1_torque"`
	M2Torque *float64 `json:"m2_torque"`
	M3Torque *float64 `json:"m3_torque"`
	M4Torque *float64 `json:"m4_torque"`
}

func NewRobotDataEvent(r entities.RobotData) RobotDataEvent {
	return RobotDataEvent{
		ID:              r.ID,
		Timestamp:       r.Timestamp,
		Organization:    r.Organization,
		Division:        r.Division,
		Plant:           r.Plant,
		Line:            r.Line,
		Workstation:     r.Workstation,
		Type:            r.Type,
		Tag:             r.Tag,
		PositionX:       finite(r.PositionX),
		PositionY:       finite(r.PositionY),
		PositionZ:       finite(r.PositionZ),
		Initialized:     r.Initialized,
		Running:         r.Running,
		WSViolation:     r.WSViolation,
		Paused:          r.Paused,
		SpeedPercentage: r.SpeedPercentage,
		FinishedPartNum: r.FinishedPartNum,
		M1Torque:        finite(r.M1Torque),
		M2Torque:        finite(r.M2Torque),
		M3Torque:        finite(r.M3Torque),
		M4Torque:        finite(r.M4Torque),
	}
}

func (e RobotDataEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// WorkstationScanDepth is how many of the newest topic messages are searched
// when looking up a workstation's last message.
const WorkstationScanDepth = 1000

// PublishedMessage is a message read back from the robot data topic.
type PublishedMessage struct {
	Key       string
	Value     string
	Partition int
	Offset    int64
	Time      time.Time
}
