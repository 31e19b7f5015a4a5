package entities

import "time"

// RobotData is one persisted telemetry snapshot of a robot workstation.
// Rows are only ever inserted.
type RobotData struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Timestamp *time.Time `gorm:"column:timestamp" json:"timestamp"`

	// Plant hierarchy labels
	Organization *string `gorm:"column:organization" json:"organization"`
	Division     *string `gorm:"column:division" json:"division"`
	Plant        *string `gorm:"column:plant" json:"plant"`
	Line         *string `gorm:"column:line" json:"line"`
	Workstation  *string `gorm:"column:workstation" json:"workstation"`
	Type         *string `gorm:"column:type" json:"type"`
	Tag          *string `gorm:"column:tag" json:"tag"`

	// TCP position, NaN when the source value was not numeric
	PositionX float64 `gorm:"column:positionx" json:"positionx"`
	PositionY float64 `gorm:"column:positiony" json:"positiony"`
	PositionZ float64 `gorm:"column:positionz" json:"positionz"`

	Initialized bool `gorm:"column:initialized" json:"initialized"`
	Running     bool `gorm:"column:running" json:"running"`
	WSViolation bool `gorm:"column:wsviolation" json:"wsviolation"`
	Paused      bool `gorm:"column:paused" json:"paused"`

	SpeedPercentage *int64 `gorm:"column:speedpercentage" json:"speedpercentage"`
	FinishedPartNum *int64 `gorm:"column:finishedpartnum" json:"finishedpartnum"`

	M1Torque float64 `gorm:"column:m1_torque" json:"m1_torque"`
	M2Torque float64 `gorm:"column:m2_torque" json:"m2_torque"`
	M3Torque float64 `gorm:"column:m3_torque" json:"m3_torque"`
	M4Torque float64 `gorm:"column:m4_torque" json:"m4_torque"`
}

func (RobotData) TableName() string { return "robot_data" }

// Label returns a short human readable identifier for logs and messages.
func (r RobotData) Label() string {
	ws := "?"
	if r.Workstation != nil && *r.Workstation != "" {
		ws = *r.Workstation
	}
	if r.Timestamp == nil {
		return ws
	}
	return ws + "@" + r.Timestamp.UTC().Format(time.RFC3339)
}
