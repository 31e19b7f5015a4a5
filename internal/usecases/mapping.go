package usecases

import (
	"github.com/iwtcode/robotDataAgent/internal/coerce"
	"github.com/iwtcode/robotDataAgent/internal/domain/entities"
	"github.com/iwtcode/robotDataAgent/internal/domain/models"
)

// MapRecord converts an API record into a robot_data row. Missing or
// malformed fields never fail the mapping.
func MapRecord(rec models.RawRecord) entities.RobotData {
	return entities.RobotData{
		Timestamp: coerce.Time(rec[models.FieldTimestamp]),

		Organization: coerce.Text(rec[models.FieldOrganization]),
		Division:     coerce.Text(rec[models.FieldDivision]),
		Plant:        coerce.Text(rec[models.FieldPlant]),
		Line:         coerce.Text(rec[models.FieldLine]),
		Workstation:  coerce.Text(rec[models.FieldWorkstation]),
		Type:         coerce.Text(rec[models.FieldType]),
		Tag:          coerce.Text(rec[models.FieldTag]),

		PositionX: coerce.Float(rec[models.FieldPositionX]),
		PositionY: coerce.Float(rec[models.FieldPositionY]),
		PositionZ: coerce.Float(rec[models.FieldPositionZ]),

		Initialized: coerce.Bool(rec[models.FieldInitialized]),
		Running:     coerce.Bool(rec[models.FieldRunning]),
		WSViolation: coerce.Bool(rec[models.FieldWSViolation]),
		Paused:      coerce.Bool(rec[models.FieldPaused]),

		SpeedPercentage: coerce.Int(rec[models.FieldSpeedPercentage]),
		FinishedPartNum: coerce.Int(rec[models.FieldFinishedPartNum]),

		M1Torque: coerce.Float(rec[models.FieldM1Torque]),
		M2Torque: coerce.Float(rec[models.FieldM2Torque]),
		M3Torque: coerce.Float(rec[models.FieldM3Torque]),
		M4Torque: coerce.Float(rec[models.FieldM4Torque]),
	}
}
