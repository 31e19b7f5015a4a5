package repository

import (
	"context"
	"errors"

	"github.com/iwtcode/robotDataAgent/internal/domain/entities"
	"github.com/iwtcode/robotDataAgent/internal/interfaces"
	"gorm.io/gorm"
)

const createRobotDataTable = `CREATE TABLE IF NOT EXISTS robot_data (
	id SERIAL PRIMARY KEY,
	timestamp TIMESTAMPTZ,
	organization TEXT,
	division TEXT,
	plant TEXT,
	line TEXT,
	workstation TEXT,
	type TEXT,
	tag TEXT,
	positionx DOUBLE PRECISION,
	positiony DOUBLE PRECISION,
	positionz DOUBLE PRECISION,
	initialized BOOLEAN,
	running BOOLEAN,
	wsviolation BOOLEAN,
	paused BOOLEAN,
	speedpercentage INTEGER,
	finishedpartnum INTEGER,
	m1_torque DOUBLE PRECISION,
	m2_torque DOUBLE PRECISION,
	m3_torque DOUBLE PRECISION,
	m4_torque DOUBLE PRECISION
)`

type robotDataRepository struct {
	db *gorm.DB
}

func NewRobotDataRepository(db *gorm.DB) interfaces.RobotDataRepository {
	return &robotDataRepository{db: db}
}

func (r *robotDataRepository) EnsureTable(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec(createRobotDataTable).Error
}

func (r *robotDataRepository) Insert(ctx context.Context, row *entities.RobotData) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *robotDataRepository) Last(ctx context.Context) (*entities.RobotData, error) {
	var row entities.RobotData
	err := r.db.WithContext(ctx).Order("id DESC").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *robotDataRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entities.RobotData{}).Count(&n).Error
	return n, err
}
