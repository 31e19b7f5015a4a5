package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iwtcode/robotDataAgent"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// rootQueryTimeout bounds the create-database step so that an unreachable
// host cannot stall startup.
const rootQueryTimeout = 5 * time.Second

// NewPostgresRepository opens the application connection pool. The pool is
// lazy: nothing is dialed until the first statement, so an unreachable
// database does not prevent startup.
func NewPostgresRepository(cfg *robotDataAgent.Config, log *zap.Logger) (*gorm.DB, error) {
	// 1. Check/Create DB (best effort)
	ctx, cancel := context.WithTimeout(context.Background(), rootQueryTimeout)
	defer cancel()
	if err := ensureDatabase(ctx, cfg); err != nil {
		log.Warn("could not ensure database exists", zap.String("database", cfg.DBName), zap.Error(err))
	}

	// 2. Connect to App DB
	db, err := gorm.Open(postgres.Open(cfg.DSN(cfg.DBName)), newGormConfig())
	if err != nil {
		return nil, fmt.Errorf("open application database: %w", err)
	}
	return db, nil
}

// newGormConfig is shared by every session the agent opens. Each row is one
// statement, so gorm's implicit per-Create transaction is skipped.
func newGormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	}
}

func ensureDatabase(ctx context.Context, cfg *robotDataAgent.Config) error {
	rootDB, err := gorm.Open(postgres.Open(cfg.DSN("postgres")), newGormConfig())
	if err != nil {
		return fmt.Errorf("connect to root postgres db: %w", err)
	}
	defer CloseDB(rootDB)
	rootDB = rootDB.WithContext(ctx)

	var exists bool
	err = rootDB.Raw("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = ?)", cfg.DBName).Scan(&exists).Error
	if err != nil {
		return fmt.Errorf("check db existence: %w", err)
	}
	if exists {
		return nil
	}

	if err := rootDB.Exec("CREATE DATABASE " + quoteIdent(cfg.DBName)).Error; err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	return nil
}

// CloseDB releases the pool behind db.
func CloseDB(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
