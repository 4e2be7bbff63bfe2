package pkg

import (
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/examprep-service/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDatabase opens the postgres pool and routes gorm's own logging
// through the service logger.
func InitDatabase(cfg config.DatabaseConfig, production bool, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger: newGormLogger(cfg, production, log),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func newGormLogger(cfg config.DatabaseConfig, production bool, log *slog.Logger) gormlogger.Interface {
	level := gormlogger.Info
	if production {
		level = gormlogger.Warn
	}
	return gormlogger.New(slog.NewLogLogger(log.Handler(), slog.LevelInfo), gormlogger.Config{
		SlowThreshold:             cfg.SlowQuery,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
