package cmd

import (
	"fmt"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/pkg/logger"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// initDB opens the GORM connection and a sqlx handle sharing its pool.
func initDB(cfg *internal.Config) (*gorm.DB, *sqlx.DB, error) {
	level := gormlogger.Warn
	if cfg.Observability.Logging.Level == "debug" {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.Source), &gorm.Config{
		Logger:         logger.NewGormLogger(level, cfg.Database.SlowThreshold),
		TranslateError: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// gorm's postgres driver runs on pgx's database/sql driver
	return db, sqlx.NewDb(sqlDB, "pgx"), nil
}
