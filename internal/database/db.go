package database

import (
	"fmt"
	"time"

	"reward-admin/internal/config"
	"reward-admin/internal/logger"
	"reward-admin/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	maxAttempts  = 10
	retryBackoff = 2 * time.Second
)

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Open connects with retries (the database container may still be starting)
// and runs migrations.
func Open(driver, dsn string, pool config.DBPoolConfig, log *zap.Logger) (*gorm.DB, error) {
	d, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	gcfg := &gorm.Config{Logger: logger.NewGormLogger(log, gormlogger.Warn)}

	var db *gorm.DB
	for i := 1; i <= maxAttempts; i++ {
		log.Info("connecting to database", zap.String("driver", driver), zap.Int("attempt", i), zap.Int("max_attempts", maxAttempts))

		db, err = gorm.Open(d, gcfg)
		if err == nil {
			break
		}

		log.Warn("failed to connect to database", zap.Error(err))
		time.Sleep(retryBackoff)
	}
	if err != nil {
		return nil, fmt.Errorf("connect after %d attempts: %w", maxAttempts, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("connected to database")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.ContributionGroup{},
		&models.Unit{},
		&models.Position{},
		&models.Account{},
		&models.Personnel{},
		&models.Achievement{},
		&models.Proposal{},
		&models.ProposalItem{},
		&models.AuditLog{},
		&models.Notification{},
		&models.RecalcRun{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
