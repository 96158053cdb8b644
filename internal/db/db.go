// Package db initializes the database connection and schema.
package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Keta808/backendTesis/config"
	"github.com/Keta808/backendTesis/internal/model"
)

// Init opens the production Postgres connection, applies pool settings and
// runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
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
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs AutoMigrate for all models plus the DDL that AutoMigrate
// cannot express. Also used by tests against in-memory sqlite.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Microempresa{},
		&model.Trabajador{},
		&model.Cliente{},
		&model.WorkerLink{},
		&model.Servicio{},
		&model.DaySchedule{},
		&model.TimeBlock{},
		&model.ScheduleException{},
		&model.Reservation{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return applyConstraintDDL(db)
}

// applyConstraintDDL creates the uniqueness guard that closes the
// read-check-write race on reservation creation: no two active reservations
// may share a worker, date, and start time. The conflict check still runs
// first so callers get a descriptive rejection; the index is the last line
// of defense under concurrent requests. Partial indexes are supported by
// both Postgres and sqlite, so the same DDL serves tests.
func applyConstraintDDL(db *gorm.DB) error {
	ddls := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_active_slot " +
			"ON reservations (worker_id, date, start_time) WHERE status = 'Activa';",
		"CREATE INDEX IF NOT EXISTS idx_reservations_client_status " +
			"ON reservations (client_id, status);",
	}
	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
