package db

import (
	"fmt"

	"github.com/davidx1x1/device-loan/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the store. Postgres is the primary driver; sqlite is the
// embedded alternative (single-node deployments and the test suite).
func Connect(driver, dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch driver {
	case "sqlite":
		dial = sqlite.Open(dsn)
	case "postgres", "":
		dial = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown db driver %q", driver)
	}

	gdb, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return gdb, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.DeviceModel{},
		&models.Device{},
		&models.Loan{},
		&models.WaitlistEntry{},
		&models.AuditLog{},
	); err != nil {
		return err
	}

	// 同一设备最多一条 active loan — the allocation invariant, enforced at
	// the store level as a backstop to the row-locked transaction.
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_active_per_device
	  ON %s (device_id)
	  WHERE status = 'reserved' OR status = 'collected';
	`, models.LoanTable, models.LoanTable)).Error; err != nil {
		return err
	}

	// 查询当前占用更快
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_active_device_reservedat
	  ON %s (device_id, reserved_at DESC)
	  WHERE status = 'reserved' OR status = 'collected';
	`, models.LoanTable, models.LoanTable)).Error; err != nil {
		return err
	}

	return nil
}
